package events

import (
	"github.com/gagliardetto/solana-go"

	"safepump/core/types"
)

const (
	TypeAssetRegistered        = "coordinator.asset.registered"
	TypeVaultRegistered        = "coordinator.vault.registered"
	TypeTaxCollected           = "coordinator.tax.collected"
	TypeRewardsDistributed     = "coordinator.rewards.distributed"
	TypeTreasuryWithdrawn      = "coordinator.treasury.withdrawn"
	TypeBadgeMinted            = "coordinator.badge.minted"
	TypeAirdropClaimed         = "coordinator.airdrop.claimed"
	TypeAirdropTriggered       = "coordinator.airdrop.triggered"
	TypeSwapperCaptured        = "coordinator.swapper.captured"
	TypeCoordinatorInitialized = "coordinator.initialized"
)

type CoordinatorInitialized struct {
	Treasury   solana.PublicKey
	LaunchedAt int64
}

func (CoordinatorInitialized) EventType() string { return TypeCoordinatorInitialized }

func (e CoordinatorInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypeCoordinatorInitialized,
		Attributes: map[string]string{
			"treasury":   addr(e.Treasury),
			"launchedAt": i64(e.LaunchedAt),
		},
	}
}

type AssetRegistered struct {
	Mint     solana.PublicKey
	Instance solana.PublicKey
	Deployer solana.PublicKey
}

func (AssetRegistered) EventType() string { return TypeAssetRegistered }

func (e AssetRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeAssetRegistered,
		Attributes: map[string]string{
			"mint":     addr(e.Mint),
			"instance": addr(e.Instance),
			"deployer": addr(e.Deployer),
		},
	}
}

type VaultRegistered struct {
	Owner solana.PublicKey
}

func (VaultRegistered) EventType() string { return TypeVaultRegistered }

func (e VaultRegistered) Event() *types.Event {
	return &types.Event{
		Type:       TypeVaultRegistered,
		Attributes: map[string]string{"owner": addr(e.Owner)},
	}
}

// TaxCollected records one application of the protocol tax. Amounts are in
// units of Denomination.
type TaxCollected struct {
	Requester    solana.PublicKey
	Asset        solana.PublicKey
	Denomination solana.PublicKey
	Direction    string
	Amount       uint64
	Total        uint64
	Liquidity    uint64
	Swapper      uint64
	Badge        uint64
	Treasury     uint64
	Net          uint64
	Dust         uint64
}

func (TaxCollected) EventType() string { return TypeTaxCollected }

func (e TaxCollected) Event() *types.Event {
	return &types.Event{
		Type: TypeTaxCollected,
		Attributes: map[string]string{
			"requester":    addr(e.Requester),
			"asset":        addr(e.Asset),
			"denomination": addr(e.Denomination),
			"direction":    e.Direction,
			"amount":       u64(e.Amount),
			"total":        u64(e.Total),
			"liquidity":    u64(e.Liquidity),
			"swapper":      u64(e.Swapper),
			"badge":        u64(e.Badge),
			"treasury":     u64(e.Treasury),
			"net":          u64(e.Net),
			"dust":         u64(e.Dust),
		},
	}
}

type RewardsDistributed struct {
	Denomination solana.PublicKey
	Recipients   uint64
	SwapperTotal uint64
	Holders      uint64
	PerHolder    uint64
	BadgeTotal   uint64
	Dust         uint64
	At           int64
}

func (RewardsDistributed) EventType() string { return TypeRewardsDistributed }

func (e RewardsDistributed) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsDistributed,
		Attributes: map[string]string{
			"denomination": addr(e.Denomination),
			"recipients":   u64(e.Recipients),
			"swapperTotal": u64(e.SwapperTotal),
			"holders":      u64(e.Holders),
			"perHolder":    u64(e.PerHolder),
			"badgeTotal":   u64(e.BadgeTotal),
			"dust":         u64(e.Dust),
			"at":           i64(e.At),
		},
	}
}

type TreasuryWithdrawn struct {
	Mint        solana.PublicKey
	Amount      uint64
	Destination solana.PublicKey
}

func (TreasuryWithdrawn) EventType() string { return TypeTreasuryWithdrawn }

func (e TreasuryWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeTreasuryWithdrawn,
		Attributes: map[string]string{
			"mint":        addr(e.Mint),
			"amount":      u64(e.Amount),
			"destination": addr(e.Destination),
		},
	}
}

type BadgeMinted struct {
	Holder    solana.PublicKey
	BadgeMint solana.PublicKey
	BuyCount  uint64
}

func (BadgeMinted) EventType() string { return TypeBadgeMinted }

func (e BadgeMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeBadgeMinted,
		Attributes: map[string]string{
			"holder":    addr(e.Holder),
			"badgeMint": addr(e.BadgeMint),
			"buyCount":  u64(e.BuyCount),
		},
	}
}

type AirdropClaimed struct {
	Mint    solana.PublicKey
	Claimer solana.PublicKey
}

func (AirdropClaimed) EventType() string { return TypeAirdropClaimed }

func (e AirdropClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeAirdropClaimed,
		Attributes: map[string]string{
			"mint":    addr(e.Mint),
			"claimer": addr(e.Claimer),
		},
	}
}

type AirdropTriggered struct {
	Mint     solana.PublicKey
	Claimers uint64
	PerUser  uint64
}

func (AirdropTriggered) EventType() string { return TypeAirdropTriggered }

func (e AirdropTriggered) Event() *types.Event {
	return &types.Event{
		Type: TypeAirdropTriggered,
		Attributes: map[string]string{
			"mint":     addr(e.Mint),
			"claimers": u64(e.Claimers),
			"perUser":  u64(e.PerUser),
		},
	}
}

type SwapperCaptured struct {
	Swapper solana.PublicKey
	Total   uint64
}

func (SwapperCaptured) EventType() string { return TypeSwapperCaptured }

func (e SwapperCaptured) Event() *types.Event {
	return &types.Event{
		Type: TypeSwapperCaptured,
		Attributes: map[string]string{
			"swapper": addr(e.Swapper),
			"total":   u64(e.Total),
		},
	}
}
