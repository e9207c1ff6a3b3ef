package asset

import (
	"fmt"
	"slices"

	"safepump/native/admission"
	"safepump/native/common"
	"safepump/native/tier"
)

const (
	DefaultAntiSnipeSeconds   int64  = 120
	DefaultBondThreshold      uint64 = 100 * common.LamportsPerSOL
	DefaultPoolSeedLamports   uint64 = common.LamportsPerSOL
	DefaultMinSupply          uint64 = 1_000_000_000_000_000
	DefaultMaxSupply          uint64 = 1_000_000_000_000_000_000
	DefaultMaxBurnPercent     uint64 = 50
	DefaultMaxAllies          int    = 4
	DefaultMaxAllocationBps   uint64 = 5_100
	DefaultMaxDelegations     uint64 = 30
	DefaultDelegationWindow   int64  = 60
	DefaultAirdropMinClaimers uint64 = 1_000
	DefaultAirdropDivisor     uint64 = 100_000
	DefaultMaxLiquidityBurn   uint64 = 50
)

// DefaultMintSuffix is the vanity suffix every launched mint must carry.
const DefaultMintSuffix = "SPMP"

// Top-tier valuations (whole SOL) a launch may pick.
var DefaultTopTierValuationsSOL = []uint64{1_000_000, 5_000_000, 10_000_000, 50_000_000, 100_000_000}

// Sell cooldowns (seconds) a launch may pick.
var DefaultSellCooldowns = []uint64{900, 1_800, 3_600, 14_400, 28_800, 86_400}

// Params configures the asset engine. Velocity resolves against the live
// valuation with the highest-at-or-below rule; Caps is the per-swap
// basis-point ladder.
type Params struct {
	Velocity   tier.Ladder
	Caps       tier.Ladder
	Delegation admission.DelegationLimit

	AntiSnipeSeconds int64
	BondThreshold    uint64
	PoolSeedLamports uint64
	MintSuffix       string

	MinSupply        uint64
	MaxSupply        uint64
	MaxBurnPercent   uint64
	MaxAllies        int
	MaxAllocationBps uint64

	TopTierValuationsSOL []uint64
	SellCooldowns        []uint64

	AirdropMinClaimers uint64
	AirdropDivisor     uint64
	MaxLiquidityBurn   uint64
}

// DefaultParams returns the production launch and swap constants.
func DefaultParams() Params {
	return Params{
		Velocity:             tier.VelocityLadder(tier.RuleHighestAtOrBelow),
		Caps:                 tier.CapLadder(),
		Delegation:           admission.DelegationLimit{Max: DefaultMaxDelegations, WindowSeconds: DefaultDelegationWindow},
		AntiSnipeSeconds:     DefaultAntiSnipeSeconds,
		BondThreshold:        DefaultBondThreshold,
		PoolSeedLamports:     DefaultPoolSeedLamports,
		MintSuffix:           DefaultMintSuffix,
		MinSupply:            DefaultMinSupply,
		MaxSupply:            DefaultMaxSupply,
		MaxBurnPercent:       DefaultMaxBurnPercent,
		MaxAllies:            DefaultMaxAllies,
		MaxAllocationBps:     DefaultMaxAllocationBps,
		TopTierValuationsSOL: slices.Clone(DefaultTopTierValuationsSOL),
		SellCooldowns:        slices.Clone(DefaultSellCooldowns),
		AirdropMinClaimers:   DefaultAirdropMinClaimers,
		AirdropDivisor:       DefaultAirdropDivisor,
		MaxLiquidityBurn:     DefaultMaxLiquidityBurn,
	}
}

func (p Params) Validate() error {
	if err := p.Velocity.Validate(); err != nil {
		return err
	}
	if err := p.Caps.Validate(); err != nil {
		return err
	}
	switch {
	case p.AntiSnipeSeconds < 0:
		return fmt.Errorf("%w: negative anti-snipe window", errInvalidParams)
	case p.MinSupply == 0 || p.MinSupply > p.MaxSupply:
		return fmt.Errorf("%w: supply range [%d, %d]", errInvalidParams, p.MinSupply, p.MaxSupply)
	case p.MaxBurnPercent > 100 || p.MaxLiquidityBurn > 100:
		return fmt.Errorf("%w: burn percent above 100", errInvalidParams)
	case p.MaxAllocationBps > common.BpsDenominator:
		return fmt.Errorf("%w: allocation above 100%%", errInvalidParams)
	case p.AirdropDivisor == 0:
		return fmt.Errorf("%w: airdrop divisor must be positive", errInvalidParams)
	case p.BondThreshold == 0:
		return fmt.Errorf("%w: bond threshold must be positive", errInvalidParams)
	}
	return nil
}
