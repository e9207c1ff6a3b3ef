package events

import (
	"github.com/gagliardetto/solana-go"

	"safepump/core/types"
)

// Asset lifecycle and swap events.
const (
	TypeSwapExecuted    = "asset.swap.executed"
	TypeAssetBonded     = "asset.bonded"
	TypeAssetLaunched   = "asset.launched"
	TypeLiquidityBurned = "asset.liquidity.burned"
)

type SwapExecuted struct {
	RequestID string
	Mint      solana.PublicKey
	Trader    solana.PublicKey
	Direction string
	AmountIn  uint64
	Net       uint64
	AmountOut uint64
	Nonce     uint64
	Venue     string
}

func (SwapExecuted) EventType() string { return TypeSwapExecuted }

func (e SwapExecuted) Event() *types.Event {
	return &types.Event{
		Type:      TypeSwapExecuted,
		RequestID: e.RequestID,
		Attributes: map[string]string{
			"mint":      addr(e.Mint),
			"trader":    addr(e.Trader),
			"direction": e.Direction,
			"amountIn":  u64(e.AmountIn),
			"net":       u64(e.Net),
			"amountOut": u64(e.AmountOut),
			"nonce":     u64(e.Nonce),
			"venue":     e.Venue,
		},
	}
}

type AssetBonded struct {
	Mint          solana.PublicKey
	Pool          solana.PublicKey
	ReserveSOL    uint64
	ReserveTokens uint64
}

func (AssetBonded) EventType() string { return TypeAssetBonded }

func (e AssetBonded) Event() *types.Event {
	return &types.Event{
		Type: TypeAssetBonded,
		Attributes: map[string]string{
			"mint":          addr(e.Mint),
			"pool":          addr(e.Pool),
			"reserveSol":    u64(e.ReserveSOL),
			"reserveTokens": u64(e.ReserveTokens),
		},
	}
}

type AssetLaunched struct {
	Mint        solana.PublicKey
	Deployer    solana.PublicKey
	TotalSupply uint64
	Burned      uint64
	LaunchedAt  int64
}

func (AssetLaunched) EventType() string { return TypeAssetLaunched }

func (e AssetLaunched) Event() *types.Event {
	return &types.Event{
		Type: TypeAssetLaunched,
		Attributes: map[string]string{
			"mint":        addr(e.Mint),
			"deployer":    addr(e.Deployer),
			"totalSupply": u64(e.TotalSupply),
			"burned":      u64(e.Burned),
			"launchedAt":  i64(e.LaunchedAt),
		},
	}
}

type LiquidityBurned struct {
	Mint    solana.PublicKey
	Pool    solana.PublicKey
	Percent uint64
	Amount  uint64
}

func (LiquidityBurned) EventType() string { return TypeLiquidityBurned }

func (e LiquidityBurned) Event() *types.Event {
	return &types.Event{
		Type: TypeLiquidityBurned,
		Attributes: map[string]string{
			"mint":    addr(e.Mint),
			"pool":    addr(e.Pool),
			"percent": u64(e.Percent),
			"amount":  u64(e.Amount),
		},
	}
}
