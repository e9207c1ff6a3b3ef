package events

import (
	"github.com/gagliardetto/solana-go"

	"safepump/core/types"
)

const (
	// TypeTokenSupply is emitted whenever a token supply changes.
	TypeTokenSupply = "token.supply"

	SupplyReasonMint = "mint"
	SupplyReasonBurn = "burn"
)

// TokenSupply captures a supply delta for one mint.
type TokenSupply struct {
	Mint   solana.PublicKey
	Total  uint64
	Delta  uint64
	Reason string
}

func (TokenSupply) EventType() string { return TypeTokenSupply }

func (e TokenSupply) Event() *types.Event {
	attrs := map[string]string{
		"mint":  addr(e.Mint),
		"total": u64(e.Total),
		"delta": u64(e.Delta),
	}
	if e.Reason != "" {
		attrs["reason"] = e.Reason
	}
	return &types.Event{Type: TypeTokenSupply, Attributes: attrs}
}
