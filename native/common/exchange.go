package common

import "github.com/gagliardetto/solana-go"

// Store is a Ledger that can also persist keyed records.
type Store interface {
	Ledger
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Leg is one exchange instruction executed on behalf of a trader. Buys spend
// SOL for Mint, sells spend Mint for SOL.
type Leg struct {
	Pool       solana.PublicKey
	Mint       solana.PublicKey
	Trader     solana.PublicKey
	Direction  Direction
	AmountIn   uint64
	MinimumOut uint64
}

// PoolSeed describes the initial liquidity of a new pool. Both reserves are
// taken from Creator, who receives the LP supply.
type PoolSeed struct {
	Mint    solana.PublicKey
	Creator solana.PublicKey
	SOL     uint64
	Tokens  uint64
}
