package common

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// NativeMint identifies the quote currency (SOL) in the balance ledger.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// ModuleSwap is the pause-guard key covering swaps and tax collection.
const ModuleSwap = "swap"

// Direction of a swap relative to the launched asset.
type Direction uint8

const (
	DirectionSell Direction = 0
	DirectionBuy  Direction = 1
)

func (d Direction) IsBuy() bool { return d == DirectionBuy }

func (d Direction) String() string {
	if d == DirectionBuy {
		return "buy"
	}
	return "sell"
}

// Env carries the environment clock for one invocation.
type Env struct {
	Now  int64
	Slot uint64
}

// Ledger moves balances between accounts. Each call applies fully or not at all.
type Ledger interface {
	Balance(account, mint solana.PublicKey) (uint64, error)
	Transfer(from, to, mint solana.PublicKey, amount uint64) error
	Mint(to, mint solana.PublicKey, amount uint64) error
	Burn(from, mint solana.PublicKey, amount uint64) error
}

// TimeToStore converts a unix timestamp for RLP storage. Timestamps before the
// epoch are stored as zero.
func TimeToStore(ts int64) uint64 {
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

// TimeFromStore converts a stored timestamp back to unix seconds.
func TimeFromStore(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("timestamp %d exceeds int64 range", v)
	}
	return int64(v), nil
}
