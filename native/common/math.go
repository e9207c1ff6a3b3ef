package common

import (
	"fmt"

	"github.com/holiman/uint256"
)

// BpsDenominator is the basis-point scale used by every rate in the gate.
const BpsDenominator uint64 = 10_000

// LamportsPerSOL converts whole SOL into the ledger's base unit.
const LamportsPerSOL uint64 = 1_000_000_000

// MulDiv returns a*b/d computed with a 256-bit intermediate. A zero divisor
// yields zero. The quotient must fit in 64 bits.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, nil
	}
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	quotient := product.Div(product, uint256.NewInt(d))
	if !quotient.IsUint64() {
		return 0, fmt.Errorf("%w: %d*%d/%d", ErrOverflow, a, b, d)
	}
	return quotient.Uint64(), nil
}

// ApplyBps returns amount*bps/10000 rounded down.
func ApplyBps(amount, bps uint64) (uint64, error) {
	return MulDiv(amount, bps, BpsDenominator)
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("%w: %d+%d", ErrOverflow, a, b)
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrOverflow when b exceeds a.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%w: %d-%d underflows", ErrOverflow, a, b)
	}
	return a - b, nil
}
