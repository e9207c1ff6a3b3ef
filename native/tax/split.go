// Package tax splits the protocol tax across its destination pools and keeps
// the bounded reward bookkeeping that the distributor later flushes.
package tax

import (
	"errors"
	"fmt"

	"safepump/native/common"
)

// Allocation indexes.
const (
	Liquidity = iota
	Swapper
	Badge
	Treasury
	numAllocations
)

var errInvalidPolicy = errors.New("tax: invalid policy")

// Policy describes the total tax rate and how it is divided. The four
// sub-rates are shares of TotalBps, not of the gross amount.
type Policy struct {
	TotalBps     uint64
	LiquidityBps uint64
	SwapperBps   uint64
	BadgeBps     uint64
	TreasuryBps  uint64
}

// DefaultPolicy is the 2.5% protocol tax.
func DefaultPolicy() Policy {
	return Policy{
		TotalBps:     250,
		LiquidityBps: 100,
		SwapperBps:   80,
		BadgeBps:     20,
		TreasuryBps:  50,
	}
}

func (p Policy) shares() [numAllocations]uint64 {
	return [numAllocations]uint64{p.LiquidityBps, p.SwapperBps, p.BadgeBps, p.TreasuryBps}
}

// Validate requires a rate below 100% and sub-rates that add up to it.
func (p Policy) Validate() error {
	if p.TotalBps == 0 || p.TotalBps >= common.BpsDenominator {
		return fmt.Errorf("%w: total %d bps", errInvalidPolicy, p.TotalBps)
	}
	var sum uint64
	for _, share := range p.shares() {
		sum += share
	}
	if sum != p.TotalBps {
		return fmt.Errorf("%w: shares sum to %d, total is %d", errInvalidPolicy, sum, p.TotalBps)
	}
	return nil
}

// Result is the outcome of splitting one swap amount. Dust is Total minus the
// sum of allocations; it is never transferred and stays with the payer.
type Result struct {
	Amount      uint64
	Total       uint64
	Allocations [numAllocations]uint64
	Net         uint64
	Dust        uint64
}

func (r Result) Liquidity() uint64 { return r.Allocations[Liquidity] }
func (r Result) Swapper() uint64 { return r.Allocations[Swapper] }
func (r Result) Badge() uint64 { return r.Allocations[Badge] }
func (r Result) Treasury() uint64 { return r.Allocations[Treasury] }

// Allocated is the sum of all sub-allocations.
func (r Result) Allocated() uint64 {
	var sum uint64
	for _, a := range r.Allocations {
		sum += a
	}
	return sum
}

// Split computes total = amount*TotalBps/10000 and each allocation as
// total*share/TotalBps. Net is amount - total exactly.
func Split(amount uint64, p Policy) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	total, err := common.ApplyBps(amount, p.TotalBps)
	if err != nil {
		return Result{}, err
	}
	res := Result{Amount: amount, Total: total, Net: amount - total}
	for i, share := range p.shares() {
		alloc, err := common.MulDiv(total, share, p.TotalBps)
		if err != nil {
			return Result{}, err
		}
		res.Allocations[i] = alloc
	}
	res.Dust = total - res.Allocated()
	return res, nil
}
