package amm

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"safepump/native/common"
)

// Engine creates pools and executes swaps against them.
type Engine struct {
	feeBps uint64
}

func NewEngine(feeBps uint64) (*Engine, error) {
	if feeBps >= common.BpsDenominator {
		return nil, ErrInvalidFee
	}
	return &Engine{feeBps: feeBps}, nil
}

// LPMint returns the LP token mint of pool.
func (e *Engine) LPMint(pool solana.PublicKey) (solana.PublicKey, error) {
	return LPMintAddress(pool)
}

// CreatePool moves both seed reserves from the creator into a new pool and
// mints sqrt(sol*tokens) LP tokens back to the creator.
func (e *Engine) CreatePool(ctx context.Context, st common.Store, seed common.PoolSeed) (solana.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return solana.PublicKey{}, err
	}
	if seed.SOL == 0 || seed.Tokens == 0 {
		return solana.PublicKey{}, ErrEmptySeed
	}
	address, err := PoolAddress(seed.Mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, ok, err := LoadPool(st, address); err != nil {
		return solana.PublicKey{}, err
	} else if ok {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrPoolExists, address)
	}
	lpMint, err := LPMintAddress(address)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := st.Transfer(seed.Creator, address, common.NativeMint, seed.SOL); err != nil {
		return solana.PublicKey{}, err
	}
	if err := st.Transfer(seed.Creator, address, seed.Mint, seed.Tokens); err != nil {
		return solana.PublicKey{}, err
	}
	lp := initialLiquidity(seed.SOL, seed.Tokens)
	if err := st.Mint(seed.Creator, lpMint, lp); err != nil {
		return solana.PublicKey{}, err
	}
	pool := &Pool{
		Address:       address,
		Mint:          seed.Mint,
		LPMint:        lpMint,
		ReserveSOL:    seed.SOL,
		ReserveTokens: seed.Tokens,
		LPSupply:      lp,
		FeeBps:        e.feeBps,
	}
	if err := savePool(st, pool); err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

// Swap executes leg against its pool and returns the amount paid out.
func (e *Engine) Swap(ctx context.Context, st common.Store, leg common.Leg) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if leg.AmountIn == 0 {
		return 0, ErrZeroInput
	}
	pool, ok, err := LoadPool(st, leg.Pool)
	if err != nil {
		return 0, err
	}
	if !ok || !pool.Mint.Equals(leg.Mint) {
		return 0, fmt.Errorf("%w: %s", ErrPoolNotFound, leg.Pool)
	}

	inMint, outMint := common.NativeMint, pool.Mint
	reserveIn, reserveOut := &pool.ReserveSOL, &pool.ReserveTokens
	if !leg.Direction.IsBuy() {
		inMint, outMint = outMint, inMint
		reserveIn, reserveOut = reserveOut, reserveIn
	}
	out, err := Quote(leg.AmountIn, *reserveIn, *reserveOut, pool.FeeBps)
	if err != nil {
		return 0, err
	}
	if out == 0 || out >= *reserveOut {
		return 0, fmt.Errorf("%w: %d of %d", common.ErrInsufficientReserve, out, *reserveOut)
	}
	if out < leg.MinimumOut {
		return 0, fmt.Errorf("%w: %d < %d", common.ErrSlippageExceeded, out, leg.MinimumOut)
	}
	grown, err := common.CheckedAdd(*reserveIn, leg.AmountIn)
	if err != nil {
		return 0, err
	}
	if err := st.Transfer(leg.Trader, pool.Address, inMint, leg.AmountIn); err != nil {
		return 0, err
	}
	if err := st.Transfer(pool.Address, leg.Trader, outMint, out); err != nil {
		return 0, err
	}
	*reserveIn = grown
	*reserveOut -= out
	if err := savePool(st, pool); err != nil {
		return 0, err
	}
	return out, nil
}

// BurnLP destroys amount LP tokens held by owner. Reserves stay in the pool.
func (e *Engine) BurnLP(st common.Store, pool, owner solana.PublicKey, amount uint64) error {
	p, ok, err := LoadPool(st, pool)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
	}
	if err := st.Burn(owner, p.LPMint, amount); err != nil {
		return err
	}
	supply, err := common.CheckedSub(p.LPSupply, amount)
	if err != nil {
		return err
	}
	p.LPSupply = supply
	return savePool(st, p)
}
