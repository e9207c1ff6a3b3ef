package coordinator

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"safepump/core/events"
	"safepump/crypto"
	"safepump/native/admission"
	"safepump/native/common"
	"safepump/native/tax"
	"safepump/native/vault"
)

// TaxRequest carries the signed swap fields a child asset forwards to the
// coordinator. The coordinator verifies them again on its own.
type TaxRequest struct {
	Requester  solana.PublicKey
	Asset      solana.PublicKey
	Direction  common.Direction
	Amount     uint64
	MinimumOut uint64
	Nonce      uint64
	Signature  crypto.Signature
	Authority  crypto.PublicKey
}

// Message returns the payload the authority signed.
func (r TaxRequest) Message() crypto.SwapMessage {
	return crypto.SwapMessage{
		Amount:     r.Amount,
		IsBuy:      r.Direction.IsBuy(),
		MinimumOut: r.MinimumOut,
		Nonce:      r.Nonce,
		Requester:  r.Requester,
	}
}

// TaxResult reports what was charged. Net is what the child may swap.
// WindowBought and RewardLogFull describe the state the swap leaves behind
// and are reported by RecordTax once the swap commits.
type TaxResult struct {
	Denomination  solana.PublicKey
	Split         tax.Result
	Net           uint64
	WindowBought  uint64
	RewardLogFull bool
}

// Denomination returns the mint the tax of a swap is charged in: SOL for buys,
// the asset itself for sells.
func Denomination(dir common.Direction, asset solana.PublicKey) solana.PublicKey {
	if dir.IsBuy() {
		return common.NativeMint
	}
	return asset
}

func denominationLabel(denomination solana.PublicKey) string {
	if denomination.Equals(common.NativeMint) {
		return "sol"
	}
	return "token"
}

// Authenticate checks the requester's vault nonce and the authority
// signature without mutating anything.
func (e *Engine) Authenticate(st State, req TaxRequest) (*vault.Vault, error) {
	v, err := vault.MustLoad(st, req.Requester)
	if err != nil {
		return nil, err
	}
	if err := v.Check(req.Nonce); err != nil {
		return nil, err
	}
	if !e.params.authorityAllowed(req.Authority) {
		return nil, fmt.Errorf("%w: authority not allowed", common.ErrInvalidSignature)
	}
	if !crypto.Verify(req.Signature, req.Authority, req.Message().Bytes()) {
		return nil, common.ErrInvalidSignature
	}
	return v, nil
}

// CollectTax authenticates req, admits it against the protocol-wide velocity
// window, splits the tax, routes every nonzero allocation out of the
// requester's balance and accrues rewards. The nonce is left for the caller
// to advance on commit. Nothing is reported to metrics; see RecordTax.
func (e *Engine) CollectTax(ctx context.Context, st State, env common.Env, req TaxRequest) (TaxResult, error) {
	if err := ctx.Err(); err != nil {
		return TaxResult{}, err
	}
	if err := common.Guard(e.pauses, common.ModuleSwap); err != nil {
		return TaxResult{}, err
	}
	g, err := loadGlobal(st)
	if err != nil {
		return TaxResult{}, err
	}
	if _, err := e.Authenticate(st, req); err != nil {
		return TaxResult{}, err
	}
	if err := admission.AntiSnipe(g.SwapCount, g.LaunchedAt, env.Now, e.params.AntiSnipeSeconds); err != nil {
		return TaxResult{}, err
	}

	window, err := admission.LoadWindow(st, admission.GlobalScope)
	if err != nil {
		return TaxResult{}, err
	}
	window, err = admission.Admit(window, env.Slot, e.params.Velocity.Lookup(g.TotalSwapped), req.Amount, req.Direction)
	if err != nil {
		return TaxResult{}, err
	}
	if err := admission.SaveWindow(st, admission.GlobalScope, window); err != nil {
		return TaxResult{}, err
	}

	split, err := tax.Split(req.Amount, e.params.Tax)
	if err != nil {
		return TaxResult{}, err
	}
	denomination := Denomination(req.Direction, req.Asset)
	routes := []struct {
		pool   string
		to     solana.PublicKey
		amount uint64
	}{
		{"liquidity", e.params.LiquidityPool, split.Liquidity()},
		{"treasury", e.params.TreasuryVault, split.Treasury()},
		{"rewards", e.params.RewardsVault, split.Swapper() + split.Badge()},
	}
	for _, route := range routes {
		if route.amount == 0 {
			continue
		}
		if err := st.Transfer(req.Requester, route.to, denomination, route.amount); err != nil {
			return TaxResult{}, fmt.Errorf("coordinator: route %s tax: %w", route.pool, err)
		}
	}

	ledger, err := e.loadLedger(st, g, denomination)
	if err != nil {
		return TaxResult{}, err
	}
	logFull := !ledger.Append(req.Requester, split.Swapper())
	if err := ledger.AddBadge(split.Badge()); err != nil {
		return TaxResult{}, err
	}
	if err := tax.SaveLedger(st, ledger); err != nil {
		return TaxResult{}, err
	}

	if req.Direction.IsBuy() {
		holders, err := tax.LoadHolders(st)
		if err != nil {
			return TaxResult{}, err
		}
		holders.RecordBuy(req.Requester)
		if err := tax.SaveHolders(st, holders); err != nil {
			return TaxResult{}, err
		}
	}

	if g.SwapCount, err = common.CheckedAdd(g.SwapCount, 1); err != nil {
		return TaxResult{}, err
	}
	if g.TotalSwapped, err = common.CheckedAdd(g.TotalSwapped, req.Amount); err != nil {
		return TaxResult{}, err
	}
	if err := saveGlobal(st, g); err != nil {
		return TaxResult{}, err
	}

	st.Emit(events.TaxCollected{
		Requester:    req.Requester,
		Asset:        req.Asset,
		Denomination: denomination,
		Direction:    req.Direction.String(),
		Amount:       split.Amount,
		Total:        split.Total,
		Liquidity:    split.Liquidity(),
		Swapper:      split.Swapper(),
		Badge:        split.Badge(),
		Treasury:     split.Treasury(),
		Net:          split.Net,
		Dust:         split.Dust,
	})

	e.logger.Debug("tax collected",
		"requester", req.Requester.String(),
		"asset", req.Asset.String(),
		"direction", req.Direction.String(),
		"amount", req.Amount,
		"tax", split.Total,
		"swapCount", g.SwapCount)

	return TaxResult{
		Denomination:  denomination,
		Split:         split,
		Net:           split.Net,
		WindowBought:  window.TotalBought,
		RewardLogFull: logFull,
	}, nil
}

// RecordTax reports a committed tax collection to the metrics sink. Callers
// invoke it only after the transaction holding res has committed.
func (e *Engine) RecordTax(res TaxResult) {
	label := denominationLabel(res.Denomination)
	e.metrics.SetVelocity("global", res.WindowBought)
	e.metrics.AddTax(label, "liquidity", res.Split.Liquidity())
	e.metrics.AddTax(label, "swapper", res.Split.Swapper())
	e.metrics.AddTax(label, "badge", res.Split.Badge())
	e.metrics.AddTax(label, "treasury", res.Split.Treasury())
	e.metrics.AddRoundingDust("tax", res.Split.Dust)
	if res.RewardLogFull {
		e.metrics.ObserveRewardLogDrop()
	}
}

// loadLedger returns the reward ledger of denomination. A ledger that has
// never been flushed counts its period from the coordinator launch.
func (e *Engine) loadLedger(st State, g *Global, denomination solana.PublicKey) (*tax.RewardLedger, error) {
	ledger, err := tax.LoadLedger(st, denomination)
	if err != nil {
		return nil, err
	}
	if ledger.LastFlush == 0 {
		ledger.LastFlush = g.LaunchedAt
	}
	return ledger, nil
}
