package asset

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"safepump/core/events"
	"safepump/native/admission"
	"safepump/native/common"
	"safepump/native/coordinator"
	"safepump/native/tier"
	"safepump/native/vault"
)

// Swap runs req in its own state transaction and commits it only when every
// step succeeded. A rejected swap leaves no trace: the nonce, balances,
// windows and reserves are untouched and no event is emitted.
func (e *Engine) Swap(ctx context.Context, env common.Env, req Request) (Receipt, error) {
	if e.state == nil {
		return Receipt{}, errNilState
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	ctx, span := e.tracer.Start(ctx, "asset.swap")
	defer span.End()
	span.SetAttributes(
		attribute.String("request_id", req.RequestID),
		attribute.String("mint", req.Mint.String()),
		attribute.String("direction", req.Direction.String()),
	)

	tx := e.state.Begin()
	receipt, err := e.Execute(ctx, tx, env, req)
	if err != nil {
		tx.Discard()
		class := common.Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(class))
		e.metrics.ObserveRejection(string(class))
		e.logger.Debug("swap rejected",
			"requestId", req.RequestID,
			"user", req.User.String(),
			"class", string(class),
			"error", err)
		return Receipt{}, err
	}
	if err := tx.Commit(e.emitter); err != nil {
		tx.Discard()
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit")
		return Receipt{}, err
	}
	e.metrics.ObserveSwap(receipt.Direction.String(), receipt.Venue)
	e.metrics.SetVelocity("asset", receipt.windowBought)
	e.delegate.RecordTax(receipt.taxed)
	if receipt.bondedNow {
		e.metrics.ObserveBonding()
		e.logger.Info("asset bonded",
			"mint", req.Mint.String(),
			"pool", receipt.pool.String(),
			"reserveSol", receipt.bondedReserve)
	}
	e.logger.Info("swap committed",
		"requestId", receipt.RequestID,
		"user", req.User.String(),
		"mint", req.Mint.String(),
		"direction", receipt.Direction.String(),
		"amount", receipt.Amount,
		"out", receipt.AmountOut,
		"venue", receipt.Venue)
	return receipt, nil
}

// Execute applies req to st without committing. Callers own the transaction
// and must discard it when Execute fails. Metrics are reported by Swap once
// the transaction commits.
func (e *Engine) Execute(ctx context.Context, st coordinator.State, env common.Env, req Request) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if err := common.Guard(e.pauses, common.ModuleSwap); err != nil {
		return Receipt{}, err
	}
	if req.Amount == 0 {
		return Receipt{}, ErrInvalidAmount
	}
	a, err := e.Asset(st, req.Mint)
	if err != nil {
		return Receipt{}, err
	}
	us, ok, err := loadUser(st, req.User, req.Mint)
	if err != nil {
		return Receipt{}, err
	}
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s has no swap state for %s", common.ErrVaultNotRegistered, req.User, req.Mint)
	}

	// Pending -> Authenticated
	taxReq := req.taxRequest()
	v, err := e.delegate.Authenticate(st, taxReq)
	if err != nil {
		return Receipt{}, err
	}

	// Authenticated -> Admitted
	if err := admission.AntiSnipe(a.SwapCount, a.LaunchedAt, env.Now, e.params.AntiSnipeSeconds); err != nil {
		return Receipt{}, err
	}
	if err := admission.SellCooldown(req.Direction, us.LastSwapAt, env.Now, int64(a.Config.SellCooldown)); err != nil {
		return Receipt{}, err
	}
	delegation, err := admission.CheckDelegation(e.params.Delegation, env.Now, admission.DelegationCounter{
		WindowStart: us.LastDelegationAt,
		Count:       us.DelegationCount,
	})
	if err != nil {
		return Receipt{}, err
	}
	windowBought, err := e.admit(st, env, a, req)
	if err != nil {
		return Receipt{}, err
	}
	if a.Config.AirdropEnabled {
		if _, err := e.delegate.CaptureSwapper(st, req.User); err != nil {
			return Receipt{}, err
		}
	}

	// Admitted -> Taxed
	taxed, err := e.delegate.CollectTax(ctx, st, env, taxReq)
	if err != nil {
		return Receipt{}, err
	}

	// Taxed -> Executed
	venue := VenueCurve
	var out uint64
	if a.Bonded {
		venue = VenueAMM
		out, err = e.swapPool(ctx, st, a, req, taxed.Net)
	} else {
		out, err = e.swapCurve(st, a, req, taxed.Net)
	}
	if err != nil {
		return Receipt{}, err
	}
	bondedNow := !a.Bonded && a.ReserveSOL >= e.params.BondThreshold
	if bondedNow {
		if err := e.bond(ctx, st, a); err != nil {
			return Receipt{}, err
		}
	}

	// Executed -> Committed
	if a.SwapCount, err = common.CheckedAdd(a.SwapCount, 1); err != nil {
		return Receipt{}, err
	}
	if err := saveAsset(st, a); err != nil {
		return Receipt{}, err
	}
	us.LastSwapAt = env.Now
	us.LastDelegationAt = delegation.WindowStart
	us.DelegationCount = delegation.Count
	if err := saveUser(st, req.User, req.Mint, us); err != nil {
		return Receipt{}, err
	}
	if err := v.Advance(req.Authority); err != nil {
		return Receipt{}, err
	}
	if err := vault.Save(st, v); err != nil {
		return Receipt{}, err
	}
	st.Emit(events.SwapExecuted{
		RequestID: req.RequestID,
		Mint:      req.Mint,
		Trader:    req.User,
		Direction: req.Direction.String(),
		AmountIn:  req.Amount,
		Net:       taxed.Net,
		AmountOut: out,
		Nonce:     v.Nonce,
		Venue:     venue,
	})
	return Receipt{
		RequestID:    req.RequestID,
		Direction:    req.Direction,
		Amount:       req.Amount,
		Tax:          taxed.Split.Total,
		Denomination: taxed.Denomination,
		Net:          taxed.Net,
		AmountOut:    out,
		Venue:        venue,
		Bonded:       a.Bonded,
		Nonce:        v.Nonce,

		taxed:         taxed,
		windowBought:  windowBought,
		bondedNow:     bondedNow,
		pool:          a.Pool,
		bondedReserve: a.ReserveSOL,
	}, nil
}

// admit applies the per-asset velocity window and the per-swap cap, both
// resolved against the live valuation. It returns the buy volume the window
// holds once req is admitted.
func (e *Engine) admit(st coordinator.State, env common.Env, a *AssetState, req Request) (uint64, error) {
	valuation, err := tier.Valuation(a.ReserveSOL, a.TotalSupply, a.ReserveTokens)
	if err != nil {
		return 0, err
	}
	window, err := admission.LoadWindow(st, a.Mint)
	if err != nil {
		return 0, err
	}
	window, err = admission.Admit(window, env.Slot, e.params.Velocity.Lookup(valuation), req.Amount, req.Direction)
	if err != nil {
		return 0, err
	}
	if err := admission.SaveWindow(st, a.Mint, window); err != nil {
		return 0, err
	}

	topTier, err := common.MulDiv(a.Config.TopTierValuationSOL, common.LamportsPerSOL, 1)
	if err != nil {
		return 0, err
	}
	bps := tier.CapBps(e.params.Caps, valuation, topTier)
	base, configured := a.TotalSupply, a.Config.MaxBuyBps
	if !req.Direction.IsBuy() {
		if base, err = st.Balance(req.User, a.Mint); err != nil {
			return 0, err
		}
		configured = a.Config.MaxSellBps
	}
	if err := admission.CheckSwapCap(req.Direction, req.Amount, base, bps, configured); err != nil {
		return 0, err
	}
	return window.TotalBought, nil
}

// swapCurve trades net against the constant-ratio curve.
func (e *Engine) swapCurve(st coordinator.State, a *AssetState, req Request, net uint64) (uint64, error) {
	curve, err := CurveVault(a.Mint)
	if err != nil {
		return 0, err
	}
	if req.Direction.IsBuy() {
		reserveSOL := a.ReserveSOL
		if reserveSOL == 0 {
			reserveSOL = 1
		}
		tokensOut, err := common.MulDiv(net, a.ReserveTokens, reserveSOL)
		if err != nil {
			return 0, err
		}
		if tokensOut > a.ReserveTokens {
			return 0, fmt.Errorf("%w: %d tokens of %d", common.ErrInsufficientReserve, tokensOut, a.ReserveTokens)
		}
		if tokensOut < req.MinimumOut {
			return 0, fmt.Errorf("%w: %d < %d", common.ErrSlippageExceeded, tokensOut, req.MinimumOut)
		}
		grown, err := common.CheckedAdd(a.ReserveSOL, net)
		if err != nil {
			return 0, err
		}
		if err := st.Transfer(req.User, curve, common.NativeMint, net); err != nil {
			return 0, err
		}
		if err := st.Mint(req.User, a.Mint, tokensOut); err != nil {
			return 0, err
		}
		a.ReserveSOL = grown
		a.ReserveTokens -= tokensOut
		return tokensOut, nil
	}

	if a.ReserveTokens == 0 {
		return 0, fmt.Errorf("%w: empty token reserve", common.ErrInsufficientReserve)
	}
	solOut, err := common.MulDiv(net, a.ReserveSOL, a.ReserveTokens)
	if err != nil {
		return 0, err
	}
	if solOut > a.ReserveSOL {
		return 0, fmt.Errorf("%w: %d lamports of %d", common.ErrInsufficientReserve, solOut, a.ReserveSOL)
	}
	if solOut < req.MinimumOut {
		return 0, fmt.Errorf("%w: %d < %d", common.ErrSlippageExceeded, solOut, req.MinimumOut)
	}
	grown, err := common.CheckedAdd(a.ReserveTokens, net)
	if err != nil {
		return 0, err
	}
	if err := st.Burn(req.User, a.Mint, net); err != nil {
		return 0, err
	}
	if err := st.Transfer(curve, req.User, common.NativeMint, solOut); err != nil {
		return 0, err
	}
	a.ReserveTokens = grown
	a.ReserveSOL -= solOut
	return solOut, nil
}

// swapPool routes net through the exchange and mirrors the pool reserves.
func (e *Engine) swapPool(ctx context.Context, st coordinator.State, a *AssetState, req Request, net uint64) (uint64, error) {
	out, err := e.exchange.Swap(ctx, st, common.Leg{
		Pool:       a.Pool,
		Mint:       a.Mint,
		Trader:     req.User,
		Direction:  req.Direction,
		AmountIn:   net,
		MinimumOut: req.MinimumOut,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrExchangeRejected, err)
	}
	in, outReserve := &a.ReserveSOL, &a.ReserveTokens
	if !req.Direction.IsBuy() {
		in, outReserve = outReserve, in
	}
	if *in, err = common.CheckedAdd(*in, net); err != nil {
		return 0, err
	}
	if *outReserve, err = common.CheckedSub(*outReserve, out); err != nil {
		return 0, err
	}
	return out, nil
}

// bond moves both curve reserves into a new pool. The token reserve is
// virtual until now and is minted to the curve vault first.
func (e *Engine) bond(ctx context.Context, st coordinator.State, a *AssetState) error {
	curve, err := CurveVault(a.Mint)
	if err != nil {
		return err
	}
	if err := st.Mint(curve, a.Mint, a.ReserveTokens); err != nil {
		return err
	}
	pool, err := e.pools.CreatePool(ctx, st, common.PoolSeed{
		Mint:    a.Mint,
		Creator: curve,
		SOL:     a.ReserveSOL,
		Tokens:  a.ReserveTokens,
	})
	if err != nil {
		return fmt.Errorf("%w: create pool: %w", common.ErrExchangeRejected, err)
	}
	lpMint, err := e.pools.LPMint(pool)
	if err != nil {
		return err
	}
	a.Bonded = true
	a.Pool = pool
	a.LPMint = lpMint
	st.Emit(events.AssetBonded{
		Mint:          a.Mint,
		Pool:          pool,
		ReserveSOL:    a.ReserveSOL,
		ReserveTokens: a.ReserveTokens,
	})
	return nil
}
