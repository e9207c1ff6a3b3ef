// Package asset is the per-asset swap orchestrator. It launches assets on an
// internal bonding curve, gates every swap, delegates tax collection to the
// coordinator and graduates assets to an AMM pool once the curve fills.
package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"safepump/core/events"
	"safepump/core/state"
	"safepump/crypto"
	"safepump/native/common"
	"safepump/native/coordinator"
	"safepump/native/vault"
	"safepump/observability/metrics"
)

var (
	errInvalidParams = errors.New("asset: invalid params")
	errNilState      = errors.New("asset: state not configured")

	ErrAssetExists             = errors.New("asset: already launched")
	ErrAssetNotFound           = errors.New("asset: not launched")
	ErrTraderExists            = errors.New("asset: trader already registered")
	ErrInvalidMintSuffix       = errors.New("asset: mint lacks required suffix")
	ErrInvalidSupply           = errors.New("asset: total supply out of range")
	ErrInvalidTopTier          = errors.New("asset: unsupported top-tier valuation")
	ErrInvalidCooldown         = errors.New("asset: unsupported sell cooldown")
	ErrInvalidBurnPercent      = errors.New("asset: burn percent too high")
	ErrInvalidAllocation       = errors.New("asset: invalid ally allocation")
	ErrInvalidLPPercent        = errors.New("asset: lp percent does not match allocation")
	ErrInvalidSwapCaps         = errors.New("asset: swap caps must be within (0, 10000] bps")
	ErrUnauthorized            = errors.New("asset: signer is not the deployer")
	ErrNotBonded               = errors.New("asset: no pool yet")
	ErrAssetBonded             = errors.New("asset: already bonded")
	ErrAirdropNotTriggered     = errors.New("asset: not enough airdrop claimers")
	ErrAirdropAlreadyTriggered = errors.New("asset: airdrop already triggered")
	ErrInvalidAmount           = errors.New("asset: amount must be positive")
)

// SwapDelegate is the coordinator surface an asset depends on.
type SwapDelegate interface {
	Authenticate(st coordinator.State, req coordinator.TaxRequest) (*vault.Vault, error)
	CollectTax(ctx context.Context, st coordinator.State, env common.Env, req coordinator.TaxRequest) (coordinator.TaxResult, error)
	RecordTax(res coordinator.TaxResult)
	RegisterAsset(st coordinator.State, mint, instance, deployer solana.PublicKey) error
	CaptureSwapper(st coordinator.State, user solana.PublicKey) (bool, error)
	Claimers(st coordinator.State, mint solana.PublicKey) ([]solana.PublicKey, error)
}

// Exchange executes the leg of a bonded asset.
type Exchange interface {
	Swap(ctx context.Context, st common.Store, leg common.Leg) (uint64, error)
}

// PoolFactory creates the pool an asset graduates to and manages its LP
// supply.
type PoolFactory interface {
	CreatePool(ctx context.Context, st common.Store, seed common.PoolSeed) (solana.PublicKey, error)
	LPMint(pool solana.PublicKey) (solana.PublicKey, error)
	BurnLP(st common.Store, pool, owner solana.PublicKey, amount uint64) error
}

// Engine wires asset business logic with its coordinator, exchange and state.
type Engine struct {
	params   Params
	delegate SwapDelegate
	exchange Exchange
	pools    PoolFactory

	state   *state.Manager
	emitter events.Emitter
	pauses  common.PauseView
	logger  *slog.Logger
	metrics *metrics.SwapMetrics
	tracer  trace.Tracer
}

// NewEngine constructs an asset engine.
func NewEngine(params Params, delegate SwapDelegate, exchange Exchange, pools PoolFactory) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if delegate == nil || exchange == nil || pools == nil {
		return nil, fmt.Errorf("%w: coordinator, exchange and pool factory are required", errInvalidParams)
	}
	return &Engine{
		params:   params,
		delegate: delegate,
		exchange: exchange,
		pools:    pools,
		emitter:  events.NoopEmitter{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("safepump/native/asset"),
	}, nil
}

func (e *Engine) Params() Params { return e.params }

// SetState configures the state manager Swap opens transactions on.
func (e *Engine) SetState(mgr *state.Manager) { e.state = mgr }

// SetEmitter configures where committed swap events go.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
}

func (e *Engine) SetMetrics(m *metrics.SwapMetrics) { e.metrics = m }

// Asset returns the state of a launched asset.
func (e *Engine) Asset(st coordinator.State, mint solana.PublicKey) (*AssetState, error) {
	a, ok, err := loadAsset(st, mint)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, mint)
	}
	return a, nil
}

// Trader returns the swap history of user on mint.
func (e *Engine) Trader(st coordinator.State, user, mint solana.PublicKey) (*UserSwapState, bool, error) {
	return loadUser(st, user, mint)
}

// LaunchParams are the deployer's choices for a new asset.
type LaunchParams struct {
	Mint                solana.PublicKey
	Deployer            solana.PublicKey
	TotalSupply         uint64
	BurnPercent         uint64
	LPPercent           uint64
	DeployerAmount      uint64
	AllyWallets         []solana.PublicKey
	AllyAmounts         []uint64
	SwapFeeBps          uint64
	MaxBuyBps           uint64
	MaxSellBps          uint64
	SellCooldown        uint64
	TopTierValuationSOL uint64
	AirdropEnabled      bool
}

// Message returns the payload the deployer signs for lp.
func (lp LaunchParams) Message() crypto.LaunchMessage {
	return crypto.LaunchMessage{
		Mint:                lp.Mint,
		Deployer:            lp.Deployer,
		TotalSupply:         lp.TotalSupply,
		BurnPercent:         lp.BurnPercent,
		LPPercent:           lp.LPPercent,
		DeployerAmount:      lp.DeployerAmount,
		SwapFeeBps:          lp.SwapFeeBps,
		MaxBuyBps:           lp.MaxBuyBps,
		MaxSellBps:          lp.MaxSellBps,
		SellCooldown:        lp.SellCooldown,
		TopTierValuationSOL: lp.TopTierValuationSOL,
		AirdropEnabled:      lp.AirdropEnabled,
		AllyWallets:         lp.AllyWallets,
		AllyAmounts:         lp.AllyAmounts,
	}
}

func (e *Engine) validateLaunch(lp LaunchParams) error {
	if !crypto.HasSuffix(lp.Mint, e.params.MintSuffix) {
		return fmt.Errorf("%w: %s does not end in %q", ErrInvalidMintSuffix, lp.Mint, e.params.MintSuffix)
	}
	if lp.TotalSupply < e.params.MinSupply || lp.TotalSupply > e.params.MaxSupply {
		return fmt.Errorf("%w: %d", ErrInvalidSupply, lp.TotalSupply)
	}
	if !slices.Contains(e.params.TopTierValuationsSOL, lp.TopTierValuationSOL) {
		return fmt.Errorf("%w: %d SOL", ErrInvalidTopTier, lp.TopTierValuationSOL)
	}
	if !slices.Contains(e.params.SellCooldowns, lp.SellCooldown) {
		return fmt.Errorf("%w: %ds", ErrInvalidCooldown, lp.SellCooldown)
	}
	if lp.BurnPercent > e.params.MaxBurnPercent {
		return fmt.Errorf("%w: %d%%", ErrInvalidBurnPercent, lp.BurnPercent)
	}
	if lp.MaxBuyBps == 0 || lp.MaxBuyBps > common.BpsDenominator ||
		lp.MaxSellBps == 0 || lp.MaxSellBps > common.BpsDenominator {
		return ErrInvalidSwapCaps
	}
	if len(lp.AllyWallets) > e.params.MaxAllies || len(lp.AllyWallets) != len(lp.AllyAmounts) {
		return fmt.Errorf("%w: %d wallets, %d amounts", ErrInvalidAllocation, len(lp.AllyWallets), len(lp.AllyAmounts))
	}
	allocated := lp.DeployerAmount
	for _, amount := range lp.AllyAmounts {
		sum, err := common.CheckedAdd(allocated, amount)
		if err != nil {
			return err
		}
		allocated = sum
	}
	allocationBps, err := common.MulDiv(allocated, common.BpsDenominator, lp.TotalSupply)
	if err != nil {
		return err
	}
	if allocationBps > e.params.MaxAllocationBps {
		return fmt.Errorf("%w: %d bps", ErrInvalidAllocation, allocationBps)
	}
	if lp.LPPercent != 100-allocationBps/100 {
		return fmt.Errorf("%w: want %d, got %d", ErrInvalidLPPercent, 100-allocationBps/100, lp.LPPercent)
	}
	return nil
}

// Launch creates an asset: it mints the post-burn deployer and ally
// allocations, reserves the LP share on the curve, seeds the curve with SOL
// from the deployer and registers the asset with the coordinator.
func (e *Engine) Launch(ctx context.Context, st coordinator.State, env common.Env, lp LaunchParams) (*AssetState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.validateLaunch(lp); err != nil {
		return nil, err
	}
	if _, ok, err := loadAsset(st, lp.Mint); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetExists, lp.Mint)
	}

	a := &AssetState{
		Mint:        lp.Mint,
		Deployer:    lp.Deployer,
		TotalSupply: lp.TotalSupply,
		LaunchedAt:  env.Now,
		Config: Config{
			SwapFeeBps:          lp.SwapFeeBps,
			MaxBuyBps:           lp.MaxBuyBps,
			MaxSellBps:          lp.MaxSellBps,
			SellCooldown:        lp.SellCooldown,
			TopTierValuationSOL: lp.TopTierValuationSOL,
			BurnPercent:         lp.BurnPercent,
			LPPercent:           lp.LPPercent,
			AirdropEnabled:      lp.AirdropEnabled,
		},
		DeployerAmount: lp.DeployerAmount,
		AllyWallets:    slices.Clone(lp.AllyWallets),
		AllyAmounts:    slices.Clone(lp.AllyAmounts),
	}

	recipients := append([]solana.PublicKey{lp.Deployer}, lp.AllyWallets...)
	amounts := append([]uint64{lp.DeployerAmount}, lp.AllyAmounts...)
	for i, to := range recipients {
		kept, err := common.MulDiv(amounts[i], 100-lp.BurnPercent, 100)
		if err != nil {
			return nil, err
		}
		if err := st.Mint(to, lp.Mint, kept); err != nil {
			return nil, err
		}
		a.Burned += amounts[i] - kept
	}

	reserveTokens, err := common.MulDiv(lp.TotalSupply, lp.LPPercent, 100)
	if err != nil {
		return nil, err
	}
	a.ReserveTokens = reserveTokens
	curve, err := CurveVault(lp.Mint)
	if err != nil {
		return nil, err
	}
	if err := st.Transfer(lp.Deployer, curve, common.NativeMint, e.params.PoolSeedLamports); err != nil {
		return nil, fmt.Errorf("asset: seed curve: %w", err)
	}
	a.ReserveSOL = e.params.PoolSeedLamports

	instance, err := InstanceAddress(lp.Mint)
	if err != nil {
		return nil, err
	}
	if err := e.delegate.RegisterAsset(st, lp.Mint, instance, lp.Deployer); err != nil {
		return nil, err
	}
	if err := saveAsset(st, a); err != nil {
		return nil, err
	}
	st.Emit(events.AssetLaunched{
		Mint:        a.Mint,
		Deployer:    a.Deployer,
		TotalSupply: a.TotalSupply,
		Burned:      a.Burned,
		LaunchedAt:  a.LaunchedAt,
	})
	e.logger.Info("asset launched", "mint", a.Mint.String(), "deployer", a.Deployer.String(), "supply", a.TotalSupply)
	return a, nil
}

// RegisterTrader links user's vault to a fresh swap history on mint.
func (e *Engine) RegisterTrader(st coordinator.State, user, mint solana.PublicKey) (*UserSwapState, error) {
	if _, err := e.Asset(st, mint); err != nil {
		return nil, err
	}
	v, err := vault.MustLoad(st, user)
	if err != nil {
		return nil, err
	}
	if _, ok, err := loadUser(st, user, mint); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("%w: %s", ErrTraderExists, user)
	}
	us := &UserSwapState{Vault: v.Owner}
	if err := saveUser(st, user, mint, us); err != nil {
		return nil, err
	}
	return us, nil
}

// BurnLiquidity burns percent of the LP tokens the curve vault received at
// bonding. Only the deployer may call it.
func (e *Engine) BurnLiquidity(st coordinator.State, owner, mint solana.PublicKey, percent uint64) (uint64, error) {
	a, err := e.Asset(st, mint)
	if err != nil {
		return 0, err
	}
	if !a.Deployer.Equals(owner) {
		return 0, ErrUnauthorized
	}
	if percent > e.params.MaxLiquidityBurn {
		return 0, fmt.Errorf("%w: %d%%", ErrInvalidBurnPercent, percent)
	}
	if !a.Bonded {
		return 0, ErrNotBonded
	}
	curve, err := CurveVault(mint)
	if err != nil {
		return 0, err
	}
	held, err := st.Balance(curve, a.LPMint)
	if err != nil {
		return 0, err
	}
	amount, err := common.MulDiv(held, percent, 100)
	if err != nil {
		return 0, err
	}
	if err := e.pools.BurnLP(st, a.Pool, curve, amount); err != nil {
		return 0, err
	}
	st.Emit(events.LiquidityBurned{Mint: mint, Pool: a.Pool, Percent: percent, Amount: amount})
	return amount, nil
}

// TriggerAirdrop pays TotalSupply/AirdropDivisor out of the curve's token
// reserve to every coordinator-registered claimer. It runs once, before
// bonding, and only for the deployer.
func (e *Engine) TriggerAirdrop(st coordinator.State, owner, mint solana.PublicKey) (uint64, error) {
	a, err := e.Asset(st, mint)
	if err != nil {
		return 0, err
	}
	if !a.Deployer.Equals(owner) {
		return 0, ErrUnauthorized
	}
	if a.AirdropTriggered {
		return 0, ErrAirdropAlreadyTriggered
	}
	if a.Bonded {
		return 0, ErrAssetBonded
	}
	claimers, err := e.delegate.Claimers(st, mint)
	if err != nil {
		return 0, err
	}
	if uint64(len(claimers)) < e.params.AirdropMinClaimers {
		return 0, fmt.Errorf("%w: %d of %d", ErrAirdropNotTriggered, len(claimers), e.params.AirdropMinClaimers)
	}
	perUser := a.TotalSupply / e.params.AirdropDivisor
	total, err := common.MulDiv(perUser, uint64(len(claimers)), 1)
	if err != nil {
		return 0, err
	}
	if a.ReserveTokens, err = common.CheckedSub(a.ReserveTokens, total); err != nil {
		return 0, err
	}
	for _, claimer := range claimers {
		if err := st.Mint(claimer, mint, perUser); err != nil {
			return 0, err
		}
	}
	a.AirdropTriggered = true
	if err := saveAsset(st, a); err != nil {
		return 0, err
	}
	st.Emit(events.AirdropTriggered{Mint: mint, Claimers: uint64(len(claimers)), PerUser: perUser})
	return perUser, nil
}
