// Package coordinator is the protocol-wide authority: it owns the global swap
// counters, the asset registry, user vaults, the tax routine every asset
// delegates to, and reward distribution.
package coordinator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"safepump/core/events"
	"safepump/crypto"
	"safepump/native/common"
	"safepump/native/tax"
	"safepump/native/vault"
	"safepump/observability/metrics"
)

var (
	ErrNotInitialized         = errors.New("coordinator: not initialized")
	ErrAlreadyInitialized     = errors.New("coordinator: already initialized")
	ErrInvalidMintSuffix      = errors.New("coordinator: mint lacks required suffix")
	ErrAssetAlreadyRegistered = errors.New("coordinator: asset already registered")
	ErrAssetNotRegistered     = errors.New("coordinator: asset not registered")
	ErrUnauthorized           = errors.New("coordinator: unauthorized signer")
	ErrInvalidAmount          = errors.New("coordinator: amount must be positive")
	ErrInsufficientBuySwaps   = errors.New("coordinator: not enough buys for a badge")
	ErrAirdropClaimed         = errors.New("coordinator: airdrop already claimed")
	ErrAirdropLimitExceeded   = errors.New("coordinator: airdrop claimer limit reached")
)

// Engine applies coordinator operations to a caller-supplied State. It keeps
// no state of its own between calls.
type Engine struct {
	params  Params
	pauses  common.PauseView
	logger  *slog.Logger
	metrics *metrics.SwapMetrics
}

// NewEngine validates params and returns an engine.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params, logger: slog.Default()}, nil
}

// Params returns the engine configuration.
func (e *Engine) Params() Params { return e.params }

// SetPauses configures the operator pause switches.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetLogger configures the logger used by the engine.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
}

// SetMetrics configures the metrics sink. A nil sink disables metrics.
func (e *Engine) SetMetrics(m *metrics.SwapMetrics) { e.metrics = m }

// Initialize creates the global state once.
func (e *Engine) Initialize(st State, env common.Env, treasury solana.PublicKey) (*Global, error) {
	if _, err := loadGlobal(st); err == nil {
		return nil, ErrAlreadyInitialized
	} else if !errors.Is(err, ErrNotInitialized) {
		return nil, err
	}
	if treasury.IsZero() {
		return nil, fmt.Errorf("%w: treasury wallet required", errInvalidParams)
	}
	g := &Global{Initialized: true, Treasury: treasury, LaunchedAt: env.Now}
	if err := saveGlobal(st, g); err != nil {
		return nil, err
	}
	st.Emit(events.CoordinatorInitialized{Treasury: treasury, LaunchedAt: env.Now})
	return g, nil
}

// Global returns the initialised global state.
func (e *Engine) Global(st State) (*Global, error) {
	return loadGlobal(st)
}

// RegisterAsset records the handshake between an asset mint and the instance
// that manages it.
func (e *Engine) RegisterAsset(st State, mint, instance, deployer solana.PublicKey) error {
	if _, err := loadGlobal(st); err != nil {
		return err
	}
	if !crypto.HasSuffix(mint, e.params.MintSuffix) {
		return fmt.Errorf("%w: %s does not end in %q", ErrInvalidMintSuffix, mint, e.params.MintSuffix)
	}
	if mint.Equals(e.params.BadgeMint) {
		return fmt.Errorf("%w: %s is the badge mint", ErrUnauthorized, mint)
	}
	entries, err := loadRegistry(st)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Mint.Equals(mint) && entry.Instance.Equals(instance) {
			return fmt.Errorf("%w: %s", ErrAssetAlreadyRegistered, mint)
		}
	}
	entries = append(entries, RegistryEntry{Mint: mint, Instance: instance, Deployer: deployer})
	if err := st.KVPut(registryKey, entries); err != nil {
		return err
	}
	st.Emit(events.AssetRegistered{Mint: mint, Instance: instance, Deployer: deployer})
	return nil
}

// Registry lists every handshake in registration order.
func (e *Engine) Registry(st State) ([]RegistryEntry, error) {
	return loadRegistry(st)
}

// Registered returns the first registry entry for mint.
func (e *Engine) Registered(st State, mint solana.PublicKey) (RegistryEntry, bool, error) {
	entries, err := loadRegistry(st)
	if err != nil {
		return RegistryEntry{}, false, err
	}
	for _, entry := range entries {
		if entry.Mint.Equals(mint) {
			return entry, true, nil
		}
	}
	return RegistryEntry{}, false, nil
}

// RegisterVault creates owner's replay vault at nonce zero.
func (e *Engine) RegisterVault(st State, owner solana.PublicKey) (*vault.Vault, error) {
	if _, err := loadGlobal(st); err != nil {
		return nil, err
	}
	v, err := vault.Register(st, owner)
	if err != nil {
		return nil, err
	}
	st.Emit(events.VaultRegistered{Owner: owner})
	return v, nil
}

// WithdrawTreasury moves funds out of the treasury vault. Only the treasury
// wallet recorded at initialisation may sign.
func (e *Engine) WithdrawTreasury(st State, signer, mint solana.PublicKey, amount uint64, destination solana.PublicKey) error {
	g, err := loadGlobal(st)
	if err != nil {
		return err
	}
	if !g.Treasury.Equals(signer) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, signer)
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if err := st.Transfer(e.params.TreasuryVault, destination, mint, amount); err != nil {
		return err
	}
	st.Emit(events.TreasuryWithdrawn{Mint: mint, Amount: amount, Destination: destination})
	return nil
}

// MintBadge mints one token of the configured badge mint to user once they
// have made enough buys. Repeated calls after a successful mint are no-ops and
// report false.
func (e *Engine) MintBadge(st State, user solana.PublicKey) (bool, error) {
	badgeMint := e.params.BadgeMint
	holders, err := tax.LoadHolders(st)
	if err != nil {
		return false, err
	}
	buys := holders.BuyCount(user)
	if buys < e.params.BadgeBuyThreshold {
		return false, fmt.Errorf("%w: %d of %d", ErrInsufficientBuySwaps, buys, e.params.BadgeBuyThreshold)
	}
	claimKey := joinKey(badgeClaimPrefix, badgeMint, user)
	minted, err := flagSet(st, claimKey)
	if err != nil || minted {
		return false, err
	}
	if err := st.Mint(user, badgeMint, 1); err != nil {
		return false, err
	}
	if err := st.KVPut(claimKey, true); err != nil {
		return false, err
	}
	st.Emit(events.BadgeMinted{Holder: user, BadgeMint: badgeMint, BuyCount: buys})
	return true, nil
}

// ClaimAirdrop adds user to the airdrop list of mint.
func (e *Engine) ClaimAirdrop(st State, user, mint solana.PublicKey) error {
	if _, ok, err := e.Registered(st, mint); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotRegistered, mint)
	}
	claimKey := joinKey(airdropClaimPrefix, mint, user)
	claimed, err := flagSet(st, claimKey)
	if err != nil {
		return err
	}
	if claimed {
		return fmt.Errorf("%w: %s", ErrAirdropClaimed, user)
	}
	reg, err := loadAirdrop(st, mint)
	if err != nil {
		return err
	}
	if uint64(len(reg.Claimers)) >= e.params.AirdropMaxClaimers {
		return fmt.Errorf("%w: %d", ErrAirdropLimitExceeded, e.params.AirdropMaxClaimers)
	}
	reg.Claimers = append(reg.Claimers, user)
	if err := saveAirdrop(st, reg); err != nil {
		return err
	}
	if err := st.KVPut(claimKey, true); err != nil {
		return err
	}
	st.Emit(events.AirdropClaimed{Mint: mint, Claimer: user})
	return nil
}

// Claimers returns the airdrop claimers of mint in claim order.
func (e *Engine) Claimers(st State, mint solana.PublicKey) ([]solana.PublicKey, error) {
	reg, err := loadAirdrop(st, mint)
	if err != nil {
		return nil, err
	}
	return reg.Claimers, nil
}

// CaptureSwapper remembers user as a swapper of an airdrop-enabled asset.
// Known swappers and captures beyond capacity are ignored.
func (e *Engine) CaptureSwapper(st State, user solana.PublicKey) (bool, error) {
	key := joinKey(capturePrefix, user)
	seen, err := flagSet(st, key)
	if err != nil || seen {
		return false, err
	}
	var count uint64
	if _, err := st.KVGet(captureCountKey, &count); err != nil {
		return false, err
	}
	if count >= e.params.CaptureCapacity {
		return false, nil
	}
	count++
	if err := st.KVPut(key, true); err != nil {
		return false, err
	}
	if err := st.KVPut(captureCountKey, count); err != nil {
		return false, err
	}
	st.Emit(events.SwapperCaptured{Swapper: user, Total: count})
	return true, nil
}

// Captured reports the number of captured swappers.
func (e *Engine) Captured(st State) (uint64, error) {
	var count uint64
	if _, err := st.KVGet(captureCountKey, &count); err != nil {
		return 0, err
	}
	return count, nil
}
