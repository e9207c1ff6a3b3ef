package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"safepump/crypto"
	"safepump/native/admission"
	"safepump/native/amm"
	"safepump/native/asset"
	"safepump/native/common"
	"safepump/native/coordinator"
	"safepump/native/tax"
	"safepump/native/tier"
)

var (
	ErrInvalidAmount = errors.New("config: invalid SOL amount")
	ErrInvalidLadder = errors.New("config: invalid ladder")

	lamportsPerSOL = decimal.NewFromInt(int64(common.LamportsPerSOL))
)

// ParseSOL converts a decimal SOL amount into lamports. Fractions below one
// lamport are rejected rather than rounded.
func ParseSOL(raw string) (uint64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, raw)
	}
	lamports := d.Mul(lamportsPerSOL)
	if !lamports.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-lamport precision", ErrInvalidAmount, raw)
	}
	n := lamports.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, raw)
	}
	return n.Uint64(), nil
}

// FormatSOL renders lamports as a decimal SOL string.
func FormatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0).Div(lamportsPerSOL).String()
}

func solOr(raw string, fallback uint64) (uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return ParseSOL(raw)
}

func orDefault[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// ladder overrides base with SOL-denominated thresholds and values. Either
// list may be omitted; a present list must have exactly tier.Size entries.
func ladder(base tier.Ladder, thresholds, values []string) (tier.Ladder, error) {
	for _, field := range []struct {
		name string
		raw  []string
		dst  *[tier.Size]uint64
	}{
		{"thresholds", thresholds, &base.Thresholds},
		{"values", values, &base.Values},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if len(field.raw) != tier.Size {
			return tier.Ladder{}, fmt.Errorf("%w: %d %s, want %d", ErrInvalidLadder, len(field.raw), field.name, tier.Size)
		}
		for i, raw := range field.raw {
			v, err := ParseSOL(raw)
			if err != nil {
				return tier.Ladder{}, err
			}
			field.dst[i] = v
		}
	}
	if err := base.Validate(); err != nil {
		return tier.Ladder{}, fmt.Errorf("%w: %v", ErrInvalidLadder, err)
	}
	return base, nil
}

func account(name, raw string) (solana.PublicKey, error) {
	key, err := crypto.ParseAddress(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("coordinator.%s: %w", name, err)
	}
	return key, nil
}

// CoordinatorParams builds the coordinator parameters, filling unset knobs
// with the production defaults.
func (cfg *Config) CoordinatorParams() (coordinator.Params, error) {
	c := cfg.Coordinator
	p := coordinator.DefaultParams()
	if c.TaxBps != 0 {
		p.Tax = tax.Policy{
			TotalBps:     c.TaxBps,
			LiquidityBps: c.LiquidityBps,
			SwapperBps:   c.SwapperBps,
			BadgeBps:     c.BadgeBps,
			TreasuryBps:  c.TreasuryBps,
		}
	}
	velocity, err := ladder(p.Velocity, c.VelocityThresholdsSOL, c.VelocityCapsSOL)
	if err != nil {
		return p, fmt.Errorf("coordinator velocity: %w", err)
	}
	p.Velocity = velocity
	p.AntiSnipeSeconds = orDefault(c.AntiSnipeSeconds, p.AntiSnipeSeconds)
	p.DistributionPeriod = orDefault(c.DistributionPeriodSeconds, p.DistributionPeriod)
	p.MintSuffix = orDefault(strings.TrimSpace(c.MintSuffix), p.MintSuffix)
	p.BadgeBuyThreshold = orDefault(c.BadgeBuyThreshold, p.BadgeBuyThreshold)
	p.AirdropMaxClaimers = orDefault(c.AirdropMaxClaimers, p.AirdropMaxClaimers)
	p.CaptureCapacity = orDefault(c.CaptureCapacity, p.CaptureCapacity)

	for _, raw := range c.Authorities {
		pk, err := crypto.ParsePublicKey(raw)
		if err != nil {
			return p, fmt.Errorf("coordinator.Authorities: %w", err)
		}
		p.Authorities = append(p.Authorities, pk)
	}
	if p.LiquidityPool, err = account("LiquidityPool", c.LiquidityPool); err != nil {
		return p, err
	}
	if p.TreasuryVault, err = account("TreasuryVault", c.TreasuryVault); err != nil {
		return p, err
	}
	if p.RewardsVault, err = account("RewardsVault", c.RewardsVault); err != nil {
		return p, err
	}
	if strings.TrimSpace(c.BadgeMint) != "" {
		if p.BadgeMint, err = account("BadgeMint", c.BadgeMint); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

// Treasury returns the wallet allowed to withdraw from the treasury vault.
func (cfg *Config) Treasury() (solana.PublicKey, error) {
	return account("Treasury", cfg.Coordinator.Treasury)
}

// AssetParams builds the per-asset parameters.
func (cfg *Config) AssetParams() (asset.Params, error) {
	a := cfg.Asset
	p := asset.DefaultParams()
	velocity, err := ladder(p.Velocity, a.VelocityThresholdsSOL, a.VelocityCapsSOL)
	if err != nil {
		return p, fmt.Errorf("asset velocity: %w", err)
	}
	p.Velocity = velocity
	if p.BondThreshold, err = solOr(a.BondThresholdSOL, p.BondThreshold); err != nil {
		return p, fmt.Errorf("asset.BondThresholdSOL: %w", err)
	}
	if p.PoolSeedLamports, err = solOr(a.PoolSeedSOL, p.PoolSeedLamports); err != nil {
		return p, fmt.Errorf("asset.PoolSeedSOL: %w", err)
	}
	p.AntiSnipeSeconds = orDefault(a.AntiSnipeSeconds, p.AntiSnipeSeconds)
	p.MintSuffix = orDefault(strings.TrimSpace(a.MintSuffix), p.MintSuffix)
	p.MinSupply = orDefault(a.MinSupply, p.MinSupply)
	p.MaxSupply = orDefault(a.MaxSupply, p.MaxSupply)
	p.MaxBurnPercent = orDefault(a.MaxBurnPercent, p.MaxBurnPercent)
	p.MaxAllies = orDefault(a.MaxAllies, p.MaxAllies)
	p.MaxAllocationBps = orDefault(a.MaxAllocationBps, p.MaxAllocationBps)
	p.Delegation = admission.DelegationLimit{
		Max:           orDefault(a.MaxDelegations, p.Delegation.Max),
		WindowSeconds: orDefault(a.DelegationWindowSeconds, p.Delegation.WindowSeconds),
	}
	p.AirdropMinClaimers = orDefault(a.AirdropMinClaimers, p.AirdropMinClaimers)
	p.AirdropDivisor = orDefault(a.AirdropDivisor, p.AirdropDivisor)
	p.MaxLiquidityBurn = orDefault(a.MaxLiquidityBurnPercent, p.MaxLiquidityBurn)
	if len(a.TopTierValuationsSOL) > 0 {
		p.TopTierValuationsSOL = slices.Clone(a.TopTierValuationsSOL)
	}
	if len(a.SellCooldowns) > 0 {
		p.SellCooldowns = slices.Clone(a.SellCooldowns)
	}
	return p, p.Validate()
}

// PoolFeeBps is the reference AMM fee.
func (cfg *Config) PoolFeeBps() uint64 {
	return orDefault(cfg.Asset.PoolFeeBps, amm.DefaultFeeBps)
}

// PauseView returns the operator pause switches keyed by module.
func (cfg *Config) PauseView() common.StaticPauses {
	return common.StaticPauses{common.ModuleSwap: cfg.Pauses.Swap}
}

// Level parses LogLevel, defaulting to info.
func (cfg *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
