package config

// Telemetry configures the OTLP exporters. Headers uses the OTEL
// "key=value,key2=value2" form.
type Telemetry struct {
	Endpoint string `toml:"Endpoint" yaml:"endpoint"`
	Insecure bool   `toml:"Insecure" yaml:"insecure"`
	Headers  string `toml:"Headers" yaml:"headers"`
	Traces   bool   `toml:"Traces" yaml:"traces"`
	Metrics  bool   `toml:"Metrics" yaml:"metrics"`
}

// RateLimit throttles RPC clients per remote address.
type RateLimit struct {
	RequestsPerSecond float64 `toml:"RequestsPerSecond" yaml:"requests_per_second"`
	Burst             int     `toml:"Burst" yaml:"burst"`
}

// Pauses lets operators stop modules without a redeploy.
type Pauses struct {
	Swap bool `toml:"Swap" yaml:"swap"`
}

// Coordinator holds the protocol-wide knobs. Amounts ending in SOL are
// decimal strings ("0.5", "300"); accounts are base58 keys and authorities
// hex-encoded BLS public keys. At least one authority is required.
type Coordinator struct {
	TaxBps                    uint64   `toml:"TaxBps" yaml:"tax_bps"`
	LiquidityBps              uint64   `toml:"LiquidityBps" yaml:"liquidity_bps"`
	SwapperBps                uint64   `toml:"SwapperBps" yaml:"swapper_bps"`
	BadgeBps                  uint64   `toml:"BadgeBps" yaml:"badge_bps"`
	TreasuryBps               uint64   `toml:"TreasuryBps" yaml:"treasury_bps"`
	AntiSnipeSeconds          int64    `toml:"AntiSnipeSeconds" yaml:"anti_snipe_seconds"`
	DistributionPeriodSeconds int64    `toml:"DistributionPeriodSeconds" yaml:"distribution_period_seconds"`
	MintSuffix                string   `toml:"MintSuffix" yaml:"mint_suffix"`
	Authorities               []string `toml:"Authorities" yaml:"authorities"`
	LiquidityPool             string   `toml:"LiquidityPool" yaml:"liquidity_pool"`
	TreasuryVault             string   `toml:"TreasuryVault" yaml:"treasury_vault"`
	RewardsVault              string   `toml:"RewardsVault" yaml:"rewards_vault"`
	Treasury                  string   `toml:"Treasury" yaml:"treasury"`
	BadgeMint                 string   `toml:"BadgeMint" yaml:"badge_mint"`
	BadgeBuyThreshold         uint64   `toml:"BadgeBuyThreshold" yaml:"badge_buy_threshold"`
	AirdropMaxClaimers        uint64   `toml:"AirdropMaxClaimers" yaml:"airdrop_max_claimers"`
	CaptureCapacity           uint64   `toml:"CaptureCapacity" yaml:"capture_capacity"`
	VelocityThresholdsSOL     []string `toml:"VelocityThresholdsSOL" yaml:"velocity_thresholds_sol"`
	VelocityCapsSOL           []string `toml:"VelocityCapsSOL" yaml:"velocity_caps_sol"`
}

// Asset holds the launch and swap knobs shared by every asset.
type Asset struct {
	AntiSnipeSeconds        int64    `toml:"AntiSnipeSeconds" yaml:"anti_snipe_seconds"`
	BondThresholdSOL        string   `toml:"BondThresholdSOL" yaml:"bond_threshold_sol"`
	PoolSeedSOL             string   `toml:"PoolSeedSOL" yaml:"pool_seed_sol"`
	PoolFeeBps              uint64   `toml:"PoolFeeBps" yaml:"pool_fee_bps"`
	MintSuffix              string   `toml:"MintSuffix" yaml:"mint_suffix"`
	MinSupply               uint64   `toml:"MinSupply" yaml:"min_supply"`
	MaxSupply               uint64   `toml:"MaxSupply" yaml:"max_supply"`
	MaxBurnPercent          uint64   `toml:"MaxBurnPercent" yaml:"max_burn_percent"`
	MaxAllies               int      `toml:"MaxAllies" yaml:"max_allies"`
	MaxAllocationBps        uint64   `toml:"MaxAllocationBps" yaml:"max_allocation_bps"`
	MaxDelegations          uint64   `toml:"MaxDelegations" yaml:"max_delegations"`
	DelegationWindowSeconds int64    `toml:"DelegationWindowSeconds" yaml:"delegation_window_seconds"`
	AirdropMinClaimers      uint64   `toml:"AirdropMinClaimers" yaml:"airdrop_min_claimers"`
	AirdropDivisor          uint64   `toml:"AirdropDivisor" yaml:"airdrop_divisor"`
	MaxLiquidityBurnPercent uint64   `toml:"MaxLiquidityBurnPercent" yaml:"max_liquidity_burn_percent"`
	TopTierValuationsSOL    []uint64 `toml:"TopTierValuationsSOL" yaml:"top_tier_valuations_sol"`
	SellCooldowns           []uint64 `toml:"SellCooldowns" yaml:"sell_cooldowns"`
	VelocityThresholdsSOL   []string `toml:"VelocityThresholdsSOL" yaml:"velocity_thresholds_sol"`
	VelocityCapsSOL         []string `toml:"VelocityCapsSOL" yaml:"velocity_caps_sol"`
}
