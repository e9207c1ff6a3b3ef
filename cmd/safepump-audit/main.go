package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"safepump/config"
	"safepump/native/tier"
)

type ladderReport struct {
	Rule       string   `json:"rule"`
	Thresholds []string `json:"thresholdsSol"`
	Values     []string `json:"values"`
}

type auditReport struct {
	Tax struct {
		TotalBps     uint64 `json:"totalBps"`
		LiquidityBps uint64 `json:"liquidityBps"`
		SwapperBps   uint64 `json:"swapperBps"`
		BadgeBps     uint64 `json:"badgeBps"`
		TreasuryBps  uint64 `json:"treasuryBps"`
	} `json:"tax"`
	CoordinatorVelocity ladderReport `json:"coordinatorVelocity"`
	AssetVelocity       ladderReport `json:"assetVelocity"`
	Caps                ladderReport `json:"capsBps"`
	AntiSnipeSeconds    int64        `json:"antiSnipeSeconds"`
	BondThreshold       string       `json:"bondThresholdSol"`
	PoolSeed            string       `json:"poolSeedSol"`
	PoolFeeBps          uint64       `json:"poolFeeBps"`
	DistributionPeriod  int64        `json:"distributionPeriodSeconds"`
	SwapPaused          bool         `json:"swapPaused"`
	Authorities         []string     `json:"authorities"`
	BadgeMint           string       `json:"badgeMint"`
}

func report(l tier.Ladder, valuesInSOL bool) ladderReport {
	out := ladderReport{Rule: l.Rule.String()}
	for i := 0; i < tier.Size; i++ {
		out.Thresholds = append(out.Thresholds, config.FormatSOL(l.Thresholds[i]))
		if valuesInSOL {
			out.Values = append(out.Values, config.FormatSOL(l.Values[i]))
		} else {
			out.Values = append(out.Values, fmt.Sprintf("%d", l.Values[i]))
		}
	}
	return out
}

func main() {
	configPath := flag.String("config", "./config.toml", "Path to daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	coord, err := cfg.CoordinatorParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve coordinator parameters: %v\n", err)
		os.Exit(1)
	}
	assets, err := cfg.AssetParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve asset parameters: %v\n", err)
		os.Exit(1)
	}

	var out auditReport
	out.Tax.TotalBps = coord.Tax.TotalBps
	out.Tax.LiquidityBps = coord.Tax.LiquidityBps
	out.Tax.SwapperBps = coord.Tax.SwapperBps
	out.Tax.BadgeBps = coord.Tax.BadgeBps
	out.Tax.TreasuryBps = coord.Tax.TreasuryBps
	out.CoordinatorVelocity = report(coord.Velocity, true)
	out.AssetVelocity = report(assets.Velocity, true)
	out.Caps = report(assets.Caps, false)
	out.AntiSnipeSeconds = assets.AntiSnipeSeconds
	out.BondThreshold = config.FormatSOL(assets.BondThreshold)
	out.PoolSeed = config.FormatSOL(assets.PoolSeedLamports)
	out.PoolFeeBps = cfg.PoolFeeBps()
	out.DistributionPeriod = coord.DistributionPeriod
	out.SwapPaused = cfg.Pauses.Swap
	for _, pk := range coord.Authorities {
		out.Authorities = append(out.Authorities, pk.String())
	}
	out.BadgeMint = coord.BadgeMint.String()

	output, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))
}
