package tier

import "safepump/native/common"

// Velocity caps per tier, in whole SOL.
var VelocityCapsSOL = [Size]uint64{1, 3, 7, 15, 30, 70, 150, 300}

// Valuation thresholds for the velocity ladder, in whole SOL.
var VelocityThresholdsSOL = [Size]uint64{
	1_000_000, 3_000_000, 7_000_000, 15_000_000,
	30_000_000, 70_000_000, 150_000_000, 300_000_000,
}

// Valuation thresholds for the per-swap basis-point ladder, in whole SOL.
var CapThresholdsSOL = [Size]uint64{
	100_000, 500_000, 1_000_000, 5_000_000,
	10_000_000, 25_000_000, 50_000_000, 75_000_000,
}

// CapStepsBps are added to CapBaseBps to form each tier's per-swap cap.
var CapStepsBps = [Size]uint64{1, 2, 3, 5, 8, 13, 21, 34}

const (
	CapBaseBps    uint64 = 1
	TopTierCapBps uint64 = 100
)

func toLamports(sol [Size]uint64) [Size]uint64 {
	var out [Size]uint64
	for i, v := range sol {
		out[i] = v * common.LamportsPerSOL
	}
	return out
}

// VelocityLadder returns the default velocity ladder (lamport thresholds and
// lamport caps) resolved with rule.
func VelocityLadder(rule Rule) Ladder {
	return Ladder{
		Thresholds: toLamports(VelocityThresholdsSOL),
		Values:     toLamports(VelocityCapsSOL),
		Rule:       rule,
	}
}

// CapLadder returns the default per-swap basis-point ladder.
func CapLadder() Ladder {
	l := Ladder{Thresholds: toLamports(CapThresholdsSOL), Rule: RuleFirstAtOrBelow}
	for i, step := range CapStepsBps {
		l.Values[i] = CapBaseBps + step
	}
	return l
}

// CapBps returns the per-swap cap in basis points for valuation. At or above
// topTier (lamports, zero disables) the cap is TopTierCapBps.
func CapBps(l Ladder, valuation, topTier uint64) uint64 {
	if topTier > 0 && valuation >= topTier {
		return TopTierCapBps
	}
	return l.Lookup(valuation)
}
