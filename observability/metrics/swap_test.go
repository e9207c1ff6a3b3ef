package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSwapMetricsCounters(t *testing.T) {
	m := Swap()
	if Swap() != m {
		t.Fatalf("expected a single process-wide registry")
	}

	m.ObserveSwap("buy", "curve")
	m.ObserveSwap("", "")
	if got := testutil.ToFloat64(m.swaps.WithLabelValues("buy", "curve")); got != 1 {
		t.Fatalf("expected one curve buy, got %v", got)
	}
	if got := testutil.ToFloat64(m.swaps.WithLabelValues("unknown", "unknown")); got != 1 {
		t.Fatalf("expected empty labels to fall back to unknown, got %v", got)
	}

	m.ObserveRejection("admission")
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("admission")); got != 1 {
		t.Fatalf("expected one rejection, got %v", got)
	}

	m.AddTax("sol", "treasury", 25)
	m.AddTax("sol", "treasury", 0)
	if got := testutil.ToFloat64(m.taxCollected.WithLabelValues("sol", "treasury")); got != 25 {
		t.Fatalf("expected 25 treasury tax, got %v", got)
	}

	m.SetVelocity("asset", 500)
	m.SetVelocity("asset", 200)
	if got := testutil.ToFloat64(m.velocityUsed.WithLabelValues("asset")); got != 200 {
		t.Fatalf("expected velocity gauge 200, got %v", got)
	}

	m.ObserveDistribution("sol", 160, 40)
	if got := testutil.ToFloat64(m.distributions.WithLabelValues("sol")); got != 1 {
		t.Fatalf("expected one distribution, got %v", got)
	}
	if got := testutil.ToFloat64(m.distributed.WithLabelValues("sol", "badge")); got != 40 {
		t.Fatalf("expected 40 badge rewards, got %v", got)
	}

	m.AddRoundingDust("tax", 3)
	m.ObserveBonding()
	m.ObserveRewardLogDrop()
	if got := testutil.ToFloat64(m.roundingDust.WithLabelValues("tax")); got != 3 {
		t.Fatalf("expected 3 dust, got %v", got)
	}
	if got := testutil.ToFloat64(m.bondings); got != 1 {
		t.Fatalf("expected one bonding, got %v", got)
	}
	if got := testutil.ToFloat64(m.rewardLogDrops); got != 1 {
		t.Fatalf("expected one reward log drop, got %v", got)
	}
}

func TestNilSwapMetricsIsNoop(t *testing.T) {
	var m *SwapMetrics
	m.ObserveSwap("buy", "amm")
	m.ObserveRejection("validation")
	m.AddTax("sol", "liquidity", 1)
	m.SetVelocity("global", 1)
	m.ObserveDistribution("sol", 1, 1)
	m.AddRoundingDust("tax", 1)
	m.ObserveBonding()
	m.ObserveRewardLogDrop()
}
