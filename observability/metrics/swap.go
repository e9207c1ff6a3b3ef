package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SwapMetrics instruments the swap gate.
type SwapMetrics struct {
	swaps          *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	taxCollected   *prometheus.CounterVec
	velocityUsed   *prometheus.GaugeVec
	distributions  *prometheus.CounterVec
	distributed    *prometheus.CounterVec
	roundingDust   *prometheus.CounterVec
	bondings       prometheus.Counter
	rewardLogDrops prometheus.Counter
}

var (
	swapOnce     sync.Once
	swapRegistry *SwapMetrics
)

// Swap returns the process-wide swap metrics, registering them on first use.
func Swap() *SwapMetrics {
	swapOnce.Do(func() {
		swapRegistry = &SwapMetrics{
			swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "safepump_swaps_total",
				Help: "Committed swaps by direction and execution venue.",
			}, []string{"direction", "venue"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "safepump_swap_rejections_total",
				Help: "Rejected swaps by error class.",
			}, []string{"class"}),
			taxCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "safepump_tax_collected_total",
				Help: "Tax routed to each destination pool, in base units of the denomination.",
			}, []string{"denomination", "pool"}),
			velocityUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "safepump_velocity_window_bought",
				Help: "Buy volume accumulated in the current slot window.",
			}, []string{"scope"}),
			distributions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "safepump_reward_distributions_total",
				Help: "Completed reward flushes per denomination.",
			}, []string{"denomination"}),
			distributed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "safepump_rewards_distributed_total",
				Help: "Rewards paid out by kind (swapper or badge).",
			}, []string{"denomination", "kind"}),
			roundingDust: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "safepump_rounding_dust_total",
				Help: "Cumulative rounding remainder left behind by tax splits and badge payouts.",
			}, []string{"source"}),
			bondings: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "safepump_bondings_total",
				Help: "Assets that graduated from the bonding curve to an AMM pool.",
			}),
			rewardLogDrops: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "safepump_reward_log_drops_total",
				Help: "Swapper reward entries dropped because the reward log was full.",
			}),
		}
		prometheus.MustRegister(
			swapRegistry.swaps,
			swapRegistry.rejections,
			swapRegistry.taxCollected,
			swapRegistry.velocityUsed,
			swapRegistry.distributions,
			swapRegistry.distributed,
			swapRegistry.roundingDust,
			swapRegistry.bondings,
			swapRegistry.rewardLogDrops,
		)
	})
	return swapRegistry
}

func orUnknown(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}

func (m *SwapMetrics) ObserveSwap(direction, venue string) {
	if m == nil {
		return
	}
	m.swaps.WithLabelValues(orUnknown(direction), orUnknown(venue)).Inc()
}

func (m *SwapMetrics) ObserveRejection(class string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(orUnknown(class)).Inc()
}

func (m *SwapMetrics) AddTax(denomination, pool string, amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.taxCollected.WithLabelValues(orUnknown(denomination), orUnknown(pool)).Add(float64(amount))
}

func (m *SwapMetrics) SetVelocity(scope string, bought uint64) {
	if m == nil {
		return
	}
	m.velocityUsed.WithLabelValues(orUnknown(scope)).Set(float64(bought))
}

func (m *SwapMetrics) ObserveDistribution(denomination string, swapper, badge uint64) {
	if m == nil {
		return
	}
	denomination = orUnknown(denomination)
	m.distributions.WithLabelValues(denomination).Inc()
	m.distributed.WithLabelValues(denomination, "swapper").Add(float64(swapper))
	m.distributed.WithLabelValues(denomination, "badge").Add(float64(badge))
}

func (m *SwapMetrics) AddRoundingDust(source string, dust uint64) {
	if m == nil || dust == 0 {
		return
	}
	m.roundingDust.WithLabelValues(orUnknown(source)).Add(float64(dust))
}

func (m *SwapMetrics) ObserveBonding() {
	if m == nil {
		return
	}
	m.bondings.Inc()
}

func (m *SwapMetrics) ObserveRewardLogDrop() {
	if m == nil {
		return
	}
	m.rewardLogDrops.Inc()
}
