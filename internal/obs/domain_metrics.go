package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// LeaderboardRunsTotal counts pipeline runs by outcome.
	LeaderboardRunsTotal *prometheus.CounterVec
	// LeaderboardSkippedTotal counts purchase records and line items dropped for unresolved references.
	LeaderboardSkippedTotal *prometheus.CounterVec
	// LeaderboardRunDuration records pipeline latency in milliseconds.
	LeaderboardRunDuration prometheus.Histogram
	// LeaderboardCacheTotal counts cache lookups by result.
	LeaderboardCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		LeaderboardRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_runs_total",
			Help:      "Count of leaderboard computations by outcome.",
		}, []string{"result"})
		LeaderboardSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_skipped_total",
			Help:      "Count of purchase data skipped because a seller or SKU did not resolve.",
		}, []string{"kind"})
		LeaderboardRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "leaderboard_run_duration_ms",
			Help:      "Latency of leaderboard computations in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		})
		LeaderboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_cache_total",
			Help:      "Count of leaderboard cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, LeaderboardRunsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LeaderboardRunsTotal = v
			}
		})
		mustRegisterCollector(reg, LeaderboardSkippedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LeaderboardSkippedTotal = v
			}
		})
		mustRegisterCollector(reg, LeaderboardRunDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				LeaderboardRunDuration = v
			}
		})
		mustRegisterCollector(reg, LeaderboardCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LeaderboardCacheTotal = v
			}
		})
	})
}

// ObserveLeaderboardRun records the outcome of one computation. It is a no-op
// until MustRegisterDomainMetrics has run.
func ObserveLeaderboardRun(result string, skippedRecords, skippedItems int, millis float64) {
	if LeaderboardRunsTotal == nil {
		return
	}
	LeaderboardRunsTotal.WithLabelValues(result).Inc()
	LeaderboardRunDuration.Observe(millis)
	if skippedRecords > 0 {
		LeaderboardSkippedTotal.WithLabelValues("record").Add(float64(skippedRecords))
	}
	if skippedItems > 0 {
		LeaderboardSkippedTotal.WithLabelValues("line_item").Add(float64(skippedItems))
	}
}

// ObserveLeaderboardCache records a cache hit or miss.
func ObserveLeaderboardCache(hit bool) {
	if LeaderboardCacheTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	LeaderboardCacheTotal.WithLabelValues(result).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
