package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_feedback_events_total",
			Help: "Count of recorded feedback events by mood and outcome.",
		},
		[]string{"mood", "outcome"},
	)

	RecommendServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_served_total",
		Help: "Total recommendation responses served.",
	})

	ExploreDecisionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_explore_decisions_total",
		Help: "How many per-candidate decisions ignored the learned bonus.",
	})

	DegradedRankingsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_degraded_rankings_total",
		Help: "Rankings served content-only because the policy store was unreachable.",
	})
)

func init() {
	prometheus.MustRegister(
		FeedbackEventsTotal,
		RecommendServedTotal,
		ExploreDecisionsTotal,
		DegradedRankingsTotal,
	)
}
