package policy

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PolicyCommitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "policy_commits_total",
		Help: "Successfully committed policy store updates.",
	})

	PolicyWriteConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "policy_write_conflicts_total",
		Help: "Conditional writes rejected because another writer committed first.",
	})

	PolicyUpdatesLostTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "policy_updates_lost_total",
		Help: "Feedback events reported as lost-update after retry exhaustion.",
	})

	PolicyInvariantResets = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "policy_invariant_resets_total",
		Help: "Times a corrupt persisted policy record was replaced with defaults.",
	})
)

func init() {
	prometheus.MustRegister(
		PolicyCommitsTotal,
		PolicyWriteConflictsTotal,
		PolicyUpdatesLostTotal,
		PolicyInvariantResets,
	)
}
