package policy

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pickMyBook/domain"
	"pickMyBook/pkg/logger"
)

// SnapshotStore is the persistence contract for the single global policy
// record. WriteIfVersion must be atomic: the write succeeds only if the
// stored version still matches, and a successful write advances it.
type SnapshotStore interface {
	Snapshot(ctx context.Context) (PolicyStore, int64, error)
	WriteIfVersion(ctx context.Context, version int64, store PolicyStore) (bool, error)
}

type ReconcilerConfig struct {
	// MaxRetries bounds the read-compute-conditional-write cycles per event.
	MaxRetries int
	// BackoffBase scales the randomized wait between retries.
	BackoffBase time.Duration
}

const (
	defaultMaxRetries  = 5
	defaultBackoffBase = 20 * time.Millisecond
)

func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		MaxRetries:  defaultMaxRetries,
		BackoffBase: defaultBackoffBase,
	}
}

// Reconciler serializes all mutation of the shared policy record through
// optimistic concurrency control. Request handlers are stateless and share
// no memory, so the version check at write time is the only coordination.
type Reconciler struct {
	store SnapshotStore
	agent *Agent
	cfg   ReconcilerConfig
}

func NewReconciler(store SnapshotStore, agent *Agent, cfg ReconcilerConfig) *Reconciler {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffBase < 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	return &Reconciler{
		store: store,
		agent: agent,
		cfg:   cfg,
	}
}

// Apply commits one feedback event to the policy store. Either the whole
// update lands exactly once (learning step, stats, q-entry, annealed epsilon)
// or nothing is written and the caller gets a recoverable error.
func (r *Reconciler) Apply(ctx context.Context, event domain.FeedbackEvent) (PolicyStore, error) {
	if event.Mood == "" || event.Genre == "" {
		return PolicyStore{}, fmt.Errorf("%w: feedback event requires mood and genre", domain.ErrValidation)
	}

	return r.commit(ctx, func(snap PolicyStore) PolicyStore {
		return r.agent.ComputeUpdate(snap, event)
	})
}

// Tune adjusts hyperparameters through the same conflict-safe path as
// feedback, so an admin write can never clobber a concurrent learning step.
// Values are clamped by the store, not rejected.
func (r *Reconciler) Tune(ctx context.Context, epsilon, learningRate float64) (PolicyStore, error) {
	return r.commit(ctx, func(snap PolicyStore) PolicyStore {
		next := snap.Clone()
		next.Epsilon = epsilon
		next.LearningRate = learningRate
		next.Clamp()
		return next
	})
}

func (r *Reconciler) commit(ctx context.Context, compute func(PolicyStore) PolicyStore) (PolicyStore, error) {
	tid := TraceIDFromContext(ctx)

	for attempt := 0; attempt < r.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return PolicyStore{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}

		snap, version, err := r.store.Snapshot(ctx)
		if err != nil {
			return PolicyStore{}, fmt.Errorf("%w: read snapshot: %v", domain.ErrUnavailable, err)
		}

		if err := snap.Validate(); err != nil {
			// Corrupt record: recover from defaults rather than propagating.
			logger.Error("policy store failed invariant check, resetting to defaults",
				"trace_id", tid,
				"version", version,
				"error", err,
			)
			PolicyInvariantResets.Inc()
			snap = NewDefaultStore()
		}

		next := compute(snap)

		ok, err := r.store.WriteIfVersion(ctx, version, next)
		if err != nil {
			return PolicyStore{}, fmt.Errorf("%w: conditional write: %v", domain.ErrUnavailable, err)
		}
		if ok {
			PolicyCommitsTotal.Inc()
			return next, nil
		}

		// Another writer committed first; re-read and recompute.
		PolicyWriteConflictsTotal.Inc()
		logger.Debug("policy store write conflict, retrying",
			"trace_id", tid,
			"attempt", attempt+1,
			"stale_version", version,
		)

		if r.cfg.BackoffBase > 0 {
			wait := time.Duration(rand.Int63n(int64(r.cfg.BackoffBase))) + r.cfg.BackoffBase*time.Duration(attempt)
			select {
			case <-ctx.Done():
				return PolicyStore{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, ctx.Err())
			case <-time.After(wait):
			}
		}
	}

	PolicyUpdatesLostTotal.Inc()
	return PolicyStore{}, fmt.Errorf("%w: lost update after %d attempts", domain.ErrConflict, r.cfg.MaxRetries)
}
