//go:build !integration

package policy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pickMyBook/domain"
)

// memStore is an in-memory versioned record with the same conditional-write
// semantics as the database row.
type memStore struct {
	mu      sync.Mutex
	store   PolicyStore
	version int64

	snapshotErr error
	writeErr    error
	// failWrites forces the first N conditional writes to report a conflict
	failWrites int
}

func newMemStore() *memStore {
	return &memStore{store: NewDefaultStore()}
}

func (m *memStore) Snapshot(ctx context.Context) (PolicyStore, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshotErr != nil {
		return PolicyStore{}, 0, m.snapshotErr
	}
	return m.store.Clone(), m.version, nil
}

func (m *memStore) WriteIfVersion(ctx context.Context, version int64, store PolicyStore) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return false, m.writeErr
	}
	if m.failWrites > 0 {
		m.failWrites--
		return false, nil
	}
	if version != m.version {
		return false, nil
	}
	m.store = store.Clone()
	m.version++
	return true, nil
}

func (m *memStore) current() (PolicyStore, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Clone(), m.version
}

func newTestReconciler(store SnapshotStore) *Reconciler {
	return NewReconciler(store, NewAgent(DefaultAgentConfig()), ReconcilerConfig{
		MaxRetries:  5,
		BackoffBase: time.Millisecond,
	})
}

func TestApplyCommitsUpdate(t *testing.T) {
	mem := newMemStore()
	rec := newTestReconciler(mem)

	next, err := rec.Apply(context.Background(), domain.FeedbackEvent{
		Mood:     "Adventurous",
		Genre:    "fantasy",
		Accepted: true,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if next.Stats.LearningSteps != 1 {
		t.Errorf("returned steps = %d, want 1", next.Stats.LearningSteps)
	}

	stored, version := mem.current()
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if stored.Stats.LearningSteps != 1 || stored.Stats.TotalAccepts != 1 {
		t.Errorf("stored stats = %+v, want one accepted step", stored.Stats)
	}
}

func TestApplyRequiresMoodAndGenre(t *testing.T) {
	rec := newTestReconciler(newMemStore())

	_, err := rec.Apply(context.Background(), domain.FeedbackEvent{Genre: "fantasy"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing mood: err = %v, want ErrValidation", err)
	}

	_, err = rec.Apply(context.Background(), domain.FeedbackEvent{Mood: "Curious"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing genre: err = %v, want ErrValidation", err)
	}
}

func TestApplyRetriesThroughConflicts(t *testing.T) {
	mem := newMemStore()
	mem.failWrites = 3
	rec := newTestReconciler(mem)

	_, err := rec.Apply(context.Background(), domain.FeedbackEvent{
		Mood:     "Curious",
		Genre:    "history",
		Accepted: true,
	})
	if err != nil {
		t.Fatalf("Apply after transient conflicts: %v", err)
	}

	stored, _ := mem.current()
	if stored.Stats.LearningSteps != 1 {
		t.Fatalf("steps = %d, want exactly 1", stored.Stats.LearningSteps)
	}
}

func TestApplyGivesUpAfterMaxRetries(t *testing.T) {
	mem := newMemStore()
	mem.failWrites = 100
	rec := newTestReconciler(mem)

	_, err := rec.Apply(context.Background(), domain.FeedbackEvent{
		Mood:     "Curious",
		Genre:    "history",
		Accepted: true,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// nothing was partially applied
	stored, version := mem.current()
	if version != 0 || stored.Stats.LearningSteps != 0 {
		t.Fatalf("store changed despite exhaustion: version=%d stats=%+v", version, stored.Stats)
	}
}

func TestApplySnapshotFailure(t *testing.T) {
	mem := newMemStore()
	mem.snapshotErr = errors.New("connection refused")
	rec := newTestReconciler(mem)

	_, err := rec.Apply(context.Background(), domain.FeedbackEvent{
		Mood:     "Curious",
		Genre:    "history",
	})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestApplyRecoversCorruptRecord(t *testing.T) {
	mem := newMemStore()
	mem.store.Epsilon = 42 // out of range
	rec := newTestReconciler(mem)

	next, err := rec.Apply(context.Background(), domain.FeedbackEvent{
		Mood:     "Relaxed",
		Genre:    "poetry",
		Accepted: true,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if next.Epsilon < 0 || next.Epsilon > 1 {
		t.Fatalf("epsilon not recovered: %v", next.Epsilon)
	}
	if next.Stats.LearningSteps != 1 {
		t.Fatalf("update lost during recovery: %+v", next.Stats)
	}
}

func TestApplyCancelledContext(t *testing.T) {
	rec := newTestReconciler(newMemStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rec.Apply(ctx, domain.FeedbackEvent{
		Mood:  "Relaxed",
		Genre: "poetry",
	})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestTuneClampsAndCommits(t *testing.T) {
	mem := newMemStore()
	rec := newTestReconciler(mem)

	next, err := rec.Tune(context.Background(), 1.7, -0.5)
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}

	if next.Epsilon != 1.0 {
		t.Errorf("epsilon = %v, want clamped to 1.0", next.Epsilon)
	}
	if next.LearningRate != DefaultLearningRate {
		t.Errorf("learning rate = %v, want default after clamp", next.LearningRate)
	}

	stored, version := mem.current()
	if version != 1 || stored.Epsilon != 1.0 {
		t.Errorf("tune not persisted: version=%d epsilon=%v", version, stored.Epsilon)
	}
}

// Concurrent writers against one record: every successful Apply must land as
// exactly one learning step, and the version must advance once per commit.
func TestConcurrentAppliesLoseNothing(t *testing.T) {
	mem := newMemStore()
	rec := NewReconciler(mem, NewAgent(DefaultAgentConfig()), ReconcilerConfig{
		MaxRetries:  50,
		BackoffBase: time.Millisecond,
	})

	const writers = 16
	const perWriter = 10

	moods := []string{"Adventurous", "Curious", "Relaxed", "Motivated"}
	genres := []string{"fantasy", "history", "poetry", "self-help"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := rec.Apply(context.Background(), domain.FeedbackEvent{
					UserID:   uint(w + 1),
					Mood:     moods[(w+i)%len(moods)],
					Genre:    genres[(w*i)%len(genres)],
					Accepted: i%2 == 0,
				})
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				} else if !errors.Is(err, domain.ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	stored, version := mem.current()

	if stored.Stats.LearningSteps != succeeded {
		t.Fatalf("learning steps = %d, want %d (one per successful apply)",
			stored.Stats.LearningSteps, succeeded)
	}
	if version != int64(succeeded) {
		t.Fatalf("version = %d, want %d", version, succeeded)
	}
	if stored.Stats.TotalAccepts+stored.Stats.TotalRejects != succeeded {
		t.Fatalf("stats total = %d, want %d",
			stored.Stats.TotalAccepts+stored.Stats.TotalRejects, succeeded)
	}

	totalVisits := 0
	for _, entry := range stored.QTable {
		totalVisits += entry.Visits
	}
	if totalVisits != succeeded {
		t.Fatalf("q table visits = %d, want %d", totalVisits, succeeded)
	}
}
