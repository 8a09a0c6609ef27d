//go:build !integration

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"pickMyBook/business/policy"
	"pickMyBook/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeBookRepo struct {
	books []domain.Book
	err   error
}

func (f *fakeBookRepo) FindByOwner(ctx context.Context, ownerID uint) ([]domain.Book, error) {
	return f.books, f.err
}

func (f *fakeBookRepo) FindByID(ctx context.Context, id uint64) (domain.Book, error) {
	for _, b := range f.books {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Book{}, errors.New("book not found")
}

type fakeFeedbackRepo struct {
	saved []domain.FeedbackEvent
	err   error
}

func (f *fakeFeedbackRepo) SaveEvent(ctx context.Context, event domain.FeedbackEvent) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, event)
	return nil
}

type fakePrefRepo struct {
	prefs map[string]float64
	err   error
}

func (f *fakePrefRepo) GenreAffinity(ctx context.Context, userID uint) (map[string]float64, error) {
	return f.prefs, f.err
}

type fakePolicyReader struct {
	store policy.PolicyStore
	delay time.Duration
	err   error
}

func (f *fakePolicyReader) Snapshot(ctx context.Context) (policy.PolicyStore, int64, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return policy.PolicyStore{}, 0, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return policy.PolicyStore{}, 0, f.err
	}
	return f.store, 1, nil
}

type fakeReconciler struct {
	applied []domain.FeedbackEvent
	next    policy.PolicyStore
	err     error
}

func (f *fakeReconciler) Apply(ctx context.Context, event domain.FeedbackEvent) (policy.PolicyStore, error) {
	if f.err != nil {
		return policy.PolicyStore{}, f.err
	}
	f.applied = append(f.applied, event)
	return f.next, nil
}

func greedyAgent() *policy.Agent {
	// rand always returns 1.0 so exploration never triggers
	return policy.NewAgentWithRand(policy.DefaultAgentConfig(), func() float64 { return 1.0 })
}

func shelfFixture() []domain.Book {
	return []domain.Book{
		{ID: 1, OwnerID: 7, Title: "The Hobbit", Genre: "fantasy", Rating: 4.5, RatingsCount: 9000, PageCount: 310},
		{ID: 2, OwnerID: 7, Title: "Dune", Genre: "sci-fi", Rating: 4.2, RatingsCount: 8000, PageCount: 680},
		{ID: 3, OwnerID: 7, Title: "Gone Girl", Genre: "thriller", Rating: 4.0, RatingsCount: 7000, PageCount: 420, IsRead: true},
	}
}

func newTestService(
	bookRepo *fakeBookRepo,
	feedbackRepo *fakeFeedbackRepo,
	prefRepo *fakePrefRepo,
	reader *fakePolicyReader,
	reconciler *fakeReconciler,
) *RecommendService {
	return NewRecommendService(
		bookRepo, feedbackRepo, prefRepo, reader, reconciler,
		greedyAgent(),
		Config{DefaultLimit: 5, SnapshotTimeout: 50 * time.Millisecond},
	)
}

// ---- tests ----

func TestRecommendRanksShelf(t *testing.T) {
	svc := newTestService(
		&fakeBookRepo{books: shelfFixture()},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		&fakeReconciler{},
	)

	recs, err := svc.Recommend(context.Background(), 7, "escapist", 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Escapist favors fantasy first, ranks are 1-based and ordered
	assert.Equal(t, "The Hobbit", recs[0].Title)
	for i, r := range recs {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, recs[i-1].Score, r.Score)
		}
		assert.NotEmpty(t, r.Reasons)
	}
}

func TestRecommendLimit(t *testing.T) {
	svc := newTestService(
		&fakeBookRepo{books: shelfFixture()},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		&fakeReconciler{},
	)

	recs, err := svc.Recommend(context.Background(), 7, "escapist", 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = svc.Recommend(context.Background(), 7, "escapist", 50)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRecommendInvalidMood(t *testing.T) {
	svc := newTestService(
		&fakeBookRepo{books: shelfFixture()},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		&fakeReconciler{},
	)

	_, err := svc.Recommend(context.Background(), 7, "hangry", 0)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecommendEmptyShelf(t *testing.T) {
	svc := newTestService(
		&fakeBookRepo{},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		&fakeReconciler{},
	)

	recs, err := svc.Recommend(context.Background(), 7, "relaxed", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendDegradedWhenSnapshotSlow(t *testing.T) {
	learned := policy.NewDefaultStore()
	learned.Epsilon = 0
	learned.QTable["Escapist|fantasy"] = policy.QEntry{Value: 1.0, Visits: 10}

	slow := &fakePolicyReader{store: learned, delay: 500 * time.Millisecond}

	svc := newTestService(
		&fakeBookRepo{books: shelfFixture()},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		slow,
		&fakeReconciler{},
	)

	recs, err := svc.DebugRecommend(context.Background(), 7, "escapist", 0)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	// Ranking proceeded content-only: no bonus, no exploration flags
	for _, r := range recs {
		assert.Zero(t, r.RLBonus)
		assert.False(t, r.Explored)
	}
}

func TestRecommendAppliesLearnedBonus(t *testing.T) {
	learned := policy.NewDefaultStore()
	learned.Epsilon = 0
	learned.QTable["Escapist|fantasy"] = policy.QEntry{Value: 1.0, Visits: 10}

	svc := newTestService(
		&fakeBookRepo{books: shelfFixture()},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: learned},
		&fakeReconciler{},
	)

	recs, err := svc.DebugRecommend(context.Background(), 7, "escapist", 0)
	require.NoError(t, err)

	var fantasy *domain.DebugRecommendation
	for i := range recs {
		if recs[i].BookID == 1 {
			fantasy = &recs[i]
		}
	}
	require.NotNil(t, fantasy)

	// Q-value 1.0 is clamped to the bonus cap
	assert.InDelta(t, 0.10, fantasy.RLBonus, 1e-9)
	assert.InDelta(t, fantasy.ContentScore+0.10, fantasy.FinalScore, 1e-9)
}

func TestLogFeedbackCommitsThenAppends(t *testing.T) {
	feedbackRepo := &fakeFeedbackRepo{}
	reconciler := &fakeReconciler{next: policy.NewDefaultStore()}

	svc := newTestService(
		&fakeBookRepo{books: shelfFixture()},
		feedbackRepo,
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		reconciler,
	)

	err := svc.LogFeedback(context.Background(), domain.FeedbackEvent{
		UserID:   7,
		BookID:   1,
		Mood:     "escapist",
		Genre:    "Epic Fantasy",
		Accepted: true,
	})
	require.NoError(t, err)

	require.Len(t, reconciler.applied, 1)
	applied := reconciler.applied[0]
	assert.Equal(t, "Escapist", applied.Mood)
	assert.Equal(t, "fantasy", applied.Genre)
	assert.Equal(t, "Escapist|fantasy", applied.Context["state_key"])

	require.Len(t, feedbackRepo.saved, 1)
}

func TestLogFeedbackHistoryFailureDoesNotUndoCommit(t *testing.T) {
	feedbackRepo := &fakeFeedbackRepo{err: errors.New("disk full")}
	reconciler := &fakeReconciler{next: policy.NewDefaultStore()}

	svc := newTestService(
		&fakeBookRepo{},
		feedbackRepo,
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		reconciler,
	)

	err := svc.LogFeedback(context.Background(), domain.FeedbackEvent{
		UserID:   7,
		Mood:     "curious",
		Genre:    "history",
		Accepted: false,
	})

	// Learning commit landed, history append failure is absorbed
	require.NoError(t, err)
	assert.Len(t, reconciler.applied, 1)
}

func TestLogFeedbackValidation(t *testing.T) {
	svc := newTestService(
		&fakeBookRepo{},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		&fakeReconciler{},
	)

	err := svc.LogFeedback(context.Background(), domain.FeedbackEvent{
		Mood:  "nope",
		Genre: "fantasy",
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	err = svc.LogFeedback(context.Background(), domain.FeedbackEvent{
		Mood:  "curious",
		Genre: "   ",
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogFeedbackPropagatesConflict(t *testing.T) {
	reconciler := &fakeReconciler{err: domain.ErrConflict}

	svc := newTestService(
		&fakeBookRepo{},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: policy.NewDefaultStore()},
		reconciler,
	)

	err := svc.LogFeedback(context.Background(), domain.FeedbackEvent{
		Mood:     "curious",
		Genre:    "history",
		Accepted: true,
	})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestStats(t *testing.T) {
	store := policy.NewDefaultStore()
	store.Stats.TotalAccepts = 3
	store.Stats.TotalRejects = 1
	store.Stats.LearningSteps = 4
	store.QTable["Curious|history"] = policy.QEntry{Value: 0.5, Visits: 4}

	svc := newTestService(
		&fakeBookRepo{},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{store: store},
		&fakeReconciler{},
	)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAccepts)
	assert.Equal(t, 1, stats.TotalRejects)
	assert.InDelta(t, 0.75, stats.AcceptanceRate, 1e-9)

	svc = newTestService(
		&fakeBookRepo{},
		&fakeFeedbackRepo{},
		&fakePrefRepo{},
		&fakePolicyReader{err: errors.New("db down")},
		&fakeReconciler{},
	)
	_, err = svc.Stats(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)
}
