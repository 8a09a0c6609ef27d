package recommend

import (
	"context"
	"fmt"
	"time"

	"pickMyBook/business/policy"
	"pickMyBook/domain"
	"pickMyBook/pkg/logger"

	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type BookRepository interface {
	FindByOwner(ctx context.Context, ownerID uint) ([]domain.Book, error)
	FindByID(ctx context.Context, id uint64) (domain.Book, error)
}

type FeedbackRepository interface {
	SaveEvent(ctx context.Context, event domain.FeedbackEvent) error
}

// PreferenceRepository aggregates past feedback into per-genre acceptance
// rates used for the genre-preference channel.
type PreferenceRepository interface {
	GenreAffinity(ctx context.Context, userID uint) (map[string]float64, error)
}

// PolicyReader serves read-only snapshots of the global policy record.
type PolicyReader interface {
	Snapshot(ctx context.Context) (policy.PolicyStore, int64, error)
}

// FeedbackReconciler commits feedback to the policy record conflict-safely.
type FeedbackReconciler interface {
	Apply(ctx context.Context, event domain.FeedbackEvent) (policy.PolicyStore, error)
}

// ---- Service config ----

type Config struct {
	// DefaultLimit is the number of recommendations when the client gives none.
	DefaultLimit int
	// SnapshotTimeout bounds the policy read on the scoring path. On expiry
	// ranking degrades to content-only instead of failing.
	SnapshotTimeout time.Duration
}

const (
	defaultLimit           = 5
	defaultSnapshotTimeout = 2 * time.Second
)

func DefaultConfig() Config {
	return Config{
		DefaultLimit:    defaultLimit,
		SnapshotTimeout: defaultSnapshotTimeout,
	}
}

// ---- Usecase / Service ----

type RecommendService struct {
	bookRepo     BookRepository
	feedbackRepo FeedbackRepository
	prefRepo     PreferenceRepository
	policyReader PolicyReader
	reconciler   FeedbackReconciler
	agent        *policy.Agent
	cfg          Config
}

func NewRecommendService(
	bookRepo BookRepository,
	feedbackRepo FeedbackRepository,
	prefRepo PreferenceRepository,
	policyReader PolicyReader,
	reconciler FeedbackReconciler,
	agent *policy.Agent,
	cfg Config,
) *RecommendService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaultLimit
	}
	if cfg.SnapshotTimeout <= 0 {
		cfg.SnapshotTimeout = defaultSnapshotTimeout
	}
	return &RecommendService{
		bookRepo:     bookRepo,
		feedbackRepo: feedbackRepo,
		prefRepo:     prefRepo,
		policyReader: policyReader,
		reconciler:   reconciler,
		agent:        agent,
		cfg:          cfg,
	}
}

// Recommend ranks the user's shelf for the given mood and returns the top N.
func (s *RecommendService) Recommend(
	ctx context.Context,
	userID uint,
	moodStr string,
	limit int,
) ([]domain.Recommendation, error) {
	cands, err := s.scoreShelf(ctx, userID, moodStr)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > len(cands) {
		limit = len(cands)
	}

	out := make([]domain.Recommendation, 0, limit)
	for i := 0; i < limit; i++ {
		c := cands[i]
		out = append(out, domain.Recommendation{
			BookID:  c.book.ID,
			Title:   c.book.Title,
			Author:  c.book.Author,
			Genre:   c.fc.Genre,
			Score:   c.score,
			Rank:    i + 1,
			Reasons: explain(c),
		})
	}

	RecommendServedTotal.Inc()
	return out, nil
}

// DebugRecommend returns the full score breakdown for every candidate.
func (s *RecommendService) DebugRecommend(
	ctx context.Context,
	userID uint,
	moodStr string,
	limit int,
) ([]domain.DebugRecommendation, error) {
	cands, err := s.scoreShelf(ctx, userID, moodStr)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > len(cands) {
		limit = len(cands)
	}

	out := make([]domain.DebugRecommendation, 0, limit)
	for i := 0; i < limit; i++ {
		c := cands[i]
		out = append(out, domain.DebugRecommendation{
			BookID:          c.book.ID,
			Title:           c.book.Title,
			Genre:           c.fc.Genre,
			MoodMatch:       c.fc.MoodMatch,
			GenrePreference: c.fc.GenrePreference,
			ReadingHistory:  c.fc.HistorySignal,
			Difficulty:      c.fc.Difficulty,
			Popularity:      c.fc.Popularity,
			ContentScore:    c.score - c.bonus,
			RLBonus:         c.bonus,
			Explored:        c.explored,
			FinalScore:      c.score,
		})
	}

	return out, nil
}

// scoreShelf builds feature contexts for every book on the user's shelf,
// consults the agent per candidate and returns the ranked list.
func (s *RecommendService) scoreShelf(
	ctx context.Context,
	userID uint,
	moodStr string,
) ([]rankedCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	mood, err := ParseMood(moodStr)
	if err != nil {
		return nil, err
	}

	books, err := s.bookRepo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load shelf: %w", err)
	}
	if len(books) == 0 {
		return []rankedCandidate{}, nil
	}

	genrePrefs, err := s.prefRepo.GenreAffinity(ctx, userID)
	if err != nil {
		// preferences are best-effort; neutral defaults carry the ranking
		logger.Warn("genre affinity lookup failed, using neutral preferences",
			"user_id", userID, "error", err)
		genrePrefs = nil
	}

	// Bounded snapshot read: if the learning subsystem is slow or down,
	// ranking proceeds content-only with a zero bonus.
	snap, degraded := s.policySnapshot(ctx)

	tid := policy.TraceIDFromContext(ctx)
	logger.Debug("recommend_rank",
		"trace_id", tid,
		"user_id", userID,
		"mood", mood,
		"candidates", len(books),
		"degraded", degraded,
	)

	cands := make([]rankedCandidate, 0, len(books))
	for _, book := range books {
		fc := BuildFeatureContext(book, mood, genrePrefs).Sanitize()

		var bonus float64
		var explored bool
		if !degraded {
			bonus, explored = s.agent.SelectBonus(fc.StateKey(), snap)
			if explored {
				ExploreDecisionsTotal.Inc()
			}
		}

		cands = append(cands, rankedCandidate{
			book:     book,
			fc:       fc,
			bonus:    bonus,
			explored: explored,
			score:    Score(fc, bonus, s.agent.BonusCap()),
		})
	}

	rankCandidates(cands)
	return cands, nil
}

func (s *RecommendService) policySnapshot(ctx context.Context) (policy.PolicyStore, bool) {
	snapCtx, cancel := context.WithTimeout(ctx, s.cfg.SnapshotTimeout)
	defer cancel()

	snap, _, err := s.policyReader.Snapshot(snapCtx)
	if err != nil {
		logger.Warn("policy snapshot unavailable, ranking content-only", "error", err)
		DegradedRankingsTotal.Inc()
		return policy.PolicyStore{}, true
	}
	if err := snap.Validate(); err != nil {
		logger.Error("policy snapshot failed invariant check, ranking content-only", "error", err)
		DegradedRankingsTotal.Inc()
		return policy.PolicyStore{}, true
	}
	return snap, false
}

// LogFeedback records one accept/reject decision: it commits the learning
// update through the reconciler, then appends the raw event to the history
// log. The learning commit is the part that must not be lost; a failed
// history append is logged but does not undo the committed update.
func (s *RecommendService) LogFeedback(ctx context.Context, event domain.FeedbackEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	mood, err := ParseMood(event.Mood)
	if err != nil {
		return err
	}
	event.Mood = string(mood)
	event.Genre = NormalizeGenre(event.Genre)
	if event.Genre == "" {
		return fmt.Errorf("%w: genre is required", domain.ErrValidation)
	}

	tid := policy.TraceIDFromContext(ctx)
	if event.Context == nil {
		event.Context = datatypes.JSONMap{}
	}
	if tid != "" {
		event.Context["trace_id"] = tid
	}
	event.Context["state_key"] = policy.StateKey(event.Mood, event.Genre)

	next, err := s.reconciler.Apply(ctx, event)
	if err != nil {
		return err
	}

	logger.Debug("feedback_applied",
		"trace_id", tid,
		"user_id", event.UserID,
		"mood", event.Mood,
		"genre", event.Genre,
		"accepted", event.Accepted,
		"learning_steps", next.Stats.LearningSteps,
	)

	if err := s.feedbackRepo.SaveEvent(ctx, event); err != nil {
		logger.Error("failed to append feedback history", "trace_id", tid, "error", err)
	}

	outcome := "reject"
	if event.Accepted {
		outcome = "accept"
	}
	FeedbackEventsTotal.WithLabelValues(event.Mood, outcome).Inc()

	return nil
}

// Stats exposes the current learning summary.
func (s *RecommendService) Stats(ctx context.Context) (domain.PolicyStats, error) {
	snap, _, err := s.policyReader.Snapshot(ctx)
	if err != nil {
		return domain.PolicyStats{}, fmt.Errorf("%w: read snapshot: %v", domain.ErrUnavailable, err)
	}
	return snap.Summary(), nil
}
