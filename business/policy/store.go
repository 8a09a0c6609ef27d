package policy

import (
	"fmt"
	"strings"

	"pickMyBook/domain"
)

// QEntry is the learned desirability of boosting one (mood, genre) pair.
type QEntry struct {
	Value  float64 `json:"value"`
	Visits int     `json:"visits"`
}

type Stats struct {
	TotalAccepts  int `json:"total_accepts"`
	TotalRejects  int `json:"total_rejects"`
	LearningSteps int `json:"learning_steps"`
}

// PolicyStore is the single global learning state shared by every request
// handler. It is persisted as one versioned record; all mutation goes through
// the Reconciler's conditional-write protocol.
type PolicyStore struct {
	QTable       map[string]QEntry `json:"q_table"`
	Epsilon      float64           `json:"epsilon"`
	LearningRate float64           `json:"learning_rate"`
	Stats        Stats             `json:"stats"`
}

const (
	DefaultEpsilon      = 0.1
	DefaultLearningRate = 0.1
)

func NewDefaultStore() PolicyStore {
	return PolicyStore{
		QTable:       make(map[string]QEntry),
		Epsilon:      DefaultEpsilon,
		LearningRate: DefaultLearningRate,
	}
}

// StateKey canonicalizes a (mood, genre) pair into a stable q_table key,
// e.g. "Adventurous|fantasy".
func StateKey(mood, genre string) string {
	return strings.TrimSpace(mood) + "|" + strings.ToLower(strings.TrimSpace(genre))
}

// Clamp forces hyperparameters back into their declared ranges. Callers may
// tune epsilon and learning_rate, but the store never persists out-of-range
// values.
func (s *PolicyStore) Clamp() {
	if s.QTable == nil {
		s.QTable = make(map[string]QEntry)
	}
	if s.Epsilon < 0 {
		s.Epsilon = 0
	} else if s.Epsilon > 1 {
		s.Epsilon = 1
	}
	if s.LearningRate <= 0 {
		s.LearningRate = DefaultLearningRate
	} else if s.LearningRate > 1 {
		s.LearningRate = 1
	}
}

// Validate checks the persisted-record invariants. A failure here means the
// stored record is corrupt; callers fall back to defaults instead of
// propagating the corruption into scoring or learning.
func (s PolicyStore) Validate() error {
	if s.Epsilon < 0 || s.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon %v out of [0,1]", domain.ErrInvariant, s.Epsilon)
	}
	if s.LearningRate <= 0 || s.LearningRate > 1 {
		return fmt.Errorf("%w: learning_rate %v out of (0,1]", domain.ErrInvariant, s.LearningRate)
	}
	if s.Stats.TotalAccepts < 0 || s.Stats.TotalRejects < 0 || s.Stats.LearningSteps < 0 {
		return fmt.Errorf("%w: negative stats counter", domain.ErrInvariant)
	}
	for key, entry := range s.QTable {
		if entry.Visits < 0 {
			return fmt.Errorf("%w: negative visits for %q", domain.ErrInvariant, key)
		}
	}
	return nil
}

// Clone deep-copies the store so update computation stays pure.
func (s PolicyStore) Clone() PolicyStore {
	out := s
	out.QTable = make(map[string]QEntry, len(s.QTable))
	for k, v := range s.QTable {
		out.QTable[k] = v
	}
	return out
}

// Summary converts the store into the stats payload served to clients.
func (s PolicyStore) Summary() domain.PolicyStats {
	total := s.Stats.TotalAccepts + s.Stats.TotalRejects
	rate := 0.0
	if total > 0 {
		rate = float64(s.Stats.TotalAccepts) / float64(total)
	}
	return domain.PolicyStats{
		TotalAccepts:   s.Stats.TotalAccepts,
		TotalRejects:   s.Stats.TotalRejects,
		TotalFeedback:  total,
		AcceptanceRate: rate,
		LearningSteps:  s.Stats.LearningSteps,
		StatesLearned:  len(s.QTable),
		Epsilon:        s.Epsilon,
		LearningRate:   s.LearningRate,
	}
}
