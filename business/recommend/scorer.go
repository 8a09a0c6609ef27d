package recommend

import (
	"sort"

	"pickMyBook/domain"
)

// Content weights. They sum to 1.0 so a perfect candidate with zero bonus
// scores exactly 1.0.
const (
	WeightMoodMatch       = 0.40
	WeightGenrePreference = 0.25
	WeightHistory         = 0.15
	WeightDifficulty      = 0.10
	WeightPopularity      = 0.10
)

// Score combines the five content channels with the bounded learned bonus.
// Pure and total: inputs are sanitized first, the bonus is clamped to
// [-bonusCap, +bonusCap], and nothing here can fail. Difficulty contributes
// inversely (an easy book scores higher on that channel).
func Score(fc FeatureContext, bonus, bonusCap float64) float64 {
	fc = fc.Sanitize()

	content := WeightMoodMatch*fc.MoodMatch +
		WeightGenrePreference*fc.GenrePreference +
		WeightHistory*fc.HistorySignal +
		WeightDifficulty*(1.0-fc.Difficulty) +
		WeightPopularity*fc.Popularity

	if bonus > bonusCap {
		bonus = bonusCap
	} else if bonus < -bonusCap {
		bonus = -bonusCap
	}

	return content + bonus
}

type rankedCandidate struct {
	book     domain.Book
	fc       FeatureContext
	bonus    float64
	explored bool
	score    float64
}

// rankCandidates orders candidates descending by score with deterministic
// tie-breaks: higher popularity first, then lexical title order.
func rankCandidates(cands []rankedCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].fc.Popularity != cands[j].fc.Popularity {
			return cands[i].fc.Popularity > cands[j].fc.Popularity
		}
		return cands[i].book.Title < cands[j].book.Title
	})
}
