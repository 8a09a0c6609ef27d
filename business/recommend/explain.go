package recommend

import (
	"fmt"
)

// Per-factor reason templates, tiered by how strong the factor scored.
var explanationTemplates = map[string]map[string]string{
	"mood_match": {
		"high":   "This %s book matches your %s mood",
		"medium": "The %s themes align with how you're feeling",
		"low":    "Not a perfect mood match, but it offers variety",
	},
	"genre_preference": {
		"high":   "You've shown a preference for %s books",
		"medium": "This genre fits your reading tastes",
		"low":    "This might expand your reading horizons",
	},
	"reading_history": {
		"high":   "A fresh read you haven't explored yet",
		"medium": "Something new for your reading list",
		"low":    "You may have read something similar before",
	},
	"difficulty": {
		"high":   "The length is just right for a pick-up-and-read",
		"medium": "A comfortable read that won't overwhelm",
		"low":    "This might be a more demanding read",
	},
	"popularity": {
		"high":   "Highly rated by readers (%.1f stars)",
		"medium": "Well-received by readers",
		"low":    "A hidden gem waiting to be discovered",
	},
}

func scoreLevel(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

// explain builds the human-readable reasons for one ranked candidate,
// strongest factors first. At most three reasons to keep the payload short.
func explain(c rankedCandidate) []string {
	type factor struct {
		name  string
		score float64
	}

	factors := []factor{
		{"mood_match", c.fc.MoodMatch},
		{"genre_preference", c.fc.GenrePreference},
		{"reading_history", c.fc.HistorySignal},
		{"difficulty", 1.0 - c.fc.Difficulty},
		{"popularity", c.fc.Popularity},
	}

	// strongest first; order of equal factors follows the fixed list above
	for i := 0; i < len(factors); i++ {
		maxIdx := i
		for j := i + 1; j < len(factors); j++ {
			if factors[j].score > factors[maxIdx].score {
				maxIdx = j
			}
		}
		factors[i], factors[maxIdx] = factors[maxIdx], factors[i]
	}

	reasons := make([]string, 0, 3)
	for _, f := range factors {
		if len(reasons) == 3 {
			break
		}

		level := scoreLevel(f.score)
		tmpl, ok := explanationTemplates[f.name][level]
		if !ok {
			continue
		}

		switch {
		case f.name == "mood_match" && level == "high":
			reasons = append(reasons, fmt.Sprintf(tmpl, c.fc.Genre, c.fc.Mood))
		case f.name == "mood_match" && level == "medium":
			reasons = append(reasons, fmt.Sprintf(tmpl, c.fc.Genre))
		case f.name == "genre_preference" && level == "high":
			reasons = append(reasons, fmt.Sprintf(tmpl, c.fc.Genre))
		case f.name == "popularity" && level == "high":
			reasons = append(reasons, fmt.Sprintf(tmpl, c.book.Rating))
		default:
			reasons = append(reasons, tmpl)
		}
	}

	return reasons
}
