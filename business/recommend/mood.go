package recommend

import (
	"fmt"
	"strings"

	"pickMyBook/domain"
)

// MoodCategory is the fixed set of reading moods a request can carry.
type MoodCategory string

const (
	MoodRelaxed       MoodCategory = "Relaxed"
	MoodAdventurous   MoodCategory = "Adventurous"
	MoodRomantic      MoodCategory = "Romantic"
	MoodThoughtful    MoodCategory = "Thoughtful"
	MoodExcited       MoodCategory = "Excited"
	MoodMelancholic   MoodCategory = "Melancholic"
	MoodCurious       MoodCategory = "Curious"
	MoodEscapist      MoodCategory = "Escapist"
	MoodMotivated     MoodCategory = "Motivated"
	MoodContemplative MoodCategory = "Contemplative"
)

var AllMoods = []MoodCategory{
	MoodRelaxed, MoodAdventurous, MoodRomantic, MoodThoughtful, MoodExcited,
	MoodMelancholic, MoodCurious, MoodEscapist, MoodMotivated, MoodContemplative,
}

// moodGenres maps each mood to genres that suit it, most relevant first.
// Used for the mood_match channel when a book carries no explicit mood tags.
var moodGenres = map[MoodCategory][]string{
	MoodRelaxed:       {"cozy mystery", "humor", "contemporary fiction", "poetry"},
	MoodAdventurous:   {"adventure", "fantasy", "science fiction", "thriller"},
	MoodRomantic:      {"romance", "contemporary fiction", "drama", "poetry"},
	MoodThoughtful:    {"philosophy", "literary fiction", "psychology", "history"},
	MoodExcited:       {"thriller", "mystery", "adventure", "horror"},
	MoodMelancholic:   {"literary fiction", "drama", "poetry", "historical fiction"},
	MoodCurious:       {"non-fiction", "science fiction", "history", "biography"},
	MoodEscapist:      {"fantasy", "science fiction", "historical fiction", "adventure"},
	MoodMotivated:     {"self-help", "biography", "psychology", "non-fiction"},
	MoodContemplative: {"philosophy", "poetry", "literary fiction", "non-fiction"},
}

// ParseMood validates a request-supplied mood string against the fixed set.
func ParseMood(s string) (MoodCategory, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, m := range AllMoods {
		if strings.ToLower(string(m)) == needle {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized mood category %q", domain.ErrValidation, s)
}
