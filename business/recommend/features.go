package recommend

import (
	"strings"

	"pickMyBook/domain"
)

// FeatureContext is the resolved, normalized input for scoring one candidate
// book against one (user, mood) request. Every channel is in [0,1] by the
// time the scorer sees it; construction clamps and defaults, the scorer does
// not.
type FeatureContext struct {
	Mood  MoodCategory
	Genre string // normalized lower-case

	MoodMatch       float64
	GenrePreference float64
	HistorySignal   float64
	Difficulty      float64 // estimate: 0 easy .. 1 hard; scorer uses the inverse
	Popularity      float64
}

const neutralScore = 0.5

// genreAliases folds common metadata spellings into canonical genre names.
var genreAliases = map[string]string{
	"sci-fi":          "science fiction",
	"scifi":           "science fiction",
	"sf":              "science fiction",
	"nonfiction":      "non-fiction",
	"self help":       "self-help",
	"selfhelp":        "self-help",
	"ya":              "young adult",
	"lit fic":         "literary fiction",
	"historical":      "historical fiction",
	"autobiography":   "biography",
	"memoir":          "biography",
	"detective":       "mystery",
	"crime":           "mystery",
	"suspense":        "thriller",
	"comedy":          "humor",
	"motivational":    "self-help",
	"spirituality":    "philosophy",
	"classic":         "literary fiction",
	"classics":        "literary fiction",
	"space opera":     "science fiction",
	"epic fantasy":    "fantasy",
	"urban fantasy":   "fantasy",
	"romantic comedy": "romance",
}

// NormalizeGenre lower-cases, trims and de-aliases a free-form genre string.
func NormalizeGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if canonical, ok := genreAliases[g]; ok {
		return canonical
	}
	return g
}

// BuildFeatureContext derives the scoring channels for one candidate.
// genrePrefs is the per-user acceptance rate by genre (empty map is fine).
func BuildFeatureContext(book domain.Book, mood MoodCategory, genrePrefs map[string]float64) FeatureContext {
	genre := NormalizeGenre(book.Genre)

	return FeatureContext{
		Mood:            mood,
		Genre:           genre,
		MoodMatch:       scoreMoodMatch(book, mood, genre),
		GenrePreference: scoreGenrePreference(genre, genrePrefs),
		HistorySignal:   scoreHistory(book),
		Difficulty:      difficultyEstimate(book.PageCount),
		Popularity:      scorePopularity(book),
	}
}

// Sanitize clamps every channel into [0,1]. Upstream feature extraction is
// best-effort and must never crash ranking.
func (fc FeatureContext) Sanitize() FeatureContext {
	fc.MoodMatch = clamp01(fc.MoodMatch)
	fc.GenrePreference = clamp01(fc.GenrePreference)
	fc.HistorySignal = clamp01(fc.HistorySignal)
	fc.Difficulty = clamp01(fc.Difficulty)
	fc.Popularity = clamp01(fc.Popularity)
	return fc
}

// StateKey returns the canonical policy-table key for this context.
func (fc FeatureContext) StateKey() string {
	return string(fc.Mood) + "|" + fc.Genre
}

// scoreMoodMatch measures how well a book fits the requested mood: explicit
// mood tags win, otherwise the genre is matched against the mood's suggested
// genres with earlier suggestions weighted higher.
func scoreMoodMatch(book domain.Book, mood MoodCategory, genre string) float64 {
	if book.MoodTags != "" {
		moodLower := strings.ToLower(string(mood))
		for _, tag := range strings.Split(book.MoodTags, ",") {
			if strings.ToLower(strings.TrimSpace(tag)) == moodLower {
				return 1.0
			}
		}
	}

	suggested := moodGenres[mood]
	if len(suggested) == 0 || genre == "" {
		return neutralScore
	}

	best := 0.0
	for i, sg := range suggested {
		positionWeight := 1.0 - float64(i)*0.1
		match := genreSimilarity(genre, sg)
		if weighted := match * positionWeight; weighted > best {
			best = weighted
		}
	}
	return clamp01(best)
}

// genreSimilarity is a deterministic tiered match between two normalized
// genre strings.
func genreSimilarity(a, b string) float64 {
	switch {
	case a == b:
		return 1.0
	case strings.Contains(a, b) || strings.Contains(b, a):
		return 0.8
	default:
		return 0.0
	}
}

func scoreGenrePreference(genre string, prefs map[string]float64) float64 {
	if len(prefs) == 0 || genre == "" {
		return neutralScore
	}

	best := 0.0
	found := false
	for prefGenre, affinity := range prefs {
		if genreSimilarity(genre, NormalizeGenre(prefGenre)) >= 0.8 {
			found = true
			if affinity > best {
				best = affinity
			}
		}
	}
	if !found {
		return neutralScore
	}
	return clamp01(best)
}

// scoreHistory favors books not yet read.
func scoreHistory(book domain.Book) float64 {
	if book.IsRead {
		return 0.2
	}
	return 0.8
}

// difficultyEstimate maps page count into a [0,1] difficulty estimate.
// Unknown page counts stay neutral.
func difficultyEstimate(pageCount int) float64 {
	switch {
	case pageCount <= 0:
		return neutralScore
	case pageCount < 200:
		return 0.2
	case pageCount < 400:
		return 0.4
	case pageCount < 600:
		return 0.7
	default:
		return 0.9
	}
}

// scorePopularity combines a 5-star rating with a small bonus for books with
// many ratings.
func scorePopularity(book domain.Book) float64 {
	if book.Rating <= 0 {
		return neutralScore
	}

	score := book.Rating / 5.0
	bonus := float64(book.RatingsCount) / 10000.0
	if bonus > 0.2 {
		bonus = 0.2
	}
	return clamp01(score + bonus)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
