//go:build !integration

package recommend

import (
	"errors"
	"testing"

	"pickMyBook/domain"
)

func TestParseMood(t *testing.T) {
	cases := []struct {
		in   string
		want MoodCategory
	}{
		{"Adventurous", MoodAdventurous},
		{"adventurous", MoodAdventurous},
		{"  RELAXED  ", MoodRelaxed},
		{"contemplative", MoodContemplative},
	}

	for _, tc := range cases {
		got, err := ParseMood(tc.in)
		if err != nil {
			t.Errorf("ParseMood(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMood(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseMoodUnknown(t *testing.T) {
	_, err := ParseMood("hangry")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ParseMood(unknown) error = %v, want ErrValidation", err)
	}
}

func TestNormalizeGenre(t *testing.T) {
	cases := map[string]string{
		"Sci-Fi":         "science fiction",
		"  FANTASY  ":    "fantasy",
		"memoir":         "biography",
		"crime":          "mystery",
		"epic fantasy":   "fantasy",
		"something else": "something else",
		"":               "",
	}

	for in, want := range cases {
		if got := NormalizeGenre(in); got != want {
			t.Errorf("NormalizeGenre(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildFeatureContextMoodTagWins(t *testing.T) {
	book := domain.Book{
		Title:    "Dune",
		Genre:    "Sci-Fi",
		MoodTags: "escapist, Adventurous",
	}

	fc := BuildFeatureContext(book, MoodAdventurous, nil)

	if fc.MoodMatch != 1.0 {
		t.Errorf("explicit mood tag MoodMatch = %v, want 1.0", fc.MoodMatch)
	}
	if fc.Genre != "science fiction" {
		t.Errorf("Genre = %q, want normalized alias", fc.Genre)
	}
}

func TestBuildFeatureContextGenreFallback(t *testing.T) {
	book := domain.Book{Title: "The Hobbit", Genre: "fantasy"}

	fc := BuildFeatureContext(book, MoodAdventurous, nil)

	// fantasy is the second suggested genre for Adventurous
	if !almostEqual(fc.MoodMatch, 0.9) {
		t.Errorf("genre fallback MoodMatch = %v, want 0.9", fc.MoodMatch)
	}
}

func TestBuildFeatureContextNeutralDefaults(t *testing.T) {
	book := domain.Book{Title: "Untitled"}

	fc := BuildFeatureContext(book, MoodCurious, nil)

	if fc.GenrePreference != neutralScore {
		t.Errorf("GenrePreference = %v, want neutral", fc.GenrePreference)
	}
	if fc.Difficulty != neutralScore {
		t.Errorf("Difficulty for unknown page count = %v, want neutral", fc.Difficulty)
	}
	if fc.Popularity != neutralScore {
		t.Errorf("Popularity for unrated book = %v, want neutral", fc.Popularity)
	}
}

func TestGenrePreferenceFromHistory(t *testing.T) {
	prefs := map[string]float64{
		"fantasy": 0.9,
		"mystery": 0.2,
	}

	fc := BuildFeatureContext(domain.Book{Genre: "fantasy"}, MoodEscapist, prefs)
	if !almostEqual(fc.GenrePreference, 0.9) {
		t.Errorf("matched GenrePreference = %v, want 0.9", fc.GenrePreference)
	}

	fc = BuildFeatureContext(domain.Book{Genre: "poetry"}, MoodEscapist, prefs)
	if fc.GenrePreference != neutralScore {
		t.Errorf("unmatched GenrePreference = %v, want neutral", fc.GenrePreference)
	}
}

func TestHistorySignalFavorsUnread(t *testing.T) {
	unread := BuildFeatureContext(domain.Book{}, MoodRelaxed, nil)
	read := BuildFeatureContext(domain.Book{IsRead: true}, MoodRelaxed, nil)

	if unread.HistorySignal <= read.HistorySignal {
		t.Fatalf("unread signal %v should exceed read signal %v",
			unread.HistorySignal, read.HistorySignal)
	}
}

func TestDifficultyEstimateBuckets(t *testing.T) {
	cases := map[int]float64{
		0:    neutralScore,
		150:  0.2,
		300:  0.4,
		450:  0.7,
		900:  0.9,
		-10:  neutralScore,
		199:  0.2,
		599:  0.7,
		600:  0.9,
	}

	for pages, want := range cases {
		if got := difficultyEstimate(pages); !almostEqual(got, want) {
			t.Errorf("difficultyEstimate(%d) = %v, want %v", pages, got, want)
		}
	}
}

func TestPopularityCapsRatingsBonus(t *testing.T) {
	book := domain.Book{Rating: 4.0, RatingsCount: 1_000_000}

	fc := BuildFeatureContext(book, MoodRelaxed, nil)
	if !almostEqual(fc.Popularity, 1.0) {
		t.Fatalf("Popularity = %v, want capped at 1.0", fc.Popularity)
	}
}

func TestStateKeyFormat(t *testing.T) {
	fc := BuildFeatureContext(domain.Book{Genre: "Fantasy"}, MoodAdventurous, nil)

	if got, want := fc.StateKey(), "Adventurous|fantasy"; got != want {
		t.Fatalf("StateKey = %q, want %q", got, want)
	}
}
