package domain

// Recommendation is one ranked candidate returned to the client.
type Recommendation struct {
	BookID  uint64   `json:"book_id"`
	Title   string   `json:"title"`
	Author  string   `json:"author,omitempty"`
	Genre   string   `json:"genre,omitempty"`
	Score   float64  `json:"score"`
	Rank    int      `json:"rank"`
	Reasons []string `json:"reasons,omitempty"`
}

// DebugRecommendation exposes the score components for inspection.
type DebugRecommendation struct {
	BookID          uint64  `json:"book_id"`
	Title           string  `json:"title"`
	Genre           string  `json:"genre"`
	MoodMatch       float64 `json:"mood_match"`
	GenrePreference float64 `json:"genre_preference"`
	ReadingHistory  float64 `json:"reading_history"`
	Difficulty      float64 `json:"difficulty"`
	Popularity      float64 `json:"popularity"`
	ContentScore    float64 `json:"content_score"`
	RLBonus         float64 `json:"rl_bonus"`
	Explored        bool    `json:"explored"`
	FinalScore      float64 `json:"final_score"`
}

// PolicyStats is the learning summary returned by the stats endpoint.
type PolicyStats struct {
	TotalAccepts   int     `json:"total_accepts"`
	TotalRejects   int     `json:"total_rejects"`
	TotalFeedback  int     `json:"total_feedback"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	LearningSteps  int     `json:"learning_steps"`
	StatesLearned  int     `json:"states_learned"`
	Epsilon        float64 `json:"epsilon"`
	LearningRate   float64 `json:"learning_rate"`
}
