package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// PreferenceRepository derives per-genre affinity from a user's feedback
// history: the acceptance rate of past recommendations in that genre.
type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

type genreAffinityRow struct {
	Genre    string  `gorm:"column:genre"`
	Affinity float64 `gorm:"column:affinity"`
}

func (r *PreferenceRepository) GenreAffinity(ctx context.Context, userID uint) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []genreAffinityRow
	err := r.DB.WithContext(ctx).
		Raw(`SELECT genre,
		            AVG(CASE WHEN accepted THEN 1.0 ELSE 0.0 END) AS affinity
		     FROM feedback_events
		     WHERE user_id = ? AND genre <> ''
		     GROUP BY genre`, userID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate genre affinity: %w", err)
	}

	affinity := make(map[string]float64, len(rows))
	for _, row := range rows {
		affinity[row.Genre] = row.Affinity
	}

	return affinity, nil
}
