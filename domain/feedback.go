package domain

import (
	"time"

	"gorm.io/datatypes"
)

// FeedbackEvent is one accept/reject decision on a suggested book.
// Rows are append-only; the learning state itself lives in policy_store.
type FeedbackEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"column:user_id;not null" json:"user_id"`
	BookID        uint64    `gorm:"column:book_id" json:"book_id"`
	Mood          string    `gorm:"column:mood;not null" json:"mood"`
	Genre         string    `gorm:"column:genre;not null" json:"genre"`
	Accepted      bool      `gorm:"column:accepted;not null" json:"accepted"`
	ObservedScore float64   `gorm:"column:observed_score;type:numeric" json:"observed_score"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
}

func (FeedbackEvent) TableName() string {
	return "feedback_events"
}
