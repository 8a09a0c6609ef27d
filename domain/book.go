package domain

import (
	"time"
)

// CREATE TABLE public.books (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     owner_id        BIGINT NOT NULL REFERENCES users(id),
//     title           TEXT NOT NULL,
//     author          TEXT,
//     genre           TEXT,
//     mood_tags       TEXT,
//     page_count      INT,
//     rating          NUMERIC,
//     ratings_count   INT,
//     is_read         BOOLEAN DEFAULT FALSE,
//     created_at      TIMESTAMPTZ
// );

type Book struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID      uint      `gorm:"column:owner_id;not null" json:"owner_id"`
	Title        string    `gorm:"column:title;type:text;not null" json:"title"`
	Author       string    `gorm:"column:author;type:text" json:"author"`
	Genre        string    `gorm:"column:genre;type:text" json:"genre"`
	MoodTags     string    `gorm:"column:mood_tags;type:text" json:"mood_tags"` // comma-separated inferred mood labels
	PageCount    int       `gorm:"column:page_count" json:"page_count"`
	Rating       float64   `gorm:"column:rating;type:numeric" json:"rating"`
	RatingsCount int       `gorm:"column:ratings_count" json:"ratings_count"`
	IsRead       bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}
