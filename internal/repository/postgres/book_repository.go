package postgres

import (
	"context"
	"errors"
	"fmt"

	"pickMyBook/domain"

	"gorm.io/gorm"
)

type BookRepository struct {
	DB *gorm.DB
}

func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{
		DB: db,
	}
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id uint64) (domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return domain.Book{}, fmt.Errorf("context error: %w", err)
	}

	var book domain.Book

	err := r.DB.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, errors.New("book not found")
		}
		return domain.Book{}, fmt.Errorf("failed to find book: %w", err)
	}

	return book, nil
}

func (r *BookRepository) FindByOwner(ctx context.Context, ownerID uint) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var books []domain.Book
	err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find books: %w", err)
	}

	return books, nil
}

func (r *BookRepository) Update(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	var existingBook domain.Book
	if err := r.DB.WithContext(ctx).First(&existingBook, book.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("book not found")
		}
		return fmt.Errorf("failed to find book: %w", err)
	}

	updateData := map[string]interface{}{
		"title":         book.Title,
		"author":        book.Author,
		"genre":         book.Genre,
		"mood_tags":     book.MoodTags,
		"page_count":    book.PageCount,
		"rating":        book.Rating,
		"ratings_count": book.RatingsCount,
		"is_read":       book.IsRead,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", book.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("book not found or already deleted")
	}

	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("book not found or already deleted")
	}

	return nil
}
