package shelf

import (
	"context"
	"errors"
	"fmt"
	"pickMyBook/domain"
	"pickMyBook/pkg/logger"
)

// BookRepository contract interface
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	FindByID(ctx context.Context, id uint64) (domain.Book, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id uint64) error
}

type shelfService struct {
	bookRepo BookRepository
}

func NewShelfService(bookRepo BookRepository) *shelfService {
	return &shelfService{
		bookRepo: bookRepo,
	}
}

func (s *shelfService) GetShelf(ctx context.Context, ownerID uint) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get shelf")
		return nil, fmt.Errorf("context error: %w", err)
	}

	books, err := s.bookRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		logger.Error("Failed to load shelf", err)
		return nil, err
	}

	return books, nil
}

func (s *shelfService) GetBookByID(ctx context.Context, ownerID uint, id uint64) (*domain.Book, error) {
	if id == 0 {
		logger.Error("invalid book id")
		return nil, errors.New("invalid book id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get book by id")
		return nil, fmt.Errorf("context error: %w", err)
	}

	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find book by id", err)
		return nil, err
	}

	if book.OwnerID != ownerID {
		return nil, errors.New("book not found")
	}

	return &book, nil
}

func (s *shelfService) AddBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when add book")
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if book.Title == "" {
		logger.Error("Invalid book data: title is required")
		return nil, errors.New("title is required")
	}

	if book.PageCount < 0 {
		logger.Error("Invalid book data: page count cannot be negative")
		return nil, errors.New("page count cannot be negative")
	}

	if book.Rating < 0 || book.Rating > 5 {
		logger.Error("Invalid book data: rating must be between 0 and 5")
		return nil, errors.New("rating must be between 0 and 5")
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		logger.Error("failed to add book", err)
		return nil, fmt.Errorf("failed to add book: %w", err)
	}

	logger.Info("book added to shelf", "owner_id", book.OwnerID, "title", book.Title)

	return book, nil
}

func (s *shelfService) UpdateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating book")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if book.ID == 0 {
		logger.Error("Invalid book data: ID is required")
		return nil, errors.New("book ID is required")
	}

	if book.Title == "" {
		logger.Error("Invalid book data: title is required")
		return nil, errors.New("title is required")
	}

	if book.Rating < 0 || book.Rating > 5 {
		logger.Error("Invalid book data: rating must be between 0 and 5")
		return nil, errors.New("rating must be between 0 and 5")
	}

	existing, err := s.bookRepo.FindByID(ctx, book.ID)
	if err != nil {
		logger.Error("book not found", err)
		return nil, errors.New("book not found")
	}
	if existing.OwnerID != book.OwnerID {
		return nil, errors.New("book not found")
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		logger.Error("failed to update book", err)
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	updatedBook, err := s.bookRepo.FindByID(ctx, book.ID)
	if err != nil {
		logger.Error("failed to fetch updated book", err)
		return nil, fmt.Errorf("failed to fetch updated book: %w", err)
	}

	return &updatedBook, nil
}

// MarkRead flips the read flag, which feeds the reading-history channel.
func (s *shelfService) MarkRead(ctx context.Context, ownerID uint, id uint64, isRead bool) (*domain.Book, error) {
	book, err := s.GetBookByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	book.IsRead = isRead
	if err := s.bookRepo.Update(ctx, book); err != nil {
		logger.Error("failed to mark book read", err)
		return nil, fmt.Errorf("failed to mark book read: %w", err)
	}

	return book, nil
}

func (s *shelfService) RemoveBook(ctx context.Context, ownerID uint, id uint64) error {
	if id == 0 {
		logger.Error("Invalid book id when removing book")
		return errors.New("invalid book id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when removing book")
		return fmt.Errorf("context error: %w", err)
	}

	existing, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("book not found", err)
		return errors.New("book not found")
	}
	if existing.OwnerID != ownerID {
		return errors.New("book not found")
	}

	if err := s.bookRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to remove book", err)
		return fmt.Errorf("failed to remove book: %w", err)
	}

	logger.Info("book removed from shelf", "book_id", id)

	return nil
}
