package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pickMyBook/domain"
	"pickMyBook/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ShelfService interface {
	GetShelf(ctx context.Context, ownerID uint) ([]domain.Book, error)
	GetBookByID(ctx context.Context, ownerID uint, id uint64) (*domain.Book, error)
	AddBook(ctx context.Context, book *domain.Book) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) (*domain.Book, error)
	MarkRead(ctx context.Context, ownerID uint, id uint64, isRead bool) (*domain.Book, error)
	RemoveBook(ctx context.Context, ownerID uint, id uint64) error
}

type ShelfHandler struct {
	shelfService ShelfService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewShelfHandler(shelfService ShelfService) *ShelfHandler {
	return &ShelfHandler{
		shelfService: shelfService,
		validator:    validator.New(),
		timeout:      10 * time.Second,
	}
}

type AddBookRequest struct {
	Title        string  `json:"title" validate:"required"`
	Author       string  `json:"author"`
	Genre        string  `json:"genre"`
	MoodTags     string  `json:"mood_tags"`
	PageCount    int     `json:"page_count" validate:"gte=0"`
	Rating       float64 `json:"rating" validate:"gte=0,lte=5"`
	RatingsCount int     `json:"ratings_count" validate:"gte=0"`
}

type UpdateBookRequest struct {
	Title        string  `json:"title" validate:"required"`
	Author       string  `json:"author"`
	Genre        string  `json:"genre"`
	MoodTags     string  `json:"mood_tags"`
	PageCount    int     `json:"page_count" validate:"gte=0"`
	Rating       float64 `json:"rating" validate:"gte=0,lte=5"`
	RatingsCount int     `json:"ratings_count" validate:"gte=0"`
	IsRead       bool    `json:"is_read"`
}

type MarkReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

func (h *ShelfHandler) ownerID(c echo.Context) (uint, bool) {
	ownerID, ok := c.Get("user_id").(uint)
	return ownerID, ok
}

func (h *ShelfHandler) GetShelf(c echo.Context) error {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	books, err := h.shelfService.GetShelf(ctx, ownerID)
	if err != nil {
		logger.Error("Failed to get shelf", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get shelf",
		"books":   books,
	})
}

func (h *ShelfHandler) GetBookByID(c echo.Context) error {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	bookIdStr := c.Param("id")
	bookId, err := strconv.ParseUint(bookIdStr, 10, 64)
	if err != nil {
		logger.Error("Invalid book id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	book, err := h.shelfService.GetBookByID(ctx, ownerID, bookId)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully find book by id",
		"book":    book,
	})
}

func (h *ShelfHandler) AddBook(c echo.Context) error {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req AddBookRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate add book request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	book, err := h.shelfService.AddBook(ctx, &domain.Book{
		OwnerID:      ownerID,
		Title:        req.Title,
		Author:       req.Author,
		Genre:        req.Genre,
		MoodTags:     req.MoodTags,
		PageCount:    req.PageCount,
		Rating:       req.Rating,
		RatingsCount: req.RatingsCount,
	})
	if err != nil {
		logger.Error("Failed to add book", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "successfully add book",
		"book":    book,
	})
}

func (h *ShelfHandler) UpdateBook(c echo.Context) error {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	bookIdStr := c.Param("id")
	bookId, err := strconv.ParseUint(bookIdStr, 10, 64)
	if err != nil {
		logger.Error("Invalid book id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate update book request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	book, err := h.shelfService.UpdateBook(ctx, &domain.Book{
		ID:           bookId,
		OwnerID:      ownerID,
		Title:        req.Title,
		Author:       req.Author,
		Genre:        req.Genre,
		MoodTags:     req.MoodTags,
		PageCount:    req.PageCount,
		Rating:       req.Rating,
		RatingsCount: req.RatingsCount,
		IsRead:       req.IsRead,
	})
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully update book",
		"book":    book,
	})
}

func (h *ShelfHandler) MarkRead(c echo.Context) error {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	bookIdStr := c.Param("id")
	bookId, err := strconv.ParseUint(bookIdStr, 10, 64)
	if err != nil {
		logger.Error("Invalid book id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req MarkReadRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate mark read request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	book, err := h.shelfService.MarkRead(ctx, ownerID, bookId, *req.IsRead)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully update read status",
		"book":    book,
	})
}

func (h *ShelfHandler) RemoveBook(c echo.Context) error {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	bookIdStr := c.Param("id")
	bookId, err := strconv.ParseUint(bookIdStr, 10, 64)
	if err != nil {
		logger.Error("Invalid book id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.shelfService.RemoveBook(ctx, ownerID, bookId); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully remove book",
	})
}
