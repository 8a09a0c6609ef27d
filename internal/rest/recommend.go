package rest

import (
	"context"
	"errors"
	"net/http"

	"pickMyBook/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendHandler struct {
		validate         *validator.Validate
		recommendService RecommendService
	}

	RecommendService interface {
		Recommend(ctx context.Context, userID uint, mood string, limit int) ([]domain.Recommendation, error)
		DebugRecommend(ctx context.Context, userID uint, mood string, limit int) ([]domain.DebugRecommendation, error)
		LogFeedback(ctx context.Context, event domain.FeedbackEvent) error
		Stats(ctx context.Context) (domain.PolicyStats, error)
	}

	RecommendQuery struct {
		Mood string `query:"mood" validate:"required"`
		N    int    `query:"n"`
	}

	FeedbackRequest struct {
		BookID        uint64  `json:"book_id" validate:"required"`
		Mood          string  `json:"mood" validate:"required"`
		Genre         string  `json:"genre" validate:"required"`
		Accepted      *bool   `json:"accepted" validate:"required"`
		ObservedScore float64 `json:"observed_score"`
	}
)

func NewRecommendHandler(svc RecommendService) *RecommendHandler {
	return &RecommendHandler{
		validate:         validator.New(),
		recommendService: svc,
	}
}

// errStatus maps domain sentinel errors to HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GET /api/v1/recommendations?mood=adventurous&n=5
func (h *RecommendHandler) Recommend(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.recommendService.Recommend(c.Request().Context(), userID, q.Mood, q.N)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// GET /api/v1/recommendations/debug?mood=adventurous&n=5
func (h *RecommendHandler) DebugRecommend(c echo.Context) error {
	uidVal := c.Get("user_id")
	userID, ok := uidVal.(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.recommendService.DebugRecommend(c.Request().Context(), userID, q.Mood, q.N)
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

func (h *RecommendHandler) Feedback(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := domain.FeedbackEvent{
		UserID:        userID,
		BookID:        req.BookID,
		Mood:          req.Mood,
		Genre:         req.Genre,
		Accepted:      *req.Accepted,
		ObservedScore: req.ObservedScore,
	}

	if err := h.recommendService.LogFeedback(c.Request().Context(), event); err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

// GET /api/v1/recommendations/stats
func (h *RecommendHandler) Stats(c echo.Context) error {
	stats, err := h.recommendService.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(errStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
