package rest

import (
	"net/http"

	"pickMyBook/business/policy"

	"github.com/labstack/echo/v4"
)

type PolicyAdminHandler struct {
	store      policy.SnapshotStore
	reconciler *policy.Reconciler
}

func NewPolicyAdminHandler(store policy.SnapshotStore, reconciler *policy.Reconciler) *PolicyAdminHandler {
	return &PolicyAdminHandler{
		store:      store,
		reconciler: reconciler,
	}
}

// GET /api/v1/admin/policy
func (h *PolicyAdminHandler) GetPolicy(c echo.Context) error {
	ctx := c.Request().Context()

	store, version, err := h.store.Snapshot(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"version": version,
		"policy":  store,
	})
}

// PUT /api/v1/admin/policy
// body: { "epsilon": 0.05, "learning_rate": 0.2 }
type tunePolicyRequest struct {
	Epsilon      *float64 `json:"epsilon"`
	LearningRate *float64 `json:"learning_rate"`
}

func (h *PolicyAdminHandler) TunePolicy(c echo.Context) error {
	ctx := c.Request().Context()

	var body tunePolicyRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if body.Epsilon == nil && body.LearningRate == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "epsilon or learning_rate is required",
		})
	}

	snap, _, err := h.store.Snapshot(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": err.Error(),
		})
	}

	epsilon := snap.Epsilon
	if body.Epsilon != nil {
		epsilon = *body.Epsilon
	}
	learningRate := snap.LearningRate
	if body.LearningRate != nil {
		learningRate = *body.LearningRate
	}

	next, err := h.reconciler.Tune(ctx, epsilon, learningRate)
	if err != nil {
		return c.JSON(errStatus(err), echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"policy": next,
	})
}
