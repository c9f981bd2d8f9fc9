package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gideonapp/engage/internal/dispatch"
	"github.com/gideonapp/engage/internal/models"
	"github.com/gideonapp/engage/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Runner runs one dispatch pass. Satisfied by dispatch.Dispatcher.
type Runner interface {
	Run(ctx context.Context, family models.Family, category models.Category, now time.Time) (*dispatch.Result, error)
}

// DispatchHandler exposes the scheduler-facing dispatch trigger
type DispatchHandler struct {
	dispatcher Runner
	logger     *zap.Logger
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(dispatcher Runner, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher, logger: logger}
}

// RegisterRoutes registers dispatch routes on the given router.
// The router should already have the /api/v1 prefix and the scheduler token
// middleware applied.
func (h *DispatchHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/dispatch/{family}/{category}", h.Dispatch).Methods("POST")
}

// DispatchResponse is the run summary returned to the scheduler
type DispatchResponse struct {
	Processed int                  `json:"processed"`
	Skipped   int                  `json:"skipped"`
	Errors    []dispatch.UserError `json:"errors,omitempty"`
}

// Dispatch runs one family+category pass across all users. Per-user failures
// do not fail the run; only a failure to enumerate users returns 500.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := validation.ValidateFamily(vars["family"]); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.ValidateCategory(vars["category"]); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	family := models.Family(vars["family"])
	category := models.Category(vars["category"])

	result, err := h.dispatcher.Run(r.Context(), family, category, time.Now().UTC())
	if err != nil {
		h.logger.Error("dispatch run failed",
			zap.String("family", string(family)),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Dispatch run failed")
		return
	}

	respondJSON(w, http.StatusOK, DispatchResponse{
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Errors:    result.Errors,
	})
}
