package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gideonapp/engage/internal/database"
	"github.com/gideonapp/engage/internal/engagement"
	"github.com/gideonapp/engage/internal/models"
	"github.com/gideonapp/engage/internal/request"
	"github.com/gideonapp/engage/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// ActivityHandler handles activity recording and tracker reads
type ActivityHandler struct {
	recorder    *engagement.Recorder
	trackerRepo database.TrackerRepositoryInterface
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(recorder *engagement.Recorder, trackerRepo database.TrackerRepositoryInterface) *ActivityHandler {
	return &ActivityHandler{recorder: recorder, trackerRepo: trackerRepo}
}

// RegisterRoutes registers activity routes on the given router.
// The router should already have the /api/v1 prefix.
func (h *ActivityHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/activity", h.RecordActivity).Methods("POST")
	r.HandleFunc("/tracker", h.GetTracker).Methods("GET")
}

// RecordActivityRequest represents an activity event from the app
type RecordActivityRequest struct {
	Kind           string `json:"kind" validate:"required,activity_kind"`
	EmotionalTone  string `json:"emotional_tone,omitempty" validate:"max=100"`
	SpiritualTheme string `json:"spiritual_theme,omitempty" validate:"max=100"`
}

// RecordActivity records one engagement event for the authenticated user
func (h *ActivityHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req RecordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request")
		return
	}

	tone := validation.SanitizeText(req.EmotionalTone)
	theme := validation.SanitizeText(req.SpiritualTheme)

	tracker, err := h.recorder.Record(r.Context(), user.ID, models.ActivityKind(req.Kind), tone, theme, time.Now().UTC())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to record activity")
		return
	}

	respondJSON(w, http.StatusOK, tracker)
}

// GetTracker returns the authenticated user's engagement tracker
func (h *ActivityHandler) GetTracker(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	tracker, err := h.trackerRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No activity recorded yet")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tracker")
		return
	}

	respondJSON(w, http.StatusOK, tracker)
}
