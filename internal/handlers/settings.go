package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gideonapp/engage/internal/database"
	"github.com/gideonapp/engage/internal/models"
	"github.com/gideonapp/engage/internal/request"
	"github.com/gideonapp/engage/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// SettingsHandler handles notification settings requests
type SettingsHandler struct {
	settingsRepo database.SettingsRepositoryInterface
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsRepo database.SettingsRepositoryInterface) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

// RegisterRoutes registers settings routes on the given router.
// The router should already have the /api/v1 prefix.
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notification-settings/{family}", h.GetSettings).Methods("GET")
	r.HandleFunc("/notification-settings/{family}", h.UpdateSettings).Methods("PATCH")
}

// UpdateSettingsRequest carries partial preference updates. Last-sent stamps
// are never client-writable.
type UpdateSettingsRequest struct {
	MorningEnabled       *bool   `json:"morning_enabled,omitempty"`
	MiddayEnabled        *bool   `json:"midday_enabled,omitempty"`
	EveningEnabled       *bool   `json:"evening_enabled,omitempty"`
	SuggestionsEnabled   *bool   `json:"suggestions_enabled,omitempty"`
	WeeklySummaryEnabled *bool   `json:"weekly_summary_enabled,omitempty"`
	MonthlyReportEnabled *bool   `json:"monthly_report_enabled,omitempty"`
	SuggestionFrequency  *string `json:"suggestion_frequency,omitempty" validate:"omitempty,suggestion_frequency"`
	WeeklySummaryDay     *string `json:"weekly_summary_day,omitempty" validate:"omitempty,weekly_summary_day"`
}

func familyFromPath(r *http.Request) (models.Family, error) {
	raw := mux.Vars(r)["family"]
	if err := validation.ValidateFamily(raw); err != nil {
		return "", err
	}
	return models.Family(raw), nil
}

// GetSettings returns the user's settings for one family, creating defaults
// on first access
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	family, err := familyFromPath(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	settings, err := h.settingsRepo.GetOrCreate(r.Context(), user.ID, family)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies a partial preference update for one family
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	family, err := familyFromPath(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
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

	settings, err := h.settingsRepo.GetOrCreate(r.Context(), user.ID, family)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve settings")
		return
	}

	if req.MorningEnabled != nil {
		settings.MorningEnabled = *req.MorningEnabled
	}
	if req.MiddayEnabled != nil {
		settings.MiddayEnabled = *req.MiddayEnabled
	}
	if req.EveningEnabled != nil {
		settings.EveningEnabled = *req.EveningEnabled
	}
	if req.SuggestionsEnabled != nil {
		settings.SuggestionsEnabled = *req.SuggestionsEnabled
	}
	if req.WeeklySummaryEnabled != nil {
		settings.WeeklySummaryEnabled = *req.WeeklySummaryEnabled
	}
	if req.MonthlyReportEnabled != nil {
		settings.MonthlyReportEnabled = *req.MonthlyReportEnabled
	}
	if req.SuggestionFrequency != nil {
		settings.SuggestionFrequency = models.SuggestionFrequency(*req.SuggestionFrequency)
	}
	if req.WeeklySummaryDay != nil {
		settings.WeeklySummaryDay = models.WeeklySummaryDay(*req.WeeklySummaryDay)
	}

	if err := h.settingsRepo.UpdatePreferences(r.Context(), settings); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
