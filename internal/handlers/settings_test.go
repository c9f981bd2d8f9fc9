package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/gideonapp/engage/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type stubSettingsRepo struct {
	getOrCreateFunc func(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error)
	updatePrefsFunc func(ctx context.Context, s *models.NotificationSettings) error
}

func (s *stubSettingsRepo) ListByFamily(ctx context.Context, family models.Family) ([]*models.NotificationSettings, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSettingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationSettings, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSettingsRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error) {
	return s.getOrCreateFunc(ctx, userID, family)
}

func (s *stubSettingsRepo) UpdatePreferences(ctx context.Context, settings *models.NotificationSettings) error {
	return s.updatePrefsFunc(ctx, settings)
}

func (s *stubSettingsRepo) StampLastSent(ctx context.Context, id uuid.UUID, cat models.Category, prev *time.Time, sent time.Time) error {
	return errors.New("not implemented")
}

func settingsRequest(t *testing.T, method, path, body string, user *models.User) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if user != nil {
		req = req.WithContext(request.WithUser(req.Context(), user))
	}
	return req
}

func newSettingsRouter(repo *stubSettingsRepo) *mux.Router {
	h := NewSettingsHandler(repo)
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestGetSettingsCreatesDefaults(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Email: "test@example.com"}
	repo := &stubSettingsRepo{
		getOrCreateFunc: func(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error) {
			if userID != user.ID || family != models.FamilyChefDaniel {
				t.Errorf("GetOrCreate(%s, %s), want caller's user and path family", userID, family)
			}
			return models.DefaultSettings(userID, family), nil
		},
	}

	req := settingsRequest(t, "GET", "/notification-settings/chef_daniel", "", user)
	w := httptest.NewRecorder()
	newSettingsRouter(repo).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data models.NotificationSettings `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if !body.Data.MorningEnabled || body.Data.MiddayEnabled {
		t.Errorf("defaults = %+v, want morning on and midday off", body.Data)
	}
	if body.Data.SuggestionFrequency != models.FrequencyEvery3Days {
		t.Errorf("SuggestionFrequency = %s, want every_3_days default", body.Data.SuggestionFrequency)
	}
}

func TestGetSettingsRejectsUnknownFamily(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	req := settingsRequest(t, "GET", "/notification-settings/clippy", "", user)
	w := httptest.NewRecorder()
	newSettingsRouter(&stubSettingsRepo{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetSettingsRequiresUser(t *testing.T) {
	t.Parallel()

	req := settingsRequest(t, "GET", "/notification-settings/hannah", "", nil)
	w := httptest.NewRecorder()
	newSettingsRouter(&stubSettingsRepo{}).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdateSettingsPartialPatch(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	existing := models.DefaultSettings(user.ID, models.FamilyHannah)
	sent := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	existing.LastMorningSent = &sent

	var updated *models.NotificationSettings
	repo := &stubSettingsRepo{
		getOrCreateFunc: func(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error) {
			return existing, nil
		},
		updatePrefsFunc: func(ctx context.Context, s *models.NotificationSettings) error {
			updated = s
			return nil
		},
	}

	body := `{"evening_enabled": true, "suggestion_frequency": "weekly"}`
	req := settingsRequest(t, "PATCH", "/notification-settings/hannah", body, user)
	w := httptest.NewRecorder()
	newSettingsRouter(repo).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if updated == nil {
		t.Fatal("expected UpdatePreferences to be called")
	}
	if !updated.EveningEnabled {
		t.Error("EveningEnabled not applied")
	}
	if updated.SuggestionFrequency != models.FrequencyWeekly {
		t.Errorf("SuggestionFrequency = %s, want weekly", updated.SuggestionFrequency)
	}
	// Untouched fields keep their values.
	if !updated.MorningEnabled {
		t.Error("MorningEnabled changed by a patch that did not name it")
	}
	if updated.LastMorningSent == nil || !updated.LastMorningSent.Equal(sent) {
		t.Error("last-sent stamp must survive preference updates")
	}
}

func TestUpdateSettingsRejectsBadCadence(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	repo := &stubSettingsRepo{
		getOrCreateFunc: func(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error) {
			t.Error("repository must not be touched for invalid input")
			return nil, nil
		},
	}

	body := `{"suggestion_frequency": "hourly"}`
	req := settingsRequest(t, "PATCH", "/notification-settings/hannah", body, user)
	w := httptest.NewRecorder()
	newSettingsRouter(repo).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateSettingsIgnoresStampFields(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	existing := models.DefaultSettings(user.ID, models.FamilyHannah)

	var updated *models.NotificationSettings
	repo := &stubSettingsRepo{
		getOrCreateFunc: func(ctx context.Context, userID uuid.UUID, family models.Family) (*models.NotificationSettings, error) {
			return existing, nil
		},
		updatePrefsFunc: func(ctx context.Context, s *models.NotificationSettings) error {
			updated = s
			return nil
		},
	}

	// Clients may send stamp fields; they are not part of the patch schema
	// and must be silently dropped.
	body := `{"midday_enabled": true, "last_morning_sent": "2030-01-01T00:00:00Z"}`
	req := settingsRequest(t, "PATCH", "/notification-settings/hannah", body, user)
	w := httptest.NewRecorder()
	newSettingsRouter(repo).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if updated == nil || !updated.MiddayEnabled {
		t.Fatal("expected midday flag applied")
	}
	if updated.LastMorningSent != nil {
		t.Error("client-supplied stamp must not be written")
	}
}
