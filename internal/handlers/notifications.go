package handlers

import (
	"net/http"
	"strconv"

	"github.com/gideonapp/engage/internal/database"
	"github.com/gideonapp/engage/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// NotificationHandler handles notification feed requests
type NotificationHandler struct {
	notifyRepo *database.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifyRepo *database.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifyRepo: notifyRepo}
}

// RegisterRoutes registers notification routes on the given router.
// The router should already have the /api/v1 prefix.
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	r.HandleFunc("/notifications/{id}/read", h.MarkRead).Methods("POST")
}

// ListNotifications lists recent notifications for the authenticated user
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.notifyRepo.ListByUser(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notifications")
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid notification ID")
		return
	}

	if err := h.notifyRepo.MarkRead(r.Context(), user.ID, id); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": "read"})
}
