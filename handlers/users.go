package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"watchdeck/models"
	"watchdeck/services/users"
)

type usersService interface {
	Upsert(ctx context.Context, id, email string) (models.User, error)
	RecordSession(ctx context.Context, userID string) (models.UserSession, error)
	AdminStats(ctx context.Context) ([]models.AdminUserStats, error)
}

var _ usersService = (*users.Service)(nil)

type UsersHandler struct {
	Service usersService
}

func NewUsersHandler(service usersService) *UsersHandler {
	return &UsersHandler{Service: service}
}

// Sync mirrors the authenticated identity into the local users table and
// returns the row. The client calls this once after login; the payload is
// ignored because identity only ever comes from the session token.
func (h *UsersHandler) Sync(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.Service.Upsert(r.Context(), user.ID, user.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// RecordSession appends one login event for the caller.
func (h *UsersHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if _, err := h.Service.RecordSession(r.Context(), user.ID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AdminStats returns per-user aggregate counts. Admin gating happens in the
// route middleware, not here.
func (h *UsersHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.AdminStats(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UsersHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserIDRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		log.Printf("users: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
