package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"watchdeck/models"
	"watchdeck/services/watchlist"
)

type watchlistService interface {
	List(ctx context.Context, userID string) ([]models.WatchItem, error)
	Get(ctx context.Context, userID string, id int64) (models.WatchItem, error)
	Create(ctx context.Context, userID string, in models.WatchItemCreate) (models.WatchItem, error)
	Update(ctx context.Context, userID string, in models.WatchItemUpdate) (models.WatchItem, error)
	Delete(ctx context.Context, userID string, id int64) error
}

var _ watchlistService = (*watchlist.Service)(nil)

// userMirror lazily mirrors the token identity into the users table.
type userMirror interface {
	Upsert(ctx context.Context, id, email string) (models.User, error)
}

type WatchlistHandler struct {
	Service watchlistService
	Users   userMirror
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

// SetUserMirror enables the lazy user upsert on item creation.
func (h *WatchlistHandler) SetUserMirror(users userMirror) {
	h.Users = users
}

// List returns the caller's items, or a single item when ?id= is present.
// Ownership is implicit: the user id always comes from the session token, so
// another user's item id behaves exactly like a missing one.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if rawID := strings.TrimSpace(r.URL.Query().Get("id")); rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		item, err := h.Service.Get(r.Context(), user.ID, id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
		return
	}

	items, err := h.Service.List(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WatchlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body models.WatchItemCreate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	// The mirror row is written before the item so admin aggregates never see
	// items for an unknown user. A failed upsert means the store is broken,
	// so the insert is not attempted either.
	if h.Users != nil {
		if _, err := h.Users.Upsert(r.Context(), user.ID, user.Email); err != nil {
			log.Printf("watchlist: user mirror upsert: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	item, err := h.Service.Create(r.Context(), user.ID, body)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *WatchlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body models.WatchItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if body.ID <= 0 {
		writeError(w, http.StatusBadRequest, "item id is required")
		return
	}

	item, err := h.Service.Update(r.Context(), user.ID, body)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	rawID := strings.TrimSpace(r.URL.Query().Get("id"))
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Service.Delete(r.Context(), user.ID, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WatchlistHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, watchlist.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, watchlist.ErrDuplicateTMDBID):
		writeError(w, http.StatusConflict, "title is already on the watchlist")
	case errors.Is(err, watchlist.ErrTitleRequired),
		errors.Is(err, watchlist.ErrTypeRequired),
		errors.Is(err, watchlist.ErrStatusRequired),
		errors.Is(err, watchlist.ErrInvalidType),
		errors.Is(err, watchlist.ErrInvalidStatus),
		errors.Is(err, watchlist.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("watchlist: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
