package client

import (
	"context"
	"errors"
	"sync"

	"watchdeck/models"
)

var ErrDeleteNotConfirmed = errors.New("delete not confirmed")

// listAPI is the slice of the server client the list view needs.
type listAPI interface {
	Watchlist(ctx context.Context) ([]models.WatchItem, error)
	UpdateItem(ctx context.Context, in models.WatchItemUpdate) (models.WatchItem, error)
	DeleteItem(ctx context.Context, id int64) error
}

var _ listAPI = (*Client)(nil)

// ListController holds the fetched watchlist and the active type/status
// filters, and routes the list-row actions (rate, delete) back to the server.
type ListController struct {
	api listAPI

	// ConfirmDelete is consulted before any delete. A nil callback means
	// deletes proceed unconditionally.
	ConfirmDelete func(item models.WatchItem) bool

	mu           sync.Mutex
	items        []models.WatchItem
	typeFilter   models.MediaType
	statusFilter models.WatchStatus
}

func NewListController(api listAPI) *ListController {
	return &ListController{api: api}
}

// Refresh refetches the full list from the server.
func (l *ListController) Refresh(ctx context.Context) error {
	items, err := l.api.Watchlist(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
	return nil
}

// SetTypeFilter narrows the visible list to one media type; the zero value
// shows everything.
func (l *ListController) SetTypeFilter(t models.MediaType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.typeFilter = t
}

// SetStatusFilter narrows the visible list to one status; the zero value
// shows everything.
func (l *ListController) SetStatusFilter(s models.WatchStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statusFilter = s
}

// Items returns the fetched list with the active filters applied. Server
// order (most recently updated first) is preserved.
func (l *ListController) Items() []models.WatchItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.WatchItem, 0, len(l.items))
	for _, item := range l.items {
		if l.typeFilter != "" && item.Type != l.typeFilter {
			continue
		}
		if l.statusFilter != "" && item.Status != l.statusFilter {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Find returns the cached item with the given id.
func (l *ListController) Find(id int64) (models.WatchItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.WatchItem{}, false
}

// NeedsRating returns the completed-but-unrated items; the UI surfaces these
// as rating prompts.
func (l *ListController) NeedsRating() []models.WatchItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.WatchItem
	for _, item := range l.items {
		if item.NeedsRating() {
			out = append(out, item)
		}
	}
	return out
}

// Rate records a verdict for an item and refreshes the cached list.
func (l *ListController) Rate(ctx context.Context, id int64, rating models.Rating) error {
	if _, err := l.api.UpdateItem(ctx, models.WatchItemUpdate{ID: id, Rating: &rating}); err != nil {
		return err
	}
	return l.Refresh(ctx)
}

// SetStatus moves an item to a new status and refreshes the cached list.
func (l *ListController) SetStatus(ctx context.Context, id int64, status models.WatchStatus) error {
	if _, err := l.api.UpdateItem(ctx, models.WatchItemUpdate{ID: id, Status: &status}); err != nil {
		return err
	}
	return l.Refresh(ctx)
}

// Delete removes an item after the confirmation callback approves it, then
// refreshes the cached list.
func (l *ListController) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	var target models.WatchItem
	for _, item := range l.items {
		if item.ID == id {
			target = item
			break
		}
	}
	confirm := l.ConfirmDelete
	l.mu.Unlock()

	if confirm != nil && !confirm(target) {
		return ErrDeleteNotConfirmed
	}

	if err := l.api.DeleteItem(ctx, id); err != nil {
		return err
	}
	return l.Refresh(ctx)
}
