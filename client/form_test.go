package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdeck/models"
)

type fakeFormAPI struct {
	mu        sync.Mutex
	searches  []string
	results   map[string][]models.SearchResult
	searchErr error
	details   *models.TmdbItemDetails
	created   []models.WatchItemCreate
	updated   []models.WatchItemUpdate
}

func (f *fakeFormAPI) Search(_ context.Context, query string) ([]models.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[query], nil
}

func (f *fakeFormAPI) Details(_ context.Context, tmdbID int64, _ models.MediaType) (*models.TmdbItemDetails, error) {
	if f.details != nil {
		return f.details, nil
	}
	return &models.TmdbItemDetails{TmdbID: tmdbID}, nil
}

func (f *fakeFormAPI) CreateItem(_ context.Context, in models.WatchItemCreate) (models.WatchItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return models.WatchItem{ID: int64(len(f.created)), UserID: "alice", Title: in.Title, Type: in.Type, Status: in.Status}, nil
}

func (f *fakeFormAPI) UpdateItem(_ context.Context, in models.WatchItemUpdate) (models.WatchItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, in)
	return models.WatchItem{ID: in.ID}, nil
}

func (f *fakeFormAPI) searchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	api := &fakeFormAPI{results: map[string][]models.SearchResult{}}
	f := NewFormController(api)
	f.Debounce = 30 * time.Millisecond

	done := make(chan struct{}, 1)
	f.OnResults = func([]models.SearchResult) {
		select {
		case done <- struct{}{}:
		default:
		}
	}

	ctx := context.Background()
	f.SetTitle(ctx, "a")
	f.SetTitle(ctx, "al")
	f.SetTitle(ctx, "alien")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search")
	}

	calls := api.searchCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "alien", calls[0])
}

func TestEmptyTitleClearsWithoutSearching(t *testing.T) {
	api := &fakeFormAPI{results: map[string][]models.SearchResult{}}
	f := NewFormController(api)
	f.Debounce = 10 * time.Millisecond

	ctx := context.Background()
	f.SetTitle(ctx, "alien")
	f.SetTitle(ctx, "")

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, api.searchCalls())
	assert.Empty(t, f.Results())
}

func TestStaleResultsAreDiscarded(t *testing.T) {
	api := &fakeFormAPI{results: map[string][]models.SearchResult{
		"old": {{TmdbID: 1, Name: "Old"}},
		"new": {{TmdbID: 2, Name: "New"}},
	}}
	f := NewFormController(api)

	// Simulate two in-flight searches completing out of order.
	f.mu.Lock()
	f.seq = 2
	f.mu.Unlock()

	f.runSearch(context.Background(), 2, "new")
	f.runSearch(context.Background(), 1, "old")

	results := f.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "New", results[0].Name)
}

func TestSearchFailureReachesOnError(t *testing.T) {
	api := &fakeFormAPI{searchErr: errors.New("gateway down")}
	f := NewFormController(api)

	var got error
	f.OnError = func(err error) { got = err }

	f.mu.Lock()
	f.seq = 1
	f.mu.Unlock()
	f.runSearch(context.Background(), 1, "alien")

	require.Error(t, got)
	assert.Equal(t, "gateway down", got.Error())
	assert.Empty(t, f.Results())
}

func TestSelectResultMergesSnapshot(t *testing.T) {
	api := &fakeFormAPI{
		results: map[string][]models.SearchResult{},
		details: &models.TmdbItemDetails{
			TmdbID:            1396,
			PosterPath:        "/b.jpg",
			Overview:          "A chemistry teacher breaks bad.",
			ImdbID:            "tt0903747",
			TvNumberOfSeasons: 5,
			TvStatus:          "Ended",
		},
	}
	f := NewFormController(api)

	err := f.SelectResult(context.Background(), models.SearchResult{
		TmdbID:    1396,
		Name:      "Breaking Bad",
		MediaType: models.MediaTypeShow,
	})
	require.NoError(t, err)

	draft := f.Draft()
	assert.Equal(t, "Breaking Bad", draft.Title)
	assert.Equal(t, models.MediaTypeShow, draft.Type)
	require.NotNil(t, draft.TmdbID)
	assert.Equal(t, int64(1396), *draft.TmdbID)
	require.NotNil(t, draft.TmdbTvStatus)
	assert.Equal(t, "Ended", *draft.TmdbTvStatus)
	require.NotNil(t, draft.TotalSeasons)
	assert.Equal(t, 5, *draft.TotalSeasons)
}

func TestEditingTitleClearsMatch(t *testing.T) {
	api := &fakeFormAPI{results: map[string][]models.SearchResult{}}
	f := NewFormController(api)

	require.NoError(t, f.SelectResult(context.Background(), models.SearchResult{
		TmdbID:    603,
		Name:      "The Matrix",
		MediaType: models.MediaTypeMovie,
	}))
	require.NotNil(t, f.Draft().TmdbID)

	f.SetTitle(context.Background(), "The Matrix Reloaded")
	assert.Nil(t, f.Draft().TmdbID, "snapshot should be dropped after a title edit")

	// With the behavior switched off the match sticks.
	f2 := NewFormController(api)
	f2.ClearMatchOnEdit = false
	require.NoError(t, f2.SelectResult(context.Background(), models.SearchResult{
		TmdbID:    603,
		Name:      "The Matrix",
		MediaType: models.MediaTypeMovie,
	}))
	f2.SetTitle(context.Background(), "The Matrix Reloaded")
	assert.NotNil(t, f2.Draft().TmdbID)
}

func TestEditSubmitClearsDroppedMatch(t *testing.T) {
	api := &fakeFormAPI{results: map[string][]models.SearchResult{}}
	f := NewFormController(api)

	tmdbID := int64(438631)
	f.LoadForEdit(models.WatchItem{
		ID:     9,
		Title:  "Dune",
		Type:   models.MediaTypeMovie,
		Status: models.StatusPlanToWatch,
		TmdbID: &tmdbID,
	})

	f.SetTitle(context.Background(), "Dune (book club edit)")
	require.Nil(t, f.Draft().TmdbID)

	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, api.updated, 1)
	assert.True(t, api.updated[0].ClearTmdbMatch,
		"a match dropped during an edit must clear the stored snapshot")

	// A fresh edit without a dropped match does not clear anything.
	f.LoadForEdit(models.WatchItem{
		ID:     9,
		Title:  "Dune (book club edit)",
		Type:   models.MediaTypeMovie,
		Status: models.StatusPlanToWatch,
	})
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, api.updated, 2)
	assert.False(t, api.updated[1].ClearTmdbMatch)
}

func TestSubmitValidatesAndCreates(t *testing.T) {
	api := &fakeFormAPI{results: map[string][]models.SearchResult{}}
	f := NewFormController(api)

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNothingToSubmit)

	f.SetTitle(context.Background(), "Heat")
	f.SetType(models.MediaTypeMovie)
	f.SetStatus(models.StatusPlanToWatch)

	item, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Heat", item.Title)
	require.Len(t, api.created, 1)

	// Submit resets the form.
	assert.Empty(t, f.Draft().Title)
}

func TestSubmitUpdatesWhenEditing(t *testing.T) {
	api := &fakeFormAPI{results: map[string][]models.SearchResult{}}
	f := NewFormController(api)

	season := 2
	f.LoadForEdit(models.WatchItem{
		ID:            7,
		Title:         "Andor",
		Type:          models.MediaTypeShow,
		Status:        models.StatusWatching,
		CurrentSeason: &season,
	})
	f.SetStatus(models.StatusCompleted)

	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, api.updated, 1)
	up := api.updated[0]
	assert.Equal(t, int64(7), up.ID)
	require.NotNil(t, up.Status)
	assert.Equal(t, models.StatusCompleted, *up.Status)
	require.NotNil(t, up.CurrentSeason)
	assert.Equal(t, 2, *up.CurrentSeason)
}
