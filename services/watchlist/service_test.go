package watchlist_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdeck/internal/database"
	"watchdeck/models"
	"watchdeck/services/watchlist"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func intp(i int) *int                        { return &i }
func strp(s string) *string                  { return &s }
func int64p(i int64) *int64                  { return &i }
func ratingp(r models.Rating) *models.Rating { return &r }

func TestCreateAndGet(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:  "The Thing",
		Type:   models.MediaTypeMovie,
		Status: models.StatusPlanToWatch,
		Notes:  strp("rewatch in winter"),
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "user-1", item.UserID)
	assert.Equal(t, "The Thing", item.Title)
	require.NotNil(t, item.Notes)
	assert.Equal(t, "rewatch in winter", *item.Notes)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := svc.Get(ctx, "user-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}

func TestCreateValidation(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Type:   models.MediaTypeMovie,
		Status: models.StatusPlanToWatch,
	})
	assert.ErrorIs(t, err, watchlist.ErrTitleRequired)

	_, err = svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:  "X",
		Type:   "podcast",
		Status: models.StatusPlanToWatch,
	})
	assert.ErrorIs(t, err, watchlist.ErrInvalidType)

	_, err = svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:  "X",
		Type:   models.MediaTypeMovie,
		Status: "paused",
	})
	assert.ErrorIs(t, err, watchlist.ErrInvalidStatus)

	_, err = svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:  "X",
		Type:   models.MediaTypeMovie,
		Status: models.StatusCompleted,
		Rating: ratingp("five-stars"),
	})
	assert.ErrorIs(t, err, watchlist.ErrInvalidRating)
}

func TestOwnershipIsolation(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	item, err := svc.Create(ctx, "alice", models.WatchItemCreate{
		Title:  "Severance",
		Type:   models.MediaTypeShow,
		Status: models.StatusWatching,
	})
	require.NoError(t, err)

	// Another user addressing the same id sees nothing.
	_, err = svc.Get(ctx, "bob", item.ID)
	assert.ErrorIs(t, err, watchlist.ErrNotFound)

	_, err = svc.Update(ctx, "bob", models.WatchItemUpdate{
		ID:     item.ID,
		Status: statusp(models.StatusDropped),
	})
	assert.ErrorIs(t, err, watchlist.ErrNotFound)

	err = svc.Delete(ctx, "bob", item.ID)
	assert.ErrorIs(t, err, watchlist.ErrNotFound)

	// The row is untouched.
	got, err := svc.Get(ctx, "alice", item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWatching, got.Status)

	items, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func statusp(s models.WatchStatus) *models.WatchStatus { return &s }

func TestPartialUpdateLeavesOtherFields(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:         "Andor",
		Type:          models.MediaTypeShow,
		Status:        models.StatusWatching,
		CurrentSeason: intp(1),
		TotalSeasons:  intp(2),
		Notes:         strp("slow burn"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-1", models.WatchItemUpdate{
		ID:     item.ID,
		Status: statusp(models.StatusCompleted),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "Andor", updated.Title)
	assert.False(t, updated.UpdatedAt.Before(item.UpdatedAt))
	require.NotNil(t, updated.CurrentSeason)
	assert.Equal(t, 1, *updated.CurrentSeason)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "slow burn", *updated.Notes)
	assert.True(t, updated.NeedsRating())

	rated, err := svc.Update(ctx, "user-1", models.WatchItemUpdate{
		ID:     item.ID,
		Rating: ratingp(models.RatingLoved),
	})
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, models.RatingLoved, *rated.Rating)
	assert.False(t, rated.NeedsRating())
}

func TestDuplicateTmdbIDRejected(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:        "Dune",
		Type:         models.MediaTypeMovie,
		Status:       models.StatusPlanToWatch,
		TmdbSnapshot: models.TmdbSnapshot{TmdbID: int64p(438631)},
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:        "Dune (again)",
		Type:         models.MediaTypeMovie,
		Status:       models.StatusPlanToWatch,
		TmdbSnapshot: models.TmdbSnapshot{TmdbID: int64p(438631)},
	})
	assert.ErrorIs(t, err, watchlist.ErrDuplicateTMDBID)

	// A different user may track the same title.
	_, err = svc.Create(ctx, "user-2", models.WatchItemCreate{
		Title:        "Dune",
		Type:         models.MediaTypeMovie,
		Status:       models.StatusPlanToWatch,
		TmdbSnapshot: models.TmdbSnapshot{TmdbID: int64p(438631)},
	})
	assert.NoError(t, err)

	// Unmatched items never collide.
	for range 2 {
		_, err = svc.Create(ctx, "user-1", models.WatchItemCreate{
			Title:  "Home Movie",
			Type:   models.MediaTypeMovie,
			Status: models.StatusPlanToWatch,
		})
		require.NoError(t, err)
	}
}

func TestUpdateClearTmdbMatch(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:  "Dune",
		Type:   models.MediaTypeMovie,
		Status: models.StatusPlanToWatch,
		TmdbSnapshot: models.TmdbSnapshot{
			TmdbID:               int64p(438631),
			TmdbPosterPath:       strp("/d.jpg"),
			TmdbOverview:         strp("Spice."),
			TmdbMovieReleaseYear: intp(2021),
		},
	})
	require.NoError(t, err)

	cleared, err := svc.Update(ctx, "user-1", models.WatchItemUpdate{
		ID:             item.ID,
		ClearTmdbMatch: true,
		Title:          strp("Dune (book club edit)"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Dune (book club edit)", cleared.Title)
	assert.Nil(t, cleared.TmdbID)
	assert.Nil(t, cleared.TmdbPosterPath)
	assert.Nil(t, cleared.TmdbOverview)
	assert.Nil(t, cleared.TmdbMovieReleaseYear)

	// The old tmdb id is free for a fresh entry again.
	_, err = svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title:        "Dune",
		Type:         models.MediaTypeMovie,
		Status:       models.StatusPlanToWatch,
		TmdbSnapshot: models.TmdbSnapshot{TmdbID: int64p(438631)},
	})
	assert.NoError(t, err)

	// A clear combined with a new snapshot installs the new one.
	swapped, err := svc.Update(ctx, "user-1", models.WatchItemUpdate{
		ID:             item.ID,
		ClearTmdbMatch: true,
		TmdbSnapshot:   models.TmdbSnapshot{TmdbID: int64p(693134), TmdbPosterPath: strp("/d2.jpg")},
	})
	require.NoError(t, err)
	require.NotNil(t, swapped.TmdbID)
	assert.Equal(t, int64(693134), *swapped.TmdbID)
	require.NotNil(t, swapped.TmdbPosterPath)
	assert.Equal(t, "/d2.jpg", *swapped.TmdbPosterPath)
	assert.Nil(t, swapped.TmdbOverview)
}

func TestListOrdering(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title: "A", Type: models.MediaTypeMovie, Status: models.StatusPlanToWatch,
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title: "B", Type: models.MediaTypeMovie, Status: models.StatusPlanToWatch,
	})
	require.NoError(t, err)

	// Touching the older item moves it to the front.
	_, err = svc.Update(ctx, "user-1", models.WatchItemUpdate{
		ID:     first.ID,
		Status: statusp(models.StatusWatching),
	})
	require.NoError(t, err)

	items, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
}

func TestDelete(t *testing.T) {
	svc := watchlist.NewService(newTestDB(t))
	ctx := context.Background()

	item, err := svc.Create(ctx, "user-1", models.WatchItemCreate{
		Title: "Heat", Type: models.MediaTypeMovie, Status: models.StatusCompleted,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", item.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "user-1", item.ID), watchlist.ErrNotFound)

	n, err := svc.CountForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
