package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"watchdeck/models"
)

var (
	ErrUserIDRequired  = errors.New("user id is required")
	ErrTitleRequired   = errors.New("title is required")
	ErrTypeRequired    = errors.New("type is required")
	ErrStatusRequired  = errors.New("status is required")
	ErrInvalidType     = errors.New("type must be movie or show")
	ErrInvalidStatus   = errors.New("status is not a known value")
	ErrInvalidRating   = errors.New("rating is not a known value")
	ErrNotFound        = errors.New("watch item not found")
	ErrDuplicateTMDBID = errors.New("title already on the watchlist")
)

// Service manages persistence and ownership of user watch items.
type Service struct {
	db *sql.DB
}

// NewService creates a watchlist service backed by the provided database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

const itemColumns = `id, user_id, title, type, status, current_season, total_seasons, notes, rating,
	tmdb_id, tmdb_poster_path, tmdb_overview, tmdb_tagline, tmdb_imdb_id,
	tmdb_movie_runtime, tmdb_movie_release_year, tmdb_movie_certification,
	tmdb_tv_first_air_year, tmdb_tv_last_air_year, tmdb_tv_networks,
	tmdb_tv_number_of_episodes, tmdb_tv_number_of_seasons, tmdb_tv_status, tmdb_tv_certification,
	created_at, updated_at`

// List returns all items owned by the user, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]models.WatchItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM watch_items WHERE user_id = ? ORDER BY updated_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list watch items: %w", err)
	}
	defer rows.Close()

	items := make([]models.WatchItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watch item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Get returns a single item if it exists and belongs to the user. A row owned
// by someone else reports ErrNotFound, indistinguishable from a missing row.
func (s *Service) Get(ctx context.Context, userID string, id int64) (models.WatchItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.WatchItem{}, ErrUserIDRequired
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM watch_items WHERE id = ? AND user_id = ?`,
		id, userID)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchItem{}, ErrNotFound
	}
	if err != nil {
		return models.WatchItem{}, fmt.Errorf("get watch item: %w", err)
	}
	return item, nil
}

// Create inserts a new item for the user and returns the stored row.
func (s *Service) Create(ctx context.Context, userID string, input models.WatchItemCreate) (models.WatchItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.WatchItem{}, ErrUserIDRequired
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return models.WatchItem{}, ErrTitleRequired
	}
	if input.Type == "" {
		return models.WatchItem{}, ErrTypeRequired
	}
	if !input.Type.Valid() {
		return models.WatchItem{}, ErrInvalidType
	}
	if input.Status == "" {
		return models.WatchItem{}, ErrStatusRequired
	}
	if !input.Status.Valid() {
		return models.WatchItem{}, ErrInvalidStatus
	}
	if input.Rating != nil && !input.Rating.Valid() {
		return models.WatchItem{}, ErrInvalidRating
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO watch_items (
			user_id, title, type, status, current_season, total_seasons, notes, rating,
			tmdb_id, tmdb_poster_path, tmdb_overview, tmdb_tagline, tmdb_imdb_id,
			tmdb_movie_runtime, tmdb_movie_release_year, tmdb_movie_certification,
			tmdb_tv_first_air_year, tmdb_tv_last_air_year, tmdb_tv_networks,
			tmdb_tv_number_of_episodes, tmdb_tv_number_of_seasons, tmdb_tv_status, tmdb_tv_certification,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, input.Title, input.Type, input.Status,
		input.CurrentSeason, input.TotalSeasons, input.Notes, input.Rating,
		input.TmdbID, input.TmdbPosterPath, input.TmdbOverview, input.TmdbTagline, input.TmdbImdbID,
		input.TmdbMovieRuntime, input.TmdbMovieReleaseYear, input.TmdbMovieCertification,
		input.TmdbTvFirstAirYear, input.TmdbTvLastAirYear, input.TmdbTvNetworks,
		input.TmdbTvNumberOfEpisodes, input.TmdbTvNumberOfSeasons, input.TmdbTvStatus, input.TmdbTvCertification,
		now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return models.WatchItem{}, ErrDuplicateTMDBID
		}
		return models.WatchItem{}, fmt.Errorf("insert watch item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.WatchItem{}, fmt.Errorf("insert watch item: %w", err)
	}

	return s.Get(ctx, userID, id)
}

// Update applies the non-nil fields of the patch to an item the user owns and
// refreshes updated_at. Ownership is re-checked on every call.
func (s *Service) Update(ctx context.Context, userID string, patch models.WatchItemUpdate) (models.WatchItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.WatchItem{}, ErrUserIDRequired
	}
	if patch.ID == 0 {
		return models.WatchItem{}, ErrNotFound
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return models.WatchItem{}, ErrTitleRequired
		}
		patch.Title = &trimmed
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return models.WatchItem{}, ErrInvalidType
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.WatchItem{}, ErrInvalidStatus
	}
	if patch.Rating != nil && !patch.Rating.Valid() {
		return models.WatchItem{}, ErrInvalidRating
	}

	// Ownership pre-check; a foreign row reports not-found so item ids of
	// other users are not leaked.
	if _, err := s.Get(ctx, userID, patch.ID); err != nil {
		return models.WatchItem{}, err
	}

	assignments := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	add := func(column string, value any) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}

	// A clear nulls every snapshot column not explicitly re-sent in the same
	// payload, so dropping the old match and installing a new one is one call.
	if patch.ClearTmdbMatch {
		for _, col := range []struct {
			name string
			sent bool
		}{
			{"tmdb_id", patch.TmdbID != nil},
			{"tmdb_poster_path", patch.TmdbPosterPath != nil},
			{"tmdb_overview", patch.TmdbOverview != nil},
			{"tmdb_tagline", patch.TmdbTagline != nil},
			{"tmdb_imdb_id", patch.TmdbImdbID != nil},
			{"tmdb_movie_runtime", patch.TmdbMovieRuntime != nil},
			{"tmdb_movie_release_year", patch.TmdbMovieReleaseYear != nil},
			{"tmdb_movie_certification", patch.TmdbMovieCertification != nil},
			{"tmdb_tv_first_air_year", patch.TmdbTvFirstAirYear != nil},
			{"tmdb_tv_last_air_year", patch.TmdbTvLastAirYear != nil},
			{"tmdb_tv_networks", patch.TmdbTvNetworks != nil},
			{"tmdb_tv_number_of_episodes", patch.TmdbTvNumberOfEpisodes != nil},
			{"tmdb_tv_number_of_seasons", patch.TmdbTvNumberOfSeasons != nil},
			{"tmdb_tv_status", patch.TmdbTvStatus != nil},
			{"tmdb_tv_certification", patch.TmdbTvCertification != nil},
		} {
			if !col.sent {
				assignments = append(assignments, col.name+" = NULL")
			}
		}
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.CurrentSeason != nil {
		add("current_season", *patch.CurrentSeason)
	}
	if patch.TotalSeasons != nil {
		add("total_seasons", *patch.TotalSeasons)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.TmdbID != nil {
		add("tmdb_id", *patch.TmdbID)
	}
	if patch.TmdbPosterPath != nil {
		add("tmdb_poster_path", *patch.TmdbPosterPath)
	}
	if patch.TmdbOverview != nil {
		add("tmdb_overview", *patch.TmdbOverview)
	}
	if patch.TmdbTagline != nil {
		add("tmdb_tagline", *patch.TmdbTagline)
	}
	if patch.TmdbImdbID != nil {
		add("tmdb_imdb_id", *patch.TmdbImdbID)
	}
	if patch.TmdbMovieRuntime != nil {
		add("tmdb_movie_runtime", *patch.TmdbMovieRuntime)
	}
	if patch.TmdbMovieReleaseYear != nil {
		add("tmdb_movie_release_year", *patch.TmdbMovieReleaseYear)
	}
	if patch.TmdbMovieCertification != nil {
		add("tmdb_movie_certification", *patch.TmdbMovieCertification)
	}
	if patch.TmdbTvFirstAirYear != nil {
		add("tmdb_tv_first_air_year", *patch.TmdbTvFirstAirYear)
	}
	if patch.TmdbTvLastAirYear != nil {
		add("tmdb_tv_last_air_year", *patch.TmdbTvLastAirYear)
	}
	if patch.TmdbTvNetworks != nil {
		add("tmdb_tv_networks", *patch.TmdbTvNetworks)
	}
	if patch.TmdbTvNumberOfEpisodes != nil {
		add("tmdb_tv_number_of_episodes", *patch.TmdbTvNumberOfEpisodes)
	}
	if patch.TmdbTvNumberOfSeasons != nil {
		add("tmdb_tv_number_of_seasons", *patch.TmdbTvNumberOfSeasons)
	}
	if patch.TmdbTvStatus != nil {
		add("tmdb_tv_status", *patch.TmdbTvStatus)
	}
	if patch.TmdbTvCertification != nil {
		add("tmdb_tv_certification", *patch.TmdbTvCertification)
	}

	args = append(args, patch.ID, userID)
	_, err := s.db.ExecContext(ctx,
		`UPDATE watch_items SET `+strings.Join(assignments, ", ")+` WHERE id = ? AND user_id = ?`,
		args...)
	if err != nil {
		if isUniqueViolation(err) {
			return models.WatchItem{}, ErrDuplicateTMDBID
		}
		return models.WatchItem{}, fmt.Errorf("update watch item: %w", err)
	}

	return s.Get(ctx, userID, patch.ID)
}

// Delete removes an item the user owns. Deleting a missing or foreign id
// reports ErrNotFound rather than succeeding silently.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watch_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete watch item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watch item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountForUser returns the number of items a user has tracked.
func (s *Service) CountForUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM watch_items WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count watch items: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.WatchItem, error) {
	var (
		item          models.WatchItem
		currentSeason sql.NullInt64
		totalSeasons  sql.NullInt64
		notes         sql.NullString
		rating        sql.NullString
		tmdbID        sql.NullInt64
		posterPath    sql.NullString
		overview      sql.NullString
		tagline       sql.NullString
		imdbID        sql.NullString
		movieRuntime  sql.NullInt64
		movieYear     sql.NullInt64
		movieCert     sql.NullString
		tvFirstYear   sql.NullInt64
		tvLastYear    sql.NullInt64
		tvNetworks    sql.NullString
		tvEpisodes    sql.NullInt64
		tvSeasons     sql.NullInt64
		tvStatus      sql.NullString
		tvCert        sql.NullString
	)

	err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &item.Type, &item.Status,
		&currentSeason, &totalSeasons, &notes, &rating,
		&tmdbID, &posterPath, &overview, &tagline, &imdbID,
		&movieRuntime, &movieYear, &movieCert,
		&tvFirstYear, &tvLastYear, &tvNetworks,
		&tvEpisodes, &tvSeasons, &tvStatus, &tvCert,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return models.WatchItem{}, err
	}

	item.CurrentSeason = nullableInt(currentSeason)
	item.TotalSeasons = nullableInt(totalSeasons)
	item.Notes = nullableString(notes)
	if rating.Valid {
		r := models.Rating(rating.String)
		item.Rating = &r
	}
	if tmdbID.Valid {
		v := tmdbID.Int64
		item.TmdbID = &v
	}
	item.TmdbPosterPath = nullableString(posterPath)
	item.TmdbOverview = nullableString(overview)
	item.TmdbTagline = nullableString(tagline)
	item.TmdbImdbID = nullableString(imdbID)
	item.TmdbMovieRuntime = nullableInt(movieRuntime)
	item.TmdbMovieReleaseYear = nullableInt(movieYear)
	item.TmdbMovieCertification = nullableString(movieCert)
	item.TmdbTvFirstAirYear = nullableInt(tvFirstYear)
	item.TmdbTvLastAirYear = nullableInt(tvLastYear)
	item.TmdbTvNetworks = nullableString(tvNetworks)
	item.TmdbTvNumberOfEpisodes = nullableInt(tvEpisodes)
	item.TmdbTvNumberOfSeasons = nullableInt(tvSeasons)
	item.TmdbTvStatus = nullableString(tvStatus)
	item.TmdbTvCertification = nullableString(tvCert)

	return item, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
