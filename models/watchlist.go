package models

import "time"

// MediaType distinguishes movies from TV shows.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeShow  MediaType = "show"
)

// Valid reports whether the media type is one of the known values.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeShow
}

// WatchStatus tracks where an item sits in the user's queue.
type WatchStatus string

const (
	StatusPlanToWatch WatchStatus = "plan_to_watch"
	StatusWatching    WatchStatus = "watching"
	StatusCompleted   WatchStatus = "completed"
	StatusDropped     WatchStatus = "dropped"
)

// Valid reports whether the status is one of the known values.
func (s WatchStatus) Valid() bool {
	switch s {
	case StatusPlanToWatch, StatusWatching, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// Rating is the three-way verdict a user can give a completed item.
type Rating string

const (
	RatingLoved    Rating = "loved"
	RatingLiked    Rating = "liked"
	RatingNotForMe Rating = "not_for_me"
)

// Valid reports whether the rating is one of the known values.
func (r Rating) Valid() bool {
	return r == RatingLoved || r == RatingLiked || r == RatingNotForMe
}

// WatchItem is a single tracked title owned by a user. The tmdb* fields are a
// snapshot copied from the metadata gateway at selection time; they are never
// re-validated against the source after the row is written.
type WatchItem struct {
	ID     int64       `json:"id"`
	UserID string      `json:"userId"`
	Title  string      `json:"title"`
	Type   MediaType   `json:"type"`
	Status WatchStatus `json:"status"`

	CurrentSeason *int    `json:"currentSeason,omitempty"`
	TotalSeasons  *int    `json:"totalSeasons,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Rating        *Rating `json:"rating,omitempty"`

	TmdbID                 *int64  `json:"tmdbId,omitempty"`
	TmdbPosterPath         *string `json:"tmdbPosterPath,omitempty"`
	TmdbOverview           *string `json:"tmdbOverview,omitempty"`
	TmdbTagline            *string `json:"tmdbTagline,omitempty"`
	TmdbImdbID             *string `json:"tmdbImdbId,omitempty"`
	TmdbMovieRuntime       *int    `json:"tmdbMovieRuntime,omitempty"`
	TmdbMovieReleaseYear   *int    `json:"tmdbMovieReleaseYear,omitempty"`
	TmdbMovieCertification *string `json:"tmdbMovieCertification,omitempty"`
	TmdbTvFirstAirYear     *int    `json:"tmdbTvFirstAirYear,omitempty"`
	TmdbTvLastAirYear      *int    `json:"tmdbTvLastAirYear,omitempty"`
	TmdbTvNetworks         *string `json:"tmdbTvNetworks,omitempty"`
	TmdbTvNumberOfEpisodes *int    `json:"tmdbTvNumberOfEpisodes,omitempty"`
	TmdbTvNumberOfSeasons  *int    `json:"tmdbTvNumberOfSeasons,omitempty"`
	TmdbTvStatus           *string `json:"tmdbTvStatus,omitempty"`
	TmdbTvCertification    *string `json:"tmdbTvCertification,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NeedsRating reports whether the item is a completed title the user has not
// rated yet; the list UI treats this as a prompt point.
func (w WatchItem) NeedsRating() bool {
	return w.Status == StatusCompleted && w.Rating == nil
}

// WatchItemCreate captures the payload for inserting a new item. Title, Type
// and Status are required; everything else is optional.
type WatchItemCreate struct {
	Title  string      `json:"title"`
	Type   MediaType   `json:"type"`
	Status WatchStatus `json:"status"`

	CurrentSeason *int    `json:"currentSeason,omitempty"`
	TotalSeasons  *int    `json:"totalSeasons,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Rating        *Rating `json:"rating,omitempty"`

	TmdbSnapshot
}

// WatchItemUpdate is a partial update: only non-nil fields are applied, so a
// payload carrying just a status change leaves every other column untouched.
// ClearTmdbMatch nulls out the whole snapshot first; nil pointers cannot
// express "remove this field" on their own. Snapshot fields sent alongside it
// win over the clear.
type WatchItemUpdate struct {
	ID int64 `json:"id"`

	ClearTmdbMatch bool `json:"clearTmdbMatch,omitempty"`

	Title  *string      `json:"title,omitempty"`
	Type   *MediaType   `json:"type,omitempty"`
	Status *WatchStatus `json:"status,omitempty"`

	CurrentSeason *int    `json:"currentSeason,omitempty"`
	TotalSeasons  *int    `json:"totalSeasons,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Rating        *Rating `json:"rating,omitempty"`

	TmdbSnapshot
}

// TmdbSnapshot carries the denormalized metadata fields shared by the create
// and update payloads.
type TmdbSnapshot struct {
	TmdbID                 *int64  `json:"tmdbId,omitempty"`
	TmdbPosterPath         *string `json:"tmdbPosterPath,omitempty"`
	TmdbOverview           *string `json:"tmdbOverview,omitempty"`
	TmdbTagline            *string `json:"tmdbTagline,omitempty"`
	TmdbImdbID             *string `json:"tmdbImdbId,omitempty"`
	TmdbMovieRuntime       *int    `json:"tmdbMovieRuntime,omitempty"`
	TmdbMovieReleaseYear   *int    `json:"tmdbMovieReleaseYear,omitempty"`
	TmdbMovieCertification *string `json:"tmdbMovieCertification,omitempty"`
	TmdbTvFirstAirYear     *int    `json:"tmdbTvFirstAirYear,omitempty"`
	TmdbTvLastAirYear      *int    `json:"tmdbTvLastAirYear,omitempty"`
	TmdbTvNetworks         *string `json:"tmdbTvNetworks,omitempty"`
	TmdbTvNumberOfEpisodes *int    `json:"tmdbTvNumberOfEpisodes,omitempty"`
	TmdbTvNumberOfSeasons  *int    `json:"tmdbTvNumberOfSeasons,omitempty"`
	TmdbTvStatus           *string `json:"tmdbTvStatus,omitempty"`
	TmdbTvCertification    *string `json:"tmdbTvCertification,omitempty"`
}
