package models

// Shapes returned by the TMDB metadata gateway.

// SearchResult is one candidate from a multi-search, trimmed to the fields the
// add form needs to render a picker row.
type SearchResult struct {
	TmdbID      int64     `json:"tmdbId"`
	Name        string    `json:"name"`
	PosterPath  string    `json:"posterPath,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"` // release_date or first_air_date, whichever the entry carries
	MediaType   MediaType `json:"mediaType"`
}

// TmdbItemDetails is the merged detail shape for a single title: the common
// fields plus whichever type-specific block applies. It maps 1:1 onto the
// snapshot columns of WatchItem.
type TmdbItemDetails struct {
	TmdbID     int64  `json:"tmdbId"`
	PosterPath string `json:"tmdbPosterPath,omitempty"`
	Overview   string `json:"tmdbOverview,omitempty"`
	Tagline    string `json:"tmdbTagline,omitempty"`
	ImdbID     string `json:"tmdbImdbId,omitempty"`

	// Movie-specific
	MovieRuntime       int    `json:"tmdbMovieRuntime,omitempty"`
	MovieReleaseYear   int    `json:"tmdbMovieReleaseYear,omitempty"`
	MovieCertification string `json:"tmdbMovieCertification,omitempty"`

	// Show-specific
	TvFirstAirYear     int    `json:"tmdbTvFirstAirYear,omitempty"`
	TvLastAirYear      int    `json:"tmdbTvLastAirYear,omitempty"`
	TvNetworks         string `json:"tmdbTvNetworks,omitempty"`
	TvNumberOfEpisodes int    `json:"tmdbTvNumberOfEpisodes,omitempty"`
	TvNumberOfSeasons  int    `json:"tmdbTvNumberOfSeasons,omitempty"`
	TvStatus           string `json:"tmdbTvStatus,omitempty"`
	TvCertification    string `json:"tmdbTvCertification,omitempty"`
}
