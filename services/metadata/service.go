package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"watchdeck/models"
)

var (
	ErrNotConfigured   = errors.New("metadata provider is not configured")
	ErrTmdbIDRequired  = errors.New("tmdb id is required")
	ErrInvalidType     = errors.New("invalid media type")
	ErrProviderFailure = errors.New("metadata provider request failed")
)

// Service is the read-only gateway to the TMDB catalog. It never persists
// anything; callers snapshot whatever they want to keep. Failed lookups are
// reported to the caller as-is, with no retry here.
type Service struct {
	client     *tmdbClient
	certRegion string
}

// NewService creates a metadata service for the given TMDB API key. The
// region selects which country's certification to surface. A nil httpc gets a
// default client with a 15s timeout.
func NewService(apiKey, language, region string, httpc *http.Client) *Service {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = "US"
	}
	return &Service{
		client:     newTMDBClient(apiKey, language, httpc),
		certRegion: region,
	}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.client.isConfigured()
}

// Search runs a multi-search and keeps only movie and TV entries that carry a
// displayable name. A blank query short-circuits to an empty result set
// without touching the network.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}, nil
	}
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := s.client.multiSearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	results := make([]models.SearchResult, 0, len(payload.Results))
	for _, entry := range payload.Results {
		switch entry.MediaType {
		case "movie":
			if entry.Title == "" {
				continue
			}
			results = append(results, models.SearchResult{
				TmdbID:      entry.ID,
				Name:        entry.Title,
				PosterPath:  entry.PosterPath,
				ReleaseDate: entry.ReleaseDate,
				MediaType:   models.MediaTypeMovie,
			})
		case "tv":
			if entry.Name == "" {
				continue
			}
			results = append(results, models.SearchResult{
				TmdbID:      entry.ID,
				Name:        entry.Name,
				PosterPath:  entry.PosterPath,
				ReleaseDate: entry.FirstAirDate,
				MediaType:   models.MediaTypeShow,
			})
		}
	}
	return results, nil
}

// Details fetches the full detail snapshot for one title. The detail record,
// the certification listing and the external ids are fetched concurrently;
// any sub-request failure fails the whole lookup.
func (s *Service) Details(ctx context.Context, tmdbID int64, mediaType models.MediaType) (*models.TmdbItemDetails, error) {
	if tmdbID <= 0 {
		return nil, ErrTmdbIDRequired
	}
	if !mediaType.Valid() {
		return nil, ErrInvalidType
	}
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	if mediaType == models.MediaTypeMovie {
		return s.movieDetails(ctx, tmdbID)
	}
	return s.tvDetails(ctx, tmdbID)
}

func (s *Service) movieDetails(ctx context.Context, tmdbID int64) (*models.TmdbItemDetails, error) {
	var (
		detail   tmdbMovieDetails
		releases tmdbReleaseDatesResponse
		external tmdbExternalIDsResponse
	)

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		detail, err = s.client.movieDetails(ctx, tmdbID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		releases, err = s.client.movieReleaseDates(ctx, tmdbID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		external, err = s.client.externalIDs(ctx, "movie", tmdbID)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	return &models.TmdbItemDetails{
		TmdbID:             detail.ID,
		PosterPath:         detail.PosterPath,
		Overview:           detail.Overview,
		Tagline:            detail.Tagline,
		ImdbID:             external.IMDBID,
		MovieRuntime:       detail.Runtime,
		MovieReleaseYear:   parseYear(detail.ReleaseDate),
		MovieCertification: s.movieCertification(releases),
	}, nil
}

func (s *Service) tvDetails(ctx context.Context, tmdbID int64) (*models.TmdbItemDetails, error) {
	var (
		detail   tmdbTvDetails
		ratings  tmdbContentRatingsResponse
		external tmdbExternalIDsResponse
	)

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		detail, err = s.client.tvDetails(ctx, tmdbID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		ratings, err = s.client.tvContentRatings(ctx, tmdbID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		external, err = s.client.externalIDs(ctx, "tv", tmdbID)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	networks := make([]string, 0, len(detail.Networks))
	for _, n := range detail.Networks {
		if n.Name != "" {
			networks = append(networks, n.Name)
		}
	}

	return &models.TmdbItemDetails{
		TmdbID:             detail.ID,
		PosterPath:         detail.PosterPath,
		Overview:           detail.Overview,
		Tagline:            detail.Tagline,
		ImdbID:             external.IMDBID,
		TvFirstAirYear:     parseYear(detail.FirstAirDate),
		TvLastAirYear:      parseYear(detail.LastAirDate),
		TvNetworks:         strings.Join(networks, ", "),
		TvNumberOfEpisodes: detail.NumberOfEpisodes,
		TvNumberOfSeasons:  detail.NumberOfSeasons,
		TvStatus:           detail.Status,
		TvCertification:    s.tvCertification(ratings),
	}, nil
}

// movieCertification picks the first non-empty certification listed for the
// configured region.
func (s *Service) movieCertification(releases tmdbReleaseDatesResponse) string {
	for _, entry := range releases.Results {
		if entry.ISO31661 != s.certRegion {
			continue
		}
		for _, rd := range entry.ReleaseDates {
			if rd.Certification != "" {
				return rd.Certification
			}
		}
	}
	return ""
}

func (s *Service) tvCertification(ratings tmdbContentRatingsResponse) string {
	for _, entry := range ratings.Results {
		if entry.ISO31661 == s.certRegion && entry.Rating != "" {
			return entry.Rating
		}
	}
	return ""
}
