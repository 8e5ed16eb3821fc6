package metadata

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdeck/models"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestService(t *testing.T, rt roundTripFunc) *Service {
	t.Helper()
	svc := NewService("test-key", "en-US", "US", &http.Client{Transport: rt})
	svc.client.baseURL = "http://tmdb.test"
	return svc
}

func TestSearchFiltersResults(t *testing.T) {
	svc := newTestService(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/search/multi", req.URL.Path)
		assert.Equal(t, "test-key", req.URL.Query().Get("api_key"))
		assert.Equal(t, "alien", req.URL.Query().Get("query"))
		return jsonResponse(`{"results":[
			{"id":1,"title":"Alien","media_type":"movie","release_date":"1979-05-25","poster_path":"/a.jpg"},
			{"id":2,"name":"Alien: Earth","media_type":"tv","first_air_date":"2025-08-12"},
			{"id":3,"name":"Sigourney Weaver","media_type":"person"},
			{"id":4,"media_type":"movie"},
			{"id":5,"media_type":"tv"}
		]}`), nil
	})

	results, err := svc.Search(context.Background(), "alien")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, int64(1), results[0].TmdbID)
	assert.Equal(t, "Alien", results[0].Name)
	assert.Equal(t, models.MediaTypeMovie, results[0].MediaType)
	assert.Equal(t, "1979-05-25", results[0].ReleaseDate)

	assert.Equal(t, int64(2), results[1].TmdbID)
	assert.Equal(t, models.MediaTypeShow, results[1].MediaType)
	assert.Equal(t, "2025-08-12", results[1].ReleaseDate)
}

func TestSearchEmptyQuerySkipsNetwork(t *testing.T) {
	calls := 0
	svc := newTestService(t, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(`{"results":[]}`), nil
	})

	results, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, calls)
}

func TestSearchUnconfigured(t *testing.T) {
	svc := NewService("", "en-US", "US", nil)
	_, err := svc.Search(context.Background(), "alien")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMovieDetails(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	svc := newTestService(t, func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		paths = append(paths, req.URL.Path)
		mu.Unlock()

		switch req.URL.Path {
		case "/movie/603":
			return jsonResponse(`{"id":603,"title":"The Matrix","overview":"A hacker learns the truth.","tagline":"Free your mind.","poster_path":"/m.jpg","release_date":"1999-03-31","runtime":136}`), nil
		case "/movie/603/release_dates":
			return jsonResponse(`{"results":[
				{"iso_3166_1":"DE","release_dates":[{"certification":"16"}]},
				{"iso_3166_1":"US","release_dates":[{"certification":""},{"certification":"R"}]}
			]}`), nil
		case "/movie/603/external_ids":
			return jsonResponse(`{"imdb_id":"tt0133093"}`), nil
		}
		t.Errorf("unexpected request: %s", req.URL.Path)
		return jsonResponse(`{}`), nil
	})

	details, err := svc.Details(context.Background(), 603, models.MediaTypeMovie)
	require.NoError(t, err)

	assert.Equal(t, int64(603), details.TmdbID)
	assert.Equal(t, "Free your mind.", details.Tagline)
	assert.Equal(t, 136, details.MovieRuntime)
	assert.Equal(t, 1999, details.MovieReleaseYear)
	assert.Equal(t, "R", details.MovieCertification)
	assert.Equal(t, "tt0133093", details.ImdbID)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, paths, 3)
}

func TestTvDetails(t *testing.T) {
	svc := newTestService(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/tv/1396":
			return jsonResponse(`{"id":1396,"name":"Breaking Bad","overview":"A chemistry teacher breaks bad.","poster_path":"/b.jpg","first_air_date":"2008-01-20","last_air_date":"2013-09-29","number_of_episodes":62,"number_of_seasons":5,"status":"Ended","networks":[{"name":"AMC"},{"name":""}]}`), nil
		case "/tv/1396/content_ratings":
			return jsonResponse(`{"results":[{"iso_3166_1":"GB","rating":"18"},{"iso_3166_1":"US","rating":"TV-MA"}]}`), nil
		case "/tv/1396/external_ids":
			return jsonResponse(`{"imdb_id":"tt0903747"}`), nil
		}
		t.Errorf("unexpected request: %s", req.URL.Path)
		return jsonResponse(`{}`), nil
	})

	details, err := svc.Details(context.Background(), 1396, models.MediaTypeShow)
	require.NoError(t, err)

	assert.Equal(t, 2008, details.TvFirstAirYear)
	assert.Equal(t, 2013, details.TvLastAirYear)
	assert.Equal(t, "AMC", details.TvNetworks)
	assert.Equal(t, 62, details.TvNumberOfEpisodes)
	assert.Equal(t, 5, details.TvNumberOfSeasons)
	assert.Equal(t, "Ended", details.TvStatus)
	assert.Equal(t, "TV-MA", details.TvCertification)
	assert.Equal(t, "tt0903747", details.ImdbID)
}

func TestDetailsValidation(t *testing.T) {
	svc := NewService("test-key", "en-US", "US", nil)

	_, err := svc.Details(context.Background(), 0, models.MediaTypeMovie)
	assert.ErrorIs(t, err, ErrTmdbIDRequired)

	_, err = svc.Details(context.Background(), 42, "album")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestDetailsSubRequestFailureFailsLookup(t *testing.T) {
	svc := newTestService(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/movie/1/release_dates" {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       io.NopCloser(bytes.NewBufferString(`{}`)),
				Header:     make(http.Header),
			}, nil
		}
		return jsonResponse(`{"id":1}`), nil
	})

	_, err := svc.Details(context.Background(), 1, models.MediaTypeMovie)
	assert.ErrorIs(t, err, ErrProviderFailure)
}
