package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

type tmdbClient struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:   strings.TrimSpace(apiKey),
		language: language,
		baseURL:  tmdbBaseURL,
		httpc:    httpc,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET performs a GET against the TMDB API and decodes the JSON response.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, params url.Values, v any) error {
	if !c.isConfigured() {
		return errors.New("tmdb api key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	q.Set("api_key", c.apiKey)
	if lang := strings.TrimSpace(c.language); lang != "" {
		q.Set("language", lang)
	}
	for key, vals := range params {
		for _, val := range vals {
			q.Add(key, val)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("tmdb request %s failed: %s", endpoint, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

type tmdbMultiSearchResponse struct {
	Results []struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Title        string `json:"title"`
		PosterPath   string `json:"poster_path"`
		ReleaseDate  string `json:"release_date"`
		FirstAirDate string `json:"first_air_date"`
		MediaType    string `json:"media_type"`
	} `json:"results"`
}

func (c *tmdbClient) multiSearch(ctx context.Context, query string) (tmdbMultiSearchResponse, error) {
	var payload tmdbMultiSearchResponse
	params := url.Values{}
	params.Set("query", query)
	err := c.doGET(ctx, "/search/multi", params, &payload)
	return payload, err
}

type tmdbMovieDetails struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	Tagline     string `json:"tagline"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
	Runtime     int    `json:"runtime"`
}

func (c *tmdbClient) movieDetails(ctx context.Context, tmdbID int64) (tmdbMovieDetails, error) {
	var payload tmdbMovieDetails
	err := c.doGET(ctx, "/movie/"+strconv.FormatInt(tmdbID, 10), nil, &payload)
	return payload, err
}

type tmdbReleaseDatesResponse struct {
	Results []struct {
		ISO31661     string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
		} `json:"release_dates"`
	} `json:"results"`
}

func (c *tmdbClient) movieReleaseDates(ctx context.Context, tmdbID int64) (tmdbReleaseDatesResponse, error) {
	var payload tmdbReleaseDatesResponse
	err := c.doGET(ctx, "/movie/"+strconv.FormatInt(tmdbID, 10)+"/release_dates", nil, &payload)
	return payload, err
}

type tmdbTvDetails struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Overview         string `json:"overview"`
	Tagline          string `json:"tagline"`
	PosterPath       string `json:"poster_path"`
	FirstAirDate     string `json:"first_air_date"`
	LastAirDate      string `json:"last_air_date"`
	NumberOfEpisodes int    `json:"number_of_episodes"`
	NumberOfSeasons  int    `json:"number_of_seasons"`
	Status           string `json:"status"`
	Networks         []struct {
		Name string `json:"name"`
	} `json:"networks"`
}

func (c *tmdbClient) tvDetails(ctx context.Context, tmdbID int64) (tmdbTvDetails, error) {
	var payload tmdbTvDetails
	err := c.doGET(ctx, "/tv/"+strconv.FormatInt(tmdbID, 10), nil, &payload)
	return payload, err
}

type tmdbContentRatingsResponse struct {
	Results []struct {
		ISO31661 string `json:"iso_3166_1"`
		Rating   string `json:"rating"`
	} `json:"results"`
}

func (c *tmdbClient) tvContentRatings(ctx context.Context, tmdbID int64) (tmdbContentRatingsResponse, error) {
	var payload tmdbContentRatingsResponse
	err := c.doGET(ctx, "/tv/"+strconv.FormatInt(tmdbID, 10)+"/content_ratings", nil, &payload)
	return payload, err
}

type tmdbExternalIDsResponse struct {
	IMDBID string `json:"imdb_id"`
}

func (c *tmdbClient) externalIDs(ctx context.Context, apiMediaType string, tmdbID int64) (tmdbExternalIDsResponse, error) {
	var payload tmdbExternalIDsResponse
	err := c.doGET(ctx, "/"+apiMediaType+"/"+strconv.FormatInt(tmdbID, 10)+"/external_ids", nil, &payload)
	return payload, err
}

// parseYear extracts the year from a TMDB date string (YYYY-MM-DD).
func parseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Year()
	}
	if y, err := strconv.Atoi(date[:4]); err == nil {
		return y
	}
	return 0
}
