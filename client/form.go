package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"watchdeck/models"
)

var (
	ErrNothingToSubmit = errors.New("title, type and status are required")
)

const defaultDebounce = 500 * time.Millisecond

// formAPI is the slice of the server client the form needs.
type formAPI interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Details(ctx context.Context, tmdbID int64, mediaType models.MediaType) (*models.TmdbItemDetails, error)
	CreateItem(ctx context.Context, in models.WatchItemCreate) (models.WatchItem, error)
	UpdateItem(ctx context.Context, in models.WatchItemUpdate) (models.WatchItem, error)
}

var _ formAPI = (*Client)(nil)

// FormController drives the add/edit form: it debounces title keystrokes into
// catalog searches, merges a picked result's metadata snapshot into the draft,
// and submits the draft as a create or an update.
type FormController struct {
	api formAPI

	// Debounce is the quiet period after the last keystroke before a search
	// fires. Zero means the default.
	Debounce time.Duration

	// ClearMatchOnEdit drops the matched snapshot when the user edits the
	// title after picking a result, so a stale match never ships with a
	// renamed draft.
	ClearMatchOnEdit bool

	// OnResults receives each fresh, non-stale result set.
	OnResults func([]models.SearchResult)

	// OnError receives gateway failures from debounced searches; the UI is
	// expected to show them as transient text. The draft is left untouched.
	OnError func(error)

	mu      sync.Mutex
	draft   models.WatchItemCreate
	editID  int64 // non-zero when editing an existing item
	results []models.SearchResult

	// matchCleared records that a previously stored match was dropped by a
	// title edit, so an edit submit clears the server-side snapshot too.
	matchCleared bool

	seq     uint64 // last search issued
	applied uint64 // last search whose results were accepted
	timer   *time.Timer
}

func NewFormController(api formAPI) *FormController {
	return &FormController{
		api:              api,
		Debounce:         defaultDebounce,
		ClearMatchOnEdit: true,
	}
}

// Draft returns a copy of the current draft.
func (f *FormController) Draft() models.WatchItemCreate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Results returns the latest accepted search results.
func (f *FormController) Results() []models.SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SearchResult(nil), f.results...)
}

// LoadForEdit seeds the draft from an existing item so Submit issues an
// update instead of a create.
func (f *FormController) LoadForEdit(item models.WatchItem) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.editID = item.ID
	f.draft = models.WatchItemCreate{
		Title:         item.Title,
		Type:          item.Type,
		Status:        item.Status,
		CurrentSeason: item.CurrentSeason,
		TotalSeasons:  item.TotalSeasons,
		Notes:         item.Notes,
		Rating:        item.Rating,
		TmdbSnapshot: models.TmdbSnapshot{
			TmdbID:                 item.TmdbID,
			TmdbPosterPath:         item.TmdbPosterPath,
			TmdbOverview:           item.TmdbOverview,
			TmdbTagline:            item.TmdbTagline,
			TmdbImdbID:             item.TmdbImdbID,
			TmdbMovieRuntime:       item.TmdbMovieRuntime,
			TmdbMovieReleaseYear:   item.TmdbMovieReleaseYear,
			TmdbMovieCertification: item.TmdbMovieCertification,
			TmdbTvFirstAirYear:     item.TmdbTvFirstAirYear,
			TmdbTvLastAirYear:      item.TmdbTvLastAirYear,
			TmdbTvNetworks:         item.TmdbTvNetworks,
			TmdbTvNumberOfEpisodes: item.TmdbTvNumberOfEpisodes,
			TmdbTvNumberOfSeasons:  item.TmdbTvNumberOfSeasons,
			TmdbTvStatus:           item.TmdbTvStatus,
			TmdbTvCertification:    item.TmdbTvCertification,
		},
	}
	f.results = nil
	f.matchCleared = false
}

// SetTitle records a keystroke. A non-empty title schedules a debounced
// search; emptying the field cancels any pending search and clears results
// without touching the network. Editing the title after a match clears the
// snapshot when ClearMatchOnEdit is set.
func (f *FormController) SetTitle(ctx context.Context, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.draft.Title != title && f.draft.TmdbID != nil && f.ClearMatchOnEdit {
		f.draft.TmdbSnapshot = models.TmdbSnapshot{}
		f.matchCleared = true
	}
	f.draft.Title = title

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	// An empty field clears the picker; a draft still bound to a picked
	// match does not search again.
	if strings.TrimSpace(title) == "" || f.draft.TmdbID != nil {
		f.results = nil
		f.seq++
		f.applied = f.seq
		if f.OnResults != nil && strings.TrimSpace(title) == "" {
			f.OnResults(nil)
		}
		return
	}

	f.seq++
	seq := f.seq
	debounce := f.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	f.timer = time.AfterFunc(debounce, func() {
		f.runSearch(ctx, seq, title)
	})
}

// runSearch performs the search and accepts its results only if no newer
// search has been issued meanwhile. Late responses from superseded searches
// are dropped.
func (f *FormController) runSearch(ctx context.Context, seq uint64, query string) {
	results, err := f.api.Search(ctx, query)
	if err != nil {
		if f.OnError != nil {
			f.OnError(err)
		}
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq < f.seq || seq <= f.applied {
		return
	}
	f.applied = seq
	f.results = results
	if f.OnResults != nil {
		f.OnResults(results)
	}
}

// SelectResult fetches the full metadata for a picked search result and
// merges it into the draft: the title, type and snapshot all come from the
// catalog entry.
func (f *FormController) SelectResult(ctx context.Context, res models.SearchResult) error {
	details, err := f.api.Details(ctx, res.TmdbID, res.MediaType)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.Title = res.Name
	f.draft.Type = res.MediaType
	f.draft.TmdbSnapshot = snapshotFromDetails(details)
	f.matchCleared = false
	if res.MediaType == models.MediaTypeShow && details.TvNumberOfSeasons > 0 {
		total := details.TvNumberOfSeasons
		f.draft.TotalSeasons = &total
	}
	f.results = nil
	return nil
}

// SetStatus, SetNotes, SetRating and SetProgress mutate the draft fields the
// form exposes directly.
func (f *FormController) SetStatus(status models.WatchStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Status = status
}

func (f *FormController) SetType(t models.MediaType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Type = t
}

func (f *FormController) SetNotes(notes string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if notes == "" {
		f.draft.Notes = nil
		return
	}
	f.draft.Notes = &notes
}

func (f *FormController) SetRating(r models.Rating) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Rating = &r
}

func (f *FormController) SetProgress(currentSeason, totalSeasons *int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.CurrentSeason = currentSeason
	f.draft.TotalSeasons = totalSeasons
}

// Submit validates the draft and sends it: a create for a fresh form, a full
// update for a form loaded with LoadForEdit. The form resets on success.
func (f *FormController) Submit(ctx context.Context) (models.WatchItem, error) {
	f.mu.Lock()
	draft := f.draft
	editID := f.editID
	clearMatch := f.matchCleared && f.draft.TmdbID == nil
	f.mu.Unlock()

	if strings.TrimSpace(draft.Title) == "" || !draft.Type.Valid() || !draft.Status.Valid() {
		return models.WatchItem{}, ErrNothingToSubmit
	}

	var (
		item models.WatchItem
		err  error
	)
	if editID > 0 {
		title, typ, status := draft.Title, draft.Type, draft.Status
		item, err = f.api.UpdateItem(ctx, models.WatchItemUpdate{
			ID:             editID,
			ClearTmdbMatch: clearMatch,
			Title:          &title,
			Type:           &typ,
			Status:         &status,
			CurrentSeason:  draft.CurrentSeason,
			TotalSeasons:   draft.TotalSeasons,
			Notes:          draft.Notes,
			Rating:         draft.Rating,
			TmdbSnapshot:   draft.TmdbSnapshot,
		})
	} else {
		item, err = f.api.CreateItem(ctx, draft)
	}
	if err != nil {
		return models.WatchItem{}, err
	}

	f.Reset()
	return item, nil
}

// Reset clears the draft, pending searches and results.
func (f *FormController) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.draft = models.WatchItemCreate{}
	f.editID = 0
	f.results = nil
	f.matchCleared = false
	f.seq++
	f.applied = f.seq
}

func snapshotFromDetails(d *models.TmdbItemDetails) models.TmdbSnapshot {
	snap := models.TmdbSnapshot{TmdbID: &d.TmdbID}
	if d.PosterPath != "" {
		snap.TmdbPosterPath = strPtr(d.PosterPath)
	}
	if d.Overview != "" {
		snap.TmdbOverview = strPtr(d.Overview)
	}
	if d.Tagline != "" {
		snap.TmdbTagline = strPtr(d.Tagline)
	}
	if d.ImdbID != "" {
		snap.TmdbImdbID = strPtr(d.ImdbID)
	}
	if d.MovieRuntime > 0 {
		snap.TmdbMovieRuntime = intPtr(d.MovieRuntime)
	}
	if d.MovieReleaseYear > 0 {
		snap.TmdbMovieReleaseYear = intPtr(d.MovieReleaseYear)
	}
	if d.MovieCertification != "" {
		snap.TmdbMovieCertification = strPtr(d.MovieCertification)
	}
	if d.TvFirstAirYear > 0 {
		snap.TmdbTvFirstAirYear = intPtr(d.TvFirstAirYear)
	}
	if d.TvLastAirYear > 0 {
		snap.TmdbTvLastAirYear = intPtr(d.TvLastAirYear)
	}
	if d.TvNetworks != "" {
		snap.TmdbTvNetworks = strPtr(d.TvNetworks)
	}
	if d.TvNumberOfEpisodes > 0 {
		snap.TmdbTvNumberOfEpisodes = intPtr(d.TvNumberOfEpisodes)
	}
	if d.TvNumberOfSeasons > 0 {
		snap.TmdbTvNumberOfSeasons = intPtr(d.TvNumberOfSeasons)
	}
	if d.TvStatus != "" {
		snap.TmdbTvStatus = strPtr(d.TvStatus)
	}
	if d.TvCertification != "" {
		snap.TmdbTvCertification = strPtr(d.TvCertification)
	}
	return snap
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
