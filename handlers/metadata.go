package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"watchdeck/models"
	metadatapkg "watchdeck/services/metadata"
)

type metadataService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Details(ctx context.Context, tmdbID int64, mediaType models.MediaType) (*models.TmdbItemDetails, error)
}

var _ metadataService = (*metadatapkg.Service)(nil)

type MetadataHandler struct {
	Service metadataService
}

func NewMetadataHandler(service metadataService) *MetadataHandler {
	return &MetadataHandler{Service: service}
}

func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "search query is required")
		return
	}

	results, err := h.Service.Search(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *MetadataHandler) Details(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	rawID := strings.TrimSpace(r.URL.Query().Get("tmdbId"))
	tmdbID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || tmdbID <= 0 {
		writeError(w, http.StatusBadRequest, "valid tmdbId is required")
		return
	}

	mediaType := models.MediaType(strings.TrimSpace(r.URL.Query().Get("type")))
	if !mediaType.Valid() {
		writeError(w, http.StatusBadRequest, "type must be movie or show")
		return
	}

	details, err := h.Service.Details(r.Context(), tmdbID, mediaType)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *MetadataHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metadatapkg.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "metadata provider is not configured")
	case errors.Is(err, metadatapkg.ErrTmdbIDRequired),
		errors.Is(err, metadatapkg.ErrInvalidType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("metadata: %v", err)
		writeErrorDetails(w, http.StatusInternalServerError, "metadata lookup failed", err.Error())
	}
}
