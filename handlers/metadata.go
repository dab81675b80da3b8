package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"movieflex/models"
	"movieflex/services/catalog"
	"movieflex/services/detail"
	"movieflex/services/metadata"
	"movieflex/services/pages"
	"movieflex/services/search"
)

type feedService interface {
	Home(ctx context.Context) models.Feed
	Movies(ctx context.Context) models.Feed
	Series(ctx context.Context) models.Feed
}

type searchService interface {
	Search(ctx context.Context, query string) models.SearchView
}

type pageRegistry interface {
	Open(key models.TitleKey) *detail.Page
	Get(id string) (*detail.Page, bool)
	Close(id string) bool
}

var (
	_ feedService   = (*catalog.Service)(nil)
	_ searchService = (*search.Service)(nil)
	_ pageRegistry  = (*pages.Registry)(nil)
)

// MetadataHandler serves the JSON API used by the detail pages and by
// scripted clients.
type MetadataHandler struct {
	feeds    feedService
	searcher searchService
	pages    pageRegistry
}

func NewMetadataHandler(feeds feedService, searcher searchService, registry pageRegistry) *MetadataHandler {
	return &MetadataHandler{feeds: feeds, searcher: searcher, pages: registry}
}

func (h *MetadataHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feeds.Home(r.Context()))
}

func (h *MetadataHandler) Movies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feeds.Movies(r.Context()))
}

func (h *MetadataHandler) Series(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feeds.Series(r.Context()))
}

// Search never fails as a whole; per-kind failures are flagged in the body.
func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.searcher.Search(r.Context(), r.URL.Query().Get("q")))
}

// Title opens a detail page for {kind}/{id} and returns it once loaded. The
// page id in the response is used for season and close calls.
func (h *MetadataHandler) Title(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key, ok := parseTitleKey(vars["kind"], vars["id"])
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("invalid title"))
		return
	}

	page := h.pages.Open(key)
	view, err := page.LoadTitle(r.Context())
	if err != nil {
		h.pages.Close(page.ID())
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *MetadataHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pages.Get(mux.Vars(r)["pageID"])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("page not found"))
		return
	}
	writeJSON(w, http.StatusOK, page.View())
}

// seasonEpisodesResponse is the body read by the season accordion script.
type seasonEpisodesResponse struct {
	Season   int              `json:"season"`
	Episodes []models.Episode `json:"episodes"`
}

func (h *MetadataHandler) SeasonEpisodes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	season, err := strconv.Atoi(vars["season"])
	if err != nil || season < 0 {
		writeError(w, http.StatusBadRequest, errors.New("invalid season"))
		return
	}
	page, ok := h.pages.Get(vars["pageID"])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("page not found"))
		return
	}

	episodes, err := page.LoadSeasonEpisodes(r.Context(), season)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, seasonEpisodesResponse{Season: season, Episodes: episodes})
}

// ClosePage is sent by the browser when a detail view goes away.
func (h *MetadataHandler) ClosePage(w http.ResponseWriter, r *http.Request) {
	if !h.pages.Close(mux.Vars(r)["pageID"]) {
		writeError(w, http.StatusNotFound, errors.New("page not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTitleKey(kind, id string) (models.TitleKey, bool) {
	k, ok := models.ParseMediaKind(kind)
	if !ok {
		return models.TitleKey{}, false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return models.TitleKey{}, false
	}
	key := models.TitleKey{Kind: k, ID: n}
	return key, key.Valid()
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, metadata.ErrNotFound), errors.Is(err, detail.ErrUnknownSeason):
		return http.StatusNotFound
	case errors.Is(err, metadata.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, detail.ErrNotShow):
		return http.StatusBadRequest
	case errors.Is(err, detail.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, detail.ErrClosed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError reports err to the client. Upstream failures get a fixed
// message; their details stay in the server log.
func writeError(w http.ResponseWriter, status int, err error) {
	message := err.Error()
	switch status {
	case http.StatusBadGateway:
		message = "metadata lookup failed"
	case http.StatusGatewayTimeout:
		message = "metadata lookup timed out"
	}
	writeJSON(w, status, map[string]string{"error": message})
}
