package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"movieflex/models"
	"movieflex/views"
)

type viewRenderer interface {
	Render(w io.Writer, name views.Name, page views.Page) error
}

var _ viewRenderer = (*views.Renderer)(nil)

// SiteHandler serves the HTML views.
type SiteHandler struct {
	renderer viewRenderer
	feeds    feedService
	searcher searchService
	pages    pageRegistry
}

func NewSiteHandler(renderer viewRenderer, feeds feedService, searcher searchService, registry pageRegistry) *SiteHandler {
	return &SiteHandler{renderer: renderer, feeds: feeds, searcher: searcher, pages: registry}
}

// Handler returns the handler for a view, or nil if the view has none.
func (h *SiteHandler) Handler(name views.Name) http.HandlerFunc {
	switch name {
	case views.Home:
		return h.Home
	case views.Movies:
		return h.Movies
	case views.Series:
		return h.Series
	case views.MovieDetail:
		return h.MovieDetail
	case views.ShowDetail:
		return h.ShowDetail
	case views.Search:
		return h.Search
	case views.About:
		return h.About
	}
	return nil
}

func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.Home, h.feeds.Home(r.Context()))
}

func (h *SiteHandler) Movies(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.Movies, h.feeds.Movies(r.Context()))
}

func (h *SiteHandler) Series(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.Series, h.feeds.Series(r.Context()))
}

func (h *SiteHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.About, nil)
}

func (h *SiteHandler) MovieDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, models.KindMovie, views.MovieDetail)
}

func (h *SiteHandler) ShowDetail(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, models.KindShow, views.ShowDetail)
}

// detail opens a fresh page instance per navigation. The instance stays
// registered only while the rendered page can still call back for season
// episodes; failed loads, HEAD requests and views without seasons release
// it right away. The view is a snapshot, so rendering does not need it.
func (h *SiteHandler) detail(w http.ResponseWriter, r *http.Request, kind models.MediaKind, name views.Name) {
	key, ok := parseTitleKey(string(kind), mux.Vars(r)["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	page := h.pages.Open(key)
	view, err := page.LoadTitle(r.Context())
	status := http.StatusOK
	if err != nil {
		status = statusForError(err)
	}
	if err != nil || r.Method == http.MethodHead || len(view.Seasons) == 0 {
		h.pages.Close(page.ID())
	}
	h.render(w, r, status, name, view)
}

// Search handles both the search form submission (/search?q=) and the
// result view (/search/{query}).
func (h *SiteHandler) Search(w http.ResponseWriter, r *http.Request) {
	if raw, ok := mux.Vars(r)["query"]; ok {
		query, err := url.PathUnescape(raw)
		if err != nil {
			http.Error(w, "invalid search query", http.StatusBadRequest)
			return
		}
		h.renderSearch(w, r, query)
		return
	}

	values := r.URL.Query()
	if !values.Has("q") {
		h.renderSearch(w, r, "")
		return
	}
	query := strings.TrimSpace(values.Get("q"))
	if query == "" {
		// Blank submissions stay where they were.
		if from := values.Get("from"); isLocalPath(from) {
			http.Redirect(w, r, from, http.StatusSeeOther)
			return
		}
		h.renderSearch(w, r, "")
		return
	}
	http.Redirect(w, r, "/search/"+url.PathEscape(query), http.StatusSeeOther)
}

func (h *SiteHandler) renderSearch(w http.ResponseWriter, r *http.Request, query string) {
	result := h.searcher.Search(r.Context(), query)
	h.renderPage(w, http.StatusOK, views.Search, views.Page{
		Title: "Recherche",
		Path:  r.URL.Path,
		Query: result.Query,
		Data:  result,
	})
}

func (h *SiteHandler) render(w http.ResponseWriter, r *http.Request, status int, name views.Name, data any) {
	h.renderPage(w, status, name, views.Page{
		Title: pageTitle(name, data),
		Path:  r.URL.Path,
		Data:  data,
	})
}

// renderPage buffers the output so a template failure still yields a clean
// 500 instead of a half-written page.
func (h *SiteHandler) renderPage(w http.ResponseWriter, status int, name views.Name, page views.Page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, page); err != nil {
		log.Printf("[site] render %s failed: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func pageTitle(name views.Name, data any) string {
	if view, ok := data.(models.DetailView); ok && view.Title != nil {
		return view.Title.Name
	}
	switch name {
	case views.Movies:
		return "Films"
	case views.Series:
		return "Séries"
	case views.About:
		return "À propos"
	}
	return ""
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
