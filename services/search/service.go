package search

import (
	"context"
	"log"
	"strings"

	"github.com/sourcegraph/conc"

	"movieflex/models"
)

// Searcher runs a first-page search for one media kind.
type Searcher interface {
	Search(ctx context.Context, kind models.MediaKind, query string) ([]models.Title, error)
}

type Service struct {
	searcher Searcher
}

func NewService(searcher Searcher) *Service {
	return &Service{searcher: searcher}
}

// Search looks up movies and shows for query side by side. A blank query
// returns the empty view without any lookup. A failed lookup is logged and
// flagged on the view; the other list is still returned.
func (s *Service) Search(ctx context.Context, query string) models.SearchView {
	query = strings.TrimSpace(query)
	view := models.SearchView{
		Query:  query,
		Movies: []models.Title{},
		Shows:  []models.Title{},
	}
	if query == "" {
		view.Empty = true
		return view
	}

	var (
		movies, shows       []models.Title
		moviesErr, showsErr error
		wg                  conc.WaitGroup
	)
	wg.Go(func() {
		movies, moviesErr = s.searcher.Search(ctx, models.KindMovie, query)
	})
	wg.Go(func() {
		shows, showsErr = s.searcher.Search(ctx, models.KindShow, query)
	})
	wg.Wait()

	if moviesErr != nil {
		view.MoviesFailed = true
		log.Printf("[search] movie search %q failed: %v", query, moviesErr)
	} else if movies != nil {
		view.Movies = movies
	}
	if showsErr != nil {
		view.ShowsFailed = true
		log.Printf("[search] tv search %q failed: %v", query, showsErr)
	} else if shows != nil {
		view.Shows = shows
	}
	return view
}
