package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieflex/models"
)

type fakeSource struct {
	mu        sync.Mutex
	trending  map[models.MediaKind][]models.Title
	discover  map[int64][]models.Title // keyed by genre, 0 = no genre
	failGenre int64
	queries   []models.DiscoverQuery
}

func (f *fakeSource) Trending(_ context.Context, kind models.MediaKind) ([]models.Title, error) {
	return f.trending[kind], nil
}

func (f *fakeSource) Discover(_ context.Context, q models.DiscoverQuery) ([]models.Title, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.failGenre != 0 && q.GenreID == f.failGenre {
		return nil, errors.New("upstream 500")
	}
	return f.discover[q.GenreID], nil
}

func titles(kind models.MediaKind, n int, withBackdrop bool) []models.Title {
	out := make([]models.Title, n)
	for i := range out {
		out[i] = models.Title{ID: int64(i + 1), Kind: kind, Name: fmt.Sprintf("title %d", i+1)}
		if withBackdrop {
			out[i].Backdrop = &models.Image{URL: fmt.Sprintf("https://cdn/%d.jpg", i+1)}
		} else {
			out[i].Backdrop = &models.Image{URL: "placeholder", Placeholder: true}
		}
	}
	return out
}

func TestHomeFeedTruncatesShelves(t *testing.T) {
	src := &fakeSource{
		trending: map[models.MediaKind][]models.Title{
			models.KindMovie: titles(models.KindMovie, 20, true),
			models.KindShow:  titles(models.KindShow, 3, true),
		},
		discover: map[int64][]models.Title{0: titles(models.KindMovie, 5, true)},
	}
	svc := NewService(src)
	svc.pick = func(n int) int { return n - 1 }

	feed := svc.Home(context.Background())

	require.Len(t, feed.Shelves, 2)
	assert.Equal(t, "Films populaires", feed.Shelves[0].Name)
	assert.Len(t, feed.Shelves[0].Titles, 8)
	assert.Len(t, feed.Shelves[1].Titles, 3)
	require.NotNil(t, feed.Hero)
	assert.Equal(t, int64(5), feed.Hero.ID)
}

func TestHeroPrefersTitlesWithBackdrop(t *testing.T) {
	pool := append(titles(models.KindMovie, 3, false), models.Title{ID: 99, Backdrop: &models.Image{URL: "https://cdn/99.jpg"}})
	src := &fakeSource{discover: map[int64][]models.Title{0: pool}}
	svc := NewService(src)
	svc.pick = func(int) int { return 0 }

	feed := svc.Movies(context.Background())
	require.NotNil(t, feed.Hero)
	assert.Equal(t, int64(99), feed.Hero.ID)
}

func TestHeroFallsBackToAnyTitle(t *testing.T) {
	src := &fakeSource{discover: map[int64][]models.Title{0: titles(models.KindShow, 2, false)}}
	svc := NewService(src)
	svc.pick = func(int) int { return 1 }

	feed := svc.Series(context.Background())
	require.NotNil(t, feed.Hero)
	assert.Equal(t, int64(2), feed.Hero.ID)
}

func TestFeedWithoutHeroCandidates(t *testing.T) {
	feed := NewService(&fakeSource{}).Home(context.Background())
	assert.Nil(t, feed.Hero)
	for _, shelf := range feed.Shelves {
		assert.NotNil(t, shelf.Titles)
		assert.Empty(t, shelf.Titles)
	}
}

func TestMoviesFeedQueriesGenres(t *testing.T) {
	src := &fakeSource{
		discover: map[int64][]models.Title{
			genreAction: titles(models.KindMovie, 10, true),
			genreComedy: titles(models.KindMovie, 2, true),
		},
		failGenre: genreComedy,
	}

	feed := NewService(src).Movies(context.Background())

	require.Len(t, feed.Shelves, 2)
	assert.Equal(t, "action", feed.Shelves[0].ID)
	assert.Len(t, feed.Shelves[0].Titles, 8)
	assert.Empty(t, feed.Shelves[1].Titles, "failed shelf renders empty")

	var sorted bool
	for _, q := range src.queries {
		if q.SortBy == sortPopularityDesc && q.Kind == models.KindMovie {
			sorted = true
		}
	}
	assert.True(t, sorted, "hero listing should be sorted by popularity")
}

func TestSeriesFeedUsesShowGenres(t *testing.T) {
	src := &fakeSource{}
	NewService(src).Series(context.Background())

	genres := map[int64]bool{}
	for _, q := range src.queries {
		assert.Equal(t, models.KindShow, q.Kind)
		genres[q.GenreID] = true
	}
	assert.True(t, genres[genreDrama])
	assert.True(t, genres[genreSciFiFantasy])
}
