package catalog

import (
	"context"
	"log"
	"math/rand/v2"

	"github.com/sourcegraph/conc/pool"

	"movieflex/models"
)

const shelfSize = 8

// Genre ids used by the category pages.
const (
	genreAction        int64 = 28
	genreComedy        int64 = 35
	genreDrama         int64 = 18
	genreSciFiFantasy  int64 = 10765
	sortPopularityDesc       = "popularity.desc"
)

// Source is the subset of the metadata service the feeds read from.
type Source interface {
	Trending(ctx context.Context, kind models.MediaKind) ([]models.Title, error)
	Discover(ctx context.Context, query models.DiscoverQuery) ([]models.Title, error)
}

type shelfSpec struct {
	id    string
	name  string
	fetch func(ctx context.Context, src Source) ([]models.Title, error)
}

type feedSpec struct {
	name    string
	hero    models.DiscoverQuery
	shelves []shelfSpec
}

func trending(kind models.MediaKind) func(context.Context, Source) ([]models.Title, error) {
	return func(ctx context.Context, src Source) ([]models.Title, error) {
		return src.Trending(ctx, kind)
	}
}

func discover(query models.DiscoverQuery) func(context.Context, Source) ([]models.Title, error) {
	return func(ctx context.Context, src Source) ([]models.Title, error) {
		return src.Discover(ctx, query)
	}
}

var (
	homeFeed = feedSpec{
		name: "home",
		hero: models.DiscoverQuery{Kind: models.KindMovie},
		shelves: []shelfSpec{
			{id: "trending-movies", name: "Films populaires", fetch: trending(models.KindMovie)},
			{id: "trending-shows", name: "Séries tendances", fetch: trending(models.KindShow)},
		},
	}
	moviesFeed = feedSpec{
		name: "movies",
		hero: models.DiscoverQuery{Kind: models.KindMovie, SortBy: sortPopularityDesc},
		shelves: []shelfSpec{
			{id: "action", name: "Films d'action", fetch: discover(models.DiscoverQuery{Kind: models.KindMovie, GenreID: genreAction})},
			{id: "comedy", name: "Films de comédie", fetch: discover(models.DiscoverQuery{Kind: models.KindMovie, GenreID: genreComedy})},
		},
	}
	seriesFeed = feedSpec{
		name: "series",
		hero: models.DiscoverQuery{Kind: models.KindShow, SortBy: sortPopularityDesc},
		shelves: []shelfSpec{
			{id: "drama", name: "Séries dramatiques", fetch: discover(models.DiscoverQuery{Kind: models.KindShow, GenreID: genreDrama})},
			{id: "scifi", name: "Séries de science-fiction", fetch: discover(models.DiscoverQuery{Kind: models.KindShow, GenreID: genreSciFiFantasy})},
		},
	}
)

// Service builds the listing pages: a featured title picked at random from
// a discover listing, plus a few shelves of at most eight titles.
type Service struct {
	source Source
	pick   func(n int) int
}

func NewService(source Source) *Service {
	return &Service{source: source, pick: rand.IntN}
}

func (s *Service) Home(ctx context.Context) models.Feed   { return s.build(ctx, homeFeed) }
func (s *Service) Movies(ctx context.Context) models.Feed { return s.build(ctx, moviesFeed) }
func (s *Service) Series(ctx context.Context) models.Feed { return s.build(ctx, seriesFeed) }

func (s *Service) build(ctx context.Context, spec feedSpec) models.Feed {
	feed := models.Feed{Shelves: make([]models.Shelf, len(spec.shelves))}

	var heroPool []models.Title
	p := pool.New()
	p.Go(func() {
		titles, err := s.source.Discover(ctx, spec.hero)
		if err != nil {
			log.Printf("[catalog] %s hero lookup failed: %v", spec.name, err)
			return
		}
		heroPool = titles
	})
	for i, shelf := range spec.shelves {
		p.Go(func() {
			feed.Shelves[i] = models.Shelf{ID: shelf.id, Name: shelf.name, Titles: []models.Title{}}
			titles, err := shelf.fetch(ctx, s.source)
			if err != nil {
				log.Printf("[catalog] %s shelf %s failed: %v", spec.name, shelf.id, err)
				return
			}
			if len(titles) > shelfSize {
				titles = titles[:shelfSize]
			}
			feed.Shelves[i].Titles = titles
		})
	}
	p.Wait()

	feed.Hero = s.pickHero(heroPool)
	return feed
}

// pickHero prefers titles that have a real backdrop image.
func (s *Service) pickHero(titles []models.Title) *models.Title {
	candidates := make([]models.Title, 0, len(titles))
	for _, t := range titles {
		if t.Backdrop != nil && !t.Backdrop.Placeholder {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		candidates = titles
	}
	if len(candidates) == 0 {
		return nil
	}
	hero := candidates[s.pick(len(candidates))]
	return &hero
}
