package detail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"movieflex/models"
)

const (
	maxCast            = 10
	maxRecommendations = 20
)

var (
	ErrClosed        = errors.New("page closed")
	ErrNotReady      = errors.New("page not ready")
	ErrNotShow       = errors.New("seasons are only available for shows")
	ErrUnknownSeason = errors.New("unknown season")
)

// Source is the set of lookups a detail page makes.
type Source interface {
	Details(ctx context.Context, key models.TitleKey) (*models.TitleDetails, error)
	Credits(ctx context.Context, key models.TitleKey) (*models.Credits, error)
	Videos(ctx context.Context, key models.TitleKey) ([]models.Trailer, error)
	Recommendations(ctx context.Context, key models.TitleKey) ([]models.Title, error)
	SeasonEpisodes(ctx context.Context, showID int64, season int) ([]models.Episode, error)
}

// Page holds the state of one detail page instance. All lookups run under
// the page context, so closing the page abandons them and leaves the state
// untouched.
type Page struct {
	id     string
	key    models.TitleKey
	source Source

	ctx    context.Context
	cancel context.CancelFunc

	loadOnce sync.Once
	loaded   chan struct{}
	seasonsG singleflight.Group

	mu              sync.RWMutex
	state           models.PageState
	err             error
	title           *models.Title
	trailer         *models.Trailer
	cast            []models.Credit
	crew            []models.Credit
	seasons         []models.Season
	recommendations []models.Title
	seasonState     map[int]models.SeasonState
	episodes        map[int][]models.Episode
}

func NewPage(parent context.Context, id string, key models.TitleKey, source Source) *Page {
	ctx, cancel := context.WithCancel(parent)
	return &Page{
		id:          id,
		key:         key,
		source:      source,
		ctx:         ctx,
		cancel:      cancel,
		loaded:      make(chan struct{}),
		state:       models.PageIdle,
		seasonState: make(map[int]models.SeasonState),
		episodes:    make(map[int][]models.Episode),
	}
}

func (p *Page) ID() string           { return p.id }
func (p *Page) Key() models.TitleKey { return p.key }

func (p *Page) State() models.PageState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Close cancels outstanding lookups. It is safe to call more than once.
func (p *Page) Close() {
	p.cancel()
}

func (p *Page) Closed() bool {
	return p.ctx.Err() != nil
}

// LoadTitle starts the page load on first call and waits for it to finish or
// for ctx to end. Later calls return the outcome of the first load; a page in
// the error state stays there.
func (p *Page) LoadTitle(ctx context.Context) (models.DetailView, error) {
	p.loadOnce.Do(func() {
		p.mu.Lock()
		p.state = models.PageLoading
		p.mu.Unlock()
		go func() {
			defer close(p.loaded)
			p.load()
		}()
	})

	select {
	case <-p.loaded:
	case <-ctx.Done():
		return p.View(), ctx.Err()
	}

	p.mu.RLock()
	err := p.err
	p.mu.RUnlock()
	return p.View(), err
}

func (p *Page) load() {
	started := time.Now()

	var (
		details *models.TitleDetails
		credits *models.Credits
		videos  []models.Trailer
		recs    []models.Title
	)

	lookups := pool.New().WithContext(p.ctx).WithCancelOnError().WithFirstError()
	lookups.Go(func(ctx context.Context) error {
		d, err := p.source.Details(ctx, p.key)
		if err != nil {
			return fmt.Errorf("details: %w", err)
		}
		details = d
		return nil
	})
	lookups.Go(func(ctx context.Context) error {
		c, err := p.source.Credits(ctx, p.key)
		if err != nil {
			return fmt.Errorf("credits: %w", err)
		}
		credits = c
		return nil
	})
	lookups.Go(func(ctx context.Context) error {
		v, err := p.source.Videos(ctx, p.key)
		if err != nil {
			return fmt.Errorf("videos: %w", err)
		}
		videos = v
		return nil
	})
	lookups.Go(func(ctx context.Context) error {
		r, err := p.source.Recommendations(ctx, p.key)
		if err != nil {
			return fmt.Errorf("recommendations: %w", err)
		}
		recs = r
		return nil
	})
	err := lookups.Wait()
	if err == nil && details == nil {
		err = errors.New("details: empty response")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx.Err() != nil {
		p.err = ErrClosed
		log.Printf("[detail] page %s closed while loading %s", p.id, p.key)
		return
	}
	if err != nil {
		p.state = models.PageError
		p.err = err
		log.Printf("[detail] load %s failed after %s: %v", p.key, time.Since(started).Round(time.Millisecond), err)
		return
	}

	p.apply(details, credits, videos, recs)
	p.state = models.PageReady
	log.Printf("[detail] loaded %s in %s (cast=%d crew=%d seasons=%d recommendations=%d)",
		p.key, time.Since(started).Round(time.Millisecond), len(p.cast), len(p.crew), len(p.seasons), len(p.recommendations))
}

// apply derives the render-ready fields. Caller holds p.mu.
func (p *Page) apply(details *models.TitleDetails, credits *models.Credits, videos []models.Trailer, recs []models.Title) {
	title := details.Title
	p.title = &title
	p.trailer = SelectTrailer(videos)

	if credits == nil {
		credits = &models.Credits{}
	}
	cast := credits.Cast
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}
	p.cast = slices.Clone(cast)

	directors, writers, producers := CategorizeCrew(p.key.Kind, credits.Crew)
	p.crew = MergeCrew(CrewLimitsFor(p.key.Kind), details.Creators, directors, writers, producers)

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	p.recommendations = slices.Clone(recs)

	for _, season := range details.Seasons {
		if season.Number == 0 {
			continue
		}
		p.seasons = append(p.seasons, season)
		p.seasonState[season.Number] = models.SeasonUnfetched
	}
}

// LoadSeasonEpisodes returns the episodes of one season, fetching them at
// most once per page. Concurrent calls for the same season share a lookup.
// A failed fetch leaves the season unfetched so a later call tries again.
func (p *Page) LoadSeasonEpisodes(ctx context.Context, season int) ([]models.Episode, error) {
	p.mu.Lock()
	switch {
	case p.ctx.Err() != nil:
		p.mu.Unlock()
		return nil, ErrClosed
	case p.key.Kind != models.KindShow:
		p.mu.Unlock()
		return nil, ErrNotShow
	case p.state != models.PageReady:
		p.mu.Unlock()
		return nil, ErrNotReady
	}
	if episodes, ok := p.episodes[season]; ok {
		p.mu.Unlock()
		return slices.Clone(episodes), nil
	}
	if _, known := p.seasonState[season]; !known {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeason, season)
	}
	p.seasonState[season] = models.SeasonFetching
	p.mu.Unlock()

	ch := p.seasonsG.DoChan(strconv.Itoa(season), func() (any, error) {
		return p.fetchSeason(season)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]models.Episode)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Page) fetchSeason(season int) ([]models.Episode, error) {
	p.mu.RLock()
	cached, ok := p.episodes[season]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	episodes, err := p.source.SeasonEpisodes(p.ctx, p.key.ID, season)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.Err() != nil {
		return nil, ErrClosed
	}
	if err != nil {
		p.seasonState[season] = models.SeasonUnfetched
		log.Printf("[detail] season %d of %s failed: %v", season, p.key, err)
		return nil, err
	}
	if episodes == nil {
		episodes = []models.Episode{}
	}
	p.episodes[season] = episodes
	p.seasonState[season] = models.SeasonFetched
	return episodes, nil
}

// View snapshots the page for rendering.
func (p *Page) View() models.DetailView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	view := models.DetailView{
		PageID:          p.id,
		Key:             p.key,
		State:           p.state,
		Recommendations: []models.Title{},
	}
	if p.state == models.PageError {
		// The cause is logged; clients only learn that the load failed.
		view.Error = "metadata lookup failed"
	}
	if p.state != models.PageReady {
		return view
	}

	title := *p.title
	view.Title = &title
	if p.trailer != nil {
		trailer := *p.trailer
		view.Trailer = &trailer
	}
	view.Cast = slices.Clone(p.cast)
	view.Crew = slices.Clone(p.crew)
	view.Recommendations = append(view.Recommendations, p.recommendations...)
	for _, season := range p.seasons {
		view.Seasons = append(view.Seasons, models.SeasonView{
			Season:   season,
			State:    p.seasonState[season.Number],
			Episodes: slices.Clone(p.episodes[season.Number]),
		})
	}
	return view
}
