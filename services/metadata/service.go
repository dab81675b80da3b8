package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"movieflex/models"
)

// Config carries the settings the metadata service needs.
type Config struct {
	APIKey         string
	Language       string
	ImageBaseURL   string
	PlaceholderURL string
	Timeout        time.Duration
}

// Service is the read-only gateway to the media database. It is safe for
// concurrent use and holds no per-page state.
type Service struct {
	client *tmdbClient
}

// NewService builds a service. A nil httpc gets a client with cfg.Timeout.
func NewService(cfg Config, httpc *http.Client) *Service {
	if httpc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	images := NewImages(cfg.ImageBaseURL, cfg.PlaceholderURL)
	return &Service{client: newTMDBClient(cfg.APIKey, cfg.Language, images, httpc)}
}

func (s *Service) Configured() bool {
	return s.client.isConfigured()
}

// Language is the normalized language tag sent with every lookup.
func (s *Service) Language() string {
	return s.client.language
}

func (s *Service) Images() Images {
	return s.client.images
}

func (s *Service) Details(ctx context.Context, key models.TitleKey) (*models.TitleDetails, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("invalid title %s", key)
	}
	return s.client.details(ctx, key)
}

func (s *Service) Credits(ctx context.Context, key models.TitleKey) (*models.Credits, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("invalid title %s", key)
	}
	return s.client.credits(ctx, key)
}

func (s *Service) Videos(ctx context.Context, key models.TitleKey) ([]models.Trailer, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("invalid title %s", key)
	}
	return s.client.videos(ctx, key)
}

func (s *Service) Recommendations(ctx context.Context, key models.TitleKey) ([]models.Title, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("invalid title %s", key)
	}
	return s.client.recommendations(ctx, key)
}

func (s *Service) SeasonEpisodes(ctx context.Context, showID int64, season int) ([]models.Episode, error) {
	if showID <= 0 {
		return nil, fmt.Errorf("invalid show id %d", showID)
	}
	if season < 0 {
		return nil, fmt.Errorf("invalid season %d", season)
	}
	return s.client.season(ctx, showID, season)
}

// Search runs a first-page search for one media kind. Callers are expected to
// skip blank queries; a blank query here is an error.
func (s *Service) Search(ctx context.Context, kind models.MediaKind, query string) ([]models.Title, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search %s: empty query", kind)
	}
	return s.client.search(ctx, kind, query)
}

func (s *Service) Trending(ctx context.Context, kind models.MediaKind) ([]models.Title, error) {
	return s.client.trending(ctx, kind)
}

func (s *Service) Discover(ctx context.Context, query models.DiscoverQuery) ([]models.Title, error) {
	if query.Kind == "" {
		query.Kind = models.KindMovie
	}
	return s.client.discover(ctx, query)
}
