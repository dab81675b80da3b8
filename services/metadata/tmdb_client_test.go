package metadata

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieflex/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// newTestService routes requests by URL path to canned bodies and records
// every path it saw.
func newTestService(t *testing.T, routes map[string]string) (*Service, func() []*http.Request) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []*http.Request
	)
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			seen = append(seen, req)
			mu.Unlock()
			path := strings.TrimPrefix(req.URL.Path, "/3")
			if body, ok := routes[path]; ok {
				return jsonResponse(http.StatusOK, body), nil
			}
			return jsonResponse(http.StatusNotFound, `{"status_message":"not found"}`), nil
		}),
	}
	svc := NewService(Config{APIKey: "test-key", Language: "fr"}, httpc)
	return svc, func() []*http.Request {
		mu.Lock()
		defer mu.Unlock()
		return append([]*http.Request(nil), seen...)
	}
}

func TestMovieDetailsMapsFieldsAndImages(t *testing.T) {
	svc, requests := newTestService(t, map[string]string{
		"/movie/550": `{"id":550,"title":"Fight Club","original_title":"Fight Club","overview":"...","poster_path":"/p.jpg","backdrop_path":"","release_date":"1999-10-15","genres":[{"id":18,"name":"Drame"}],"vote_average":8.43,"runtime":139,"production_countries":[{"iso_3166_1":"US","name":"United States"}]}`,
	})

	details, err := svc.Details(context.Background(), models.TitleKey{Kind: models.KindMovie, ID: 550})
	require.NoError(t, err)

	title := details.Title
	assert.Equal(t, "Fight Club", title.Name)
	assert.Equal(t, 1999, title.Year)
	assert.Equal(t, 139, title.RuntimeMinutes)
	assert.Equal(t, []string{"US"}, title.OriginCountry)
	assert.Equal(t, "8.4", title.Rating())
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", title.Poster.URL)
	assert.True(t, title.Backdrop.Placeholder)
	assert.Empty(t, details.Seasons)

	reqs := requests()
	require.Len(t, reqs, 1)
	q := reqs[0].URL.Query()
	assert.Equal(t, "test-key", q.Get("api_key"))
	assert.Equal(t, "fr-FR", q.Get("language"))
}

func TestShowDetailsCarriesSeasonsAndCreators(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/tv/1399": `{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17","number_of_seasons":2,
			"created_by":[{"id":9813,"name":"David Benioff","profile_path":"/db.jpg"}],
			"seasons":[{"season_number":0,"name":"Specials","episode_count":3},{"season_number":1,"name":"Saison 1","episode_count":10,"air_date":"2011-04-17","poster_path":"/s1.jpg"}]}`,
	})

	details, err := svc.Details(context.Background(), models.TitleKey{Kind: models.KindShow, ID: 1399})
	require.NoError(t, err)

	assert.Equal(t, models.KindShow, details.Title.Kind)
	assert.Equal(t, 2011, details.Title.Year)
	require.Len(t, details.Seasons, 2)
	assert.Equal(t, 1, details.Seasons[1].Number)
	assert.Equal(t, "https://image.tmdb.org/t/p/w92/s1.jpg", details.Seasons[1].Poster.URL)
	require.Len(t, details.Creators, 1)
	assert.Equal(t, "Creator", details.Creators[0].Role)
	assert.Equal(t, int64(9813), details.Creators[0].PersonID)
}

func TestCreditsSplitsCastAndCrew(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/movie/550/credits": `{"id":550,
			"cast":[{"id":819,"name":"Edward Norton","character":"The Narrator","order":0,"profile_path":"/en.jpg"}],
			"crew":[{"id":7467,"name":"David Fincher","job":"Director","department":"Directing"}]}`,
	})

	credits, err := svc.Credits(context.Background(), models.TitleKey{Kind: models.KindMovie, ID: 550})
	require.NoError(t, err)
	require.Len(t, credits.Cast, 1)
	require.Len(t, credits.Crew, 1)
	assert.Equal(t, "The Narrator", credits.Cast[0].Role)
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/en.jpg", credits.Cast[0].Profile.URL)
	assert.Equal(t, "Director", credits.Crew[0].Role)
	assert.Equal(t, "Directing", credits.Crew[0].Department)
	assert.True(t, credits.Crew[0].Profile.Placeholder)
}

func TestVideosBuildEmbedURLs(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/tv/1/videos": `{"results":[
			{"key":"yt1","site":"YouTube","type":"Trailer","name":"A"},
			{"key":"vm1","site":"Vimeo","type":"Teaser","name":"B"},
			{"key":"","site":"YouTube","type":"Trailer","name":"no key"}]}`,
	})

	videos, err := svc.Videos(context.Background(), models.TitleKey{Kind: models.KindShow, ID: 1})
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "https://www.youtube.com/embed/yt1?autoplay=1", videos[0].EmbedURL)
	assert.Equal(t, "https://player.vimeo.com/video/vm1?autoplay=1", videos[1].EmbedURL)
}

func TestSeasonEpisodes(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"/tv/1399/season/1": `{"season_number":1,"episodes":[{"episode_number":1,"name":"L'hiver vient","runtime":62,"air_date":"2011-04-17","still_path":"/e1.jpg"},{"episode_number":2,"name":"La route royale","runtime":null}]}`,
	})

	episodes, err := svc.SeasonEpisodes(context.Background(), 1399, 1)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, 62, episodes[0].RuntimeMinutes)
	assert.Equal(t, 1, episodes[1].SeasonNumber)
	assert.Equal(t, "https://image.tmdb.org/t/p/w300/e1.jpg", episodes[0].Still.URL)
	assert.True(t, episodes[1].Still.Placeholder)
}

func TestSearchSendsQueryAndFirstPage(t *testing.T) {
	svc, requests := newTestService(t, map[string]string{
		"/search/tv": `{"page":1,"results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20"}]}`,
	})

	titles, err := svc.Search(context.Background(), models.KindShow, "  breaking bad ")
	require.NoError(t, err)
	require.Len(t, titles, 1)
	assert.Equal(t, "Breaking Bad", titles[0].Name)
	assert.Equal(t, 2008, titles[0].Year)
	assert.Equal(t, models.KindShow, titles[0].Kind)

	q := requests()[0].URL.Query()
	assert.Equal(t, "breaking bad", q.Get("query"))
	assert.Equal(t, "1", q.Get("page"))
}

func TestDiscoverSendsGenreAndSort(t *testing.T) {
	svc, requests := newTestService(t, map[string]string{
		"/discover/movie": `{"results":[{"id":1,"title":"Action"}]}`,
	})

	_, err := svc.Discover(context.Background(), models.DiscoverQuery{SortBy: "popularity.desc", GenreID: 28})
	require.NoError(t, err)

	q := requests()[0].URL.Query()
	assert.Equal(t, "28", q.Get("with_genres"))
	assert.Equal(t, "popularity.desc", q.Get("sort_by"))
}

func TestStatusErrorsAreTyped(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{})

	_, err := svc.Details(context.Background(), models.TitleKey{Kind: models.KindMovie, ID: 9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "tmdb movie details failed")
}

func TestUnconfiguredServiceMakesNoRequests(t *testing.T) {
	called := false
	httpc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return jsonResponse(http.StatusOK, `{}`), nil
	})}
	svc := NewService(Config{APIKey: "  "}, httpc)

	_, err := svc.Trending(context.Background(), models.KindMovie)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if called {
		t.Fatalf("expected no http request without an api key")
	}
}

func TestInvalidKeysAreRejected(t *testing.T) {
	svc, requests := newTestService(t, nil)

	_, err := svc.Details(context.Background(), models.TitleKey{Kind: models.KindMovie, ID: 0})
	assert.Error(t, err)
	_, err = svc.Search(context.Background(), models.KindMovie, "   ")
	assert.Error(t, err)
	assert.Empty(t, requests())
}

func TestTransportErrorsHideAPIKey(t *testing.T) {
	refused := errors.New("connection refused")
	httpc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, refused
	})}
	svc := NewService(Config{APIKey: "SECRETKEY123"}, httpc)

	_, err := svc.Details(context.Background(), models.TitleKey{Kind: models.KindMovie, ID: 550})
	require.Error(t, err)
	assert.ErrorIs(t, err, refused)
	assert.Contains(t, err.Error(), "tmdb movie details")
	assert.NotContains(t, err.Error(), "SECRETKEY123")
	assert.NotContains(t, err.Error(), "api_key")
}
