package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movieflex/models"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client
	images   Images
}

func newTMDBClient(apiKey, language string, images Images, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:   strings.TrimSpace(apiKey),
		language: normalizeLanguage(language),
		httpc:    httpc,
		images:   images,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET issues a single GET against the media database and decodes the JSON
// body into v. Failures are returned as is; callers decide what to show.
func (c *tmdbClient) doGET(ctx context.Context, op string, params url.Values, v any, segments ...string) error {
	if !c.isConfigured() {
		return ErrNotConfigured
	}

	endpoint, err := url.JoinPath(tmdbBaseURL, segments...)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		// The request URL carries the api key; keep it out of the error text.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("tmdb %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", op, err)
	}
	return nil
}

func idSegment(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *tmdbClient) details(ctx context.Context, key models.TitleKey) (*models.TitleDetails, error) {
	if key.Kind == models.KindMovie {
		var movie tmdbMovieDetails
		if err := c.doGET(ctx, "movie details", nil, &movie, "movie", idSegment(key.ID)); err != nil {
			return nil, err
		}
		return &models.TitleDetails{Title: c.movieTitle(movie)}, nil
	}

	var show tmdbShowDetails
	if err := c.doGET(ctx, "tv details", nil, &show, "tv", idSegment(key.ID)); err != nil {
		return nil, err
	}
	return c.showDetails(show), nil
}

func (c *tmdbClient) movieTitle(movie tmdbMovieDetails) models.Title {
	countries := movie.OriginCountry
	if len(countries) == 0 {
		for _, pc := range movie.ProductionCountries {
			if code := strings.TrimSpace(pc.ISO31661); code != "" {
				countries = append(countries, code)
			}
		}
	}
	return models.Title{
		ID:             movie.ID,
		Kind:           models.KindMovie,
		Name:           movie.Title,
		OriginalName:   movie.OriginalTitle,
		Overview:       movie.Overview,
		ReleaseDate:    movie.ReleaseDate,
		Year:           parseTMDBYear(movie.ReleaseDate, ""),
		Genres:         mapGenres(movie.Genres),
		Poster:         c.images.Poster(movie.PosterPath),
		Backdrop:       c.images.Backdrop(movie.BackdropPath),
		VoteAverage:    movie.VoteAverage,
		Popularity:     movie.Popularity,
		Adult:          movie.Adult,
		RuntimeMinutes: movie.Runtime,
		OriginCountry:  countries,
	}
}

func (c *tmdbClient) showDetails(show tmdbShowDetails) *models.TitleDetails {
	details := &models.TitleDetails{
		Title: models.Title{
			ID:            show.ID,
			Kind:          models.KindShow,
			Name:          show.Name,
			OriginalName:  show.OriginalName,
			Overview:      show.Overview,
			ReleaseDate:   show.FirstAirDate,
			Year:          parseTMDBYear("", show.FirstAirDate),
			Genres:        mapGenres(show.Genres),
			Poster:        c.images.Poster(show.PosterPath),
			Backdrop:      c.images.Backdrop(show.BackdropPath),
			VoteAverage:   show.VoteAverage,
			Popularity:    show.Popularity,
			Adult:         show.Adult,
			SeasonCount:   show.NumberOfSeasons,
			EpisodeCount:  show.NumberOfEpisodes,
			OriginCountry: show.OriginCountry,
		},
	}

	for _, s := range show.Seasons {
		details.Seasons = append(details.Seasons, models.Season{
			Number:       s.SeasonNumber,
			Name:         s.Name,
			Overview:     s.Overview,
			EpisodeCount: s.EpisodeCount,
			AirDate:      s.AirDate,
			Year:         parseTMDBYear("", s.AirDate),
			Poster:       c.images.Season(s.PosterPath),
		})
	}

	for _, creator := range show.CreatedBy {
		details.Creators = append(details.Creators, models.Credit{
			PersonID: creator.ID,
			Name:     creator.Name,
			Role:     "Creator",
			Profile:  c.images.Avatar(creator.ProfilePath),
		})
	}

	return details
}

func (c *tmdbClient) credits(ctx context.Context, key models.TitleKey) (*models.Credits, error) {
	var payload tmdbCreditsResponse
	if err := c.doGET(ctx, key.Kind.APIPath()+" credits", nil, &payload, key.Kind.APIPath(), idSegment(key.ID), "credits"); err != nil {
		return nil, err
	}

	credits := &models.Credits{
		Cast: make([]models.Credit, 0, len(payload.Cast)),
		Crew: make([]models.Credit, 0, len(payload.Crew)),
	}
	for _, member := range payload.Cast {
		credits.Cast = append(credits.Cast, models.Credit{
			PersonID: member.ID,
			Name:     member.Name,
			Role:     member.Character,
			Profile:  c.images.Profile(member.ProfilePath),
			Order:    member.Order,
		})
	}
	for idx, member := range payload.Crew {
		credits.Crew = append(credits.Crew, models.Credit{
			PersonID:   member.ID,
			Name:       member.Name,
			Role:       member.Job,
			Department: member.Department,
			Profile:    c.images.Avatar(member.ProfilePath),
			Order:      idx,
		})
	}
	return credits, nil
}

func (c *tmdbClient) videos(ctx context.Context, key models.TitleKey) ([]models.Trailer, error) {
	var payload tmdbVideosResponse
	if err := c.doGET(ctx, key.Kind.APIPath()+" videos", nil, &payload, key.Kind.APIPath(), idSegment(key.ID), "videos"); err != nil {
		return nil, err
	}

	videos := make([]models.Trailer, 0, len(payload.Results))
	for _, video := range payload.Results {
		trailer := models.Trailer{
			Key:         strings.TrimSpace(video.Key),
			Name:        strings.TrimSpace(video.Name),
			Site:        strings.TrimSpace(video.Site),
			Type:        strings.TrimSpace(video.Type),
			Official:    video.Official,
			PublishedAt: strings.TrimSpace(video.PublishedAt),
		}
		if trailer.Key == "" {
			continue
		}

		switch strings.ToLower(trailer.Site) {
		case "youtube":
			trailer.URL = fmt.Sprintf("https://www.youtube.com/watch?v=%s", trailer.Key)
			trailer.EmbedURL = fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1", trailer.Key)
		case "vimeo":
			trailer.URL = fmt.Sprintf("https://vimeo.com/%s", trailer.Key)
			trailer.EmbedURL = fmt.Sprintf("https://player.vimeo.com/video/%s?autoplay=1", trailer.Key)
		}

		videos = append(videos, trailer)
	}
	return videos, nil
}

func (c *tmdbClient) recommendations(ctx context.Context, key models.TitleKey) ([]models.Title, error) {
	var payload tmdbListResponse
	if err := c.doGET(ctx, key.Kind.APIPath()+" recommendations", nil, &payload, key.Kind.APIPath(), idSegment(key.ID), "recommendations"); err != nil {
		return nil, err
	}
	return c.listTitles(key.Kind, payload.Results), nil
}

func (c *tmdbClient) season(ctx context.Context, showID int64, number int) ([]models.Episode, error) {
	var payload tmdbSeasonDetails
	if err := c.doGET(ctx, "season details", nil, &payload, "tv", idSegment(showID), "season", strconv.Itoa(number)); err != nil {
		return nil, err
	}

	episodes := make([]models.Episode, 0, len(payload.Episodes))
	for _, ep := range payload.Episodes {
		seasonNumber := ep.SeasonNumber
		if seasonNumber == 0 {
			seasonNumber = number
		}
		episodes = append(episodes, models.Episode{
			Number:         ep.EpisodeNumber,
			SeasonNumber:   seasonNumber,
			Name:           ep.Name,
			Overview:       ep.Overview,
			AirDate:        ep.AirDate,
			RuntimeMinutes: ep.Runtime,
			Still:          c.images.Still(ep.StillPath),
		})
	}
	return episodes, nil
}

func (c *tmdbClient) search(ctx context.Context, kind models.MediaKind, query string) ([]models.Title, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")

	var payload tmdbListResponse
	if err := c.doGET(ctx, "search "+kind.APIPath(), params, &payload, "search", kind.APIPath()); err != nil {
		return nil, err
	}
	return c.listTitles(kind, payload.Results), nil
}

func (c *tmdbClient) trending(ctx context.Context, kind models.MediaKind) ([]models.Title, error) {
	var payload tmdbListResponse
	if err := c.doGET(ctx, "trending "+kind.APIPath(), nil, &payload, "trending", kind.APIPath(), "week"); err != nil {
		return nil, err
	}
	return c.listTitles(kind, payload.Results), nil
}

func (c *tmdbClient) discover(ctx context.Context, query models.DiscoverQuery) ([]models.Title, error) {
	params := url.Values{}
	if query.SortBy != "" {
		params.Set("sort_by", query.SortBy)
	}
	if query.GenreID > 0 {
		params.Set("with_genres", strconv.FormatInt(query.GenreID, 10))
	}

	var payload tmdbListResponse
	if err := c.doGET(ctx, "discover "+query.Kind.APIPath(), params, &payload, "discover", query.Kind.APIPath()); err != nil {
		return nil, err
	}
	return c.listTitles(query.Kind, payload.Results), nil
}

func (c *tmdbClient) listTitles(kind models.MediaKind, items []tmdbListItem) []models.Title {
	titles := make([]models.Title, 0, len(items))
	for _, item := range items {
		title := models.Title{
			ID:            item.ID,
			Kind:          kind,
			Name:          pickTMDBName(kind, item.Name, item.Title),
			OriginalName:  pickTMDBName(kind, item.OriginalName, item.OriginalTitle),
			Overview:      item.Overview,
			Poster:        c.images.Poster(item.PosterPath),
			Backdrop:      c.images.Backdrop(item.BackdropPath),
			VoteAverage:   item.VoteAverage,
			Popularity:    item.Popularity,
			Adult:         item.Adult,
			OriginCountry: item.OriginCountry,
		}
		if kind == models.KindMovie {
			title.ReleaseDate = item.ReleaseDate
		} else {
			title.ReleaseDate = item.FirstAirDate
		}
		title.Year = parseTMDBYear(item.ReleaseDate, item.FirstAirDate)
		for _, id := range item.GenreIDs {
			title.Genres = append(title.Genres, models.Genre{ID: id})
		}
		titles = append(titles, title)
	}
	return titles
}

func mapGenres(genres []tmdbGenre) []models.Genre {
	if len(genres) == 0 {
		return nil
	}
	out := make([]models.Genre, len(genres))
	for i, g := range genres {
		out[i] = models.Genre{ID: g.ID, Name: g.Name}
	}
	return out
}

func pickTMDBName(kind models.MediaKind, seriesName, movieTitle string) string {
	if kind == models.KindMovie && movieTitle != "" {
		return movieTitle
	}
	if seriesName != "" {
		return seriesName
	}
	return movieTitle
}

func parseTMDBYear(movieDate, seriesDate string) int {
	date := movieDate
	if date == "" {
		date = seriesDate
	}
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return 0
}
