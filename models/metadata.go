package models

import (
	"fmt"
	"strings"
)

// Basic metadata structures for titles, people and images.

type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindShow  MediaKind = "show"
)

// ParseMediaKind accepts the kind names used in routes and by the media database.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return KindMovie, true
	case "show", "tv", "series":
		return KindShow, true
	default:
		return "", false
	}
}

// APIPath is the path segment the media database uses for the kind.
func (k MediaKind) APIPath() string {
	if k == KindMovie {
		return "movie"
	}
	return "tv"
}

// TitleKey uniquely identifies a title.
type TitleKey struct {
	Kind MediaKind `json:"kind"`
	ID   int64     `json:"id"`
}

func (k TitleKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

func (k TitleKey) Valid() bool {
	return k.ID > 0 && (k.Kind == KindMovie || k.Kind == KindShow)
}

// Path is the detail page path for the title.
func (k TitleKey) Path() string {
	return fmt.Sprintf("/%s/%d", k.Kind.APIPath(), k.ID)
}

type Image struct {
	URL         string `json:"url"`
	Type        string `json:"type"` // poster, backdrop, profile, still, season, avatar
	Placeholder bool   `json:"placeholder,omitempty"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Title struct {
	ID             int64     `json:"id"`
	Kind           MediaKind `json:"kind"`
	Name           string    `json:"name"`
	OriginalName   string    `json:"originalName,omitempty"`
	Overview       string    `json:"overview"`
	ReleaseDate    string    `json:"releaseDate,omitempty"` // first air date for shows
	Year           int       `json:"year,omitempty"`
	Genres         []Genre   `json:"genres,omitempty"`
	Poster         *Image    `json:"poster,omitempty"`
	Backdrop       *Image    `json:"backdrop,omitempty"`
	VoteAverage    float64   `json:"voteAverage"`
	Popularity     float64   `json:"popularity,omitempty"`
	Adult          bool      `json:"adult,omitempty"`
	RuntimeMinutes int       `json:"runtimeMinutes,omitempty"` // movies only
	SeasonCount    int       `json:"seasonCount,omitempty"`    // shows only
	EpisodeCount   int       `json:"episodeCount,omitempty"`   // shows only
	OriginCountry  []string  `json:"originCountry,omitempty"`
}

func (t Title) Key() TitleKey {
	return TitleKey{Kind: t.Kind, ID: t.ID}
}

// Rating is the vote average rounded to one decimal.
func (t Title) Rating() string {
	return fmt.Sprintf("%.1f", t.VoteAverage)
}

type Trailer struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	URL         string `json:"url,omitempty"`
	EmbedURL    string `json:"embedUrl,omitempty"`
}

// Credit is a person attached to a title. Role holds the character for cast,
// the job for crew and "Creator" for show creators.
type Credit struct {
	PersonID   int64  `json:"personId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Profile    *Image `json:"profile,omitempty"`
	Order      int    `json:"order"`
}

type Credits struct {
	Cast []Credit `json:"cast"`
	Crew []Credit `json:"crew"`
}

type Season struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	Overview     string `json:"overview,omitempty"`
	EpisodeCount int    `json:"episodeCount"`
	AirDate      string `json:"airDate,omitempty"`
	Year         int    `json:"year,omitempty"`
	Poster       *Image `json:"poster,omitempty"`
}

type Episode struct {
	Number         int    `json:"number"`
	SeasonNumber   int    `json:"seasonNumber"`
	Name           string `json:"name"`
	Overview       string `json:"overview"`
	AirDate        string `json:"airDate,omitempty"`
	RuntimeMinutes int    `json:"runtimeMinutes,omitempty"`
	Still          *Image `json:"still,omitempty"`
}

// TitleDetails is the core metadata lookup result. Seasons and Creators are
// only set for shows.
type TitleDetails struct {
	Title    Title    `json:"title"`
	Seasons  []Season `json:"seasons,omitempty"`
	Creators []Credit `json:"creators,omitempty"`
}

// DiscoverQuery selects a filtered listing of titles.
type DiscoverQuery struct {
	Kind    MediaKind
	SortBy  string
	GenreID int64
}
