package models

// PageState is the lifecycle state of a detail page.
type PageState string

const (
	PageIdle    PageState = "idle"
	PageLoading PageState = "loading"
	PageReady   PageState = "ready"
	PageError   PageState = "error"
)

// SeasonState tracks episode loading for one season of a show page.
type SeasonState string

const (
	SeasonUnfetched SeasonState = "unfetched"
	SeasonFetching  SeasonState = "fetching"
	SeasonFetched   SeasonState = "fetched"
)

type SeasonView struct {
	Season
	State    SeasonState `json:"state"`
	Episodes []Episode   `json:"episodes,omitempty"`
}

// DetailView is the render-ready state of a detail page.
type DetailView struct {
	PageID          string       `json:"pageId"`
	Key             TitleKey     `json:"key"`
	State           PageState    `json:"state"`
	Error           string       `json:"error,omitempty"`
	Title           *Title       `json:"title,omitempty"`
	Trailer         *Trailer     `json:"trailer,omitempty"`
	Cast            []Credit     `json:"cast,omitempty"`
	Crew            []Credit     `json:"crew,omitempty"`
	Seasons         []SeasonView `json:"seasons,omitempty"`
	Recommendations []Title      `json:"recommendations"`
}

// SearchView holds both result lists for a query. Empty is set when the query
// was blank and no lookup was made.
type SearchView struct {
	Query        string  `json:"query"`
	Empty        bool    `json:"empty"`
	Movies       []Title `json:"movies"`
	Shows        []Title `json:"shows"`
	MoviesFailed bool    `json:"moviesFailed,omitempty"`
	ShowsFailed  bool    `json:"showsFailed,omitempty"`
}

type Shelf struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Titles []Title `json:"titles"`
}

// Feed is a listing page: an optional featured title and its shelves.
type Feed struct {
	Hero    *Title  `json:"hero,omitempty"`
	Shelves []Shelf `json:"shelves"`
}
