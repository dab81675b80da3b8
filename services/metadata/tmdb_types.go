package metadata

// Response shapes for the media database endpoints in use. Each endpoint has
// its own type so a field missing from one payload never silently reads as
// zero from another.

type tmdbGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type tmdbMovieDetails struct {
	ID                  int64         `json:"id"`
	Title               string        `json:"title"`
	OriginalTitle       string        `json:"original_title"`
	Overview            string        `json:"overview"`
	PosterPath          string        `json:"poster_path"`
	BackdropPath        string        `json:"backdrop_path"`
	ReleaseDate         string        `json:"release_date"`
	Genres              []tmdbGenre   `json:"genres"`
	VoteAverage         float64       `json:"vote_average"`
	Popularity          float64       `json:"popularity"`
	Runtime             int           `json:"runtime"`
	Adult               bool          `json:"adult"`
	OriginCountry       []string      `json:"origin_country"`
	ProductionCountries []tmdbCountry `json:"production_countries"`
}

type tmdbCountry struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

type tmdbShowDetails struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	OriginalName     string              `json:"original_name"`
	Overview         string              `json:"overview"`
	PosterPath       string              `json:"poster_path"`
	BackdropPath     string              `json:"backdrop_path"`
	FirstAirDate     string              `json:"first_air_date"`
	Genres           []tmdbGenre         `json:"genres"`
	VoteAverage      float64             `json:"vote_average"`
	Popularity       float64             `json:"popularity"`
	Adult            bool                `json:"adult"`
	NumberOfSeasons  int                 `json:"number_of_seasons"`
	NumberOfEpisodes int                 `json:"number_of_episodes"`
	OriginCountry    []string            `json:"origin_country"`
	CreatedBy        []tmdbCreator       `json:"created_by"`
	Seasons          []tmdbSeasonSummary `json:"seasons"`
}

type tmdbCreator struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}

type tmdbSeasonSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	PosterPath   string `json:"poster_path"`
}

type tmdbCreditsResponse struct {
	ID   int64            `json:"id"`
	Cast []tmdbCastMember `json:"cast"`
	Crew []tmdbCrewMember `json:"crew"`
}

type tmdbCastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type tmdbCrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

type tmdbVideosResponse struct {
	Results []tmdbVideo `json:"results"`
}

type tmdbVideo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

// tmdbListResponse is shared by search, trending, discover and
// recommendations; they all return the same paged item shape.
type tmdbListResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []tmdbListItem `json:"results"`
}

type tmdbListItem struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Name          string   `json:"name"`
	OriginalTitle string   `json:"original_title"`
	OriginalName  string   `json:"original_name"`
	Overview      string   `json:"overview"`
	PosterPath    string   `json:"poster_path"`
	BackdropPath  string   `json:"backdrop_path"`
	ReleaseDate   string   `json:"release_date"`
	FirstAirDate  string   `json:"first_air_date"`
	VoteAverage   float64  `json:"vote_average"`
	Popularity    float64  `json:"popularity"`
	GenreIDs      []int64  `json:"genre_ids"`
	Adult         bool     `json:"adult"`
	OriginCountry []string `json:"origin_country"`
	MediaType     string   `json:"media_type"`
}

type tmdbSeasonDetails struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	SeasonNumber int           `json:"season_number"`
	Episodes     []tmdbEpisode `json:"episodes"`
}

type tmdbEpisode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	AirDate       string `json:"air_date"`
	Runtime       int    `json:"runtime"`
	StillPath     string `json:"still_path"`
}
