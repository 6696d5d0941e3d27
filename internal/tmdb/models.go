package tmdb

// SortBy is a client-visible sort key. Translation to the upstream's native
// sort token happens in Discover, since the release-date field differs
// between movies and tv.
type SortBy string

const (
	SortPopularity  SortBy = "popularity.desc"
	SortReleaseDate SortBy = "release_date.desc"
	SortVoteAverage SortBy = "vote_average.desc"
)

// Media kinds in the upstream's vocabulary.
const (
	KindMovie = "movie"
	KindTV    = "tv"
)

// ListKind identifies a built-in account list.
type ListKind string

const (
	ListWatchlist ListKind = "watchlist"
	ListFavorites ListKind = "favorites"
	ListRated     ListKind = "rated"
)

// DiscoverFilters narrows a discover query. Pointer fields distinguish
// "unset" from explicit zero values: an explicit MinVoteCount of 0 must
// override the kind-specific default floor, not be merged with it.
type DiscoverFilters struct {
	IncludeAdult    bool     `json:"includeAdult"`
	MinVoteAverage  *float64 `json:"minVoteAverage,omitempty"`
	MinVoteCount    *int     `json:"minVoteCount,omitempty"`
	ReleaseDateFrom *int     `json:"releaseDateFrom,omitempty"`
	ReleaseDateTo   *int     `json:"releaseDateTo,omitempty"`
}

// Language is an entry of the upstream's language reference table.
type Language struct {
	ISO639_1    string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// Genre is an entry of the upstream's genre reference table.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// ListItem is one thin result row of a discover query, an account list page
// or a custom list page. Title is set for movies, Name for tv; MediaType is
// only present on mixed custom lists.
type ListItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	Adult        bool    `json:"adult,omitempty"`
}

// Page is one paginated slice of list items.
type Page struct {
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
	Results      []ListItem `json:"results"`
}

// CustomList is a user-curated list with its items.
type CustomList struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ItemCount   int        `json:"item_count"`
	Page        int        `json:"page"`
	TotalPages  int        `json:"total_pages"`
	Items       []ListItem `json:"items"`
}

// AccountList is one row of an account's custom list index.
type AccountList struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ItemCount   int    `json:"item_count"`
}

type accountListsResponse struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Results    []AccountList `json:"results"`
}

// Account holds the upstream account identity for a session.
type Account struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// CastMember is one on-screen credit; Order is the billing position.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is one off-screen credit.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits holds cast and crew for a title.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is one related clip (trailer, teaser, ...).
type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type videoList struct {
	Results []Video `json:"results"`
}

// ExternalIDs cross-references a title on other databases.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
	TVDBID int    `json:"tvdb_id"`
}

// ProductionCountry is one country a title was produced in.
type ProductionCountry struct {
	ISO3166_1 string `json:"iso_3166_1"`
	Name      string `json:"name"`
}

// MovieDetails is the rich per-movie record with credits and videos appended.
type MovieDetails struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	OriginalTitle       string              `json:"original_title"`
	Overview            string              `json:"overview"`
	PosterPath          *string             `json:"poster_path"`
	ReleaseDate         string              `json:"release_date"`
	Runtime             int                 `json:"runtime"`
	IMDBID              string              `json:"imdb_id"`
	VoteAverage         float64             `json:"vote_average"`
	Genres              []Genre             `json:"genres"`
	OriginalLanguage    string              `json:"original_language"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	Credits             *Credits            `json:"credits"`
	Videos              *videoList          `json:"videos"`
}

// ShowDetails is the rich per-show record with external ids, credits and
// videos appended.
type ShowDetails struct {
	ID                  int                 `json:"id"`
	Name                string              `json:"name"`
	Overview            string              `json:"overview"`
	PosterPath          *string             `json:"poster_path"`
	FirstAirDate        string              `json:"first_air_date"`
	LastAirDate         string              `json:"last_air_date"`
	EpisodeRunTime      []int               `json:"episode_run_time"`
	VoteAverage         float64             `json:"vote_average"`
	Genres              []Genre             `json:"genres"`
	OriginalLanguage    string              `json:"original_language"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	ExternalIDs         *ExternalIDs        `json:"external_ids"`
	Credits             *Credits            `json:"credits"`
	Videos              *videoList          `json:"videos"`
}

// trailerKeys returns the YouTube keys of videos tagged as trailers.
func (v *videoList) trailerKeys() []string {
	if v == nil {
		return nil
	}
	var keys []string
	for _, video := range v.Results {
		if video.Site == "YouTube" && video.Type == "Trailer" {
			keys = append(keys, video.Key)
		}
	}
	return keys
}

// Trailers returns the YouTube trailer keys for the movie.
func (d *MovieDetails) Trailers() []string { return d.Videos.trailerKeys() }

// Trailers returns the YouTube trailer keys for the show.
func (d *ShowDetails) Trailers() []string { return d.Videos.trailerKeys() }

// ErrorResponse is the upstream's error body.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

type requestTokenResponse struct {
	Success      bool   `json:"success"`
	RequestToken string `json:"request_token"`
}

type sessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}
