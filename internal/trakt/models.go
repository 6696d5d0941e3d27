package trakt

// IDs cross-references a title across databases. TMDB is the id used for
// detail enrichment; IMDB feeds the client-visible meta id.
type IDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
}

// Title is a thin movie or show reference inside a list item.
type Title struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// ListItem is one row of a watchlist, favorites, ratings or custom list
// page. Exactly one of Movie/Show is set, matching Type.
type ListItem struct {
	Rank     int    `json:"rank,omitempty"`
	ListedAt string `json:"listed_at,omitempty"`
	RatedAt  string `json:"rated_at,omitempty"`
	Rating   int    `json:"rating,omitempty"`
	Type     string `json:"type"`
	Movie    *Title `json:"movie,omitempty"`
	Show     *Title `json:"show,omitempty"`
}

// TMDBID returns the TMDB id of the item's title, or 0 when absent.
func (i ListItem) TMDBID() int {
	switch {
	case i.Movie != nil:
		return i.Movie.IDs.TMDB
	case i.Show != nil:
		return i.Show.IDs.TMDB
	default:
		return 0
	}
}

// ListPage is one paginated slice of list items. TotalPages comes from the
// X-Pagination-Page-Count response header.
type ListPage struct {
	Items      []ListItem `json:"items"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// List is one of a user's custom lists.
type List struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
	ItemCount   int    `json:"item_count"`
	IDs         struct {
		Trakt int    `json:"trakt"`
		Slug  string `json:"slug"`
	} `json:"ids"`
}

// Profile is the authenticated user's public profile.
type Profile struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Private  bool   `json:"private"`
	IDs      struct {
		Slug string `json:"slug"`
	} `json:"ids"`
}

// Token is an OAuth token response.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}
