// Package addon turns stored catalog configurations into the manifest and
// catalog feeds a media-center client consumes. It orchestrates the upstream
// gateways; it persists nothing itself.
package addon

import (
	"context"
	"errors"

	"github.com/reelcove/reelcove/internal/tmdb"
)

var (
	ErrConfigNotFound = errors.New("catalog config not found")
	ErrInvalidKind    = errors.New("unsupported media kind")
	ErrUnknownGenre   = errors.New("unknown genre name")
	ErrUnknownSource  = errors.New("unknown catalog source")
)

// MediaKind is the client-visible content type.
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// upstreamKind translates the client-visible kind to the discovery
// provider's vocabulary.
func upstreamKind(kind MediaKind) (string, error) {
	switch kind {
	case KindMovie:
		return tmdb.KindMovie, nil
	case KindSeries:
		return tmdb.KindTV, nil
	default:
		return "", ErrInvalidKind
	}
}

// Source selects the upstream a catalog is resolved against.
type Source string

const (
	SourceDiscover  Source = "discover"
	SourceTMDBList  Source = "tmdb-list"
	SourceTraktList Source = "trakt-list"
)

// ListKind identifies a built-in account list (as opposed to a custom list
// addressed by id). Built-in lists need the owner's upstream credentials.
type ListKind string

const (
	ListWatchlist ListKind = "watchlist"
	ListFavorites ListKind = "favorites"
	ListRated     ListKind = "rated"
)

// CatalogConfig is one stored catalog definition. It is owned and persisted
// by the configuration layer; the engine treats it as read-only input.
type CatalogConfig struct {
	ID        string
	Owner     string
	Name      string
	MediaKind MediaKind
	// Languages is an ordered set of language codes. Empty means one
	// unified catalog across all languages rather than one per language.
	Languages []string
	Sort      tmdb.SortBy
	Source    Source
	// ListID addresses a custom list; ListKind a built-in one. At most one
	// of the two is set when Source is not discover.
	ListID   string
	ListKind ListKind
	// Filters only apply to discover catalogs.
	Filters tmdb.DiscoverFilters
}

// TMDBCredentials is the session pair needed for built-in TMDB lists.
type TMDBCredentials struct {
	AccountID int
	SessionID string
}

// ConfigResolver resolves a stored CatalogConfig by id. Returns
// ErrConfigNotFound for unknown ids.
type ConfigResolver interface {
	GetConfig(ctx context.Context, id string) (*CatalogConfig, error)
}

// CredentialsResolver resolves per-owner upstream credentials. A nil
// credentials value (or empty token) means the owner has not connected that
// provider; built-in lists then yield empty pages rather than errors.
type CredentialsResolver interface {
	TMDBCredentials(ctx context.Context, owner string) (*TMDBCredentials, error)
	TraktToken(ctx context.Context, owner string) (string, error)
}

// Trailer references one clip on the supported video host.
type Trailer struct {
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Meta is one enriched catalog entry in the client's wire shape.
type Meta struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Poster      string    `json:"poster,omitempty"`
	Description string    `json:"description"`
	IMDBID      string    `json:"imdbId,omitempty"`
	Genres      []string  `json:"genres"`
	ReleaseInfo string    `json:"releaseInfo,omitempty"`
	Director    []string  `json:"director"`
	Cast        []string  `json:"cast"`
	IMDBRating  string    `json:"imdbRating,omitempty"`
	Trailers    []Trailer `json:"trailers,omitempty"`
	Runtime     string    `json:"runtime,omitempty"`
	Language    string    `json:"language,omitempty"`
	Country     string    `json:"country,omitempty"`
}

// CatalogPage is one paginated slice of enriched metadata records.
type CatalogPage struct {
	Metas []Meta `json:"metas"`
}

// CatalogRequest carries the per-request catalog parameters decoded from the
// client's extra path segment.
type CatalogRequest struct {
	Kind      MediaKind
	CatalogID string
	// Skip is an item offset in multiples of the page size. Unaligned
	// values resolve to the page of the nearest lower aligned offset.
	Skip   int
	Genre  string
	Search string
}

// ManifestExtra describes one supported extra query parameter.
type ManifestExtra struct {
	Name       string   `json:"name"`
	IsRequired bool     `json:"isRequired"`
	Options    []string `json:"options,omitempty"`
}

// ManifestCatalog describes one sub-catalog exposed by an addon.
type ManifestCatalog struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Extra []ManifestExtra `json:"extra"`
}

// BehaviorHints signals addon capabilities to the client.
type BehaviorHints struct {
	Configurable     bool   `json:"configurable"`
	ConfigurationURL string `json:"configurationURL,omitempty"`
}

// Manifest is the addon's discovery descriptor.
type Manifest struct {
	ID            string            `json:"id"`
	Version       string            `json:"version"`
	Name          string            `json:"name"`
	Resources     []string          `json:"resources"`
	Types         []string          `json:"types"`
	Catalogs      []ManifestCatalog `json:"catalogs"`
	BehaviorHints BehaviorHints     `json:"behaviorHints"`
}
