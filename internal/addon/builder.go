package addon

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reelcove/reelcove/internal/tmdb"
	"github.com/reelcove/reelcove/internal/trakt"
)

// pageSize is the fixed client-visible page size; skip offsets translate to
// upstream pages in multiples of it.
const pageSize = 20

// DiscoveryProvider is the discovery/search upstream plus its account and
// custom list surface.
type DiscoveryProvider interface {
	GetLanguages(ctx context.Context) ([]tmdb.Language, error)
	GetGenres(ctx context.Context, kind string) ([]tmdb.Genre, error)
	ResolveGenreID(ctx context.Context, kind, name string) (int, bool, error)
	Discover(ctx context.Context, kind, language string, page int, sortBy tmdb.SortBy, genreID int, search string, filters tmdb.DiscoverFilters) (*tmdb.Page, error)
	GetMovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetShowDetails(ctx context.Context, id int) (*tmdb.ShowDetails, error)
	GetAccountList(ctx context.Context, listKind tmdb.ListKind, kind string, accountID int, sessionID string, page int) (*tmdb.Page, error)
	GetCustomList(ctx context.Context, listID string, page int) (*tmdb.CustomList, error)
	ImageURL(path, size string) string
}

// ListProvider is the second remote list upstream (bearer-token auth).
type ListProvider interface {
	GetWatchlist(ctx context.Context, token, kind string, page, limit int) (*trakt.ListPage, error)
	GetFavorites(ctx context.Context, token, kind string, page, limit int) (*trakt.ListPage, error)
	GetRatings(ctx context.Context, token, kind string, page, limit int) (*trakt.ListPage, error)
	GetListItems(ctx context.Context, token, listID, kind string, page, limit int) (*trakt.ListPage, error)
}

// source is one catalog resolution strategy. Every source exposes the same
// capability pair; the builder dispatches on CatalogConfig.Source.
type source interface {
	manifestCatalogs(ctx context.Context, b *Builder, cfg *CatalogConfig) ([]ManifestCatalog, []string, error)
	catalogPage(ctx context.Context, b *Builder, cfg *CatalogConfig, req CatalogRequest) (*CatalogPage, error)
}

// Options holds the presentation knobs for manifests.
type Options struct {
	// Prefix brands catalog types and ids, e.g. "ReelCove".
	Prefix       string
	ConfigureURL string
	Version      string
}

// Builder resolves catalog configurations against their upstream source and
// produces manifests and enriched catalog pages.
type Builder struct {
	discovery DiscoveryProvider
	lists     ListProvider
	creds     CredentialsResolver
	opts      Options
	sources   map[Source]source
	logger    zerolog.Logger
}

// NewBuilder creates a catalog builder.
func NewBuilder(discovery DiscoveryProvider, lists ListProvider, creds CredentialsResolver, opts Options, logger zerolog.Logger) *Builder {
	if opts.Prefix == "" {
		opts.Prefix = "ReelCove"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	return &Builder{
		discovery: discovery,
		lists:     lists,
		creds:     creds,
		opts:      opts,
		sources: map[Source]source{
			SourceDiscover:  discoverSource{},
			SourceTMDBList:  tmdbListSource{},
			SourceTraktList: traktListSource{},
		},
		logger: logger.With().Str("component", "addon").Logger(),
	}
}

// BuildManifest produces the addon descriptor for a catalog configuration.
func (b *Builder) BuildManifest(ctx context.Context, cfg *CatalogConfig) (*Manifest, error) {
	src, ok := b.sources[cfg.Source]
	if !ok {
		return nil, ErrUnknownSource
	}

	catalogs, types, err := src.manifestCatalogs(ctx, b, cfg)
	if err != nil {
		return nil, err
	}

	slug := slugify(cfg.Name)
	return &Manifest{
		ID:        "com." + strings.ToLower(b.opts.Prefix) + "." + slug,
		Version:   b.opts.Version,
		Name:      b.opts.Prefix + "-" + cfg.Name,
		Resources: []string{"catalog"},
		Types:     types,
		Catalogs:  catalogs,
		BehaviorHints: BehaviorHints{
			Configurable:     true,
			ConfigurationURL: b.opts.ConfigureURL,
		},
	}, nil
}

// BuildCatalog produces one enriched catalog page for a configuration.
func (b *Builder) BuildCatalog(ctx context.Context, cfg *CatalogConfig, req CatalogRequest) (*CatalogPage, error) {
	src, ok := b.sources[cfg.Source]
	if !ok {
		return nil, ErrUnknownSource
	}
	return src.catalogPage(ctx, b, cfg, req)
}

// pageForSkip translates a client item offset to an upstream page number.
// The translation is page-aligned: unaligned skips land on the page of the
// nearest lower aligned offset.
func pageForSkip(skip int) int {
	if skip < 0 {
		skip = 0
	}
	return skip/pageSize + 1
}

// slugify derives a stable, URL-safe identifier from a display name.
func slugify(name string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

// emptyPage is the graceful short-circuit result: metas is present but
// empty, never null.
func emptyPage() *CatalogPage {
	return &CatalogPage{Metas: []Meta{}}
}
