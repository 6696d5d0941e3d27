package addon

import (
	"context"
	"fmt"
	"strings"

	"github.com/reelcove/reelcove/internal/tmdb"
	"github.com/reelcove/reelcove/internal/trakt"
)

// discoverSource resolves discovery/search catalogs.
type discoverSource struct{}

func (discoverSource) manifestCatalogs(ctx context.Context, b *Builder, cfg *CatalogConfig) ([]ManifestCatalog, []string, error) {
	kind, err := upstreamKind(cfg.MediaKind)
	if err != nil {
		return nil, nil, err
	}

	languages, err := b.discovery.GetLanguages(ctx)
	if err != nil {
		return nil, nil, err
	}
	genres, err := b.discovery.GetGenres(ctx, kind)
	if err != nil {
		return nil, nil, err
	}

	langNames := make(map[string]string, len(languages))
	for _, l := range languages {
		name := l.EnglishName
		if name == "" {
			name = l.Name
		}
		langNames[l.ISO639_1] = name
	}

	genreOptions := make([]string, len(genres))
	for i, g := range genres {
		genreOptions[i] = g.Name
	}

	extras := []ManifestExtra{
		{Name: "search"},
		{Name: "genre", Options: genreOptions},
		{Name: "skip"},
	}

	catalogType := b.opts.Prefix + "-" + cfg.Name
	slug := slugify(cfg.Name)
	idPrefix := strings.ToLower(b.opts.Prefix) + "-" + slug

	var catalogs []ManifestCatalog
	if len(cfg.Languages) == 0 {
		// No language selection: one unified catalog across all languages.
		catalogs = append(catalogs, ManifestCatalog{
			Type:  catalogType,
			ID:    idPrefix + "-all",
			Name:  cfg.Name,
			Extra: extras,
		})
	} else {
		for _, lang := range cfg.Languages {
			name := langNames[lang]
			if name == "" {
				name = lang
			}
			catalogs = append(catalogs, ManifestCatalog{
				Type:  catalogType,
				ID:    idPrefix + "-" + lang,
				Name:  name,
				Extra: extras,
			})
		}
	}

	return catalogs, []string{catalogType}, nil
}

func (discoverSource) catalogPage(ctx context.Context, b *Builder, cfg *CatalogConfig, req CatalogRequest) (*CatalogPage, error) {
	// Discover catalogs travel under a branded type, so the media kind
	// comes from the stored configuration rather than the request path.
	kind, err := upstreamKind(cfg.MediaKind)
	if err != nil {
		return nil, err
	}

	// The language travels as the catalog id suffix; "all" means unfiltered.
	language := req.CatalogID[strings.LastIndex(req.CatalogID, "-")+1:]
	if language == "all" {
		language = ""
	}

	genreID := 0
	if req.Genre != "" {
		id, ok, err := b.discovery.ResolveGenreID(ctx, kind, req.Genre)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGenre, req.Genre)
		}
		genreID = id
	}

	page, err := b.discovery.Discover(ctx, kind, language, pageForSkip(req.Skip), cfg.Sort, genreID, req.Search, cfg.Filters)
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(page.Results))
	for i, item := range page.Results {
		ids[i] = item.ID
	}

	return b.enrich(ctx, cfg.MediaKind, ids)
}

// tmdbListSource resolves account and custom list catalogs on the
// discovery provider.
type tmdbListSource struct{}

func (tmdbListSource) manifestCatalogs(ctx context.Context, b *Builder, cfg *CatalogConfig) ([]ManifestCatalog, []string, error) {
	return b.listManifestCatalogs(cfg)
}

func (tmdbListSource) catalogPage(ctx context.Context, b *Builder, cfg *CatalogConfig, req CatalogRequest) (*CatalogPage, error) {
	page := pageForSkip(req.Skip)

	if cfg.ListKind != "" {
		// Built-in lists are single-kind; a request for the other kind is
		// answered empty without touching the upstream.
		if cfg.MediaKind != req.Kind {
			return emptyPage(), nil
		}

		creds, err := b.creds.TMDBCredentials(ctx, cfg.Owner)
		if err != nil {
			return nil, err
		}
		if creds == nil {
			b.logger.Debug().Str("owner", cfg.Owner).Msg("No TMDB session, returning empty catalog")
			return emptyPage(), nil
		}

		kind, err := upstreamKind(req.Kind)
		if err != nil {
			return nil, err
		}

		list, err := b.discovery.GetAccountList(ctx, tmdb.ListKind(cfg.ListKind), kind, creds.AccountID, creds.SessionID, page)
		if err != nil {
			return nil, err
		}

		ids := make([]int, len(list.Results))
		for i, item := range list.Results {
			ids[i] = item.ID
		}
		return b.enrich(ctx, req.Kind, ids)
	}

	// Custom lists are public and can mix kinds; keep only items matching
	// the requested kind.
	list, err := b.discovery.GetCustomList(ctx, cfg.ListID, page)
	if err != nil {
		return nil, err
	}

	kind, err := upstreamKind(req.Kind)
	if err != nil {
		return nil, err
	}

	var ids []int
	for _, item := range list.Items {
		if item.MediaType == kind {
			ids = append(ids, item.ID)
		}
	}
	return b.enrich(ctx, req.Kind, ids)
}

// traktListSource resolves catalogs backed by the bearer-token list
// provider.
type traktListSource struct{}

func (traktListSource) manifestCatalogs(ctx context.Context, b *Builder, cfg *CatalogConfig) ([]ManifestCatalog, []string, error) {
	return b.listManifestCatalogs(cfg)
}

func (traktListSource) catalogPage(ctx context.Context, b *Builder, cfg *CatalogConfig, req CatalogRequest) (*CatalogPage, error) {
	if cfg.ListKind != "" && cfg.MediaKind != req.Kind {
		return emptyPage(), nil
	}

	token, err := b.creds.TraktToken(ctx, cfg.Owner)
	if err != nil {
		return nil, err
	}
	if token == "" {
		b.logger.Debug().Str("owner", cfg.Owner).Msg("No Trakt token, returning empty catalog")
		return emptyPage(), nil
	}

	page := pageForSkip(req.Skip)
	kind := string(req.Kind)

	var list *trakt.ListPage
	switch cfg.ListKind {
	case ListWatchlist:
		list, err = b.lists.GetWatchlist(ctx, token, kind, page, pageSize)
	case ListFavorites:
		list, err = b.lists.GetFavorites(ctx, token, kind, page, pageSize)
	case ListRated:
		list, err = b.lists.GetRatings(ctx, token, kind, page, pageSize)
	default:
		list, err = b.lists.GetListItems(ctx, token, cfg.ListID, kind, page, pageSize)
	}
	if err != nil {
		return nil, err
	}

	// Items without a TMDB cross-reference cannot be enriched; drop them.
	ids := make([]int, 0, len(list.Items))
	for _, item := range list.Items {
		if id := item.TMDBID(); id != 0 {
			ids = append(ids, id)
		}
	}
	return b.enrich(ctx, req.Kind, ids)
}

// listManifestCatalogs builds the catalog entries shared by both list
// providers: built-in single-kind lists expose exactly one catalog type,
// custom lists expose movie and series side by side.
func (b *Builder) listManifestCatalogs(cfg *CatalogConfig) ([]ManifestCatalog, []string, error) {
	extras := []ManifestExtra{{Name: "skip"}}
	id := b.listCatalogID(cfg)

	if cfg.ListKind != "" {
		if cfg.MediaKind != KindMovie && cfg.MediaKind != KindSeries {
			return nil, nil, ErrInvalidKind
		}
		kind := string(cfg.MediaKind)
		return []ManifestCatalog{
			{Type: kind, ID: id, Name: cfg.Name, Extra: extras},
		}, []string{kind}, nil
	}

	return []ManifestCatalog{
		{Type: string(KindMovie), ID: id, Name: cfg.Name, Extra: extras},
		{Type: string(KindSeries), ID: id, Name: cfg.Name, Extra: extras},
	}, []string{string(KindMovie), string(KindSeries)}, nil
}

// listCatalogID derives a stable catalog id from the owner and the list
// category or id.
func (b *Builder) listCatalogID(cfg *CatalogConfig) string {
	prefix := strings.ToLower(b.opts.Prefix)
	if cfg.ListKind != "" {
		return fmt.Sprintf("%s-%s-%s", prefix, cfg.Owner, cfg.ListKind)
	}
	return fmt.Sprintf("%s-%s-list-%s", prefix, cfg.Owner, slugify(cfg.ListID))
}
