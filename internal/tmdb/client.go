// Package tmdb wraps the TMDB v3 API: discover queries, the language/genre
// reference tables and per-account lists. Every read goes through the shared
// TTL cache so identical queries are answered without an upstream call.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelcove/reelcove/internal/cache"
	"github.com/reelcove/reelcove/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrNotFound      = errors.New("resource not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
)

// Default vote-count floors applied when sorting by vote average without an
// explicit floor. Movies get a higher bar than shows: the movie corpus is
// larger and low-sample outliers dominate "best rated" otherwise.
const (
	defaultMovieVoteFloor = 300
	defaultTVVoteFloor    = 100
)

// Client is a TMDB API client backed by the shared TTL cache.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	store      cache.Store
	shortTTL   time.Duration
	longTTL    time.Duration
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, store cache.Store, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config:   cfg,
		store:    store,
		shortTTL: time.Duration(cfg.ShortCacheTTL) * time.Second,
		longTTL:  time.Duration(cfg.LongCacheTTL) * time.Second,
		logger:   logger.With().Str("component", "tmdb").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// GetLanguages returns the language reference table, alphabetized by English
// name for stable UI ordering. Reference data changes rarely, so it is
// cached with the long TTL.
func (c *Client) GetLanguages(ctx context.Context) ([]Language, error) {
	return cache.GetOrSet(ctx, c.store, "languages", c.longTTL, func(ctx context.Context) ([]Language, error) {
		var languages []Language
		if err := c.doRequest(ctx, "/configuration/languages", nil, &languages); err != nil {
			return nil, err
		}
		sort.Slice(languages, func(i, j int) bool {
			return languages[i].EnglishName < languages[j].EnglishName
		})
		return languages, nil
	})
}

// GetGenres returns the genre reference table for the given kind, sorted by
// display name. Cached with the long TTL.
func (c *Client) GetGenres(ctx context.Context, kind string) ([]Genre, error) {
	key := "genres:" + kind
	return cache.GetOrSet(ctx, c.store, key, c.longTTL, func(ctx context.Context) ([]Genre, error) {
		var resp genreListResponse
		if err := c.doRequest(ctx, fmt.Sprintf("/genre/%s/list", kind), nil, &resp); err != nil {
			return nil, err
		}
		genres := resp.Genres
		sort.Slice(genres, func(i, j int) bool {
			return genres[i].Name < genres[j].Name
		})
		return genres, nil
	})
}

// ResolveGenreID maps a display name to the upstream genre id. The match is
// a case-sensitive exact comparison against the cached genre table.
func (c *Client) ResolveGenreID(ctx context.Context, kind, name string) (int, bool, error) {
	genres, err := c.GetGenres(ctx, kind)
	if err != nil {
		return 0, false, err
	}
	for _, g := range genres {
		if g.Name == name {
			return g.ID, true, nil
		}
	}
	return 0, false, nil
}

// Discover runs a discover query for the given kind. An empty language means
// all languages, genreID 0 means no genre filter and an empty search means
// no text filter. Results are cached with the short TTL under a key built
// from every discriminating parameter, so logically identical requests are
// byte-identical cache hits.
func (c *Client) Discover(ctx context.Context, kind, language string, page int, sortBy SortBy, genreID int, search string, filters DiscoverFilters) (*Page, error) {
	nativeSort := nativeSortToken(kind, sortBy)

	voteFloor := filters.MinVoteCount
	if voteFloor == nil && sortBy == SortVoteAverage {
		def := defaultMovieVoteFloor
		if kind == KindTV {
			def = defaultTVVoteFloor
		}
		voteFloor = &def
	}

	key := discoverCacheKey(kind, language, page, nativeSort, genreID, search, filters)

	return cache.GetOrSet(ctx, c.store, key, c.shortTTL, func(ctx context.Context) (*Page, error) {
		params := url.Values{}
		params.Set("sort_by", nativeSort)
		params.Set("page", strconv.Itoa(page))
		params.Set("include_adult", strconv.FormatBool(filters.IncludeAdult))
		if language != "" {
			params.Set("with_original_language", language)
		}
		if voteFloor != nil {
			params.Set("vote_count.gte", strconv.Itoa(*voteFloor))
		}
		if filters.MinVoteAverage != nil {
			params.Set("vote_average.gte", strconv.FormatFloat(*filters.MinVoteAverage, 'f', -1, 64))
		}
		// Year bounds widen to full calendar years.
		if filters.ReleaseDateFrom != nil {
			params.Set(releaseDateParam(kind, "gte"), fmt.Sprintf("%d-01-01", *filters.ReleaseDateFrom))
		}
		if filters.ReleaseDateTo != nil {
			params.Set(releaseDateParam(kind, "lte"), fmt.Sprintf("%d-12-31", *filters.ReleaseDateTo))
		}
		if genreID != 0 {
			params.Set("with_genres", strconv.Itoa(genreID))
		}
		if search != "" {
			params.Set("with_text_query", search)
		}

		var result Page
		if err := c.doRequest(ctx, fmt.Sprintf("/discover/%s", kind), params, &result); err != nil {
			return nil, err
		}

		c.logger.Debug().
			Str("kind", kind).
			Str("language", language).
			Int("page", page).
			Str("sort", nativeSort).
			Int("results", len(result.Results)).
			Msg("Discover query completed")

		return &result, nil
	})
}

// GetMovieDetails fetches the rich movie record with credits and videos
// appended. Cached with the short TTL, keyed by id.
func (c *Client) GetMovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	key := fmt.Sprintf("movie:%d:details", id)
	return cache.GetOrSet(ctx, c.store, key, c.shortTTL, func(ctx context.Context) (*MovieDetails, error) {
		params := url.Values{}
		params.Set("append_to_response", "credits,videos")

		var details MovieDetails
		if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
			return nil, err
		}
		return &details, nil
	})
}

// GetShowDetails fetches the rich tv record with external ids, credits and
// videos appended. Cached with the short TTL, keyed by id.
func (c *Client) GetShowDetails(ctx context.Context, id int) (*ShowDetails, error) {
	key := fmt.Sprintf("tv:%d:details", id)
	return cache.GetOrSet(ctx, c.store, key, c.shortTTL, func(ctx context.Context) (*ShowDetails, error) {
		params := url.Values{}
		params.Set("append_to_response", "external_ids,credits,videos")
		params.Set("language", "en-US")

		var details ShowDetails
		if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), params, &details); err != nil {
			return nil, err
		}
		return &details, nil
	})
}

// GetExternalIDs returns the cross-reference ids for a title.
func (c *Client) GetExternalIDs(ctx context.Context, kind string, id int) (*ExternalIDs, error) {
	key := fmt.Sprintf("%s:%d:external-ids", kind, id)
	return cache.GetOrSet(ctx, c.store, key, c.shortTTL, func(ctx context.Context) (*ExternalIDs, error) {
		var ids ExternalIDs
		if err := c.doRequest(ctx, fmt.Sprintf("/%s/%d/external_ids", kind, id), nil, &ids); err != nil {
			return nil, err
		}
		return &ids, nil
	})
}

// ImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) ImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

// nativeSortToken translates the client-visible sort key to the upstream
// field name; the release-date field differs per kind.
func nativeSortToken(kind string, sortBy SortBy) string {
	if sortBy == SortReleaseDate {
		if kind == KindTV {
			return "first_air_date.desc"
		}
		return "primary_release_date.desc"
	}
	return string(sortBy)
}

func releaseDateParam(kind, bound string) string {
	if kind == KindTV {
		return "first_air_date." + bound
	}
	return "primary_release_date." + bound
}

// discoverCacheKey builds the deterministic cache key for a discover query.
// The filter set is serialized as JSON with a fixed field order, so two
// logically identical queries always share one key.
func discoverCacheKey(kind, language string, page int, nativeSort string, genreID int, search string, filters DiscoverFilters) string {
	lang := language
	if lang == "" {
		lang = "all"
	}
	genre := "none"
	if genreID != 0 {
		genre = strconv.Itoa(genreID)
	}
	text := "none"
	if search != "" {
		text = search
	}
	filterJSON, _ := json.Marshal(filters)
	return fmt.Sprintf("discover:%s:%s:%d:%s:%s:%s:%s", kind, lang, page, nativeSort, genre, text, filterJSON)
}

// doRequest performs an HTTP GET against the API and decodes the JSON
// response. The api_key parameter is appended here.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.config.APIKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Str("path", path).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
