// Package trakt wraps the Trakt API for per-account and custom lists. Auth
// is OAuth bearer tokens resolved per owner by the caller; the client itself
// holds only the application credentials.
package trakt

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelcove/reelcove/internal/cache"
	"github.com/reelcove/reelcove/internal/config"
)

var (
	ErrClientIDMissing = errors.New("trakt client id is not configured")
	ErrTokenMissing    = errors.New("trakt access token is missing")
	ErrNotFound        = errors.New("resource not found")
	ErrAPIError        = errors.New("trakt API error")
	ErrRateLimited     = errors.New("trakt API rate limited")
)

// DefaultPageSize is the page size requested from the API, aligned with the
// client-visible catalog page size.
const DefaultPageSize = 20

// Client is a Trakt API client.
type Client struct {
	httpClient *http.Client
	config     config.TraktConfig
	store      cache.Store
	shortTTL   time.Duration
	logger     zerolog.Logger
}

// NewClient creates a new Trakt client.
func NewClient(cfg config.TraktConfig, store cache.Store, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config:   cfg,
		store:    store,
		shortTTL: 24 * time.Hour,
		logger:   logger.With().Str("component", "trakt").Logger(),
	}
}

// IsConfigured returns true if the application client id is set.
func (c *Client) IsConfigured() bool {
	return c.config.ClientID != ""
}

// kindSegment maps a media kind to the API's plural path segment.
func kindSegment(kind string) string {
	if kind == "show" || kind == "shows" || kind == "series" || kind == "tv" {
		return "shows"
	}
	return "movies"
}

// GetWatchlist returns one page of the account's watchlist for the kind.
func (c *Client) GetWatchlist(ctx context.Context, token, kind string, page, limit int) (*ListPage, error) {
	return c.getListPage(ctx, token, fmt.Sprintf("/sync/watchlist/%s", kindSegment(kind)), page, limit)
}

// GetFavorites returns one page of the account's favorites for the kind.
func (c *Client) GetFavorites(ctx context.Context, token, kind string, page, limit int) (*ListPage, error) {
	return c.getListPage(ctx, token, fmt.Sprintf("/sync/favorites/%s", kindSegment(kind)), page, limit)
}

// GetRatings returns one page of the account's ratings for the kind.
func (c *Client) GetRatings(ctx context.Context, token, kind string, page, limit int) (*ListPage, error) {
	return c.getListPage(ctx, token, fmt.Sprintf("/sync/ratings/%s", kindSegment(kind)), page, limit)
}

// GetListItems returns one page of a custom list, filtered to the kind.
func (c *Client) GetListItems(ctx context.Context, token, listID, kind string, page, limit int) (*ListPage, error) {
	path := fmt.Sprintf("/users/me/lists/%s/items/%s", url.PathEscape(listID), kindSegment(kind))
	return c.getListPage(ctx, token, path, page, limit)
}

// GetUserLists returns all of the account's custom lists. Read-heavy during
// install-time browsing, so it goes through the TTL cache.
func (c *Client) GetUserLists(ctx context.Context, token string) ([]List, error) {
	key := "trakt:lists:" + tokenDigest(token)
	return cache.GetOrSet(ctx, c.store, key, c.shortTTL, func(ctx context.Context) ([]List, error) {
		var lists []List
		if _, err := c.doRequest(ctx, token, "/users/me/lists", nil, &lists); err != nil {
			return nil, err
		}
		return lists, nil
	})
}

// GetProfile returns the authenticated user's profile, cached per token.
func (c *Client) GetProfile(ctx context.Context, token string) (*Profile, error) {
	key := "trakt:profile:" + tokenDigest(token)
	return cache.GetOrSet(ctx, c.store, key, c.shortTTL, func(ctx context.Context) (*Profile, error) {
		var profile Profile
		if _, err := c.doRequest(ctx, token, "/users/me", nil, &profile); err != nil {
			return nil, err
		}
		return &profile, nil
	})
}

// AuthURL returns the authorization URL a user visits to grant access.
func (c *Client) AuthURL(redirectURI string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.config.ClientID)
	params.Set("redirect_uri", redirectURI)
	return "https://trakt.tv/oauth/authorize?" + params.Encode()
}

// ExchangeCode swaps an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if !c.IsConfigured() {
		return nil, ErrClientIDMissing
	}

	body, err := json.Marshal(map[string]string{
		"code":          code,
		"client_id":     c.config.ClientID,
		"client_secret": c.config.ClientSecret,
		"redirect_uri":  redirectURI,
		"grant_type":    "authorization_code",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token exchange returned status %d", ErrAPIError, resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}

// getListPage fetches one page of list items and reads the page count from
// the pagination response headers.
func (c *Client) getListPage(ctx context.Context, token, path string, page, limit int) (*ListPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var items []ListItem
	header, err := c.doRequest(ctx, token, path, params, &items)
	if err != nil {
		return nil, err
	}

	totalPages, _ := strconv.Atoi(header.Get("X-Pagination-Page-Count"))

	c.logger.Debug().
		Str("path", path).
		Int("page", page).
		Int("items", len(items)).
		Msg("Fetched list page")

	return &ListPage{Items: items, Page: page, TotalPages: totalPages}, nil
}

// doRequest performs an authenticated GET against the API and decodes the
// JSON response. The response header is returned for pagination metadata.
func (c *Client) doRequest(ctx context.Context, token, path string, params url.Values, result interface{}) (http.Header, error) {
	if !c.IsConfigured() {
		return nil, ErrClientIDMissing
	}
	if token == "" {
		return nil, ErrTokenMissing
	}

	reqURL := c.config.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", "2")
	req.Header.Set("trakt-api-key", c.config.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Str("path", path).Msg("trakt API error")
		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, ErrNotFound
		case http.StatusTooManyRequests:
			return nil, ErrRateLimited
		default:
			return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.Header, nil
}

// tokenDigest derives a short cache-key component from a bearer token so
// raw tokens never land in the persistent cache.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", sum[:8])
}
