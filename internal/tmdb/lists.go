package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/reelcove/reelcove/internal/cache"
)

// GetAccountList fetches one page of a built-in account list (watchlist,
// favorites or rated titles) for the given kind. Account data is volatile,
// so these pages are deliberately not cached.
func (c *Client) GetAccountList(ctx context.Context, listKind ListKind, kind string, accountID int, sessionID string, page int) (*Page, error) {
	segment := map[ListKind]string{
		ListWatchlist: "watchlist",
		ListFavorites: "favorite",
		ListRated:     "rated",
	}[listKind]
	if segment == "" {
		return nil, fmt.Errorf("%w: unknown list kind %q", ErrAPIError, listKind)
	}

	kindSegment := "movies"
	if kind == KindTV {
		kindSegment = "tv"
	}

	params := url.Values{}
	params.Set("session_id", sessionID)
	params.Set("page", strconv.Itoa(page))

	var result Page
	path := fmt.Sprintf("/account/%d/%s/%s", accountID, segment, kindSegment)
	if err := c.doRequest(ctx, path, params, &result); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("listKind", string(listKind)).
		Str("kind", kind).
		Int("page", page).
		Int("results", len(result.Results)).
		Msg("Fetched account list page")

	return &result, nil
}

// GetCustomList fetches one page of a public user-curated list. Custom lists
// are read-heavy at browse time and shared between users, so pages are
// cached with the short TTL.
func (c *Client) GetCustomList(ctx context.Context, listID string, page int) (*CustomList, error) {
	key := fmt.Sprintf("list:%s:%d", listID, page)
	return cache.GetOrSet(ctx, c.store, key, c.shortTTL, func(ctx context.Context) (*CustomList, error) {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))

		var list CustomList
		if err := c.doRequest(ctx, fmt.Sprintf("/list/%s", url.PathEscape(listID)), params, &list); err != nil {
			return nil, err
		}
		return &list, nil
	})
}

// GetAccountCustomLists returns one page of the account's own custom lists.
func (c *Client) GetAccountCustomLists(ctx context.Context, accountID int, sessionID string, page int) ([]AccountList, error) {
	params := url.Values{}
	params.Set("session_id", sessionID)
	params.Set("page", strconv.Itoa(page))

	var resp accountListsResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/account/%d/lists", accountID), params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// CreateRequestToken starts the upstream's session handshake.
func (c *Client) CreateRequestToken(ctx context.Context) (string, error) {
	var resp requestTokenResponse
	if err := c.doRequest(ctx, "/authentication/token/new", nil, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: request token was not granted", ErrAPIError)
	}
	return resp.RequestToken, nil
}

// CreateSession exchanges an approved request token for a session id.
func (c *Client) CreateSession(ctx context.Context, requestToken string) (string, error) {
	var resp sessionResponse
	body := map[string]string{"request_token": requestToken}
	if err := c.doJSON(ctx, http.MethodPost, "/authentication/session/new", body, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: session was not created", ErrAPIError)
	}
	return resp.SessionID, nil
}

// GetAccount returns the account identity behind a session.
func (c *Client) GetAccount(ctx context.Context, sessionID string) (*Account, error) {
	params := url.Values{}
	params.Set("session_id", sessionID)

	var account Account
	if err := c.doRequest(ctx, "/account", params, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteSession invalidates a session id upstream.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	body := map[string]string{"session_id": sessionID}
	return c.doJSON(ctx, http.MethodDelete, "/authentication/session", body, nil)
}

// doJSON performs a request with a JSON body against the API.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result interface{}) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
