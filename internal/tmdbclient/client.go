// Package tmdbclient is a thin typed facade over TMDB's search/details
// endpoints, cache-first and guarded by the rate-limit runtime.
package tmdbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/anivault/anivault/internal/apperr"
	"github.com/anivault/anivault/internal/cache"
	"github.com/anivault/anivault/internal/normalize"
	"github.com/anivault/anivault/internal/platform/httpx"
	"github.com/anivault/anivault/internal/ratelimit"
)

const (
	ttlSearch  = 24 * time.Hour
	ttlDetails = 14 * 24 * time.Hour
)

// ClientError is a non-429 4xx response from TMDB. It does not disturb the
// rate-limit FSM.
type ClientError struct {
	Status int
	Body   string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("tmdb: client error %d: %s", e.Status, e.Body)
}

// Client is the TMDB facade.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Cache   *cache.Store
	Runtime *ratelimit.Runtime
}

// New builds a Client with a hardened HTTP transport.
func New(baseURL, apiKey string, cacheStore *cache.Store, runtime *ratelimit.Runtime) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    httpx.NewClient(15 * time.Second),
		Cache:   cacheStore,
		Runtime: runtime,
	}
}

// SearchTV searches TV results for query, optionally scoped to a year.
func (c *Client) SearchTV(ctx context.Context, query string, year int, language string) (json.RawMessage, error) {
	return c.searchCategory(ctx, "tv", "/search/tv", query, year, language)
}

// SearchMovie searches movie results for query, optionally scoped to a year.
func (c *Client) SearchMovie(ctx context.Context, query string, year int, language string) (json.RawMessage, error) {
	return c.searchCategory(ctx, "movie", "/search/movie", query, year, language)
}

func (c *Client) searchCategory(ctx context.Context, mediaKind, path, query string, year int, language string) (json.RawMessage, error) {
	params := map[string]string{"language": language}
	if year > 0 {
		params["year"] = fmt.Sprintf("%d", year)
	}

	canonical, hash := normalize.CacheKey("search", mediaKind, query, params)
	if payload, ok, err := c.cacheGet(ctx, canonical, "search"); err != nil {
		return nil, err
	} else if ok {
		return payload, nil
	}

	q := url.Values{"query": {query}, "language": {language}}
	if year > 0 {
		q.Set("year", fmt.Sprintf("%d", year))
	}

	payload, err := c.doGet(ctx, path, q)
	if err != nil {
		return nil, err
	}

	if err := c.cachePut(ctx, canonical, hash, "search", mediaKind, payload, ttlSearch); err != nil {
		return nil, err
	}
	return payload, nil
}

// Details fetches a tv or movie record by id.
func (c *Client) Details(ctx context.Context, kind string, id int) (json.RawMessage, error) {
	path := fmt.Sprintf("/%s/%d", kind, id)
	return c.cachedGet(ctx, "details", kind, path, fmt.Sprintf("%d", id), nil)
}

// Season fetches one season's metadata.
func (c *Client) Season(ctx context.Context, tvID, seasonNo int) (json.RawMessage, error) {
	path := fmt.Sprintf("/tv/%d/season/%d", tvID, seasonNo)
	query := fmt.Sprintf("%d/%d", tvID, seasonNo)
	return c.cachedGet(ctx, "details", "tv_season", path, query, nil)
}

// Episode fetches one episode's metadata.
func (c *Client) Episode(ctx context.Context, tvID, seasonNo, episodeNo int) (json.RawMessage, error) {
	path := fmt.Sprintf("/tv/%d/season/%d/episode/%d", tvID, seasonNo, episodeNo)
	query := fmt.Sprintf("%d/%d/%d", tvID, seasonNo, episodeNo)
	return c.cachedGet(ctx, "details", "tv_episode", path, query, nil)
}

func (c *Client) cachedGet(ctx context.Context, category, mediaKind, path, query string, params map[string]string) (json.RawMessage, error) {
	canonical, hash := normalize.CacheKey(category, mediaKind, query, params)
	if payload, ok, err := c.cacheGet(ctx, canonical, category); err != nil {
		return nil, err
	} else if ok {
		return payload, nil
	}

	payload, err := c.doGet(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	if err := c.cachePut(ctx, canonical, hash, category, mediaKind, payload, ttlDetails); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) cacheGet(ctx context.Context, canonical, category string) (json.RawMessage, bool, error) {
	return c.Cache.Get(ctx, canonical, category)
}

func (c *Client) cachePut(ctx context.Context, canonical, hash, category, subcategory string, payload json.RawMessage, ttl time.Duration) error {
	return c.Cache.Put(ctx, canonical, hash, category, subcategory, payload, ttl)
}

// doGet runs one request through the rate-limit runtime's full lifecycle.
func (c *Client) doGet(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	lease, err := c.Runtime.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	u := c.BaseURL + path
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.APIKey)
	u += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "build tmdb request")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Runtime.RecordResponse(0, true, "")
		return nil, apperr.Wrap(apperr.KindUpstreamRetryable, err, "tmdb request failed")
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		c.Runtime.RecordResponse(resp.StatusCode, true, resp.Header.Get("Retry-After"))
		return nil, apperr.Wrap(apperr.KindUpstreamRetryable, readErr, "read tmdb response body")
	}

	c.Runtime.RecordResponse(resp.StatusCode, false, resp.Header.Get("Retry-After"))

	switch {
	case resp.StatusCode == 429:
		return nil, apperr.New(apperr.KindUpstreamRetryable, "tmdb rate limited")
	case resp.StatusCode >= 500:
		return nil, apperr.New(apperr.KindUpstreamRetryable, "tmdb server error").WithField("status", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &ClientError{Status: resp.StatusCode, Body: string(body)}
	}

	return json.RawMessage(body), nil
}
