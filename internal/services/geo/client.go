package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"intent-extractor/internal/cache"

	"github.com/rs/zerolog/log"
)

// Client performs forward geocoding against a Nominatim-compatible search
// endpoint. Lookups are cached in redis when a cache is supplied; a nil cache
// disables caching without changing behavior.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	cache   *cache.RedisCache
}

func NewClient(baseURL, apiKey string, redisCache *cache.RedisCache) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 10 * time.Second},
		cache:   redisCache,
	}
}

// searchResult mirrors one entry of the provider's JSON response. Coordinates
// arrive as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup resolves address to a Location. Returns an error when the provider
// fails or finds no match; callers decide the recovery policy.
func (c *Client) Lookup(ctx context.Context, address string) (*Location, error) {
	key := cache.GeocodeKey(address)
	if data, err := c.cache.Get(ctx, key); err == nil {
		var loc Location
		if err := json.Unmarshal(data, &loc); err == nil {
			return &loc, nil
		}
		// Corrupt entry; fall through to a fresh lookup.
		log.Warn().Str("key", key).Msg("discarding undecodable geocode cache entry")
	}

	loc, err := c.fetch(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, loc, cache.GeocodeTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache geocode result")
	}
	return loc, nil
}

func (c *Client) fetch(ctx context.Context, address string) (*Location, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating geocode request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode returned status %d: %s", resp.StatusCode, body)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("parsing geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, errors.New("no geocode match")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	return &Location{Lat: lat, Lon: lon, DisplayName: results[0].DisplayName}, nil
}
