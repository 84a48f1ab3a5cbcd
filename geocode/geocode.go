// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/danielhkuo/smartecoq/models"
)

const userAgent = "smartecoq/1.0 (event navigator)"

var (
	ErrNotFound  = errors.New("place not found")
	ErrPrivateIP = errors.New("address has no public location")
	ErrUpstream  = errors.New("location service unavailable")
)

// Geocoder resolves free-text places through a Nominatim-compatible API.
// Hits are cached for a day; Nominatim's usage policy forbids repeated
// identical queries.
type Geocoder struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewGeocoder(baseURL string, client *http.Client) *Geocoder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Geocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		cache:   cache.New(24*time.Hour, time.Hour),
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the best match for query
func (g *Geocoder) Search(ctx context.Context, query string) (models.Location, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return models.Location{}, ErrNotFound
	}
	if cached, found := g.cache.Get(key); found {
		return cached.(models.Location), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	var places []nominatimPlace
	if err := getJSON(ctx, g.client, g.baseURL+"/search?"+params.Encode(), &places); err != nil {
		return models.Location{}, err
	}
	if len(places) == 0 {
		return models.Location{}, fmt.Errorf("%w: %s", ErrNotFound, query)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return models.Location{}, fmt.Errorf("%w: bad coordinates for %s", ErrUpstream, query)
	}

	loc := models.Location{
		Lat:    lat,
		Lon:    lon,
		Source: "geocoder",
		Label:  places[0].DisplayName,
	}
	g.cache.Set(key, loc, cache.DefaultExpiration)
	return loc, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
