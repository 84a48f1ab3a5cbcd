// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geocode

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/danielhkuo/smartecoq/models"
)

// IPLocator turns a client address into an approximate position using an
// ip-api.com compatible service.
type IPLocator struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewIPLocator(baseURL string, client *http.Client) *IPLocator {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &IPLocator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		cache:   cache.New(time.Hour, 10*time.Minute),
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// Locate returns the position of ip. Private, loopback and malformed
// addresses fail with ErrPrivateIP without a network call.
func (l *IPLocator) Locate(ctx context.Context, ip string) (models.Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() ||
		parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return models.Location{}, ErrPrivateIP
	}

	key := parsed.String()
	if cached, found := l.cache.Get(key); found {
		return cached.(models.Location), nil
	}

	var body ipAPIResponse
	if err := getJSON(ctx, l.client, l.baseURL+"/json/"+key+"?fields=status,message,lat,lon,city", &body); err != nil {
		return models.Location{}, err
	}
	if body.Status != "success" {
		return models.Location{}, fmt.Errorf("%w: %s", ErrNotFound, body.Message)
	}

	loc := models.Location{
		Lat:    body.Lat,
		Lon:    body.Lon,
		Source: "ip",
		Label:  body.City,
	}
	l.cache.Set(key, loc, cache.DefaultExpiration)
	return loc, nil
}
