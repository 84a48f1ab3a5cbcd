// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// OSRM queries an OSRM-compatible routing service
type OSRM struct {
	baseURL string
	profile string
	client  *http.Client
}

// NewOSRM returns a client for baseURL (for example
// "https://router.project-osrm.org") using the given profile ("foot").
func NewOSRM(baseURL, profile string, client *http.Client) *OSRM {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OSRM{
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
		client:  client,
	}
}

func (o *OSRM) Name() string {
	return "osrm"
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (o *OSRM) Route(ctx context.Context, from, to orb.Point) (Result, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson",
		o.baseURL, o.profile, from.Lon(), from.Lat(), to.Lon(), to.Lat())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build osrm request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("osrm request failed: %w", err)
	}
	defer resp.Body.Close()

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("failed to decode osrm response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Code != "Ok" {
		return Result{}, fmt.Errorf("%w: osrm %s %s", ErrNoRoute, body.Code, body.Message)
	}
	if len(body.Routes) == 0 {
		return Result{}, ErrNoRoute
	}

	route := body.Routes[0]
	path := make([]orb.Point, len(route.Geometry.Coordinates))
	for i, c := range route.Geometry.Coordinates {
		path[i] = orb.Point{c[0], c[1]}
	}

	return Result{
		DistanceMeters:  route.Distance,
		DurationSeconds: route.Duration,
		Path:            path,
		Router:          o.Name(),
	}, nil
}
