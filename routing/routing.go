// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package routing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

var (
	ErrNoRoute     = errors.New("no route found")
	ErrNoRouters   = errors.New("no routers configured")
	ErrUnreachable = errors.New("point is too far from the walkway network")
)

// Result is a walking route between two points. Path is in orb order (lon, lat).
type Result struct {
	DistanceMeters  float64
	DurationSeconds float64
	Path            []orb.Point
	Router          string
}

// Polyline encodes the path in Google polyline format (lat, lon, 1e-5)
func (r Result) Polyline() string {
	if len(r.Path) == 0 {
		return ""
	}
	coords := make([][]float64, len(r.Path))
	for i, p := range r.Path {
		coords[i] = []float64{p.Lat(), p.Lon()}
	}
	return string(polyline.EncodeCoords(coords))
}

// Router computes walking routes
type Router interface {
	Name() string
	Route(ctx context.Context, from, to orb.Point) (Result, error)
}

// Fallback tries each router in order and returns the first success
type Fallback struct {
	routers []Router
}

func NewFallback(routers ...Router) *Fallback {
	return &Fallback{routers: routers}
}

func (f *Fallback) Name() string {
	return "fallback"
}

func (f *Fallback) Route(ctx context.Context, from, to orb.Point) (Result, error) {
	if len(f.routers) == 0 {
		return Result{}, ErrNoRouters
	}

	var errs []error
	for _, r := range f.routers {
		res, err := r.Route(ctx, from, to)
		if err == nil {
			if res.Router == "" {
				res.Router = r.Name()
			}
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		slog.Warn("router failed, trying next", "router", r.Name(), "error", err)
		errs = append(errs, err)
	}
	return Result{}, errors.Join(errs...)
}
