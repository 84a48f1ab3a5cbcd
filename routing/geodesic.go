// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package routing

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Geodesic walks the great circle between the two points. It never fails,
// which makes it the last router in a Fallback chain.
type Geodesic struct {
	speed float64
}

// NewGeodesic returns a geodesic router walking at speed metres per second
func NewGeodesic(speed float64) *Geodesic {
	return &Geodesic{speed: speed}
}

func (g *Geodesic) Name() string {
	return "geodesic"
}

func (g *Geodesic) Route(ctx context.Context, from, to orb.Point) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	dist := geo.DistanceHaversine(from, to)
	return Result{
		DistanceMeters:  dist,
		DurationSeconds: dist / g.speed,
		Path:            []orb.Point{from, to},
		Router:          g.Name(),
	}, nil
}
