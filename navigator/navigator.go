// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/queue"
	"github.com/danielhkuo/smartecoq/routing"
	"github.com/danielhkuo/smartecoq/venue"
)

// DefaultWorkers bounds how many stands are routed at once
const DefaultWorkers = 8

var (
	ErrNoDestination = errors.New("destination required (point, place or stand)")
	ErrNoRoute       = errors.New("no stand could be routed")
)

// Stands is the read side of the queue store
type Stands interface {
	ListStands(ctx context.Context, kind string) ([]models.Stand, error)
	GetStand(ctx context.Context, id string) (models.Stand, error)
}

// Places resolves free-text destinations
type Places interface {
	Search(ctx context.Context, query string) (models.Location, error)
}

// IPLocator resolves a client address to a position
type IPLocator interface {
	Locate(ctx context.Context, ip string) (models.Location, error)
}

// Navigator plans walking routes over the venue, taking the queue at the
// destination into account.
type Navigator struct {
	venue   *venue.Venue
	router  routing.Router
	stands  Stands
	places  Places
	ips     IPLocator
	workers int
	now     func() time.Time
}

// New builds a navigator. places and ips may be nil; the corresponding
// lookups are then skipped.
func New(v *venue.Venue, router routing.Router, stands Stands, places Places, ips IPLocator) *Navigator {
	return &Navigator{
		venue:   v,
		router:  router,
		stands:  stands,
		places:  places,
		ips:     ips,
		workers: DefaultWorkers,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for queue projection
func (n *Navigator) SetClock(now func() time.Time) {
	n.now = now
}

// Origin resolves where the visitor is: an explicit point, then the client
// address, then the venue entrance.
func (n *Navigator) Origin(ctx context.Context, explicit *models.Point, clientIP string) models.Location {
	if explicit != nil {
		return models.Location{Lat: explicit.Lat, Lon: explicit.Lon, Source: "request"}
	}

	if n.ips != nil && clientIP != "" {
		loc, err := n.ips.Locate(ctx, clientIP)
		if err == nil {
			return loc
		}
		slog.Debug("ip location unavailable", "error", err)
	}

	p := n.venue.Origin()
	return models.Location{Lat: p.Lat, Lon: p.Lon, Source: "default", Label: n.venue.Name}
}

// Route walks from the resolved origin to a point, a stand or a place
func (n *Navigator) Route(ctx context.Context, req models.RouteRequest, clientIP string) (models.Route, error) {
	from := n.Origin(ctx, req.Origin, clientIP)

	to, err := n.destination(ctx, req)
	if err != nil {
		return models.Route{}, err
	}

	res, err := n.router.Route(ctx, toPoint(from), toPoint(to))
	if err != nil {
		return models.Route{}, fmt.Errorf("%w: %v", routing.ErrNoRoute, err)
	}

	return models.Route{
		From:            from,
		To:              to,
		DistanceMeters:  res.DistanceMeters,
		DurationSeconds: res.DurationSeconds,
		Polyline:        res.Polyline(),
		Router:          res.Router,
	}, nil
}

func (n *Navigator) destination(ctx context.Context, req models.RouteRequest) (models.Location, error) {
	switch {
	case req.Destination != nil:
		return models.Location{Lat: req.Destination.Lat, Lon: req.Destination.Lon, Source: "request"}, nil
	case req.StandID != "":
		st, err := n.stands.GetStand(ctx, req.StandID)
		if err != nil {
			return models.Location{}, err
		}
		return models.Location{Lat: st.Lat, Lon: st.Lon, Source: "stand", Label: st.Name}, nil
	case req.Place != "":
		if n.places == nil {
			return models.Location{}, ErrNoDestination
		}
		return n.places.Search(ctx, req.Place)
	}
	return models.Location{}, ErrNoDestination
}

// Plan ranks every stand of a kind by time to service: walking time plus the
// queue wait projected to the moment of arrival. Stands that cannot be
// routed are listed in Skipped; the plan fails only if none can.
func (n *Navigator) Plan(ctx context.Context, req models.PlanRequest, clientIP string) (models.Plan, error) {
	origin := n.Origin(ctx, req.Origin, clientIP)

	stands, err := n.stands.ListStands(ctx, req.Kind)
	if err != nil {
		return models.Plan{}, err
	}

	plan := models.Plan{
		Origin:     origin,
		Kind:       req.Kind,
		Candidates: []models.PlanCandidate{},
	}
	if len(stands) == 0 {
		return plan, nil
	}

	now := n.now().UTC()
	from := toPoint(origin)

	var mu sync.Mutex
	var failures []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for _, st := range stands {
		g.Go(func() error {
			res, err := n.router.Route(gctx, from, orb.Point{st.Lon, st.Lat})
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Warn("stand skipped in plan", "stand_id", st.ID, "error", err)
				mu.Lock()
				plan.Skipped = append(plan.Skipped, st.ID)
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}

			c := candidate(st, res, now)
			mu.Lock()
			plan.Candidates = append(plan.Candidates, c)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Plan{}, err
	}

	if len(plan.Candidates) == 0 {
		return models.Plan{}, fmt.Errorf("%w: %w", ErrNoRoute, errors.Join(failures...))
	}

	sort.Strings(plan.Skipped)
	sortCandidates(plan.Candidates)
	if req.Limit > 0 && len(plan.Candidates) > req.Limit {
		plan.Candidates = plan.Candidates[:req.Limit]
	}
	return plan, nil
}

func candidate(st models.Stand, res routing.Result, now time.Time) models.PlanCandidate {
	travel := time.Duration(res.DurationSeconds * float64(time.Second))
	wait := queue.LineOf(st).WaitAt(now, now.Add(travel)).Seconds()

	st.WaitSeconds = queue.LineOf(st).Wait(now).Seconds()
	return models.PlanCandidate{
		Stand:                st,
		DistanceMeters:       res.DistanceMeters,
		TravelSeconds:        res.DurationSeconds,
		WaitSeconds:          wait,
		TimeToServiceSeconds: res.DurationSeconds + wait,
		Polyline:             res.Polyline(),
		Router:               res.Router,
	}
}

func sortCandidates(cs []models.PlanCandidate) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.TimeToServiceSeconds != b.TimeToServiceSeconds {
			return a.TimeToServiceSeconds < b.TimeToServiceSeconds
		}
		if a.TravelSeconds != b.TravelSeconds {
			return a.TravelSeconds < b.TravelSeconds
		}
		return a.Stand.ID < b.Stand.ID
	})
}

// Datasets lists the POI datasets of the venue
func (n *Navigator) Datasets() []string {
	return n.venue.DatasetNames()
}

// POIs returns the points of a dataset filtered by amenity
func (n *Navigator) POIs(dataset string, amenities []string) (models.POIResponse, error) {
	return n.venue.POIs(dataset, amenities)
}

func toPoint(l models.Location) orb.Point {
	return orb.Point{l.Lon, l.Lat}
}
