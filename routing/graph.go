// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package routing

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
)

// MaxSnapMeters is how far a point may be from the nearest walkway node
const MaxSnapMeters = 400

var walkable = map[string]bool{
	"footway":       true,
	"path":          true,
	"pedestrian":    true,
	"steps":         true,
	"corridor":      true,
	"living_street": true,
	"residential":   true,
	"service":       true,
	"track":         true,
	"unclassified":  true,
	"tertiary":      true,
	"secondary":     true,
	"primary":       true,
	"cycleway":      true,
}

type graphEdge struct {
	to     osm.NodeID
	meters float64
}

// Graph routes over the walkways of an OSM extract with A*
type Graph struct {
	speed float64
	nodes map[osm.NodeID]orb.Point
	edges map[osm.NodeID][]graphEdge
}

// LoadGraph reads an OSM XML extract from disk
func LoadGraph(ctx context.Context, path string, speed float64) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open walkways: %w", err)
	}
	defer f.Close()

	g, err := ReadGraph(ctx, f, speed)
	if err != nil {
		return nil, err
	}
	slog.Info("walkway graph loaded", "path", path, "nodes", len(g.edges))
	return g, nil
}

// ReadGraph builds the walkway graph from OSM XML. Only ways tagged with a
// walkable highway are kept, both directions, unless foot=no.
func ReadGraph(ctx context.Context, r io.Reader, speed float64) (*Graph, error) {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	positions := make(map[osm.NodeID]orb.Point)
	var ways []*osm.Way

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			positions[o.ID] = orb.Point{o.Lon, o.Lat}
		case *osm.Way:
			if !walkable[o.Tags.Find("highway")] || o.Tags.Find("foot") == "no" {
				continue
			}
			ways = append(ways, o)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan walkways: %w", err)
	}

	g := &Graph{
		speed: speed,
		nodes: make(map[osm.NodeID]orb.Point),
		edges: make(map[osm.NodeID][]graphEdge),
	}
	for _, w := range ways {
		for i := 1; i < len(w.Nodes); i++ {
			a, b := w.Nodes[i-1].ID, w.Nodes[i].ID
			pa, okA := positions[a]
			pb, okB := positions[b]
			if !okA || !okB || a == b {
				continue
			}
			d := geo.DistanceHaversine(pa, pb)
			g.nodes[a] = pa
			g.nodes[b] = pb
			g.edges[a] = append(g.edges[a], graphEdge{to: b, meters: d})
			g.edges[b] = append(g.edges[b], graphEdge{to: a, meters: d})
		}
	}

	if len(g.nodes) == 0 {
		return nil, fmt.Errorf("walkways contain no walkable ways")
	}
	return g, nil
}

func (g *Graph) Name() string {
	return "graph"
}

// Route snaps both ends to the nearest walkway node and walks the shortest
// path between them.
func (g *Graph) Route(ctx context.Context, from, to orb.Point) (Result, error) {
	start, startGap := g.nearest(from)
	end, endGap := g.nearest(to)
	if startGap > MaxSnapMeters || endGap > MaxSnapMeters {
		return Result{}, ErrUnreachable
	}

	nodes, meters, err := g.astar(ctx, start, end)
	if err != nil {
		return Result{}, err
	}

	path := make([]orb.Point, 0, len(nodes)+2)
	path = append(path, from)
	for _, id := range nodes {
		path = append(path, g.nodes[id])
	}
	path = append(path, to)

	total := startGap + meters + endGap
	return Result{
		DistanceMeters:  total,
		DurationSeconds: total / g.speed,
		Path:            path,
		Router:          g.Name(),
	}, nil
}

func (g *Graph) nearest(p orb.Point) (osm.NodeID, float64) {
	var best osm.NodeID
	bestDist := math.Inf(1)
	for id, q := range g.nodes {
		d := geo.DistanceHaversine(p, q)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best, bestDist
}

type openItem struct {
	node  osm.NodeID
	f     float64
	index int
}

type openSet []*openItem

func (s openSet) Len() int           { return len(s) }
func (s openSet) Less(i, j int) bool { return s[i].f < s[j].f }
func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}

func (s *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*s)
	*s = append(*s, item)
}

func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*s = old[:n-1]
	return item
}

// astar returns the node sequence from start to end and its length in metres
func (g *Graph) astar(ctx context.Context, start, end osm.NodeID) ([]osm.NodeID, float64, error) {
	if start == end {
		return []osm.NodeID{start}, 0, nil
	}

	target := g.nodes[end]
	h := func(id osm.NodeID) float64 {
		return geo.DistanceHaversine(g.nodes[id], target)
	}

	gScore := map[osm.NodeID]float64{start: 0}
	previous := make(map[osm.NodeID]osm.NodeID)
	closed := make(map[osm.NodeID]bool)

	open := &openSet{}
	heap.Push(open, &openItem{node: start, f: h(start)})

	for iterations := 0; open.Len() > 0; iterations++ {
		if iterations%1024 == 0 && ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}

		current := heap.Pop(open).(*openItem).node
		if current == end {
			break
		}
		if closed[current] {
			continue
		}
		closed[current] = true

		for _, e := range g.edges[current] {
			if closed[e.to] {
				continue
			}
			tentative := gScore[current] + e.meters
			if old, ok := gScore[e.to]; ok && tentative >= old {
				continue
			}
			gScore[e.to] = tentative
			previous[e.to] = current
			heap.Push(open, &openItem{node: e.to, f: tentative + h(e.to)})
		}
	}

	meters, ok := gScore[end]
	if !ok {
		return nil, 0, ErrNoRoute
	}

	path := []osm.NodeID{end}
	for n := end; n != start; {
		n = previous[n]
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, meters, nil
}
