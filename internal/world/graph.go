package world

import (
	"math"
	"sort"
)

// Graph is a sparse navigation graph over zone centers.
// Each zone links to its nearest neighbors by center distance, and links are
// made symmetric, which keeps the graph connected without explicit road
// modeling. Built once from the zone set; immutable afterwards.
type Graph struct {
	pos map[string]Point
	adj map[string][]string
}

// NewGraph builds the adjacency structure, linking each zone to its `degree`
// geometrically nearest neighbors.
func NewGraph(zones []*Zone, degree int) *Graph {
	g := &Graph{
		pos: make(map[string]Point, len(zones)),
		adj: make(map[string][]string, len(zones)),
	}

	names := make([]string, 0, len(zones))
	for _, z := range zones {
		g.pos[z.Name] = z.Center()
		g.adj[z.Name] = nil
		names = append(names, z.Name)
	}

	for _, a := range names {
		type cand struct {
			name string
			dist float64
		}
		cands := make([]cand, 0, len(names)-1)
		for _, b := range names {
			if a == b {
				continue
			}
			pa, pb := g.pos[a], g.pos[b]
			cands = append(cands, cand{b, math.Hypot(pa.X-pb.X, pa.Y-pb.Y)})
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].dist != cands[j].dist {
				return cands[i].dist < cands[j].dist
			}
			return cands[i].name < cands[j].name
		})

		n := degree
		if n > len(cands) {
			n = len(cands)
		}
		for _, c := range cands[:n] {
			g.link(a, c.name)
			g.link(c.name, a)
		}
	}

	return g
}

func (g *Graph) link(from, to string) {
	for _, n := range g.adj[from] {
		if n == to {
			return
		}
	}
	g.adj[from] = append(g.adj[from], to)
}

// Neighbors returns the adjacency list for a zone name.
func (g *Graph) Neighbors(name string) []string {
	return g.adj[name]
}

// Center returns the recorded center for a zone name.
func (g *Graph) Center(name string) (Point, bool) {
	p, ok := g.pos[name]
	return p, ok
}

// Find returns an ordered sequence of waypoints from zone start to zone end.
// The search is breadth-first over zone names, so path quality is hop count,
// not distance. start == end yields a single-point path. If no route exists
// the result degrades to a direct two-point path rather than failing.
func (g *Graph) Find(start, end string) []Point {
	if start == end {
		return []Point{g.pos[start]}
	}

	seen := map[string]bool{start: true}
	queue := [][]string{{start}}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		last := path[len(path)-1]
		if last == end {
			pts := make([]Point, len(path))
			for i, n := range path {
				pts[i] = g.pos[n]
			}
			return pts
		}

		for _, nb := range g.adj[last] {
			if seen[nb] {
				continue
			}
			seen[nb] = true
			next := make([]string, len(path), len(path)+1)
			copy(next, path)
			queue = append(queue, append(next, nb))
		}
	}

	return []Point{g.pos[start], g.pos[end]}
}
