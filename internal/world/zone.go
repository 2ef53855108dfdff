// Package world provides the zone map and the navigation graph over it.
// Zones are axis-aligned rectangles on a continuous 2D plane; agents move
// between zone centers along graph paths.
package world

// Point is a position on the map plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// ZoneType classifies what a zone does for the needs of agents inside it.
type ZoneType uint8

const (
	ZoneHome ZoneType = iota
	ZoneWork
	ZoneCafe
	ZonePark
	ZoneRoad
)

// String returns the lowercase zone type name.
func (t ZoneType) String() string {
	switch t {
	case ZoneHome:
		return "home"
	case ZoneWork:
		return "work"
	case ZoneCafe:
		return "cafe"
	case ZonePark:
		return "park"
	case ZoneRoad:
		return "road"
	}
	return "unknown"
}

// Zone is a named rectangular region with a functional type.
// Zones are immutable after construction.
type Zone struct {
	Name  string   `json:"name"`
	Type  ZoneType `json:"type"`
	Rect  Rect     `json:"rect"`
	Color string   `json:"color"` // Display hint for renderers, unused by the simulation
}

// Center returns the zone's center point.
func (z *Zone) Center() Point {
	return z.Rect.Center()
}

// ZoneAt returns the first zone whose rectangle contains p, or nil.
// Overlapping zones are not a supported configuration.
func ZoneAt(zones []*Zone, p Point) *Zone {
	for _, z := range zones {
		if z.Rect.Contains(p) {
			return z
		}
	}
	return nil
}

// FirstOfType returns the first zone of the given type in declaration order,
// or nil if the layout has none.
func FirstOfType(zones []*Zone, t ZoneType) *Zone {
	for _, z := range zones {
		if z.Type == t {
			return z
		}
	}
	return nil
}

// OfType returns all zones of the given type in declaration order.
func OfType(zones []*Zone, t ZoneType) []*Zone {
	var out []*Zone
	for _, z := range zones {
		if z.Type == t {
			out = append(out, z)
		}
	}
	return out
}
