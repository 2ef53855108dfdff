// Zone layout construction: a fixed reference layout plus a noise-driven
// procedural generator for larger maps.
package world

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Zone display colors, one per type.
const (
	colorHome = "#282d4b"
	colorWork = "#413228"
	colorCafe = "#4b372d"
	colorPark = "#23412d"
	colorRoad = "#1e1e23"
)

// StaticLayout returns the reference seven-zone town: three homes on the west
// side, an office, a cafe, a park, and a vertical road strip between them.
func StaticLayout() []*Zone {
	return []*Zone{
		{Name: "home_a", Type: ZoneHome, Rect: Rect{X: 50, Y: 70, W: 130, H: 130}, Color: colorHome},
		{Name: "home_b", Type: ZoneHome, Rect: Rect{X: 50, Y: 260, W: 130, H: 130}, Color: colorHome},
		{Name: "home_c", Type: ZoneHome, Rect: Rect{X: 50, Y: 450, W: 130, H: 130}, Color: colorHome},
		{Name: "office", Type: ZoneWork, Rect: Rect{X: 700, Y: 140, W: 200, H: 180}, Color: colorWork},
		{Name: "cafe", Type: ZoneCafe, Rect: Rect{X: 400, Y: 70, W: 170, H: 150}, Color: colorCafe},
		{Name: "park", Type: ZonePark, Rect: Rect{X: 400, Y: 450, W: 260, H: 180}, Color: colorPark},
		{Name: "road", Type: ZoneRoad, Rect: Rect{X: 260, Y: 0, W: 50, H: 700}, Color: colorRoad},
	}
}

// LayoutConfig holds procedural layout parameters.
type LayoutConfig struct {
	Seed   int64
	Homes  int     // Number of home zones (>= 1)
	Width  float64 // Map width in units
	Height float64 // Map height in units
}

// DefaultLayoutConfig returns a layout comparable in scale to StaticLayout.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Seed:   42,
		Homes:  3,
		Width:  1000,
		Height: 700,
	}
}

// GenerateLayout derives a zone layout from a seed. Home zones are stacked
// along the west edge and the functional zones occupy the east half, each
// placement jittered by simplex noise so different seeds produce different
// but stable towns. One zone of every type is always present.
func GenerateLayout(cfg LayoutConfig) []*Zone {
	if cfg.Homes < 1 {
		cfg.Homes = 1
	}
	noise := opensimplex.NewNormalized(cfg.Seed)

	// jitter maps a noise sample to a bounded offset.
	jitter := func(i int, axis float64, span float64) float64 {
		return (noise.Eval2(float64(i)*1.7, axis) - 0.5) * span
	}

	zones := make([]*Zone, 0, cfg.Homes+4)

	// Homes: evenly spaced column, jittered vertically. Letter names run
	// out at 26; numeric names keep every zone name unique after that.
	slot := cfg.Height / float64(cfg.Homes)
	for i := 0; i < cfg.Homes; i++ {
		name := fmt.Sprintf("home_%d", i+1)
		if i < 26 {
			name = fmt.Sprintf("home_%c", 'a'+i)
		}
		y := float64(i)*slot + slot*0.15 + jitter(i, 0, slot*0.2)
		zones = append(zones, &Zone{
			Name:  name,
			Type:  ZoneHome,
			Rect:  Rect{X: 50, Y: y, W: 130, H: 130},
			Color: colorHome,
		})
	}

	east := cfg.Width * 0.4
	zones = append(zones,
		&Zone{
			Name:  "office",
			Type:  ZoneWork,
			Rect:  Rect{X: east + 300 + jitter(1, 1, 60), Y: cfg.Height*0.2 + jitter(2, 1, 60), W: 200, H: 180},
			Color: colorWork,
		},
		&Zone{
			Name:  "cafe",
			Type:  ZoneCafe,
			Rect:  Rect{X: east + jitter(3, 2, 60), Y: 70 + jitter(4, 2, 40), W: 170, H: 150},
			Color: colorCafe,
		},
		&Zone{
			Name:  "park",
			Type:  ZonePark,
			Rect:  Rect{X: east + jitter(5, 3, 60), Y: cfg.Height*0.64 + jitter(6, 3, 40), W: 260, H: 180},
			Color: colorPark,
		},
		&Zone{
			Name:  "road",
			Type:  ZoneRoad,
			Rect:  Rect{X: 260, Y: 0, W: 50, H: cfg.Height},
			Color: colorRoad,
		},
	)

	return zones
}
