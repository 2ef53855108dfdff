package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}

	assert.True(t, r.Contains(Point{X: 50, Y: 40}))
	assert.True(t, r.Contains(Point{X: 10, Y: 20}), "edges are inclusive")
	assert.True(t, r.Contains(Point{X: 110, Y: 70}))
	assert.False(t, r.Contains(Point{X: 9.9, Y: 40}))
	assert.False(t, r.Contains(Point{X: 50, Y: 70.1}))
}

func TestRectCenter(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 100, H: 50}
	assert.Equal(t, Point{X: 50, Y: 25}, r.Center())
}

func TestZoneAt(t *testing.T) {
	zones := StaticLayout()

	homeA := ZoneAt(zones, Point{X: 100, Y: 100})
	require.NotNil(t, homeA)
	assert.Equal(t, "home_a", homeA.Name)

	assert.Nil(t, ZoneAt(zones, Point{X: 999, Y: 999}), "outside every zone")
}

func TestFirstOfTypeReturnsDeclarationOrderMatch(t *testing.T) {
	zones := StaticLayout()

	home := FirstOfType(zones, ZoneHome)
	require.NotNil(t, home)
	assert.Equal(t, "home_a", home.Name, "first match wins")

	assert.Nil(t, FirstOfType(nil, ZoneCafe))
}

func TestOfType(t *testing.T) {
	zones := StaticLayout()
	assert.Len(t, OfType(zones, ZoneHome), 3)
	assert.Len(t, OfType(zones, ZoneWork), 1)
}

func TestZoneTypeString(t *testing.T) {
	assert.Equal(t, "home", ZoneHome.String())
	assert.Equal(t, "road", ZoneRoad.String())
	assert.Equal(t, "unknown", ZoneType(99).String())
}

func TestStaticLayoutHasEveryType(t *testing.T) {
	zones := StaticLayout()
	for _, zt := range []ZoneType{ZoneHome, ZoneWork, ZoneCafe, ZonePark, ZoneRoad} {
		assert.NotNil(t, FirstOfType(zones, zt), "layout missing %s", zt)
	}
}

func TestGenerateLayout(t *testing.T) {
	cfg := DefaultLayoutConfig()
	cfg.Homes = 5

	zones := GenerateLayout(cfg)
	assert.Len(t, OfType(zones, ZoneHome), 5)
	for _, zt := range []ZoneType{ZoneHome, ZoneWork, ZoneCafe, ZonePark, ZoneRoad} {
		assert.NotNil(t, FirstOfType(zones, zt), "generated layout missing %s", zt)
	}

	// Same seed, same town.
	again := GenerateLayout(cfg)
	require.Equal(t, len(zones), len(again))
	for i := range zones {
		assert.Equal(t, zones[i].Rect, again[i].Rect)
	}
}

func TestGenerateLayoutNamesStayUniqueBeyondAlphabet(t *testing.T) {
	cfg := DefaultLayoutConfig()
	cfg.Homes = 30

	zones := GenerateLayout(cfg)
	require.Len(t, OfType(zones, ZoneHome), 30)

	seen := make(map[string]bool, len(zones))
	for _, z := range zones {
		assert.False(t, seen[z.Name], "duplicate zone name %s", z.Name)
		seen[z.Name] = true
	}
	assert.True(t, seen["home_z"])
	assert.True(t, seen["home_27"])
}
