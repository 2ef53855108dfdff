// Resident spawning builds the initial population from a roster,
// distributing agents across home zones round-robin.
package agents

import (
	"math/rand"

	"github.com/talgya/lifesim/internal/config"
	"github.com/talgya/lifesim/internal/world"
)

// Resident describes one roster entry.
type Resident struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// DefaultRoster returns the reference population.
func DefaultRoster() []Resident {
	return []Resident{
		{ID: "A", Name: "Alice", Color: "#0a84ff"},
		{ID: "B", Name: "Bob", Color: "#30d158"},
		{ID: "C", Name: "Charlie", Color: "#ff9f0a"},
	}
}

// Spawn creates one agent per roster entry. Each agent is homed at a home
// zone in declaration order, wrapping around when residents outnumber homes.
// Returns nil if the layout has no home zone.
func Spawn(roster []Resident, zones []*world.Zone, graph *world.Graph, tuning config.Tuning, seed int64) []*Agent {
	homes := world.OfType(zones, world.ZoneHome)
	if len(homes) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))

	out := make([]*Agent, 0, len(roster))
	for i, r := range roster {
		home := homes[i%len(homes)]
		out = append(out, New(r.ID, r.Name, r.Color, home, graph, zones, tuning, rng))
	}
	return out
}
