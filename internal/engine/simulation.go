// Simulation ties together the zone map, the navigation graph, and the agent
// population, and advances them one tick at a time.
package engine

import (
	"fmt"

	"github.com/talgya/lifesim/internal/agents"
	"github.com/talgya/lifesim/internal/world"
)

// Simulation holds the complete world state.
// All mutation happens on the tick goroutine; concurrent readers (the HTTP
// surface) consume snapshots taken on that goroutine.
type Simulation struct {
	Zones      []*world.Zone
	Graph      *world.Graph
	Agents     []*agents.Agent // Stable tick order
	AgentIndex map[string]*agents.Agent

	TickCount uint64
	Events    []Event // Recent events, trimmed to eventCap
	Stats     SimStats
}

const eventCap = 1000

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "death", "goal", "oracle"
}

// SimStats tracks aggregate population statistics.
type SimStats struct {
	Alive     int     `json:"alive"`
	Dead      int     `json:"dead"`
	AvgHealth float64 `json:"avg_health"`
}

// NewSimulation wires zones, graph, and agents into a runnable world.
func NewSimulation(zones []*world.Zone, graph *world.Graph, ag []*agents.Agent) *Simulation {
	index := make(map[string]*agents.Agent, len(ag))
	for _, a := range ag {
		index[a.ID] = a
	}

	sim := &Simulation{
		Zones:      zones,
		Graph:      graph,
		Agents:     ag,
		AgentIndex: index,
	}
	sim.updateStats()
	return sim
}

// ZoneByType returns the first zone of the given type, or nil.
func (s *Simulation) ZoneByType(t world.ZoneType) *world.Zone {
	return world.FirstOfType(s.Zones, t)
}

// Tick advances the world by one step: increments the tick counter and ticks
// every agent in stable order. Deaths during the step are recorded as events.
func (s *Simulation) Tick(tick uint64) {
	s.TickCount = tick

	for _, a := range s.Agents {
		wasAlive := a.Alive
		a.Tick()
		if wasAlive && !a.Alive {
			s.Record(Event{
				Tick:        tick,
				Description: fmt.Sprintf("%s died of %s", a.Name, a.DeathReason),
				Category:    "death",
			})
		}
	}

	s.updateStats()
}

// Record appends an event, trimming the ring when it grows past eventCap.
func (s *Simulation) Record(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > eventCap {
		s.Events = s.Events[len(s.Events)-eventCap:]
	}
}

func (s *Simulation) updateStats() {
	alive := 0
	total := 0.0
	for _, a := range s.Agents {
		if a.Alive {
			alive++
			total += a.Health
		}
	}

	s.Stats.Alive = alive
	s.Stats.Dead = len(s.Agents) - alive
	if alive > 0 {
		s.Stats.AvgHealth = total / float64(alive)
	} else {
		s.Stats.AvgHealth = 0
	}
}
