package agents

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"

	"github.com/talgya/lifesim/internal/config"
	"github.com/talgya/lifesim/internal/world"
)

// Agent is a needs-driven state machine owning its own position,
// path-following, health, and goal. All mutation happens through Assign and
// Tick, both of which must be called from the simulation's tick goroutine.
type Agent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"` // Display hint, unused by the simulation

	Home *world.Zone `json:"-"` // Fixed at creation

	Pos         world.Point `json:"pos"`
	Zone        *world.Zone `json:"-"` // Recomputed every tick; nil between zones
	Health      float64     `json:"health"`
	Alive       bool        `json:"alive"`
	DeathReason string      `json:"death_reason,omitempty"` // Set once, on death

	Needs   Needs         `json:"needs"`
	Goal    Goal          `json:"-"`
	Target  *world.Zone   `json:"-"`
	Path    []world.Point `json:"path,omitempty"`
	PathIdx int           `json:"path_idx"`
	Wait    int           `json:"wait"` // Ticks spent idle since last goal

	// Thought is written by the oracle layer and read by renderers only.
	Thought string `json:"thought"`

	tuning config.Tuning
	graph  *world.Graph
	zones  []*world.Zone
}

// New creates a living agent at the center of its home zone. Initial needs
// are drawn from fixed ranges using the supplied source, so worlds are
// reproducible under a fixed seed.
func New(id, name, color string, home *world.Zone, graph *world.Graph, zones []*world.Zone, tuning config.Tuning, rng *rand.Rand) *Agent {
	uniform := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	a := &Agent{
		ID:      id,
		Name:    name,
		Color:   color,
		Home:    home,
		Pos:     home.Center(),
		Zone:    home,
		Health:  tuning.MaxHealth,
		Alive:   true,
		Thought: "...",
		tuning:  tuning,
		graph:   graph,
		zones:   zones,
	}
	a.Needs[NeedHunger] = uniform(5.0, 7.0)
	a.Needs[NeedEnergy] = uniform(5.5, 7.5)
	a.Needs[NeedSocial] = uniform(4.5, 7.0)
	a.Needs[NeedWork] = uniform(4.0, 6.0)
	return a
}

// Assign sets a new goal and computes a path to the target. Dead agents
// reject all assignments. An idle goal clears goal, target, and path.
// Assignments that would change nothing (already inside the target zone, or
// the identical goal/target already routed) are ignored.
func (a *Agent) Assign(goal Goal, target *world.Zone) {
	if !a.Alive {
		return
	}

	if goal == GoalIdle {
		a.Goal = GoalIdle
		a.Target = nil
		a.Path = nil
		return
	}

	if a.Zone != nil && target != nil && a.Zone.Name == target.Name {
		return
	}

	if a.Goal == goal && a.Target == target && len(a.Path) > 0 {
		return
	}

	a.Goal = goal
	a.Target = target
	a.Wait = 0

	if target != nil {
		start := a.Home.Name
		if a.Zone != nil {
			start = a.Zone.Name
		}
		a.Path = a.graph.Find(start, target.Name)
		a.PathIdx = 0
		slog.Info("goal assigned", "agent", a.Name, "goal", goal.String(), "target", target.Name)
	}
}

// Tick advances the agent by one simulation step: need decay, zone effect,
// health evaluation, movement, and zone re-detection, in that order.
// Dead agents are inert.
func (a *Agent) Tick() {
	if !a.Alive {
		return
	}

	a.decay()
	a.applyZoneEffect()
	a.checkHealth()
	a.move()
	a.detectZone()

	if a.Goal == GoalIdle {
		a.Wait++
	}
}

func (a *Agent) decay() {
	for i := range a.Needs {
		a.Needs[i] = math.Max(0, a.Needs[i]-a.tuning.NeedDecay)
	}
}

func (a *Agent) applyZoneEffect() {
	if a.Zone == nil {
		return
	}
	for _, e := range zoneEffects[a.Zone.Type] {
		a.Needs[e.need] = math.Min(10, a.Needs[e.need]+e.boost)
	}
}

func (a *Agent) checkHealth() {
	critical := 0
	for _, v := range a.Needs {
		if v < a.tuning.Critical {
			critical++
		}
	}

	if critical > 0 {
		a.Health -= a.tuning.HealthDrain * float64(critical)
	} else {
		a.Health = math.Min(a.tuning.MaxHealth, a.Health+a.tuning.HealthRegen)
	}

	if a.Health <= 0 {
		a.Alive = false
		a.Health = 0
		worst, _ := a.Needs.Lowest()
		a.DeathReason = worst.String()
		a.Path = nil
		slog.Warn("agent died", "agent", a.Name, "reason", a.DeathReason)
	}
}

func (a *Agent) move() {
	if len(a.Path) == 0 || a.PathIdx >= len(a.Path) {
		return
	}

	wp := a.Path[a.PathIdx]
	dx, dy := wp.X-a.Pos.X, wp.Y-a.Pos.Y
	dist := math.Hypot(dx, dy)

	if dist < a.tuning.MoveSpeed {
		a.Pos = wp
		a.PathIdx++
		if a.PathIdx >= len(a.Path) {
			a.Path = nil
			a.Goal = GoalIdle
			a.Wait = 0
		}
		return
	}

	a.Pos.X += dx / dist * a.tuning.MoveSpeed
	a.Pos.Y += dy / dist * a.tuning.MoveSpeed
}

func (a *Agent) detectZone() {
	a.Zone = world.ZoneAt(a.zones, a.Pos)
}

// StateForAI produces the one-line snapshot the decision oracle observes:
// id, health, current zone type, all needs, the weakest need, a status tag,
// and the suggested remedial goal.
func (a *Agent) StateForAI() string {
	worst, worstVal := a.Needs.Lowest()

	status := "OK"
	fix := "any"
	switch {
	case worstVal < a.tuning.Critical:
		status = "DYING"
		fix = RemedyForNeed(worst).String()
	case worstVal < a.tuning.Low:
		status = "LOW"
		fix = RemedyForNeed(worst).String()
	}

	parts := make([]string, 0, NumNeeds)
	for i := 0; i < NumNeeds; i++ {
		parts = append(parts, fmt.Sprintf("%s:%.1f", NeedType(i).String(), a.Needs[i]))
	}

	zone := "?"
	if a.Zone != nil {
		zone = a.Zone.Type.String()
	}

	return fmt.Sprintf("%s: hp=%.0f, zone=%s, needs=[%s], worst=%s:%.1f, status=%s, fix=%s",
		a.ID, a.Health, zone, strings.Join(parts, ", "), worst.String(), worstVal, status, fix)
}
