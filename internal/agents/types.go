// Package agents provides the agent data model: decaying needs, goals, and
// the per-tick state machine that moves agents between zones.
package agents

import (
	"encoding/json"
	"strings"

	"github.com/talgya/lifesim/internal/world"
)

// NeedType enumerates the four decaying needs. Declaration order is the
// defined tie-break order when selecting the lowest need.
type NeedType uint8

const (
	NeedHunger NeedType = iota
	NeedEnergy
	NeedSocial
	NeedWork
)

// NumNeeds is the total number of need types.
const NumNeeds = 4

// String returns the lowercase need name.
func (n NeedType) String() string {
	switch n {
	case NeedHunger:
		return "hunger"
	case NeedEnergy:
		return "energy"
	case NeedSocial:
		return "social"
	case NeedWork:
		return "work"
	}
	return "unknown"
}

// Needs holds the level of each need, indexed by NeedType.
// All values stay within [0, 10].
type Needs [NumNeeds]float64

// Lowest returns the lowest need and its value. Ties resolve to the first
// need in declaration order reaching the minimum.
func (n Needs) Lowest() (NeedType, float64) {
	low := NeedType(0)
	for i := 1; i < NumNeeds; i++ {
		if n[i] < n[low] {
			low = NeedType(i)
		}
	}
	return low, n[low]
}

// MarshalJSON renders needs as an object keyed by need name, which is the
// shape renderers consume.
func (n Needs) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumNeeds)
	for i := 0; i < NumNeeds; i++ {
		m[NeedType(i).String()] = n[i]
	}
	return json.Marshal(m)
}

// Goal is an agent's current intention.
type Goal uint8

const (
	GoalIdle Goal = iota
	GoalGoHome
	GoalGoWork
	GoalGoCafe
	GoalGoPark
)

// String returns the wire name of the goal.
func (g Goal) String() string {
	switch g {
	case GoalIdle:
		return "idle"
	case GoalGoHome:
		return "go_home"
	case GoalGoWork:
		return "go_work"
	case GoalGoCafe:
		return "go_cafe"
	case GoalGoPark:
		return "go_park"
	}
	return "unknown"
}

// ParseGoal normalizes a goal string (trim, lowercase) and maps it to a Goal.
// Unrecognized values report ok=false.
func ParseGoal(s string) (Goal, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "idle":
		return GoalIdle, true
	case "go_home":
		return GoalGoHome, true
	case "go_work":
		return GoalGoWork, true
	case "go_cafe":
		return GoalGoCafe, true
	case "go_park":
		return GoalGoPark, true
	}
	return GoalIdle, false
}

// ZoneForGoal maps a travel goal to the zone type it targets.
// GoalIdle has no target zone.
func ZoneForGoal(g Goal) (world.ZoneType, bool) {
	switch g {
	case GoalGoHome:
		return world.ZoneHome, true
	case GoalGoWork:
		return world.ZoneWork, true
	case GoalGoCafe:
		return world.ZoneCafe, true
	case GoalGoPark:
		return world.ZonePark, true
	}
	return 0, false
}

// RemedyForNeed maps a need to the goal that replenishes it.
func RemedyForNeed(n NeedType) Goal {
	switch n {
	case NeedHunger:
		return GoalGoCafe
	case NeedEnergy:
		return GoalGoHome
	case NeedSocial:
		return GoalGoPark
	case NeedWork:
		return GoalGoWork
	}
	return GoalIdle
}

// zoneEffect describes the per-tick need boost a zone type grants its
// occupants. Needs not listed are unchanged; road zones grant nothing.
type zoneEffect struct {
	need  NeedType
	boost float64
}

var zoneEffects = map[world.ZoneType][]zoneEffect{
	world.ZoneHome: {{NeedEnergy, 0.12}},
	world.ZoneWork: {{NeedWork, 0.15}},
	world.ZoneCafe: {{NeedHunger, 0.18}, {NeedSocial, 0.08}},
	world.ZonePark: {{NeedEnergy, 0.06}, {NeedSocial, 0.10}},
}
