package agents

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lifesim/internal/world"
)

func TestParseGoal(t *testing.T) {
	tests := []struct {
		in   string
		want Goal
		ok   bool
	}{
		{"go_cafe", GoalGoCafe, true},
		{"  GO_PARK \n", GoalGoPark, true},
		{"Idle", GoalIdle, true},
		{"go_home", GoalGoHome, true},
		{"go_work", GoalGoWork, true},
		{"dance", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseGoal(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestZoneForGoal(t *testing.T) {
	zt, ok := ZoneForGoal(GoalGoCafe)
	require.True(t, ok)
	assert.Equal(t, world.ZoneCafe, zt)

	_, ok = ZoneForGoal(GoalIdle)
	assert.False(t, ok, "idle has no target zone")
}

func TestRemedyForNeed(t *testing.T) {
	assert.Equal(t, GoalGoCafe, RemedyForNeed(NeedHunger))
	assert.Equal(t, GoalGoHome, RemedyForNeed(NeedEnergy))
	assert.Equal(t, GoalGoPark, RemedyForNeed(NeedSocial))
	assert.Equal(t, GoalGoWork, RemedyForNeed(NeedWork))
}

func TestLowestTieBreaksOnDeclarationOrder(t *testing.T) {
	n := Needs{3.0, 3.0, 5.0, 6.0}
	need, val := n.Lowest()
	assert.Equal(t, NeedHunger, need, "first need at the minimum wins")
	assert.Equal(t, 3.0, val)

	n = Needs{5.0, 2.0, 2.0, 2.0}
	need, _ = n.Lowest()
	assert.Equal(t, NeedEnergy, need)
}

func TestNeedsMarshalJSON(t *testing.T) {
	n := Needs{1.5, 2.5, 3.5, 4.5}
	data, err := json.Marshal(n)
	require.NoError(t, err)

	var m map[string]float64
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, map[string]float64{
		"hunger": 1.5,
		"energy": 2.5,
		"social": 3.5,
		"work":   4.5,
	}, m)
}
