package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lifesim/internal/agents"
	"github.com/talgya/lifesim/internal/config"
	"github.com/talgya/lifesim/internal/engine"
	"github.com/talgya/lifesim/internal/llm"
	"github.com/talgya/lifesim/internal/world"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	zones := world.StaticLayout()
	graph := world.NewGraph(zones, cfg.Tuning.GraphDegree)
	ag := agents.Spawn(agents.DefaultRoster(), zones, graph, cfg.Tuning, cfg.Seed)
	require.NotEmpty(t, ag)

	sim := engine.NewSimulation(zones, graph, ag)
	sim.Tick(1)

	s := &Server{
		Sim:    sim,
		Eng:    engine.NewEngine(time.Second / 60),
		Oracle: llm.NewOracle(sim, llm.NewClient(cfg.Oracle), nil),
	}
	s.Publish()
	return s
}

func getJSON(t *testing.T, handler http.HandlerFunc, path string) map[string]any {
	t.Helper()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	out := getJSON(t, s.handleStatus, "/api/v1/status")

	assert.Equal(t, float64(1), out["tick"])
	assert.Equal(t, float64(1), out["speed"])
	assert.Equal(t, false, out["oracle_busy"])

	stats, ok := out["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), stats["alive"])
}

func TestZonesEndpoint(t *testing.T) {
	s := newTestServer(t)
	out := getJSON(t, s.handleZones, "/api/v1/zones")

	zones, ok := out["zones"].([]any)
	require.True(t, ok)
	assert.Len(t, zones, len(s.Sim.Zones))

	names := make(map[string]bool)
	for _, raw := range zones {
		z := raw.(map[string]any)
		names[z["name"].(string)] = true
		assert.NotEmpty(t, z["type"])
		assert.NotNil(t, z["center"])
	}
	assert.True(t, names["office"])
	assert.True(t, names["cafe"])
}

func TestAgentsEndpoint(t *testing.T) {
	s := newTestServer(t)
	out := getJSON(t, s.handleAgents, "/api/v1/agents")

	list, ok := out["agents"].([]any)
	require.True(t, ok)
	require.Len(t, list, 3)

	first := list[0].(map[string]any)
	assert.Equal(t, "A", first["id"])
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, true, first["alive"])
	assert.NotEmpty(t, first["zone"])

	needs, ok := first["needs"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, needs, "hunger")
	assert.Contains(t, needs, "work")
}

func TestAgentDetail(t *testing.T) {
	s := newTestServer(t)
	out := getJSON(t, s.handleAgentDetail, "/api/v1/agent/B")

	agent, ok := out["agent"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bob", agent["name"])
	assert.Contains(t, out["state_for_ai"], "B: hp=")
}

func TestAgentDetailUnknown(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleAgentDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/Z", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventsLimit(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 10; i++ {
		s.Sim.Record(engine.Event{Tick: uint64(i), Description: fmt.Sprintf("event %d", i), Category: "test"})
	}
	s.Publish()

	out := getJSON(t, s.handleEvents, "/api/v1/events?limit=3")
	events, ok := out["events"].([]any)
	require.True(t, ok)
	require.Len(t, events, 3)

	// The limit keeps the newest entries.
	last := events[2].(map[string]any)
	assert.Equal(t, "event 9", last["description"])
}

func TestRoundsWithoutJournal(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleRounds(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rounds", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 50, parseLimit(httptest.NewRequest(http.MethodGet, "/x", nil), 50))
	assert.Equal(t, 7, parseLimit(httptest.NewRequest(http.MethodGet, "/x?limit=7", nil), 50))
	assert.Equal(t, 50, parseLimit(httptest.NewRequest(http.MethodGet, "/x?limit=0", nil), 50))
	assert.Equal(t, 50, parseLimit(httptest.NewRequest(http.MethodGet, "/x?limit=9999", nil), 50))
	assert.Equal(t, 50, parseLimit(httptest.NewRequest(http.MethodGet, "/x?limit=nope", nil), 50))
}

func TestHandlersAnswer503BeforeFirstPublish(t *testing.T) {
	s := newTestServer(t)
	s.snap.Store(nil)

	for _, h := range []http.HandlerFunc{s.handleStatus, s.handleZones, s.handleAgents, s.handleEvents} {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/x", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
}

func TestHandlersServePublishedSnapshotNotLiveState(t *testing.T) {
	s := newTestServer(t)

	// Mutations after Publish are invisible until the next Publish.
	s.Sim.AgentIndex["A"].Health = 1

	out := getJSON(t, s.handleAgents, "/api/v1/agents")
	first := out["agents"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(100), first["health"])

	s.Publish()
	out = getJSON(t, s.handleAgents, "/api/v1/agents")
	first = out["agents"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(1), first["health"])
}

// Handlers read snapshots while the tick goroutine mutates agents and
// republishes; the two must never touch the same state.
func TestHandlersSafeDuringConcurrentTicks(t *testing.T) {
	s := newTestServer(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for tick := uint64(2); tick < 400; tick++ {
			s.Sim.Tick(tick)
			if tick%90 == 0 {
				s.Sim.AgentIndex["A"].Assign(agents.GoalGoCafe, s.Sim.ZoneByType(world.ZoneCafe))
			}
			s.Publish()
		}
	}()

	for i := 0; i < 200; i++ {
		getJSON(t, s.handleAgents, "/api/v1/agents")
		getJSON(t, s.handleStatus, "/api/v1/status")
		getJSON(t, s.handleEvents, "/api/v1/events")
	}
	<-done

	out := getJSON(t, s.handleStatus, "/api/v1/status")
	assert.Equal(t, float64(399), out["tick"])
}

func TestCORSPreflight(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterBudget(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// A different client has its own budget.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.RemoteAddr = "10.0.0.9:4321"
	assert.Equal(t, "10.0.0.9", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(r))
}

func TestRateLimitedWrapper(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rateLimited(rl, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rounds", nil)
	req.RemoteAddr = "10.0.0.9:4321"

	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
