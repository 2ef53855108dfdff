// Package api provides the read-only observation surface for renderers:
// JSON endpoints over world state plus a WebSocket snapshot stream.
// Nothing here mutates the simulation.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/lifesim/internal/agents"
	"github.com/talgya/lifesim/internal/engine"
	"github.com/talgya/lifesim/internal/journal"
	"github.com/talgya/lifesim/internal/llm"
	"github.com/talgya/lifesim/internal/world"
)

const maxStreamConns = 8

// Server serves the world state over HTTP.
//
// Handlers never touch the simulation directly: the tick loop calls Publish
// after each tick, and every endpoint reads the most recently published
// immutable snapshot. Oracle busy/raw carry their own synchronization and
// are read live.
type Server struct {
	Sim    *engine.Simulation
	Eng    *engine.Engine
	Oracle *llm.Oracle
	DB     *journal.DB // May be nil; journal endpoints answer 404
	Port   int

	// BroadcastInterval is the WebSocket snapshot cadence.
	BroadcastInterval time.Duration

	snap        atomic.Pointer[Snapshot]
	streamConns int32
	upgrader    websocket.Upgrader
}

// Snapshot is one immutable capture of the world, built on the tick
// goroutine. Everything in it is a copy; handlers may read it freely.
type Snapshot struct {
	Tick   uint64          `json:"tick"`
	Speed  float64         `json:"speed"`
	Stats  engine.SimStats `json:"stats"`
	Zones  []zoneEntry     `json:"zones"`
	Agents []agentEntry    `json:"agents"`
	Events []engine.Event  `json:"events"`

	states map[string]string // Agent id -> StateForAI line
}

// Publish captures the current world state as a new snapshot. Must be
// called from the tick goroutine, which owns all simulation state.
func (s *Server) Publish() {
	snap := &Snapshot{
		Tick:   s.Sim.TickCount,
		Speed:  s.Eng.Speed,
		Stats:  s.Sim.Stats,
		Zones:  make([]zoneEntry, 0, len(s.Sim.Zones)),
		Agents: make([]agentEntry, 0, len(s.Sim.Agents)),
		Events: s.Sim.Events, // Entries are append-only, never rewritten
		states: make(map[string]string, len(s.Sim.Agents)),
	}

	for _, z := range s.Sim.Zones {
		snap.Zones = append(snap.Zones, snapshotZone(z))
	}
	for _, a := range s.Sim.Agents {
		snap.Agents = append(snap.Agents, snapshotAgent(a))
		snap.states[a.ID] = a.StateForAI()
	}

	s.snap.Store(snap)
}

// current returns the latest snapshot, answering 503 when none has been
// published yet.
func (s *Server) current(w http.ResponseWriter) (*Snapshot, bool) {
	snap := s.snap.Load()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	journalLimiter := NewRateLimiter(60, time.Minute)

	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/zones", s.handleZones)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/rounds", rateLimited(journalLimiter, s.handleRounds))
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows browser renderers on any origin to read the API.
// The surface is read-only, so a permissive policy is acceptable here.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

// agentEntry is the render-facing agent snapshot.
type agentEntry struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Color       string        `json:"color"`
	Pos         world.Point   `json:"pos"`
	Health      float64       `json:"health"`
	Alive       bool          `json:"alive"`
	DeathReason string        `json:"death_reason,omitempty"`
	Goal        string        `json:"goal"`
	Zone        string        `json:"zone,omitempty"`
	Target      string        `json:"target,omitempty"`
	Needs       agents.Needs  `json:"needs"`
	Path        []world.Point `json:"path,omitempty"`
	PathIdx     int           `json:"path_idx"`
	Wait        int           `json:"wait"`
	Thought     string        `json:"thought"`
}

func snapshotAgent(a *agents.Agent) agentEntry {
	e := agentEntry{
		ID:          a.ID,
		Name:        a.Name,
		Color:       a.Color,
		Pos:         a.Pos,
		Health:      a.Health,
		Alive:       a.Alive,
		DeathReason: a.DeathReason,
		Goal:        a.Goal.String(),
		Needs:       a.Needs,
		PathIdx:     a.PathIdx,
		Wait:        a.Wait,
		Thought:     a.Thought,
	}
	if len(a.Path) > 0 {
		e.Path = make([]world.Point, len(a.Path))
		copy(e.Path, a.Path)
	}
	if a.Zone != nil {
		e.Zone = a.Zone.Name
	}
	if a.Target != nil {
		e.Target = a.Target.Name
	}
	return e
}

// zoneEntry is the render-facing zone description.
type zoneEntry struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Rect   world.Rect  `json:"rect"`
	Center world.Point `json:"center"`
	Color  string      `json:"color"`
}

func snapshotZone(z *world.Zone) zoneEntry {
	return zoneEntry{
		Name:   z.Name,
		Type:   z.Type.String(),
		Rect:   z.Rect,
		Center: z.Center(),
		Color:  z.Color,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"tick":        snap.Tick,
		"speed":       snap.Speed,
		"stats":       snap.Stats,
		"oracle_busy": s.Oracle.Busy(),
		"oracle_raw":  s.Oracle.Raw(),
	})
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"zones": snap.Zones})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"agents": snap.Agents})
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/agent/")
	for i := range snap.Agents {
		if snap.Agents[i].ID == id {
			writeJSON(w, map[string]any{
				"agent":        snap.Agents[i],
				"state_for_ai": snap.states[id],
			})
			return
		}
	}
	http.Error(w, "unknown agent", http.StatusNotFound)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}

	limit := parseLimit(r, 50)
	evs := snap.Events
	if len(evs) > limit {
		evs = evs[len(evs)-limit:]
	}
	writeJSON(w, map[string]any{"events": evs})
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	rounds, err := s.DB.RecentRounds(parseLimit(r, 20))
	if err != nil {
		slog.Error("journal query failed", "error", err)
		http.Error(w, "journal query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"rounds": rounds})
}

func parseLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return def
}

// handleStream upgrades to WebSocket and pushes the published snapshot at
// the broadcast interval until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.streamConns) >= maxStreamConns {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	atomic.AddInt32(&s.streamConns, 1)
	slog.Info("stream client connected", "remote", r.RemoteAddr)

	go func() {
		defer func() {
			atomic.AddInt32(&s.streamConns, -1)
			conn.Close()
		}()

		interval := s.BroadcastInterval
		if interval <= 0 {
			interval = 250 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			snap := s.snap.Load()
			if snap == nil {
				continue
			}
			if err := conn.WriteJSON(snap); err != nil {
				slog.Debug("stream client gone", "remote", r.RemoteAddr)
				return
			}
		}
	}()
}
