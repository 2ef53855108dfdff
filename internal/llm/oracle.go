package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/talgya/lifesim/internal/agents"
	"github.com/talgya/lifesim/internal/engine"
)

// Assignment is one validated goal extracted from an oracle reply.
// Target resolution needs world state, so it happens at Apply time on the
// tick goroutine, not here.
type Assignment struct {
	AgentID string
	Goal    agents.Goal
}

// RoundRecord captures one decision round for the diagnostic journal.
type RoundRecord struct {
	ID       string
	Tick     uint64
	Status   string // "ok", "transport_error", or "parse_error"
	Prompt   string
	Response string
	Err      string
	Applied  int // Assignments queued for application
}

// RoundRecorder persists completed oracle rounds. May be satisfied by the
// journal package or left nil to disable recording.
type RoundRecorder interface {
	RecordRound(RoundRecord) error
}

// Oracle queries the external decision service and applies validated goals
// to agents. The busy flag is the sole concurrency control: at most one
// request is in flight, and an overlapping Decide is simply skipped.
//
// The network call runs on its own goroutine; everything that touches world
// state (prompt building, goal application) stays on the tick goroutine.
// Parsed assignments cross back over the results channel.
type Oracle struct {
	sim      *engine.Simulation
	client   *Client
	recorder RoundRecorder

	busy    atomic.Bool
	results chan roundResult

	mu  sync.Mutex
	raw string // Last response text, or error text on failure
}

type roundResult struct {
	assignments []Assignment
}

// NewOracle wires an oracle to the world it observes. recorder may be nil.
func NewOracle(sim *engine.Simulation, client *Client, recorder RoundRecorder) *Oracle {
	return &Oracle{
		sim:      sim,
		client:   client,
		recorder: recorder,
		results:  make(chan roundResult, 4),
	}
}

// Busy reports whether a decision request is in flight.
func (o *Oracle) Busy() bool {
	return o.busy.Load()
}

// Raw returns the last raw response text (or error text) for diagnostics.
func (o *Oracle) Raw() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.raw
}

func (o *Oracle) setRaw(s string) {
	o.mu.Lock()
	o.raw = s
	o.mu.Unlock()
}

// Decide starts one decision round. No-op while a round is already in
// flight. The prompt is built synchronously from the current snapshot of
// living agents; the request and parse then run on a spawned goroutine.
// Nothing here blocks the tick loop.
func (o *Oracle) Decide(ctx context.Context, tick uint64) {
	if !o.busy.CompareAndSwap(false, true) {
		return
	}

	var lines, ids []string
	for _, a := range o.sim.Agents {
		if !a.Alive {
			continue
		}
		lines = append(lines, a.StateForAI())
		ids = append(ids, a.ID)
	}

	if len(lines) == 0 {
		o.busy.Store(false)
		return
	}

	prompt := buildPrompt(lines, ids)
	rec := RoundRecord{ID: uuid.NewString(), Tick: tick, Prompt: prompt}

	go func() {
		defer o.busy.Store(false)

		raw, err := o.client.Complete(ctx, prompt)
		if err != nil {
			slog.Error("oracle round failed", "round", rec.ID, "error", err)
			o.setRaw(err.Error())
			rec.Status = "transport_error"
			rec.Err = err.Error()
			o.record(rec)
			return
		}

		o.setRaw(raw)
		rec.Response = raw

		assignments, err := Parse(raw)
		if err != nil {
			slog.Warn("oracle reply unusable", "round", rec.ID, "error", err)
			rec.Status = "parse_error"
			rec.Err = err.Error()
			o.record(rec)
			return
		}

		rec.Status = "ok"
		rec.Applied = len(assignments)
		o.record(rec)

		o.results <- roundResult{assignments: assignments}
	}()
}

func (o *Oracle) record(rec RoundRecord) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.RecordRound(rec); err != nil {
		slog.Warn("journal write failed", "round", rec.ID, "error", err)
	}
}

// Apply drains completed rounds and applies their assignments to agents.
// Must be called from the tick goroutine. Per-entry failures (unknown id,
// dead agent, unresolvable zone) skip that entry only.
func (o *Oracle) Apply() {
	for {
		select {
		case res := <-o.results:
			for _, asg := range res.assignments {
				o.applyOne(asg)
			}
		default:
			return
		}
	}
}

func (o *Oracle) applyOne(asg Assignment) {
	agent, ok := o.sim.AgentIndex[asg.AgentID]
	if !ok || !agent.Alive {
		return
	}

	zoneType, ok := agents.ZoneForGoal(asg.Goal)
	if !ok {
		return
	}

	target := o.sim.ZoneByType(zoneType)
	if asg.Goal == agents.GoalGoHome {
		target = agent.Home
	}
	if target == nil {
		return
	}

	agent.Assign(asg.Goal, target)
	agent.Thought = asg.Goal.String()
}

// Parse extracts goal assignments from raw oracle output. The first
// brace-delimited object found anywhere in the text is decoded; the oracle
// may prepend or append commentary. No object, or an object that fails to
// decode, discards the entire reply; there is no partial application. Entries with
// unparseable or explicitly idle goals are dropped here; idle only arises
// naturally when an agent completes a path.
func Parse(raw string) ([]Assignment, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var data map[string]struct {
		Goal string `json:"goal"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &data); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	var out []Assignment
	for id, entry := range data {
		goal, ok := agents.ParseGoal(entry.Goal)
		if !ok || goal == agents.GoalIdle {
			continue
		}
		out = append(out, Assignment{AgentID: id, Goal: goal})
	}
	return out, nil
}
