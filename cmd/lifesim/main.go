// Command lifesim runs the needs-driven agent simulation with an external
// decision oracle.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/lifesim/internal/agents"
	"github.com/talgya/lifesim/internal/api"
	"github.com/talgya/lifesim/internal/config"
	"github.com/talgya/lifesim/internal/engine"
	"github.com/talgya/lifesim/internal/journal"
	"github.com/talgya/lifesim/internal/llm"
	"github.com/talgya/lifesim/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// ── Configuration ─────────────────────────────────────────────────
	cfg := config.Default()
	if path := os.Getenv("LIFESIM_CONFIG"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			slog.Error("failed to load config", "path", path, "error", err)
			os.Exit(1)
		}
		slog.Info("config loaded", "path", path)
	}

	// ── Journal ───────────────────────────────────────────────────────
	var db *journal.DB
	if cfg.Journal.Path != "" {
		os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0755)
		var err error
		db, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			slog.Warn("journal disabled", "path", cfg.Journal.Path, "error", err)
			db = nil
		} else {
			defer db.Close()
			slog.Info("journal opened", "path", cfg.Journal.Path)
		}
	}

	// ── World ─────────────────────────────────────────────────────────
	var zones []*world.Zone
	switch cfg.World.Layout {
	case "generated":
		lc := world.DefaultLayoutConfig()
		lc.Seed = cfg.Seed
		lc.Homes = cfg.World.Homes
		zones = world.GenerateLayout(lc)
	default:
		zones = world.StaticLayout()
	}
	graph := world.NewGraph(zones, cfg.Tuning.GraphDegree)

	roster := agents.DefaultRoster()
	population := agents.Spawn(roster, zones, graph, cfg.Tuning, cfg.Seed)
	if len(population) == 0 {
		slog.Error("no agents spawned, layout has no home zone")
		os.Exit(1)
	}

	sim := engine.NewSimulation(zones, graph, population)
	slog.Info("world ready", "zones", len(zones), "agents", len(population))

	// ── Oracle ────────────────────────────────────────────────────────
	client := llm.NewClient(cfg.Oracle)
	var recorder llm.RoundRecorder
	if db != nil {
		recorder = db
	}
	oracle := llm.NewOracle(sim, client, recorder)

	// ── Engine ────────────────────────────────────────────────────────
	ctx := context.Background()
	eng := engine.NewEngine(time.Second / 60)

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Sim:               sim,
		Eng:               eng,
		Oracle:            oracle,
		DB:                db,
		Port:              cfg.API.Port,
		BroadcastInterval: cfg.API.BroadcastInterval.Std(),
	}

	eng.OnTick = func(tick uint64) {
		before := len(sim.Events)
		sim.Tick(tick)

		// Goal application happens here, on the tick goroutine.
		oracle.Apply()

		if tick%cfg.Oracle.ThinkInterval == 0 {
			oracle.Decide(ctx, tick)
		}

		if db != nil && len(sim.Events) > before {
			if err := db.RecordEvents(sim.Events[before:]); err != nil {
				slog.Warn("event journal write failed", "error", err)
			}
		}

		// Handlers serve the snapshot, never the live simulation.
		apiServer.Publish()
	}

	apiServer.Publish()
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("lifesim: %d agents across %d zones.\n", len(population), len(zones))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	fmt.Println("Simulation stopped.")
}
