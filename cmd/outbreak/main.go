// Command outbreak runs the SIR agent simulation and serves the live viewer.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/outbreak/internal/api"
	"github.com/talgya/outbreak/internal/engine"
	"github.com/talgya/outbreak/internal/entropy"
	"github.com/talgya/outbreak/internal/sim"
	"github.com/talgya/outbreak/internal/stream"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Outbreak — SIR agent simulation")

	agents := envInt("OUTBREAK_AGENTS", 2500)
	regionSize := envFloat("OUTBREAK_REGION", 8000)
	port := envInt("PORT", 8080)
	seed := envInt64("OUTBREAK_SEED", time.Now().UnixNano())

	adminKey := os.Getenv("OUTBREAK_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("OUTBREAK_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	runID := uuid.New()
	cfg := sim.DefaultConfig()

	pop, err := sim.New(agents, regionSize, cfg, entropy.New(seed), nil)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("simulation created",
		"run_id", runID,
		"agents", humanize.Comma(int64(pop.Count())),
		"region_size", pop.Size(),
		"seed", seed,
		"speed", cfg.Speed,
		"infection_radius", cfg.InfectionRadius,
		"infection_chance", cfg.InfectionChance,
		"infection_duration", cfg.InfectionDuration,
	)

	eng := engine.NewEngine()
	hub := stream.NewHub(pop, eng)

	// The outbreak ends when no infected agents remain; the simulation
	// itself keeps running so viewers can watch the final state.
	eradicatedLogged := false

	eng.OnTick = func(tick uint64) {
		pop.Tick()
		// Viewers don't need every tick; halving the frame rate halves
		// the websocket payload volume.
		if tick%2 == 0 {
			hub.BroadcastFrame(tick)
		}
		if !eradicatedLogged && pop.Eradicated() {
			eradicatedLogged = true
			counts := pop.Counts()
			slog.Info("outbreak eradicated",
				"tick", tick,
				"susceptible", counts.Susceptible,
				"removed", counts.Removed,
			)
		}
	}
	eng.OnSample = func(tick uint64) {
		pop.RecordStats()
	}

	apiServer := &api.Server{
		Pop:       pop,
		Eng:       eng,
		Hub:       hub,
		RunID:     runID,
		Port:      port,
		AdminKey:  adminKey,
		StaticDir: "web/static",
	}
	apiServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nOutbreak is live: %s agents in a %.0f unit region.\n",
		humanize.Comma(int64(pop.Count())), pop.Size())
	fmt.Printf("Viewer: http://localhost:%d/  API: http://localhost:%d/api/v1/status\n", port, port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	counts := pop.Counts()
	slog.Info("final state",
		"tick", eng.CurrentTick(),
		"susceptible", counts.Susceptible,
		"infected", counts.Infected,
		"removed", counts.Removed,
		"history_samples", len(pop.History()),
	)
	fmt.Println("Simulation stopped.")
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring invalid env value", "key", key, "value", v)
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("ignoring invalid env value", "key", key, "value", v)
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring invalid env value", "key", key, "value", v)
	}
	return def
}
