package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hamlet/internal/agents"
	"github.com/talgya/hamlet/internal/api"
	"github.com/talgya/hamlet/internal/config"
	"github.com/talgya/hamlet/internal/embedding"
	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/persistence"
	"github.com/talgya/hamlet/internal/world"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the village simulation",
		Run:   runSimulation,
	}
	RootCmd.AddCommand(cmd)
}

func runSimulation(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}

	start, err := cfg.StartTime()
	if err != nil {
		exitErr("parse start time", err)
	}

	grid, err := world.BuildVillage(world.BuildConfig{
		WorldName: cfg.World.Name,
		Width:     cfg.World.Width,
		Height:    cfg.World.Height,
		Seed:      cfg.World.Seed,
	})
	if err != nil {
		exitErr("build world", err)
	}

	embedder := newEmbedder(cfg)
	gen := newGenerator(cfg)

	w := agents.NewWorld("A tiny forest hamlet.", grid, start)
	builder := agents.NewBuilder(gen, embedder)
	for _, bp := range blueprints(cfg) {
		a := builder.Build(bp, w.Now)
		if err := w.AddAgent(a); err != nil {
			exitErr("add agent", err)
		}
	}

	sim := engine.NewSimulation(
		w,
		agents.NewPerception(gen, embedder),
		agents.NewPlanner(gen, embedder),
		agents.NewExecutor(embedder, nil),
		agents.NewReflector(gen),
	)
	sim.MaxSteps = cfg.Simulation.MaxSteps

	var db *persistence.DB
	if cfg.Simulation.SnapshotPath != "" {
		db, err = persistence.Open(cfg.Simulation.SnapshotPath)
		if err != nil {
			exitErr("open snapshot db", err)
		}
		defer db.Close()
		if err := db.StartRun(sim.RunID.String(), w.Name, start); err != nil {
			exitErr("register run", err)
		}
	}

	eng := engine.NewEngine()
	eng.Speed = cfg.Simulation.Speed
	eng.Interval = cfg.Interval()
	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		if db != nil {
			if err := db.SaveSnapshot(sim); err != nil {
				slog.Warn("daily snapshot failed", "error", err)
			}
		}
	}

	if cfg.Server.Enabled {
		api.NewServer(sim, eng, cfg.Server.Addr).Start()
	}

	slog.Info("starting simulation",
		"run", sim.RunID,
		"world", w.Name,
		"agents", len(w.Agents),
		"max_ticks", cfg.Simulation.MaxTicks,
		"llm", gen != nil,
	)

	eng.Run(cfg.Simulation.MaxTicks)

	if db != nil {
		if err := db.SaveSnapshot(sim); err != nil {
			slog.Warn("final snapshot failed", "error", err)
		}
	}

	total := 0
	for _, a := range w.Agents {
		total += a.Memory.Len()
	}
	fmt.Printf("simulation finished: %s ticks, %s memory nodes across %d agents\n",
		humanize.Comma(int64(eng.Tick)), humanize.Comma(int64(total)), len(w.Agents))
}

// newGenerator returns the LLM client, or nil when no API key is set
// (the simulation then runs on deterministic defaults).
func newGenerator(cfg config.Config) llm.Generator {
	key := os.Getenv(cfg.LLM.APIKeyEnv)
	client := llm.NewClient(key)
	if client == nil {
		slog.Info("no API key set, running without language model", "env", cfg.LLM.APIKeyEnv)
		return nil
	}
	return client
}

func newEmbedder(cfg config.Config) embedding.Embedder {
	if cfg.Embedding.Provider == "ollama" {
		return embedding.NewOllama(cfg.Embedding.URL, cfg.Embedding.Model)
	}
	return embedding.NewLocal(cfg.Embedding.Dims)
}

// blueprints maps configured agents onto builder blueprints, falling
// back to the stock cast when none are configured.
func blueprints(cfg config.Config) []agents.Blueprint {
	if len(cfg.Agents) == 0 {
		return agents.DefaultBlueprints()
	}
	out := make([]agents.Blueprint, 0, len(cfg.Agents))
	for _, spec := range cfg.Agents {
		bp := agents.Blueprint{
			Name:               spec.Name,
			Age:                spec.Age,
			Traits:             spec.Traits,
			Lifestyle:          spec.Lifestyle,
			Background:         spec.Background,
			Status:             spec.Status,
			Sex:                spec.Sex,
			Position:           world.Coord{X: spec.X, Y: spec.Y},
			Whisper:            spec.Whisper,
			ImportanceTriggers: spec.Triggers,
		}
		for _, m := range spec.Memories {
			bp.Memories = append(bp.Memories, agents.SeedMemory{Content: m.Content, Relevance: m.Relevance})
		}
		out = append(out, bp)
	}
	return out
}
