// Package config loads simulation settings from YAML with sensible
// defaults when no file is given.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full simulation configuration.
type Config struct {
	World      WorldSpec   `yaml:"world"`
	Simulation SimSpec     `yaml:"simulation"`
	LLM        LLMSpec     `yaml:"llm"`
	Embedding  EmbedSpec   `yaml:"embedding"`
	Server     ServerSpec  `yaml:"server"`
	Agents     []AgentSpec `yaml:"agents,omitempty"`
}

// WorldSpec configures map generation.
type WorldSpec struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Seed   int64  `yaml:"seed"`
}

// SimSpec configures the tick loop.
type SimSpec struct {
	StartTime    string  `yaml:"start_time"` // "2006-01-02 15:04"
	MaxTicks     uint64  `yaml:"max_ticks"`  // 0 = unbounded
	MaxSteps     int     `yaml:"max_steps"`  // movement steps per agent per tick
	Speed        float64 `yaml:"speed"`
	IntervalMS   int     `yaml:"interval_ms"`
	SnapshotPath string  `yaml:"snapshot_path"` // empty disables snapshots
}

// LLMSpec configures the generation collaborator.
type LLMSpec struct {
	APIKeyEnv string `yaml:"api_key_env"`
}

// EmbedSpec configures the embedding collaborator.
type EmbedSpec struct {
	Provider string `yaml:"provider"` // "local" or "ollama"
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`
	Dims     int    `yaml:"dims"`
}

// ServerSpec configures the observer HTTP server.
type ServerSpec struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// AgentSpec describes one agent in the roster.
type AgentSpec struct {
	Name       string       `yaml:"name"`
	Age        int          `yaml:"age"`
	Traits     string       `yaml:"traits"`
	Lifestyle  string       `yaml:"lifestyle"`
	Background string       `yaml:"background"`
	Status     string       `yaml:"status"`
	Sex        string       `yaml:"sex"`
	X          int          `yaml:"x"`
	Y          int          `yaml:"y"`
	Whisper    string       `yaml:"whisper"`
	Triggers   []string     `yaml:"triggers,omitempty"`
	Memories   []MemorySpec `yaml:"memories,omitempty"`
}

// MemorySpec is one seeded memory.
type MemorySpec struct {
	Content   string  `yaml:"content"`
	Relevance float64 `yaml:"relevance"`
}

// Load reads a config file, or returns defaults when path is empty.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		World: WorldSpec{
			Name:   "Greenhollow",
			Width:  20,
			Height: 20,
			Seed:   42,
		},
		Simulation: SimSpec{
			StartTime:  "2026-06-01 06:00",
			MaxTicks:   720,
			MaxSteps:   3,
			Speed:      1.0,
			IntervalMS: 1000,
		},
		LLM: LLMSpec{
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		Embedding: EmbedSpec{
			Provider: "local",
			Dims:     128,
		},
		Server: ServerSpec{
			Enabled: false,
			Addr:    ":8080",
		},
	}
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	def := defaults()
	if c.World.Name == "" {
		c.World.Name = def.World.Name
	}
	if c.World.Width == 0 {
		c.World.Width = def.World.Width
	}
	if c.World.Height == 0 {
		c.World.Height = def.World.Height
	}
	if c.Simulation.StartTime == "" {
		c.Simulation.StartTime = def.Simulation.StartTime
	}
	if c.Simulation.MaxSteps == 0 {
		c.Simulation.MaxSteps = def.Simulation.MaxSteps
	}
	if c.Simulation.Speed == 0 {
		c.Simulation.Speed = def.Simulation.Speed
	}
	if c.Simulation.IntervalMS == 0 {
		c.Simulation.IntervalMS = def.Simulation.IntervalMS
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = def.LLM.APIKeyEnv
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = def.Embedding.Provider
	}
	if c.Embedding.Dims == 0 {
		c.Embedding.Dims = def.Embedding.Dims
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.World.Width < 20 || c.World.Height < 20 {
		return fmt.Errorf("world must be at least 20x20, got %dx%d", c.World.Width, c.World.Height)
	}
	if _, err := c.StartTime(); err != nil {
		return err
	}
	switch c.Embedding.Provider {
	case "local", "ollama":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "ollama" && c.Embedding.URL == "" {
		return fmt.Errorf("ollama embedding provider needs a url")
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent with empty name")
		}
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("duplicate agent name %q", a.Name)
		}
		seen[a.Name] = struct{}{}
		if a.X < 0 || a.X >= c.World.Width || a.Y < 0 || a.Y >= c.World.Height {
			return fmt.Errorf("agent %s: spawn (%d, %d) out of bounds", a.Name, a.X, a.Y)
		}
	}
	return nil
}

// StartTime parses the configured simulation start.
func (c *Config) StartTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", c.Simulation.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_time: %w", err)
	}
	return t, nil
}

// Interval returns the tick interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Simulation.IntervalMS) * time.Millisecond
}
