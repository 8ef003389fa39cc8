package game

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds game configuration options.
type Config struct {
	// StepDuration is how long each tick's events take to play back.
	StepDuration time.Duration `yaml:"step_duration"`
	// MaxTicks stops a headless run that has not finished. 0 means no limit.
	MaxTicks int `yaml:"max_ticks"`
	// LevelsPath replaces the embedded level set when set.
	LevelsPath string `yaml:"levels_path"`
	// JournalPath enables the compressed tick journal.
	JournalPath string `yaml:"journal_path"`
	// ProgressPath is the database of beaten levels. Empty disables it.
	ProgressPath string `yaml:"progress_path"`
	// ObserverAddr enables the websocket tick stream, e.g. "127.0.0.1:8089".
	ObserverAddr string `yaml:"observer_addr"`
	// Telemetry enables OTLP trace export, configured by the OTEL_* variables.
	Telemetry bool `yaml:"telemetry"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		StepDuration: 250 * time.Millisecond,
		MaxTicks:     1000,
		ProgressPath: "botgame.db",
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from BOTGAME_* variables found by lookup,
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("BOTGAME_STEP_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BOTGAME_STEP_DURATION: %w", err)
		}
		c.StepDuration = d
	}
	if v, ok := lookup("BOTGAME_MAX_TICKS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOTGAME_MAX_TICKS: %w", err)
		}
		c.MaxTicks = n
	}
	if v, ok := lookup("BOTGAME_TELEMETRY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BOTGAME_TELEMETRY: %w", err)
		}
		c.Telemetry = b
	}
	for name, dst := range map[string]*string{
		"BOTGAME_LEVELS":   &c.LevelsPath,
		"BOTGAME_JOURNAL":  &c.JournalPath,
		"BOTGAME_PROGRESS": &c.ProgressPath,
		"BOTGAME_OBSERVER": &c.ObserverAddr,
	} {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	return c.Validate()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.StepDuration <= 0 {
		return errors.New("step duration must be positive")
	}
	if c.MaxTicks < 0 {
		return errors.New("max ticks must not be negative")
	}
	return nil
}
