package pacing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config describes a set of named governors and timers, e.g. one governor
// per render loop plus timers for periodic housekeeping.
type Config struct {
	Governors map[string]GovernorConfig `yaml:"governors"`
	Timers    map[string]TimerConfig    `yaml:"timers"`
}

// Validate checks every entry.
func (c Config) Validate() error {
	for name, g := range c.Governors {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("governor %q: %w", name, err)
		}
	}
	for name, t := range c.Timers {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("timer %q: %w", name, err)
		}
	}
	return nil
}

// ParseConfig decodes and validates YAML. Governor fields left out take
// their DefaultGovernorConfig values.
//
//	governors:
//	  render: {interval: 0.016}
//	timers:
//	  stats: {interval: 1, mode: created}
func ParseConfig(data []byte) (Config, error) {
	var raw struct {
		Governors map[string]yaml.MapSlice `yaml:"governors"`
		Timers    map[string]TimerConfig   `yaml:"timers"`
	}
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Governors: make(map[string]GovernorConfig, len(raw.Governors)),
		Timers:    raw.Timers,
	}
	for name, fields := range raw.Governors {
		g := DefaultGovernorConfig(0)
		// Re-encode so unset keys keep the defaults.
		b, err := yaml.Marshal(fields)
		if err != nil {
			return Config{}, fmt.Errorf("governor %q: %w", name, err)
		}
		if err := yaml.UnmarshalStrict(b, &g); err != nil {
			return Config{}, fmt.Errorf("governor %q: %w", name, err)
		}
		cfg.Governors[name] = g
	}
	if cfg.Timers == nil {
		cfg.Timers = make(map[string]TimerConfig)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}
