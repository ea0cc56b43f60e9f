// Package config loads and validates quartz.yml, the per-instance
// configuration for the board store and automation engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// QuartzConfig represents the top-level quartz.yml configuration.
type QuartzConfig struct {
	Version  string        `yaml:"version"`
	Instance string        `yaml:"instance"`
	Redis    RedisConfig   `yaml:"redis,omitempty"`
	Engine   *EngineConfig `yaml:"engine,omitempty"`
	Health   *HealthConfig `yaml:"health,omitempty"`
}

// RedisConfig specifies the Redis connection backing the board store.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"` // default localhost:6379
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// EngineConfig specifies automation engine behavior.
type EngineConfig struct {
	// MaxChainDepth bounds automation-triggered-by-automation chains
	// (default 5). A chain past the bound fails with cycle_detected.
	MaxChainDepth *int `yaml:"max_chain_depth,omitempty"`

	// ActionTimeout bounds each automation action, as a Go duration string
	// (default "10s").
	ActionTimeout string `yaml:"action_timeout,omitempty"`

	// CascadeDeleteSubitems lets delete_item actions remove subitems with
	// their parent instead of failing fast (default false).
	CascadeDeleteSubitems bool `yaml:"cascade_delete_subitems,omitempty"`

	// RunHistoryLimit caps each automation's run history list (default 100).
	RunHistoryLimit *int `yaml:"run_history_limit,omitempty"`
}

// HealthConfig specifies the engine's health/metrics HTTP endpoint.
type HealthConfig struct {
	Addr string `yaml:"addr,omitempty"` // empty disables the server
}

// Load reads and validates a quartz.yml file.
func Load(path string) (*QuartzConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg QuartzConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate performs strict validation and applies defaults for optional
// fields.
func (c *QuartzConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}
	if c.Instance == "" {
		return fmt.Errorf("instance name is required")
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Engine == nil {
		c.Engine = &EngineConfig{}
	}
	if c.Engine.MaxChainDepth == nil {
		depth := 5
		c.Engine.MaxChainDepth = &depth
	}
	if *c.Engine.MaxChainDepth < 1 {
		return fmt.Errorf("engine.max_chain_depth must be >= 1, got %d", *c.Engine.MaxChainDepth)
	}

	if c.Engine.ActionTimeout == "" {
		c.Engine.ActionTimeout = "10s"
	}
	timeout, err := time.ParseDuration(c.Engine.ActionTimeout)
	if err != nil {
		return fmt.Errorf("invalid engine.action_timeout: %s (use a duration like '10s' or '1m')", c.Engine.ActionTimeout)
	}
	if timeout <= 0 {
		return fmt.Errorf("engine.action_timeout must be positive, got %s", c.Engine.ActionTimeout)
	}

	if c.Engine.RunHistoryLimit == nil {
		limit := 100
		c.Engine.RunHistoryLimit = &limit
	}
	if *c.Engine.RunHistoryLimit < 1 {
		return fmt.Errorf("engine.run_history_limit must be >= 1, got %d", *c.Engine.RunHistoryLimit)
	}

	return nil
}

// ActionTimeoutDuration returns the parsed action timeout. Validate must
// have succeeded first.
func (c *QuartzConfig) ActionTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Engine.ActionTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
