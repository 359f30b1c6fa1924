// Package config provides configuration loading for the grantflow service.
// Settings come from an optional YAML file with environment variable
// overrides for secrets and deployment knobs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/civicgrant/grantflow/state"
)

// Config is the complete service configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Model        ModelConfig        `yaml:"model"`
	Search       SearchConfig       `yaml:"search"`
	Logging      LoggingConfig      `yaml:"logging"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080")
	Addr string `yaml:"addr"`
	// BodyLimit caps the request body size in bytes
	BodyLimit int `yaml:"body_limit"`
}

// ModelConfig configures the generation service.
type ModelConfig struct {
	// Provider selects the backend: "anthropic", "openai" or "mock"
	Provider string `yaml:"provider"`
	// ID is the provider-specific model identifier
	ID string `yaml:"id"`
	// APIKey is normally supplied via environment, not the file
	APIKey string `yaml:"api_key"`
	// MaxCallsPerTurn bounds the generate/tool loop for one user message
	MaxCallsPerTurn int `yaml:"max_calls_per_turn"`
}

// SearchConfig configures the lookup service.
type SearchConfig struct {
	// APIKey and EngineID are the Google Custom Search credentials.
	// Empty credentials switch the service to the deterministic stub.
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
	// NumResults is the number of results fetched per query
	NumResults int `yaml:"num_results"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `yaml:"level"`
	// Format is "json" or "text"
	Format string `yaml:"format"`
}

// OrchestratorConfig configures routing behavior.
type OrchestratorConfig struct {
	// Completeness is the data-completeness predicate gating intake exit
	Completeness state.Completeness `yaml:"completeness"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			BodyLimit: 4 * 1024 * 1024,
		},
		Model: ModelConfig{
			Provider:        "anthropic",
			ID:              "claude-sonnet-4-20250514",
			MaxCallsPerTurn: 8,
		},
		Search: SearchConfig{
			NumResults: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Orchestrator: OrchestratorConfig{
			Completeness: state.DefaultCompleteness(),
		},
	}
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path (when path is non-empty), overlaid by environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration. Secrets
// are expected to arrive this way rather than in the file.
func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "GRANTFLOW_ADDR")
	setString(&c.Model.Provider, "GRANTFLOW_MODEL_PROVIDER")
	setString(&c.Model.ID, "GRANTFLOW_MODEL_ID")
	setString(&c.Model.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Model.APIKey, "OPENAI_API_KEY")
	setInt(&c.Model.MaxCallsPerTurn, "GRANTFLOW_MAX_MODEL_CALLS")
	setString(&c.Search.APIKey, "GOOGLE_SEARCH_API_KEY")
	setString(&c.Search.EngineID, "GOOGLE_SEARCH_ENGINE_ID")
	setInt(&c.Search.NumResults, "GRANTFLOW_SEARCH_RESULTS")
	setString(&c.Logging.Level, "GRANTFLOW_LOG_LEVEL")
	setString(&c.Logging.Format, "GRANTFLOW_LOG_FORMAT")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("model.provider must be anthropic, openai or mock, got %q", c.Model.Provider)
	}

	if c.Model.ID == "" {
		return fmt.Errorf("model.id is required")
	}
	if c.Model.MaxCallsPerTurn < 0 {
		return fmt.Errorf("model.max_calls_per_turn must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
