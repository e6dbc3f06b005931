// ABOUTME: Shared configuration for the relay gateway and responder binaries.
// ABOUTME: YAML with ${VAR} env expansion, duration parsing, and fail-fast validation.

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete relay configuration. Both binaries read the
// same file; each uses the sections it needs.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Responder ResponderConfig `yaml:"responder"`
	Engines   EnginesConfig   `yaml:"engines"`
	Streaming StreamingConfig `yaml:"streaming"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds listen address configuration.
type ServerConfig struct {
	GatewayAddr   string `yaml:"gateway_addr"`
	ResponderAddr string `yaml:"responder_addr"`
}

// ResponderConfig holds the gateway's view of the responder backend.
// No call timeout is configured: a hanging responder hangs the enclosing
// request. Known gap, kept to match the existing contract.
type ResponderConfig struct {
	URL string `yaml:"url"`
}

// EnginesConfig holds reply engine configuration. Default must name a
// registered engine; that is checked once at startup.
type EnginesConfig struct {
	Default string       `yaml:"default"`
	Gemini  GeminiConfig `yaml:"gemini"`
}

// GeminiConfig holds credentials for the LLM-backed engine. The engine is
// only registered when an API key is present.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// StreamingConfig holds the chunking and pacing knobs for reply delivery.
type StreamingConfig struct {
	ChunkWords    int           `yaml:"chunk_words"`
	ChunkInterval time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	ChunkIntervalRaw string `yaml:"chunk_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded and
// duration strings are parsed into time.Duration values. A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in the defaults for anything the file left unset.
func (c *Config) applyDefaults() {
	if c.Server.GatewayAddr == "" {
		c.Server.GatewayAddr = ":4000"
	}
	if c.Server.ResponderAddr == "" {
		c.Server.ResponderAddr = ":4001"
	}
	if c.Responder.URL == "" {
		c.Responder.URL = "http://localhost:4001"
	}
	if c.Engines.Default == "" {
		c.Engines.Default = "echo"
	}
	if c.Streaming.ChunkWords == 0 {
		c.Streaming.ChunkWords = 5
	}
	if c.Streaming.ChunkIntervalRaw == "" {
		c.Streaming.ChunkIntervalRaw = "150ms"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks that the configuration is usable. Returns an error
// describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Streaming.ChunkWords < 1 {
		return fmt.Errorf("streaming.chunk_words must be at least 1")
	}
	if c.Streaming.ChunkInterval < 0 {
		return fmt.Errorf("streaming.chunk_interval must not be negative")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func (c *Config) parseDurations() error {
	var err error

	if c.Streaming.ChunkIntervalRaw != "" {
		c.Streaming.ChunkInterval, err = time.ParseDuration(c.Streaming.ChunkIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing chunk_interval %q: %w", c.Streaming.ChunkIntervalRaw, err)
		}
	}

	return nil
}
