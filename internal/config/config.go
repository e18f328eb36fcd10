package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all adaptive configuration.
type Config struct {
	Name string `yaml:"name"`

	// Relay HTTP server
	Server ServerConfig `yaml:"server"`

	// Upstream generative-language provider
	Gemini GeminiConfig `yaml:"gemini"`

	// Workspace session persistence
	Session SessionConfig `yaml:"session"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the relay HTTP server.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// RelayURL is where CLI clients reach a running relay.
	RelayURL string `yaml:"relay_url"`
}

// SessionConfig configures where the workspace keeps its local key-value state.
type SessionConfig struct {
	Store    string `yaml:"store"` // memory, sqlite, file
	Path     string `yaml:"path"`
	Duration string `yaml:"duration"`
}

// ValidStores lists the supported session store backends.
var ValidStores = []string{"memory", "sqlite", "file"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "adaptive",

		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "90s",
			ShutdownTimeout: "5s",
			RelayURL:        "http://localhost:8080",
		},

		Gemini: DefaultGeminiConfig(),

		Session: SessionConfig{
			Store:    "sqlite",
			Path:     ".adaptive/session.db",
			Duration: "1h",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// The legacy public variable is only consulted when the server-side one is absent.
	if key := os.Getenv("NEXT_PUBLIC_GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Gemini.Model = model
	}

	if addr := os.Getenv("ADAPTIVE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if url := os.Getenv("ADAPTIVE_RELAY_URL"); url != "" {
		c.Server.RelayURL = url
	}
	if path := os.Getenv("ADAPTIVE_DB"); path != "" {
		c.Session.Path = path
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 90*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown window.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 5*time.Second)
}

// GetSessionDuration returns the assessment length.
func (c *Config) GetSessionDuration() time.Duration {
	return parseDuration(c.Session.Duration, time.Hour)
}

// Validate validates the configuration.
// A missing API key is not a validation error: the relay reports it per
// request so the diagnostic endpoint can still answer.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address not configured")
	}

	validStore := false
	for _, s := range ValidStores {
		if c.Session.Store == s {
			validStore = true
			break
		}
	}
	if !validStore {
		return fmt.Errorf("invalid session store: %s (valid: %v)", c.Session.Store, ValidStores)
	}
	if c.Session.Store != "memory" && c.Session.Path == "" {
		return fmt.Errorf("session store %s requires a path", c.Session.Store)
	}

	return c.Gemini.Validate()
}
