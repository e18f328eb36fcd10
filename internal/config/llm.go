package config

import (
	"fmt"
	"time"
)

// GeminiConfig configures the upstream generative-language provider.
//
// Generation settings are fixed per deployment; chat users cannot change them.
type GeminiConfig struct {
	// Transport selects the client: "rest" (raw generateContent over HTTP) or
	// "genai" (google.golang.org/genai SDK).
	Transport string `yaml:"transport"`

	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`

	// ProbeModel is used by the connectivity diagnostic.
	ProbeModel string `yaml:"probe_model"`

	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"top_p"`
	TopK            int     `yaml:"top_k"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// ValidTransports lists the supported upstream transports.
var ValidTransports = []string{"rest", "genai"}

// DefaultGeminiConfig returns the chat generation defaults.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Transport:       "rest",
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-1.5-flash",
		ProbeModel:      "gemini-2.5-flash",
		Timeout:         "60s",
		Temperature:     0.7,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 1024,
	}
}

// GetTimeout returns the upstream request timeout as a duration.
func (g GeminiConfig) GetTimeout() time.Duration {
	return parseDuration(g.Timeout, 60*time.Second)
}

// HasCredential reports whether an API key is configured.
func (g GeminiConfig) HasCredential() bool {
	return g.APIKey != ""
}

// Validate checks transport and generation bounds.
func (g GeminiConfig) Validate() error {
	valid := false
	for _, t := range ValidTransports {
		if g.Transport == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid gemini transport: %s (valid: %v)", g.Transport, ValidTransports)
	}
	if g.Model == "" {
		return fmt.Errorf("gemini model not configured")
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("gemini temperature %.2f out of range [0,2]", g.Temperature)
	}
	if g.TopP < 0 || g.TopP > 1 {
		return fmt.Errorf("gemini top_p %.2f out of range [0,1]", g.TopP)
	}
	if g.MaxOutputTokens <= 0 {
		return fmt.Errorf("gemini max_output_tokens must be positive")
	}
	return nil
}
