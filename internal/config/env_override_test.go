package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Gemini(t *testing.T) {
	t.Run("GEMINI_API_KEY sets credential", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "server-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "server-key", cfg.Gemini.APIKey)
		assert.True(t, cfg.Gemini.HasCredential())
	})

	t.Run("legacy public key used when server key absent", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXT_PUBLIC_GEMINI_API_KEY", "public-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "public-key", cfg.Gemini.APIKey)
	})

	t.Run("Precedence: GEMINI_API_KEY over legacy", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NEXT_PUBLIC_GEMINI_API_KEY", "public-key")
		t.Setenv("GEMINI_API_KEY", "server-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "server-key", cfg.Gemini.APIKey)
	})

	t.Run("empty env keeps file value", func(t *testing.T) {
		clearEnv(t)

		cfg := &Config{Gemini: GeminiConfig{APIKey: "from-file"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "from-file", cfg.Gemini.APIKey)
	})

	t.Run("GEMINI_MODEL overrides model", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	})
}

func TestEnvOverrides_ServerAndSession(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADAPTIVE_ADDR", ":9999")
	t.Setenv("ADAPTIVE_RELAY_URL", "http://relay:9999")
	t.Setenv("ADAPTIVE_DB", "/tmp/adaptive.db")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "http://relay:9999", cfg.Server.RelayURL)
	assert.Equal(t, "/tmp/adaptive.db", cfg.Session.Path)
}
