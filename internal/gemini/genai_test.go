package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"adaptive/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenAIClient(t *testing.T, handler http.HandlerFunc) *GenAIClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := config.DefaultGeminiConfig()
	cfg.Transport = "genai"
	cfg.APIKey = "test-key-1234567890"
	cfg.BaseURL = ts.URL + "/v1beta"
	client, err := NewGenAIClient(context.Background(), cfg)
	require.NoError(t, err)
	return client
}

func TestGenAIGenerate_Success(t *testing.T) {
	var body struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig map[string]float64 `json:"generationConfig"`
	}
	client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key-1234567890", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi there"}],"role":"model"}}]}`))
	})

	text, err := client.Generate(context.Background(), Request{
		Prompt:   "hello",
		Settings: SettingsFrom(config.DefaultGeminiConfig()),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", text)

	require.Len(t, body.Contents, 1)
	require.Len(t, body.Contents[0].Parts, 1)
	assert.Equal(t, "hello", body.Contents[0].Parts[0].Text)
	assert.InDelta(t, 0.7, body.GenerationConfig["temperature"], 1e-6)
	assert.InDelta(t, 0.8, body.GenerationConfig["topP"], 1e-6)
	assert.InDelta(t, 40, body.GenerationConfig["topK"], 1e-6)
	assert.Equal(t, float64(1024), body.GenerationConfig["maxOutputTokens"])
}

func TestGenAIGenerate_ModelOverride(t *testing.T) {
	client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})
	text, err := client.Generate(context.Background(), Request{Model: "gemini-2.5-flash", Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, "gemini-1.5-flash", client.Model())
}

func TestGenAIGenerate_Errors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
		})
		_, err := client.Generate(context.Background(), Request{Prompt: "x"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Equal(t, "INVALID_ARGUMENT", apiErr.Status)
		assert.Equal(t, "API key not valid", apiErr.Message)
		assert.Equal(t, "upstream", Kind(err))
	})

	t.Run("no candidates", func(t *testing.T) {
		client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates":[]}`))
		})
		_, err := client.Generate(context.Background(), Request{Prompt: "x"})
		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.Equal(t, "upstream", Kind(err))
	})

	t.Run("missing content", func(t *testing.T) {
		client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates":[{"finishReason":"SAFETY"}]}`))
		})
		_, err := client.Generate(context.Background(), Request{Prompt: "x"})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestNew_GenAITransport(t *testing.T) {
	cfg := config.DefaultGeminiConfig()
	cfg.Transport = "genai"
	cfg.APIKey = "k"
	gen, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &GenAIClient{}, gen)
}
