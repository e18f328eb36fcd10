// Package gemini talks to the Gemini generative-language API. Client uses the
// raw generateContent REST endpoint; GenAIClient goes through the
// google.golang.org/genai SDK. Both satisfy Generator.
package gemini

import (
	"adaptive/internal/config"
	"adaptive/internal/logging"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Settings are the generation parameters of one call. Zero TopP, TopK and
// MaxOutputTokens are left to the provider.
type Settings struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// Request is a single-prompt generation call. An empty Model uses the
// client's default.
type Request struct {
	Model    string
	Prompt   string
	Settings Settings
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// SettingsFrom extracts the chat generation settings from cfg.
func SettingsFrom(cfg config.GeminiConfig) Settings {
	return Settings{
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}

// New returns the Generator selected by cfg.Transport.
func New(ctx context.Context, cfg config.GeminiConfig) (Generator, error) {
	switch cfg.Transport {
	case "genai":
		return NewGenAIClient(ctx, cfg)
	case "rest", "":
		if !cfg.HasCredential() {
			return nil, ErrMissingCredential
		}
		return NewClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown gemini transport: %s", cfg.Transport)
	}
}

// Client calls POST {baseURL}/models/{model}:generateContent.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a REST client from cfg.
func NewClient(cfg config.GeminiConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultGeminiConfig().BaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
	}
}

// Model returns the default model.
func (c *Client) Model() string {
	return c.model
}

// Generate makes one request; it never retries.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		logging.APIError("[Gemini] Generate: API key not configured")
		return "", ErrMissingCredential
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	startTime := time.Now()
	logging.APIDebug("[Gemini] Generate: model=%s prompt_len=%d", model, len(req.Prompt))

	temperature := req.Settings.Temperature
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: req.Settings.MaxOutputTokens,
		},
	}
	if req.Settings.TopP > 0 {
		topP := req.Settings.TopP
		body.GenerationConfig.TopP = &topP
	}
	if req.Settings.TopK > 0 {
		topK := req.Settings.TopK
		body.GenerationConfig.TopK = &topK
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(raw),
		}
		var envelope generateResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			apiErr.Message = envelope.Error.Message
		}
		logging.APIError("[Gemini] Generate: API returned status %d: %s", resp.StatusCode, string(raw))
		return "", apiErr
	}

	var geminiResp generateResponse
	if err := json.Unmarshal(raw, &geminiResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if geminiResp.Error != nil {
		return "", &APIError{
			StatusCode: geminiResp.Error.Code,
			Status:     geminiResp.Error.Status,
			Message:    geminiResp.Error.Message,
			Body:       string(raw),
		}
	}
	if len(geminiResp.Candidates) == 0 || geminiResp.Candidates[0].Content == nil ||
		len(geminiResp.Candidates[0].Content.Parts) == 0 {
		logging.APIError("[Gemini] Generate: no candidate content in response")
		return "", ErrMalformedResponse
	}

	var result strings.Builder
	for _, p := range geminiResp.Candidates[0].Content.Parts {
		result.WriteString(p.Text)
	}

	logging.API("[Gemini] Generate: completed in %v response_len=%d tokens=%d",
		time.Since(startTime), result.Len(), geminiResp.UsageMetadata.TotalTokenCount)
	return result.String(), nil
}
