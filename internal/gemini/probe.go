package gemini

import (
	"context"
	"errors"
	"fmt"
)

// ProbePrompt asks the model for a fixed confirmation.
const ProbePrompt = "Hello! Please respond with just 'API key is working!' to confirm the connection."

// ProbeSettings keep the diagnostic cheap.
var ProbeSettings = Settings{Temperature: 0.1, MaxOutputTokens: 50}

// ProbeResult is the connectivity diagnostic report.
type ProbeResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	Details      string `json:"details,omitempty"`
	APIKeyLength int    `json:"apiKeyLength,omitempty"`
	APIKeyPrefix string `json:"apiKeyPrefix,omitempty"`
}

// MaskKey returns the first ten characters of key followed by "...".
func MaskKey(key string) string {
	if len(key) > 10 {
		key = key[:10]
	}
	return key + "..."
}

// Probe sends ProbePrompt to model and reports the outcome. gen may be nil
// when no credential is configured.
func Probe(ctx context.Context, gen Generator, apiKey, model string) ProbeResult {
	if apiKey == "" || gen == nil {
		return ProbeResult{Error: "GEMINI_API_KEY not found in environment variables"}
	}

	text, err := gen.Generate(ctx, Request{Model: model, Prompt: ProbePrompt, Settings: ProbeSettings})
	if err != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			return ProbeResult{
				Error:   fmt.Sprintf("Gemini API error: %d %s", apiErr.StatusCode, apiErr.Status),
				Details: apiErr.Body,
			}
		case errors.Is(err, ErrMalformedResponse):
			return ProbeResult{Error: "Invalid response from Gemini API"}
		default:
			return ProbeResult{Error: err.Error()}
		}
	}

	return ProbeResult{
		Success:      true,
		Message:      text,
		APIKeyLength: len(apiKey),
		APIKeyPrefix: MaskKey(apiKey),
	}
}
