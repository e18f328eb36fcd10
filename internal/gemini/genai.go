package gemini

import (
	"adaptive/internal/config"
	"adaptive/internal/logging"
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient generates text through the google.golang.org/genai SDK.
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient creates an SDK-backed client. A non-default base URL is
// passed to the SDK without its version suffix.
func NewGenAIClient(ctx context.Context, cfg config.GeminiConfig) (*GenAIClient, error) {
	if !cfg.HasCredential() {
		return nil, ErrMissingCredential
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" && base != config.DefaultGeminiConfig().BaseURL {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(base, "/v1beta") + "/"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIClient{client: client, model: cfg.Model}, nil
}

// Model returns the default model.
func (g *GenAIClient) Model() string {
	return g.model
}

// Generate implements Generator.
func (g *GenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Settings.Temperature)),
	}
	if req.Settings.TopP > 0 {
		gc.TopP = genai.Ptr(float32(req.Settings.TopP))
	}
	if req.Settings.TopK > 0 {
		gc.TopK = genai.Ptr(float32(req.Settings.TopK))
	}
	if req.Settings.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = int32(req.Settings.MaxOutputTokens)
	}

	timer := logging.StartTimer(logging.CategoryAPI, "genai.GenerateContent")
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc)
	timer.Stop()
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
		}
		return "", &NetworkError{Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrMalformedResponse
	}
	return resp.Text(), nil
}
