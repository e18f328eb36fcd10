package chat

import (
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

// Request is the body of POST /api/chat.
type Request struct {
	Message string   `json:"message"`
	Context *Context `json:"context,omitempty"`
}

// Response is the body returned by POST /api/chat.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Relay sends one message with its context and returns the assistant text.
type Relay interface {
	Send(ctx context.Context, message string, c Context) (string, error)
}

// RelayError is a non-success answer from the relay.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay returned status %d: %s", e.StatusCode, e.Message)
}

// HTTPRelay posts to a relay server's /api/chat endpoint.
type HTTPRelay struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPRelay creates a client for the relay at baseURL.
func NewHTTPRelay(baseURL string, timeout time.Duration) *HTTPRelay {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPRelay{
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/chat",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send implements Relay. It makes exactly one request.
func (r *HTTPRelay) Send(ctx context.Context, message string, c Context) (string, error) {
	body, err := json.Marshal(Request{Message: message, Context: &c})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &RelayError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		logging.ChatDebug("Relay rejected message: status=%d error=%q", resp.StatusCode, out.Error)
		return "", &RelayError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	return out.Message, nil
}
