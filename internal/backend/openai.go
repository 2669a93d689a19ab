// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/pkg/types"
)

const defaultTimeout = 2 * time.Minute

// OpenAIClient implements Client against an OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	cfg        types.BackendConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewOpenAIClient builds a client from config. A nil logger is replaced with
// a no-op logger.
func NewOpenAIClient(cfg types.BackendConfig, log *zap.Logger) *OpenAIClient {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the instruction/content pair using the configured defaults.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	return c.CompleteWithOptions(ctx, system, user, Options{})
}

// CompleteWithOptions sends the instruction/content pair with per-call
// overrides for model, temperature, and output size.
func (c *OpenAIClient) CompleteWithOptions(ctx context.Context, system, user string, opts Options) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &Error{Status: http.StatusUnauthorized, Message: "API key not configured"}
	}

	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}
	temperature := c.cfg.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := c.cfg.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	reqBody := chatRequest{
		Model:       model,
		Temperature: &temperature,
		MaxTokens:   maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	c.log.Debug("backend request",
		zap.String("model", model),
		zap.Int("system_len", len(system)),
		zap.Int("user_len", len(user)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("backend request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		berr := classifyStatus(resp.StatusCode, strings.TrimSpace(string(body)))
		c.log.Error("backend error response",
			zap.Int("status", resp.StatusCode),
			zap.Bool("transient", berr.Transient),
			zap.Duration("duration", time.Since(start)),
		)
		return "", berr
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if parsed.Error != nil {
		return "", &Error{Status: resp.StatusCode, Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Status: resp.StatusCode, Message: "no completion returned"}
	}

	out := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.log.Info("backend response",
		zap.String("response_id", parsed.ID),
		zap.Int("response_len", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// classifyStatus maps an HTTP status to the retry taxonomy: 429 and 5xx are
// transient, everything else (bad request, auth, schema rejection) is not.
func classifyStatus(status int, message string) *Error {
	return &Error{
		Status:    status,
		Message:   message,
		Transient: status == http.StatusTooManyRequests || status >= 500,
	}
}
