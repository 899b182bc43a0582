// Package summary produces short natural-language synopses of page diffs
// via an external text-generation service. Summarization is strictly best
// effort: every failure path surfaces as a watch.SummarizeError and callers
// substitute watch.FallbackSummary.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagewatch/pagewatch/internal/watch"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

const systemPrompt = "You summarize diffs of public web pages. " +
	"Reply with at most three short bullet points describing what changed. " +
	"Do not speculate beyond the diff."

// Config controls the OpenAI-backed summarizer.
type Config struct {
	Model         string
	MaxTokens     int
	MaxInputBytes int
	Timeout       time.Duration
	// BaseURL overrides the completions endpoint, mainly for tests.
	BaseURL string
}

// OpenAI implements watch.Summarizer against the chat completions API.
type OpenAI struct {
	apiKey     string
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAI builds the summarizer. An empty apiKey is allowed; every
// Summarize call will then fail softly and the pipeline records the
// fallback text instead.
func NewOpenAI(apiKey string, cfg Config, logger *zap.Logger) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = 16 * 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{
		apiKey:     apiKey,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize submits the cleaned diff text and returns the first choice.
func (c *OpenAI) Summarize(ctx context.Context, diffText string) (string, error) {
	if c.apiKey == "" {
		return "", &watch.SummarizeError{Err: errors.New("no API key configured")}
	}

	input := Prepare(diffText, c.cfg.MaxInputBytes)
	if input == "" {
		return "", &watch.SummarizeError{Err: errors.New("empty diff after cleanup")}
	}

	payload, err := json.Marshal(completionRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: input},
		},
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", &watch.SummarizeError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", &watch.SummarizeError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &watch.SummarizeError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &watch.SummarizeError{Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &watch.SummarizeError{Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(decoded.Choices) == 0 {
		return "", &watch.SummarizeError{Err: errors.New("response contained no choices")}
	}

	out := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if out == "" {
		return "", &watch.SummarizeError{Err: errors.New("response contained empty content")}
	}
	c.logger.Debug("Summary produced", zap.Int("input_bytes", len(input)))
	return out, nil
}

// Noop implements watch.Summarizer for runs with summarization disabled.
// It always yields the fallback text without an error.
type Noop struct{}

// Summarize returns the fixed fallback string.
func (Noop) Summarize(context.Context, string) (string, error) {
	return watch.FallbackSummary, nil
}
