// Package llm is the HTTP client for an OpenAI-style model endpoint. It
// speaks both the chat-completions and responses API shapes, negotiates
// the token-field name, and retries transient failures with exponential
// backoff. The caller sees only: a conversation goes in, raw text comes
// out.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/relforge/relforge/internal/config"
	"github.com/relforge/relforge/internal/contracts"
)

// Message is one role-tagged conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// debugLogger is a function that logs debug messages when debug mode is
// enabled. By default, it's a no-op. Set it via SetDebugLogger to enable
// debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for model endpoint calls.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func debugf(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Client calls a model endpoint. Construct with New; the zero value is not
// usable.
type Client struct {
	hc         *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	effort     config.ReasoningEffort
	responses  bool
	maxRetries int

	// do is swappable for tests.
	do func(*http.Request) (*http.Response, error)
}

// New builds a client from the loaded configuration. The API key is read
// once from the configured environment variable.
func New(cfg *config.Configuration) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing api key: set %s", cfg.APIKeyEnv)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	hc := &http.Client{Timeout: timeout}
	c := &Client{
		hc:         hc,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     key,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		effort:     cfg.ReasoningEffort,
		responses:  cfg.UseResponsesAPI,
		maxRetries: cfg.MaxRetries,
	}
	c.do = hc.Do
	return c, nil
}

// Complete sends the conversation and returns the model's raw text.
// contract, when non-nil, is attached as a strict structured-output format.
func (c *Client) Complete(ctx context.Context, messages []Message, contract *contracts.Contract) (string, error) {
	fb := newFallback(c.responses)
	for {
		shape := fb.shape()
		text, err := c.completeOnce(ctx, messages, contract, shape)
		if err == nil {
			return text, nil
		}
		var he *httpError
		if errors.As(err, &he) && fb.advance(he.status, he.message) {
			debugf("llm: endpoint rejected request shape (%d: %s), retrying adjusted", he.status, he.message)
			continue
		}
		return "", err
	}
}

// completeOnce performs one logical call under the given request shape,
// retrying transient failures internally.
func (c *Client) completeOnce(ctx context.Context, messages []Message, contract *contracts.Contract, shape requestShape) (string, error) {
	body, err := c.buildBody(messages, contract, shape)
	if err != nil {
		return "", err
	}
	url := c.baseURL + "/chat/completions"
	if shape.useResponses {
		url = c.baseURL + "/responses"
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt, lastErr); err != nil {
				return "", err
			}
		}
		text, err := c.post(ctx, url, body, shape.useResponses)
		if err == nil {
			return text, nil
		}
		if !isTransient(err) {
			return "", err
		}
		debugf("llm: transient failure on attempt %d/%d: %v", attempt+1, c.maxRetries+1, err)
		lastErr = err
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, url string, body []byte, responsesAPI bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.do(req)
	if err != nil {
		return "", &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &transportError{err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &httpError{
			status:     resp.StatusCode,
			message:    upstreamMessage(data),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if responsesAPI {
		return parseResponsesBody(data)
	}
	return parseChatBody(data)
}

func (c *Client) buildBody(messages []Message, contract *contracts.Contract, shape requestShape) ([]byte, error) {
	m := map[string]any{"model": c.model}
	if shape.useResponses {
		m["input"] = messages
		if c.maxTokens > 0 {
			m["max_output_tokens"] = c.maxTokens
		}
		if c.effort != config.EffortNone && c.effort != "" {
			m["reasoning"] = map[string]any{"effort": string(c.effort)}
		}
		if contract != nil && !shape.dropFormat {
			m["text"] = map[string]any{"format": map[string]any{
				"type":   "json_schema",
				"name":   contract.Name,
				"schema": json.RawMessage(contract.Schema),
				"strict": true,
			}}
		}
	} else {
		m["messages"] = messages
		if c.maxTokens > 0 {
			m[shape.tokenField] = c.maxTokens
		}
		if c.effort != config.EffortNone && c.effort != "" {
			m["reasoning_effort"] = string(c.effort)
		}
		if contract != nil && !shape.dropFormat {
			m["response_format"] = map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   contract.Name,
					"schema": json.RawMessage(contract.Schema),
					"strict": true,
				},
			}
		}
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return body, nil
}

func parseChatBody(data []byte) (string, error) {
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func parseResponsesBody(data []byte) (string, error) {
	var out struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding responses body: %w", err)
	}
	if out.OutputText != "" {
		return out.OutputText, nil
	}
	var b strings.Builder
	for _, item := range out.Output {
		for _, part := range item.Content {
			if part.Type == "output_text" || part.Type == "text" {
				b.WriteString(part.Text)
			}
		}
	}
	if b.Len() == 0 {
		return "", errors.New("responses body has no output text")
	}
	return b.String(), nil
}

func upstreamMessage(data []byte) string {
	var out struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &out); err == nil && out.Error.Message != "" {
		return out.Error.Message
	}
	const limit = 200
	if len(data) > limit {
		data = data[:limit]
	}
	return string(data)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// sleepBackoff waits 2^(attempt-1) seconds, or the server-supplied retry
// delay when one accompanied the last failure.
func sleepBackoff(ctx context.Context, attempt int, lastErr error) error {
	delay := time.Duration(1<<(attempt-1)) * time.Second
	var he *httpError
	if errors.As(lastErr, &he) && he.retryAfter > 0 {
		delay = he.retryAfter
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
