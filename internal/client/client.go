// Package client talks to the remote chat endpoint over HTTP/JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zhouzirui/daily-hug/internal/model/chat"
)

const (
	greetPath = "/greet"
	chatPath  = "/chat"

	// maxErrorBody bounds how much of a failed response body is kept in errors.
	maxErrorBody = 512
)

// ErrMissingResponse is the cause used when a 2xx body lacks its reply text.
var ErrMissingResponse = errors.New("response field missing")

// greetBody and exchangeBody mirror the wire shapes with pointers so that an
// absent key can be told apart from an empty reply.
type greetBody struct {
	Response *string `json:"response"`
}

type exchangeBody struct {
	Response *struct {
		Response *string `json:"response"`
	} `json:"response"`
}

// GreetingError reports a failed greeting call.
type GreetingError struct {
	Cause error
}

func (e *GreetingError) Error() string {
	return "greeting request failed: " + e.Cause.Error()
}

func (e *GreetingError) Unwrap() error {
	return e.Cause
}

// ExchangeError reports a failed turn exchange.
type ExchangeError struct {
	Cause error
}

func (e *ExchangeError) Error() string {
	return "exchange request failed: " + e.Cause.Error()
}

func (e *ExchangeError) Unwrap() error {
	return e.Cause
}

// StatusError is the cause used when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Config holds the endpoint location and request timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig points at a locally running endpoint.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Timeout: 60 * time.Second,
	}
}

// Client implements the controller's Endpoint over HTTP.
//
// The Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. Zero config values fall back to DefaultConfig.
func New(cfg Config) *Client {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Greet fetches the persona's opening line.
func (c *Client) Greet(ctx context.Context, req chat.GreetRequest) (string, error) {
	var resp greetBody
	if err := c.post(ctx, greetPath, req, &resp); err != nil {
		return "", &GreetingError{Cause: err}
	}
	if resp.Response == nil {
		return "", &GreetingError{Cause: ErrMissingResponse}
	}
	return *resp.Response, nil
}

// Exchange sends one user message with its context window and returns the reply.
func (c *Client) Exchange(ctx context.Context, req chat.ExchangeRequest) (string, error) {
	if req.History == nil {
		req.History = []chat.HistoryEntry{}
	}

	var resp exchangeBody
	if err := c.post(ctx, chatPath, req, &resp); err != nil {
		return "", &ExchangeError{Cause: err}
	}
	if resp.Response == nil || resp.Response.Response == nil {
		return "", &ExchangeError{Cause: ErrMissingResponse}
	}
	return *resp.Response.Response, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
