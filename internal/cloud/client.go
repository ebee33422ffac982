// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hustlesynth/synthchat/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout is the timeout for unary completion requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps the unary response body read (10MB).
	MaxResponseSize = 10 * 1024 * 1024

	// chatPath is the completion endpoint relative to a provider base URL.
	chatPath = "/api/chat"
)

var (
	// Shared HTTP client with connection pooling for unary requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests.
	// No timeout; the request lifetime is controlled via context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// ERRORS
// =============================================================================

// APIError is a non-2xx reply from a completion backend. Message is the
// backend's own message text, surfaced verbatim.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chat API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("chat API error (HTTP %d)", e.Status)
}

// apiErrorResponse is the error body shape: {"message": "..."}.
type apiErrorResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the completion request body. The JSON field names are
// the wire contract with all three backends.
type ChatRequest struct {
	Model       string          `json:"model"`
	Messages    []model.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream"`
	APIKey      string          `json:"api_key"`
}

// ChatResponse is the unary completion reply body.
type ChatResponse struct {
	Content string `json:"content"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one completion backend. It is safe for concurrent use;
// the underlying HTTP clients are shared and pooled across all Clients.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	verbose      bool
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   sharedHTTPClient,
		streamClient: sharedStreamingClient,
	}
}

// WithVerbose enables request/response logging. API keys never appear
// in the log output.
func (c *Client) WithVerbose(v bool) *Client {
	c.verbose = v
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat performs a unary completion request and returns the reply text.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	req.Stream = false

	resp, err := c.send(ctx, req, c.httpClient, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var reply ChatResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return reply.Content, nil
}

// ChatStream performs a streaming completion request. onUpdate receives
// the full accumulated reply text after each parsed frame. The complete
// reply is returned once the stream finishes.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, onUpdate func(accumulated string)) (string, error) {
	req.Stream = true

	resp, err := c.send(ctx, req, c.streamClient, "text/event-stream")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	reader := NewStreamReader(resp.Body)
	return reader.Consume(ctx, onUpdate)
}

// send marshals and posts the request, converting non-2xx replies into
// *APIError. The returned response body is the caller's to close.
func (c *Client) send(ctx context.Context, req ChatRequest, client *http.Client, accept string) (*http.Response, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + chatPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if accept != "" {
		httpReq.Header.Set("Accept", accept)
		httpReq.Header.Set("Cache-Control", "no-cache")
	}

	c.logRequest(req)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		resp.Body.Close()
		c.logResponse(resp.StatusCode)
		return nil, errorFromResponse(resp.StatusCode, body)
	}

	c.logResponse(resp.StatusCode)
	return resp, nil
}

// errorFromResponse builds an *APIError from a non-2xx body, surfacing
// the backend's {message} verbatim when present.
func errorFromResponse(status int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return &APIError{Status: status, Message: apiErr.Message}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}

// logRequest logs an outgoing request with the API key masked.
func (c *Client) logRequest(req ChatRequest) {
	if !c.verbose {
		return
	}
	log.Printf("cloud: POST %s%s model=%s messages=%d stream=%v key=%s",
		c.baseURL, chatPath, req.Model, len(req.Messages), req.Stream, maskKey(req.APIKey))
}

// logResponse logs an incoming response status.
func (c *Client) logResponse(status int) {
	if !c.verbose {
		return
	}
	log.Printf("cloud: response HTTP %d", status)
}

// maskKey hides key material while still showing whether one was sent.
func maskKey(key string) string {
	if key == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[set, length=%d]", len(key))
}
