// Package backend is the HTTP client for the LATAM question-answering backend.
// Every call has a bounded wait and is never retried; failures are reported
// with the error kinds of this package.
package backend

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

	"github.com/charmbracelet/log"

	"github.com/buker/latamai/internal/chat"
)

// Default endpoint URLs and bounded waits.
const (
	DefaultChatURL        = "http://127.0.0.1:8000/v1/chat"
	DefaultSourcesURL     = "http://127.0.0.1:8000/v1/sources"
	DefaultChatTimeout    = 22 * time.Second
	DefaultSourcesTimeout = 14 * time.Second
)

// maxBodySize caps how much of a backend response is read.
const maxBodySize = 8 << 20

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	ChatURL        string
	SourcesURL     string
	ChatTimeout    time.Duration
	SourcesTimeout time.Duration
	HTTPClient     *http.Client
	Logger         *log.Logger
}

// Client calls the backend chat and sources endpoints.
type Client struct {
	chatURL        string
	sourcesURL     string
	chatTimeout    time.Duration
	sourcesTimeout time.Duration
	http           *http.Client
	logger         *log.Logger
}

// New creates a Client from opts.
func New(opts Options) *Client {
	c := &Client{
		chatURL:        opts.ChatURL,
		sourcesURL:     opts.SourcesURL,
		chatTimeout:    opts.ChatTimeout,
		sourcesTimeout: opts.SourcesTimeout,
		http:           opts.HTTPClient,
		logger:         opts.Logger,
	}
	if c.chatURL == "" {
		c.chatURL = DefaultChatURL
	}
	if c.sourcesURL == "" {
		c.sourcesURL = DefaultSourcesURL
	}
	if c.chatTimeout <= 0 {
		c.chatTimeout = DefaultChatTimeout
	}
	if c.sourcesTimeout <= 0 {
		c.sourcesTimeout = DefaultSourcesTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// ChatURL returns the configured chat endpoint.
func (c *Client) ChatURL() string { return c.chatURL }

// SourcesURL returns the configured sources endpoint.
func (c *Client) SourcesURL() string { return c.sourcesURL }

// ChatRaw sends req to the chat endpoint and returns the backend JSON as is.
// The question is trimmed; an empty question fails with ErrInvalidRequest
// without calling the backend. A nil history is sent as an empty list.
func (c *Client) ChatRaw(ctx context.Context, req chat.Request) (json.RawMessage, error) {
	req = chat.NewRequest(req.Question, req.Messages)
	if req.Question == "" {
		return nil, ErrInvalidRequest
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}
	return c.do(ctx, EndpointChat, http.MethodPost, c.chatURL, body, c.chatTimeout)
}

// Chat is ChatRaw decoded into a chat.Response.
func (c *Client) Chat(ctx context.Context, req chat.Request) (*chat.Response, error) {
	raw, err := c.ChatRaw(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp chat.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &UnavailableError{Endpoint: EndpointChat, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &resp, nil
}

// SourcesRaw fetches the data sources listing and returns the backend JSON
// as is.
func (c *Client) SourcesRaw(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, EndpointSources, http.MethodGet, c.sourcesURL, nil, c.sourcesTimeout)
}

// Sources is SourcesRaw decoded into a chat.SourcesResponse.
func (c *Client) Sources(ctx context.Context) (*chat.SourcesResponse, error) {
	raw, err := c.SourcesRaw(ctx)
	if err != nil {
		return nil, err
	}

	var resp chat.SourcesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &UnavailableError{Endpoint: EndpointSources, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, endpoint Endpoint, method, url string, body []byte, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("backend unreachable", "endpoint", endpoint, "timeout", IsTimeout(err), "err", err)
		return nil, &UnavailableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &UnavailableError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	c.logger.Debug("backend call", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Detail: truncateDetail(data)}
	}
	if !json.Valid(data) {
		return nil, &UnavailableError{Endpoint: endpoint, Err: errors.New("response is not valid JSON")}
	}
	return json.RawMessage(strings.TrimSpace(string(data))), nil
}
