// Package api is the HTTP client for the remote chat and lead endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single request so an unresponsive service cannot
// hold the widget's send flag forever.
const DefaultTimeout = 30 * time.Second

const maxBodyBytes = 1 << 20

var log = grovelogging.NewLogger("grove-widget.api")

// Client talks to the assistant service rooted at BaseURL.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

// WithTimeout sets the request timeout of the default HTTP client.
// Zero or negative keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTP = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// New returns a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends one chat message. Failures are *HTTPError or *TransportError.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := c.post(ctx, "/chat", req)
	if err != nil {
		return nil, err
	}
	var resp ChatResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &TransportError{Op: "decode chat response", Err: fmt.Errorf("%w: empty body", ErrMalformedResponse)}
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: "decode chat response", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return &resp, nil
}

// SubmitLead sends a callback request. Only the status matters on success.
func (c *Client) SubmitLead(ctx context.Context, req LeadRequest) error {
	_, err := c.post(ctx, "/leads", req)
	return err
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	res, err := hc.Do(httpReq)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("request failed")
		return nil, &TransportError{Op: "POST " + path, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}

	log.WithFields(logrus.Fields{
		"path":     path,
		"status":   res.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("request completed")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Detail: parseDetail(body)}
	}
	return body, nil
}
