// Package client talks to the short link HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"madlib-maker/shared/models"
)

var (
	// ErrNotFound is returned by Expand when the service does not know the code.
	ErrNotFound = errors.New("short code not found")
	// ErrUnexpectedStatus is returned for any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status from short link service")
)

const (
	// DefaultTimeout bounds a single request to the service.
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "madlib-maker/1.0"
	maxErrorBody     = 4 << 10
)

// Client is a typed client for POST /shorten and GET /<code>.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewClient builds a Client for the service at apiURL. A non-positive timeout
// falls back to DefaultTimeout; a nil logger discards logs.
func NewClient(apiURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		logger:    logger.Named("ShortLinkClient"),
	}, nil
}

// Create stores data under a new short code and returns the code.
func (c *Client) Create(ctx context.Context, mode models.Mode, data models.StateRecord) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(models.ShortenRequest{Mode: mode.String(), Data: &data})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	var payload models.ShortenResponse
	if err := c.do(ctx, http.MethodPost, "/shorten", bytes.NewReader(body), &payload); err != nil {
		return "", err
	}
	if !models.ValidShortCode(payload.ShortCode) {
		return "", fmt.Errorf("%w: malformed short code %q", ErrUnexpectedStatus, payload.ShortCode)
	}
	return payload.ShortCode, nil
}

// Expand fetches the record stored under code. Returns ErrNotFound for unknown
// or expired codes.
func (c *Client) Expand(ctx context.Context, code string) (models.ShortLinkRecord, error) {
	if c == nil {
		return models.ShortLinkRecord{}, fmt.Errorf("client is nil")
	}
	if !models.ValidShortCode(code) {
		return models.ShortLinkRecord{}, fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	var payload models.ExpandResponse
	if err := c.do(ctx, http.MethodGet, "/"+code, nil, &payload); err != nil {
		return models.ShortLinkRecord{}, err
	}
	return models.ShortLinkRecord{Mode: payload.Mode, Data: payload.Data}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, dest any) error {
	reqURL := c.baseURL.JoinPath(path)
	log := c.logger.With(zap.String("method", method), zap.String("url", reqURL.String()))
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		log.Error("Failed to create short link HTTP request", zap.Error(err))
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("HTTP request to short link service failed", zap.Error(err))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		log.Debug("Short code not found")
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode >= 300 {
		detail := errorDetail(resp.Body)
		log.Warn("Received error response from short link service", zap.Int("status", resp.StatusCode), zap.String("detail", detail))
		return fmt.Errorf("%w: %s %s returned %d%s", ErrUnexpectedStatus, method, path, resp.StatusCode, detail)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		log.Error("Failed to decode short link service response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorDetail extracts the error field of a JSON error body, if any.
func errorDetail(r io.Reader) string {
	var resp models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&resp); err != nil || resp.Error == "" {
		return ""
	}
	if resp.Message != "" {
		return fmt.Sprintf(" (%s: %s)", resp.Error, resp.Message)
	}
	return fmt.Sprintf(" (%s)", resp.Error)
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		return nil, fmt.Errorf("short link service url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse short link service url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("short link service url %q has no host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
