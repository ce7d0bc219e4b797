// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient talks JSON over HTTP to the marketplace backend.
// Client is session-agnostic; SessionClient attaches the admin bearer
// token and reacts to 401 answers.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client defaults.
const (
	DefaultTimeout   = 15 * time.Second
	MaxResponseBytes = 4 << 20 // 4MB
	MaxErrorBytes    = 16 << 10
	DefaultUserAgent = "StayDesk/1.0"
	RequestIDHeader  = "X-Request-ID"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64
	Burst     int
	UserAgent string
	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Request describes one backend call.
type Request struct {
	Method string
	// Path is relative to the base URL; segments must already be escaped.
	Path  string
	Query url.Values
	Body  any
	Token string
}

// Doer performs backend calls. Both Client and SessionClient implement it.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Client is the backend transport.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

// New creates a Client for the backend at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base URL must be http or https, got %q", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		http:      httpClient,
		limiter:   limiter,
		userAgent: ua,
		logger:    logger,
	}, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	u := c.base.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// Do sends req and decodes a successful JSON body into out (which may be
// nil). Failures are always returned as *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	fail := func(kind Kind, status int, msg string, err error) error {
		return &Error{Kind: kind, Status: status, Method: method, Path: req.Path, Message: msg, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(KindNetwork, 0, "rate limit wait aborted", err)
		}
	}

	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return fail(KindValidation, 0, "invalid request path", err)
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fail(KindValidation, 0, "encoding request body", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fail(KindValidation, 0, "creating request", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("backend request failed",
			"method", method, "path", req.Path, "request_id", requestID, "error", err)
		return fail(KindNetwork, 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend request",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBytes))
		var env errorEnvelope
		msg := ""
		if json.Unmarshal(raw, &env) == nil {
			msg = env.text()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fail(kindForStatus(resp.StatusCode), resp.StatusCode, msg, nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return fail(KindNetwork, resp.StatusCode, "reading response", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	// Some endpoints answer 200 with {"success": false}.
	var head struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fail(KindDecode, resp.StatusCode, "invalid JSON response", err)
	}
	if head.Success != nil && !*head.Success {
		msg := head.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return fail(KindValidation, resp.StatusCode, msg, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(KindDecode, resp.StatusCode, "decoding response", err)
	}
	return nil
}
