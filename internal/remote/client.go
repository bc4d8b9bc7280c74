// Package remote talks to the accounting backend: a thin JSON client and the
// paginated collection loader built on top of it.
package remote

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

	"go-payouts/internal/shared/contextutil"

	"go.uber.org/zap"
)

const maxErrorBody = 512

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Backend is the part of Client the repositories depend on.
type Backend interface {
	PageFetcher
	URL(ref string, query url.Values) (string, error)
	Get(ctx context.Context, ref string, query url.Values, out any) error
	Post(ctx context.Context, ref string, payload any, out any) error
	Put(ctx context.Context, ref string, payload any, out any) error
}

type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger *zap.Logger
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("remote.client")
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		logger: zap.L().Named("remote.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL resolves ref against the backend base and merges query into it.
// Absolute refs (such as "next" cursors) are kept as they are; relative
// ones are appended to the base path.
func (c *Client) URL(ref string, query url.Values) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}

	var u url.URL
	if parsed.IsAbs() {
		u = *parsed
	} else {
		u = *c.base
		u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(parsed.Path, "/")
		u.RawPath = ""
		u.RawQuery = parsed.RawQuery
	}

	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			q.Del(k)
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) Get(ctx context.Context, ref string, query url.Values, out any) error {
	target, err := c.URL(ref, query)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) Post(ctx context.Context, ref string, payload any, out any) error {
	return c.send(ctx, http.MethodPost, ref, payload, out)
}

func (c *Client) Put(ctx context.Context, ref string, payload any, out any) error {
	return c.send(ctx, http.MethodPut, ref, payload, out)
}

func (c *Client) send(ctx context.Context, method, ref string, payload any, out any) error {
	target, err := c.URL(ref, nil)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}
	body, err := c.do(ctx, method, target, raw)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			append(contextutil.LogFields(ctx),
				zap.String("method", method),
				zap.String("url", target),
				zap.Error(err),
			)...,
		)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, target, err)
	}

	c.logger.Debug("backend request",
		append(contextutil.LogFields(ctx),
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.Duration("took", time.Since(started)),
		)...,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
