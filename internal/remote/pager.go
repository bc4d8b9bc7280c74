package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go-payouts/internal/shared/metrics"
)

// MaxPages caps a single LoadAll walk even when the server keeps handing
// out fresh cursors.
const MaxPages = 1000

var ErrTooManyPages = errors.New("remote: page limit reached")

// Page is one decoded list response.
type Page struct {
	Items []json.RawMessage
	Next  string
}

type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (Page, error)
}

// DecodePage accepts both list shapes the backend produces: a bare JSON
// array, or an envelope with "results" and a "next" cursor.
func DecodePage(body []byte) (Page, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return Page{}, nil
	}

	if body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return Page{}, fmt.Errorf("decode list: %w", err)
		}
		return Page{Items: items}, nil
	}

	var env struct {
		Results json.RawMessage `json:"results"`
		Next    *string         `json:"next"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, fmt.Errorf("decode envelope: %w", err)
	}

	var page Page
	if env.Next != nil {
		page.Next = *env.Next
	}
	if r := bytes.TrimSpace(env.Results); len(r) > 0 && r[0] == '[' {
		if err := json.Unmarshal(r, &page.Items); err != nil {
			return Page{}, fmt.Errorf("decode results: %w", err)
		}
	}
	return page, nil
}

// FetchPage implements PageFetcher over the backend client.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (Page, error) {
	target, err := c.URL(pageURL, nil)
	if err != nil {
		return Page{}, err
	}
	body, err := c.do(ctx, "GET", target, nil)
	if err != nil {
		return Page{}, err
	}
	return DecodePage(body)
}

// LoadAll walks the "next" cursor from startURL and returns every item of
// every page decoded as T. It stops when the cursor is empty, when a URL
// comes back a second time, or after MaxPages pages.
//
// Any failed page aborts the walk and nothing is returned: callers treat a
// failure as "no data", never as a partial list. Items that do not decode
// as T are skipped.
func LoadAll[T any](ctx context.Context, fetcher PageFetcher, startURL string) ([]T, error) {
	var out []T
	seen := make(map[string]struct{})
	next := startURL

	for next != "" {
		if _, ok := seen[next]; ok {
			break
		}
		if len(seen) >= MaxPages {
			return nil, fmt.Errorf("%w: %d pages from %s", ErrTooManyPages, MaxPages, startURL)
		}
		seen[next] = struct{}{}

		page, err := fetcher.FetchPage(ctx, next)
		if err != nil {
			metrics.PagesFetched.WithLabelValues("failed").Inc()
			return nil, err
		}
		metrics.PagesFetched.WithLabelValues("ok").Inc()

		for _, raw := range page.Items {
			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			out = append(out, item)
		}

		next = resolveNext(next, page.Next)
	}

	return out, nil
}

// resolveNext turns a relative cursor into an absolute one so the visited
// set compares like with like.
func resolveNext(current, next string) string {
	if next == "" {
		return ""
	}
	ref, err := url.Parse(next)
	if err != nil || ref.IsAbs() {
		return next
	}
	base, err := url.Parse(current)
	if err != nil || !base.IsAbs() {
		return next
	}
	return base.ResolveReference(ref).String()
}
