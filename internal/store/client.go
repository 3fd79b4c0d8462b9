// Package store is the client for the downstream content store.
//
// The store owns the canonical record of imported documents and the
// environmental-issues taxonomy. Both reads happen over its JSON query
// API. Lookups never fail open: a store that cannot answer is an error
// the caller must surface, because treating it as "not found" would
// re-extract documents and spend backend calls on duplicates.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrUnreachable is returned when the store cannot be queried after
// retries.
var ErrUnreachable = errors.New("content store unreachable")

// EnvironmentalIssuesVocabulary is the taxonomy queried for the
// dynamic-enum vocabulary.
const EnvironmentalIssuesVocabulary = "environmental_issues"

// Client queries the content store's JSON API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	attempts   uint
	retryDelay time.Duration
}

// Config configures a store client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration // default 30s
	Attempts   uint          // default 3
	RetryDelay time.Duration // default 500ms
}

// NewClient creates a content store client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
	}
}

type countResponse struct {
	Count int `json:"count"`
}

type termsResponse struct {
	Terms []struct {
		Name string `json:"name"`
	} `json:"terms"`
}

// TitleExists reports whether a record with the given title already
// exists in the store.
func (c *Client) TitleExists(ctx context.Context, title string) (bool, error) {
	var out countResponse
	path := "/api/content/count?title=" + url.QueryEscape(title)
	if err := c.get(ctx, path, &out); err != nil {
		return false, fmt.Errorf("title lookup for %q: %w", title, err)
	}
	return out.Count >= 1, nil
}

// EnvironmentalIssues fetches the taxonomy terms for the
// environmental-issues vocabulary, in store order.
func (c *Client) EnvironmentalIssues(ctx context.Context) ([]string, error) {
	var out termsResponse
	path := "/api/taxonomy/" + EnvironmentalIssuesVocabulary + "/terms"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("taxonomy fetch: %w", err)
	}

	terms := make([]string, 0, len(out.Terms))
	for _, t := range out.Terms {
		if t.Name != "" {
			terms = append(terms, t.Name)
		}
	}
	return terms, nil
}

// get issues a GET with bounded retries on transport and server errors.
func (c *Client) get(ctx context.Context, path string, out any) error {
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			if c.apiKey != "" {
				req.Header.Set("Authorization", "Bearer "+c.apiKey)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("store error (status %d): %s", resp.StatusCode, body)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("store error (status %d): %s", resp.StatusCode, body))
			}

			if err := json.Unmarshal(body, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to decode store response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%v: %w", err, ErrUnreachable)
	}
	return nil
}
