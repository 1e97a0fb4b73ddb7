// Package eventsapi fetches events from the service's own JSON API through
// the public base URL, the same way an external client would, and caches
// successful responses.
package eventsapi

import (
	"context"
	"devEvents/internal/cache"
	"devEvents/internal/lib/slug"
	"devEvents/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNotFound = errors.New("event not found")

type Client struct {
	baseURL   string
	http      *http.Client
	cache     cache.Cache
	listTTL   time.Duration
	detailTTL time.Duration
}

type Options struct {
	BaseURL   string
	HTTP      *http.Client
	Cache     cache.Cache
	ListTTL   time.Duration
	DetailTTL time.Duration
}

func New(opts Options) *Client {
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      httpClient,
		cache:     opts.Cache,
		listTTL:   opts.ListTTL,
		detailTTL: opts.DetailTTL,
	}
}

type listBody struct {
	Events []models.Event `json:"events"`
}

type detailBody struct {
	Event *models.Event `json:"event"`
}

// Events returns the homepage listing, newest first.
func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	const op = "client.eventsapi.Events"

	body, err := c.fetch(ctx, "api:events", c.baseURL+"/api/events", c.listTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var decoded listBody
	if err = json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	return decoded.Events, nil
}

// Event returns a single event. Any non-200 answer and a body without an
// event are reported as ErrNotFound.
func (c *Client) Event(ctx context.Context, rawSlug string) (*models.Event, error) {
	const op = "client.eventsapi.Event"

	s := slug.Normalize(rawSlug)
	if s == "" {
		return nil, ErrNotFound
	}

	body, err := c.fetch(ctx, "api:events:"+s, c.baseURL+"/api/events/"+url.PathEscape(s), c.detailTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var decoded detailBody
	if err = json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	if decoded.Event == nil {
		return nil, ErrNotFound
	}

	return decoded.Event, nil
}

func (c *Client) fetch(ctx context.Context, key, target string, ttl time.Duration) ([]byte, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if c.cache != nil && ttl > 0 {
		// A cache write failure only costs a refetch.
		_ = c.cache.Set(ctx, key, body, ttl)
	}

	return body, nil
}
