package luma

import (
	"context"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	apperrors "github.com/caish-collective/luma-proxy/internal/errors"
	"github.com/caish-collective/luma-proxy/internal/events"
)

// DefaultEndpoint is Luma's public list-events endpoint.
const DefaultEndpoint = "https://api.lu.ma/public/v1/calendar/list-events"

const defaultTimeout = 15 * time.Second

// Listing is the decoded upstream response. Entries stay as raw maps so the
// proxy can echo every upstream field in its own envelope. Depending on the
// calendar the event list arrives under "entries" or "events" and the tag
// catalog under "tags" or "tag_list".
type Listing struct {
	Entries []events.RawEntry `json:"entries"`
	Events  []events.RawEntry `json:"events"`
	Tags    []any             `json:"tags"`
	TagList []any             `json:"tag_list"`
}

// EventEntries returns the event list under whichever key the upstream used.
func (l *Listing) EventEntries() []events.RawEntry {
	if len(l.Entries) > 0 {
		return l.Entries
	}
	return l.Events
}

// RawTags returns the tag catalog source, tags winning over tag_list when
// non-empty.
func (l *Listing) RawTags() []any {
	if len(l.Tags) > 0 {
		return l.Tags
	}
	return l.TagList
}

// Client fetches calendar listings from the Luma API.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the given credential and endpoint. An
// empty endpoint falls back to DefaultEndpoint.
func NewClient(apiKey, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the configured upstream URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ListEvents issues a single GET against the configured endpoint with the
// credential header. Non-2xx responses surface as upstream errors carrying
// the status code and body text; transport and decode failures surface as
// internal errors. One attempt, no retries.
func (c *Client) ListEvents(ctx context.Context) (*Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build upstream request", err)
	}
	req.Header.Set("x-luma-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewInternalError("upstream request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.NewUpstreamError(resp.StatusCode, string(body))
	}

	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, apperrors.NewInternalError("failed to decode upstream response", err)
	}
	return &listing, nil
}
