// Package api provides a typed client for the Mastodon REST API.
// Only the read-only endpoints the report generator needs are implemented.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageLimit is the page size used when paginating the admin
	// account roster. The server caps admin pages at 100 entries.
	DefaultPageLimit = 100
)

// SnapshotStore stores raw API response payloads keyed by instance and
// request. It is satisfied by cache.Cache; a nil store disables caching.
type SnapshotStore interface {
	// Put stores the payload for a request.
	Put(instance, request string, payload []byte) error

	// Get returns the stored payload and its fetch time for a request.
	// A store miss returns an error.
	Get(instance, request string) ([]byte, time.Time, error)
}

// Client issues authenticated GET requests against one Mastodon instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        zerolog.Logger

	snapshots SnapshotStore
	offline   bool
}

// Options configures a Client.
type Options struct {
	// Token is the bearer token. Empty means unauthenticated; the admin
	// roster and sometimes the timeline are unavailable without one.
	Token string

	// Timeout is the HTTP client timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// Logger receives request failures. The zero logger discards them.
	Logger zerolog.Logger

	// Snapshots, when non-nil, records every successful response body.
	Snapshots SnapshotStore

	// Offline serves all requests from Snapshots instead of the network.
	Offline bool
}

// NewClient creates a client for the given instance base URL.
func NewClient(instanceURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(instanceURL, "/"),
		token:      opts.Token,
		log:        opts.Logger,
		snapshots:  opts.Snapshots,
		offline:    opts.Offline,
	}
}

// BaseURL returns the normalized instance URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get fetches /api/v1/{endpoint} and decodes the JSON response into v.
// Failures are logged and returned; callers treat them as "data
// unavailable" rather than aborting the run.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	request := endpoint
	if len(params) > 0 {
		request += "?" + params.Encode()
	}

	if c.offline {
		return c.getSnapshot(request, v)
	}

	body, err := c.fetch(ctx, request)
	if err != nil {
		c.log.Warn().Str("endpoint", endpoint).Err(err).Msg("api request failed")
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		c.log.Warn().Str("endpoint", endpoint).Err(err).Msg("api response not decodable")
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	if c.snapshots != nil {
		if err := c.snapshots.Put(c.baseURL, request, body); err != nil {
			// Snapshot writes are best-effort; the report does not
			// depend on them.
			c.log.Debug().Str("endpoint", endpoint).Err(err).Msg("snapshot write failed")
		}
	}

	return nil
}

// fetch performs the HTTP GET and returns the raw response body.
func (c *Client) fetch(ctx context.Context, request string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/"+request, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", request, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", request, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned status %d", request, resp.StatusCode)
	}

	return body, nil
}

// getSnapshot serves a request from the snapshot store.
func (c *Client) getSnapshot(request string, v any) error {
	if c.snapshots == nil {
		return fmt.Errorf("offline mode requires a snapshot cache")
	}
	payload, fetchedAt, err := c.snapshots.Get(c.baseURL, request)
	if err != nil {
		c.log.Warn().Str("request", request).Err(err).Msg("no cached snapshot")
		return fmt.Errorf("cached snapshot for %s: %w", request, err)
	}
	c.log.Debug().Str("request", request).Time("fetched_at", fetchedAt).Msg("serving cached snapshot")
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode cached %s: %w", request, err)
	}
	return nil
}

// Instance fetches the instance metadata.
func (c *Client) Instance(ctx context.Context) (*Instance, error) {
	var info Instance
	if err := c.get(ctx, "instance", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Activity fetches the 12-week activity statistics.
func (c *Client) Activity(ctx context.Context) ([]ActivityWeek, error) {
	var weeks []ActivityWeek
	if err := c.get(ctx, "instance/activity", nil, &weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

// AdminAccounts fetches one page of the admin account roster.
// Requires an admin-scoped token.
func (c *Client) AdminAccounts(ctx context.Context, page, limit int) ([]AdminAccount, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var accounts []AdminAccount
	if err := c.get(ctx, "admin/accounts", params, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// FetchAllAccounts accumulates admin roster pages until the server returns
// an empty page, a page shorter than limit, or an error on a later page.
// Pages are processed strictly in fetch order; only a first-page failure
// reports the roster as unavailable.
func (c *Client) FetchAllAccounts(ctx context.Context, limit int) ([]AdminAccount, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	var accounts []AdminAccount
	for page := 1; ; page++ {
		batch, err := c.AdminAccounts(ctx, page, limit)
		if err != nil {
			// A failure on the first page means the roster is
			// unavailable. A later failure degrades like an empty
			// page: the pages already fetched are kept.
			if page == 1 {
				return nil, err
			}
			c.log.Warn().Int("page", page).Err(err).Msg("roster pagination stopped early")
			break
		}
		if len(batch) == 0 {
			break
		}
		accounts = append(accounts, batch...)
		if len(batch) < limit {
			break
		}
	}
	return accounts, nil
}

// LocalTimeline fetches one batch of recent local public statuses.
func (c *Client) LocalTimeline(ctx context.Context, limit int) ([]Status, error) {
	params := url.Values{}
	params.Set("local", "true")
	params.Set("limit", strconv.Itoa(limit))

	var statuses []Status
	if err := c.get(ctx, "timelines/public", params, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
