package daemonctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vidscribe/internal/api"
)

// ErrServerUnavailable indicates the HTTP API could not be reached.
var ErrServerUnavailable = errors.New("vidscribe server unavailable")

// Client talks to a running server.
type Client struct {
	base *url.URL
	http *http.Client
}

// HistoryQuery filters /api/history.
type HistoryQuery struct {
	Limit  int
	Kind   string
	Status string
}

// NewClient builds a client for the configured bind address. Wildcard hosts are
// dialed on loopback.
func NewClient(bind string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, errors.New("api bind address is empty")
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse api bind: %w", err)
	}
	host, port, err := net.SplitHostPort(base.Host)
	if err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		base.Host = net.JoinHostPort("127.0.0.1", port)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// BaseURL returns the root URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Health reports whether /health answers.
func (c *Client) Health(ctx context.Context) error {
	var payload api.HealthResponse
	if err := c.getJSON(ctx, "/health", nil, &payload); err != nil {
		return err
	}
	if payload.Status != "healthy" {
		return fmt.Errorf("unexpected health status %q", payload.Status)
	}
	return nil
}

// Status fetches /api/status.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var payload api.DaemonStatus
	err := c.getJSON(ctx, "/api/status", nil, &payload)
	return payload, err
}

// History fetches /api/history.
func (c *Client) History(ctx context.Context, q HistoryQuery) ([]api.HistoryEntry, error) {
	values := url.Values{}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if kind := strings.TrimSpace(q.Kind); kind != "" {
		values.Set("kind", kind)
	}
	if status := strings.TrimSpace(q.Status); status != "" {
		values.Set("status", status)
	}
	var payload api.HistoryListResponse
	if err := c.getJSON(ctx, "/api/history", values, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	if c == nil {
		return ErrServerUnavailable
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: values.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// IsUnavailable reports whether err means the server could not be reached.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrServerUnavailable) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
