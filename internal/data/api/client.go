package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
)

const opFetchUsage = "fetch usage"

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 1 << 20

// Client fetches usage readings from the metering endpoint
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a usage client for baseURL with a bounded request timeout
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultAPIBaseURL
	}
	if timeout <= 0 {
		timeout = constants.DefaultAPITimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: constants.UserAgent(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// usageWindow mirrors the wire shape; resets_at may be null
type usageWindow struct {
	Utilization float64 `json:"utilization"`
	ResetsAt    *string `json:"resets_at"`
}

type usageResponse struct {
	FiveHour *usageWindow `json:"five_hour"`
	SevenDay *usageWindow `json:"seven_day"`
}

// FetchUsage performs one authenticated GET. There is no retry; failures are
// returned as model.ErrTransport or model.ErrDecode.
func (c *Client) FetchUsage(ctx context.Context, orgID, sessionKey string) (model.UsageSnapshot, error) {
	if orgID == "" || sessionKey == "" {
		return model.UsageSnapshot{}, model.NewError(model.ErrCredentialsMissing, opFetchUsage, nil)
	}

	endpoint := fmt.Sprintf("%s/organizations/%s/usage", c.baseURL, url.PathEscape(orgID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.UsageSnapshot{}, model.NewError(model.ErrTransport, opFetchUsage, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Cookie", "sessionKey="+sessionKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.LogDebugf("Usage request failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return model.UsageSnapshot{}, model.NewError(model.ErrTransport, opFetchUsage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		util.LogDebugf("Unexpected HTTP status code: %d", resp.StatusCode)
		return model.UsageSnapshot{}, model.NewError(model.ErrTransport, opFetchUsage,
			&StatusError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.UsageSnapshot{}, model.NewError(model.ErrTransport, opFetchUsage, fmt.Errorf("failed to read response body: %w", err))
	}

	snapshot, err := Decode(body)
	if err != nil {
		return model.UsageSnapshot{}, model.NewError(model.ErrDecode, opFetchUsage, err)
	}

	util.LogDebugf("Fetched usage in %s", time.Since(start).Round(time.Millisecond))
	return snapshot, nil
}

// Decode parses a usage response body. Absent windows stay nil and a null
// resets_at becomes "".
func Decode(body []byte) (model.UsageSnapshot, error) {
	var raw usageResponse
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return model.UsageSnapshot{}, fmt.Errorf("failed to parse usage response: %w", err)
	}
	return model.UsageSnapshot{
		Session: raw.FiveHour.toModel(),
		Weekly:  raw.SevenDay.toModel(),
	}, nil
}

func (w *usageWindow) toModel() *model.UsageWindow {
	if w == nil {
		return nil
	}
	out := &model.UsageWindow{Utilization: w.Utilization}
	if w.ResetsAt != nil {
		out.ResetsAt = *w.ResetsAt
	}
	return out
}

// StatusError reports a non-2xx response
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %s", e.Status)
}
