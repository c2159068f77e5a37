// Package gas is the client of the spreadsheet-backed script endpoint that
// publishes attendee profiles and collects after-party votes.
package gas

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

const (
	actionGetVoteStatus = "getVoteStatus"
	actionVote          = "vote"

	placeholderMarker = "YOUR_SCRIPT_ID"
	defaultUserAgent  = "borderless/1.0"
)

// IsPlaceholderURL reports whether raw is unset or still the template value,
// in which case the client runs in demo mode.
func IsPlaceholderURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || strings.Contains(raw, placeholderMarker)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client implements ports.VoteGateway and ports.ProfileSource.
type Client struct {
	baseURL    string
	demo       bool
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger

	mu        sync.Mutex
	lastError string
	// demoVotes echoes votes submitted in demo mode back as my_status.
	demoVotes map[domain.MemberID]domain.VoteChoice
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSpace(baseURL),
		demo:       IsPlaceholderURL(baseURL),
		httpClient: http.DefaultClient,
		userAgent:  defaultUserAgent,
		logger:     slog.Default(),
		demoVotes:  make(map[domain.MemberID]domain.VoteChoice),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.demo {
		c.logger.Info("using demo data (script url not configured)")
	}
	return c
}

// Demo reports whether the client serves fixed demo payloads.
func (c *Client) Demo() bool {
	return c.demo
}

// get issues a GET against the endpoint and returns the raw body of a 2xx
// response. Anything else is a *domain.TransportError.
func (c *Client) get(ctx context.Context, op string, params url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("invalid endpoint url: %w", err)}
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}

func (c *Client) setLastError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = msg
}

// LastError returns the reason the most recent SubmitVote returned false.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func memberParam(id domain.MemberID) string {
	return strconv.FormatInt(int64(id), 10)
}
