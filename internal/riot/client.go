package riot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"rankdelta/internal/metrics"
)

const (
	defaultMaxAttempts   = 3
	defaultBaseBackoff   = 600 * time.Millisecond
	defaultCourtesyDelay = 100 * time.Millisecond
	defaultHTTPTimeout   = 30 * time.Second
)

// Client is a retrying Riot API client. It is safe for concurrent use.
type Client struct {
	apiKey     string
	httpClient *http.Client
	endpoint   string // overrides every host when set

	maxAttempts   int
	baseBackoff   time.Duration
	courtesyDelay time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithEndpoint routes every request to one base URL instead of the
// regional/platform hosts (tests, proxies).
func WithEndpoint(base string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(base, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the total attempt count and the linear backoff step.
func WithRetry(maxAttempts int, base time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if base >= 0 {
			c.baseBackoff = base
		}
	}
}

// WithCourtesyDelay sets the pause after every request.
func WithCourtesyDelay(d time.Duration) Option {
	return func(c *Client) { c.courtesyDelay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new Riot API client
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("riot api key not set")
	}
	c := &Client{
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		maxAttempts:   defaultMaxAttempts,
		baseBackoff:   defaultBaseBackoff,
		courtesyDelay: defaultCourtesyDelay,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "riot")
	return c, nil
}

// Fetch GETs url and decodes a 200 JSON body into out.
//
// 403/401 fail with *AuthError and 404 with *NotFoundError, both without
// retry. 429 and 5xx gateway statuses are retried up to the attempt limit,
// sleeping max(Retry-After, base*attempt). Everything else, including
// exhausted retries, is an *UpstreamError.
func (c *Client) Fetch(ctx context.Context, u string, out any) error {
	defer c.pause(ctx)

	bo := &linearBackOff{base: c.baseBackoff}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)

	op := func() error {
		status, body, retryAfter, err := c.get(ctx, u)
		c.metrics.ObserveRequest(status)
		if err != nil {
			return &UpstreamError{URL: u, Err: err}
		}

		switch {
		case status == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return backoff.Permanent(&UpstreamError{
					Status: status, URL: u, Body: truncateBody(body), Err: err,
				})
			}
			return nil
		case status == http.StatusForbidden || status == http.StatusUnauthorized:
			return backoff.Permanent(&AuthError{Status: status, URL: u})
		case status == http.StatusNotFound:
			return backoff.Permanent(&NotFoundError{URL: u})
		case retryable(status):
			bo.retryAfter = retryAfter
			return &UpstreamError{Status: status, URL: u, Body: truncateBody(body)}
		default:
			return backoff.Permanent(&UpstreamError{Status: status, URL: u, Body: truncateBody(body)})
		}
	}

	notify := func(err error, wait time.Duration) {
		status := 0
		if ue, ok := err.(*UpstreamError); ok {
			status = ue.Status
		}
		c.metrics.ObserveRetry(status)
		c.logger.Warn("retrying request",
			"url", shortURL(u), "status", status, "attempt", bo.attempt, "max_attempts", c.maxAttempts,
			"sleep", wait.Round(10*time.Millisecond))
	}

	return backoff.RetryNotify(op, policy, notify)
}

func (c *Client) get(ctx context.Context, u string) (status int, body []byte, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	if s, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && s > 0 {
		retryAfter = time.Duration(s) * time.Second
	}
	return resp.StatusCode, body, retryAfter, nil
}

func (c *Client) pause(ctx context.Context) {
	if c.courtesyDelay <= 0 {
		return
	}
	t := time.NewTimer(c.courtesyDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c *Client) regionalURL(platform string) string {
	if c.endpoint != "" {
		return c.endpoint
	}
	return "https://" + RoutingForPlatform(platform) + ".api.riotgames.com"
}

func (c *Client) platformURL(platform string) string {
	if c.endpoint != "" {
		return c.endpoint
	}
	return PlatformURL(platform)
}

// PlatformURL is the platform host for ladder and status endpoints.
func PlatformURL(platform string) string {
	return "https://" + strings.ToLower(platform) + ".api.riotgames.com"
}

// GetAccountByRiotID fetches account info by Riot ID (gameName#tagLine)
func (c *Client) GetAccountByRiotID(ctx context.Context, platform, gameName, tagLine string) (*Account, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionalURL(platform), url.PathEscape(gameName), url.PathEscape(tagLine))

	var account Account
	if err := c.Fetch(ctx, u, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// MatchIDQuery selects a window of a player's match history.
type MatchIDQuery struct {
	Start int
	Count int
	Queue int    // 0 = any
	Type  string // "ranked", "normal"...; empty = any
}

// GetMatchIDs fetches match IDs for a player, most recent first
func (c *Client) GetMatchIDs(ctx context.Context, platform, puuid string, q MatchIDQuery) ([]string, error) {
	v := url.Values{}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	if q.Queue > 0 {
		v.Set("queue", strconv.Itoa(q.Queue))
	}
	v.Set("start", strconv.Itoa(q.Start))
	if q.Count > 0 {
		v.Set("count", strconv.Itoa(q.Count))
	}
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s",
		c.regionalURL(platform), url.PathEscape(puuid), v.Encode())

	var ids []string
	if err := c.Fetch(ctx, u, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetMatch fetches match details
func (c *Client) GetMatch(ctx context.Context, platform, matchID string) (*Match, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionalURL(platform), url.PathEscape(matchID))

	var match Match
	if err := c.Fetch(ctx, u, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetLeagueEntries fetches one ladder page. A body that is not a JSON list
// is reported as an empty page.
func (c *Client) GetLeagueEntries(ctx context.Context, platform, queue, tier, division string, page int) ([]LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/%s/%s/%s?page=%d",
		c.platformURL(platform), queue, strings.ToUpper(tier), strings.ToUpper(division), page)

	var raw json.RawMessage
	if err := c.Fetch(ctx, u, &raw); err != nil {
		return nil, err
	}
	var entries []LeagueEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func shortURL(u string) string {
	if len(u) > 120 {
		return u[:120] + "..."
	}
	return u
}

// linearBackOff waits base*attempt, or the server's Retry-After when longer.
// One instance serves a single Fetch call.
type linearBackOff struct {
	base       time.Duration
	attempt    int
	retryAfter time.Duration
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	d := b.base * time.Duration(b.attempt)
	if b.retryAfter > d {
		d = b.retryAfter
	}
	b.retryAfter = 0
	return d
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
	b.retryAfter = 0
}
