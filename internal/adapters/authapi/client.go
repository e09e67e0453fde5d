package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	domainsession "github.com/j26/auth-demo/internal/domain/session"
	"github.com/j26/auth-demo/internal/observability/metrics"
	"github.com/j26/auth-demo/internal/observability/statsd"
	"github.com/j26/auth-demo/internal/ports"
	"golang.org/x/net/publicsuffix"
)

// maxStatusBody caps how much of a status response is read.
const maxStatusBody = 1 << 20

// Ensure compile-time conformance to ports.
var (
	_ ports.StatusClient = (*Client)(nil)
	_ ports.CookieReader = (*Client)(nil)
)

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	// BaseURL is the origin hosting the /auth/* endpoints.
	BaseURL     string
	UserPath    string
	RefreshPath string
	Timeout     time.Duration

	// Transport overrides the HTTP transport (tests, proxies).
	Transport http.RoundTripper
	Metrics   statsd.Sink
	Logger    *slog.Logger
}

// Client calls the authentication service and keeps the cookies it sets in a
// jar, the way a browser would for a same-origin page.
type Client struct {
	base       *url.URL
	userURL    string
	refreshURL string
	http       *http.Client
	jar        http.CookieJar
	metrics    statsd.Sink
	logger     *slog.Logger

	receivedMu sync.Mutex
	received   []*http.Cookie
}

// NewClient constructs a Client with an empty public-suffix aware cookie jar.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse auth service url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("auth service url must be http or https, got %q", opts.BaseURL)
	}
	if base.Host == "" {
		return nil, errors.New("auth service url must include a host")
	}
	base.Path, base.RawQuery, base.Fragment = "", "", ""

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Discard
	}

	c := &Client{
		base:       base,
		userURL:    base.ResolveReference(&url.URL{Path: pathOr(opts.UserPath, "/auth/user")}).String(),
		refreshURL: base.ResolveReference(&url.URL{Path: pathOr(opts.RefreshPath, "/auth/refresh")}).String(),
		jar:        jar,
		metrics:    sink,
		logger:     logger,
	}
	c.http = &http.Client{
		Jar:       jar,
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
		// Redirects point the browser at the login UI; a background call must not follow them.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	return c, nil
}

func pathOr(p, fallback string) string {
	if strings.TrimSpace(p) == "" {
		return fallback
	}
	return p
}

// BaseURL returns the service origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// SeedCookies places cookies (e.g., forwarded from a browser request) in the jar.
func (c *Client) SeedCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	seeded := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		if ck == nil || ck.Name == "" {
			continue
		}
		seeded = append(seeded, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.jar.SetCookies(c.base, seeded)
}

// SeedCookieHeader parses a raw Cookie header ("a=1; b=2") into the jar.
func (c *Client) SeedCookieHeader(header string) error {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return fmt.Errorf("parse cookie header: %w", err)
	}
	c.SeedCookies(cookies)
	return nil
}

// Cookie returns the value of a cookie the jar would send to the service.
func (c *Client) Cookie(name string) (string, bool) {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}

// ReceivedCookies returns every cookie the service set during this client's lifetime.
func (c *Client) ReceivedCookies() []*http.Cookie {
	c.receivedMu.Lock()
	defer c.receivedMu.Unlock()
	out := make([]*http.Cookie, len(c.received))
	copy(out, c.received)
	return out
}

type userResponse struct {
	User json.RawMessage `json:"user"`
}

// FetchUser calls GET <user path> and returns the "user" member, nil when null.
func (c *Client) FetchUser(ctx context.Context) (json.RawMessage, error) {
	start := time.Now()
	user, err := c.fetchUser(ctx)
	metrics.EmitAuthCall(c.metrics, metrics.AuthCallMetric{
		Operation: metrics.OperationFetchUser,
		Duration:  time.Since(start),
		Err:       err,
	})
	return user, err
}

func (c *Client) fetchUser(ctx context.Context) (json.RawMessage, error) {
	const op = "fetch user"
	resp, err := c.get(ctx, c.userURL)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Operation: op, Err: err}
	}
	defer closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindStatus, Operation: op, StatusCode: resp.StatusCode}
	}

	var body userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStatusBody)).Decode(&body); err != nil {
		return nil, &Error{Kind: KindMalformed, Operation: op, StatusCode: resp.StatusCode, Err: err}
	}
	return domainsession.NormalizeUser(body.User), nil
}

// Refresh calls GET <refresh path>. Any non-error status below 400 counts as
// done, including a redirect the service may answer with.
func (c *Client) Refresh(ctx context.Context) error {
	start := time.Now()
	err := c.refresh(ctx)
	metrics.EmitAuthCall(c.metrics, metrics.AuthCallMetric{
		Operation: metrics.OperationRefresh,
		Duration:  time.Since(start),
		Err:       err,
	})
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	const op = "refresh"
	resp, err := c.get(ctx, c.refreshURL)
	if err != nil {
		return &Error{Kind: KindNetwork, Operation: op, Err: err}
	}
	defer closeBody(resp.Body)
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxStatusBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return &Error{Kind: KindStatus, Operation: op, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if set := resp.Cookies(); len(set) > 0 {
		c.receivedMu.Lock()
		c.received = append(c.received, set...)
		c.receivedMu.Unlock()
		c.logger.DebugContext(ctx, "auth service set cookies", "url", target, "count", len(set))
	}
	return resp, nil
}

func closeBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	_ = body.Close()
}
