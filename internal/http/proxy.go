package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"
)

// AuthProxyOptions configures the same-origin proxy to the authentication service.
type AuthProxyOptions struct {
	Upstream string
	// PreserveHost forwards the incoming Host header instead of the upstream host.
	PreserveHost bool
	Timeout      time.Duration
	// CookieDomain rewrites the Domain of cookies set by the upstream.
	CookieDomain string
	Logger       *slog.Logger
}

// NewAuthProxy returns a reverse proxy that mounts the authentication service
// under this origin so the browser shares its cookies with the demo page.
// Redirects and Set-Cookie headers pass through to the browser.
func NewAuthProxy(opts AuthProxyOptions) (http.Handler, error) {
	target, err := url.Parse(opts.Upstream)
	if err != nil {
		return nil, fmt.Errorf("parse auth proxy upstream: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("auth proxy upstream must be an absolute URL")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if opts.PreserveHost {
				pr.Out.Host = pr.In.Host
			}
			if id := RequestIDFromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set(RequestIDHeader, id)
			}
		},
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: opts.Timeout,
		},
		ModifyResponse: func(resp *http.Response) error {
			if opts.CookieDomain == "" {
				return nil
			}
			cookies := resp.Cookies()
			if len(cookies) == 0 {
				return nil
			}
			resp.Header.Del("Set-Cookie")
			for _, c := range cookies {
				c.Domain = opts.CookieDomain
				resp.Header.Add("Set-Cookie", c.String())
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "auth proxy request failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
			WriteError(w, ErrorParams{
				Code:    http.StatusBadGateway,
				ErrCode: "auth_service_unavailable",
				Err:     errors.New("authentication service unavailable"),
			})
		},
	}
	return proxy, nil
}
