package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// hostRules stores parsed robots.txt data for one host. A nil data field
// means every path is allowed.
type hostRules struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// RobotsChecker fetches and caches robots.txt rules per scheme and host.
type RobotsChecker struct {
	client   *http.Client
	timeout  time.Duration
	cache    sync.Map // "scheme://host" -> *hostRules
	cacheTTL time.Duration
}

// NewRobotsChecker creates a RobotsChecker that fetches with client, giving
// each fetch at most timeout.
func NewRobotsChecker(client *http.Client, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		client:   client,
		timeout:  timeout,
		cacheTTL: time.Hour,
	}
}

// Allowed reports whether rawURL may be requested by userAgent.
// Fetch and parse errors result in allow-all; the error is returned for
// diagnostics only.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL, userAgent string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return true, nil
	}
	origin := parsed.Scheme + "://" + parsed.Host

	if cached, ok := r.cache.Load(origin); ok {
		entry := cached.(*hostRules)
		if time.Since(entry.fetchedAt) < r.cacheTTL {
			return entry.allows(parsed.Path, userAgent), nil
		}
	}

	entry, err := r.fetch(ctx, origin)
	r.cache.Store(origin, entry)
	return entry.allows(parsed.Path, userAgent), err
}

func (r *RobotsChecker) fetch(ctx context.Context, origin string) (*hostRules, error) {
	allowAll := &hostRules{fetchedAt: time.Now()}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return allowAll, fmt.Errorf("create robots.txt request for %s: %w", origin, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return allowAll, fmt.Errorf("fetch robots.txt for %s: %w", origin, err)
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return allowAll, fmt.Errorf("read robots.txt body for %s: %w", origin, readErr)
	}

	// 404 and 5xx: fail open
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		return allowAll, nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return allowAll, fmt.Errorf("parse robots.txt for %s: %w", origin, err)
	}
	return &hostRules{data: data, fetchedAt: allowAll.fetchedAt}, nil
}

func (h *hostRules) allows(path, userAgent string) bool {
	if h.data == nil {
		return true
	}
	if path == "" {
		path = "/"
	}
	return h.data.TestAgent(path, userAgent)
}
