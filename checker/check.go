// Package checker verifies that URLs found in source documents are reachable
// and runs batches of checks sequentially or on a bounded worker pool.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/lukemcguire/linkbadger/eventlog"
	"github.com/lukemcguire/linkbadger/logging"
	"github.com/lukemcguire/linkbadger/result"
	"github.com/lukemcguire/linkbadger/urlutil"
)

// Checker probes single URLs and records every outcome in a Journal.
type Checker struct {
	cfg      Config
	client   *http.Client
	journal  *eventlog.Journal
	robots   *RobotsChecker
	probes   sync.Map // URL -> probeResult
	inflight singleflight.Group
	logger   *slog.Logger
}

// Option customises a Checker.
type Option func(*Checker)

// WithHTTPClient replaces the HTTP client used for probes and robots.txt.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// WithLogger replaces the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) { c.logger = logger }
}

// New creates a Checker that records outcomes in journal.
func New(cfg Config, journal *eventlog.Journal, opts ...Option) (*Checker, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Checker{
		cfg:     cfg.withDefaults(),
		client:  &http.Client{Jar: jar},
		journal: journal,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.New("checker")
	}
	if c.cfg.RespectRobots {
		// Separate budget for robots.txt with a shorter timeout
		c.robots = NewRobotsChecker(c.client, 5*time.Second)
	}
	return c, nil
}

// Config returns the effective configuration after defaults were applied.
func (c *Checker) Config() Config {
	return c.cfg
}

// Check verifies one URL found in file and records the outcome.
//
// URLs ending in a skip suffix are recorded as skipped without any network
// call. https URLs get one recorded probe. http URLs get one unrecorded probe;
// if it does not succeed the https form of the URL is probed and that outcome
// is the one recorded. Other schemes are not probed and produce no outcome,
// which is reported by a false second return value.
func (c *Checker) Check(ctx context.Context, rawURL, file string) (result.Outcome, bool) {
	if suffix, ok := urlutil.MatchSuffix(rawURL, c.cfg.SkipSuffixes); ok {
		return c.skip(rawURL, file, "ends with "+suffix), true
	}

	if !urlutil.IsHTTPScheme(rawURL) {
		c.logger.Debug("scheme not probed", slog.String("url", rawURL), slog.String("file", file))
		return result.Outcome{}, false
	}
	if reason, skip := c.disallowed(ctx, rawURL); skip {
		return c.skip(rawURL, file, reason), true
	}

	o := classify(c.sharedProbe(ctx, rawURL), rawURL, file)
	if urlutil.IsHTTPS(rawURL) || o.Kind == result.KindWorking {
		c.record(o)
		return o, true
	}

	httpsURL, ok := urlutil.UpgradeToHTTPS(rawURL)
	if !ok {
		// http scheme without the "http://" form; nothing to substitute
		c.record(o)
		return o, true
	}
	c.logger.Debug("http probe failed, retrying over https",
		slog.String("url", rawURL), slog.String("file", file), slog.String("first_outcome", string(o.Kind)))
	c.journal.Fallback(file, httpsURL)
	o = classify(c.sharedProbe(ctx, httpsURL), httpsURL, file)
	c.record(o)
	return o, true
}

func (c *Checker) skip(rawURL, file, reason string) result.Outcome {
	c.journal.Skipped(file, rawURL, reason)
	return result.Outcome{Kind: result.KindSkipped, File: file, URL: rawURL, Reason: reason}
}

// disallowed consults robots.txt when RespectRobots is set. Lookup errors are
// treated as allow-all.
func (c *Checker) disallowed(ctx context.Context, rawURL string) (string, bool) {
	if c.robots == nil {
		return "", false
	}
	allowed, err := c.robots.Allowed(ctx, rawURL, c.cfg.UserAgent)
	if err != nil {
		c.logger.Debug("robots.txt lookup failed", slog.String("url", rawURL), slog.Any("error", err))
	}
	if allowed {
		return "", false
	}
	return "disallowed by robots.txt", true
}

func (c *Checker) record(o result.Outcome) {
	switch o.Kind {
	case result.KindWorking:
		c.journal.Working(o.File, o.URL)
	case result.KindBroken:
		c.journal.Broken(o.File, o.URL, o.StatusCode)
	case result.KindException:
		c.journal.Exception(o.File, o.URL, o.Error)
	}
}
