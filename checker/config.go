package checker

import (
	"runtime"
	"time"
)

const (
	// DefaultUserAgent is a desktop browser string; some data portals reject
	// requests that do not look like a browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultReferer   = "https://www.google.com"

	defaultRequestTimeout = 10 * time.Second
	maxDefaultWorkers     = 32
)

// DefaultSkipSuffixes are URL endings that point at bulk downloads, which are
// never probed.
var DefaultSkipSuffixes = []string{"csv", "zip", "polygons"}

// Config holds link checker and batch configuration.
type Config struct {
	Parallel         bool          // bounded worker pool instead of one check at a time
	Workers          int           // worker pool size in parallel mode (default DefaultWorkers)
	RequestTimeout   time.Duration // per-probe timeout (default 10s)
	UserAgent        string        // User-Agent header sent with every probe
	Referer          string        // Referer header sent with every probe
	SkipSuffixes     []string      // case-insensitive URL suffixes that are skipped
	RespectRobots    bool          // skip URLs disallowed by the host's robots.txt
	DedupeCandidates bool          // drop repeated (file, URL) pairs before checking
	ShareProbes      bool          // reuse one probe result per URL across files
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Parallel:       true,
		Workers:        DefaultWorkers(),
		RequestTimeout: defaultRequestTimeout,
		UserAgent:      DefaultUserAgent,
		Referer:        DefaultReferer,
		SkipSuffixes:   append([]string(nil), DefaultSkipSuffixes...),
	}
}

// DefaultWorkers sizes the pool like a thread pool for blocking I/O:
// min(32, NumCPU+4).
func DefaultWorkers() int {
	return min(maxDefaultWorkers, runtime.NumCPU()+4)
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers()
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Referer == "" {
		c.Referer = DefaultReferer
	}
	if c.SkipSuffixes == nil {
		c.SkipSuffixes = append([]string(nil), DefaultSkipSuffixes...)
	}
	return c
}
