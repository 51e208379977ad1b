// Package config loads linkbadger settings from YAML, the environment, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lukemcguire/linkbadger/badge"
	"github.com/lukemcguire/linkbadger/checker"
	"github.com/lukemcguire/linkbadger/eventlog"
	"github.com/lukemcguire/linkbadger/urlutil"
)

// Environment variables read by ApplyEnv.
const (
	EnvRootDirectory = "ROOT_DIRECTORY"
	EnvParallel      = "LINKBADGER_PARALLEL"
)

// Config captures everything one run needs.
type Config struct {
	RootDir          string      `yaml:"root_dir"`
	Parallel         bool        `yaml:"parallel"`
	Workers          int         `yaml:"workers"`
	RequestTimeout   Duration    `yaml:"request_timeout"`
	UserAgent        string      `yaml:"user_agent"`
	Referer          string      `yaml:"referer"`
	SkipSuffixes     []string    `yaml:"skip_suffixes"`
	RespectRobots    bool        `yaml:"respect_robots"`
	DedupeCandidates bool        `yaml:"dedupe_candidates"`
	ShareProbes      bool        `yaml:"share_probes"`
	Log              LogConfig   `yaml:"log"`
	Badges           BadgeConfig `yaml:"badges"`
}

// LogConfig controls the event log file.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// BadgeConfig controls badge generation.
type BadgeConfig struct {
	Dir              string `yaml:"dir"`
	RepositoryURL    string `yaml:"repository_url"`
	Anchor           string `yaml:"anchor"`
	ClearBeforeWrite bool   `yaml:"clear_before_write"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	cc := checker.DefaultConfig()
	return Config{
		RootDir:        "./test",
		Parallel:       cc.Parallel,
		Workers:        cc.Workers,
		RequestTimeout: DurationFrom(cc.RequestTimeout),
		UserAgent:      cc.UserAgent,
		Referer:        cc.Referer,
		SkipSuffixes:   cc.SkipSuffixes,
		ShareProbes:    cc.ShareProbes,
		Log: LogConfig{
			Path:  "./out/broken_links.log",
			Level: "info",
		},
		Badges: BadgeConfig{
			Dir:           "./badges",
			RepositoryURL: badge.DefaultRepositoryURL,
			Anchor:        badge.DefaultAnchor,
		},
	}
}

// Load reads, merges, and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return LoadFromReader(fh)
}

// LoadFromReader decodes configuration from an arbitrary reader. Keys that are
// absent keep their default value.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, &cfg); err != nil {
		return nil, err
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ApplyEnv overrides the root directory and the parallel flag from the
// environment. Unset or empty variables leave the value unchanged.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvRootDirectory)); v != "" {
		c.RootDir = v
	}
	if v := strings.TrimSpace(getenv(EnvParallel)); v != "" {
		parallel, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvParallel, err)
		}
		c.Parallel = parallel
	}
	return nil
}

// Validate enforces required invariants.
func (c Config) Validate() error {
	if c.RootDir == "" {
		return errors.New("root_dir must be set")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("request_timeout must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.UserAgent == "" {
		return errors.New("user_agent must be set")
	}
	if c.Log.Path == "" {
		return errors.New("log.path must be set")
	}
	if _, err := eventlog.ParseSeverity(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Badges.Dir == "" {
		return errors.New("badges.dir must be set")
	}
	if err := urlutil.Validate(c.Badges.RepositoryURL); err != nil {
		return fmt.Errorf("badges.repository_url: %w", err)
	}
	return nil
}

func (c *Config) normalise() {
	c.RootDir = strings.TrimSpace(c.RootDir)
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	c.Referer = strings.TrimSpace(c.Referer)
	c.Log.Path = strings.TrimSpace(c.Log.Path)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Badges.Dir = strings.TrimSpace(c.Badges.Dir)
	c.Badges.RepositoryURL = strings.TrimSpace(c.Badges.RepositoryURL)
	if c.Badges.RepositoryURL != "" && !strings.HasSuffix(c.Badges.RepositoryURL, "/") {
		c.Badges.RepositoryURL += "/"
	}
	if c.SkipSuffixes != nil {
		c.SkipSuffixes = dedupeLower(c.SkipSuffixes)
	}
}

// Finish normalises and validates a Config that was changed after loading,
// for example by command-line flags.
func (c *Config) Finish() error {
	c.normalise()
	return c.Validate()
}

// dedupeLower keeps the first occurrence of each lower-cased value.
func dedupeLower(values []string) []string {
	unique := make(map[string]struct{}, len(values))
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := unique[v]; ok {
			continue
		}
		unique[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	return cleaned
}

// Checker returns the link checker settings.
func (c Config) Checker() checker.Config {
	return checker.Config{
		Parallel:         c.Parallel,
		Workers:          c.Workers,
		RequestTimeout:   c.RequestTimeout.Duration,
		UserAgent:        c.UserAgent,
		Referer:          c.Referer,
		SkipSuffixes:     c.SkipSuffixes,
		RespectRobots:    c.RespectRobots,
		DedupeCandidates: c.DedupeCandidates,
		ShareProbes:      c.ShareProbes,
	}
}

// BadgeOptions returns the badge generator settings.
func (c Config) BadgeOptions() badge.Options {
	return badge.Options{
		RepositoryURL:    c.Badges.RepositoryURL,
		Anchor:           c.Badges.Anchor,
		ClearBeforeWrite: c.Badges.ClearBeforeWrite,
	}
}

// LogSeverity returns the minimum severity written to the event log.
func (c Config) LogSeverity() eventlog.Severity {
	sev, _ := eventlog.ParseSeverity(c.Log.Level)
	return sev
}
