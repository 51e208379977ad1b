package badge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lukemcguire/linkbadger/eventlog"
)

// Generate writes one badge file per failing record into dir and returns the
// badges in record order. Files from earlier runs with indexes that are not
// rewritten are left in place unless opts.ClearBeforeWrite is set.
func Generate(records []eventlog.Record, dir string, opts Options) ([]Badge, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create badge directory: %w", err)
	}
	if opts.ClearBeforeWrite {
		if err := removeStale(dir); err != nil {
			return nil, err
		}
	}

	var badges []Badge
	var errs []error
	for _, r := range records {
		b, ok := FromRecord(r, opts)
		if !ok {
			continue
		}
		path := filepath.Join(dir, b.FileName())
		if err := os.WriteFile(path, []byte(b.Markdown), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write badge %s: %w", path, err))
			continue
		}
		badges = append(badges, b)
	}
	if len(errs) > 0 {
		return badges, errors.Join(errs...)
	}
	return badges, nil
}

// GenerateFromLog reads a finished log file and writes its badges into dir.
func GenerateFromLog(logPath, dir string, opts Options) ([]Badge, error) {
	records, err := eventlog.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("generate badges: %w", err)
	}
	return Generate(records, dir, opts)
}

func removeStale(dir string) error {
	stale, err := filepath.Glob(filepath.Join(dir, "badge_*.md"))
	if err != nil {
		return fmt.Errorf("list stale badges: %w", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale badge %s: %w", path, err)
		}
	}
	return nil
}
