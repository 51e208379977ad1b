package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/linkbadger/eventlog"
	"github.com/lukemcguire/linkbadger/result"
	"github.com/lukemcguire/linkbadger/scan"
)

// Runner discovers source documents below a root directory and checks every
// URL they contain, either one at a time or on a bounded worker pool.
type Runner struct {
	checker    *Checker
	journal    *eventlog.Journal
	cfg        Config
	progressCh chan<- Event
	logger     *slog.Logger

	summary result.Summary
	total   int
	done    int
	seen    *seenTracker
}

// taskResult is what one parallel check task hands to the collector.
type taskResult struct {
	outcome result.Outcome
	ok      bool
	err     error
}

// NewRunner creates a Runner around checker. The progressCh parameter is
// optional; pass nil to disable progress events.
func NewRunner(checker *Checker, progressCh chan<- Event) *Runner {
	return &Runner{
		checker:    checker,
		journal:    checker.journal,
		cfg:        checker.cfg,
		progressCh: progressCh,
		logger:     checker.logger.With(slog.String("stage", "batch")),
	}
}

// Run checks every URL found below root and returns the run summary.
//
// Individual failures (unreadable documents, malformed URLs, failed probes,
// failing tasks) are recorded and never end the run. Cancelling ctx stops
// dispatching new checks; probes already started run to completion. A Runner
// is single-use.
func (r *Runner) Run(ctx context.Context, root string) (*result.Summary, error) {
	start := time.Now()

	paths, err := scan.Discover(root)
	if err != nil {
		r.journal.Note(eventlog.SeverityError, fmt.Sprintf("Error while listing source files under %s: %v", root, err))
		r.logger.Warn("discovery failed", slog.String("root", root), slog.Any("error", err))
	}
	r.summary.Stats.Documents = len(paths)

	if r.cfg.DedupeCandidates {
		seen, err := newSeenTracker(uint(len(paths)) * 64)
		if err != nil {
			return nil, fmt.Errorf("create duplicate tracker: %w", err)
		}
		r.seen = seen
		defer func() {
			if closeErr := seen.Close(); closeErr != nil {
				r.logger.Warn("close duplicate tracker", slog.Any("error", closeErr))
			}
		}()
	}

	r.logger.Info("run started",
		slog.String("root", root),
		slog.Int("documents", len(paths)),
		slog.Bool("parallel", r.cfg.Parallel),
		slog.Int("workers", r.cfg.Workers))

	if r.cfg.Parallel {
		r.runParallel(ctx, paths)
	} else {
		r.runSequential(ctx, paths)
	}

	r.summary.Stats.Duration = time.Since(start)
	r.logger.Info("run finished",
		slog.Int("checked", r.summary.Stats.Checked),
		slog.Int("failed", r.summary.FailureCount()),
		slog.Duration("duration", r.summary.Stats.Duration))

	sum := r.summary
	return &sum, nil
}

// runSequential loads, extracts and checks one document at a time.
func (r *Runner) runSequential(ctx context.Context, paths []string) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		r.journal.Processing(path)
		doc, ok := r.load(path)
		if !ok {
			continue
		}
		for cand, err := range scan.Extract(doc.Root, path) {
			if !r.accept(cand, err) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			r.total++
			o, ok := r.checker.Check(ctx, cand.URL, cand.File)
			r.collect(ctx, cand, taskResult{outcome: o, ok: ok})
		}
	}
}

// runParallel extracts every candidate up front, then checks them on an
// errgroup bounded to cfg.Workers. Results flow back over one channel so the
// summary and progress events are only touched by the collecting goroutine.
func (r *Runner) runParallel(ctx context.Context, paths []string) {
	var candidates []scan.Candidate
	for _, path := range paths {
		doc, ok := r.load(path)
		if !ok {
			continue
		}
		for cand, err := range scan.Extract(doc.Root, path) {
			if r.accept(cand, err) {
				candidates = append(candidates, cand)
			}
		}
	}
	r.total = len(candidates)

	type collected struct {
		cand scan.Candidate
		res  taskResult
	}
	results := make(chan collected, r.cfg.Workers)

	go func() {
		defer close(results)
		// Tasks never return errors, so the group never cancels siblings.
		var g errgroup.Group
		g.SetLimit(r.cfg.Workers)
		for _, cand := range candidates {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				results <- collected{cand: cand, res: r.task(ctx, cand)}
				return nil
			})
		}
		_ = g.Wait()
	}()

	for c := range results {
		r.collect(ctx, c.cand, c.res)
	}
}

// task runs one check, converting a panic into a task error.
func (r *Runner) task(ctx context.Context, cand scan.Candidate) (res taskResult) {
	defer func() {
		if p := recover(); p != nil {
			res = taskResult{err: fmt.Errorf("check %s in %s: panic: %v", cand.URL, cand.File, p)}
		}
	}()
	o, ok := r.checker.Check(ctx, cand.URL, cand.File)
	return taskResult{outcome: o, ok: ok}
}

func (r *Runner) load(path string) (scan.Document, bool) {
	doc, err := scan.Load(path)
	if err == nil {
		return doc, true
	}
	cause := err
	var pe *scan.ParseError
	if errors.As(err, &pe) {
		cause = pe.Err
	}
	r.journal.ParseError(path, cause)
	r.summary.Stats.ParseErrors++
	return scan.Document{}, false
}

// accept records extraction errors and duplicate candidates, and reports
// whether cand should be checked.
func (r *Runner) accept(cand scan.Candidate, err error) bool {
	if err != nil {
		var malformed *scan.MalformedURLError
		if errors.As(err, &malformed) {
			r.journal.MalformedURL(malformed.File, malformed.Value)
		} else {
			r.journal.TaskError(err)
		}
		r.summary.Stats.MalformedURLs++
		return false
	}
	if r.seen != nil && !r.seen.firstSighting(cand.File, cand.URL) {
		r.journal.Note(eventlog.SeverityInfo, fmt.Sprintf("Dropping duplicate URL in file %s: %s", cand.File, cand.URL))
		r.summary.Stats.Duplicates++
		return false
	}
	return true
}

// collect is the single point where check results enter the summary.
func (r *Runner) collect(ctx context.Context, cand scan.Candidate, res taskResult) {
	r.done++
	switch {
	case res.err != nil:
		r.journal.TaskError(res.err)
		r.summary.Stats.TaskErrors++
	case res.ok:
		r.summary.Add(res.outcome)
	}

	if r.progressCh == nil {
		return
	}
	evt := Event{
		File:    cand.File,
		URL:     cand.URL,
		Kind:    res.outcome.Kind,
		Checked: r.done,
		Total:   r.total,
		Failed:  r.summary.FailureCount(),
	}
	select {
	case r.progressCh <- evt:
	case <-ctx.Done():
	}
}
