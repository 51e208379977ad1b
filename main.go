// Package main provides the linkbadger CLI entrypoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/lukemcguire/linkbadger/badge"
	"github.com/lukemcguire/linkbadger/checker"
	"github.com/lukemcguire/linkbadger/config"
	"github.com/lukemcguire/linkbadger/eventlog"
	"github.com/lukemcguire/linkbadger/logging"
	"github.com/lukemcguire/linkbadger/result"
	"github.com/lukemcguire/linkbadger/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// run executes one linkbadger invocation and returns the process exit code.
// URL check failures never affect the exit code; only configuration, log
// file, and badge output failures do.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("linkbadger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	root := fs.String("root", "", "directory to scan for .json sources (overrides "+config.EnvRootDirectory+")")
	parallel := fs.Bool("parallel", true, "check URLs on a bounded worker pool")
	workers := fs.Int("workers", checker.DefaultWorkers(), "worker pool size in parallel mode")
	logPath := fs.String("log", "", "event log file path")
	badgeDir := fs.String("badges", "", "badge output directory")
	format := fs.String("format", "", "summary format: text, json, or csv (default: table on a terminal, text otherwise)")
	progress := fs.Bool("progress", true, "show live progress when stderr is a terminal")
	diagLevel := fs.String("diag-level", "warn", "diagnostics level on stderr: debug, info, warn, or error")
	verbose := fs.Bool("v", false, "verbose diagnostics (same as -diag-level debug)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level, err := logging.ParseLevel(*diagLevel)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -diag-level: %v\n", err)
		return 2
	}
	if *verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, "text", stderr)
	logger := logging.New("main")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("load config", slog.Any("error", err))
			return 1
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		logger.Error("read environment", slog.Any("error", err))
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.RootDir = *root
		case "parallel":
			cfg.Parallel = *parallel
		case "workers":
			cfg.Workers = *workers
		case "log":
			cfg.Log.Path = *logPath
		case "badges":
			cfg.Badges.Dir = *badgeDir
		}
	})
	if err := cfg.Finish(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		return 1
	}
	switch *format {
	case "", "text", "json", "csv":
	default:
		logger.Error("invalid -format", slog.String("format", *format))
		return 1
	}

	journal, err := eventlog.Open(cfg.Log.Path, cfg.LogSeverity())
	if err != nil {
		logger.Error("open event log", slog.Any("error", err))
		return 1
	}

	linkChecker, err := checker.New(cfg.Checker(), journal, checker.WithLogger(logging.New("checker")))
	if err != nil {
		_ = journal.Close()
		logger.Error("create checker", slog.Any("error", err))
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var sum *result.Summary
	interrupted := false
	if *progress && isTerminal(stderr) {
		sum, interrupted, err = runWithProgress(ctx, cancel, linkChecker, cfg.RootDir, stderr)
	} else {
		sum, err = checker.NewRunner(linkChecker, nil).Run(ctx, cfg.RootDir)
		interrupted = ctx.Err() != nil
	}
	if err != nil {
		logger.Error("run failed", slog.Any("error", err))
	}
	if interrupted {
		logger.Warn("run interrupted; summary and badges cover only the checks that finished")
	}

	if err := journal.Close(); err != nil {
		logger.Warn("close event log", slog.Any("error", err))
	}

	badges, err := badge.GenerateFromLog(cfg.Log.Path, cfg.Badges.Dir, cfg.BadgeOptions())
	if err != nil {
		logger.Error("generate badges", slog.Any("error", err))
		return 1
	}
	logger.Info("badges written", slog.Int("count", len(badges)), slog.String("dir", cfg.Badges.Dir))

	if sum == nil {
		sum = &result.Summary{}
	}
	if err := printSummary(stdout, sum, *format); err != nil {
		logger.Error("print summary", slog.Any("error", err))
		return 1
	}
	return 0
}

// runWithProgress drives the run from a Bubble Tea program rendering on w and
// reports whether the user stopped it early.
func runWithProgress(ctx context.Context, cancel context.CancelFunc, c *checker.Checker, root string, w io.Writer) (*result.Summary, bool, error) {
	progressCh := make(chan checker.Event, 100)
	runner := checker.NewRunner(c, progressCh)

	model := tui.NewModel(ctx, cancel, runner, root, progressCh)
	final, err := tea.NewProgram(model, tea.WithOutput(w)).Run()
	if err != nil {
		return nil, false, fmt.Errorf("progress UI: %w", err)
	}
	m, ok := final.(tui.Model)
	if !ok {
		return nil, false, fmt.Errorf("progress UI: unexpected model %T", final)
	}
	return m.Summary(), m.Interrupted(), m.Err()
}

func printSummary(w io.Writer, sum *result.Summary, format string) error {
	switch format {
	case "json":
		return result.WriteJSON(w, sum.Failures)
	case "csv":
		return result.WriteCSV(w, sum.Failures)
	case "text":
		result.PrintResults(w, sum)
		return nil
	default:
		if isTerminal(w) {
			_, err := io.WriteString(w, tui.RenderSummary(sum))
			return err
		}
		result.PrintResults(w, sum)
		return nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
