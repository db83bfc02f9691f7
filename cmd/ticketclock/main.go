// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// ticketclock counts down the payment hold on a ticket reservation.
//
// The deadline comes from an explicit timestamp (--expires-at), a
// ticket record file (--ticket), or a hold starting now (--hold, or
// the configured default hold when no deadline flag is given). By
// default the countdown runs as a terminal UI with threshold toasts;
// --headless prints one line per engine event instead and exits with
// status 2 when the hold expires.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ticketclock/lib/clock"
	"github.com/bureau-foundation/ticketclock/lib/config"
	"github.com/bureau-foundation/ticketclock/lib/countdown"
	"github.com/bureau-foundation/ticketclock/lib/eventlog"
	"github.com/bureau-foundation/ticketclock/lib/logging"
	"github.com/bureau-foundation/ticketclock/lib/process"
	"github.com/bureau-foundation/ticketclock/lib/reservation"
	"github.com/bureau-foundation/ticketclock/lib/version"
)

// exitExpired is the headless exit status when the hold lapses.
const exitExpired = 2

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cli := &app{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		clock:      clock.Real(),
		runProgram: runTeaProgram,
	}
	err := cli.run(ctx, os.Args[1:])
	stop()
	if err != nil {
		process.Fatal(err)
	}
}

// app holds the process-level dependencies of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	clock  clock.Clock

	// runProgram runs the interactive view until the user quits or ctx
	// is cancelled.
	runProgram func(ctx context.Context, model tea.Model, output io.Writer) error
}

type flags struct {
	configPath string
	expiresAt  string
	ticketPath string
	hold       string
	size       string
	eventsPath string
	dumpEvents string
	logOutput  string
	headless   bool
	jsonOutput bool
	noWarnings bool
	version    bool
	help       bool

	holdSet bool
	sizeSet bool
}

func (a *app) run(ctx context.Context, args []string) error {
	var f flags

	flagSet := pflag.NewFlagSet("ticketclock", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&f.configPath, "config", "", "path to the YAML config file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&f.expiresAt, "expires-at", "", "reservation deadline as an ISO-8601 timestamp")
	flagSet.StringVar(&f.ticketPath, "ticket", "", "ticket record JSON file to read the deadline from")
	flagSet.StringVar(&f.hold, "hold", "", "start a hold of this duration now (default: countdown.default_hold)")
	flagSet.StringVar(&f.size, "size", "", "timer size: sm, md or lg (default: display.size)")
	flagSet.StringVar(&f.eventsPath, "events", "", "append engine events to this CBOR log (default: events.path)")
	flagSet.StringVar(&f.dumpEvents, "dump-events", "", "print a CBOR event log in diagnostic notation and exit")
	flagSet.StringVar(&f.logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolVar(&f.headless, "headless", false, "print events as lines instead of running the terminal UI")
	flagSet.BoolVar(&f.jsonOutput, "json", false, "with --headless, print one JSON object per event")
	flagSet.BoolVar(&f.noWarnings, "no-warnings", false, "suppress threshold and expiry notifications")
	flagSet.BoolVar(&f.version, "version", false, "print version information and exit")
	flagSet.BoolVarP(&f.help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(a.stderr, flagSet)
			return nil
		}
		return Validation("%w", err).WithHint("Run 'ticketclock --help' for usage.")
	}
	f.holdSet = flagSet.Changed("hold")
	f.sizeSet = flagSet.Changed("size")

	if f.version {
		version.Print(a.stdout, "ticketclock")
		return nil
	}
	if f.help {
		printHelp(a.stderr, flagSet)
		return nil
	}
	if flagSet.NArg() > 0 {
		return Validation("unexpected argument: %s", flagSet.Arg(0))
	}
	if f.dumpEvents != "" {
		return a.dump(f.dumpEvents)
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	if f.sizeSet {
		cfg.Display.Size = f.size
	}
	if f.eventsPath != "" {
		cfg.Events.Path = f.eventsPath
	}
	if err := cfg.Validate(); err != nil {
		return Validation("invalid configuration:\n%w", err)
	}
	if f.jsonOutput && !f.headless {
		return Validation("--json requires --headless")
	}

	logger, closeLog, err := a.newLogger(cfg, f)
	if err != nil {
		return err
	}
	defer closeLog()

	deadline, header, err := a.resolveDeadline(cfg, f, logger)
	if err != nil {
		return err
	}

	var observers []countdown.Observer
	if cfg.Events.Path != "" {
		writer, err := eventlog.Create(cfg.Events.Path, eventlog.Options{
			IncludeTicks: cfg.Events.IncludeTicks,
			Logger:       logger,
		})
		if err != nil {
			return Internal("%w", err)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("closing event log", "path", cfg.Events.Path, "error", err)
			}
		}()
		observers = append(observers, writer)
	}

	session := &session{
		app:       a,
		cfg:       cfg,
		flags:     f,
		logger:    logger,
		observers: observers,
		deadline:  deadline,
		header:    header,
	}
	if f.headless {
		return session.runHeadless(ctx)
	}
	return session.runInteractive(ctx)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `ticketclock: countdown for a ticket reservation's payment hold.

The deadline comes from at most one of --expires-at, --ticket or --hold.
With none of them a hold of countdown.default_hold (two minutes unless
configured) starts now. Thresholds at 60, 30 and 10 seconds raise a
notification once each; when the hold expires the reservation is
released.

Usage:
  ticketclock [flags]

Examples:
  # Count down to an explicit deadline
  ticketclock --expires-at 2026-01-15T12:02:00Z

  # Count down the hold recorded in a ticket
  ticketclock --ticket reservation.json

  # Start the configured default hold (two minutes) now
  ticketclock

  # Script-friendly: JSON lines, exit status 2 on expiry
  ticketclock --headless --json --hold 30s

  # Inspect a recorded event log
  ticketclock --dump-events events.cbor

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

// loadConfig reads --config, then $TICKETCLOCK_CONFIG, and falls back
// to the built-in defaults when neither is set.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		path = os.Getenv(config.EnvVar)
		cfg, err = config.Load()
	default:
		return config.Default(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, NotFound("config file %s not found", path)
	}
	if err != nil {
		return nil, Validation("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. The terminal UI owns the screen,
// so it logs only to --log-output; headless mode logs to stderr unless
// --log-output redirects it.
func (a *app) newLogger(cfg *config.Config, f flags) (*slog.Logger, func(), error) {
	if f.logOutput != "" {
		file, err := os.OpenFile(f.logOutput, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, Internal("opening log output: %w", err)
		}
		logger, err := logging.New(file, cfg.Logging.Level, "json")
		if err != nil {
			file.Close()
			return nil, nil, Validation("%w", err)
		}
		return logger, func() { file.Close() }, nil
	}
	if !f.headless {
		return logging.Discard(), func() {}, nil
	}
	logger, err := logging.New(a.stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, Validation("%w", err)
	}
	return logger, func() {}, nil
}

// resolveDeadline turns the deadline flag into an absolute time.
// The zero time means no active countdown, which happens for a ticket
// that is already paid or expired. header names the reservation in
// the view.
func (a *app) resolveDeadline(cfg *config.Config, f flags, logger *slog.Logger) (time.Time, string, error) {
	sources := 0
	for _, set := range []bool{f.expiresAt != "", f.ticketPath != "", f.holdSet} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return time.Time{}, "", Validation("--expires-at, --ticket and --hold are mutually exclusive")
	}

	now := a.clock.Now()
	switch {
	case f.expiresAt != "":
		deadline, ok := countdown.ParseDeadline(f.expiresAt)
		if !ok {
			return time.Time{}, "", Validation("cannot parse --expires-at %q", f.expiresAt).
				WithHint("Use an ISO-8601 timestamp such as 2026-01-15T12:02:00Z.")
		}
		return deadline, "", nil

	case f.ticketPath != "":
		ticket, err := reservation.ReadFile(f.ticketPath)
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, "", NotFound("ticket record %s not found", f.ticketPath)
		}
		if err != nil {
			return time.Time{}, "", Validation("%w", err)
		}
		if err := ticket.Validate(); err != nil {
			return time.Time{}, "", Validation("invalid ticket record %s:\n%w", f.ticketPath, err)
		}
		deadline, ok := ticket.Deadline()
		if !ok && ticket.Status == reservation.StatusReserved && ticket.ExpiresAt != nil {
			logger.Warn("ignoring unparseable reservation deadline", "ticket", ticket.ID, "expires_at", *ticket.ExpiresAt)
		}
		logger.Info("ticket loaded",
			"ticket", ticket.ID,
			"status", string(ticket.Status),
			"summary", ticket.Describe(now),
		)
		return deadline, ticket.Title(), nil

	default:
		hold := cfg.Countdown.DefaultHold
		if f.holdSet {
			parsed, err := time.ParseDuration(f.hold)
			if err != nil {
				return time.Time{}, "", Validation("cannot parse --hold %q", f.hold).
					WithHint("Use a Go duration such as 2m or 90s.")
			}
			hold = parsed
		}
		if hold <= 0 {
			return time.Time{}, "", Validation("--hold must be positive, got %s", hold)
		}
		return now.Add(hold), "", nil
	}
}

// dump prints an event log in CBOR diagnostic notation.
func (a *app) dump(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NotFound("event log %s not found", path)
	}
	if err != nil {
		return Internal("%w", err)
	}
	defer file.Close()
	if err := eventlog.Dump(a.stdout, file); err != nil {
		return Validation("%s: %w", path, err)
	}
	return nil
}

func runTeaProgram(ctx context.Context, model tea.Model, output io.Writer) error {
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(output))
	_, err := program.Run()
	if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
