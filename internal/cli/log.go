// Package cli implements the vfconsole command-line interface.
//
// This package provides commands for signing in to the backend, managing
// projects and their embed settings, computing and rendering the layout of a
// project's question/answer tree, and editing that tree in an interactive
// terminal shell or a local preview server. The CLI is built using cobra and
// logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - auth: Sign in, sign up, sign out and show the current user
//   - projects: List, create, delete and inspect projects
//   - layout, render: Write the positioned graph as JSON or as a diagram
//   - embed: Show the embed snippet and manage allowed domains
//   - open: Interactive presentation shell
//   - serve: Local preview server
//   - cache, config: Manage the artifact cache and the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// registers log hooks for pipeline, cache and API events. The logger is
// attached to the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Wrote tour.layout.json (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx. Commands read it back with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default when the
// context carries none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
