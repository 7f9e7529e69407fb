// Package cli implements the diagramkit command-line interface.
//
// This package provides commands for parsing diagram text into the
// intermediate representation, computing layouts, emitting text back from
// the model, and serving the same pipeline over HTTP. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - parse: Parse a diagram (or a mermaid block of a Markdown file) to JSON/YAML
//   - layout: Compute sequence or node-link geometry
//   - emit: Write diagram text from a parsed diagram
//   - blocks: List the mermaid blocks of a Markdown file
//   - cache: Manage the parse and layout cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
// Lines the parser skips are logged as warnings with their line number and
// diagnostic code.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramkit/pkg/diag"
)

// newLogger creates the CLI logger. Timestamps are "HH:MM:SS.ms"; debug
// level also reports the calling file and line.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one pipeline stage.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, rounded to the
// millisecond, under the "took" key.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// replayDiagnostics logs the diagnostics of a cached parse, which the
// parser did not report during this run.
func replayDiagnostics(logger *log.Logger, ds []diag.Diagnostic) {
	r := diag.NewLogReporter(logger)
	for _, d := range ds {
		r.Report(d)
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger stored by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
