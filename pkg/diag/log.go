package diag

import "github.com/charmbracelet/log"

// LogReporter writes diagnostics to a charmbracelet logger.
// Warnings are logged at warn level, everything else at debug.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter returns a reporter bound to logger. A nil logger uses the
// package default.
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogReporter{Logger: logger}
}

func (r *LogReporter) Report(d Diagnostic) {
	kv := []any{"line", d.Line, "code", string(d.Code)}
	if d.Text != "" {
		kv = append(kv, "text", d.Text)
	}
	switch {
	case d.Severity >= SevError:
		r.Logger.Error(d.Message, kv...)
	case d.Severity == SevWarning:
		r.Logger.Warn(d.Message, kv...)
	default:
		r.Logger.Debug(d.Message, kv...)
	}
}
