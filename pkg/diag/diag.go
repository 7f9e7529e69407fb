// Package diag carries per-line parse diagnostics.
//
// A malformed or unrecognized line never aborts a parse. The parser reports
// it to a [Reporter] and moves on; the returned IR is the same whether or not
// anyone listens. Use a [Bag] in tests and tooling that wants to inspect the
// diagnostics, and [LogReporter] to surface them through a logger.
package diag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Code identifies the kind of problem found on a line.
type Code string

const (
	CodeUnrecognizedLine  Code = "unrecognized-line"
	CodeUnknownConnector  Code = "unknown-connector"
	CodeMalformedMember   Code = "malformed-member"
	CodeMalformedColumn   Code = "malformed-column"
	CodeMalformedRelation Code = "malformed-relationship"
	CodeMalformedMessage  Code = "malformed-message"
	CodeMalformedNote     Code = "malformed-note"
	CodeUnmatchedElse     Code = "unmatched-else"
	CodeUnmatchedEnd      Code = "unmatched-end"
	CodeUnclosedStructure Code = "unclosed-structure"
	CodeUnclosedBlock     Code = "unclosed-block"
)

// Diagnostic describes a problem on one filtered input line.
// Line is the 0-based index into the filtered line list.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"`
	Text     string   `json:"text"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s [%s]: %s", d.Line, d.Severity, d.Code, d.Message)
}

// Reporter receives diagnostics from the parsers.
type Reporter interface {
	Report(d Diagnostic)
}

// Warn reports a warning. A nil reporter discards it.
func Warn(r Reporter, code Code, line int, text, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Code:     code,
		Severity: SevWarning,
		Line:     line,
		Text:     text,
		Message:  fmt.Sprintf(format, args...),
	})
}

// DefaultBagSize is the default number of diagnostics a Bag keeps.
const DefaultBagSize = 256

// Bag collects diagnostics up to a fixed limit.
type Bag struct {
	items   []Diagnostic
	max     uint16
	dropped int
}

// NewBag returns a bag holding at most max diagnostics. Values outside the
// uint16 range fall back to DefaultBagSize.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil || limit == 0 {
		limit = DefaultBagSize
	}
	return &Bag{
		items: make([]Diagnostic, 0, int(limit)),
		max:   limit,
	}
}

// Add stores d and returns false when the limit was reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Report implements Reporter.
func (b *Bag) Report(d Diagnostic) { b.Add(d) }

// Len returns the number of stored diagnostics.
func (b *Bag) Len() int { return len(b.items) }

// Dropped returns how many diagnostics were discarded because the bag was full.
func (b *Bag) Dropped() int { return b.dropped }

// Items returns the stored diagnostics. The slice must not be modified.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasWarnings reports whether any diagnostic is a warning or worse.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Codes returns the codes of all stored diagnostics in order.
func (b *Bag) Codes() []Code {
	codes := make([]Code, len(b.items))
	for i, d := range b.items {
		codes[i] = d.Code
	}
	return codes
}

// Sort orders diagnostics by line, then severity (desc), then code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Nop discards every diagnostic.
type Nop struct{}

func (Nop) Report(Diagnostic) {}

// Multi fans a diagnostic out to several reporters.
type Multi []Reporter

func (m Multi) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}
