// Package parser turns diagram text into an [ir.Diagram].
//
// [Parse] classifies the input with package classify and dispatches to the
// parser for the detected kind. Every parser is line oriented: a line it
// cannot make sense of is reported to the configured [diag.Reporter] and
// skipped, so a single bad line never aborts the parse or corrupts records
// that were already accumulated. The only fatal error is input without a
// diagram header (errors.ErrCodeUnsupportedDiagramType).
//
// Line numbers in diagnostics and SourceLine fields are 0-based indexes into
// the filtered line list (classify.Result.Lines).
package parser

import (
	"strings"

	"github.com/matzehuels/diagramkit/pkg/classify"
	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

// Options configures a parse. The zero value is ready to use: diagnostics
// are discarded and identifiers are random UUIDs.
type Options struct {
	// Reporter receives per-line diagnostics.
	Reporter diag.Reporter
	// IDs generates message and control structure identifiers.
	IDs IDGenerator
}

func (o Options) withDefaults() Options {
	if o.Reporter == nil {
		o.Reporter = diag.Nop{}
	}
	if o.IDs == nil {
		o.IDs = UUIDGenerator{}
	}
	return o
}

// Parse classifies text and parses it into a diagram.
func Parse(text string, opts Options) (*ir.Diagram, error) {
	res, err := classify.Classify(text)
	if err != nil {
		return nil, err
	}
	return ParseClassified(res, opts), nil
}

// ParseClassified parses lines that were already classified.
func ParseClassified(res classify.Result, opts Options) *ir.Diagram {
	opts = opts.withDefaults()
	d := ir.New(res.Kind)
	body := numbered(res)

	switch res.Kind {
	case ir.KindClass:
		parseClass(d, body, opts.Reporter)
	case ir.KindER:
		parseER(d, body, opts.Reporter)
	case ir.KindSequence:
		parseSequence(d, body, opts)
	case ir.KindFlowchart:
		d.Flowchart.Direction = flowDirection(res.Lines[res.HeaderIndex])
		parseFlow(d, body, opts.Reporter)
	}
	return d
}

// line is a filtered input line with its index.
type line struct {
	n    int
	text string
}

func numbered(res classify.Result) []line {
	if res.HeaderIndex < 0 {
		return nil
	}
	out := make([]line, 0, len(res.Lines)-res.HeaderIndex-1)
	for i := res.HeaderIndex + 1; i < len(res.Lines); i++ {
		out = append(out, line{n: i, text: res.Lines[i]})
	}
	return out
}

// directives are accepted in every notation and carry nothing the IR models.
var directives = []string{"title", "accTitle", "accDescr", "direction", "autonumber"}

func isDirective(s string) bool {
	for _, d := range directives {
		if s == d || strings.HasPrefix(s, d+" ") || strings.HasPrefix(s, d+":") {
			return true
		}
	}
	return false
}

// splitLabel splits "lhs : label" at the first colon. The label is trimmed
// and unquoted.
func splitLabel(s string) (string, string) {
	i := strings.Index(s, ":")
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:i]), unquote(strings.TrimSpace(s[i+1:]))
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
