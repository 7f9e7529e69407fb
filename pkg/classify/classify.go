// Package classify filters raw diagram text down to its meaningful lines and
// detects which diagram notation it is written in.
//
// Filtering drops three kinds of lines:
//
//   - everything between a pair of "---" metadata delimiters, delimiters included
//   - single-line comments starting with "%%"
//   - blank lines
//
// Filtering is a fixpoint: filtering already filtered lines returns them
// unchanged.
package classify

import (
	stderrors "errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

const (
	metadataDelimiter = "---"
	commentPrefix     = "%%"
)

// ErrUnsupportedDiagramType is returned (wrapped) when no line of the input
// starts with a supported diagram keyword.
var ErrUnsupportedDiagramType = stderrors.New("unsupported diagram type")

// keywords maps a header keyword to its diagram kind. "graph" is the legacy
// spelling of a flowchart header.
var keywords = []struct {
	word string
	kind ir.Kind
}{
	{"classDiagram", ir.KindClass},
	{"erDiagram", ir.KindER},
	{"sequenceDiagram", ir.KindSequence},
	{"flowchart", ir.KindFlowchart},
	{"graph", ir.KindFlowchart},
}

// Result is the outcome of classifying a text blob.
type Result struct {
	Kind ir.Kind
	// Lines are the filtered, trimmed lines. Line numbers reported by the
	// parsers index into this slice.
	Lines []string
	// HeaderIndex is the index of the diagram keyword line within Lines.
	HeaderIndex int
}

// Body returns the lines following the header.
func (r Result) Body() []string {
	if r.HeaderIndex+1 >= len(r.Lines) {
		return nil
	}
	return r.Lines[r.HeaderIndex+1:]
}

// Split breaks text into trimmed, NFC-normalised lines.
func Split(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = norm.NFC.String(strings.TrimSpace(l))
	}
	return lines
}

// Filter drops metadata blocks, comments and blank lines.
// An unterminated metadata block swallows the rest of the input.
func Filter(lines []string) []string {
	out := make([]string, 0, len(lines))
	inMetadata := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == metadataDelimiter {
			inMetadata = !inMetadata
			continue
		}
		if inMetadata || l == "" || strings.HasPrefix(l, commentPrefix) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Detect returns the kind of the first line that starts with a diagram
// keyword, and that line's index.
func Detect(lines []string) (ir.Kind, int, error) {
	for i, l := range lines {
		if kind, ok := keywordKind(l); ok {
			return kind, i, nil
		}
	}
	return "", -1, errors.Wrap(errors.ErrCodeUnsupportedDiagramType, ErrUnsupportedDiagramType,
		"no classDiagram, erDiagram, sequenceDiagram or flowchart header in %d lines", len(lines))
}

func keywordKind(line string) (ir.Kind, bool) {
	word := line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		word = line[:i]
	}
	// Renderer version suffixes such as "classDiagram-v2" name the same kind.
	if i := strings.Index(word, "-v"); i > 0 && isDigits(word[i+2:]) {
		word = word[:i]
	}
	for _, k := range keywords {
		if word == k.word {
			return k.kind, true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Classify splits, filters and detects in one step.
func Classify(text string) (Result, error) {
	if err := errors.ValidateDiagramText(text); err != nil {
		return Result{}, err
	}
	lines := Filter(Split(text))
	kind, idx, err := Detect(lines)
	if err != nil {
		return Result{Lines: lines, HeaderIndex: -1}, err
	}
	return Result{Kind: kind, Lines: lines, HeaderIndex: idx}, nil
}
