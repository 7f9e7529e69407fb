package notation

import (
	"strings"

	"github.com/matzehuels/diagramkit/pkg/ir"
)

// ER connectors between the two cardinality glyphs.
const (
	ERStrong = "--"
	ERWeak   = ".."
)

// Glyph maps a cardinality glyph to its cardinality. Left glyphs sit before
// the connector, right glyphs after it.
type Glyph struct {
	Left        string
	Right       string
	Cardinality ir.Cardinality
}

// Glyphs is the ER cardinality table.
var Glyphs = []Glyph{
	{Left: "|o", Right: "o|", Cardinality: ir.ZeroOrOne},
	{Left: "||", Right: "||", Cardinality: ir.ExactlyOne},
	{Left: "}o", Right: "o{", Cardinality: ir.ZeroOrMany},
	{Left: "}|", Right: "|{", Cardinality: ir.OneOrMany},
}

// ERConnector finds the connector in s and returns its token, offset and
// whether it is the weak form. The first occurrence of either token wins.
func ERConnector(s string) (token string, idx int, weak bool, ok bool) {
	strong := strings.Index(s, ERStrong)
	dotted := strings.Index(s, ERWeak)
	switch {
	case strong >= 0 && (dotted < 0 || strong < dotted):
		return ERStrong, strong, false, true
	case dotted >= 0:
		return ERWeak, dotted, true, true
	}
	return "", -1, false, false
}

// LeftCardinality matches the glyph that the text before a connector ends with.
func LeftCardinality(before string) (ir.Cardinality, string, bool) {
	for _, g := range Glyphs {
		if strings.HasSuffix(before, g.Left) {
			return g.Cardinality, g.Left, true
		}
	}
	return "", "", false
}

// RightCardinality matches the glyph that the text after a connector starts with.
func RightCardinality(after string) (ir.Cardinality, string, bool) {
	for _, g := range Glyphs {
		if strings.HasPrefix(after, g.Right) {
			return g.Cardinality, g.Right, true
		}
	}
	return "", "", false
}

// ERToken builds the full connector token for a relationship,
// e.g. ExactlyOne, ZeroOrMany, strong → "||--o{".
func ERToken(from, to ir.Cardinality, weak bool) (string, bool) {
	var left, right string
	for _, g := range Glyphs {
		if g.Cardinality == from {
			left = g.Left
		}
		if g.Cardinality == to {
			right = g.Right
		}
	}
	if left == "" || right == "" {
		return "", false
	}
	conn := ERStrong
	if weak {
		conn = ERWeak
	}
	return left + conn + right, true
}
