package notation

import (
	"strings"

	"github.com/matzehuels/diagramkit/pkg/ir"
)

// ClassConnector is one entry of the class diagram connector table.
// Flipped means the right-hand endpoint is the semantic source, so the
// parser swaps the endpoints before storing them.
type ClassConnector struct {
	Token   string
	Kind    ir.RelationKind
	Flipped bool
}

// ClassConnectors is ordered most specific first.
var ClassConnectors = []ClassConnector{
	{Token: "<|--", Kind: ir.Inheritance, Flipped: true},
	{Token: "--|>", Kind: ir.Inheritance},
	{Token: "<|..", Kind: ir.Realization, Flipped: true},
	{Token: "..|>", Kind: ir.Realization},
	{Token: "<-->", Kind: ir.BidirectionalAssociation},
	{Token: "*--", Kind: ir.Composition},
	{Token: "--*", Kind: ir.Composition, Flipped: true},
	{Token: "o--", Kind: ir.Aggregation},
	{Token: "--o", Kind: ir.Aggregation, Flipped: true},
	{Token: "-->", Kind: ir.DirectedAssociation},
	{Token: "<--", Kind: ir.DirectedAssociation, Flipped: true},
	{Token: "..>", Kind: ir.Dependency},
	{Token: "<..", Kind: ir.Dependency, Flipped: true},
	{Token: "--", Kind: ir.Association},
}

// MatchClass returns the first connector whose token occurs in s together
// with its byte offset. A token that starts or ends with a letter glyph
// ("o--", "--o") only matches where that glyph is not part of a class name,
// so "Foo-->Bar" and "Zoo--Bar" keep their names intact.
func MatchClass(s string) (ClassConnector, int, bool) {
	for _, c := range ClassConnectors {
		for from := 0; from < len(s); {
			i := strings.Index(s[from:], c.Token)
			if i < 0 {
				break
			}
			i += from
			if standsAlone(s, i, i+len(c.Token), c.Token) {
				return c, i, true
			}
			from = i + 1
		}
	}
	return ClassConnector{}, -1, false
}

// standsAlone reports whether the letter glyphs at either edge of tok,
// found at s[start:end], are separated from neighbouring name characters.
func standsAlone(s string, start, end int, tok string) bool {
	if isNameByte(tok[0]) && start > 0 && isNameByte(s[start-1]) {
		return false
	}
	if isNameByte(tok[len(tok)-1]) && end < len(s) && isNameByte(s[end]) {
		return false
	}
	return true
}

func isNameByte(b byte) bool {
	return b == '_' || b == '~' ||
		'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9'
}

// ClassToken returns the canonical, unflipped token for kind, written so the
// source is on the left. Realization and inheritance point at the parent,
// composition and aggregation put the diamond on the whole.
func ClassToken(kind ir.RelationKind) (string, bool) {
	for _, c := range ClassConnectors {
		if c.Kind == kind && !c.Flipped {
			return c.Token, true
		}
	}
	return "", false
}

// ClassKind looks up the relation kind of an exact token.
func ClassKind(token string) (ClassConnector, bool) {
	for _, c := range ClassConnectors {
		if c.Token == token {
			return c, true
		}
	}
	return ClassConnector{}, false
}
