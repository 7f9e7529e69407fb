package notation

import (
	"strings"

	"github.com/matzehuels/diagramkit/pkg/ir"
)

// Arrow is one entry of the sequence arrow table.
type Arrow struct {
	Token string
	Kind  ir.MessageKind
	Line  ir.LineStyle
}

// Arrows is ordered longest first so "-->>" is never read as "-->".
var Arrows = []Arrow{
	{Token: "-->>", Kind: ir.AsynchCall, Line: ir.Dotted},
	{Token: "->>", Kind: ir.AsynchCall, Line: ir.Solid},
	{Token: "--x", Kind: ir.DeleteMessage, Line: ir.Dotted},
	{Token: "-x", Kind: ir.DeleteMessage, Line: ir.Solid},
	{Token: "--)", Kind: ir.AsynchSignal, Line: ir.Dotted},
	{Token: "-)", Kind: ir.AsynchSignal, Line: ir.Solid},
	{Token: "-->", Kind: ir.SynchCall, Line: ir.Dotted},
	{Token: "->", Kind: ir.SynchCall, Line: ir.Solid},
}

// MatchArrow returns the first arrow whose token occurs in s and its offset.
func MatchArrow(s string) (Arrow, int, bool) {
	best := -1
	var found Arrow
	for _, a := range Arrows {
		i := strings.Index(s, a.Token)
		if i < 0 {
			continue
		}
		// An earlier occurrence wins; on a tie the table order (longest
		// first) decides.
		if best < 0 || i < best {
			best, found = i, a
		}
	}
	if best < 0 {
		return Arrow{}, -1, false
	}
	return found, best, true
}

// ArrowToken returns the token to emit for a message kind and line style.
// Replies and self messages are written as synchronous calls; the parser
// derives those kinds from the endpoints, not from the arrow.
func ArrowToken(kind ir.MessageKind, line ir.LineStyle) string {
	if kind == ir.Reply || kind == ir.Self {
		kind = ir.SynchCall
	}
	if line == "" {
		line = ir.Solid
	}
	for _, a := range Arrows {
		if a.Kind == kind && a.Line == line {
			return a.Token
		}
	}
	return "->"
}
