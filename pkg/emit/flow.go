package emit

import (
	"fmt"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/ir"
)

var shapeBrackets = map[ir.FlowShape][2]string{
	ir.ShapeRect:    {"[", "]"},
	ir.ShapeRound:   {"(", ")"},
	ir.ShapeDiamond: {"{", "}"},
	ir.ShapeCircle:  {"((", "))"},
}

var edgeTokens = map[ir.EdgeStyle]string{
	ir.EdgeArrow:  "-->",
	ir.EdgeOpen:   "---",
	ir.EdgeDotted: "-.->",
	ir.EdgeThick:  "==>",
}

func writeFlowchart(b *strings.Builder, f ir.Flowchart) {
	dir := f.Direction
	if dir == "" {
		dir = "TD"
	}
	fmt.Fprintf(b, "flowchart %s\n", dir)
	for _, n := range f.Nodes {
		br, ok := shapeBrackets[n.Shape]
		if !ok {
			br = shapeBrackets[ir.ShapeRect]
		}
		fmt.Fprintf(b, "%s%s%s%s%s\n", indent, n.ID, br[0], n.Label, br[1])
	}
	for _, e := range f.Edges {
		tok, ok := edgeTokens[e.Style]
		if !ok {
			tok = edgeTokens[ir.EdgeArrow]
		}
		if e.Label != "" {
			fmt.Fprintf(b, "%s%s %s|%s| %s\n", indent, e.From, tok, e.Label, e.To)
			continue
		}
		fmt.Fprintf(b, "%s%s %s %s\n", indent, e.From, tok, e.To)
	}
}
