package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

// ToDOT converts a class, ER or flowchart diagram to Graphviz DOT.
// Every edge carries an id "e<index>" matching its position in the IR.
func ToDOT(d *ir.Diagram) (string, error) {
	if d == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "nil diagram")
	}
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")

	switch d.Kind {
	case ir.KindClass:
		buf.WriteString("  rankdir=BT;\n\n")
		writeClasses(&buf, d)
	case ir.KindER:
		buf.WriteString("  rankdir=LR;\n\n")
		writeEntities(&buf, d)
	case ir.KindFlowchart:
		fmt.Fprintf(&buf, "  rankdir=%s;\n\n", rankdir(d.Flowchart.Direction))
		writeFlowchart(&buf, d)
	default:
		return "", errors.New(errors.ErrCodeLayout, "node-link layout does not support %q", d.Kind)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func writeClasses(buf *bytes.Buffer, d *ir.Diagram) {
	for _, c := range d.Classes {
		lines := []string{c.Name}
		for _, a := range c.Attributes {
			lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s%s %s", notation.VisibilitySymbol(a.Visibility), a.Type, a.Name)))
		}
		for _, m := range c.Methods {
			sig := fmt.Sprintf("%s%s(%s)", notation.VisibilitySymbol(m.Visibility), m.Name, strings.Join(m.Parameters, ", "))
			if m.ReturnType != "" {
				sig += " " + m.ReturnType
			}
			lines = append(lines, sig)
		}
		fmt.Fprintf(buf, "  %s [label=%s];\n", quote(c.Name), label(lines))
	}
	buf.WriteString("\n")
	for i, r := range d.Relationships {
		attrs := append([]string{edgeID(i)}, classEdgeAttrs(r.Type)...)
		if r.Label != "" {
			attrs = append(attrs, "label="+quote(r.Label))
		}
		fmt.Fprintf(buf, "  %s -> %s [%s];\n", quote(r.From), quote(r.To), strings.Join(attrs, ", "))
	}
}

// classEdgeAttrs draws an edge from the semantic source to the target.
func classEdgeAttrs(kind ir.RelationKind) []string {
	switch kind {
	case ir.Inheritance:
		return []string{"arrowhead=empty"}
	case ir.Realization:
		return []string{"arrowhead=empty", "style=dashed"}
	case ir.Composition:
		return []string{"dir=both", "arrowtail=diamond", "arrowhead=none"}
	case ir.Aggregation:
		return []string{"dir=both", "arrowtail=odiamond", "arrowhead=none"}
	case ir.DirectedAssociation:
		return []string{"arrowhead=vee"}
	case ir.BidirectionalAssociation:
		return []string{"dir=both", "arrowtail=vee", "arrowhead=vee"}
	case ir.Dependency:
		return []string{"arrowhead=vee", "style=dashed"}
	}
	return []string{"arrowhead=none"}
}

func writeEntities(buf *bytes.Buffer, d *ir.Diagram) {
	for _, e := range d.Entities {
		lines := []string{e.Name}
		for _, c := range e.Columns {
			col := c.Type + " " + c.Name
			if len(c.Keys) > 0 {
				col += " " + strings.Join(c.Keys, ",")
			}
			lines = append(lines, col)
		}
		fmt.Fprintf(buf, "  %s [label=%s];\n", quote(e.Name), label(lines))
	}
	buf.WriteString("\n")
	for i, r := range d.Relationships {
		attrs := []string{
			edgeID(i),
			"dir=both",
			"arrowtail=" + cardinalityArrow(r.FromType),
			"arrowhead=" + cardinalityArrow(r.ToType),
		}
		if r.Weak {
			attrs = append(attrs, "style=dashed")
		}
		if r.Label != "" {
			attrs = append(attrs, "label="+quote(r.Label))
		}
		fmt.Fprintf(buf, "  %s -> %s [%s];\n", quote(r.From), quote(r.To), strings.Join(attrs, ", "))
	}
}

func cardinalityArrow(c ir.Cardinality) string {
	switch c {
	case ir.ZeroOrOne:
		return "teeodot"
	case ir.ExactlyOne:
		return "teetee"
	case ir.ZeroOrMany:
		return "crowodot"
	case ir.OneOrMany:
		return "crowtee"
	}
	return "none"
}

var flowShapes = map[ir.FlowShape][]string{
	ir.ShapeRect:    {"shape=box"},
	ir.ShapeRound:   {"shape=box", "style=rounded"},
	ir.ShapeDiamond: {"shape=diamond"},
	ir.ShapeCircle:  {"shape=circle"},
}

var flowEdgeStyles = map[ir.EdgeStyle][]string{
	ir.EdgeArrow:  nil,
	ir.EdgeOpen:   {"arrowhead=none"},
	ir.EdgeDotted: {"style=dotted"},
	ir.EdgeThick:  {"penwidth=2"},
}

func writeFlowchart(buf *bytes.Buffer, d *ir.Diagram) {
	for _, n := range d.Flowchart.Nodes {
		attrs := append([]string{"label=" + quote(n.Label)}, flowShapes[n.Shape]...)
		fmt.Fprintf(buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}
	buf.WriteString("\n")
	for i, e := range d.Flowchart.Edges {
		attrs := append([]string{edgeID(i)}, flowEdgeStyles[e.Style]...)
		if e.Label != "" {
			attrs = append(attrs, "label="+quote(e.Label))
		}
		fmt.Fprintf(buf, "  %s -> %s [%s];\n", quote(e.From), quote(e.To), strings.Join(attrs, ", "))
	}
}

func rankdir(direction string) string {
	switch direction {
	case "LR", "RL", "BT":
		return direction
	}
	return "TB"
}

func edgeID(i int) string { return fmt.Sprintf("id=\"e%d\"", i) }

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string { return `"` + dotEscaper.Replace(s) + `"` }

// label joins lines into a left-justified multi-line DOT label. The first
// line is the title and stays centered.
func label(lines []string) string {
	if len(lines) == 1 {
		return quote(lines[0])
	}
	var b strings.Builder
	b.WriteString(`"`)
	b.WriteString(dotEscaper.Replace(lines[0]))
	b.WriteString(`\n`)
	for _, l := range lines[1:] {
		b.WriteString(dotEscaper.Replace(l))
		b.WriteString(`\l`)
	}
	b.WriteString(`"`)
	return b.String()
}
