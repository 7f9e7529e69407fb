package parser

import (
	"regexp"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

// DefaultFlowDirection is used when the header names no direction.
const DefaultFlowDirection = "TD"

var flowDirections = map[string]bool{"TD": true, "TB": true, "BT": true, "LR": true, "RL": true}

var (
	flowIDRe = regexp.MustCompile(`^[A-Za-z0-9_]+`)
	// "-- text -->" and "-- text ---" carry their label inline.
	flowTextLinkRe = regexp.MustCompile(`^--\s*([^\s\->|][^>|]*?)\s*(-->|---)`)
	flowLinkRe     = regexp.MustCompile(`^(-\.->|-->|---|==>)`)
	flowPipeRe     = regexp.MustCompile(`^\|([^|]*)\|`)
)

var flowLinkStyles = map[string]ir.EdgeStyle{
	"-->":  ir.EdgeArrow,
	"---":  ir.EdgeOpen,
	"-.->": ir.EdgeDotted,
	"==>":  ir.EdgeThick,
}

// flowShapes is ordered so "((" is tried before "(".
var flowShapes = []struct {
	open, close string
	shape       ir.FlowShape
}{
	{"((", "))", ir.ShapeCircle},
	{"[", "]", ir.ShapeRect},
	{"(", ")", ir.ShapeRound},
	{"{", "}", ir.ShapeDiamond},
}

// ignoredFlowKeywords open statements the IR does not model.
var ignoredFlowKeywords = []string{"subgraph", "end", "classDef", "class", "style", "linkStyle", "click"}

func flowDirection(header string) string {
	fields := strings.Fields(header)
	if len(fields) > 1 && flowDirections[strings.ToUpper(fields[1])] {
		return strings.ToUpper(fields[1])
	}
	return DefaultFlowDirection
}

type flowParser struct {
	d    *ir.Diagram
	r    diag.Reporter
	byID map[string]int
}

func parseFlow(d *ir.Diagram, lines []line, r diag.Reporter) {
	p := &flowParser{d: d, r: r, byID: make(map[string]int)}
	for _, l := range lines {
		if isDirective(l.text) || ignoredFlowStatement(l.text) {
			continue
		}
		stmts := []string{l.text}
		if !strings.Contains(l.text, `"`) {
			stmts = strings.Split(l.text, ";")
		}
		for _, stmt := range stmts {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				p.statement(line{n: l.n, text: stmt})
			}
		}
	}
}

func ignoredFlowStatement(s string) bool {
	for _, k := range ignoredFlowKeywords {
		if s == k || strings.HasPrefix(s, k+" ") {
			return true
		}
	}
	return false
}

// statement reads a node declaration or a chain of edges:
// A[Start] --> B{Ok?} -->|yes| C.
func (p *flowParser) statement(l line) {
	rest := l.text
	from, rest, ok := p.node(rest)
	if !ok {
		diag.Warn(p.r, diag.CodeUnrecognizedLine, l.n, l.text, "unrecognized flowchart line")
		return
	}
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return
		}
		style, label, after, ok := flowLink(rest)
		if !ok {
			diag.Warn(p.r, diag.CodeMalformedRelation, l.n, l.text, "expected a link after %q", from)
			return
		}
		to, after, ok := p.node(strings.TrimSpace(after))
		if !ok {
			diag.Warn(p.r, diag.CodeMalformedRelation, l.n, l.text, "link from %q has no target", from)
			return
		}
		p.d.Flowchart.Edges = append(p.d.Flowchart.Edges, ir.FlowEdge{From: from, To: to, Label: label, Style: style})
		from, rest = to, after
	}
}

// node reads an id with an optional shape and registers it.
func (p *flowParser) node(s string) (string, string, bool) {
	id := flowIDRe.FindString(s)
	if id == "" {
		return "", s, false
	}
	rest := s[len(id):]
	for _, sh := range flowShapes {
		if !strings.HasPrefix(rest, sh.open) {
			continue
		}
		end := strings.Index(rest[len(sh.open):], sh.close)
		if end < 0 {
			return "", s, false
		}
		label := unquote(strings.TrimSpace(rest[len(sh.open) : len(sh.open)+end]))
		p.declare(id, label, sh.shape)
		return id, rest[len(sh.open)+end+len(sh.close):], true
	}
	p.reference(id)
	return id, rest, true
}

func (p *flowParser) declare(id, label string, shape ir.FlowShape) {
	if i, ok := p.byID[id]; ok {
		n := &p.d.Flowchart.Nodes[i]
		n.Label, n.Shape = label, shape
	} else {
		p.d.Flowchart.Nodes = append(p.d.Flowchart.Nodes, ir.FlowNode{ID: id, Label: label, Shape: shape})
		p.byID[id] = len(p.d.Flowchart.Nodes) - 1
	}
}

// reference registers a node seen without a shape. Its label is its id until
// a declaration says otherwise.
func (p *flowParser) reference(id string) {
	if _, ok := p.byID[id]; ok {
		return
	}
	p.d.Flowchart.Nodes = append(p.d.Flowchart.Nodes, ir.FlowNode{ID: id, Label: id, Shape: ir.ShapeRect})
	p.byID[id] = len(p.d.Flowchart.Nodes) - 1
}

func flowLink(s string) (ir.EdgeStyle, string, string, bool) {
	if m := flowTextLinkRe.FindStringSubmatch(s); m != nil {
		return flowLinkStyles[m[2]], strings.TrimSpace(m[1]), s[len(m[0]):], true
	}
	tok := flowLinkRe.FindString(s)
	if tok == "" {
		return "", "", s, false
	}
	rest := strings.TrimSpace(s[len(tok):])
	label := ""
	if m := flowPipeRe.FindStringSubmatch(rest); m != nil {
		label = unquote(strings.TrimSpace(m[1]))
		rest = rest[len(m[0]):]
	}
	return flowLinkStyles[tok], label, rest, true
}
