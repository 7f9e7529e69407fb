package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

// pointsPerInch converts Graphviz node sizes (inches) to layout units.
const pointsPerInch = 72

// Layout is the computed geometry of a node-link diagram. Coordinates use a
// top-left origin with y growing downwards.
type Layout struct {
	Kind   ir.Kind `json:"kind"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
}

// Node is a positioned box. X and Y are its top-left corner.
type Node struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal center of the node.
func (n Node) CenterX() float64 { return n.X + n.Width/2 }

// CenterY returns the vertical center of the node.
func (n Node) CenterY() float64 { return n.Y + n.Height/2 }

// Point is a layout coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a routed connection. Points is the spline control polygon;
// Index is the position of the relationship or flow edge in the IR.
type Edge struct {
	Index    int     `json:"index"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Points   []Point `json:"points"`
	LabelPos *Point  `json:"labelPos,omitempty"`
}

// Node returns the node with the given id.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Compute lays out d with the Graphviz dot engine.
func Compute(ctx context.Context, d *ir.Diagram) (*Layout, error) {
	dot, err := ToDOT(d)
	if err != nil {
		return nil, err
	}
	out, err := renderXDOT(ctx, dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "graphviz layout of %s", d.Kind)
	}
	l, err := ParseXDOT(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "read graphviz output")
	}
	l.Kind = d.Kind
	return l, nil
}

func renderXDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

const dotID = `"(?:[^"\\]|\\.)*"|[\w.]+`

var (
	stmtRe = regexp.MustCompile(`(?s)(` + dotID + `)\s*(?:->\s*(` + dotID + `)\s*)?\[((?:[^\]"]|"(?:[^"\\]|\\.)*")*)\]`)
	attrRe = regexp.MustCompile(`(\w+)=("(?:[^"\\]|\\.)*"|[^,\s\]]+)`)
)

// ParseXDOT reads node and edge geometry from Graphviz "dot" output.
func ParseXDOT(out []byte) (*Layout, error) {
	text := strings.ReplaceAll(string(out), "\\\n", "")
	text = strings.ReplaceAll(text, "\\\r\n", "")

	l := &Layout{Nodes: []Node{}, Edges: []Edge{}}
	var height float64
	haveBB := false

	for _, m := range stmtRe.FindAllStringSubmatch(text, -1) {
		name, target, attrs := unquoteID(m[1]), m[2], parseAttrs(m[3])
		switch {
		case name == "graph" && target == "":
			bb, ok := attrs["bb"]
			if !ok {
				continue
			}
			box, err := floats(bb, 4)
			if err != nil {
				return nil, fmt.Errorf("graph bb: %w", err)
			}
			l.Width, l.Height = box[2]-box[0], box[3]-box[1]
			height, haveBB = box[3], true
		case name == "node" || name == "edge":
			continue
		case target == "":
			n, err := parseNode(name, attrs)
			if err != nil {
				return nil, err
			}
			l.Nodes = append(l.Nodes, n)
		default:
			e, err := parseEdge(name, unquoteID(target), attrs)
			if err != nil {
				return nil, err
			}
			l.Edges = append(l.Edges, e)
		}
	}
	if !haveBB {
		return nil, fmt.Errorf("no bounding box in graphviz output")
	}

	// Flip to a top-left origin.
	for i := range l.Nodes {
		n := &l.Nodes[i]
		n.Y = height - n.Y - n.Height
	}
	for i := range l.Edges {
		e := &l.Edges[i]
		for j := range e.Points {
			e.Points[j].Y = height - e.Points[j].Y
		}
		if e.LabelPos != nil {
			e.LabelPos.Y = height - e.LabelPos.Y
		}
	}
	return l, nil
}

// parseNode returns the node with Y still measured from the bottom.
func parseNode(id string, attrs map[string]string) (Node, error) {
	pos, err := floats(attrs["pos"], 2)
	if err != nil {
		return Node{}, fmt.Errorf("node %s pos: %w", id, err)
	}
	w, err := strconv.ParseFloat(attrs["width"], 64)
	if err != nil {
		return Node{}, fmt.Errorf("node %s width: %w", id, err)
	}
	h, err := strconv.ParseFloat(attrs["height"], 64)
	if err != nil {
		return Node{}, fmt.Errorf("node %s height: %w", id, err)
	}
	w, h = w*pointsPerInch, h*pointsPerInch
	return Node{ID: id, X: pos[0] - w/2, Y: pos[1] - h/2, Width: w, Height: h}, nil
}

func parseEdge(from, to string, attrs map[string]string) (Edge, error) {
	e := Edge{Index: -1, From: from, To: to, Points: []Point{}}
	if id := attrs["id"]; strings.HasPrefix(id, "e") {
		if n, err := strconv.Atoi(id[1:]); err == nil {
			e.Index = n
		}
	}
	// pos is "[e,x,y] [s,x,y] x,y x,y ..." where e/s mark arrow tips.
	var tip *Point
	for _, tok := range strings.Fields(attrs["pos"]) {
		marker := ""
		if strings.HasPrefix(tok, "e,") || strings.HasPrefix(tok, "s,") {
			marker, tok = tok[:1], tok[2:]
		}
		xy, err := floats(tok, 2)
		if err != nil {
			return Edge{}, fmt.Errorf("edge %s->%s pos: %w", from, to, err)
		}
		p := Point{X: xy[0], Y: xy[1]}
		switch marker {
		case "e":
			tip = &p
		case "s":
			e.Points = append([]Point{p}, e.Points...)
		default:
			e.Points = append(e.Points, p)
		}
	}
	if tip != nil {
		e.Points = append(e.Points, *tip)
	}
	if lp, ok := attrs["lp"]; ok {
		if xy, err := floats(lp, 2); err == nil {
			e.LabelPos = &Point{X: xy[0], Y: xy[1]}
		}
	}
	return e, nil
}

func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = unquoteID(m[2])
	}
	return attrs
}

func unquoteID(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
		return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
	}
	return s
}

func floats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < n {
		return nil, fmt.Errorf("want %d numbers in %q", n, s)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
