package parser

import (
	"regexp"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

var (
	classDeclRe = regexp.MustCompile(`^class\s+([^\s{}]+)\s*(\{)?\s*(\})?$`)
	// "Foo : +int id" adds a member to Foo without a class block.
	classMemberRe = regexp.MustCompile(`^([A-Za-z_][\w~]*)\s*:\s*(.+)$`)
	annotationRe  = regexp.MustCompile(`^<<.+>>(\s+\S+)?$`)
	quotedRe      = regexp.MustCompile(`"([^"]*)"`)
)

// classParser is the accumulator state machine for class diagrams.
// current indexes the open class in d.Classes, or is -1.
type classParser struct {
	d       *ir.Diagram
	r       diag.Reporter
	current int
	braced  bool
	byName  map[string]int
}

func parseClass(d *ir.Diagram, lines []line, r diag.Reporter) {
	p := &classParser{d: d, r: r, current: -1, byName: make(map[string]int)}
	for _, l := range lines {
		p.line(l)
	}
	if p.braced {
		diag.Warn(r, diag.CodeUnclosedBlock, lastLine(lines), "",
			"class %q is missing its closing brace", d.Classes[p.current].Name)
	}
}

func (p *classParser) line(l line) {
	text := l.text
	switch {
	case isDirective(text) || annotationRe.MatchString(text):
		return
	case strings.HasPrefix(text, "class "):
		p.declare(l)
	case text == "}":
		if !p.braced {
			diag.Warn(p.r, diag.CodeUnrecognizedLine, l.n, text, "closing brace without an open class")
		}
		p.close()
	case notation.IsVisibilitySymbol(text[0]):
		if p.current < 0 {
			diag.Warn(p.r, diag.CodeMalformedMember, l.n, text, "member outside of a class")
			return
		}
		p.member(p.current, l, notation.Visibility(text[0]), text[1:])
	case p.braced:
		p.member(p.current, l, ir.Package, text)
	default:
		if m := classMemberRe.FindStringSubmatch(text); m != nil {
			idx := p.open(m[1])
			body := strings.TrimSpace(m[2])
			vis := ir.Package
			if body != "" && notation.IsVisibilitySymbol(body[0]) {
				vis, body = notation.Visibility(body[0]), body[1:]
			}
			p.member(idx, l, vis, body)
			return
		}
		if p.relationship(l) {
			return
		}
		diag.Warn(p.r, diag.CodeUnrecognizedLine, l.n, text, "unrecognized class diagram line")
	}
}

func (p *classParser) declare(l line) {
	m := classDeclRe.FindStringSubmatch(l.text)
	if m == nil {
		diag.Warn(p.r, diag.CodeUnrecognizedLine, l.n, l.text, "malformed class declaration")
		return
	}
	p.close()
	p.current = p.open(m[1])
	p.braced = m[2] != "" && m[3] == ""
	if m[3] != "" {
		p.close()
	}
}

// open returns the index of the named class, creating it if needed.
func (p *classParser) open(name string) int {
	if i, ok := p.byName[name]; ok {
		return i
	}
	p.d.Classes = append(p.d.Classes, ir.Class{
		Name:       name,
		Attributes: []ir.Attribute{},
		Methods:    []ir.Method{},
	})
	i := len(p.d.Classes) - 1
	p.byName[name] = i
	return i
}

func (p *classParser) close() {
	p.current = -1
	p.braced = false
}

func (p *classParser) member(idx int, l line, vis ir.Visibility, body string) {
	attr, method, ok := parseMember(vis, body)
	if !ok {
		diag.Warn(p.r, diag.CodeMalformedMember, l.n, l.text, "cannot read class member")
		return
	}
	c := &p.d.Classes[idx]
	if method != nil {
		c.Methods = append(c.Methods, *method)
	} else {
		c.Attributes = append(c.Attributes, *attr)
	}
}

// parseMember reads a member body with its visibility symbol removed.
// Attributes are "Type name" or "name: Type". Methods are
// "ReturnType name(params)" or "name(params) ReturnType".
func parseMember(vis ir.Visibility, body string) (*ir.Attribute, *ir.Method, bool) {
	body = strings.TrimRight(strings.TrimSpace(body), "$*")
	if body == "" {
		return nil, nil, false
	}

	open, close := strings.Index(body, "("), strings.LastIndex(body, ")")
	if open >= 0 && close > open {
		m := &ir.Method{Visibility: vis, Parameters: splitParams(body[open+1 : close])}
		head := strings.Fields(body[:open])
		tail := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body[close+1:]), ":"))
		switch len(head) {
		case 0:
			return nil, nil, false
		case 1:
			m.Name, m.ReturnType = head[0], tail
		default:
			m.Name = head[len(head)-1]
			m.ReturnType = strings.Join(head[:len(head)-1], " ")
		}
		return nil, m, true
	}

	a := &ir.Attribute{Visibility: vis}
	if i := strings.Index(body, ":"); i >= 0 {
		a.Name = strings.TrimSpace(body[:i])
		a.Type = strings.TrimSpace(body[i+1:])
		return a, nil, a.Name != ""
	}
	fields := strings.Fields(body)
	if len(fields) == 1 {
		a.Name = fields[0]
		return a, nil, true
	}
	a.Name = fields[len(fields)-1]
	a.Type = strings.Join(fields[:len(fields)-1], " ")
	return a, nil, true
}

func splitParams(s string) []string {
	params := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return params
}

// relationship reads "A <conn> B [: label]". Quoted multiplicities next to
// the endpoints ("1", "0..*") become cardinalities. Flipped connectors swap
// both endpoints and cardinalities so From is always the semantic source.
// It returns false when the line holds no class connector at all.
func (p *classParser) relationship(l line) bool {
	lhs, label := splitLabel(l.text)
	conn, idx, ok := notation.MatchClass(lhs)
	if !ok {
		return false
	}
	from, fromCard := classEndpoint(lhs[:idx])
	to, toCard := classEndpoint(lhs[idx+len(conn.Token):])
	if from == "" || to == "" {
		diag.Warn(p.r, diag.CodeMalformedRelation, l.n, l.text, "relationship %q is missing an endpoint", conn.Token)
		return true
	}
	if conn.Flipped {
		from, to = to, from
		fromCard, toCard = toCard, fromCard
	}
	p.d.Relationships = append(p.d.Relationships, ir.Relationship{
		From:     from,
		To:       to,
		Type:     conn.Kind,
		Label:    label,
		FromType: fromCard,
		ToType:   toCard,
	})
	return true
}

func classEndpoint(s string) (string, ir.Cardinality) {
	var card ir.Cardinality
	if m := quotedRe.FindStringSubmatch(s); m != nil {
		card, _ = notation.CardinalityOf(m[1])
		s = quotedRe.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s), card
}

func lastLine(lines []line) int {
	if len(lines) == 0 {
		return 0
	}
	return lines[len(lines)-1].n
}
