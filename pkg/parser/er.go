package parser

import (
	"regexp"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

var (
	// type[(length)] name [keys] ["properties"]
	columnRe = regexp.MustCompile(`^(\S+?)(?:\(([^)]*)\))?\s+(\S+)(?:\s+([A-Za-z]+(?:\s*,\s*[A-Za-z]+)*))?(?:\s+"([^"]*)")?$`)
	entityRe = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)
)

var validKeys = map[string]bool{
	ir.KeyPrimary: true,
	ir.KeyForeign: true,
	ir.KeyUnique:  true,
}

// erParser tracks the entity whose brace block is open, or -1.
type erParser struct {
	d       *ir.Diagram
	r       diag.Reporter
	current int
}

func parseER(d *ir.Diagram, lines []line, r diag.Reporter) {
	p := &erParser{d: d, r: r, current: -1}
	for _, l := range lines {
		p.line(l)
	}
	if p.current >= 0 {
		diag.Warn(r, diag.CodeUnclosedBlock, lastLine(lines), "",
			"entity %q is missing its closing brace", d.Entities[p.current].Name)
	}
}

func (p *erParser) line(l line) {
	text := l.text
	if isDirective(text) {
		return
	}
	// Relationships come first: the glyph "o{" contains an opening brace.
	if p.relationship(l) {
		return
	}
	switch {
	case strings.Contains(text, "{"):
		p.openEntity(l)
	case strings.Contains(text, "}"):
		if p.current < 0 {
			diag.Warn(p.r, diag.CodeUnrecognizedLine, l.n, text, "closing brace without an open entity")
		}
		p.current = -1
	case p.current >= 0:
		col, ok := parseColumn(text)
		if !ok {
			diag.Warn(p.r, diag.CodeMalformedColumn, l.n, text, "cannot read entity column")
			return
		}
		e := &p.d.Entities[p.current]
		e.Columns = append(e.Columns, col)
	case entityRe.MatchString(text):
		p.addEntity(text)
	default:
		diag.Warn(p.r, diag.CodeUnrecognizedLine, l.n, text, "unrecognized ER diagram line")
	}
}

func (p *erParser) openEntity(l line) {
	open := strings.Index(l.text, "{")
	name := strings.TrimSpace(l.text[:open])
	if name == "" {
		diag.Warn(p.r, diag.CodeUnrecognizedLine, l.n, l.text, "entity block without a name")
		return
	}
	p.current = p.addEntity(name)

	rest := l.text[open+1:]
	closing := strings.Index(rest, "}")
	if closing < 0 {
		return
	}
	if inner := strings.TrimSpace(rest[:closing]); inner != "" {
		if col, ok := parseColumn(inner); ok {
			e := &p.d.Entities[p.current]
			e.Columns = append(e.Columns, col)
		} else {
			diag.Warn(p.r, diag.CodeMalformedColumn, l.n, l.text, "cannot read entity column")
		}
	}
	p.current = -1
}

func (p *erParser) addEntity(name string) int {
	p.d.Entities = append(p.d.Entities, ir.Entity{Name: name, Columns: []ir.Column{}})
	return len(p.d.Entities) - 1
}

// parseColumn reads "type[(length)] name [keys] ["k: v, ..."]".
// Keys outside PK/FK/UK are dropped and property segments without a colon
// are kept under the comment key.
func parseColumn(s string) (ir.Column, bool) {
	m := columnRe.FindStringSubmatch(s)
	if m == nil {
		return ir.Column{}, false
	}
	col := ir.Column{
		Type:       m[1],
		Name:       m[3],
		Keys:       []string{},
		Properties: parseProperties(m[5]),
	}
	if m[2] != "" {
		col.Properties[ir.PropLength] = strings.TrimSpace(m[2])
	}
	if m[4] != "" {
		for _, k := range strings.Split(m[4], ",") {
			k = strings.ToUpper(strings.TrimSpace(k))
			if validKeys[k] && !col.HasKey(k) {
				col.Keys = append(col.Keys, k)
			}
		}
	}
	return col, true
}

func parseProperties(s string) map[string]string {
	props := map[string]string{}
	var comments []string
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		k, v, ok := strings.Cut(seg, ":")
		if !ok {
			comments = append(comments, seg)
			continue
		}
		props[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if len(comments) > 0 {
		props[ir.PropComment] = strings.Join(comments, ", ")
	}
	return props
}

// relationship reads "A <glyph><conn><glyph> B [: label]". It returns false
// when the line is not shaped like a relationship: no connector, or a
// connector with no cardinality glyph next to it.
func (p *erParser) relationship(l line) bool {
	lhs, label := splitLabel(l.text)
	_, idx, weak, ok := notation.ERConnector(lhs)
	if !ok {
		return false
	}
	before := strings.TrimRight(lhs[:idx], " ")
	after := strings.TrimLeft(lhs[idx+2:], " ")

	fromCard, leftGlyph, leftOK := notation.LeftCardinality(before)
	toCard, rightGlyph, rightOK := notation.RightCardinality(after)
	if !leftOK && !rightOK {
		return false
	}

	from := strings.TrimSpace(strings.TrimSuffix(before, leftGlyph))
	to := strings.TrimSpace(strings.TrimPrefix(after, rightGlyph))
	if !leftOK || !rightOK || from == "" || to == "" {
		diag.Warn(p.r, diag.CodeMalformedRelation, l.n, l.text, "relationship needs a cardinality and an entity on both sides")
		return true
	}

	kind := ir.Identifying
	if weak {
		kind = ir.NonIdentifying
	}
	p.d.Relationships = append(p.d.Relationships, ir.Relationship{
		From:     from,
		To:       to,
		Type:     kind,
		Label:    label,
		FromType: fromCard,
		ToType:   toCard,
		Weak:     weak,
	})
	return true
}
