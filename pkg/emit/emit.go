package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

const indent = "    "

// Diagram emits d as diagram text.
func Diagram(d *ir.Diagram) (string, error) {
	if d == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "nil diagram")
	}
	var b strings.Builder
	var err error
	switch d.Kind {
	case ir.KindClass:
		err = writeClassDiagram(&b, d.Classes, d.Relationships)
	case ir.KindER:
		err = writeERDiagram(&b, d.Entities, d.Relationships)
	case ir.KindSequence:
		writeSequence(&b, d)
	case ir.KindFlowchart:
		writeFlowchart(&b, d.Flowchart)
	default:
		return "", errors.New(errors.ErrCodeUnsupportedDiagramType, "cannot emit %q", d.Kind)
	}
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeClassDiagram(b *strings.Builder, classes []ir.Class, rels []ir.Relationship) error {
	b.WriteString("classDiagram\n")
	for _, c := range classes {
		if len(c.Attributes) == 0 && len(c.Methods) == 0 {
			fmt.Fprintf(b, "%sclass %s\n", indent, c.Name)
			continue
		}
		fmt.Fprintf(b, "%sclass %s {\n", indent, c.Name)
		for _, a := range c.Attributes {
			fmt.Fprintf(b, "%s%s%s\n", indent, indent, attribute(a))
		}
		for _, m := range c.Methods {
			fmt.Fprintf(b, "%s%s%s\n", indent, indent, method(m))
		}
		fmt.Fprintf(b, "%s}\n", indent)
	}
	for _, r := range rels {
		tok, ok := notation.ClassToken(r.Type)
		if !ok {
			return errors.New(errors.ErrCodeUnsupported, "no class connector for %q", r.Type)
		}
		b.WriteString(indent)
		b.WriteString(r.From)
		if m := notation.Multiplicity(r.FromType); m != "" {
			fmt.Fprintf(b, " %q", m)
		}
		b.WriteString(" " + tok)
		if m := notation.Multiplicity(r.ToType); m != "" {
			fmt.Fprintf(b, " %q", m)
		}
		b.WriteString(" " + r.To)
		writeLabel(b, r.Label)
		b.WriteString("\n")
	}
	return nil
}

// attribute writes the type before the name, which is how the parser reads
// space separated members back.
func attribute(a ir.Attribute) string {
	s := notation.VisibilitySymbol(a.Visibility)
	if a.Type != "" {
		s += a.Type + " "
	}
	return s + a.Name
}

func method(m ir.Method) string {
	s := fmt.Sprintf("%s%s(%s)", notation.VisibilitySymbol(m.Visibility), m.Name, strings.Join(m.Parameters, ", "))
	if m.ReturnType != "" {
		s += " " + m.ReturnType
	}
	return s
}

func writeERDiagram(b *strings.Builder, entities []ir.Entity, rels []ir.Relationship) error {
	b.WriteString("erDiagram\n")
	for _, e := range entities {
		fmt.Fprintf(b, "%s%s {\n", indent, e.Name)
		for _, c := range e.Columns {
			fmt.Fprintf(b, "%s%s%s\n", indent, indent, column(c))
		}
		fmt.Fprintf(b, "%s}\n", indent)
	}
	for _, r := range rels {
		from, to := r.FromType, r.ToType
		if from == "" {
			from = ir.ExactlyOne
		}
		if to == "" {
			to = ir.ExactlyOne
		}
		tok, ok := notation.ERToken(from, to, r.Weak || r.Type == ir.NonIdentifying)
		if !ok {
			return errors.New(errors.ErrCodeUnsupported, "no ER connector for %s/%s", from, to)
		}
		fmt.Fprintf(b, "%s%s %s %s", indent, r.From, tok, r.To)
		writeLabel(b, r.Label)
		b.WriteString("\n")
	}
	return nil
}

// column writes a column line. SQL type names are written back in their
// lower-case diagram form.
func column(c ir.Column) string {
	s := notation.ERType(c.Type)
	if n := c.Length(); n != "" {
		s += "(" + n + ")"
	}
	s += " " + c.Name
	if len(c.Keys) > 0 {
		s += " " + strings.Join(c.Keys, ",")
	}
	var props []string
	for _, k := range sortedKeys(c.Properties) {
		switch k {
		case ir.PropLength:
		case ir.PropComment:
			props = append(props, c.Properties[k])
		default:
			props = append(props, k+": "+c.Properties[k])
		}
	}
	if len(props) > 0 {
		s += ` "` + strings.Join(props, ", ") + `"`
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeLabel(b *strings.Builder, label string) {
	if label != "" {
		b.WriteString(" : " + label)
	}
}
