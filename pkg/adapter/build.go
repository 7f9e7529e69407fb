package adapter

import (
	"fmt"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/layout/nodelink"
	"github.com/matzehuels/diagramkit/pkg/layout/sequence"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

// Options configures [Build].
type Options struct {
	// Name names the container and diagram. Defaults to the diagram kind.
	Name string
	// Sequence places participants, messages and fragments.
	Sequence *sequence.Layout
	// NodeLink places classes, entities and flowchart nodes.
	NodeLink *nodelink.Layout
}

// Result holds the handles created by [Build].
type Result struct {
	Container  Handle
	Diagram    Handle
	Elements   map[string]Handle
	Connectors []Handle
}

// Unresolved is one connector endpoint that names no created element.
type Unresolved struct {
	Connector ConnectorKind
	Index     int
	End       string
	Name      string
}

// UnresolvedError lists every unresolved endpoint of a [Build] call.
type UnresolvedError struct {
	Endpoints []Unresolved
}

func (e *UnresolvedError) Error() string {
	parts := make([]string, len(e.Endpoints))
	for i, u := range e.Endpoints {
		parts[i] = fmt.Sprintf("%s %d: %s endpoint %q has no element", u.Connector, u.Index, u.End, u.Name)
	}
	return strings.Join(parts, "; ")
}

type builder struct {
	host       Host
	opts       Options
	res        *Result
	unresolved []Unresolved
}

// Build creates d in host. Host failures abort the build. Unresolved
// endpoints do not: every resolvable connector is still created and the
// returned error wraps an [*UnresolvedError] with code
// [errors.ErrCodeUnresolvedEndpoint].
func Build(d *ir.Diagram, host Host, opts Options) (*Result, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil diagram")
	}
	if host == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil host")
	}
	if opts.Name == "" {
		opts.Name = string(d.Kind)
	}

	b := &builder{host: host, opts: opts, res: &Result{Elements: make(map[string]Handle)}}
	var err error
	if b.res.Container, err = host.CreateContainer(d.Kind, opts.Name); err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}
	if b.res.Diagram, err = host.CreateDiagram(b.res.Container, d.Kind, opts.Name); err != nil {
		return nil, fmt.Errorf("create diagram: %w", err)
	}

	switch d.Kind {
	case ir.KindClass:
		err = b.classes(d)
	case ir.KindER:
		err = b.entities(d)
	case ir.KindSequence:
		err = b.sequence(d)
	case ir.KindFlowchart:
		err = b.flowchart(d)
	default:
		err = errors.New(errors.ErrCodeUnsupportedDiagramType, "cannot build %q", d.Kind)
	}
	if err != nil {
		return b.res, err
	}

	if len(b.unresolved) > 0 {
		return b.res, errors.Wrap(errors.ErrCodeUnresolvedEndpoint, &UnresolvedError{Endpoints: b.unresolved},
			"%d unresolved endpoint(s)", len(b.unresolved))
	}
	return b.res, nil
}

func (b *builder) element(spec ElementSpec) error {
	if err := errors.ValidateName(spec.Name); err != nil {
		return err
	}
	h, err := b.host.CreateElement(b.res.Diagram, spec)
	if err != nil {
		return fmt.Errorf("create %s %q: %w", spec.Kind, spec.Name, err)
	}
	if spec.Kind != ElementFragment {
		b.res.Elements[spec.Name] = h
	}
	return nil
}

// connector resolves both endpoints and creates the connector. Unresolved
// endpoints are recorded and the connector is skipped.
func (b *builder) connector(i int, spec ConnectorSpec) error {
	tail, okTail := b.res.Elements[spec.From]
	head, okHead := b.res.Elements[spec.To]
	if !okTail {
		b.unresolved = append(b.unresolved, Unresolved{Connector: spec.Kind, Index: i, End: "from", Name: spec.From})
	}
	if !okHead {
		b.unresolved = append(b.unresolved, Unresolved{Connector: spec.Kind, Index: i, End: "to", Name: spec.To})
	}
	if !okTail || !okHead {
		return nil
	}
	h, err := b.host.CreateConnector(b.res.Diagram, spec, tail, head)
	if err != nil {
		return fmt.Errorf("create %s %s->%s: %w", spec.Kind, spec.From, spec.To, err)
	}
	b.res.Connectors = append(b.res.Connectors, h)
	return nil
}

func (b *builder) nodeBounds(name string) *Bounds {
	if b.opts.NodeLink == nil {
		return nil
	}
	n, ok := b.opts.NodeLink.Node(name)
	if !ok {
		return nil
	}
	return &Bounds{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

func (b *builder) edgePoints(i int) [][2]float64 {
	if b.opts.NodeLink == nil {
		return nil
	}
	for _, e := range b.opts.NodeLink.Edges {
		if e.Index != i {
			continue
		}
		pts := make([][2]float64, len(e.Points))
		for j, p := range e.Points {
			pts[j] = [2]float64{p.X, p.Y}
		}
		return pts
	}
	return nil
}

func (b *builder) classes(d *ir.Diagram) error {
	for _, c := range d.Classes {
		spec := ElementSpec{
			Kind:  ElementClass,
			Name:  c.Name,
			Label: c.Name,
			Properties: map[string]any{
				"attributes": c.Attributes,
				"methods":    c.Methods,
			},
			Bounds: b.nodeBounds(c.Name),
		}
		if err := b.element(spec); err != nil {
			return err
		}
	}
	return b.relationships(d)
}

func (b *builder) entities(d *ir.Diagram) error {
	for _, e := range d.Entities {
		spec := ElementSpec{
			Kind:       ElementEntity,
			Name:       e.Name,
			Label:      e.Name,
			Properties: map[string]any{"columns": e.Columns, "sqlTypes": sqlTypes(e.Columns)},
			Bounds:     b.nodeBounds(e.Name),
		}
		if err := b.element(spec); err != nil {
			return err
		}
	}
	return b.relationships(d)
}

// sqlTypes lists the SQL column type of each column, in column order.
func sqlTypes(cols []ir.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = notation.SQLType(c.Type)
	}
	return out
}

func (b *builder) relationships(d *ir.Diagram) error {
	for i, r := range d.Relationships {
		props := map[string]any{}
		if r.FromType != "" {
			props["fromMultiplicity"] = r.FromType
		}
		if r.ToType != "" {
			props["toMultiplicity"] = r.ToType
		}
		if d.Kind == ir.KindER {
			props["weak"] = r.Weak
		}
		end1, end2 := r.Ends()
		spec := ConnectorSpec{
			Kind:       ConnectorRelationship,
			Type:       string(r.Type),
			Label:      r.Label,
			From:       r.From,
			To:         r.To,
			Ends:       [2]ir.End{end1, end2},
			Properties: props,
			Points:     b.edgePoints(i),
		}
		if err := b.connector(i, spec); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) sequence(d *ir.Diagram) error {
	seq := b.opts.Sequence
	for _, p := range d.Participants {
		spec := ElementSpec{
			Kind:       ElementParticipant,
			Name:       p.Name,
			Label:      p.Label(),
			Properties: map[string]any{"role": p.Role, "index": p.Index},
		}
		if seq != nil {
			if ll, ok := seq.Lifeline(p.Name); ok {
				spec.Bounds = &Bounds{X: ll.X, Y: ll.Top, Width: ll.Width, Height: ll.Height}
			}
		}
		if err := b.element(spec); err != nil {
			return err
		}
	}

	if seq != nil {
		for _, f := range seq.Fragments {
			spec := ElementSpec{
				Kind:       ElementFragment,
				Name:       f.ID,
				Label:      strings.TrimSpace(string(f.Type) + " " + f.Condition),
				Properties: map[string]any{"operator": f.Type, "operands": f.Operands},
				Bounds:     &Bounds{X: f.X1, Y: f.Y1, Width: f.Width(), Height: f.Height()},
			}
			if err := b.element(spec); err != nil {
				return err
			}
		}
	}

	for i, m := range d.Messages {
		spec := ConnectorSpec{
			Kind:  ConnectorMessage,
			Type:  string(m.Type),
			Label: m.Text,
			From:  m.From,
			To:    m.To,
			Properties: map[string]any{
				"messageId": m.ID,
				"direction": m.Direction,
				"line":      m.Line,
			},
		}
		if m.ControlStructureID != "" {
			spec.Properties["fragment"] = m.ControlStructureID
		}
		if seq != nil && i < len(seq.Messages) && seq.Messages[i].ID == m.ID {
			ml := seq.Messages[i]
			spec.Points = [][2]float64{{ml.X1, ml.Y}, {ml.X2, ml.Y}}
		}
		if err := b.connector(i, spec); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) flowchart(d *ir.Diagram) error {
	for _, n := range d.Flowchart.Nodes {
		spec := ElementSpec{
			Kind:       ElementNode,
			Name:       n.ID,
			Label:      n.Label,
			Properties: map[string]any{"shape": n.Shape},
			Bounds:     b.nodeBounds(n.ID),
		}
		if err := b.element(spec); err != nil {
			return err
		}
	}
	for i, e := range d.Flowchart.Edges {
		spec := ConnectorSpec{
			Kind:       ConnectorFlow,
			Type:       string(e.Style),
			Label:      e.Label,
			From:       e.From,
			To:         e.To,
			Properties: map[string]any{},
			Points:     b.edgePoints(i),
		}
		if err := b.connector(i, spec); err != nil {
			return err
		}
	}
	return nil
}
