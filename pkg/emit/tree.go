package emit

import (
	"strings"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

// Kind is the capability of an [Element].
type Kind string

const (
	KindModel          Kind = "model"
	KindClass          Kind = "class"
	KindEntity         Kind = "entity"
	KindAssociation    Kind = "association"
	KindGeneralization Kind = "generalization"
	KindRealization    Kind = "realization"
	KindDependency     Kind = "dependency"
	KindRelationship   Kind = "relationship"
)

// Element is one node of a host model graph, tagged with its capability.
// Only the fields that belong to its kind are set.
type Element struct {
	Kind     Kind
	Name     string
	Children []*Element

	// Classes.
	Attributes []ir.Attribute
	Methods    []ir.Method

	// Entities.
	Columns []ir.Column

	// Connectors. Source is the semantic source: the child of a
	// generalization, the whole of a composition.
	Source, Target string
	Label          string

	// End1 is the target side and End2 the source side.
	End1, End2         ir.End
	SourceMultiplicity string
	TargetMultiplicity string
	Weak               bool
}

// NewModel returns a container element owning children.
func NewModel(name string, children ...*Element) *Element {
	return &Element{Kind: KindModel, Name: name, Children: children}
}

// NewClass returns a class element.
func NewClass(name string, attrs []ir.Attribute, methods []ir.Method) *Element {
	return &Element{Kind: KindClass, Name: name, Attributes: attrs, Methods: methods}
}

// NewEntity returns an entity element.
func NewEntity(name string, columns []ir.Column) *Element {
	return &Element{Kind: KindEntity, Name: name, Columns: columns}
}

// NewAssociation returns an association. Its relation kind is read from
// the ends: aggregation on end2, then navigability.
func NewAssociation(source, target, label string, end1, end2 ir.End) *Element {
	return &Element{Kind: KindAssociation, Source: source, Target: target, Label: label, End1: end1, End2: end2}
}

// NewGeneralization returns an inheritance from child to parent.
func NewGeneralization(child, parent string) *Element {
	return &Element{Kind: KindGeneralization, Source: child, Target: parent}
}

// NewRealization returns an interface realization.
func NewRealization(impl, iface string) *Element {
	return &Element{Kind: KindRealization, Source: impl, Target: iface}
}

// NewDependency returns a usage dependency.
func NewDependency(client, supplier, label string) *Element {
	return &Element{Kind: KindDependency, Source: client, Target: supplier, Label: label}
}

// NewRelationship returns an ER relationship. Multiplicities use UML
// notation ("1", "0..*").
func NewRelationship(from, to, label, fromMult, toMult string, weak bool) *Element {
	return &Element{
		Kind: KindRelationship, Source: from, Target: to, Label: label,
		SourceMultiplicity: fromMult, TargetMultiplicity: toMult, Weak: weak,
	}
}

// relationKind maps a connector element to its relation kind.
func (e *Element) relationKind() ir.RelationKind {
	switch e.Kind {
	case KindGeneralization:
		return ir.Inheritance
	case KindRealization:
		return ir.Realization
	case KindDependency:
		return ir.Dependency
	case KindRelationship:
		if e.Weak {
			return ir.NonIdentifying
		}
		return ir.Identifying
	}
	switch {
	case e.End2.Aggregation == ir.AggregationComposite:
		return ir.Composition
	case e.End2.Aggregation == ir.AggregationShared:
		return ir.Aggregation
	case e.End1.Navigable && e.End2.Navigable:
		return ir.BidirectionalAssociation
	case e.End1.Navigable:
		return ir.DirectedAssociation
	}
	return ir.Association
}

func (e *Element) relationship() ir.Relationship {
	r := ir.Relationship{From: e.Source, To: e.Target, Type: e.relationKind(), Label: e.Label, Weak: e.Weak}
	r.FromType, _ = notation.CardinalityOf(e.SourceMultiplicity)
	r.ToType, _ = notation.CardinalityOf(e.TargetMultiplicity)
	return r
}

// collected is what a walk over an element tree found.
type collected struct {
	classes  []ir.Class
	entities []ir.Entity
	rels     []ir.Relationship
	er       bool
	class    bool
}

func (c *collected) walk(e *Element) {
	if e == nil {
		return
	}
	switch e.Kind {
	case KindClass:
		c.class = true
		c.classes = append(c.classes, ir.Class{Name: e.Name, Attributes: e.Attributes, Methods: e.Methods})
	case KindEntity:
		c.er = true
		c.entities = append(c.entities, ir.Entity{Name: e.Name, Columns: e.Columns})
	case KindAssociation, KindGeneralization, KindRealization, KindDependency:
		c.class = true
		c.rels = append(c.rels, e.relationship())
	case KindRelationship:
		c.er = true
		c.rels = append(c.rels, e.relationship())
	}
	for _, child := range e.Children {
		c.walk(child)
	}
}

// Tree walks root and every owned element and emits a class or ER diagram,
// depending on what the tree holds. Trees mixing both are rejected.
func Tree(root *Element) (string, error) {
	var c collected
	c.walk(root)

	var b strings.Builder
	var err error
	switch {
	case c.class && c.er:
		return "", errors.New(errors.ErrCodeUnsupported, "model mixes class and entity elements")
	case c.class:
		err = writeClassDiagram(&b, c.classes, c.rels)
	case c.er:
		err = writeERDiagram(&b, c.entities, c.rels)
	default:
		return "", errors.New(errors.ErrCodeEmptyInput, "model %q has no classes or entities", nameOf(root))
	}
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func nameOf(e *Element) string {
	if e == nil {
		return ""
	}
	return e.Name
}

// FromDiagram wraps a class or ER diagram into an element tree.
func FromDiagram(d *ir.Diagram) (*Element, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil diagram")
	}
	root := NewModel(string(d.Kind))
	switch d.Kind {
	case ir.KindClass:
		for _, c := range d.Classes {
			root.Children = append(root.Children, NewClass(c.Name, c.Attributes, c.Methods))
		}
		for _, r := range d.Relationships {
			root.Children = append(root.Children, classConnector(r))
		}
	case ir.KindER:
		for _, e := range d.Entities {
			root.Children = append(root.Children, NewEntity(e.Name, e.Columns))
		}
		for _, r := range d.Relationships {
			root.Children = append(root.Children, NewRelationship(r.From, r.To, r.Label,
				notation.Multiplicity(r.FromType), notation.Multiplicity(r.ToType), r.Weak))
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "no element tree for %q", d.Kind)
	}
	return root, nil
}

func classConnector(r ir.Relationship) *Element {
	var e *Element
	switch r.Type {
	case ir.Inheritance:
		e = NewGeneralization(r.From, r.To)
	case ir.Realization:
		e = NewRealization(r.From, r.To)
	case ir.Dependency:
		e = NewDependency(r.From, r.To, "")
	default:
		end1, end2 := r.Ends()
		e = NewAssociation(r.From, r.To, "", end1, end2)
	}
	e.Label = r.Label
	e.SourceMultiplicity = notation.Multiplicity(r.FromType)
	e.TargetMultiplicity = notation.Multiplicity(r.ToType)
	return e
}
