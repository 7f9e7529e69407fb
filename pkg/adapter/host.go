package adapter

import "github.com/matzehuels/diagramkit/pkg/ir"

// Handle is an opaque reference to an object created by a [Host].
type Handle any

// ElementKind is the capability of a created element.
type ElementKind string

const (
	ElementClass       ElementKind = "class"
	ElementEntity      ElementKind = "entity"
	ElementParticipant ElementKind = "participant"
	ElementFragment    ElementKind = "fragment"
	ElementNode        ElementKind = "node"
)

// ConnectorKind is the capability of a created connector.
type ConnectorKind string

const (
	ConnectorRelationship ConnectorKind = "relationship"
	ConnectorMessage      ConnectorKind = "message"
	ConnectorFlow         ConnectorKind = "flow"
)

// Bounds is a box in layout coordinates.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementSpec describes a visual element to create. Properties carries
// kind-specific data such as members, columns or the participant role.
type ElementSpec struct {
	Kind       ElementKind
	Name       string
	Label      string
	Properties map[string]any
	Bounds     *Bounds
}

// ConnectorSpec describes a connector between two created elements.
type ConnectorSpec struct {
	Kind  ConnectorKind
	Type  string
	Label string
	// From and To are the endpoint names as they appear in the diagram.
	From, To string
	// Ends holds end1 (target side) and end2 (source side).
	Ends       [2]ir.End
	Properties map[string]any
	// Points is the routed path, when a layout is available.
	Points [][2]float64
}

// Host creates objects in a modeling application.
type Host interface {
	CreateContainer(kind ir.Kind, name string) (Handle, error)
	CreateDiagram(container Handle, kind ir.Kind, name string) (Handle, error)
	CreateElement(diagram Handle, spec ElementSpec) (Handle, error)
	CreateConnector(diagram Handle, spec ConnectorSpec, tail, head Handle) (Handle, error)
}
