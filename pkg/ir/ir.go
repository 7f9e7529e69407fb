package ir

import "encoding/json"

// Kind identifies the notation a diagram was written in.
type Kind string

// Diagram kinds, named after their header keyword.
const (
	KindClass     Kind = "classDiagram"
	KindER        Kind = "erDiagram"
	KindSequence  Kind = "sequenceDiagram"
	KindFlowchart Kind = "flowchart"
)

// Valid reports whether k is one of the supported diagram kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindClass, KindER, KindSequence, KindFlowchart:
		return true
	}
	return false
}

// Diagram is the IR root. Only the collections relevant to Kind are
// populated; the rest are empty slices.
type Diagram struct {
	Kind              Kind               `json:"type"`
	Classes           []Class            `json:"classes"`
	Entities          []Entity           `json:"entities"`
	Relationships     []Relationship     `json:"relationships"`
	Participants      []Participant      `json:"participants"`
	Messages          []Message          `json:"messages"`
	ControlStructures []ControlStructure `json:"controlStructures"`
	Notes             []Note             `json:"notes"`
	Activations       []Activation       `json:"activations"`
	Flowchart         Flowchart          `json:"flowchart"`
}

// New returns an empty diagram of the given kind with every collection
// initialised, so serialized output shows [] rather than null.
func New(kind Kind) *Diagram {
	return &Diagram{
		Kind:              kind,
		Classes:           []Class{},
		Entities:          []Entity{},
		Relationships:     []Relationship{},
		Participants:      []Participant{},
		Messages:          []Message{},
		ControlStructures: []ControlStructure{},
		Notes:             []Note{},
		Activations:       []Activation{},
		Flowchart:         Flowchart{Nodes: []FlowNode{}, Edges: []FlowEdge{}},
	}
}

// FillEmpty replaces nil top-level collections with empty ones, matching New.
// Decoders call it so absent collections serialize as [] again.
func (d *Diagram) FillEmpty() {
	empty := New(d.Kind)
	if d.Classes == nil {
		d.Classes = empty.Classes
	}
	if d.Entities == nil {
		d.Entities = empty.Entities
	}
	if d.Relationships == nil {
		d.Relationships = empty.Relationships
	}
	if d.Participants == nil {
		d.Participants = empty.Participants
	}
	if d.Messages == nil {
		d.Messages = empty.Messages
	}
	if d.ControlStructures == nil {
		d.ControlStructures = empty.ControlStructures
	}
	if d.Notes == nil {
		d.Notes = empty.Notes
	}
	if d.Activations == nil {
		d.Activations = empty.Activations
	}
	if d.Flowchart.Nodes == nil {
		d.Flowchart.Nodes = empty.Flowchart.Nodes
	}
	if d.Flowchart.Edges == nil {
		d.Flowchart.Edges = empty.Flowchart.Edges
	}
}

// ElementCount returns the number of primary elements (classes, entities,
// participants or flow nodes) for the diagram's kind.
func (d *Diagram) ElementCount() int {
	switch d.Kind {
	case KindClass:
		return len(d.Classes)
	case KindER:
		return len(d.Entities)
	case KindSequence:
		return len(d.Participants)
	case KindFlowchart:
		return len(d.Flowchart.Nodes)
	}
	return 0
}

// ConnectionCount returns the number of connectors (relationships, messages
// or flow edges) for the diagram's kind.
func (d *Diagram) ConnectionCount() int {
	switch d.Kind {
	case KindClass, KindER:
		return len(d.Relationships)
	case KindSequence:
		return len(d.Messages)
	case KindFlowchart:
		return len(d.Flowchart.Edges)
	}
	return 0
}

// =============================================================================
// Class diagrams
// =============================================================================

// Visibility is a UML member visibility.
type Visibility string

const (
	Public    Visibility = "public"
	Private   Visibility = "private"
	Protected Visibility = "protected"
	Package   Visibility = "package"
)

// Class is a class record with its members in declaration order.
type Class struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
	Methods    []Method    `json:"methods"`
}

// Attribute is a class field.
type Attribute struct {
	Visibility Visibility `json:"visibility"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
}

// Method is a class operation. Parameters are kept as written
// (e.g. "int count").
type Method struct {
	Visibility Visibility `json:"visibility"`
	Name       string     `json:"name"`
	ReturnType string     `json:"returnType"`
	Parameters []string   `json:"parameters"`
}

// =============================================================================
// ER diagrams
// =============================================================================

// Column keys.
const (
	KeyPrimary = "PK"
	KeyForeign = "FK"
	KeyUnique  = "UK"
)

// Well-known column property names.
const (
	PropLength   = "length"
	PropNullable = "nullable"
	PropComment  = "comment"
)

// Entity is an ER entity and its columns.
type Entity struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column is an entity attribute. Keys is a subset of PK, FK and UK.
type Column struct {
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Keys       []string          `json:"keys"`
	Properties map[string]string `json:"properties"`
}

// HasKey reports whether the column carries the given key.
func (c Column) HasKey(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Length returns the declared length property, if any.
func (c Column) Length() string { return c.Properties[PropLength] }

// Nullable returns the declared nullable property, if any.
func (c Column) Nullable() string { return c.Properties[PropNullable] }

// =============================================================================
// Relationships (class and ER)
// =============================================================================

// RelationKind is the semantic type of a relationship.
type RelationKind string

// Class diagram relationship kinds.
const (
	Inheritance              RelationKind = "inheritance"
	Realization              RelationKind = "realization"
	Association              RelationKind = "association"
	DirectedAssociation      RelationKind = "directedAssociation"
	BidirectionalAssociation RelationKind = "bidirectionalAssociation"
	Aggregation              RelationKind = "aggregation"
	Composition              RelationKind = "composition"
	Dependency               RelationKind = "dependency"
)

// ER relationship kinds.
const (
	Identifying    RelationKind = "identifying"
	NonIdentifying RelationKind = "nonIdentifying"
)

// Cardinality is one side of an ER relationship.
type Cardinality string

const (
	ZeroOrOne  Cardinality = "ZeroOrOne"
	ExactlyOne Cardinality = "ExactlyOne"
	ZeroOrMany Cardinality = "ZeroOrMany"
	OneOrMany  Cardinality = "OneOrMany"
)

// Relationship is the uniform class/ER relationship record.
type Relationship struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Type     RelationKind `json:"type"`
	Label    string       `json:"label"`
	FromType Cardinality  `json:"fromType,omitempty"`
	ToType   Cardinality  `json:"toType,omitempty"`
	Weak     bool         `json:"weak,omitempty"`
}

// AggregationKind is the aggregation marker of an association end.
type AggregationKind string

const (
	AggregationNone      AggregationKind = "none"
	AggregationShared    AggregationKind = "shared"
	AggregationComposite AggregationKind = "composite"
)

// End describes one end of a class relationship as a modeling host sees it.
type End struct {
	Navigable   bool            `json:"navigable"`
	Aggregation AggregationKind `json:"aggregation"`
}

// Ends returns the navigability and aggregation of both ends of a class
// relationship. end1 is the target side (To), end2 the source side (From).
func (r Relationship) Ends() (end1, end2 End) {
	end1 = End{Aggregation: AggregationNone}
	end2 = End{Aggregation: AggregationNone}
	switch r.Type {
	case DirectedAssociation, Dependency:
		end1.Navigable = true
	case BidirectionalAssociation:
		end1.Navigable = true
		end2.Navigable = true
	case Aggregation:
		end2.Aggregation = AggregationShared
	case Composition:
		end2.Aggregation = AggregationComposite
	}
	return end1, end2
}

// =============================================================================
// Sequence diagrams
// =============================================================================

// Role distinguishes actors from plain participants.
type Role string

const (
	RoleActor       Role = "actor"
	RoleParticipant Role = "participant"
)

// Participant is a declared lifeline. Index is the declaration order.
type Participant struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
	Role  Role   `json:"role"`
	Index int    `json:"index"`
}

// Label returns the display label: the alias when set, else the name.
func (p Participant) Label() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// MessageKind is the message sort of a sequence message.
type MessageKind string

const (
	SynchCall     MessageKind = "synchCall"
	AsynchCall    MessageKind = "asynchCall"
	AsynchSignal  MessageKind = "asynchSignal"
	DeleteMessage MessageKind = "deleteMessage"
	Reply         MessageKind = "reply"
	Self          MessageKind = "self"
)

// Direction tells whether a message travels towards later-declared
// participants (forward) or earlier ones (backward).
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// LineStyle is the stroke of a message arrow.
type LineStyle string

const (
	Solid  LineStyle = "solid"
	Dotted LineStyle = "dotted"
)

// Message is a sequence message. ControlStructureID is empty when the
// message does not belong to any control structure.
type Message struct {
	ID                 string      `json:"messageId"`
	From               string      `json:"from"`
	To                 string      `json:"to"`
	Text               string      `json:"message"`
	Type               MessageKind `json:"type"`
	Direction          Direction   `json:"direction"`
	Line               LineStyle   `json:"line"`
	ControlStructureID string      `json:"controlStructureId"`
	SourceLine         int         `json:"sourceLine"`
}

// MarshalJSON writes an empty ControlStructureID as null.
func (m Message) MarshalJSON() ([]byte, error) {
	type message Message
	out := struct {
		message
		ControlStructureID *string `json:"controlStructureId"`
	}{message: message(m)}
	if m.ControlStructureID != "" {
		out.ControlStructureID = &m.ControlStructureID
	}
	return json.Marshal(out)
}

// StructureType is the operator of a control structure.
type StructureType string

const (
	Loop  StructureType = "loop"
	Break StructureType = "break"
	Alt   StructureType = "alt"
	Opt   StructureType = "opt"
	Else  StructureType = "else"
)

// ControlStructure is a combined fragment. Only alt structures carry
// Alternatives, and alternatives never nest further.
type ControlStructure struct {
	Type         StructureType      `json:"type"`
	Condition    string             `json:"condition"`
	ID           string             `json:"controlStructureId"`
	Messages     []string           `json:"messages"`
	Alternatives []ControlStructure `json:"alternatives"`
	SourceLine   int                `json:"sourceLine"`
}

// MessageCount returns the number of messages in the structure including
// every alternative branch.
func (c ControlStructure) MessageCount() int {
	n := len(c.Messages)
	for _, alt := range c.Alternatives {
		n += len(alt.Messages)
	}
	return n
}

// Owns reports whether id is the structure's own id or one of its
// alternatives' ids.
func (c ControlStructure) Owns(id string) bool {
	if c.ID == id {
		return true
	}
	for _, alt := range c.Alternatives {
		if alt.ID == id {
			return true
		}
	}
	return false
}

// NotePosition places a note relative to its participants.
type NotePosition string

const (
	NoteLeft  NotePosition = "left"
	NoteRight NotePosition = "right"
	NoteOver  NotePosition = "over"
)

// Note is a sequence diagram note.
type Note struct {
	Position     NotePosition `json:"position"`
	Participants []string     `json:"participants"`
	Text         string       `json:"note"`
}

// ActivationType is the kind of an activation record.
type ActivationType string

const (
	Activate   ActivationType = "activate"
	Deactivate ActivationType = "deactivate"
)

// Activation marks the start or end of a participant's activation bar.
// From is set when the activation came from the +/- arrow shorthand.
type Activation struct {
	Type        ActivationType `json:"type"`
	Participant string         `json:"participant"`
	From        string         `json:"from,omitempty"`
}

// =============================================================================
// Flowcharts
// =============================================================================

// FlowShape is the outline of a flowchart node.
type FlowShape string

const (
	ShapeRect    FlowShape = "rect"
	ShapeRound   FlowShape = "round"
	ShapeDiamond FlowShape = "diamond"
	ShapeCircle  FlowShape = "circle"
)

// EdgeStyle is the stroke of a flowchart edge.
type EdgeStyle string

const (
	EdgeArrow  EdgeStyle = "arrow"
	EdgeOpen   EdgeStyle = "open"
	EdgeDotted EdgeStyle = "dotted"
	EdgeThick  EdgeStyle = "thick"
)

// Flowchart holds the nodes and edges of a flowchart diagram.
type Flowchart struct {
	Direction string     `json:"direction,omitempty"`
	Nodes     []FlowNode `json:"nodes"`
	Edges     []FlowEdge `json:"edges"`
}

// FlowNode is a flowchart vertex.
type FlowNode struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Shape FlowShape `json:"shape"`
}

// FlowEdge is a flowchart connection.
type FlowEdge struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Label string    `json:"label,omitempty"`
	Style EdgeStyle `json:"style"`
}
