package sequence

import "github.com/matzehuels/diagramkit/pkg/ir"

// Layout is the computed geometry of a sequence diagram. Coordinates use a
// top-left origin with y growing downwards.
type Layout struct {
	Lifelines []Lifeline    `json:"lifelines"`
	Messages  []MessageLine `json:"messages"`
	Fragments []Fragment    `json:"fragments"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
}

// Lifeline is the vertical timeline of one participant. X is the slot
// position messages attach to.
type Lifeline struct {
	Name     string  `json:"name"`
	Label    string  `json:"label"`
	Role     ir.Role `json:"role"`
	Implicit bool    `json:"implicit,omitempty"`
	X        float64 `json:"x"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Bottom returns the lowest y the lifeline reaches.
func (l Lifeline) Bottom() float64 { return l.Top + l.Height }

// MessageLine is a message arrow drawn between two lifelines at height Y.
// X1 == X2 for self messages.
type MessageLine struct {
	ID         string         `json:"messageId"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Text       string         `json:"message"`
	Type       ir.MessageKind `json:"type"`
	Line       ir.LineStyle   `json:"line"`
	FragmentID string         `json:"fragmentId,omitempty"`
	X1         float64        `json:"x1"`
	X2         float64        `json:"x2"`
	Y          float64        `json:"y"`
}

// Fragment is the box of a control structure.
type Fragment struct {
	ID        string           `json:"controlStructureId"`
	Type      ir.StructureType `json:"type"`
	Condition string           `json:"condition"`
	X1        float64          `json:"x1"`
	Y1        float64          `json:"y1"`
	X2        float64          `json:"x2"`
	Y2        float64          `json:"y2"`
	// Operands are the horizontal bands of the main branch and each else
	// branch, below the header.
	Operands []Operand `json:"operands"`
}

// Width returns the horizontal span of the fragment.
func (f Fragment) Width() float64 { return f.X2 - f.X1 }

// Height returns the vertical span of the fragment.
func (f Fragment) Height() float64 { return f.Y2 - f.Y1 }

// Operand is one branch band of a fragment.
type Operand struct {
	ID        string  `json:"controlStructureId"`
	Condition string  `json:"condition"`
	Y1        float64 `json:"y1"`
	Y2        float64 `json:"y2"`
}

// Lifeline returns the lifeline with the given participant name.
func (l *Layout) Lifeline(name string) (Lifeline, bool) {
	for _, ll := range l.Lifelines {
		if ll.Name == name {
			return ll, true
		}
	}
	return Lifeline{}, false
}

// Fragment returns the fragment of the given control structure.
func (l *Layout) Fragment(id string) (Fragment, bool) {
	for _, f := range l.Fragments {
		if f.ID == id {
			return f, true
		}
	}
	return Fragment{}, false
}
