package sequence

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

// Compute lays out a sequence diagram.
func Compute(d *ir.Diagram, opts Options) (*Layout, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil diagram")
	}
	if d.Kind != ir.KindSequence {
		return nil, errors.New(errors.ErrCodeLayout, "sequence layout needs a %s, got %q", ir.KindSequence, d.Kind)
	}
	s := newState(d, opts.WithDefaults())
	s.placeLifelines()
	s.walk()
	return s.finish(), nil
}

// state is the per-call layout session: the vertical cursor, the lifeline
// slots and what has been drawn so far.
type state struct {
	opts Options
	log  *log.Logger
	d    *ir.Diagram

	y         float64
	nextX     float64
	lifelines []Lifeline
	slot      map[string]int
	reach     map[string]float64

	messages map[string]ir.Message
	done     map[string]bool
	drawn    map[string]bool
	empty    []ir.ControlStructure

	out Layout
}

func newState(d *ir.Diagram, opts Options) *state {
	s := &state{
		opts:     opts,
		log:      opts.Logger,
		d:        d,
		y:        opts.MessageTop,
		nextX:    opts.OriginX,
		slot:     make(map[string]int),
		reach:    make(map[string]float64),
		messages: make(map[string]ir.Message, len(d.Messages)),
		done:     make(map[string]bool, len(d.Messages)),
		drawn:    make(map[string]bool),
		out: Layout{
			Lifelines: []Lifeline{},
			Messages:  []MessageLine{},
			Fragments: []Fragment{},
		},
	}
	for _, m := range d.Messages {
		s.messages[m.ID] = m
	}
	for _, cs := range d.ControlStructures {
		if cs.MessageCount() == 0 {
			s.empty = append(s.empty, cs)
		}
	}
	return s
}

func (s *state) debug(msg string, kv ...any) {
	if s.log != nil {
		s.log.Debug(msg, kv...)
	}
}

// placeLifelines assigns declared participants their slots, then appends
// implicit lifelines for names that only appear in messages.
func (s *state) placeLifelines() {
	for _, p := range s.d.Participants {
		s.addLifeline(p.Name, p.Label(), p.Role, false)
	}
	for _, m := range s.d.Messages {
		for _, name := range []string{m.From, m.To} {
			if _, ok := s.slot[name]; !ok {
				s.debug("implicit lifeline", "participant", name, "message", m.ID)
				s.addLifeline(name, name, ir.RoleParticipant, true)
			}
		}
	}
}

func (s *state) addLifeline(name, label string, role ir.Role, implicit bool) {
	if _, ok := s.slot[name]; ok {
		return
	}
	width := float64(runewidth.StringWidth(label)) * s.opts.CharWidth
	s.slot[name] = len(s.lifelines)
	s.reach[name] = s.opts.MessageTop
	s.lifelines = append(s.lifelines, Lifeline{
		Name:     name,
		Label:    label,
		Role:     role,
		Implicit: implicit,
		X:        s.nextX,
		Top:      s.opts.LifelineTop,
		Width:    width,
	})
	s.nextX += width + s.opts.LifelineMargin
}

func (s *state) x(name string) float64 {
	return s.lifelines[s.slot[name]].X
}

// walk draws messages in source order, opening each fragment at its first
// member message.
func (s *state) walk() {
	owners := make(map[string]ir.ControlStructure)
	for _, cs := range s.d.ControlStructures {
		owners[cs.ID] = cs
		for _, alt := range cs.Alternatives {
			owners[alt.ID] = cs
		}
	}

	for _, m := range s.d.Messages {
		if s.done[m.ID] {
			continue
		}
		s.flushEmpty(m.SourceLine)

		cs, ok := owners[m.ControlStructureID]
		if m.ControlStructureID != "" && !ok {
			s.debug("message references unknown structure", "message", m.ID, "structure", m.ControlStructureID)
		}
		if !ok || s.drawn[cs.ID] {
			s.drawMessage(m, s.y, "")
			s.y += s.opts.RowHeight
			continue
		}
		s.drawFragment(cs)
	}
	s.flushEmpty(math.MaxInt)
}

// flushEmpty draws the message-less structures declared before line.
func (s *state) flushEmpty(line int) {
	for len(s.empty) > 0 && s.empty[0].SourceLine < line {
		s.drawFragment(s.empty[0])
		s.empty = s.empty[1:]
	}
}

func (s *state) drawFragment(cs ir.ControlStructure) {
	top := s.y
	bottom := top + s.opts.HeaderHeight + float64(cs.MessageCount())*s.opts.RowHeight
	x1, x2 := s.span(cs)

	f := Fragment{
		ID:        cs.ID,
		Type:      cs.Type,
		Condition: cs.Condition,
		X1:        x1,
		Y1:        top,
		X2:        x2,
		Y2:        bottom,
		Operands:  make([]Operand, 0, 1+len(cs.Alternatives)),
	}
	y := top + s.opts.HeaderHeight
	branches := append([]ir.ControlStructure{cs}, cs.Alternatives...)
	for _, b := range branches {
		op := Operand{ID: b.ID, Condition: b.Condition, Y1: y}
		for _, id := range b.Messages {
			if m, ok := s.messages[id]; ok && !s.done[id] {
				s.drawMessage(m, y, cs.ID)
			}
			y += s.opts.RowHeight
		}
		op.Y2 = y
		f.Operands = append(f.Operands, op)
	}

	s.out.Fragments = append(s.out.Fragments, f)
	s.drawn[cs.ID] = true
	s.y = bottom + s.opts.Gap
	s.debug("fragment", "type", cs.Type, "condition", cs.Condition, "y1", top, "y2", bottom)
}

// span returns the leftmost and rightmost lifeline x touched by the
// structure's messages, or 0, 0 when it touches none.
func (s *state) span(cs ir.ControlStructure) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	visit := func(ids []string) {
		for _, id := range ids {
			m, ok := s.messages[id]
			if !ok {
				continue
			}
			for _, name := range []string{m.From, m.To} {
				x := s.x(name)
				lo, hi = math.Min(lo, x), math.Max(hi, x)
			}
		}
	}
	visit(cs.Messages)
	for _, alt := range cs.Alternatives {
		visit(alt.Messages)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func (s *state) drawMessage(m ir.Message, y float64, fragment string) {
	s.out.Messages = append(s.out.Messages, MessageLine{
		ID:         m.ID,
		From:       m.From,
		To:         m.To,
		Text:       m.Text,
		Type:       m.Type,
		Line:       m.Line,
		FragmentID: fragment,
		X1:         s.x(m.From),
		X2:         s.x(m.To),
		Y:          y,
	})
	s.done[m.ID] = true
	for _, name := range []string{m.From, m.To} {
		s.reach[name] = math.Max(s.reach[name], y)
	}
}

func (s *state) finish() *Layout {
	height := s.y
	for i := range s.lifelines {
		l := &s.lifelines[i]
		l.Height = s.reach[l.Name] - l.Top
		height = math.Max(height, l.Bottom())
	}
	for _, f := range s.out.Fragments {
		height = math.Max(height, f.Y2)
	}

	s.out.Lifelines = s.lifelines
	if s.out.Lifelines == nil {
		s.out.Lifelines = []Lifeline{}
	}
	s.out.Width = s.nextX
	s.out.Height = height
	return &s.out
}
