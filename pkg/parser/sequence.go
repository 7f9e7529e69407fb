package parser

import (
	"regexp"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

// Sequence diagrams are parsed in three passes:
//
//  1. pass1 collects participants, notes, activations and the control
//     structure tree, and records which line opened which frame.
//  2. pass2 walks the lines again with its own frame stack, rebuilt from the
//     lines recorded by pass1, and creates the messages. Each message is
//     stamped with the innermost enclosing structure.
//  3. pass3 distributes message ids into the structures and their
//     alternatives.
//
// Structure identity in pass2 comes from the opening line index, so two
// structures with the same condition text never get confused.

var (
	participantRe = regexp.MustCompile(`^(?:create\s+)?(participant|actor)\s+(\S+)(?:\s+as\s+(.+))?$`)
	noteRe        = regexp.MustCompile(`(?i)^note\s+(left of|right of|over)\s+([^:]+?)\s*:\s*(.*)$`)
	activationRe  = regexp.MustCompile(`^(activate|deactivate)\s+(\S+)$`)
	structureRe   = regexp.MustCompile(`^(loop|break|alt|opt)(?:\s+(.*))?$`)
	elseRe        = regexp.MustCompile(`^else(?:\s+(.*))?$`)
	// Blocks the IR does not model. They are tracked so their "end" does not
	// close a real structure.
	opaqueRe = regexp.MustCompile(`^(par|critical|rect|box)(?:\s+.*)?$`)
	branchRe = regexp.MustCompile(`^(and|option|destroy)(?:\s+.*)?$`)
)

type seqLineKind int

const (
	seqMessage seqLineKind = iota
	seqIgnored
	seqParticipant
	seqNote
	seqActivation
	seqHeader
	seqElse
	seqEnd
	seqOpaque
)

// classifySequenceLine checks the message shape first, so a participant
// named like a keyword ("loop -> B: hi") still sends its message.
func classifySequenceLine(s string) seqLineKind {
	if _, ok := splitMessage(s); ok {
		return seqMessage
	}
	switch {
	case isDirective(s) || branchRe.MatchString(s):
		return seqIgnored
	case s == "end":
		return seqEnd
	case participantRe.MatchString(s):
		return seqParticipant
	case noteRe.MatchString(s):
		return seqNote
	case activationRe.MatchString(s):
		return seqActivation
	case structureRe.MatchString(s):
		return seqHeader
	case elseRe.MatchString(s):
		return seqElse
	case opaqueRe.MatchString(s):
		return seqOpaque
	}
	return seqMessage
}

type frameKind int

const (
	frameStructure frameKind = iota
	frameElse
	frameOpaque
)

// frame is one entry of the structure stack. structure indexes the flat
// structure list; for else frames it is the owning alt.
type frame struct {
	kind      frameKind
	structure int
	id        string
	line      int
}

type frameStack []frame

func (s *frameStack) push(f frame) { *s = append(*s, f) }

func (s *frameStack) pop() (frame, bool) {
	if len(*s) == 0 {
		return frame{}, false
	}
	f := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return f, true
}

func (s frameStack) top() (frame, bool) {
	if len(s) == 0 {
		return frame{}, false
	}
	return s[len(s)-1], true
}

// closeBranch pops an else frame sitting on top, so a following else or end
// applies to its alt.
func (s *frameStack) closeBranch() {
	if f, ok := s.top(); ok && f.kind == frameElse {
		s.pop()
	}
}

// end pops the innermost frame. Ending an else branch also ends its alt.
func (s *frameStack) end() bool {
	f, ok := s.pop()
	if ok && f.kind == frameElse {
		s.pop()
	}
	return ok
}

// innermost returns the id of the nearest modeled structure.
func (s frameStack) innermost() string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].kind != frameOpaque {
			return s[i].id
		}
	}
	return ""
}

// sequenceScan is the output of pass1.
type sequenceScan struct {
	participants []ir.Participant
	notes        []ir.Note
	activations  []ir.Activation
	structures   []ir.ControlStructure
	// frames maps the line index of every accepted opener (structure
	// header, else, opaque block) to the frame it pushed.
	frames map[int]frame
}

func parseSequence(d *ir.Diagram, lines []line, opts Options) {
	scan := pass1(lines, opts.IDs, opts.Reporter)
	messages := pass2(lines, scan.participants, scan.frames, opts.IDs, opts.Reporter)

	d.Participants = scan.participants
	d.Notes = scan.notes
	d.Activations = scan.activations
	d.Messages = messages
	d.ControlStructures = pass3(scan.structures, messages)
}

func pass1(lines []line, ids IDGenerator, r diag.Reporter) sequenceScan {
	s := sequenceScan{
		participants: []ir.Participant{},
		notes:        []ir.Note{},
		activations:  []ir.Activation{},
		structures:   []ir.ControlStructure{},
		frames:       make(map[int]frame),
	}
	declared := make(map[string]bool)
	var stack frameStack

	for _, l := range lines {
		switch classifySequenceLine(l.text) {
		case seqParticipant:
			m := participantRe.FindStringSubmatch(l.text)
			if declared[m[2]] {
				continue
			}
			declared[m[2]] = true
			alias := strings.TrimSpace(m[3])
			if alias == "" {
				alias = m[2]
			}
			role := ir.RoleParticipant
			if m[1] == "actor" {
				role = ir.RoleActor
			}
			s.participants = append(s.participants, ir.Participant{
				Name:  m[2],
				Alias: alias,
				Role:  role,
				Index: len(s.participants),
			})

		case seqNote:
			note, ok := parseNote(l.text)
			if !ok {
				diag.Warn(r, diag.CodeMalformedNote, l.n, l.text, "note names no participant")
				continue
			}
			s.notes = append(s.notes, note)

		case seqActivation:
			m := activationRe.FindStringSubmatch(l.text)
			s.activations = append(s.activations, ir.Activation{Type: ir.ActivationType(m[1]), Participant: m[2]})

		case seqHeader:
			m := structureRe.FindStringSubmatch(l.text)
			s.structures = append(s.structures, ir.ControlStructure{
				Type:         ir.StructureType(m[1]),
				Condition:    strings.TrimSpace(m[2]),
				ID:           ids.NewID(),
				Messages:     []string{},
				Alternatives: []ir.ControlStructure{},
				SourceLine:   l.n,
			})
			idx := len(s.structures) - 1
			f := frame{kind: frameStructure, structure: idx, id: s.structures[idx].ID, line: l.n}
			s.frames[l.n] = f
			stack.push(f)

		case seqElse:
			stack.closeBranch()
			top, ok := stack.top()
			if !ok || top.kind != frameStructure || s.structures[top.structure].Type != ir.Alt {
				diag.Warn(r, diag.CodeUnmatchedElse, l.n, l.text, "else outside of an alt block")
				continue
			}
			m := elseRe.FindStringSubmatch(l.text)
			alt := &s.structures[top.structure]
			alt.Alternatives = append(alt.Alternatives, ir.ControlStructure{
				Type:         ir.Else,
				Condition:    strings.TrimSpace(m[1]),
				ID:           ids.NewID(),
				Messages:     []string{},
				Alternatives: []ir.ControlStructure{},
				SourceLine:   l.n,
			})
			f := frame{kind: frameElse, structure: top.structure, id: alt.Alternatives[len(alt.Alternatives)-1].ID, line: l.n}
			s.frames[l.n] = f
			stack.push(f)

		case seqOpaque:
			f := frame{kind: frameOpaque, structure: -1, line: l.n}
			s.frames[l.n] = f
			stack.push(f)

		case seqEnd:
			if !stack.end() {
				diag.Warn(r, diag.CodeUnmatchedEnd, l.n, l.text, "end without an open block")
			}

		case seqMessage:
			if m, ok := splitMessage(l.text); ok && m.activation != "" {
				s.activations = append(s.activations, ir.Activation{Type: m.activation, Participant: m.to, From: m.from})
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		switch f.kind {
		case frameStructure:
			cs := s.structures[f.structure]
			diag.Warn(r, diag.CodeUnclosedStructure, f.line, "", "%s block %q is never closed", cs.Type, cs.Condition)
		case frameOpaque:
			diag.Warn(r, diag.CodeUnclosedStructure, f.line, "", "block is never closed")
		}
	}
	return s
}

func pass2(lines []line, participants []ir.Participant, frames map[int]frame, ids IDGenerator, r diag.Reporter) []ir.Message {
	index := make(map[string]int, len(participants))
	for _, p := range participants {
		index[p.Name] = p.Index
	}

	messages := []ir.Message{}
	var stack frameStack
	for _, l := range lines {
		if f, ok := frames[l.n]; ok {
			if f.kind == frameElse {
				stack.closeBranch()
			}
			stack.push(f)
			continue
		}
		switch classifySequenceLine(l.text) {
		case seqEnd:
			stack.end()
			continue
		case seqMessage:
		default:
			continue
		}

		raw, ok := splitMessage(l.text)
		if !ok {
			if _, _, arrow := notation.MatchArrow(l.text); arrow {
				diag.Warn(r, diag.CodeMalformedMessage, l.n, l.text, "message needs a sender, an arrow, a receiver and a colon")
			} else {
				diag.Warn(r, diag.CodeUnrecognizedLine, l.n, l.text, "unrecognized sequence diagram line")
			}
			continue
		}

		msg := ir.Message{
			ID:                 ids.NewID(),
			From:               raw.from,
			To:                 raw.to,
			Text:               raw.text,
			Type:               raw.arrow.Kind,
			Direction:          ir.Forward,
			Line:               raw.arrow.Line,
			ControlStructureID: stack.innermost(),
			SourceLine:         l.n,
		}
		if raw.from == raw.to {
			msg.Type = ir.Self
		} else if fi, ok := index[raw.from]; ok {
			if ti, ok := index[raw.to]; ok && ti < fi {
				msg.Type = ir.Reply
				msg.Direction = ir.Backward
			}
		}
		messages = append(messages, msg)
	}
	return messages
}

// pass3 returns a copy of structures with every message id placed in the
// structure or alternative it was stamped with.
func pass3(structures []ir.ControlStructure, messages []ir.Message) []ir.ControlStructure {
	out := make([]ir.ControlStructure, len(structures))
	for i, cs := range structures {
		out[i] = collect(cs, messages)
		out[i].Alternatives = make([]ir.ControlStructure, len(cs.Alternatives))
		for j, alt := range cs.Alternatives {
			out[i].Alternatives[j] = collect(alt, messages)
			out[i].Alternatives[j].Alternatives = []ir.ControlStructure{}
		}
	}
	return out
}

func collect(cs ir.ControlStructure, messages []ir.Message) ir.ControlStructure {
	cs.Messages = []string{}
	for _, m := range messages {
		if m.ControlStructureID == cs.ID {
			cs.Messages = append(cs.Messages, m.ID)
		}
	}
	return cs
}

type rawMessage struct {
	from, to   string
	text       string
	arrow      notation.Arrow
	activation ir.ActivationType
}

// splitMessage reads "FROM <arrow>[+|-] TO : text". The arrow is looked up
// before the colon only, so arrows inside the text are ignored.
func splitMessage(s string) (rawMessage, bool) {
	head, text, ok := strings.Cut(s, ":")
	if !ok {
		return rawMessage{}, false
	}
	arrow, idx, ok := notation.MatchArrow(head)
	if !ok {
		return rawMessage{}, false
	}
	m := rawMessage{
		from:  strings.TrimSpace(head[:idx]),
		text:  strings.TrimSpace(text),
		arrow: arrow,
	}
	rest := strings.TrimSpace(head[idx+len(arrow.Token):])
	switch {
	case strings.HasPrefix(rest, "+"):
		m.activation, rest = ir.Activate, rest[1:]
	case strings.HasPrefix(rest, "-"):
		m.activation, rest = ir.Deactivate, rest[1:]
	}
	m.to = strings.TrimSpace(rest)
	if m.from == "" || m.to == "" || strings.ContainsAny(m.from+m.to, " \t") {
		return rawMessage{}, false
	}
	return m, true
}

var notePositions = map[string]ir.NotePosition{
	"left of":  ir.NoteLeft,
	"right of": ir.NoteRight,
	"over":     ir.NoteOver,
}

func parseNote(s string) (ir.Note, bool) {
	m := noteRe.FindStringSubmatch(s)
	pos := strings.Join(strings.Fields(strings.ToLower(m[1])), " ")
	note := ir.Note{Position: notePositions[pos], Participants: []string{}, Text: m[3]}
	for _, p := range strings.Split(m[2], ",") {
		if p = strings.TrimSpace(p); p != "" {
			note.Participants = append(note.Participants, p)
		}
	}
	return note, len(note.Participants) > 0
}
