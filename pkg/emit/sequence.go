package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/notation"
)

// seqEvent is a message or an empty structure placed by source line.
type seqEvent struct {
	line  int
	msg   *ir.Message
	empty *ir.ControlStructure
}

// writeSequence emits participants, then messages wrapped in their
// structures, then notes. Structures nested inside other structures come
// out one after another since the IR keeps a single level.
func writeSequence(b *strings.Builder, d *ir.Diagram) {
	b.WriteString("sequenceDiagram\n")
	for _, p := range d.Participants {
		kw := "participant"
		if p.Role == ir.RoleActor {
			kw = "actor"
		}
		fmt.Fprintf(b, "%s%s %s", indent, kw, p.Name)
		if p.Alias != "" && p.Alias != p.Name {
			fmt.Fprintf(b, " as %s", p.Alias)
		}
		b.WriteString("\n")
	}

	// owner maps every structure and alternative id to its top-level
	// structure; branch maps an alternative id to its position.
	owner := make(map[string]*ir.ControlStructure)
	branch := make(map[string]int)
	for i := range d.ControlStructures {
		cs := &d.ControlStructures[i]
		owner[cs.ID] = cs
		for j, alt := range cs.Alternatives {
			owner[alt.ID] = cs
			branch[alt.ID] = j
		}
	}

	var events []seqEvent
	for i := range d.Messages {
		events = append(events, seqEvent{line: d.Messages[i].SourceLine, msg: &d.Messages[i]})
	}
	for i := range d.ControlStructures {
		if cs := &d.ControlStructures[i]; cs.MessageCount() == 0 {
			events = append(events, seqEvent{line: cs.SourceLine, empty: cs})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].line < events[j].line })

	var open *ir.ControlStructure
	written := -1 // last alternative of open written so far
	elseUpTo := func(k int) {
		for ; written < k; written++ {
			writeElse(b, open.Alternatives[written+1])
		}
	}
	closeOpen := func() {
		if open != nil {
			elseUpTo(len(open.Alternatives) - 1)
			fmt.Fprintf(b, "%send\n", indent)
			open, written = nil, -1
		}
	}
	for _, ev := range events {
		if ev.empty != nil {
			closeOpen()
			writeStructureHeader(b, ev.empty)
			for _, alt := range ev.empty.Alternatives {
				writeElse(b, alt)
			}
			fmt.Fprintf(b, "%send\n", indent)
			continue
		}
		m := ev.msg
		cs := owner[m.ControlStructureID]
		if cs != open {
			closeOpen()
			if cs != nil {
				writeStructureHeader(b, cs)
				open = cs
			}
		}
		if k, ok := branch[m.ControlStructureID]; ok {
			elseUpTo(k)
		}
		pad := indent
		if open != nil {
			pad += indent
		}
		fmt.Fprintf(b, "%s%s%s%s", pad, m.From, notation.ArrowToken(m.Type, m.Line), m.To)
		writeMessageText(b, m.Text)
	}
	closeOpen()

	for _, n := range d.Notes {
		fmt.Fprintf(b, "%sNote %s %s: %s\n", indent, notePosition(n.Position), strings.Join(n.Participants, ","), n.Text)
	}
}

func writeStructureHeader(b *strings.Builder, cs *ir.ControlStructure) {
	fmt.Fprintf(b, "%s%s", indent, strings.TrimSpace(string(cs.Type)+" "+cs.Condition))
	b.WriteString("\n")
}

func writeElse(b *strings.Builder, alt ir.ControlStructure) {
	fmt.Fprintf(b, "%s%s\n", indent, strings.TrimSpace("else "+alt.Condition))
}

func writeMessageText(b *strings.Builder, text string) {
	b.WriteString(": " + text + "\n")
}

func notePosition(p ir.NotePosition) string {
	switch p {
	case ir.NoteLeft:
		return "left of"
	case ir.NoteRight:
		return "right of"
	}
	return "over"
}
