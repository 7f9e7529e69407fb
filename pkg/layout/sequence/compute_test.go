package sequence

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/parser"
)

func mustParse(t *testing.T, lines ...string) *ir.Diagram {
	t.Helper()
	d, err := parser.Parse(strings.Join(lines, "\n"), parser.Options{IDs: parser.NewSequentialGenerator("id")})
	require.NoError(t, err)
	return d
}

func mustCompute(t *testing.T, d *ir.Diagram) *Layout {
	t.Helper()
	l, err := Compute(d, Options{})
	require.NoError(t, err)
	return l
}

func messageAt(t *testing.T, l *Layout, text string) MessageLine {
	t.Helper()
	for _, m := range l.Messages {
		if m.Text == text {
			return m
		}
	}
	t.Fatalf("no message %q", text)
	return MessageLine{}
}

func TestLifelinePlacement(t *testing.T) {
	l := mustCompute(t, mustParse(t,
		"sequenceDiagram",
		"participant A",
		"participant Bob",
		"participant C as Carol",
	))
	require.Len(t, l.Lifelines, 3)

	tests := []struct {
		name  string
		x     float64
		width float64
	}{
		{"A", 50, 10},
		{"Bob", 110, 30},
		{"C", 190, 50},
	}
	for i, tt := range tests {
		got := l.Lifelines[i]
		assert.Equal(t, tt.name, got.Name)
		assert.Equal(t, tt.x, got.X, "%s x", tt.name)
		assert.Equal(t, tt.width, got.Width, "%s width", tt.name)
		assert.Equal(t, float64(DefaultLifelineTop), got.Top)
	}
	assert.Equal(t, 290.0, l.Width)
}

func TestLifelineWidthUsesDisplayWidth(t *testing.T) {
	l := mustCompute(t, mustParse(t, "sequenceDiagram", "participant J as 日本"))
	require.Len(t, l.Lifelines, 1)
	assert.Equal(t, 40.0, l.Lifelines[0].Width, "wide runes take two columns")
}

func TestPlainMessagesAdvanceByRow(t *testing.T) {
	l := mustCompute(t, mustParse(t,
		"sequenceDiagram",
		"participant A",
		"participant B",
		"A->B: one",
		"B->A: two",
		"A->A: three",
	))
	assert.Equal(t, 140.0, messageAt(t, l, "one").Y)
	assert.Equal(t, 190.0, messageAt(t, l, "two").Y)

	self := messageAt(t, l, "three")
	assert.Equal(t, 240.0, self.Y)
	assert.Equal(t, self.X1, self.X2)
	assert.Empty(t, l.Fragments)
}

func TestAltElseFragment(t *testing.T) {
	d := mustParse(t,
		"sequenceDiagram",
		"participant A",
		"participant B",
		"alt cond1",
		"A->B: hello",
		"else cond2",
		"B->A: bye",
		"end",
		"A->B: after",
	)
	l := mustCompute(t, d)

	require.Len(t, l.Fragments, 1)
	f := l.Fragments[0]
	assert.Equal(t, d.ControlStructures[0].ID, f.ID)
	assert.Equal(t, 140.0, f.Y1)
	assert.Equal(t, 140.0+20+2*50, f.Y2)
	assert.Equal(t, 50.0, f.X1)
	assert.Equal(t, 110.0, f.X2)

	assert.Equal(t, 160.0, messageAt(t, l, "hello").Y)
	assert.Equal(t, 210.0, messageAt(t, l, "bye").Y)
	assert.Equal(t, f.Y2+DefaultGap, messageAt(t, l, "after").Y)

	require.Len(t, f.Operands, 2)
	assert.Equal(t, Operand{ID: d.ControlStructures[0].ID, Condition: "cond1", Y1: 160, Y2: 210}, f.Operands[0])
	assert.Equal(t, Operand{ID: d.ControlStructures[0].Alternatives[0].ID, Condition: "cond2", Y1: 210, Y2: 260}, f.Operands[1])
}

func TestZeroMessageAlt(t *testing.T) {
	l := mustCompute(t, mustParse(t,
		"sequenceDiagram",
		"participant A",
		"participant B",
		"A->B: before",
		"alt nothing happens",
		"end",
		"A->B: after",
	))
	require.Len(t, l.Fragments, 1)
	f := l.Fragments[0]
	assert.Equal(t, float64(DefaultHeaderHeight), f.Height())
	assert.Equal(t, 0.0, f.X1)
	assert.Equal(t, 0.0, f.X2)

	before, after := messageAt(t, l, "before"), messageAt(t, l, "after")
	assert.GreaterOrEqual(t, f.Y1, before.Y+DefaultRowHeight)
	assert.GreaterOrEqual(t, after.Y, f.Y2)
}

func TestTrailingEmptyStructure(t *testing.T) {
	l := mustCompute(t, mustParse(t, "sequenceDiagram", "A->B: x", "loop idle", "end"))
	require.Len(t, l.Fragments, 1)
	assert.Equal(t, 190.0, l.Fragments[0].Y1)
	assert.GreaterOrEqual(t, l.Height, l.Fragments[0].Y2)
}

const busyDiagram = `sequenceDiagram
participant Client
participant Gateway
participant Service
participant DB
Client->>Gateway: request
loop retry three times
Gateway->>Service: call
alt cache hit
Service-->>Gateway: cached
else cache miss
Service->>DB: query
DB-->>Service: rows
end
Gateway-->>Client: progress
end
opt audit
Gateway-)DB: log
end
break never
end
Gateway-->>Client: response`

// Fragments never overlap each other, and no free message lands inside one.
func TestNoOverlap(t *testing.T) {
	l := mustCompute(t, mustParse(t, strings.Split(busyDiagram, "\n")...))
	require.Len(t, l.Fragments, 4)

	for i := 1; i < len(l.Fragments); i++ {
		prev, cur := l.Fragments[i-1], l.Fragments[i]
		assert.GreaterOrEqual(t, cur.Y1, prev.Y2+DefaultGap, "fragment %d starts inside fragment %d", i, i-1)
	}
	for _, m := range l.Messages {
		if m.FragmentID != "" {
			f, ok := l.Fragment(m.FragmentID)
			require.True(t, ok)
			assert.True(t, m.Y > f.Y1 && m.Y < f.Y2, "message %q outside its fragment", m.Text)
			continue
		}
		for _, f := range l.Fragments {
			assert.False(t, m.Y >= f.Y1 && m.Y <= f.Y2, "free message %q overlaps fragment %s", m.Text, f.Type)
		}
	}
}

func TestLifelinesCoverTheirMessages(t *testing.T) {
	l := mustCompute(t, mustParse(t, strings.Split(busyDiagram, "\n")...))
	for _, m := range l.Messages {
		for _, name := range []string{m.From, m.To} {
			ll, ok := l.Lifeline(name)
			require.True(t, ok, name)
			assert.GreaterOrEqual(t, ll.Bottom(), m.Y, "lifeline %s ends above message %q", name, m.Text)
		}
	}
	assert.GreaterOrEqual(t, l.Height, messageAt(t, l, "response").Y)
}

func TestFragmentHeightCountsAllBranches(t *testing.T) {
	d := mustParse(t, strings.Split(busyDiagram, "\n")...)
	l := mustCompute(t, d)
	for _, cs := range d.ControlStructures {
		f, ok := l.Fragment(cs.ID)
		require.True(t, ok)
		want := DefaultHeaderHeight + float64(cs.MessageCount())*DefaultRowHeight
		assert.Equal(t, want, f.Height(), "%s %s", cs.Type, cs.Condition)
	}
}

func TestImplicitLifelines(t *testing.T) {
	l := mustCompute(t, mustParse(t, "sequenceDiagram", "participant A", "A->Ghost: boo"))
	require.Len(t, l.Lifelines, 2)
	ghost := l.Lifelines[1]
	assert.Equal(t, "Ghost", ghost.Name)
	assert.True(t, ghost.Implicit)
	assert.Equal(t, 110.0, ghost.X)
}

func TestCustomOptions(t *testing.T) {
	d := mustParse(t, "sequenceDiagram", "participant A", "participant B", "A->B: x", "A->B: y")
	l, err := Compute(d, Options{OriginX: 10, RowHeight: 30, MessageTop: 100})
	require.NoError(t, err)
	assert.Equal(t, 10.0, l.Lifelines[0].X)
	assert.Equal(t, 130.0, l.Messages[1].Y)
}

func TestComputeRejectsOtherKinds(t *testing.T) {
	_, err := Compute(ir.New(ir.KindClass), Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeLayout))

	_, err = Compute(nil, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestComputeConcurrent(t *testing.T) {
	d := mustParse(t, strings.Split(busyDiagram, "\n")...)
	want := mustCompute(t, d)

	var wg sync.WaitGroup
	results := make([]*Layout, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Compute(d, Options{})
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
