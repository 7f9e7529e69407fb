package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

// parse runs Parse with deterministic ids and a diagnostics bag.
func parse(t *testing.T, text string) (*ir.Diagram, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(64)
	d, err := Parse(text, Options{Reporter: bag, IDs: NewSequentialGenerator("id")})
	require.NoError(t, err)
	return d, bag
}

func lines(s ...string) string { return strings.Join(s, "\n") }

func TestParseUnsupported(t *testing.T) {
	_, err := Parse("pie\n\"a\" : 1", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedDiagramType))
}

func TestParseOnlyPopulatesOwnKind(t *testing.T) {
	d, _ := parse(t, lines("erDiagram", "A ||--o{ B : has"))
	assert.Equal(t, ir.KindER, d.Kind)
	assert.Empty(t, d.Classes)
	assert.Empty(t, d.Participants)
	assert.Empty(t, d.Messages)
	assert.NotNil(t, d.Classes, "unused collections are empty, not nil")
	assert.Len(t, d.Relationships, 1)
}

func TestParseIgnoresMetadataAndComments(t *testing.T) {
	d, bag := parse(t, lines(
		"---",
		"title: Shapes",
		"---",
		"classDiagram",
		"%% the root",
		"",
		"class Shape",
	))
	require.Len(t, d.Classes, 1)
	assert.Equal(t, "Shape", d.Classes[0].Name)
	assert.Zero(t, bag.Len())
}

func TestSequentialGenerator(t *testing.T) {
	g := NewSequentialGenerator("m")
	assert.Equal(t, "m1", g.NewID())
	assert.Equal(t, "m2", g.NewID())
}

func TestUUIDGeneratorUnique(t *testing.T) {
	g := UUIDGenerator{}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := g.NewID()
		require.False(t, seen[id])
		seen[id] = true
	}
}
