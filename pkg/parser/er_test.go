package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

func TestERColumnWithLengthKeysAndProperties(t *testing.T) {
	d, bag := parse(t, lines(
		"erDiagram",
		"CUSTOMER {",
		`varchar(255) email PK,FK "nullable: true"`,
		"}",
	))
	assert.Zero(t, bag.Len())
	require.Len(t, d.Entities, 1)
	require.Len(t, d.Entities[0].Columns, 1)

	col := d.Entities[0].Columns[0]
	assert.Equal(t, "varchar", col.Type)
	assert.Equal(t, "email", col.Name)
	assert.Equal(t, []string{"PK", "FK"}, col.Keys)
	assert.Equal(t, "255", col.Length())
	assert.Equal(t, "true", col.Nullable())
}

func TestERColumns(t *testing.T) {
	tests := []struct {
		line string
		want ir.Column
	}{
		{
			line: "int id PK",
			want: ir.Column{Type: "int", Name: "id", Keys: []string{"PK"}, Properties: map[string]string{}},
		},
		{
			line: "string name",
			want: ir.Column{Type: "string", Name: "name", Keys: []string{}, Properties: map[string]string{}},
		},
		{
			line: `decimal(10,2) price "nullable: false, the list price"`,
			want: ir.Column{Type: "decimal", Name: "price", Keys: []string{}, Properties: map[string]string{
				"length": "10,2", "nullable": "false", "comment": "the list price",
			}},
		},
		{
			line: "int ref FK, XX, uk",
			want: ir.Column{Type: "int", Name: "ref", Keys: []string{"FK", "UK"}, Properties: map[string]string{}},
		},
		{
			line: `string code "length: 8"`,
			want: ir.Column{Type: "string", Name: "code", Keys: []string{}, Properties: map[string]string{"length": "8"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseColumn(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestERRelationships(t *testing.T) {
	tests := []struct {
		line string
		want ir.Relationship
	}{
		{
			line: "CUSTOMER ||--o{ ORDER : places",
			want: ir.Relationship{From: "CUSTOMER", To: "ORDER", Type: ir.Identifying, Label: "places", FromType: ir.ExactlyOne, ToType: ir.ZeroOrMany},
		},
		{
			line: `ORDER ||..|{ LINE_ITEM : "contains"`,
			want: ir.Relationship{From: "ORDER", To: "LINE_ITEM", Type: ir.NonIdentifying, Label: "contains", FromType: ir.ExactlyOne, ToType: ir.OneOrMany, Weak: true},
		},
		{
			line: "PERSON |o--o| PASSPORT",
			want: ir.Relationship{From: "PERSON", To: "PASSPORT", Type: ir.Identifying, FromType: ir.ZeroOrOne, ToType: ir.ZeroOrOne},
		},
		{
			line: "TEAM }|--|| LEAGUE : in",
			want: ir.Relationship{From: "TEAM", To: "LEAGUE", Type: ir.Identifying, Label: "in", FromType: ir.OneOrMany, ToType: ir.ExactlyOne},
		},
		{
			line: "A }o--o{ B : tags",
			want: ir.Relationship{From: "A", To: "B", Type: ir.Identifying, Label: "tags", FromType: ir.ZeroOrMany, ToType: ir.ZeroOrMany},
		},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			d, bag := parse(t, lines("erDiagram", tt.line))
			assert.Zero(t, bag.Len())
			assert.Empty(t, d.Entities, "a glyph brace must not open an entity")
			require.Len(t, d.Relationships, 1)
			assert.Equal(t, tt.want, d.Relationships[0])
		})
	}
}

func TestERMalformedRelationship(t *testing.T) {
	tests := []string{
		"CUSTOMER ||-- ORDER",
		"||--o{ ORDER",
		"CUSTOMER ||--o{",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			d, bag := parse(t, lines("erDiagram", line))
			assert.Empty(t, d.Relationships)
			assert.Equal(t, []diag.Code{diag.CodeMalformedRelation}, bag.Codes())
		})
	}
}

func TestEREntityLifecycle(t *testing.T) {
	d, bag := parse(t, lines(
		"erDiagram",
		"CUSTOMER {",
		"int id PK",
		"???",
		"}",
		"ORDER {}",
		"PRODUCT",
		"LINE_ITEM {",
		"int qty",
	))
	names := make([]string, len(d.Entities))
	for i, e := range d.Entities {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"CUSTOMER", "ORDER", "PRODUCT", "LINE_ITEM"}, names)
	assert.Len(t, d.Entities[0].Columns, 1)
	assert.Empty(t, d.Entities[1].Columns)
	assert.Len(t, d.Entities[3].Columns, 1, "unterminated entity is flushed at end of input")
	assert.Equal(t, []diag.Code{diag.CodeMalformedColumn, diag.CodeUnclosedBlock}, bag.Codes())
}
