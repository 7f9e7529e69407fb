package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

func TestFlowDirection(t *testing.T) {
	tests := map[string]string{
		"flowchart LR": "LR",
		"graph td":     "TD",
		"flowchart":    DefaultFlowDirection,
		"graph XY":     DefaultFlowDirection,
	}
	for header, want := range tests {
		d, _ := parse(t, lines(header, "A --> B"))
		assert.Equal(t, want, d.Flowchart.Direction, header)
	}
}

func TestFlowShapesAndEdges(t *testing.T) {
	d, bag := parse(t, lines(
		"flowchart TD",
		`A[Start] --> B{Is it ok?}`,
		`B -->|yes| C(Round)`,
		`B -- no --> D((Stop))`,
		`C -.-> E["Quoted label"]`,
		`D ==> E`,
		`E --- A`,
	))
	assert.Zero(t, bag.Len())

	assert.Equal(t, []ir.FlowNode{
		{ID: "A", Label: "Start", Shape: ir.ShapeRect},
		{ID: "B", Label: "Is it ok?", Shape: ir.ShapeDiamond},
		{ID: "C", Label: "Round", Shape: ir.ShapeRound},
		{ID: "D", Label: "Stop", Shape: ir.ShapeCircle},
		{ID: "E", Label: "Quoted label", Shape: ir.ShapeRect},
	}, d.Flowchart.Nodes)

	assert.Equal(t, []ir.FlowEdge{
		{From: "A", To: "B", Style: ir.EdgeArrow},
		{From: "B", To: "C", Label: "yes", Style: ir.EdgeArrow},
		{From: "B", To: "D", Label: "no", Style: ir.EdgeArrow},
		{From: "C", To: "E", Style: ir.EdgeDotted},
		{From: "D", To: "E", Style: ir.EdgeThick},
		{From: "E", To: "A", Style: ir.EdgeOpen},
	}, d.Flowchart.Edges)
}

func TestFlowChain(t *testing.T) {
	d, _ := parse(t, lines("graph LR", "A --> B --> C; C --> D"))
	require.Len(t, d.Flowchart.Edges, 3)
	assert.Equal(t, ir.FlowEdge{From: "B", To: "C", Style: ir.EdgeArrow}, d.Flowchart.Edges[1])
	assert.Equal(t, ir.FlowEdge{From: "C", To: "D", Style: ir.EdgeArrow}, d.Flowchart.Edges[2])
	assert.Len(t, d.Flowchart.Nodes, 4)
}

func TestFlowImplicitNodesGetIDLabel(t *testing.T) {
	d, _ := parse(t, lines("flowchart", "X --> Y", "Y[Why]"))
	assert.Equal(t, []ir.FlowNode{
		{ID: "X", Label: "X", Shape: ir.ShapeRect},
		{ID: "Y", Label: "Why", Shape: ir.ShapeRect},
	}, d.Flowchart.Nodes)
}

func TestFlowIgnoresStyling(t *testing.T) {
	d, bag := parse(t, lines(
		"flowchart",
		"subgraph one",
		"A --> B",
		"end",
		"classDef hot fill:#f00",
		"style A fill:#0f0",
	))
	assert.Zero(t, bag.Len())
	assert.Len(t, d.Flowchart.Edges, 1)
}

func TestFlowBadLines(t *testing.T) {
	d, bag := parse(t, lines("flowchart", "--> B", "A ~~> B", "A -->"))
	assert.Empty(t, d.Flowchart.Edges)
	assert.Equal(t, []diag.Code{diag.CodeUnrecognizedLine, diag.CodeMalformedRelation, diag.CodeMalformedRelation}, bag.Codes())
}
