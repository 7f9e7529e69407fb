package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/diagramkit/pkg/cache"
	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/layout/sequence"
	"github.com/matzehuels/diagramkit/pkg/observability"
	"github.com/matzehuels/diagramkit/pkg/parser"
)

const sequenceSource = `sequenceDiagram
participant U as User
participant S as Server
U->>S: login
alt ok
S-->>U: token
else denied
S-->>U: error
end
`

const classSource = `classDiagram
class Animal {
    +int age
}
class Duck
Duck --|> Animal
this line is nonsense
`

const markdownSource = "# Notes\n\n```go\nfmt.Println()\n```\n\n```mermaid\n" + classSource + "```\n\n```mermaid\n" + sequenceSource + "```\n"

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewLRUCache(64)
	require.NoError(t, err)
	return NewRunner(c, nil, nil)
}

func TestValidateEngine(t *testing.T) {
	tests := []struct {
		engine  string
		wantErr bool
	}{
		{EngineAuto, false},
		{EngineSequence, false},
		{EngineNodelink, false},
		{"tower", true},
		{"Sequence", true}, // case-sensitive
	}

	for _, tt := range tests {
		err := ValidateEngine(tt.engine)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEngine(%q) error = %v, wantErr %v", tt.engine, err, tt.wantErr)
		}
	}
}

func TestEngineFor(t *testing.T) {
	assert.Equal(t, EngineSequence, EngineFor(ir.KindSequence))
	assert.Equal(t, EngineNodelink, EngineFor(ir.KindClass))
	assert.Equal(t, EngineNodelink, EngineFor(ir.KindER))
	assert.Equal(t, EngineNodelink, EngineFor(ir.KindFlowchart))
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Source: classSource}
	require.NoError(t, opts.ValidateAndSetDefaults())

	assert.Equal(t, DefaultMaxDiagnostics, opts.MaxDiagnostics)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.IDs)
	assert.Equal(t, float64(50), opts.Sequence.OriginX)

	// Idempotent
	require.NoError(t, opts.ValidateAndSetDefaults())
}

func TestOptionsValidation(t *testing.T) {
	opts := Options{Markdown: true, Block: -2}
	assert.Error(t, opts.ValidateForParse())

	opts = Options{Engine: "radial"}
	assert.Error(t, opts.ValidateForLayout())
}

func TestDiagramKeyOptsPlainText(t *testing.T) {
	plain := Options{Block: 3}
	assert.Equal(t, NoBlock, plain.DiagramKeyOpts().Block)

	md := Options{Markdown: true, Block: 3}
	assert.Equal(t, 3, md.DiagramKeyOpts().Block)
}

func TestLayoutKeyOptsIgnoresLogger(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()
	opts.Sequence.Logger = log.Default()

	constants, ok := opts.LayoutKeyOpts(EngineSequence).Constants.(sequence.Options)
	require.True(t, ok)
	assert.Nil(t, constants.Logger)
	assert.Equal(t, opts.Sequence.RowHeight, constants.RowHeight)

	assert.Nil(t, opts.LayoutKeyOpts(EngineNodelink).Constants)
}

func TestParse(t *testing.T) {
	res, err := Parse(context.Background(), Options{Source: classSource})
	require.NoError(t, err)

	d := res.Diagram
	assert.Equal(t, ir.KindClass, d.Kind)
	require.Len(t, d.Classes, 2)
	require.Len(t, d.Relationships, 1)
	assert.Equal(t, ir.Inheritance, d.Relationships[0].Type)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.CodeUnrecognizedLine, res.Diagnostics[0].Code)
	assert.Equal(t, "this line is nonsense", res.Diagnostics[0].Text)
}

func TestParseMarkdownBlock(t *testing.T) {
	res, err := Parse(context.Background(), Options{Source: markdownSource, Markdown: true, Block: 1})
	require.NoError(t, err)
	assert.Equal(t, ir.KindSequence, res.Diagram.Kind)
	assert.Greater(t, res.Line, 1)

	_, err = Parse(context.Background(), Options{Source: markdownSource, Markdown: true, Block: 5})
	assert.True(t, errors.Is(err, errors.ErrCodeNoDiagramBlock))
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse(context.Background(), Options{Source: "pie\n\"a\": 1\n"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedDiagramType))
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, Options{Source: classSource})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeLayoutSequence(t *testing.T) {
	res, err := Parse(context.Background(), Options{Source: sequenceSource})
	require.NoError(t, err)

	layout, err := ComputeLayout(context.Background(), res.Diagram, Options{})
	require.NoError(t, err)
	assert.Equal(t, EngineSequence, layout.Engine)
	require.NotNil(t, layout.Sequence)
	assert.Nil(t, layout.NodeLink)
	assert.Len(t, layout.Sequence.Lifelines, 2)
	assert.Len(t, layout.Sequence.Messages, 3)
	assert.Len(t, layout.Sequence.Fragments, 1)
}

func TestComputeLayoutWrongEngine(t *testing.T) {
	res, err := Parse(context.Background(), Options{Source: classSource})
	require.NoError(t, err)

	_, err = ComputeLayout(context.Background(), res.Diagram, Options{Engine: EngineSequence})
	assert.True(t, errors.Is(err, errors.ErrCodeLayout))

	_, err = ComputeLayout(context.Background(), nil, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestRunnerParseCaching(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Source: sequenceSource, IDs: parser.NewSequentialGenerator("id")}

	first, hit, err := r.ParseWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := r.ParseWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Diagram.Kind, second.Diagram.Kind)
	require.Len(t, second.Diagram.Messages, len(first.Diagram.Messages))
	for i, m := range first.Diagram.Messages {
		assert.Equal(t, m.ID, second.Diagram.Messages[i].ID)
		assert.Equal(t, m.Text, second.Diagram.Messages[i].Text)
	}

	opts.Refresh = true
	_, hit, err = r.ParseWithCacheInfo(ctx, opts)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRunnerBlockChangesKey(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()
	ctx := context.Background()

	classRes, _, err := r.ParseWithCacheInfo(ctx, Options{Source: markdownSource, Markdown: true, Block: 0})
	require.NoError(t, err)
	seqRes, hit, err := r.ParseWithCacheInfo(ctx, Options{Source: markdownSource, Markdown: true, Block: 1})
	require.NoError(t, err)

	assert.False(t, hit)
	assert.Equal(t, ir.KindClass, classRes.Diagram.Kind)
	assert.Equal(t, ir.KindSequence, seqRes.Diagram.Kind)
}

func TestRunnerExecute(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Source: sequenceSource, IDs: parser.NewSequentialGenerator("id")}

	res, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.ElementCount)
	assert.Equal(t, 3, res.Stats.ConnectionCount)
	assert.NotEmpty(t, res.DiagramHash)
	require.NotNil(t, res.Layout)
	assert.Equal(t, EngineSequence, res.Layout.Engine)
	assert.False(t, res.CacheInfo.ParseHit)
	assert.False(t, res.CacheInfo.LayoutHit)

	again, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, again.CacheInfo.ParseHit)
	assert.True(t, again.CacheInfo.LayoutHit)
	assert.Equal(t, res.DiagramHash, again.DiagramHash)
	assert.Equal(t, res.Layout.Sequence.Width, again.Layout.Sequence.Width)
	assert.Equal(t, res.Layout.Sequence.Height, again.Layout.Sequence.Height)
	assert.Len(t, again.Layout.Sequence.Messages, 3)
}

func TestRunnerExecuteNoLayout(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Source: classSource, NoLayout: true})
	require.NoError(t, err)
	assert.Nil(t, res.Layout)
	assert.Len(t, res.Diagnostics, 1)
}

func TestRunnerExecuteParseError(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Source: "just text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse:")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedDiagramType))
}

func TestRunnerParseAll(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	docs := []Options{
		{Name: "a", Source: classSource},
		{Name: "b", Source: sequenceSource},
		{Name: "c", Source: "erDiagram\nCUSTOMER ||--o{ ORDER : places\n"},
	}
	results, err := r.ParseAll(context.Background(), docs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, ir.KindClass, results[0].Diagram.Kind)
	assert.Equal(t, ir.KindSequence, results[1].Diagram.Kind)
	assert.Equal(t, ir.KindER, results[2].Diagram.Kind)

	docs = append(docs, Options{Name: "broken", Source: "nothing here"})
	_, err = r.ParseAll(context.Background(), docs, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	parsed  []string
	engines []string
}

func (h *recordingHooks) OnParseComplete(_ context.Context, kind string, _, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parsed = append(h.parsed, kind)
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, engine string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engines = append(h.engines, engine)
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	hits   int
	misses int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingCacheHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	cacheHooks := &countingCacheHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(cacheHooks)
	defer observability.Reset()

	r := newTestRunner(t)
	defer r.Close()
	opts := Options{Source: sequenceSource}

	_, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	_, err = r.Execute(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{string(ir.KindSequence)}, hooks.parsed)
	assert.Equal(t, []string{EngineSequence}, hooks.engines)
	assert.Equal(t, 2, cacheHooks.misses)
	assert.Equal(t, 2, cacheHooks.hits)
}
