// Package pipeline provides the parse → layout pipeline for diagramkit.
//
// This package implements the complete pipeline that is shared by the CLI
// and the HTTP server. By centralizing this logic, both entry points select
// Markdown blocks, report diagnostics and cache results the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Parse: Extract the diagram text (optionally from a Markdown fence) and
//     parse it into an [ir.Diagram]
//  2. Layout: Compute geometry with the engine that fits the diagram kind
//     (sequence lifelines or a Graphviz node-link layout)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Source: text})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Diagram.Kind, len(result.Diagnostics))
//
// Run individual stages:
//
//	// Parse only
//	parsed, err := runner.Parse(ctx, opts)
//
//	// Layout an existing diagram
//	layout, err := runner.Layout(ctx, d, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagramkit/pkg/cache"
	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/layout/nodelink"
	"github.com/matzehuels/diagramkit/pkg/layout/sequence"
	"github.com/matzehuels/diagramkit/pkg/parser"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxDiagnostics is the number of diagnostics kept per parse.
	DefaultMaxDiagnostics = diag.DefaultBagSize

	// DefaultConcurrency bounds ParseAll when no limit is given.
	DefaultConcurrency = 4

	// NoBlock is the block index used in cache keys for plain text.
	NoBlock = -1
)

// Layout engines.
const (
	// EngineAuto picks the engine from the diagram kind.
	EngineAuto     = ""
	EngineSequence = "sequence"
	EngineNodelink = "nodelink"
)

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[string]bool{
	EngineAuto:     true,
	EngineSequence: true,
	EngineNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Source   string `json:"source"`
	Name     string `json:"name,omitempty"`     // file name or other label, used in logs
	Markdown bool   `json:"markdown,omitempty"` // Source is Markdown holding mermaid fences
	Block    int    `json:"block,omitempty"`    // Markdown block index
	Refresh  bool   `json:"refresh,omitempty"`  // Skip cache reads

	// MaxDiagnostics caps the diagnostics returned with a parse.
	MaxDiagnostics int `json:"max_diagnostics,omitempty"`

	// Layout options
	Engine   string           `json:"engine,omitempty"`
	Sequence sequence.Options `json:"sequence,omitempty"`
	NoLayout bool             `json:"no_layout,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger        `json:"-"`
	IDs    parser.IDGenerator `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ParseResult is the output of the parse stage.
type ParseResult struct {
	Diagram     *ir.Diagram       `json:"diagram"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	// Dropped counts diagnostics beyond MaxDiagnostics.
	Dropped int `json:"dropped,omitempty"`
	// Line is the Markdown line the diagram started on, 0 for plain text.
	Line int `json:"line,omitempty"`
}

// LayoutResult holds whichever layout the engine produced.
type LayoutResult struct {
	Engine   string           `json:"engine"`
	Sequence *sequence.Layout `json:"sequence,omitempty"`
	NodeLink *nodelink.Layout `json:"nodelink,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the parsed diagram.
	Diagram *ir.Diagram

	// DiagramHash is the content hash of the diagram.
	DiagramHash string

	// Diagnostics are the per-line problems found while parsing.
	Diagnostics []diag.Diagnostic

	// Layout is nil when Options.NoLayout is set.
	Layout *LayoutResult

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount    int
	ConnectionCount int
	ParseTime       time.Duration
	LayoutTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether parse result came from cache
	LayoutHit bool // Whether layout result came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateEngine checks that an engine name is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return fmt.Errorf("invalid engine: %q (must be one of: sequence, nodelink)", engine)
	}
	return nil
}

// EngineFor returns the engine that lays out diagrams of the given kind.
func EngineFor(kind ir.Kind) string {
	if kind == ir.KindSequence {
		return EngineSequence
	}
	return EngineNodelink
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Block < 0 {
		return fmt.Errorf("block must be >= 0, got %d", o.Block)
	}
	if o.MaxDiagnostics == 0 {
		o.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if o.IDs == nil {
		o.IDs = parser.UUIDGenerator{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Sequence = o.Sequence.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateEngine(o.Engine)
}

// ParserOptions returns the options passed to the parser.
func (o *Options) ParserOptions(r diag.Reporter) parser.Options {
	return parser.Options{Reporter: r, IDs: o.IDs}
}

// DiagramKeyOpts returns cache key options for parsing.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	if !o.Markdown {
		return cache.DiagramKeyOpts{Block: NoBlock}
	}
	return cache.DiagramKeyOpts{Block: o.Block}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(engine string) cache.LayoutKeyOpts {
	keyOpts := cache.LayoutKeyOpts{Engine: engine}
	if engine == EngineSequence {
		c := o.Sequence
		c.Logger = nil
		keyOpts.Constants = c
	}
	return keyOpts
}
