package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/layout/nodelink"
	"github.com/matzehuels/diagramkit/pkg/layout/sequence"
	"github.com/matzehuels/diagramkit/pkg/observability"
)

// ComputeLayout lays out d with the engine named in opts, or the engine that
// fits d.Kind when opts.Engine is EngineAuto.
func ComputeLayout(ctx context.Context, d *ir.Diagram, opts Options) (*LayoutResult, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil diagram")
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	engine := resolveEngine(d, opts)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, engine, d.ElementCount())
	start := time.Now()

	result := &LayoutResult{Engine: engine}
	var err error
	switch engine {
	case EngineSequence:
		seqOpts := opts.Sequence
		seqOpts.Logger = opts.Logger
		result.Sequence, err = sequence.Compute(d, seqOpts)
	default:
		result.NodeLink, err = nodelink.Compute(ctx, d)
	}
	hooks.OnLayoutComplete(ctx, engine, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func resolveEngine(d *ir.Diagram, opts Options) string {
	if opts.Engine != EngineAuto {
		return opts.Engine
	}
	return EngineFor(d.Kind)
}
