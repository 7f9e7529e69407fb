package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/diagramkit/pkg/diag"
	"github.com/matzehuels/diagramkit/pkg/markdown"
	"github.com/matzehuels/diagramkit/pkg/observability"
	"github.com/matzehuels/diagramkit/pkg/parser"
)

// Parse extracts the diagram text from opts.Source and parses it.
//
// Per-line diagnostics never fail the parse: they are logged at warn level
// and returned sorted in the result. The only errors are a missing Markdown
// block and text without a diagram header.
func Parse(ctx context.Context, opts Options) (*ParseResult, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, line, err := sourceText(opts)
	if err != nil {
		return nil, err
	}

	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.Multi{bag, diag.NewLogReporter(opts.Logger)}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Name)
	start := time.Now()

	d, err := parser.Parse(text, opts.ParserOptions(reporter))
	if err != nil {
		hooks.OnParseComplete(ctx, "", 0, bag.Len(), time.Since(start), err)
		return nil, err
	}
	bag.Sort()
	hooks.OnParseComplete(ctx, string(d.Kind), d.ElementCount(), bag.Len(), time.Since(start), nil)

	if bag.Dropped() > 0 {
		opts.Logger.Warn("diagnostics truncated", "kept", bag.Len(), "dropped", bag.Dropped())
	}
	return &ParseResult{
		Diagram:     d,
		Diagnostics: append([]diag.Diagnostic{}, bag.Items()...),
		Dropped:     bag.Dropped(),
		Line:        line,
	}, nil
}

// sourceText returns the diagram text and the Markdown line it starts on.
func sourceText(opts Options) (string, int, error) {
	if !opts.Markdown {
		return opts.Source, 0, nil
	}
	block, err := markdown.Select([]byte(opts.Source), opts.Block)
	if err != nil {
		return "", 0, err
	}
	opts.Logger.Debug("selected markdown block", "block", block.Index, "line", block.Line)
	return block.Text, block.Line, nil
}
