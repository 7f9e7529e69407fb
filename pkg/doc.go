// Package pkg provides the core libraries for diagramkit.
//
// # Overview
//
// diagramkit reads Mermaid-style diagram text (class, ER, sequence and
// flowchart diagrams) into a typed intermediate representation, lays it out,
// and writes it back out as text or drives a modeling host with it. The pkg
// directory is organized into three areas:
//
//  1. Parsing - [classify], [notation], [parser], [diag], [markdown]
//  2. Model and layout - [ir], [layout/sequence], [layout/nodelink], [emit], [adapter]
//  3. Infrastructure - [pipeline], [cache], [config], [io], [errors], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Markdown or diagram text
//	         ↓
//	    [markdown] package (pick a fenced block)
//	         ↓
//	    [classify] package (detect the kind, drop noise)
//	         ↓
//	    [parser] package (per-kind line parsers → [ir.Diagram] + diagnostics)
//	         ↓
//	    [layout/sequence] or [layout/nodelink] (geometry)
//	         ↓
//	    [adapter] (host objects) or [emit] (text) or [io] (JSON/YAML)
//
// # Quick Start
//
//	d, err := parser.Parse(text, parser.Options{})
//	if err != nil {
//	    return err
//	}
//	if d.Kind == ir.KindSequence {
//	    l, err := sequence.Compute(d, sequence.Options{})
//	    ...
//	}
//
// The [pipeline] package wraps the same steps with caching, diagnostics
// collection and observability hooks, and is what the CLI and HTTP server
// use.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/parser/...          # Specific package
//	go test -run Example ./pkg/...    # Examples only
//	go test ./pkg/emit -update        # Refresh golden files
//
// [classify]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/classify
// [notation]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/notation
// [parser]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/parser
// [diag]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/diag
// [markdown]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/markdown
// [ir]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/ir
// [ir.Diagram]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/ir#Diagram
// [layout/sequence]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/layout/sequence
// [layout/nodelink]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/layout/nodelink
// [emit]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/emit
// [adapter]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/adapter
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/diagramkit/pkg/observability
package pkg
