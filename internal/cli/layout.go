package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramkit/pkg/adapter"
	"github.com/matzehuels/diagramkit/pkg/errors"
	pkgio "github.com/matzehuels/diagramkit/pkg/io"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagram geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  sourceFlags
		output string
		engine string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "layout <file|->",
		Short: "Compute diagram geometry",
		Long: `Compute diagram geometry.

Sequence diagrams get lifelines, message rows and fragment boxes from the
sequence engine. Class, ER and flowchart diagrams are laid out with Graphviz
(node-link engine). The result is written as JSON to <input>.layout.json, or
stdout for "-".

With --dry-run the diagram and its layout are also built into an in-memory
host model and a summary of the created objects is printed; unresolved
connector endpoints are listed.

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions(args[0], &flags)
			if err != nil {
				return err
			}
			opts.Engine = engine
			if output == "" {
				output = outputPath(args[0], ".layout.json")
			}
			return c.runLayout(cmd.Context(), opts, flags.noCache, output, dryRun)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&engine, "engine", "e", pipeline.EngineAuto, "layout engine: sequence, nodelink (default: by diagram kind)")
	_ = cmd.RegisterFlagCompletionFunc("engine", fixedCompletion(pipeline.EngineSequence, pipeline.EngineNodelink))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the diagram into an in-memory host and print a summary")

	return cmd
}

// runLayout parses the input, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, noCache bool, output string, dryRun bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, c.Stderr, "Parsing "+opts.Name+"...")
	if isTerminal(c.Stderr) {
		spinner.Start()
	}

	parsed, parseHit, err := runner.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Parse failed")
		return err
	}
	d := parsed.Diagram

	spinner.Update(fmt.Sprintf("Computing %s layout...", d.Kind))
	layout, layoutHit, err := runner.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if spinner.Cancelled() {
		return ctx.Err()
	}
	if parseHit {
		replayDiagnostics(c.Logger, parsed.Diagnostics)
	}

	out, err := c.openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := pkgio.Write(layout, out, pkgio.FormatJSON); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	ui := c.ui()
	if output != "" {
		ui.success("Layout complete (%s engine)", layout.Engine)
		ui.file(output)
		ui.stats(d.ElementCount(), d.ConnectionCount(), layoutHit)
	}
	if n := len(parsed.Diagnostics); n > 0 {
		ui.warning("%d line(s) skipped", n)
	}

	if dryRun {
		return c.dryRun(d, layout, opts.Name)
	}
	return nil
}

// dryRun builds the diagram into a MemoryHost and prints what was created.
func (c *CLI) dryRun(d *ir.Diagram, layout *pipeline.LayoutResult, name string) error {
	host := adapter.NewMemoryHost()
	buildOpts := adapter.Options{Name: name}
	if layout != nil {
		buildOpts.Sequence = layout.Sequence
		buildOpts.NodeLink = layout.NodeLink
	}

	built, err := adapter.Build(d, host, buildOpts)
	var unresolved *adapter.UnresolvedError
	if err != nil && !errors.As(err, &unresolved) {
		return fmt.Errorf("build model: %w", err)
	}

	ui := c.ui()
	ui.newline()
	ui.keyValue("Elements", fmt.Sprintf("%d", len(built.Elements)))
	ui.keyValue("Connectors", fmt.Sprintf("%d", len(built.Connectors)))
	ui.keyValue("Objects", fmt.Sprintf("%d", len(host.Objects())))
	if unresolved != nil {
		for _, u := range unresolved.Endpoints {
			ui.warning("%s %d: unresolved %s endpoint %q", u.Connector, u.Index, u.End, u.Name)
		}
	}
	return nil
}
