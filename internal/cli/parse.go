package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/diagramkit/pkg/io"
	"github.com/matzehuels/diagramkit/pkg/pipeline"
)

// parseCommand creates the parse command.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		flags  sourceFlags
		output string
		format string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse diagram text into the intermediate representation",
		Long: `Parse diagram text into the intermediate representation.

The diagram kind is detected from its header line (classDiagram, erDiagram,
sequenceDiagram, flowchart/graph). Markdown files are searched for fenced
mermaid blocks; use --block to pick one by index or --pick to choose
interactively.

Lines that cannot be parsed are reported as warnings and skipped.

Examples:
  diagramkit parse model.mmd
  diagramkit parse README.md --block 2 -f yaml
  cat flow.txt | diagramkit parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions(args[0], &flags)
			if err != nil {
				return err
			}
			return c.runParse(cmd.Context(), opts, flags.noCache, output, format, strict)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json (default), yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(string(pkgio.FormatJSON), string(pkgio.FormatYAML)))
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any line produced a warning")

	return cmd
}

// runParse parses the input and writes the diagram.
func (c *CLI) runParse(ctx context.Context, opts pipeline.Options, noCache bool, output, format string, strict bool) error {
	outFormat, err := resolveFormat(format, output)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	parsed, cacheHit, err := runner.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	d := parsed.Diagram
	prog.done("Parsed "+opts.Name,
		"kind", d.Kind,
		"elements", d.ElementCount(),
		"connections", d.ConnectionCount())
	if cacheHit {
		replayDiagnostics(logger, parsed.Diagnostics)
	}
	logger.Debug("parse result", "cached", cacheHit, "warnings", len(parsed.Diagnostics))

	if strict && len(parsed.Diagnostics) > 0 {
		return fmt.Errorf("%d line(s) could not be parsed", len(parsed.Diagnostics))
	}

	out, err := c.openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := pkgio.WriteDiagram(d, out, outFormat); err != nil {
		return err
	}
	if output != "" {
		logger.Info("Wrote diagram", "path", output)
		c.ui().nextStep("Emit text", "diagramkit emit "+output)
	}
	return nil
}

// resolveFormat picks the output format from the flag, then the output
// file extension.
func resolveFormat(flag, output string) (pkgio.Format, error) {
	if flag != "" {
		return pkgio.ParseFormat(flag)
	}
	if output != "" {
		return pkgio.FormatFromPath(output), nil
	}
	return pkgio.FormatJSON, nil
}
