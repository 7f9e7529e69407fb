package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramkit/pkg/emit"
	pkgio "github.com/matzehuels/diagramkit/pkg/io"
)

// emitCommand creates the emit command that turns IR back into diagram text.
func (c *CLI) emitCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "emit <diagram.json|->",
		Short: "Write diagram text from the intermediate representation",
		Long: `Write diagram text from the intermediate representation.

The input is a diagram produced by 'parse' (JSON or YAML). Parsing the emitted
text again yields the same elements and relationships.

Examples:
  diagramkit parse model.mmd -o model.json
  diagramkit emit model.json
  diagramkit parse flow.mmd | diagramkit emit -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEmit(args[0], output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json, yaml (default: by extension)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(string(pkgio.FormatJSON), string(pkgio.FormatYAML)))

	return cmd
}

// runEmit reads a diagram and writes its text form.
func (c *CLI) runEmit(input, output, format string) error {
	inFormat, err := resolveFormat(format, input)
	if err != nil {
		return err
	}
	data, err := c.readInput(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	d, err := pkgio.ReadDiagram(bytes.NewReader(data), inFormat)
	if err != nil {
		return err
	}

	text, err := emit.Diagram(d)
	if err != nil {
		return err
	}

	out, err := c.openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.WriteString(out, text); err != nil {
		return err
	}
	if output != "" {
		c.Logger.Infof("Wrote %s to %s", d.Kind, output)
	}
	return nil
}
