package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramkit/pkg/markdown"
)

// blocksCommand creates the blocks command that lists mermaid blocks.
func (c *CLI) blocksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <file.md|->",
		Short: "List the mermaid blocks of a Markdown file",
		Long: `List the mermaid blocks of a Markdown file.

The index column is the value to pass to --block of 'parse' and 'layout'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			blocks := markdown.Blocks(data)
			if len(blocks) == 0 {
				c.ui().info("No %s blocks in %s", markdown.Language, args[0])
				return nil
			}
			fmt.Fprintln(c.Stdout, blockTable(describeBlocks(blocks), -1, 0, 0))
			return nil
		},
	}
}
