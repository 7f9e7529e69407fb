package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramkit/pkg/cache"
	"github.com/matzehuels/diagramkit/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the parse and layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached parse and layout results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	backend := c.Config.Cache.Backend
	if backend == config.BackendNone || backend == config.BackendMemory {
		c.ui().info("The %s cache keeps nothing between runs", backend)
		return nil
	}

	cc, err := c.Config.Cache.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", backend, err)
	}
	defer cc.Close()

	clearer, ok := cc.(cache.Clearer)
	if !ok {
		return fmt.Errorf("%s cache cannot be cleared", backend)
	}
	count, err := clearer.Clear(ctx)
	if err != nil {
		return err
	}

	c.ui().success("Cleared %d cached entries", count)
	if fc, ok := cc.(*cache.FileCache); ok {
		c.ui().detail("Directory: %s", fc.Dir())
	}
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.Config.Cache.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Stdout, dir)
			return nil
		},
	}
}
