package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramkit/pkg/buildinfo"
	"github.com/matzehuels/diagramkit/pkg/config"
	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/markdown"
	"github.com/matzehuels/diagramkit/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "diagramkit"

	// stdinArg reads input from standard input.
	stdinArg = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	// ConfigPath is set by --config. Empty reads the default file.
	ConfigPath string

	// Stdin and Stdout are replaced in tests. Stderr receives status lines
	// and the spinner; it is the writer the logger was created with.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: w,
	}
}

// ui returns the status printer for c.
func (c *CLI) ui() printer {
	return printer{w: c.Stderr}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig reads the config file and environment into c.Config.
func (c *CLI) LoadConfig() error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "diagramkit parses Mermaid-style diagrams into a structured model",
		Long:         `diagramkit parses class, ER, sequence and flowchart diagrams written in Mermaid-style text into a typed intermediate representation, computes layouts, and emits text back from the model.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.LoadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/diagramkit/config.toml)")

	// Register all subcommands
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.emitCommand())
	root.AddCommand(c.blocksCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cacheCfg := c.Config.Cache
	if noCache {
		cacheCfg.Backend = config.BackendNone
	}
	cc, err := cacheCfg.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cacheCfg.Backend, err)
	}
	return pipeline.NewRunner(cc, cacheCfg.Keyer(), c.Logger), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// sourceFlags are the input flags shared by parse and layout.
type sourceFlags struct {
	block   int
	pick    bool
	refresh bool
	noCache bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.block, "block", "b", 0, "mermaid block index for Markdown input")
	cmd.Flags().BoolVar(&f.pick, "pick", false, "choose the Markdown block interactively")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// readInput reads a file, or standard input for "-".
func (c *CLI) readInput(path string) ([]byte, error) {
	if path == stdinArg {
		return io.ReadAll(c.Stdin)
	}
	return os.ReadFile(path)
}

// pipelineOptions reads the input and builds pipeline options for it.
// Markdown files select a fenced block by index or with the picker.
func (c *CLI) pipelineOptions(path string, f *sourceFlags) (pipeline.Options, error) {
	data, err := c.readInput(path)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("read %s: %w", path, err)
	}
	opts := pipeline.Options{
		Source:         string(data),
		Name:           path,
		Refresh:        f.refresh,
		Sequence:       c.Config.Layout,
		MaxDiagnostics: c.Config.Parse.MaxDiagnostics,
		Logger:         c.Logger,
	}
	if !markdown.IsMarkdown(path) {
		return opts, nil
	}

	opts.Markdown = true
	opts.Block = f.block
	if f.pick {
		block, err := c.pickBlock(data)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Block = block
	}
	return opts, nil
}

// outputPath derives a sibling output file name for input.
func outputPath(input, suffix string) string {
	if input == stdinArg {
		return ""
	}
	for _, ext := range []string{".md", ".markdown", ".mdx", ".mmd", ".mermaid", ".txt", ".json", ".yaml", ".yml"} {
		if strings.HasSuffix(strings.ToLower(input), ext) {
			return input[:len(input)-len(ext)] + suffix
		}
	}
	return input + suffix
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns the CLI's stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func (c *CLI) openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{c.Stdout}, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}
