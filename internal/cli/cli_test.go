package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/markdown"
	"github.com/matzehuels/diagramkit/pkg/pipeline"
)

const classText = `classDiagram
class Animal {
    +int age
    +eat()
}
class Duck
Duck --|> Animal
`

const sequenceText = `sequenceDiagram
participant A
participant B
A->>B: ping
B-->>A: pong
`

const markdownDoc = "# Design\n\n```mermaid\n" + classText + "```\n\nText.\n\n```mermaid\n" + sequenceText + "```\n"

// isolate points config and cache lookups at temp dirs and disables caching.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("DIAGRAMKIT_CACHE", "none")
	t.Setenv("DIAGRAMKIT_REDIS_URL", "")
	t.Setenv("DIAGRAMKIT_MONGO_URI", "")
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.Stdin = strings.NewReader(stdin)
	c.Stdout = &out

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseCommand(t *testing.T) {
	isolate(t)
	path := writeFile(t, "model.mmd", classText)

	out, err := execute(t, "", "parse", path)
	require.NoError(t, err)

	var d ir.Diagram
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, ir.KindClass, d.Kind)
	require.Len(t, d.Classes, 2)
	assert.Equal(t, "Animal", d.Classes[0].Name)
	require.Len(t, d.Relationships, 1)
	assert.Equal(t, ir.Inheritance, d.Relationships[0].Type)
}

func TestParseCommandStdinYAML(t *testing.T) {
	isolate(t)
	out, err := execute(t, sequenceText, "parse", "-", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "type: sequenceDiagram")
	assert.Contains(t, out, "message: ping")
}

func TestParseCommandMarkdownBlock(t *testing.T) {
	isolate(t)
	path := writeFile(t, "README.md", markdownDoc)

	out, err := execute(t, "", "parse", path, "--block", "1")
	require.NoError(t, err)
	var d ir.Diagram
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, ir.KindSequence, d.Kind)

	_, err = execute(t, "", "parse", path, "--block", "7")
	assert.Error(t, err)
}

func TestParseCommandStrict(t *testing.T) {
	isolate(t)
	path := writeFile(t, "bad.mmd", classText+"what is this\n")

	_, err := execute(t, "", "parse", path)
	require.NoError(t, err)

	_, err = execute(t, "", "parse", path, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 line(s)")
}

func TestParseCommandUnsupported(t *testing.T) {
	isolate(t)
	_, err := execute(t, "gantt\ntitle Plan\n", "parse", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNSUPPORTED_DIAGRAM_TYPE")
}

func TestParseThenEmitRoundTrip(t *testing.T) {
	isolate(t)
	src := writeFile(t, "model.mmd", classText)
	irPath := filepath.Join(t.TempDir(), "model.json")

	_, err := execute(t, "", "parse", src, "-o", irPath)
	require.NoError(t, err)

	text, err := execute(t, "", "emit", irPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "classDiagram\n"))
	assert.Contains(t, text, "Duck --|> Animal")

	// Emitted text parses to the same model
	out, err := execute(t, text, "parse", "-")
	require.NoError(t, err)
	var d ir.Diagram
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Len(t, d.Classes, 2)
	assert.Len(t, d.Relationships, 1)
}

func TestEmitCommandRejectsBadInput(t *testing.T) {
	isolate(t)
	_, err := execute(t, `{"type":"pie"}`, "emit", "-")
	assert.Error(t, err)
}

func TestLayoutCommandSequence(t *testing.T) {
	isolate(t)
	src := writeFile(t, "calls.mmd", sequenceText)
	out := filepath.Join(t.TempDir(), "calls.layout.json")

	_, err := execute(t, "", "layout", src, "-o", out, "--dry-run")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var layout pipeline.LayoutResult
	require.NoError(t, json.Unmarshal(data, &layout))
	assert.Equal(t, pipeline.EngineSequence, layout.Engine)
	require.NotNil(t, layout.Sequence)
	assert.Len(t, layout.Sequence.Lifelines, 2)
	assert.Len(t, layout.Sequence.Messages, 2)
}

func TestLayoutCommandStdout(t *testing.T) {
	isolate(t)
	out, err := execute(t, sequenceText, "layout", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"engine": "sequence"`)
}

func TestBlocksCommand(t *testing.T) {
	isolate(t)
	path := writeFile(t, "README.md", markdownDoc)

	out, err := execute(t, "", "blocks", path)
	require.NoError(t, err)
	assert.Contains(t, out, "classDiagram")
	assert.Contains(t, out, "sequenceDiagram")
}

func TestCachePathCommand(t *testing.T) {
	isolate(t)
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	out, err := execute(t, "", "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheHome, appName), strings.TrimSpace(out))
}

func TestCacheClearFileBackend(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("DIAGRAMKIT_CACHE", "file")
	t.Setenv("DIAGRAMKIT_CACHE_DIR", dir)

	src := writeFile(t, "calls.mmd", sequenceText)
	_, err := execute(t, "", "parse", src)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	_, err = execute(t, "", "cache", "clear")
	require.NoError(t, err)
}

func TestExplicitConfigMustExist(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.toml"), "cache", "path")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, suffix, want string
	}{
		{"docs/README.md", ".layout.json", "docs/README.layout.json"},
		{"flow.mmd", ".layout.json", "flow.layout.json"},
		{"model.JSON", ".txt", "model.txt"},
		{"noext", ".layout.json", "noext.layout.json"},
		{"-", ".layout.json", ""},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.suffix); got != tt.want {
			t.Errorf("outputPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBlockListModel(t *testing.T) {
	m := NewBlockListModel(markdown.Blocks([]byte(markdownDoc)))
	require.Len(t, m.Rows, 2)
	assert.Equal(t, string(ir.KindClass), m.Rows[0].Kind)
	assert.Equal(t, string(ir.KindSequence), m.Rows[1].Kind)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(BlockListModel)
	assert.Equal(t, 1, m.Cursor)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(BlockListModel)
	assert.Equal(t, 1, m.Cursor, "cursor stays on the last row")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(BlockListModel)
	require.NotNil(t, m.Selected)
	assert.Equal(t, 1, *m.Selected)
	assert.NotNil(t, cmd)

	assert.Contains(t, m.View(), "Select Diagram Block")
	assert.Contains(t, m.View(), "select")
}

func TestPickBlock(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Stdin = strings.NewReader("")

	idx, err := c.pickBlock([]byte("```mermaid\n" + classText + "```\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = c.pickBlock([]byte("# nothing"))
	assert.True(t, errors.Is(err, errors.ErrCodeNoDiagramBlock))

	// Several blocks need an interactive terminal
	_, err = c.pickBlock([]byte(markdownDoc))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "diagramkit")

	_, err = execute(t, "", "completion", "tcsh")
	assert.Error(t, err)
}

func TestStatusGoesToStderr(t *testing.T) {
	isolate(t)
	src := writeFile(t, "calls.mmd", sequenceText)
	out := filepath.Join(t.TempDir(), "calls.layout.json")

	var stdout, stderr bytes.Buffer
	c := New(&stderr, LogInfo)
	c.Stdout = &stdout
	root := c.RootCommand()
	root.SetArgs([]string{"layout", src, "-o", out})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Layout complete (sequence engine)")
	assert.Contains(t, stderr.String(), out)
}
