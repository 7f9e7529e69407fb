// Package markdown finds diagram sources embedded in Markdown documents as
// fenced code blocks tagged "mermaid".
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/matzehuels/diagramkit/pkg/errors"
)

// Language is the info string that marks a diagram block.
const Language = "mermaid"

// Block is one fenced diagram block.
type Block struct {
	// Index is the position among diagram blocks, starting at 0.
	Index int `json:"index"`
	// Line is the 1-based line of the first content line.
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Header returns the first non-blank line of the block, which normally
// names the diagram kind.
func (b Block) Header() string {
	for _, l := range bytes.Split([]byte(b.Text), []byte("\n")) {
		if l = bytes.TrimSpace(l); len(l) > 0 {
			return string(l)
		}
	}
	return ""
}

// Blocks returns every mermaid block of src in document order.
func Blocks(src []byte) []Block {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []Block
	_ = ast.Walk(doc, func(node ast.Node, enter bool) (ast.WalkStatus, error) {
		if !enter {
			return ast.WalkContinue, nil
		}
		cb, ok := node.(*ast.FencedCodeBlock)
		if !ok || !bytes.Equal(cb.Language(src), []byte(Language)) {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		lines := cb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		b := Block{Index: len(blocks), Text: buf.String()}
		if lines.Len() > 0 {
			b.Line = bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
		}
		blocks = append(blocks, b)
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// Select returns the n-th mermaid block of src.
func Select(src []byte, n int) (Block, error) {
	blocks := Blocks(src)
	if len(blocks) == 0 {
		return Block{}, errors.New(errors.ErrCodeNoDiagramBlock, "no %s block found", Language)
	}
	if n < 0 || n >= len(blocks) {
		return Block{}, errors.New(errors.ErrCodeNoDiagramBlock, "block %d out of range (document has %d)", n, len(blocks))
	}
	return blocks[n], nil
}

// IsMarkdown reports whether a file name looks like Markdown.
func IsMarkdown(name string) bool {
	for _, ext := range []string{".md", ".markdown", ".mdx"} {
		if len(name) >= len(ext) && bytes.EqualFold([]byte(name[len(name)-len(ext):]), []byte(ext)) {
			return true
		}
	}
	return false
}
