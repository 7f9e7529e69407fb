package cache

import "fmt"

// DiagramKeyOpts are the inputs besides the text that change a parse.
type DiagramKeyOpts struct {
	// Block is the Markdown block index, or -1 for plain text.
	Block int `json:"block"`
}

// LayoutKeyOpts are the inputs besides the diagram that change a layout.
type LayoutKeyOpts struct {
	Engine    string `json:"engine"`
	Constants any    `json:"constants,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	DiagramKey(textHash string, opts DiagramKeyOpts) string
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct {
	// Version is mixed into every key so a new release never reads
	// entries written by an older parser.
	Version string
}

// NewDefaultKeyer returns a keyer with version "v1".
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{Version: "v1"}
}

// DiagramKey returns the key of a parsed diagram.
func (k *DefaultKeyer) DiagramKey(textHash string, opts DiagramKeyOpts) string {
	return hashKey(fmt.Sprintf("diagram:%s", k.Version), textHash, opts)
}

// LayoutKey returns the key of a computed layout.
func (k *DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey(fmt.Sprintf("layout:%s", k.Version), diagramHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
