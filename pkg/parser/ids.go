package parser

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator produces the opaque identifiers of messages and control
// structures. Identifiers must be unique within one parse.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator returns random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequentialGenerator returns Prefix1, Prefix2, ... It is deterministic and
// meant for tests and golden output. It is not safe for concurrent use.
type SequentialGenerator struct {
	Prefix string
	next   int
}

// NewSequentialGenerator returns a generator whose ids start with prefix.
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	return &SequentialGenerator{Prefix: prefix}
}

func (g *SequentialGenerator) NewID() string {
	g.next++
	return g.Prefix + strconv.Itoa(g.next)
}
