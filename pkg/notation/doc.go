// Package notation holds the read-only pattern tables that map connector
// tokens to relationship and message kinds, plus the visibility, SQL type and
// multiplicity translations used by the parsers and the emitters.
//
// Every table is ordered: lookups return the first matching entry, so longer
// or more specific tokens come before the generic ones they contain
// (inheritance before the plain `--` association, `-->>` before `->`).
// The same tables drive the reverse direction, turning a kind back into a
// token.
package notation
