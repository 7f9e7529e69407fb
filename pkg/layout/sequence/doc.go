// Package sequence computes the geometry of a sequence diagram.
//
// # Overview
//
// [Compute] takes a parsed sequence [ir.Diagram] and returns a [Layout] with
// one [Lifeline] per participant, one [MessageLine] per message and one
// [Fragment] box per control structure. Nothing here draws; the layout is
// plain coordinates for a renderer or a modeling host.
//
// # Algorithm
//
// Lifelines are placed left to right in declaration order. Each slot is as
// wide as its label (display width × CharWidth) plus LifelineMargin, so long
// names push later lifelines to the right instead of overlapping them.
//
// Messages are then walked in source order with a vertical cursor starting
// at MessageTop:
//
//   - a message outside any structure is drawn at the cursor, which then
//     advances by RowHeight
//   - the first message of a structure draws the whole fragment: a header of
//     HeaderHeight, then one row per message of the main branch followed by
//     each else branch; the cursor moves to the fragment bottom plus Gap
//   - structures without messages are drawn at their source position and
//     only reserve the header
//
// Fragments span horizontally from the leftmost to the rightmost lifeline
// touched by their messages; a fragment touching no lifeline gets 0/0.
// Every lifeline is extended to reach the lowest message that touches it.
//
// Nested structures are laid out one after another; only the alt/else
// nesting is drawn inside a single box.
//
// # Concurrency
//
// All state lives in a value created per call, so Compute is safe for
// concurrent use.
package sequence
