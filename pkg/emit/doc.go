// Package emit writes diagram text back out.
//
// [Diagram] turns a parsed [ir.Diagram] into class, ER, sequence or
// flowchart text. [Tree] does the same for a host model graph that has been
// wrapped into [Element] values: each element carries a [Kind] decided when
// it was built ([NewClass], [NewAssociation], [NewGeneralization], ...), so
// the emitter never inspects host types.
//
// Both directions use the notation tables of package notation in reverse,
// so parsing the emitted text yields the same classes, entities,
// relationship kinds and labels. Connector tokens are always written in
// their unflipped form with the semantic source on the left.
package emit
