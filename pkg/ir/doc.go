// Package ir defines the intermediate representation produced by the diagram
// parser and consumed by the layout engines, adapters and emitters.
//
// # Overview
//
// A parse produces exactly one [Diagram]. Its Kind decides which collections
// are populated:
//
//   - [KindClass]: Classes and Relationships
//   - [KindER]: Entities and Relationships
//   - [KindSequence]: Participants, Messages, ControlStructures, Notes, Activations
//   - [KindFlowchart]: Flowchart
//
// The other collections stay empty. The IR is a plain data tree without
// behaviour beyond small accessors, and it round-trips through JSON.
//
// # Referential integrity
//
// The parser does not check that relationship or message endpoints name a
// declared class, entity or participant. A dangling reference is a valid IR
// state; layout engines tolerate it and adapters report it.
//
// # Relationship direction
//
// For class diagrams From is the semantic source and To the semantic target,
// regardless of the direction the connector was written in:
//
//	Animal <|-- Dog      From: Dog    To: Animal  (child → parent)
//	Car *-- Wheel        From: Car    To: Wheel   (whole → part)
//	Foo --> Bar          From: Foo    To: Bar     (navigation direction)
//
// For ER diagrams From and To are the left and right entity as written.
package ir
