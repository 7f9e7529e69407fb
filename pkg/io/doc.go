// Package io reads and writes parsed diagrams and layouts as JSON or YAML.
//
// # Overview
//
// The IR produced by the parser is a plain data tree. This package gives it
// a file format so diagrams can be parsed once and laid out, emitted or fed
// to other tools later:
//
//	d, _ := parser.Parse(src, parser.Options{})
//	_ = io.ExportDiagram(d, "orders.json")
//
//	d, err := io.ImportDiagram("orders.json")
//
// # Formats
//
// JSON is the canonical form and uses the field names of the ir package
// ("type", "messageId", "controlStructureId", ...). YAML carries exactly
// the same keys: values are converted through their JSON form, so both
// formats stay in step without separate struct tags.
//
// The format is chosen from the file extension by [FormatFromPath]; ".yaml"
// and ".yml" select YAML, anything else JSON.
//
// # Validation
//
// [ReadDiagram] rejects documents whose "type" is not a known diagram kind.
// Cross references (relationship endpoints, message participants) are not
// checked; a dangling name is a valid IR state.
package io
