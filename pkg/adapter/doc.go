// Package adapter drives a modeling host from a parsed diagram.
//
// A host is anything that can create containers, diagrams, visual elements
// and connectors: a modeling tool's scripting API, a diagram editor, or the
// in-memory [MemoryHost] used by tests and the CLI's --dry-run mode. Hosts
// implement the small [Host] interface and [Build] does the rest:
//
//	host := adapter.NewMemoryHost()
//	res, err := adapter.Build(d, host, adapter.Options{Name: "orders"})
//
// Build creates one container and one diagram, then one element per class,
// entity, participant or flowchart node, and one connector per relationship,
// message or flowchart edge. Connector endpoints are resolved by name through
// the handles returned while creating elements. Endpoints that name no
// created element are collected into an [UnresolvedError]; the remaining
// objects are still created.
//
// When a layout is supplied through [Options], elements and connectors carry
// its geometry so the host can place them without running its own layout.
package adapter
