package adapter

import (
	"fmt"
	"sync"

	"github.com/matzehuels/diagramkit/pkg/ir"
)

// MemoryObject is an object recorded by [MemoryHost].
type MemoryObject struct {
	ID     int            `json:"id"`
	Type   string         `json:"type"`
	Kind   string         `json:"kind"`
	Name   string         `json:"name,omitempty"`
	Label  string         `json:"label,omitempty"`
	Parent int            `json:"parent,omitempty"`
	Tail   int            `json:"tail,omitempty"`
	Head   int            `json:"head,omitempty"`
	Bounds *Bounds        `json:"bounds,omitempty"`
	Ends   *[2]ir.End     `json:"ends,omitempty"`
	Props  map[string]any `json:"properties,omitempty"`
}

// MemoryHost is a [Host] that records every created object. Handles are
// the object ids (ints starting at 1). It is safe for concurrent use.
type MemoryHost struct {
	mu      sync.Mutex
	objects []MemoryObject
}

// NewMemoryHost returns an empty MemoryHost.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{}
}

func (h *MemoryHost) add(o MemoryObject) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	o.ID = len(h.objects) + 1
	h.objects = append(h.objects, o)
	return o.ID
}

func (h *MemoryHost) id(handle Handle) (int, error) {
	id, ok := handle.(int)
	h.mu.Lock()
	defer h.mu.Unlock()
	if !ok || id < 1 || id > len(h.objects) {
		return 0, fmt.Errorf("unknown handle %v", handle)
	}
	return id, nil
}

// CreateContainer records a container.
func (h *MemoryHost) CreateContainer(kind ir.Kind, name string) (Handle, error) {
	return h.add(MemoryObject{Type: "container", Kind: string(kind), Name: name}), nil
}

// CreateDiagram records a diagram inside container.
func (h *MemoryHost) CreateDiagram(container Handle, kind ir.Kind, name string) (Handle, error) {
	parent, err := h.id(container)
	if err != nil {
		return nil, err
	}
	return h.add(MemoryObject{Type: "diagram", Kind: string(kind), Name: name, Parent: parent}), nil
}

// CreateElement records an element inside diagram.
func (h *MemoryHost) CreateElement(diagram Handle, spec ElementSpec) (Handle, error) {
	parent, err := h.id(diagram)
	if err != nil {
		return nil, err
	}
	return h.add(MemoryObject{
		Type:   "element",
		Kind:   string(spec.Kind),
		Name:   spec.Name,
		Label:  spec.Label,
		Parent: parent,
		Bounds: spec.Bounds,
		Props:  spec.Properties,
	}), nil
}

// CreateConnector records a connector between tail and head.
func (h *MemoryHost) CreateConnector(diagram Handle, spec ConnectorSpec, tail, head Handle) (Handle, error) {
	parent, err := h.id(diagram)
	if err != nil {
		return nil, err
	}
	t, err := h.id(tail)
	if err != nil {
		return nil, err
	}
	hd, err := h.id(head)
	if err != nil {
		return nil, err
	}
	ends := spec.Ends
	return h.add(MemoryObject{
		Type:   "connector",
		Kind:   spec.Type,
		Label:  spec.Label,
		Parent: parent,
		Tail:   t,
		Head:   hd,
		Ends:   &ends,
		Props:  spec.Properties,
	}), nil
}

// Objects returns a copy of every recorded object in creation order.
func (h *MemoryHost) Objects() []MemoryObject {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]MemoryObject(nil), h.objects...)
}

// Count returns how many recorded objects have the given type
// ("container", "diagram", "element" or "connector").
func (h *MemoryHost) Count(typ string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, o := range h.objects {
		if o.Type == typ {
			n++
		}
	}
	return n
}

// Object returns the object with the given handle.
func (h *MemoryHost) Object(handle Handle) (MemoryObject, bool) {
	id, err := h.id(handle)
	if err != nil {
		return MemoryObject{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.objects[id-1], true
}
