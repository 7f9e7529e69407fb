package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/diagramkit/pkg/errors"
	"github.com/matzehuels/diagramkit/pkg/ir"
)

// ReadDiagram decodes a diagram in the given format from r.
//
// Collections missing from the input come back as empty slices, never nil.
// ReadDiagram does not close r.
func ReadDiagram(r io.Reader, format Format) (*ir.Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if format == FormatYAML {
		if data, err = yamlToJSON(data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	}

	var d ir.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	if !d.Kind.Valid() {
		return nil, errors.New(errors.ErrCodeUnsupportedDiagramType, "unknown diagram type %q", d.Kind)
	}
	d.FillEmpty()
	return &d, nil
}

// ImportDiagram reads a diagram file, picking the format from its extension.
func ImportDiagram(path string) (*ir.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDiagram(f, FormatFromPath(path))
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
