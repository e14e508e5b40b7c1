package tools

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// ToolSpec describes one callable tool and its JSON input schema.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema,omitempty"` // JSON Schema for params
}

// Manifest is the registry document listing every tool.
type Manifest struct {
	Tools []ToolSpec `json:"tools"`
}

//go:embed manifest.json
var manifestJSON []byte

// parseManifest validates a manifest document and returns its tools in
// order. Names must be unique and non-empty; schemas must be JSON objects.
func parseManifest(data []byte) ([]ToolSpec, error) {
	var man Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	seen := make(map[string]struct{}, len(man.Tools))
	for i, t := range man.Tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool[%d]: name is required", i)
		}
		if _, ok := seen[t.Name]; ok {
			return nil, fmt.Errorf("tool[%d] %q: duplicate name", i, t.Name)
		}
		seen[t.Name] = struct{}{}
		if len(t.Schema) > 0 {
			var obj map[string]any
			if err := json.Unmarshal(t.Schema, &obj); err != nil {
				return nil, fmt.Errorf("tool[%d] %q: schema must be an object: %w", i, t.Name, err)
			}
		}
	}
	return man.Tools, nil
}

// Specs returns the built-in tool list.
func Specs() []ToolSpec {
	specs, err := parseManifest(manifestJSON)
	if err != nil {
		panic(err)
	}
	return specs
}
