package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the subset of an OpenAPI description this tool interprets:
// the schema section, and within each schema the @odata.id pattern
// constraint. Everything else in the file is ignored.
type Document struct {
	OpenAPI    string     `yaml:"openapi"`
	Info       Info       `yaml:"info"`
	Components Components `yaml:"components"`
}

// Info identifies the description document in logs and the report
type Info struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// Components holds the schema section keyed by type name
type Components struct {
	Schemas map[string]Schema `yaml:"schemas"`
}

// Schema is one type entry in the schema section
type Schema struct {
	Type       string              `yaml:"type"`
	Properties map[string]Property `yaml:"properties"`
}

// Property is one property constraint inside a schema entry
type Property struct {
	Type    string `yaml:"type"`
	Pattern string `yaml:"pattern"`
}

// LoadDocument reads and parses an OpenAPI description from disk
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(doc.Components.Schemas) == 0 {
		return nil, fmt.Errorf("%s contains no schema entries", path)
	}

	return &doc, nil
}
