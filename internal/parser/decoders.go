package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/morozRed/moveprobe/internal/ast"
)

// JSONDecoder reads dumps written as JSON.
type JSONDecoder struct{}

func (JSONDecoder) Format() string { return "json" }

func (JSONDecoder) Extensions() []string { return []string{".json"} }

func (JSONDecoder) Decode(filename string, content []byte) ([]ast.SourceFile, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return ast.DecodeSourceFiles(doc)
}

// YAMLDecoder reads dumps written as YAML.
type YAMLDecoder struct{}

func (YAMLDecoder) Format() string { return "yaml" }

func (YAMLDecoder) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAMLDecoder) Decode(filename string, content []byte) ([]ast.SourceFile, error) {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return ast.DecodeSourceFiles(doc)
}
