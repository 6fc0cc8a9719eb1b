// Package report holds the records produced for each analyzed function.
package report

import (
	"encoding/json"
	"fmt"
)

// FunctionAnalysis is the full analysis of one function definition.
type FunctionAnalysis struct {
	Contract   string         `json:"contract"`
	Function   string         `json:"function"`
	Source     string         `json:"source"`
	Location   Location       `json:"location"`
	Parameters []Parameter    `json:"parameter"`
	Calls      []FunctionCall `json:"calls"`
}

// Location is the file and 1-indexed line span of a definition.
type Location struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// LineCount returns the number of lines spanned, or 0 for an inverted span.
func (l Location) LineCount() int {
	if l.EndLine < l.StartLine {
		return 0
	}
	return l.EndLine - l.StartLine + 1
}

// Parameter is a declared parameter with its rendered type.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionCall is one resolved call edge.
type FunctionCall struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Module   string `json:"module"`
}

// Key identifies a call edge for deduplication.
func (c FunctionCall) Key() string {
	return c.Module + "|" + c.Function
}

// ToJSON renders the record as indented JSON.
func (a FunctionAnalysis) ToJSON() (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}
	return string(data), nil
}

// FromJSON decodes a record produced by ToJSON.
func FromJSON(data string) (FunctionAnalysis, error) {
	var a FunctionAnalysis
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return FunctionAnalysis{}, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return a, nil
}
