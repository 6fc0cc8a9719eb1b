package parser

import "github.com/morozRed/moveprobe/internal/ast"

// DumpFile is one decoded AST dump.
type DumpFile struct {
	Path   string // dump path relative to the walked root
	Format string
	Files  []ast.SourceFile
	Hash   string // content hash of the dump
}

// ParseIssue captures non-fatal decoder warnings/errors encountered while scanning dumps.
type ParseIssue struct {
	File     string `json:"file"`
	Format   string `json:"format,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// ParseResult holds every dump decoded from a directory.
type ParseResult struct {
	Dumps    []DumpFile
	RootPath string
	Issues   []ParseIssue
}

// SourceFiles flattens the decoded dumps in dump order.
func (r *ParseResult) SourceFiles() []ast.SourceFile {
	out := make([]ast.SourceFile, 0, len(r.Dumps))
	for _, dump := range r.Dumps {
		out = append(out, dump.Files...)
	}
	return out
}
