package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/ignore"
)

// Decoder turns one AST dump document into source files.
type Decoder interface {
	// Format returns the dump format name (e.g., "json", "yaml")
	Format() string

	// Extensions returns file extensions this decoder handles
	Extensions() []string

	// Decode converts the dump content into typed source files
	Decode(filename string, content []byte) ([]ast.SourceFile, error)
}

// Registry holds all registered dump decoders
type Registry struct {
	decoders    map[string]Decoder // format name -> decoder
	extToFormat map[string]string  // extension -> format name
}

// NewRegistry creates a new decoder registry
func NewRegistry() *Registry {
	return &Registry{
		decoders:    make(map[string]Decoder),
		extToFormat: make(map[string]string),
	}
}

// DefaultRegistry returns a registry with the JSON and YAML decoders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(JSONDecoder{})
	r.Register(YAMLDecoder{})
	return r
}

// Register adds a decoder to the registry
func (r *Registry) Register(d Decoder) {
	format := d.Format()
	r.decoders[format] = d
	for _, ext := range d.Extensions() {
		r.extToFormat[strings.ToLower(ext)] = format
	}
}

// GetDecoderForFile returns the appropriate decoder for a file
func (r *Registry) GetDecoderForFile(filename string) (Decoder, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := r.extToFormat[ext]
	if !ok {
		return nil, false
	}
	d, ok := r.decoders[format]
	return d, ok
}

// SupportedExtensions returns all supported file extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToFormat))
	for ext := range r.extToFormat {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseFile decodes a single dump. Unsupported files yield nil.
func (r *Registry) ParseFile(path string) (*DumpFile, error) {
	d, ok := r.GetDecoderForFile(path)
	if !ok {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	files, err := d.Decode(path, content)
	if err != nil {
		return nil, err
	}

	return &DumpFile{
		Path:   path,
		Format: d.Format(),
		Files:  files,
		Hash:   hashContent(content),
	}, nil
}

// ParseDirectory recursively decodes all supported dumps under root.
// onFile, when set, is called with each dump's relative path before decoding.
func (r *Registry) ParseDirectory(root string, ignorePaths []string, onFile func(relPath string)) (*ParseResult, error) {
	ignoreMatcher := ignore.NewMatcher(ignorePaths)

	result := &ParseResult{
		RootPath: root,
		Dumps:    make([]DumpFile, 0),
		Issues:   make([]ParseIssue, 0),
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			relPath := path
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				relPath = rel
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Severity: "warning",
				Message:  fmt.Sprintf("walk error: %v", err),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories and ignored paths
		relPath, _ := filepath.Rel(root, path)
		if relPath != "." && ignoreMatcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}
		if _, ok := r.GetDecoderForFile(path); !ok {
			return nil
		}
		if onFile != nil {
			onFile(relPath)
		}

		dump, err := r.ParseFile(path)
		if err != nil {
			format := ""
			if d, ok := r.GetDecoderForFile(path); ok {
				format = d.Format()
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Format:   format,
				Severity: "error",
				Message:  err.Error(),
			})
			return nil
		}
		if dump != nil {
			dump.Path = filepath.ToSlash(relPath)
			result.Dumps = append(result.Dumps, *dump)
		}

		return nil
	})

	sort.Slice(result.Dumps, func(i, j int) bool {
		return result.Dumps[i].Path < result.Dumps[j].Path
	})
	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].File == result.Issues[j].File {
			return result.Issues[i].Message < result.Issues[j].Message
		}
		return result.Issues[i].File < result.Issues[j].File
	})

	return result, err
}

func hashContent(content []byte) string {
	h := sha256.New()
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:16] // short hash
}
