package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/ignore"
)

// ErrInvalidProject is returned when the project root fails validation.
var ErrInvalidProject = errors.New("invalid Move project")

// DefaultASTDir is where the front-end writes AST dumps, relative to the project root.
const DefaultASTDir = ".moveprobe/ast"

// LoadOptions configure Load.
type LoadOptions struct {
	ASTDir   string // relative to the project root unless absolute
	Ignore   []string
	Registry *Registry
	Logger   *slog.Logger
	OnFile   func(relPath string)
}

// LoadResult is a loaded project and what was learned on the way.
type LoadResult struct {
	Project  *ast.Project
	Manifest *Manifest
	Issues   []ParseIssue
}

// ValidateProject checks that root is a readable directory holding a
// non-empty Move.toml, and that the conventional sub-directories are sane.
func ValidateProject(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProject, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: project path is not a directory: %s", ErrInvalidProject, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return fmt.Errorf("%w: cannot read project directory %s: %w", ErrInvalidProject, root, err)
	}

	manifestPath := filepath.Join(root, ManifestFile)
	info, err = os.Stat(manifestPath)
	if err != nil {
		return fmt.Errorf("%w: %s not found in %s", ErrInvalidProject, ManifestFile, root)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s exists but is not a file", ErrInvalidProject, manifestPath)
	}
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s: %w", ErrInvalidProject, manifestPath, err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidProject, ManifestFile)
	}

	for _, dir := range []string{"sources", "tests", "scripts"} {
		if err := validateSubdir(root, dir); err != nil {
			return err
		}
	}
	return validateMoveFiles(filepath.Join(root, "sources"))
}

func validateSubdir(root, name string) error {
	path := filepath.Join(root, name)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProject, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s path exists but is not a directory: %s", ErrInvalidProject, name, path)
	}
	if _, err := os.ReadDir(path); err != nil {
		return fmt.Errorf("%w: cannot read %s directory: %w", ErrInvalidProject, name, err)
	}
	return nil
}

// validateMoveFiles rejects empty or unreadable .move files under dir.
func validateMoveFiles(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return nil
	}
	var problems []string
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			problems = append(problems, err.Error())
			return nil
		}
		name := info.Name()
		if info.IsDir() || !strings.HasSuffix(name, ".move") || strings.HasPrefix(name, ".") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("cannot read Move file %s: %v", path, err))
		} else if strings.TrimSpace(string(content)) == "" {
			problems = append(problems, fmt.Sprintf("Move file is empty: %s", path))
		}
		return nil
	})
	if len(problems) > 0 {
		return fmt.Errorf("%w: sources: %s", ErrInvalidProject, strings.Join(problems, "; "))
	}
	return nil
}

// Load validates root, reads its manifest and decodes the AST dumps into a
// project. Source paths are made absolute and files under tests/ are
// flagged as test-only.
func Load(root string, opts LoadOptions) (*LoadResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}
	if err := ValidateProject(absRoot); err != nil {
		return nil, err
	}
	manifest, err := LoadManifest(absRoot)
	if err != nil {
		return nil, err
	}

	rules, err := ignore.LoadRules(absRoot)
	if err != nil {
		return nil, err
	}
	rules = append(rules, opts.Ignore...)

	astDir := opts.ASTDir
	if astDir == "" {
		astDir = DefaultASTDir
	}
	if !filepath.IsAbs(astDir) {
		astDir = filepath.Join(absRoot, astDir)
	}
	if info, err := os.Stat(astDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: no AST dump directory at %s", ErrInvalidProject, astDir)
	}

	parsed, err := registry.ParseDirectory(astDir, rules, opts.OnFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read AST dumps: %w", err)
	}
	for _, issue := range parsed.Issues {
		logger.Warn("load.issue", "file", issue.File, "severity", issue.Severity, "message", issue.Message)
	}
	if len(parsed.Dumps) == 0 {
		return nil, fmt.Errorf("%w: no AST dumps decoded from %s (%d issues)", ErrInvalidProject, astDir, len(parsed.Issues))
	}

	files := parsed.SourceFiles()
	for i := range files {
		normalizeSourceFile(&files[i], absRoot, manifest, logger)
	}
	logger.Debug("load.done", "root", absRoot, "package", manifest.Package.Name, "dumps", len(parsed.Dumps), "files", len(files))

	return &LoadResult{
		Project:  &ast.Project{Root: absRoot, Files: files},
		Manifest: manifest,
		Issues:   parsed.Issues,
	}, nil
}

func normalizeSourceFile(file *ast.SourceFile, root string, manifest *Manifest, logger *slog.Logger) {
	rel := filepath.ToSlash(file.Path)
	if filepath.IsAbs(file.Path) {
		if r, err := filepath.Rel(root, file.Path); err == nil {
			rel = filepath.ToSlash(r)
		}
	} else {
		file.Path = filepath.Join(root, file.Path)
	}
	if rel == "tests" || strings.HasPrefix(rel, "tests/") {
		file.IsTest = true
	}

	for i := range file.Definitions {
		mod := &file.Definitions[i]
		if mod.AddressName == "" {
			continue
		}
		if addr, ok := manifest.ResolveAddress(mod.AddressName); ok {
			mod.Address = addr
		} else {
			logger.Debug("load.unresolved_address", "module", mod.Name, "address", mod.AddressName)
		}
	}
}
