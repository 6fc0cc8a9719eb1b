package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/morozRed/moveprobe/internal/ast"
)

// ManifestFile is the package manifest every project root must carry.
const ManifestFile = "Move.toml"

// ErrInvalidManifest is returned for a manifest that does not decode or validate.
var ErrInvalidManifest = errors.New("invalid Move.toml")

// unassigned marks a named address left for the publisher to fill in.
const unassigned = "_"

// Manifest is the decoded Move.toml.
type Manifest struct {
	Package         PackageInfo           `toml:"package"`
	Addresses       map[string]string     `toml:"addresses"`
	DevAddresses    map[string]string     `toml:"dev-addresses"`
	Dependencies    map[string]Dependency `toml:"dependencies"`
	DevDependencies map[string]Dependency `toml:"dev-dependencies"`
}

// PackageInfo is the [package] table.
type PackageInfo struct {
	Name    string `toml:"name"`
	Edition string `toml:"edition"`
	Version string `toml:"version"`
}

// Dependency is one entry of a dependency table.
type Dependency struct {
	Git      string `toml:"git"`
	Subdir   string `toml:"subdir"`
	Rev      string `toml:"rev"`
	Local    string `toml:"local"`
	Override bool   `toml:"override"`
}

// LoadManifest reads and validates the manifest under root.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, ManifestFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return ParseManifest(path, content)
}

// ParseManifest decodes and validates manifest content.
func ParseManifest(path string, content []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidManifest, path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the package name and that no table has blank keys.
func (m *Manifest) Validate() error {
	name := m.Package.Name
	if name == "" {
		return fmt.Errorf("%w: package name cannot be empty", ErrInvalidManifest)
	}
	for _, r := range name {
		if !isNameRune(r) {
			return fmt.Errorf("%w: invalid package name %q: only alphanumerics, '_' and '-' are allowed", ErrInvalidManifest, name)
		}
	}
	for _, table := range []struct {
		label string
		keys  []string
	}{
		{"addresses", keys(m.Addresses)},
		{"dev-addresses", keys(m.DevAddresses)},
		{"dependencies", keys(m.Dependencies)},
		{"dev-dependencies", keys(m.DevDependencies)},
	} {
		for _, key := range table.keys {
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("%w: empty name in [%s]", ErrInvalidManifest, table.label)
			}
		}
	}
	return nil
}

// ResolveAddress looks a named address up in [addresses], then
// [dev-addresses]. Unassigned ("_") and malformed values do not resolve.
func (m *Manifest) ResolveAddress(name string) (ast.AccountAddress, bool) {
	for _, table := range []map[string]string{m.Addresses, m.DevAddresses} {
		raw, ok := table[name]
		if !ok || strings.TrimSpace(raw) == unassigned {
			continue
		}
		addr, err := ast.ParseAccountAddress(raw)
		if err != nil {
			continue
		}
		return addr, true
	}
	return ast.AccountAddress{}, false
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
