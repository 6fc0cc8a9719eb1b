// Package index provides read-only lookups over a parsed project.
package index

import (
	"github.com/morozRed/moveprobe/internal/ast"
)

// ModuleInfo identifies the module owning a function.
type ModuleInfo struct {
	Address  ast.AccountAddress
	Name     string
	FilePath string
}

// FunctionRef binds a function definition to its owning module.
type FunctionRef struct {
	Function *ast.Function
	Module   ModuleInfo
}

// Index scans the project on every query; projects are small enough that
// nothing is precomputed.
type Index struct {
	project *ast.Project
}

// New wraps a project. The project must not be mutated afterwards.
func New(project *ast.Project) *Index {
	if project == nil {
		project = &ast.Project{}
	}
	return &Index{project: project}
}

// FindByName returns every function declared with exactly this name, in the
// order files and modules were supplied. Test-only files are included.
func (x *Index) FindByName(name string) []FunctionRef {
	var out []FunctionRef
	x.eachFunction(func(ref FunctionRef) bool {
		if ref.Function.Name == name {
			out = append(out, ref)
		}
		return true
	})
	return out
}

// All returns every function in the project in supply order.
func (x *Index) All() []FunctionRef {
	var out []FunctionRef
	x.eachFunction(func(ref FunctionRef) bool {
		out = append(out, ref)
		return true
	})
	return out
}

// FindModuleByName returns the first module with this name and its file path.
func (x *Index) FindModuleByName(name string) (*ast.ModuleDefinition, string, bool) {
	for fi := range x.project.Files {
		file := &x.project.Files[fi]
		for mi := range file.Definitions {
			if file.Definitions[mi].Name == name {
				return &file.Definitions[mi], file.Path, true
			}
		}
	}
	return nil, "", false
}

// FindOwningModule returns the module an info record was built from.
func (x *Index) FindOwningModule(info ModuleInfo) (*ast.ModuleDefinition, bool) {
	for fi := range x.project.Files {
		file := &x.project.Files[fi]
		if file.Path != info.FilePath {
			continue
		}
		for mi := range file.Definitions {
			mod := &file.Definitions[mi]
			if mod.Name == info.Name && mod.Address == info.Address {
				return mod, true
			}
		}
	}
	return nil, false
}

// FindInModule looks up a function by module name and function name.
func (x *Index) FindInModule(module, name string) (FunctionRef, bool) {
	mod, path, ok := x.FindModuleByName(module)
	if !ok {
		return FunctionRef{}, false
	}
	fn, ok := mod.Function(name)
	if !ok {
		return FunctionRef{}, false
	}
	return FunctionRef{Function: fn, Module: InfoFor(mod, path)}, true
}

// FindAtAddress looks up a function in the module named module published at
// addr. A numeric addr must equal the module's address; a named one must equal
// the named address the module was declared with. Spellings that differ
// (0x42 against my_pkg) do not match.
func (x *Index) FindAtAddress(addr ast.PathEntry, module, name string) (FunctionRef, bool) {
	for fi := range x.project.Files {
		file := &x.project.Files[fi]
		for mi := range file.Definitions {
			mod := &file.Definitions[mi]
			if mod.Name != module || !publishedAt(mod, addr) {
				continue
			}
			if fn, ok := mod.Function(name); ok {
				return FunctionRef{Function: fn, Module: InfoFor(mod, file.Path)}, true
			}
		}
	}
	return FunctionRef{}, false
}

func publishedAt(mod *ast.ModuleDefinition, addr ast.PathEntry) bool {
	switch addr.Kind {
	case ast.EntryAnonymousAddress:
		return mod.Address == addr.Address
	case ast.EntryName:
		return addr.Name != "" && mod.AddressName == addr.Name
	default:
		return false
	}
}

// FindStruct resolves the struct a named type refers to, as seen from a
// function in module from. A bare name is looked up in from itself; a
// qualified one in the module named by its second-to-last segment.
func (x *Index) FindStruct(from ModuleInfo, chain ast.NameAccessChain) (*ast.Struct, bool) {
	if chain.Len() == 0 {
		return nil, false
	}
	name := chain.Last().Name
	if chain.Len() == 1 {
		mod, ok := x.FindOwningModule(from)
		if !ok {
			return nil, false
		}
		return mod.Struct(name)
	}
	mod, _, ok := x.FindModuleByName(chain.Path[chain.Len()-2].Name)
	if !ok {
		return nil, false
	}
	return mod.Struct(name)
}

// InfoFor builds the ModuleInfo of a module definition located in path.
func InfoFor(mod *ast.ModuleDefinition, path string) ModuleInfo {
	return ModuleInfo{Address: mod.Address, Name: mod.Name, FilePath: path}
}

func (x *Index) eachFunction(visit func(FunctionRef) bool) {
	for fi := range x.project.Files {
		file := &x.project.Files[fi]
		for mi := range file.Definitions {
			mod := &file.Definitions[mi]
			info := InfoFor(mod, file.Path)
			for _, fn := range mod.Functions() {
				if !visit(FunctionRef{Function: fn, Module: info}) {
					return
				}
			}
		}
	}
}
