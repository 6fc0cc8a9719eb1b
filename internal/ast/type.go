package ast

// Type is a type node. Types form a tree.
type Type interface {
	typeNode()
}

// UnitType is the () type.
type UnitType struct{}

// ApplyType names a scalar, struct or generic type through an access chain.
type ApplyType struct {
	Chain NameAccessChain
}

// RefType is &T or &mut T.
type RefType struct {
	Mut   bool
	Inner Type
}

// FunType is |params| -> ret.
type FunType struct {
	Params []Type
	Return Type
}

// TupleType is (T1, T2, ...).
type TupleType struct {
	Types []Type
}

// UnresolvedType marks a type the front-end could not parse.
type UnresolvedType struct{}

func (*UnitType) typeNode()       {}
func (*ApplyType) typeNode()      {}
func (*RefType) typeNode()        {}
func (*FunType) typeNode()        {}
func (*TupleType) typeNode()      {}
func (*UnresolvedType) typeNode() {}

// EntryKind tells how a path segment was written.
type EntryKind int

const (
	EntryName             EntryKind = iota // plain identifier
	EntryGlobalAddress                     // ::name
	EntryAnonymousAddress                  // 0x2
)

// PathEntry is one segment of a name access chain.
type PathEntry struct {
	Name     string
	Kind     EntryKind
	Address  AccountAddress // set for EntryAnonymousAddress
	TypeArgs []Type
	IsMacro  bool
}

// NameAccessChain is name, module::name or address::module::name, each segment
// optionally carrying type arguments.
type NameAccessChain struct {
	Path []PathEntry
}

// Single builds a one-segment chain.
func Single(name string, typeArgs ...Type) NameAccessChain {
	return NameAccessChain{Path: []PathEntry{{Name: name, TypeArgs: typeArgs}}}
}

// Qualified builds a chain from plain identifier segments.
func Qualified(names ...string) NameAccessChain {
	path := make([]PathEntry, 0, len(names))
	for _, name := range names {
		path = append(path, PathEntry{Name: name})
	}
	return NameAccessChain{Path: path}
}

// Last returns the final segment, or a zero entry for an empty chain.
func (c NameAccessChain) Last() PathEntry {
	if len(c.Path) == 0 {
		return PathEntry{}
	}
	return c.Path[len(c.Path)-1]
}

// Len is the number of segments.
func (c NameAccessChain) Len() int {
	return len(c.Path)
}

// Named is a convenience for an applied type with a single segment.
func Named(name string, typeArgs ...Type) *ApplyType {
	return &ApplyType{Chain: Single(name, typeArgs...)}
}
