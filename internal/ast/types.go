package ast

// Loc is a byte-offset span inside the owning source file.
type Loc struct {
	Start int
	End   int
}

// Project is the parsed-module collection handed over by the front-end.
type Project struct {
	Root  string
	Files []SourceFile
}

// SourceFile holds the module definitions parsed from one .move file.
type SourceFile struct {
	Path        string
	IsTest      bool
	Definitions []ModuleDefinition
}

// ModuleDefinition is a module declaration with its ordered members.
type ModuleDefinition struct {
	Address     AccountAddress
	AddressName string // named address as written, empty for numeric addresses
	Name        string
	Members     []Member
	Loc         Loc
}

// Functions returns the module's function members in declaration order.
func (m *ModuleDefinition) Functions() []*Function {
	out := make([]*Function, 0, len(m.Members))
	for _, member := range m.Members {
		if fn, ok := member.(*Function); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Function looks up a function member by exact name.
func (m *ModuleDefinition) Function(name string) (*Function, bool) {
	for _, member := range m.Members {
		if fn, ok := member.(*Function); ok && fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// Struct looks up a struct member by exact name.
func (m *ModuleDefinition) Struct(name string) (*Struct, bool) {
	for _, member := range m.Members {
		if st, ok := member.(*Struct); ok && st.Name == name {
			return st, true
		}
	}
	return nil, false
}

// DeclaresStruct reports whether the module declares a struct with the given name.
func (m *ModuleDefinition) DeclaresStruct(name string) bool {
	_, ok := m.Struct(name)
	return ok
}

// Member is one top-level item of a module.
type Member interface {
	member()
}

// Visibility of a function declaration.
type Visibility int

const (
	VisibilityInternal Visibility = iota
	VisibilityPublic
	VisibilityFriend
	VisibilityPackage
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityFriend:
		return "public(friend)"
	case VisibilityPackage:
		return "public(package)"
	default:
		return "internal"
	}
}

// TypeParam is a generic parameter with its ability constraints.
type TypeParam struct {
	Name        string
	Constraints []string
}

// Param is a declared function parameter.
type Param struct {
	Name string
	Type Type
}

// FunctionBody is either native or a defined expression sequence.
type FunctionBody struct {
	Native bool
	Seq    Sequence
}

// Function is a function declaration.
type Function struct {
	Name       string
	Visibility Visibility
	Entry      bool
	TypeParams []TypeParam
	Params     []Param
	Return     Type
	Body       FunctionBody
	Loc        Loc
}

// StructField is a named, typed struct field.
type StructField struct {
	Name string
	Type Type
}

// Struct is a struct declaration.
type Struct struct {
	Name       string
	Abilities  []string
	TypeParams []TypeParam
	Fields     []StructField
	Loc        Loc
}

// Constant is a module-level constant.
type Constant struct {
	Name  string
	Type  Type
	Value Exp
	Loc   Loc
}

// UseMember is one imported member of a use declaration.
type UseMember struct {
	Name  string
	Alias string
}

// UseDecl imports a module or some of its members.
type UseDecl struct {
	Module  string // "address::module"
	Alias   string
	Members []UseMember
	Loc     Loc
}

// FriendDecl grants friend visibility to another module.
type FriendDecl struct {
	Module string
	Loc    Loc
}

func (*Function) member()   {}
func (*Struct) member()     {}
func (*Constant) member()   {}
func (*UseDecl) member()    {}
func (*FriendDecl) member() {}
