// Package typefmt renders Move type nodes in their declaration syntax.
package typefmt

import (
	"strings"

	"github.com/morozRed/moveprobe/internal/ast"
)

// Unresolved is the text emitted for types the front-end could not parse.
const Unresolved = "UnresolvedError"

// Render returns the canonical text of a type. A nil type renders as unit.
func Render(t ast.Type) string {
	var b strings.Builder
	write(&b, t)
	return b.String()
}

func write(b *strings.Builder, t ast.Type) {
	switch t := t.(type) {
	case nil, *ast.UnitType:
		b.WriteString("()")
	case *ast.ApplyType:
		writeChain(b, t.Chain)
	case *ast.RefType:
		b.WriteByte('&')
		if t.Mut {
			b.WriteString("mut ")
		}
		write(b, t.Inner)
	case *ast.FunType:
		b.WriteByte('|')
		writeList(b, t.Params)
		b.WriteString("| -> ")
		write(b, t.Return)
	case *ast.TupleType:
		b.WriteByte('(')
		writeList(b, t.Types)
		b.WriteByte(')')
	case *ast.UnresolvedType:
		b.WriteString(Unresolved)
	default:
		b.WriteString(Unresolved)
	}
}

func writeList(b *strings.Builder, types []ast.Type) {
	for i, t := range types {
		if i > 0 {
			b.WriteString(", ")
		}
		write(b, t)
	}
}

func writeChain(b *strings.Builder, chain ast.NameAccessChain) {
	for i, entry := range chain.Path {
		if i > 0 {
			b.WriteString("::")
		}
		switch entry.Kind {
		case ast.EntryAnonymousAddress:
			b.WriteString(entry.Address.ShortString())
		case ast.EntryGlobalAddress:
			b.WriteString("::")
			b.WriteString(entry.Name)
		default:
			b.WriteString(entry.Name)
		}
		if entry.IsMacro {
			b.WriteByte('!')
		}
		if len(entry.TypeArgs) > 0 {
			b.WriteByte('<')
			writeList(b, entry.TypeArgs)
			b.WriteByte('>')
		}
	}
}

// BaseName returns the final identifier a type names once references are
// stripped, e.g. `Pool` for `&mut pool::Pool<T>`. Non-applied types yield "".
func BaseName(t ast.Type) string {
	if apply, ok := Applied(t); ok {
		return apply.Chain.Last().Name
	}
	return ""
}

// Applied strips references off t and returns the named type beneath.
func Applied(t ast.Type) (*ast.ApplyType, bool) {
	for {
		switch v := t.(type) {
		case *ast.RefType:
			t = v.Inner
		case *ast.ApplyType:
			return v, true
		default:
			return nil, false
		}
	}
}

// UsesTypeParam reports whether t mentions any of the given type parameters.
func UsesTypeParam(t ast.Type, params []ast.TypeParam) bool {
	for _, tp := range params {
		if Mentions(t, tp.Name) {
			return true
		}
	}
	return false
}

// Mentions reports whether name appears as an applied type name anywhere in t,
// including nested type arguments, reference targets and function types.
func Mentions(t ast.Type, name string) bool {
	switch v := t.(type) {
	case *ast.ApplyType:
		if last := v.Chain.Last(); last.Kind == ast.EntryName && last.Name == name {
			return true
		}
		for _, entry := range v.Chain.Path {
			for _, arg := range entry.TypeArgs {
				if Mentions(arg, name) {
					return true
				}
			}
		}
		return false
	case *ast.RefType:
		return Mentions(v.Inner, name)
	case *ast.FunType:
		for _, p := range v.Params {
			if Mentions(p, name) {
				return true
			}
		}
		return Mentions(v.Return, name)
	case *ast.TupleType:
		for _, el := range v.Types {
			if Mentions(el, name) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// IsReference reports whether t is &T or &mut T.
func IsReference(t ast.Type) (isRef, isMut bool) {
	if ref, ok := t.(*ast.RefType); ok {
		return true, ref.Mut
	}
	return false, false
}

// Complexity scores how structurally involved a type is: scalars and plain
// names count 1, qualified names 2, and every wrapper adds to its children.
func Complexity(t ast.Type) int {
	switch v := t.(type) {
	case nil, *ast.UnitType, *ast.UnresolvedType:
		return 0
	case *ast.ApplyType:
		score := 1
		if v.Chain.Len() > 1 {
			score = 2
		}
		for _, entry := range v.Chain.Path {
			for _, arg := range entry.TypeArgs {
				score += Complexity(arg)
			}
		}
		return score
	case *ast.RefType:
		return 1 + Complexity(v.Inner)
	case *ast.FunType:
		score := 2 + Complexity(v.Return)
		for _, p := range v.Params {
			score += Complexity(p)
		}
		return score
	case *ast.TupleType:
		score := 1
		for _, el := range v.Types {
			score += Complexity(el)
		}
		return score
	default:
		return 0
	}
}
