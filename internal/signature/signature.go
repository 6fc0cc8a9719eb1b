// Package signature renders function declarations and extracts their source.
package signature

import (
	"strings"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/report"
	"github.com/morozRed/moveprobe/internal/typefmt"
)

// Build renders the canonical declaration of fn:
//
//	[public |public(friend) |public(package) ][entry ][native ]fun name<T: a + b>(p: t): ret
//
// The return clause is omitted when the function returns unit.
func Build(fn *ast.Function) string {
	var b strings.Builder
	switch fn.Visibility {
	case ast.VisibilityPublic:
		b.WriteString("public ")
	case ast.VisibilityFriend:
		b.WriteString("public(friend) ")
	case ast.VisibilityPackage:
		b.WriteString("public(package) ")
	}
	if fn.Entry {
		b.WriteString("entry ")
	}
	if fn.Body.Native {
		b.WriteString("native ")
	}
	b.WriteString("fun ")
	b.WriteString(fn.Name)
	writeTypeParams(&b, fn.TypeParams)

	b.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(typefmt.Render(p.Type))
	}
	b.WriteByte(')')

	if !isUnit(fn.Return) {
		b.WriteString(": ")
		b.WriteString(typefmt.Render(fn.Return))
	}
	return b.String()
}

// Minimal renders the fallback signature used when full analysis fails.
func Minimal(fn *ast.Function) string {
	return "fun " + fn.Name + "(..)"
}

func writeTypeParams(b *strings.Builder, params []ast.TypeParam) {
	if len(params) == 0 {
		return
	}
	b.WriteByte('<')
	for i, tp := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tp.Name)
		if len(tp.Constraints) > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(tp.Constraints, " + "))
		}
	}
	b.WriteByte('>')
}

func isUnit(t ast.Type) bool {
	switch v := t.(type) {
	case nil, *ast.UnitType:
		return true
	case *ast.TupleType:
		return len(v.Types) == 0
	}
	return false
}

// Parameters renders each declared parameter.
func Parameters(fn *ast.Function) []report.Parameter {
	out := make([]report.Parameter, 0, len(fn.Params))
	for _, p := range fn.Params {
		out = append(out, report.Parameter{Name: p.Name, Type: typefmt.Render(p.Type)})
	}
	return out
}
