package signature

import (
	"strings"

	"github.com/morozRed/moveprobe/internal/ast"
)

// Category combines visibility and modifiers into one classification.
type Category string

const (
	CategoryPublic        Category = "public"
	CategoryPublicFriend  Category = "public(friend)"
	CategoryPublicPackage Category = "public(package)"
	CategoryPrivate       Category = "private"
	CategoryEntry         Category = "entry"
	CategoryNative        Category = "native"
)

// TypeInfo summarizes a function's modifiers.
type TypeInfo struct {
	Visibility ast.Visibility
	Entry      bool
	Native     bool
	Category   Category
	Generic    bool
	ParamCount int
}

// Describe classifies fn. Native wins over entry, entry over visibility.
func Describe(fn *ast.Function) TypeInfo {
	info := TypeInfo{
		Visibility: fn.Visibility,
		Entry:      fn.Entry,
		Native:     fn.Body.Native,
		Generic:    len(fn.TypeParams) > 0,
		ParamCount: len(fn.Params),
	}
	switch {
	case info.Native:
		info.Category = CategoryNative
	case info.Entry:
		info.Category = CategoryEntry
	case fn.Visibility == ast.VisibilityPublic:
		info.Category = CategoryPublic
	case fn.Visibility == ast.VisibilityFriend:
		info.Category = CategoryPublicFriend
	case fn.Visibility == ast.VisibilityPackage:
		info.Category = CategoryPublicPackage
	default:
		info.Category = CategoryPrivate
	}
	return info
}

// IsTransactionCallable reports whether the function can be a transaction entry point.
func (i TypeInfo) IsTransactionCallable() bool {
	return i.Entry
}

// IsExternallyAccessible reports whether other modules may call the function.
func (i TypeInfo) IsExternallyAccessible() bool {
	return i.Visibility != ast.VisibilityInternal
}

// Description is a short human summary, e.g. "public entry function (generic)".
func (i TypeInfo) Description() string {
	parts := make([]string, 0, 4)
	if i.Visibility == ast.VisibilityInternal {
		parts = append(parts, "private")
	} else {
		parts = append(parts, i.Visibility.String())
	}
	if i.Entry {
		parts = append(parts, "entry")
	}
	if i.Native {
		parts = append(parts, "native")
	}
	parts = append(parts, "function")
	desc := strings.Join(parts, " ")
	if i.Generic {
		desc += " (generic)"
	}
	return desc
}
