package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/index"
)

func TestListFunctionsDescribesParams(t *testing.T) {
	addr, err := ast.ParseAccountAddress("0x42")
	require.NoError(t, err)

	poolOf := func(arg ast.Type) ast.Type {
		return &ast.ApplyType{Chain: ast.NameAccessChain{Path: []ast.PathEntry{
			{Name: "pool"},
			{Name: "Pool", TypeArgs: []ast.Type{arg}},
		}}}
	}
	swap := &ast.Function{
		Name:       "swap",
		Visibility: ast.VisibilityPublic,
		TypeParams: []ast.TypeParam{{Name: "T", Constraints: []string{"store", "drop"}}},
		Params: []ast.Param{
			{Name: "p", Type: &ast.RefType{Mut: true, Inner: poolOf(ast.Named("T"))}},
			{Name: "item", Type: ast.Named("T")},
			{Name: "cfg", Type: &ast.RefType{Inner: ast.Named("Config")}},
			{Name: "who", Type: &ast.RefType{Inner: ast.Named("signer")}},
			{Name: "c", Type: ast.Named("Coin")},
		},
	}
	project := &ast.Project{Files: []ast.SourceFile{
		{
			Path: "sources/pool.move",
			Definitions: []ast.ModuleDefinition{{
				Address: addr,
				Name:    "pool",
				Members: []ast.Member{&ast.Struct{Name: "Pool", Abilities: []string{"key"}}},
			}},
		},
		{
			Path: "sources/router.move",
			Definitions: []ast.ModuleDefinition{{
				Address: addr,
				Name:    "router",
				Members: []ast.Member{
					&ast.Struct{Name: "Config", Abilities: []string{"copy", "drop"}},
					swap,
				},
			}},
		},
	}}

	entries := listFunctions(index.New(project))
	require.Len(t, entries, 1)
	assert.Equal(t, []ParamInfo{
		{Name: "p", Type: "&mut pool::Pool<T>", Generic: true, Abilities: []string{"key"}},
		{Name: "item", Type: "T", Generic: true, Abilities: []string{"store", "drop"}},
		{Name: "cfg", Type: "&Config", Abilities: []string{"copy", "drop"}},
		{Name: "who", Type: "&signer", Abilities: []string{"drop"}},
		{Name: "c", Type: "Coin", Abilities: []string{}},
	}, entries[0].Params)
	assert.Equal(t, 1, entries[0].MutRefs)
}
