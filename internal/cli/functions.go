package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/fileutil"
	"github.com/morozRed/moveprobe/internal/index"
	"github.com/morozRed/moveprobe/internal/search"
	"github.com/morozRed/moveprobe/internal/signature"
	"github.com/morozRed/moveprobe/internal/typefmt"
)

// FunctionEntry is one row of `moveprobe functions --json`.
type FunctionEntry struct {
	Address     string      `json:"address"`
	Module      string      `json:"module"`
	Name        string      `json:"name"`
	Signature   string      `json:"signature"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Callable    bool        `json:"transaction_callable"`
	External    bool        `json:"externally_accessible"`
	MutRefs     int         `json:"mut_refs"`
	Complexity  int         `json:"param_complexity"`
	Params      []ParamInfo `json:"params"`
	File        string      `json:"file"`
}

// ParamInfo describes one declared parameter. Abilities come from the
// declared struct, the type parameter's constraints or the builtin scalar
// rules, and stay empty when the type cannot be resolved.
type ParamInfo struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Generic   bool     `json:"is_generic"`
	Abilities []string `json:"abilities"`
}

var scalarAbilities = map[string][]string{
	"bool":    {"copy", "drop", "store"},
	"u8":      {"copy", "drop", "store"},
	"u16":     {"copy", "drop", "store"},
	"u32":     {"copy", "drop", "store"},
	"u64":     {"copy", "drop", "store"},
	"u128":    {"copy", "drop", "store"},
	"u256":    {"copy", "drop", "store"},
	"address": {"copy", "drop", "store"},
	"signer":  {"drop"},
}

// RunFunctions handles `moveprobe functions <project>`.
func RunFunctions(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	query, err := OptionalStringFlag(cmd, "search")
	if err != nil {
		return err
	}
	rootPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}
	sess, err := openProject(cmd, rootPath)
	if err != nil {
		return err
	}

	idx := index.New(sess.loaded.Project)
	entries := listFunctions(idx)
	if query != "" {
		entries = filterByQuery(entries, search.Search(search.Build(idx), query, 0))
	}
	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), entries)
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s::%s\t%s\n", e.Module, e.Name, e.Signature)
	}
	return nil
}

// filterByQuery keeps the entries matched by results, in ranking order.
func filterByQuery(entries []FunctionEntry, results []search.Result) []FunctionEntry {
	byID := make(map[string][]FunctionEntry, len(entries))
	for _, e := range entries {
		id := e.Module + "::" + e.Name
		byID[id] = append(byID[id], e)
	}
	out := make([]FunctionEntry, 0, len(results))
	for _, r := range results {
		out = append(out, byID[r.ID]...)
		delete(byID, r.ID)
	}
	return out
}

func listFunctions(idx *index.Index) []FunctionEntry {
	refs := idx.All()
	entries := make([]FunctionEntry, 0, len(refs))
	for _, ref := range refs {
		info := signature.Describe(ref.Function)
		entry := FunctionEntry{
			Address:     ref.Module.Address.ShortString(),
			Module:      ref.Module.Name,
			Name:        ref.Function.Name,
			Signature:   signature.Build(ref.Function),
			Category:    string(info.Category),
			Description: info.Description(),
			Callable:    info.IsTransactionCallable(),
			External:    info.IsExternallyAccessible(),
			Params:      make([]ParamInfo, 0, len(ref.Function.Params)),
			File:        ref.Module.FilePath,
		}
		for _, p := range ref.Function.Params {
			if _, mut := typefmt.IsReference(p.Type); mut {
				entry.MutRefs++
			}
			entry.Complexity += typefmt.Complexity(p.Type)
			entry.Params = append(entry.Params, describeParam(idx, ref, p))
		}
		entries = append(entries, entry)
	}
	return entries
}

func describeParam(idx *index.Index, ref index.FunctionRef, p ast.Param) ParamInfo {
	info := ParamInfo{
		Name:      p.Name,
		Type:      typefmt.Render(p.Type),
		Generic:   typefmt.UsesTypeParam(p.Type, ref.Function.TypeParams),
		Abilities: []string{},
	}
	apply, ok := typefmt.Applied(p.Type)
	if !ok {
		return info
	}
	if apply.Chain.Len() == 1 {
		name := apply.Chain.Last().Name
		for _, tp := range ref.Function.TypeParams {
			if tp.Name == name {
				info.Abilities = append(info.Abilities, tp.Constraints...)
				return info
			}
		}
		if abilities, ok := scalarAbilities[name]; ok {
			info.Abilities = append(info.Abilities, abilities...)
			return info
		}
	}
	if st, ok := idx.FindStruct(ref.Module, apply.Chain); ok {
		info.Abilities = append(info.Abilities, st.Abilities...)
	}
	return info
}
