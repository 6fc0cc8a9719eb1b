package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/moveprobe/internal/analyzer"
	"github.com/morozRed/moveprobe/internal/config"
	"github.com/morozRed/moveprobe/internal/ignore"
	"github.com/morozRed/moveprobe/internal/parser"
	"github.com/morozRed/moveprobe/internal/report"
	"github.com/morozRed/moveprobe/internal/store"
)

const manifest = `[package]
name = "vault"
edition = "2024.beta"

[addresses]
vault = "0x42"
`

const vaultSrc = `module vault::vault {
    fun helper(x: u64): u64 { x }

    /// Deposit into the vault.
    public fun deposit(amount: u64): u64 {
        helper(amount)
    }
}
`

func locJSON(t *testing.T, prefix, suffix string) string {
	t.Helper()
	start := strings.Index(vaultSrc, prefix)
	require.GreaterOrEqual(t, start, 0, prefix)
	rel := strings.Index(vaultSrc[start:], suffix)
	require.GreaterOrEqual(t, rel, 0, suffix)
	return fmt.Sprintf(`{"start": %d, "end": %d}`, start, start+rel+len(suffix))
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	u64 := `{"kind": "apply", "chain": "u64"}`
	dump := fmt.Sprintf(`{
  "path": "sources/vault.move",
  "definitions": [{
    "address": "vault",
    "name": "vault",
    "members": [
      {"kind": "function", "name": "helper",
       "params": [{"name": "x", "type": %[1]s}], "return": %[1]s,
       "loc": %[2]s,
       "body": {"result": {"kind": "name", "chain": "x"}}},
      {"kind": "function", "name": "deposit", "visibility": "public",
       "params": [{"name": "amount", "type": %[1]s}], "return": %[1]s,
       "loc": %[3]s,
       "body": {"result": {"kind": "call", "target": "helper", "args": [{"kind": "name", "chain": "amount"}]}}}
    ]
  }]
}`, u64, locJSON(t, "fun helper", "{ x }"), locJSON(t, "public fun deposit", "(amount)\n    }"))

	mustWriteFile(t, filepath.Join(root, parser.ManifestFile), manifest)
	mustWriteFile(t, filepath.Join(root, "sources", "vault.move"), vaultSrc)
	mustWriteFile(t, filepath.Join(root, parser.DefaultASTDir, "vault.json"), dump)
	return root
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnalyzePrintsJSON(t *testing.T) {
	root := newProject(t)

	stdout, _, err := run(t, "analyze", root, "deposit")
	require.NoError(t, err)

	var got []report.FunctionAnalysis
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, "vault", a.Contract)
	assert.Equal(t, "public fun deposit(amount: u64): u64", a.Function)
	assert.Equal(t, filepath.Join(root, "sources", "vault.move"), a.Location.File)
	assert.Equal(t, 4, a.Location.StartLine)
	assert.Equal(t, 7, a.Location.EndLine)
	assert.True(t, strings.HasPrefix(a.Source, "/// Deposit into the vault."))
	assert.Equal(t, []report.Parameter{{Name: "amount", Type: "u64"}}, a.Parameters)
	assert.Equal(t, []report.FunctionCall{{
		File:     filepath.Join(root, "sources", "vault.move"),
		Function: "fun helper(x: u64): u64",
		Module:   "vault",
	}}, a.Calls)
}

func TestAnalyzeTextFormat(t *testing.T) {
	root := newProject(t)

	stdout, _, err := run(t, "analyze", root, "helper", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fun helper(x: u64): u64")
	assert.Contains(t, stdout, "calls: none")
}

func TestAnalyzeWritesFileAndDatabase(t *testing.T) {
	root := newProject(t)
	outPath := filepath.Join(t.TempDir(), "reports", "deposit.jsonl")
	dbPath := filepath.Join(t.TempDir(), "deposit.db")

	stdout, _, err := run(t, "analyze", root, "deposit", "--format", "jsonl", "--out", outPath, "--sqlite", dbPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	line, err := report.FromJSON(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	assert.Equal(t, "vault", line.Contract)

	query, stored, err := store.Load(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "deposit", query)
	require.Len(t, stored, 1)
	assert.Equal(t, line, stored[0])
}

func TestAnalyzeErrors(t *testing.T) {
	root := newProject(t)

	_, _, err := run(t, "analyze", root, "withdraw")
	assert.True(t, errors.Is(err, analyzer.ErrFunctionNotFound))

	_, _, err = run(t, "analyze", root, "depost")
	require.True(t, errors.Is(err, analyzer.ErrFunctionNotFound))
	assert.Contains(t, err.Error(), "did you mean deposit?")

	_, _, err = run(t, "analyze", root, "  ")
	assert.True(t, errors.Is(err, analyzer.ErrInvalidName))

	_, _, err = run(t, "analyze", root, "deposit", "--format", "xml")
	assert.Error(t, err)

	_, _, err = run(t, "analyze", t.TempDir(), "deposit")
	assert.True(t, errors.Is(err, parser.ErrInvalidProject))

	_, _, err = run(t, "analyze", root)
	assert.Error(t, err)
}

func TestAnalyzeHonorsConfigFile(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.Rename(filepath.Join(root, parser.DefaultASTDir), filepath.Join(root, "dumps")))

	_, _, err := run(t, "analyze", root, "deposit")
	require.Error(t, err)

	mustWriteFile(t, filepath.Join(root, config.FileName+".yaml"), "ast_dir: dumps\n")
	_, _, err = run(t, "analyze", root, "deposit")
	require.NoError(t, err)

	_, _, err = run(t, "analyze", root, "deposit", "--ast-dir", "missing")
	assert.True(t, errors.Is(err, parser.ErrInvalidProject))
}

func TestFunctionsListsEveryDefinition(t *testing.T) {
	root := newProject(t)

	stdout, _, err := run(t, "functions", root)
	require.NoError(t, err)
	assert.Equal(t, "vault::helper\tfun helper(x: u64): u64\nvault::deposit\tpublic fun deposit(amount: u64): u64\n", stdout)

	stdout, _, err = run(t, "functions", root, "--json")
	require.NoError(t, err)
	var entries []FunctionEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, FunctionEntry{
		Address:     "0x42",
		Module:      "vault",
		Name:        "deposit",
		Signature:   "public fun deposit(amount: u64): u64",
		Category:    "public",
		Description: "public function",
		External:    true,
		Complexity:  1,
		Params: []ParamInfo{
			{Name: "amount", Type: "u64", Abilities: []string{"copy", "drop", "store"}},
		},
		File: filepath.Join(root, "sources", "vault.move"),
	}, entries[1])
}

func TestFunctionsSearch(t *testing.T) {
	root := newProject(t)

	stdout, _, err := run(t, "functions", root, "--search", "helpr")
	require.NoError(t, err)
	assert.Equal(t, "vault::helper\tfun helper(x: u64): u64\n", stdout)
}

func TestDoctor(t *testing.T) {
	root := newProject(t)

	stdout, _, err := run(t, "doctor", root, "--json")
	require.NoError(t, err)
	var summary DoctorSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.True(t, summary.Healthy)
	assert.Equal(t, "vault", summary.Package)
	assert.Equal(t, 1, summary.SourceFiles)
	assert.Equal(t, 1, summary.Modules)
	assert.Equal(t, 2, summary.Functions)
	assert.NotEmpty(t, summary.Suggestions)

	stdout, _, err = run(t, "doctor", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "doctor: issues")
	assert.Contains(t, stdout, "valid Move project layout")
}

func TestDoctorFlagsUnassignedAddress(t *testing.T) {
	root := newProject(t)
	mustWriteFile(t, filepath.Join(root, parser.ManifestFile), "[package]\nname = \"vault\"\n\n[addresses]\nvault = \"_\"\n")

	stdout, _, err := run(t, "doctor", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "doctor: issues")
	assert.Contains(t, stdout, `named address "vault" is not assigned`)
}

func TestInitWritesStarterFiles(t *testing.T) {
	root := newProject(t)

	stdout, _, err := run(t, "init", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Initialized moveprobe")

	cfg, err := config.Load(root, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, config.FileName+".yaml"), cfg.File)
	assert.Equal(t, parser.DefaultASTDir, cfg.ASTDir)

	rules, err := ignore.LoadRules(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.bak", "scratch/"}, rules)

	mustWriteFile(t, filepath.Join(root, ignore.FileName), "custom/\n")
	_, _, err = run(t, "init", root)
	require.NoError(t, err)
	rules, err = ignore.LoadRules(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom/"}, rules)

	_, _, err = run(t, "init", filepath.Join(root, "nope"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "moveprobe test\n", stdout)
}

func TestShowAndCallersReadSavedReport(t *testing.T) {
	root := newProject(t)
	dbPath := filepath.Join(t.TempDir(), "deposit.db")

	_, _, err := run(t, "analyze", root, "deposit", "--sqlite", dbPath)
	require.NoError(t, err)

	stdout, _, err := run(t, "show", dbPath, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "public fun deposit(amount: u64): u64")
	assert.Contains(t, stdout, "fun helper(x: u64): u64")

	stdout, _, err = run(t, "callers", dbPath, "vault", "--json")
	require.NoError(t, err)
	var result CallersResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, CallersResult{Module: "vault", Query: "deposit", Callers: []string{"vault"}}, result)

	stdout, _, err = run(t, "callers", dbPath, "pool")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	_, _, err = run(t, "callers", filepath.Join(t.TempDir(), "missing.db"), "vault")
	assert.Error(t, err)
}
