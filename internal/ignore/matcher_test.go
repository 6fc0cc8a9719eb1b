package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"scratch/**",
		"!scratch/keep/vault.json",
		"*.bak",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: ".moveprobe/cache/index.json", isDir: false, ignored: true},
		{path: "build/pkg/bytecode_modules/vault.mv", isDir: false, ignored: true},
		{path: "sources/vault.json.tmp", isDir: false, ignored: true},
		{path: "scratch/old/pool.json", isDir: false, ignored: true},
		{path: "scratch/keep/vault.json", isDir: false, ignored: false},
		{path: "nested/pool.json.bak", isDir: false, ignored: true},
		{path: "sources/vault.json", isDir: false, ignored: false},
		{path: "tests/vault_tests.yaml", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ignored, m.ShouldIgnore(tc.path, tc.isDir), tc.path)
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"generated/",
		"!generated/include/",
	})

	assert.True(t, m.ShouldIgnore("generated/out/vault.json", false))
	assert.False(t, m.ShouldIgnore("generated/include/vault.json", false))
}

func TestMatcher_AnchoredRule(t *testing.T) {
	m := NewMatcher([]string{"/examples/"})

	assert.True(t, m.ShouldIgnore("examples/demo.json", false))
	assert.False(t, m.ShouldIgnore("sources/examples/demo.json", false))
}

func TestLoadRules(t *testing.T) {
	root := t.TempDir()

	rules, err := LoadRules(root)
	require.NoError(t, err)
	assert.Empty(t, rules)

	content := "# generated dumps\nscratch/\n\n!scratch/keep.json\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	rules, err = LoadRules(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"scratch/", "!scratch/keep.json"}, rules)
}

func TestMatcher_SlashedRulesAreAnchored(t *testing.T) {
	m := NewMatcher([]string{"sources/generated", "*.old"})

	assert.True(t, m.ShouldIgnore("sources/generated", true))
	assert.True(t, m.ShouldIgnore("sources/generated/vault.json", false), "contents of a matched directory")
	assert.False(t, m.ShouldIgnore("pkg/sources/generated/vault.json", false))
	assert.True(t, m.ShouldIgnore("legacy.old/pool.json", false))
}

func TestMatcher_DirOnlyRuleSkipsPlainFiles(t *testing.T) {
	m := NewMatcher([]string{"dumps/"})

	assert.True(t, m.ShouldIgnore("dumps", true))
	assert.False(t, m.ShouldIgnore("dumps", false))
	assert.True(t, m.ShouldIgnore("nested/dumps/vault.json", false))
}

func TestMatcher_SkipsBlankAndCommentLines(t *testing.T) {
	m := NewMatcher([]string{"", "  ", "# note", "!", "/"})
	assert.Len(t, m.rules, len(DefaultRules))
}
