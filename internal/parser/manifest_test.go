package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaultManifest = `[package]
name = "vault"
edition = "2024.beta"
version = "0.1.0"

[dependencies]
Sui = { git = "https://github.com/MystenLabs/sui.git", subdir = "crates/sui-framework/packages/sui-framework", rev = "framework/testnet" }
Shared = { local = "../shared", override = true }

[addresses]
vault = "0x42"
pending = "_"

[dev-addresses]
pending = "0xcafe"
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest("Move.toml", []byte(vaultManifest))
	require.NoError(t, err)

	assert.Equal(t, PackageInfo{Name: "vault", Edition: "2024.beta", Version: "0.1.0"}, m.Package)
	assert.Equal(t, "framework/testnet", m.Dependencies["Sui"].Rev)
	assert.Equal(t, Dependency{Local: "../shared", Override: true}, m.Dependencies["Shared"])

	addr, ok := m.ResolveAddress("vault")
	require.True(t, ok)
	assert.Equal(t, "0x42", addr.ShortString())

	addr, ok = m.ResolveAddress("pending")
	require.True(t, ok, "unassigned address falls back to dev-addresses")
	assert.Equal(t, "0xcafe", addr.ShortString())

	_, ok = m.ResolveAddress("sui")
	assert.False(t, ok)
}

func TestParseManifestRejectsInvalidContent(t *testing.T) {
	cases := map[string]string{
		"not toml":         "[package\nname = ",
		"missing name":     "[package]\nversion = \"1\"\n",
		"bad name":         "[package]\nname = \"my vault!\"\n",
		"blank address":    "[package]\nname = \"v\"\n[addresses]\n\" \" = \"0x1\"\n",
		"blank dependency": "[package]\nname = \"v\"\n[dependencies]\n\" \" = { local = \"../x\" }\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest("Move.toml", []byte(content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidManifest))
		})
	}
}
