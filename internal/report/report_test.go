package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() FunctionAnalysis {
	return FunctionAnalysis{
		Contract: "vault",
		Function: "public fun deposit(v: &mut Vault, amount: u64)",
		Source:   "/// Adds funds.\npublic fun deposit(v: &mut Vault, amount: u64) {\n    bump(v);\n}",
		Location: Location{File: "/work/sources/vault.move", StartLine: 10, EndLine: 13},
		Parameters: []Parameter{
			{Name: "v", Type: "&mut Vault"},
			{Name: "amount", Type: "u64"},
		},
		Calls: []FunctionCall{
			{File: "/work/sources/vault.move", Function: "fun bump(v: &mut Vault)", Module: "vault"},
		},
	}
}

func TestFunctionAnalysisJSONRoundTrip(t *testing.T) {
	original := sampleAnalysis()

	encoded, err := original.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestFunctionAnalysisWireNames(t *testing.T) {
	encoded, err := sampleAnalysis().ToJSON()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &wire))
	for _, key := range []string{"contract", "function", "source", "location", "parameter", "calls"} {
		assert.Contains(t, wire, key)
	}

	params := wire["parameter"].([]any)
	first := params[0].(map[string]any)
	assert.Equal(t, "&mut Vault", first["type"])

	location := wire["location"].(map[string]any)
	assert.EqualValues(t, 10, location["start_line"])
	assert.EqualValues(t, 13, location["end_line"])
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON("{not json")
	require.Error(t, err)
}

func TestLocationLineCount(t *testing.T) {
	assert.Equal(t, 4, Location{StartLine: 10, EndLine: 13}.LineCount())
	assert.Equal(t, 1, Location{StartLine: 3, EndLine: 3}.LineCount())
	assert.Equal(t, 0, Location{StartLine: 5, EndLine: 2}.LineCount())
}

func TestFunctionCallKeyIgnoresFile(t *testing.T) {
	a := FunctionCall{File: "a.move", Function: "fun f()", Module: "m"}
	b := FunctionCall{File: "b.move", Function: "fun f()", Module: "m"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), FunctionCall{Function: "fun f()", Module: "n"}.Key())
}
