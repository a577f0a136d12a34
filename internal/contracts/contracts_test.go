package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/internal/jsonx"
)

// schemaMap unmarshals a contract schema for structural assertions.
func schemaMap(t *testing.T, c Contract) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(c.Schema, &m))
	return m
}

func TestChangelogContractIsClosed(t *testing.T) {
	c, err := ChangelogContract()
	require.NoError(t, err)
	assert.Equal(t, "changelog_model", c.Name)

	m := schemaMap(t, c)
	assert.Equal(t, false, m["additionalProperties"])
	assert.NotContains(t, m, "$schema")

	required, ok := m["required"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{
		"breakingChanges", "added", "changed", "fixed", "removed", "internalTooling",
	}, required)

	// Bullet objects are closed too.
	props := m["properties"].(map[string]any)
	added := props["added"].(map[string]any)
	bullet := added["items"].(map[string]any)
	assert.Equal(t, false, bullet["additionalProperties"])
	bulletRequired := bullet["required"].([]any)
	assert.ElementsMatch(t, []any{"text", "evidenceNodeIds"}, bulletRequired)
}

func TestToolRequestContractNullableFields(t *testing.T) {
	c, err := ToolRequestContract()
	require.NoError(t, err)

	m := schemaMap(t, c)
	props := m["properties"].(map[string]any)
	around := props["snippetsAroundLine"].(map[string]any)
	item := around["items"].(map[string]any)
	itemProps := item["properties"].(map[string]any)

	// The optional context field is anyOf [int, null]; path stays plain.
	contextProp := itemProps["context"].(map[string]any)
	anyOf, ok := contextProp["anyOf"].([]any)
	require.True(t, ok)
	require.Len(t, anyOf, 2)
	assert.Equal(t, "null", anyOf[1].(map[string]any)["type"])

	pathProp := itemProps["path"].(map[string]any)
	assert.NotContains(t, pathProp, "anyOf")

	// Every declared field is required, nullable ones included.
	itemRequired := item["required"].([]any)
	assert.Contains(t, itemRequired, "context")
	assert.Contains(t, itemRequired, "path")
}

func TestDecodeChangelog(t *testing.T) {
	tests := map[string]struct {
		text      string
		wantField string
	}{
		"valid": {
			text: `{"breakingChanges":[],"added":[{"text":"New flag","evidenceNodeIds":["f001"]}],
				"changed":[],"fixed":[],"removed":[],"internalTooling":[]}`,
		},
		"missing category": {
			text:      `{"breakingChanges":[],"added":[],"changed":[],"fixed":[],"removed":[]}`,
			wantField: "internalTooling",
		},
		"undeclared key": {
			text: `{"breakingChanges":[],"added":[],"changed":[],"fixed":[],"removed":[],
				"internalTooling":[],"extra":[]}`,
			wantField: "extra",
		},
		"category not array": {
			text: `{"breakingChanges":{},"added":[],"changed":[],"fixed":[],"removed":[],
				"internalTooling":[]}`,
			wantField: "breakingChanges",
		},
		"bullet missing text": {
			text: `{"breakingChanges":[],"added":[{"evidenceNodeIds":[]}],"changed":[],
				"fixed":[],"removed":[],"internalTooling":[]}`,
			wantField: "added[0].text",
		},
		"bullet missing evidence ids": {
			text: `{"breakingChanges":[],"added":[{"text":"x"}],"changed":[],
				"fixed":[],"removed":[],"internalTooling":[]}`,
			wantField: "added[0].evidenceNodeIds",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeChangelog(tc.text)
			if tc.wantField == "" {
				require.NoError(t, err)
				require.Len(t, got.Added, 1)
				assert.Equal(t, "New flag", got.Added[0].Text)
				assert.Equal(t, []string{"f001"}, got.Added[0].EvidenceNodeIDs)
				return
			}
			var sv *SchemaViolationError
			require.ErrorAs(t, err, &sv)
			assert.Equal(t, tc.wantField, sv.Field)
		})
	}
}

func TestDecodeChangelogMalformedJSON(t *testing.T) {
	_, err := DecodeChangelog("no json here at all")
	var mo *jsonx.MalformedOutputError
	assert.ErrorAs(t, err, &mo)
}

func TestDecodeReleaseNotes(t *testing.T) {
	got, err := DecodeReleaseNotes(`{"title":"v2","summary":"Big release",
		"highlights":["Faster"],"upgradeNotes":[]}`)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, []string{"Faster"}, got.Highlights)
	assert.Empty(t, got.UpgradeNotes)

	_, err = DecodeReleaseNotes(`{"title":"v2","summary":"x","highlights":[1],"upgradeNotes":[]}`)
	var sv *SchemaViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, "highlights[0]", sv.Field)
}

func TestDecodeVersionBump(t *testing.T) {
	tests := map[string]struct {
		text    string
		want    string
		wantErr bool
	}{
		"minor":        {`{"bump":"minor","rationale":"new features"}`, "minor", false},
		"none":         {`{"bump":"none","rationale":"docs only"}`, "none", false},
		"invalid kind": {`{"bump":"huge","rationale":"x"}`, "", true},
		"missing rationale": {`{"bump":"patch"}`, "", true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeVersionBump(tc.text)
			if tc.wantErr {
				var sv *SchemaViolationError
				assert.ErrorAs(t, err, &sv)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Bump)
		})
	}
}
