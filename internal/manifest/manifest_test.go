package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBump(t *testing.T) {
	tests := map[string]struct {
		version string
		kind    BumpKind
		want    string
		wantErr bool
	}{
		"patch":              {"1.2.3", BumpPatch, "1.2.4", false},
		"minor resets patch": {"1.2.3", BumpMinor, "1.3.0", false},
		"major resets all":   {"1.2.3", BumpMajor, "2.0.0", false},
		"none is identity":   {"1.2.3", BumpNone, "1.2.3", false},
		"keeps v prefix":     {"v0.9.1", BumpMinor, "v0.10.0", false},
		"drops prerelease":   {"1.2.3-rc.1", BumpPatch, "1.2.4", false},
		"not semver":         {"latest", BumpPatch, "", true},
		"empty":              {"", BumpMajor, "", true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Bump(tc.version, tc.kind)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func writeManifest(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetect(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "package.json", `{"version":"1.0.0"}`)
	writeManifest(t, root, "Cargo.toml", "[package]\nversion = \"1.0.0\"\n")
	require.NoError(t, os.Mkdir(filepath.Join(root, "Chart.yaml"), 0o755)) // dir, not manifest

	found := Detect(root)
	require.Len(t, found, 2)
	assert.Equal(t, "package.json", filepath.Base(found[0]))
	assert.Equal(t, "Cargo.toml", filepath.Base(found[1]))
}

func TestApplyJSON(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "package.json",
		`{"name":"demo","version":"1.0.0","private":true}`)

	require.NoError(t, Apply(path, "v1.1.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.1.0"`)
	assert.Contains(t, string(data), `"name": "demo"`)
}

func TestApplyYAML(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "Chart.yaml",
		"apiVersion: v2\nname: demo\nversion: 1.0.0\nappVersion: 1.0.0\n")

	require.NoError(t, Apply(path, "2.0.0"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "2.0.0", m["version"])
	// Only the top-level version key changes.
	assert.Equal(t, "1.0.0", m["appVersion"])
	assert.Equal(t, "demo", m["name"])
}

func TestApplyTOMLPreservesLayout(t *testing.T) {
	root := t.TempDir()
	content := "[package]\nname = \"demo\"\nversion = \"1.0.0\"\nedition = \"2021\"\n"
	path := writeManifest(t, root, "Cargo.toml", content)

	require.NoError(t, Apply(path, "1.0.1"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[package]\nname = \"demo\"\nversion = \"1.0.1\"\nedition = \"2021\"\n",
		string(data))
}

func TestApplyMissingVersionField(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, "pubspec.yaml", "name: demo\n")
	err := Apply(path, "1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no version field")
}

func TestApplyUnsupportedManifest(t *testing.T) {
	err := Apply(filepath.Join(t.TempDir(), "setup.py"), "1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported manifest")
}
