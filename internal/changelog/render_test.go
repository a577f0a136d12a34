package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/internal/evidence"
)

func TestNormalizeVersionLabel(t *testing.T) {
	tests := map[string]struct {
		label string
		want  string
	}{
		"blank":            {"", "Unreleased"},
		"whitespace only":  {"   ", "Unreleased"},
		"head ref":         {"HEAD", "Unreleased"},
		"short hash":       {"a1b2c3d", "Unreleased"},
		"full hash":        {"0123456789abcdef0123456789abcdef01234567", "Unreleased"},
		"v-prefixed":       {"v2.0.1", "2.0.1"},
		"v with prerelease": {"v1.0.0-rc.1", "1.0.0-rc.1"},
		"bare semver":      {"2.0.1-beta.1", "2.0.1-beta.1"},
		"branch name":      {"release/next", "release/next"},
		"six hex chars":    {"abc123", "abc123"},
		"uppercase hash":   {"A1B2C3D", "A1B2C3D"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeVersionLabel(tc.label))
		})
	}
}

func TestRenderMarkdownFullDocument(t *testing.T) {
	m := &Model{
		BreakingChanges: []Bullet{{Text: "Renamed the config file key"}},
		Added:           []Bullet{{Text: "New retry flag"}},
		Changed:         []Bullet{{Text: "Faster startup"}},
		Fixed:           []Bullet{{Text: "Crash on empty input"}},
	}
	out, err := RenderMarkdownString(m, RenderOptions{VersionLabel: "v1.2.3", ReleaseDateISO: "2026-01-07"})
	require.NoError(t, err)

	want := "## [1.2.3] - 2026-01-07\n" +
		"\n### Added\n- New retry flag\n" +
		"\n### Changed\n- **BREAKING:** Renamed the config file key\n- Faster startup\n" +
		"\n### Fixed\n- Crash on empty input\n"
	assert.Equal(t, want, out)
}

func TestRenderMarkdownOmitsEmptySections(t *testing.T) {
	m := &Model{Fixed: []Bullet{{Text: "Off-by-one in pagination"}}}
	out, err := RenderMarkdownString(m, RenderOptions{VersionLabel: "HEAD"})
	require.NoError(t, err)

	assert.Equal(t, "## [Unreleased]\n\n### Fixed\n- Off-by-one in pagination\n", out)
	assert.NotContains(t, out, "### Added")
	assert.NotContains(t, out, "### Removed")
}

func TestRenderMarkdownIdempotent(t *testing.T) {
	m := &Model{
		Added:   []Bullet{{Text: "  spaced   out\ttext "}},
		Changed: []Bullet{{Text: "Normal bullet"}},
	}
	first, err := RenderMarkdownString(m, RenderOptions{VersionLabel: "v1.0.0", ReleaseDateISO: "2026-02-01"})
	require.NoError(t, err)
	second, err := RenderMarkdownString(m, RenderOptions{VersionLabel: "v1.0.0", ReleaseDateISO: "2026-02-01"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "- spaced out text\n")
}

func TestRenderMarkdownExcludesInternalEvidence(t *testing.T) {
	// A pipeline refactor with internal-surface evidence and an
	// internalTooling entry must leave no trace in the rendered output.
	ix, err := evidence.NewIndex([]evidence.Node{
		{ID: "f001", FilePath: "src/pipeline/run.ts", ChangeType: evidence.ChangeModify, Surface: evidence.SurfaceInternal},
		{ID: "f002", FilePath: "api/client.ts", ChangeType: evidence.ChangeModify, Surface: evidence.SurfacePublicAPI},
	})
	require.NoError(t, err)

	m := &Model{
		Changed: []Bullet{
			{Text: "Reworked the pipeline runner", EvidenceNodeIDs: []string{"f001"}},
			{Text: "Client retries idempotent requests", EvidenceNodeIDs: []string{"f002"}},
		},
		InternalTooling: []Bullet{{Text: "Bumped CI runner image"}},
		Index:           ix,
	}
	out, err := RenderMarkdownString(m, RenderOptions{VersionLabel: "v1.2.3", ReleaseDateISO: "2026-01-07"})
	require.NoError(t, err)

	assert.Contains(t, out, "## [1.2.3] - 2026-01-07")
	assert.Contains(t, out, "- Client retries idempotent requests")
	assert.NotContains(t, out, "pipeline")
	assert.NotContains(t, out, "src/")
	assert.NotContains(t, out, "CI runner")
}

func TestModelIsEmpty(t *testing.T) {
	empty := &Model{InternalTooling: []Bullet{{Text: "Tooling only"}}}
	assert.True(t, empty.IsEmpty())

	nonEmpty := &Model{Removed: []Bullet{{Text: "Dropped legacy flag"}}}
	assert.False(t, nonEmpty.IsEmpty())
}
