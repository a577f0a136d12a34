package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relforge/relforge/internal/evidence"
)

func TestIsInternalPathAnnouncement(t *testing.T) {
	tests := map[string]struct {
		text string
		want bool
	}{
		"verb plus internal dir":      {"Updated src/pipeline/run.ts", true},
		"verb plus source extension":  {"Modified helper.go for clarity", true},
		"verb plus tests dir":         {"Removed tests/legacy/", true},
		"verb plus ci dir":            {"Added ci/release.sh", true},
		"no announcement verb":        {"The src/ layout changed", false},
		"verb without path signal":    {"Added a retry budget to the client", false},
		"user-facing artifact":        {"Updated package.json dependencies", false},
		"dist output mentioned":       {"Added dist/bundle.js to releases", false},
		"manifest beside source":      {"Updated src/version.ts and package.json", false},
		"readme mention":              {"Updated README.md with examples", false},
		"verb mid-sentence only":      {"Users added src/plugins support", false},
		"quoted internal path":        {`Removed "scripts/deploy.sh"`, true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, isInternalPathAnnouncement(tc.text))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", normalizeText("  a\t b\n c  "))
	assert.Equal(t, "", normalizeText("   "))
}

func TestSanitizeBulletSurfaceGate(t *testing.T) {
	ix, err := evidence.NewIndex([]evidence.Node{
		{ID: "pub", FilePath: "api.go", Surface: evidence.SurfacePublicAPI},
		{ID: "int", FilePath: "internal/x.go", Surface: evidence.SurfaceInternal},
		{ID: "tst", FilePath: "x_test.go", Surface: evidence.SurfaceTests},
	})
	require.NoError(t, err)

	tests := map[string]struct {
		bullet Bullet
		want   string
	}{
		"public surface kept": {
			Bullet{Text: "Faster lookups", EvidenceNodeIDs: []string{"pub"}},
			"Faster lookups",
		},
		"internal surface dropped": {
			Bullet{Text: "Faster lookups", EvidenceNodeIDs: []string{"int"}},
			"",
		},
		"tests surface dropped": {
			Bullet{Text: "More coverage", EvidenceNodeIDs: []string{"tst"}},
			"",
		},
		"first id decides": {
			Bullet{Text: "Mixed evidence", EvidenceNodeIDs: []string{"int", "pub"}},
			"",
		},
		"unresolvable id tolerated": {
			Bullet{Text: "Ghost citation", EvidenceNodeIDs: []string{"gone"}},
			"Ghost citation",
		},
		"no evidence tolerated": {
			Bullet{Text: "Uncited but fine"},
			"Uncited but fine",
		},
		"path announcement dropped despite surface": {
			Bullet{Text: "Updated src/api/handler.ts", EvidenceNodeIDs: []string{"pub"}},
			"",
		},
		"blank text dropped": {
			Bullet{Text: "   ", EvidenceNodeIDs: []string{"pub"}},
			"",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeBullet(tc.bullet, ix))
		})
	}
}

func TestSanitizeBulletNilIndex(t *testing.T) {
	got := sanitizeBullet(Bullet{Text: "Works without an index", EvidenceNodeIDs: []string{"any"}}, nil)
	assert.Equal(t, "Works without an index", got)
}
