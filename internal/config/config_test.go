package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolateHome keeps a developer's real user config out of the test run.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)
	cfg, err := LoadWithOptions(LoadOptions{
		ProjectConfigPath: filepath.Join(t.TempDir(), "missing.yml"),
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.APIKeyEnv)
	assert.Equal(t, 96*1024, cfg.EvidenceBudgetBytes)
	assert.Equal(t, 8, cfg.MaxRounds)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 120, cfg.TimeoutSeconds)
	assert.Equal(t, EffortNone, cfg.ReasoningEffort)
	assert.False(t, cfg.UseResponsesAPI)
}

func TestLoadProjectFileOverridesDefaults(t *testing.T) {
	isolateHome(t)
	path := writeProjectConfig(t, "model: gpt-4.1\nmax_rounds: 4\nreasoning_effort: high\n")

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1", cfg.Model)
	assert.Equal(t, 4, cfg.MaxRounds)
	assert.Equal(t, EffortHigh, cfg.ReasoningEffort)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateHome(t)
	path := writeProjectConfig(t, "model: from-file\nmax_retries: 9\n")
	t.Setenv("RELFORGE_MODEL", "from-env")
	t.Setenv("RELFORGE_EVIDENCE_BUDGET_BYTES", "4096")

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Model)
	assert.Equal(t, 4096, cfg.EvidenceBudgetBytes)
	assert.Equal(t, 9, cfg.MaxRetries)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolateHome(t)
	tests := map[string]struct {
		content string
		wantErr string
	}{
		"bad effort":       {"reasoning_effort: extreme\n", "invalid reasoning effort"},
		"zero rounds":      {"max_rounds: 0\n", "max_rounds"},
		"negative budget":  {"evidence_budget_bytes: -1\n", "evidence_budget_bytes"},
		"negative retries": {"max_retries: -2\n", "max_retries"},
		"empty model":      {"model: \"\"\n", "model"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeProjectConfig(t, tc.content)
			_, err := LoadWithOptions(LoadOptions{ProjectConfigPath: path})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseReasoningEffort(t *testing.T) {
	tests := map[string]struct {
		raw     string
		want    ReasoningEffort
		wantErr bool
	}{
		"empty means none": {"", EffortNone, false},
		"lowercase":        {"medium", EffortMedium, false},
		"mixed case":       {" High ", EffortHigh, false},
		"xhigh":            {"xhigh", EffortXHigh, false},
		"unknown":          {"turbo", "", true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseReasoningEffort(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
