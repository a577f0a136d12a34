// Package config provides layered configuration for relforge using koanf.
// Values are loaded with priority: environment variables > project config
// (.relforge/config.yml) > user config (~/.config/relforge/config.yml) >
// defaults. The result is a single explicit struct constructed once at
// process start and passed down by reference; nothing reads the
// environment after loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration is the complete relforge runtime configuration.
type Configuration struct {
	// Model names the model requested from the endpoint.
	Model string `koanf:"model"`
	// BaseURL is the endpoint root, e.g. https://api.openai.com/v1.
	BaseURL string `koanf:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `koanf:"api_key_env"`

	// MaxTokens caps model output length. Zero leaves the endpoint default.
	MaxTokens int `koanf:"max_tokens"`
	// ReasoningEffort requests a reasoning level from the endpoint.
	ReasoningEffort ReasoningEffort `koanf:"reasoning_effort"`
	// UseResponsesAPI selects the responses-style API over chat completions.
	UseResponsesAPI bool `koanf:"use_responses_api"`

	// EvidenceBudgetBytes is the per-run byte allowance for diff disclosure.
	EvidenceBudgetBytes int `koanf:"evidence_budget_bytes"`
	// MaxRounds bounds the evidence-retrieval protocol.
	MaxRounds int `koanf:"max_rounds"`
	// MaxRetries bounds transient-failure retries per model call.
	MaxRetries int `koanf:"max_retries"`
	// TimeoutSeconds bounds each model call. Zero means no timeout.
	TimeoutSeconds int `koanf:"timeout"`
}

// GetDefaults returns the default configuration values as koanf keys.
func GetDefaults() map[string]any {
	return map[string]any{
		"model":                 "gpt-4.1-mini",
		"base_url":              "https://api.openai.com/v1",
		"api_key_env":           "OPENAI_API_KEY",
		"max_tokens":            0,
		"reasoning_effort":      string(EffortNone),
		"use_responses_api":     false,
		"evidence_budget_bytes": 96 * 1024,
		"max_rounds":            8,
		"max_retries":           3,
		"timeout":               120,
	}
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path
	// (default: .relforge/config.yml).
	ProjectConfigPath string
}

// Load loads configuration from defaults, user and project files, and
// RELFORGE_* environment variables, in ascending priority.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if userPath, err := UserConfigPath(); err == nil && fileExists(userPath) {
		if err := loadFileConfig(k, userPath, "user"); err != nil {
			return nil, err
		}
	}

	projectPath := opts.ProjectConfigPath
	if projectPath == "" {
		projectPath = ProjectConfigPath()
	}
	if fileExists(projectPath) {
		if err := loadFileConfig(k, projectPath, "project"); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("RELFORGE_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UserConfigPath returns the XDG-compliant user config path.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "relforge", "config.yml"), nil
}

// ProjectConfigPath returns the project-relative config path.
func ProjectConfigPath() string {
	return filepath.Join(".relforge", "config.yml")
}

func loadFileConfig(k *koanf.Koanf, path, kind string) error {
	var parser koanf.Parser = yaml.Parser()
	if strings.HasSuffix(path, ".json") {
		parser = json.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("loading %s config %s: %w", kind, path, err)
	}
	return nil
}

// envTransform maps RELFORGE_MAX_TOKENS to max_tokens and so on.
func envTransform(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, "RELFORGE_"))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
