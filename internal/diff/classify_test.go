package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relforge/relforge/internal/evidence"
)

func TestClassifySurface(t *testing.T) {
	tests := map[string]struct {
		path string
		want evidence.Surface
	}{
		"go test file":          {"pkg/store_test.go", evidence.SurfaceTests},
		"js spec file":          {"lib/parser.spec.ts", evidence.SurfaceTests},
		"tests directory":       {"tests/fixtures/input.json", evidence.SurfaceTests},
		"dunder tests":          {"__tests__/app.js", evidence.SurfaceTests},
		"github workflow":       {".github/workflows/ci.yml", evidence.SurfaceInfra},
		"dockerfile":            {"Dockerfile", evidence.SurfaceInfra},
		"makefile in subdir":    {"tools/Makefile", evidence.SurfaceInfra},
		"scripts dir":           {"scripts/release.sh", evidence.SurfaceInfra},
		"package manifest":      {"package.json", evidence.SurfaceConfig},
		"cargo manifest":        {"Cargo.toml", evidence.SurfaceConfig},
		"go module file":        {"go.mod", evidence.SurfaceConfig},
		"dotfile":               {".eslintrc", evidence.SurfaceConfig},
		"tool config":           {"vite.config.ts", evidence.SurfaceConfig},
		"yaml file":             {"deploy/values.yaml", evidence.SurfaceConfig},
		"gitignore not config":  {".gitignore", evidence.SurfacePublicAPI},
		"src tree":              {"src/engine/core.ts", evidence.SurfaceInternal},
		"internal tree":         {"internal/cache/lru.go", evidence.SurfaceInternal},
		"src nested yaml wins":  {"src/data/schema.yaml", evidence.SurfaceConfig},
		"root source file":      {"index.js", evidence.SurfacePublicAPI},
		"api directory":         {"api/handlers.go", evidence.SurfacePublicAPI},
		"docs":                  {"docs/guide.md", evidence.SurfacePublicAPI},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySurface(tc.path))
		})
	}
}
