package diff

import (
	"path"
	"strings"

	"github.com/relforge/relforge/internal/evidence"
)

var (
	testDirs  = map[string]bool{"test": true, "tests": true, "__tests__": true, "testdata": true, "spec": true}
	infraDirs = map[string]bool{".github": true, ".gitlab": true, ".circleci": true, "ci": true, ".ci": true, "scripts": true}
	infraFiles = map[string]bool{
		"Dockerfile": true, "Makefile": true, "Jenkinsfile": true,
		".gitlab-ci.yml": true, ".travis.yml": true, "azure-pipelines.yml": true,
	}
	internalDirs = map[string]bool{"src": true, "internal": true, "private": true}
	configExts   = map[string]bool{".toml": true, ".ini": true, ".cfg": true, ".conf": true, ".yaml": true, ".yml": true}
)

// ClassifySurface assigns a visibility surface to a changed file based on
// its path. Rules are checked in order: tests, infra, config, internal;
// everything else defaults to public-api.
func ClassifySurface(filePath string) evidence.Surface {
	base := path.Base(filePath)
	segments := strings.Split(filePath, "/")
	dirs := segments[:len(segments)-1]

	if isTestFile(base) || anyDir(dirs, testDirs) {
		return evidence.SurfaceTests
	}
	if infraFiles[base] || anyDir(dirs, infraDirs) {
		return evidence.SurfaceInfra
	}
	if isConfigFile(base) {
		return evidence.SurfaceConfig
	}
	if len(dirs) > 0 && internalDirs[dirs[0]] {
		return evidence.SurfaceInternal
	}
	return evidence.SurfacePublicAPI
}

func isTestFile(base string) bool {
	return strings.Contains(base, "_test.") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.")
}

func isConfigFile(base string) bool {
	if base == "package.json" || base == "tsconfig.json" || base == "Cargo.toml" ||
		base == "pyproject.toml" || base == "go.mod" {
		return true
	}
	if strings.HasPrefix(base, ".") && !strings.HasPrefix(base, ".git") {
		return true
	}
	if strings.Contains(base, ".config.") {
		return true
	}
	return configExts[path.Ext(base)]
}

func anyDir(dirs []string, set map[string]bool) bool {
	for _, d := range dirs {
		if set[d] {
			return true
		}
	}
	return false
}
