// Package manifest applies a version-bump decision to package manifests.
// Only the version field is touched; unknown manifest kinds are skipped.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// BumpKind is the semantic-version component to increment.
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
	BumpNone  BumpKind = "none"
)

var semverRe = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)`)

// Bump increments the given component of a semantic version, preserving a
// leading v. Prerelease and build suffixes are dropped on bump.
func Bump(version string, kind BumpKind) (string, error) {
	if kind == BumpNone {
		return version, nil
	}
	m := semverRe.FindStringSubmatch(version)
	if m == nil {
		return "", fmt.Errorf("not a semantic version: %q", version)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	switch kind {
	case BumpMajor:
		major, minor, patch = major+1, 0, 0
	case BumpMinor:
		minor, patch = minor+1, 0
	case BumpPatch:
		patch++
	default:
		return "", fmt.Errorf("unknown bump kind %q", kind)
	}
	prefix := ""
	if strings.HasPrefix(version, "v") {
		prefix = "v"
	}
	return fmt.Sprintf("%s%d.%d.%d", prefix, major, minor, patch), nil
}

// manifestNames lists the manifest basenames Apply understands.
var manifestNames = []string{"package.json", "Chart.yaml", "pubspec.yaml", "Cargo.toml"}

// Detect returns the manifests present at the repository root.
func Detect(root string) []string {
	var out []string
	for _, name := range manifestNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			out = append(out, path)
		}
	}
	return out
}

// Apply writes newVersion into the manifest at path, dispatching on its
// basename.
func Apply(path, newVersion string) error {
	switch filepath.Base(path) {
	case "package.json":
		return applyJSON(path, newVersion)
	case "Chart.yaml", "pubspec.yaml":
		return applyYAML(path, newVersion)
	case "Cargo.toml":
		return applyTOMLVersionLine(path, newVersion)
	}
	return fmt.Errorf("unsupported manifest %s", path)
}

func applyJSON(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	m["version"] = strings.TrimPrefix(newVersion, "v")
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

func applyYAML(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("%s: empty document", path)
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "version" {
			root.Content[i+1].Value = strings.TrimPrefix(newVersion, "v")
			root.Content[i+1].Tag = "!!str"
			out, err := yaml.Marshal(&doc)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", path, err)
			}
			return os.WriteFile(path, out, 0o644)
		}
	}
	return fmt.Errorf("%s: no version field", path)
}

// applyTOMLVersionLine rewrites the first top-level version line. A full
// TOML round-trip would reorder the file, so the edit is textual.
func applyTOMLVersionLine(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	lines := strings.Split(string(data), "\n")
	versionLine := regexp.MustCompile(`^version\s*=`)
	for i, line := range lines {
		if versionLine.MatchString(line) {
			lines[i] = fmt.Sprintf("version = %q", strings.TrimPrefix(newVersion, "v"))
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
	}
	return fmt.Errorf("%s: no version field", path)
}
