package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T) *Reader {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":          "package main\n\nfunc main() {\n\trun()\n}\n",
		"lib/run.go":       "package lib\n\n// run drives everything\nfunc run() {}\n",
		"lib/util.go":      "package lib\n\nfunc helper() {}\n",
		"docs/guide.md":    "# Guide\n\nSee run() for details.\n",
		".git/config":      "[core]\n",
		"assets/blob.bin":  "binary\x00content",
	}
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return NewReader(root)
}

func TestResolveRejectsEscapes(t *testing.T) {
	r := testTree(t)
	tests := map[string]string{
		"absolute path":   "/etc/passwd",
		"parent escape":   "../outside.txt",
		"nested escape":   "lib/../../outside.txt",
		"bare dot dot":    "..",
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := r.Snippet(path, 1, 10)
			assert.Error(t, err)
		})
	}
}

func TestSnippetClampsRange(t *testing.T) {
	r := testTree(t)

	got, err := r.Snippet("main.go", -5, 100)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "main.go:1: package main\n"))
	assert.Contains(t, got, "main.go:5: }")

	got, err = r.Snippet("main.go", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "main.go:3: func main() {\n", got)
}

func TestSnippetCapsLength(t *testing.T) {
	root := t.TempDir()
	var b strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), []byte(b.String()), 0o644))

	got, err := NewReader(root).Snippet("big.txt", 1, 500)
	require.NoError(t, err)
	assert.Equal(t, maxSnippetLines, strings.Count(got, "\n"))
}

func TestLongLinesTruncated(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("x", 1000)
	require.NoError(t, os.WriteFile(filepath.Join(root, "wide.txt"), []byte(long+"\n"), 0o644))

	got, err := NewReader(root).Snippet("wide.txt", 1, 1)
	require.NoError(t, err)
	assert.Contains(t, got, "...")
	assert.Less(t, len(got), 400)
}

func TestAroundDefaultsContext(t *testing.T) {
	r := testTree(t)
	got, err := r.Around("lib/run.go", 3, 0)
	require.NoError(t, err)
	assert.Contains(t, got, "lib/run.go:1:")
	assert.Contains(t, got, "lib/run.go:3: // run drives everything")
}

func TestSearchFile(t *testing.T) {
	r := testTree(t)

	got, err := r.SearchFile("lib/run.go", "run", 0)
	require.NoError(t, err)
	assert.Contains(t, got, "lib/run.go:3:")
	assert.Contains(t, got, "lib/run.go:4:")

	got, err = r.SearchFile("lib/run.go", "absent-token", 0)
	require.NoError(t, err)
	assert.Contains(t, got, "no matches")
}

func TestSearchRepo(t *testing.T) {
	r := testTree(t)

	got, err := r.SearchRepo(context.Background(), "run", 0, 0, nil)
	require.NoError(t, err)
	// Deterministic path order, .git and binary files excluded.
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, sortedByPathLine(lines))
	assert.NotContains(t, got, ".git/")
	assert.NotContains(t, got, "blob.bin")
}

func TestSearchRepoExtensionFilter(t *testing.T) {
	r := testTree(t)

	got, err := r.SearchRepo(context.Background(), "run", 0, 0, []string{"md"})
	require.NoError(t, err)
	assert.Contains(t, got, "docs/guide.md")
	assert.NotContains(t, got, ".go:")
}

func TestSearchRepoMaxResults(t *testing.T) {
	r := testTree(t)
	got, err := r.SearchRepo(context.Background(), "run", 2, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(got, "\n"))
}

func TestSearchPaths(t *testing.T) {
	r := testTree(t)
	got, err := r.SearchPaths("lib/", 0)
	require.NoError(t, err)
	assert.Contains(t, got, "lib/run.go")
	assert.Contains(t, got, "lib/util.go")
	assert.NotContains(t, got, "main.go")
}

func TestList(t *testing.T) {
	r := testTree(t)

	got, err := r.List("", 0)
	require.NoError(t, err)
	assert.Contains(t, got, "lib/")
	assert.Contains(t, got, "main.go")
	assert.NotContains(t, got, ".git")

	got, err = r.List("lib", 1)
	require.NoError(t, err)
	assert.Equal(t, "run.go\n", got)
}

func TestStat(t *testing.T) {
	r := testTree(t)

	got, err := r.Stat("main.go")
	require.NoError(t, err)
	assert.Contains(t, got, "main.go: file,")

	got, err = r.Stat("lib")
	require.NoError(t, err)
	assert.Contains(t, got, "directory")

	_, err = r.Stat("missing.go")
	assert.Error(t, err)
}

func sortedByPathLine(lines []string) bool {
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] && pathOf(lines[i-1]) != pathOf(lines[i]) {
			return false
		}
	}
	return true
}

func pathOf(line string) string {
	return strings.SplitN(line, ":", 2)[0]
}
