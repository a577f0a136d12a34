// Package repo serves coerced model requests for repository context:
// snippets, searches, listings and metadata. Every operation is bounded by
// caller-side caps, so no request can pull unbounded content into the
// conversation.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Caller-side defaults applied when a coerced request left a cap unset.
const (
	DefaultContext    = 5
	DefaultMaxResults = 20
	DefaultMaxFiles   = 2000
	DefaultMaxEntries = 100

	maxSnippetLines = 200
	maxLineLength   = 300
)

// Reader reads a repository working tree rooted at a fixed directory.
type Reader struct {
	root string
}

// NewReader creates a Reader over the given repository root.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// resolve turns a model-supplied relative path into an absolute one,
// rejecting absolute paths and anything escaping the root.
func (r *Reader) resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute path %q not allowed", rel)
	}
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes repository root", rel)
	}
	return filepath.Join(r.root, clean), nil
}

// readLines loads a file as lines, truncating each to maxLineLength.
func (r *Reader) readLines(rel string) ([]string, error) {
	abs, err := r.resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	for i, l := range lines {
		if len(l) > maxLineLength {
			lines[i] = l[:maxLineLength] + "..."
		}
	}
	return lines, nil
}

// Snippet returns the requested line range, clamped to the file and to
// maxSnippetLines, formatted with line numbers.
func (r *Reader) Snippet(path string, startLine, endLine int) (string, error) {
	lines, err := r.readLines(path)
	if err != nil {
		return "", err
	}
	start, end := clampRange(startLine, endLine, len(lines))
	if end-start+1 > maxSnippetLines {
		end = start + maxSnippetLines - 1
	}
	return formatLines(path, lines, start, end), nil
}

// Around returns context lines surrounding a single line.
func (r *Reader) Around(path string, line, context int) (string, error) {
	if context <= 0 {
		context = DefaultContext
	}
	return r.Snippet(path, line-context, line+context)
}

// SearchFile returns matching lines of one file, capped at maxResults.
func (r *Reader) SearchFile(path, query string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	lines, err := r.readLines(path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	found := 0
	for i, l := range lines {
		if strings.Contains(l, query) {
			fmt.Fprintf(&b, "%s:%d: %s\n", path, i+1, l)
			found++
			if found >= maxResults {
				break
			}
		}
	}
	if found == 0 {
		return fmt.Sprintf("no matches for %q in %s\n", query, path), nil
	}
	return b.String(), nil
}

// SearchPaths returns repository paths containing the query substring.
func (r *Reader) SearchPaths(query string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	paths, err := r.walkPaths(DefaultMaxFiles, nil)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	found := 0
	for _, p := range paths {
		if strings.Contains(p, query) {
			b.WriteString(p)
			b.WriteByte('\n')
			found++
			if found >= maxResults {
				break
			}
		}
	}
	if found == 0 {
		return fmt.Sprintf("no paths matching %q\n", query), nil
	}
	return b.String(), nil
}

// List returns a directory listing, capped at maxEntries, directories
// suffixed with a slash.
func (r *Reader) List(dir string, maxEntries int) (string, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	rel := dir
	if rel == "" {
		rel = "."
	}
	abs, err := r.resolve(rel)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", rel, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == ".git" {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxEntries {
		names = names[:maxEntries]
	}
	return strings.Join(names, "\n") + "\n", nil
}

// Stat returns size and kind metadata for one file.
func (r *Reader) Stat(path string) (string, error) {
	abs, err := r.resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	return fmt.Sprintf("%s: %s, %d bytes\n", path, kind, info.Size()), nil
}

// walkPaths collects relative file paths under the root, skipping .git,
// capped at maxFiles, optionally filtered by extension.
func (r *Reader) walkPaths(maxFiles int, extensions []string) ([]string, error) {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet["."+strings.TrimPrefix(strings.TrimSpace(e), ".")] = true
	}

	var paths []string
	err := filepath.WalkDir(r.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if len(paths) >= maxFiles {
			return filepath.SkipAll
		}
		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return err
		}
		if len(extSet) > 0 && !extSet[filepath.Ext(rel)] {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking repository: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func clampRange(start, end, n int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}

func formatLines(path string, lines []string, start, end int) string {
	var b strings.Builder
	for i := start; i <= end && i <= len(lines); i++ {
		fmt.Fprintf(&b, "%s:%d: %s\n", path, i, lines[i-1])
	}
	return b.String()
}
