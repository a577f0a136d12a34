// Package toolreq is the trust boundary between model-issued tool calls and
// the rest of the system. Each coercion function is total: malformed
// top-level input yields an empty slice, and each element is validated
// independently and dropped, never failing the whole batch. Nothing past
// this layer observes model-controlled structure of unbounded shape.
package toolreq

import (
	"math"
	"strconv"
	"strings"
)

// SnippetRequest asks for an exact line range of one file. Start and end
// lines are structurally required; an element without them is dropped.
type SnippetRequest struct {
	Path      string
	StartLine int
	EndLine   int
}

// AroundRequest asks for lines surrounding a single line of one file.
// Context <= 0 means the caller-side default applies.
type AroundRequest struct {
	Path    string
	Line    int
	Context int
}

// FileSearchRequest asks for matches of a query within one file.
type FileSearchRequest struct {
	Path       string
	Query      string
	MaxResults int
}

// RepoSearchRequest asks for matches of a query across the repository.
// Extensions, when present, restricts the scan to files with one of the
// given extensions.
type RepoSearchRequest struct {
	Query      string
	MaxResults int
	MaxFiles   int
	Extensions []string
}

// PathSearchRequest asks for repository paths containing a substring.
type PathSearchRequest struct {
	Query      string
	MaxResults int
}

// ListRequest asks for a directory listing. Dir may be empty (repo root).
type ListRequest struct {
	Dir        string
	MaxEntries int
}

// StatRequest asks for metadata about a single file.
type StatRequest struct {
	Path string
}

// Bundle is one round's worth of coerced requests plus the completion flag.
type Bundle struct {
	HunkIDs      []string
	Snippets     []SnippetRequest
	Around       []AroundRequest
	FileSearches []FileSearchRequest
	RepoSearches []RepoSearchRequest
	PathSearches []PathSearchRequest
	Listings     []ListRequest
	Stats        []StatRequest
	Done         bool
}

// Empty reports whether the bundle carries no requests at all.
func (b Bundle) Empty() bool {
	return len(b.HunkIDs) == 0 && len(b.Snippets) == 0 && len(b.Around) == 0 &&
		len(b.FileSearches) == 0 && len(b.RepoSearches) == 0 &&
		len(b.PathSearches) == 0 && len(b.Listings) == 0 && len(b.Stats) == 0
}

// CoerceBundle converts the loosely-typed decoded tool call into a Bundle.
// The input is expected to be a map decoded from JSON; anything else yields
// an empty, not-done bundle.
func CoerceBundle(v any) Bundle {
	m, ok := v.(map[string]any)
	if !ok {
		return Bundle{}
	}
	return Bundle{
		HunkIDs:      CoerceHunkIDs(m["hunkIds"]),
		Snippets:     CoerceSnippets(m["fileSnippets"]),
		Around:       CoerceAround(m["snippetsAroundLine"]),
		FileSearches: CoerceFileSearches(m["fileSearches"]),
		RepoSearches: CoerceRepoSearches(m["repoSearches"]),
		PathSearches: CoercePathSearches(m["pathSearches"]),
		Listings:     CoerceListings(m["listFiles"]),
		Stats:        CoerceStats(m["fileStats"]),
		Done:         coerceBool(m["done"]),
	}
}

// CoerceHunkIDs extracts non-empty string hunk ids, preserving order.
func CoerceHunkIDs(v any) []string {
	var out []string
	for _, el := range asSlice(v) {
		if id, ok := coerceString(el); ok {
			out = append(out, id)
		}
	}
	return out
}

// CoerceSnippets extracts file-snippet range requests. Elements missing a
// path or either line bound are dropped.
func CoerceSnippets(v any) []SnippetRequest {
	var out []SnippetRequest
	for _, el := range asSlice(v) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		path, ok := coerceString(m["path"])
		if !ok {
			continue
		}
		start, ok := coerceInt(m["startLine"])
		if !ok {
			continue
		}
		end, ok := coerceInt(m["endLine"])
		if !ok {
			continue
		}
		out = append(out, SnippetRequest{Path: path, StartLine: start, EndLine: end})
	}
	return out
}

// CoerceAround extracts snippet-around-line requests. The line number is
// structurally required; context falls back to the caller-side default.
func CoerceAround(v any) []AroundRequest {
	var out []AroundRequest
	for _, el := range asSlice(v) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		path, ok := coerceString(m["path"])
		if !ok {
			continue
		}
		line, ok := coerceInt(m["line"])
		if !ok {
			continue
		}
		req := AroundRequest{Path: path, Line: line}
		if ctx, ok := coerceInt(m["context"]); ok {
			req.Context = ctx
		}
		out = append(out, req)
	}
	return out
}

// CoerceFileSearches extracts in-file search requests.
func CoerceFileSearches(v any) []FileSearchRequest {
	var out []FileSearchRequest
	for _, el := range asSlice(v) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		path, ok := coerceString(m["path"])
		if !ok {
			continue
		}
		query, ok := coerceString(m["query"])
		if !ok {
			continue
		}
		req := FileSearchRequest{Path: path, Query: query}
		if n, ok := coerceInt(m["maxResults"]); ok {
			req.MaxResults = n
		}
		out = append(out, req)
	}
	return out
}

// CoerceRepoSearches extracts repository-wide text search requests. The
// extension filter keeps only string elements.
func CoerceRepoSearches(v any) []RepoSearchRequest {
	var out []RepoSearchRequest
	for _, el := range asSlice(v) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		query, ok := coerceString(m["query"])
		if !ok {
			continue
		}
		req := RepoSearchRequest{Query: query}
		if n, ok := coerceInt(m["maxResults"]); ok {
			req.MaxResults = n
		}
		if n, ok := coerceInt(m["maxFiles"]); ok {
			req.MaxFiles = n
		}
		for _, ext := range asSlice(m["extensions"]) {
			if s, ok := coerceString(ext); ok {
				req.Extensions = append(req.Extensions, s)
			}
		}
		out = append(out, req)
	}
	return out
}

// CoercePathSearches extracts path-substring search requests.
func CoercePathSearches(v any) []PathSearchRequest {
	var out []PathSearchRequest
	for _, el := range asSlice(v) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		query, ok := coerceString(m["query"])
		if !ok {
			continue
		}
		req := PathSearchRequest{Query: query}
		if n, ok := coerceInt(m["maxResults"]); ok {
			req.MaxResults = n
		}
		out = append(out, req)
	}
	return out
}

// CoerceListings extracts directory-listing requests. The directory is
// optional; an element that is a map with no usable fields still lists the
// repository root.
func CoerceListings(v any) []ListRequest {
	var out []ListRequest
	for _, el := range asSlice(v) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		var req ListRequest
		if dir, ok := coerceString(m["dir"]); ok {
			req.Dir = dir
		}
		if n, ok := coerceInt(m["maxEntries"]); ok {
			req.MaxEntries = n
		}
		out = append(out, req)
	}
	return out
}

// CoerceStats extracts file-metadata requests.
func CoerceStats(v any) []StatRequest {
	var out []StatRequest
	for _, el := range asSlice(v) {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if path, ok := coerceString(m["path"]); ok {
			out = append(out, StatRequest{Path: path})
		}
	}
	return out
}

// asSlice returns the input as a slice, or nil when it is not one.
func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// coerceString trims the input and accepts it only when it is a non-empty
// string.
func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// coerceInt parses the input as a number and truncates it to an integer.
// Non-finite results are treated as absent.
func coerceInt(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func coerceBool(v any) bool {
	b, _ := v.(bool)
	return b
}
