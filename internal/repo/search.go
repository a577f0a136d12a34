package repo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// searchWorkers bounds the parallel file scans of a repository search.
const searchWorkers = 8

type searchMatch struct {
	path string
	line int
	text string
}

// SearchRepo scans the repository for a query substring. Files are scanned
// in parallel; results are returned sorted by path and line so output is
// deterministic regardless of scan order.
func (r *Reader) SearchRepo(ctx context.Context, query string, maxResults, maxFiles int, extensions []string) (string, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	paths, err := r.walkPaths(maxFiles, extensions)
	if err != nil {
		return "", err
	}

	var (
		mu      sync.Mutex
		matches []searchMatch
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(searchWorkers)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			found := r.scanFile(p, query, maxResults)
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			matches = append(matches, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("searching repository: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].path != matches[j].path {
			return matches[i].path < matches[j].path
		}
		return matches[i].line < matches[j].line
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	if len(matches) == 0 {
		return fmt.Sprintf("no matches for %q\n", query), nil
	}

	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%s:%d: %s\n", m.path, m.line, m.text)
	}
	return b.String(), nil
}

// scanFile collects up to limit matches from one file. Unreadable or binary
// files are skipped silently.
func (r *Reader) scanFile(rel, query string, limit int) []searchMatch {
	abs, err := r.resolve(rel)
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(abs)
	if err != nil || strings.IndexByte(string(data), 0) >= 0 {
		return nil
	}
	var out []searchMatch
	for i, l := range strings.Split(string(data), "\n") {
		if !strings.Contains(l, query) {
			continue
		}
		if len(l) > maxLineLength {
			l = l[:maxLineLength] + "..."
		}
		out = append(out, searchMatch{path: rel, line: i + 1, text: l})
		if len(out) >= limit {
			break
		}
	}
	return out
}
