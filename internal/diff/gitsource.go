package diff

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/relforge/relforge/internal/evidence"
)

// contextLines is the number of unchanged lines carried on each side of a
// hunk, and twice this value is the gap merging threshold.
const contextLines = 3

// Extract diffs base..head in the repository at repoPath and returns the
// evidence index plus the hunk store backing it. Both revisions accept
// anything plumbing.Revision understands (branch, tag, hash, HEAD~n).
func Extract(ctx context.Context, repoPath, baseRev, headRev string) (*evidence.Index, *Store, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil, fmt.Errorf("opening repository at %s: %w", repoPath, err)
	}

	baseTree, err := treeAt(repo, baseRev)
	if err != nil {
		return nil, nil, err
	}
	headTree, err := treeAt(repo, headRev)
	if err != nil {
		return nil, nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, baseTree, headTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("diffing %s..%s: %w", baseRev, headRev, err)
	}

	type fileChange struct {
		path    string
		oldPath string
		kind    evidence.ChangeType
		binary  bool
		chunks  []diff.Chunk
	}

	var files []fileChange
	for _, change := range changes {
		patch, err := change.PatchContext(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("building patch for %s: %w", change.To.Name, err)
		}
		for _, fp := range patch.FilePatches() {
			from, to := fp.Files()
			fc := fileChange{binary: fp.IsBinary()}
			switch {
			case from == nil && to != nil:
				fc.path = to.Path()
				fc.kind = evidence.ChangeAdd
			case from != nil && to == nil:
				fc.path = from.Path()
				fc.kind = evidence.ChangeDelete
			case from.Path() != to.Path():
				fc.path = to.Path()
				fc.oldPath = from.Path()
				fc.kind = evidence.ChangeRename
			default:
				fc.path = to.Path()
				fc.kind = evidence.ChangeModify
			}
			if !fc.binary {
				fc.chunks = fp.Chunks()
			}
			files = append(files, fc)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })

	var nodes []evidence.Node
	var hunks []Hunk
	for i, fc := range files {
		nodeID := fmt.Sprintf("f%03d", i+1)
		fileHunks := hunksFromChunks(nodeID, fc.chunks)
		ids := make([]string, len(fileHunks))
		for j, h := range fileHunks {
			ids[j] = h.ID
		}
		nodes = append(nodes, evidence.Node{
			ID:         nodeID,
			FilePath:   fc.path,
			OldPath:    fc.oldPath,
			ChangeType: fc.kind,
			Surface:    ClassifySurface(fc.path),
			IsBinary:   fc.binary,
			HunkIDs:    ids,
		})
		hunks = append(hunks, fileHunks...)
	}

	index, err := evidence.NewIndex(nodes)
	if err != nil {
		return nil, nil, err
	}
	return index, NewStore(hunks), nil
}

func treeAt(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree of %s: %w", hash, err)
	}
	return tree, nil
}

// diffLine is one line of a file patch with its operation marker.
type diffLine struct {
	op   byte // ' ', '+' or '-'
	text string
}

// hunksFromChunks renders go-git chunk runs into unified-diff style hunks:
// contiguous changed regions with up to contextLines unchanged lines on
// each side, merged when separated by at most 2*contextLines lines.
func hunksFromChunks(nodeID string, chunks []diff.Chunk) []Hunk {
	var lines []diffLine
	for _, c := range chunks {
		op := byte(' ')
		switch c.Type() {
		case diff.Add:
			op = '+'
		case diff.Delete:
			op = '-'
		}
		for _, text := range splitLines(c.Content()) {
			lines = append(lines, diffLine{op: op, text: text})
		}
	}

	type span struct{ start, end int }
	var spans []span
	for i := 0; i < len(lines); i++ {
		if lines[i].op == ' ' {
			continue
		}
		if n := len(spans); n > 0 && i-spans[n-1].end <= 2*contextLines {
			spans[n-1].end = i + 1
		} else {
			spans = append(spans, span{start: i, end: i + 1})
		}
	}

	var out []Hunk
	for i, sp := range spans {
		start := sp.start - contextLines
		if start < 0 {
			start = 0
		}
		end := sp.end + contextLines
		if end > len(lines) {
			end = len(lines)
		}
		var b strings.Builder
		for _, l := range lines[start:end] {
			b.WriteByte(l.op)
			b.WriteString(l.text)
			b.WriteByte('\n')
		}
		out = append(out, Hunk{
			ID:   fmt.Sprintf("%s.h%d", nodeID, i+1),
			Body: b.String(),
		})
	}
	return out
}

func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
