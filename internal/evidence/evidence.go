// Package evidence defines the evidence index built from a diff: one node
// per file-level change, keyed by a stable identifier, plus the shared byte
// budget that bounds how much diff content a single run may disclose.
package evidence

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// ChangeType classifies how a file changed between the base and ref.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
	ChangeRename ChangeType = "rename"
)

// Surface classifies the visibility of a change. It gates what may appear
// in consumer-facing output and what path information reaches a prompt.
type Surface string

const (
	SurfacePublicAPI Surface = "public-api"
	SurfaceConfig    Surface = "config"
	SurfaceInternal  Surface = "internal"
	SurfaceTests     Surface = "tests"
	SurfaceInfra     Surface = "infra"
)

// IsDisclosable reports whether a change with this surface may be shown to
// consumers of the rendered changelog.
func (s Surface) IsDisclosable() bool {
	switch s {
	case SurfaceInternal, SurfaceTests, SurfaceInfra:
		return false
	}
	return true
}

// Node is a single file-level change record. Nodes are immutable once the
// index is built; HunkIDs lists the diff hunks belonging to this file in
// their original order.
type Node struct {
	ID         string
	FilePath   string
	OldPath    string // rename source, empty otherwise
	ChangeType ChangeType
	Surface    Surface
	IsBinary   bool
	HunkIDs    []string
}

// Index is an immutable mapping from node id to Node. Iteration order is
// deterministic: sorted by id wherever the index is rendered for a prompt.
type Index struct {
	nodes map[string]Node
	ids   []string
}

// NewIndex builds an index from the given nodes. Node ids must be unique.
func NewIndex(nodes []Node) (*Index, error) {
	m := make(map[string]Node, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("evidence node for %q has empty id", n.FilePath)
		}
		if _, dup := m[n.ID]; dup {
			return nil, fmt.Errorf("duplicate evidence node id %q", n.ID)
		}
		m[n.ID] = n
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return &Index{nodes: m, ids: ids}, nil
}

// Node returns the node with the given id.
func (ix *Index) Node(id string) (Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// IDs returns all node ids sorted lexicographically.
func (ix *Index) IDs() []string {
	out := make([]string, len(ix.ids))
	copy(out, ix.ids)
	return out
}

// Len returns the number of nodes in the index.
func (ix *Index) Len() int { return len(ix.ids) }

// HunkIDSet returns the set of every hunk id referenced by any node.
// The fetcher uses this to drop unknown ids from model requests.
func (ix *Index) HunkIDSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range ix.nodes {
		for _, h := range n.HunkIDs {
			set[h] = struct{}{}
		}
	}
	return set
}

// RenderPrompt renders the index as pipe-delimited single-line records,
// one per node, sorted by id. The result is embedded verbatim in model
// prompts.
func (ix *Index) RenderPrompt() string {
	var b strings.Builder
	for _, id := range ix.ids {
		n := ix.nodes[id]
		fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%s|%s\n",
			n.ID, n.ChangeType, n.Surface, n.FilePath, n.OldPath,
			binaryFlag(n.IsBinary), strings.Join(n.HunkIDs, ","))
	}
	return b.String()
}

// RenderRedacted renders the index for release-notes prompts. It never
// emits a raw file path: nodes with a public-api or config surface get a
// basename hint only, every other surface gets change-kind, binary flag,
// and hunk count alone.
func (ix *Index) RenderRedacted() string {
	var b strings.Builder
	for _, id := range ix.ids {
		n := ix.nodes[id]
		hint := ""
		if n.Surface == SurfacePublicAPI || n.Surface == SurfaceConfig {
			hint = path.Base(n.FilePath)
		}
		fmt.Fprintf(&b, "%s|%s|%s|%s|%s|hunks=%d\n",
			n.ID, n.ChangeType, n.Surface, hint, binaryFlag(n.IsBinary), len(n.HunkIDs))
	}
	return b.String()
}

func binaryFlag(b bool) string {
	if b {
		return "binary"
	}
	return "text"
}
