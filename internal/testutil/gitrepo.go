// Package testutil provides test fixtures shared across packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RepoBuilder creates a throwaway git repository in a temp directory and
// commits files into it. All failures are fatal to the calling test.
type RepoBuilder struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

// NewRepo initializes an empty repository under t.TempDir().
func NewRepo(t *testing.T) *RepoBuilder {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("initializing test repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("opening worktree: %v", err)
	}
	return &RepoBuilder{t: t, dir: dir, repo: repo, wt: wt}
}

// Dir returns the repository root.
func (b *RepoBuilder) Dir() string { return b.dir }

// WriteFile writes content at a relative path and stages it.
func (b *RepoBuilder) WriteFile(rel, content string) {
	b.t.Helper()
	abs := filepath.Join(b.dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		b.t.Fatalf("creating %s: %v", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		b.t.Fatalf("writing %s: %v", rel, err)
	}
	if _, err := b.wt.Add(rel); err != nil {
		b.t.Fatalf("staging %s: %v", rel, err)
	}
}

// RemoveFile deletes a file and stages the removal.
func (b *RepoBuilder) RemoveFile(rel string) {
	b.t.Helper()
	if _, err := b.wt.Remove(rel); err != nil {
		b.t.Fatalf("removing %s: %v", rel, err)
	}
}

// Commit commits the staged changes and returns the commit hash.
func (b *RepoBuilder) Commit(message string) string {
	b.t.Helper()
	hash, err := b.wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		b.t.Fatalf("committing %q: %v", message, err)
	}
	return hash.String()
}
