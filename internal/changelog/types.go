// Package changelog holds the validated changelog model produced by a run
// and the sanitizing renderer that turns it into Keep a Changelog markdown.
// Sanitization is evidence-aware: bullets whose primary evidence node has
// an internal-only surface are dropped, as are bullets that read like
// internal file-path announcements.
package changelog

import (
	"github.com/relforge/relforge/internal/contracts"
	"github.com/relforge/relforge/internal/evidence"
)

// Bullet is a single changelog entry with its cited evidence node ids.
// The ids need not resolve against the index; unknown ids are tolerated.
type Bullet struct {
	Text            string
	EvidenceNodeIDs []string
}

// Model is the validated changelog for one run: six ordered bullet lists
// plus the evidence index used to produce them. It is constructed once
// from validated model output and immutable thereafter.
type Model struct {
	BreakingChanges []Bullet
	Added           []Bullet
	Changed         []Bullet
	Fixed           []Bullet
	Removed         []Bullet
	InternalTooling []Bullet

	Index *evidence.Index
}

// FromWire builds a Model from a validated wire changelog and the evidence
// index the run was driven by.
func FromWire(w *contracts.ChangelogWire, index *evidence.Index) *Model {
	return &Model{
		BreakingChanges: bulletsFromWire(w.BreakingChanges),
		Added:           bulletsFromWire(w.Added),
		Changed:         bulletsFromWire(w.Changed),
		Fixed:           bulletsFromWire(w.Fixed),
		Removed:         bulletsFromWire(w.Removed),
		InternalTooling: bulletsFromWire(w.InternalTooling),
		Index:           index,
	}
}

func bulletsFromWire(ws []contracts.BulletWire) []Bullet {
	out := make([]Bullet, 0, len(ws))
	for _, b := range ws {
		out = append(out, Bullet{Text: b.Text, EvidenceNodeIDs: b.EvidenceNodeIDs})
	}
	return out
}

// IsEmpty returns true if no consumer-facing category has entries.
// InternalTooling is excluded: it never reaches rendered output.
func (m *Model) IsEmpty() bool {
	return len(m.BreakingChanges) == 0 &&
		len(m.Added) == 0 &&
		len(m.Changed) == 0 &&
		len(m.Fixed) == 0 &&
		len(m.Removed) == 0
}
