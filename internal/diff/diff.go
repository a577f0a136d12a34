// Package diff turns version-control state into evidence nodes and diff
// hunks. It implements the hunk backend the fetcher draws from, including
// the byte-cap contract: a GetHunks call whose result would exceed the cap
// fails with ErrMaxBytesExceeded instead of returning oversized content.
package diff

import (
	"context"
	"errors"
	"strings"
)

// maxBytesMessage is the boundary contract string. Foreign backends that
// cannot return the sentinel directly are recognized by this substring.
const maxBytesMessage = "requested hunks exceed maxTotalBytes"

// ErrMaxBytesExceeded reports that a GetHunks call would overrun its byte
// cap. The fetcher recovers from it locally; it is never a run failure.
var ErrMaxBytesExceeded = errors.New(maxBytesMessage)

// IsMaxBytesExceeded reports whether err is the byte-cap condition, by
// sentinel identity or by the boundary message contract.
func IsMaxBytesExceeded(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMaxBytesExceeded) || strings.Contains(err.Error(), maxBytesMessage)
}

// Hunk is one contiguous diff fragment, the unit of byte-budgeted evidence
// fetching. Body is the rendered unified-diff text of the fragment.
type Hunk struct {
	ID   string
	Body string
}

// ByteLength returns the size this hunk counts against a budget.
func (h Hunk) ByteLength() int { return len(h.Body) }

// Source supplies hunks by id under a total byte cap.
type Source interface {
	// GetHunks resolves ids to hunks. It fails with ErrMaxBytesExceeded
	// when the combined byte length of the requested hunks would exceed
	// maxTotalBytes. Every id referenced by an evidence node built from
	// the same base/ref pair must be resolvable.
	GetHunks(ctx context.Context, ids []string, maxTotalBytes int) ([]Hunk, error)
}

// Store is an in-memory Source over hunks extracted once per run.
type Store struct {
	hunks map[string]Hunk
}

// NewStore builds a Store from extracted hunks.
func NewStore(hunks []Hunk) *Store {
	m := make(map[string]Hunk, len(hunks))
	for _, h := range hunks {
		m[h.ID] = h
	}
	return &Store{hunks: m}
}

// GetHunks implements Source. Unknown ids fail; the caller is expected to
// filter against the evidence index first.
func (s *Store) GetHunks(_ context.Context, ids []string, maxTotalBytes int) ([]Hunk, error) {
	out := make([]Hunk, 0, len(ids))
	total := 0
	for _, id := range ids {
		h, ok := s.hunks[id]
		if !ok {
			return nil, errors.New("unknown hunk id " + id)
		}
		total += h.ByteLength()
		if total > maxTotalBytes {
			return nil, ErrMaxBytesExceeded
		}
		out = append(out, h)
	}
	return out, nil
}
