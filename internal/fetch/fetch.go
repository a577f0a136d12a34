// Package fetch collects diff hunks on behalf of the model under a shared
// byte budget. The model cannot be trusted to request a well-sized batch,
// so the collector degrades gracefully: it shrinks its chunk size when the
// backend refuses a batch and skips single hunks that alone exceed the
// remaining budget, instead of failing the evidence round.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/relforge/relforge/internal/diff"
	"github.com/relforge/relforge/internal/evidence"
)

// DefaultMaxChunk is the initial number of hunks requested per backend call.
const DefaultMaxChunk = 12

// ErrBudgetExhausted reports that no bytes remain for evidence fetching.
// It is fatal to the current round; the orchestration loop proceeds
// without further evidence.
var ErrBudgetExhausted = errors.New("evidence byte budget exhausted")

// Options configures one budgeted fetch.
type Options struct {
	// Allowed is the set of hunk ids known to the evidence index.
	// Requested ids outside it are silently dropped.
	Allowed map[string]struct{}

	// Budget is the run's shared byte allowance, decremented here and
	// nowhere else.
	Budget *evidence.ByteBudget

	// HunkIDs is the model-requested id list, processed front to back.
	HunkIDs []string

	// MaxChunk is the starting chunk size; zero means DefaultMaxChunk.
	MaxChunk int
}

// HunksWithBudget resolves the requested hunk ids against the backend,
// in order, in adaptively-sized chunks. Each backend call is capped at the
// current remaining budget. On a byte-cap refusal the chunk size is halved
// and the same position retried; at chunk size 1 the offending hunk is
// skipped. Collection stops once the budget reaches zero or the id list is
// exhausted, returning whatever was collected.
func HunksWithBudget(ctx context.Context, backend diff.Source, opts Options) ([]diff.Hunk, error) {
	if opts.Budget.Exhausted() {
		return nil, ErrBudgetExhausted
	}

	ids := filterKnown(opts.HunkIDs, opts.Allowed)
	chunkSize := opts.MaxChunk
	if chunkSize <= 0 {
		chunkSize = DefaultMaxChunk
	}

	var collected []diff.Hunk
	cursor := 0
	for cursor < len(ids) && !opts.Budget.Exhausted() {
		end := cursor + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[cursor:end]

		hunks, err := backend.GetHunks(ctx, chunk, opts.Budget.Remaining())
		if err != nil {
			if diff.IsMaxBytesExceeded(err) {
				if len(chunk) == 1 {
					// A single oversized hunk must never block the rest.
					cursor++
					continue
				}
				chunkSize = chunkSize / 2
				if chunkSize < 1 {
					chunkSize = 1
				}
				continue
			}
			return collected, fmt.Errorf("fetching hunks: %w", err)
		}

		spent := 0
		for _, h := range hunks {
			spent += h.ByteLength()
		}
		opts.Budget.Spend(spent)
		collected = append(collected, hunks...)
		cursor += len(chunk)
	}
	return collected, nil
}

// filterKnown keeps only ids present in allowed, preserving relative order.
func filterKnown(ids []string, allowed map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
