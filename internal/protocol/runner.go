// Package protocol drives the bounded, multi-round evidence-retrieval
// loop: show the model the evidence index, answer its coerced tool
// requests under the shared byte budget, and finally collect the validated
// changelog model. The protocol is inherently sequential; each round's
// request depends on the previous round's model output.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/relforge/relforge/internal/changelog"
	"github.com/relforge/relforge/internal/contracts"
	"github.com/relforge/relforge/internal/diff"
	"github.com/relforge/relforge/internal/evidence"
	"github.com/relforge/relforge/internal/fetch"
	"github.com/relforge/relforge/internal/jsonx"
	"github.com/relforge/relforge/internal/llm"
	"github.com/relforge/relforge/internal/tokens"
	"github.com/relforge/relforge/internal/toolreq"
)

// resultTokenCap clips any single evidence block appended to the
// conversation. Hunk content is already byte-budgeted; this bounds the
// repo-read collaterals the same way.
const resultTokenCap = 4000

// ModelCaller is the slice of the llm client the runner needs.
type ModelCaller interface {
	Complete(ctx context.Context, messages []llm.Message, contract *contracts.Contract) (string, error)
}

// Runner holds the collaborators for one run. Budget is shared by
// reference and decremented only by the hunk fetcher.
type Runner struct {
	Model   ModelCaller
	Backend diff.Source
	Reader  repoReader
	Index   *evidence.Index
	Budget  *evidence.ByteBudget
	Counter *tokens.Counter

	// MaxRounds bounds the evidence protocol; a run that never signals
	// done is forced to conclude after this many rounds.
	MaxRounds int

	// Progress, when set, receives a short note at each round boundary.
	Progress func(round int, note string)
}

// repoReader is the read-only repository surface the runner resolves
// snippet and search requests against.
type repoReader interface {
	Snippet(path string, startLine, endLine int) (string, error)
	Around(path string, line, context int) (string, error)
	SearchFile(path, query string, maxResults int) (string, error)
	SearchRepo(ctx context.Context, query string, maxResults, maxFiles int, extensions []string) (string, error)
	SearchPaths(query string, maxResults int) (string, error)
	List(dir string, maxEntries int) (string, error)
	Stat(path string) (string, error)
}

// Changelog runs the evidence protocol and returns the validated model.
func (r *Runner) Changelog(ctx context.Context) (*changelog.Model, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: changelogSystemPrompt(r.Index)},
		{Role: llm.RoleUser, Content: "Request the evidence you need."},
	}

	toolContract, err := contracts.ToolRequestContract()
	if err != nil {
		return nil, err
	}
	allowed := r.Index.HunkIDSet()

	for round := 1; round <= r.MaxRounds; round++ {
		r.progress(round, "requesting evidence")
		raw, err := r.Model.Complete(ctx, messages, &toolContract)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}

		parsed, err := jsonx.Extract[map[string]any]("tool_request", raw)
		if err != nil {
			return nil, err
		}
		bundle := toolreq.CoerceBundle(parsed)
		if bundle.Done || bundle.Empty() {
			break
		}

		results, stop := r.resolve(ctx, bundle, allowed)
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: raw},
			llm.Message{Role: llm.RoleUser, Content: results},
		)
		if stop {
			break
		}
	}

	r.progress(r.MaxRounds, "synthesizing changelog")
	clContract, err := contracts.ChangelogContract()
	if err != nil {
		return nil, err
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: changelogFinalPrompt})
	raw, err := r.Model.Complete(ctx, messages, &clContract)
	if err != nil {
		return nil, err
	}
	wire, err := contracts.DecodeChangelog(raw)
	if err != nil {
		return nil, err
	}
	return changelog.FromWire(wire, r.Index), nil
}

// resolve answers one round's bundle. The returned flag is true when the
// budget ran out: the loop proceeds to synthesis without further evidence.
func (r *Runner) resolve(ctx context.Context, bundle toolreq.Bundle, allowed map[string]struct{}) (string, bool) {
	var b strings.Builder
	budgetOut := false

	if len(bundle.HunkIDs) > 0 {
		hunks, err := fetch.HunksWithBudget(ctx, r.Backend, fetch.Options{
			Allowed: allowed,
			Budget:  r.Budget,
			HunkIDs: bundle.HunkIDs,
		})
		switch {
		case errors.Is(err, fetch.ErrBudgetExhausted):
			budgetOut = true
			b.WriteString("evidence budget exhausted; no further hunks available\n")
		case err != nil:
			fmt.Fprintf(&b, "hunk fetch error: %v\n", err)
		default:
			for _, h := range hunks {
				fmt.Fprintf(&b, "--- hunk %s ---\n%s", h.ID, h.Body)
			}
			if r.Budget.Exhausted() {
				budgetOut = true
			}
		}
	}

	for _, req := range bundle.Snippets {
		out, err := r.Reader.Snippet(req.Path, req.StartLine, req.EndLine)
		r.appendResult(&b, "snippet", req.Path, out, err)
	}
	for _, req := range bundle.Around {
		out, err := r.Reader.Around(req.Path, req.Line, req.Context)
		r.appendResult(&b, "snippet", req.Path, out, err)
	}
	for _, req := range bundle.FileSearches {
		out, err := r.Reader.SearchFile(req.Path, req.Query, req.MaxResults)
		r.appendResult(&b, "search", req.Path, out, err)
	}
	for _, req := range bundle.RepoSearches {
		out, err := r.Reader.SearchRepo(ctx, req.Query, req.MaxResults, req.MaxFiles, req.Extensions)
		r.appendResult(&b, "repo-search", req.Query, out, err)
	}
	for _, req := range bundle.PathSearches {
		out, err := r.Reader.SearchPaths(req.Query, req.MaxResults)
		r.appendResult(&b, "path-search", req.Query, out, err)
	}
	for _, req := range bundle.Listings {
		out, err := r.Reader.List(req.Dir, req.MaxEntries)
		r.appendResult(&b, "list", req.Dir, out, err)
	}
	for _, req := range bundle.Stats {
		out, err := r.Reader.Stat(req.Path)
		r.appendResult(&b, "stat", req.Path, out, err)
	}

	if b.Len() == 0 {
		b.WriteString("no results\n")
	}
	return b.String(), budgetOut
}

// appendResult writes one labeled result block, clipped by token count.
// Collaborator errors become result text so the round keeps moving.
func (r *Runner) appendResult(b *strings.Builder, kind, subject, out string, err error) {
	fmt.Fprintf(b, "--- %s %s ---\n", kind, subject)
	if err != nil {
		fmt.Fprintf(b, "error: %v\n", err)
		return
	}
	if r.Counter != nil {
		out, _ = r.Counter.Clip(out, resultTokenCap)
	}
	b.WriteString(out)
	if !strings.HasSuffix(out, "\n") {
		b.WriteByte('\n')
	}
}

// ReleaseNotes asks the model for user-facing notes against the redacted
// index. No evidence rounds: paths never reach this prompt.
func (r *Runner) ReleaseNotes(ctx context.Context) (*contracts.ReleaseNotesWire, error) {
	contract, err := contracts.ReleaseNotesContract()
	if err != nil {
		return nil, err
	}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: releaseNotesSystemPrompt(r.Index)},
		{Role: llm.RoleUser, Content: releaseNotesFinalPrompt},
	}
	raw, err := r.Model.Complete(ctx, messages, &contract)
	if err != nil {
		return nil, err
	}
	return contracts.DecodeReleaseNotes(raw)
}

// VersionBump asks the model for a semantic-version bump decision.
func (r *Runner) VersionBump(ctx context.Context) (*contracts.VersionBumpWire, error) {
	contract, err := contracts.VersionBumpContract()
	if err != nil {
		return nil, err
	}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: versionBumpPrompt(r.Index)},
		{Role: llm.RoleUser, Content: "Answer now."},
	}
	raw, err := r.Model.Complete(ctx, messages, &contract)
	if err != nil {
		return nil, err
	}
	return contracts.DecodeVersionBump(raw)
}

func (r *Runner) progress(round int, note string) {
	if r.Progress != nil {
		r.Progress(round, note)
	}
}
