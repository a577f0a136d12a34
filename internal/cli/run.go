package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/relforge/relforge/internal/config"
	"github.com/relforge/relforge/internal/diff"
	"github.com/relforge/relforge/internal/errors"
	"github.com/relforge/relforge/internal/evidence"
	"github.com/relforge/relforge/internal/llm"
	"github.com/relforge/relforge/internal/protocol"
	"github.com/relforge/relforge/internal/repo"
	"github.com/relforge/relforge/internal/tokens"
)

// newRunner assembles the per-run collaborators: evidence index and hunk
// store from the diff, model client, repo reader, token meter, and the
// shared byte budget.
func newRunner(ctx context.Context, cfg *config.Configuration, cmd *cobra.Command) (*protocol.Runner, func(), error) {
	index, store, err := diff.Extract(ctx, repoPathFlag, baseFlag, headFlag)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.Repository,
			"check that --repo points at a git repository",
			"check that --base and --head name existing revisions")
	}
	if index.Len() == 0 {
		return nil, nil, fmt.Errorf("no changes between %s and %s", baseFlag, headFlag)
	}

	client, err := llm.New(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.Configuration,
			fmt.Sprintf("export %s with a valid API key", cfg.APIKeyEnv))
	}

	counter, err := tokens.New(tokens.DefaultEncoding)
	if err != nil {
		return nil, nil, err
	}

	runner := &protocol.Runner{
		Model:     client,
		Backend:   store,
		Reader:    repo.NewReader(repoPathFlag),
		Index:     index,
		Budget:    evidence.NewByteBudget(cfg.EvidenceBudgetBytes),
		Counter:   counter,
		MaxRounds: cfg.MaxRounds,
	}

	stop := func() {}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		runner.Progress = func(round int, note string) {
			sp.Suffix = fmt.Sprintf(" round %d: %s", round, note)
			if !sp.Active() {
				sp.Start()
			}
		}
		stop = sp.Stop
	}
	return runner, stop, nil
}

func printSuccess(cmd *cobra.Command, format string, args ...any) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}
