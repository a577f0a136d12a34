// Package cli wires the relforge commands: generate a changelog from a
// diff, draft release notes, and decide a version bump.
package cli

import (
	goerrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/config"
	"github.com/relforge/relforge/internal/errors"
	"github.com/relforge/relforge/internal/llm"
)

var (
	configPathFlag string
	repoPathFlag   string
	baseFlag       string
	headFlag       string
	debugFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "relforge",
	Short: "Synthesize changelogs and release notes from a git diff",
	Long: `relforge drives a model through a bounded evidence-retrieval
protocol over a git diff and renders the result as Keep a Changelog
markdown, release notes, or a version-bump decision.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if debugFlag {
			llm.SetDebugLogger(func(format string, args ...any) {
				fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
			})
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Project config path (default .relforge/config.yml)")
	rootCmd.PersistentFlags().StringVarP(&repoPathFlag, "repo", "C", ".", "Repository path")
	rootCmd.PersistentFlags().StringVar(&baseFlag, "base", "HEAD~1", "Base revision")
	rootCmd.PersistentFlags().StringVar(&headFlag, "head", "HEAD", "Head revision")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug output")
}

// Execute runs the CLI, rendering structured errors with their
// remediation steps.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	var cliErr *errors.CLIError
	if goerrors.As(err, &cliErr) {
		fmt.Fprint(os.Stderr, errors.FormatError(cliErr))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration,
			"check .relforge/config.yml and ~/.config/relforge/config.yml",
			"unset conflicting RELFORGE_* environment variables")
	}
	return cfg, nil
}
