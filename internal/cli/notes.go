package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Draft release notes from the diff",
	Long: `Draft user-facing release notes for base..head. The model sees a
redacted change index only: no file paths beyond a basename hint for
public API and config changes.`,
	Args: cobra.NoArgs,
	RunE: runNotes,
}

func init() {
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	runner, stopSpinner, err := newRunner(ctx, cfg, cmd)
	if err != nil {
		return err
	}

	notes, err := runner.ReleaseNotes(ctx)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("drafting release notes: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n\n%s\n", notes.Title, notes.Summary)
	if len(notes.Highlights) > 0 {
		fmt.Fprintf(out, "\n## Highlights\n")
		for _, h := range notes.Highlights {
			fmt.Fprintf(out, "- %s\n", h)
		}
	}
	if len(notes.UpgradeNotes) > 0 {
		fmt.Fprintf(out, "\n## Upgrade notes\n")
		for _, n := range notes.UpgradeNotes {
			fmt.Fprintf(out, "- %s\n", n)
		}
	}
	return nil
}
