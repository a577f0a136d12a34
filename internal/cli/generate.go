package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/changelog"
)

var (
	generateVersionFlag string
	generateDateFlag    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a changelog section from the diff",
	Long: `Generate a Keep a Changelog section for base..head. The model is
shown the change index, retrieves diff hunks and repository context under
a byte budget, and the resulting model is sanitized before rendering:
internal, test and infra changes never reach the output.

Examples:
  relforge generate --base v1.2.0 --head HEAD --version v1.3.0
  relforge generate --base HEAD~10`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateVersionFlag, "version", "", "Version label for the heading (default: head revision)")
	generateCmd.Flags().StringVar(&generateDateFlag, "date", "", "Release date YYYY-MM-DD (default: today)")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	runner, stopSpinner, err := newRunner(ctx, cfg, cmd)
	if err != nil {
		return err
	}

	model, err := runner.Changelog(ctx)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("generating changelog: %w", err)
	}

	versionLabel := generateVersionFlag
	if versionLabel == "" {
		versionLabel = headFlag
	}
	date := generateDateFlag
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	out, err := changelog.RenderMarkdownString(model, changelog.RenderOptions{
		VersionLabel:   versionLabel,
		ReleaseDateISO: date,
	})
	if err != nil {
		return fmt.Errorf("rendering changelog: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	printSuccess(cmd, "changelog generated from %d changed files", runner.Index.Len())
	return nil
}
