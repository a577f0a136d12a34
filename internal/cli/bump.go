package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relforge/relforge/internal/manifest"
)

var bumpApplyFlag bool

var bumpCmd = &cobra.Command{
	Use:   "bump [current-version]",
	Short: "Decide a semantic version bump for the diff",
	Long: `Ask the model for a version-bump decision (major, minor, patch or
none) based on the redacted change index. With --apply and a current
version, the bumped version is written into the package manifests found
at the repository root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBump,
}

func init() {
	rootCmd.AddCommand(bumpCmd)
	bumpCmd.Flags().BoolVar(&bumpApplyFlag, "apply", false, "Write the bumped version into detected manifests")
}

func runBump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	runner, stopSpinner, err := newRunner(ctx, cfg, cmd)
	if err != nil {
		return err
	}

	decision, err := runner.VersionBump(ctx)
	stopSpinner()
	if err != nil {
		return fmt.Errorf("deciding version bump: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "bump: %s\nrationale: %s\n", decision.Bump, decision.Rationale)

	if !bumpApplyFlag {
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("--apply requires the current version as an argument")
	}
	next, err := manifest.Bump(args[0], manifest.BumpKind(decision.Bump))
	if err != nil {
		return err
	}
	if next == args[0] {
		printSuccess(cmd, "no bump needed, version stays %s", next)
		return nil
	}
	manifests := manifest.Detect(repoPathFlag)
	if len(manifests) == 0 {
		return fmt.Errorf("no package manifests found in %s", repoPathFlag)
	}
	for _, m := range manifests {
		if err := manifest.Apply(m, next); err != nil {
			return err
		}
		printSuccess(cmd, "updated %s to %s", m, next)
	}
	return nil
}
