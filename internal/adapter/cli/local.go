package cli

import (
	"github.com/spf13/cobra"

	"github.com/phabreview/phabreview/internal/domain"
)

func localCommand(deps Dependencies) *cobra.Command {
	var flags reviewFlags
	var baseRef string
	var targetRef string
	var repoDir string
	var uncommitted bool

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Review local git changes",
		Long: "Runs the review pipeline over a diff computed from the local\n" +
			"repository instead of a Phabricator revision. By default the working\n" +
			"tree is reviewed against HEAD; pass --base and --target to review a\n" +
			"branch instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Naming a target implies a committed-range review unless
			// the user said otherwise.
			if cmd.Flags().Changed("target") && !cmd.Flags().Changed("uncommitted") {
				uncommitted = false
			}

			binding := Binding{
				Source:      domain.SourceLocal,
				RepoDir:     repoDir,
				BaseRef:     baseRef,
				TargetRef:   targetRef,
				Uncommitted: uncommitted,
				Model:       flags.model,
				DryRun:      flags.dryRun,
			}
			return runReview(cmd, deps, binding, flags.request(domain.SourceLocal, deps.Config))
		},
	}

	registerReviewFlags(cmd, deps.Config, &flags)
	cmd.Flags().StringVar(&baseRef, "base", "HEAD", "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target reference (defaults to the working tree)")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "Repository directory")
	cmd.Flags().BoolVar(&uncommitted, "uncommitted", true, "Include uncommitted working tree changes")
	return cmd
}
