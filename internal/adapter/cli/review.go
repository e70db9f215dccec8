package cli

import (
	"github.com/spf13/cobra"

	"github.com/phabreview/phabreview/internal/domain"
)

func reviewCommand(deps Dependencies) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   "review <revision>",
		Short: "Review a Phabricator revision",
		Long: "Fetches the revision and its raw diff from Conduit, asks the review\n" +
			"model for feedback, and renders the result with code snippets pulled\n" +
			"from the diff. The revision may be given as D123 or 123.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binding := Binding{
				Source:     domain.SourcePhabricator,
				RevisionID: args[0],
				Model:      flags.model,
				DryRun:     flags.dryRun,
			}
			return runReview(cmd, deps, binding, flags.request(domain.SourcePhabricator, deps.Config))
		},
	}

	registerReviewFlags(cmd, deps.Config, &flags)
	return cmd
}
