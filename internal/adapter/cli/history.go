package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/phabreview/phabreview/internal/domain"
	"github.com/phabreview/phabreview/internal/usecase/review"
)

func historyCommand(deps Dependencies) *cobra.Command {
	var limit int
	var pick bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past reviews",
		Long: "Lists reviews recorded in the local history database, newest\n" +
			"first. With --pick, a fuzzy finder opens over the rows and the\n" +
			"chosen review's saved report is printed again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.History == nil {
				return errors.New("review history is disabled; enable store in the configuration")
			}

			records, err := deps.History.ListRecent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list review history: %w", err)
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No reviews recorded yet.")
				return nil
			}

			if pick {
				if !review.IsInteractive() {
					return errors.New("--pick requires an interactive terminal")
				}
				return pickRecord(cmd, records)
			}
			listRecords(cmd, records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of reviews to list")
	cmd.Flags().BoolVar(&pick, "pick", false, "Interactively pick a review and reprint its report")
	return cmd
}

func listRecords(cmd *cobra.Command, records []domain.ReviewRecord) {
	out := cmd.OutOrStdout()
	for _, record := range records {
		_, _ = fmt.Fprintf(out, "#%-4d %-8s %-44s %s\n",
			record.ID, recordName(record), truncate(record.Title, 44), humanize.Time(record.CreatedAt))
	}
}

func pickRecord(cmd *cobra.Command, records []domain.ReviewRecord) error {
	idx, err := fuzzyfinder.Find(
		records,
		func(i int) string {
			record := records[i]
			return fmt.Sprintf("%s | %s | %s | %s",
				recordName(record), record.Title, record.Model, humanize.Time(record.CreatedAt))
		},
		fuzzyfinder.WithPromptString("Select a review> "),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return fmt.Errorf("fuzzyfinder error: %w", err)
	}
	return reprintRecord(cmd, records[idx])
}

// reprintRecord prints the saved markdown report when the file still
// exists, falling back to the stored summary.
func reprintRecord(cmd *cobra.Command, record domain.ReviewRecord) error {
	out := cmd.OutOrStdout()

	if record.ReportPath != "" {
		content, err := os.ReadFile(record.ReportPath)
		if err == nil {
			_, _ = out.Write(content)
			return nil
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: report file missing: %s\n", record.ReportPath)
	}

	_, _ = fmt.Fprintf(out, "%s: %s\n", recordName(record), record.Title)
	_, _ = fmt.Fprintf(out, "Model: %s | Reviewed %s\n\n", record.Model, humanize.Time(record.CreatedAt))
	_, _ = fmt.Fprintln(out, record.Summary)
	return nil
}

func recordName(record domain.ReviewRecord) string {
	if record.RevisionID != "" {
		return "D" + record.RevisionID
	}
	return "local"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
