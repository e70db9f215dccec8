package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phabreview/phabreview/internal/config"
	"github.com/phabreview/phabreview/internal/domain"
	"github.com/phabreview/phabreview/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and
// no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Runner executes one prepared review request.
type Runner interface {
	Run(ctx context.Context, req review.Request) (review.Result, error)
}

// Binding selects the review target and model for one invocation.
type Binding struct {
	Source      string // domain.SourcePhabricator or domain.SourceLocal
	RevisionID  string // Phabricator target
	RepoDir     string // local target
	BaseRef     string
	TargetRef   string
	Uncommitted bool
	Model       string
	DryRun      bool
}

// RunnerFactory builds the review pipeline for one invocation. The
// factory owns adapter construction; commands only resolve flags.
type RunnerFactory func(binding Binding) (Runner, error)

// HistoryStore lists and loads stored reviews for the history command.
type HistoryStore interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ReviewRecord, error)
	GetReview(ctx context.Context, id int64) (domain.ReviewRecord, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Args      Arguments
	Config    config.Config
	NewRunner RunnerFactory
	History   HistoryStore                       // nil when the store is disabled
	Save      func(config.Config) (string, error) // defaults to config.Save
	Version   string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}
	if deps.Save == nil {
		deps.Save = config.Save
	}

	root := &cobra.Command{
		Use:   "phabreview",
		Short: "LLM code review for Phabricator revisions and local diffs",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps))
	root.AddCommand(localCommand(deps))
	root.AddCommand(configCommand(deps))
	root.AddCommand(historyCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

// reviewFlags are the options shared by the review and local commands.
type reviewFlags struct {
	model        string
	contextLines int
	format       string
	outputDir    string
	noSave       bool
	dryRun       bool
	instructions string
}

func registerReviewFlags(cmd *cobra.Command, cfg config.Config, flags *reviewFlags) {
	model := cfg.OpenRouter.Model
	if model == "" {
		model = config.DefaultModel
	}
	cmd.Flags().StringVar(&flags.model, "model", model, "Review model identifier")
	cmd.Flags().IntVar(&flags.contextLines, "context", cfg.Review.ContextLines, "Context lines shown around each finding")
	cmd.Flags().StringVar(&flags.format, "format", review.FormatTerminal, "Output format: terminal, markdown, or json")
	cmd.Flags().StringVar(&flags.outputDir, "output", cfg.Output.Directory, "Directory for markdown reports")
	cmd.Flags().BoolVar(&flags.noSave, "no-save", false, "Skip the markdown report and history record")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Build the prompt without calling the model")
	cmd.Flags().StringVar(&flags.instructions, "instructions", "", "Extra instructions appended to the review prompt")
}

// request resolves the shared flags into an orchestrator request. A dry
// run never saves artifacts.
func (f reviewFlags) request(source string, cfg config.Config) review.Request {
	instructions := f.instructions
	if instructions == "" {
		instructions = cfg.Review.Instructions
	}
	return review.Request{
		Source:       source,
		Format:       f.format,
		OutputDir:    f.outputDir,
		NoSave:       f.noSave || f.dryRun,
		ContextLines: f.contextLines,
		TokenBudget:  cfg.Review.TokenBudget,
		Instructions: instructions,
	}
}

func runReview(cmd *cobra.Command, deps Dependencies, binding Binding, req review.Request) error {
	runner, err := deps.NewRunner(binding)
	if err != nil {
		return err
	}
	result, err := runner.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	return reportOutcome(cmd, req, result)
}

// reportOutcome prints the artifact locations after a successful run.
// The report body itself was already written by the renderer the
// runner owns.
func reportOutcome(cmd *cobra.Command, req review.Request, result review.Result) error {
	out := cmd.OutOrStdout()
	switch req.Format {
	case review.FormatMarkdown:
		_, _ = fmt.Fprintln(out, result.ReportPath)
	case review.FormatJSON:
	default:
		if result.ReportPath != "" {
			_, _ = fmt.Fprintf(out, "\nReport saved to %s\n", result.ReportPath)
		}
	}
	return nil
}
