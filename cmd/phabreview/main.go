package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/phabreview/phabreview/internal/adapter/cli"
	"github.com/phabreview/phabreview/internal/adapter/git"
	"github.com/phabreview/phabreview/internal/adapter/llm"
	llmhttp "github.com/phabreview/phabreview/internal/adapter/llm/http"
	"github.com/phabreview/phabreview/internal/adapter/llm/openrouter"
	"github.com/phabreview/phabreview/internal/adapter/llm/static"
	"github.com/phabreview/phabreview/internal/adapter/observability"
	"github.com/phabreview/phabreview/internal/adapter/output/json"
	"github.com/phabreview/phabreview/internal/adapter/output/markdown"
	"github.com/phabreview/phabreview/internal/adapter/output/terminal"
	"github.com/phabreview/phabreview/internal/adapter/phabricator"
	"github.com/phabreview/phabreview/internal/adapter/store/sqlite"
	"github.com/phabreview/phabreview/internal/config"
	"github.com/phabreview/phabreview/internal/determinism"
	"github.com/phabreview/phabreview/internal/domain"
	"github.com/phabreview/phabreview/internal/redaction"
	"github.com/phabreview/phabreview/internal/usecase/review"
	"github.com/phabreview/phabreview/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact credentials from error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := observability.NewLogger(observability.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	// Initialize store if enabled
	var store *sqlite.Store
	if cfg.Store.Enabled {
		store = openStore(cfg.Store.Path)
		if store != nil {
			defer store.Close()
		}
	}

	deps := cli.Dependencies{
		Args:      cli.Arguments{OutWriter: os.Stdout, ErrWriter: os.Stderr},
		Config:    cfg,
		NewRunner: runnerFactory(cfg, logger, store),
		Version:   version.Value(),
	}
	if store != nil {
		deps.History = store
	}

	root := cli.NewRootCommand(deps)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// openStore opens the review history database. Store problems degrade
// to a warning so reviews still run.
func openStore(path string) *sqlite.Store {
	store, err := sqlite.NewStore(path)
	if err != nil {
		log.Printf("warning: failed to open review history store: %v", err)
		return nil
	}
	return store
}

// runnerFactory assembles the review pipeline for one CLI invocation.
// The binding decides the diff source and the reviewer; everything else
// comes from configuration.
func runnerFactory(cfg config.Config, logger *observability.Logger, store *sqlite.Store) cli.RunnerFactory {
	return func(binding cli.Binding) (cli.Runner, error) {
		if missing := missingSettings(cfg, binding); len(missing) > 0 {
			return nil, fmt.Errorf("missing required configuration: %s. Run 'phabreview config' to set them",
				strings.Join(missing, ", "))
		}

		source, err := buildSource(cfg, binding)
		if err != nil {
			return nil, err
		}

		var reviewer review.Reviewer
		if binding.DryRun {
			reviewer = static.NewReviewer()
		} else {
			client := openrouter.NewClient(cfg.OpenRouter.APIKey, binding.Model)
			client.SetTimeout(cfg.HTTP.TimeoutDuration())
			client.SetRetryConfig(retryConfig(cfg.HTTP))
			reviewer = &openrouterReviewer{client: client}
		}

		// Timestamp function for report file naming
		nowFunc := func() string {
			return time.Now().Format("20060102-150405")
		}

		deps := review.Deps{
			Source:   source,
			Reviewer: reviewer,
			Terminal: terminal.NewRenderer(os.Stdout, review.IsOutputTerminal()),
			Markdown: markdown.NewWriter(nowFunc),
			JSON:     json.NewWriter(os.Stdout),
			Seed:     determinism.GenerateSeed,
			Logger:   logger,
			Tokens:   llm.EstimateTokens,
		}
		if store != nil {
			deps.Store = store
		}
		if cfg.Redaction.Enabled {
			deps.Redactor = redaction.NewEngine()
		}

		orchestrator, err := review.NewOrchestrator(deps)
		if err != nil {
			return nil, err
		}
		return orchestrator, nil
	}
}

// missingSettings returns the settings this invocation needs but the
// configuration does not provide. A local dry run needs none.
func missingSettings(cfg config.Config, binding cli.Binding) []string {
	var missing []string
	if binding.Source == domain.SourcePhabricator {
		if cfg.Phabricator.URL == "" {
			missing = append(missing, "PHABRICATOR_URL")
		}
		if cfg.Phabricator.Token == "" {
			missing = append(missing, "PHABRICATOR_API_TOKEN")
		}
	}
	if !binding.DryRun && cfg.OpenRouter.APIKey == "" {
		missing = append(missing, "OPENROUTER_API_KEY")
	}
	return missing
}

func buildSource(cfg config.Config, binding cli.Binding) (review.RevisionSource, error) {
	switch binding.Source {
	case domain.SourcePhabricator:
		client := phabricator.NewClient(cfg.Phabricator.URL, cfg.Phabricator.Token)
		client.SetTimeout(cfg.HTTP.TimeoutDuration())
		client.SetRetryConfig(retryConfig(cfg.HTTP))
		return phabricator.NewSource(client, binding.RevisionID), nil
	case domain.SourceLocal:
		return git.NewSource(git.NewEngine(binding.RepoDir), binding.BaseRef, binding.TargetRef, binding.Uncommitted), nil
	default:
		return nil, fmt.Errorf("unknown review source %q", binding.Source)
	}
}

func retryConfig(cfg config.HTTPConfig) llmhttp.RetryConfig {
	retry := llmhttp.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	retry.InitialBackoff = cfg.InitialBackoffDuration()
	return retry
}

// openrouterReviewer adapts the OpenRouter client to the review
// pipeline's Reviewer port.
type openrouterReviewer struct {
	client *openrouter.Client
}

func (r *openrouterReviewer) Review(ctx context.Context, req review.ReviewRequest) (review.ReviewOutcome, error) {
	resp, err := r.client.Review(ctx, openrouter.Request{
		System:    req.System,
		Prompt:    req.Prompt,
		Seed:      req.Seed,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return review.ReviewOutcome{}, err
	}
	return review.ReviewOutcome{
		Model:     resp.Model,
		Result:    resp.Result,
		TokensIn:  resp.Usage.TokensIn,
		TokensOut: resp.Usage.TokensOut,
	}, nil
}

// Compile-time interface compliance checks
var _ review.RevisionSource = (*phabricator.Source)(nil)
var _ review.RevisionSource = (*git.Source)(nil)
var _ review.Reviewer = (*openrouterReviewer)(nil)
var _ review.Reviewer = (*static.Reviewer)(nil)
var _ review.TerminalRenderer = (*terminal.Renderer)(nil)
var _ review.MarkdownWriter = (*markdown.Writer)(nil)
var _ review.JSONWriter = (*json.Writer)(nil)
var _ review.Redactor = (*redaction.Engine)(nil)
var _ review.Store = (*sqlite.Store)(nil)
var _ review.Logger = (*observability.Logger)(nil)
var _ cli.HistoryStore = (*sqlite.Store)(nil)
