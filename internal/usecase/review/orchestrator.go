package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phabreview/phabreview/internal/diff"
	"github.com/phabreview/phabreview/internal/domain"
)

// Output formats accepted by Request.Format.
const (
	FormatTerminal = "terminal"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// RevisionSource yields the metadata and raw unified diff for one
// review target. Implementations are pre-bound to their target: the
// Phabricator source to a revision ID, the git source to a ref pair.
type RevisionSource interface {
	Fetch(ctx context.Context) (domain.Revision, string, error)
}

// ReviewRequest is the payload handed to the model adapter.
type ReviewRequest struct {
	System    string
	Prompt    string
	Seed      uint64
	MaxTokens int
}

// ReviewOutcome is the parsed model response plus usage counters.
type ReviewOutcome struct {
	Model     string
	Result    domain.ReviewResult
	TokensIn  int
	TokensOut int
}

// Reviewer defines the outbound port for the review model.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewOutcome, error)
}

// Store defines the outbound port for persisting review history.
type Store interface {
	SaveReview(ctx context.Context, record domain.ReviewRecord) (int64, error)
}

// TerminalRenderer writes a report for interactive display.
type TerminalRenderer interface {
	Render(report domain.Report) error
}

// MarkdownWriter persists a report to disk and returns the path.
type MarkdownWriter interface {
	Write(ctx context.Context, dir string, report domain.Report) (string, error)
}

// JSONWriter serializes a report for piping.
type JSONWriter interface {
	Write(report domain.Report) error
}

// Redactor masks credentials in diff text bound for the model. It
// returns the redacted text and the number of secrets masked.
type Redactor interface {
	Redact(input string) (string, int)
}

// SeedFunc derives the deterministic seed for one run from the review
// identity and the diff content.
type SeedFunc func(identity, content string) uint64

// TokenEstimator approximates the token count of prompt text.
type TokenEstimator func(text string) int

// Deps captures the orchestrator dependencies. Source, Reviewer, the
// three output ports and Seed are required; the rest are optional.
type Deps struct {
	Source   RevisionSource
	Reviewer Reviewer
	Terminal TerminalRenderer
	Markdown MarkdownWriter
	JSON     JSONWriter
	Seed     SeedFunc

	Store    Store            // optional: review history
	Redactor Redactor         // optional: secret masking
	Logger   Logger           // optional: structured logging
	Tokens   TokenEstimator   // optional: prompt size logging
	Clock    func() time.Time // defaults to time.Now
}

// Request describes one review invocation.
type Request struct {
	Source       string // domain.SourcePhabricator or domain.SourceLocal
	Format       string // FormatTerminal, FormatMarkdown or FormatJSON
	OutputDir    string // markdown report destination
	NoSave       bool   // skip the markdown report and history record
	ContextLines int    // snippet padding around each finding
	TokenBudget  int    // warn when the prompt estimate exceeds this
	Instructions string // extra guidance appended to the system prompt
}

// Result captures the orchestrator outcome.
type Result struct {
	Report     domain.Report
	ReportPath string // set when the markdown report was written
	RecordID   int64  // set when the history record was saved
	TokensIn   int
	TokensOut  int
}

// Orchestrator runs the fetch, review, annotate, render pipeline.
type Orchestrator struct {
	deps Deps
}

// NewOrchestrator validates and wires the dependencies.
func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	if deps.Source == nil {
		return nil, errors.New("revision source is required")
	}
	if deps.Reviewer == nil {
		return nil, errors.New("reviewer is required")
	}
	if deps.Terminal == nil {
		return nil, errors.New("terminal renderer is required")
	}
	if deps.Markdown == nil {
		return nil, errors.New("markdown writer is required")
	}
	if deps.JSON == nil {
		return nil, errors.New("json writer is required")
	}
	if deps.Seed == nil {
		return nil, errors.New("seed generator is required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Orchestrator{deps: deps}, nil
}

// Run executes one review end to end: fetch the target, summarize its
// diff, ask the model, recover code context for each finding, render,
// and record the run.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	revision, rawDiff, err := o.deps.Source.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch review target: %w", err)
	}

	_, changeSummary := diff.Parse(rawDiff)
	o.logInfo(ctx, "fetched review target", map[string]any{
		"revision":  displayName(revision),
		"diffBytes": len(rawDiff),
	})

	// The model sees the redacted diff; rendering and snippet
	// extraction keep using the original.
	modelDiff := rawDiff
	if o.deps.Redactor != nil {
		redacted, masked := o.deps.Redactor.Redact(rawDiff)
		if masked > 0 {
			o.logInfo(ctx, "masked secrets in diff", map[string]any{"count": masked})
		}
		modelDiff = redacted
	}

	system := SystemPrompt
	if req.Instructions != "" {
		system = SystemPrompt + "\n\n**Additional Instructions:**\n" + req.Instructions
	}
	prompt := BuildUserPrompt(modelDiff, changeSummary, revision.Summary)

	if o.deps.Tokens != nil {
		estimate := o.deps.Tokens(system) + o.deps.Tokens(prompt)
		o.logInfo(ctx, "prompt built", map[string]any{"promptTokens": estimate})
		if req.TokenBudget > 0 && estimate > req.TokenBudget {
			o.logWarn(ctx, "prompt exceeds token budget", map[string]any{
				"estimate": estimate,
				"budget":   req.TokenBudget,
			})
		}
	}

	outcome, err := o.deps.Reviewer.Review(ctx, ReviewRequest{
		System: system,
		Prompt: prompt,
		Seed:   o.deps.Seed(seedIdentity(revision), modelDiff),
	})
	if err != nil {
		return Result{}, fmt.Errorf("review request: %w", err)
	}

	report := domain.Report{
		Revision:    revision,
		Source:      req.Source,
		Model:       outcome.Model,
		DiffSummary: changeSummary,
		Result:      outcome.Result,
		Annotated:   o.annotate(ctx, rawDiff, outcome.Result.RequestedChanges, req.ContextLines),
		GeneratedAt: o.deps.Clock(),
	}

	result := Result{
		Report:    report,
		TokensIn:  outcome.TokensIn,
		TokensOut: outcome.TokensOut,
	}

	// Markdown format always writes the file since the file is the
	// output; other formats save it as a side artifact unless --no-save.
	if !req.NoSave || req.Format == FormatMarkdown {
		path, err := o.deps.Markdown.Write(ctx, req.OutputDir, report)
		switch {
		case err != nil && req.Format == FormatMarkdown:
			return Result{}, fmt.Errorf("write markdown report: %w", err)
		case err != nil:
			o.logWarn(ctx, "failed to write markdown report", map[string]any{"error": err.Error()})
		default:
			result.ReportPath = path
		}
	}

	switch req.Format {
	case FormatJSON:
		if err := o.deps.JSON.Write(report); err != nil {
			return Result{}, fmt.Errorf("write json report: %w", err)
		}
	case FormatMarkdown:
		// The saved file is the output; the CLI prints its path.
	default:
		if err := o.deps.Terminal.Render(report); err != nil {
			return Result{}, fmt.Errorf("render report: %w", err)
		}
	}

	if o.deps.Store != nil && !req.NoSave {
		record := domain.ReviewRecord{
			RevisionID:  revision.ID,
			Title:       revision.Title,
			Source:      req.Source,
			Model:       outcome.Model,
			Summary:     strings.Join(outcome.Result.Summary, "\n"),
			RawResponse: outcome.Result.RawResponse,
			ReportPath:  result.ReportPath,
			CreatedAt:   o.deps.Clock(),
		}
		id, err := o.deps.Store.SaveReview(ctx, record)
		if err != nil {
			o.logWarn(ctx, "failed to save review history", map[string]any{"error": err.Error()})
		} else {
			result.RecordID = id
		}
	}

	o.logInfo(ctx, "review complete", map[string]any{
		"revision":         displayName(revision),
		"model":            outcome.Model,
		"requestedChanges": len(outcome.Result.RequestedChanges),
		"tokensIn":         outcome.TokensIn,
		"tokensOut":        outcome.TokensOut,
	})

	return result, nil
}

// annotate pairs each requested change with the code context recovered
// from the diff. A failed lookup degrades to the bare description.
func (o *Orchestrator) annotate(ctx context.Context, rawDiff string, changes []domain.RequestedChange, contextLines int) []domain.AnnotatedChange {
	if len(changes) == 0 {
		return nil
	}

	annotated := make([]domain.AnnotatedChange, 0, len(changes))
	for _, change := range changes {
		snippet, ok := diff.ExtractSnippet(rawDiff, change.Path, change.Line, contextLines)
		if !ok {
			o.logDebug(ctx, "no snippet for requested change", map[string]any{
				"path": change.Path,
				"line": change.Line,
			})
		}
		annotated = append(annotated, domain.AnnotatedChange{
			RequestedChange: change,
			Snippet:         snippet,
			HasSnippet:      ok,
		})
	}
	return annotated
}

func validateRequest(req Request) error {
	switch req.Format {
	case "", FormatTerminal, FormatMarkdown, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", req.Format)
	}
	if req.ContextLines < 0 {
		return fmt.Errorf("context lines must be non-negative, got %d", req.ContextLines)
	}
	return nil
}

// seedIdentity picks the stable identity for seed derivation: the diff
// PHID when reviewing a revision, the local branch otherwise.
func seedIdentity(revision domain.Revision) string {
	if revision.DiffPHID != "" {
		return revision.DiffPHID
	}
	if name := revision.Name(); name != "" {
		return name
	}
	return "local:" + revision.Title
}

func displayName(revision domain.Revision) string {
	if name := revision.Name(); name != "" {
		return name
	}
	return revision.Title
}

func (o *Orchestrator) logDebug(ctx context.Context, message string, fields map[string]any) {
	if o.deps.Logger != nil {
		o.deps.Logger.Debug(ctx, message, fields)
	}
}

func (o *Orchestrator) logInfo(ctx context.Context, message string, fields map[string]any) {
	if o.deps.Logger != nil {
		o.deps.Logger.Info(ctx, message, fields)
	}
}

func (o *Orchestrator) logWarn(ctx context.Context, message string, fields map[string]any) {
	if o.deps.Logger != nil {
		o.deps.Logger.Warn(ctx, message, fields)
	}
}
