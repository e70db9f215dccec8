// Package markdown persists review reports as Markdown files.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/phabreview/phabreview/internal/ansi"
	"github.com/phabreview/phabreview/internal/domain"
)

type clock func() string

// Writer renders completed reviews into Markdown report files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier used
// in filenames.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists the report under dir as <revision>-<timestamp>.md and
// returns the written path.
func (w *Writer) Write(ctx context.Context, dir string, report domain.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", reportBasename(report), w.now()))
	if err := os.WriteFile(path, []byte(buildContent(report)), 0o644); err != nil {
		return "", fmt.Errorf("write markdown report: %w", err)
	}
	return path, nil
}

func buildContent(report domain.Report) string {
	var builder strings.Builder
	caser := cases.Title(language.English)
	section := func(name string) {
		builder.WriteString("## ")
		builder.WriteString(caser.String(name))
		builder.WriteString("\n\n")
	}

	headline := report.Revision.Name()
	if report.Revision.Title != "" {
		if headline != "" {
			headline += ": "
		}
		headline += report.Revision.Title
	}
	if headline == "" {
		headline = "Code Review"
	}
	builder.WriteString("# ")
	builder.WriteString(headline)
	builder.WriteString("\n\n")

	if report.Source != "" {
		builder.WriteString(fmt.Sprintf("- Source: %s\n", caser.String(report.Source)))
	}
	if report.Revision.Status != "" {
		builder.WriteString(fmt.Sprintf("- Status: %s\n", report.Revision.Status))
	}
	if report.Model != "" {
		builder.WriteString(fmt.Sprintf("- Model: %s\n", report.Model))
	}
	if report.Revision.URI != "" {
		builder.WriteString(fmt.Sprintf("- URI: %s\n", report.Revision.URI))
	}
	if !report.GeneratedAt.IsZero() {
		builder.WriteString(fmt.Sprintf("- Generated: %s\n", report.GeneratedAt.UTC().Format(time.RFC3339)))
	}
	builder.WriteString("\n")

	section("change summary")
	summary := strings.TrimRight(ansi.Strip(report.DiffSummary), "\n")
	if strings.TrimSpace(summary) == "" {
		builder.WriteString("No file changes detected.\n\n")
	} else {
		builder.WriteString("```\n")
		builder.WriteString(summary)
		builder.WriteString("\n```\n\n")
	}

	section("review summary")
	if len(report.Result.Summary) == 0 {
		builder.WriteString("The model returned no summary.\n\n")
	} else {
		for _, line := range report.Result.Summary {
			builder.WriteString("- ")
			builder.WriteString(line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	section("requested changes")
	if len(report.Annotated) == 0 {
		builder.WriteString("No changes requested.\n")
		return builder.String()
	}

	for _, change := range report.Annotated {
		location := change.Path
		if change.Line != "" {
			location = fmt.Sprintf("%s:%s", change.Path, change.Line)
		}
		builder.WriteString("### ")
		builder.WriteString(location)
		builder.WriteString("\n\n")
		builder.WriteString(change.Change)
		builder.WriteString("\n\n")

		if change.HasSnippet {
			builder.WriteString("```\n")
			builder.WriteString(strings.TrimRight(change.Snippet, "\n"))
			builder.WriteString("\n```\n\n")
		}
	}

	return builder.String()
}

func reportBasename(report domain.Report) string {
	if name := report.Revision.Name(); name != "" {
		return name
	}
	return "local"
}
