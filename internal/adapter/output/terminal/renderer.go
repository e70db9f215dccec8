// Package terminal renders completed review reports for interactive
// display.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/phabreview/phabreview/internal/ansi"
	"github.com/phabreview/phabreview/internal/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	locationStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Renderer writes a review report as styled text. When color is off,
// styling is skipped entirely and the ANSI codes embedded in the change
// summary are stripped, so piped output stays clean.
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer constructs a renderer targeting out. Callers decide color
// from the destination, typically via review.IsOutputTerminal.
func NewRenderer(out io.Writer, color bool) *Renderer {
	return &Renderer{out: out, color: color}
}

// Render writes the full report: headline, change summary, review
// summary, then each requested change with its code context.
func (r *Renderer) Render(report domain.Report) error {
	var b strings.Builder

	r.writeHeadline(&b, report)
	r.writeChangeSummary(&b, report.DiffSummary)
	r.writeReviewSummary(&b, report.Result.Summary)
	r.writeRequestedChanges(&b, report.Annotated)

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) writeHeadline(b *strings.Builder, report domain.Report) {
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
	b.WriteString(r.styled(titleStyle, headline))
	b.WriteString("\n")

	var meta []string
	if report.Revision.Status != "" {
		meta = append(meta, "Status: "+report.Revision.Status)
	}
	if report.Model != "" {
		meta = append(meta, "Model: "+report.Model)
	}
	if len(meta) > 0 {
		b.WriteString(r.styled(metaStyle, strings.Join(meta, "  |  ")))
		b.WriteString("\n")
	}
	if report.Revision.URI != "" {
		b.WriteString(r.styled(metaStyle, report.Revision.URI))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (r *Renderer) writeChangeSummary(b *strings.Builder, summary string) {
	b.WriteString(r.styled(sectionStyle, "Change Summary"))
	b.WriteString("\n\n")

	if strings.TrimSpace(ansi.Strip(summary)) == "" {
		b.WriteString(r.styled(noticeStyle, "No file changes detected."))
		b.WriteString("\n\n")
		return
	}

	if r.color {
		b.WriteString(summary)
	} else {
		b.WriteString(ansi.Strip(summary))
	}
	if !strings.HasSuffix(summary, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (r *Renderer) writeReviewSummary(b *strings.Builder, lines []string) {
	b.WriteString(r.styled(sectionStyle, "Review Summary"))
	b.WriteString("\n\n")

	if len(lines) == 0 {
		b.WriteString(r.styled(noticeStyle, "The model returned no summary."))
		b.WriteString("\n\n")
		return
	}
	for _, line := range lines {
		b.WriteString("  - ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (r *Renderer) writeRequestedChanges(b *strings.Builder, changes []domain.AnnotatedChange) {
	b.WriteString(r.styled(sectionStyle, "Requested Changes"))
	b.WriteString("\n\n")

	if len(changes) == 0 {
		b.WriteString(r.styled(noticeStyle, "No changes requested."))
		b.WriteString("\n")
		return
	}

	for i, change := range changes {
		location := change.Path
		if change.Line != "" {
			location = fmt.Sprintf("%s:%s", change.Path, change.Line)
		}
		b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, r.styled(locationStyle, location)))

		for _, line := range strings.Split(strings.TrimRight(change.Change, "\n"), "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}

		// Snippet lines already carry the marker column and line
		// numbers from extraction; only indentation is added here.
		if change.HasSnippet {
			b.WriteString("\n")
			for _, line := range strings.Split(strings.TrimRight(change.Snippet, "\n"), "\n") {
				b.WriteString("    ")
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) styled(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}
