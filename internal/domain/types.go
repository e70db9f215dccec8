package domain

import "time"

// ChangeType distinguishes added from removed diff lines.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeRemove ChangeType = "remove"
)

// Label returns the display form used in change summaries.
func (t ChangeType) Label() string {
	if t == ChangeRemove {
		return "Removed"
	}
	return "Added"
}

// Review sources.
const (
	SourcePhabricator = "phabricator"
	SourceLocal       = "local"
)

// ChangeEntry is a single added or removed line from a unified diff.
// Line is 1-based: the old-file number for removals, the new-file
// number for additions.
type ChangeEntry struct {
	Path    string
	Line    int
	Type    ChangeType
	Content string
}

// GroupedChange is a maximal run of consecutive entries sharing a
// change type, where each line number is exactly one more than the
// previous. Content holds one string per grouped entry, in order.
type GroupedChange struct {
	StartLine int
	EndLine   int
	Type      ChangeType
	Content   []string
}

// RequestedChange is a single issue raised by the review model. Line
// stays textual because the model may send either a number or a
// "<start>-<end>" range.
type RequestedChange struct {
	Path   string `json:"path"`
	Line   string `json:"line"`
	Change string `json:"change"`
}

// ReviewResult is the structured feedback returned by the review model.
// RawResponse retains the untouched model output for persistence.
type ReviewResult struct {
	Summary          []string          `json:"summary"`
	RequestedChanges []RequestedChange `json:"requested_changes"`
	RawResponse      string            `json:"-"`
}

// Revision is the metadata for a Phabricator revision. ID is the bare
// numeric identifier without the D prefix.
type Revision struct {
	ID       string
	Title    string
	Status   string
	URI      string
	Summary  string
	DiffPHID string
}

// Name returns the canonical display identifier, e.g. "D12345".
func (r Revision) Name() string {
	if r.ID == "" {
		return ""
	}
	return "D" + r.ID
}

// AnnotatedChange pairs a requested change with the code context
// recovered from the diff, when available.
type AnnotatedChange struct {
	RequestedChange
	Snippet    string
	HasSnippet bool
}

// Report is everything the renderers need for one completed review.
type Report struct {
	Revision    Revision
	Source      string
	Model       string
	DiffSummary string
	Result      ReviewResult
	Annotated   []AnnotatedChange
	GeneratedAt time.Time
}

// ReviewRecord is one persisted review run.
type ReviewRecord struct {
	ID          int64
	RevisionID  string
	Title       string
	Source      string
	Model       string
	Summary     string
	RawResponse string
	ReportPath  string
	CreatedAt   time.Time
}
