package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phabreview/phabreview/internal/ansi"
	"github.com/phabreview/phabreview/internal/domain"
)

var (
	fileHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)
)

// nullDevice is the post-image path git emits for deleted files.
const nullDevice = "/dev/null"

const noNewlineMarker = `\ No newline at end of file`

// emptyPlaceholder stands in for blank changed lines in summaries.
const emptyPlaceholder = "(empty)"

// Parse walks raw unified-diff text and returns one entry per added or
// removed line, in encounter order across all files, together with a
// colorized per-file summary of the grouped changes. Line numbers are
// old-file numbers for removals and new-file numbers for additions.
func Parse(raw string) ([]domain.ChangeEntry, string) {
	perFile := make(map[string][]domain.ChangeEntry)
	var order []string
	var entries []domain.ChangeEntry

	currentPath := ""
	oldLine, newLine := 0, 0

	for _, line := range strings.Split(raw, "\n") {
		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			path := m[2]
			if path == nullDevice {
				path = m[1]
			}
			if _, seen := perFile[path]; !seen {
				perFile[path] = nil
				order = append(order, path)
			}
			currentPath = path
			oldLine, newLine = 0, 0
			continue
		}
		if currentPath == "" {
			continue
		}
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			oldLine = atoi(m[1])
			newLine = atoi(m[2])
			continue
		}
		if line == "" || line == noNewlineMarker {
			continue
		}

		switch line[0] {
		case '-':
			// Change lines before any hunk header are malformed; drop them.
			if oldLine == 0 {
				continue
			}
			entry := newEntry(currentPath, oldLine, domain.ChangeRemove, line)
			perFile[currentPath] = append(perFile[currentPath], entry)
			entries = append(entries, entry)
			oldLine++
		case '+':
			if newLine == 0 {
				continue
			}
			entry := newEntry(currentPath, newLine, domain.ChangeAdd, line)
			perFile[currentPath] = append(perFile[currentPath], entry)
			entries = append(entries, entry)
			newLine++
		default:
			if oldLine > 0 {
				oldLine++
			}
			if newLine > 0 {
				newLine++
			}
		}
	}

	return entries, summarize(order, perFile)
}

func newEntry(path string, line int, t domain.ChangeType, raw string) domain.ChangeEntry {
	content := strings.TrimSpace(raw[1:])
	if content == "" {
		content = emptyPlaceholder
	}
	return domain.ChangeEntry{Path: path, Line: line, Type: t, Content: content}
}

// summarize renders one section per file that produced entries, in
// file-discovery order, with one labelled block per grouped change.
func summarize(order []string, perFile map[string][]domain.ChangeEntry) string {
	var lines []string
	for _, path := range order {
		fileEntries := perFile[path]
		if len(fileEntries) == 0 {
			continue
		}
		lines = append(lines, ansi.Wrap(ansi.Title, path))
		for _, grp := range Group(fileEntries) {
			label := fmt.Sprintf("line %d", grp.StartLine)
			if grp.StartLine != grp.EndLine {
				label = fmt.Sprintf("lines %d-%d", grp.StartLine, grp.EndLine)
			}
			color := ansi.Add
			if grp.Type == domain.ChangeRemove {
				color = ansi.Remove
			}
			lines = append(lines, fmt.Sprintf("  - %s %s:",
				ansi.Wrap(color, grp.Type.Label()), ansi.Wrap(ansi.Notice, label)))
			for _, content := range grp.Content {
				lines = append(lines, "      "+content)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
