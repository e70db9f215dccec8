package diff

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractSnippet rebuilds the post-change source around lineRef in the
// named file, padding the window by contextLines on each side. lineRef
// is a single line number or an inclusive "<start>-<end>" range. Lines
// inside the requested range carry a ">" marker, padding lines a space.
// The second return is false when the path never appears in the diff,
// the reference does not parse, or nothing falls inside the window;
// callers treat that as "no snippet", not as a failure.
func ExtractSnippet(raw, path, lineRef string, contextLines int) (string, bool) {
	start, end, ok := parseLineRef(lineRef)
	if !ok {
		return "", false
	}

	inTarget := false
	newLine := 0
	var collected []string

	for _, line := range strings.Split(raw, "\n") {
		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			p := m[2]
			if p == nullDevice {
				p = m[1]
			}
			inTarget = p == path
			continue
		}
		if !inTarget {
			continue
		}
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			newLine = atoi(m[2])
			continue
		}
		if line == "" {
			continue
		}

		switch line[0] {
		case '-':
			// Removed lines do not exist in the post-image.
		case ' ', '+':
			if newLine > 0 {
				if start-contextLines <= newLine && newLine <= end+contextLines {
					marker := " "
					if start <= newLine && newLine <= end {
						marker = ">"
					}
					collected = append(collected, fmt.Sprintf("%s %d: %s", marker, newLine, line[1:]))
				}
				newLine++
			}
		}
	}

	if len(collected) == 0 {
		return "", false
	}
	return strings.Join(collected, "\n"), true
}

// parseLineRef accepts "42" or "40-45". A reversed range such as "5-3"
// is rejected rather than swapped; the extractor reports no snippet
// for it.
func parseLineRef(ref string) (int, int, bool) {
	if i := strings.Index(ref, "-"); i >= 0 {
		start, err := strconv.Atoi(ref[:i])
		if err != nil {
			return 0, 0, false
		}
		end, err := strconv.Atoi(ref[i+1:])
		if err != nil {
			return 0, 0, false
		}
		if start > end {
			return 0, 0, false
		}
		return start, end, true
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, 0, false
	}
	return n, n, true
}
