package diff

import "github.com/phabreview/phabreview/internal/domain"

// Group collapses entries into maximal runs of the same change type
// with consecutive line numbers. It is a streaming partition with no
// lookahead; concatenating the returned groups in order reproduces the
// input sequence.
func Group(entries []domain.ChangeEntry) []domain.GroupedChange {
	if len(entries) == 0 {
		return nil
	}

	var groups []domain.GroupedChange
	open := domain.GroupedChange{
		StartLine: entries[0].Line,
		EndLine:   entries[0].Line,
		Type:      entries[0].Type,
		Content:   []string{entries[0].Content},
	}

	for _, e := range entries[1:] {
		if e.Type == open.Type && e.Line == open.EndLine+1 {
			open.EndLine = e.Line
			open.Content = append(open.Content, e.Content)
			continue
		}
		groups = append(groups, open)
		open = domain.GroupedChange{
			StartLine: e.Line,
			EndLine:   e.Line,
			Type:      e.Type,
			Content:   []string{e.Content},
		}
	}

	return append(groups, open)
}
