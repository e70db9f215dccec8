package ansi_test

import (
	"testing"

	"github.com/phabreview/phabreview/internal/ansi"
)

func TestWrap(t *testing.T) {
	got := ansi.Wrap(ansi.Add, "Added")
	want := "\x1b[32mAdded\x1b[0m"
	if got != want {
		t.Errorf("Wrap() = %q, want %q", got, want)
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "no escapes here", "no escapes here"},
		{"single wrap", ansi.Wrap(ansi.Title, "file.py"), "file.py"},
		{"nested codes", ansi.Notice + "lines " + ansi.Remove + "1-3" + ansi.Reset, "lines 1-3"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ansi.Strip(tt.input); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
