// Package ansi holds the escape codes shared by the change summary and
// the terminal renderer. The codes are plain string constants so the
// summary embedded in prompts and reports is byte-stable regardless of
// where it is ultimately written.
package ansi

import "regexp"

const (
	Title   = "\x1b[96m"
	Section = "\x1b[95m"
	Add     = "\x1b[32m"
	Remove  = "\x1b[31m"
	Notice  = "\x1b[93m"
	Reset   = "\x1b[0m"
)

var escapeRe = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Wrap surrounds text with a color code and a reset.
func Wrap(color, text string) string {
	return color + text + Reset
}

// Strip removes every color escape, for plain-text destinations.
func Strip(text string) string {
	return escapeRe.ReplaceAllString(text, "")
}
