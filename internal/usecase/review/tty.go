package review

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsInteractive reports whether stdin is a terminal. It is false in
// CI, when input is piped, or when running as a background process.
func IsInteractive() bool {
	return IsTTY(os.Stdin.Fd())
}

// IsOutputTerminal reports whether stdout is a terminal. The CLI uses
// it to decide whether reports get color.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
