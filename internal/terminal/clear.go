// Package terminal holds small helpers for interactive output.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// IsInteractive reports whether f is attached to a terminal. Progress areas
// and prompts are skipped otherwise.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of f, or 80 when it is not a terminal.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// LinesFor returns how many rows textLength characters wrap onto at width,
// plus the empty row left under the cursor after Enter.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	n := (textLength + width - 1) / width
	if n < 1 {
		n = 1
	}
	return n + 1
}

// ClearPreviousLines erases a prompt and the answer typed after it.
func ClearPreviousLines(textLength int) {
	clearLines(os.Stdout, LinesFor(textLength, Width(os.Stdout)))
}

func clearLines(w io.Writer, n int) {
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
