// Package format provides text trimming helpers for ledger cells and
// terminal output.
package format

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Clip cuts s to at most max runes. Used for spreadsheet cells where the
// limit is a character count, not a display width.
func Clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Truncate shortens s to fit within maxWidth terminal columns, appending
// "..." when it cuts. Wide runes count as two columns.
func Truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	target := maxWidth - 3
	if target < 0 {
		target = 0
	}

	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > target {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	b.WriteString("...")
	return b.String()
}

// PadRight pads s with spaces to the target display width.
func PadRight(s string, targetWidth int) string {
	width := runewidth.StringWidth(s)
	if width >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-width)
}
