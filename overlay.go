package main

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlayAt draws overlay on top of base with its top-left corner at cell
// (x, y). Overlay rows falling outside the base grid or past height are
// dropped; text to the right of the overlay keeps its column.
func overlayAt(base, overlay string, x, y, width, height int) string {
	lines := splitLines(base)
	box := splitLines(overlay)
	boxWidth := maxLineWidth(box)
	for i, boxLine := range box {
		row := y + i
		if row < 0 || row >= len(lines) || row >= height {
			continue
		}
		lines[row] = spliceLine(padRight(lines[row], width), padRight(boxLine, boxWidth), x, width)
	}
	return strings.Join(lines, "\n")
}

// spliceLine overwrites the cells of line starting at column x with mid.
// Widths are ANSI-aware so styled lines splice at the right columns.
func spliceLine(line, mid string, x, width int) string {
	left := ansi.Truncate(line, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(mid)
	right := ""
	if width > 0 {
		right = ansi.TruncateLeft(line, end, "")
		if gap := width - end - ansi.StringWidth(right); gap > 0 {
			right = strings.Repeat(" ", gap) + right
		}
	}
	return left + mid + right
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	widest := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

// padRight pads s with spaces up to width cells. Strings already at or past
// width come back unchanged.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncate clips s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
