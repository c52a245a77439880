package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlay draws a rendered box centered on top of base. base is padded or cut to
// width x height first, so the grid stays visible around the box.
func overlay(base, box string, width, height int) string {
	if width <= 0 || height <= 0 || box == "" {
		return base
	}

	baseLines := normalizeLines(base, width, height)
	boxLines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	boxW := 0
	for _, line := range boxLines {
		boxW = max(boxW, lipgloss.Width(line))
	}
	boxW = min(boxW, width)
	if len(boxLines) > height {
		boxLines = boxLines[:height]
	}

	top := max(0, (height-len(boxLines))/2)
	left := max(0, (width-boxW)/2)

	for i, line := range boxLines {
		row := top + i
		if w := lipgloss.Width(line); w > boxW {
			line = ansi.Cut(line, 0, boxW)
		} else if w < boxW {
			line += strings.Repeat(" ", boxW-w)
		}
		under := baseLines[row]
		baseLines[row] = ansi.Cut(under, 0, left) + ansi.ResetStyle + line + ansi.ResetStyle + ansi.Cut(under, left+boxW, width)
	}
	return strings.Join(baseLines, "\n")
}

// normalizeLines splits s into exactly height lines of exactly width cells.
func normalizeLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	for i, line := range lines {
		w := lipgloss.Width(line)
		switch {
		case w > width:
			lines[i] = ansi.Cut(line, 0, width)
		case w < width:
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return lines
}
