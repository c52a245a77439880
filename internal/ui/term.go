package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/slotify/internal/activity"
)

// Color definitions for consistent styling across the UI.
var (
	// Tasks: bold cyan for focus
	colorTask = color.New(color.FgCyan, color.Bold)

	// Events: magenta, they usually involve other people
	colorEvent = color.New(color.FgMagenta)

	// Habits: green for routine
	colorHabit = color.New(color.FgGreen)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Stats: yellow to make totals pop
	colorStats = color.New(color.FgYellow)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)

	// Errors and destructive actions
	colorDanger = color.New(color.FgRed)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatType formats text in the color of an activity type.
func formatType(t activity.Type, s string) string {
	switch t {
	case activity.TypeEvent:
		return colorEvent.Sprint(s)
	case activity.TypeHabit:
		return colorHabit.Sprint(s)
	default:
		return colorTask.Sprint(s)
	}
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatStats formats text for statistics.
func formatStats(s string) string {
	return colorStats.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatDanger formats text for errors and deletions.
func formatDanger(s string) string {
	return colorDanger.Sprint(s)
}
