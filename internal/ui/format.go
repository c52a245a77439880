package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

// shortIDLen is how many id characters listings show. Any unique prefix is accepted back.
const shortIDLen = 8

// PrintOpts configures activity printing behavior.
type PrintOpts struct {
	Verbose       bool // Show descriptions and full titles
	ShowDuration  bool // Show duration column
	MaxTitleWidth int  // Maximum title width (0 = auto)
}

// CalcMaxTitleWidth calculates the maximum title width based on options.
func (o PrintOpts) CalcMaxTitleWidth(defaultWidth int) int {
	if o.MaxTitleWidth > 0 {
		return o.MaxTitleWidth
	}
	if !o.Verbose {
		return defaultWidth
	}
	// Base: "  ○ xxxxxxxx  HH.MM-HH.MM  [T]  " = ~34 chars
	// Duration suffix: "  1h30m" = ~8 chars
	overhead := 34
	if o.ShowDuration {
		overhead += 8
	}
	available := termWidth() - overhead
	if available > defaultWidth {
		return available
	}
	return defaultWidth
}

// ShortID returns the prefix of id shown in listings.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// statusSymbol returns the status indicator for an activity.
func statusSymbol(s activity.Status) string {
	switch s {
	case activity.StatusBacklog:
		return "·"
	case activity.StatusScheduled:
		return "○"
	case activity.StatusDone:
		return "✓"
	case activity.StatusSkipped:
		return "✗"
	default:
		return "?"
	}
}

// typeTag returns the one-letter type marker, e.g. "[T]".
func typeTag(t activity.Type) string {
	if t == "" {
		return "[?]"
	}
	return "[" + strings.ToUpper(string(t)[:1]) + "]"
}

// TimeRange renders "HH.MM-HH.MM" for an activity with a start time. Blocks that run past
// midnight get a "+1" marker on the end time.
func TimeRange(a activity.Activity) string {
	if !a.HasStart() {
		return strings.Repeat(" ", 11)
	}
	start := timegrid.TimestampToMinutes(a.StartTime)
	s := timegrid.MinutesToTimeString(start) + "-" + timegrid.MinutesToTimeString(start+a.Duration)
	if a.CrossesMidnight() {
		s += "+1"
	}
	return s
}

// truncate shortens s to width display cells.
func truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// PrintActivityRow prints a single activity row with consistent formatting.
func PrintActivityRow(w io.Writer, a activity.Activity, opts PrintOpts, maxTitleWidth int) {
	title := truncate(a.Title, maxTitleWidth)
	pad := maxTitleWidth - ansi.StringWidth(title)
	if pad < 0 || !opts.ShowDuration {
		pad = 0
	}

	line := fmt.Sprintf("  %s %s  %s  %s  %s%s",
		statusSymbol(a.Status),
		formatMuted(ShortID(a.ID)),
		TimeRange(a),
		formatType(a.Type, typeTag(a.Type)),
		title,
		strings.Repeat(" ", pad),
	)
	if opts.ShowDuration {
		line += "  " + formatMuted(activity.FormatMinutes(a.Duration))
	}
	_, _ = fmt.Fprintln(w, line)

	if opts.Verbose && a.Description != "" {
		_, _ = fmt.Fprintf(w, "      %s\n", formatMuted(a.Description))
	}
}

// PrintDay prints a day header followed by its activities.
func PrintDay(w io.Writer, header string, acts []activity.Activity, opts PrintOpts) {
	_, _ = fmt.Fprintf(w, "  %s\n", formatHeader(header))
	if len(acts) == 0 {
		_, _ = fmt.Fprintf(w, "    %s\n", formatMuted("nothing scheduled"))
		return
	}
	width := opts.CalcMaxTitleWidth(40)
	for _, a := range acts {
		PrintActivityRow(w, a, opts, width)
	}
}

// PrintWeekStats prints the per-type totals of a week.
func PrintWeekStats(w io.Writer, stats activity.WeekStats) {
	parts := make([]string, 0, len(activity.Types))
	for _, t := range activity.Types {
		m := stats.MinutesByType[t]
		if m == 0 {
			continue
		}
		label := strings.ToUpper(string(t)[:1]) + string(t)[1:]
		parts = append(parts, formatType(t, fmt.Sprintf("%s: %s (%d%%)", label, activity.FormatMinutes(m), stats.Percent(t))))
	}
	parts = append(parts, fmt.Sprintf("Blocks: %d", stats.TotalBlocks))
	_, _ = fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  |  "))

	if day, minutes := stats.BusiestDay(); day >= 0 {
		_, _ = fmt.Fprintf(w, "  Busiest day: %s (%s)\n", activity.WeekdayName(day), formatStats(activity.FormatMinutes(minutes)))
	}
	if total := stats.TotalMinutes(); total > 0 {
		_, _ = fmt.Fprintf(w, "  Mix: %s\n", TypeBar(stats, 24))
	}
}

// TypeBar renders the share of each type as a bar of width cells.
func TypeBar(stats activity.WeekStats, width int) string {
	total := stats.TotalMinutes()
	if total == 0 {
		return "[" + strings.Repeat("░", width) + "]"
	}
	cells := make([]int, len(activity.Types))
	used, last := 0, 0
	for i, t := range activity.Types {
		cells[i] = stats.MinutesByType[t] * width / total
		used += cells[i]
		if stats.MinutesByType[t] > 0 {
			last = i
		}
	}
	cells[last] += width - used

	var b strings.Builder
	b.WriteString("[")
	for i, t := range activity.Types {
		if cells[i] > 0 {
			b.WriteString(formatType(t, strings.Repeat("█", cells[i])))
		}
	}
	b.WriteString("]")
	return b.String()
}
