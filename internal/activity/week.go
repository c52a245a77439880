package activity

import (
	"fmt"
	"sort"
	"time"
)

// Week groups scheduled activities into the seven days starting on a Monday.
type Week struct {
	StartDate time.Time      // Monday of the week
	Days      [7][]*Activity // Monday (0) through Sunday (6), each sorted by start time
}

// NewWeek distributes activities to their start day. Activities without a start time or
// outside the week are ignored.
func NewWeek(weekStart time.Time, activities []*Activity) *Week {
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
	w := &Week{StartDate: start}
	for _, a := range activities {
		if a == nil || !a.HasStart() {
			continue
		}
		if i := w.DayIndex(a.StartTime); i >= 0 {
			w.Days[i] = append(w.Days[i], a)
		}
	}
	for i := range w.Days {
		day := w.Days[i]
		sort.SliceStable(day, func(x, y int) bool { return day[x].StartTime.Before(day[y].StartTime) })
	}
	return w
}

// DayIndex returns the weekday index (0=Monday) of t, or -1 when t is outside the week.
func (w *Week) DayIndex(t time.Time) int {
	t = t.In(w.StartDate.Location())
	for i := 0; i < 7; i++ {
		d := w.Date(i)
		if t.Year() == d.Year() && t.YearDay() == d.YearDay() {
			return i
		}
	}
	return -1
}

// Date returns the date of the given weekday (0=Monday).
func (w *Week) Date(weekday int) time.Time {
	return w.StartDate.AddDate(0, 0, weekday)
}

// EndDate returns the Sunday of the week.
func (w *Week) EndDate() time.Time {
	return w.Date(6)
}

// All returns every activity in the week ordered by day and start time.
func (w *Week) All() []*Activity {
	var result []*Activity
	for _, day := range w.Days {
		result = append(result, day...)
	}
	return result
}

// WeekStats holds aggregated scheduled minutes for a week.
type WeekStats struct {
	MinutesByType map[Type]int
	DayMinutes    [7]int
	TotalBlocks   int
}

// TotalMinutes returns the scheduled minutes across all types.
func (s WeekStats) TotalMinutes() int {
	total := 0
	for _, m := range s.MinutesByType {
		total += m
	}
	return total
}

// Percent returns the share of scheduled time spent on t.
func (s WeekStats) Percent(t Type) int {
	total := s.TotalMinutes()
	if total == 0 {
		return 0
	}
	return s.MinutesByType[t] * 100 / total
}

// BusiestDay returns the weekday (0=Monday) with the most scheduled minutes and the minutes.
func (s WeekStats) BusiestDay() (weekday int, minutes int) {
	weekday = -1
	for i, m := range s.DayMinutes {
		if m > minutes {
			minutes = m
			weekday = i
		}
	}
	return weekday, minutes
}

// Stats calculates statistics for the week.
func (w *Week) Stats() WeekStats {
	stats := WeekStats{MinutesByType: make(map[Type]int, len(Types))}
	for i, day := range w.Days {
		for _, a := range day {
			stats.MinutesByType[a.Type] += a.Duration
			stats.DayMinutes[i] += a.Duration
			stats.TotalBlocks++
		}
	}
	return stats
}

// FormatMinutes renders a minute count as "1h30m", "45m" or "2h".
func FormatMinutes(m int) string {
	h, rest := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, rest)
	}
}

// WeekdayName returns the name of the weekday (0=Monday).
func WeekdayName(weekday int) string {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}

// WeekdayShortName returns the short name of the weekday (0=Monday).
func WeekdayShortName(weekday int) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}
