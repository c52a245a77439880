// Package timegrid converts between minutes of the day, vertical pixel offsets on a day
// timeline, display strings and absolute timestamps. Every function is total: out of range
// input is clamped or wrapped, never rejected.
package timegrid

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultHourHeight is the number of pixels one hour occupies on the timeline.
	DefaultHourHeight = 80
	// DefaultSnap is the snap increment in minutes.
	DefaultSnap = 15
	// HoursPerDay is the number of hour rows on the timeline.
	HoursPerDay = 24
	// MinutesPerDay is 24 hours * 60 minutes.
	MinutesPerDay = HoursPerDay * 60
	// LastMinute is the latest minute of the day a start time may take.
	LastMinute = MinutesPerDay - 1
)

// Grid is the scale of one calendar surface. Surfaces may use different hour heights;
// each is an independent instance of the same math.
type Grid struct {
	HourHeight float64 // pixels per hour
	Snap       int     // minutes
}

// New returns a Grid, replacing non-positive values with the defaults.
func New(hourHeight float64, snap int) Grid {
	if hourHeight <= 0 {
		hourHeight = DefaultHourHeight
	}
	if snap <= 0 {
		snap = DefaultSnap
	}
	return Grid{HourHeight: hourHeight, Snap: snap}
}

// Default returns the grid with the default hour height and snap.
func Default() Grid {
	return New(DefaultHourHeight, DefaultSnap)
}

func (g Grid) normalized() Grid {
	if g.HourHeight <= 0 || g.Snap <= 0 {
		return New(g.HourHeight, g.Snap)
	}
	return g
}

// MinutesToY returns the pixel offset of a minute of the day.
func (g Grid) MinutesToY(minutes float64) float64 {
	g = g.normalized()
	return minutes / 60 * g.HourHeight
}

// YToMinutes returns the minute of the day at pixel offset y, clamped to [0, 1439].
func (g Grid) YToMinutes(y float64) float64 {
	m := g.DeltaMinutes(y)
	if math.IsNaN(m) {
		return 0
	}
	return math.Max(0, math.Min(m, LastMinute))
}

// DeltaMinutes converts a signed pixel distance into a signed number of minutes.
func (g Grid) DeltaMinutes(dy float64) float64 {
	g = g.normalized()
	return dy / g.HourHeight * 60
}

// SnapMinutes rounds minutes to the nearest multiple of the snap increment,
// with halves rounded away from zero. NaN snaps to 0 and magnitudes beyond
// math.MaxInt32 saturate at the largest multiple that fits.
func (g Grid) SnapMinutes(minutes float64) int {
	g = g.normalized()
	if math.IsNaN(minutes) {
		return 0
	}
	limit := float64(math.MaxInt32 / g.Snap)
	steps := math.Max(-limit, math.Min(limit, math.Round(minutes/float64(g.Snap))))
	return int(steps) * g.Snap
}

// TimelineHeight returns the pixel height of a full day.
func (g Grid) TimelineHeight() float64 {
	g = g.normalized()
	return g.HourHeight * HoursPerDay
}

// HourLabels returns the labels of the 24 hour rows ("00.00" to "23.00").
func HourLabels() []string {
	labels := make([]string, 0, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		labels = append(labels, MinutesToTimeString(h*60))
	}
	return labels
}

// MinutesToTimeString renders minutes of the day as zero-padded "HH.MM".
// Values outside a day wrap around midnight.
func MinutesToTimeString(minutes int) string {
	m := ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d.%02d", m/60, m%60)
}

// DurationLabel renders a duration preview such as "45m".
func DurationLabel(minutes int) string {
	return fmt.Sprintf("%dm", minutes)
}

// TimestampToMinutes returns the local hour*60+minute of t.
func TimestampToMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// MinutesToTimestamp returns the instant on ref's calendar day at the given minute of the day,
// with seconds and sub-seconds zeroed. Minutes are clamped to [0, 1439] so the result stays on
// the same day.
func MinutesToTimestamp(minutes int, ref time.Time) time.Time {
	minutes = ClampMinutes(minutes, 0, LastMinute)
	return time.Date(ref.Year(), ref.Month(), ref.Day(), minutes/60, minutes%60, 0, 0, ref.Location())
}

// ClampMinutes limits m to [lo, hi]. When hi < lo, lo wins.
func ClampMinutes(m, lo, hi int) int {
	if m > hi {
		m = hi
	}
	if m < lo {
		m = lo
	}
	return m
}
