package tui

import (
	"math"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/interaction"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

const (
	headerLines    = 2 // title, column headers
	footerLines    = 2 // status, key hints
	gutterWidth    = 6 // "09.00 "
	backlogWidth   = 32
	minBacklogGrid = 60 // narrower terminals hide the backlog panel
	minWidth       = 40
	minHeight      = 10
)

// Layout is the screen geometry of the planner for one terminal size.
type Layout struct {
	Width, Height int
	RowsPerHour   int
	Backlog       int // backlog panel width, 0 when hidden
	Columns       int // 1 for the day surface, 7 for the week surface
	ColWidth      int
	GridLeft      int // first column of the grid, after the gutter
	GridTop       int
	VisibleRows   int
}

// NewLayout computes the geometry for a terminal of width x height.
func NewLayout(width, height, rowsPerHour, columns int) Layout {
	l := Layout{Width: width, Height: height, RowsPerHour: max(1, rowsPerHour), Columns: max(1, columns)}
	if width >= minBacklogGrid+backlogWidth {
		l.Backlog = backlogWidth
	}
	l.GridLeft = l.Backlog + gutterWidth
	l.ColWidth = max(1, (width-l.GridLeft)/l.Columns)
	l.GridTop = headerLines
	l.VisibleRows = max(1, height-headerLines-footerLines)
	return l
}

// TooSmall reports whether the terminal cannot fit the planner.
func (l Layout) TooSmall() bool {
	return l.Width < minWidth || l.Height < minHeight
}

// TotalRows is the number of grid rows covering a day.
func (l Layout) TotalRows() int {
	return 24 * l.RowsPerHour
}

// MaxScroll is the largest first visible row.
func (l Layout) MaxScroll() int {
	return max(0, l.TotalRows()-l.VisibleRows)
}

// RowMinutes is the number of minutes one grid row covers.
func (l Layout) RowMinutes() int {
	return 60 / l.RowsPerHour
}

// RowToY converts a grid row to timeline pixels on grid g.
func (l Layout) RowToY(g timegrid.Grid, row int) float64 {
	return float64(row) * g.HourHeight / float64(l.RowsPerHour)
}

// YToRow converts timeline pixels on grid g to the grid row containing them.
func (l Layout) YToRow(g timegrid.Grid, y float64) int {
	return int(math.Floor(y * float64(l.RowsPerHour) / g.HourHeight))
}

// Hit is what a screen cell points at.
type Hit struct {
	InGrid    bool
	InBacklog bool
	Column    int // grid column, 0 to Columns-1
	Row       int // grid row including scroll, or backlog line
}

// HitTest resolves screen cell (x, y) with the grid scrolled by scroll rows.
func (l Layout) HitTest(x, y, scroll int) Hit {
	switch {
	case l.Backlog > 0 && x < l.Backlog && y >= l.GridTop && y < l.GridTop+l.VisibleRows:
		return Hit{InBacklog: true, Row: y - l.GridTop}
	case x >= l.GridLeft && y >= l.GridTop && y < l.GridTop+l.VisibleRows:
		col := (x - l.GridLeft) / l.ColWidth
		if col >= l.Columns {
			return Hit{}
		}
		return Hit{InGrid: true, Column: col, Row: y - l.GridTop + scroll}
	default:
		return Hit{}
	}
}

// Span is the rows a block covers: [Top, Bottom).
type Span struct {
	Top, Bottom int
}

// Rows returns the number of rows of the span.
func (s Span) Rows() int {
	return s.Bottom - s.Top
}

// Contains reports whether row falls on the span.
func (s Span) Contains(row int) bool {
	return row >= s.Top && row < s.Bottom
}

// Handle reports whether row is the resize handle: the last row of a block taller than one row.
func (s Span) Handle(row int) bool {
	return s.Rows() > 1 && row == s.Bottom-1
}

// SpanOf converts a block in pixels to grid rows. Every block gets at least one row.
func (l Layout) SpanOf(g timegrid.Grid, b interaction.Block) Span {
	top := l.YToRow(g, b.Top)
	bottom := int(math.Ceil(b.Bottom() * float64(l.RowsPerHour) / g.HourHeight))
	if bottom <= top {
		bottom = top + 1
	}
	return Span{Top: top, Bottom: bottom}
}

// placed is an activity with the rows it covers on the grid.
type placed struct {
	Activity activity.Activity
	Span     Span
}

// place lays out activities on one grid column, following the controller for a block being
// dragged or resized.
func (l Layout) place(c *interaction.Controller, acts []activity.Activity) []placed {
	g := c.Config().Grid
	out := make([]placed, 0, len(acts))
	for _, a := range acts {
		if !a.HasStart() {
			continue
		}
		out = append(out, placed{Activity: a, Span: l.SpanOf(g, c.Block(a))})
	}
	return out
}

// blockAt returns the topmost block covering row. Later blocks are drawn over earlier ones.
func blockAt(blocks []placed, row int) (placed, bool) {
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].Span.Contains(row) {
			return blocks[i], true
		}
	}
	return placed{}, false
}
