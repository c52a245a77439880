package interaction

import (
	"math"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

// Preview is the transient rendering state of the gesture in progress.
// It never reflects persisted data.
type Preview struct {
	State        State
	ActivityID   string
	Offset       float64 // vertical displacement of a dragged block, pixels
	DeltaHeight  float64 // growth of a resized block, pixels
	StartMinutes int     // candidate start
	Duration     int     // candidate duration
	Label        string  // "HH.MM" while dragging, "45m" while resizing
}

// Active reports whether a gesture is in progress.
func (p Preview) Active() bool {
	return p.State != Idle
}

// Preview returns the current preview values.
func (c *Controller) Preview() Preview {
	switch c.state {
	case Dragging:
		start := c.dragMinutes()
		return Preview{
			State:        Dragging,
			ActivityID:   c.act.ID,
			Offset:       c.currentY - c.originY,
			StartMinutes: start,
			Duration:     c.act.Duration,
			Label:        timegrid.MinutesToTimeString(start),
		}
	case Resizing:
		d := c.resizeMinutes()
		return Preview{
			State:        Resizing,
			ActivityID:   c.act.ID,
			DeltaHeight:  c.currentY - c.originY,
			StartMinutes: timegrid.TimestampToMinutes(c.act.StartTime),
			Duration:     d,
			Label:        timegrid.DurationLabel(d),
		}
	default:
		return Preview{}
	}
}

// Block is the vertical layout of an activity block on the timeline.
type Block struct {
	Top    float64
	Height float64
}

// Bottom returns the pixel offset of the block's lower edge.
func (b Block) Bottom() float64 {
	return b.Top + b.Height
}

// Block lays out a on the timeline, following the pointer if a is being dragged or resized.
// Blocks that run past midnight are not clipped.
func (c *Controller) Block(a activity.Activity) Block {
	g := c.cfg.Grid
	b := Block{
		Top:    g.MinutesToY(float64(timegrid.TimestampToMinutes(a.StartTime))),
		Height: g.MinutesToY(float64(a.Duration)),
	}
	if c.state != Idle && c.act.ID == a.ID {
		dy := c.currentY - c.originY
		switch c.state {
		case Dragging:
			b.Top += dy
		case Resizing:
			b.Height += dy
		}
	}
	b.Height = math.Max(b.Height, c.cfg.MinBlockHeight)
	return b
}

// HitHandle reports whether y is within handle pixels of the block's bottom edge.
func (b Block) HitHandle(y, handle float64) bool {
	return y >= b.Bottom()-handle && y <= b.Bottom()
}

// Contains reports whether y falls inside the block.
func (b Block) Contains(y float64) bool {
	return y >= b.Top && y <= b.Bottom()
}

// SlotMinutes returns the start minute of the empty slot at pointer position y: the hour row
// plus the quarter within it.
func SlotMinutes(g timegrid.Grid, y float64) int {
	m := int(g.YToMinutes(y))
	return (m / 60 * 60) + (m%60)/15*15
}
