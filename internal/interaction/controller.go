// Package interaction turns pointer gestures on a calendar surface into snapped reschedule and
// resize commits. A Controller holds the state of at most one gesture and never writes on its
// own: Release returns an Outcome that the surface applies to the store when it sees fit.
package interaction

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

// Gesture errors.
var (
	ErrGestureActive = errors.New("another gesture is in progress")
)

const (
	// DefaultDeadZone is the pixel distance below which a drag counts as a tap.
	DefaultDeadZone = 5
	// DefaultMinBlockHeight keeps short blocks tall enough to grab.
	DefaultMinBlockHeight = 22
)

// State is the gesture state of a Controller.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Config is the per-surface gesture configuration.
type Config struct {
	Grid           timegrid.Grid
	DeadZone       float64       // pixels
	HoldThreshold  time.Duration // press duration before a drag starts; 0 starts immediately
	MinBlockHeight float64       // pixels
}

// DefaultConfig returns the gesture defaults for grid.
func DefaultConfig(grid timegrid.Grid) Config {
	return Config{
		Grid:           grid,
		DeadZone:       DefaultDeadZone,
		MinBlockHeight: DefaultMinBlockHeight,
	}
}

type press struct {
	act activity.Activity
	y   float64
	at  time.Time
}

// Controller is the drag and resize state machine of one calendar surface.
// It is not safe for concurrent use; surfaces drive it from their event loop.
type Controller struct {
	cfg         Config
	onDragStart func(activity.Activity)

	state   State
	pending *press

	act            activity.Activity
	originMinutes  int
	originDuration int
	originY        float64
	currentY       float64
}

// New creates an idle Controller.
func New(cfg Config) *Controller {
	if cfg.Grid.HourHeight <= 0 || cfg.Grid.Snap <= 0 {
		cfg.Grid = timegrid.New(cfg.Grid.HourHeight, cfg.Grid.Snap)
	}
	if cfg.DeadZone < 0 {
		cfg.DeadZone = 0
	}
	return &Controller{cfg: cfg}
}

// OnDragStart registers fn to run whenever a drag begins.
func (c *Controller) OnDragStart(fn func(activity.Activity)) {
	c.onDragStart = fn
}

// Config returns the controller configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns the current gesture state. A press still waiting for its hold is Idle.
func (c *Controller) State() State {
	return c.state
}

// Pressing reports whether a press is waiting for the hold threshold.
func (c *Controller) Pressing() bool {
	return c.pending != nil
}

// Active returns the activity of the gesture in progress, if any.
func (c *Controller) Active() (activity.Activity, bool) {
	if c.state == Idle {
		return activity.Activity{}, false
	}
	return c.act, true
}

// PressBlock records a pointer press on a's block at y. The drag starts once the press has been
// held for the hold threshold, immediately when the threshold is zero.
func (c *Controller) PressBlock(a activity.Activity, y float64, at time.Time) error {
	if c.state != Idle {
		return ErrGestureActive
	}
	if !a.IsScheduled() {
		return activity.ErrNotScheduled
	}
	c.pending = &press{act: a, y: y, at: at}
	if c.cfg.HoldThreshold <= 0 {
		c.startDrag()
	}
	return nil
}

// Hold promotes a pending press to a drag if it has been held long enough by now.
// It reports whether a drag is in progress afterwards.
func (c *Controller) Hold(now time.Time) bool {
	if c.pending != nil && now.Sub(c.pending.at) >= c.cfg.HoldThreshold {
		c.startDrag()
	}
	return c.state == Dragging
}

// PressHandle starts resizing a from its bottom handle.
func (c *Controller) PressHandle(a activity.Activity, y float64) error {
	if c.state != Idle {
		return ErrGestureActive
	}
	if !a.IsScheduled() {
		return activity.ErrNotScheduled
	}
	c.pending = nil
	c.state = Resizing
	c.act = a
	c.originDuration = a.Duration
	c.originY = y
	c.currentY = y
	return nil
}

// Move updates the preview to pointer position y. A press that moves past the dead zone before
// its hold elapses is abandoned, so the surface can scroll instead.
func (c *Controller) Move(y float64, now time.Time) {
	if c.pending != nil {
		if !c.Hold(now) {
			if math.Abs(y-c.pending.y) > c.cfg.DeadZone {
				c.pending = nil
			}
			return
		}
	}
	if c.state != Idle {
		c.currentY = y
	}
}

// Release ends the gesture at pointer position y and returns what should be committed.
func (c *Controller) Release(y float64) Outcome {
	if c.pending != nil {
		p := c.pending
		c.pending = nil
		return Outcome{Kind: Tap, Activity: p.act}
	}

	switch c.state {
	case Dragging:
		c.currentY = y
		dy := c.currentY - c.originY
		a := c.act
		minutes := c.dragMinutes()
		c.reset()
		if math.Abs(dy) <= c.cfg.DeadZone {
			return Outcome{Kind: Tap, Activity: a}
		}
		return Outcome{
			Kind:     Reschedule,
			Activity: a,
			Start:    timegrid.MinutesToTimestamp(minutes, a.StartTime),
			Duration: a.Duration,
		}
	case Resizing:
		c.currentY = y
		a := c.act
		d := c.resizeMinutes()
		c.reset()
		return Outcome{Kind: Resize, Activity: a, Start: a.StartTime, Duration: d}
	default:
		return Outcome{}
	}
}

// Cancel abandons any gesture without a commit.
func (c *Controller) Cancel() {
	c.pending = nil
	c.reset()
}

func (c *Controller) startDrag() {
	p := c.pending
	c.pending = nil
	c.state = Dragging
	c.act = p.act
	c.originMinutes = timegrid.TimestampToMinutes(p.act.StartTime)
	c.originY = p.y
	c.currentY = p.y
	if c.onDragStart != nil {
		c.onDragStart(p.act)
	}
}

func (c *Controller) reset() {
	c.state = Idle
	c.act = activity.Activity{}
	c.originMinutes = 0
	c.originDuration = 0
	c.originY = 0
	c.currentY = 0
}

// dragMinutes is the candidate start: snapped first, then clamped so the block ends by midnight.
func (c *Controller) dragMinutes() int {
	g := c.cfg.Grid
	raw := float64(c.originMinutes) + g.DeltaMinutes(c.currentY-c.originY)
	latest := timegrid.MinutesPerDay - c.act.Duration
	if latest < 0 {
		latest = 0
	}
	return timegrid.ClampMinutes(g.SnapMinutes(raw), 0, latest)
}

func (c *Controller) resizeMinutes() int {
	g := c.cfg.Grid
	raw := float64(c.originDuration) + g.DeltaMinutes(c.currentY-c.originY)
	return g.SnapMinutes(math.Max(float64(g.Snap), raw))
}

// OutcomeKind says what a finished gesture asks the store to do.
type OutcomeKind int

const (
	None OutcomeKind = iota
	Tap
	Reschedule
	Resize
)

func (k OutcomeKind) String() string {
	switch k {
	case Tap:
		return "tap"
	case Reschedule:
		return "reschedule"
	case Resize:
		return "resize"
	default:
		return "none"
	}
}

// Outcome is the result of a released gesture.
type Outcome struct {
	Kind     OutcomeKind
	Activity activity.Activity
	Start    time.Time
	Duration int
}

// Commits reports whether the outcome needs a store write.
func (o Outcome) Commits() bool {
	return o.Kind == Reschedule || o.Kind == Resize
}

// Mutator is the subset of the schedule store a gesture commits through.
type Mutator interface {
	Reschedule(ctx context.Context, a *activity.Activity, start time.Time) error
	Resize(ctx context.Context, a *activity.Activity, minutes int) error
}

// Apply commits the outcome through m. Taps and empty outcomes are no-ops.
func (o Outcome) Apply(ctx context.Context, m Mutator) error {
	a := o.Activity
	switch o.Kind {
	case Reschedule:
		return m.Reschedule(ctx, &a, o.Start)
	case Resize:
		return m.Resize(ctx, &a, o.Duration)
	default:
		return nil
	}
}
