package interaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

var day = time.Date(2025, 1, 20, 0, 0, 0, 0, time.Local)

func scheduledAt(minutes, duration int) activity.Activity {
	return activity.Activity{
		ID:        "a1",
		OwnerID:   "alice",
		Title:     "Focus",
		Type:      activity.TypeTask,
		Status:    activity.StatusScheduled,
		StartTime: timegrid.MinutesToTimestamp(minutes, day),
		Duration:  duration,
		Priority:  activity.PriorityMedium,
	}
}

func newController(hourHeight float64) *Controller {
	return New(DefaultConfig(timegrid.New(hourHeight, 15)))
}

// px converts minutes to pixels on the controller's grid.
func px(c *Controller, minutes float64) float64 {
	return c.Config().Grid.MinutesToY(minutes)
}

type fakeMutator struct {
	rescheduled []time.Time
	resized     []int
	err         error
}

func (m *fakeMutator) Reschedule(_ context.Context, _ *activity.Activity, start time.Time) error {
	m.rescheduled = append(m.rescheduled, start)
	return m.err
}

func (m *fakeMutator) Resize(_ context.Context, _ *activity.Activity, minutes int) error {
	m.resized = append(m.resized, minutes)
	return m.err
}

func TestDrag_DeadZoneIsATap(t *testing.T) {
	for _, hh := range []float64{60, 80} {
		c := newController(hh)
		a := scheduledAt(540, 30)
		if err := c.PressBlock(a, 300, day); err != nil {
			t.Fatalf("PressBlock failed: %v", err)
		}
		c.Move(303, day)
		out := c.Release(304.9)

		if out.Kind != Tap {
			t.Errorf("hour height %v: outcome = %s, want tap", hh, out.Kind)
		}
		m := &fakeMutator{}
		if err := out.Apply(context.Background(), m); err != nil || len(m.rescheduled) != 0 {
			t.Errorf("tap must not write: %v %v", err, m.rescheduled)
		}
		if c.State() != Idle {
			t.Errorf("state after release = %s, want idle", c.State())
		}
	}
}

func TestDrag_CommitSnapsToQuarter(t *testing.T) {
	for _, hh := range []float64{60, 80} {
		c := newController(hh)
		a := scheduledAt(540, 30)
		_ = c.PressBlock(a, 100, day)
		c.Move(100+px(c, 20), day)
		out := c.Release(100 + px(c, 47))

		if out.Kind != Reschedule {
			t.Fatalf("hour height %v: outcome = %s, want reschedule", hh, out.Kind)
		}
		if got := timegrid.TimestampToMinutes(out.Start); got != 585 {
			t.Errorf("hour height %v: new start = %d, want 585", hh, got)
		}
		if !timegrid.MinutesToTimestamp(585, day).Equal(out.Start) {
			t.Errorf("new start %v is not on the original day", out.Start)
		}
		if out.Duration != 30 {
			t.Errorf("duration = %d, want 30", out.Duration)
		}
	}
}

func TestDrag_ClampsToDay(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		duration int
		deltaMin float64
		want     int
	}{
		{"past end of day", 1380, 60, 300, 1380},
		{"long block near end", 1200, 120, 200, 1320},
		{"before midnight", 60, 30, -500, 0},
		{"upward", 540, 30, -62, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(60)
			_ = c.PressBlock(scheduledAt(tt.start, tt.duration), 500, day)
			out := c.Release(500 + px(c, tt.deltaMin))
			if out.Kind != Reschedule {
				t.Fatalf("outcome = %s, want reschedule", out.Kind)
			}
			if got := timegrid.TimestampToMinutes(out.Start); got != tt.want {
				t.Errorf("new start = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResize_Commit(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		deltaMin float64
		want     int
	}{
		{"grow", 30, 22, 45},
		{"shrink", 60, -20, 45},
		{"floor", 30, -200, 15},
		{"tiny move still commits", 30, 1, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(80)
			if err := c.PressHandle(scheduledAt(600, tt.duration), 200); err != nil {
				t.Fatalf("PressHandle failed: %v", err)
			}
			out := c.Release(200 + px(c, tt.deltaMin))
			if out.Kind != Resize {
				t.Fatalf("outcome = %s, want resize", out.Kind)
			}
			if out.Duration != tt.want {
				t.Errorf("duration = %d, want %d", out.Duration, tt.want)
			}

			m := &fakeMutator{}
			if err := out.Apply(context.Background(), m); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if len(m.resized) != 1 || m.resized[0] != tt.want {
				t.Errorf("resized = %v, want [%d]", m.resized, tt.want)
			}
		})
	}
}

func TestHoldThreshold(t *testing.T) {
	cfg := DefaultConfig(timegrid.New(60, 15))
	cfg.HoldThreshold = 300 * time.Millisecond
	c := New(cfg)

	var started []string
	c.OnDragStart(func(a activity.Activity) { started = append(started, a.ID) })

	a := scheduledAt(540, 30)
	pressed := day.Add(9 * time.Hour)
	_ = c.PressBlock(a, 100, pressed)
	if c.State() != Idle || !c.Pressing() {
		t.Fatalf("press before hold: state %s pressing %v", c.State(), c.Pressing())
	}
	if c.Hold(pressed.Add(100 * time.Millisecond)) {
		t.Errorf("drag started before the threshold")
	}
	if !c.Hold(pressed.Add(300 * time.Millisecond)) {
		t.Fatalf("drag did not start at the threshold")
	}
	if len(started) != 1 || started[0] != "a1" {
		t.Errorf("drag-start observer calls = %v", started)
	}

	c.Move(130, pressed.Add(400*time.Millisecond))
	if out := c.Release(130); out.Kind != Reschedule {
		t.Errorf("outcome = %s, want reschedule", out.Kind)
	}
}

func TestHoldThreshold_QuickReleaseIsTap(t *testing.T) {
	cfg := DefaultConfig(timegrid.New(60, 15))
	cfg.HoldThreshold = time.Second
	c := New(cfg)

	_ = c.PressBlock(scheduledAt(540, 30), 100, day)
	if out := c.Release(140); out.Kind != Tap {
		t.Errorf("outcome = %s, want tap", out.Kind)
	}
}

func TestHoldThreshold_EarlyMoveAbandonsPress(t *testing.T) {
	cfg := DefaultConfig(timegrid.New(60, 15))
	cfg.HoldThreshold = time.Second
	c := New(cfg)

	_ = c.PressBlock(scheduledAt(540, 30), 100, day)
	c.Move(150, day.Add(10*time.Millisecond))
	if c.Pressing() || c.State() != Idle {
		t.Errorf("scrolling press should be abandoned")
	}
	if out := c.Release(150); out.Kind != None {
		t.Errorf("outcome = %s, want none", out.Kind)
	}
}

func TestSingleGesturePerSurface(t *testing.T) {
	c := newController(60)
	a := scheduledAt(540, 30)
	b := scheduledAt(600, 30)
	b.ID = "b1"

	if err := c.PressBlock(a, 10, day); err != nil {
		t.Fatalf("PressBlock failed: %v", err)
	}
	if err := c.PressBlock(b, 10, day); !errors.Is(err, ErrGestureActive) {
		t.Errorf("second PressBlock error = %v, want ErrGestureActive", err)
	}
	if err := c.PressHandle(b, 10); !errors.Is(err, ErrGestureActive) {
		t.Errorf("PressHandle during drag error = %v, want ErrGestureActive", err)
	}
	if got, ok := c.Active(); !ok || got.ID != "a1" {
		t.Errorf("Active = %v %v, want a1", got.ID, ok)
	}
}

func TestPress_RejectsUnscheduled(t *testing.T) {
	c := newController(60)
	a := activity.Activity{ID: "x", Status: activity.StatusBacklog, Duration: 30}
	if err := c.PressBlock(a, 0, day); !errors.Is(err, activity.ErrNotScheduled) {
		t.Errorf("PressBlock error = %v, want ErrNotScheduled", err)
	}
	if err := c.PressHandle(a, 0); !errors.Is(err, activity.ErrNotScheduled) {
		t.Errorf("PressHandle error = %v, want ErrNotScheduled", err)
	}
}

func TestCancel(t *testing.T) {
	c := newController(60)
	a := scheduledAt(540, 30)
	before := c.Block(a)

	_ = c.PressBlock(a, 100, day)
	c.Move(220, day)
	if c.Block(a).Top == before.Top {
		t.Fatalf("drag preview did not move the block")
	}
	c.Cancel()

	if c.State() != Idle {
		t.Errorf("state after cancel = %s", c.State())
	}
	if got := c.Block(a); got != before {
		t.Errorf("block after cancel = %+v, want %+v", got, before)
	}
	if out := c.Release(220); out.Kind != None {
		t.Errorf("release after cancel = %s, want none", out.Kind)
	}
}

func TestPreview(t *testing.T) {
	c := newController(60)
	a := scheduledAt(540, 30)

	if c.Preview().Active() {
		t.Fatalf("idle controller has an active preview")
	}

	_ = c.PressBlock(a, 100, day)
	c.Move(147, day)
	p := c.Preview()
	if p.State != Dragging || p.Offset != 47 || p.StartMinutes != 585 || p.Label != "09.45" {
		t.Errorf("drag preview = %+v", p)
	}
	c.Cancel()

	_ = c.PressHandle(a, 100)
	c.Move(122, day)
	p = c.Preview()
	if p.State != Resizing || p.DeltaHeight != 22 || p.Duration != 45 || p.Label != "45m" {
		t.Errorf("resize preview = %+v", p)
	}
}

func TestBlock(t *testing.T) {
	c := newController(80)

	b := c.Block(scheduledAt(540, 60))
	if b.Top != 720 || b.Height != 80 {
		t.Errorf("block = %+v, want top 720 height 80", b)
	}

	short := c.Block(scheduledAt(600, 5))
	if short.Height != DefaultMinBlockHeight {
		t.Errorf("short block height = %v, want %v", short.Height, DefaultMinBlockHeight)
	}

	late := c.Block(scheduledAt(1430, 60))
	if late.Bottom() <= c.Config().Grid.TimelineHeight() {
		t.Errorf("midnight-crossing block should extend past the timeline, bottom %v", late.Bottom())
	}

	if !b.HitHandle(798, 6) || b.HitHandle(760, 6) {
		t.Errorf("HitHandle misreports the bottom edge")
	}
	if !b.Contains(760) || b.Contains(900) {
		t.Errorf("Contains misreports the block extent")
	}
}

func TestSlotMinutes(t *testing.T) {
	g := timegrid.New(60, 15)
	tests := []struct {
		y    float64
		want int
	}{
		{0, 0},
		{540, 540},
		{554, 540},
		{556, 555},
		{-10, 0},
		{5000, 1425},
	}
	for _, tt := range tests {
		if got := SlotMinutes(g, tt.y); got != tt.want {
			t.Errorf("SlotMinutes(%v) = %d, want %d", tt.y, got, tt.want)
		}
	}
}

func TestOutcomeApply_PropagatesError(t *testing.T) {
	c := newController(60)
	_ = c.PressBlock(scheduledAt(540, 30), 0, day)
	out := c.Release(60)

	m := &fakeMutator{err: errors.New("storage unavailable")}
	if err := out.Apply(context.Background(), m); err == nil {
		t.Errorf("Apply should return the mutator error")
	}
	if !out.Commits() {
		t.Errorf("reschedule outcome should commit")
	}
}
