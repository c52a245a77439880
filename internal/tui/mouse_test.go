package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/interaction"
	"github.com/javiermolinar/slotify/internal/tui/commands"
)

// On a 120x40 terminal the grid starts at column 38 and line 2 and shows 36 rows.
// mouseModel scrolls it to gridScroll so rows 20 to 55 are on screen.
const (
	gridX      = 40
	gridScroll = 20
)

func mouseModel(env *tuiEnv) Model {
	env.t.Helper()
	m := env.model()
	m.scroll = gridScroll
	return m
}

// screenY is the terminal line showing grid row row.
func screenY(m Model, row int) int {
	return row - m.scroll + headerLines
}

func mouse(t *testing.T, m Model, action tea.MouseAction, button tea.MouseButton, x, y int) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: button})
	return updated.(Model), cmd
}

func pressAt(t *testing.T, m Model, x, row int) (Model, tea.Cmd) {
	t.Helper()
	return mouse(t, m, tea.MouseActionPress, tea.MouseButtonLeft, x, screenY(m, row))
}

func moveTo(t *testing.T, m Model, x, row int) Model {
	t.Helper()
	m, _ = mouse(t, m, tea.MouseActionMotion, tea.MouseButtonLeft, x, screenY(m, row))
	return m
}

func releaseAt(t *testing.T, m Model, x, row int) (Model, tea.Cmd) {
	t.Helper()
	return mouse(t, m, tea.MouseActionRelease, tea.MouseButtonNone, x, screenY(m, row))
}

func wheel(t *testing.T, m Model, button tea.MouseButton) Model {
	t.Helper()
	m, _ = mouse(t, m, tea.MouseActionPress, button, gridX, headerLines+5)
	return m
}

func TestMouseDragReschedules(t *testing.T) {
	env := newTUIEnv(t)
	a := env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)

	m, _ = pressAt(t, m, gridX, 36)
	if m.controller().State() != interaction.Dragging {
		t.Fatalf("state = %v, want dragging", m.controller().State())
	}
	m = moveTo(t, m, gridX, 40)
	if p := m.controller().Preview(); p.Label != "10.00" {
		t.Fatalf("preview label = %q, want 10.00", p.Label)
	}

	m, cmd := releaseAt(t, m, gridX, 40)
	if m.controller().State() != interaction.Idle {
		t.Fatal("release should end the drag")
	}
	if m.cursor != 40 {
		t.Fatalf("cursor = %d, want 40 (follows the block)", m.cursor)
	}
	if done := env.write(cmd); done.Op != "move" {
		t.Fatalf("op = %q, want move", done.Op)
	}
	if got := env.lookup(a.ID); !got.StartTime.Equal(at(testNow, 10, 0)) || got.Duration != 30 {
		t.Fatalf("got %s for %dm, want 10.00 for 30m", got.StartTime, got.Duration)
	}
}

func TestMouseResize(t *testing.T) {
	env := newTUIEnv(t)
	a := env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)

	// The last row of the block is its handle.
	m, _ = pressAt(t, m, gridX, 37)
	if m.controller().State() != interaction.Resizing {
		t.Fatalf("state = %v, want resizing", m.controller().State())
	}
	m = moveTo(t, m, gridX, 39)
	if p := m.controller().Preview(); p.Label != "60m" {
		t.Fatalf("preview label = %q, want 60m", p.Label)
	}

	_, cmd := releaseAt(t, m, gridX, 39)
	if done := env.write(cmd); done.Op != "resize" {
		t.Fatalf("op = %q, want resize", done.Op)
	}
	if got := env.lookup(a.ID); !got.StartTime.Equal(at(testNow, 9, 0)) || got.Duration != 60 {
		t.Fatalf("got %s for %dm, want 09.00 for 60m", got.StartTime, got.Duration)
	}
}

func TestMouseTapOpensEditOnDay(t *testing.T) {
	env := newTUIEnv(t)
	a := env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)

	m, _ = pressAt(t, m, gridX, 36)
	m, cmd := releaseAt(t, m, gridX, 36)
	if cmd != nil {
		t.Fatal("a tap should not write")
	}
	if m.mode != ModeForm || m.form.editing == nil || m.form.editing.ID != a.ID {
		t.Fatalf("mode = %v, want edit form for %s", m.mode, a.ID)
	}
}

func TestMouseTapUnschedulesOnWeek(t *testing.T) {
	env := newTUIEnv(t)
	a := env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)
	m, _ = press(t, m, runes("2"))

	m, _ = pressAt(t, m, gridX, 36)
	_, cmd := releaseAt(t, m, gridX, 36)
	if done := env.write(cmd); done.Op != "unschedule" {
		t.Fatalf("op = %q, want unschedule", done.Op)
	}
	if got := env.lookup(a.ID); got.Status != activity.StatusBacklog || got.HasStart() {
		t.Fatalf("got %s at %s, want backlog without start", got.Status, got.StartTime)
	}
}

func TestMouseWeekColumnFocusesDay(t *testing.T) {
	env := newTUIEnv(t)
	m := mouseModel(env)
	m, _ = press(t, m, runes("2"))

	// Columns are 11 cells wide: Wednesday starts at 38+22.
	m, _ = pressAt(t, m, 38+22+1, 50)
	if m.day.Weekday() != time.Wednesday || m.cursor != 50 {
		t.Fatalf("day/cursor = %s/%d, want Wednesday/50", m.day.Weekday(), m.cursor)
	}
}

func TestMousePlacesArmedBacklogActivity(t *testing.T) {
	env := newTUIEnv(t)
	a := env.create(activity.Attributes{Title: "Inbox zero"})
	m := mouseModel(env)

	// Second line of the backlog panel is its first item.
	m, _ = mouse(t, m, tea.MouseActionPress, tea.MouseButtonLeft, 5, 3)
	if m.armed == nil || m.armed.ID != a.ID {
		t.Fatal("clicking a backlog item should arm it")
	}
	m, _ = releaseAt(t, m, 5, 2)

	m, cmd := pressAt(t, m, gridX, 44)
	if m.armed != nil {
		t.Fatal("placing should disarm")
	}
	if done := env.write(cmd); done.Op != "schedule" {
		t.Fatalf("op = %q, want schedule", done.Op)
	}
	if got := env.lookup(a.ID); got.Status != activity.StatusScheduled || !got.StartTime.Equal(at(testNow, 11, 0)) {
		t.Fatalf("got %s at %s, want scheduled at 11.00", got.Status, got.StartTime)
	}
}

func TestMouseEmptySlotWithoutArmedDoesNothing(t *testing.T) {
	env := newTUIEnv(t)
	m := mouseModel(env)

	m, cmd := pressAt(t, m, gridX, 44)
	if cmd != nil {
		t.Fatal("expected no command")
	}
	if m.cursor != 44 {
		t.Fatalf("cursor = %d, want 44", m.cursor)
	}
}

func TestMouseHoldThreshold(t *testing.T) {
	env := newTUIEnv(t)
	env.cfg.Day.HoldMS = 200
	env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)

	m, cmd := pressAt(t, m, gridX, 36)
	if cmd == nil {
		t.Fatal("expected a hold timer")
	}
	if !m.controller().Pressing() || m.controller().State() != interaction.Idle {
		t.Fatal("press should wait for the hold")
	}

	m = update(t, m, commands.HoldTickMsg{Surface: int(SurfaceDay), At: testNow.Add(250 * time.Millisecond)})
	if m.controller().State() != interaction.Dragging {
		t.Fatalf("state = %v, want dragging after the hold", m.controller().State())
	}
	m.controller().Cancel()
}

func TestMouseWheelScrolls(t *testing.T) {
	env := newTUIEnv(t)
	m := env.model()
	if m.scroll != 1 {
		t.Fatalf("scroll = %d, want 1 so the 09.00 cursor is visible", m.scroll)
	}

	m = wheel(t, m, tea.MouseButtonWheelDown)
	if m.scroll != 1+wheelRows {
		t.Fatalf("scroll = %d, want %d", m.scroll, 1+wheelRows)
	}
	for i := 0; i < 10; i++ {
		m = wheel(t, m, tea.MouseButtonWheelUp)
	}
	if m.scroll != 0 {
		t.Fatalf("scroll = %d, want 0", m.scroll)
	}
}

func TestMouseWheelLockedDuringGesture(t *testing.T) {
	tests := []struct {
		name      string
		row       int
		moveTo    int
		wantState interaction.State
		wantOp    string
		wantStart time.Time
		wantDur   int
	}{
		{name: "drag", row: 36, moveTo: 40, wantState: interaction.Dragging, wantOp: "move", wantStart: at(testNow, 10, 0), wantDur: 30},
		{name: "resize", row: 37, moveTo: 39, wantState: interaction.Resizing, wantOp: "resize", wantStart: at(testNow, 9, 0), wantDur: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTUIEnv(t)
			a := env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
			m := mouseModel(env)

			m, _ = pressAt(t, m, gridX, tt.row)
			if m.controller().State() != tt.wantState {
				t.Fatalf("state = %v, want %v", m.controller().State(), tt.wantState)
			}
			m = wheel(t, m, tea.MouseButtonWheelDown)
			m = wheel(t, m, tea.MouseButtonWheelUp)
			m = wheel(t, m, tea.MouseButtonWheelDown)
			if m.scroll != gridScroll {
				t.Fatalf("scroll = %d during the gesture, want %d", m.scroll, gridScroll)
			}

			m = moveTo(t, m, gridX, tt.moveTo)
			m, cmd := releaseAt(t, m, gridX, tt.moveTo)
			if done := env.write(cmd); done.Op != tt.wantOp {
				t.Fatalf("op = %q, want %q", done.Op, tt.wantOp)
			}
			if got := env.lookup(a.ID); !got.StartTime.Equal(tt.wantStart) || got.Duration != tt.wantDur {
				t.Fatalf("got %s for %dm, want %s for %dm", got.StartTime, got.Duration, tt.wantStart, tt.wantDur)
			}

			m = wheel(t, m, tea.MouseButtonWheelDown)
			if m.scroll != gridScroll+wheelRows {
				t.Fatalf("scroll = %d after the gesture, want %d", m.scroll, gridScroll+wheelRows)
			}
		})
	}
}

func TestMouseWheelLockedWhilePressHolds(t *testing.T) {
	env := newTUIEnv(t)
	env.cfg.Day.HoldMS = 200
	env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)

	m, _ = pressAt(t, m, gridX, 36)
	if !m.controller().Pressing() {
		t.Fatal("press should wait for the hold")
	}
	m = wheel(t, m, tea.MouseButtonWheelDown)
	if m.scroll != gridScroll {
		t.Fatalf("scroll = %d while the press holds, want %d", m.scroll, gridScroll)
	}
	m.controller().Cancel()
}

func TestMouseIgnoredInModal(t *testing.T) {
	env := newTUIEnv(t)
	env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)
	m, _ = press(t, m, runes("?"))

	m, _ = pressAt(t, m, gridX, 36)
	if m.controller().State() != interaction.Idle {
		t.Fatal("mouse should be ignored while a modal is open")
	}
}
