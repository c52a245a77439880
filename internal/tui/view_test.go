package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/slotify/internal/activity"
)

func plainView(m Model) string {
	return ansi.Strip(m.View())
}

func assertContains(t *testing.T, view string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("view missing %q:\n%s", w, view)
		}
	}
}

func TestViewDay(t *testing.T) {
	env := newTUIEnv(t)
	env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	env.create(activity.Attributes{Title: "Inbox zero"})
	m := env.model()

	view := plainView(m)
	if lines := strings.Split(view, "\n"); len(lines) != 40 {
		t.Fatalf("view has %d lines, want 40", len(lines))
	}
	assertContains(t, view,
		"slotify",
		"Monday, Mar 4 2030",
		"BACKLOG (1)",
		"Inbox zero 30m",
		"Monday  1 blocks, 30m",
		"Standup",
		"09.00-09.30",
		"Standup · 09.00-09.30 · task · medium · scheduled",
	)
}

func TestViewWeek(t *testing.T) {
	env := newTUIEnv(t)
	env.create(activity.Attributes{Title: "Review", StartTime: at(testNow.AddDate(0, 0, 2), 9, 0), Duration: 60})
	m := env.model()
	m, _ = press(t, m, runes("2"))
	m = env.sync(m)

	assertContains(t, plainView(m), "Week of Mar 4 - Mar 10 2030", "Mon 4", "Wed 6", "Sun 10", "Review")
}

func TestViewMidnightBlock(t *testing.T) {
	env := newTUIEnv(t)
	env.create(activity.Attributes{Title: "Night shift", StartTime: at(testNow, 23, 0), Duration: 120})
	m := env.model()
	m.moveCursor(1000)

	assertContains(t, plainView(m), "Night shift", "23.00-01.00 +1")
}

func TestViewDragPreview(t *testing.T) {
	env := newTUIEnv(t)
	env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})
	m := mouseModel(env)

	m, _ = pressAt(t, m, gridX, 36)
	m = moveTo(t, m, gridX, 40)
	assertContains(t, plainView(m), "10.00 Standup")
	m.controller().Cancel()
}

func TestViewArmedCursor(t *testing.T) {
	env := newTUIEnv(t)
	env.create(activity.Attributes{Title: "Inbox zero"})
	m := env.model()

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assertContains(t, plainView(m), "enter picks a slot")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assertContains(t, plainView(m), "+ Inbox zero", "esc cancel")
}

func TestViewStates(t *testing.T) {
	env := newTUIEnv(t)
	env.create(activity.Attributes{Title: "Standup", StartTime: at(testNow, 9, 0), Duration: 30})

	tests := []struct {
		name  string
		setup func(Model) Model
		want  string
	}{
		{
			name:  "loading",
			setup: func(Model) Model { return New(env.store, env.cfg, Options{Now: func() time.Time { return testNow }}) },
			want:  "Loading...",
		},
		{
			name:  "too small",
			setup: func(m Model) Model { return update(t, m, tea.WindowSizeMsg{Width: 30, Height: 8}) },
			want:  "Terminal too small",
		},
		{
			name:  "empty backlog",
			setup: func(m Model) Model { return m },
			want:  "n to add",
		},
		{
			name:  "form",
			setup: func(m Model) Model { m, _ = press(t, m, runes("a")); return m },
			want:  "New activity at Mon Mar 4 09.00",
		},
		{
			name:  "edit form",
			setup: func(m Model) Model { m, _ = press(t, m, runes("e")); return m },
			want:  "Edit activity",
		},
		{
			name:  "delete confirmation",
			setup: func(m Model) Model { m, _ = press(t, m, runes("x")); return m },
			want:  "Delete activity?",
		},
		{
			name:  "help",
			setup: func(m Model) Model { m, _ = press(t, m, runes("?")); return m },
			want:  "Drag a block to move it",
		},
		{
			name:  "status message",
			setup: func(m Model) Model { m.setStatus("Saved", false); return m },
			want:  "Saved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.setup(env.model())
			assertContains(t, plainView(m), tt.want)
		})
	}
}
