package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/schedule"
	"github.com/javiermolinar/slotify/internal/timegrid"
	"github.com/javiermolinar/slotify/internal/tui/commands"
)

// keyHelp lists the normal mode bindings shown in the help overlay.
var keyHelp = [][2]string{
	{"v / 1 / 2", "switch day and week"},
	{"tab", "focus grid or backlog"},
	{"h / l", "previous / next day"},
	{"[ / ]", "previous / next week"},
	{"t", "today"},
	{"j / k", "move cursor"},
	{"n", "new backlog activity"},
	{"a", "new activity at cursor"},
	{"enter", "edit, or place selected backlog activity"},
	{"e", "edit"},
	{"J / K", "move block later / earlier"},
	{"+ / -", "longer / shorter"},
	{"u", "unschedule"},
	{"c / s", "mark done / skipped"},
	{"x", "delete"},
	{"y", "copy day agenda"},
	{"esc", "cancel"},
	{"q", "quit"},
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeConfirmDelete:
		return m.handleConfirmKeys(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.mode = ModeHelp
		return m, nil
	case "esc":
		m.controller().Cancel()
		m.armed = nil
		return m, nil

	// Surfaces
	case "v":
		return m.setSurface(1 - m.surface)
	case "1":
		return m.setSurface(SurfaceDay)
	case "2":
		return m.setSurface(SurfaceWeek)
	case "tab":
		if m.focus == FocusGrid {
			m.focus = FocusBacklog
		} else {
			m.focus = FocusGrid
		}
		return m, nil

	// Navigation
	case "h", "left":
		return m, m.setDay(m.day.AddDate(0, 0, -1))
	case "l", "right":
		return m, m.setDay(m.day.AddDate(0, 0, 1))
	case "[":
		return m, m.setDay(m.day.AddDate(0, 0, -7))
	case "]":
		return m, m.setDay(m.day.AddDate(0, 0, 7))
	case "t":
		now := m.now()
		m.cursor = timegrid.TimestampToMinutes(now) / m.layout().RowMinutes()
		m.ensureCursorVisible()
		return m, m.setDay(now)
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "pgdown", "ctrl+d":
		m.moveCursor(m.layout().VisibleRows / 2)
		return m, nil
	case "pgup", "ctrl+u":
		m.moveCursor(-m.layout().VisibleRows / 2)
		return m, nil

	// Creation
	case "n":
		m.form = newActivityForm(m.styles, time.Time{})
		m.mode = ModeForm
		return m, nil
	case "a":
		m.form = newActivityForm(m.styles, m.slotStart(m.focusColumn(), m.cursor))
		m.mode = ModeForm
		return m, nil

	case "enter", " ":
		return m.handleSelect()
	case "e":
		if a, ok := m.selected(); ok {
			m.form = editActivityForm(m.styles, a)
			m.mode = ModeForm
		}
		return m, nil

	// Writes on the selection
	case "u":
		return m.withScheduled(func(a activity.Activity) tea.Cmd {
			return commands.Unschedule(m.store, a)
		})
	case "c":
		return m.withScheduled(func(a activity.Activity) tea.Cmd {
			return commands.SetOutcome(m.store, a, activity.StatusDone)
		})
	case "s":
		return m.withScheduled(func(a activity.Activity) tea.Cmd {
			return commands.SetOutcome(m.store, a, activity.StatusSkipped)
		})
	case "J", "shift+down":
		return m.nudge(1)
	case "K", "shift+up":
		return m.nudge(-1)
	case "+", "=":
		return m.stretch(1)
	case "-":
		return m.stretch(-1)
	case "x", "delete":
		if a, ok := m.selected(); ok {
			m.confirm = a
			m.mode = ModeConfirmDelete
		}
		return m, nil

	case "y":
		return m, commands.CopyToClipboard(agendaText(m.day, m.items[schedule.KindDay]), "agenda")
	}
	return m, nil
}

// handleSelect edits the selection, or arms a backlog activity and places it at the cursor
// on a second press from the grid.
func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	if m.focus == FocusBacklog {
		a, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.armed = &a
		m.focus = FocusGrid
		m.setStatus("Pick a slot for "+a.Title, false)
		return m, nil
	}
	if m.armed != nil {
		if !m.writable() {
			return m, nil
		}
		a := *m.armed
		m.armed = nil
		return m, commands.Schedule(m.store, a, m.slotStart(m.focusColumn(), m.cursor))
	}
	if a, ok := m.selected(); ok {
		m.form = editActivityForm(m.styles, a)
		m.mode = ModeForm
	}
	return m, nil
}

// withScheduled runs a write on the grid selection.
func (m Model) withScheduled(write func(activity.Activity) tea.Cmd) (tea.Model, tea.Cmd) {
	a, ok := m.selected()
	if !ok || !a.HasStart() {
		return m, nil
	}
	if !m.writable() {
		return m, nil
	}
	return m, write(a)
}

// nudge moves the selected block by steps of the snap interval within its day.
func (m Model) nudge(steps int) (tea.Model, tea.Cmd) {
	a, ok := m.selected()
	if !ok || !a.IsScheduled() || !m.writable() {
		return m, nil
	}
	g := m.grid()
	start := timegrid.TimestampToMinutes(a.StartTime) + steps*g.Snap
	start = timegrid.ClampMinutes(start, 0, max(0, timegrid.MinutesPerDay-a.Duration))
	if start == timegrid.TimestampToMinutes(a.StartTime) {
		return m, nil
	}
	m.cursor += (start - timegrid.TimestampToMinutes(a.StartTime)) / m.layout().RowMinutes()
	m.ensureCursorVisible()
	return m, commands.Reschedule(m.store, a, timegrid.MinutesToTimestamp(start, a.StartTime))
}

// stretch grows or shrinks the selected block by steps of the snap interval.
func (m Model) stretch(steps int) (tea.Model, tea.Cmd) {
	a, ok := m.selected()
	if !ok || !a.IsScheduled() || !m.writable() {
		return m, nil
	}
	g := m.grid()
	d := max(g.Snap, a.Duration+steps*g.Snap)
	if d == a.Duration {
		return m, nil
	}
	return m, commands.Resize(m.store, a, d)
}

// setSurface switches between the day and week grids, keeping the focused day.
func (m Model) setSurface(s Surface) (tea.Model, tea.Cmd) {
	if s == m.surface {
		return m, nil
	}
	m.controller().Cancel()
	m.surface = s
	return m, nil
}

// moveCursor moves the grid cursor or the backlog selection by delta.
func (m *Model) moveCursor(delta int) {
	if m.focus == FocusBacklog {
		n := len(m.items[schedule.KindBacklog])
		m.backlogIdx = max(0, min(n-1, m.backlogIdx+delta))
		return
	}
	m.cursor += delta
	m.ensureCursorVisible()
}

// ensureCursorVisible clamps the cursor to the day and scrolls it into view.
func (m *Model) ensureCursorVisible() {
	l := m.layout()
	m.cursor = max(0, min(l.TotalRows()-1, m.cursor))
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+l.VisibleRows {
		m.scroll = m.cursor - l.VisibleRows + 1
	}
	m.scroll = max(0, min(l.MaxScroll(), m.scroll))
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, sub, done, cmd := m.form.update(msg)
	m.form = form
	if !done {
		return m, cmd
	}
	m.mode = ModeNormal
	if sub == nil || !m.writable() {
		return m, nil
	}

	switch {
	case sub.create != nil:
		return m, commands.Create(m.store, *sub.create)
	case sub.edit != nil:
		var cmds []tea.Cmd
		if !sub.patch.Empty() {
			cmds = append(cmds, commands.Update(m.store, *sub.edit, sub.patch))
		}
		if sub.duration > 0 {
			cmds = append(cmds, commands.Resize(m.store, *sub.edit, sub.duration))
		}
		return m, tea.Sequence(cmds...)
	}
	return m, nil
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = ModeNormal
		if !m.writable() {
			return m, nil
		}
		a := m.confirm
		if m.armed != nil && m.armed.ID == a.ID {
			m.armed = nil
		}
		return m, commands.Delete(m.store, a)
	case "n", "N", "esc", "q":
		m.mode = ModeNormal
	}
	return m, nil
}

// agendaText renders the day's scheduled activities as plain text for the clipboard.
func agendaText(day time.Time, acts []activity.Activity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", day.Format("Monday, Jan 2 2006"))
	if len(acts) == 0 {
		b.WriteString("Nothing scheduled\n")
		return b.String()
	}
	for _, a := range acts {
		if !a.HasStart() {
			continue
		}
		start := timegrid.TimestampToMinutes(a.StartTime)
		end := timegrid.MinutesToTimeString(start + a.Duration)
		if a.CrossesMidnight() {
			end += " (+1)"
		}
		mark := " "
		switch a.Status {
		case activity.StatusDone:
			mark = "x"
		case activity.StatusSkipped:
			mark = "-"
		}
		fmt.Fprintf(&b, "[%s] %s-%s %s\n", mark, timegrid.MinutesToTimeString(start), end, a.Title)
	}
	return b.String()
}
