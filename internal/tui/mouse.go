package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/slotify/internal/interaction"
	"github.com/javiermolinar/slotify/internal/schedule"
	"github.com/javiermolinar/slotify/internal/timegrid"
	"github.com/javiermolinar/slotify/internal/tui/commands"
)

const wheelRows = 3

// handleMouseMsg turns terminal mouse events into gestures. A terminal row maps to the
// timeline pixel at its top edge, so the controller works in the surface's own scale.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m, nil
	}
	l := m.layout()

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if m.gestureInProgress() {
			return m, nil
		}
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll = max(0, m.scroll-wheelRows)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scroll = min(l.MaxScroll(), m.scroll+wheelRows)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		return m.handlePress(l, l.HitTest(msg.X, msg.Y, m.scroll))
	case tea.MouseActionMotion:
		if !m.gestureInProgress() {
			return m, nil
		}
		c := m.controller()
		c.Move(l.RowToY(m.grid(), m.pointerRow(l, msg.Y)), m.now())
		return m, nil
	case tea.MouseActionRelease:
		return m.handleRelease(l, msg.Y)
	}
	return m, nil
}

// gestureInProgress reports whether the current surface holds a press or a drag. The grid
// does not scroll under a gesture, since its pointer rows would no longer match the
// timeline.
func (m Model) gestureInProgress() bool {
	c := m.controller()
	return c.State() != interaction.Idle || c.Pressing()
}

// pointerRow returns the grid row under screen line y, clamped to the day while a
// gesture drags past the edges of the grid.
func (m Model) pointerRow(l Layout, y int) int {
	row := y - l.GridTop + m.scroll
	return max(0, min(l.TotalRows(), row))
}

func (m Model) handlePress(l Layout, hit Hit) (tea.Model, tea.Cmd) {
	switch {
	case hit.InBacklog:
		idx := hit.Row - 1 + m.backlogOffset(l) // first panel line is the title
		backlog := m.items[schedule.KindBacklog]
		if idx < 0 || idx >= len(backlog) {
			return m, nil
		}
		m.focus = FocusBacklog
		m.backlogIdx = idx
		a := backlog[idx]
		m.armed = &a
		m.setStatus("Pick a slot for "+a.Title, false)
		return m, nil

	case hit.InGrid:
		m.focus = FocusGrid
		m.cursor = hit.Row
		var cmd tea.Cmd
		if m.surface == SurfaceWeek {
			cmd = m.setDay(m.columnDay(hit.Column))
		}

		c := m.controller()
		y := l.RowToY(m.grid(), hit.Row)
		b, ok := blockAt(m.blocks(hit.Column), hit.Row)
		if !ok {
			if m.armed == nil || !m.writable() {
				return m, cmd
			}
			a := *m.armed
			m.armed = nil
			return m, tea.Batch(cmd, commands.Schedule(m.store, a, m.slotStart(hit.Column, hit.Row)))
		}

		if b.Span.Handle(hit.Row) {
			if err := c.PressHandle(b.Activity, y); err != nil {
				m.logger.Debug("press handle ignored", "error", err)
			}
			return m, cmd
		}
		if err := c.PressBlock(b.Activity, y, m.now()); err != nil {
			m.logger.Debug("press ignored", "error", err)
			return m, cmd
		}
		if c.Pressing() {
			cmd = tea.Batch(cmd, commands.HoldAfter(int(m.surface), c.Config().HoldThreshold))
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleRelease(l Layout, screenY int) (tea.Model, tea.Cmd) {
	c := m.controller()
	if c.State() == interaction.Idle && !c.Pressing() {
		return m, nil
	}
	out := c.Release(l.RowToY(m.grid(), m.pointerRow(l, screenY)))

	switch {
	case out.Commits():
		if !m.writable() {
			return m, nil
		}
		if out.Kind == interaction.Reschedule {
			m.cursor = l.YToRow(m.grid(), m.grid().MinutesToY(float64(timegrid.TimestampToMinutes(out.Start))))
		}
		return m, commands.Commit(m.store, out)
	case out.Kind == interaction.Tap && m.surface == SurfaceWeek:
		if !m.writable() {
			return m, nil
		}
		return m, commands.Unschedule(m.store, out.Activity)
	case out.Kind == interaction.Tap:
		m.form = editActivityForm(m.styles, out.Activity)
		m.mode = ModeForm
	}
	return m, nil
}

// backlogOffset is the first backlog item shown, keeping the selection on screen.
func (m Model) backlogOffset(l Layout) int {
	rows := l.VisibleRows - 1
	if rows <= 0 {
		return 0
	}
	return max(0, m.backlogIdx-rows+1)
}
