package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/schedule"
	"github.com/javiermolinar/slotify/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case commands.ViewOpenedMsg:
		if msg.Gen != m.gens[msg.Kind] {
			// A newer request superseded this one.
			msg.Unsubscribe()
			_ = msg.View.Close()
			return m, nil
		}
		m.releaseView(msg.Kind)
		m.views[msg.Kind] = msg.View
		m.unsubs[msg.Kind] = msg.Unsubscribe
		return m, nil

	case commands.ViewChangedMsg:
		if msg.Gen == m.gens[msg.Kind] {
			m.setItems(msg.Kind, msg.Change.Snapshot)
		}
		return m, commands.WaitForChange(m.changes)

	case commands.WriteDoneMsg:
		m.setStatus(writeStatus(msg), false)
		return m, commands.ClearStatusAfter(3 * time.Second)

	case commands.ErrMsg:
		m.logger.Error("operation failed", "error", msg.Err)
		m.setStatus(errorStatus(msg.Err), true)
		return m, commands.ClearStatusAfter(5 * time.Second)

	case commands.StatusMsgCmd:
		m.setStatus(msg.Msg, false)
		return m, commands.ClearStatusAfter(3 * time.Second)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil

	case commands.HoldTickMsg:
		if msg.Surface == int(m.surface) {
			m.controller().Hold(msg.At)
		}
		return m, nil

	case commands.TickMsg:
		return m, commands.EveryMinute()
	}

	if m.mode == ModeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.updateInput(msg)
		return m, cmd
	}
	return m, nil
}

// setItems replaces the contents of a view and keeps the selections in range.
func (m *Model) setItems(kind schedule.Kind, items []activity.Activity) {
	m.items[kind] = items
	if kind != schedule.KindBacklog {
		return
	}
	m.backlogIdx = min(m.backlogIdx, max(0, len(items)-1))
	if m.armed == nil {
		return
	}
	for _, a := range items {
		if a.ID == m.armed.ID {
			return
		}
	}
	// Scheduled or deleted elsewhere.
	m.armed = nil
}

// setDay focuses day and reopens the views that no longer match.
func (m *Model) setDay(day time.Time) tea.Cmd {
	day = dateutil.StartOfDay(day)
	if day.Equal(m.day) {
		return nil
	}
	oldWeek := m.weekStart()
	m.day = day
	m.controller().Cancel()

	cmds := []tea.Cmd{m.reopen(schedule.KindDay, day)}
	if ws := m.weekStart(); !ws.Equal(oldWeek) {
		cmds = append(cmds, m.reopen(schedule.KindWeek, ws))
	}
	return tea.Batch(cmds...)
}

// reopen requests a fresh view of kind for date. Contents of the previous view are
// dropped until the new one reports.
func (m *Model) reopen(kind schedule.Kind, date time.Time) tea.Cmd {
	m.gens[kind]++
	m.items[kind] = nil
	if m.store == nil {
		return nil
	}
	return commands.OpenView(m.store, kind, date, m.gens[kind], m.changes)
}

func writeStatus(msg commands.WriteDoneMsg) string {
	verbs := map[string]string{
		"create":                       "Created",
		"schedule":                     "Scheduled",
		"unschedule":                   "Moved to backlog:",
		"move":                         "Moved",
		"resize":                       "Resized",
		"edit":                         "Updated",
		"delete":                       "Deleted",
		string(activity.StatusDone):    "Done:",
		string(activity.StatusSkipped): "Skipped:",
	}
	verb, ok := verbs[msg.Op]
	if !ok {
		verb = msg.Op
	}
	return fmt.Sprintf("%s %s", verb, msg.Title)
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, activity.ErrValidation):
		return err.Error()
	case errors.Is(err, activity.ErrNotFound):
		return "Activity no longer exists"
	case errors.Is(err, schedule.ErrPersistence):
		return "Could not save: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
