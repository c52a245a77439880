package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldType
	fieldDuration
	fieldPriority
	fieldColor
	fieldCount
)

var formLabels = [fieldCount]string{"Title", "Notes", "Type", "Duration", "Priority", "Color"}

var priorities = []activity.Priority{activity.PriorityLow, activity.PriorityMedium, activity.PriorityHigh}

// activityForm creates a new activity or edits an existing one.
type activityForm struct {
	editing *activity.Activity // nil for a new activity
	start   time.Time          // zero creates a backlog activity

	title textinput.Model
	desc  textinput.Model
	focus formField

	typeIdx     int
	durationIdx int
	priorityIdx int
	colorIdx    int // 0 keeps the type color, i > 0 is activity.Palette[i-1]

	err string
}

// formSubmit is what a submitted form asks the store to do.
type formSubmit struct {
	create   *activity.Attributes
	edit     *activity.Activity
	patch    activity.Patch
	duration int // new duration of an edited activity, 0 when unchanged
}

func newTextInput(s *Styles, placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 36
	ti.Prompt = ""
	ti.PlaceholderStyle = s.ModalPlaceholder
	ti.TextStyle = s.ModalInputStyle
	ti.Cursor.Style = s.ModalCursorStyle
	ti.Cursor.TextStyle = s.ModalInputStyle
	return ti
}

// newActivityForm opens a form for a new activity starting at start, or a backlog
// activity when start is zero.
func newActivityForm(s *Styles, start time.Time) activityForm {
	f := activityForm{
		start:       start,
		title:       newTextInput(s, "What needs doing?", 120),
		desc:        newTextInput(s, "Optional", 500),
		durationIdx: max(0, slices.Index(activity.DurationPresets, activity.DefaultDuration)),
		priorityIdx: 1,
	}
	f.title.Focus()
	return f
}

// editActivityForm opens a form filled with the fields of a.
func editActivityForm(s *Styles, a activity.Activity) activityForm {
	f := newActivityForm(s, time.Time{})
	f.editing = &a
	f.title.SetValue(a.Title)
	f.desc.SetValue(a.Description)
	f.typeIdx = max(0, slices.Index(activity.Types, a.Type))
	f.priorityIdx = max(0, slices.Index(priorities, a.Priority))
	f.durationIdx = slices.Index(activity.DurationPresets, a.Duration)
	if f.durationIdx < 0 {
		// Keep an odd duration selectable.
		f.durationIdx = len(activity.DurationPresets)
	}
	if a.Color != "" {
		f.colorIdx = slices.IndexFunc(activity.Palette, func(c string) bool {
			return strings.EqualFold(c, a.Color)
		}) + 1
	}
	return f
}

func (f *activityForm) durations() []int {
	if f.editing != nil && !slices.Contains(activity.DurationPresets, f.editing.Duration) {
		return append(slices.Clone(activity.DurationPresets), f.editing.Duration)
	}
	return activity.DurationPresets
}

func (f *activityForm) color() string {
	if f.colorIdx <= 0 || f.colorIdx > len(activity.Palette) {
		return ""
	}
	return activity.Palette[f.colorIdx-1]
}

func (f *activityForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	f.title.Blur()
	f.desc.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.desc.Focus()
	}
}

// cycle moves the option of the focused field by delta.
func (f *activityForm) cycle(delta int) {
	wrap := func(i, n int) int { return ((i+delta)%n + n) % n }
	switch f.focus {
	case fieldType:
		f.typeIdx = wrap(f.typeIdx, len(activity.Types))
	case fieldDuration:
		f.durationIdx = wrap(f.durationIdx, len(f.durations()))
	case fieldPriority:
		f.priorityIdx = wrap(f.priorityIdx, len(priorities))
	case fieldColor:
		f.colorIdx = wrap(f.colorIdx, len(activity.Palette)+1)
	}
}

// update handles a key. It returns done when the form was submitted or dismissed, and
// submit when it was submitted with valid values.
func (f activityForm) update(msg tea.KeyMsg) (activityForm, *formSubmit, bool, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return f, nil, true, nil
	case "enter":
		sub, err := f.submit()
		if err != nil {
			f.err = err.Error()
			return f, nil, false, nil
		}
		return f, sub, true, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return f, nil, false, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return f, nil, false, nil
	}

	if f.focus != fieldTitle && f.focus != fieldDescription {
		switch msg.String() {
		case "left", "h":
			f.cycle(-1)
		case "right", "l", " ":
			f.cycle(1)
		}
		return f, nil, false, nil
	}

	var cmd tea.Cmd
	if f.focus == fieldTitle {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.desc, cmd = f.desc.Update(msg)
	}
	f.err = ""
	return f, nil, false, cmd
}

// updateInput passes a non-key message, such as a cursor blink, to the focused input.
func (f activityForm) updateInput(msg tea.Msg) (activityForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	}
	return f, cmd
}

func (f activityForm) submit() (*formSubmit, error) {
	title := strings.TrimSpace(f.title.Value())
	if err := activity.ValidateTitle(title); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(f.desc.Value())
	typ := activity.Types[f.typeIdx]
	priority := priorities[f.priorityIdx]
	duration := f.durations()[f.durationIdx]
	color := f.color()

	if f.editing == nil {
		return &formSubmit{create: &activity.Attributes{
			Title:       title,
			Description: desc,
			Type:        typ,
			StartTime:   f.start,
			Duration:    duration,
			Priority:    priority,
			Color:       color,
		}}, nil
	}

	a := *f.editing
	sub := &formSubmit{edit: &a}
	if title != a.Title {
		sub.patch.Title = &title
	}
	if desc != a.Description {
		sub.patch.Description = &desc
	}
	if typ != a.Type {
		sub.patch.Type = &typ
	}
	if priority != a.Priority {
		sub.patch.Priority = &priority
	}
	if !strings.EqualFold(color, a.Color) {
		sub.patch.Color = &color
	}
	if duration != a.Duration {
		sub.duration = duration
	}
	return sub, nil
}

func (f activityForm) view(s *Styles) string {
	heading := "New activity"
	switch {
	case f.editing != nil:
		heading = "Edit activity"
	case !f.start.IsZero():
		heading = "New activity at " + f.start.Format("Mon Jan 2 ") + timegrid.MinutesToTimeString(timegrid.TimestampToMinutes(f.start))
	}

	var b strings.Builder
	b.WriteString(s.ModalTitleStyle.Render(heading))
	b.WriteString("\n\n")

	for field := fieldTitle; field < fieldCount; field++ {
		label := s.ModalLabelStyle
		if field == f.focus {
			label = s.ModalFocusStyle
		}
		b.WriteString(label.Render(fmt.Sprintf("%-9s", formLabels[field])))
		b.WriteString(f.fieldView(s, field))
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(s.ModalDangerStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.ModalLabelStyle.Render("tab next · ←/→ change · enter save · esc cancel"))
	return s.ModalStyle.Render(b.String())
}

func (f activityForm) fieldView(s *Styles, field formField) string {
	option := func(text string) string {
		if field == f.focus {
			return s.ModalOptionActive.Render("‹ " + text + " ›")
		}
		return s.ModalOptionStyle.Render(text)
	}
	switch field {
	case fieldTitle:
		return f.title.View()
	case fieldDescription:
		return f.desc.View()
	case fieldType:
		return option(string(activity.Types[f.typeIdx]))
	case fieldDuration:
		return option(timegrid.DurationLabel(f.durations()[f.durationIdx]))
	case fieldPriority:
		return option(string(priorities[f.priorityIdx]))
	default:
		c := f.color()
		if c == "" {
			return option("type default")
		}
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("  ")
		return swatch + " " + option(c)
	}
}

// confirmView renders the delete confirmation for a.
func confirmView(s *Styles, a activity.Activity) string {
	var b strings.Builder
	b.WriteString(s.ModalDangerStyle.Render("Delete activity?"))
	b.WriteString("\n\n")
	b.WriteString(s.ModalInputStyle.Render(a.Title))
	b.WriteString("\n\n")
	b.WriteString(s.ModalLabelStyle.Render("y delete · n cancel"))
	return s.ModalStyle.Render(b.String())
}
