package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/tui/theme"
)

func testStyles(t *testing.T) *Styles {
	t.Helper()
	th, err := theme.Load("paper")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return NewStyles(th)
}

func TestFormSubmitCreate(t *testing.T) {
	s := testStyles(t)
	start := time.Date(2030, 3, 4, 14, 0, 0, 0, time.Local)
	f := newActivityForm(s, start)

	if _, err := f.submit(); err == nil {
		t.Fatal("an empty title should be rejected")
	}
	f.title.SetValue("  Deep work  ")
	f.setFocus(fieldDuration)
	f.cycle(1)
	f.setFocus(fieldPriority)
	f.cycle(1)
	f.setFocus(fieldColor)
	f.cycle(3)

	sub, err := f.submit()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.create == nil || sub.edit != nil {
		t.Fatalf("submit = %+v, want a create", sub)
	}
	want := activity.Attributes{
		Title:     "Deep work",
		Type:      activity.TypeTask,
		StartTime: start,
		Duration:  45,
		Priority:  activity.PriorityHigh,
		Color:     activity.Palette[2],
	}
	if *sub.create != want {
		t.Fatalf("create = %+v, want %+v", *sub.create, want)
	}
}

func TestFormSubmitEditPatchesChangedFields(t *testing.T) {
	s := testStyles(t)
	a := activity.Activity{
		ID:       "a",
		Title:    "Standup",
		Type:     activity.TypeEvent,
		Duration: 30,
		Priority: activity.PriorityMedium,
		Status:   activity.StatusScheduled,
	}

	f := editActivityForm(s, a)
	sub, err := f.submit()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !sub.patch.Empty() || sub.duration != 0 {
		t.Fatalf("unchanged form produced patch %+v and duration %d", sub.patch, sub.duration)
	}

	f.desc.SetValue("room 4")
	f.setFocus(fieldDuration)
	f.cycle(2)
	sub, err = f.submit()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.edit == nil || sub.edit.ID != "a" {
		t.Fatalf("edit = %+v, want activity a", sub.edit)
	}
	if sub.patch.Description == nil || *sub.patch.Description != "room 4" {
		t.Fatalf("description patch = %v", sub.patch.Description)
	}
	if sub.patch.Title != nil || sub.patch.Type != nil || sub.patch.Priority != nil || sub.patch.Color != nil {
		t.Fatalf("patch = %+v, want only the description", sub.patch)
	}
	if sub.duration != 60 {
		t.Fatalf("duration = %d, want 60", sub.duration)
	}
}

func TestFormKeepsOddDuration(t *testing.T) {
	s := testStyles(t)
	a := activity.Activity{ID: "a", Title: "Lunch", Type: activity.TypeTask, Duration: 50, Priority: activity.PriorityLow}

	f := editActivityForm(s, a)
	if got := f.durations()[f.durationIdx]; got != 50 {
		t.Fatalf("selected duration = %d, want 50", got)
	}
	f.setFocus(fieldDuration)
	f.cycle(1)
	if got := f.durations()[f.durationIdx]; got != 15 {
		t.Fatalf("after wrap = %d, want 15", got)
	}
	if len(activity.DurationPresets) != 6 {
		t.Fatal("presets should not be modified")
	}
}

func TestFormCycleWraps(t *testing.T) {
	s := testStyles(t)
	f := newActivityForm(s, time.Time{})

	f.setFocus(fieldType)
	f.cycle(-1)
	if activity.Types[f.typeIdx] != activity.TypeHabit {
		t.Fatalf("type = %s, want habit", activity.Types[f.typeIdx])
	}
	f.setFocus(fieldColor)
	f.cycle(-1)
	if f.color() != activity.Palette[len(activity.Palette)-1] {
		t.Fatalf("color = %q, want the last palette color", f.color())
	}
	f.cycle(1)
	if f.color() != "" {
		t.Fatalf("color = %q, want the type default", f.color())
	}

	// Focus wraps around the fields.
	f.setFocus(fieldTitle - 1)
	if f.focus != fieldColor {
		t.Fatalf("focus = %d, want color", f.focus)
	}
}

func TestFormEditKeepsColor(t *testing.T) {
	s := testStyles(t)
	a := activity.Activity{ID: "a", Title: "Gym", Type: activity.TypeHabit, Duration: 60, Priority: activity.PriorityLow, Color: strings.ToLower(activity.Palette[4])}

	f := editActivityForm(s, a)
	if f.colorIdx != 5 {
		t.Fatalf("colorIdx = %d, want 5", f.colorIdx)
	}
	sub, err := f.submit()
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.patch.Color != nil {
		t.Fatal("color differing only in case should not be patched")
	}
}

func TestFormView(t *testing.T) {
	s := testStyles(t)
	start := time.Date(2030, 3, 4, 14, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		form activityForm
		want []string
	}{
		{name: "backlog", form: newActivityForm(s, time.Time{}), want: []string{"New activity", "Title", "30m", "medium", "type default"}},
		{name: "at a slot", form: newActivityForm(s, start), want: []string{"New activity at Mon Mar 4 14.30"}},
		{name: "edit", form: editActivityForm(s, activity.Activity{Title: "Gym", Type: activity.TypeHabit, Duration: 90, Priority: activity.PriorityLow}), want: []string{"Edit activity", "habit", "90m", "low"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ansi.Strip(tt.form.view(s))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("view missing %q:\n%s", w, got)
				}
			}
		})
	}
}
