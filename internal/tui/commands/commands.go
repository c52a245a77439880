// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/interaction"
	"github.com/javiermolinar/slotify/internal/schedule"
)

// Store is the part of the schedule store the TUI drives.
type Store interface {
	BacklogView(ctx context.Context) (*schedule.View, error)
	DayView(ctx context.Context, day time.Time, opts ...schedule.ViewOption) (*schedule.View, error)
	WeekView(ctx context.Context, weekStart time.Time, opts ...schedule.ViewOption) (*schedule.View, error)

	Create(ctx context.Context, attrs activity.Attributes) (string, error)
	Schedule(ctx context.Context, a *activity.Activity, start time.Time) error
	Unschedule(ctx context.Context, a *activity.Activity) error
	Reschedule(ctx context.Context, a *activity.Activity, start time.Time) error
	Resize(ctx context.Context, a *activity.Activity, minutes int) error
	Update(ctx context.Context, a *activity.Activity, patch activity.Patch) error
	SetOutcome(ctx context.Context, a *activity.Activity, status activity.Status) error
	SoftDelete(ctx context.Context, a *activity.Activity) error
}

// Changes carries view changes from store subscribers to the program.
type Changes chan ViewChangedMsg

// NewChanges returns a buffered change channel.
func NewChanges() Changes {
	return make(Changes, 64)
}

// ViewOpenedMsg is sent when a live view has been opened and subscribed.
type ViewOpenedMsg struct {
	Kind        schedule.Kind
	Gen         int // matches the request that opened it
	View        *schedule.View
	Unsubscribe func()
}

// ViewChangedMsg is sent for every change of a subscribed view, starting with its
// initial contents.
type ViewChangedMsg struct {
	Kind   schedule.Kind
	Gen    int
	Change schedule.Change
}

// WriteDoneMsg is sent when a write completed.
type WriteDoneMsg struct {
	Op    string
	Title string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// HoldTickMsg is sent when a press has been held long enough to start a drag.
type HoldTickMsg struct {
	Surface int
	At      time.Time
}

// TickMsg is sent every minute so the now line and past blocks stay current.
type TickMsg time.Time

// OpenView opens the view of kind for date, subscribes it to changes, and reports it.
// date is ignored for the backlog; for the week it must be the week start. Day and week
// views keep done and skipped activities so the grid can show outcomes.
func OpenView(store Store, kind schedule.Kind, date time.Time, gen int, changes Changes) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var (
			v   *schedule.View
			err error
		)
		switch kind {
		case schedule.KindBacklog:
			v, err = store.BacklogView(ctx)
		case schedule.KindDay:
			v, err = store.DayView(ctx, date, schedule.WithOutcomes())
		default:
			v, err = store.WeekView(ctx, date, schedule.WithOutcomes())
		}
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("opening %s: %w", kind, err)}
		}
		unsubscribe := v.Subscribe(func(c schedule.Change) {
			changes <- ViewChangedMsg{Kind: kind, Gen: gen, Change: c}
		})
		return ViewOpenedMsg{Kind: kind, Gen: gen, View: v, Unsubscribe: unsubscribe}
	}
}

// WaitForChange blocks until the next view change arrives.
func WaitForChange(changes Changes) tea.Cmd {
	return func() tea.Msg {
		return <-changes
	}
}

// write runs fn in the background and reports its outcome.
func write(op, title string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return ErrMsg{Err: fmt.Errorf("%s: %w", op, err)}
		}
		return WriteDoneMsg{Op: op, Title: title}
	}
}

// Create adds a new activity.
func Create(store Store, attrs activity.Attributes) tea.Cmd {
	return write("create", attrs.Title, func(ctx context.Context) error {
		_, err := store.Create(ctx, attrs)
		return err
	})
}

// Schedule places a backlog activity at start.
func Schedule(store Store, a activity.Activity, start time.Time) tea.Cmd {
	return write("schedule", a.Title, func(ctx context.Context) error {
		return store.Schedule(ctx, &a, start)
	})
}

// Unschedule moves an activity back to the backlog.
func Unschedule(store Store, a activity.Activity) tea.Cmd {
	return write("unschedule", a.Title, func(ctx context.Context) error {
		return store.Unschedule(ctx, &a)
	})
}

// Reschedule moves a scheduled activity to start.
func Reschedule(store Store, a activity.Activity, start time.Time) tea.Cmd {
	return write("move", a.Title, func(ctx context.Context) error {
		return store.Reschedule(ctx, &a, start)
	})
}

// Resize changes the duration of an activity.
func Resize(store Store, a activity.Activity, minutes int) tea.Cmd {
	return write("resize", a.Title, func(ctx context.Context) error {
		return store.Resize(ctx, &a, minutes)
	})
}

// Commit applies the outcome of a drag or resize gesture.
func Commit(store Store, out interaction.Outcome) tea.Cmd {
	op := "move"
	if out.Kind == interaction.Resize {
		op = "resize"
	}
	return write(op, out.Activity.Title, func(ctx context.Context) error {
		return out.Apply(ctx, store)
	})
}

// Update edits the descriptive fields of an activity.
func Update(store Store, a activity.Activity, patch activity.Patch) tea.Cmd {
	return write("edit", a.Title, func(ctx context.Context) error {
		return store.Update(ctx, &a, patch)
	})
}

// SetOutcome marks a scheduled activity as done or skipped.
func SetOutcome(store Store, a activity.Activity, status activity.Status) tea.Cmd {
	return write(string(status), a.Title, func(ctx context.Context) error {
		return store.SetOutcome(ctx, &a, status)
	})
}

// Delete soft-deletes an activity.
func Delete(store Store, a activity.Activity) tea.Cmd {
	return write("delete", a.Title, func(ctx context.Context) error {
		return store.SoftDelete(ctx, &a)
	})
}

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied " + what + " to clipboard"}
	}
}

// HoldAfter reports a held press on surface once d has elapsed.
func HoldAfter(surface int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return HoldTickMsg{Surface: surface, At: t}
	})
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// EveryMinute ticks on the next minute boundary.
func EveryMinute() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
