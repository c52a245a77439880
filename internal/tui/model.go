// Package tui provides the terminal user interface for slotify.
package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/config"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/interaction"
	"github.com/javiermolinar/slotify/internal/logging"
	"github.com/javiermolinar/slotify/internal/schedule"
	"github.com/javiermolinar/slotify/internal/timegrid"
	"github.com/javiermolinar/slotify/internal/tui/commands"
	"github.com/javiermolinar/slotify/internal/tui/theme"
)

// Surface is the calendar shown on the grid.
type Surface int

const (
	SurfaceDay Surface = iota
	SurfaceWeek
)

func (s Surface) String() string {
	if s == SurfaceWeek {
		return "week"
	}
	return "day"
}

// Focus is the panel receiving navigation keys.
type Focus int

const (
	FocusGrid Focus = iota
	FocusBacklog
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeForm
	ModeConfirmDelete
	ModeHelp
)

const viewKinds = 3 // backlog, day, week

// Options configures a Model.
type Options struct {
	Logger  *slog.Logger
	InitErr error // shown in the status bar when storage could not be opened
	Now     func() time.Time
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	store  commands.Store // nil when storage failed to open
	config *config.Config
	logger *slog.Logger
	now    func() time.Time

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// State
	surface Surface
	focus   Focus
	mode    Mode

	day        time.Time // focused day at midnight; the week surface shows its week
	cursor     int       // grid row
	scroll     int       // first visible grid row
	backlogIdx int
	armed      *activity.Activity // backlog activity waiting for a slot

	// Live view contents, indexed by schedule.Kind
	items   [viewKinds][]activity.Activity
	views   [viewKinds]*schedule.View
	unsubs  [viewKinds]func()
	gens    [viewKinds]int
	changes commands.Changes

	// One gesture controller per surface
	gestures [2]*interaction.Controller

	// Modal state
	form    activityForm
	confirm activity.Activity

	// Terminal dimensions
	width  int
	height int

	// Messages
	statusMsg  string
	statusErr  bool
	statusTime time.Time
}

// New creates a new TUI model.
func New(store commands.Store, cfg *config.Config, opts Options) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t, err := theme.Load(cfg.TUI.Theme)
	if err != nil {
		opts.Logger.Warn("loading theme", "theme", cfg.TUI.Theme, "error", err)
	}

	now := opts.Now()
	m := Model{
		store:   store,
		config:  cfg,
		logger:  opts.Logger.With("component", "tui"),
		now:     opts.Now,
		theme:   t,
		styles:  NewStyles(t),
		day:     dateutil.StartOfDay(now),
		changes: commands.NewChanges(),
	}

	rowsPerHour := max(1, cfg.TUI.RowsPerHour)
	for i, sc := range []config.SurfaceConfig{cfg.Day, cfg.Week} {
		gc := sc.Gestures()
		// One terminal row is the smallest block that can be grabbed.
		gc.MinBlockHeight = gc.Grid.HourHeight / float64(rowsPerHour)
		m.gestures[i] = interaction.New(gc)
	}
	logger := m.logger
	for i, c := range m.gestures {
		surface := Surface(i)
		// Wheel events are dropped from here until the gesture ends.
		c.OnDragStart(func(a activity.Activity) {
			logger.Debug("drag started, scroll locked", "surface", surface, "id", a.ID)
		})
	}

	m.cursor = timegrid.TimestampToMinutes(now) / (60 / rowsPerHour)

	if opts.InitErr != nil {
		m.statusMsg = "Error: " + opts.InitErr.Error()
		m.statusErr = true
		m.statusTime = now.Add(time.Hour)
	}
	return m
}

// Init opens the live views.
func (m Model) Init() tea.Cmd {
	if m.store == nil {
		return commands.EveryMinute()
	}
	return tea.Batch(
		commands.OpenView(m.store, schedule.KindBacklog, time.Time{}, m.gens[schedule.KindBacklog], m.changes),
		commands.OpenView(m.store, schedule.KindDay, m.day, m.gens[schedule.KindDay], m.changes),
		commands.OpenView(m.store, schedule.KindWeek, m.weekStart(), m.gens[schedule.KindWeek], m.changes),
		commands.WaitForChange(m.changes),
		commands.EveryMinute(),
	)
}

// Run starts the TUI on store. A nil store runs the TUI without data.
func Run(store *schedule.Store, cfg *config.Config, opts Options) error {
	var s commands.Store
	if store != nil {
		s = store
	}

	p := tea.NewProgram(New(s, cfg, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.closeViews()
	}
	return err
}

// closeViews releases every open live view.
func (m *Model) closeViews() {
	for k := range m.views {
		m.releaseView(schedule.Kind(k))
	}
}

func (m *Model) releaseView(kind schedule.Kind) {
	if m.unsubs[kind] != nil {
		m.unsubs[kind]()
		m.unsubs[kind] = nil
	}
	if m.views[kind] != nil {
		_ = m.views[kind].Close()
		m.views[kind] = nil
	}
}

// weekStart returns the Monday of the focused day's week.
func (m Model) weekStart() time.Time {
	return dateutil.WeekStart(m.day)
}

// controller returns the gesture controller of the current surface.
func (m Model) controller() *interaction.Controller {
	return m.gestures[m.surface]
}

func (m Model) grid() timegrid.Grid {
	return m.controller().Config().Grid
}

func (m Model) layout() Layout {
	columns := 1
	if m.surface == SurfaceWeek {
		columns = 7
	}
	return NewLayout(m.width, m.height, m.config.TUI.RowsPerHour, columns)
}

// weekdayIndex returns 0 for Monday through 6 for Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// focusColumn returns the grid column of the focused day.
func (m Model) focusColumn() int {
	if m.surface == SurfaceWeek {
		return weekdayIndex(m.day)
	}
	return 0
}

// columnDay returns the day shown in grid column col.
func (m Model) columnDay(col int) time.Time {
	if m.surface == SurfaceWeek {
		return m.weekStart().AddDate(0, 0, col)
	}
	return m.day
}

// columnItems returns the scheduled activities drawn in grid column col.
func (m Model) columnItems(col int) []activity.Activity {
	if m.surface == SurfaceDay {
		return m.items[schedule.KindDay]
	}
	day := m.columnDay(col)
	var out []activity.Activity
	for _, a := range m.items[schedule.KindWeek] {
		if a.HasStart() && dateutil.SameDay(day, a.StartTime) {
			out = append(out, a)
		}
	}
	return out
}

func (m Model) blocks(col int) []placed {
	return m.layout().place(m.controller(), m.columnItems(col))
}

// slotStart returns the start time of the empty slot at grid row in column col.
func (m Model) slotStart(col, row int) time.Time {
	g := m.grid()
	minutes := interaction.SlotMinutes(g, m.layout().RowToY(g, row))
	return timegrid.MinutesToTimestamp(minutes, m.columnDay(col))
}

// selected returns the activity under the cursor of the focused panel.
func (m Model) selected() (activity.Activity, bool) {
	if m.focus == FocusBacklog {
		backlog := m.items[schedule.KindBacklog]
		if m.backlogIdx >= 0 && m.backlogIdx < len(backlog) {
			return backlog[m.backlogIdx], true
		}
		return activity.Activity{}, false
	}
	b, ok := blockAt(m.blocks(m.focusColumn()), m.cursor)
	return b.Activity, ok
}

// writable reports whether the store is available, setting an error status when not.
func (m *Model) writable() bool {
	if m.store == nil {
		m.setStatus("Storage is unavailable", true)
		return false
	}
	return true
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = m.now().Add(3 * time.Second)
}
