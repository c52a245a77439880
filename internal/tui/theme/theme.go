// Package theme provides color themes for the TUI.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/slotify/internal/activity"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is the theme used when none or an unknown one is configured.
const DefaultName = "paper"

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`          // Page background
	Fg          string `toml:"fg"`          // Primary foreground
	Card        string `toml:"card"`        // Panels and modals
	Primary     string `toml:"primary"`     // Title, cursor, focused borders
	Secondary   string `toml:"secondary"`   // Selected rows
	Muted       string `toml:"muted"`       // Hour rows, empty cells
	MutedFg     string `toml:"muted_fg"`    // Labels, hints, past blocks
	Accent      string `toml:"accent"`      // Drag preview
	Destructive string `toml:"destructive"` // Errors and delete confirmation
	Border      string `toml:"border"`      // Grid lines and panel borders

	// Block colors per activity type. Empty values use the activity defaults.
	Task  string `toml:"task"`
	Event string `toml:"event"`
	Habit string `toml:"habit"`
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load loads a theme by name from embedded files.
// Falls back to paper if the theme is not found.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	path := "embedded/" + name + ".toml"
	data, err := embeddedThemes.ReadFile(path)
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

// TypeColor returns the block color of an activity type.
func (t *Theme) TypeColor(typ activity.Type) string {
	switch typ {
	case activity.TypeEvent:
		return t.Event
	case activity.TypeHabit:
		return t.Habit
	default:
		return t.Task
	}
}

func (t *Theme) applyDefaults() {
	t.Card = coalesce(t.Card, t.Bg)
	t.Primary = coalesce(t.Primary, t.Fg)
	t.Secondary = coalesce(t.Secondary, t.Card)
	t.Muted = coalesce(t.Muted, t.Bg)
	t.MutedFg = coalesce(t.MutedFg, t.Fg)
	t.Accent = coalesce(t.Accent, t.Secondary)
	t.Border = coalesce(t.Border, t.MutedFg)
	t.Destructive = coalesce(t.Destructive, t.Primary)
	t.Task = coalesce(t.Task, activity.ColorsFor(activity.TypeTask).Background)
	t.Event = coalesce(t.Event, activity.ColorsFor(activity.TypeEvent).Background)
	t.Habit = coalesce(t.Habit, activity.ColorsFor(activity.TypeHabit).Background)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"paper", "paper-dark"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
