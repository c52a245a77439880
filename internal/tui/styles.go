package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Title bar
	TitleStyle     lipgloss.Style
	TabStyle       lipgloss.Style
	TabActiveStyle lipgloss.Style
	DateStyle      lipgloss.Style

	// Column headers
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style
	DayHeaderFocusStyle lipgloss.Style

	// Time gutter
	GutterStyle    lipgloss.Style
	GutterNowStyle lipgloss.Style

	// Grid cells
	EmptyCellStyle lipgloss.Style
	HourCellStyle  lipgloss.Style
	CursorStyle    lipgloss.Style
	NowLineStyle   lipgloss.Style
	PreviewStyle   lipgloss.Style

	// Backlog panel
	PanelStyle         lipgloss.Style
	PanelTitleStyle    lipgloss.Style
	PanelMutedStyle    lipgloss.Style
	BacklogItemStyle   lipgloss.Style
	BacklogCursorStyle lipgloss.Style
	BacklogArmedStyle  lipgloss.Style
	MutedStyle         lipgloss.Style

	// Footer
	StatusStyle      lipgloss.Style
	StatusErrorStyle lipgloss.Style
	HelpKeyStyle     lipgloss.Style
	HelpDescStyle    lipgloss.Style

	// Modals
	ModalStyle        lipgloss.Style
	ModalTitleStyle   lipgloss.Style
	ModalLabelStyle   lipgloss.Style
	ModalFocusStyle   lipgloss.Style
	ModalDangerStyle  lipgloss.Style
	ModalInputStyle   lipgloss.Style
	ModalPlaceholder  lipgloss.Style
	ModalCursorStyle  lipgloss.Style
	ModalOptionStyle  lipgloss.Style
	ModalOptionActive lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)

	return &Styles{
		palette: p,

		TitleStyle:     base.Foreground(p.Primary).Bold(true),
		TabStyle:       base.Foreground(p.MutedFg).Padding(0, 1),
		TabActiveStyle: lipgloss.NewStyle().Background(p.Primary).Foreground(p.TextOnPrimary).Bold(true).Padding(0, 1),
		DateStyle:      base.Bold(true),

		DayHeaderStyle:      base.Foreground(p.MutedFg),
		DayHeaderTodayStyle: base.Foreground(p.Primary).Bold(true),
		DayHeaderFocusStyle: lipgloss.NewStyle().Background(p.Secondary).Foreground(p.Fg).Bold(true),

		GutterStyle:    base.Foreground(p.MutedFg),
		GutterNowStyle: base.Foreground(p.Destructive).Bold(true),

		EmptyCellStyle: base,
		HourCellStyle:  base.Foreground(p.Border),
		CursorStyle:    lipgloss.NewStyle().Background(p.Secondary).Foreground(p.Fg),
		NowLineStyle:   base.Foreground(p.Destructive),
		PreviewStyle:   lipgloss.NewStyle().Background(p.Accent).Foreground(p.Fg).Bold(true),

		PanelStyle:         lipgloss.NewStyle().Background(p.Card).Foreground(p.Fg),
		PanelTitleStyle:    lipgloss.NewStyle().Background(p.Card).Foreground(p.Primary).Bold(true),
		PanelMutedStyle:    lipgloss.NewStyle().Background(p.Card).Foreground(p.MutedFg),
		BacklogItemStyle:   lipgloss.NewStyle().Background(p.Card).Foreground(p.Fg),
		BacklogCursorStyle: lipgloss.NewStyle().Background(p.Secondary).Foreground(p.Fg).Bold(true),
		BacklogArmedStyle:  lipgloss.NewStyle().Background(p.Primary).Foreground(p.TextOnPrimary).Bold(true),
		MutedStyle:         lipgloss.NewStyle().Foreground(p.MutedFg),

		StatusStyle:      base.Foreground(p.Fg),
		StatusErrorStyle: base.Foreground(p.Destructive).Bold(true),
		HelpKeyStyle:     base.Foreground(p.Primary).Bold(true),
		HelpDescStyle:    base.Foreground(p.MutedFg),

		ModalStyle: lipgloss.NewStyle().
			Background(p.Card).
			Foreground(p.Fg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			BorderBackground(p.Card).
			Padding(1, 2),
		ModalTitleStyle:   lipgloss.NewStyle().Background(p.Card).Foreground(p.Primary).Bold(true),
		ModalLabelStyle:   lipgloss.NewStyle().Background(p.Card).Foreground(p.MutedFg),
		ModalFocusStyle:   lipgloss.NewStyle().Background(p.Card).Foreground(p.Primary).Bold(true),
		ModalDangerStyle:  lipgloss.NewStyle().Background(p.Card).Foreground(p.Destructive).Bold(true),
		ModalInputStyle:   lipgloss.NewStyle().Background(p.Card).Foreground(p.Fg),
		ModalPlaceholder:  lipgloss.NewStyle().Background(p.Card).Foreground(p.MutedFg),
		ModalCursorStyle:  lipgloss.NewStyle().Foreground(p.Primary),
		ModalOptionStyle:  lipgloss.NewStyle().Background(p.Card).Foreground(p.MutedFg).Padding(0, 1),
		ModalOptionActive: lipgloss.NewStyle().Background(p.Secondary).Foreground(p.Fg).Bold(true).Padding(0, 1),
	}
}

// BlockStyle returns the style of one block row.
// Past blocks, and blocks already done or skipped, are drawn faded.
func (s *Styles) BlockStyle(a activity.Activity, past, alt bool) lipgloss.Style {
	c := s.palette.Block(a)
	bg, fg := c.Bg, c.Fg
	switch {
	case past || a.Status == activity.StatusDone || a.Status == activity.StatusSkipped:
		bg, fg = c.PastBg, c.PastFg
	case alt:
		bg = c.BgAlt
	}
	st := lipgloss.NewStyle().Background(bg).Foreground(fg)
	if a.Status == activity.StatusSkipped {
		st = st.Strikethrough(true)
	}
	return st
}

// EdgeStyle returns the style of the left accent bar of a block.
func (s *Styles) EdgeStyle(a activity.Activity) lipgloss.Style {
	c := s.palette.Block(a)
	return lipgloss.NewStyle().Background(c.Bg).Foreground(c.Edge)
}

// TypeMarkStyle returns the style of the type marker in the backlog.
func (s *Styles) TypeMarkStyle(a activity.Activity, bg lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.palette.Block(a).Edge).Background(bg)
}
