package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/interaction"
	"github.com/javiermolinar/slotify/internal/schedule"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

// View renders the planner.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	l := m.layout()
	if l.TooSmall() {
		return "Terminal too small"
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderTitle(l), m.renderColumnHeaders(l))
	lines = append(lines, m.renderGrid(l)...)
	lines = append(lines, m.renderStatus(l), m.renderHints(l))
	base := strings.Join(lines, "\n")

	switch m.mode {
	case ModeForm:
		return overlay(base, m.form.view(m.styles), m.width, m.height)
	case ModeConfirmDelete:
		return overlay(base, confirmView(m.styles, m.confirm), m.width, m.height)
	case ModeHelp:
		return overlay(base, m.helpView(), m.width, m.height)
	}
	return base
}

// cell renders text in exactly width cells.
func cell(style lipgloss.Style, text string, width int) string {
	if width <= 0 {
		return ""
	}
	return style.Width(width).MaxWidth(width).Render(ansi.Truncate(text, width, "…"))
}

// fill pads a rendered line with background up to the terminal width.
func (m Model) fill(line string) string {
	if w := lipgloss.Width(line); w < m.width {
		line += m.styles.EmptyCellStyle.Render(strings.Repeat(" ", m.width-w))
	}
	return line
}

func (m Model) renderTitle(l Layout) string {
	var b strings.Builder
	b.WriteString(m.styles.TitleStyle.Render(" slotify "))
	for _, s := range []Surface{SurfaceDay, SurfaceWeek} {
		label := strings.ToUpper(s.String()[:1]) + s.String()[1:]
		if s == m.surface {
			b.WriteString(m.styles.TabActiveStyle.Render(label))
		} else {
			b.WriteString(m.styles.TabStyle.Render(label))
		}
	}
	b.WriteString(m.styles.EmptyCellStyle.Render("  "))

	var date string
	if m.surface == SurfaceWeek {
		ws := m.weekStart()
		date = fmt.Sprintf("Week of %s - %s", ws.Format("Jan 2"), ws.AddDate(0, 0, 6).Format("Jan 2 2006"))
	} else {
		date = m.day.Format("Monday, Jan 2 2006")
	}
	b.WriteString(m.styles.DateStyle.Render(date))
	return m.fill(ansi.Truncate(b.String(), l.Width, ""))
}

func (m Model) renderColumnHeaders(l Layout) string {
	var b strings.Builder
	if l.Backlog > 0 {
		b.WriteString(cell(m.styles.PanelTitleStyle, fmt.Sprintf(" BACKLOG (%d)", len(m.items[schedule.KindBacklog])), l.Backlog))
	}
	b.WriteString(cell(m.styles.GutterStyle, "", gutterWidth))

	today := m.now()
	for col := 0; col < l.Columns; col++ {
		day := m.columnDay(col)
		label := day.Format("Mon 2")
		if l.Columns == 1 {
			label = fmt.Sprintf("%s  %s", day.Format("Monday"), dayTotal(m.columnItems(col)))
		}
		style := m.styles.DayHeaderStyle
		switch {
		case l.Columns > 1 && col == m.focusColumn():
			style = m.styles.DayHeaderFocusStyle
		case dateutil.SameDay(day, today):
			style = m.styles.DayHeaderTodayStyle
		}
		b.WriteString(cell(style, " "+label, l.ColWidth))
	}
	return m.fill(b.String())
}

// dayTotal summarizes the scheduled time of a day.
func dayTotal(acts []activity.Activity) string {
	total := 0
	for _, a := range acts {
		total += a.Duration
	}
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("%d blocks, %s", len(acts), activity.FormatMinutes(total))
}

func (m Model) renderGrid(l Layout) []string {
	now := m.now()
	nowRow := -1
	for col := 0; col < l.Columns; col++ {
		if dateutil.SameDay(m.columnDay(col), now) {
			nowRow = timegrid.TimestampToMinutes(now) / l.RowMinutes()
		}
	}
	preview := m.controller().Preview()

	columns := make([][]placed, l.Columns)
	for col := range columns {
		columns[col] = m.blocks(col)
	}

	lines := make([]string, 0, l.VisibleRows)
	for i := 0; i < l.VisibleRows; i++ {
		row := m.scroll + i
		var b strings.Builder
		if l.Backlog > 0 {
			b.WriteString(m.renderBacklogLine(l, i))
		}
		b.WriteString(m.renderGutter(l, row, nowRow))
		for col := 0; col < l.Columns; col++ {
			today := dateutil.SameDay(m.columnDay(col), now)
			b.WriteString(m.renderCell(l, columns[col], col, row, today && row == nowRow, preview, now))
		}
		lines = append(lines, m.fill(b.String()))
	}
	return lines
}

func (m Model) renderGutter(l Layout, row, nowRow int) string {
	if row >= l.TotalRows() {
		return cell(m.styles.GutterStyle, "", gutterWidth)
	}
	minutes := row * l.RowMinutes()
	switch {
	case row == nowRow:
		return cell(m.styles.GutterNowStyle, timegrid.MinutesToTimeString(minutes), gutterWidth)
	case row%l.RowsPerHour == 0:
		return cell(m.styles.GutterStyle, timegrid.MinutesToTimeString(minutes), gutterWidth)
	default:
		return cell(m.styles.GutterStyle, "", gutterWidth)
	}
}

func (m Model) renderCell(l Layout, blocks []placed, col, row int, nowLine bool, preview interaction.Preview, now time.Time) string {
	w := l.ColWidth
	if b, ok := blockAt(blocks, row); ok {
		return m.renderBlockRow(b, blocks, row, w, preview, now)
	}

	focused := m.focus == FocusGrid && col == m.focusColumn() && row == m.cursor
	switch {
	case focused && m.armed != nil:
		return cell(m.styles.CursorStyle, " + "+m.armed.Title, w)
	case focused:
		return cell(m.styles.CursorStyle, "", w)
	case nowLine:
		return cell(m.styles.NowLineStyle, strings.Repeat("─", w), w)
	case row%l.RowsPerHour == 0:
		return cell(m.styles.HourCellStyle, strings.Repeat("┈", w), w)
	default:
		return cell(m.styles.EmptyCellStyle, "", w)
	}
}

func (m Model) renderBlockRow(b placed, blocks []placed, row, w int, preview interaction.Preview, now time.Time) string {
	a := b.Activity
	offset := row - b.Span.Top
	active := preview.Active() && preview.ActivityID == a.ID

	var text string
	switch {
	case offset == 0 && active:
		text = fmt.Sprintf("%s %s", preview.Label, a.Title)
	case offset == 0:
		text = a.Title
		if a.Status == activity.StatusDone {
			text = "✓ " + text
		}
	case offset == 1:
		text = blockTimeRange(a)
	}
	if b.Span.Handle(row) && b.Span.Rows() > 2 {
		text = strings.Repeat("╌", max(0, w-2))
	}

	if active {
		return cell(m.styles.PreviewStyle, "▌"+text, w)
	}
	past := a.EndTime().Before(now)
	alt := adjacentSameColor(blocks, b)
	body := cell(m.styles.BlockStyle(a, past, alt), text, w-1)
	return m.styles.EdgeStyle(a).Render("▌") + body
}

// adjacentSameColor reports whether b starts right where a block of the same color ends,
// so the two can be told apart.
func adjacentSameColor(blocks []placed, b placed) bool {
	for _, other := range blocks {
		if other.Activity.ID == b.Activity.ID {
			continue
		}
		if other.Span.Bottom == b.Span.Top && other.Activity.DisplayColor() == b.Activity.DisplayColor() {
			return true
		}
	}
	return false
}

// blockTimeRange formats the span of a block, marking blocks that end the next day.
func blockTimeRange(a activity.Activity) string {
	start := timegrid.TimestampToMinutes(a.StartTime)
	s := timegrid.MinutesToTimeString(start) + "-" + timegrid.MinutesToTimeString(start+a.Duration)
	if a.CrossesMidnight() {
		s += " +1"
	}
	return s
}

func (m Model) renderBacklogLine(l Layout, line int) string {
	w := l.Backlog
	if line == 0 {
		hint := " tab to select"
		if m.focus == FocusBacklog {
			hint = " ▸ enter picks a slot"
		}
		return cell(m.styles.PanelMutedStyle, hint, w)
	}
	backlog := m.items[schedule.KindBacklog]
	idx := line - 1 + m.backlogOffset(l)
	if idx >= len(backlog) {
		if len(backlog) == 0 && line == 1 {
			return cell(m.styles.PanelMutedStyle, "  n to add", w)
		}
		return cell(m.styles.PanelStyle, "", w)
	}

	a := backlog[idx]
	style := m.styles.BacklogItemStyle
	switch {
	case m.armed != nil && m.armed.ID == a.ID:
		style = m.styles.BacklogArmedStyle
	case m.focus == FocusBacklog && idx == m.backlogIdx:
		style = m.styles.BacklogCursorStyle
	}
	bg := style.GetBackground()
	mark := m.styles.TypeMarkStyle(a, bg).Render(" ■ ")
	text := fmt.Sprintf("%s %s", a.Title, timegrid.DurationLabel(a.Duration))
	return mark + cell(style, text, w-3)
}

func (m Model) renderStatus(l Layout) string {
	switch {
	case m.statusMsg != "" && m.statusErr:
		return m.fill(cell(m.styles.StatusErrorStyle, " "+m.statusMsg, l.Width))
	case m.statusMsg != "":
		return m.fill(cell(m.styles.StatusStyle, " "+m.statusMsg, l.Width))
	}
	if a, ok := m.selected(); ok {
		return m.fill(cell(m.styles.StatusStyle, " "+describe(a), l.Width))
	}
	return m.fill(cell(m.styles.StatusStyle, "", l.Width))
}

// describe summarizes an activity for the status line.
func describe(a activity.Activity) string {
	parts := []string{a.Title}
	if a.HasStart() {
		parts = append(parts, blockTimeRange(a))
	} else {
		parts = append(parts, timegrid.DurationLabel(a.Duration))
	}
	parts = append(parts, string(a.Type), string(a.Priority), string(a.Status))
	return strings.Join(parts, " · ")
}

func (m Model) renderHints(l Layout) string {
	hints := [][2]string{{"?", "help"}, {"v", "day/week"}, {"n", "new"}, {"a", "add here"}, {"tab", "backlog"}, {"q", "quit"}}
	if m.armed != nil {
		hints = [][2]string{{"enter", "place"}, {"click", "pick slot"}, {"esc", "cancel"}}
	}
	var b strings.Builder
	b.WriteString(m.styles.EmptyCellStyle.Render(" "))
	for _, h := range hints {
		b.WriteString(m.styles.HelpKeyStyle.Render(h[0]))
		b.WriteString(m.styles.HelpDescStyle.Render(" " + h[1] + "  "))
	}
	return m.fill(ansi.Truncate(b.String(), l.Width, ""))
}

func (m Model) helpView() string {
	var b strings.Builder
	b.WriteString(m.styles.ModalTitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, h := range keyHelp {
		b.WriteString(m.styles.ModalFocusStyle.Render(fmt.Sprintf("%-10s", h[0])))
		b.WriteString(m.styles.ModalLabelStyle.Render(h[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.ModalLabelStyle.Render("Drag a block to move it, drag its last row to resize."))
	return m.styles.ModalStyle.Render(b.String())
}
