package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

func (a *App) addCmd() *cobra.Command {
	var (
		kind        string
		duration    int
		priority    string
		color       string
		description string
		at          string
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add an activity to the backlog",
		Long: `Add a new activity. Without --at it lands in the backlog; with --at it is
placed on the grid right away.`,
		Example: `  slotify add "Write documentation"
  slotify add "Standup" --type=event --duration=15 --at="tomorrow 09.30"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := activity.ValidateTitle(args[0]); err != nil {
				return err
			}
			attrs := activity.Attributes{
				Title:       args[0],
				Description: description,
				Duration:    duration,
				Color:       color,
			}

			var err error
			if attrs.Type, err = activity.ParseType(kind); err != nil {
				return err
			}
			if attrs.Priority, err = activity.ParsePriority(priority); err != nil {
				return err
			}
			if at != "" {
				if attrs.StartTime, err = parseAt(at, time.Now()); err != nil {
					return err
				}
			}

			if err := a.ensureStore(); err != nil {
				return err
			}
			ctx := context.Background()
			id, err := a.store.Create(ctx, attrs)
			if err != nil {
				return fmt.Errorf("creating activity: %w", err)
			}
			if id == "" {
				return fmt.Errorf("creating activity: no owner configured")
			}

			where := "backlog"
			if !attrs.StartTime.IsZero() {
				where = attrs.StartTime.Format("Mon Jan 2") + " " + timegrid.MinutesToTimeString(timegrid.TimestampToMinutes(attrs.StartTime))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s [%s] %s\n",
				ShortID(id), strings.TrimSpace(args[0]), attrs.Type, where)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", string(activity.TypeTask), "Type: task, event or habit")
	cmd.Flags().IntVar(&duration, "duration", activity.DefaultDuration, "Duration in minutes")
	cmd.Flags().StringVar(&priority, "priority", string(activity.PriorityMedium), "Priority: low, medium or high")
	cmd.Flags().StringVar(&color, "color", "", "Color override (#RRGGBB)")
	cmd.Flags().StringVar(&description, "description", "", "Longer description")
	cmd.Flags().StringVar(&at, "at", "", `Place on the grid at "DATE HH.MM" (DATE: YYYY-MM-DD, today, tomorrow, monday, ...)`)

	return cmd
}

// parseAt parses "DATE HH.MM", or a bare "HH.MM" meaning today.
func parseAt(s string, now time.Time) (time.Time, error) {
	fields := strings.Fields(s)
	var date, clock string
	switch len(fields) {
	case 1:
		clock = fields[0]
	case 2:
		date, clock = fields[0], fields[1]
	default:
		return time.Time{}, fmt.Errorf("invalid time %q: expected \"DATE HH.MM\"", s)
	}
	day, err := parseDay(date, now)
	if err != nil {
		return time.Time{}, err
	}
	return atClock(day, clock)
}

// parseDay resolves a date argument. Past dates are accepted so earlier days can be reviewed.
func parseDay(s string, now time.Time) (time.Time, error) {
	day, err := dateutil.ParseRelativeDate(s, now)
	if errors.Is(err, dateutil.ErrDateInPast) {
		return dateutil.ParseDate(strings.TrimSpace(s))
	}
	return day, err
}

// atClock returns day at the given "HH.MM" time of day.
func atClock(day time.Time, clock string) (time.Time, error) {
	minutes, err := dateutil.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return timegrid.MinutesToTimestamp(minutes, day), nil
}
