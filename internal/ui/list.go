package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/schedule"
)

func (a *App) listCmd() *cobra.Command {
	var (
		date    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "list [backlog|day|week]",
		Short: "List the backlog, a day or a week",
		Long: `List activities.

  backlog  activities waiting to be scheduled, newest first
  day      activities scheduled on --date (default: today)
  week     the Monday-to-Sunday week containing --date, with totals`,
		Example: `  slotify list
  slotify list backlog
  slotify list week --date=next-week`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"backlog", "day", "week"},
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "day"
			if len(args) == 1 {
				which = strings.ToLower(args[0])
			}
			day, err := parseDay(date, time.Now())
			if err != nil {
				return err
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			opts := PrintOpts{Verbose: verbose, ShowDuration: true}
			out := cmd.OutOrStdout()
			ctx := context.Background()

			switch which {
			case "backlog":
				return a.store.WithBacklogView(ctx, func(v *schedule.View) error {
					PrintDay(out, fmt.Sprintf("BACKLOG (%d)", v.Len()), v.Snapshot(), opts)
					return nil
				})
			case "day":
				return a.store.WithDayView(ctx, day, func(v *schedule.View) error {
					PrintDay(out, day.Format("Monday, Jan 2 2006"), v.Snapshot(), opts)
					return nil
				}, schedule.WithOutcomes())
			case "week":
				start := dateutil.WeekStart(day)
				return a.store.WithWeekView(ctx, start, func(v *schedule.View) error {
					printWeek(out, activity.NewWeek(start, pointers(v.Snapshot())), opts)
					return nil
				}, schedule.WithOutcomes())
			default:
				return fmt.Errorf("unknown list %q: expected backlog, day or week", which)
			}
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday, ...)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show descriptions and full titles")

	return cmd
}

func printWeek(w io.Writer, week *activity.Week, opts PrintOpts) {
	header := fmt.Sprintf("WEEK: %s - %s", week.StartDate.Format("Mon Jan 2"), week.EndDate().Format("Mon Jan 2, 2006"))
	_, _ = fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 74))

	for i, day := range week.Days {
		if len(day) == 0 {
			continue
		}
		PrintDay(w, week.Date(i).Format("Mon Jan 2"), values(day), opts)
	}

	stats := week.Stats()
	if stats.TotalBlocks == 0 {
		_, _ = fmt.Fprintf(w, "  %s\n", formatMuted("nothing scheduled this week"))
		return
	}
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 74))
	PrintWeekStats(w, stats)
}

func pointers(acts []activity.Activity) []*activity.Activity {
	out := make([]*activity.Activity, len(acts))
	for i := range acts {
		out[i] = &acts[i]
	}
	return out
}

func values(acts []*activity.Activity) []activity.Activity {
	out := make([]activity.Activity, len(acts))
	for i, a := range acts {
		out[i] = *a
	}
	return out
}
