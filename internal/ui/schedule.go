package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

// lookup opens the store and resolves an id or unique id prefix.
func (a *App) lookup(ctx context.Context, id string) (*activity.Activity, error) {
	if err := a.ensureStore(); err != nil {
		return nil, err
	}
	act, err := a.store.Lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return act, nil
}

func (a *App) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [id] [date] [HH.MM]",
		Short: "Place a backlog activity on the grid",
		Example: `  slotify schedule 3f2a9c1b tomorrow 09.30
  slotify schedule 3f2a 2025-01-20 14.00`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[1], time.Now())
			if err != nil {
				return err
			}
			start, err := atClock(day, args[2])
			if err != nil {
				return err
			}

			ctx := context.Background()
			act, err := a.lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.store.Schedule(ctx, act, start); err != nil {
				return fmt.Errorf("scheduling activity: %w", err)
			}
			printPlaced(cmd.OutOrStdout(), "Scheduled", act)
			return nil
		},
	}
}

func (a *App) unscheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule [id]",
		Short: "Move an activity back to the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			act, err := a.lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.store.Unschedule(ctx, act); err != nil {
				return fmt.Errorf("unscheduling activity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to the backlog: %s\n", ShortID(act.ID), act.Title)
			return nil
		},
	}
}

func (a *App) moveCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "move [id] [HH.MM]",
		Short: "Move a scheduled activity to another time",
		Long: `Move a scheduled activity to a new start time on the same day, or on
--date when given.`,
		Example: `  slotify move 3f2a9c1b 10.15
  slotify move 3f2a9c1b 10.15 --date=friday`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := parseClockArg(args[1])
			if err != nil {
				return err
			}

			ctx := context.Background()
			act, err := a.lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if !act.IsScheduled() {
				return fmt.Errorf("%s: %w", args[0], activity.ErrNotScheduled)
			}
			ref := act.StartTime
			if date != "" {
				if ref, err = parseDay(date, time.Now()); err != nil {
					return err
				}
			}
			if err := a.store.Reschedule(ctx, act, timegrid.MinutesToTimestamp(minutes, ref)); err != nil {
				return fmt.Errorf("moving activity: %w", err)
			}
			printPlaced(cmd.OutOrStdout(), "Moved", act)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Move to another day (YYYY-MM-DD, tomorrow, monday, ...)")

	return cmd
}

func (a *App) resizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resize [id] [minutes]",
		Short: "Change the duration of an activity",
		Long: `Change the duration of an activity. Durations below the snap interval
are raised to it.`,
		Example: `  slotify resize 3f2a9c1b 45`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration %q: expected minutes", args[1])
			}

			ctx := context.Background()
			act, err := a.lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.store.Resize(ctx, act, minutes); err != nil {
				return fmt.Errorf("resizing activity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resized %s to %s: %s\n",
				ShortID(act.ID), activity.FormatMinutes(act.Duration), act.Title)
			return nil
		},
	}
}

func parseClockArg(s string) (int, error) {
	minutes, err := dateutil.ParseClock(s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return minutes, nil
}

func printPlaced(w io.Writer, verb string, act *activity.Activity) {
	_, _ = fmt.Fprintf(w, "%s %s: %s %s %s\n",
		verb,
		ShortID(act.ID),
		act.Title,
		act.StartTime.Format("Mon Jan 2"),
		TimeRange(*act),
	)
}
