package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/calendar"
	"github.com/javiermolinar/slotify/internal/dateutil"
	"github.com/javiermolinar/slotify/internal/identity"
	"github.com/javiermolinar/slotify/internal/schedule"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		date   string
		week   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export scheduled activities as iCalendar",
		Long: `Write the activities scheduled on a day, or in a week with --week, as an
iCalendar (.ics) document that calendar apps can import.`,
		Example: `  slotify export > today.ics
  slotify export --week --date=next-week -o week.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date, time.Now())
			if err != nil {
				return err
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			ctx := context.Background()
			write := func(name string) func(*schedule.View) error {
				return func(v *schedule.View) error {
					return calendar.Write(w, name, v.Snapshot(), time.Now())
				}
			}
			if week {
				start := dateutil.WeekStart(day)
				return a.store.WithWeekView(ctx, start, write("slotify week of "+start.Format("2006-01-02")), schedule.WithOutcomes())
			}
			return a.store.WithDayView(ctx, day, write("slotify "+day.Format("2006-01-02")), schedule.WithOutcomes())
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday, ...)")
	cmd.Flags().BoolVar(&week, "week", false, "Export the whole week containing --date")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func (a *App) tokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [owner]",
		Short: "Issue a signed identity token",
		Long: `Issue a token naming owner, signed with identity.secret. Store it as
identity.token (or SLOTIFY_TOKEN) to act as that owner.`,
		Example: `  SLOTIFY_SECRET=s3cret slotify token alice --ttl=720h`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := identity.IssueToken(args[0], identity.TokenConfig{
				Secret: a.config.Identity.Secret,
				Issuer: a.config.Identity.Issuer,
			}, ttl, time.Now())
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, e.g. 24h (0 never expires)")

	return cmd
}
