package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/activity"
)

// outcomeCmd builds "done" or "skip", which record how a scheduled activity went.
func (a *App) outcomeCmd(status activity.Status) *cobra.Command {
	use, short, verb := "done", "Mark a scheduled activity as done", "Done"
	if status == activity.StatusSkipped {
		use, short, verb = "skip", "Mark a scheduled activity as skipped", "Skipped"
	}

	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Long: short + `.

The activity keeps its place on the grid so the week totals stay accurate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			act, err := a.lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.store.SetOutcome(ctx, act, status); err != nil {
				return fmt.Errorf("setting outcome: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %s\n", statusSymbol(act.Status), verb, ShortID(act.ID), act.Title)
			return nil
		},
	}
}
