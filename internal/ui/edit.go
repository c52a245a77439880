package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/activity"
)

func (a *App) editCmd() *cobra.Command {
	var (
		title       string
		description string
		kind        string
		priority    string
		color       string
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit the details of an activity",
		Long: `Edit the title, description, type, priority or color of an activity.
Only the flags that are given change. Pass --color="" to drop a color override.`,
		Example: `  slotify edit 3f2a9c1b --title="Review PRs" --priority=high`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch activity.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("type") {
				t, err := activity.ParseType(kind)
				if err != nil {
					return err
				}
				patch.Type = &t
			}
			if flags.Changed("priority") {
				p, err := activity.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}
			if flags.Changed("color") {
				patch.Color = &color
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change: pass at least one of --title, --description, --type, --priority or --color")
			}
			if err := patch.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			act, err := a.lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.store.Update(ctx, act, patch); err != nil {
				return fmt.Errorf("updating activity: %w", err)
			}
			PrintActivityRow(cmd.OutOrStdout(), *act, PrintOpts{Verbose: true}, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&kind, "type", "", "New type: task, event or habit")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority: low, medium or high")
	cmd.Flags().StringVar(&color, "color", "", "New color override (#RRGGBB), empty to clear")

	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete an activity",
		Long: `Delete an activity. It disappears from every list and from the planner.

Example:
  slotify delete 3f2a9c1b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			act, err := a.lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.store.SoftDelete(ctx, act); err != nil {
				return fmt.Errorf("deleting activity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", formatDanger("Deleted"), ShortID(act.ID), act.Title)
			return nil
		},
	}
}
