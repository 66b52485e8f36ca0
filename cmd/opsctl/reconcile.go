package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	projectsync "github.com/saulo-duarte/studio-ops/internal/project_sync"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	var weeks int
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute automated scorecard metrics for the recent weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}
			if weeks <= 0 {
				weeks = c.Settings.RecentWeeks
			}
			result, err := c.ScorecardContainer.Service.ReconcileRecentWeeks(cmd.Context(), weeks)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "number of weeks ending with the current one")
	return cmd
}

func reconcileWeekCmd() *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "reconcile-week",
		Short: "Recompute automated scorecard metrics for the week containing a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := util.ParseDate(week)
			if err != nil {
				return fmt.Errorf("invalid --week %q, expected YYYY-MM-DD", week)
			}
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}
			result, err := c.ScorecardContainer.Service.ReconcileWeek(cmd.Context(), d)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "any date inside the week, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func syncCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the configured Monday boards into projects and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}

			var progress projectsync.ProgressFunc
			if !quiet {
				progress = func(p projectsync.Progress) {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", p.Phase, p.Message)
				}
			}
			report, err := c.SyncContainer.Service.SyncAll(cmd.Context(), progress)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func dedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Merge projects that mirror the same Monday item",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := c.SyncContainer.Service.MergeDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s duplicate projects\n", humanize.Comma(int64(removed)))
			return nil
		},
	}
}
