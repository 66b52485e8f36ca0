package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the scorecard backfill and project sync on their cron schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd.Context())
			if err != nil {
				return err
			}
			log := config.Logger

			sched := cron.New()
			if _, err := sched.AddFunc(c.Settings.ScheduleSpec, func() {
				result, err := c.ScorecardContainer.Service.ReconcileRecentWeeks(context.Background(), c.Settings.RecentWeeks)
				if err != nil {
					log.WithError(err).Error("Scheduled scorecard backfill failed")
					return
				}
				log.WithFields(logrus.Fields{
					"synced": result.Synced,
					"errors": len(result.Errors),
				}).Info("Scheduled scorecard backfill finished")
			}); err != nil {
				return err
			}

			if c.Settings.SyncSchedule != "" {
				if _, err := sched.AddFunc(c.Settings.SyncSchedule, func() {
					report, err := c.SyncContainer.Service.SyncAll(context.Background(), nil)
					if err != nil {
						log.WithError(err).Error("Scheduled project sync failed")
						return
					}
					log.WithFields(logrus.Fields{
						"items":  report.Items,
						"errors": len(report.Errors),
					}).Info("Scheduled project sync finished")
				}); err != nil {
					return err
				}
			}

			sched.Start()
			log.WithFields(logrus.Fields{
				"scorecard": c.Settings.ScheduleSpec,
				"sync":      c.Settings.SyncSchedule,
			}).Info("Scheduler started")

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			<-sched.Stop().Done()
			return nil
		},
	}
}
