package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/container"
	"github.com/sirupsen/logrus"
)

// job is read from the EventBridge rule's constant input when the
// detail-type does not name a task.
type job struct {
	Task string `json:"task"`
}

const (
	taskScorecard = "scorecard"
	taskSync      = "sync"
)

var c *container.Container

func handler(ctx context.Context, ev events.CloudWatchEvent) error {
	log := config.WithContext(ctx)

	j := job{Task: taskScorecard}
	if strings.Contains(strings.ToLower(ev.DetailType), taskSync) {
		j.Task = taskSync
	} else if len(ev.Detail) > 0 {
		if err := json.Unmarshal(ev.Detail, &j); err != nil {
			log.WithError(err).Warn("Unreadable event detail, running scorecard backfill")
		}
	}

	switch j.Task {
	case taskSync:
		report, err := c.SyncContainer.Service.SyncAll(ctx, nil)
		if err != nil {
			log.WithError(err).Error("Scheduled project sync failed")
			return err
		}
		log.WithFields(logrus.Fields{
			"items":  report.Items,
			"errors": len(report.Errors),
		}).Info("Scheduled project sync finished")
	default:
		result, err := c.ScorecardContainer.Service.ReconcileRecentWeeks(ctx, c.Settings.RecentWeeks)
		if err != nil {
			log.WithError(err).Error("Scheduled scorecard backfill failed")
			return err
		}
		log.WithFields(logrus.Fields{
			"synced": result.Synced,
			"errors": len(result.Errors),
		}).Info("Scheduled scorecard backfill finished")
	}
	return nil
}

func main() {
	var err error
	c, err = container.New(context.Background())
	if err != nil {
		config.Logger.WithError(err).Fatal("Failed to start")
	}
	lambda.Start(handler)
}
