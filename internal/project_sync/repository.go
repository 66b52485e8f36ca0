package projectsync

import (
	"context"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/task"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MergeRepository folds rows that mirror the same upstream item into one.
type MergeRepository interface {
	DuplicateExternalIDs(ctx context.Context) ([]string, error)
	MergeProjects(ctx context.Context, externalItemID string) (int, error)
}

type mergeRepository struct {
	db *gorm.DB
}

func NewMergeRepository(db *gorm.DB) MergeRepository {
	return &mergeRepository{db: db}
}

func (r *mergeRepository) DuplicateExternalIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&project.Project{}).
		Where("external_item_id <> ''").
		Group("external_item_id").
		Having("COUNT(*) > 1").
		Pluck("external_item_id", &ids).Error
	return ids, err
}

func countProjectEntries(tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&timeentry.TimeEntry{}).
		Where("project_id = ? OR task_id IN (?)", projectID,
			tx.Model(&task.Task{}).Select("id").Where("project_id = ?", projectID)).
		Count(&n).Error
	return n, err
}

func countTaskEntries(tx *gorm.DB, taskID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&timeentry.TimeEntry{}).Where("task_id = ?", taskID).Count(&n).Error
	return n, err
}

// MergeProjects keeps the row with the most time entries (the oldest on a
// tie), moves tasks and entries of the others onto it and deletes them. It
// returns the number of rows removed.
func (r *mergeRepository) MergeProjects(ctx context.Context, externalItemID string) (int, error) {
	removed := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []project.Project
		if err := tx.Where("external_item_id = ?", externalItemID).Order("created_at ASC").Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) < 2 {
			return nil
		}

		keep, best := 0, int64(-1)
		for i := range rows {
			n, err := countProjectEntries(tx, rows[i].ID)
			if err != nil {
				return err
			}
			if n > best {
				keep, best = i, n
			}
		}
		canonical := rows[keep]

		for i, dup := range rows {
			if i == keep {
				continue
			}
			if err := tx.Model(&task.Task{}).Where("project_id = ?", dup.ID).Update("project_id", canonical.ID).Error; err != nil {
				return err
			}
			if err := tx.Model(&timeentry.TimeEntry{}).Where("project_id = ?", dup.ID).Update("project_id", canonical.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&project.Project{}, "id = ?", dup.ID).Error; err != nil {
				return err
			}
			removed++
		}

		kept, err := mergeTasks(tx, canonical.ID)
		if err != nil {
			return err
		}
		if kept > 0 {
			config.WithContext(ctx).WithFields(logrus.Fields{
				"external_item_id": externalItemID,
				"entries":          kept,
			}).Warn("Left clashing time entries on duplicate tasks; combined hours exceed the daily limit")
		}
		return nil
	})
	return removed, err
}

// mergeTasks folds tasks of one project sharing an external id. Entries
// clashing on (user, date) are added onto the kept task's entry unless the
// sum would exceed timeentry.MaxHoursPerEntry; those stay on their own task,
// which is then kept. It returns the number of entries left unmerged.
func mergeTasks(tx *gorm.DB, projectID uuid.UUID) (int, error) {
	var externalIDs []string
	err := tx.Model(&task.Task{}).
		Where("project_id = ? AND external_item_id <> ''", projectID).
		Group("external_item_id").
		Having("COUNT(*) > 1").
		Pluck("external_item_id", &externalIDs).Error
	if err != nil {
		return 0, err
	}

	kept := 0
	for _, extID := range externalIDs {
		var tasks []task.Task
		if err := tx.Where("project_id = ? AND external_item_id = ?", projectID, extID).Order("created_at ASC").Find(&tasks).Error; err != nil {
			return kept, err
		}

		keep, best := 0, int64(-1)
		for i := range tasks {
			n, err := countTaskEntries(tx, tasks[i].ID)
			if err != nil {
				return kept, err
			}
			if n > best {
				keep, best = i, n
			}
		}
		canonical := tasks[keep]

		for i, dup := range tasks {
			if i == keep {
				continue
			}
			left, err := moveTaskEntries(tx, dup.ID, canonical.ID)
			if err != nil {
				return kept, err
			}
			if left > 0 {
				kept += left
				continue
			}
			if err := tx.Delete(&task.Task{}, "id = ?", dup.ID).Error; err != nil {
				return kept, err
			}
		}
	}
	return kept, nil
}

func moveTaskEntries(tx *gorm.DB, fromTask, toTask uuid.UUID) (int, error) {
	var entries []timeentry.TimeEntry
	if err := tx.Where("task_id = ?", fromTask).Find(&entries).Error; err != nil {
		return 0, err
	}

	left := 0
	for _, e := range entries {
		var clash timeentry.TimeEntry
		res := tx.Where("user_id = ? AND task_id = ? AND date = ?", e.UserID, toTask, e.Date).Limit(1).Find(&clash)
		if res.Error != nil {
			return left, res.Error
		}

		if res.RowsAffected > 0 {
			if clash.Hours+e.Hours > timeentry.MaxHoursPerEntry {
				left++
				continue
			}
			if err := tx.Model(&clash).Update("hours", clash.Hours+e.Hours).Error; err != nil {
				return left, err
			}
			if err := tx.Delete(&timeentry.TimeEntry{}, "id = ?", e.ID).Error; err != nil {
				return left, err
			}
			continue
		}

		if err := tx.Model(&timeentry.TimeEntry{}).Where("id = ?", e.ID).Update("task_id", toTask).Error; err != nil {
			return left, err
		}
	}
	return left, nil
}
