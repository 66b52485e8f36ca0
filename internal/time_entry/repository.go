package timeentry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("time entry not found")

type TimeEntryRepository interface {
	Create(ctx context.Context, e *TimeEntry) error
	Update(ctx context.Context, e *TimeEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*TimeEntry, error)
	FindByUserTaskDate(ctx context.Context, userID, taskID uuid.UUID, date util.Date) (*TimeEntry, error)
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to util.Date) ([]TimeEntry, error)

	SumHours(ctx context.Context, from, to util.Date, projectStatus string) (float64, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	CountByTask(ctx context.Context, taskID uuid.UUID) (int64, error)
	SumByProject(ctx context.Context, projectID uuid.UUID) (float64, error)
	SumByProjectTasks(ctx context.Context, projectID uuid.UUID) (float64, error)
	SumHoursByClient(ctx context.Context, boardIDs []string) (map[string]float64, error)
}

type timeEntryRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) Create(ctx context.Context, e *TimeEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *timeEntryRepository) Update(ctx context.Context, e *TimeEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *timeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&TimeEntry{}, "id = ?", id).Error
}

func (r *timeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*TimeEntry, error) {
	var e TimeEntry
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *timeEntryRepository) FindByUserTaskDate(ctx context.Context, userID, taskID uuid.UUID, date util.Date) (*TimeEntry, error) {
	var e TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ? AND date = ?", userID, taskID, date).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *timeEntryRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to util.Date) ([]TimeEntry, error) {
	var entries []TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

// SumHours totals the hours logged by everyone between from and to inclusive.
// A non-empty projectStatus narrows the sum to projects in that status.
func (r *timeEntryRepository) SumHours(ctx context.Context, from, to util.Date, projectStatus string) (float64, error) {
	var total float64
	q := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("time_entries.date BETWEEN ? AND ?", from, to)
	if projectStatus != "" {
		q = q.Joins("JOIN projects ON projects.id = time_entries.project_id").
			Where("projects.status = ?", projectStatus)
	}
	err := q.Select("COALESCE(SUM(time_entries.hours), 0)").Scan(&total).Error
	return total, err
}

// CountByProject counts entries referencing the project directly or through
// one of its tasks.
func (r *timeEntryRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("project_id = ? OR task_id IN (?)", projectID,
			r.db.Table("tasks").Select("id").Where("project_id = ?", projectID)).
		Count(&count).Error
	return count, err
}

func (r *timeEntryRepository) CountByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TimeEntry{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, err
}

func (r *timeEntryRepository) SumByProject(ctx context.Context, projectID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total).Error
	return total, err
}

func (r *timeEntryRepository) SumByProjectTasks(ctx context.Context, projectID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Where("task_id IN (?)", r.db.Table("tasks").Select("id").Where("project_id = ?", projectID)).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total).Error
	return total, err
}

// SumHoursByClient totals hours per client name across projects on the given boards.
func (r *timeEntryRepository) SumHoursByClient(ctx context.Context, boardIDs []string) (map[string]float64, error) {
	out := make(map[string]float64)
	if len(boardIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ClientName string
		Hours      float64
	}
	err := r.db.WithContext(ctx).
		Model(&TimeEntry{}).
		Select("projects.client_name AS client_name, COALESCE(SUM(time_entries.hours), 0) AS hours").
		Joins("JOIN projects ON projects.id = time_entries.project_id").
		Where("projects.board_id IN ?", boardIDs).
		Group("projects.client_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ClientName] = row.Hours
	}
	return out, nil
}
