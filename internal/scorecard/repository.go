package scorecard

import (
	"context"
	"errors"

	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMetricNotFound   = errors.New("metric not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type ScorecardRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	SaveCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CountMetricsByCategory(ctx context.Context, id uuid.UUID) (int64, error)

	ListMetrics(ctx context.Context) ([]Metric, error)
	ListAutomatedMetrics(ctx context.Context) ([]Metric, error)
	GetMetric(ctx context.Context, id uuid.UUID) (*Metric, error)
	SaveMetric(ctx context.Context, m *Metric) error
	DeleteMetric(ctx context.Context, id uuid.UUID) error

	FindEntry(ctx context.Context, metricID uuid.UUID, weekStart util.Date) (*WeeklyEntry, error)
	CreateEntry(ctx context.Context, e *WeeklyEntry) error
	UpdateEntryValue(ctx context.Context, id uuid.UUID, value float64) error
	SaveEntry(ctx context.Context, e *WeeklyEntry) error
	ListEntriesForWeeks(ctx context.Context, weekStarts []util.Date) ([]WeeklyEntry, error)
	CountEntriesByMetric(ctx context.Context, metricID uuid.UUID) (int64, error)
}

type scorecardRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ScorecardRepository {
	return &scorecardRepository{db: db}
}

func (r *scorecardRepository) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := r.db.WithContext(ctx).Order("display_order ASC, name ASC").Find(&categories).Error
	return categories, err
}

func (r *scorecardRepository) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *scorecardRepository) SaveCategory(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *scorecardRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Category{}, "id = ?", id).Error
}

func (r *scorecardRepository) CountMetricsByCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Metric{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func (r *scorecardRepository) orderedMetrics(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Metric{}).
		Select("metrics.*").
		Joins("LEFT JOIN metric_categories ON metric_categories.id = metrics.category_id").
		Order("metric_categories.display_order ASC, metrics.display_order ASC, metrics.name ASC")
}

func (r *scorecardRepository) ListMetrics(ctx context.Context) ([]Metric, error) {
	var metrics []Metric
	err := r.orderedMetrics(ctx).Find(&metrics).Error
	return metrics, err
}

func (r *scorecardRepository) ListAutomatedMetrics(ctx context.Context) ([]Metric, error) {
	var metrics []Metric
	err := r.orderedMetrics(ctx).
		Where("metrics.is_automated = ?", true).
		Find(&metrics).Error
	return metrics, err
}

func (r *scorecardRepository) GetMetric(ctx context.Context, id uuid.UUID) (*Metric, error) {
	var m Metric
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *scorecardRepository) SaveMetric(ctx context.Context, m *Metric) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *scorecardRepository) DeleteMetric(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Metric{}, "id = ?", id).Error
}

func (r *scorecardRepository) FindEntry(ctx context.Context, metricID uuid.UUID, weekStart util.Date) (*WeeklyEntry, error) {
	var e WeeklyEntry
	err := r.db.WithContext(ctx).
		Where("metric_id = ? AND week_start_date = ?", metricID, weekStart).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts a new entry. When a concurrent run inserted the same
// (metric, week) first, only its value is overwritten.
func (r *scorecardRepository) CreateEntry(ctx context.Context, e *WeeklyEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "metric_id"}, {Name: "week_start_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(e).Error
}

func (r *scorecardRepository) UpdateEntryValue(ctx context.Context, id uuid.UUID, value float64) error {
	return r.db.WithContext(ctx).Model(&WeeklyEntry{}).Where("id = ?", id).Update("value", value).Error
}

func (r *scorecardRepository) SaveEntry(ctx context.Context, e *WeeklyEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *scorecardRepository) ListEntriesForWeeks(ctx context.Context, weekStarts []util.Date) ([]WeeklyEntry, error) {
	var entries []WeeklyEntry
	if len(weekStarts) == 0 {
		return entries, nil
	}
	err := r.db.WithContext(ctx).Where("week_start_date IN ?", weekStarts).Find(&entries).Error
	return entries, err
}

func (r *scorecardRepository) CountEntriesByMetric(ctx context.Context, metricID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&WeeklyEntry{}).Where("metric_id = ?", metricID).Count(&count).Error
	return count, err
}
