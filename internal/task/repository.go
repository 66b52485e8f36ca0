package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("task not found")

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindByExternalItemID(ctx context.Context, externalItemID string) ([]Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Task, error)
	SetStatus(ctx context.Context, id uuid.UUID, status TaskStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taskRepository) Update(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) FindByExternalItemID(ctx context.Context, externalItemID string) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("external_item_id = ?", externalItemID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) SetStatus(ctx context.Context, id uuid.UUID, status TaskStatus) error {
	return r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Update("status", status).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Task{}, "id = ?", id).Error
}
