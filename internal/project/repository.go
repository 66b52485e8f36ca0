package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("project not found")

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByExternalItemID(ctx context.Context, externalItemID string) ([]Project, error)
	List(ctx context.Context, statuses ...ProjectStatus) ([]Project, error)
	ListLeads(ctx context.Context, q LeadQuery) ([]Project, error)
	SetStatus(ctx context.Context, id uuid.UUID, status ProjectStatus) error
	DeleteWithTasks(ctx context.Context, id uuid.UUID) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepository) Update(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByExternalItemID returns every row mirroring the item, oldest first.
// More than one row means a duplicate slipped in and awaits merging.
func (r *projectRepository) FindByExternalItemID(ctx context.Context, externalItemID string) ([]Project, error) {
	var projects []Project
	err := r.db.WithContext(ctx).
		Where("external_item_id = ?", externalItemID).
		Order("created_at ASC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) List(ctx context.Context, statuses ...ProjectStatus) ([]Project, error) {
	var projects []Project
	q := r.db.WithContext(ctx).Order("name ASC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) ListLeads(ctx context.Context, q LeadQuery) ([]Project, error) {
	column := "upstream_created_on"
	if q.DateField == LeadDateDue {
		column = "due_date"
	}

	var leads []Project
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusLead).
		Where(column+" BETWEEN ? AND ?", q.From, q.To).
		Find(&leads).Error
	return leads, err
}

func (r *projectRepository) SetStatus(ctx context.Context, id uuid.UUID, status ProjectStatus) error {
	res := r.db.WithContext(ctx).Model(&Project{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithTasks removes a project and its tasks in one transaction.
func (r *projectRepository) DeleteWithTasks(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM tasks WHERE project_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Project{}, "id = ?", id).Error
	})
}
