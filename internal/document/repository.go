package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	ExistsByObjectKey(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, projectID *uuid.UUID) ([]Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, d *Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var d Document
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *documentRepository) ExistsByObjectKey(ctx context.Context, key string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Document{}).Where("object_key = ?", key).Count(&n).Error
	return n > 0, err
}

func (r *documentRepository) List(ctx context.Context, projectID *uuid.UUID) ([]Document, error) {
	var docs []Document
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	err := q.Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Document{}, "id = ?", id).Error
}
