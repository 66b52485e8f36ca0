package flexi

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("flexi credit not found")

type CreditRepository interface {
	List(ctx context.Context, clientName string) ([]Credit, error)
	Create(ctx context.Context, c *Credit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type creditRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

// List returns credits newest first, optionally for a single client.
func (r *creditRepository) List(ctx context.Context, clientName string) ([]Credit, error) {
	var credits []Credit
	q := r.db.WithContext(ctx).Order("purchased_on DESC, created_at DESC")
	if clientName != "" {
		q = q.Where("LOWER(client_name) = LOWER(?)", clientName)
	}
	err := q.Find(&credits).Error
	return credits, err
}

func (r *creditRepository) Create(ctx context.Context, c *Credit) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *creditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Credit{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
