package xero

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type ConnectionRepository interface {
	// Get returns the connection for tenantID, or the most recently updated
	// one when tenantID is empty. It returns nil, nil when none exists.
	Get(ctx context.Context, tenantID string) (*Connection, error)
	Save(ctx context.Context, c *Connection) error
}

type connectionRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Get(ctx context.Context, tenantID string) (*Connection, error) {
	q := r.db.WithContext(ctx)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}

	var c Connection
	if err := q.Order("updated_at DESC").First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *connectionRepository) Save(ctx context.Context, c *Connection) error {
	return r.db.WithContext(ctx).Save(c).Error
}
