package xero

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Connection holds the OAuth tokens of the connected Xero organisation.
// Tokens are stored encrypted.
type Connection struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID              string    `gorm:"not null;uniqueIndex" json:"tenant_id"`
	TenantName            string    `json:"tenant_name"`
	EncryptedAccessToken  string    `gorm:"not null" json:"-"`
	EncryptedRefreshToken string    `gorm:"not null" json:"-"`
	TokenType             string    `json:"-"`
	Expiry                time.Time `json:"expiry"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (Connection) TableName() string {
	return "xero_connections"
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
