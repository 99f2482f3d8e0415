package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is embedded by every persisted storefront record.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseEntity assigns a fresh id and stamps both timestamps with the
// same instant.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a mutation.
func (e *BaseEntity) Touch() { e.UpdatedAt = time.Now() }
