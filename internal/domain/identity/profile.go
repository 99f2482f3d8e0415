package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// Role is the account role of a profile
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Profile is the public account data of a signed-in user.
// Credentials live with the identity provider, not here.
type Profile struct {
	shared.BaseEntity
	Email     string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName  *string `gorm:"type:varchar(200)"`
	AvatarURL *string `gorm:"column:avatar_url;type:text"`
	Phone     *string `gorm:"type:varchar(32)"`
	Role      Role    `gorm:"type:varchar(20);not null;default:'customer'"`
}

// TableName returns the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// DisplayName returns the full name, or the email when no name is set
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

// IsAdmin reports whether the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ProfileRepository reads profiles
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
}
