package newsletter

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/shared"
)

// ErrInvalidEmail is returned for addresses that cannot receive the newsletter
var ErrInvalidEmail = shared.NewDomainError("INVALID_EMAIL", "Please enter a valid email address")

// Subscription is a newsletter sign-up
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	IsActive     bool      `gorm:"not null;default:true"`
	SubscribedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "newsletter_subscriptions"
}

// NormalizeEmail trims and lower-cases an address and checks its syntax
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 255 {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NewSubscription creates an active subscription for a normalized address
func NewSubscription(email string) (*Subscription, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &Subscription{
		ID:           uuid.New(),
		Email:        normalized,
		IsActive:     true,
		SubscribedAt: time.Now(),
	}, nil
}
