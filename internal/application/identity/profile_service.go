package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/identity"
	"github.com/shopflux/storefront/internal/domain/shared"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
)

// ErrProfileNotFound is returned when the signed-in user has no profile yet
var ErrProfileNotFound = shared.NewDomainError("NOT_FOUND", "Profile not found")

// ProfileResponse is the account data of the signed-in user
type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileService reads profiles
type ProfileService struct {
	repo identity.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo identity.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the profile of userID
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "profile", "get",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()))
	defer span.End()

	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	resp := &ProfileResponse{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName(),
		Role:        string(p.Role),
		CreatedAt:   p.CreatedAt,
	}
	if p.FullName != nil {
		resp.FullName = *p.FullName
	}
	if p.AvatarURL != nil {
		resp.AvatarURL = *p.AvatarURL
	}
	if p.Phone != nil {
		resp.Phone = *p.Phone
	}
	return resp, nil
}
