package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user id in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the claims of an identity provider access token.
// The user id is read from user_id, falling back to sub.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`

	// raw is the signed token, used to derive a revocation key when jti is absent
	raw string
}

// RevocationList records signed-out tokens by RevocationKey. Entries
// only need to outlive the token itself.
type RevocationList interface {
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

// JWTService verifies bearer tokens signed with the shared HS256 secret
type JWTService struct {
	secret           []byte
	issuer           string
	accessExpiration time.Duration
	revoked          RevocationList
}

// NewJWTService creates a JWT service. revoked may be nil, in which case
// tokens cannot be revoked.
func NewJWTService(cfg config.JWTConfig, revoked RevocationList) *JWTService {
	exp := cfg.AccessTokenExpiration
	if exp <= 0 {
		exp = time.Hour
	}
	return &JWTService{
		secret:           []byte(cfg.Secret),
		issuer:           cfg.Issuer,
		accessExpiration: exp,
		revoked:          revoked,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// GenerateAccessToken issues a signed access token. The storefront does not
// sign users in; this serves tests and local tooling.
func (s *JWTService) GenerateAccessToken(input GenerateTokenInput) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessExpiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: input.UserID.String(),
		Email:  input.Email,
		Role:   input.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ValidateAccessToken verifies signature, expiry and issuer, then rejects
// revoked tokens.
func (s *JWTService) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	claims.raw = tokenString

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.RevocationKey())
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// Revoke lists the token as signed out until it would have expired anyway
func (s *JWTService) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoked == nil {
		return nil
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.RevocationKey(), ttl)
}

// RevocationKey is the jti, or a digest of the token when the issuer omits jti
func (c *Claims) RevocationKey() string {
	if c.ID != "" {
		return c.ID
	}
	sum := sha256.Sum256([]byte(c.raw))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// ViewerID parses the user id
func (c *Claims) ViewerID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
