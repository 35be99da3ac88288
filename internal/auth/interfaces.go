package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/learnhub-api/internal/config"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims represents the claims carried by a session token
type TokenClaims struct {
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// NewTokenService builds the token service selected by cfg.TokenStrategy.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.TokenStrategy {
	case config.TokenStrategyJWT:
		return NewJWTService(cfg.TokenSecret)
	case config.TokenStrategyPaseto:
		if len(cfg.TokenSecret) < pasetoKeyLen {
			return nil, fmt.Errorf("paseto needs a %d byte secret, got %d", pasetoKeyLen, len(cfg.TokenSecret))
		}
		return NewPasetoService(cfg.TokenSecret[:pasetoKeyLen])
	default:
		return nil, fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}
}

// UserStore is the credential store used by the authentication service.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error
	ResetTokenValid(ctx context.Context, tokenHash string, now time.Time) (bool, error)
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) error
}

// Mailer sends the account emails.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// RateLimiter caps attempts per purpose and client key. Reset clears a
// key's window, as after a successful login.
type RateLimiter interface {
	Allow(ctx context.Context, purpose, key string) (bool, error)
	Reset(ctx context.Context, purpose, key string) error
}
