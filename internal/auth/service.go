package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redmonkez12/learnhub-api/internal/apperror"
	"github.com/redmonkez12/learnhub-api/internal/email"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

const maxEmailLen = 254

// SignupResult is a created user plus the outcome of the welcome email.
type SignupResult struct {
	User         *user.User
	Notification email.Notification
}

// LoginResult carries the issued session token.
type LoginResult struct {
	Email     string
	Token     string
	ExpiresIn time.Duration
}

// Service handles authentication business logic
type Service struct {
	users              UserStore
	tokens             TokenService
	mailer             Mailer
	logger             *logging.Logger
	tokenDuration      time.Duration
	resetTokenDuration time.Duration
	now                func() time.Time
}

func NewService(
	users UserStore,
	tokens TokenService,
	mailer Mailer,
	logger *logging.Logger,
	tokenDuration time.Duration,
	resetTokenDuration time.Duration,
) *Service {
	return &Service{
		users:              users,
		tokens:             tokens,
		mailer:             mailer,
		logger:             logger,
		tokenDuration:      tokenDuration,
		resetTokenDuration: resetTokenDuration,
		now:                time.Now,
	}
}

// normalizeEmail makes email lookups case-insensitive.
func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// checkEmail accepts a bare address only. Display-name forms such as
// "Ann <ann@x.com>" name a mailbox that is stored under another key.
func checkEmail(emailAddr string) error {
	if len(emailAddr) > maxEmailLen {
		return ErrInvalidEmailFormat
	}
	addr, err := mail.ParseAddress(emailAddr)
	if err != nil || addr.Address != emailAddr {
		return ErrInvalidEmailFormat
	}
	return nil
}

// Signup creates a user account and sends a welcome email.
// A failed email is reported in the result and does not undo the signup.
func (s *Service) Signup(ctx context.Context, name, emailAddr, password string) (*SignupResult, error) {
	name = strings.TrimSpace(name)
	emailAddr = normalizeEmail(emailAddr)

	if name == "" || emailAddr == "" || password == "" {
		return nil, ErrMissingFields
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if err := checkEmail(emailAddr); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, name, emailAddr, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	mailErr := s.mailer.SendWelcomeEmail(ctx, newUser.Email, newUser.Name)
	if mailErr != nil {
		s.logger.Warn("failed to send welcome email", "user_id", newUser.ID, "email", newUser.Email, "error", mailErr)
	}

	return &SignupResult{User: newUser, Notification: email.NotificationFrom(mailErr)}, nil
}

// Login verifies credentials and issues a session token
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if err := checkEmail(emailAddr); err != nil {
		return nil, err
	}

	existingUser, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrIncorrectPassword
	}

	token, err := s.tokens.CreateToken(existingUser.ID, existingUser.Email, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &LoginResult{Email: existingUser.Email, Token: token, ExpiresIn: s.tokenDuration}, nil
}

// RequestPasswordReset stores a new reset token for the user and mails the link.
// Only the token digest is persisted. A failed email is returned to the
// caller; the stored token stays valid until it expires or is replaced.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrEmailRequired
	}
	if err := checkEmail(emailAddr); err != nil {
		return err
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := generateRandomToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := s.now().Add(s.resetTokenDuration)
	if err := s.users.SetResetToken(ctx, emailAddr, hashToken(token), expiresAt); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, emailAddr, token); err != nil {
		s.logger.Warn("failed to send password reset email", "email", emailAddr, "error", err)
		return apperror.Internal(err, httputil.CodeMailDeliveryFailed, "failed to send password reset email")
	}

	return nil
}

// ResetPassword exchanges a reset token for a new password. The token is
// cleared in the same write, so it cannot be used twice.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return ErrResetTokenRequired
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}

	tokenHash := hashToken(token)

	// Hashing the new password is expensive; unknown tokens are turned away first.
	valid, err := s.users.ResetTokenValid(ctx, tokenHash, s.now())
	if err != nil {
		return fmt.Errorf("failed to check reset token: %w", err)
	}
	if !valid {
		return ErrInvalidResetToken
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, tokenHash, passwordHash, s.now()); err != nil {
		if errors.Is(err, user.ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return nil
}
