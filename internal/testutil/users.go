package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/learnhub-api/internal/user"
)

// MemoryUserStore is an in-memory credential store with the same
// atomicity as the Postgres repository: unique emails, single-use reset
// tokens and a conditional enrollment append.
type MemoryUserStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID

	resetWrites int

	// Err, when set, is returned by every operation.
	Err error
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	if _, ok := s.byEmail[email]; ok {
		return nil, user.ErrDuplicateEmail
	}

	now := time.Now()
	u := &user.User{
		ID:              uuid.New(),
		Name:            name,
		Email:           email,
		PasswordHash:    passwordHash,
		CoursesEnrolled: []user.Enrollment{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID

	return clone(u), nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	id, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return clone(s.users[id]), nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return clone(u), nil
}

func (s *MemoryUserStore) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	id, ok := s.byEmail[email]
	if !ok {
		return user.ErrNotFound
	}
	u := s.users[id]
	u.ResetPasswordToken = &tokenHash
	u.ResetPasswordExpires = &expiresAt
	return nil
}

func (s *MemoryUserStore) ResetTokenValid(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}

	for _, u := range s.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == tokenHash {
			return u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now), nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.resetWrites++

	for _, u := range s.users {
		if u.ResetPasswordToken == nil || *u.ResetPasswordToken != tokenHash {
			continue
		}
		if u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(now) {
			return user.ErrInvalidResetToken
		}
		u.PasswordHash = passwordHash
		u.ResetPasswordToken = nil
		u.ResetPasswordExpires = nil
		return nil
	}
	return user.ErrInvalidResetToken
}

func (s *MemoryUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, p user.ProfileUpdate) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	u.PhoneNo = nullable(p.PhoneNo)
	u.Gender = nullable(p.Gender)
	u.Image = &p.Image
	u.ImageURL = &p.ImageURL
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (s *MemoryUserStore) AddEnrollment(ctx context.Context, id uuid.UUID, e user.Enrollment) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if u.IsEnrolled(e.ID) {
		return nil, user.ErrAlreadyEnrolled
	}
	u.CoursesEnrolled = append(u.CoursesEnrolled, e)
	return clone(u), nil
}

// Len returns the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// ResetTokenHash returns the stored reset token digest for email.
func (s *MemoryUserStore) ResetTokenHash(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok || s.users[id].ResetPasswordToken == nil {
		return "", false
	}
	return *s.users[id].ResetPasswordToken, true
}

// ExpireResetToken moves the stored reset expiry of email into the past.
func (s *MemoryUserStore) ExpireResetToken(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEmail[email]; ok {
		past := time.Now().Add(-time.Minute)
		s.users[id].ResetPasswordExpires = &past
	}
}

// UserOption configures a test user
type UserOption func(*user.User)

func WithName(name string) UserOption {
	return func(u *user.User) { u.Name = name }
}

func WithEmail(email string) UserOption {
	return func(u *user.User) { u.Email = email }
}

func WithPasswordHash(hash string) UserOption {
	return func(u *user.User) { u.PasswordHash = hash }
}

func WithEnrollments(e ...user.Enrollment) UserOption {
	return func(u *user.User) { u.CoursesEnrolled = append(u.CoursesEnrolled, e...) }
}

// CreateTestUser inserts a user with a unique email directly into the store.
func CreateTestUser(s *MemoryUserStore, opts ...UserOption) *user.User {
	u := &user.User{
		ID:              uuid.New(),
		Name:            "Test User",
		Email:           fmt.Sprintf("test_%s@example.com", uuid.NewString()),
		PasswordHash:    "unused",
		CoursesEnrolled: []user.Enrollment{},
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		panic(fmt.Sprintf("test user %s already exists", u.Email))
	}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID

	return clone(u)
}

func clone(u *user.User) *user.User {
	c := *u
	c.CoursesEnrolled = append([]user.Enrollment{}, u.CoursesEnrolled...)
	return &c
}

// ResetWrites counts ResetPassword calls that reached the store.
func (s *MemoryUserStore) ResetWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetWrites
}

// nullable maps an empty profile field to NULL like the repository does.
func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
