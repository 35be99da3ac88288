package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/learnhub-api/internal/database"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrAlreadyEnrolled   = errors.New("already enrolled")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

const uniqueViolation = "23505"

// enrolledArray treats a non-array courses_enrolled value as an empty list.
const enrolledArray = "(CASE WHEN jsonb_typeof(courses_enrolled) = 'array' THEN courses_enrolled ELSE '[]'::jsonb END)"

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The unique index on email turns a concurrent
// duplicate into ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	dbUser := &database.User{
		Name:            name,
		Email:           email,
		Password:        passwordHash,
		CoursesEnrolled: json.RawMessage("[]"),
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// SetResetToken stores a reset token digest and its expiry, replacing any earlier one.
func (r *Repository) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("reset_password_token = ?", tokenHash).
		Set("reset_password_expires = ?", expiresAt).
		Set("updated_at = NOW()").
		Where("email = ?", email).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return requireRow(result, ErrNotFound)
}

// ResetPassword replaces the password of the user holding an unexpired reset
// token and clears the token in the same statement, so a token works once.
// ResetTokenValid reports whether tokenHash names an unexpired reset token.
func (r *Repository) ResetTokenValid(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("reset_password_token = ?", tokenHash).
		Where("reset_password_expires > ?", now).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check reset token: %w", err)
	}
	return exists, nil
}

func (r *Repository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password = ?", passwordHash).
		Set("reset_password_token = NULL").
		Set("reset_password_expires = NULL").
		Set("updated_at = NOW()").
		Where("reset_password_token = ?", tokenHash).
		Where("reset_password_expires > ?", now).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return requireRow(result, ErrInvalidResetToken)
}

// UpdateProfile persists the mutable profile fields and returns the updated user.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewUpdate().
		Model(dbUser).
		Set("phone_no = NULLIF(?, '')", p.PhoneNo).
		Set("gender = NULLIF(?, '')", p.Gender).
		Set("image = ?", p.Image).
		Set("image_url = ?", p.ImageURL).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// AddEnrollment appends a snapshot unless one with the same course id exists.
// The check and the append are a single conditional UPDATE.
func (r *Repository) AddEnrollment(ctx context.Context, id uuid.UUID, e Enrollment) (*User, error) {
	snapshot, err := json.Marshal([]Enrollment{e})
	if err != nil {
		return nil, fmt.Errorf("failed to encode enrollment: %w", err)
	}
	match, err := json.Marshal([]map[string]int64{{"id": e.ID}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode enrollment match: %w", err)
	}

	dbUser := new(database.User)
	err = r.db.NewUpdate().
		Model(dbUser).
		Set("courses_enrolled = "+enrolledArray+" || ?::jsonb", string(snapshot)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("NOT ("+enrolledArray+" @> ?::jsonb)", string(match)).
		Returning("*").
		Scan(ctx)

	if err == nil {
		return mapDBUserToModel(dbUser), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to add enrollment: %w", err)
	}

	// No row matched: either the user is missing or the course is already there.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyEnrolled
}

func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                   dbu.ID,
		Name:                 dbu.Name,
		Email:                dbu.Email,
		PasswordHash:         dbu.Password,
		ResetPasswordToken:   dbu.ResetPasswordToken,
		ResetPasswordExpires: dbu.ResetPasswordExpires,
		PhoneNo:              dbu.PhoneNo,
		Gender:               dbu.Gender,
		Image:                dbu.Image,
		ImageURL:             dbu.ImageURL,
		CoursesEnrolled:      DecodeEnrollments(dbu.CoursesEnrolled),
		CreatedAt:            dbu.CreatedAt,
		UpdatedAt:            dbu.UpdatedAt,
	}
}
