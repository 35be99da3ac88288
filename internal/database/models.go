package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row.
// CoursesEnrolled stays raw so rows written by older clients with a
// non-array value can still be read and normalized by the user package.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                   uuid.UUID       `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name                 string          `bun:"name,notnull"`
	Email                string          `bun:"email,notnull"`
	Password             string          `bun:"password,notnull"`
	ResetPasswordToken   *string         `bun:"reset_password_token"`
	ResetPasswordExpires *time.Time      `bun:"reset_password_expires"`
	PhoneNo              *string         `bun:"phone_no"`
	Gender               *string         `bun:"gender"`
	Image                *string         `bun:"image"`
	ImageURL             *string         `bun:"image_url"`
	CoursesEnrolled      json.RawMessage `bun:"courses_enrolled,type:jsonb"`
	CreatedAt            time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt            time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Course is the course catalog row. This service only reads it, apart from seeding.
type Course struct {
	bun.BaseModel `bun:"table:course,alias:c"`

	ID          int64   `bun:"id,pk,autoincrement"`
	CourseName  string  `bun:"coursename,notnull"`
	Price       float64 `bun:"price,notnull"`
	AboutCourse string  `bun:"aboutcourse"`
	Category    string  `bun:"category"`
	Level       string  `bun:"level"`
	Popularity  int     `bun:"popularity,notnull"`
}
