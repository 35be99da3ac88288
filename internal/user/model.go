package user

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID    `json:"id"`
	Name                 string       `json:"name"`
	Email                string       `json:"email"`
	PasswordHash         string       `json:"-"` // Never expose password hash in JSON
	ResetPasswordToken   *string      `json:"-"`
	ResetPasswordExpires *time.Time   `json:"-"`
	PhoneNo              *string      `json:"phone_no"`
	Gender               *string      `json:"gender"`
	Image                *string      `json:"image"`
	ImageURL             *string      `json:"image_url"`
	CoursesEnrolled      []Enrollment `json:"courses_enrolled"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Enrollment is a copy of a course taken when the user enrolled.
// Later catalog edits do not change it.
type Enrollment struct {
	ID          int64   `json:"id"`
	CourseName  string  `json:"coursename"`
	Price       float64 `json:"price"`
	AboutCourse string  `json:"aboutcourse"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Popularity  int     `json:"popularity"`
}

// ProfileUpdate holds the mutable profile fields.
type ProfileUpdate struct {
	PhoneNo  string
	Gender   string
	Image    string
	ImageURL string
}

// IsEnrolled reports whether the user already holds a snapshot of courseID.
func (u *User) IsEnrolled(courseID int64) bool {
	for _, e := range u.CoursesEnrolled {
		if e.ID == courseID {
			return true
		}
	}
	return false
}

// DecodeEnrollments normalizes a stored enrollment list.
// Anything that is not a JSON array of snapshots yields an empty list.
func DecodeEnrollments(raw []byte) []Enrollment {
	enrollments := []Enrollment{}
	if len(raw) == 0 {
		return enrollments
	}
	if err := json.Unmarshal(raw, &enrollments); err != nil || enrollments == nil {
		return []Enrollment{}
	}
	return enrollments
}
