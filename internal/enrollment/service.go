package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/learnhub-api/internal/apperror"
	"github.com/redmonkez12/learnhub-api/internal/course"
	"github.com/redmonkez12/learnhub-api/internal/email"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

var (
	ErrUserNotFound    = apperror.NotFound(httputil.CodeUserNotFound, "user not found")
	ErrCourseNotFound  = apperror.NotFound(httputil.CodeCourseNotFound, "course not found")
	ErrAlreadyEnrolled = apperror.Conflict(httputil.CodeAlreadyEnrolled, "already enrolled")
)

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	AddEnrollment(ctx context.Context, id uuid.UUID, e user.Enrollment) (*user.User, error)
}

type CourseStore interface {
	GetByID(ctx context.Context, id int64) (*course.Course, error)
}

type Mailer interface {
	SendEnrollmentEmail(ctx context.Context, toEmail string, course user.Enrollment) error
}

// Result is the enrolled user plus the outcome of the confirmation email.
type Result struct {
	User         *user.User
	Notification email.Notification
}

type Service struct {
	users   UserStore
	courses CourseStore
	mailer  Mailer
	logger  *logging.Logger
}

func NewService(users UserStore, courses CourseStore, mailer Mailer, logger *logging.Logger) *Service {
	return &Service{
		users:   users,
		courses: courses,
		mailer:  mailer,
		logger:  logger,
	}
}

// Snapshot copies the course fields a user keeps after enrolling.
func Snapshot(c *course.Course) user.Enrollment {
	return user.Enrollment{
		ID:          c.ID,
		CourseName:  c.CourseName,
		Price:       c.Price,
		AboutCourse: c.AboutCourse,
		Category:    c.Category,
		Level:       c.Level,
		Popularity:  c.Popularity,
	}
}

// Enroll appends a snapshot of the course to the user's enrollments.
// The check for an existing enrollment and the append are one store operation.
func (s *Service) Enroll(ctx context.Context, userID uuid.UUID, courseID int64) (*Result, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	snapshot := Snapshot(c)

	updated, err := s.users.AddEnrollment(ctx, userID, snapshot)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrAlreadyEnrolled):
			return nil, ErrAlreadyEnrolled
		case errors.Is(err, user.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to add enrollment: %w", err)
	}

	mailErr := s.mailer.SendEnrollmentEmail(ctx, updated.Email, snapshot)
	if mailErr != nil {
		s.logger.Warn("failed to send enrollment email",
			"user_id", updated.ID,
			"email", updated.Email,
			"course_id", courseID,
			"error", mailErr,
		)
	}

	return &Result{User: updated, Notification: email.NotificationFrom(mailErr)}, nil
}

// ListEnrollments returns the user's snapshots, empty when there are none.
func (s *Service) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]user.Enrollment, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.CoursesEnrolled == nil {
		return []user.Enrollment{}, nil
	}
	return u.CoursesEnrolled, nil
}
