package enrollment

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/learnhub-api/internal/auth"
	"github.com/redmonkez12/learnhub-api/internal/email"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// EnrollResponse represents the enrollment response
type EnrollResponse struct {
	Message      string             `json:"message"`
	User         *user.User         `json:"user"`
	Notification email.Notification `json:"notification"`
}

// ListResponse represents the enrolled courses of a user
type ListResponse struct {
	Message string            `json:"message"`
	Courses []user.Enrollment `json:"courses"`
}

// Enroll handles course enrollment
// @Summary      Enroll in a course
// @Description  Append a snapshot of the course to the user's enrollments. A confirmation email is attempted; its outcome is reported in notification.
// @Tags         enrollment
// @Produce      json
// @Param        userId   path string  true "User ID"
// @Param        courseId path integer true "Course ID"
// @Success      200 {object} EnrollResponse
// @Failure      400 {object} httputil.ErrorResponse "Already enrolled"
// @Failure      401 {object} httputil.ErrorResponse "Token does not match user"
// @Failure      404 {object} httputil.ErrorResponse "User or course not found"
// @Router       /enroll/course/{userId}/{courseId} [post]
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		httputil.RespondAppError(w, r, ErrUserNotFound)
		return
	}

	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseId"), 10, 64)
	if err != nil {
		httputil.RespondAppError(w, r, ErrCourseNotFound)
		return
	}

	if err := auth.CheckSubject(r.Context(), userID); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	result, err := h.service.Enroll(r.Context(), userID, courseID)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("user enrolled",
		"user_id", userID,
		"course_id", courseID,
		"notification_sent", result.Notification.Sent,
	)

	httputil.RespondJSON(w, r, EnrollResponse{
		Message:      "Enrolled successfully",
		User:         result.User,
		Notification: result.Notification,
	}, http.StatusOK)
}

// List handles enrolled course listing
// @Summary      List enrolled courses
// @Description  Return the course snapshots the user enrolled in, oldest first
// @Tags         enrollment
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} ListResponse
// @Failure      401 {object} httputil.ErrorResponse "Token does not match user"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /view/enrolled/course/{id} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, r, ErrUserNotFound)
		return
	}

	if err := auth.CheckSubject(r.Context(), userID); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	courses, err := h.service.ListEnrollments(r.Context(), userID)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	httputil.RespondJSON(w, r, ListResponse{
		Message: "Enrolled courses",
		Courses: courses,
	}, http.StatusOK)
}
