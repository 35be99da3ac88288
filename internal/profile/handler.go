package profile

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/learnhub-api/internal/auth"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

// multipart parts beyond the file itself
const formOverhead = 1 << 20

type Handler struct {
	service  *Service
	intake   *Intake
	maxBytes int64
}

func NewHandler(service *Service, intake *Intake, maxBytes int64) *Handler {
	return &Handler{
		service:  service,
		intake:   intake,
		maxBytes: maxBytes,
	}
}

// Form holds the text fields of a profile update.
type Form struct {
	PhoneNo string `form:"phone_no" validate:"max=20"`
	Gender  string `form:"gender" validate:"max=20"`
}

// UpdateResponse represents the profile update response
type UpdateResponse struct {
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

// Update handles profile updates
// @Summary      Update profile
// @Description  Store phone number, gender and a profile image. The image is forwarded to the image host in the background.
// @Tags         user
// @Accept       multipart/form-data
// @Produce      json
// @Param        id       path     string true  "User ID"
// @Param        phone_no formData string false "Phone number"
// @Param        gender   formData string false "Gender"
// @Param        file     formData file   true  "Profile image"
// @Success      200 {object} UpdateResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing or invalid image"
// @Failure      401 {object} httputil.ErrorResponse "Token does not match user"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /user/profile/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, r, ErrUserNotFound)
		return
	}

	if err := auth.CheckSubject(r.Context(), id); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondAppError(w, r, ErrFileTooLarge)
			return
		}
		httputil.RespondErrorWithCode(w, r, "invalid multipart form", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := Form{
		PhoneNo: r.FormValue("phone_no"),
		Gender:  r.FormValue("gender"),
	}
	if err := httputil.Validate(form); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondAppError(w, r, ErrImageRequired)
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		httputil.RespondAppError(w, r, ErrFileTooLarge)
		return
	}

	stored, err := h.intake.Save(file, header)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logger := logging.GetLoggerFromContext(r.Context())

	updated, err := h.service.UpdateProfile(r.Context(), id, Input{
		PhoneNo: form.PhoneNo,
		Gender:  form.Gender,
		Image:   stored,
	})
	if err != nil {
		if rmErr := h.intake.Discard(stored); rmErr != nil {
			logger.Warn("failed to discard upload", "path", stored.Path, "error", rmErr)
		}
		httputil.RespondAppError(w, r, err)
		return
	}

	logger.Info("profile updated", "user_id", id, "image", stored.Path)

	httputil.RespondJSON(w, r, UpdateResponse{
		Message: "Profile updated successfully",
		User:    updated,
	}, http.StatusOK)
}
