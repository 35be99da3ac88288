package auth

import (
	"net"
	"net/http"
	"time"

	"github.com/redmonkez12/learnhub-api/internal/email"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

const (
	purposeSignup = "signup"
	purposeLogin  = "login"
	purposeForgot = "forgot_password"
	purposeReset  = "reset_password"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service       *Service
	rateLimiter   RateLimiter
	logger        *logging.Logger
	isProduction  bool
	tokenDuration time.Duration
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger, isProduction bool, tokenDuration time.Duration) *Handler {
	return &Handler{
		service:       service,
		rateLimiter:   rateLimiter,
		logger:        logger,
		isProduction:  isProduction,
		tokenDuration: tokenDuration,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=128"`
}

// SignupResponse represents the signup response
type SignupResponse struct {
	Message      string             `json:"message"`
	User         *user.User         `json:"user"`
	Notification email.Notification `json:"notification"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=128"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"max=254"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"max=128"`
	Password string `json:"password" validate:"max=128"`
}

// Signup handles user registration
// @Summary      Register a new user
// @Description  Create a user account. A welcome email is attempted; its outcome is reported in notification.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup details"
// @Success      201 {object} SignupResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields, weak password or duplicate email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /user/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, purposeSignup) {
		return
	}

	var req SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	result, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("user signed up",
		"user_id", result.User.ID,
		"notification_sent", result.Notification.Sent,
	)

	httputil.RespondJSON(w, r, SignupResponse{
		Message:      "User created successfully!",
		User:         result.User,
		Notification: result.Notification,
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Verify credentials and issue a session token, returned in the body and as the token cookie
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Incorrect password"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /user/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, purposeLogin) {
		return
	}

	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logger := logging.GetLoggerFromContext(r.Context())
	logger.Info("user logged in", "email", result.Email)

	if h.rateLimiter != nil {
		if err := h.rateLimiter.Reset(r.Context(), purposeLogin, getClientIP(r)); err != nil {
			logger.Error("failed to reset login rate limit", "error", err.Error())
		}
	}

	SetTokenCookie(w, result.Token, h.isProduction, h.tokenDuration)
	httputil.RespondJSON(w, r, LoginResponse{
		Message: "User logged in successfully",
		Email:   result.Email,
		Token:   result.Token,
	}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Clear the session cookie. Issued tokens stay valid until they expire.
// @Tags         user
// @Produce      json
// @Success      200 {object} httputil.MessageResponse
// @Router       /user/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearTokenCookie(w, h.isProduction)
	httputil.RespondJSON(w, r, httputil.MessageResponse{Message: "logged out"}, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request password reset
// @Description  Store a one-hour reset token for the user and email the reset link
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing email"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Email delivery failed"
// @Router       /forgot/password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, purposeForgot) {
		return
	}

	var req ForgotPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("password reset requested", "email", normalizeEmail(req.Email))

	httputil.RespondJSON(w, r, httputil.MessageResponse{
		Message: "Password reset link sent to your email",
	}, http.StatusOK)
}

// ResetPassword handles password reset with token
// @Summary      Reset password
// @Description  Exchange a reset token for a new password. Each token works once.
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or weak password"
// @Failure      401 {object} httputil.ErrorResponse "Invalid or expired token"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /reset/password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, purposeReset) {
		return
	}

	var req ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		httputil.RespondAppError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("password reset completed")

	httputil.RespondJSON(w, r, httputil.MessageResponse{
		Message: "Password reset successfully. You can now login with your new password.",
	}, http.StatusOK)
}

// allow applies the per-IP rate limit. Limiter failures are logged and let the request through.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, purpose string) bool {
	if h.rateLimiter == nil {
		return true
	}

	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	allowed, err := h.rateLimiter.Allow(r.Context(), purpose, ip)
	if err != nil {
		logger.Error("failed to check rate limit", "purpose", purpose, "error", err.Error())
		return true
	}
	if !allowed {
		logger.Warn("rate limit exceeded", "purpose", purpose, "ip", ip)
		httputil.RespondErrorWithCode(w, r, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return false
	}
	return true
}

// getClientIP keys rate limits on the connection address. RealIP
// middleware has already applied any proxy headers to RemoteAddr.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
