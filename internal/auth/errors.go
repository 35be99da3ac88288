package auth

import (
	"github.com/redmonkez12/learnhub-api/internal/apperror"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
)

var (
	ErrMissingFields      = apperror.Validation(httputil.CodeMissingFields, "name, email and password are required")
	ErrMissingCredentials = apperror.Validation(httputil.CodeMissingFields, "email and password are required")
	ErrEmailRequired      = apperror.Validation(httputil.CodeMissingFields, "email is required")
	ErrResetTokenRequired = apperror.Validation(httputil.CodeMissingFields, "token and password are required")
	ErrInvalidEmailFormat = apperror.Validation(httputil.CodeInvalidEmailFormat, "invalid email format")
	ErrPasswordTooShort   = apperror.Validation(httputil.CodePasswordTooShort, "password must be at least 8 characters")
	ErrEmailTaken         = apperror.Conflict(httputil.CodeEmailAlreadyExists, "user already exists")
	ErrUserNotFound       = apperror.NotFound(httputil.CodeUserNotFound, "user not found")
	ErrIncorrectPassword  = apperror.Auth(httputil.CodeInvalidCredentials, "incorrect password")
	ErrInvalidResetToken  = apperror.Auth(httputil.CodeInvalidResetToken, "invalid or expired token")
	ErrSubjectMismatch    = apperror.Auth(httputil.CodeSubjectMismatch, "token does not belong to this user")
)
