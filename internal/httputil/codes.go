package httputil

// Machine-readable error codes returned in ErrorResponse.Code.
const (
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"

	// auth
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	CodeMailDeliveryFailed = "MAIL_DELIVERY_FAILED"

	// session tokens
	CodeMissingAuth        = "MISSING_AUTH"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidTokenUserID = "INVALID_TOKEN_USER_ID"
	CodeSubjectMismatch    = "TOKEN_SUBJECT_MISMATCH"

	// profile
	CodeImageRequired = "IMAGE_REQUIRED"
	CodeFileTooLarge  = "FILE_TOO_LARGE"
	CodeInvalidImage  = "INVALID_IMAGE"

	// enrollment
	CodeCourseNotFound  = "COURSE_NOT_FOUND"
	CodeAlreadyEnrolled = "ALREADY_ENROLLED"
)
