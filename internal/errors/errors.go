package errors

import (
	"errors"
	"net/http"
)

// Credential mismatches share one generic message regardless of which check
// failed, so the API cannot be used to enumerate accounts.
var (
	// ErrInvalidCredentials is returned for any local credential mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRadiusRejected is returned when the RADIUS server denies or times out.
	ErrRadiusRejected = errors.New("radius authentication failed")
	// ErrWrongPassword is returned when a password change fails re-verification.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrUserExists is returned when registration collides on email or phone.
	ErrUserExists = errors.New("a user with this email or phone number already exists")
	// ErrPhoneNumberTaken is returned when a profile update collides on phone.
	ErrPhoneNumberTaken = errors.New("phone number already registered by another user")
	// ErrUserNotFound is returned when a profile lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrMissingToken is returned when no bearer token accompanies a request.
	ErrMissingToken = errors.New("access token required")
	// ErrInvalidToken is returned when signature or expiry checks fail.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongRole is returned when a valid token carries the wrong audience.
	ErrWrongRole = errors.New("wrong role")
	// ErrDependency is returned when the store or RADIUS server is unreachable.
	ErrDependency = errors.New("upstream dependency unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// to a detail-free 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrRadiusRejected):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "RADIUS_REJECTED")
	case errors.Is(err, ErrWrongPassword):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CURRENT_PASSWORD")
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrPhoneNumberTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "PHONE_NUMBER_TAKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrMissingToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "MISSING_TOKEN")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrWrongRole):
		return NewHTTPError(http.StatusForbidden, err.Error(), "WRONG_ROLE")
	case errors.Is(err, ErrDependency):
		// dependency errors are wrapped with internal detail; clients only
		// get the sentinel message
		return NewHTTPError(http.StatusBadGateway, ErrDependency.Error(), "DEPENDENCY_UNAVAILABLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
