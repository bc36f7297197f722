package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired indicates an expired or revoked token.
	ErrTokenExpired = errors.New("token expired")
	// ErrConflict indicates a uniqueness conflict at write time.
	ErrConflict = errors.New("conflict")
)

// UserSafeMessage returns a message suitable for end users. Internal
// errors collapse to a generic sentence so persistence details never
// leak through the API.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested resource does not exist."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrTokenExpired):
		return "Your session has expired, please sign in again."
	case errors.Is(err, ErrConflict):
		return "The operation conflicts with existing data."
	default:
		return "An unexpected error occurred."
	}
}
