package api

import (
	"errors"
	"fmt"
)

// fallbackErrorText is shown when the backend supplies no usable
// message or error field.
const fallbackErrorText = "Etwas ist schiefgelaufen."

// AuthError indicates the backend rejected the session token. The
// gateway has already cleared the session and requested navigation to
// the login screen by the time a caller sees this error.
type AuthError struct {
	Method string
	Path   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (401) on %s %s", e.Method, e.Path)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is any other non-2xx response. Message holds the text the
// gateway surfaced as a notice: the server's message field, its error
// field, or the generic fallback, in that order.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d) on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Message)
}

// errorEnvelope is the optional message/error pair carried by backend
// error responses.
type errorEnvelope struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

// noticeText picks the banner text for a failed response.
func (e errorEnvelope) noticeText() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != "" {
		return e.Err
	}
	return fallbackErrorText
}
