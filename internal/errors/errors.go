package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeAuthRequired      ErrorCode = "AUTH-001"
	ErrCodeAuthRejected      ErrorCode = "AUTH-002"
	ErrCodeAuthTokenMissing  ErrorCode = "AUTH-003"
	ErrCodeAuthPasswordMatch ErrorCode = "AUTH-004"
	ErrCodeAuthInputRequired ErrorCode = "AUTH-005"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionTokenEmpty   ErrorCode = "SESSION-001"
	ErrCodeSessionPersist      ErrorCode = "SESSION-002"
	ErrCodeSessionClear        ErrorCode = "SESSION-003"
	ErrCodeSessionTokenOpaque  ErrorCode = "SESSION-004"
	ErrCodeSessionNoToken      ErrorCode = "SESSION-005"
	ErrCodeSessionClaimsDecode ErrorCode = "SESSION-006"

	// Navigation errors (NAV-001 to NAV-099)
	ErrCodeNavRouteNotFound ErrorCode = "NAV-001"
	ErrCodeNavInvalidPath   ErrorCode = "NAV-002"

	// API errors (API-001 to API-099)
	ErrCodeAPIRequest         ErrorCode = "API-001"
	ErrCodeAPIInvalidResponse ErrorCode = "API-002"
	ErrCodeAPINotFound        ErrorCode = "API-003"
	ErrCodeAPIValidation      ErrorCode = "API-004"

	// Network errors (NET-001 to NET-099)
	ErrCodeNetUnreachable ErrorCode = "NET-001"
	ErrCodeNetTimeout     ErrorCode = "NET-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigLoad    ErrorCode = "CONFIG-002"

	// Storage errors (STORAGE-001 to STORAGE-099)
	ErrCodeStorageOpen   ErrorCode = "STORAGE-001"
	ErrCodeStorageRead   ErrorCode = "STORAGE-002"
	ErrCodeStorageWrite  ErrorCode = "STORAGE-003"
	ErrCodeStorageDriver ErrorCode = "STORAGE-004"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
)

// Category returns the prefix of the code, e.g. "AUTH" for AUTH-001
func (c ErrorCode) Category() string {
	s := string(c)
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// PostifyError represents an enhanced error with code, suggestions, and documentation
type PostifyError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PostifyError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PostifyError) Unwrap() error {
	return e.Cause
}

// New creates a new PostifyError
func New(code ErrorCode, message string) *PostifyError {
	return &PostifyError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PostifyError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PostifyError {
	return &PostifyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PostifyError) WithSuggestion(suggestion string) *PostifyError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PostifyError) WithSuggestions(suggestions ...string) *PostifyError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PostifyError) WithDocs(url string) *PostifyError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first PostifyError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var pe *PostifyError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}

// HasCode reports whether any PostifyError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if pe, ok := err.(*PostifyError); ok && pe.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Common error constructors for frequently used errors

// NewAuthRequiredError is returned when a command needs a session that does not exist
func NewAuthRequiredError(action string) *PostifyError {
	return New(ErrCodeAuthRequired, fmt.Sprintf("login required to %s", action)).
		WithSuggestion("Run 'postify auth login' to sign in").
		WithSuggestion("Don't have an account? Run 'postify auth register'")
}

// NewAuthRejectedError wraps a credential rejection from the API
func NewAuthRejectedError(cause error) *PostifyError {
	return Wrap(ErrCodeAuthRejected, "authentication rejected by server", cause).
		WithSuggestion("Check your email and password").
		WithSuggestion("Run 'postify auth login' to sign in again")
}

// NewSessionExpiredError is returned after the API rejected a stored token
func NewSessionExpiredError(cause error) *PostifyError {
	return Wrap(ErrCodeAuthRejected, "your session is no longer valid and has been cleared", cause).
		WithSuggestion("Run 'postify auth login' to sign in again")
}

// NewNetworkError reports a connectivity failure distinctly from credential failures
func NewNetworkError(baseURL string, cause error) *PostifyError {
	return Wrap(ErrCodeNetUnreachable, fmt.Sprintf("cannot connect to server at %s", baseURL), cause).
		WithSuggestion("Make sure the Postify backend is running").
		WithSuggestion("Check the API URL with 'postify config show' or set POSTIFY_API_URL")
}

// NewRouteNotFoundError reports an unknown navigation target
func NewRouteNotFoundError(path string) *PostifyError {
	return New(ErrCodeNavRouteNotFound, fmt.Sprintf("no view for route: %s", path)).
		WithSuggestion("Known routes: /home, /explore, /dashboard, /createpost, /post/<id>, /author/<id>, /legal")
}

// NewConfigInvalidError reports an invalid configuration value
func NewConfigInvalidError(field string, details string) *PostifyError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration for %s: %s", field, details)).
		WithSuggestion("Review your config with 'postify config show'")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *PostifyError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *PostifyError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
