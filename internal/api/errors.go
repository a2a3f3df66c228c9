package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"github.com/felixgeelhaar/postify/internal/errors"
)

var (
	// ErrUnauthorized matches any 401 APIError through errors.Is
	ErrUnauthorized = stderrors.New("unauthorized")

	// ErrNotFound matches any 404 APIError through errors.Is
	ErrNotFound = stderrors.New("not found")

	// ErrNotAuthenticated is returned without sending a request when an
	// endpoint needs a token and the session has none
	ErrNotAuthenticated = errors.NewAuthRequiredError("perform this action")

	// ErrInvalidResponse wraps bodies that are not the expected JSON
	ErrInvalidResponse = errors.New(errors.ErrCodeAPIInvalidResponse, "server returned invalid JSON")

	// ErrInvalidID rejects empty or placeholder identifiers client-side
	ErrInvalidID = errors.New(errors.ErrCodeAPIValidation, "invalid id")
)

// ErrorResponse is the JSON error payload returned by the API
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Msg     string `json:"msg"`
}

func (e ErrorResponse) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	default:
		return e.Msg
	}
}

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
	// SessionCleared is set when this response caused the stored
	// session to be discarded
	SessionCleared bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Is lets errors.Is match ErrUnauthorized and ErrNotFound by status
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// NetworkError is a transport failure: the server could not be reached or
// the connection broke. It never affects the session.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout
func (e *NetworkError) Timeout() bool {
	if stderrors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(e.Err, &ne) && ne.Timeout()
}

// Classify turns a client error into a coded PostifyError for display.
// Errors that already carry a code are returned unchanged.
func Classify(err error, baseURL string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.CodeOf(err); ok {
		return err
	}

	var netErr *NetworkError
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.Wrap(errors.ErrCodeNetTimeout, fmt.Sprintf("request to %s timed out", baseURL), netErr.Err).
				WithSuggestion("Check your network connection and try again")
		}
		return errors.NewNetworkError(baseURL, netErr.Err)
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized && apiErr.SessionCleared:
			return errors.NewSessionExpiredError(apiErr)
		case apiErr.StatusCode == http.StatusUnauthorized:
			return errors.NewAuthRejectedError(apiErr)
		case apiErr.StatusCode == http.StatusNotFound:
			return errors.Wrap(errors.ErrCodeAPINotFound, "not found", apiErr)
		case apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity:
			return errors.Wrap(errors.ErrCodeAPIValidation, "request rejected", apiErr)
		default:
			return errors.Wrap(errors.ErrCodeAPIRequest, "request failed", apiErr)
		}
	}

	return err
}
