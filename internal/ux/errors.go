package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/postify/internal/errors"
)

// ErrorWithSuggestion wraps an error with a recovery suggestion
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that do not carry one.
// Coded errors already have their own suggestions and pass through.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var pe *errors.PostifyError
	if stderrors.As(err, &pe) && len(pe.Suggestions) > 0 {
		return err
	}
	var ws *ErrorWithSuggestion
	if stderrors.As(err, &ws) {
		return err
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		return NewErrorWithSuggestion(err,
			"Make sure the Postify backend is running and POSTIFY_API_URL points at it")

	case strings.Contains(errMsg, "deadline exceeded") || strings.Contains(errMsg, "timeout"):
		return NewErrorWithSuggestion(err,
			"The server is slow to respond. Try again or raise api.timeout in your config")

	case strings.Contains(errMsg, "status 401") || strings.Contains(errMsg, "unauthorized"):
		return NewErrorWithSuggestion(err,
			"Run 'postify auth login' to sign in")

	case strings.Contains(errMsg, "config.yaml") && strings.Contains(errMsg, "no such file"):
		return NewErrorWithSuggestion(err,
			"Run 'postify config path' to see where the config file is expected")

	case strings.Contains(errMsg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check permissions on your Postify home directory (POSTIFY_HOME)")

	case strings.Contains(errMsg, "redis") && strings.Contains(errMsg, "dial"):
		return NewErrorWithSuggestion(err,
			"Start Redis or switch storage with POSTIFY_STORAGE=file")
	}

	return err
}

// FormatError enhances err and prefixes it with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
