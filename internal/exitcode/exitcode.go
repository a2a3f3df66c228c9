package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/postify/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage or configuration
	UsageError = 2

	// NotFound indicates the requested post, author or route does not exist
	NotFound = 3

	// Cancelled indicates the user aborted a prompt or interrupted the command
	Cancelled = 4

	// AuthError indicates a missing, rejected or expired session
	AuthError = 5

	// NetworkError indicates the API could not be reached
	NetworkError = 6
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Coded errors are mapped
// by category; uncoded errors fall back to cobra's usage messages.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) {
		return Cancelled
	}

	if code, ok := errors.CodeOf(err); ok {
		switch code.Category() {
		case "AUTH", "SESSION":
			return AuthError
		case "NET":
			return NetworkError
		case "CONFIG":
			return UsageError
		case "NAV":
			return NotFound
		}
		if code == errors.ErrCodeAPINotFound {
			return NotFound
		}
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())
	for _, usage := range []string{"unknown command", "unknown flag", "invalid argument", "required flag", "accepts ", "requires at least"} {
		if strings.Contains(errMsg, usage) {
			return UsageError
		}
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or configuration)"
	case NotFound:
		return "Not found"
	case Cancelled:
		return "Cancelled"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	default:
		return "Unknown error"
	}
}
