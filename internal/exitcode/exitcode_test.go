package exitcode

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/postify/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error returns success", nil, Success},
		{"auth required", errors.NewAuthRequiredError("view the dashboard"), AuthError},
		{"session persist failure", errors.New(errors.ErrCodeSessionPersist, "disk full"), AuthError},
		{"wrapped auth error", fmt.Errorf("dashboard: %w", errors.NewSessionExpiredError(nil)), AuthError},
		{"network", errors.NewNetworkError("http://localhost:5001", stderrors.New("refused")), NetworkError},
		{"timeout", errors.New(errors.ErrCodeNetTimeout, "timed out"), NetworkError},
		{"config", errors.NewConfigInvalidError("api.base_url", "empty"), UsageError},
		{"unknown route", errors.NewRouteNotFoundError("/nope"), NotFound},
		{"api not found", errors.New(errors.ErrCodeAPINotFound, "not found"), NotFound},
		{"api failure", errors.New(errors.ErrCodeAPIRequest, "boom"), GeneralError},
		{"cancelled", fmt.Errorf("prompt: %w", context.Canceled), Cancelled},
		{"cobra unknown command", stderrors.New(`unknown command "foo" for "postify"`), UsageError},
		{"cobra args", stderrors.New("accepts 1 arg(s), received 0"), UsageError},
		{"plain error", stderrors.New("something broke"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetermineExitCode(tt.err))
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	for _, code := range []int{Success, GeneralError, UsageError, NotFound, Cancelled, AuthError, NetworkError} {
		assert.NotEqual(t, "Unknown error", GetExitCodeDescription(code), "code %d", code)
	}
	assert.Equal(t, "Unknown error", GetExitCodeDescription(99))
}
