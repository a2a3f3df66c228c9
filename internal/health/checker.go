// Package health checks the things the CLI depends on: the remote API,
// the session storage and the stored session itself.
//
//	m := health.NewManager()
//	m.AddChecker(health.NewAPIChecker(client))
//	m.AddChecker(health.NewStorageChecker(st, "file"))
//	report := m.Check(ctx)
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency
type Checker interface {
	// Name is lowercase with hyphens, e.g. "api" or "session-storage"
	Name() string

	// Check must respect the context deadline
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check
type Status string

const (
	StatusHealthy Status = "healthy"
	// StatusDegraded means the CLI works with reduced functionality
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is what a checker reports
type Result struct {
	Status  Status                 `json:"status" yaml:"status"`
	Message string                 `json:"message" yaml:"message"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration          `json:"latency" yaml:"latency"`
}

// NewResult creates a result with the given status and message
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail and returns r for chaining
func (r *Result) WithDetail(key string, value interface{}) *Result {
	r.Details[key] = value
	return r
}

func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
