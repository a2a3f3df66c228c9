package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each check
const DefaultTimeout = 5 * time.Second

// Entry is one named result in a report
type Entry struct {
	Name   string `json:"name" yaml:"name"`
	Result *Result `json:"result" yaml:"result"`
}

// Report is the outcome of running every checker, in registration order
type Report struct {
	Status  Status  `json:"status" yaml:"status"`
	Entries []Entry `json:"checks" yaml:"checks"`
}

// Manager runs checkers concurrently, each under its own timeout
type Manager struct {
	checkers []Checker
	timeout  time.Duration
}

func NewManager() *Manager {
	return &Manager{timeout: DefaultTimeout}
}

// WithTimeout sets the per-check timeout
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.timeout = timeout
	return m
}

// AddChecker registers a checker. Reports keep registration order.
func (m *Manager) AddChecker(c Checker) {
	m.checkers = append(m.checkers, c)
}

// Names returns the registered checker names
func (m *Manager) Names() []string {
	names := make([]string, len(m.checkers))
	for i, c := range m.checkers {
		names[i] = c.Name()
	}
	return names
}

// Check runs all checkers and aggregates their results. A checker that
// overruns its timeout is reported unhealthy.
func (m *Manager) Check(ctx context.Context) Report {
	entries := make([]Entry, len(m.checkers))

	var g errgroup.Group
	for i, c := range m.checkers {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			start := time.Now()
			res := c.Check(checkCtx)
			if res == nil {
				res = Unhealthy("check returned no result")
			}
			if checkCtx.Err() == context.DeadlineExceeded && res.Status == StatusHealthy {
				res = Unhealthy("check timed out")
			}
			if res.Latency == 0 {
				res.Latency = time.Since(start)
			}

			entries[i] = Entry{Name: c.Name(), Result: res}
			return nil
		})
	}
	_ = g.Wait()

	return Report{Status: Overall(entries), Entries: entries}
}

// Overall is unhealthy if any entry is, else degraded if any entry is,
// else healthy
func Overall(entries []Entry) Status {
	status := StatusHealthy
	for _, e := range entries {
		switch e.Result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
