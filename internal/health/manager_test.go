package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/session"
	"github.com/felixgeelhaar/postify/internal/storage"
)

// mockChecker is a test double for health checks
type mockChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) *Result {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Unhealthy("check cancelled").WithDetail("error", ctx.Err().Error())
		}
	}
	return m.result
}

func TestManager_CheckKeepsOrder(t *testing.T) {
	m := NewManager()
	m.AddChecker(&mockChecker{name: "slow", result: Healthy("ok"), delay: 20 * time.Millisecond})
	m.AddChecker(&mockChecker{name: "fast", result: Healthy("ok")})

	report := m.Check(context.Background())

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "slow", report.Entries[0].Name)
	assert.Equal(t, "fast", report.Entries[1].Name)
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Positive(t, report.Entries[0].Result.Latency)
	assert.Equal(t, []string{"slow", "fast"}, m.Names())
}

func TestManager_Timeout(t *testing.T) {
	m := NewManager().WithTimeout(10 * time.Millisecond)
	m.AddChecker(&mockChecker{name: "hang", result: Healthy("ok"), delay: time.Second})

	report := m.Check(context.Background())

	require.Len(t, report.Entries, 1)
	assert.Equal(t, StatusUnhealthy, report.Entries[0].Result.Status)
	assert.Equal(t, StatusUnhealthy, report.Status)
}

func TestManager_NilResult(t *testing.T) {
	m := NewManager()
	m.AddChecker(&mockChecker{name: "broken"})

	report := m.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Entries[0].Result.Status)
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []Entry
			for _, s := range tt.statuses {
				entries = append(entries, Entry{Name: string(s), Result: NewResult(s, "")})
			}
			assert.Equal(t, tt.want, Overall(entries))
		})
	}
}

func TestAPIChecker(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/posts/explore", r.URL.Path)
			_, _ = w.Write([]byte(`[{"_id":"p1","title":"t"}]`))
		}))
		defer srv.Close()

		res := NewAPIChecker(api.NewClient(srv.URL)).Check(context.Background())
		assert.Equal(t, StatusHealthy, res.Status)
		assert.Equal(t, 1, res.Details["posts"])
	})

	t.Run("server error is degraded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"db down"}`))
		}))
		defer srv.Close()

		res := NewAPIChecker(api.NewClient(srv.URL)).Check(context.Background())
		assert.Equal(t, StatusDegraded, res.Status)
		assert.Equal(t, "db down", res.Details["message"])
	})

	t.Run("unreachable is unhealthy", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		res := NewAPIChecker(api.NewClient(url)).Check(context.Background())
		assert.Equal(t, StatusUnhealthy, res.Status)
		assert.Contains(t, res.Message, "cannot reach")
	})
}

func TestStorageChecker(t *testing.T) {
	st := storage.NewMemoryStorage()

	res := NewStorageChecker(st, "memory").Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)

	_, ok, err := st.Get(context.Background(), probeKey)
	require.NoError(t, err)
	assert.False(t, ok, "probe key is removed")
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestSessionChecker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		token  string
		status Status
		msg    string
	}{
		{"logged out", "", StatusHealthy, "not logged in"},
		{"opaque", "plain-token", StatusHealthy, "opaque"},
		{"valid", signed(t, jwt.MapClaims{"id": "u1", "exp": now.Add(time.Hour).Unix()}), StatusHealthy, "logged in"},
		{"expired", signed(t, jwt.MapClaims{"id": "u1", "exp": now.Add(-time.Hour).Unix()}), StatusDegraded, "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New(storage.NewMemoryStorage(), nil)
			sess.Initialize(ctx)
			if tt.token != "" {
				require.NoError(t, sess.Login(ctx, tt.token))
			}

			c := NewSessionChecker(sess)
			c.now = func() time.Time { return now }

			res := c.Check(ctx)
			assert.Equal(t, tt.status, res.Status)
			assert.Contains(t, res.Message, tt.msg)
		})
	}
}
