package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/exitcode"
)

const testUserID = "64a0000000000000000000a1"

func testToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  testUserID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

// backend is a fake Postify API
type backend struct {
	*httptest.Server

	token string

	mu      sync.Mutex
	reject  bool
	created []map[string]interface{}
	hits    map[string]int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{token: testToken(t), hits: map[string]int{}}

	post := `{"_id":"p1","title":"Hello Go","content":"First post","tags":["go"],` +
		`"author":{"_id":"` + testUserID + `","name":"Ada"},"likes":[],"comments":[],"views":3}`
	user := `{"_id":"` + testUserID + `","name":"Ada","followers":[],"following":[]}`

	authed := func(w http.ResponseWriter, r *http.Request) bool {
		b.mu.Lock()
		reject := b.reject
		b.mu.Unlock()
		if reject || r.Header.Get("Authorization") != "Bearer "+b.token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token is not valid"}`))
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"` + b.token + `","user":` + user + `}`))
	})
	mux.HandleFunc("GET /api/user/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if authed(w, r) {
			_, _ = w.Write([]byte(user))
		}
	})
	mux.HandleFunc("GET /api/posts/user/me", func(w http.ResponseWriter, r *http.Request) {
		if authed(w, r) {
			_, _ = w.Write([]byte("[" + post + "]"))
		}
	})
	mux.HandleFunc("GET /api/posts/explore", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[" + post + "]"))
	})
	mux.HandleFunc("GET /api/posts/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "go" {
			_, _ = w.Write([]byte("[" + post + "]"))
			return
		}
		_, _ = w.Write([]byte("[]"))
	})
	mux.HandleFunc("POST /api/posts", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.created = append(b.created, body)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(post))
	})
	mux.HandleFunc("POST /api/posts/{id}/like", func(w http.ResponseWriter, r *http.Request) {
		if authed(w, r) {
			_, _ = w.Write([]byte(post))
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found"}`))
	})

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) hitCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

// resetFlags restores every flag to its default so commands can run
// repeatedly in one process
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type harness struct {
	t    *testing.T
	home string
	api  *backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("POSTIFY_NO_PROMPT", "1")
	t.Setenv("POSTIFY_STORAGE", "")
	t.Setenv("POSTIFY_API_URL", "")
	t.Setenv("NO_COLOR", "1")
	return &harness{t: t, home: t.TempDir(), api: newBackend(t)}
}

// run executes postify with args and returns stdout, stderr and the error
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	resetFlags(rootCmd)
	defer resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	full := append([]string{"--home", h.home, "--api-url", h.api.URL, "--no-input"}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGatedRouteResumesAfterLogin(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("dashboard")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthRequired))
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.Contains(t, stderr, "Login required to open /dashboard")
	assert.Zero(t, h.api.hitCount("GET /api/user/dashboard"), "gated view must not load before login")

	out, _, err := h.run("auth", "status", "--format", "json")
	require.NoError(t, err)
	var status StatusView
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.False(t, status.Authenticated)
	assert.Equal(t, "/dashboard", status.PendingRedirect)

	out, stderr, err = h.run("auth", "login", "--email", "ada@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Logged in as Ada")
	assert.Contains(t, out, "Welcome to Ada's dashboard")

	out, _, err = h.run("auth", "status", "--format", "json")
	require.NoError(t, err)
	status = StatusView{}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Authenticated)
	assert.Equal(t, testUserID, status.UserID)
	assert.Empty(t, status.PendingRedirect, "pending redirect is consumed once")
}

func TestLoginWithoutPendingLandsOnDefault(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("auth", "login", "--token", h.api.token, "--format", "json")
	require.NoError(t, err)

	var dash map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Contains(t, dash, "stats")
	assert.Contains(t, dash, "posts")
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("dashboard")
	require.Error(t, err)

	_, _, err = h.run("auth", "login", "--email", "ada@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthRejected))
	assert.Contains(t, err.Error(), "Invalid credentials")

	out, _, err := h.run("auth", "status", "--format", "json")
	require.NoError(t, err)
	var status StatusView
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.False(t, status.Authenticated)
	assert.Equal(t, "/dashboard", status.PendingRedirect, "failed login keeps the pending redirect")
}

func TestLoginRequiresInputWhenNotInteractive(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("auth", "login", "--email", "ada@example.com")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthInputRequired))
	assert.Zero(t, h.api.hitCount("POST /api/auth/login"))
}

func TestLogoutLandsOnHome(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("auth", "login", "--token", h.api.token)
	require.NoError(t, err)

	out, stderr, err := h.run("auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Logged out")
	assert.Contains(t, out, "Postify")
	assert.Contains(t, out, "postify auth login")

	_, _, err = h.run("dashboard")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthRequired))

	// logging out twice is harmless
	_, stderr, err = h.run("auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Not logged in")
}

func TestRejectedTokenClearsSession(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("auth", "login", "--token", h.api.token)
	require.NoError(t, err)

	h.api.mu.Lock()
	h.api.reject = true
	h.api.mu.Unlock()

	_, _, err = h.run("post", "like", "p1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthRejected))
	assert.Contains(t, err.Error(), "has been cleared")
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))

	out, _, err := h.run("auth", "status", "--format", "json")
	require.NoError(t, err)
	var status StatusView
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.False(t, status.Authenticated)
}

func TestMutationsRequireSession(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
	}{
		{"like", []string{"post", "like", "p1"}},
		{"comment", []string{"post", "comment", "p1", "nice"}},
		{"uncomment", []string{"post", "uncomment", "p1", "c1"}},
		{"delete", []string{"post", "delete", "p1", "--yes"}},
		{"follow", []string{"author", "follow", "u2"}},
		{"create", []string{"post", "create", "--title", "T", "--content", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := h.run(tt.args...)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeAuthRequired), "got %v", err)
		})
	}

	h.api.mu.Lock()
	defer h.api.mu.Unlock()
	for key := range h.api.hits {
		assert.False(t, strings.HasPrefix(key, "POST") || strings.HasPrefix(key, "DELETE"),
			"no mutation may reach the API, got %s", key)
	}
}

func TestCreatePostLandsOnDashboard(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("auth", "login", "--token", h.api.token)
	require.NoError(t, err)

	out, stderr, err := h.run("post", "create", "--title", "Hello Go", "--content", "First post", "--tags", "go, cli,")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Published")
	assert.Contains(t, out, "Welcome to Ada's dashboard")

	require.Len(t, h.api.created, 1)
	assert.Equal(t, "Hello Go", h.api.created[0]["title"])
	assert.Equal(t, []interface{}{"go", "cli"}, h.api.created[0]["tags"])
}

func TestExploreNonInteractive(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("explore", "#go")
	require.NoError(t, err)
	assert.Contains(t, out, `Results for "go"`)
	assert.Contains(t, out, "Hello Go")
	assert.Equal(t, 1, h.api.hitCount("GET /api/posts/search"))

	out, _, err = h.run("explore", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Hello Go")
	assert.Equal(t, 1, h.api.hitCount("GET /api/posts/explore"))
}

func TestOpenUnknownRoute(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("open", "/nowhere")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNavRouteNotFound))
	assert.Equal(t, exitcode.NotFound, exitcode.DetermineExitCode(err))
}

func TestOpenAlias(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("open", "/", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated":false}`, out)
}

func TestUnreachableBackend(t *testing.T) {
	h := newHarness(t)
	h.api.Close()

	_, _, err := h.run("explore", "--no-tui")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNetUnreachable))
	assert.Equal(t, exitcode.NetworkError, exitcode.DetermineExitCode(err))
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("home", "--format", "xml")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, h.home+"/config.yaml\n", out)

	_, _, err = h.run("config", "init")
	require.NoError(t, err)

	_, _, err = h.run("config", "init")
	require.Error(t, err, "init refuses to overwrite")

	out, _, err = h.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: "+h.api.URL)
	assert.Contains(t, out, "driver: file")
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, _, err = h.run("version", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "dev"`)
}

func TestDoctor(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("doctor", "--format", "json")
	require.NoError(t, err)

	var report struct {
		Status string `json:"status"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "healthy", report.Status)
	require.Len(t, report.Checks, 3)
	assert.Equal(t, "api", report.Checks[0].Name)

	h.api.Close()
	_, _, err = h.run("doctor")
	require.Error(t, err)
	assert.Equal(t, exitcode.NetworkError, exitcode.DetermineExitCode(err))
}
