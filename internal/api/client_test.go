package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/postify/internal/errors"
)

// fakeSession is a token source whose token can be cleared, standing in
// for the session store
type fakeSession struct {
	mu    sync.Mutex
	token string
}

func (f *fakeSession) Token() (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return nil, stderrors.New("no token")
	}
	return &oauth2.Token{AccessToken: f.token, TokenType: "Bearer"}, nil
}

func (f *fakeSession) clear() {
	f.mu.Lock()
	f.token = ""
	f.mu.Unlock()
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotUA = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, []Post{})
	}, WithTokenSource(&fakeSession{token: "abc.def.ghi"}))

	_, err := c.MyPosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Contains(t, gotUA, "postify-cli/")
}

func TestClient_PublicRequestsOmitToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []Post{})
	}, WithTokenSource(&fakeSession{token: "tok"}))

	_, err := c.ExplorePosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_AuthRequiredWithoutToken(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, []Post{})
	}, WithTokenSource(&fakeSession{}))

	_, err := c.MyPosts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthRequired))
	assert.Equal(t, int32(0), calls.Load(), "no request should be sent")
}

func TestClient_UnauthorizedClearsSessionOnce(t *testing.T) {
	sess := &fakeSession{token: "stale"}
	var fired atomic.Int32

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token is not valid"})
	},
		WithTokenSource(sess),
		WithUnauthorizedHandler(func(ctx context.Context) {
			fired.Add(1)
			sess.clear()
		}),
	)

	_, err := c.DashboardProfile(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Token is not valid", apiErr.Message)
	assert.True(t, apiErr.SessionCleared)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(1), fired.Load())

	_, tokErr := sess.Token()
	assert.Error(t, tokErr, "session should be cleared")
}

func TestClient_LoginRejectionDoesNotClearSession(t *testing.T) {
	var fired atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Invalid credentials"})
	},
		WithTokenSource(&fakeSession{token: "existing"}),
		WithUnauthorizedHandler(func(ctx context.Context) { fired.Add(1) }),
	)

	_, err := c.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Equal(t, int32(0), fired.Load())

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.False(t, apiErr.SessionCleared)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	classified := Classify(err, c.BaseURL())
	assert.True(t, errors.HasCode(classified, errors.ErrCodeAuthRejected))
}

func TestClient_NetworkErrorLeavesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sess := &fakeSession{token: "keep-me"}
	var fired atomic.Int32
	c := NewClient(url,
		WithTokenSource(sess),
		WithUnauthorizedHandler(func(ctx context.Context) { fired.Add(1) }),
	)

	_, err := c.DashboardProfile(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, stderrors.As(err, &netErr))
	assert.Equal(t, int32(0), fired.Load())

	tok, tokErr := sess.Token()
	require.NoError(t, tokErr)
	assert.Equal(t, "keep-me", tok.AccessToken)

	classified := Classify(err, c.BaseURL())
	assert.True(t, errors.HasCode(classified, errors.ErrCodeNetUnreachable))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.ExplorePosts(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, stderrors.As(err, &netErr))
	assert.True(t, netErr.Timeout())
	assert.True(t, errors.HasCode(Classify(err, c.BaseURL()), errors.ErrCodeNetTimeout))
}

func TestClient_ErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 400, `{"message":"Title is required"}`, "Title is required"},
		{"error field", 500, `{"error":"boom"}`, "boom"},
		{"msg field", 403, `{"msg":"Not allowed"}`, "Not allowed"},
		{"message wins", 400, `{"msg":"second","message":"first"}`, "first"},
		{"plain text", 502, `Bad Gateway`, "Bad Gateway"},
		{"html body", 502, `<html>oops</html>`, "request failed with status 502"},
		{"empty body", 500, ``, "request failed with status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.ExplorePosts(context.Background())
			var apiErr *APIError
			require.True(t, stderrors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "{not json")
	})

	_, err := c.GetPost(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAPIInvalidResponse))
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Post not found"})
	})

	_, err := c.GetPost(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.True(t, errors.HasCode(Classify(err, c.BaseURL()), errors.ErrCodeAPINotFound))
}

func TestClient_InvalidIDsAreRejected(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	for _, id := range []string{"", "  ", "undefined", "null"} {
		_, err := c.GetPost(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}
}

func TestSearchPosts_QueryShaping(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPath  string
		wantQuery string
	}{
		{"plain", "golang", "/api/posts/search", "golang"},
		{"hash tag", "#golang", "/api/posts/search", "golang"},
		{"padded", "  #go  ", "/api/posts/search", "go"},
		{"blank falls back to explore", "   ", "/api/posts/explore", ""},
		{"only hash falls back to explore", "#", "/api/posts/explore", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query().Get("query")
				writeJSON(w, http.StatusOK, []Post{})
			})

			_, err := c.SearchPosts(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, tt.wantQuery, gotQuery)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("returns token", func(t *testing.T) {
		var body map[string]string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/login", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"token": "a.b.c",
				"user":  map[string]string{"_id": "u1", "name": "Ada"},
			})
		})

		resp, err := c.Login(context.Background(), " ada@example.com ", "pw")
		require.NoError(t, err)
		assert.Equal(t, "a.b.c", resp.Token)
		assert.Equal(t, "Ada", resp.User.Name)
		assert.Equal(t, map[string]string{"email": "ada@example.com", "password": "pw"}, body)
	})

	t.Run("missing token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{})
		})

		_, err := c.Login(context.Background(), "a@b.c", "pw")
		assert.True(t, errors.HasCode(err, errors.ErrCodeAuthTokenMissing))
	})

	t.Run("blank input", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1")
		_, err := c.Login(context.Background(), "", "pw")
		assert.True(t, errors.HasCode(err, errors.ErrCodeAuthInputRequired))
	})
}

func TestCreatePost(t *testing.T) {
	var got PostInput
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"_id": "p9", "title": got.Title})
	}, WithTokenSource(&fakeSession{token: "t"}))

	post, err := c.CreatePost(context.Background(), PostInput{
		Title:   " Hello ",
		Content: "World",
		Tags:    ParseTags("go, cli,, "),
	})
	require.NoError(t, err)
	assert.Equal(t, "p9", post.ID)

	want := PostInput{Title: "Hello", Content: "World", Tags: []string{"go", "cli"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	_, err = c.CreatePost(context.Background(), PostInput{Title: "x"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeAPIValidation))
}

func TestAddComment_RejectsBlank(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTokenSource(&fakeSession{token: "t"}))
	_, err := c.AddComment(context.Background(), "p1", "   ")
	assert.True(t, errors.HasCode(err, errors.ErrCodeAPIValidation))
}

func TestDashboard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts/user/me":
			_, _ = io.WriteString(w, `[
				{"_id":"p1","title":"One","views":10,"likes":["u2","u3"]},
				{"_id":"p2","title":"Two","views":5,"likes":[{"_id":"u4","name":"Bo"}]}
			]`)
		case "/api/user/dashboard":
			_, _ = io.WriteString(w, `{"_id":"u1","name":"Ada","followers":["u2"],"following":[{"_id":"u3"},{"_id":"u4"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, WithTokenSource(&fakeSession{token: "t"}))

	view, err := c.Dashboard(context.Background())
	require.NoError(t, err)

	want := Stats{Posts: 2, Views: 15, Likes: 3, Followers: 1, Following: 2}
	if diff := cmp.Diff(want, view.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Ada", view.User.Name)
	assert.True(t, view.Posts[1].LikedBy("u4"))
}

func TestAuthorProfile_FollowStatus(t *testing.T) {
	var followChecked atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/u7":
			_, _ = io.WriteString(w, `{"_id":"u7","name":"Cy","followers":[],"following":[]}`)
		case "/api/posts/author/u7":
			_, _ = io.WriteString(w, `[]`)
		case "/api/user/u7/follow-status":
			followChecked.Store(true)
			_, _ = io.WriteString(w, `{"isFollowing":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, WithTokenSource(&fakeSession{token: "t"}))

	view, err := c.AuthorProfile(context.Background(), "u7", false)
	require.NoError(t, err)
	assert.False(t, view.IsFollowing)
	assert.False(t, followChecked.Load())

	view, err = c.AuthorProfile(context.Background(), "u7", true)
	require.NoError(t, err)
	assert.True(t, view.IsFollowing)
	assert.Equal(t, "Cy", view.User.Name)
}
