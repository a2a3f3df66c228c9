package health

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/session"
	"github.com/felixgeelhaar/postify/internal/storage"
)

// Explorer is the part of the API client the API check uses
type Explorer interface {
	BaseURL() string
	ExplorePosts(ctx context.Context) ([]api.Post, error)
}

// APIChecker verifies the backend answers a public request
type APIChecker struct {
	client Explorer
}

func NewAPIChecker(client Explorer) *APIChecker {
	return &APIChecker{client: client}
}

func (c *APIChecker) Name() string { return "api" }

func (c *APIChecker) Check(ctx context.Context) *Result {
	start := time.Now()
	posts, err := c.client.ExplorePosts(ctx)
	latency := time.Since(start)

	if err == nil {
		res := Healthy(fmt.Sprintf("%s is reachable", c.client.BaseURL())).
			WithDetail("posts", len(posts))
		res.Latency = latency
		return res
	}

	var apiErr *api.APIError
	if stderrors.As(err, &apiErr) {
		res := Degraded(fmt.Sprintf("%s answered with status %d", c.client.BaseURL(), apiErr.StatusCode)).
			WithDetail("message", apiErr.Message)
		res.Latency = latency
		return res
	}

	res := Unhealthy(fmt.Sprintf("cannot reach %s", c.client.BaseURL())).
		WithDetail("error", err.Error())
	res.Latency = latency
	return res
}

const probeKey storage.Key = "postify:health-probe"

// StorageChecker verifies the session storage accepts a write and reads it
// back
type StorageChecker struct {
	storage storage.Storage
	driver  string
}

func NewStorageChecker(st storage.Storage, driver string) *StorageChecker {
	return &StorageChecker{storage: st, driver: driver}
}

func (c *StorageChecker) Name() string { return "storage" }

func (c *StorageChecker) Check(ctx context.Context) *Result {
	want := time.Now().UTC().Format(time.RFC3339Nano)

	if err := c.storage.Set(ctx, probeKey, want); err != nil {
		return Unhealthy("session storage is not writable").
			WithDetail("driver", c.driver).
			WithDetail("error", err.Error())
	}
	defer func() { _ = c.storage.Delete(context.WithoutCancel(ctx), probeKey) }()

	got, ok, err := c.storage.Get(ctx, probeKey)
	switch {
	case err != nil:
		return Unhealthy("session storage is not readable").
			WithDetail("driver", c.driver).
			WithDetail("error", err.Error())
	case !ok || got != want:
		return Unhealthy("session storage lost a write").
			WithDetail("driver", c.driver)
	}
	return Healthy(c.driver + " storage is working").WithDetail("driver", c.driver)
}

// TokenHolder is the part of the session store the session check uses
type TokenHolder interface {
	CurrentToken() (string, bool)
	Claims() (*session.Claims, error)
}

// SessionChecker reports on the stored session token. Being logged out is
// healthy; an expired JWT is degraded because the server will reject it.
type SessionChecker struct {
	session TokenHolder
	now     func() time.Time
}

func NewSessionChecker(sess TokenHolder) *SessionChecker {
	return &SessionChecker{session: sess, now: time.Now}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) *Result {
	if _, ok := c.session.CurrentToken(); !ok {
		return Healthy("not logged in")
	}

	claims, err := c.session.Claims()
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeSessionTokenOpaque) {
			return Healthy("logged in with an opaque token")
		}
		return Degraded("stored token cannot be decoded").WithDetail("error", err.Error())
	}

	res := Healthy("logged in")
	if claims.UserID != "" {
		res.WithDetail("user", claims.UserID)
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		res.WithDetail("expires", exp.Format(time.RFC3339))
		if c.now().After(exp) {
			res.Status = StatusDegraded
			res.Message = "stored token has expired; run 'postify auth login'"
		}
	}
	return res
}
