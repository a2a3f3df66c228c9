// Package navigation implements the protected navigation gate: it decides
// whether a requested route may be shown now or whether the user must log
// in first, and remembers the interrupted destination across the login.
//
// The gate only inspects state and branches. It never fails a navigation;
// storage problems while remembering a destination are logged and the
// redirect to login still happens.
package navigation

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/postify/internal/log"
	"github.com/felixgeelhaar/postify/internal/storage"
)

// State is the gate's view of the session
type State int

const (
	// Unauthenticated means no session token is held
	Unauthenticated State = iota
	// Authenticated means a session token is held
	Authenticated
)

// String returns the state name
func (s State) String() string {
	if s == Authenticated {
		return "Authenticated"
	}
	return "Unauthenticated"
}

// Session is the part of the session store the gate depends on
type Session interface {
	IsAuthenticated() bool
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

// Decision is the outcome of a navigation attempt
type Decision struct {
	// Destination is the route the user ends up on
	Destination string
	// Intercepted is true when the requested route was replaced by login
	Intercepted bool
	// Requested is the route originally asked for
	Requested string
}

// Gate guards gated routes
type Gate struct {
	session Session
	storage storage.Storage
	routes  Routes
	logger  *log.Logger
}

// NewGate creates a gate. The pending redirect is kept in st under
// storage.KeyRedirectAfterLogin so it survives process restarts.
func NewGate(sess Session, st storage.Storage, routes Routes, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.Nop()
	}
	if routes.LoginPath == "" {
		routes.LoginPath = DefaultRoutes().LoginPath
	}
	if routes.DefaultLanding == "" {
		routes.DefaultLanding = DefaultRoutes().DefaultLanding
	}
	if routes.LogoutLanding == "" {
		routes.LogoutLanding = DefaultRoutes().LogoutLanding
	}
	return &Gate{
		session: sess,
		storage: st,
		routes:  routes,
		logger:  logger.With("component", "navigation"),
	}
}

// Routes returns the gate's route configuration
func (g *Gate) Routes() Routes {
	return g.routes
}

// State reports the current session state
func (g *Gate) State() State {
	if g.session.IsAuthenticated() {
		return Authenticated
	}
	return Unauthenticated
}

// AttemptNavigate decides where a navigation to target ends up.
//
// Ungated targets always proceed. A gated target proceeds when
// authenticated; otherwise it is recorded as the pending redirect,
// replacing any earlier one, and the user is sent to the login path.
func (g *Gate) AttemptNavigate(ctx context.Context, target string, isGated bool) Decision {
	target = Normalize(target)

	if !isGated || g.State() == Authenticated {
		return Decision{Destination: target, Requested: target}
	}

	if err := g.storage.Set(ctx, storage.KeyRedirectAfterLogin, target); err != nil {
		g.logger.WithError(err).WarnContext(ctx, "could not remember pending redirect", "target", target)
	}

	g.logger.InfoContext(ctx, "navigation intercepted", "target", target, "destination", g.routes.LoginPath)
	return Decision{
		Destination: g.routes.LoginPath,
		Intercepted: true,
		Requested:   target,
	}
}

// Navigate is AttemptNavigate with gating looked up from the route table
func (g *Gate) Navigate(ctx context.Context, target string) Decision {
	return g.AttemptNavigate(ctx, target, g.routes.IsGated(target))
}

// CompleteLogin starts the session with token and returns where the user
// lands: the pending redirect if one was recorded, otherwise the default
// landing. The pending redirect is consumed exactly once. If the login
// fails, the pending redirect is left in place for the next attempt.
func (g *Gate) CompleteLogin(ctx context.Context, token string) (Decision, error) {
	if err := g.session.Login(ctx, token); err != nil {
		return Decision{}, err
	}

	dest := g.routes.DefaultLanding
	if pending, ok := g.takePending(ctx); ok {
		dest = pending
	}

	g.logger.InfoContext(ctx, "login complete", "destination", dest)
	return Decision{Destination: dest, Requested: dest}, nil
}

// Logout ends the session and sends the user to the logout landing
func (g *Gate) Logout(ctx context.Context) (Decision, error) {
	err := g.session.Logout(ctx)
	return Decision{Destination: g.routes.LogoutLanding, Requested: g.routes.LogoutLanding}, err
}

// HandleUnauthorized is the reactive transition taken when the API
// rejects the stored token: the session is cleared and the user is sent
// to the login path. It is safe to call when already logged out.
func (g *Gate) HandleUnauthorized(ctx context.Context) Decision {
	if err := g.session.Logout(ctx); err != nil {
		g.logger.WithError(err).WarnContext(ctx, "failed to clear rejected session")
	}
	g.logger.InfoContext(ctx, "session rejected by server", "destination", g.routes.LoginPath)
	return Decision{Destination: g.routes.LoginPath, Intercepted: true}
}

// PendingRedirect returns the recorded destination, if any, without
// consuming it
func (g *Gate) PendingRedirect(ctx context.Context) (string, bool) {
	v, ok, err := g.storage.Get(ctx, storage.KeyRedirectAfterLogin)
	if err != nil {
		g.logger.WithError(err).WarnContext(ctx, "could not read pending redirect")
		return "", false
	}
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func (g *Gate) takePending(ctx context.Context) (string, bool) {
	v, ok := g.PendingRedirect(ctx)
	if err := g.storage.Delete(ctx, storage.KeyRedirectAfterLogin); err != nil {
		g.logger.WithError(err).WarnContext(ctx, "could not clear pending redirect")
	}
	return v, ok
}
