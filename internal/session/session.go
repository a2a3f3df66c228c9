// Package session holds the client's authentication state: the bearer
// token issued by the Postify API and whether the user is logged in.
//
// The Store is the single source of truth for login state. It is read
// once at startup (Initialize) and only changes through Login and Logout.
package session

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/log"
	"github.com/felixgeelhaar/postify/internal/storage"
)

var (
	// ErrNoToken is returned by Token and Claims when nobody is logged in
	ErrNoToken = errors.New(errors.ErrCodeSessionNoToken, "no session token")

	// ErrOpaqueToken is returned by Claims when the token is not a JWT
	ErrOpaqueToken = errors.New(errors.ErrCodeSessionTokenOpaque, "session token is not a JWT")
)

// Store is the client-side session
type Store struct {
	storage storage.Storage
	logger  *log.Logger

	mu    sync.RWMutex
	token string
}

// New creates a session store over durable storage. Call Initialize
// before reading state.
func New(st storage.Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Nop()
	}
	return &Store{
		storage: st,
		logger:  logger.With("component", "session"),
	}
}

// Initialize loads the persisted token. It makes no network call and never
// fails: an unreadable store is logged and treated as logged out.
func (s *Store) Initialize(ctx context.Context) {
	token, ok, err := s.storage.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		s.logger.WithError(err).WarnContext(ctx, "could not read stored session, continuing logged out")
		token, ok = "", false
	}
	if !ok || strings.TrimSpace(token) == "" {
		token = ""
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "session initialized", "authenticated", token != "")
}

// Login persists token and marks the session authenticated. A repeated
// call replaces the previous token. On error the state is unchanged.
func (s *Store) Login(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New(errors.ErrCodeSessionTokenEmpty, "cannot log in with an empty token")
	}

	if err := s.storage.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return errors.Wrap(errors.ErrCodeSessionPersist, "failed to persist session token", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session started")
	return nil
}

// Logout forgets the token. It is safe to call when already logged out.
// In-memory state is cleared even if the storage delete fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	was := s.token != ""
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyAuthToken); err != nil {
		s.logger.WithError(err).WarnContext(ctx, "failed to remove stored token")
		return errors.Wrap(errors.ErrCodeSessionClear, "failed to remove stored session token", err)
	}

	if was {
		s.logger.InfoContext(ctx, "session ended")
	}
	return nil
}

// CurrentToken returns the bearer token, if any
func (s *Store) CurrentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// IsAuthenticated reports whether a non-empty token is held
func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentToken()
	return ok
}

// Token implements oauth2.TokenSource so the API client can attach the
// session as a bearer credential.
func (s *Store) Token() (*oauth2.Token, error) {
	tok, ok := s.CurrentToken()
	if !ok {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)

// Claims describes the identity encoded in a JWT session token
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the "id" claim set by the Postify API
	UserID string `json:"id"`
}

// Claims decodes the payload of the current token without verifying its
// signature. The server remains the authority; this only tells the UI
// which posts and comments belong to the current user.
func (s *Store) Claims() (*Claims, error) {
	tok, ok := s.CurrentToken()
	if !ok {
		return nil, ErrNoToken
	}
	return ParseClaims(tok)
}

// ParseClaims decodes an unverified JWT payload
func ParseClaims(token string) (*Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, ErrOpaqueToken
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		if stderrors.Is(err, jwt.ErrTokenMalformed) {
			return nil, errors.Wrap(errors.ErrCodeSessionTokenOpaque, "session token is not a JWT", err)
		}
		return nil, errors.Wrap(errors.ErrCodeSessionClaimsDecode, "failed to decode session token", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// UserID returns the current user id, or "" when unknown
func (s *Store) UserID() string {
	c, err := s.Claims()
	if err != nil {
		return ""
	}
	return c.UserID
}
