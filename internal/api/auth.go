package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/postify/internal/errors"
)

// Login exchanges credentials for a bearer token. The login request never
// carries the stored token, so a 401 here is a credential rejection and
// does not touch the session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New(errors.ErrCodeAuthInputRequired, "email and password are required")
	}

	var resp LoginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Token == "" {
		return nil, errors.New(errors.ErrCodeAuthTokenMissing, "authentication token missing from login response")
	}
	return &resp, nil
}

// RegisterInput is the payload for creating an account
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. It does not log in: the user signs in
// afterwards like in the web client.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return errors.New(errors.ErrCodeAuthInputRequired, "name, email and password are required")
	}

	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   in,
	}, nil)
}
