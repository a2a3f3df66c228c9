package api

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// GetUser fetches a public profile
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	uid, err := pathID(id)
	if err != nil {
		return nil, err
	}

	var u User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/user/" + uid}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DashboardProfile fetches the current user's own profile
func (c *Client) DashboardProfile(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/user/dashboard", auth: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ToggleFollow follows or unfollows a user
func (c *Client) ToggleFollow(ctx context.Context, id string) (*FollowResult, error) {
	uid, err := pathID(id)
	if err != nil {
		return nil, err
	}

	var res FollowResult
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/user/" + uid + "/follow", auth: true}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FollowStatus reports whether the current user follows id
func (c *Client) FollowStatus(ctx context.Context, id string) (*FollowStatus, error) {
	uid, err := pathID(id)
	if err != nil {
		return nil, err
	}

	var st FollowStatus
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/user/" + uid + "/follow-status", auth: true}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// DashboardView is everything the dashboard shows
type DashboardView struct {
	User  *User  `json:"user" yaml:"user"`
	Posts []Post `json:"posts" yaml:"posts"`
	Stats Stats  `json:"stats" yaml:"stats"`
}

// Dashboard loads the user's posts and profile concurrently
func (c *Client) Dashboard(ctx context.Context) (*DashboardView, error) {
	var (
		posts []Post
		user  *User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = c.MyPosts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = c.DashboardProfile(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardView{
		User:  user,
		Posts: posts,
		Stats: ComputeStats(user, posts),
	}, nil
}

// AuthorView is a public author profile
type AuthorView struct {
	User        *User  `json:"user" yaml:"user"`
	Posts       []Post `json:"posts" yaml:"posts"`
	Stats       Stats  `json:"stats" yaml:"stats"`
	IsFollowing bool   `json:"isFollowing" yaml:"isFollowing"`
}

// AuthorProfile loads a profile and its posts concurrently. When
// withFollowStatus is set, follow status is fetched afterwards.
func (c *Client) AuthorProfile(ctx context.Context, id string, withFollowStatus bool) (*AuthorView, error) {
	if _, err := pathID(id); err != nil {
		return nil, err
	}

	var (
		posts []Post
		user  *User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = c.GetUser(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = c.AuthorPosts(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &AuthorView{
		User:  user,
		Posts: posts,
		Stats: ComputeStats(user, posts),
	}

	if withFollowStatus {
		st, err := c.FollowStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		view.IsFollowing = st.IsFollowing
	}
	return view, nil
}
