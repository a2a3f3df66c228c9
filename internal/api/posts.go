package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/postify/internal/errors"
)

// ExplorePosts returns the curated explore feed
func (c *Client) ExplorePosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/posts/explore"}, &posts)
	return posts, err
}

// NormalizeQuery trims a search query and strips one leading '#', so
// "#golang" searches the tag "golang"
func NormalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	return strings.TrimSpace(strings.TrimPrefix(q, "#"))
}

// SearchPosts searches posts. A blank query returns the explore feed.
func (c *Client) SearchPosts(ctx context.Context, query string) ([]Post, error) {
	q := NormalizeQuery(query)
	if q == "" {
		return c.ExplorePosts(ctx)
	}

	var posts []Post
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/posts/search",
		query:  url.Values{"query": {q}},
	}, &posts)
	return posts, err
}

// GetPost fetches a single post
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}

	var post Post
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/posts/" + pid}, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Recommendations returns posts related to id
func (c *Client) Recommendations(ctx context.Context, id string) ([]Post, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}

	var posts []Post
	err = c.do(ctx, request{method: http.MethodGet, path: "/api/posts/" + pid + "/recommendations"}, &posts)
	return posts, err
}

// CreatePost publishes a new post
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" || in.Content == "" {
		return nil, errors.New(errors.ErrCodeAPIValidation, "title and content are required")
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	var post Post
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/posts",
		body:   in,
		auth:   true,
	}, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes one of the user's posts
func (c *Client) DeletePost(ctx context.Context, id string) error {
	pid, err := pathID(id)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/posts/" + pid, auth: true}, nil)
}

// ToggleLike likes or unlikes a post and returns the updated post
func (c *Client) ToggleLike(ctx context.Context, id string) (*Post, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}

	var post Post
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/posts/" + pid + "/like", auth: true}, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// AddComment comments on a post and returns the updated post
func (c *Client) AddComment(ctx context.Context, id, text string) (*Post, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New(errors.ErrCodeAPIValidation, "comment text is required")
	}

	var post Post
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/posts/" + pid + "/comment",
		body:   map[string]string{"text": text},
		auth:   true,
	}, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeleteComment removes a comment from a post
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	pid, err := pathID(postID)
	if err != nil {
		return err
	}
	cid, err := pathID(commentID)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/posts/" + pid + "/comment/" + cid,
		auth:   true,
	}, nil)
}

// MyPosts returns the current user's posts
func (c *Client) MyPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/posts/user/me", auth: true}, &posts)
	return posts, err
}

// AuthorPosts returns the posts of another user
func (c *Client) AuthorPosts(ctx context.Context, authorID string) ([]Post, error) {
	aid, err := pathID(authorID)
	if err != nil {
		return nil, err
	}

	var posts []Post
	err = c.do(ctx, request{method: http.MethodGet, path: "/api/posts/author/" + aid}, &posts)
	return posts, err
}
