package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Ref is a reference to a user as the API returns it: either a bare id
// string or a populated object with at least an _id.
type Ref struct {
	ID   string `json:"_id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// UnmarshalJSON accepts both "id" and {"_id": "id", ...}
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("user reference: %w", err)
	}
	*r = Ref(p)
	return nil
}

// DisplayName returns the name or a fallback
func (r Ref) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return "User"
}

// Comment is a comment on a post
type Comment struct {
	ID        string    `json:"_id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	User      Ref       `json:"user" yaml:"user"`
	IsToxic   bool      `json:"isToxic,omitempty" yaml:"isToxic,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Post is a blog post
type Post struct {
	ID        string    `json:"_id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Tags      []string  `json:"tags" yaml:"tags"`
	Image     string    `json:"image,omitempty" yaml:"image,omitempty"`
	Author    Ref       `json:"author" yaml:"author"`
	Likes     []Ref     `json:"likes" yaml:"likes"`
	Comments  []Comment `json:"comments" yaml:"comments"`
	Views     int       `json:"views" yaml:"views"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// LikedBy reports whether userID is among the post's likes
func (p *Post) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, l := range p.Likes {
		if l.ID == userID {
			return true
		}
	}
	return false
}

// Excerpt returns the first n runes of the content
func (p *Post) Excerpt(n int) string {
	r := []rune(strings.TrimSpace(p.Content))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

// User is a Postify user profile
type User struct {
	ID        string    `json:"_id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
	Bio       string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	Followers []Ref     `json:"followers" yaml:"followers"`
	Following []Ref     `json:"following" yaml:"following"`
	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string `json:"token" yaml:"token"`
	User  *User  `json:"user,omitempty" yaml:"user,omitempty"`
}

// PostInput is the payload for creating a post
type PostInput struct {
	Title   string   `json:"title" yaml:"title"`
	Content string   `json:"content" yaml:"content"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// ParseTags splits a comma separated tag list, trimming blanks
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// FollowResult is returned when toggling a follow
type FollowResult struct {
	IsFollowing bool `json:"isFollowing" yaml:"isFollowing"`
	TargetUser  struct {
		Followers []Ref `json:"followers" yaml:"followers"`
		Following []Ref `json:"following" yaml:"following"`
	} `json:"targetUser" yaml:"targetUser"`
}

// FollowStatus tells whether the current user follows another
type FollowStatus struct {
	IsFollowing bool `json:"isFollowing" yaml:"isFollowing"`
}

// Stats are the totals shown on dashboards and author profiles
type Stats struct {
	Posts     int `json:"posts" yaml:"posts"`
	Views     int `json:"views" yaml:"views"`
	Likes     int `json:"likes" yaml:"likes"`
	Followers int `json:"followers" yaml:"followers"`
	Following int `json:"following" yaml:"following"`
}

// ComputeStats totals views and likes over posts
func ComputeStats(u *User, posts []Post) Stats {
	s := Stats{Posts: len(posts)}
	for _, p := range posts {
		s.Views += p.Views
		s.Likes += len(p.Likes)
	}
	if u != nil {
		s.Followers = len(u.Followers)
		s.Following = len(u.Following)
	}
	return s
}
