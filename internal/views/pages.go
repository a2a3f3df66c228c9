package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/tui"
)

// HomeView is the landing page
type HomeView struct {
	Authenticated bool `json:"authenticated" yaml:"authenticated"`
}

func (v HomeView) RenderText(noColor bool) string {
	s := tui.StylesFor(noColor)
	var b strings.Builder
	b.WriteString(s.Title.Render("Postify"))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render("Write, share and discover posts."))
	b.WriteString("\n\n")

	hints := [][2]string{
		{"postify explore", "browse and search posts"},
	}
	if v.Authenticated {
		hints = append(hints,
			[2]string{"postify dashboard", "your posts and stats"},
			[2]string{"postify post create", "write a new post"},
		)
	} else {
		hints = append(hints,
			[2]string{"postify auth login", "sign in"},
			[2]string{"postify auth register", "create an account"},
		)
	}
	for _, h := range hints {
		b.WriteString(fmt.Sprintf("  %-24s %s\n", h[0], s.Muted.Render(h[1])))
	}
	return b.String()
}

// ExploreView is the explore feed or a search result
type ExploreView struct {
	Query string     `json:"query,omitempty" yaml:"query,omitempty"`
	Posts []api.Post `json:"posts" yaml:"posts"`
}

func (v ExploreView) RenderText(noColor bool) string {
	heading := "Explore"
	if q := api.NormalizeQuery(v.Query); q != "" {
		heading = fmt.Sprintf("Results for %q", q)
	}
	return tui.RenderPostList(tui.StylesFor(noColor), heading, v.Posts)
}

// DashboardView is the signed-in user's dashboard
type DashboardView struct {
	api.DashboardView `yaml:",inline"`
}

func (v DashboardView) RenderText(noColor bool) string {
	return tui.RenderDashboard(tui.StylesFor(noColor), &v.DashboardView)
}

// PostView is a single post with related posts
type PostView struct {
	Post          *api.Post  `json:"post" yaml:"post"`
	Related       []api.Post `json:"related" yaml:"related"`
	CurrentUserID string     `json:"-" yaml:"-"`
}

func (v PostView) RenderText(noColor bool) string {
	return tui.RenderPostDetail(tui.StylesFor(noColor), v.Post, v.Related, v.CurrentUserID)
}

// AuthorView is a public author profile
type AuthorView struct {
	api.AuthorView `yaml:",inline"`
	Authenticated  bool `json:"-" yaml:"-"`
}

func (v AuthorView) RenderText(noColor bool) string {
	return tui.RenderAuthor(tui.StylesFor(noColor), &v.AuthorView, v.Authenticated)
}

// NoticeView is a page that only carries a message and next steps
type NoticeView struct {
	Route   string   `json:"route" yaml:"route"`
	Message string   `json:"message" yaml:"message"`
	Hints   []string `json:"hints,omitempty" yaml:"hints,omitempty"`
}

func (v NoticeView) RenderText(noColor bool) string {
	s := tui.StylesFor(noColor)
	var b strings.Builder
	b.WriteString(s.Accent.Render(v.Message))
	for _, h := range v.Hints {
		b.WriteString("\n  " + h)
	}
	return b.String()
}

// LegalView shows the terms, privacy and about texts
type LegalView struct {
	Section  string            `json:"section,omitempty" yaml:"section,omitempty"`
	Sections map[string]string `json:"sections" yaml:"sections"`
}

var legalSections = []struct{ key, title, text string }{
	{"about", "About", "Postify is a small blogging platform. Write posts, tag them, follow authors and discuss in the comments."},
	{"terms", "Terms of Service", "Be kind. You are responsible for what you post. Comments that break the community rules may be hidden."},
	{"privacy", "Privacy", "Postify stores your account details and the content you publish. The CLI keeps only your session token locally."},
}

func (v LegalView) RenderText(noColor bool) string {
	s := tui.StylesFor(noColor)
	var parts []string
	for _, sec := range legalSections {
		if v.Section != "" && v.Section != sec.key {
			continue
		}
		parts = append(parts, s.Title.Render(sec.title)+"\n"+sec.text)
	}
	return strings.Join(parts, "\n\n")
}

func (r *Registry) home(ctx context.Context, _ Params) (Result, error) {
	return HomeView{Authenticated: r.session.IsAuthenticated()}, nil
}

func (r *Registry) explore(ctx context.Context, params Params) (Result, error) {
	q := params["q"]
	if q == "" {
		q = params["query"]
	}
	posts, err := r.client.SearchPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	return ExploreView{Query: q, Posts: posts}, nil
}

func (r *Registry) dashboard(ctx context.Context, _ Params) (Result, error) {
	v, err := r.client.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return DashboardView{DashboardView: *v}, nil
}

func (r *Registry) createPost(ctx context.Context, _ Params) (Result, error) {
	return NoticeView{
		Route:   "/createpost",
		Message: "Write a new post",
		Hints: []string{
			"postify post create                       interactive form",
			"postify post create --title T --content C --tags go,cli",
		},
	}, nil
}

func (r *Registry) post(ctx context.Context, params Params) (Result, error) {
	post, err := r.client.GetPost(ctx, params["id"])
	if err != nil {
		return nil, err
	}

	// related posts are optional
	related, err := r.client.Recommendations(ctx, params["id"])
	if err != nil {
		related = nil
	}

	return PostView{Post: post, Related: related, CurrentUserID: r.session.UserID()}, nil
}

func (r *Registry) author(ctx context.Context, params Params) (Result, error) {
	authed := r.session.IsAuthenticated()
	v, err := r.client.AuthorProfile(ctx, params["id"], authed)
	if err != nil {
		return nil, err
	}
	return AuthorView{AuthorView: *v, Authenticated: authed}, nil
}

func (r *Registry) login(ctx context.Context, params Params) (Result, error) {
	v := NoticeView{
		Route:   "/login",
		Message: "Please log in to continue",
		Hints: []string{
			"postify auth login --email you@example.com",
			"postify auth register   (no account yet)",
		},
	}
	if next := params["next"]; next != "" {
		v.Message = fmt.Sprintf("Please log in to continue to %s", next)
	}
	if r.session.IsAuthenticated() {
		v.Message = "You are already logged in"
		v.Hints = []string{"postify dashboard"}
	}
	return v, nil
}

func (r *Registry) register(ctx context.Context, _ Params) (Result, error) {
	return NoticeView{
		Route:   "/register",
		Message: "Create a Postify account",
		Hints:   []string{"postify auth register"},
	}, nil
}

func (r *Registry) legal(ctx context.Context, params Params) (Result, error) {
	v := LegalView{Sections: map[string]string{}}
	for _, sec := range legalSections {
		v.Sections[sec.key] = sec.text
	}
	if alias := strings.TrimPrefix(params["alias"], "/"); alias != "" {
		v.Section = alias
	}
	if s := params["section"]; s != "" {
		v.Section = s
	}
	return v, nil
}
