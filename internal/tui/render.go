package tui

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/errors"
)

const excerptLen = 160

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006")
}

func renderTags(s Styles, tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, s.Tag.Render("#"+t))
	}
	return strings.Join(out, " ")
}

func byline(s Styles, p api.Post) string {
	parts := []string{"by " + p.Author.DisplayName()}
	if d := formatDate(p.CreatedAt); d != "" {
		parts = append(parts, d)
	}
	return s.Muted.Render(strings.Join(parts, " · "))
}

func counters(s Styles, p api.Post) string {
	return s.Muted.Render(fmt.Sprintf("♥ %d   comments %d   views %d", len(p.Likes), len(p.Comments), p.Views))
}

// RenderPostCard renders a post summary for lists
func RenderPostCard(s Styles, p api.Post) string {
	lines := []string{
		s.Title.Render(p.Title),
		byline(s, p),
	}
	if ex := p.Excerpt(excerptLen); ex != "" {
		lines = append(lines, s.Subtitle.Render(ex))
	}
	if tags := renderTags(s, p.Tags); tags != "" {
		lines = append(lines, tags)
	}
	lines = append(lines, counters(s, p)+"  "+s.Muted.Render("id "+p.ID))
	return s.Card.Render(strings.Join(lines, "\n"))
}

// RenderPostList renders a heading and a card per post
func RenderPostList(s Styles, heading string, posts []api.Post) string {
	var b strings.Builder
	if heading != "" {
		b.WriteString(s.Accent.Render(heading))
		b.WriteString("\n\n")
	}
	if len(posts) == 0 {
		b.WriteString(s.Muted.Render("No posts found."))
		return b.String()
	}
	for i, p := range posts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(RenderPostCard(s, p))
	}
	return b.String()
}

// RenderPostDetail renders a full post with comments and related posts.
// currentUserID marks whether the viewer liked the post and which
// comments are theirs.
func RenderPostDetail(s Styles, p *api.Post, related []api.Post, currentUserID string) string {
	var b strings.Builder

	b.WriteString(s.Title.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(byline(s, *p))
	b.WriteString("\n")
	if tags := renderTags(s, p.Tags); tags != "" {
		b.WriteString(tags)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(p.Content)
	b.WriteString("\n\n")

	likes := counters(s, *p)
	if p.LikedBy(currentUserID) {
		likes += "  " + s.Accent.Render("(you like this)")
	}
	b.WriteString(likes)
	b.WriteString("\n\n")

	b.WriteString(s.Accent.Render(fmt.Sprintf("Comments (%d)", len(p.Comments))))
	b.WriteString("\n")
	if len(p.Comments) == 0 {
		b.WriteString(s.Muted.Render("No comments yet."))
		b.WriteString("\n")
	}
	for _, c := range p.Comments {
		who := c.User.DisplayName()
		if currentUserID != "" && c.User.ID == currentUserID {
			who += " (you)"
		}
		meta := who
		if d := formatDate(c.CreatedAt); d != "" {
			meta += " · " + d
		}
		b.WriteString("  " + s.Muted.Render(meta) + "  " + s.Muted.Render("id "+c.ID))
		b.WriteString("\n  " + c.Text + "\n")
	}

	if len(related) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Accent.Render("You might also like"))
		b.WriteString("\n")
		for _, r := range related {
			b.WriteString("  " + s.Subtitle.Render(r.Title) + "  " + s.Muted.Render("id "+r.ID) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderStats renders the totals row
func RenderStats(s Styles, st api.Stats) string {
	cell := func(label string, v int) string {
		return lipgloss.JoinVertical(lipgloss.Center,
			s.StatValue.Render(fmt.Sprintf("%d", v)),
			s.StatLabel.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("posts", st.Posts), "   ",
		cell("views", st.Views), "   ",
		cell("likes", st.Likes), "   ",
		cell("followers", st.Followers), "   ",
		cell("following", st.Following),
	)
}

// RenderDashboard renders the signed-in user's dashboard
func RenderDashboard(s Styles, v *api.DashboardView) string {
	var b strings.Builder

	name := "your"
	if v.User != nil && v.User.Name != "" {
		name = v.User.Name + "'s"
	}
	b.WriteString(s.Title.Render(fmt.Sprintf("Welcome to %s dashboard", name)))
	b.WriteString("\n\n")
	b.WriteString(RenderStats(s, v.Stats))
	b.WriteString("\n\n")
	b.WriteString(RenderPostList(s, "Your posts", v.Posts))
	return b.String()
}

// RenderAuthor renders a public author profile
func RenderAuthor(s Styles, v *api.AuthorView, authenticated bool) string {
	var b strings.Builder

	name := "Author"
	if v.User != nil && v.User.Name != "" {
		name = v.User.Name
	}
	b.WriteString(s.Title.Render(name))
	if authenticated && v.IsFollowing {
		b.WriteString("  " + s.Success.Render("following"))
	}
	b.WriteString("\n")
	if v.User != nil && v.User.Bio != "" {
		b.WriteString(s.Subtitle.Render(v.User.Bio))
		b.WriteString("\n")
	}
	if v.User != nil {
		if d := formatDate(v.User.CreatedAt); d != "" {
			b.WriteString(s.Muted.Render("joined " + d))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(RenderStats(s, v.Stats))
	b.WriteString("\n\n")
	b.WriteString(RenderPostList(s, "Posts", v.Posts))
	return b.String()
}

// RenderNotice renders a one-line informational message
func RenderNotice(s Styles, msg string) string {
	return s.Muted.Render(msg)
}

// RenderError renders an error box. Suggestions of coded errors are
// listed under the message.
func RenderError(s Styles, err error) string {
	if err == nil {
		return ""
	}

	var pe *errors.PostifyError
	if !stderrors.As(err, &pe) {
		return s.ErrorBox.Render(s.Error.Render("Error: ") + err.Error())
	}

	var b strings.Builder
	b.WriteString(s.Error.Render(fmt.Sprintf("Error [%s]: ", pe.Code)))
	b.WriteString(pe.Message)
	if pe.Cause != nil {
		b.WriteString(s.Muted.Render(": " + pe.Cause.Error()))
	}
	for _, sug := range pe.Suggestions {
		b.WriteString("\n  • " + sug)
	}
	return s.ErrorBox.Render(b.String())
}
