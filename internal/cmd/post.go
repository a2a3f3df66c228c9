package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/tui"
	"github.com/felixgeelhaar/postify/internal/views"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Read, write and interact with posts",
	Long: `Read, write and interact with posts.

Reading is open to everyone. Creating, deleting, liking and commenting need
a session; log in first with 'postify auth login'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var postShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(ctx context.Context, app *App, args []string) error {
		return app.show(ctx, postRoute(args[0]))
	}),
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new post (login required)",
	Long: `Write a new post. Without --title and --content a form opens in the
terminal. Tags are comma separated.

Examples:
  postify post create
  postify post create --title "Hello" --content "First post" --tags go,cli`,
	Args: cobra.NoArgs,
	RunE: runE(runPostCreate),
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE:  runE(runPostDelete),
}

var postLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like or unlike a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runE(runPostLike),
}

var postCommentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runE(runPostComment),
}

var postUncommentCmd = &cobra.Command{
	Use:   "uncomment <post-id> <comment-id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(2),
	RunE:  runE(runPostUncomment),
}

var postRecommendCmd = &cobra.Command{
	Use:   "recommend <id>",
	Short: "List posts related to a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runE(runPostRecommend),
}

func init() {
	postCreateCmd.Flags().String("title", "", "post title")
	postCreateCmd.Flags().String("content", "", "post body")
	postCreateCmd.Flags().String("tags", "", "comma separated tags")

	postDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postLikeCmd)
	postCmd.AddCommand(postCommentCmd)
	postCmd.AddCommand(postUncommentCmd)
	postCmd.AddCommand(postRecommendCmd)

	rootCmd.AddCommand(postCmd)
}

func postRoute(id string) string {
	return "/post/" + url.PathEscape(strings.TrimSpace(id))
}

// requireSession fails actions that need a session. Unlike gated routes
// they are not remembered for after login.
func (a *App) requireSession(action string) error {
	if a.session.IsAuthenticated() {
		return nil
	}
	return errors.NewAuthRequiredError(action)
}

func runPostCreate(ctx context.Context, app *App, args []string) error {
	dec := app.gate.Navigate(ctx, "/createpost")
	if dec.Intercepted {
		if !app.interactive() {
			app.notify("Login required to open %s", dec.Requested)
			return errors.NewAuthRequiredError("create a post")
		}
		creds, err := tui.PromptLogin(ctx, "")
		if err != nil {
			return err
		}
		// the pending /createpost is consumed here; the form follows
		if _, err := app.login(ctx, creds.Email, creds.Password); err != nil {
			return err
		}
	}

	in := tui.NewPost{
		Title:   app.flagString("title"),
		Content: app.flagString("content"),
		Tags:    app.flagString("tags"),
	}
	if (strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "") && app.interactive() {
		prompted, err := tui.PromptCreatePost(ctx, in)
		if err != nil {
			return err
		}
		in = prompted
	}

	post, err := app.client.CreatePost(ctx, api.PostInput{
		Title:   in.Title,
		Content: in.Content,
		Tags:    api.ParseTags(in.Tags),
	})
	if err != nil {
		return err
	}

	app.notify("Published %q (%s)", post.Title, post.ID)
	return app.show(ctx, "/dashboard")
}

func runPostDelete(ctx context.Context, app *App, args []string) error {
	if err := app.requireSession("delete a post"); err != nil {
		return err
	}
	id := strings.TrimSpace(args[0])

	if !app.flagBool("yes") && app.interactive() {
		ok, err := tui.PromptForConfirmation(ctx, fmt.Sprintf("Delete post %s?", id), false)
		if err != nil {
			return err
		}
		if !ok {
			app.notify("Nothing deleted")
			return nil
		}
	}

	if err := app.client.DeletePost(ctx, id); err != nil {
		return err
	}
	app.notify("Deleted post %s", id)
	return app.show(ctx, "/dashboard")
}

func runPostLike(ctx context.Context, app *App, args []string) error {
	if err := app.requireSession("like a post"); err != nil {
		return err
	}

	post, err := app.client.ToggleLike(ctx, args[0])
	if err != nil {
		return err
	}

	uid := app.session.UserID()
	if post.LikedBy(uid) {
		app.notify("Liked %q (%d likes)", post.Title, len(post.Likes))
	} else {
		app.notify("Unliked %q (%d likes)", post.Title, len(post.Likes))
	}
	return app.print(views.PostView{Post: post, CurrentUserID: uid})
}

func runPostComment(ctx context.Context, app *App, args []string) error {
	if err := app.requireSession("comment on a post"); err != nil {
		return err
	}

	post, err := app.client.AddComment(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	app.notify("Comment added")
	return app.print(views.PostView{Post: post, CurrentUserID: app.session.UserID()})
}

func runPostUncomment(ctx context.Context, app *App, args []string) error {
	if err := app.requireSession("delete a comment"); err != nil {
		return err
	}

	if err := app.client.DeleteComment(ctx, args[0], args[1]); err != nil {
		return err
	}
	app.notify("Comment deleted")
	return app.render(ctx, postRoute(args[0]))
}

// PostListView is a titled list of posts
type PostListView struct {
	Heading string     `json:"heading" yaml:"heading"`
	Posts   []api.Post `json:"posts" yaml:"posts"`
}

func (v PostListView) RenderText(noColor bool) string {
	return tui.RenderPostList(tui.StylesFor(noColor), v.Heading, v.Posts)
}

func runPostRecommend(ctx context.Context, app *App, args []string) error {
	posts, err := app.client.Recommendations(ctx, args[0])
	if err != nil {
		return err
	}
	return app.print(PostListView{Heading: "You might also like", Posts: posts})
}
