package cmd

import (
	"context"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/navigation"
	"github.com/felixgeelhaar/postify/internal/tui"
)

var openCmd = &cobra.Command{
	Use:   "open <route>",
	Short: "Open a view by route",
	Long: `Open a view by its route, exactly like following a link in the web client.

Routes:
  /home                 landing page (alias /)
  /explore?q=<query>    explore feed or search results
  /dashboard            your posts and stats (login required)
  /createpost           write a new post (login required)
  /post/<id>            a post with comments
  /author/<id>          an author profile
  /legal                about, terms and privacy (aliases /about /terms /privacy)

Examples:
  postify open /post/65f1c2
  postify open "/explore?q=#golang"
  postify open /dashboard`,
	Args: cobra.ExactArgs(1),
	RunE: runE(func(ctx context.Context, app *App, args []string) error {
		return app.show(ctx, args[0])
	}),
}

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the landing page",
	Args:  cobra.NoArgs,
	RunE: runE(func(ctx context.Context, app *App, args []string) error {
		return app.show(ctx, "/home")
	}),
}

var exploreCmd = &cobra.Command{
	Use:   "explore [query]",
	Short: "Browse and search posts",
	Long: `Browse the explore feed or search posts by text or #tag.

In a terminal an interactive browser opens: type to search (results update
after a short pause), move with the arrow keys and press enter to open a
post. Use --no-tui, a non-text --format, or a pipe for plain output.

Examples:
  postify explore
  postify explore "#golang"
  postify explore --query concurrency --no-tui --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runE(runExplore),
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your posts and stats (login required)",
	Args:  cobra.NoArgs,
	RunE: runE(func(ctx context.Context, app *App, args []string) error {
		return app.show(ctx, "/dashboard")
	}),
}

func init() {
	exploreCmd.Flags().StringP("query", "q", "", "search text; a leading # searches a tag")
	exploreCmd.Flags().Bool("no-tui", false, "print results instead of opening the interactive browser")

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func runExplore(ctx context.Context, app *App, args []string) error {
	query := app.flagString("query")
	if len(args) == 1 {
		query = args[0]
	}

	if app.interactive() && !app.flagBool("no-tui") {
		model := tui.NewExploreModel(ctx, app.client.SearchPosts, query,
			app.cfg.Search.Debounce, tui.StylesFor(app.cc.NoColor))
		id, err := tui.RunExplore(ctx, model)
		if err != nil {
			return err
		}
		if id == "" {
			return nil
		}
		return app.show(ctx, "/post/"+url.PathEscape(id))
	}

	target := "/explore"
	if q := strings.TrimSpace(query); q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	return app.show(ctx, target)
}

// show navigates to target through the gate and prints where the user
// ends up
func (a *App) show(ctx context.Context, target string) error {
	dec := a.gate.Navigate(ctx, target)
	if dec.Intercepted {
		return a.resumeAfterLogin(ctx, dec)
	}
	return a.render(ctx, dec.Destination)
}

// resumeAfterLogin handles a gated route visited without a session. The
// destination is already recorded by the gate. Interactive sessions log in
// right away and continue there; otherwise the command fails and the next
// 'postify auth login' resumes it.
func (a *App) resumeAfterLogin(ctx context.Context, dec navigation.Decision) error {
	a.notify("Login required to open %s", dec.Requested)

	if !a.interactive() {
		return errors.NewAuthRequiredError("open " + dec.Requested)
	}

	creds, err := tui.PromptLogin(ctx, "")
	if err != nil {
		return err
	}
	next, err := a.login(ctx, creds.Email, creds.Password)
	if err != nil {
		return err
	}
	return a.render(ctx, next.Destination)
}

// login exchanges credentials for a token and completes the gate's login
// transition
func (a *App) login(ctx context.Context, email, password string) (navigation.Decision, error) {
	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		return navigation.Decision{}, err
	}

	dec, err := a.gate.CompleteLogin(ctx, resp.Token)
	if err != nil {
		return navigation.Decision{}, err
	}

	who := strings.TrimSpace(email)
	if resp.User != nil && resp.User.Name != "" {
		who = resp.User.Name
	}
	a.notify("Logged in as %s", who)
	return dec, nil
}

// render prints the view for a destination the gate already allowed
func (a *App) render(ctx context.Context, dest string) error {
	res, err := a.views.Render(ctx, dest)
	if err != nil {
		return err
	}
	return a.print(res)
}
