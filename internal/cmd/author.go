package cmd

import (
	"context"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "View authors and follow them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authorShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an author's profile and posts",
	Long: `Show an author's profile, stats and posts. Your own id opens your
dashboard instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runE(func(ctx context.Context, app *App, args []string) error {
		id := strings.TrimSpace(args[0])
		if uid := app.session.UserID(); uid != "" && uid == id {
			return app.show(ctx, "/dashboard")
		}
		return app.show(ctx, "/author/"+url.PathEscape(id))
	}),
}

var authorFollowCmd = &cobra.Command{
	Use:   "follow <id>",
	Short: "Follow or unfollow an author",
	Args:  cobra.ExactArgs(1),
	RunE:  runE(runAuthorFollow),
}

func init() {
	authorCmd.AddCommand(authorShowCmd)
	authorCmd.AddCommand(authorFollowCmd)
	rootCmd.AddCommand(authorCmd)
}

func runAuthorFollow(ctx context.Context, app *App, args []string) error {
	if err := app.requireSession("follow an author"); err != nil {
		return err
	}

	res, err := app.client.ToggleFollow(ctx, args[0])
	if err != nil {
		return err
	}
	if res.IsFollowing {
		app.notify("Following (%d followers)", len(res.TargetUser.Followers))
	} else {
		app.notify("Unfollowed (%d followers)", len(res.TargetUser.Followers))
	}
	return app.render(ctx, "/author/"+url.PathEscape(strings.TrimSpace(args[0])))
}
