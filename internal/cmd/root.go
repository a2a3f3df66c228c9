package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "postify",
	Short: "Terminal client for the Postify blog",
	Long: `postify is a terminal client for the Postify blogging platform.

Browse and search posts, read author profiles, and once logged in manage
your own posts from the dashboard. Views are addressed by the same routes
as the web client (/home, /explore, /dashboard, /post/<id>, ...).

Routes that need a session send you to login first and bring you back
afterwards:

  postify dashboard      # not logged in: asks you to log in
  postify auth login     # lands on the dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by main
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Root returns the root command, for documentation generators
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is $POSTIFY_HOME/config.yaml)")
	pf.String("home", "", "Postify home directory (default is ~/.postify)")
	pf.String("api-url", "", "Postify API base URL (overrides config and POSTIFY_API_URL)")
	pf.String("storage", "", "session storage driver: file, sqlite, redis or memory")
	pf.StringP("format", "f", "text", "output format: text, json or yaml")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.BoolP("verbose", "v", false, "verbose logging (same as --log-level debug)")
	pf.Bool("no-color", false, "disable colored output")
	pf.Bool("no-input", false, "never prompt; fail instead when input is missing")
}
