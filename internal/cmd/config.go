package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/config"
	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize the configuration",
	Long: `Inspect and initialize the configuration.

Settings are resolved from built-in defaults, $POSTIFY_HOME/config.yaml, a
.env file in the working directory, POSTIFY_* environment variables and
finally command flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cc)
		if err != nil {
			return err
		}

		format := cc.Format
		// the config has no text rendering of its own
		if format == ux.FormatText {
			format = ux.FormatYAML
		}
		f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		return f.Format(cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		path := cc.ConfigPath
		if path == "" {
			path = config.FilePath(homeDir(cc))
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		path := cc.ConfigPath
		if path == "" {
			path = config.FilePath(homeDir(cc))
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return errors.New(errors.ErrCodeConfigInvalid, "config file already exists: "+path).
				WithSuggestion("Use --force to overwrite it")
		}

		cfg := config.Default()
		if cc.APIURL != "" {
			cfg.API.BaseURL = cc.APIURL
		}
		if cc.Storage != "" {
			cfg.Storage.Driver = cc.Storage
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		return nil
	},
}

func homeDir(cc *CommandContext) string {
	if cc.Home != "" {
		return cc.Home
	}
	return config.DefaultHome()
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
