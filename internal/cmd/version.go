package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/ux"
	"github.com/felixgeelhaar/postify/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()

		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), info.Version)
			return nil
		}

		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		f, err := ux.NewFormatter(cc.Format, &ux.FormatterOptions{
			Writer:  cmd.OutOrStdout(),
			NoColor: cc.NoColor,
		})
		if err != nil {
			return err
		}
		return f.Format(info)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
