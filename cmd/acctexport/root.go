package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for acctexport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acctexport",
		Short: "Download and export your account data report",
		Long: `acctexport fetches the account data report the account service keeps about
you, caches it locally, and exports it as JSON or as a plain-text summary.

The cached report lives in a SQLite database in the XDG data directory
(~/.local/share/acctexport on Linux) until you delete it.

Requests can optionally be routed through Tor, either via a running Tor
daemon (--tor external) or an embedded one (--tor embedded).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .acctexport in current, config or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory holding the report cache (default: XDG data directory)")

	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
