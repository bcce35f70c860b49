package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/acctexport/internal/config"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the account data report and cache it",
		Long: `Download fetches a fresh account data report from the account service and
replaces the cached copy. On failure the cached copy is left untouched.

Examples:
  # Use the server and credentials from .acctexport
  acctexport download

  # Override the server
  acctexport download --server https://accounts.example.com

  # Route the request through a running Tor daemon
  acctexport download --tor external --tor-proxy 127.0.0.1:9150`,
		Args: cobra.NoArgs,
		RunE: runDownloadCmd,
	}

	cmd.Flags().String("server", "", "Account service base URL")
	cmd.Flags().StringP("username", "u", "", "Account username (password is read from the config file)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Request timeout")
	cmd.Flags().String("tor", config.DefaultTorMode, "Tor mode: off, external or embedded")
	cmd.Flags().String("tor-proxy", config.DefaultTorProxyAddress, "Tor SOCKS5 proxy address for --tor external")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout, "Startup timeout for --tor embedded")

	return cmd
}

// runDownloadCmd executes the download command.
func runDownloadCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	client, session, err := a.reportClient(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			a.logger.Error("failed to stop Tor", "error", err)
		}
	}()

	c := a.coordinator(ctx, client)
	defer c.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Downloading account data report...")

	if err := c.OnDownloadReport(); err != nil {
		return err
	}
	c.Wait()
	state := c.State()

	if state.ShowDownloadFailedDialog {
		msg := state.LastError
		if err := c.DismissDownloadErrorDialog(); err != nil {
			return err
		}
		return fmt.Errorf("download failed: %s", msg)
	}

	rec, err := a.store.Get(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		// Deleted by a concurrent run.
		return errors.New("download finished but no report is cached")
	}

	fmt.Fprintf(out, "Report downloaded: %d bytes", len(rec.Document))
	if id := rec.Document.ReportID(); id != "" {
		fmt.Fprintf(out, ", report ID %s", id)
	}
	fmt.Fprintln(out)
	return nil
}
