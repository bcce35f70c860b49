package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the cached report",
		Long: `Delete removes the cached account data report and its download time.
Deleting when nothing is cached is not an error.`,
		Args: cobra.NoArgs,
		RunE: runDeleteCmd,
	}
}

// runDeleteCmd executes the delete command.
func runDeleteCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c := a.coordinator(cmd.Context(), nil)
	defer c.Close()

	had := c.State().ReportDownloaded
	if err := c.DeleteReport(); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if had {
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted the cached report.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No report was cached.")
	}
	return nil
}
