package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/acctexport/internal/summary"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is cached",
		Long: `Status shows whether a report is cached, when it was downloaded, and its
top-level sections. Report contents are never printed.

Examples:
  acctexport status
  acctexport status --json
  acctexport status --markdown > status.md`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.store.Get(cmd.Context())
	if err != nil {
		return err
	}
	status := summary.NewStatus(rec, summary.WithStorePath(a.db.Path()))

	var w summary.Writer
	switch {
	case a.cfg.StatusJSON:
		w = summary.NewJSONWriter(cmd.OutOrStdout(), summary.WithPrettyPrint())
	case a.cfg.StatusMarkdown:
		w = summary.NewMarkdownWriter(cmd.OutOrStdout())
	default:
		w = summary.NewSimpleWriter(cmd.OutOrStdout())
	}
	_, err = w.Write(status)
	return err
}
