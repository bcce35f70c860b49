package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/acctexport/internal/blob"
	"github.com/nao1215/acctexport/internal/export"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cached report as JSON or text",
		Long: `Export writes the cached account data report in one of two formats:

  --json  the full report without its "text" member (default)
  --text  the plain-text rendering the service includes in the report

By default the file is written to the current directory as
account-data.json or account-data.txt. Use -o to choose a path or --stdout
to print it.

Examples:
  acctexport export
  acctexport export --text -o ~/report.txt
  acctexport export --json --stdout | jq .`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Export as JSON (mutually exclusive with --text)")
	cmd.Flags().BoolP("text", "t", false, "Export as plain text (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write to this path instead of the suggested file name")
	cmd.Flags().Bool("stdout", false, "Write to standard output")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c := a.coordinator(cmd.Context(), nil)
	defer c.Close()

	artifact, err := c.GenerateReport()
	if err != nil {
		if errors.Is(err, export.ErrNoReportAvailable) {
			return fmt.Errorf("%w: run 'acctexport download' first", err)
		}
		return err
	}

	provider := blob.NewProvider()
	defer provider.Clear()

	handle, err := provider.Put(artifact)
	if err != nil {
		return err
	}
	a.logger.Debug("artifact staged", "handle", handle.String(), "sha3_256", artifact.Checksum())

	b, err := provider.Open(handle)
	if err != nil {
		return err
	}

	if a.cfg.Stdout {
		_, err := cmd.OutOrStdout().Write(b.Data)
		return err
	}

	path := a.cfg.OutputPath
	if path == "" {
		path = b.FileName
	}
	if err := writeArtifact(path, b.Data); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d bytes, %s) to %s\n",
		b.MIMEType, len(b.Data), artifact.Format, path)
	fmt.Fprintf(cmd.OutOrStdout(), "SHA3-256: %s\n", artifact.Checksum())
	return nil
}

// writeArtifact writes data to path with owner-only permissions, creating
// parent directories as needed.
func writeArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
