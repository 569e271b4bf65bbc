package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/iksnae/gujjar-gpt/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	sessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export saved chat sessions to various formats (jsonl, md, yaml, json).

You can export all sessions of the logged-in profile or a specific session by ID.
Use 'gujjar-gpt list' to see available session IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.requireLogin(); err != nil {
			return err
		}

		sessions := a.sessions.List()
		if sessionID != "" {
			session, err := a.findSession(sessionID)
			if err != nil {
				return fmt.Errorf("%w (use 'gujjar-gpt list' to see available sessions)", err)
			}
			sessions = []internal.ChatSession{session}
		}
		if len(sessions) == 0 {
			internal.PrintWarning(cmd.OutOrStdout(), "No sessions to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		ctx := context.Background()
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), outputDir), func() error {
			for i := range sessions {
				path := filepath.Join(outputDir, fmt.Sprintf("session_%s.%s", sessions[i].ID, exporter.Extension()))
				if err := exportSession(exporter, &sessions[i], path); err != nil {
					internal.LogError("%v", err)
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d session(s) exported to %s", exported, outputDir))
		return nil
	},
}

func exportSession(exporter export.Exporter, session *internal.ChatSession, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
}
