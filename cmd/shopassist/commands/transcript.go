// ABOUTME: Transcript commands to list, export and delete saved conversations
// ABOUTME: Reads the transcript table written while ASSISTANT_SAVE_TRANSCRIPTS is on
package commands

import (
	"fmt"

	"github.com/harper/shopassist/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
)

// NewTranscriptCmd creates the transcript command group
func NewTranscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Manage saved conversation transcripts",
		Long: `Manage saved conversation transcripts.

Every answered turn is saved while ASSISTANT_SAVE_TRANSCRIPTS is true
(the default). Transcripts survive /reset.`,
	}

	cmd.AddCommand(newTranscriptListCmd())
	cmd.AddCommand(newTranscriptExportCmd())
	cmd.AddCommand(newTranscriptDeleteCmd())

	return cmd
}

func newTranscriptListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions with saved transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ids, err := sqlite.NewTranscriptStore(db).Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd.OutOrStdout(), ids); ok {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d transcript(s)\n", len(ids))
			}
			return nil
		},
	}
}

func newTranscriptExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [session-id...]",
		Short: "Export transcripts as YAML, JSON or Markdown",
		Long: `Export transcripts of the named sessions, or of every session.

Without --output the export is written to stdout as YAML, or as JSON
with --format json. With --output the file extension picks the format.`,
		Example: `  shopassist transcript export
  shopassist transcript export 6f1c... --output chat.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			data, err := sqlite.NewTranscriptStore(db).Export(cmd.Context(), args...)
			if err != nil {
				return err
			}

			if exportOutput != "" {
				if err := data.WriteFile(exportOutput); err != nil {
					return err
				}
				if !quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transcript(s) to %s\n", len(data.Transcripts), exportOutput)
				}
				return nil
			}

			format := "yaml"
			if jsonOutput() {
				format = "json"
			}
			return data.Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (.yaml, .json or .md)")

	return cmd
}

func newTranscriptDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := sqlite.NewTranscriptStore(db).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted transcript %s\n", args[0])
			}
			return nil
		},
	}
}
