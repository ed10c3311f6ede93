package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the model as JSON, YAML or a SQLite snapshot",
		Long:  "Write the model to stdout as JSON (default) or YAML. With --sqlite, write a relational snapshot to a SQLite database instead.",
		Args:  cobra.NoArgs,
		Run:   runExport,
	}

	cmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	cmd.Flags().String("sqlite", "", "Write a SQLite snapshot to this path")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")
	sqlitePath, _ := cmd.Flags().GetString("sqlite")

	s := openStore()
	doc := loadModel(cmd, s)

	if sqlitePath != "" {
		if err := store.ExportSQLite(cmd.Context(), doc, sqlitePath); err != nil {
			printErr(cmd, "export sqlite", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported %d concepts to %s\n", len(doc.Concepts), sqlitePath)
		return
	}

	if err := store.Export(cmd.OutOrStdout(), doc, output); err != nil {
		printErr(cmd, "export", err)
	}
}
