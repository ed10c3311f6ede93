package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "session-end",
		Short: "Apply a batch of updates at the end of a study session",
		Long: `Apply several updates in one pass and save once.

  --update "Concept:mastery:confidence"
  --struggle "Concept:description"
  --breakthrough "Concept:description"

Each flag can be repeated. Invalid items are reported and skipped; the rest
are applied and saved.`,
		Args: cobra.NoArgs,
		Run:  runSessionEnd,
	}

	cmd.Flags().StringArray("update", nil, `Update a concept: "Concept:mastery:confidence"`)
	cmd.Flags().StringArray("struggle", nil, `Add a struggle: "Concept:description"`)
	cmd.Flags().StringArray("breakthrough", nil, `Add a breakthrough: "Concept:description"`)

	RootCmd.AddCommand(cmd)
}

func runSessionEnd(cmd *cobra.Command, args []string) {
	var batch model.SessionBatch
	batch.Updates, _ = cmd.Flags().GetStringArray("update")
	batch.Struggles, _ = cmd.Flags().GetStringArray("struggle")
	batch.Breakthroughs, _ = cmd.Flags().GetStringArray("breakthrough")

	if batch.Empty() {
		printInfo(cmd, "No changes to apply")
		printInfo(cmd, "Use --update, --struggle, or --breakthrough flags")
		return
	}

	s := openStore()
	doc := loadModel(cmd, s)
	report := doc.ApplySession(batch, s.Now())

	w := cmd.OutOrStdout()
	if len(report.Errors) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "❌ Errors encountered:")
		for _, err := range report.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "   %v\n", err)
		}
	}

	if len(report.Changes) > 0 {
		fmt.Fprintln(w, "📊 Session-End Updates:")
		for _, ch := range report.Changes {
			icon := "✅"
			if ch.NoOp {
				icon = "ℹ️ "
			}
			for _, line := range ch.Summary {
				fmt.Fprintf(w, "  %s '%s': %s\n", icon, ch.Concept, line)
			}
		}
	}

	applied := report.Applied()
	if applied == 0 {
		printInfo(cmd, "No changes to apply")
		return
	}
	if saveModel(cmd, s, doc) {
		fmt.Fprintf(w, "\n✅ All changes saved successfully (%d operations)\n", applied)
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "❌ Failed to save model - changes may be lost")
	}
}
