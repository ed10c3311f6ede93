package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
	"github.com/rcliao/student-model/internal/store"
)

// loadModel loads the document and tells the user when it did not come
// straight from the primary file.
func loadModel(cmd *cobra.Command, s *store.Store) *model.Document {
	doc, status := s.Load()
	w := cmd.ErrOrStderr()
	switch status {
	case store.StatusNew:
		fmt.Fprintf(w, "ℹ️  No model found at %s\n", s.Path())
		fmt.Fprintf(w, "   Run '%s init' to create one\n", cmd.Root().Name())
	case store.StatusRestored:
		fmt.Fprintf(w, "✅ Restored model from backup %s\n", s.BackupPath())
	case store.StatusReset:
		fmt.Fprintf(w, "⚠️  Model at %s and its backup are unreadable; starting from an empty model\n", s.Path())
	}
	if bad := doc.Malformed(); len(bad) > 0 {
		fmt.Fprintf(w, "⚠️  Values of the wrong type were left as-is: %s\n", strings.Join(bad, ", "))
	}
	return doc
}

// saveModel saves and reports failure. The in-memory document is kept either way.
func saveModel(cmd *cobra.Command, s *store.Store, doc *model.Document) bool {
	if err := s.Save(doc); err != nil {
		printErr(cmd, "save model", err)
		return false
	}
	return true
}

// printErr reports a failure. Commands return normally afterwards.
func printErr(cmd *cobra.Command, msg string, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "❌ error: %s: %v\n", msg, err)
}

func printInfo(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), "ℹ️  "+format+"\n", args...)
}

// printChange prints a successful change, or the no-op notice.
func printChange(cmd *cobra.Command, title string, ch *model.Change) {
	w := cmd.OutOrStdout()
	for _, warn := range ch.Warnings {
		fmt.Fprintf(w, "⚠️  %s\n", warn)
	}
	if ch.NoOp {
		for _, s := range ch.Summary {
			printInfo(cmd, "%s", s)
		}
		return
	}
	fmt.Fprintf(w, "✅ %s '%s'\n", title, ch.Concept)
	for _, s := range ch.Summary {
		fmt.Fprintf(w, "   %s\n", s)
	}
}

func jsonOutput() bool {
	return formatFlag == "json"
}

func printJSON(cmd *cobra.Command, v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
