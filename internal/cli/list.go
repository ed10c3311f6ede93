package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tracked concepts",
		Long:  "List concepts sorted by mastery, highest first.",
		Args:  cobra.NoArgs,
		Run:   runList,
	}

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	s := openStore()
	doc := loadModel(cmd, s)
	concepts := doc.SortedConcepts()

	if jsonOutput() {
		printJSON(cmd, concepts)
		return
	}

	w := cmd.OutOrStdout()
	if len(concepts) == 0 {
		fmt.Fprintln(w, "📚 No concepts tracked yet.")
		fmt.Fprintf(w, "   Add your first concept with: %s add \"Concept Name\" 50 medium\n", cmd.Root().Name())
		return
	}

	fmt.Fprintf(w, "📚 Tracked Concepts (%d total)\n\n", len(concepts))
	for _, c := range concepts {
		conf := string(c.Confidence)
		switch c.Confidence {
		case model.ConfidenceLow:
			conf = "⚠️  low"
		case "":
			conf = "unknown"
		}
		last := c.LastReviewed.Date()
		if !c.LastReviewed.IsZero() {
			last += ", " + humanize.Time(c.LastReviewed.Time)
		}
		fmt.Fprintf(w, "%s %-40s %3d%%  %-12s (last: %s)\n", masteryIndicator(c.Mastery), c.Name, c.Mastery, conf, last)
	}
	fmt.Fprintln(w, "\nLegend: ✅ 80%+  🟡 60-79%  🟠 40-59%  🔴 <40%")
}

func masteryIndicator(m int) string {
	switch {
	case m >= 80:
		return "✅"
	case m >= 60:
		return "🟡"
	case m >= 40:
		return "🟠"
	default:
		return "🔴"
	}
}
