package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	showCmd := &cobra.Command{
		Use:   "show <concept>",
		Short: "Show detailed concept information",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	relatedCmd := &cobra.Command{
		Use:   "related <concept>",
		Short: "Show concepts related to a concept",
		Args:  cobra.ExactArgs(1),
		Run:   runRelated,
	}

	RootCmd.AddCommand(showCmd, relatedCmd)
}

type conceptView struct {
	Name string `json:"name"`
	*model.Concept
	Related []model.RelatedConcept `json:"related"`
}

func runShow(cmd *cobra.Command, args []string) {
	s := openStore()
	doc := loadModel(cmd, s)

	key, related, err := doc.Related(args[0])
	if err != nil {
		printErr(cmd, "show", err)
		return
	}
	c := doc.Concepts[key]

	if jsonOutput() {
		printJSON(cmd, conceptView{Name: key, Concept: c, Related: related})
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "📊 Concept: %s\n", key)
	fmt.Fprintf(w, "   Mastery:           %d%%\n", c.Mastery)
	fmt.Fprintf(w, "   Confidence:        %s\n", orUnknown(string(c.Confidence)))
	fmt.Fprintf(w, "   First Encountered: %s\n", c.FirstEncountered.Date())
	fmt.Fprintf(w, "   Last Reviewed:     %s\n", c.LastReviewed.Date())

	if len(c.Struggles) > 0 {
		fmt.Fprintln(w, "   ⚠️  Struggles:")
		for _, st := range c.Struggles {
			fmt.Fprintf(w, "      - %s\n", st)
		}
	}
	if len(c.Breakthroughs) > 0 {
		fmt.Fprintln(w, "   💡 Breakthroughs:")
		for _, b := range c.Breakthroughs {
			fmt.Fprintf(w, "      - %s\n", b)
		}
	}
	if len(related) > 0 {
		fmt.Fprintln(w, "   🔗 Related Concepts:")
		for _, r := range related {
			if !r.Tracked {
				fmt.Fprintf(w, "      - %s (not tracked)\n", r.Name)
				continue
			}
			fmt.Fprintf(w, "      - %s (Mastery: %d%%, Last: %s) %s\n", r.Name, r.Mastery, r.LastReviewed.Date(), lowFlag(r.Low))
		}
	}
}

func runRelated(cmd *cobra.Command, args []string) {
	s := openStore()
	doc := loadModel(cmd, s)

	key, related, err := doc.Related(args[0])
	if err != nil {
		printErr(cmd, "related", err)
		return
	}

	if jsonOutput() {
		printJSON(cmd, related)
		return
	}

	w := cmd.OutOrStdout()
	if len(related) == 0 {
		fmt.Fprintf(w, "🔗 No related concepts tracked for '%s'\n", key)
		fmt.Fprintf(w, "   Link concepts with: %s link \"%s\" \"Related Concept\"\n", cmd.Root().Name(), key)
		return
	}

	fmt.Fprintf(w, "🔗 Concepts related to '%s':\n", key)
	for _, r := range related {
		if !r.Tracked {
			fmt.Fprintf(w, "   - %s (not tracked yet)\n", r.Name)
			continue
		}
		fmt.Fprintf(w, "   - %-40s %3d%%  %-10s  (last: %s) %s\n",
			r.Name, r.Mastery, orUnknown(string(r.Confidence)), r.LastReviewed.Date(), lowFlag(r.Low))
	}
}

func lowFlag(low bool) string {
	if low {
		return "⚠️ LOW"
	}
	return "✓"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
