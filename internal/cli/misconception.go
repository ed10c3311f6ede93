package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	misconceptionCmd := &cobra.Command{
		Use:   "misconception",
		Short: "Track and manage misconceptions",
	}

	addCmd := &cobra.Command{
		Use:   "add <concept>",
		Short: "Record a misconception",
		Args:  cobra.ExactArgs(1),
		Run:   runMisconceptionAdd,
	}
	addCmd.Flags().String("belief", "", "The incorrect belief (required)")
	addCmd.Flags().String("correction", "", "The correct understanding (required)")
	addCmd.MarkFlagRequired("belief")
	addCmd.MarkFlagRequired("correction")

	resolveCmd := &cobra.Command{
		Use:   "resolve <concept> <index|id>",
		Short: "Mark a misconception as resolved",
		Long:  "Mark a misconception as resolved. The index counts the concept's unresolved misconceptions, as shown by 'misconception list'; an id or id prefix also works.",
		Args:  cobra.ExactArgs(2),
		Run:   runMisconceptionResolve,
	}

	listCmd := &cobra.Command{
		Use:   "list [concept]",
		Short: "List misconceptions",
		Args:  cobra.MaximumNArgs(1),
		Run:   runMisconceptionList,
	}
	listCmd.Flags().Bool("resolved", false, "Show only resolved misconceptions")
	listCmd.Flags().Bool("unresolved", false, "Show only unresolved misconceptions")
	listCmd.MarkFlagsMutuallyExclusive("resolved", "unresolved")

	misconceptionCmd.AddCommand(addCmd, resolveCmd, listCmd)
	RootCmd.AddCommand(misconceptionCmd)
}

func runMisconceptionAdd(cmd *cobra.Command, args []string) {
	belief, _ := cmd.Flags().GetString("belief")
	correction, _ := cmd.Flags().GetString("correction")

	s := openStore()
	doc := loadModel(cmd, s)

	ch, err := doc.AddMisconception(args[0], belief, correction, s.Now())
	if err != nil {
		printErr(cmd, "misconception add", err)
		return
	}
	if ch.NoOp {
		printChange(cmd, "", ch)
		return
	}
	if saveModel(cmd, s, doc) {
		printChange(cmd, "Logged misconception for", ch)
	}
}

func runMisconceptionResolve(cmd *cobra.Command, args []string) {
	s := openStore()
	doc := loadModel(cmd, s)

	var (
		m   *model.Misconception
		err error
	)
	if idx, convErr := strconv.Atoi(args[1]); convErr == nil {
		m, err = doc.ResolveMisconception(args[0], idx, s.Now())
	} else {
		m, err = doc.ResolveMisconceptionByID(args[0], args[1], s.Now())
	}
	if err != nil {
		printErr(cmd, "misconception resolve", err)
		return
	}

	if saveModel(cmd, s, doc) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✅ Resolved misconception for '%s'\n", m.Concept)
		fmt.Fprintf(w, "   %q\n", m.Belief)
	}
}

func runMisconceptionList(cmd *cobra.Command, args []string) {
	resolved, _ := cmd.Flags().GetBool("resolved")
	unresolved, _ := cmd.Flags().GetBool("unresolved")

	status := model.StatusAll
	filterLabel := ""
	switch {
	case resolved:
		status = model.StatusResolved
		filterLabel = " (resolved only)"
	case unresolved:
		status = model.StatusUnresolved
		filterLabel = " (unresolved only)"
	}

	var concept string
	if len(args) > 0 {
		concept = args[0]
	}

	s := openStore()
	doc := loadModel(cmd, s)

	key, groups, err := doc.ListMisconceptions(concept, status)
	if err != nil {
		printErr(cmd, "misconception list", err)
		return
	}

	if jsonOutput() {
		printJSON(cmd, groups)
		return
	}

	w := cmd.OutOrStdout()
	if len(doc.Misconceptions) == 0 {
		fmt.Fprintln(w, "📚 No misconceptions tracked yet.")
		fmt.Fprintf(w, "   Add one with: %s misconception add \"Concept\" --belief \"...\" --correction \"...\"\n", cmd.Root().Name())
		return
	}

	if key != "" {
		fmt.Fprintf(w, "🐛 Misconceptions for '%s'%s:\n\n", key, filterLabel)
	} else {
		total := 0
		for _, g := range groups {
			total += len(g.Entries)
		}
		fmt.Fprintf(w, "🐛 All Misconceptions (%d total)%s:\n\n", total, filterLabel)
	}
	if len(groups) == 0 {
		fmt.Fprintln(w, "   None found.")
		return
	}

	for _, g := range groups {
		fmt.Fprintf(w, "📌 %s:\n", g.Concept)
		for _, e := range g.Entries {
			if e.Resolved {
				fmt.Fprintln(w, "       ✅ Resolved")
			} else {
				fmt.Fprintf(w, "   [%d] ⚠️  Active\n", e.Index)
			}
			fmt.Fprintf(w, "       Belief: %q\n", e.Belief)
			fmt.Fprintf(w, "       Correction: %q\n", e.Correction)
			fmt.Fprintf(w, "       Identified: %s\n", e.DateIdentified.Date())
			if e.Resolved && !e.DateResolved.IsZero() {
				fmt.Fprintf(w, "       Resolved: %s\n", e.DateResolved.Date())
			}
			fmt.Fprintln(w)
		}
	}
}
