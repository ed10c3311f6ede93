package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show model metadata and statistics",
		Args:  cobra.NoArgs,
		Run:   runInfo,
	}

	RootCmd.AddCommand(cmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	s := openStore()
	doc := loadModel(cmd, s)
	st := s.Stats(doc)

	if jsonOutput() {
		printJSON(cmd, st)
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "📊 Student Model Information")
	fmt.Fprintf(w, "   Location:      %s (%s)\n", st.Path, humanize.Bytes(uint64(st.SizeBytes)))
	fmt.Fprintf(w, "   Backup:        %s\n", presence(st.HasBackup))
	fmt.Fprintf(w, "   Created:       %s\n", st.Created.Date())
	fmt.Fprintf(w, "   Last Updated:  %s\n", st.LastUpdated.Date())
	if st.Profile != "" {
		fmt.Fprintf(w, "   Profile:       %s\n", st.Profile)
	}

	fmt.Fprintf(w, "\n   Total Concepts:       %d\n", st.Concepts)
	fmt.Fprintf(w, "   Total Sessions:       %d\n", st.Sessions)
	fmt.Fprintf(w, "   Misconceptions:       %d (%d unresolved)\n", st.Misconceptions, st.Unresolved)
	if st.Concepts > 0 {
		fmt.Fprintf(w, "   Avg Mastery:          %.1f%%\n", st.AvgMastery)
	}
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "none"
}
