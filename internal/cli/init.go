package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new student model",
		Long:  "Create a new, empty model. An existing model is only replaced after confirmation (or --force) and stays available as the backup.",
		Args:  cobra.NoArgs,
		Run:   runInit,
	}

	cmd.Flags().String("profile", "", "Student profile description")
	cmd.Flags().Bool("force", false, "Overwrite an existing model without asking")

	RootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, args []string) {
	profile, _ := cmd.Flags().GetString("profile")
	force, _ := cmd.Flags().GetBool("force")

	s := openStore()
	w := cmd.OutOrStdout()

	if s.Exists() && !force {
		fmt.Fprintf(w, "⚠️  Model already exists at %s. Overwrite? (yes/no): ", s.Path())
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "yes" && answer != "y" {
			fmt.Fprintln(w, "Cancelled.")
			return
		}
	}

	doc, err := s.Init(profile)
	if err != nil {
		printErr(cmd, "initialize model", err)
		return
	}

	fmt.Fprintf(w, "✅ Initialized new student model at %s\n", s.Path())
	fmt.Fprintf(w, "   Created: %s\n", doc.Metadata.Created)
	if profile != "" {
		fmt.Fprintf(w, "   Profile: %s\n", profile)
	}
}
