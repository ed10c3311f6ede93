package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	linkCmd := &cobra.Command{
		Use:   "link <concept> <related>",
		Short: "Link a concept to a related or prerequisite concept",
		Long:  "Link a concept to a related or prerequisite concept. The related concept does not have to be tracked yet.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMutation(cmd, args, "Linked", (*model.Document).Link)
		},
	}

	unlinkCmd := &cobra.Command{
		Use:   "unlink <concept> <related>",
		Short: "Remove a link between concepts",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMutation(cmd, args, "Unlinked", (*model.Document).Unlink)
		},
	}

	RootCmd.AddCommand(linkCmd, unlinkCmd)
}
