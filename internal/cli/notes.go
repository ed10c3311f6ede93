package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	struggleCmd := &cobra.Command{
		Use:   "struggle <concept> <description>",
		Short: "Log a struggle with a concept",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMutation(cmd, args, "Logged struggle for", (*model.Document).LogStruggle)
		},
	}

	breakthroughCmd := &cobra.Command{
		Use:   "breakthrough <concept> <description>",
		Short: "Log a breakthrough with a concept",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMutation(cmd, args, "Logged breakthrough for", (*model.Document).LogBreakthrough)
		},
	}

	RootCmd.AddCommand(struggleCmd, breakthroughCmd)
}

// mutation is a single-concept change taking two positional arguments.
type mutation func(d *model.Document, name, text string, now time.Time) (*model.Change, error)

func runMutation(cmd *cobra.Command, args []string, title string, apply mutation) {
	s := openStore()
	doc := loadModel(cmd, s)

	ch, err := apply(doc, args[0], args[1], s.Now())
	if err != nil {
		printErr(cmd, cmd.Name(), err)
		return
	}
	if ch.NoOp {
		printChange(cmd, title, ch)
		return
	}

	if saveModel(cmd, s, doc) {
		printChange(cmd, title, ch)
	}
}
