package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <concept>",
		Short: "Update concept mastery and/or confidence",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().Int("mastery", 0, "New mastery level (0-100)")
	cmd.Flags().String("confidence", "", "New confidence level: low, medium, high")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	p := model.UpdateParams{Name: args[0]}
	if cmd.Flags().Changed("mastery") {
		m, _ := cmd.Flags().GetInt("mastery")
		p.Mastery = &m
	}
	if cmd.Flags().Changed("confidence") {
		c, _ := cmd.Flags().GetString("confidence")
		p.Confidence = &c
	}

	s := openStore()
	doc := loadModel(cmd, s)

	ch, err := doc.UpdateConcept(p, s.Now())
	if err != nil {
		printErr(cmd, "update", err)
		return
	}
	if ch.NoOp {
		printInfo(cmd, "No changes specified")
		printInfo(cmd, "Use --mastery N or --confidence [low|medium|high]")
		return
	}

	if saveModel(cmd, s, doc) {
		printChange(cmd, "Updated", ch)
	}
}
