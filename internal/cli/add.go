package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/student-model/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add <concept> <mastery 0-100> <low|medium|high>",
		Short: "Add a new concept",
		Args:  cobra.ExactArgs(3),
		Run:   runAdd,
	}

	cmd.Flags().String("related", "", "Comma-separated list of related concepts")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	relatedStr, _ := cmd.Flags().GetString("related")

	mastery, err := strconv.Atoi(args[1])
	if err != nil {
		printErr(cmd, "add", fmt.Errorf("%w mastery %q (must be an integer 0-100)", model.ErrValidation, args[1]))
		return
	}

	var related []string
	if relatedStr != "" {
		related = strings.Split(relatedStr, ",")
	}

	s := openStore()
	doc := loadModel(cmd, s)

	ch, err := doc.AddConcept(model.AddParams{
		Name:       args[0],
		Mastery:    mastery,
		Confidence: args[2],
		Related:    related,
	}, s.Now())
	if err != nil {
		printErr(cmd, "add", err)
		return
	}

	if saveModel(cmd, s, doc) {
		printChange(cmd, "Added concept:", ch)
	}
}
