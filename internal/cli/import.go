package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the model with an exported JSON document",
		Long:  "Import a model from a file or stdin. Expects the JSON format produced by export. The current model is kept as the backup.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		printErr(cmd, "read input", err)
		return
	}

	s := openStore()
	doc, err := s.Import(data)
	if err != nil {
		printErr(cmd, "import", err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d concepts and %d misconceptions into %s\n",
		len(doc.Concepts), len(doc.Misconceptions), s.Path())
}
