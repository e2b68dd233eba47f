package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	importNoCreate bool
	importPath     string
)

var importCmd = &cobra.Command{
	Use:   "import CODE FILE",
	Short: "Import a JSON object or list of objects; FILE may be - for stdin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readInput(cmd, args[1])
		if err != nil {
			return err
		}

		a, err := setup()
		if err != nil {
			return err
		}
		defer a.shutdown(cmd.Context())

		refs, err := a.facade.ImportAt(cmd.Context(), args[0], content, importPath, !importNoCreate)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, ref := range refs {
			fmt.Fprintln(out, ref.ID)
		}

		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importNoCreate, "no-create", false, "Skip objects that match no record instead of creating them")
	importCmd.Flags().StringVar(&importPath, "path", "", "JSONPath selecting the payload inside the document")
}
