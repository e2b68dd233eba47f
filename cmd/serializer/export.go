package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"record-serializer/internal/script"
)

var exportDomain string

var exportCmd = &cobra.Command{
	Use:   "export CODE",
	Short: "Export the records a domain selects as a JSON list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.shutdown(cmd.Context())

		m, err := a.facade.Mapping(args[0])
		if err != nil {
			return err
		}

		expr, err := script.CompileDomain(exportDomain)
		if err != nil {
			return err
		}

		domain, err := expr.Evaluate(nil)
		if err != nil {
			return err
		}

		refs, err := a.store.Search(cmd.Context(), m.Model.Name, domain)
		if err != nil {
			return err
		}

		out, err := a.facade.Export(cmd.Context(), args[0], refs)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return err
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDomain, "domain", "[]", "Domain selecting the records, e.g. '[[\"ref\", \"=\", \"A1\"]]'")
}
