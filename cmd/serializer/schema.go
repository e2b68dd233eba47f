package main

import (
	"github.com/spf13/cobra"

	"record-serializer/internal/schema"
	"record-serializer/internal/transform"
)

var (
	schemaList      bool
	schemaDirection string
)

var schemaCmd = &cobra.Command{
	Use:   "schema CODE",
	Short: "Print the JSON-Schema components and root schema of a mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := schema.ParseDirection(schemaDirection)
		if err != nil {
			return err
		}

		a, err := setup()
		if err != nil {
			return err
		}
		defer a.shutdown(cmd.Context())

		ep := transform.Endpoint{Code: args[0], IsList: schemaList}
		if _, err := a.facade.Mapping(ep.Code); err != nil {
			return err
		}

		reg := schema.NewComponents()
		root := a.facade.JSONSchema(reg, ep, dir)

		doc := reg.Document()
		doc["schema"] = root.Map()

		return printJSON(cmd, doc)
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaList, "list", false, "Describe a list of objects")
	schemaCmd.Flags().StringVarP(&schemaDirection, "direction", "d", "exporting", "importing or exporting")
}
