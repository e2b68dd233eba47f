package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"record-serializer/internal/record"
)

var previewCmd = &cobra.Command{
	Use:   "preview CODE ID",
	Short: "Show the serialized and deserialized form of one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid record id: %w", err)
		}

		a, err := setup()
		if err != nil {
			return err
		}
		defer a.shutdown(cmd.Context())

		m, err := a.facade.Mapping(args[0])
		if err != nil {
			return err
		}

		p, err := a.facade.Preview(cmd.Context(), args[0], record.NewRef(m.Model.Name, id))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "serialized:\n%s\n", p.Serialized)
		fmt.Fprintf(out, "deserialized:\n%s\n", p.Deserialized)
		fmt.Fprintf(out, "matching records: %d\n", p.Matching)

		if p.Message != "" {
			fmt.Fprintf(out, "message: %s\n", p.Message)
		}

		return nil
	},
}
