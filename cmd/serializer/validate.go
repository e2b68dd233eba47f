package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"record-serializer/internal/diagnostic"
	"record-serializer/internal/mapping"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the mapping file and print diagnostics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		mf, err := mapping.LoadFile(cfg.Mappings)
		if err != nil {
			return err
		}

		diags := mapping.Validate(mf)
		out := cmd.OutOrStdout()

		for _, group := range [][]diagnostic.Diagnostic{diags.Errors, diags.Warnings, diags.Infos} {
			for _, d := range group {
				fmt.Fprintf(out, "%s: %s\n", d.Severity, d.String())
			}
		}

		if diags.HasErrors() {
			return fmt.Errorf("%w: %s", mapping.ErrConfiguration, cfg.Mappings)
		}

		fmt.Fprintf(out, "%s: %d mappings ok\n", cfg.Mappings, len(mf.Mappings))

		return nil
	},
}
