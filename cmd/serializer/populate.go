package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"record-serializer/internal/mapping"
)

var (
	populateFully bool
	populateWrite bool
)

var populateCmd = &cobra.Command{
	Use:   "populate MAPPING",
	Short: "Add field definitions for every unmapped attribute of a mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		mf, err := mapping.LoadFile(cfg.Mappings)
		if err != nil {
			return err
		}

		def, ok := mf.Lookup(args[0])
		if !ok {
			return fmt.Errorf("mapping %q not found", args[0])
		}

		rt := mf.Catalog().Get(def.Model)
		if rt == nil {
			return fmt.Errorf("mapping %q: model %q not found", def.Name, def.Model)
		}

		added := mapping.Populate(def, rt, populateFully)
		log.Info().Str("mapping", def.Name).Int("fields", len(added)).Msg("populated")

		if populateWrite {
			return mapping.WriteFile(mf, cfg.Mappings)
		}

		data, err := mapping.Marshal(mf)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	},
}

func init() {
	populateCmd.Flags().BoolVar(&populateFully, "fully", false, "Also add relational attributes")
	populateCmd.Flags().BoolVar(&populateWrite, "write", false, "Write the result back to the mapping file")
}
