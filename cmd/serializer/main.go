// Package main provides the CLI entrypoint for the record serializer.
//
// The serializer converts records to nested JSON and back through mappings
// declared in a YAML file:
//   - validate checks the mapping file and prints diagnostics
//   - schema prints the JSON-Schema components of a mapping
//   - export and import move records through a mapping
//   - preview shows what a mapping makes of one record
//   - populate adds field definitions for unmapped attributes
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
