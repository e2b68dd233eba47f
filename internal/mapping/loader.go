package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"record-serializer/internal/script"
)

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var mf File

	err := yaml.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *File) {
	if mf.Version == "" {
		mf.Version = "1"
	}

	for i := range mf.Mappings {
		d := &mf.Mappings[i]

		if d.Code == "" {
			d.Code = d.Name
		}

		if d.Importing == nil {
			d.Importing = boolPtr(true)
		}

		if d.Exporting == nil {
			d.Exporting = boolPtr(true)
		}

		if d.RaiseOnDuplicate == nil {
			d.RaiseOnDuplicate = boolPtr(true)
		}

		if d.ImportDomain == "" {
			d.ImportDomain = script.DefaultDomain
		}

		for j := range d.Fields {
			f := &d.Fields[j]
			if f.Importing == nil {
				f.Importing = boolPtr(true)
			}

			if f.Exporting == nil {
				f.Exporting = boolPtr(true)
			}
		}

		for j := range d.Schema {
			e := &d.Schema[j]
			if e.Importing == nil {
				e.Importing = boolPtr(true)
			}

			if e.Exporting == nil {
				e.Exporting = boolPtr(true)
			}
		}
	}
}

// Marshal serializes a File to YAML.
func Marshal(mf *File) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a File to the given path.
func WriteFile(mf *File, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
