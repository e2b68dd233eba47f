package mapping

import (
	"fmt"
	"slices"

	"record-serializer/internal/common"
	"record-serializer/internal/record"
)

// File represents the root of a YAML mapping configuration file.
type File struct {
	// Version of the file layout (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Models declares the record types the mappings refer to.
	Models []record.RecordType `yaml:"models,omitempty"`

	// Mappings lists the mapping definitions.
	Mappings []Definition `yaml:"mappings"`
}

// Definition describes how one record type is serialized and deserialized.
type Definition struct {
	// Name is the stable identity of the mapping, used as schema component name.
	Name string `yaml:"name"`

	// Code is the lookup key used by callers; defaults to Name.
	Code string `yaml:"code,omitempty"`

	// Model is the record type name.
	Model string `yaml:"model"`

	// Importing and Exporting enable the directions; both default to true.
	Importing *bool `yaml:"importing,omitempty"`
	Exporting *bool `yaml:"exporting,omitempty"`

	// UseSnippet enables the export/import snippets and code hooks.
	UseSnippet bool `yaml:"use_snippet,omitempty"`

	// UseSyncDate emits and consumes the "sync_date" key.
	UseSyncDate bool `yaml:"use_sync_date,omitempty"`

	// RaiseOnDuplicate fails on cycles instead of emitting an empty value.
	// Defaults to true.
	RaiseOnDuplicate *bool `yaml:"raise_on_duplicate,omitempty"`

	// IncludeEmptyKeys emits {} / [] for absent relations instead of
	// leaving the key out.
	IncludeEmptyKeys bool `yaml:"include_empty_keys,omitempty"`

	// ExportCode and ImportCode are snippet bodies run when UseSnippet is set.
	ExportCode string `yaml:"export_code,omitempty"`
	ImportCode string `yaml:"import_code,omitempty"`

	// ImportDomain finds existing records during import; defaults to
	// matching the id.
	ImportDomain string `yaml:"import_domain,omitempty"`

	// Fields maps record attributes to output keys, in output order.
	Fields []FieldDef `yaml:"fields,omitempty"`

	// Schema declares synthetic keys not backed by an attribute.
	Schema []EntryDef `yaml:"schema,omitempty"`
}

// FieldDef maps one attribute to one output key.
type FieldDef struct {
	// Attribute is the record attribute name.
	Attribute string `yaml:"attribute"`

	// Alias overrides the output key; the attribute name is used otherwise.
	Alias string `yaml:"alias,omitempty"`

	// Related names the mapping used for relational attributes.
	Related string `yaml:"related,omitempty"`

	Importing *bool `yaml:"importing,omitempty"`
	Exporting *bool `yaml:"exporting,omitempty"`
}

// Key returns the effective output key.
func (f *FieldDef) Key() string {
	if f.Alias != "" {
		return f.Alias
	}

	return f.Attribute
}

// EntryDef declares one synthetic schema key.
type EntryDef struct {
	Name string    `yaml:"name"`
	Type EntryType `yaml:"type"`

	// Format is "date" or "date-time" for string entries.
	Format Format `yaml:"format,omitempty"`

	// Values holds the comma-separated choices of selection entries.
	Values string `yaml:"values,omitempty"`

	// IsList marks mapping entries holding an array.
	IsList bool `yaml:"is_list,omitempty"`

	Required  bool  `yaml:"required,omitempty"`
	Importing *bool `yaml:"importing,omitempty"`
	Exporting *bool `yaml:"exporting,omitempty"`

	// Related names the mapping of mapping entries.
	Related string `yaml:"related,omitempty"`
}

// Choices splits Values into trimmed, non-empty choices.
func (e *EntryDef) Choices() []string {
	return common.SplitCommaSeparated(e.Values)
}

// EntryType is the declared type of a schema entry.
type EntryType string

const (
	EntryBoolean   EntryType = "boolean"
	EntryInteger   EntryType = "integer"
	EntryNumber    EntryType = "number"
	EntryString    EntryType = "string"
	EntrySelection EntryType = "selection"
	EntryMapping   EntryType = "mapping"
)

var entryTypes = []EntryType{EntryBoolean, EntryInteger, EntryNumber, EntryString, EntrySelection, EntryMapping}

// IsValid returns true if the type is a recognized value.
func (t EntryType) IsValid() bool {
	return slices.Contains(entryTypes, t)
}

// Format is the optional string format of a schema entry.
type Format string

const (
	FormatNone     Format = ""
	FormatDate     Format = "date"
	FormatDateTime Format = "date-time"
)

// IsValid returns true if the format is a recognized value.
func (f Format) IsValid() bool {
	return f == FormatNone || f == FormatDate || f == FormatDateTime
}

// Lookup returns the definition with the given name.
func (mf *File) Lookup(name string) (*Definition, bool) {
	for i := range mf.Mappings {
		if mf.Mappings[i].Name == name {
			return &mf.Mappings[i], true
		}
	}

	return nil, false
}

// Catalog returns the record types declared by the file.
func (mf *File) Catalog() *record.Catalog {
	return record.NewCatalog(mf.Models...)
}

// String returns a short description of the definition.
func (d *Definition) String() string {
	return fmt.Sprintf("%s(%s)", d.Name, d.Model)
}

func isTrue(b *bool) bool {
	return b == nil || *b
}

func boolPtr(b bool) *bool {
	return &b
}
