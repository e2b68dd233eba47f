package mapping

import (
	"sort"

	"record-serializer/internal/record"
	"record-serializer/internal/script"
)

// Set is an immutable collection of linked mappings. It is safe to share
// across concurrent transforms.
type Set struct {
	catalog  *record.Catalog
	mappings map[string]*Mapping
	byCode   map[string]*Mapping
}

// Get returns the mapping with the given name.
func (s *Set) Get(name string) (*Mapping, bool) {
	m, ok := s.mappings[name]
	return m, ok
}

// FindByCode returns the mapping with the given code.
func (s *Set) FindByCode(code string) (*Mapping, bool) {
	m, ok := s.byCode[code]
	return m, ok
}

// Catalog returns the record types the mappings refer to.
func (s *Set) Catalog() *record.Catalog {
	return s.catalog
}

// Names returns the sorted mapping names.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.mappings))
	for name := range s.mappings {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Mapping is the linked, read-only form of a Definition.
type Mapping struct {
	Name  string
	Code  string
	Model *record.RecordType

	Importing        bool
	Exporting        bool
	UseSnippet       bool
	UseSyncDate      bool
	RaiseOnDuplicate bool
	IncludeEmptyKeys bool

	Domain        *script.DomainExpr
	ExportSnippet *script.Snippet
	ImportSnippet *script.Snippet
	ExportHook    Hook
	ImportHook    Hook

	Fields  []*Field
	Entries []*SchemaEntry
}

// Active reports whether at least one direction is enabled.
func (m *Mapping) Active() bool {
	return m.Importing || m.Exporting
}

// String returns the mapping name.
func (m *Mapping) String() string {
	return m.Name
}

// FieldByKey returns the importing field consuming a payload key. A field
// whose alias equals the key wins over an alias-less field whose attribute
// name does.
func (m *Mapping) FieldByKey(key string) (*Field, bool) {
	for _, f := range m.Fields {
		if f.Importing && f.Alias == key {
			return f, true
		}
	}

	for _, f := range m.Fields {
		if f.Importing && f.Alias == "" && f.Attribute.Name == key {
			return f, true
		}
	}

	return nil, false
}

// FieldByAttribute returns the field mapping an attribute.
func (m *Mapping) FieldByAttribute(name string) (*Field, bool) {
	for _, f := range m.Fields {
		if f.Attribute.Name == name {
			return f, true
		}
	}

	return nil, false
}

// Related returns the mappings referenced by fields and schema entries, in
// declaration order and without duplicates.
func (m *Mapping) Related() []*Mapping {
	var out []*Mapping

	seen := make(map[*Mapping]struct{})
	add := func(r *Mapping) {
		if r == nil {
			return
		}

		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}

	for _, f := range m.Fields {
		add(f.Related)
	}

	for _, e := range m.Entries {
		add(e.Related)
	}

	return out
}

// Field is one linked attribute-to-key rule.
type Field struct {
	Attribute *record.Attribute
	Alias     string
	Importing bool
	Exporting bool
	Related   *Mapping
}

// Key returns the effective output key.
func (f *Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}

	return f.Attribute.Name
}

// SchemaEntry is one linked synthetic key.
type SchemaEntry struct {
	Name      string
	Type      EntryType
	Format    Format
	Values    []string
	IsList    bool
	Required  bool
	Importing bool
	Exporting bool
	Related   *Mapping
}
