package record

import (
	"slices"
	"sort"
)

// Names of the attributes every record type carries.
const (
	AttrID        = "id"
	AttrWriteDate = "write_date"
)

// Attribute describes one attribute of a record type.
type Attribute struct {
	Name      string   `yaml:"name"`
	Kind      Kind     `yaml:"kind"`
	Required  bool     `yaml:"required,omitempty"`
	Readonly  bool     `yaml:"readonly,omitempty"`
	Selection []string `yaml:"selection,omitempty"` // allowed values for selection attributes
	Relation  string   `yaml:"relation,omitempty"`  // related record type for relational attributes
	Inverse   string   `yaml:"inverse,omitempty"`   // many2one on Relation backing a one2many
}

// RecordType is a named set of attributes.
type RecordType struct {
	Name       string      `yaml:"name"`
	Attributes []Attribute `yaml:"attributes"`
}

// Attribute returns the attribute with the given name.
func (t *RecordType) Attribute(name string) (*Attribute, bool) {
	for i := range t.Attributes {
		if t.Attributes[i].Name == name {
			return &t.Attributes[i], true
		}
	}

	return nil, false
}

// AttributeNames returns all attribute names in declaration order.
func (t *RecordType) AttributeNames() []string {
	names := make([]string, len(t.Attributes))
	for i := range t.Attributes {
		names[i] = t.Attributes[i].Name
	}

	return names
}

// withImplicit returns a copy of t carrying the id and write_date attributes.
func (t RecordType) withImplicit() *RecordType {
	attrs := slices.Clone(t.Attributes)

	if _, ok := t.Attribute(AttrID); !ok {
		attrs = append([]Attribute{{Name: AttrID, Kind: KindChar, Readonly: true}}, attrs...)
	}

	if _, ok := t.Attribute(AttrWriteDate); !ok {
		attrs = append(attrs, Attribute{Name: AttrWriteDate, Kind: KindDatetime, Readonly: true})
	}

	t.Attributes = attrs

	return &t
}

// Catalog holds the known record types by name.
type Catalog struct {
	types map[string]*RecordType
}

// NewCatalog creates a catalog holding the given types.
func NewCatalog(types ...RecordType) *Catalog {
	c := &Catalog{types: make(map[string]*RecordType, len(types))}
	for _, t := range types {
		c.Add(t)
	}

	return c
}

// Add registers a record type, replacing any type with the same name.
func (c *Catalog) Add(t RecordType) *RecordType {
	rt := t.withImplicit()
	c.types[rt.Name] = rt

	return rt
}

// Get returns the record type with the given name, or nil.
func (c *Catalog) Get(name string) *RecordType {
	if c == nil {
		return nil
	}

	return c.types[name]
}

// Names returns the sorted names of all record types.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
