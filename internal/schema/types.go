package schema

import (
	"fmt"
	"sort"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"record-serializer/internal/common"
)

// RefPrefix is the location of named components in a document.
const RefPrefix = "#/components/schemas/"

// JSON-Schema type names.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
)

// Direction selects which fields and entries a schema describes.
type Direction int

const (
	Exporting Direction = iota // response bodies
	Importing                  // request bodies
)

func (d Direction) String() string {
	switch d {
	case Exporting:
		return "exporting"
	case Importing:
		return "importing"
	default:
		return common.UnknownStr
	}
}

// ParseDirection parses "importing" or "exporting".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "exporting":
		return Exporting, nil
	case "importing":
		return Importing, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Schema is a JSON-Schema fragment.
type Schema struct {
	Type       string
	Format     string
	Enum       []string
	Items      *Schema
	Ref        string
	Required   []string
	Properties map[string]*Schema
}

// Ref returns a schema referring to the named component.
func Ref(name string) *Schema {
	return &Schema{Ref: RefPrefix + name}
}

// ArrayOf returns an array schema with the given items.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// Map renders the schema as plain JSON values. Objects always carry
// required and properties, even when empty.
func (s *Schema) Map() map[string]any {
	out := make(map[string]any)

	if s.Ref != "" {
		out["$ref"] = s.Ref
	}

	if s.Type != "" {
		out["type"] = s.Type
	}

	if s.Format != "" {
		out["format"] = s.Format
	}

	if s.Enum != nil {
		enum := make([]any, len(s.Enum))
		for i, v := range s.Enum {
			enum[i] = v
		}

		out["enum"] = enum
	}

	if s.Items != nil {
		out["items"] = s.Items.Map()
	}

	if s.Type == TypeObject {
		required := make([]any, len(s.Required))
		for i, name := range s.Required {
			required[i] = name
		}

		props := make(map[string]any, len(s.Properties))
		for key, prop := range s.Properties {
			props[key] = prop.Map()
		}

		out["required"] = required
		out["properties"] = props
	}

	return out
}

// MarshalJSON renders the schema with sorted keys.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return oj.Marshal(s.Map(), &ojg.Options{Sort: true})
}

// Registry stores named components.
type Registry interface {
	RegisterComponent(name string, s *Schema)
	HasComponent(name string) bool
}

// Components is an in-memory Registry.
type Components struct {
	schemas map[string]*Schema
}

// NewComponents creates an empty registry.
func NewComponents() *Components {
	return &Components{schemas: make(map[string]*Schema)}
}

// RegisterComponent implements Registry. A later registration replaces an
// earlier one.
func (c *Components) RegisterComponent(name string, s *Schema) {
	c.schemas[name] = s
}

// HasComponent implements Registry.
func (c *Components) HasComponent(name string) bool {
	_, ok := c.schemas[name]
	return ok
}

// Get returns a registered component.
func (c *Components) Get(name string) (*Schema, bool) {
	s, ok := c.schemas[name]
	return s, ok
}

// Names returns the component names in sorted order.
func (c *Components) Names() []string {
	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Document renders the registry as an OpenAPI components section.
func (c *Components) Document() map[string]any {
	schemas := make(map[string]any, len(c.schemas))
	for name, s := range c.schemas {
		schemas[name] = s.Map()
	}

	return map[string]any{
		"components": map[string]any{"schemas": schemas},
	}
}
