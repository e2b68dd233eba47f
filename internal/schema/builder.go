package schema

import (
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"record-serializer/internal/mapping"
	"record-serializer/internal/record"
)

// Builder derives schemas from mappings.
type Builder struct {
	logger zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report skipped keys.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// BuildComponent registers the schema of m and of every mapping reachable
// from it, each exactly once, and returns the root schema: a reference to
// m, or an array of such references when isList is set.
//
// Related mappings are followed whatever the direction, so every $ref in
// the registered schemas resolves.
func (b *Builder) BuildComponent(reg Registry, m *mapping.Mapping, dir Direction, isList bool) *Schema {
	visited := make(map[*mapping.Mapping]struct{})
	stack := []*mapping.Mapping{m}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[cur]; ok {
			continue
		}

		visited[cur] = struct{}{}
		stack = append(stack, cur.Related()...)

		if !reg.HasComponent(cur.Name) {
			reg.RegisterComponent(cur.Name, b.ToSchema(cur, dir))
		}
	}

	root := Ref(m.Name)
	if isList {
		return ArrayOf(root)
	}

	return root
}

// ToSchema returns the object schema of one mapping for a direction.
// Keys without a schema rule are left out of the properties but still
// count as required when their attribute or entry is.
func (b *Builder) ToSchema(m *mapping.Mapping, dir Direction) *Schema {
	required := make(map[string]struct{})
	props := make(map[string]*Schema)

	for _, f := range m.Fields {
		if !inDirection(f.Importing, f.Exporting, dir) {
			continue
		}

		key := f.Key()
		if f.Attribute.Required {
			required[key] = struct{}{}
		}

		if s := b.fieldSchema(m, f); s != nil {
			props[key] = s
		}
	}

	for _, e := range m.Entries {
		if !inDirection(e.Importing, e.Exporting, dir) {
			continue
		}

		if e.Required {
			required[e.Name] = struct{}{}
		}

		if s := b.entrySchema(m, e); s != nil {
			props[e.Name] = s
		}
	}

	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}

	sort.Strings(names)

	return &Schema{Type: TypeObject, Required: names, Properties: props}
}

func (b *Builder) fieldSchema(m *mapping.Mapping, f *mapping.Field) *Schema {
	attr := f.Attribute

	switch attr.Kind {
	case record.KindBoolean:
		return &Schema{Type: TypeBoolean}
	case record.KindChar, record.KindText, record.KindHTML:
		return &Schema{Type: TypeString}
	case record.KindSelection:
		return &Schema{Type: TypeString, Enum: enum(attr.Selection)}
	case record.KindFloat, record.KindMonetary:
		return &Schema{Type: TypeNumber}
	case record.KindInteger:
		return &Schema{Type: TypeInteger}
	case record.KindDate:
		return &Schema{Type: TypeString, Format: string(mapping.FormatDate)}
	case record.KindDatetime:
		return &Schema{Type: TypeString, Format: string(mapping.FormatDateTime)}
	case record.KindMany2One, record.KindOne2Many, record.KindMany2Many:
		if f.Related == nil {
			b.logger.Warn().
				Str("mapping", m.Name).
				Str("key", f.Key()).
				Stringer("kind", attr.Kind).
				Msg("missing related mapping, key skipped")

			return nil
		}

		if attr.Kind == record.KindMany2One {
			return Ref(f.Related.Name)
		}

		return ArrayOf(Ref(f.Related.Name))
	default:
		b.logger.Warn().
			Str("mapping", m.Name).
			Str("key", f.Key()).
			Stringer("kind", attr.Kind).
			Msg("unsupported kind, key skipped")

		return nil
	}
}

func (b *Builder) entrySchema(m *mapping.Mapping, e *mapping.SchemaEntry) *Schema {
	switch e.Type {
	case mapping.EntryMapping:
		if e.Related == nil {
			b.logger.Warn().
				Str("mapping", m.Name).
				Str("key", e.Name).
				Msg("missing related mapping, key skipped")

			return nil
		}

		if e.IsList {
			return ArrayOf(Ref(e.Related.Name))
		}

		return Ref(e.Related.Name)
	case mapping.EntrySelection:
		return &Schema{Type: TypeString, Enum: enum(e.Values)}
	case mapping.EntryString:
		return &Schema{Type: TypeString, Format: string(e.Format)}
	default:
		return &Schema{Type: string(e.Type)}
	}
}

func inDirection(importing, exporting bool, dir Direction) bool {
	if dir == Importing {
		return importing
	}

	return exporting
}

func enum(values []string) []string {
	if values == nil {
		return []string{}
	}

	return slices.Clone(values)
}
