package mapping

import (
	"errors"
	"fmt"

	"record-serializer/internal/script"
)

// ErrConfiguration is returned by Build when the file fails validation.
var ErrConfiguration = errors.New("configuration error")

type buildOptions struct {
	hooks *HookRegistry
	clock script.Clock
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithHooks attaches Go hooks to the mappings they are registered for.
func WithHooks(hooks *HookRegistry) BuildOption {
	return func(o *buildOptions) {
		o.hooks = hooks
	}
}

// WithClock sets the clock behind the snippets' now function.
func WithClock(clock script.Clock) BuildOption {
	return func(o *buildOptions) {
		o.clock = clock
	}
}

// Build validates a file and links its definitions into a Set. Related
// references become pointers, so cyclic mappings are allowed.
func Build(mf *File, opts ...BuildOption) (*Set, error) {
	if diags := Validate(mf); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, diags.Error())
	}

	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	set := &Set{
		catalog:  mf.Catalog(),
		mappings: make(map[string]*Mapping, len(mf.Mappings)),
		byCode:   make(map[string]*Mapping, len(mf.Mappings)),
	}

	// First pass creates every mapping so that related references can be
	// resolved regardless of declaration order.
	for i := range mf.Mappings {
		d := &mf.Mappings[i]
		m := &Mapping{
			Name:             d.Name,
			Code:             d.Code,
			Model:            set.catalog.Get(d.Model),
			Importing:        isTrue(d.Importing),
			Exporting:        isTrue(d.Exporting),
			UseSnippet:       d.UseSnippet,
			UseSyncDate:      d.UseSyncDate,
			RaiseOnDuplicate: isTrue(d.RaiseOnDuplicate),
			IncludeEmptyKeys: d.IncludeEmptyKeys,
			ExportHook:       o.hooks.Export(d.Name),
			ImportHook:       o.hooks.Import(d.Name),
		}

		set.mappings[m.Name] = m
		set.byCode[m.Code] = m
	}

	for i := range mf.Mappings {
		if err := link(set, &mf.Mappings[i], &o); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func link(set *Set, d *Definition, o *buildOptions) error {
	m := set.mappings[d.Name]

	var err error

	if m.Domain, err = script.CompileDomain(d.ImportDomain); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, d.Name, err)
	}

	var snippetOpts []script.SnippetOption
	if o.clock != nil {
		snippetOpts = append(snippetOpts, script.WithClock(o.clock))
	}

	if d.ExportCode != "" {
		if m.ExportSnippet, err = script.CompileSnippet("export_code", d.ExportCode, snippetOpts...); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfiguration, d.Name, err)
		}
	}

	if d.ImportCode != "" {
		if m.ImportSnippet, err = script.CompileSnippet("import_code", d.ImportCode, snippetOpts...); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfiguration, d.Name, err)
		}
	}

	for j := range d.Fields {
		fd := &d.Fields[j]
		attr, _ := m.Model.Attribute(fd.Attribute)

		f := &Field{
			Attribute: attr,
			Alias:     fd.Alias,
			Importing: isTrue(fd.Importing),
			Exporting: isTrue(fd.Exporting),
		}

		if attr.Kind.IsRelational() && fd.Related != "" {
			f.Related = set.mappings[fd.Related]
		}

		m.Fields = append(m.Fields, f)
	}

	for j := range d.Schema {
		ed := &d.Schema[j]

		e := &SchemaEntry{
			Name:      ed.Name,
			Type:      ed.Type,
			Format:    ed.Format,
			Values:    ed.Choices(),
			IsList:    ed.IsList,
			Required:  ed.Required,
			Importing: isTrue(ed.Importing),
			Exporting: isTrue(ed.Exporting),
		}

		if ed.Type == EntryMapping && ed.Related != "" {
			e.Related = set.mappings[ed.Related]
		}

		m.Entries = append(m.Entries, e)
	}

	return nil
}
