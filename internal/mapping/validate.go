package mapping

import (
	"fmt"

	"record-serializer/internal/diagnostic"
	"record-serializer/internal/match"
	"record-serializer/internal/record"
	"record-serializer/internal/script"
)

// maxSuggestions bounds the "did you mean" list of a diagnostic.
const maxSuggestions = 3

// Validate checks a mapping file for structural problems: unknown record
// types and attributes, duplicate output keys, broken related references,
// malformed match domains and snippets. Build refuses files with errors.
func Validate(mf *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_file_is_nil", "mapping file is nil", "", "")
		return res
	}

	validateModels(res, mf.Models)

	catalog := mf.Catalog()
	names := make([]string, 0, len(mf.Mappings))
	seenNames := map[string]struct{}{}
	seenCodes := map[string]string{}

	for i := range mf.Mappings {
		d := &mf.Mappings[i]
		if d.Name == "" {
			res.AddError("missing_name", fmt.Sprintf("mapping #%d has no name", i+1), "", "")
			continue
		}

		if _, ok := seenNames[d.Name]; ok {
			res.AddError("duplicate_mapping", fmt.Sprintf("duplicate mapping %q", d.Name), d.Name, "")
			continue
		}

		seenNames[d.Name] = struct{}{}
		names = append(names, d.Name)

		if other, ok := seenCodes[d.Code]; ok && d.Code != "" {
			res.AddError("duplicate_code",
				fmt.Sprintf("code %q is already used by mapping %q", d.Code, other), d.Name, "")
		} else {
			seenCodes[d.Code] = d.Name
		}
	}

	for i := range mf.Mappings {
		d := &mf.Mappings[i]
		if d.Name == "" {
			continue
		}

		rt := catalog.Get(d.Model)
		if rt == nil {
			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Code:        "model_not_found",
				Message:     fmt.Sprintf("record type %q not found", d.Model),
				Mapping:     d.Name,
				Suggestions: match.Suggest(d.Model, catalog.Names(), maxSuggestions),
			})

			continue
		}

		v := &definitionValidator{res: res, file: mf, def: d, model: rt, names: names, keys: map[string]string{}}
		v.validateFields()
		v.validateEntries()
		v.validateDomain()
		v.validateSnippets()
	}

	return res
}

// validateModels checks the declared record types and their relations.
func validateModels(res *diagnostic.Diagnostics, models []record.RecordType) {
	byName := make(map[string]*record.RecordType, len(models))
	for i := range models {
		m := &models[i]
		if m.Name == "" {
			res.AddError("missing_model_name", fmt.Sprintf("record type #%d has no name", i+1), "", "")
			continue
		}

		if _, ok := byName[m.Name]; ok {
			res.AddError("duplicate_model", fmt.Sprintf("duplicate record type %q", m.Name), "", m.Name)
			continue
		}

		byName[m.Name] = m
	}

	for i := range models {
		m := &models[i]
		if byName[m.Name] != m {
			continue
		}

		seen := map[string]struct{}{}

		for j := range m.Attributes {
			attr := &m.Attributes[j]
			path := m.Name + "." + attr.Name

			if _, ok := seen[attr.Name]; ok {
				res.AddError("duplicate_attribute", fmt.Sprintf("attribute %q declared twice", attr.Name), "", path)
			}

			seen[attr.Name] = struct{}{}

			if attr.Kind == record.KindUnknown {
				res.AddError("unknown_kind", fmt.Sprintf("attribute %q has no known kind", attr.Name), "", path)
				continue
			}

			if !attr.Kind.IsRelational() {
				continue
			}

			related, ok := byName[attr.Relation]
			if !ok {
				res.AddError("relation_not_found",
					fmt.Sprintf("attribute %q relates to unknown record type %q", attr.Name, attr.Relation), "", path)

				continue
			}

			if attr.Kind == record.KindOne2Many {
				inverse, ok := related.Attribute(attr.Inverse)
				if !ok || inverse.Kind != record.KindMany2One || inverse.Relation != m.Name {
					res.AddError("invalid_inverse",
						fmt.Sprintf("one2many %q needs a many2one %q on %q pointing back to %q",
							attr.Name, attr.Inverse, attr.Relation, m.Name), "", path)
				}
			}
		}
	}
}

type definitionValidator struct {
	res   *diagnostic.Diagnostics
	file  *File
	def   *Definition
	model *record.RecordType
	names []string
	keys  map[string]string // effective key -> what declared it
}

func (v *definitionValidator) claimKey(key, owner string) {
	if prev, ok := v.keys[key]; ok {
		v.res.AddError("duplicate_key",
			fmt.Sprintf("output key %q of %s is already used by %s", key, owner, prev), v.def.Name, key)

		return
	}

	v.keys[key] = owner
}

// related resolves a related mapping reference. Relational keys without one
// are reported as warnings: they are skipped by schema generation and fail
// when transformed.
func (v *definitionValidator) related(name, wantModel, key string) {
	if name == "" {
		v.res.AddWarning("missing_related",
			fmt.Sprintf("%q has no related mapping; transforming it will fail", key), v.def.Name, key)

		return
	}

	target, ok := v.file.Lookup(name)
	if !ok {
		v.res.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.SeverityError,
			Code:        "related_not_found",
			Message:     fmt.Sprintf("related mapping %q not found", name),
			Mapping:     v.def.Name,
			Key:         key,
			Suggestions: match.Suggest(name, v.names, maxSuggestions),
		})

		return
	}

	if wantModel != "" && target.Model != wantModel {
		v.res.AddError("related_model_mismatch",
			fmt.Sprintf("related mapping %q serializes %q, attribute relates to %q", name, target.Model, wantModel),
			v.def.Name, key)
	}
}

func (v *definitionValidator) validateFields() {
	seenAttrs := map[string]struct{}{}

	for i := range v.def.Fields {
		f := &v.def.Fields[i]
		if f.Attribute == "" {
			v.res.AddError("missing_attribute", fmt.Sprintf("field #%d has no attribute", i+1), v.def.Name, "")
			continue
		}

		attr, ok := v.model.Attribute(f.Attribute)
		if !ok {
			v.res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Code:        "attribute_not_found",
				Message:     fmt.Sprintf("attribute %q not found on %q", f.Attribute, v.model.Name),
				Mapping:     v.def.Name,
				Key:         f.Attribute,
				Suggestions: match.Suggest(f.Attribute, v.model.AttributeNames(), maxSuggestions),
			})

			continue
		}

		if _, dup := seenAttrs[f.Attribute]; dup {
			v.res.AddError("duplicate_attribute",
				fmt.Sprintf("attribute %q is mapped more than once", f.Attribute), v.def.Name, f.Attribute)

			continue
		}

		seenAttrs[f.Attribute] = struct{}{}
		v.claimKey(f.Key(), fmt.Sprintf("field %q", f.Attribute))

		switch {
		case attr.Kind.IsRelational():
			v.related(f.Related, attr.Relation, f.Key())
		case !attr.Kind.IsScalar():
			v.res.AddWarning("unsupported_kind",
				fmt.Sprintf("%s attribute %q has no transform rule", attr.Kind, attr.Name), v.def.Name, f.Key())
		case f.Related != "":
			v.res.AddWarning("related_ignored",
				fmt.Sprintf("related mapping %q is ignored on %s attribute %q", f.Related, attr.Kind, attr.Name),
				v.def.Name, f.Key())
		}
	}
}

func (v *definitionValidator) validateEntries() {
	for i := range v.def.Schema {
		e := &v.def.Schema[i]
		if e.Name == "" {
			v.res.AddError("missing_entry_name", fmt.Sprintf("schema entry #%d has no name", i+1), v.def.Name, "")
			continue
		}

		v.claimKey(e.Name, fmt.Sprintf("schema entry %q", e.Name))

		if !e.Type.IsValid() {
			v.res.AddError("invalid_entry_type", fmt.Sprintf("unknown schema entry type %q", e.Type), v.def.Name, e.Name)
			continue
		}

		if !e.Format.IsValid() {
			v.res.AddError("invalid_entry_format", fmt.Sprintf("unknown format %q", e.Format), v.def.Name, e.Name)
		}

		switch e.Type {
		case EntrySelection:
			if len(e.Choices()) == 0 {
				v.res.AddWarning("missing_selection_values", "selection entry has no values", v.def.Name, e.Name)
			}
		case EntryMapping:
			v.related(e.Related, "", e.Name)
		default:
		}
	}
}

// validateDomain evaluates the import domain with every variable null and
// checks that the conditions name attributes of the record type.
func (v *definitionValidator) validateDomain() {
	expr, err := script.CompileDomain(v.def.ImportDomain)
	if err != nil {
		v.res.AddError("invalid_domain", err.Error(), v.def.Name, "import_domain")
		return
	}

	domain, err := expr.Evaluate(nil)
	if err != nil {
		v.res.AddError("invalid_domain", err.Error(), v.def.Name, "import_domain")
		return
	}

	for _, cond := range domain {
		if _, ok := v.model.Attribute(cond.Field); !ok {
			v.res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Code:        "invalid_domain",
				Message:     fmt.Sprintf("domain field %q is not an attribute of %q", cond.Field, v.model.Name),
				Mapping:     v.def.Name,
				Key:         "import_domain",
				Suggestions: match.Suggest(cond.Field, v.model.AttributeNames(), maxSuggestions),
			})
		}
	}
}

func (v *definitionValidator) validateSnippets() {
	for _, s := range []struct{ name, source string }{
		{"export_code", v.def.ExportCode},
		{"import_code", v.def.ImportCode},
	} {
		if s.source == "" {
			continue
		}

		if _, err := script.CompileSnippet(s.name, s.source); err != nil {
			v.res.AddError("invalid_snippet", err.Error(), v.def.Name, s.name)
		}
	}
}
