// Package mapping loads, validates and links mapping configuration.
//
// A mapping describes how records of one type turn into nested JSON-like
// maps and back. The YAML file declares the record types and the mappings:
//
//	version: "1"
//	models:
//	  - name: partner
//	    attributes:
//	      - {name: name, kind: char, required: true}
//	      - {name: ref, kind: char}
//	      - {name: parent_id, kind: many2one, relation: partner}
//	      - {name: child_ids, kind: one2many, relation: partner, inverse: parent_id}
//	mappings:
//	  - name: partner
//	    model: partner
//	    include_empty_keys: true
//	    import_domain: '[["ref", "=", ref]]'
//	    fields:
//	      - attribute: name
//	      - attribute: ref
//	        importing: false
//	      - attribute: parent_id
//	        alias: parent
//	        related: partner
//	      - attribute: child_ids
//	        alias: children
//	        related: partner
//	    schema:
//	      - {name: source, type: string, required: true}
//
// Build validates the file and links it into an immutable Set of *Mapping
// values whose related references are plain pointers. Within one mapping the
// effective output key (alias, else attribute name) of every field and
// schema entry must be unique.
//
// # Defaults
//
//   - importing, exporting: true (mappings, fields and schema entries)
//   - raise_on_duplicate: true
//   - code: the mapping name
//   - import_domain: [["id", "=", id]]
//
// # Hooks
//
// Besides the export_code and import_code snippets, Go callers may register
// hooks per mapping name in a HookRegistry. Both run when use_snippet is set,
// the hook first.
package mapping
