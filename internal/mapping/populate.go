package mapping

import (
	"record-serializer/internal/record"
)

// Populate appends a field for every attribute of rt the definition does not
// map yet and returns the added fields. Relational attributes are only
// added when fully is set; they are left without a related mapping.
func Populate(d *Definition, rt *record.RecordType, fully bool) []FieldDef {
	mapped := make(map[string]struct{}, len(d.Fields))
	for i := range d.Fields {
		mapped[d.Fields[i].Attribute] = struct{}{}
	}

	var added []FieldDef

	for i := range rt.Attributes {
		attr := &rt.Attributes[i]
		if _, ok := mapped[attr.Name]; ok {
			continue
		}

		if attr.Kind.IsRelational() && !fully {
			continue
		}

		added = append(added, FieldDef{
			Attribute: attr.Name,
			Importing: boolPtr(true),
			Exporting: boolPtr(true),
		})
	}

	d.Fields = append(d.Fields, added...)

	return added
}
