package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-serializer/internal/diagnostic"
)

func TestValidate_ValidFile(t *testing.T) {
	result := Validate(parseFixture(t, partnerYAML))
	assert.True(t, result.IsValid(), "expected valid file, got errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_Nil(t *testing.T) {
	result := Validate(nil)
	assert.True(t, result.HasCode("mapping_file_is_nil"))
}

func findDiag(list []diagnostic.Diagnostic, code string) *diagnostic.Diagnostic {
	for i := range list {
		if list[i].Code == code {
			return &list[i]
		}
	}

	return nil
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mappings string
		code     string
		key      string
	}{
		{
			name: "duplicate alias",
			mappings: `
  - name: partner
    model: partner
    fields:
      - {attribute: name, alias: label}
      - {attribute: ref, alias: label}`,
			code: "duplicate_key",
			key:  "label",
		},
		{
			name: "alias collides with attribute name",
			mappings: `
  - name: partner
    model: partner
    fields:
      - {attribute: name}
      - {attribute: ref, alias: name}`,
			code: "duplicate_key",
			key:  "name",
		},
		{
			name: "schema entry collides with field",
			mappings: `
  - name: partner
    model: partner
    fields:
      - {attribute: ref}
    schema:
      - {name: ref, type: string}`,
			code: "duplicate_key",
			key:  "ref",
		},
		{
			name: "attribute mapped twice",
			mappings: `
  - name: partner
    model: partner
    fields:
      - {attribute: name}
      - {attribute: name, alias: other}`,
			code: "duplicate_attribute",
			key:  "name",
		},
		{
			name: "unknown attribute",
			mappings: `
  - name: partner
    model: partner
    fields:
      - {attribute: nme}`,
			code: "attribute_not_found",
			key:  "nme",
		},
		{
			name: "unknown model",
			mappings: `
  - name: partner
    model: partnr`,
			code: "model_not_found",
		},
		{
			name: "unknown related mapping",
			mappings: `
  - name: partner
    model: partner
    fields:
      - {attribute: parent_id, related: company}`,
			code: "related_not_found",
			key:  "parent_id",
		},
		{
			name: "related mapping of another model",
			mappings: `
  - name: partner
    model: partner
    fields:
      - {attribute: tag_ids, related: partner}`,
			code: "related_model_mismatch",
			key:  "tag_ids",
		},
		{
			name: "malformed domain",
			mappings: `
  - name: partner
    model: partner
    import_domain: '[["ref", "="'`,
			code: "invalid_domain",
			key:  "import_domain",
		},
		{
			name: "domain on unknown attribute",
			mappings: `
  - name: partner
    model: partner
    import_domain: '[["code", "=", code]]'`,
			code: "invalid_domain",
			key:  "import_domain",
		},
		{
			name: "malformed snippet",
			mappings: `
  - name: partner
    model: partner
    use_snippet: true
    export_code: 'name = '`,
			code: "invalid_snippet",
			key:  "export_code",
		},
		{
			name: "invalid entry type",
			mappings: `
  - name: partner
    model: partner
    schema:
      - {name: extra, type: object}`,
			code: "invalid_entry_type",
			key:  "extra",
		},
		{
			name: "invalid entry format",
			mappings: `
  - name: partner
    model: partner
    schema:
      - {name: extra, type: string, format: time}`,
			code: "invalid_entry_format",
			key:  "extra",
		},
		{
			name: "duplicate mapping name",
			mappings: `
  - name: partner
    model: partner
  - name: partner
    model: partner`,
			code: "duplicate_mapping",
		},
		{
			name: "duplicate code",
			mappings: `
  - name: partner
    model: partner
  - name: partner_light
    code: partner
    model: partner`,
			code: "duplicate_code",
		},
	}

	models := partnerYAML[:strings.Index(partnerYAML, "mappings:")]

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mf := parseFixture(t, models+"mappings:"+tt.mappings+"\n")

			result := Validate(mf)
			require.False(t, result.IsValid())

			d := findDiag(result.Errors, tt.code)
			require.NotNil(t, d, "expected %s, got %v", tt.code, result.Errors)
			assert.Equal(t, tt.key, d.Key)
		})
	}
}

func TestValidate_Suggestions(t *testing.T) {
	models := partnerYAML[:strings.Index(partnerYAML, "mappings:")]
	mf := parseFixture(t, models+`mappings:
  - name: partner
    model: partner
    fields:
      - {attribute: nme}
      - {attribute: parent, related: partner}
`)

	result := Validate(mf)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, []string{"name"}, result.Errors[0].Suggestions)
	assert.Equal(t, []string{"parent_id"}, result.Errors[1].Suggestions)
}

func TestValidate_Warnings(t *testing.T) {
	models := partnerYAML[:strings.Index(partnerYAML, "mappings:")]
	mf := parseFixture(t, models+`mappings:
  - name: partner
    model: partner
    fields:
      - {attribute: parent_id}
      - {attribute: name, related: partner}
    schema:
      - {name: state, type: selection}
      - {name: contact, type: mapping}
`)

	result := Validate(mf)

	assert.True(t, result.IsValid(), "unexpected errors: %v", result.Errors)
	assert.True(t, result.HasCode("missing_related"))
	assert.True(t, result.HasCode("related_ignored"))
	assert.True(t, result.HasCode("missing_selection_values"))
	assert.Len(t, result.Warnings, 4)
}

func TestValidate_Models(t *testing.T) {
	mf := parseFixture(t, `
models:
  - name: partner
    attributes:
      - {name: name, kind: char}
      - {name: name, kind: text}
      - {name: blob, kind: blob}
      - {name: country_id, kind: many2one, relation: country}
      - {name: child_ids, kind: one2many, relation: partner, inverse: name}
  - name: partner
mappings: []
`)

	result := Validate(mf)

	for _, code := range []string{"duplicate_model", "duplicate_attribute", "unknown_kind", "relation_not_found", "invalid_inverse"} {
		assert.True(t, result.HasCode(code), code)
	}
}
