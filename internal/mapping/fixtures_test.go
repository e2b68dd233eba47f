package mapping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const partnerYAML = `
models:
  - name: partner
    attributes:
      - {name: name, kind: char, required: true}
      - {name: ref, kind: char}
      - {name: is_company, kind: boolean}
      - {name: parent_id, kind: many2one, relation: partner}
      - {name: child_ids, kind: one2many, relation: partner, inverse: parent_id}
      - {name: tag_ids, kind: many2many, relation: tag}
  - name: tag
    attributes:
      - {name: name, kind: char}
mappings:
  - name: partner
    model: partner
    include_empty_keys: true
    import_domain: '[["ref", "=", ref]]'
    fields:
      - attribute: name
      - attribute: ref
        importing: false
      - attribute: parent_id
        alias: parent
        related: partner
      - attribute: child_ids
        alias: children
        related: partner
    schema:
      - {name: source, type: string, required: true}
  - name: tag
    code: tags
    model: tag
    exporting: false
    fields:
      - attribute: name
`

func parseFixture(t *testing.T, src string) *File {
	t.Helper()

	mf, err := Parse([]byte(src))
	require.NoError(t, err)

	return mf
}
