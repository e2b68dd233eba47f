package mapping

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-serializer/internal/record"
)

func TestBuild(t *testing.T) {
	hooks := NewHookRegistry().OnExport("partner", func(_ context.Context, _ map[string]any, result map[string]any) (map[string]any, error) {
		return result, nil
	})

	set, err := Build(parseFixture(t, partnerYAML), WithHooks(hooks))
	require.NoError(t, err)

	assert.Equal(t, []string{"partner", "tag"}, set.Names())

	partner, ok := set.Get("partner")
	require.True(t, ok)
	assert.Equal(t, "partner", partner.Model.Name)
	assert.True(t, partner.Active())
	assert.True(t, partner.RaiseOnDuplicate)
	assert.True(t, partner.IncludeEmptyKeys)
	assert.NotNil(t, partner.ExportHook)
	assert.Nil(t, partner.ImportHook)
	assert.Equal(t, `[["ref", "=", ref]]`, partner.Domain.Source())

	require.Len(t, partner.Fields, 4)
	parent := partner.Fields[2]
	assert.Equal(t, "parent", parent.Key())
	assert.Equal(t, record.KindMany2One, parent.Attribute.Kind)
	assert.Same(t, partner, parent.Related, "self reference links to the same mapping")
	assert.Same(t, partner, partner.Fields[3].Related)

	assert.Equal(t, []*Mapping{partner}, partner.Related())

	require.Len(t, partner.Entries, 1)
	assert.Equal(t, "source", partner.Entries[0].Name)
	assert.True(t, partner.Entries[0].Required)

	tag, ok := set.FindByCode("tags")
	require.True(t, ok)
	assert.Equal(t, "tag", tag.Name)
	assert.True(t, tag.Active())
	assert.False(t, tag.Exporting)

	_, ok = set.FindByCode("tag")
	assert.False(t, ok)

	assert.NotNil(t, set.Catalog().Get("tag"))
}

func TestBuild_Invalid(t *testing.T) {
	src := strings.Replace(partnerYAML, "alias: children", "alias: parent", 1)

	_, err := Build(parseFixture(t, src))
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "duplicate_key")
}

func TestMapping_FieldByKey(t *testing.T) {
	models := partnerYAML[:strings.Index(partnerYAML, "mappings:")]
	set, err := Build(parseFixture(t, models+`mappings:
  - name: partner
    model: partner
    fields:
      - {attribute: name, alias: ref}
      - {attribute: ref, alias: code}
      - {attribute: is_company}
      - {attribute: parent_id, importing: false, related: partner}
`))
	require.NoError(t, err)

	m, _ := set.Get("partner")

	f, ok := m.FieldByKey("ref")
	require.True(t, ok)
	assert.Equal(t, "name", f.Attribute.Name, "alias wins over attribute name")

	f, ok = m.FieldByKey("code")
	require.True(t, ok)
	assert.Equal(t, "ref", f.Attribute.Name)

	_, ok = m.FieldByKey("name")
	assert.False(t, ok, "aliased attribute is not reachable by its name")

	f, ok = m.FieldByKey("is_company")
	require.True(t, ok)
	assert.Equal(t, "is_company", f.Attribute.Name)

	_, ok = m.FieldByKey("parent_id")
	assert.False(t, ok, "non-importing fields never consume a key")

	f, ok = m.FieldByAttribute("parent_id")
	require.True(t, ok)
	assert.False(t, f.Importing)
}

func TestMapping_InactiveMapping(t *testing.T) {
	models := partnerYAML[:strings.Index(partnerYAML, "mappings:")]
	set, err := Build(parseFixture(t, models+`mappings:
  - name: partner
    model: partner
    importing: false
    exporting: false
`))
	require.NoError(t, err)

	m, _ := set.Get("partner")
	assert.False(t, m.Active())
}
