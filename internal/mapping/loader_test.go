package mapping

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-serializer/internal/record"
	"record-serializer/internal/script"
)

func TestParse(t *testing.T) {
	mf := parseFixture(t, partnerYAML)

	assert.Equal(t, "1", mf.Version)
	require.Len(t, mf.Models, 2)
	require.Len(t, mf.Mappings, 2)

	partner := mf.Mappings[0]
	assert.Equal(t, "partner", partner.Name)
	assert.Equal(t, "partner", partner.Code, "code defaults to the name")
	assert.True(t, *partner.Importing)
	assert.True(t, *partner.Exporting)
	assert.True(t, *partner.RaiseOnDuplicate)
	assert.True(t, partner.IncludeEmptyKeys)
	assert.Equal(t, `[["ref", "=", ref]]`, partner.ImportDomain)

	require.Len(t, partner.Fields, 4)
	assert.Equal(t, "name", partner.Fields[0].Key())
	assert.False(t, *partner.Fields[1].Importing)
	assert.True(t, *partner.Fields[1].Exporting)
	assert.Equal(t, "parent", partner.Fields[2].Key())
	assert.Equal(t, "partner", partner.Fields[2].Related)

	require.Len(t, partner.Schema, 1)
	assert.Equal(t, EntryString, partner.Schema[0].Type)
	assert.True(t, partner.Schema[0].Required)

	tag := mf.Mappings[1]
	assert.Equal(t, "tags", tag.Code)
	assert.False(t, *tag.Exporting)
	assert.Equal(t, script.DefaultDomain, tag.ImportDomain)

	parent, ok := mf.Catalog().Get("partner").Attribute("parent_id")
	require.True(t, ok)
	assert.Equal(t, record.KindMany2One, parent.Kind)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("mappings: [:"))
	require.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	mf := parseFixture(t, partnerYAML)
	path := filepath.Join(t.TempDir(), "mappings.yaml")

	require.NoError(t, WriteFile(mf, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mf, loaded)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEntryDef_Choices(t *testing.T) {
	e := EntryDef{Values: " draft, done ,,cancel "}
	assert.Equal(t, []string{"draft", "done", "cancel"}, e.Choices())
}
