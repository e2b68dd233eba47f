package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-serializer/internal/record"
)

func testCatalog() *record.Catalog {
	return record.NewCatalog(
		record.RecordType{Name: "partner", Attributes: []record.Attribute{
			{Name: "name", Kind: record.KindChar, Required: true},
			{Name: "is_company", Kind: record.KindBoolean},
			{Name: "parent_id", Kind: record.KindMany2One, Relation: "partner"},
			{Name: "child_ids", Kind: record.KindOne2Many, Relation: "partner", Inverse: "parent_id"},
			{Name: "tag_ids", Kind: record.KindMany2Many, Relation: "tag"},
		}},
		record.RecordType{Name: "tag", Attributes: []record.Attribute{
			{Name: "name", Kind: record.KindChar},
		}},
	)
}

func TestStore_CreateAndRead(t *testing.T) {
	ctx := context.Background()
	stamp := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New(testCatalog(), WithClock(func() time.Time { return stamp }))

	ref, err := s.Create(ctx, "partner", map[string]any{"name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "partner", ref.Model)
	assert.False(t, ref.IsZero())

	name, err := s.Read(ctx, ref, "name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", name)

	company, err := s.Read(ctx, ref, "is_company")
	require.NoError(t, err)
	assert.Equal(t, false, company)

	id, err := s.Read(ctx, ref, record.AttrID)
	require.NoError(t, err)
	assert.Equal(t, ref.ID.String(), id)

	parent, err := s.Read(ctx, ref, "parent_id")
	require.NoError(t, err)
	assert.Equal(t, record.Ref{}, parent)

	modified, err := s.LastModified(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, stamp, modified)

	_, err = s.Read(ctx, ref, "missing")
	require.ErrorIs(t, err, record.ErrUnknownAttribute)

	_, err = s.Read(ctx, record.NewRef("partner", uuid.New()), "name")
	require.ErrorIs(t, err, record.ErrNotFound)
}

func TestStore_CreateErrors(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	_, err := s.Create(ctx, "unknown", nil)
	require.ErrorIs(t, err, record.ErrUnknownModel)

	_, err = s.Create(ctx, "partner", map[string]any{"name": 42})
	require.ErrorIs(t, err, record.ErrInvalidValue)

	_, err = s.Create(ctx, "partner", map[string]any{"parent_id": uuid.New()})
	require.ErrorIs(t, err, record.ErrNotFound)

	assert.Zero(t, s.Len("partner"))
}

func TestStore_Relations(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	red, err := s.Create(ctx, "tag", map[string]any{"name": "red"})
	require.NoError(t, err)

	parent, err := s.Create(ctx, "partner", map[string]any{
		"name":    "Acme",
		"tag_ids": []record.Command{record.Link(red.ID), record.Create(map[string]any{"name": "blue"})},
		"child_ids": []record.Command{
			record.Create(map[string]any{"name": "Alice"}),
			record.Create(map[string]any{"name": "Bob"}),
		},
	})
	require.NoError(t, err)

	children, err := s.Read(ctx, parent, "child_ids")
	require.NoError(t, err)
	require.Len(t, children, 2)

	first := children.([]record.Ref)[0]
	name, err := s.Read(ctx, first, "name")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	back, err := s.Read(ctx, first, "parent_id")
	require.NoError(t, err)
	assert.Equal(t, parent, back)

	tags, err := s.Read(ctx, parent, "tag_ids")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, red, tags.([]record.Ref)[0])
	assert.Equal(t, 2, s.Len("tag"))

	require.NoError(t, s.Write(ctx, parent, map[string]any{"child_ids": []record.Command{record.Clear()}}))

	children, err = s.Read(ctx, parent, "child_ids")
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Equal(t, 3, s.Len("partner"))

	require.NoError(t, s.Write(ctx, parent, map[string]any{"tag_ids": []record.Ref{red}}))

	tags, err = s.Read(ctx, parent, "tag_ids")
	require.NoError(t, err)
	assert.Equal(t, []record.Ref{red}, tags)
}

func TestStore_FailedWriteLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	parent, err := s.Create(ctx, "partner", map[string]any{
		"name":      "Acme",
		"child_ids": []record.Command{record.Create(map[string]any{"name": "Alice"})},
	})
	require.NoError(t, err)

	children, err := s.Read(ctx, parent, "child_ids")
	require.NoError(t, err)
	require.Len(t, children, 1)

	alice := children.([]record.Ref)[0]

	err = s.Write(ctx, parent, map[string]any{
		"name": "Renamed",
		"child_ids": []record.Command{
			record.Clear(),
			record.Create(map[string]any{"name": "Carol"}),
			record.Link(uuid.New()),
		},
	})
	require.ErrorIs(t, err, record.ErrNotFound)

	name, err := s.Read(ctx, parent, "name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", name)

	got, err := s.Read(ctx, parent, "child_ids")
	require.NoError(t, err)
	assert.Equal(t, []record.Ref{alice}, got)

	back, err := s.Read(ctx, alice, "parent_id")
	require.NoError(t, err)
	assert.Equal(t, parent, back)
	assert.Equal(t, 2, s.Len("partner"))

	_, err = s.Create(ctx, "partner", map[string]any{
		"name":      "Beta",
		"child_ids": []record.Command{record.Create(map[string]any{"name": "Dan"}), record.Link(uuid.New())},
		"tag_ids":   []record.Command{record.Create(map[string]any{"name": "blue"})},
	})
	require.ErrorIs(t, err, record.ErrNotFound)
	assert.Equal(t, 2, s.Len("partner"))
	assert.Zero(t, s.Len("tag"))
}

func TestStore_WriteSkipsReadonly(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	ref, err := s.Create(ctx, "partner", map[string]any{"name": "Acme"})
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, ref, map[string]any{record.AttrID: "other", "name": "Acme Corp"}))

	id, err := s.Read(ctx, ref, record.AttrID)
	require.NoError(t, err)
	assert.Equal(t, ref.ID.String(), id)

	name, err := s.Read(ctx, ref, "name")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", name)
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	acme, err := s.Create(ctx, "partner", map[string]any{"name": "Acme", "is_company": true})
	require.NoError(t, err)
	alice, err := s.Create(ctx, "partner", map[string]any{"name": "Alice", "parent_id": acme})
	require.NoError(t, err)
	bob, err := s.Create(ctx, "partner", map[string]any{"name": "Bob", "parent_id": acme})
	require.NoError(t, err)

	tests := []struct {
		name   string
		domain record.Domain
		want   []record.Ref
	}{
		{"all", nil, []record.Ref{acme, alice, bob}},
		{"by name", record.Domain{{Field: "name", Operator: record.OpEq, Value: "Bob"}}, []record.Ref{bob}},
		{"by id", record.Domain{{Field: record.AttrID, Operator: record.OpEq, Value: alice.ID.String()}}, []record.Ref{alice}},
		{
			"id list with duplicates",
			record.Domain{{Field: record.AttrID, Operator: record.OpIn, Value: []any{bob.ID.String(), acme.ID.String(), bob.ID.String()}}},
			[]record.Ref{acme, bob},
		},
		{"by parent", record.Domain{{Field: "parent_id", Operator: record.OpEq, Value: acme.ID.String()}}, []record.Ref{alice, bob}},
		{"companies", record.Domain{{Field: "is_company", Operator: record.OpEq, Value: true}}, []record.Ref{acme}},
		{"by child", record.Domain{{Field: "child_ids", Operator: record.OpIn, Value: []any{bob.ID.String()}}}, []record.Ref{acme}},
		{"ilike", record.Domain{{Field: "name", Operator: record.OpILike, Value: "a"}}, []record.Ref{acme, alice}},
		{"none", record.Domain{{Field: "name", Operator: record.OpEq, Value: "Nobody"}}, []record.Ref{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, "partner", tt.domain)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = s.Search(ctx, "unknown", nil)
	require.ErrorIs(t, err, record.ErrUnknownModel)

	_, err = s.Search(ctx, "partner", record.Domain{{Field: "name", Operator: "~", Value: "x"}})
	require.ErrorIs(t, err, record.ErrInvalidDomain)
}
