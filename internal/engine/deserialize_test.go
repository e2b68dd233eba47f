package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-serializer/internal/mapping"
)

func TestDeserialize(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.engine.Deserialize(context.Background(), f.mapping(t, "partner"), map[string]any{
		"name":     "Child",
		"ref":      "C",
		"birthday": "2024-01-02",
		"parent":   map[string]any{"name": "Parent", "ref": "P", "extra": true},
		"children": []any{map[string]any{"name": "Kid"}},
		"tags":     nil,
		"unknown":  1,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":      "Child",
		"ref":       "C",
		"birthday":  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		"parent_id": map[string]any{"name": "Parent", "ref": "P"},
		"child_ids": []any{map[string]any{"name": "Kid"}},
		"tag_ids":   nil,
	}, out)
}

func TestDeserialize_InvalidShape(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	m := f.mapping(t, "partner")

	tests := []struct {
		name    string
		payload any
	}{
		{name: "list root", payload: []any{map[string]any{"name": "x"}}},
		{name: "scalar root", payload: "x"},
		{name: "nested scalar", payload: map[string]any{"parent": "P"}},
		{name: "to-many object", payload: map[string]any{"children": map[string]any{"name": "x"}}},
		{name: "bad date", payload: map[string]any{"birthday": "yesterday"}},
		{name: "date number", payload: map[string]any{"birthday": 20240102}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Deserialize(ctx, m, tt.payload)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayloadShape)
		})
	}
}

func TestDeserialize_IgnoresNonImportingFields(t *testing.T) {
	f := newFixture(t, func(mf *mapping.File) {
		definition(mf, "tag").Fields[0].Importing = boolPtr(false)
	})

	out, err := f.engine.Deserialize(context.Background(), f.mapping(t, "tag"), map[string]any{"name": "vip"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDeserialize_SyncDateAndSnippet(t *testing.T) {
	f := newFixture(t, func(mf *mapping.File) {
		d := definition(mf, "tag")
		d.UseSyncDate = true
		d.UseSnippet = true
		d.ImportCode = `
name   = upper(content.name)
source = "feed"
`
	})

	out, err := f.engine.Deserialize(context.Background(), f.mapping(t, "tag"), map[string]any{
		"name":      "vip",
		SyncDateKey: "2024-03-01 10:30:00.250000",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":      "VIP",
		"source":    "feed",
		SyncDateKey: time.Date(2024, 3, 1, 10, 30, 0, 250000000, time.UTC),
	}, out)

	_, err = f.engine.Deserialize(context.Background(), f.mapping(t, "tag"), map[string]any{SyncDateKey: 5})
	assert.ErrorIs(t, err, ErrInvalidPayloadShape)
}

func TestDeserialize_HookClearingResult(t *testing.T) {
	hooks := mapping.NewHookRegistry().OnImport("tag", func(context.Context, map[string]any, map[string]any) (map[string]any, error) {
		return nil, nil
	})

	f := newFixture(t, func(mf *mapping.File) {
		d := definition(mf, "tag")
		d.UseSnippet = true
		d.UseSyncDate = true
	}, mapping.WithHooks(hooks))

	out, err := f.engine.Deserialize(context.Background(), f.mapping(t, "tag"), map[string]any{
		"name":      "vip",
		SyncDateKey: "2024-03-01 10:30:00",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{SyncDateKey: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)}, out)
}

func TestDeserializeList(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	m := f.mapping(t, "tag")

	out, err := f.engine.DeserializeList(ctx, m, []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"name": "a"}, {"name": "b"}}, out)

	_, err = f.engine.DeserializeList(ctx, m, map[string]any{"name": "a"})
	assert.ErrorIs(t, err, ErrInvalidPayloadShape)

	_, err = f.engine.DeserializeList(ctx, m, []any{"a"})
	assert.ErrorIs(t, err, ErrInvalidPayloadShape)
}
