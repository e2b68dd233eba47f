package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"record-serializer/internal/record"
)

func childPayload() map[string]any {
	return map[string]any{
		"name":   "Child",
		"ref":    "C",
		"parent": map[string]any{"name": "Parent", "ref": "P"},
		"tags":   []any{map[string]any{"name": "vip"}},
	}
}

func TestImport_CreatesNestedRecords(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	m := f.mapping(t, "partner")

	refs, err := f.engine.Import(ctx, m, childPayload(), true)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	assert.Equal(t, 2, f.store.Len("partner"))
	assert.Equal(t, 1, f.store.Len("tag"))
	assert.Equal(t, "Child", f.read(t, refs[0], "name"))

	parent, ok := f.read(t, refs[0], "parent_id").(record.Ref)
	require.True(t, ok)
	assert.Equal(t, "Parent", f.read(t, parent, "name"))

	tags, ok := f.read(t, refs[0], "tag_ids").([]record.Ref)
	require.True(t, ok)
	require.Len(t, tags, 1)
	assert.Equal(t, "vip", f.read(t, tags[0], "name"))
}

func TestImport_UpdatesMatches(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	m := f.mapping(t, "partner")

	first, err := f.engine.Import(ctx, m, childPayload(), true)
	require.NoError(t, err)

	payload := childPayload()
	payload["name"] = "Renamed"

	second, err := f.engine.Import(ctx, m, payload, true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, f.store.Len("partner"))
	assert.Equal(t, 1, f.store.Len("tag"))
	assert.Equal(t, "Renamed", f.read(t, first[0], "name"))
}

func TestImport_WithoutCreateSkipsUnmatched(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	refs, err := f.engine.Import(ctx, f.mapping(t, "tag"), []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	}, false)
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Equal(t, 0, f.store.Len("tag"))
}

func TestImport_ToManyLinksAndCreates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	parent := f.create(t, "partner", map[string]any{"name": "Parent", "ref": "P"})
	existing := f.create(t, "partner", map[string]any{"name": "Old", "ref": "C"})
	stale := f.create(t, "partner", map[string]any{"name": "Stale", "ref": "S", "parent_id": parent.ID})

	refs, err := f.engine.Import(ctx, f.mapping(t, "partner"), map[string]any{
		"ref": "P",
		"children": []any{
			map[string]any{"name": "Kept", "ref": "C"},
			map[string]any{"name": "New", "ref": "N"},
		},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []record.Ref{parent}, refs)

	children, ok := f.read(t, parent, "child_ids").([]record.Ref)
	require.True(t, ok)
	require.Len(t, children, 2)
	assert.Equal(t, existing, children[0])
	assert.Equal(t, "Kept", f.read(t, existing, "name"))
	assert.Equal(t, "New", f.read(t, children[1], "name"))
	assert.Equal(t, record.Ref{}, f.read(t, stale, "parent_id"))
}

func TestImport_ResultIsUnion(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	refs, err := f.engine.Import(ctx, f.mapping(t, "tag"), []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
		map[string]any{"name": "a"},
	}, true)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
	assert.Equal(t, 2, f.store.Len("tag"))
}

func TestImport_AmbiguousParent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.create(t, "partner", map[string]any{"name": "One", "ref": "dup"})
	f.create(t, "partner", map[string]any{"name": "Two", "ref": "dup"})

	_, err := f.engine.Import(ctx, f.mapping(t, "partner"), map[string]any{
		"ref":    "C",
		"parent": map[string]any{"ref": "dup"},
	}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
}

func TestImportDeserialized_DropsUnknownScalars(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	refs, err := f.engine.ImportDeserialized(ctx, f.mapping(t, "tag"), map[string]any{
		"name":      "vip",
		SyncDateKey: stamp,
	}, true)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "vip", f.read(t, refs[0], "name"))

	_, err = f.engine.ImportDeserialized(ctx, f.mapping(t, "tag"), []any{"vip"}, true)
	assert.ErrorIs(t, err, ErrInvalidPayloadShape)
}

func TestMatchDomain(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	m := f.mapping(t, "partner")

	a := f.create(t, "partner", map[string]any{"name": "A", "ref": "A"})
	f.create(t, "partner", map[string]any{"name": "B", "ref": "B"})

	refs, err := f.engine.MatchDomain(ctx, m, map[string]any{"ref": "A"})
	require.NoError(t, err)
	assert.Equal(t, []record.Ref{a}, refs)

	n, err := f.engine.CountMatching(ctx, m, map[string]any{"ref": "Z"})
	require.NoError(t, err)
	assert.Zero(t, n)
}
