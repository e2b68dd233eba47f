package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"record-serializer/internal/mapping"
	"record-serializer/internal/record"
	"record-serializer/internal/record/memstore"
)

const partnerYAML = `
models:
  - name: partner
    attributes:
      - {name: name, kind: char}
      - {name: ref, kind: char}
      - {name: birthday, kind: date}
      - {name: avatar, kind: binary}
      - {name: parent_id, kind: many2one, relation: partner}
      - {name: child_ids, kind: one2many, relation: partner, inverse: parent_id}
      - {name: tag_ids, kind: many2many, relation: tag}
  - name: tag
    attributes:
      - {name: name, kind: char}
mappings:
  - name: partner
    model: partner
    import_domain: '[["ref", "=", ref]]'
    fields:
      - attribute: name
      - attribute: ref
      - attribute: birthday
      - attribute: parent_id
        alias: parent
        related: partner
      - attribute: child_ids
        alias: children
        related: partner
      - attribute: tag_ids
        alias: tags
        related: tag
  - name: member
    model: partner
    fields:
      - attribute: name
      - attribute: tag_ids
        alias: tags
        related: tag
  - name: family
    model: partner
    fields:
      - attribute: name
      - attribute: child_ids
        alias: members
        related: member
  - name: unlinked
    model: partner
    fields:
      - attribute: name
      - attribute: parent_id
  - name: raw
    model: partner
    fields:
      - attribute: avatar
  - name: tag
    model: tag
    import_domain: '[["name", "=", name]]'
    fields:
      - attribute: name
`

var stamp = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

type fixture struct {
	engine *Engine
	set    *mapping.Set
	store  *memstore.Store
}

func newFixture(t *testing.T, tweak func(mf *mapping.File), opts ...mapping.BuildOption) *fixture {
	t.Helper()

	mf, err := mapping.Parse([]byte(partnerYAML))
	require.NoError(t, err)

	if tweak != nil {
		tweak(mf)
	}

	set, err := mapping.Build(mf, opts...)
	require.NoError(t, err)

	store := memstore.New(set.Catalog(), memstore.WithClock(func() time.Time { return stamp }))

	return &fixture{engine: New(store), set: set, store: store}
}

func (f *fixture) mapping(t *testing.T, name string) *mapping.Mapping {
	t.Helper()

	m, ok := f.set.Get(name)
	require.True(t, ok, name)

	return m
}

func (f *fixture) create(t *testing.T, model string, values map[string]any) record.Ref {
	t.Helper()

	ref, err := f.store.Create(context.Background(), model, values)
	require.NoError(t, err)

	return ref
}

func (f *fixture) read(t *testing.T, ref record.Ref, attr string) any {
	t.Helper()

	v, err := f.store.Read(context.Background(), ref, attr)
	require.NoError(t, err)

	return v
}

// definition returns the named definition of a parsed file for tweaking.
func definition(mf *mapping.File, name string) *mapping.Definition {
	for i := range mf.Mappings {
		if mf.Mappings[i].Name == name {
			return &mf.Mappings[i]
		}
	}

	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
