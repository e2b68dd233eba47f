// Package gormstore implements record.Store on a relational database through
// gorm. Every record lives in one "records" table with its attribute values
// kept as a JSON document.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"record-serializer/internal/record"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnsupportedDriver is returned by Open for unknown driver names.
var ErrUnsupportedDriver = errors.New("unsupported store driver")

// Store is a record.Store backed by gorm.
type Store struct {
	db      *gorm.DB
	catalog *record.Catalog
}

// Open connects to the database and migrates the records table.
func Open(driver, dsn string, catalog *record.Catalog) (*Store, error) {
	var dialector gorm.Dialector

	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = ":memory:"
		}

		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver != DriverPostgres {
		// Every connection to an in-memory sqlite database sees its own
		// database, so the pool is pinned to one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying database: %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return New(db, catalog)
}

// New wraps an open database and migrates the records table.
func New(db *gorm.DB, catalog *record.Catalog) (*Store, error) {
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db, catalog: catalog}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}

	return sqlDB.Close()
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Catalog implements record.Store.
func (s *Store) Catalog() *record.Catalog {
	return s.catalog
}

// Search implements record.Store. The record type and id restrictions are
// pushed down to SQL, the rest of the domain is matched per record.
func (s *Store) Search(ctx context.Context, model string, domain record.Domain) ([]record.Ref, error) {
	if err := domain.Validate(); err != nil {
		return nil, err
	}

	rt := s.catalog.Get(model)
	if rt == nil {
		return nil, fmt.Errorf("%w: %s", record.ErrUnknownModel, model)
	}

	tx := s.db.WithContext(ctx)
	query := tx.Where("model = ?", model)

	if ids, ok := domain.IDs(); ok {
		if len(ids) == 0 {
			return []record.Ref{}, nil
		}

		query = query.Where("id IN ?", ids)
	}

	var rows []recordRow
	if err := query.Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", model, err)
	}

	refs := make([]record.Ref, 0, len(rows))

	for i := range rows {
		row := &rows[i]

		ok, err := domain.Match(func(field string) (any, error) {
			return s.read(tx, rt, row, field)
		})
		if err != nil {
			return nil, err
		}

		if ok {
			refs = append(refs, record.NewRef(model, row.ID))
		}
	}

	return refs, nil
}

// Read implements record.Store.
func (s *Store) Read(ctx context.Context, ref record.Ref, attr string) (any, error) {
	tx := s.db.WithContext(ctx)

	row, rt, err := s.load(tx, ref)
	if err != nil {
		return nil, err
	}

	return s.read(tx, rt, row, attr)
}

// LastModified implements record.Store.
func (s *Store) LastModified(ctx context.Context, ref record.Ref) (time.Time, error) {
	row, _, err := s.load(s.db.WithContext(ctx), ref)
	if err != nil {
		return time.Time{}, err
	}

	return row.UpdatedAt.UTC(), nil
}

// Create implements record.Store.
func (s *Store) Create(ctx context.Context, model string, values map[string]any) (record.Ref, error) {
	var ref record.Ref

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ref, err = s.create(tx, model, values)

		return err
	})
	if err != nil {
		return record.Ref{}, err
	}

	return ref, nil
}

// Write implements record.Store.
func (s *Store) Write(ctx context.Context, ref record.Ref, values map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, rt, err := s.load(tx, ref)
		if err != nil {
			return err
		}

		return s.write(tx, rt, row, values)
	})
}

func (s *Store) load(tx *gorm.DB, ref record.Ref) (*recordRow, *record.RecordType, error) {
	rt := s.catalog.Get(ref.Model)
	if rt == nil {
		return nil, nil, fmt.Errorf("%w: %s", record.ErrUnknownModel, ref.Model)
	}

	var row recordRow
	if err := tx.First(&row, "id = ? AND model = ?", ref.ID, ref.Model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", record.ErrNotFound, ref)
		}

		return nil, nil, fmt.Errorf("failed to load %s: %w", ref, err)
	}

	if row.Data == nil {
		row.Data = Values{}
	}

	return &row, rt, nil
}

func (s *Store) read(tx *gorm.DB, rt *record.RecordType, row *recordRow, name string) (any, error) {
	attr, ok := rt.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", record.ErrUnknownAttribute, rt.Name, name)
	}

	switch {
	case attr.Name == record.AttrID:
		return row.ID.String(), nil
	case attr.Name == record.AttrWriteDate:
		return row.UpdatedAt.UTC(), nil
	case attr.Kind == record.KindMany2One:
		id := decodeID(row.Data[attr.Name])
		if id == uuid.Nil {
			return record.Ref{}, nil
		}

		return record.NewRef(attr.Relation, id), nil
	case attr.Kind == record.KindOne2Many:
		children, err := s.children(tx, attr, row.ID)
		if err != nil {
			return nil, err
		}

		refs := make([]record.Ref, len(children))
		for i := range children {
			refs[i] = record.NewRef(attr.Relation, children[i].ID)
		}

		return refs, nil
	case attr.Kind == record.KindMany2Many:
		ids := decodeIDs(row.Data[attr.Name])
		refs := make([]record.Ref, len(ids))

		for i, id := range ids {
			refs[i] = record.NewRef(attr.Relation, id)
		}

		return refs, nil
	default:
		return decode(attr, row.Data[attr.Name])
	}
}

// children returns the rows whose inverse many2one points at owner. The
// inverse is matched inside the JSON document by the database; rows are
// checked again after decoding.
func (s *Store) children(tx *gorm.DB, attr *record.Attribute, owner uuid.UUID) ([]recordRow, error) {
	query := tx.Where("model = ?", attr.Relation)

	switch tx.Dialector.Name() {
	case DriverSQLite:
		query = query.Where("json_extract(data, ?) = ?", "$."+attr.Inverse, owner.String())
	case DriverPostgres:
		query = query.Where("(data::jsonb ->> ?) = ?", attr.Inverse, owner.String())
	default:
	}

	var rows []recordRow
	if err := query.Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", attr.Name, err)
	}

	return slices.DeleteFunc(rows, func(r recordRow) bool {
		return decodeID(r.Data[attr.Inverse]) != owner
	}), nil
}

func (s *Store) exists(tx *gorm.DB, model string, id uuid.UUID) (bool, error) {
	var n int64
	if err := tx.Model(&recordRow{}).Where("id = ? AND model = ?", id, model).Count(&n).Error; err != nil {
		return false, err
	}

	return n > 0, nil
}

func (s *Store) create(tx *gorm.DB, model string, values map[string]any) (record.Ref, error) {
	rt := s.catalog.Get(model)
	if rt == nil {
		return record.Ref{}, fmt.Errorf("%w: %s", record.ErrUnknownModel, model)
	}

	var seq int64
	if err := tx.Model(&recordRow{}).Select("COALESCE(MAX(seq), 0)").Scan(&seq).Error; err != nil {
		return record.Ref{}, fmt.Errorf("failed to allocate %s: %w", model, err)
	}

	row := &recordRow{ID: uuid.New(), Model: model, Seq: seq + 1, Data: Values{}}
	if err := tx.Create(row).Error; err != nil {
		return record.Ref{}, fmt.Errorf("failed to create %s: %w", model, err)
	}

	if err := s.write(tx, rt, row, values); err != nil {
		return record.Ref{}, err
	}

	return record.NewRef(model, row.ID), nil
}

func (s *Store) write(tx *gorm.DB, rt *record.RecordType, row *recordRow, values map[string]any) error {
	type pending struct {
		attr *record.Attribute
		cmds []record.Command
	}

	var deferred []pending

	data := maps.Clone(row.Data)
	if data == nil {
		data = Values{}
	}

	for _, name := range slices.Sorted(maps.Keys(values)) {
		attr, ok := rt.Attribute(name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", record.ErrUnknownAttribute, rt.Name, name)
		}

		if attr.Readonly {
			continue
		}

		switch attr.Kind {
		case record.KindMany2One:
			id, err := record.NormalizeID(values[name])
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			if id == uuid.Nil {
				delete(data, name)
				continue
			}

			found, err := s.exists(tx, attr.Relation, id)
			if err != nil {
				return err
			}

			if !found {
				return fmt.Errorf("%s: %w: %s", name, record.ErrNotFound, id)
			}

			data[name] = id.String()
		case record.KindOne2Many, record.KindMany2Many:
			cmds, err := record.NormalizeCommands(values[name])
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			deferred = append(deferred, pending{attr: attr, cmds: cmds})
		default:
			v, err := record.NormalizeValue(attr, values[name])
			if err != nil {
				return err
			}

			if v == nil {
				delete(data, name)
				continue
			}

			data[name] = encode(attr, v)
		}
	}

	row.Data = data
	if err := tx.Save(row).Error; err != nil {
		return fmt.Errorf("failed to write %s: %w", row.Model, err)
	}

	if len(deferred) == 0 {
		return nil
	}

	for _, p := range deferred {
		if err := s.applyCommands(tx, p.attr, row, p.cmds); err != nil {
			return err
		}
	}

	if err := tx.Save(row).Error; err != nil {
		return fmt.Errorf("failed to write %s: %w", row.Model, err)
	}

	return nil
}

func (s *Store) applyCommands(tx *gorm.DB, attr *record.Attribute, owner *recordRow, cmds []record.Command) error {
	for _, cmd := range cmds {
		switch cmd.Op {
		case record.OpClear:
			if attr.Kind == record.KindMany2Many {
				owner.Data[attr.Name] = []any{}
				continue
			}

			children, err := s.children(tx, attr, owner.ID)
			if err != nil {
				return err
			}

			for i := range children {
				delete(children[i].Data, attr.Inverse)

				if err := tx.Save(&children[i]).Error; err != nil {
					return fmt.Errorf("failed to unlink %s: %w", attr.Name, err)
				}
			}
		case record.OpLink:
			if err := s.link(tx, attr, owner, cmd.ID); err != nil {
				return err
			}
		case record.OpCreate:
			values := maps.Clone(cmd.Values)
			if values == nil {
				values = make(map[string]any)
			}

			if attr.Kind == record.KindOne2Many {
				values[attr.Inverse] = owner.ID
			}

			ref, err := s.create(tx, attr.Relation, values)
			if err != nil {
				return fmt.Errorf("%s: %w", attr.Name, err)
			}

			if attr.Kind == record.KindMany2Many {
				if err := s.link(tx, attr, owner, ref.ID); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (s *Store) link(tx *gorm.DB, attr *record.Attribute, owner *recordRow, id uuid.UUID) error {
	if attr.Kind == record.KindMany2Many {
		found, err := s.exists(tx, attr.Relation, id)
		if err != nil {
			return err
		}

		if !found {
			return fmt.Errorf("%s: %w: %s", attr.Name, record.ErrNotFound, id)
		}

		ids := decodeIDs(owner.Data[attr.Name])
		if !slices.Contains(ids, id) {
			owner.Data[attr.Name] = encodeIDs(append(ids, id))
		}

		return nil
	}

	target, _, err := s.load(tx, record.NewRef(attr.Relation, id))
	if err != nil {
		return fmt.Errorf("%s: %w", attr.Name, err)
	}

	target.Data[attr.Inverse] = owner.ID.String()

	if err := tx.Save(target).Error; err != nil {
		return fmt.Errorf("failed to link %s: %w", attr.Name, err)
	}

	return nil
}
