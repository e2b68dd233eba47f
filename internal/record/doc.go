// Package record describes the records the serializer reads and writes and the
// store contract it reads and writes them through.
//
// # Record types
//
// A RecordType is a named list of attributes. Each Attribute has a Kind, the
// closed set of value shapes the engine knows about:
//
//   - scalars: boolean, char, text, html, integer, float, monetary, selection,
//     date, datetime
//   - relations: many2one (single reference), one2many and many2many (to-many)
//   - binary, which has no transform rule
//
// Every record type implicitly carries an "id" attribute (the record's UUID
// as a string) and a "write_date" attribute (the last-modified timestamp).
//
// # Stores
//
// Store is implemented by memstore (in process) and gormstore (SQL through
// GORM). Reads return Go values: relations come back as Ref or []Ref.
// Writes accept scalars, ids for many2one and []Command for to-many
// attributes, mirroring the clear/link/create instructions produced while
// importing nested payloads.
//
// # Domains
//
// A Domain is a list of (field, operator, value) conditions that are ANDed
// together. Stores share Domain.Match so both evaluate queries identically.
package record
