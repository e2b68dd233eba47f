// Package engine converts records into nested JSON-like maps and back
// according to a linked mapping.Set.
//
// Serialization walks relations recursively. Every branch carries the path
// of (record, mapping) pairs leading to it, so a record reached again
// through the same mapping is a cycle: it either fails with ErrLoopDetected
// or is cut off with an empty value, depending on raise_on_duplicate of the
// mapping the call started on. Sibling branches never see each other's
// visits.
//
// Deserialization turns a payload into attribute values keyed by attribute
// name. Importing then resolves nested relational values against the
// record store, using each related mapping's match domain to link existing
// records or create new ones.
package engine
