// Package record maps raw storage rows onto typed, codec-decoded records.
package record

import (
	"modelite/internal/codec"
	"modelite/internal/schema"
	"modelite/internal/value"
)

// View selects how much of a record's bookkeeping a caller sees.
type View int

const (
	// ViewPublic strips created_at/updated_at/deleted_at from the output.
	ViewPublic View = iota
	// ViewComplete retains the bookkeeping columns.
	ViewComplete
)

// Record is one decoded row: the id, the application fields keyed by column
// name, and the engine-managed bookkeeping timestamps.
//
// Bookkeeping fields are ISO-8601 strings, empty when absent. DeletedAt is
// non-empty exactly when the row has been soft-deleted. An empty ID marks a
// record that has not been persisted yet.
type Record struct {
	ID     string
	Fields map[string]value.Value

	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// Deleted reports whether the record carries a soft-delete mark.
func (r Record) Deleted() bool {
	return r.DeletedAt != ""
}

// Get returns the decoded value for an application column.
// Columns the schema declares always have an entry (Null when unset).
func (r Record) Get(name string) (value.Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Clone returns a shallow-field copy of the record. Field values are
// immutable by convention, so sharing them is safe.
func (r Record) Clone() Record {
	fields := make(map[string]value.Value, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// FromRow decodes a raw storage row into a Record.
//
// Every column the schema declares is present in Fields even when the raw
// row omits it (missing decodes to Null), so the mapping from schema to
// record shape is total and stable. Bookkeeping columns are decoded when
// the view retains them; ViewPublic drops them from the result.
func FromRow(row map[string]any, table *schema.Table, view View) Record {
	rec := Record{
		Fields: make(map[string]value.Value, len(table.Columns)),
	}

	if raw, ok := row[schema.ColID]; ok && raw != nil {
		if s, ok := codec.Decode(raw, schema.TypeString).(value.String); ok {
			rec.ID = string(s)
		}
	}

	for _, col := range table.Columns {
		raw, ok := row[col.Name]
		if !ok {
			rec.Fields[col.Name] = value.Null{}
			continue
		}
		rec.Fields[col.Name] = codec.Decode(raw, col.Type)
	}

	if view == ViewComplete {
		rec.CreatedAt = bookkeepingString(row, schema.ColCreatedAt)
		rec.UpdatedAt = bookkeepingString(row, schema.ColUpdatedAt)
		rec.DeletedAt = bookkeepingString(row, schema.ColDeletedAt)
	}

	return rec
}

// bookkeepingString extracts a timestamp column as its stored text,
// empty for absent or NULL.
func bookkeepingString(row map[string]any, name string) string {
	raw, ok := row[name]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := codec.Decode(raw, schema.TypeString).(value.String); ok {
		return string(s)
	}
	return ""
}
