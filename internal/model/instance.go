package model

import (
	"context"

	"modelite/internal/record"
	"modelite/internal/schema"
	"modelite/internal/value"
)

// Instance is a mutable handle on one record, bound to its model. It exists
// for callers who prefer object-style save/update/delete over the facade's
// id-addressed operations.
type Instance struct {
	model *Model
	rec   record.Record
}

// NewInstance creates a transient (unsaved) instance carrying the given
// fields. The instance has no id until Save persists it.
func (m *Model) NewInstance(fields map[string]value.Value) *Instance {
	rec := record.Record{Fields: make(map[string]value.Value, len(fields))}
	for k, v := range fields {
		if k == schema.ColID {
			if s, ok := v.(value.String); ok {
				rec.ID = string(s)
			}
			continue
		}
		rec.Fields[k] = v
	}
	return &Instance{model: m, rec: rec}
}

// Wrap binds an already-persisted record to the model.
func (m *Model) Wrap(rec record.Record) *Instance {
	return &Instance{model: m, rec: rec.Clone()}
}

// Record returns a copy of the instance's current record.
func (i *Instance) Record() record.Record {
	return i.rec.Clone()
}

// ID returns the instance's id, empty while transient.
func (i *Instance) ID() string {
	return i.rec.ID
}

// Save persists the instance. A transient instance (empty id) routes to
// Create and the stored row - id and bookkeeping included - is merged back
// into the handle, so the handle and the facade's return value describe the
// same row. A persisted instance routes to Update with its full field map.
func (i *Instance) Save(ctx context.Context) (record.Record, error) {
	if i.rec.ID == "" {
		fields := ownedFields(i.rec)
		stored, err := i.model.Create(ctx, fields)
		if err != nil {
			return record.Record{}, err
		}
		i.rec = stored.Clone()
		return stored, nil
	}

	stored, err := i.model.Update(ctx, i.rec.ID, ownedFields(i.rec))
	if err != nil {
		return record.Record{}, err
	}
	i.rec = stored.Clone()
	return stored, nil
}

// Update applies a partial field map to the persisted row and merges the
// result back into the handle.
func (i *Instance) Update(ctx context.Context, partial map[string]value.Value) (record.Record, error) {
	if i.rec.ID == "" {
		return record.Record{}, i.model.missingIdentity("update")
	}
	stored, err := i.model.Update(ctx, i.rec.ID, partial)
	if err != nil {
		return record.Record{}, err
	}
	i.rec = stored.Clone()
	return stored, nil
}

// Delete removes the instance's row. On a soft-deleting table the handle
// stays usable (Restore via the facade brings the row back); on a hard
// delete the handle keeps its last known fields but the row is gone.
func (i *Instance) Delete(ctx context.Context) (string, error) {
	if i.rec.ID == "" {
		return "", i.model.missingIdentity("delete")
	}
	return i.model.Delete(ctx, i.rec.ID)
}

// ownedFields extracts the application columns (plus id when set) as a
// field map for statement generation.
func ownedFields(rec record.Record) map[string]value.Value {
	fields := make(map[string]value.Value, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		fields[k] = v
	}
	if rec.ID != "" {
		fields[schema.ColID] = value.String(rec.ID)
	}
	return fields
}
