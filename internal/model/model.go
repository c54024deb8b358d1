// Package model is the facade application code talks to: schema-checked,
// validated CRUD over one table, with soft-delete lifecycle and raw-query
// escape hatch.
//
// There is no optimistic concurrency token: concurrent updates to the same
// id are last-write-wins per statement.
package model

import (
	"context"
	"errors"
	"fmt"

	"modelite/internal/record"
	"modelite/internal/schema"
	"modelite/internal/sqlgen"
	"modelite/internal/validate"
	"modelite/internal/value"
)

// Executor runs generated statements. store.Store implements it; tests may
// substitute a fake.
type Executor interface {
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

// QueryOption adjusts read operations.
type QueryOption func(*queryOptions)

type queryOptions struct {
	includeDeleted bool
}

// IncludeDeleted makes a find operation return soft-deleted rows too.
// By default every find excludes them.
func IncludeDeleted() QueryOption {
	return func(o *queryOptions) { o.includeDeleted = true }
}

func applyOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Model is the facade for one table. All collaborators are injected at
// construction; Model holds no hidden state and is safe for concurrent use
// when its executor is.
type Model struct {
	table     *schema.Table
	exec      Executor
	validator *validate.Validator
	builder   *sqlgen.Builder
}

// New constructs a Model over table and exec.
//
// A nil validator defaults to validate.New(); a nil generator defaults to
// random UUIDv4 ids. The schema is validated here so a malformed table
// fails at construction, not at first use.
func New(table *schema.Table, exec Executor, v *validate.Validator, ids sqlgen.IDGenerator) (*Model, error) {
	if table == nil {
		return nil, errors.New("model: nil table")
	}
	if exec == nil {
		return nil, errors.New("model: nil executor")
	}
	if verrs := table.Validate(); len(verrs) > 0 {
		return nil, &Error{
			Code:    ErrCodeSchemaViolation,
			Op:      "new",
			Table:   table.Name,
			Message: fmt.Sprintf("invalid schema: %s", verrs[0].Error()),
		}
	}
	if v == nil {
		v = validate.New()
	}
	return &Model{
		table:     table,
		exec:      exec,
		validator: v,
		builder:   sqlgen.NewBuilder(table, ids),
	}, nil
}

// Table returns the schema this model serves.
func (m *Model) Table() *schema.Table {
	return m.table
}

// Create validates fields, inserts a row, and returns the stored record
// with engine-computed bookkeeping. The returned record always carries a
// non-empty id. Incoming string values are canonicalized to Unicode NFC
// before validation; the stored and returned text is the NFC form.
func (m *Model) Create(ctx context.Context, fields map[string]value.Value) (record.Record, error) {
	const op = "create"

	fields = normalizeFields(fields)
	if err := m.checkColumns(op, fields); err != nil {
		return record.Record{}, err
	}
	if err := m.validator.Validate(m.table, fields); err != nil {
		return record.Record{}, m.validationError(op, err)
	}

	stmt, id := m.builder.Insert(fields)
	rows, err := m.exec.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return record.Record{}, m.storageError(op, id, err)
	}
	if len(rows) == 0 {
		return record.Record{}, m.storageError(op, id, errors.New("insert returned no row"))
	}
	return record.FromRow(rows[0], m.table, record.ViewComplete), nil
}

// Update applies a partial field map to the row with the given id.
//
// Absent columns are left unchanged; an explicit Null sets the column to
// NULL. An empty field map degenerates to a fetch: the current row is
// returned untouched. created_at is never altered; updated_at is refreshed
// by the engine.
//
// Updates address live rows only: a soft-deleted row is NotFound whether
// the field map is empty or not - restore it first.
func (m *Model) Update(ctx context.Context, id string, partial map[string]value.Value) (record.Record, error) {
	const op = "update"

	if id == "" {
		return record.Record{}, m.missingIdentity(op)
	}
	partial = normalizeFields(partial)
	if err := m.checkColumns(op, partial); err != nil {
		return record.Record{}, err
	}
	if err := m.validator.ValidatePartial(m.table, partial); err != nil {
		return record.Record{}, m.validationError(op, err)
	}

	fields := make(map[string]value.Value, len(partial)+1)
	for k, v := range partial {
		fields[k] = v
	}
	fields[schema.ColID] = value.String(id)

	stmt, err := m.builder.Update(fields)
	if errors.Is(err, sqlgen.ErrNoAssignments) {
		rec, ferr := m.FindByID(ctx, id)
		if ferr != nil {
			return record.Record{}, ferr
		}
		if rec == nil {
			return record.Record{}, m.notFound(op, id)
		}
		return *rec, nil
	}
	if err != nil {
		return record.Record{}, m.storageError(op, id, err)
	}

	rows, err := m.exec.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return record.Record{}, m.storageError(op, id, err)
	}
	if len(rows) == 0 {
		return record.Record{}, m.notFound(op, id)
	}
	return record.FromRow(rows[0], m.table, record.ViewComplete), nil
}

// Delete removes the row with the given id - a soft delete stamping
// deleted_at when the schema enables it, a hard DELETE otherwise - and
// returns a human-readable outcome message.
func (m *Model) Delete(ctx context.Context, id string) (string, error) {
	const op = "delete"

	if id == "" {
		return "", m.missingIdentity(op)
	}

	stmt, err := m.builder.Delete(id)
	if err != nil {
		return "", m.storageError(op, id, err)
	}

	affected, err := m.exec.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return "", m.storageError(op, id, err)
	}
	if affected == 0 {
		return "", m.notFound(op, id)
	}

	if m.table.SoftDeletes {
		return fmt.Sprintf("soft-deleted %s id=%s", m.table.Name, id), nil
	}
	return fmt.Sprintf("deleted %s id=%s", m.table.Name, id), nil
}

// Restore clears the soft-delete mark on the row with the given id and
// returns the restored record. Fails with a schema violation when the table
// does not soft-delete.
func (m *Model) Restore(ctx context.Context, id string) (record.Record, error) {
	const op = "restore"

	if id == "" {
		return record.Record{}, m.missingIdentity(op)
	}

	stmt, err := m.builder.Restore(id)
	if errors.Is(err, sqlgen.ErrSoftDeleteDisabled) {
		return record.Record{}, &Error{
			Code:    ErrCodeSchemaViolation,
			Op:      op,
			Table:   m.table.Name,
			ID:      id,
			Message: "table does not soft-delete",
			Err:     err,
		}
	}
	if err != nil {
		return record.Record{}, m.storageError(op, id, err)
	}

	rows, err := m.exec.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return record.Record{}, m.storageError(op, id, err)
	}
	if len(rows) == 0 {
		return record.Record{}, m.notFound(op, id)
	}
	return record.FromRow(rows[0], m.table, record.ViewComplete), nil
}

// FindByID returns the record with the given id, or nil when no such row is
// visible. Absence is a normal outcome, not an error. Soft-deleted rows are
// hidden unless IncludeDeleted is passed.
func (m *Model) FindByID(ctx context.Context, id string, opts ...QueryOption) (*record.Record, error) {
	const op = "find_by_id"
	o := applyOptions(opts)

	if id == "" {
		return nil, m.missingIdentity(op)
	}

	stmt, err := m.builder.SelectByID(id, o.includeDeleted)
	if err != nil {
		return nil, m.storageError(op, id, err)
	}
	return m.findOneRow(ctx, op, stmt)
}

// FindOne returns the first record (by id order) whose column equals v, or
// nil when none is visible.
func (m *Model) FindOne(ctx context.Context, column string, v value.Value, opts ...QueryOption) (*record.Record, error) {
	const op = "find_one"
	o := applyOptions(opts)

	stmt, err := m.builder.SelectByColumn(column, value.NormalizeNFC(v), o.includeDeleted)
	if errors.Is(err, sqlgen.ErrUnknownColumn) {
		return nil, &Error{
			Code:    ErrCodeSchemaViolation,
			Op:      op,
			Table:   m.table.Name,
			Column:  column,
			Message: "unknown column",
			Err:     err,
		}
	}
	if err != nil {
		return nil, m.storageError(op, "", err)
	}
	return m.findOneRow(ctx, op, stmt)
}

// FindAll returns every visible record in id order. The result is an empty
// slice, never nil, when the table is empty.
func (m *Model) FindAll(ctx context.Context, opts ...QueryOption) ([]record.Record, error) {
	const op = "find_all"
	o := applyOptions(opts)

	stmt := m.builder.SelectAll(o.includeDeleted)
	rows, err := m.exec.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, m.storageError(op, "", err)
	}

	records := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, record.FromRow(row, m.table, record.ViewComplete))
	}
	return records, nil
}

// RawQuery passes an arbitrary statement to the executor and returns the
// raw rows. No soft-delete filtering, no decoding - the caller sees exactly
// what storage returns.
func (m *Model) RawQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := m.exec.Query(ctx, query, args...)
	if err != nil {
		return nil, m.storageError("raw_query", "", err)
	}
	return rows, nil
}

func (m *Model) findOneRow(ctx context.Context, op string, stmt sqlgen.Statement) (*record.Record, error) {
	rows, err := m.exec.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, m.storageError(op, "", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec := record.FromRow(rows[0], m.table, record.ViewComplete)
	return &rec, nil
}

// normalizeFields canonicalizes incoming string values (object keys
// included) to Unicode NFC, so equal-looking text stores and compares
// identically. Column names are schema-owned and left alone.
func normalizeFields(fields map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(fields))
	for k, v := range fields {
		out[k] = value.NormalizeNFC(v)
	}
	return out
}

// checkColumns rejects field maps that reference columns the schema does
// not declare. The id key is legal (caller-owned identity); bookkeeping
// columns are engine-managed and never writable.
func (m *Model) checkColumns(op string, fields map[string]value.Value) error {
	for name := range fields {
		if name == schema.ColID {
			continue
		}
		if _, ok := m.table.Column(name); ok {
			continue
		}
		msg := "unknown column"
		if m.table.IsBookkeeping(name) {
			msg = "bookkeeping column is engine-managed"
		}
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Op:      op,
			Table:   m.table.Name,
			Column:  name,
			Message: msg,
		}
	}
	return nil
}

func (m *Model) missingIdentity(op string) error {
	return &Error{
		Code:    ErrCodeMissingIdentity,
		Op:      op,
		Table:   m.table.Name,
		Message: "operation requires an id",
	}
}

func (m *Model) notFound(op, id string) error {
	return &Error{
		Code:    ErrCodeNotFound,
		Op:      op,
		Table:   m.table.Name,
		ID:      id,
		Message: "no such row",
	}
}

func (m *Model) validationError(op string, err error) error {
	e := &Error{
		Code:    ErrCodeValidationFailed,
		Op:      op,
		Table:   m.table.Name,
		Message: "validation failed",
		Err:     err,
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		e.Fields = verr.Fields
	}
	return e
}

func (m *Model) storageError(op, id string, err error) error {
	return &Error{
		Code:    ErrCodeStorageFailed,
		Op:      op,
		Table:   m.table.Name,
		ID:      id,
		Message: "storage engine rejected statement",
		Err:     err,
	}
}
