// Package sqlgen synthesizes SQL statements from a table schema.
//
// Every value reaches the engine as a bind parameter - statement text never
// contains interpolated literals. The only expressions embedded in SQL are
// the engine's own current-timestamp function and the NULL keyword.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"modelite/internal/codec"
	"modelite/internal/schema"
	"modelite/internal/value"
)

// NowExpr is the engine-side current-timestamp expression. Bookkeeping
// columns are stamped by the storage engine, not the client, so a batch of
// writes shares one consistent notion of "now" per statement.
// The format is ISO-8601 UTC with millisecond precision.
const NowExpr = "strftime('%Y-%m-%dT%H:%M:%fZ','now')"

// Statement is a complete SQL statement with its bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Builder errors. The facade maps these onto its error taxonomy.
var (
	// ErrMissingID is returned when an operation that addresses a single
	// row is invoked without a usable id.
	ErrMissingID = errors.New("sqlgen: missing id")

	// ErrNoAssignments is returned by Update when the field map holds no
	// application column to assign. The facade treats this as a fallback
	// read, not a failure.
	ErrNoAssignments = errors.New("sqlgen: update has no assignments")

	// ErrSoftDeleteDisabled is returned by Restore when the schema is not
	// configured for soft deletes.
	ErrSoftDeleteDisabled = errors.New("sqlgen: soft deletes not enabled")

	// ErrUnknownColumn is returned when a select targets a column the
	// schema does not declare.
	ErrUnknownColumn = errors.New("sqlgen: unknown column")
)

// Builder synthesizes statements for one table.
//
// Builder is stateless apart from its injected id generator; methods are
// pure transformations of the schema plus the supplied field maps and are
// safe for concurrent use when the generator is.
type Builder struct {
	table *schema.Table
	ids   IDGenerator
}

// NewBuilder creates a Builder for the given table. A nil generator
// defaults to random UUIDv4 ids.
func NewBuilder(table *schema.Table, ids IDGenerator) *Builder {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Builder{table: table, ids: ids}
}

// Insert builds an INSERT for the given field map and returns the statement
// together with the row id it will create.
//
// Only columns present as keys in the field map are included - partial
// records are legal on insert; unspecified columns are omitted from the
// column list, not set to NULL. When the map carries no usable id, a new
// one is generated. Timestamp columns bind to the engine's current-timestamp
// expression; soft-delete schemas start with an explicit NULL deleted_at.
// The statement ends in RETURNING * so the caller observes engine-computed
// bookkeeping values.
func (b *Builder) Insert(fields map[string]value.Value) (Statement, string) {
	id := ownedID(fields)
	if id == "" {
		id = b.ids.Generate()
	}

	columns := []string{quoteIdent(schema.ColID)}
	exprs := []string{"?"}
	args := []any{id}

	for _, col := range b.table.Columns {
		v, ok := fields[col.Name]
		if !ok {
			continue
		}
		columns = append(columns, quoteIdent(col.Name))
		exprs = append(exprs, "?")
		args = append(args, codec.Encode(v, col.Type))
	}

	if b.table.Timestamps {
		columns = append(columns, quoteIdent(schema.ColCreatedAt), quoteIdent(schema.ColUpdatedAt))
		exprs = append(exprs, NowExpr, NowExpr)
	}
	if b.table.SoftDeletes {
		columns = append(columns, quoteIdent(schema.ColDeletedAt))
		exprs = append(exprs, "NULL")
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quoteIdent(b.table.Name),
		strings.Join(columns, ", "),
		strings.Join(exprs, ", "))

	return Statement{SQL: sql, Args: args}, id
}

// Update builds an UPDATE for the given field map, which must carry a
// non-empty id.
//
// One assignment is emitted per schema column present as an owned key in
// the map: absence means "leave unchanged", an explicit Null means "set to
// NULL" - presence, not truthiness, is what distinguishes them. Returns
// ErrNoAssignments when no application column is present; the caller is
// expected to fall back to a fetch-by-id.
//
// Updates address live rows only: on a soft-deleting schema the WHERE
// clause carries the deleted_at IS NULL predicate, so a soft-deleted row
// must be restored before it can change.
func (b *Builder) Update(fields map[string]value.Value) (Statement, error) {
	id := ownedID(fields)
	if id == "" {
		return Statement{}, ErrMissingID
	}

	var assignments []string
	var args []any

	for _, col := range b.table.Columns {
		v, ok := fields[col.Name]
		if !ok {
			continue
		}
		assignments = append(assignments, quoteIdent(col.Name)+" = ?")
		args = append(args, codec.Encode(v, col.Type))
	}

	if len(assignments) == 0 {
		return Statement{}, ErrNoAssignments
	}

	if b.table.Timestamps {
		assignments = append(assignments, quoteIdent(schema.ColUpdatedAt)+" = "+NowExpr)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?%s RETURNING *",
		quoteIdent(b.table.Name),
		strings.Join(assignments, ", "),
		quoteIdent(schema.ColID),
		b.liveRowsClause(false, true))
	args = append(args, id)

	return Statement{SQL: sql, Args: args}, nil
}

// Delete builds the removal statement for id: an UPDATE stamping
// deleted_at when the schema soft-deletes, a hard DELETE otherwise.
func (b *Builder) Delete(id string) (Statement, error) {
	if id == "" {
		return Statement{}, ErrMissingID
	}

	if b.table.SoftDeletes {
		sql := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = ?",
			quoteIdent(b.table.Name),
			quoteIdent(schema.ColDeletedAt),
			NowExpr,
			quoteIdent(schema.ColID))
		return Statement{SQL: sql, Args: []any{id}}, nil
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		quoteIdent(b.table.Name),
		quoteIdent(schema.ColID))
	return Statement{SQL: sql, Args: []any{id}}, nil
}

// Restore builds the statement that clears deleted_at for id.
// Valid only when the schema is configured for soft deletes.
func (b *Builder) Restore(id string) (Statement, error) {
	if !b.table.SoftDeletes {
		return Statement{}, ErrSoftDeleteDisabled
	}
	if id == "" {
		return Statement{}, ErrMissingID
	}

	sql := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = ? RETURNING *",
		quoteIdent(b.table.Name),
		quoteIdent(schema.ColDeletedAt),
		quoteIdent(schema.ColID))
	return Statement{SQL: sql, Args: []any{id}}, nil
}

// SelectAll builds the statement listing every row. Soft-deleted rows are
// excluded unless includeDeleted is set. Results carry a deterministic
// ORDER BY id.
func (b *Builder) SelectAll(includeDeleted bool) Statement {
	sql := fmt.Sprintf("SELECT * FROM %s%s ORDER BY %s ASC",
		quoteIdent(b.table.Name),
		b.liveRowsClause(includeDeleted, false),
		quoteIdent(schema.ColID))
	return Statement{SQL: sql}
}

// SelectByID builds the single-row lookup for id.
func (b *Builder) SelectByID(id string, includeDeleted bool) (Statement, error) {
	if id == "" {
		return Statement{}, ErrMissingID
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?%s ORDER BY %s ASC LIMIT 1",
		quoteIdent(b.table.Name),
		quoteIdent(schema.ColID),
		b.liveRowsClause(includeDeleted, true),
		quoteIdent(schema.ColID))
	return Statement{SQL: sql, Args: []any{id}}, nil
}

// SelectByColumn builds the single-row lookup matching column = v.
// The value goes through the codec so the comparison uses the column's
// storage representation.
func (b *Builder) SelectByColumn(column string, v value.Value, includeDeleted bool) (Statement, error) {
	col, ok := b.table.Column(column)
	if !ok {
		return Statement{}, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?%s ORDER BY %s ASC LIMIT 1",
		quoteIdent(b.table.Name),
		quoteIdent(col.Name),
		b.liveRowsClause(includeDeleted, true),
		quoteIdent(schema.ColID))
	return Statement{SQL: sql, Args: []any{codec.Encode(v, col.Type)}}, nil
}

// liveRowsClause returns the soft-delete visibility predicate, empty when
// the schema does not soft-delete or the caller asked for deleted rows.
// hasWhere selects between "WHERE" and "AND" prefixes.
func (b *Builder) liveRowsClause(includeDeleted, hasWhere bool) string {
	if !b.table.SoftDeletes || includeDeleted {
		return ""
	}
	prefix := " WHERE "
	if hasWhere {
		prefix = " AND "
	}
	return prefix + quoteIdent(schema.ColDeletedAt) + " IS NULL"
}

// ownedID extracts a non-empty string id from a field map.
func ownedID(fields map[string]value.Value) string {
	v, ok := fields[schema.ColID]
	if !ok {
		return ""
	}
	s, ok := v.(value.String)
	if !ok {
		return ""
	}
	return string(s)
}

// quoteIdent double-quote escapes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
