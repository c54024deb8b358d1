// Package schema holds the declarative table descriptions that drive
// statement generation, value encoding, and validation.
//
// A Table is constructed once at application start and is read-only
// afterwards. Each table is owned by exactly one model facade.
package schema

// Bookkeeping column names. These are managed by the engine when the
// corresponding table flags are enabled and may not be declared as
// application columns.
const (
	ColID        = "id"
	ColCreatedAt = "created_at"
	ColUpdatedAt = "updated_at"
	ColDeletedAt = "deleted_at"
)

// ColumnType is the logical type of a column's values.
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeNumber ColumnType = "number"
	TypeBool   ColumnType = "bool"
	TypeJSON   ColumnType = "json"
	TypeDate   ColumnType = "date"
)

// knownTypes is the closed set of logical types.
var knownTypes = map[ColumnType]bool{
	TypeString: true,
	TypeNumber: true,
	TypeBool:   true,
	TypeJSON:   true,
	TypeDate:   true,
}

// StorageType is an optional hint for the underlying SQLite column
// affinity. It does not change how values are encoded; the logical type
// owns that.
type StorageType string

const (
	StorageText      StorageType = "text"
	StorageInteger   StorageType = "integer"
	StorageReal      StorageType = "real"
	StorageNumeric   StorageType = "numeric"
	StorageBlob      StorageType = "blob"
	StorageBoolean   StorageType = "boolean"
	StorageTimestamp StorageType = "timestamp"
	StorageDate      StorageType = "date"
)

var knownStorageTypes = map[StorageType]bool{
	StorageText:      true,
	StorageInteger:   true,
	StorageReal:      true,
	StorageNumeric:   true,
	StorageBlob:      true,
	StorageBoolean:   true,
	StorageTimestamp: true,
	StorageDate:      true,
}

// ConstraintKind categorizes column constraints.
type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintDefault    ConstraintKind = "default"
	ConstraintForeignKey ConstraintKind = "foreign_key"
)

// Constraint is a single column constraint. Check constraints carry a
// validation rule expression (consumed by the validation capability, not
// emitted as DDL); Default carries a literal.
type Constraint struct {
	Kind  ConstraintKind
	Value any
}

// Column describes one table column. The logical Type is immutable after
// construction.
type Column struct {
	Name        string
	Type        ColumnType
	Storage     StorageType // optional affinity hint, may be empty
	Required    bool
	Constraints []Constraint
}

// IsPrimaryKey reports whether the column carries a primary key constraint.
func (c Column) IsPrimaryKey() bool {
	for _, con := range c.Constraints {
		if con.Kind == ConstraintPrimaryKey {
			return true
		}
	}
	return false
}

// CheckRule returns the column's check constraint expression, if any.
func (c Column) CheckRule() (string, bool) {
	for _, con := range c.Constraints {
		if con.Kind == ConstraintCheck {
			if s, ok := con.Value.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Table describes one table: its application columns (in SQL column order),
// advisory unique column sets, and the behavior flags that control
// bookkeeping columns.
//
// Persisted layout per table: id TEXT PRIMARY KEY, the application columns,
// then created_at/updated_at when Timestamps, then deleted_at when
// SoftDeletes. The DDL itself is caller-provided; generated statements
// assume exactly this column set.
type Table struct {
	Name        string
	Columns     []Column
	Uniques     [][]string // advisory: informs validation, not DDL
	Timestamps  bool
	SoftDeletes bool
}

// Column returns the column declaration with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the application column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsBookkeeping reports whether name is an engine-managed column for this
// table's configuration.
func (t *Table) IsBookkeeping(name string) bool {
	switch name {
	case ColCreatedAt, ColUpdatedAt:
		return t.Timestamps
	case ColDeletedAt:
		return t.SoftDeletes
	default:
		return false
	}
}
