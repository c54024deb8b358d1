package schema

import "fmt"

// Schema validation error codes (E200-E299)
const (
	ErrTableNameEmpty    = "E200" // table name is required
	ErrNoColumns         = "E201" // at least one column required
	ErrColumnNameEmpty   = "E202" // column name is required
	ErrDuplicateColumn   = "E203" // duplicate column name
	ErrReservedColumn    = "E204" // column name collides with bookkeeping
	ErrUnknownType       = "E205" // unknown logical type
	ErrUnknownStorage    = "E206" // unknown storage type hint
	ErrMultiplePrimary   = "E207" // more than one primary key column
	ErrUniqueUnknownCol  = "E208" // unique set references unknown column
	ErrUnknownConstraint = "E209" // unknown constraint kind
)

// ValidationError represents a schema declaration error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var knownConstraints = map[ConstraintKind]bool{
	ConstraintPrimaryKey: true,
	ConstraintNotNull:    true,
	ConstraintUnique:     true,
	ConstraintCheck:      true,
	ConstraintDefault:    true,
	ConstraintForeignKey: true,
}

// Validate checks the table declaration against schema rules.
// Returns all errors found (does not fail-fast).
func (t *Table) Validate() []ValidationError {
	var errs []ValidationError

	if t.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "table name is required and must be non-empty",
			Code:    ErrTableNameEmpty,
		})
	}

	if len(t.Columns) == 0 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: "at least one column is required",
			Code:    ErrNoColumns,
		})
	}

	seen := make(map[string]bool)
	primaries := 0

	for i, col := range t.Columns {
		field := fmt.Sprintf("columns[%d]", i)

		if col.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "column name is required",
				Code:    ErrColumnNameEmpty,
			})
			continue
		}

		if seen[col.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate column name: %q", col.Name),
				Code:    ErrDuplicateColumn,
			})
		}
		seen[col.Name] = true

		if col.Name == ColID || col.Name == ColCreatedAt || col.Name == ColUpdatedAt || col.Name == ColDeletedAt {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("%q is reserved for engine-managed columns", col.Name),
				Code:    ErrReservedColumn,
			})
		}

		if !knownTypes[col.Type] {
			errs = append(errs, ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("unknown logical type: %q", col.Type),
				Code:    ErrUnknownType,
			})
		}

		if col.Storage != "" && !knownStorageTypes[col.Storage] {
			errs = append(errs, ValidationError{
				Field:   field + ".storage",
				Message: fmt.Sprintf("unknown storage type hint: %q", col.Storage),
				Code:    ErrUnknownStorage,
			})
		}

		for j, con := range col.Constraints {
			if !knownConstraints[con.Kind] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.constraints[%d]", field, j),
					Message: fmt.Sprintf("unknown constraint kind: %q", con.Kind),
					Code:    ErrUnknownConstraint,
				})
			}
		}

		if col.IsPrimaryKey() {
			primaries++
		}
	}

	// The id column is the implicit primary key; at most one application
	// column may additionally claim it.
	if primaries > 1 {
		errs = append(errs, ValidationError{
			Field:   "columns",
			Message: fmt.Sprintf("at most one column may be the primary key, found %d", primaries),
			Code:    ErrMultiplePrimary,
		})
	}

	for i, set := range t.Uniques {
		for _, name := range set {
			if !seen[name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("uniques[%d]", i),
					Message: fmt.Sprintf("unique set references unknown column: %q", name),
					Code:    ErrUniqueUnknownCol,
				})
			}
		}
	}

	return errs
}
