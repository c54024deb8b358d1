package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileTable parses a CUE value into a Table declaration.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the table struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: { name: "users", ... }`)
//	tbl, err := CompileTable(v.LookupPath(cue.ParsePath("table")))
func CompileTable(v cue.Value) (*Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	table := &Table{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "table name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	table.Name = name

	table.Timestamps, err = lookupBool(v, "timestamps")
	if err != nil {
		return nil, err
	}
	table.SoftDeletes, err = lookupBool(v, "soft_deletes")
	if err != nil {
		return nil, err
	}

	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil, &CompileError{
			Field:   "columns",
			Message: "at least one column is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := columnsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		col, err := compileColumn(iter.Value())
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, col)
	}

	uniquesVal := v.LookupPath(cue.ParsePath("uniques"))
	if uniquesVal.Exists() {
		setIter, err := uniquesVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for setIter.Next() {
			var set []string
			colIter, err := setIter.Value().List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for colIter.Next() {
				name, err := colIter.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				set = append(set, name)
			}
			table.Uniques = append(table.Uniques, set)
		}
	}

	return table, nil
}

// compileColumn parses a single column struct.
func compileColumn(v cue.Value) (Column, error) {
	var col Column

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return col, &CompileError{
			Field:   "columns.name",
			Message: "column name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return col, formatCUEError(err)
	}
	col.Name = name

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return col, &CompileError{
			Field:   fmt.Sprintf("columns.%s.type", name),
			Message: "column type is required",
			Pos:     v.Pos(),
		}
	}
	typeName, err := typeVal.String()
	if err != nil {
		return col, formatCUEError(err)
	}
	col.Type = ColumnType(typeName)

	storageVal := v.LookupPath(cue.ParsePath("storage"))
	if storageVal.Exists() {
		storage, err := storageVal.String()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.Storage = StorageType(storage)
	}

	col.Required, err = lookupBool(v, "required")
	if err != nil {
		return col, err
	}
	if col.Required {
		col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintNotNull})
	}

	unique, err := lookupBool(v, "unique")
	if err != nil {
		return col, err
	}
	if unique {
		col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintUnique})
	}

	checkVal := v.LookupPath(cue.ParsePath("check"))
	if checkVal.Exists() {
		check, err := checkVal.String()
		if err != nil {
			return col, formatCUEError(err)
		}
		col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintCheck, Value: check})
	}

	defaultVal := v.LookupPath(cue.ParsePath("default"))
	if defaultVal.Exists() {
		def, err := compileDefault(defaultVal)
		if err != nil {
			return col, err
		}
		col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintDefault, Value: def})
	}

	return col, nil
}

// compileDefault extracts a scalar default value from CUE.
func compileDefault(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	default:
		return nil, &CompileError{
			Field:   "default",
			Message: fmt.Sprintf("default must be a scalar, got %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// lookupBool reads an optional boolean field, defaulting to false.
func lookupBool(v cue.Value, field string) (bool, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return false, nil
	}
	b, err := fieldVal.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// LoadCUE reads a CUE table declaration from path. The file must define a
// top-level `table` struct.
func LoadCUE(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: fmt.Sprintf("no top-level table declaration in %s", path),
			Pos:     v.Pos(),
		}
	}

	return CompileTable(tableVal)
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
