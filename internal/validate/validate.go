// Package validate checks field maps against a table schema before any
// statement is generated. The codec is deliberately tolerant, so type
// correctness is enforced here, not there.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"modelite/internal/schema"
	"modelite/internal/value"
)

// FieldError describes one offending column.
//
// Kind is machine-readable: "required", "wrong_type", "too_short",
// "too_long", "pattern", or the raw validator tag when no friendlier name
// applies.
type FieldError struct {
	Column  string
	Kind    string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Column, e.Message, e.Kind)
}

// Error aggregates every offending field of one validation pass. Callers
// always see the full list, never just the first failure.
type Error struct {
	Table  string
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("validation failed for %q: %s", e.Table, strings.Join(parts, "; "))
}

// Rules derives the validator tag expression for each column.
//
// Required (or a not_null constraint) contributes "required"; a check
// constraint whose value is a tag expression (e.g. "min=3,max=64") is
// appended verbatim. Columns with no rules are absent from the map.
func Rules(table *schema.Table) map[string]string {
	rules := make(map[string]string)
	for _, col := range table.Columns {
		var tags []string
		if col.Required {
			tags = append(tags, "required")
		}
		if rule, ok := col.CheckRule(); ok {
			tags = append(tags, rule)
		}
		if len(tags) > 0 {
			rules[col.Name] = strings.Join(tags, ",")
		}
	}
	return rules
}

// Validator validates field maps. The zero value is not usable; construct
// with New. Safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator backed by go-playground/validator.
func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks fields against the table schema.
//
// The pass runs in two stages: a shape check first (each present value's
// runtime variant against the column's logical type), then the derived tag
// rules via validator.Var on the unwrapped Go value. Every failure is
// collected; the returned error is a *Error carrying all of them, or nil
// when the map is clean.
//
// Unique constraints are advisory and not checked here: only the storage
// engine can enforce them race-free.
func (va *Validator) Validate(table *schema.Table, fields map[string]value.Value) error {
	return va.run(table, fields, false)
}

// ValidatePartial checks only the fields present in the map. Absent columns
// are left alone - required does not fire for them - which matches the
// presence semantics of a partial update. An explicit Null on a required
// column still fails.
func (va *Validator) ValidatePartial(table *schema.Table, fields map[string]value.Value) error {
	return va.run(table, fields, true)
}

func (va *Validator) run(table *schema.Table, fields map[string]value.Value, partial bool) error {
	var errs []FieldError
	rules := Rules(table)

	for _, col := range table.Columns {
		v, present := fields[col.Name]
		if !present && partial {
			continue
		}
		_, isNull := v.(value.Null)

		if !present || v == nil || isNull {
			if col.Required {
				errs = append(errs, FieldError{
					Column:  col.Name,
					Kind:    "required",
					Message: "value is required",
				})
			}
			continue
		}

		if !shapeMatches(v, col.Type) {
			errs = append(errs, FieldError{
				Column:  col.Name,
				Kind:    "wrong_type",
				Message: fmt.Sprintf("expected %s, got %s", col.Type, variantName(v)),
			})
			continue
		}

		tags, ok := rules[col.Name]
		if !ok {
			continue
		}
		if err := va.v.Var(unwrap(v), tags); err != nil {
			errs = append(errs, fieldErrors(col.Name, err)...)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Column < errs[j].Column })
	return &Error{Table: table.Name, Fields: errs}
}

// shapeMatches reports whether the runtime variant is legal for the logical
// column type. json accepts every variant; date accepts a time or its
// string form.
func shapeMatches(v value.Value, t schema.ColumnType) bool {
	switch t {
	case schema.TypeString:
		_, ok := v.(value.String)
		return ok
	case schema.TypeNumber:
		_, ok := v.(value.Number)
		return ok
	case schema.TypeBool:
		_, ok := v.(value.Bool)
		return ok
	case schema.TypeJSON:
		return true
	case schema.TypeDate:
		switch v.(type) {
		case value.Time, value.String:
			return true
		}
		return false
	default:
		return false
	}
}

// unwrap converts a Value to the native Go form validator.Var understands.
func unwrap(v value.Value) any {
	switch val := v.(type) {
	case value.String:
		return string(val)
	case value.Number:
		return float64(val)
	case value.Bool:
		return bool(val)
	case value.Time:
		return time.Time(val)
	case value.Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = unwrap(item)
		}
		return out
	case value.Object:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = unwrap(item)
		}
		return out
	default:
		return nil
	}
}

// variantName names a Value's runtime variant for error messages.
func variantName(v value.Value) string {
	switch v.(type) {
	case value.Null:
		return "null"
	case value.String:
		return "string"
	case value.Number:
		return "number"
	case value.Bool:
		return "bool"
	case value.Time:
		return "time"
	case value.Array:
		return "array"
	case value.Object:
		return "object"
	default:
		return "unknown"
	}
}

// fieldErrors converts validator output for one column into FieldErrors.
func fieldErrors(column string, err error) []FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Column: column, Kind: "invalid", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Column:  column,
			Kind:    kindOf(fe.Tag()),
			Message: messageOf(fe),
		})
	}
	return out
}

// kindOf maps a validator tag to the stable error kind.
func kindOf(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "min", "gte", "gt":
		return "too_short"
	case "max", "lte", "lt":
		return "too_long"
	case "alphanum", "alpha", "numeric", "email", "url", "uuid", "oneof", "startswith", "endswith", "contains":
		return "pattern"
	default:
		return tag
	}
}

func messageOf(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("failed rule %s=%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed rule %s", fe.Tag())
}
