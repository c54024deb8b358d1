package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelite/internal/schema"
	"modelite/internal/value"
)

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{
				Name:        "name",
				Type:        schema.TypeString,
				Required:    true,
				Constraints: []schema.Constraint{{Kind: schema.ConstraintCheck, Value: "min=2,max=10"}},
			},
			{Name: "age", Type: schema.TypeNumber},
			{Name: "active", Type: schema.TypeBool},
			{Name: "profile", Type: schema.TypeJSON},
			{Name: "born", Type: schema.TypeDate},
		},
		Timestamps:  true,
		SoftDeletes: true,
	}
}

func TestRules(t *testing.T) {
	rules := Rules(usersTable())

	assert.Equal(t, "required,min=2,max=10", rules["name"])
	_, ok := rules["age"]
	assert.False(t, ok)
}

func TestValidateClean(t *testing.T) {
	v := New()
	err := v.Validate(usersTable(), map[string]value.Value{
		"name":    value.String("Ana"),
		"age":     value.Number(30),
		"active":  value.Bool(true),
		"profile": value.Object{"k": value.Number(1)},
		"born":    value.String("1994-01-01"),
	})
	assert.NoError(t, err)
}

func TestValidateMissingRequired(t *testing.T) {
	v := New()
	err := v.Validate(usersTable(), map[string]value.Value{})
	require.Error(t, err)

	verr, ok := err.(*Error)
	require.True(t, ok)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "name", verr.Fields[0].Column)
	assert.Equal(t, "required", verr.Fields[0].Kind)
}

func TestValidateExplicitNullOnRequired(t *testing.T) {
	v := New()
	err := v.Validate(usersTable(), map[string]value.Value{"name": value.Null{}})
	require.Error(t, err)

	verr := err.(*Error)
	assert.Equal(t, "required", verr.Fields[0].Kind)
}

func TestValidateWrongType(t *testing.T) {
	v := New()
	err := v.Validate(usersTable(), map[string]value.Value{
		"name": value.String("Ana"),
		"age":  value.String("thirty"),
	})
	require.Error(t, err)

	verr := err.(*Error)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "age", verr.Fields[0].Column)
	assert.Equal(t, "wrong_type", verr.Fields[0].Kind)
}

func TestValidateTooShortTooLong(t *testing.T) {
	v := New()

	err := v.Validate(usersTable(), map[string]value.Value{"name": value.String("A")})
	require.Error(t, err)
	assert.Equal(t, "too_short", err.(*Error).Fields[0].Kind)

	err = v.Validate(usersTable(), map[string]value.Value{"name": value.String("waytoolongname")})
	require.Error(t, err)
	assert.Equal(t, "too_long", err.(*Error).Fields[0].Kind)
}

func TestValidateCollectsAllFailures(t *testing.T) {
	v := New()
	err := v.Validate(usersTable(), map[string]value.Value{
		"name":   value.String("A"), // too short
		"age":    value.Bool(true),  // wrong type
		"active": value.Number(1),   // wrong type
	})
	require.Error(t, err)

	verr := err.(*Error)
	assert.Len(t, verr.Fields, 3)
	// Errors are sorted by column for stable output.
	assert.Equal(t, "active", verr.Fields[0].Column)
	assert.Equal(t, "age", verr.Fields[1].Column)
	assert.Equal(t, "name", verr.Fields[2].Column)
}

func TestValidateDateAcceptsTimeAndString(t *testing.T) {
	v := New()

	err := v.Validate(usersTable(), map[string]value.Value{
		"name": value.String("Ana"),
		"born": value.Number(5),
	})
	require.Error(t, err)
	assert.Equal(t, "wrong_type", err.(*Error).Fields[0].Kind)
}

func TestValidateJSONAcceptsAnyVariant(t *testing.T) {
	v := New()
	for _, val := range []value.Value{
		value.String("s"), value.Number(1), value.Bool(true),
		value.Array{}, value.Object{},
	} {
		err := v.Validate(usersTable(), map[string]value.Value{
			"name":    value.String("Ana"),
			"profile": val,
		})
		assert.NoError(t, err)
	}
}

func TestValidatePartialSkipsAbsentRequired(t *testing.T) {
	v := New()

	// name absent: no required failure on a partial check
	err := v.ValidatePartial(usersTable(), map[string]value.Value{"age": value.Number(31)})
	assert.NoError(t, err)

	// but an explicit Null still fails
	err = v.ValidatePartial(usersTable(), map[string]value.Value{"name": value.Null{}})
	require.Error(t, err)
	assert.Equal(t, "required", err.(*Error).Fields[0].Kind)

	// and present fields still run their rules
	err = v.ValidatePartial(usersTable(), map[string]value.Value{"name": value.String("A")})
	require.Error(t, err)
	assert.Equal(t, "too_short", err.(*Error).Fields[0].Kind)
}

func TestErrorMessageListsEveryField(t *testing.T) {
	err := &Error{
		Table: "users",
		Fields: []FieldError{
			{Column: "a", Kind: "required", Message: "value is required"},
			{Column: "b", Kind: "wrong_type", Message: "expected number, got string"},
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "a:")
	assert.Contains(t, msg, "b:")
}
