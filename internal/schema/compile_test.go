package schema

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersCUE = `
table: {
	name: "users"
	timestamps:   true
	soft_deletes: true
	columns: [
		{name: "name", type: "string", required: true, check: "min=2,max=64"},
		{name: "email", type: "string", unique: true},
		{name: "age", type: "number", storage: "integer", default: 0},
	]
	uniques: [["name", "email"]]
}
`

func compileTestTable(t *testing.T, src string) (*Table, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileTable(v.LookupPath(cue.ParsePath("table")))
}

func TestCompileTable(t *testing.T) {
	table, err := compileTestTable(t, usersCUE)
	require.NoError(t, err)

	assert.Equal(t, "users", table.Name)
	assert.True(t, table.Timestamps)
	assert.True(t, table.SoftDeletes)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, [][]string{{"name", "email"}}, table.Uniques)

	name := table.Columns[0]
	assert.True(t, name.Required)
	rule, ok := name.CheckRule()
	require.True(t, ok)
	assert.Equal(t, "min=2,max=64", rule)

	age := table.Columns[2]
	assert.Equal(t, StorageInteger, age.Storage)
	require.Len(t, age.Constraints, 1)
	assert.Equal(t, ConstraintDefault, age.Constraints[0].Kind)
	assert.Equal(t, float64(0), age.Constraints[0].Value)
}

func TestCompileTableMissingName(t *testing.T) {
	_, err := compileTestTable(t, `table: {columns: [{name: "a", type: "string"}]}`)
	require.Error(t, err)

	cerr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "name", cerr.Field)
}

func TestCompileTableMissingColumns(t *testing.T) {
	_, err := compileTestTable(t, `table: {name: "users"}`)
	require.Error(t, err)

	cerr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "columns", cerr.Field)
}

func TestCompileColumnMissingType(t *testing.T) {
	_, err := compileTestTable(t, `table: {name: "users", columns: [{name: "a"}]}`)
	require.Error(t, err)

	cerr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "columns.a.type", cerr.Field)
}

func TestCompileNonScalarDefault(t *testing.T) {
	_, err := compileTestTable(t, `table: {name: "users", columns: [{name: "a", type: "json", default: {x: 1}}]}`)
	require.Error(t, err)

	cerr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "default", cerr.Field)
}

func TestLoadCUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.cue")
	require.NoError(t, os.WriteFile(path, []byte(usersCUE), 0o644))

	table, err := LoadCUE(path)
	require.NoError(t, err)
	assert.Equal(t, "users", table.Name)
}

func TestLoadCUENoTableDeclaration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`other: {x: 1}`), 0o644))

	_, err := LoadCUE(path)
	require.Error(t, err)

	cerr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "table", cerr.Field)
}
