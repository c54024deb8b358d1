package sqlgen

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"modelite/internal/value"
)

// TestGoldenStatements pins the exact SQL text of every statement shape.
// Any change to statement generation shows up as a golden diff.
func TestGoldenStatements(t *testing.T) {
	users := NewBuilder(usersTable(), NewFixedGenerator("id-1"))
	posts := NewBuilder(postsTable(), nil)

	var buf bytes.Buffer

	insert, _ := users.Insert(map[string]value.Value{
		"name":   value.String("Ana"),
		"active": value.Bool(true),
	})
	render(&buf, "insert_partial", insert)

	update, err := users.Update(map[string]value.Value{
		"id":      value.String("id-1"),
		"age":     value.Number(30),
		"profile": value.Object{"a": value.Number(1)},
	})
	require.NoError(t, err)
	render(&buf, "update_partial", update)

	del, err := users.Delete("id-1")
	require.NoError(t, err)
	render(&buf, "delete_soft", del)

	restore, err := users.Restore("id-1")
	require.NoError(t, err)
	render(&buf, "restore", restore)

	render(&buf, "select_all", users.SelectAll(false))
	render(&buf, "select_all_include_deleted", users.SelectAll(true))

	byID, err := users.SelectByID("id-1", false)
	require.NoError(t, err)
	render(&buf, "select_by_id", byID)

	byCol, err := users.SelectByColumn("name", value.String("Ana"), false)
	require.NoError(t, err)
	render(&buf, "select_by_column", byCol)

	hardDel, err := posts.Delete("p-1")
	require.NoError(t, err)
	render(&buf, "delete_hard", hardDel)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "statements", buf.Bytes())
}

// render writes a statement in a stable text form for golden comparison.
func render(buf *bytes.Buffer, name string, stmt Statement) {
	fmt.Fprintf(buf, "-- %s\n%s\n", name, stmt.SQL)
	for i, arg := range stmt.Args {
		fmt.Fprintf(buf, "arg[%d] = %v\n", i, arg)
	}
	buf.WriteByte('\n')
}
