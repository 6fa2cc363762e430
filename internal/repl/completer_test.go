package repl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlorianElke/cqlrs/internal/result"
)

type schemaExecutor struct{}

func (schemaExecutor) Execute(_ context.Context, stmt string) (*result.Outcome, error) {
	switch stmt {
	case "SELECT keyspace_name FROM system_schema.keyspaces;":
		return result.RowsOutcome(result.NewSet(
			[]result.Column{{Name: "keyspace_name", Type: "text"}},
			[][]result.Value{
				{result.TextValue("app")},
				{result.TextValue("system")},
			},
		)), nil
	case "SELECT keyspace_name, table_name FROM system_schema.tables;":
		return result.RowsOutcome(result.NewSet(
			[]result.Column{{Name: "keyspace_name", Type: "text"}, {Name: "table_name", Type: "text"}},
			[][]result.Value{
				{result.TextValue("app"), result.TextValue("users")},
				{result.TextValue("app"), result.TextValue("orders")},
			},
		)), nil
	}
	return nil, result.NewFailure(result.ErrStatement, "unexpected statement %q", stmt)
}

func (schemaExecutor) SetKeyspace(string) {}

func complete(c *Completer, line string) []string {
	cands, _ := c.Do([]rune(line), len(line))
	out := make([]string, len(cands))
	for i, r := range cands {
		out[i] = string(r)
	}
	return out
}

func TestCompleterKeywords(t *testing.T) {
	c := NewCompleter()
	cands := complete(c, "SEL")
	require.Len(t, cands, 1)
	assert.Equal(t, "ECT ", cands[0])
}

func TestCompleterKeyspacesAfterUse(t *testing.T) {
	c := NewCompleter()
	require.NoError(t, c.Refresh(context.Background(), schemaExecutor{}))

	assert.Contains(t, complete(c, "USE ap"), "p ")
	assert.NotContains(t, complete(c, "ap"), "p ", "keyspaces only complete in USE/KEYSPACE context")
}

func TestCompleterTablesAfterFrom(t *testing.T) {
	c := NewCompleter()
	require.NoError(t, c.Refresh(context.Background(), schemaExecutor{}))

	assert.Contains(t, complete(c, "SELECT * FROM us"), "ers ")
	assert.Contains(t, complete(c, "SELECT * FROM ord"), "ers ")
}

func TestCompleterNothingAfterSpace(t *testing.T) {
	c := NewCompleter()
	cands, length := c.Do([]rune("SELECT "), 7)
	assert.Empty(t, cands)
	assert.Zero(t, length)
}

func TestChangesSchema(t *testing.T) {
	assert.True(t, changesSchema("CREATE TABLE t (id int PRIMARY KEY);"))
	assert.True(t, changesSchema("use app;"))
	assert.True(t, changesSchema("DROP KEYSPACE app;"))
	assert.False(t, changesSchema("SELECT * FROM t;"))
}
