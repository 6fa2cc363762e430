package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlorianElke/cqlrs/internal/result"
)

func TestFeedSingleStatement(t *testing.T) {
	var acc Accumulator

	units := acc.Feed("SELECT * FROM system.local;")
	require.Len(t, units, 1)
	assert.Equal(t, KindStatement, units[0].Kind)
	assert.Equal(t, "SELECT * FROM system.local;", units[0].Text)
	assert.False(t, acc.Pending())
}

func TestFeedMultiLineStatement(t *testing.T) {
	var acc Accumulator

	assert.Empty(t, acc.Feed("SELECT id, name"))
	assert.True(t, acc.Pending())
	assert.Empty(t, acc.Feed("FROM users"))

	units := acc.Feed("WHERE id = 42;")
	require.Len(t, units, 1)
	assert.Equal(t, "SELECT id, name FROM users WHERE id = 42;", units[0].Text)
	assert.False(t, acc.Pending())
}

func TestSemicolonInsideStringLiteral(t *testing.T) {
	var acc Accumulator

	// The ; inside the quoted literal must not terminate the statement.
	units := acc.Feed("SELECT * FROM t WHERE x = ';'")
	assert.Empty(t, units)
	assert.True(t, acc.Pending())

	units = acc.Feed(";")
	require.Len(t, units, 1)
	assert.Equal(t, "SELECT * FROM t WHERE x = ';' ;", units[0].Text)
}

func TestEscapedQuoteInsideLiteral(t *testing.T) {
	var acc Accumulator

	units := acc.Feed("INSERT INTO t (name) VALUES ('O''Brien; Esq.');")
	require.Len(t, units, 1)
	assert.Equal(t, "INSERT INTO t (name) VALUES ('O''Brien; Esq.');", units[0].Text)
}

func TestSemicolonInsideQuotedIdentifier(t *testing.T) {
	var acc Accumulator

	units := acc.Feed(`SELECT "weird;name" FROM t`)
	assert.Empty(t, units)

	units = acc.Feed(";")
	require.Len(t, units, 1)
}

func TestMultipleStatementsOnOneLine(t *testing.T) {
	var acc Accumulator

	units := acc.Feed("USE ks; SELECT * FROM t;")
	require.Len(t, units, 2)
	assert.Equal(t, "USE ks;", units[0].Text)
	assert.Equal(t, "SELECT * FROM t;", units[1].Text)
	assert.False(t, acc.Pending())
}

func TestRemainderStartsNextStatement(t *testing.T) {
	var acc Accumulator

	units := acc.Feed("USE ks; SELECT *")
	require.Len(t, units, 1)
	assert.Equal(t, "USE ks;", units[0].Text)
	assert.True(t, acc.Pending())

	units = acc.Feed("FROM t;")
	require.Len(t, units, 1)
	assert.Equal(t, "SELECT * FROM t;", units[0].Text)
}

func TestMetaCommands(t *testing.T) {
	tests := []struct {
		line string
		name string
		args []string
	}{
		{"quit", "quit", nil},
		{"exit;", "exit", nil},
		{"HELP", "help", nil},
		{"clear", "clear", nil},
		{`\format json`, `\format`, []string{"json"}},
		{`\dk`, `\dk`, nil},
		{`\dt my_keyspace`, `\dt`, []string{"my_keyspace"}},
		{`\refresh`, `\refresh`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var acc Accumulator
			units := acc.Feed(tt.line)
			require.Len(t, units, 1)
			assert.Equal(t, KindMeta, units[0].Kind)
			assert.Equal(t, tt.name, units[0].Name)
			if tt.args == nil {
				assert.Empty(t, units[0].Args)
			} else {
				assert.Equal(t, tt.args, units[0].Args)
			}
		})
	}
}

func TestKeywordMidStatementIsText(t *testing.T) {
	var acc Accumulator

	acc.Feed("SELECT * FROM t WHERE name =")
	units := acc.Feed("exit")
	assert.Empty(t, units, "keyword inside a pending statement is plain text")
	assert.True(t, acc.Pending())
}

func TestEmptyLinesIgnored(t *testing.T) {
	var acc Accumulator

	assert.Empty(t, acc.Feed(""))
	assert.Empty(t, acc.Feed("   "))
	assert.False(t, acc.Pending())
}

func TestFlushUnterminated(t *testing.T) {
	var acc Accumulator

	acc.Feed("SELECT * FROM t")
	err := acc.Flush()
	require.Error(t, err)
	assert.Equal(t, result.ErrIncompleteStatement, result.KindOf(err))
	assert.False(t, acc.Pending(), "flush drains the buffer")
}

func TestFlushEmpty(t *testing.T) {
	var acc Accumulator
	assert.NoError(t, acc.Flush())
}

func TestReset(t *testing.T) {
	var acc Accumulator

	acc.Feed("SELECT * FROM")
	acc.Reset()
	assert.False(t, acc.Pending())
}
