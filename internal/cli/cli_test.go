package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "cqlrs", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"hosts", "port", "username", "password", "password-prompt",
		"keyspace", "output", "verbose", "ssl", "ssl-ca-cert", "ssl-verify"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
	for _, flag := range []string{"execute", "file", "continue-on-error"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestDescribeStatement(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"cluster"}, "SELECT * FROM system.local;"},
		{[]string{"keyspaces"}, "SELECT keyspace_name FROM system_schema.keyspaces;"},
		{[]string{"keyspace", "app"}, "SELECT * FROM system_schema.keyspaces WHERE keyspace_name = 'app';"},
		{[]string{"tables", "app"}, "SELECT table_name FROM system_schema.tables WHERE keyspace_name = 'app';"},
	}
	for _, tt := range tests {
		got, err := describeStatement(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDescribeStatementErrors(t *testing.T) {
	for _, args := range [][]string{{"bogus"}, {"keyspace"}, {"table"}, {"tables"}} {
		_, err := describeStatement(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestDescribeStatementEscapesQuotes(t *testing.T) {
	got, err := describeStatement([]string{"keyspace", "a'b"})
	require.NoError(t, err)
	assert.Contains(t, got, "'a''b'")
}
