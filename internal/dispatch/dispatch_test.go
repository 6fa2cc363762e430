package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlorianElke/cqlrs/internal/render"
	"github.com/FlorianElke/cqlrs/internal/result"
	"github.com/FlorianElke/cqlrs/internal/session"
	"github.com/FlorianElke/cqlrs/internal/statement"
)

type fakeExecutor struct {
	executed []string
	err      error
	keyspace string
}

func (f *fakeExecutor) Execute(_ context.Context, stmt string) (*result.Outcome, error) {
	f.executed = append(f.executed, stmt)
	if f.err != nil {
		return nil, f.err
	}
	return result.AckOutcome("Query OK (no results)"), nil
}

func (f *fakeExecutor) SetKeyspace(ks string) { f.keyspace = ks }

func TestDispatchQuitAndExit(t *testing.T) {
	for _, name := range []string{"quit", "exit"} {
		exec := &fakeExecutor{}
		res, err := Dispatch(context.Background(), statement.Meta(name), &session.State{}, exec)
		require.NoError(t, err)
		assert.Equal(t, EffectTerminate, res.Effect)
		assert.Empty(t, exec.executed, "no network call for %s", name)
	}
}

func TestDispatchClear(t *testing.T) {
	res, err := Dispatch(context.Background(), statement.Meta("clear"), &session.State{}, &fakeExecutor{})
	require.NoError(t, err)
	assert.Equal(t, EffectClearScreen, res.Effect)
}

func TestDispatchFormatValid(t *testing.T) {
	st := &session.State{Format: render.FormatTable}
	res, err := Dispatch(context.Background(), statement.Meta(`\format`, "json"), st, &fakeExecutor{})
	require.NoError(t, err)
	assert.Equal(t, render.FormatJSON, st.Format)
	assert.Contains(t, res.Outcome.Ack, "json")
}

func TestDispatchFormatInvalidLeavesStateUnchanged(t *testing.T) {
	st := &session.State{Format: render.FormatTable}
	_, err := Dispatch(context.Background(), statement.Meta(`\format`, "xml"), st, &fakeExecutor{})
	require.Error(t, err)
	assert.Equal(t, result.ErrInvalidArgument, result.KindOf(err))
	assert.Equal(t, render.FormatTable, st.Format)
}

func TestDispatchFormatMissingArg(t *testing.T) {
	_, err := Dispatch(context.Background(), statement.Meta(`\format`), &session.State{}, &fakeExecutor{})
	require.Error(t, err)
	assert.Equal(t, result.ErrInvalidArgument, result.KindOf(err))
}

func TestDispatchListKeyspaces(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := Dispatch(context.Background(), statement.Meta(`\dk`), &session.State{}, exec)
	require.NoError(t, err)
	require.Len(t, exec.executed, 1)
	assert.Equal(t, "SELECT keyspace_name FROM system_schema.keyspaces;", exec.executed[0])
}

func TestDispatchListTablesExplicitKeyspace(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := Dispatch(context.Background(), statement.Meta(`\dt`, "app"), &session.State{}, exec)
	require.NoError(t, err)
	require.Len(t, exec.executed, 1)
	assert.Equal(t, "SELECT table_name FROM system_schema.tables WHERE keyspace_name = 'app';", exec.executed[0])
}

func TestDispatchListTablesActiveKeyspace(t *testing.T) {
	exec := &fakeExecutor{}
	st := &session.State{Keyspace: "current"}
	_, err := Dispatch(context.Background(), statement.Meta(`\dt`), st, exec)
	require.NoError(t, err)
	require.Len(t, exec.executed, 1)
	assert.Contains(t, exec.executed[0], "keyspace_name = 'current'")
}

func TestDispatchListTablesNoKeyspace(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := Dispatch(context.Background(), statement.Meta(`\dt`), &session.State{}, exec)
	require.Error(t, err)
	assert.Equal(t, result.ErrNoKeyspaceSelected, result.KindOf(err))
	assert.Empty(t, exec.executed)
}

func TestDispatchUseConfirmedMutatesState(t *testing.T) {
	exec := &fakeExecutor{}
	st := &session.State{}
	res, err := Dispatch(context.Background(), statement.Statement("USE app;"), st, exec)
	require.NoError(t, err)
	assert.Equal(t, "app", st.Keyspace)
	assert.Equal(t, "app", exec.keyspace)
	assert.Contains(t, res.Outcome.Ack, "app")
	assert.Equal(t, []string{"USE app;"}, exec.executed)
}

func TestDispatchUseRejectedLeavesStateUnchanged(t *testing.T) {
	exec := &fakeExecutor{err: result.NewFailure(result.ErrStatement, "keyspace missing does not exist")}
	st := &session.State{Keyspace: "before"}
	_, err := Dispatch(context.Background(), statement.Statement("USE missing;"), st, exec)
	require.Error(t, err)
	assert.Equal(t, "before", st.Keyspace)
	assert.Empty(t, exec.keyspace)
}

func TestDispatchStatementForwardedVerbatim(t *testing.T) {
	exec := &fakeExecutor{}
	text := "SELECT * FROM users WHERE name = 'USE fake';"
	_, err := Dispatch(context.Background(), statement.Statement(text), &session.State{}, exec)
	require.NoError(t, err)
	assert.Equal(t, []string{text}, exec.executed)
}

func TestDispatchUnknownMeta(t *testing.T) {
	_, err := Dispatch(context.Background(), statement.Meta(`\bogus`), &session.State{}, &fakeExecutor{})
	require.Error(t, err)
	assert.Equal(t, result.ErrInvalidArgument, result.KindOf(err))
}

func TestDispatchRefresh(t *testing.T) {
	res, err := Dispatch(context.Background(), statement.Meta(`\refresh`), &session.State{}, &fakeExecutor{})
	require.NoError(t, err)
	assert.Equal(t, EffectRefreshSchema, res.Effect)
}
