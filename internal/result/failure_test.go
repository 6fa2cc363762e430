package result

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureError(t *testing.T) {
	f := NewFailure(ErrStatement, "unconfigured table %s", "users")
	assert.Equal(t, "statement error: unconfigured table users", f.Error())
	assert.False(t, f.Retriable)
}

func TestConnectionFailuresAreRetriable(t *testing.T) {
	assert.True(t, NewFailure(ErrConnection, "refused").Retriable)
	assert.False(t, NewFailure(ErrCancelled, "interrupt").Retriable)
}

func TestWrapFailurePreservesCause(t *testing.T) {
	cause := errors.New("broken pipe")
	f := WrapFailure(ErrConnection, cause)
	assert.ErrorIs(t, f, cause)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("execute: %w", NewFailure(ErrCancelled, "interrupt"))
	assert.Equal(t, ErrCancelled, KindOf(wrapped))
	assert.Equal(t, ErrStatement, KindOf(errors.New("plain")), "untyped errors classify as statement errors")
}
