// Package cluster owns host connectivity, keyspace context, and the
// retry/failover policy for statement execution. The wire protocol itself
// belongs to the driver collaborator behind the Driver interface.
package cluster

import (
	"context"
	"time"

	"github.com/FlorianElke/cqlrs/internal/result"
	"github.com/FlorianElke/cqlrs/internal/session"
)

// DialConfig carries the per-connection parameters handed to the driver.
type DialConfig struct {
	Keyspace string
	Username string
	Password string
	TLS      session.TLSSettings
	Timeout  time.Duration
}

// Driver opens connections to individual hosts. Implementations classify
// their errors into the shared taxonomy before returning them: dial errors
// and transport errors as ErrConnection, server-side statement rejections as
// ErrStatement, context interruption as ErrCancelled.
type Driver interface {
	Dial(ctx context.Context, host session.Host, cfg DialConfig) (Conn, error)
}

// Conn is an established connection to one host. Connections are treated as
// opaque, already-synchronized resources; the session never assumes
// exclusive access to the underlying transport.
type Conn interface {
	// Submit executes one statement and returns its outcome. Row sequences
	// inside the outcome are lazy; the caller drives paging by iterating.
	Submit(ctx context.Context, stmt string) (*result.Outcome, error)

	// Close tears the connection down.
	Close()
}
