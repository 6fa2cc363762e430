// Package session holds the mutable per-session state record.
package session

import "github.com/FlorianElke/cqlrs/internal/render"

// Host is one cluster contact point.
type Host struct {
	Address string
	Port    int
}

// TLSSettings controls transport encryption for cluster connections.
type TLSSettings struct {
	Enabled    bool
	CACertPath string
	Verify     bool
}

// State is the single mutable record of a running session: the active
// keyspace, output format, and connection parameters. One instance exists
// per session, owned by the top-level loop. It is read by the dispatcher and
// renderer and mutated only by meta-commands and a confirmed USE, so no
// locking is needed.
type State struct {
	Keyspace string
	Format   render.Format
	Hosts    []Host
	Username string
	Password string
	TLS      TLSSettings
}
