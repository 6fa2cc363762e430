package cluster

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/FlorianElke/cqlrs/internal/result"
	"github.com/FlorianElke/cqlrs/internal/session"
)

// Config holds everything needed to reach the cluster.
type Config struct {
	Hosts    []session.Host
	Keyspace string
	Username string
	Password string
	TLS      session.TLSSettings
	Timeout  time.Duration
}

type hostState struct {
	host       session.Host
	conn       Conn
	unhealthy  bool
	lastFailed time.Time
}

// Session executes statements against an ordered set of candidate hosts
// with bounded failover. Exactly one statement is in flight at a time; a
// mutex serializes Execute so interactive and batch callers share the same
// single-flight contract.
type Session struct {
	drv    Driver
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	hosts    []*hostState
	next     int // rotation start for the next execute
	keyspace string
}

// New builds a session without touching the network. Connections are dialed
// lazily on first use per host.
func New(cfg Config, drv Driver, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	states := make([]*hostState, len(cfg.Hosts))
	for i, h := range cfg.Hosts {
		states[i] = &hostState{host: h}
	}
	return &Session{drv: drv, cfg: cfg, logger: logger, hosts: states, keyspace: cfg.Keyspace}
}

// Connect establishes the initial healthy-host set by dialing hosts in
// order until one succeeds. Hosts that refuse are marked unhealthy; they
// become failover candidates again on later executes. Zero reachable hosts
// is fatal.
func Connect(ctx context.Context, cfg Config, drv Driver, logger *slog.Logger) (*Session, error) {
	s := New(cfg, drv, logger)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, hs := range s.hosts {
		conn, err := s.dial(ctx, hs)
		if err != nil {
			s.logger.Warn("contact point unreachable", "host", hs.host.Address, "error", err)
			s.markFailed(hs)
			continue
		}
		hs.conn = conn
		s.logger.Debug("connected", "host", hs.host.Address, "port", hs.host.Port)
		return s, nil
	}
	return nil, result.NewFailure(result.ErrConnection,
		"no cluster host reachable (tried %d contact points)", len(s.hosts))
}

// Keyspace returns the keyspace applied to new connections.
func (s *Session) Keyspace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyspace
}

// SetKeyspace records a server-confirmed keyspace change. Existing
// connections were authenticated into the old keyspace, so they are dropped
// and re-dialed lazily with the new one.
func (s *Session) SetKeyspace(ks string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyspace = ks
	for _, hs := range s.hosts {
		if hs.conn != nil {
			hs.conn.Close()
			hs.conn = nil
		}
	}
}

// Close tears down every connection.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, hs := range s.hosts {
		if hs.conn != nil {
			hs.conn.Close()
			hs.conn = nil
		}
	}
}

// Execute runs one statement with host failover. Candidate hosts are tried
// in rotation order, healthy hosts first and unhealthy ones least-recently-
// failed first, up to len(hosts) attempts. Connection-level failures mark
// the host unhealthy and move on; statement-level failures and cancellation
// surface immediately. A cancelled execute leaves host health untouched.
func (s *Session) Execute(ctx context.Context, text string) (*result.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.hosts) == 0 {
		return nil, result.NewFailure(result.ErrConnection, "no hosts configured")
	}

	var lastErr error
	for _, hs := range s.candidates() {
		if err := ctx.Err(); err != nil {
			return nil, result.WrapFailure(result.ErrCancelled, err)
		}

		conn := hs.conn
		if conn == nil {
			var err error
			conn, err = s.dial(ctx, hs)
			if err != nil {
				if result.KindOf(err) == result.ErrCancelled {
					return nil, err
				}
				s.logger.Warn("dial failed, failing over", "host", hs.host.Address, "error", err)
				s.markFailed(hs)
				lastErr = err
				continue
			}
			hs.conn = conn
		}

		out, err := conn.Submit(ctx, text)
		if err == nil {
			hs.unhealthy = false
			s.advance(hs)
			return out, nil
		}

		switch result.KindOf(err) {
		case result.ErrCancelled:
			// Interrupted, not broken: the host keeps its health state and
			// the session stays usable for the next statement.
			return nil, err
		case result.ErrConnection:
			s.logger.Warn("connection lost, failing over", "host", hs.host.Address, "error", err)
			hs.conn = nil
			conn.Close()
			s.markFailed(hs)
			lastErr = err
			continue
		default:
			// Semantic failure: the statement is the problem, not the host.
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, result.WrapFailure(result.ErrConnection, lastErr)
	}
	return nil, result.NewFailure(result.ErrConnection, "no healthy host available")
}

// candidates returns every host in attempt order: healthy hosts rotated to
// start after the last successful one, then unhealthy hosts ordered by
// least recent failure.
func (s *Session) candidates() []*hostState {
	n := len(s.hosts)
	healthy := make([]*hostState, 0, n)
	for i := 0; i < n; i++ {
		hs := s.hosts[(s.next+i)%n]
		if !hs.unhealthy {
			healthy = append(healthy, hs)
		}
	}
	var failed []*hostState
	for _, hs := range s.hosts {
		if hs.unhealthy {
			failed = append(failed, hs)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].lastFailed.Before(failed[j].lastFailed)
	})
	return append(healthy, failed...)
}

func (s *Session) advance(succeeded *hostState) {
	for i, hs := range s.hosts {
		if hs == succeeded {
			s.next = (i + 1) % len(s.hosts)
			return
		}
	}
}

func (s *Session) markFailed(hs *hostState) {
	hs.unhealthy = true
	hs.lastFailed = time.Now()
}

func (s *Session) dial(ctx context.Context, hs *hostState) (Conn, error) {
	return s.drv.Dial(ctx, hs.host, DialConfig{
		Keyspace: s.keyspace,
		Username: s.cfg.Username,
		Password: s.cfg.Password,
		TLS:      s.cfg.TLS,
		Timeout:  s.cfg.Timeout,
	})
}
