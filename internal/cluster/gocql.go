package cluster

import (
	"context"
	"errors"
	"fmt"
	"net"
	"reflect"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/FlorianElke/cqlrs/internal/result"
	"github.com/FlorianElke/cqlrs/internal/session"
)

// GocqlDriver dials one gocql session per contact host. Initial host lookup
// is disabled so the pinned host is the only one gocql talks to; host
// selection and failover stay with the cluster session.
type GocqlDriver struct{}

func (GocqlDriver) Dial(ctx context.Context, host session.Host, cfg DialConfig) (Conn, error) {
	cc := gocql.NewCluster(host.Address)
	cc.Port = host.Port
	cc.Keyspace = cfg.Keyspace
	cc.DisableInitialHostLookup = true
	cc.ProtoVersion = 4
	if cfg.Timeout > 0 {
		cc.ConnectTimeout = cfg.Timeout
		cc.Timeout = cfg.Timeout
	}
	if cfg.Username != "" {
		cc.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	if cfg.TLS.Enabled {
		cc.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.TLS.CACertPath,
			EnableHostVerification: cfg.TLS.Verify,
		}
	}

	sess, err := cc.CreateSession()
	if err != nil {
		if ctx.Err() != nil {
			return nil, result.WrapFailure(result.ErrCancelled, ctx.Err())
		}
		return nil, result.WrapFailure(result.ErrConnection,
			fmt.Errorf("connect %s:%d: %w", host.Address, host.Port, err))
	}
	return &gocqlConn{sess: sess}, nil
}

type gocqlConn struct {
	sess *gocql.Session
}

func (c *gocqlConn) Close() { c.sess.Close() }

func (c *gocqlConn) Submit(ctx context.Context, stmt string) (*result.Outcome, error) {
	iter := c.sess.Query(stmt).WithContext(ctx).Iter()

	cols := iter.Columns()
	if len(cols) == 0 {
		// DDL or DML without a result set.
		if err := iter.Close(); err != nil {
			return nil, classify(err)
		}
		return result.AckOutcome("Query OK (no results)"), nil
	}

	columns := make([]result.Column, len(cols))
	holders := make([]any, len(cols))
	for i, col := range cols {
		columns[i] = result.Column{Name: col.Name, Type: col.TypeInfo.Type().String()}
		// Pointer-to-pointer scan targets so server nulls arrive as nil
		// instead of zero values.
		holders[i] = reflect.New(reflect.TypeOf(col.TypeInfo.New())).Interface()
	}

	return result.RowsOutcome(&result.Set{
		Columns: columns,
		Rows:    &gocqlRows{iter: iter, holders: holders},
	}), nil
}

// gocqlRows adapts a gocql iterator to result.RowIter. gocql fetches result
// pages on demand as Scan advances, so large results never materialize.
type gocqlRows struct {
	iter    *gocql.Iter
	holders []any
}

func (r *gocqlRows) Next() ([]result.Value, bool) {
	if !r.iter.Scan(r.holders...) {
		return nil, false
	}
	row := make([]result.Value, len(r.holders))
	for i, h := range r.holders {
		ptr := reflect.ValueOf(h).Elem()
		if ptr.IsNil() {
			row[i] = result.Null()
			continue
		}
		row[i] = fromDriver(ptr.Elem().Interface())
	}
	return row, true
}

func (r *gocqlRows) Close() error {
	if err := r.iter.Close(); err != nil {
		return classify(err)
	}
	return nil
}

// fromDriver converts a non-nil value from gocql's dynamic unmarshaling
// into the closed cell-value variant. Collections arrive as typed slices
// and maps and convert via reflection.
func fromDriver(v any) result.Value {
	switch t := v.(type) {
	case bool:
		return result.BoolValue(t)
	case int8:
		return result.IntValue(int64(t))
	case int16:
		return result.IntValue(int64(t))
	case int:
		return result.IntValue(int64(t))
	case int64:
		return result.IntValue(t)
	case float32:
		return result.DoubleValue(float64(t))
	case float64:
		return result.DoubleValue(t)
	case string:
		return result.TextValue(t)
	case []byte:
		return result.BlobValue(t)
	case gocql.UUID:
		return result.UUIDValue(uuid.UUID(t))
	case time.Time:
		return result.TimeValue(t)
	case time.Duration:
		return result.TextValue(t.String())
	case net.IP:
		return result.TextValue(t.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]result.Value, rv.Len())
		for i := range elems {
			elems[i] = fromDriver(rv.Index(i).Interface())
		}
		return result.ListValue(elems...)
	case reflect.Map:
		pairs := make([]result.Pair, 0, rv.Len())
		mi := rv.MapRange()
		for mi.Next() {
			pairs = append(pairs, result.Pair{
				Key: fromDriver(mi.Key().Interface()),
				Val: fromDriver(mi.Value().Interface()),
			})
		}
		return result.MapValue(pairs...)
	case reflect.Ptr:
		if rv.IsNil() {
			return result.Null()
		}
		return fromDriver(rv.Elem().Interface())
	default:
		return result.TextValue(fmt.Sprintf("%v", v))
	}
}

// classify maps gocql and transport errors onto the shared taxonomy.
// Request errors carry a server error code and never retry; everything that
// smells like a broken transport is connection-class and retriable.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return result.WrapFailure(result.ErrCancelled, err)
	case errors.Is(err, gocql.ErrNoConnections):
		return result.WrapFailure(result.ErrConnection, err)
	}

	var reqErr gocql.RequestError
	if errors.As(err, &reqErr) {
		return result.WrapFailure(result.ErrStatement, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return result.WrapFailure(result.ErrConnection, err)
	}

	return result.WrapFailure(result.ErrStatement, err)
}
