// Package dispatch classifies logical units and routes them: local effects
// for meta-commands, cluster execution for statements. It performs no retry
// and no formatting; those belong to the cluster session and the renderer.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/FlorianElke/cqlrs/internal/render"
	"github.com/FlorianElke/cqlrs/internal/result"
	"github.com/FlorianElke/cqlrs/internal/session"
	"github.com/FlorianElke/cqlrs/internal/statement"
)

// Effect is a client-local consequence of dispatching a unit.
type Effect int

const (
	// EffectNone: the outcome (if any) is the whole story.
	EffectNone Effect = iota
	// EffectTerminate ends the interactive loop.
	EffectTerminate
	// EffectClearScreen asks the terminal collaborator to clear.
	EffectClearScreen
	// EffectHelp asks the host loop to print its help text.
	EffectHelp
	// EffectRefreshSchema asks the host loop to refresh its completion cache.
	EffectRefreshSchema
)

// Executor is the cluster-facing surface the dispatcher needs. Satisfied by
// *cluster.Session and by fakes in tests.
type Executor interface {
	Execute(ctx context.Context, stmt string) (*result.Outcome, error)
	SetKeyspace(ks string)
}

// Result is what dispatching one unit produced.
type Result struct {
	Effect  Effect
	Outcome *result.Outcome // non-nil when there is something to render
}

// Dispatch routes one logical unit. State is mutated only by \format and by
// a server-confirmed USE; every failure returns an error without touching
// state.
func Dispatch(ctx context.Context, unit statement.Unit, st *session.State, exec Executor) (Result, error) {
	if unit.Kind == statement.KindMeta {
		return dispatchMeta(ctx, unit, st, exec)
	}

	if ks, ok := parseUse(unit.Text); ok {
		if _, err := exec.Execute(ctx, unit.Text); err != nil {
			return Result{}, err
		}
		// Only a server-confirmed USE moves the session; never optimistic.
		st.Keyspace = ks
		exec.SetKeyspace(ks)
		return Result{Outcome: result.AckOutcome(fmt.Sprintf("Now using keyspace %s", ks))}, nil
	}

	out, err := exec.Execute(ctx, unit.Text)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: out}, nil
}

func dispatchMeta(ctx context.Context, unit statement.Unit, st *session.State, exec Executor) (Result, error) {
	switch unit.Name {
	case "quit", "exit":
		return Result{Effect: EffectTerminate}, nil

	case "clear":
		return Result{Effect: EffectClearScreen}, nil

	case "help":
		return Result{Effect: EffectHelp}, nil

	case `\format`:
		if len(unit.Args) != 1 {
			return Result{}, result.NewFailure(result.ErrInvalidArgument,
				`usage: \format <table|json|csv>`)
		}
		format, err := render.ParseFormat(unit.Args[0])
		if err != nil {
			return Result{}, err
		}
		st.Format = format
		return Result{Outcome: result.AckOutcome("Output format set to " + format.String())}, nil

	case `\dk`:
		out, err := exec.Execute(ctx, "SELECT keyspace_name FROM system_schema.keyspaces;")
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: out}, nil

	case `\dt`:
		ks := st.Keyspace
		if len(unit.Args) > 0 {
			ks = unit.Args[0]
		}
		if ks == "" {
			return Result{}, result.NewFailure(result.ErrNoKeyspaceSelected,
				`no keyspace given and none active (use \dt <keyspace> or USE first)`)
		}
		stmt := fmt.Sprintf("SELECT table_name FROM system_schema.tables WHERE keyspace_name = '%s';", escapeLiteral(ks))
		out, err := exec.Execute(ctx, stmt)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: out}, nil

	case `\refresh`:
		return Result{Effect: EffectRefreshSchema}, nil

	default:
		return Result{}, result.NewFailure(result.ErrInvalidArgument,
			"unknown command %s (type help for commands)", unit.Name)
	}
}

// parseUse reports whether text is a USE statement and extracts the target
// keyspace.
func parseUse(text string) (string, bool) {
	fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "USE") {
		return "", false
	}
	return strings.Trim(fields[1], `"`), true
}

// escapeLiteral doubles single quotes for safe embedding in a CQL string
// literal.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
