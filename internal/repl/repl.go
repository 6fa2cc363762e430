// Package repl implements the interactive shell: the readline loop, the
// schema-aware completer, and the batch runner for -e/-f input.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/muesli/termenv"

	"github.com/FlorianElke/cqlrs/internal/dispatch"
	"github.com/FlorianElke/cqlrs/internal/render"
	"github.com/FlorianElke/cqlrs/internal/session"
	"github.com/FlorianElke/cqlrs/internal/statement"
)

const historyFileName = ".cqlrs_history"

// REPL drives the interactive session: one logical unit at a time, executed
// to completion (or cancellation) before the next line is accepted.
type REPL struct {
	state     *session.State
	exec      dispatch.Executor
	completer *Completer
	out       io.Writer
	errOut    io.Writer
	logger    *slog.Logger

	acc statement.Accumulator
}

// New builds a REPL bound to a session state and a cluster executor.
func New(st *session.State, exec dispatch.Executor, out, errOut io.Writer, logger *slog.Logger) *REPL {
	if logger == nil {
		logger = slog.Default()
	}
	return &REPL{
		state:     st,
		exec:      exec,
		completer: NewCompleter(),
		out:       out,
		errOut:    errOut,
		logger:    logger,
	}
}

func (r *REPL) promptFresh() string {
	return termenv.String("cqlrs>").Foreground(termenv.ANSIGreen).Bold().String() + " "
}

func (r *REPL) promptContinuation() string {
	return termenv.String("    ->").Foreground(termenv.ANSIYellow).String() + " "
}

// Run reads lines until quit/exit or EOF. The in-flight statement can be
// interrupted with SIGINT without ending the session.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.promptFresh(),
		HistoryFile:     historyFilePath(),
		AutoComplete:    r.completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initialize line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()

	banner := termenv.String("=== cqlrs ===").Foreground(termenv.ANSICyan).Bold()
	fmt.Fprintln(r.out, banner)
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' or 'exit' to leave.")
	fmt.Fprintln(r.out, "TAB completes CQL keywords, keyspaces, and table names.")
	fmt.Fprintln(r.out)

	r.refreshSchema(ctx)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			r.acc.Reset()
			rl.SetPrompt(r.promptFresh())
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}

		for _, unit := range r.acc.Feed(line) {
			if done := r.handle(ctx, unit); done {
				fmt.Fprintln(r.out, "Goodbye!")
				return nil
			}
		}

		if r.acc.Pending() {
			rl.SetPrompt(r.promptContinuation())
		} else {
			rl.SetPrompt(r.promptFresh())
		}
	}
}

// handle dispatches one unit and renders the result. Returns true when the
// loop should terminate.
func (r *REPL) handle(ctx context.Context, unit statement.Unit) bool {
	// SIGINT cancels only the in-flight execution, not the session.
	execCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	res, err := dispatch.Dispatch(execCtx, unit, r.state, r.exec)
	stop()

	if err != nil {
		r.reportError(err)
		return false
	}

	switch res.Effect {
	case dispatch.EffectTerminate:
		return true
	case dispatch.EffectClearScreen:
		fmt.Fprint(r.out, "\x1b[2J\x1b[H")
		return false
	case dispatch.EffectHelp:
		r.printHelp()
		return false
	case dispatch.EffectRefreshSchema:
		r.refreshSchema(ctx)
		fmt.Fprintln(r.out, "Schema cache refreshed.")
		return false
	}

	if res.Outcome != nil {
		if err := render.Render(r.out, res.Outcome, r.state.Format); err != nil {
			r.reportError(err)
			return false
		}
	}

	if unit.Kind == statement.KindStatement && changesSchema(unit.Text) {
		r.refreshSchema(ctx)
	}
	return false
}

func (r *REPL) reportError(err error) {
	prefix := termenv.String("Error:").Foreground(termenv.ANSIRed).Bold()
	fmt.Fprintf(r.errOut, "%s %v\n", prefix, err)
}

func (r *REPL) refreshSchema(ctx context.Context) {
	if err := r.completer.Refresh(ctx, r.exec); err != nil {
		r.logger.Debug("schema refresh failed", "error", err)
	}
}

// changesSchema reports whether a successful statement likely invalidated
// the completion cache.
func changesSchema(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range []string{"CREATE ", "DROP ", "ALTER ", "USE "} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `Commands:
  help            Show this help message
  quit, exit      Leave the shell
  clear           Clear the screen
  \format <fmt>   Change output format (table, json, csv)
  \dk             List all keyspaces
  \dt [keyspace]  List tables in a keyspace (default: active keyspace)
  \refresh        Refresh the completion schema cache

CQL statements end with a semicolon and may span multiple lines:
  SELECT * FROM system.local;
  USE my_keyspace;
`)
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}
