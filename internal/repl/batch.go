package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/FlorianElke/cqlrs/internal/dispatch"
	"github.com/FlorianElke/cqlrs/internal/render"
	"github.com/FlorianElke/cqlrs/internal/session"
	"github.com/FlorianElke/cqlrs/internal/statement"
)

// BatchOptions configures non-interactive execution.
type BatchOptions struct {
	// ContinueOnError keeps executing after a failed statement instead of
	// stopping the batch.
	ContinueOnError bool
}

// RunBatch feeds an input stream through the accumulator and executes every
// completed unit under the same single-in-flight contract as the
// interactive loop. An unterminated trailing statement fails the batch.
// The returned error is the first failure under fail-fast, or the last one
// under continue-on-error.
func RunBatch(ctx context.Context, input io.Reader, st *session.State, exec dispatch.Executor, out, errOut io.Writer, opts BatchOptions, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var acc statement.Accumulator
	var lastErr error

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, unit := range acc.Feed(scanner.Text()) {
			res, err := dispatch.Dispatch(ctx, unit, st, exec)
			if err != nil {
				fmt.Fprintf(errOut, "Error: %v\n", err)
				if !opts.ContinueOnError {
					return err
				}
				lastErr = err
				continue
			}
			if res.Effect == dispatch.EffectTerminate {
				return lastErr
			}
			if res.Outcome != nil {
				if err := render.Render(out, res.Outcome, st.Format); err != nil {
					return err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if err := acc.Flush(); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return err
	}
	return lastErr
}

// RunText executes a statement string given on the command line (-e). A
// missing trailing semicolon is supplied, matching cqlsh behavior.
func RunText(ctx context.Context, text string, st *session.State, exec dispatch.Executor, out, errOut io.Writer, logger *slog.Logger) error {
	if !strings.HasSuffix(strings.TrimSpace(text), ";") {
		text += ";"
	}
	return RunBatch(ctx, strings.NewReader(text), st, exec, out, errOut, BatchOptions{}, logger)
}
