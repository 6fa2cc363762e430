package statement

import (
	"strings"

	"github.com/FlorianElke/cqlrs/internal/result"
)

// Accumulator consumes input one line at a time and emits logical units as
// they complete. A statement completes at the first semicolon that is not
// inside a quoted literal; text after the terminator is retained as the
// start of the next statement, so several statements may share one line.
//
// Not safe for concurrent use; the interactive loop is the only feeder.
type Accumulator struct {
	buf strings.Builder
}

// Pending reports whether a partial statement is buffered, so the host loop
// can switch to a continuation prompt.
func (a *Accumulator) Pending() bool { return a.buf.Len() > 0 }

// Reset discards any buffered partial statement (interactive interrupt).
func (a *Accumulator) Reset() { a.buf.Reset() }

// Feed consumes one raw line and returns the units it completed, possibly
// none. Empty lines with nothing buffered are a no-op. A line that is a
// meta-command sigil or bare system keyword completes immediately as a
// meta-command, but only when no statement is pending; mid-statement it is
// ordinary statement text.
func (a *Accumulator) Feed(line string) []Unit {
	trimmed := strings.TrimSpace(line)

	if !a.Pending() {
		if trimmed == "" {
			return nil
		}
		if strings.HasPrefix(trimmed, `\`) {
			fields := strings.Fields(strings.TrimSuffix(trimmed, ";"))
			return []Unit{Meta(strings.ToLower(fields[0]), fields[1:]...)}
		}
		if IsBareKeyword(trimmed) {
			name := strings.ToLower(strings.TrimSuffix(trimmed, ";"))
			return []Unit{Meta(name)}
		}
	}

	if trimmed != "" {
		if a.Pending() {
			a.buf.WriteByte(' ')
		}
		a.buf.WriteString(trimmed)
	}

	var units []Unit
	for {
		text, rest, ok := splitTerminated(a.buf.String())
		if !ok {
			break
		}
		units = append(units, Statement(text))
		a.buf.Reset()
		a.buf.WriteString(rest)
	}
	return units
}

// Flush is called at end of a batch input stream. A non-empty buffer is an
// unterminated statement and fails the batch.
func (a *Accumulator) Flush() error {
	if !a.Pending() {
		return nil
	}
	text := a.buf.String()
	a.buf.Reset()
	return result.NewFailure(result.ErrIncompleteStatement, "statement missing terminating semicolon: %q", text)
}

// splitTerminated scans buf for the first semicolon outside quoted text.
// Single-quoted literals use '' as an escaped quote; double-quoted
// identifiers may also contain semicolons. Returns the terminated statement
// (semicolon included, surrounding whitespace trimmed), the remainder, and
// whether a terminator was found.
func splitTerminated(buf string) (text, rest string, ok bool) {
	var inSingle, inDouble bool
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\'':
			if inDouble {
				continue
			}
			if inSingle && i+1 < len(buf) && buf[i+1] == '\'' {
				i++ // escaped quote inside literal
				continue
			}
			inSingle = !inSingle
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case ';':
			if !inSingle && !inDouble {
				return strings.TrimSpace(buf[:i+1]), strings.TrimSpace(buf[i+1:]), true
			}
		}
	}
	return "", "", false
}
