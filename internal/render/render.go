// Package render converts execution outcomes into table, JSON, or CSV text.
// Rendering never mutates session state and never re-queries the cluster.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/FlorianElke/cqlrs/internal/result"
)

// Format selects the output encoding.
type Format int

const (
	FormatTable Format = iota
	FormatJSON
	FormatCSV
)

// String returns the format's flag value.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	default:
		return "table"
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatTable, result.NewFailure(result.ErrInvalidArgument,
			"unknown output format %q (expected table, json, or csv)", s)
	}
}

// Render writes an outcome to w in the selected format. Acknowledgements
// render as a short status line regardless of format. Failures are not
// rendered here; the caller routes them to its error stream.
func Render(w io.Writer, out *result.Outcome, format Format) error {
	if out.Rows == nil {
		_, err := fmt.Fprintln(w, out.Ack)
		return err
	}

	switch format {
	case FormatJSON:
		return renderJSON(w, out.Rows)
	case FormatCSV:
		return renderCSV(w, out.Rows)
	default:
		return renderTable(w, out.Rows)
	}
}

// renderTable buffers the full row set to compute column widths, then emits
// a bordered grid with a row-count footer.
func renderTable(w io.Writer, set *result.Set) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(set.Columns))
	for i, col := range set.Columns {
		header[i] = col.Name
	}
	t.AppendHeader(header)

	count := 0
	for {
		row, ok := set.Rows.Next()
		if !ok {
			break
		}
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		t.AppendRow(cells)
		count++
	}
	if err := set.Rows.Close(); err != nil {
		return err
	}

	t.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", count)
	return err
}

// renderJSON emits an array of objects, one per row, with keys in declared
// column order. A zero-row set emits [].
func renderJSON(w io.Writer, set *result.Set) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}

	first := true
	for {
		row, ok := set.Rows.Next()
		if !ok {
			break
		}
		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		first = false
		if _, err := io.WriteString(w, "\n  {"); err != nil {
			return err
		}
		for i, col := range set.Columns {
			key, err := json.Marshal(col.Name)
			if err != nil {
				return err
			}
			val, err := json.Marshal(row[i].JSON())
			if err != nil {
				return err
			}
			sep := ""
			if i > 0 {
				sep = ", "
			}
			if _, err := fmt.Fprintf(w, "%s%s: %s", sep, key, val); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "}"); err != nil {
			return err
		}
	}
	if err := set.Rows.Close(); err != nil {
		return err
	}

	if first {
		_, err := io.WriteString(w, "]\n")
		return err
	}
	_, err := io.WriteString(w, "\n]\n")
	return err
}

// renderCSV emits a header line then one RFC 4180 record per row. Nulls
// render as empty fields.
func renderCSV(w io.Writer, set *result.Set) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(set.Columns))
	for i, col := range set.Columns {
		header[i] = col.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(set.Columns))
	for {
		row, ok := set.Rows.Next()
		if !ok {
			break
		}
		for i, v := range row {
			if v.IsNull() {
				record[i] = ""
			} else {
				record[i] = v.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	if err := set.Rows.Close(); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
