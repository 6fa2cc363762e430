package result

// Column describes one column of a result set.
type Column struct {
	Name string
	Type string // driver-reported type name, e.g. "text", "bigint"
}

// RowIter produces rows one at a time. Implementations may fetch pages from
// the server on demand; callers must Close the iterator even when stopping
// early.
type RowIter interface {
	// Next returns the next row, or false when the sequence is exhausted or
	// an error occurred. Every returned row has exactly one value per column.
	Next() ([]Value, bool)

	// Close releases the iterator and returns any error encountered while
	// iterating, including server-side paging failures.
	Close() error
}

// Set is the generic tabular result of a query. Column order is fixed for
// the lifetime of the set and defines rendering order.
type Set struct {
	Columns []Column
	Rows    RowIter
}

// sliceIter is a RowIter over pre-materialized rows. Used for fixed results
// and in tests.
type sliceIter struct {
	rows [][]Value
	pos  int
}

func (it *sliceIter) Next() ([]Value, bool) {
	if it.pos >= len(it.rows) {
		return nil, false
	}
	row := it.rows[it.pos]
	it.pos++
	return row, true
}

func (it *sliceIter) Close() error { return nil }

// NewSet builds a fully materialized result set.
func NewSet(columns []Column, rows [][]Value) *Set {
	return &Set{Columns: columns, Rows: &sliceIter{rows: rows}}
}
