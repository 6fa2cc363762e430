package result

// Outcome is the successful result of executing one statement: either a
// result set (queries) or a short acknowledgement (DDL/DML without rows).
// Failures travel separately as a *Failure error.
type Outcome struct {
	Rows *Set   // non-nil for statements that returned rows
	Ack  string // confirmation text for row-less statements
}

// RowsOutcome wraps a result set.
func RowsOutcome(set *Set) *Outcome { return &Outcome{Rows: set} }

// AckOutcome wraps a confirmation message.
func AckOutcome(msg string) *Outcome { return &Outcome{Ack: msg} }
