package repl

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/FlorianElke/cqlrs/internal/dispatch"
	"github.com/FlorianElke/cqlrs/internal/result"
)

// cqlKeywords are always completion candidates.
var cqlKeywords = []string{
	// DML
	"SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE",
	"FROM", "WHERE", "SET", "VALUES", "INTO",
	"ORDER BY", "GROUP BY", "LIMIT", "ALLOW FILTERING",
	// DDL
	"CREATE", "ALTER", "DROP", "USE",
	"KEYSPACE", "TABLE", "INDEX", "TYPE", "MATERIALIZED VIEW",
	"WITH", "AND", "PRIMARY KEY", "CLUSTERING ORDER",
	// Types
	"TEXT", "INT", "BIGINT", "FLOAT", "DOUBLE", "BOOLEAN",
	"UUID", "TIMEUUID", "TIMESTAMP", "DATE", "TIME",
	"BLOB", "COUNTER", "DECIMAL", "VARINT",
	"LIST", "MAP", "TUPLE", "FROZEN",
	// Misc
	"IF", "EXISTS", "NOT EXISTS", "AS", "IN",
	"DISTINCT", "COUNT", "TOKEN", "TTL", "WRITETIME",
	"BEGIN", "BATCH", "APPLY", "UNLOGGED",
	"GRANT", "REVOKE", "PERMISSIONS",
}

// Completer implements readline.AutoCompleter with schema awareness:
// keyspace names complete after USE/KEYSPACE, table names after
// FROM/INTO/TABLE. The schema cache is filled by Refresh.
type Completer struct {
	mu        sync.RWMutex
	keyspaces []string
	tables    []string
}

// NewCompleter returns a completer with an empty schema cache.
func NewCompleter() *Completer {
	return &Completer{}
}

// Do returns completion candidates for the word ending at pos, as remainder
// runes plus the length of that word, per the readline contract.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	before := string(line[:pos])
	word := lastWord(before)
	if word == "" {
		return nil, 0
	}

	upperWord := strings.ToUpper(word)
	var out [][]rune
	for _, cand := range c.candidates(strings.ToUpper(before)) {
		if strings.HasPrefix(strings.ToUpper(cand), upperWord) && len(cand) > len(word) {
			out = append(out, []rune(cand[len(word):]+" "))
		}
	}
	return out, len(word)
}

func (c *Completer) candidates(upperLine string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cands := make([]string, 0, len(cqlKeywords))
	cands = append(cands, cqlKeywords...)
	if strings.Contains(upperLine, "USE ") || strings.Contains(upperLine, "KEYSPACE ") {
		cands = append(cands, c.keyspaces...)
	}
	if strings.Contains(upperLine, "FROM ") || strings.Contains(upperLine, "INTO ") || strings.Contains(upperLine, "TABLE ") {
		cands = append(cands, c.tables...)
	}
	return cands
}

// Refresh reloads keyspace and table names from system_schema. Partial
// results are kept when one of the two queries fails.
func (c *Completer) Refresh(ctx context.Context, exec dispatch.Executor) error {
	keyspaces, ksErr := collectColumn(ctx, exec,
		"SELECT keyspace_name FROM system_schema.keyspaces;", 0)
	if ksErr == nil {
		c.mu.Lock()
		c.keyspaces = keyspaces
		c.mu.Unlock()
	}

	tables, tblErr := collectColumn(ctx, exec,
		"SELECT keyspace_name, table_name FROM system_schema.tables;", 1)
	if tblErr == nil {
		c.mu.Lock()
		c.tables = tables
		c.mu.Unlock()
	}

	if ksErr != nil {
		return ksErr
	}
	return tblErr
}

// collectColumn runs a query and gathers the distinct text values of one
// column, sorted.
func collectColumn(ctx context.Context, exec dispatch.Executor, stmt string, col int) ([]string, error) {
	out, err := exec.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if out.Rows == nil {
		return nil, nil
	}

	seen := map[string]bool{}
	var names []string
	for {
		row, ok := out.Rows.Rows.Next()
		if !ok {
			break
		}
		if col >= len(row) || row[col].Kind != result.KindText {
			continue
		}
		name := row[col].Text
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if err := out.Rows.Rows.Close(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 || strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\t") {
		return ""
	}
	return fields[len(fields)-1]
}
