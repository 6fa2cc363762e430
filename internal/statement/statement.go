// Package statement turns a stream of raw input lines into discrete logical
// units: meta-commands or semicolon-terminated CQL statements.
package statement

import "strings"

// UnitKind distinguishes the two logical unit variants.
type UnitKind int

const (
	// KindMeta is a client-local command such as help or \format.
	KindMeta UnitKind = iota
	// KindStatement is a terminated CQL statement forwarded to the cluster.
	KindStatement
)

// Unit is one accumulated, ready-to-dispatch piece of user input. Immutable
// once produced and consumed exactly once by the dispatcher.
type Unit struct {
	Kind UnitKind
	Name string   // meta-command name, lowercased, e.g. "quit", "\format"
	Args []string // meta-command arguments
	Text string   // statement text including the terminating semicolon
}

// Meta builds a meta-command unit.
func Meta(name string, args ...string) Unit {
	return Unit{Kind: KindMeta, Name: name, Args: args}
}

// Statement builds a statement unit.
func Statement(text string) Unit {
	return Unit{Kind: KindStatement, Text: text}
}

// bareKeywords complete as meta-commands on their own line, with or without
// a trailing semicolon, when no statement is pending.
var bareKeywords = map[string]bool{
	"help":  true,
	"quit":  true,
	"exit":  true,
	"clear": true,
}

// IsBareKeyword reports whether line is one of the system keywords that
// bypass statement accumulation.
func IsBareKeyword(line string) bool {
	return bareKeywords[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(line), ";"))]
}
