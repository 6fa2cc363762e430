// Package result defines the generic typed representation of query results:
// cell values, result sets, and execution outcomes. It is independent of any
// output encoding and of the wire driver.
package result

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindText
	KindBlob
	KindUUID
	KindTimestamp
	KindList
	KindSet
	KindMap
)

// Value is a closed tagged variant covering every cell type the shell can
// receive from the cluster. Exactly one variant field is meaningful, selected
// by Kind. Renderers switch on Kind exhaustively.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Double float64
	Text   string
	Blob   []byte
	UUID   uuid.UUID
	Time   time.Time
	Elems  []Value // list and set elements, in server order
	Pairs  []Pair  // map entries, in server order
}

// Pair is a single map entry.
type Pair struct {
	Key Value
	Val Value
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IntValue wraps a 64-bit integer.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// DoubleValue wraps a float.
func DoubleValue(f float64) Value { return Value{Kind: KindDouble, Double: f} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// BlobValue wraps a byte sequence.
func BlobValue(b []byte) Value { return Value{Kind: KindBlob, Blob: b} }

// UUIDValue wraps a uuid.
func UUIDValue(u uuid.UUID) Value { return Value{Kind: KindUUID, UUID: u} }

// TimeValue wraps a timestamp.
func TimeValue(t time.Time) Value { return Value{Kind: KindTimestamp, Time: t} }

// ListValue wraps an ordered sequence.
func ListValue(elems ...Value) Value { return Value{Kind: KindList, Elems: elems} }

// SetValue wraps a set, keeping server order.
func SetValue(elems ...Value) Value { return Value{Kind: KindSet, Elems: elems} }

// MapValue wraps a mapping, keeping server order.
func MapValue(pairs ...Pair) Value { return Value{Kind: KindMap, Pairs: pairs} }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders the value for table and CSV output. Blobs render as
// 0x-prefixed lowercase hex, timestamps as RFC 3339 UTC, lists as
// [a, b], sets and maps as {a, b} / {k: v} literals. Null renders as the
// literal "null"; CSV callers substitute an empty field for nulls instead.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case KindText:
		return v.Text
	case KindBlob:
		return "0x" + hex.EncodeToString(v.Blob)
	case KindUUID:
		return v.UUID.String()
	case KindTimestamp:
		return v.Time.UTC().Format(time.RFC3339)
	case KindList:
		return "[" + joinValues(v.Elems) + "]"
	case KindSet:
		return "{" + joinValues(v.Elems) + "}"
	case KindMap:
		parts := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			parts[i] = p.Key.String() + ": " + p.Val.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("<unknown kind %d>", v.Kind)
	}
}

func joinValues(vals []Value) string {
	parts := make([]string, len(vals))
	for i, e := range vals {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// JSON returns the natural encoding/json representation of the value:
// null, bool, number, string (text, 0x-hex blob, uuid, RFC 3339 timestamp),
// array for lists and sets, object for maps. Map keys are stringified since
// JSON object keys must be strings.
func (v Value) JSON() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindDouble:
		return v.Double
	case KindText:
		return v.Text
	case KindBlob:
		return "0x" + hex.EncodeToString(v.Blob)
	case KindUUID:
		return v.UUID.String()
	case KindTimestamp:
		return v.Time.UTC().Format(time.RFC3339)
	case KindList, KindSet:
		elems := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = e.JSON()
		}
		return elems
	case KindMap:
		// encoding/json emits object keys sorted, which is deterministic
		// even though server map order is lost.
		obj := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			obj[p.Key.String()] = p.Val.JSON()
		}
		return obj
	default:
		return v.String()
	}
}
