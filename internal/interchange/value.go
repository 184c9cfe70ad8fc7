// Package interchange implements the legacy byte-length-prefixed
// serialization grammar used to persist attribute and term lists. The
// wire format must stay bit-exact: the external system that originated
// this data still reads and writes it.
package interchange

import "errors"

// ErrMalformed is returned when stored text cannot be parsed.
var ErrMalformed = errors.New("malformed_interchange")

type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindString
	KindSeq
	KindMap
)

// Value is the dynamic value union of the interchange grammar.
// A decoded array whose keys are exactly the sequential integers
// 0..n-1 is exposed as KindSeq; any other array as KindMap with
// entries in encounter order.
type Value struct {
	Kind    Kind
	Int     int64
	Str     string
	Seq     []Value
	Entries []Entry
}

// Entry is one key/value pair of a KindMap value. Keys are always
// KindInt or KindString.
type Entry struct {
	Key Value
	Val Value
}

func Null() Value {
	return Value{Kind: KindNull}
}

func Int(n int64) Value {
	return Value{Kind: KindInt, Int: n}
}

func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func Seq(items ...Value) Value {
	return Value{Kind: KindSeq, Seq: items}
}

func Map(entries ...Entry) Value {
	return Value{Kind: KindMap, Entries: entries}
}

// sequentialKeys reports whether the decoded entries carry exactly the
// integer keys 0..n-1 in order, in which case the array collapses to a
// list. This predicate is the single place that decision is made.
func sequentialKeys(entries []Entry) bool {
	for i, e := range entries {
		if e.Key.Kind != KindInt || e.Key.Int != int64(i) {
			return false
		}
	}
	return true
}
