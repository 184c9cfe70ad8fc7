package domain

import (
	"fmt"

	"github.com/printhaus/printhaus/internal/interchange"
)

// AttributeTerms is one raw (attribute, terms) pair as submitted by the
// admin surface.
type AttributeTerms struct {
	AttributeID int64   `json:"attribute_id"`
	TermIDs     []int64 `json:"term_ids"`
}

// Selection is the normalized term-set model of a matrix: an ordered
// attribute list plus the term set chosen for each attribute. An
// attribute never appears in Order without at least one term.
type Selection struct {
	Order []int64
	Terms map[int64][]int64
}

// NewSelection normalizes raw input pairs. Attribute order is
// first-seen, duplicate attribute entries merge into one set, duplicate
// terms collapse, and attributes left with zero terms are dropped.
func NewSelection(pairs []AttributeTerms) Selection {
	sel := Selection{Terms: make(map[int64][]int64)}
	for _, p := range pairs {
		for _, term := range p.TermIDs {
			if !sel.has(p.AttributeID, term) {
				if _, ok := sel.Terms[p.AttributeID]; !ok {
					sel.Order = append(sel.Order, p.AttributeID)
				}
				sel.Terms[p.AttributeID] = append(sel.Terms[p.AttributeID], term)
			}
		}
	}
	return sel
}

func (s Selection) has(attributeID, termID int64) bool {
	for _, t := range s.Terms[attributeID] {
		if t == termID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no attribute carries any term.
func (s Selection) IsEmpty() bool {
	return len(s.Order) == 0
}

// AttributeSetEquals compares only which attribute ids participate;
// order and term contents are irrelevant. This is the diff the repair
// engine keys on.
func (s Selection) AttributeSetEquals(other Selection) bool {
	if len(s.Order) != len(other.Order) {
		return false
	}
	for _, id := range s.Order {
		if _, ok := other.Terms[id]; !ok {
			return false
		}
	}
	return true
}

// Union merges a finishing selection into a base selection: base
// attribute order and term sets are kept, new finishing attributes are
// appended, and shared attributes take the set union of both term sets.
func Union(base, finishing Selection) Selection {
	out := Selection{Terms: make(map[int64][]int64, len(base.Order)+len(finishing.Order))}
	out.Order = append(out.Order, base.Order...)
	for _, id := range base.Order {
		out.Terms[id] = append([]int64(nil), base.Terms[id]...)
	}
	for _, id := range finishing.Order {
		for _, term := range finishing.Terms[id] {
			if !out.has(id, term) {
				if _, ok := out.Terms[id]; !ok {
					out.Order = append(out.Order, id)
				}
				out.Terms[id] = append(out.Terms[id], term)
			}
		}
	}
	return out
}

// EncodeSelection serializes a selection as interchange text: an array
// keyed by attribute id, each value the ordered term id list.
func EncodeSelection(s Selection) (string, error) {
	entries := make([]interchange.Entry, 0, len(s.Order))
	for _, id := range s.Order {
		terms := make([]interchange.Value, 0, len(s.Terms[id]))
		for _, term := range s.Terms[id] {
			terms = append(terms, interchange.Int(term))
		}
		entries = append(entries, interchange.Entry{
			Key: interchange.Int(id),
			Val: interchange.Seq(terms...),
		})
	}
	return interchange.Encode(interchange.Map(entries...))
}

// DecodeSelection parses persisted interchange text back into a
// selection, preserving decoded attribute order. Structural mismatches
// surface as ErrMalformed so callers can apply the same isolation they
// use for codec failures.
func DecodeSelection(text string) (Selection, error) {
	if text == "" {
		return Selection{Terms: map[int64][]int64{}}, nil
	}
	v, err := interchange.Decode(text)
	if err != nil {
		return Selection{}, err
	}

	var pairs []AttributeTerms
	switch v.Kind {
	case interchange.KindMap:
		for _, e := range v.Entries {
			if e.Key.Kind != interchange.KindInt {
				return Selection{}, fmt.Errorf("%w: attribute key is not an integer", interchange.ErrMalformed)
			}
			terms, err := decodeTermList(e.Val)
			if err != nil {
				return Selection{}, err
			}
			pairs = append(pairs, AttributeTerms{AttributeID: e.Key.Int, TermIDs: terms})
		}
	case interchange.KindSeq:
		// Sequential attribute ids collapse to a list on decode;
		// the index is the attribute id.
		for i, item := range v.Seq {
			terms, err := decodeTermList(item)
			if err != nil {
				return Selection{}, err
			}
			pairs = append(pairs, AttributeTerms{AttributeID: int64(i), TermIDs: terms})
		}
	default:
		return Selection{}, fmt.Errorf("%w: selection root is not an array", interchange.ErrMalformed)
	}

	return NewSelection(pairs), nil
}

func decodeTermList(v interchange.Value) ([]int64, error) {
	var items []interchange.Value
	switch v.Kind {
	case interchange.KindSeq:
		items = v.Seq
	case interchange.KindMap:
		for _, e := range v.Entries {
			items = append(items, e.Val)
		}
	default:
		return nil, fmt.Errorf("%w: term list is not an array", interchange.ErrMalformed)
	}

	terms := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Kind != interchange.KindInt {
			return nil, fmt.Errorf("%w: term id is not an integer", interchange.ErrMalformed)
		}
		terms = append(terms, item.Int)
	}
	return terms, nil
}
