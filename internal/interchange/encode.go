package interchange

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode serializes a Value to interchange text. Sequences are written
// as arrays keyed 0..n-1, so Encode(Decode(text)) reproduces the
// original bytes for any well-formed input.
func Encode(v Value) (string, error) {
	var b strings.Builder
	if err := encodeValue(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeValue(b *strings.Builder, v Value) error {
	switch v.Kind {
	case KindNull:
		b.WriteString("N;")
	case KindInt:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(v.Int, 10))
		b.WriteByte(';')
	case KindString:
		// Length prefix is the byte count of the UTF-8 encoding.
		b.WriteString("s:")
		b.WriteString(strconv.Itoa(len(v.Str)))
		b.WriteString(`:"`)
		b.WriteString(v.Str)
		b.WriteString(`";`)
	case KindSeq:
		b.WriteString("a:")
		b.WriteString(strconv.Itoa(len(v.Seq)))
		b.WriteString(":{")
		for i, item := range v.Seq {
			if err := encodeValue(b, Int(int64(i))); err != nil {
				return err
			}
			if err := encodeValue(b, item); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case KindMap:
		b.WriteString("a:")
		b.WriteString(strconv.Itoa(len(v.Entries)))
		b.WriteString(":{")
		for _, e := range v.Entries {
			if e.Key.Kind != KindInt && e.Key.Kind != KindString {
				return fmt.Errorf("%w: map key must be integer or string", ErrMalformed)
			}
			if err := encodeValue(b, e.Key); err != nil {
				return err
			}
			if err := encodeValue(b, e.Val); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("%w: unknown value kind %d", ErrMalformed, v.Kind)
	}
	return nil
}
