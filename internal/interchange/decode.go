package interchange

import (
	"fmt"
	"strconv"
)

// Decode parses interchange text into a Value. The whole input must be
// consumed; trailing bytes are an error.
func Decode(text string) (Value, error) {
	d := &decoder{src: []byte(text)}
	v, err := d.value()
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(d.src) {
		return Value{}, d.errorf("trailing data")
	}
	return v, nil
}

// decoder walks the input with an absolute cursor; parsing never
// backtracks.
type decoder struct {
	src []byte
	pos int
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformed, fmt.Sprintf(format, args...), d.pos)
}

func (d *decoder) value() (Value, error) {
	if d.pos >= len(d.src) {
		return Value{}, d.errorf("missing type tag")
	}
	tag := d.src[d.pos]
	d.pos++

	switch tag {
	case 'N':
		if err := d.expect(';'); err != nil {
			return Value{}, err
		}
		return Null(), nil
	case 'i':
		return d.integer()
	case 's':
		return d.str()
	case 'a':
		return d.array()
	default:
		return Value{}, d.errorf("unsupported type tag %q", tag)
	}
}

func (d *decoder) integer() (Value, error) {
	if err := d.expect(':'); err != nil {
		return Value{}, err
	}
	raw, err := d.until(';')
	if err != nil {
		return Value{}, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{}, d.errorf("invalid integer %q", raw)
	}
	return Int(n), nil
}

func (d *decoder) str() (Value, error) {
	if err := d.expect(':'); err != nil {
		return Value{}, err
	}
	raw, err := d.until(':')
	if err != nil {
		return Value{}, err
	}
	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		return Value{}, d.errorf("invalid string length %q", raw)
	}
	if err := d.expect('"'); err != nil {
		return Value{}, err
	}
	// The length prefix counts bytes, not characters; take the raw
	// bytes verbatim so multi-byte UTF-8 content round-trips.
	if d.pos+length > len(d.src) {
		return Value{}, d.errorf("string length %d exceeds input", length)
	}
	s := string(d.src[d.pos : d.pos+length])
	d.pos += length
	if err := d.expect('"'); err != nil {
		return Value{}, d.errorf("string length does not match terminator")
	}
	if err := d.expect(';'); err != nil {
		return Value{}, err
	}
	return String(s), nil
}

func (d *decoder) array() (Value, error) {
	if err := d.expect(':'); err != nil {
		return Value{}, err
	}
	raw, err := d.until(':')
	if err != nil {
		return Value{}, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return Value{}, d.errorf("invalid array count %q", raw)
	}
	if err := d.expect('{'); err != nil {
		return Value{}, err
	}

	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		key, err := d.value()
		if err != nil {
			return Value{}, err
		}
		if key.Kind != KindInt && key.Kind != KindString {
			return Value{}, d.errorf("array key must be integer or string")
		}
		val, err := d.value()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key, Val: val})
	}
	if err := d.expect('}'); err != nil {
		return Value{}, d.errorf("unterminated array")
	}

	if sequentialKeys(entries) {
		items := make([]Value, len(entries))
		for i, e := range entries {
			items[i] = e.Val
		}
		return Value{Kind: KindSeq, Seq: items}, nil
	}
	return Value{Kind: KindMap, Entries: entries}, nil
}

func (d *decoder) expect(c byte) error {
	if d.pos >= len(d.src) || d.src[d.pos] != c {
		return d.errorf("expected %q", c)
	}
	d.pos++
	return nil
}

// until consumes bytes up to (and including) the delimiter and returns
// everything before it.
func (d *decoder) until(delim byte) (string, error) {
	start := d.pos
	for d.pos < len(d.src) {
		if d.src[d.pos] == delim {
			s := string(d.src[start:d.pos])
			d.pos++
			return s, nil
		}
		d.pos++
	}
	return "", d.errorf("missing %q delimiter", delim)
}
