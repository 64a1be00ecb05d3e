package frame

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Key is the identity of one row: one value per key dimension.
type Key struct {
	parts []any
	id    string
}

// NewKey builds a key from its dimension values.
func NewKey(parts ...any) Key {
	p := make([]any, len(parts))
	copy(p, parts)
	var id strings.Builder
	for _, v := range p {
		// Length prefixes keep the parts apart whatever bytes they hold.
		enc := encode(v)
		id.WriteString(strconv.Itoa(len(enc)))
		id.WriteByte(':')
		id.WriteString(enc)
	}
	return Key{parts: p, id: id.String()}
}

// ID returns the canonical encoding used for set operations. Integers and
// floats holding exactly the same integral value share an ID.
func (k Key) ID() string { return k.id }

// Len returns the number of dimensions.
func (k Key) Len() int { return len(k.parts) }

// Part returns the value of dimension i.
func (k Key) Part(i int) any { return k.parts[i] }

// Parts returns a copy of the dimension values.
func (k Key) Parts() []any {
	out := make([]any, len(k.parts))
	copy(out, k.parts)
	return out
}

// String renders a single-dimension key as its value and a composite key as a
// parenthesised tuple.
func (k Key) String() string {
	if len(k.parts) == 1 {
		return Format(k.parts[0])
	}
	s := make([]string, len(k.parts))
	for i, v := range k.parts {
		s[i] = Format(v)
	}
	return "(" + strings.Join(s, ", ") + ")"
}

func encode(v any) string {
	if IsNull(v) {
		return "\x00"
	}
	if n, ok := toNumber(v); ok {
		return encodeNumber(n)
	}
	switch x := v.(type) {
	case string:
		return "s" + x
	case bool:
		return "b" + strconv.FormatBool(x)
	case time.Time:
		return "t" + x.UTC().Format(time.RFC3339Nano)
	default:
		return "x" + Format(v)
	}
}

func encodeNumber(n number) string {
	switch n.kind {
	case signed:
		return "i" + strconv.FormatInt(n.i, 10)
	case unsigned:
		return "i" + strconv.FormatUint(n.u, 10)
	}
	if f := n.f; f == math.Trunc(f) && f >= -two63 && f < two64 {
		if f < two63 {
			return "i" + strconv.FormatInt(int64(f), 10)
		}
		return "i" + strconv.FormatUint(uint64(f), 10)
	}
	return "f" + strconv.FormatFloat(n.f, 'g', -1, 64)
}
