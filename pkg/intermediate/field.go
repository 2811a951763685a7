// Package intermediate holds the records that flow between the
// compiler, the row providers and the decompiler: typed fields,
// symbols, simple references, sections and rows.
package intermediate

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

type FieldKind uint8

const (
	FieldNull FieldKind = iota
	FieldString
	FieldNumber
)

// Field is a nullable string or number.
type Field struct {
	kind FieldKind
	s    string
	n    int
}

// Null is the absent value.
var Null = Field{}

func String(s string) Field {
	return Field{kind: FieldString, s: s}
}

func Number(n int) Field {
	return Field{kind: FieldNumber, n: n}
}

// OptionalString is String, except that the empty string is Null.
func OptionalString(s string) Field {
	if s == "" {
		return Null
	}
	return String(s)
}

func (f Field) Kind() FieldKind {
	return f.kind
}

func (f Field) IsNull() bool {
	return f.kind == FieldNull
}

// String renders the field as text. Null renders as "".
func (f Field) String() string {
	switch f.kind {
	case FieldString:
		return f.s
	case FieldNumber:
		return strconv.Itoa(f.n)
	default:
		return ""
	}
}

// Number returns the numeric value. String fields holding an integer
// convert, anything else reports false.
func (f Field) Number() (int, bool) {
	switch f.kind {
	case FieldNumber:
		return f.n, true
	case FieldString:
		n, err := strconv.Atoi(f.s)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func (f Field) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case FieldString:
		return json.Marshal(f.s)
	case FieldNumber:
		return []byte(strconv.Itoa(f.n)), nil
	default:
		return []byte("null"), nil
	}
}

func (f *Field) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		*f = Null
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return errors.Wrap(err, "decoding string field")
		}
		*f = String(s)
	default:
		n, err := strconv.Atoi(string(raw))
		if err != nil {
			return errors.Wrapf(err, "decoding number field %s", raw)
		}
		*f = Number(n)
	}
	return nil
}
