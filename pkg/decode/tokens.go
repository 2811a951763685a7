package decode

import (
	"github.com/kolide/wixext/pkg/xmltree"
)

type Token[V comparable] struct {
	Name  string
	Value V
}

// Tokens is a bidirectional table between authored tokens and stored
// values. When several tokens share a value, the first one wins on
// the way back.
type Tokens[V comparable] []Token[V]

func (t Tokens[V]) Names() []string {
	out := make([]string, len(t))
	for i, tok := range t {
		out[i] = tok.Name
	}
	return out
}

func (t Tokens[V]) Value(name string) (V, bool) {
	for _, tok := range t {
		if tok.Name == name {
			return tok.Value, true
		}
	}
	var zero V
	return zero, false
}

func (t Tokens[V]) Name(v V) (string, bool) {
	for _, tok := range t {
		if tok.Value == v {
			return tok.Name, true
		}
	}
	return "", false
}

// Lookup decodes an attribute through a token table, reporting the
// legal token names on failure.
func Lookup[V comparable](d *Decoder, el *xmltree.Element, a xmltree.Attr, tokens Tokens[V]) (V, bool) {
	name, ok := d.Enum(el, a, tokens.Names()...)
	if !ok {
		var zero V
		return zero, false
	}
	return tokens.Value(name)
}

// LookupOr is Lookup keeping fallback when the attribute is not one of
// the tokens.
func LookupOr[V comparable](d *Decoder, el *xmltree.Element, a xmltree.Attr, tokens Tokens[V], fallback V) V {
	if v, ok := Lookup(d, el, a, tokens); ok {
		return v
	}
	return fallback
}
