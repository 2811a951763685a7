package intermediate

import (
	"strings"

	"github.com/kolide/wixext/pkg/diag"
)

// SimpleReference records that a field names a symbol of another
// table. Existence is checked later, at link time, never while
// compiling.
type SimpleReference struct {
	Table       string
	PrimaryKeys []string
	Source      diag.SourceLine
}

// Key joins the referenced primary key values.
func (r SimpleReference) Key() string {
	return strings.Join(r.PrimaryKeys, KeySeparator)
}

func (r SimpleReference) String() string {
	return r.Table + ":" + r.Key()
}

// Section is the output of compiling one document.
type Section struct {
	ID         string
	Symbols    []*Symbol
	References []SimpleReference
}

// SymbolsIn returns the symbols of a table in emission order.
func (s *Section) SymbolsIn(table string) []*Symbol {
	var out []*Symbol
	for _, sym := range s.Symbols {
		if sym.Definition.Name == table || sym.Definition.LegacyName == table {
			out = append(out, sym)
		}
	}
	return out
}

// Find returns the symbol of table with the given primary key.
func (s *Section) Find(table, key string) *Symbol {
	for _, sym := range s.SymbolsIn(table) {
		if sym.Key() == key {
			return sym
		}
	}
	return nil
}

// HasReference reports whether a reference to table:key was recorded.
func (s *Section) HasReference(table string, key ...string) bool {
	want := strings.Join(key, KeySeparator)
	for _, r := range s.References {
		if r.Table == table && r.Key() == want {
			return true
		}
	}
	return false
}
