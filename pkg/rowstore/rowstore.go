// Package rowstore provides tables of rows to the decompiler and
// stores the rows the compiler produces. Rows come from compiled
// sections, from SQLite databases standing in for an installer
// database, or from YAML fixtures.
package rowstore

import (
	"github.com/kolide/wixext/pkg/intermediate"
)

// FromSection binds compiled sections to rows. Tables appear under
// their current names, in the order their first symbol was emitted,
// and the rows of later sections follow those of earlier ones.
func FromSection(sections ...*intermediate.Section) *intermediate.TableSet {
	ts := intermediate.NewTableSet()
	for _, section := range sections {
		for _, sym := range section.Symbols {
			fields := make([]intermediate.Field, len(sym.Fields))
			copy(fields, sym.Fields)
			ts.Ensure(sym.Table(), sym.Definition).AddRow(fields)
		}
	}
	return ts
}

// RowCount is the number of rows over every table of ts.
func RowCount(ts *intermediate.TableSet) int {
	n := 0
	for _, name := range ts.Names() {
		t, _ := ts.Table(name)
		n += len(t.Rows)
	}
	return n
}
