package decompiler

import (
	"fmt"
	"strconv"

	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
)

// Warn reports a diagnostic located at row.
func (p *Pass) Warn(row *intermediate.Row, t diag.Template, args ...interface{}) {
	p.diags.Add(t.New(row.Source, args...))
}

// ForeignRow reports a parent reference that matched no row.
func (p *Pass) ForeignRow(row *intermediate.Row, column string, parent ParentRef) {
	p.Warn(row, diag.ExpectedForeignRow, row.Definition.Name, row.Key(), column, parent.ID, parent.Table)
}

// Unrepresentable reports a stored value authoring has no spelling for.
func (p *Pass) Unrepresentable(row *intermediate.Row, column string, value interface{}) {
	p.Warn(row, diag.UnrepresentableColumnValue, row.Definition.Name, row.Key(), fmt.Sprint(value), column)
}

// SetString copies a non-null column into attr.
func (p *Pass) SetString(el *xmltree.Element, attr string, row *intermediate.Row, column int) {
	if v, ok := row.NullableString(column); ok {
		el.SetAttr(attr, v)
	}
}

// Number returns a number column and whether it was set. Text that is
// not a number is reported and treated as unset.
func (p *Pass) Number(row *intermediate.Row, column int) (int, bool) {
	if row.IsNull(column) {
		return 0, false
	}
	n, ok := row.Number(column)
	if !ok {
		p.Unrepresentable(row, row.Definition.Columns[column].Name, row.String(column))
		return 0, false
	}
	return n, true
}

// SetNumber copies a non-null number column into attr.
func (p *Pass) SetNumber(el *xmltree.Element, attr string, row *intermediate.Row, column int) {
	if n, ok := p.Number(row, column); ok {
		el.SetAttr(attr, strconv.Itoa(n))
	}
}

// SetYesNo writes a 0/1 column as no/yes. Any other value is reported
// and left out rather than guessed.
func (p *Pass) SetYesNo(el *xmltree.Element, attr string, row *intermediate.Row, column int) {
	n, ok := p.Number(row, column)
	if !ok {
		return
	}
	v, ok := decode.EncodeYesNo(n)
	if !ok {
		p.Unrepresentable(row, row.Definition.Columns[column].Name, row.String(column))
		return
	}
	el.SetAttr(attr, v)
}

// SetToken writes a column through a token table.
func SetToken[V comparable](p *Pass, el *xmltree.Element, attr string, row *intermediate.Row, column int, value V, tokens decode.Tokens[V]) bool {
	name, ok := tokens.Name(value)
	if !ok {
		p.Unrepresentable(row, row.Definition.Columns[column].Name, value)
		return false
	}
	el.SetAttr(attr, name)
	return true
}

// BitMode says how unpacked bits become attributes.
type BitMode int

const (
	// SetBitsOnly writes "yes" for set bits, and "no" for set inverted
	// bits. Clear bits are left out.
	SetBitsOnly BitMode = iota
	// EveryBit also writes "no" for clear bits, keeping a word whose
	// bits were authored as "no" distinguishable from an absent one.
	EveryBit
)

// SetBits unpacks a word column into one attribute per named bit and
// returns the bits no name covers. Null columns write nothing.
func (p *Pass) SetBits(el *xmltree.Element, row *intermediate.Row, column int, layout bitflags.Layout, mode BitMode) uint32 {
	n, ok := p.Number(row, column)
	if !ok {
		return 0
	}
	values, unknown := bitflags.Unpack(layout, uint32(n))
	for _, b := range layout.Bits() {
		switch values[b.Name] {
		case bitflags.On:
			el.SetAttr(b.Name, "yes")
		case bitflags.Off:
			el.SetAttr(b.Name, "no")
		default:
			if mode == EveryBit && !b.Inverted {
				el.SetAttr(b.Name, "no")
			}
		}
	}
	return unknown
}
