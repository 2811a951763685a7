// Package schema holds the static table definitions every symbol and
// row is shaped by. Definitions are registered once, when a toolset is
// built, and are read-only afterwards.
package schema

import (
	"fmt"
	"regexp"
)

type ColumnType int

const (
	ColumnString ColumnType = iota
	ColumnLocalized
	ColumnNumber
	ColumnIdentifier
	ColumnFormatted
	ColumnCondition
	ColumnGuid
	ColumnRegPath
)

func (t ColumnType) String() string {
	switch t {
	case ColumnString:
		return "string"
	case ColumnLocalized:
		return "localized"
	case ColumnNumber:
		return "number"
	case ColumnIdentifier:
		return "identifier"
	case ColumnFormatted:
		return "formatted"
	case ColumnCondition:
		return "condition"
	case ColumnGuid:
		return "guid"
	case ColumnRegPath:
		return "regpath"
	default:
		return fmt.Sprintf("columntype(%d)", int(t))
	}
}

// IsNumeric reports whether values of the column are stored as integers.
func (t ColumnType) IsNumeric() bool {
	return t == ColumnNumber
}

// ColumnDefinition describes one column of a table.
type ColumnDefinition struct {
	Name     string
	Type     ColumnType
	Nullable bool

	// Primary marks the column as part of the primary key.
	Primary bool

	// MinValue and MaxValue bound number columns when HasRange is set.
	HasRange bool
	MinValue int64
	MaxValue int64

	// KeyTable and KeyColumn record a declared foreign key. KeyColumn
	// is 1-based; zero means no declared key.
	KeyTable  string
	KeyColumn int

	Description string
}

// TableDefinition describes the shape of a table. Name is the current
// spelling, LegacyName the historical unprefixed one, if any.
type TableDefinition struct {
	Name       string
	LegacyName string
	Columns    []ColumnDefinition

	// IdentifierKey marks tables whose primary key is the single
	// identifier in the first column. Symbols of these tables carry an Id.
	IdentifierKey bool
}

// PrimaryKeyColumns returns the positions of the primary key columns.
func (t *TableDefinition) PrimaryKeyColumns() []int {
	var out []int
	for i, c := range t.Columns {
		if c.Primary {
			out = append(out, i)
		}
	}
	return out
}

// ColumnIndex returns the position of a column, or -1.
func (t *TableDefinition) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns every spelling the table may appear under.
func (t *TableDefinition) Names() []string {
	if t.LegacyName == "" || t.LegacyName == t.Name {
		return []string{t.Name}
	}
	return []string{t.Name, t.LegacyName}
}

// identifierPattern is the grammar every Identifier column obeys.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// MaxIdentifierLength is the longest legal identifier.
const MaxIdentifierLength = 72

// IsIdentifier reports whether s is a legal identifier.
func IsIdentifier(s string) bool {
	return len(s) <= MaxIdentifierLength && identifierPattern.MatchString(s)
}

// Column helpers keep the table catalogs terse.

func Identifier(name string) ColumnDefinition {
	return ColumnDefinition{Name: name, Type: ColumnIdentifier}
}

func String(name string) ColumnDefinition {
	return ColumnDefinition{Name: name, Type: ColumnString}
}

func Formatted(name string) ColumnDefinition {
	return ColumnDefinition{Name: name, Type: ColumnFormatted}
}

func Number(name string) ColumnDefinition {
	return ColumnDefinition{Name: name, Type: ColumnNumber}
}

func Guid(name string) ColumnDefinition {
	return ColumnDefinition{Name: name, Type: ColumnGuid}
}

func Condition(name string) ColumnDefinition {
	return ColumnDefinition{Name: name, Type: ColumnCondition, Nullable: true}
}

// Null returns a copy of c that accepts null values.
func (c ColumnDefinition) Null() ColumnDefinition {
	c.Nullable = true
	return c
}

// PK marks the column as part of the primary key.
func (c ColumnDefinition) PK() ColumnDefinition {
	c.Primary = true
	return c
}

// Range bounds a number column.
func (c ColumnDefinition) Range(min, max int64) ColumnDefinition {
	c.HasRange = true
	c.MinValue = min
	c.MaxValue = max
	return c
}

// Key declares a foreign key to column (1-based) of table.
func (c ColumnDefinition) Key(table string, column int) ColumnDefinition {
	c.KeyTable = table
	c.KeyColumn = column
	return c
}
