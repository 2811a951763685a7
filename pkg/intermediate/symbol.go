package intermediate

import (
	"fmt"
	"strings"

	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/pkg/errors"
)

// KeySeparator joins the values of composite primary keys.
const KeySeparator = "/"

// Symbol is one compiled record, destined for one row of one table.
// Its fields always line up with the columns of its definition.
type Symbol struct {
	Definition *schema.TableDefinition
	Fields     []Field
	Source     diag.SourceLine
}

func NewSymbol(def *schema.TableDefinition, src diag.SourceLine) *Symbol {
	return &Symbol{
		Definition: def,
		Fields:     make([]Field, len(def.Columns)),
		Source:     src,
	}
}

func (s *Symbol) Table() string {
	return s.Definition.Name
}

// ID is the identifier primary key, or "" for tables keyed otherwise.
func (s *Symbol) ID() string {
	if !s.Definition.IdentifierKey {
		return ""
	}
	return s.Fields[0].String()
}

// Key joins the primary key values.
func (s *Symbol) Key() string {
	return primaryKey(s.Definition, s.Fields)
}

func (s *Symbol) column(name string) int {
	idx := s.Definition.ColumnIndex(name)
	if idx < 0 {
		panic(fmt.Sprintf("intermediate: table %s has no column %s", s.Definition.Name, name))
	}
	return idx
}

// Set assigns a column. Unknown columns and values of the wrong kind
// are programming errors and panic.
func (s *Symbol) Set(column string, f Field) *Symbol {
	idx := s.column(column)
	col := s.Definition.Columns[idx]
	if !f.IsNull() && (f.Kind() == FieldNumber) != col.Type.IsNumeric() {
		panic(fmt.Sprintf("intermediate: %s.%s is a %s column", s.Definition.Name, column, col.Type))
	}
	s.Fields[idx] = f
	return s
}

func (s *Symbol) SetString(column, v string) *Symbol {
	return s.Set(column, String(v))
}

// SetOptionalString stores "" as null.
func (s *Symbol) SetOptionalString(column, v string) *Symbol {
	return s.Set(column, OptionalString(v))
}

func (s *Symbol) SetNumber(column string, n int) *Symbol {
	return s.Set(column, Number(n))
}

// SetOptionalNumber leaves the column null unless ok.
func (s *Symbol) SetOptionalNumber(column string, n int, ok bool) *Symbol {
	if !ok {
		return s.Set(column, Null)
	}
	return s.Set(column, Number(n))
}

func (s *Symbol) Get(column string) Field {
	return s.Fields[s.column(column)]
}

// Validate checks the symbol against its definition: non-nullable
// columns are set and numbers respect declared ranges.
func (s *Symbol) Validate() error {
	return validateFields(s.Definition, s.Fields)
}

// Row converts the symbol into a row of its table.
func (s *Symbol) Row() *Row {
	fields := make([]Field, len(s.Fields))
	copy(fields, s.Fields)
	return &Row{Definition: s.Definition, Fields: fields, Source: s.Source}
}

func primaryKey(def *schema.TableDefinition, fields []Field) string {
	cols := def.PrimaryKeyColumns()
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		parts = append(parts, fields[i].String())
	}
	return strings.Join(parts, KeySeparator)
}

func validateFields(def *schema.TableDefinition, fields []Field) error {
	if len(fields) != len(def.Columns) {
		return errors.Errorf("%s: %d fields for %d columns", def.Name, len(fields), len(def.Columns))
	}
	for i, col := range def.Columns {
		f := fields[i]
		if f.IsNull() {
			if !col.Nullable {
				return errors.Errorf("%s.%s may not be null", def.Name, col.Name)
			}
			continue
		}
		if col.Type.IsNumeric() {
			n, ok := f.Number()
			if !ok {
				return errors.Errorf("%s.%s holds non-numeric value %q", def.Name, col.Name, f.String())
			}
			if col.HasRange && (int64(n) < col.MinValue || int64(n) > col.MaxValue) {
				return errors.Errorf("%s.%s value %d outside %d..%d", def.Name, col.Name, n, col.MinValue, col.MaxValue)
			}
		}
	}
	return nil
}
