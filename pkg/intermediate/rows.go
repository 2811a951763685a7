package intermediate

import (
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/schema"
)

// Row is one row of a table as a row provider exposes it.
type Row struct {
	Definition *schema.TableDefinition
	Fields     []Field
	Source     diag.SourceLine
}

func (r *Row) Field(i int) Field {
	if i < 0 || i >= len(r.Fields) {
		return Null
	}
	return r.Fields[i]
}

func (r *Row) IsNull(i int) bool {
	return r.Field(i).IsNull()
}

// String returns the text of a field, "" when null.
func (r *Row) String(i int) string {
	return r.Field(i).String()
}

// NullableString returns the text of a field and whether it was set.
func (r *Row) NullableString(i int) (string, bool) {
	f := r.Field(i)
	return f.String(), !f.IsNull()
}

// Number returns an integer field and whether it was set and numeric.
func (r *Row) Number(i int) (int, bool) {
	return r.Field(i).Number()
}

// Key joins the primary key values.
func (r *Row) Key() string {
	return primaryKey(r.Definition, r.Fields)
}

func (r *Row) Validate() error {
	return validateFields(r.Definition, r.Fields)
}

// Table is a named collection of rows. Name is the spelling the rows
// were found under, which may be the legacy one.
type Table struct {
	Name       string
	Definition *schema.TableDefinition
	Rows       []*Row
}

// AddRow appends a row, stamping its source with the table position.
func (t *Table) AddRow(fields []Field) *Row {
	row := &Row{
		Definition: t.Definition,
		Fields:     fields,
		Source:     diag.SourceLine{File: t.Name, Line: len(t.Rows) + 1},
	}
	t.Rows = append(t.Rows, row)
	return row
}

// TableSet is the decompiler's input: tables by name, in a stable order.
type TableSet struct {
	tables map[string]*Table
	order  []string
}

func NewTableSet() *TableSet {
	return &TableSet{tables: make(map[string]*Table)}
}

// Ensure returns the table with the given name, creating it if needed.
func (ts *TableSet) Ensure(name string, def *schema.TableDefinition) *Table {
	if t, ok := ts.tables[name]; ok {
		return t
	}
	t := &Table{Name: name, Definition: def}
	ts.tables[name] = t
	ts.order = append(ts.order, name)
	return t
}

func (ts *TableSet) Table(name string) (*Table, bool) {
	t, ok := ts.tables[name]
	return t, ok
}

// Names returns table names in the order they were added.
func (ts *TableSet) Names() []string {
	out := make([]string, len(ts.order))
	copy(out, ts.order)
	return out
}

func (ts *TableSet) Len() int {
	return len(ts.order)
}
