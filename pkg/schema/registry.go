package schema

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownTable is returned by Lookup for names nothing registered.
var ErrUnknownTable = errors.New("unknown table")

// Registry is the catalog of table definitions. Both the current and
// the legacy name of a table resolve to the same definition.
type Registry struct {
	byName map[string]*TableDefinition
	order  []*TableDefinition
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*TableDefinition),
	}
}

// Define creates and registers a table. When no column is marked
// primary, the first column is the primary key.
func (r *Registry) Define(name, legacyName string, columns ...ColumnDefinition) (*TableDefinition, error) {
	def := NewTable(name, legacyName, columns...)
	if err := r.Add(def); err != nil {
		return nil, err
	}
	return def, nil
}

// NewTable builds a definition without registering it.
func NewTable(name, legacyName string, columns ...ColumnDefinition) *TableDefinition {
	cols := make([]ColumnDefinition, len(columns))
	copy(cols, columns)

	primary := 0
	for _, c := range cols {
		if c.Primary {
			primary++
		}
	}
	if primary == 0 && len(cols) > 0 {
		cols[0].Primary = true
		primary = 1
	}

	return &TableDefinition{
		Name:          name,
		LegacyName:    legacyName,
		Columns:       cols,
		IdentifierKey: primary == 1 && cols[0].Primary && cols[0].Type == ColumnIdentifier,
	}
}

// Add registers existing definitions. A name may only be claimed once.
func (r *Registry) Add(defs ...*TableDefinition) error {
	for _, def := range defs {
		if def == nil || def.Name == "" {
			return errors.New("table definition without a name")
		}
		if len(def.Columns) == 0 {
			return errors.Errorf("table %s has no columns", def.Name)
		}
		for _, n := range def.Names() {
			if existing, ok := r.byName[n]; ok && existing != def {
				return errors.Errorf("table name %s already registered by %s", n, existing.Name)
			}
		}
		for _, n := range def.Names() {
			r.byName[n] = def
		}
		r.order = append(r.order, def)
	}
	return nil
}

// Lookup resolves a table by either of its names.
func (r *Registry) Lookup(name string) (*TableDefinition, error) {
	def, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownTable, name)
	}
	return def, nil
}

// MustLookup is Lookup for call sites where an unknown table is a
// programming error.
func (r *Registry) MustLookup(name string) *TableDefinition {
	def, err := r.Lookup(name)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return def
}

// Tables returns the definitions in registration order.
func (r *Registry) Tables() []*TableDefinition {
	out := make([]*TableDefinition, len(r.order))
	copy(out, r.order)
	return out
}
