package decompiler

import (
	"fmt"

	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
)

// Handler turns one row into elements. Handlers create and index
// elements and declare where they belong; nesting itself happens after
// every table has been read.
type Handler func(p *Pass, row *intermediate.Row)

// Finalizer runs once, after nesting has been resolved.
type Finalizer func(p *Pass)

// Dispatch routes rows to handlers by table name. Both spellings of a
// table reach the same handler.
type Dispatch struct {
	handlers   map[string]Handler
	defs       map[string]*schema.TableDefinition
	order      []*schema.TableDefinition
	finalizers []Finalizer
}

func NewDispatch() *Dispatch {
	return &Dispatch{
		handlers: make(map[string]Handler),
		defs:     make(map[string]*schema.TableDefinition),
	}
}

// Register binds h to every name of def. Tables are decompiled in
// registration order.
func (d *Dispatch) Register(def *schema.TableDefinition, h Handler) {
	for _, name := range def.Names() {
		if _, ok := d.handlers[name]; ok {
			panic(fmt.Sprintf("decompiler: table %s registered twice", name))
		}
		d.handlers[name] = h
		d.defs[name] = def
	}
	d.order = append(d.order, def)
}

func (d *Dispatch) Finalize(f Finalizer) {
	d.finalizers = append(d.finalizers, f)
}

// Lookup resolves either spelling of a table.
func (d *Dispatch) Lookup(name string) (Handler, *schema.TableDefinition, bool) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, nil, false
	}
	return h, d.defs[name], true
}

// Tables returns the handled definitions in registration order.
func (d *Dispatch) Tables() []*schema.TableDefinition {
	out := make([]*schema.TableDefinition, len(d.order))
	copy(out, d.order)
	return out
}
