package compiler

import (
	"fmt"

	"github.com/kolide/wixext/pkg/xmltree"
	"golang.org/x/exp/slices"
)

// Kind names the element a child is being compiled under. The same
// child element can mean different things, or be illegal, depending on
// the kind of its parent.
type Kind string

const (
	KindDocument       Kind = ""
	KindWix            Kind = "Wix"
	KindFragment       Kind = "Fragment"
	KindDirectory      Kind = "Directory"
	KindComponent      Kind = "Component"
	KindFile           Kind = "File"
	KindCreateFolder   Kind = "CreateFolder"
	KindRegistryKey    Kind = "RegistryKey"
	KindRegistryValue  Kind = "RegistryValue"
	KindServiceInstall Kind = "ServiceInstall"
)

// Handler compiles one element and returns the identifier of the
// primary symbol it produced, or "" when it has none.
type Handler func(p *Pass, ctx Context, el *xmltree.Element) string

type key struct {
	parent    Kind
	namespace string
	name      string
}

// Dispatch maps (parent kind, namespace, element name) to a handler.
// It is populated once, while building a toolset, and read-only after.
type Dispatch struct {
	handlers map[key]Handler
}

func NewDispatch() *Dispatch {
	return &Dispatch{handlers: make(map[key]Handler)}
}

// Register binds a handler under each of the given parent kinds.
// Registering the same triple twice is a programming error.
func (d *Dispatch) Register(namespace, name string, h Handler, parents ...Kind) {
	for _, parent := range parents {
		k := key{parent: parent, namespace: namespace, name: name}
		if _, ok := d.handlers[k]; ok {
			panic(fmt.Sprintf("compiler: %s {%s}%s registered twice", parent, namespace, name))
		}
		d.handlers[k] = h
	}
}

func (d *Dispatch) Lookup(parent Kind, namespace, name string) (Handler, bool) {
	h, ok := d.handlers[key{parent: parent, namespace: namespace, name: name}]
	return h, ok
}

// Vocabulary lists the elements legal under a parent kind as
// "{namespace}name", sorted.
func (d *Dispatch) Vocabulary(parent Kind) []string {
	var out []string
	for k := range d.handlers {
		if k.parent == parent {
			out = append(out, "{"+k.namespace+"}"+k.name)
		}
	}
	slices.Sort(out)
	return out
}

// Kinds lists every parent kind with at least one handler.
func (d *Dispatch) Kinds() []Kind {
	seen := make(map[Kind]bool)
	var out []Kind
	for k := range d.handlers {
		if !seen[k.parent] {
			seen[k.parent] = true
			out = append(out, k.parent)
		}
	}
	slices.Sort(out)
	return out
}
