// Package xmltree is the generic tree both directions work on: the
// compiler walks it, the decompiler builds it. Attribute order is the
// order of insertion, which keeps serialized output reproducible.
package xmltree

import (
	"github.com/kolide/wixext/pkg/diag"
)

// Attr is a single attribute. Namespace is empty for unqualified
// attributes, which is the common case in WiX authoring.
type Attr struct {
	Namespace string
	Name      string
	Value     string
}

// Element is a node of the structured tree.
type Element struct {
	Namespace string
	Name      string
	Attrs     []Attr
	Children  []*Element
	Text      string
	Source    diag.SourceLine
}

func New(namespace, name string) *Element {
	return &Element{Namespace: namespace, Name: name}
}

// Attr returns the value of an unqualified attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Namespace == "" && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an unqualified attribute, replacing an existing value
// in place so the original position is kept.
func (e *Element) SetAttr(name, value string) *Element {
	for i, a := range e.Attrs {
		if a.Namespace == "" && a.Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

func (e *Element) RemoveAttr(name string) {
	for i, a := range e.Attrs {
		if a.Namespace == "" && a.Name == name {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

func (e *Element) AddChild(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// MoveChildFirst moves an existing child to the front of the child
// list. It reports false when c is not a child of e.
func (e *Element) MoveChildFirst(c *Element) bool {
	idx := e.ChildIndex(c)
	if idx < 0 {
		return false
	}
	copy(e.Children[1:idx+1], e.Children[:idx])
	e.Children[0] = c
	return true
}

func (e *Element) ChildIndex(c *Element) int {
	for i, child := range e.Children {
		if child == c {
			return i
		}
	}
	return -1
}

// ChildrenNamed returns the direct children with the given namespace
// and local name.
func (e *Element) ChildrenNamed(namespace, name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Namespace == namespace && c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits e and its descendants depth first. Returning false from
// fn skips the children of that element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}
