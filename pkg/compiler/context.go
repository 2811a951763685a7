package compiler

import (
	"github.com/kolide/wixext/pkg/xmltree"
)

// Context is what an element inherits from its ancestors. It is
// passed by value, so a handler narrows it for its children without
// affecting siblings.
type Context struct {
	// Kind and ParentID describe the immediate parent. ParentID is
	// the identifier of the parent's primary symbol, if it has one.
	Kind     Kind
	Parent   *xmltree.Element
	ParentID string

	Component string
	Directory string

	// ServiceName is the Name of an enclosing ServiceInstall.
	ServiceName string

	// Alias is the alias path of an enclosing web virtual directory.
	Alias string

	// Values carries extension specific inheritance, such as the
	// enclosing web site.
	Values map[string]string
}

// Nest returns the context for the children of el.
func (c Context) Nest(kind Kind, el *xmltree.Element, id string) Context {
	c.Kind = kind
	c.Parent = el
	c.ParentID = id
	return c
}

// With returns a copy carrying an extension value.
func (c Context) With(name, value string) Context {
	values := make(map[string]string, len(c.Values)+1)
	for k, v := range c.Values {
		values[k] = v
	}
	values[name] = value
	c.Values = values
	return c
}

func (c Context) Value(name string) string {
	return c.Values[name]
}

// ParentName is the local name of the parent element, for messages.
func (c Context) ParentName() string {
	if c.Parent == nil {
		return string(c.Kind)
	}
	return c.Parent.Name
}
