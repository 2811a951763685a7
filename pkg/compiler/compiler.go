// Package compiler walks an authored tree and produces symbols. The
// walk never stops at the first problem: every handler reports into
// the pass diagnostics and carries on, and emission is gated on the
// pass having no errors. A document with any error yields no section.
package compiler

import (
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
)

// Compiler holds what is shared between passes. It is safe to use
// from several goroutines, each pass owning its own state.
type Compiler struct {
	logger   log.Logger
	dispatch *Dispatch
}

type Option func(*Compiler)

func WithLogger(logger log.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

func New(dispatch *Dispatch, opts ...Option) *Compiler {
	c := &Compiler{
		logger:   log.NewNopLogger(),
		dispatch: dispatch,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile runs one pass over doc. The section is nil whenever an
// error diagnostic was reported.
func (c *Compiler) Compile(doc *xmltree.Element) (*intermediate.Section, *diag.Diagnostics) {
	p := c.newPass()

	p.Child(Context{Kind: KindDocument}, doc)

	if p.diags.HasErrors() {
		level.Debug(c.logger).Log(
			"msg", "compile produced errors, section suppressed",
			"source", doc.Source.File,
			"errors", p.diags.ErrorCount(),
			"suppressed", p.suppressed,
		)
		return nil, p.diags
	}

	level.Debug(c.logger).Log(
		"msg", "compiled section",
		"source", doc.Source.File,
		"symbols", len(p.symbols),
		"references", len(p.references),
		"warnings", p.diags.WarningCount(),
	)

	return &intermediate.Section{
		ID:         p.sectionID(doc),
		Symbols:    p.symbols,
		References: p.references,
	}, p.diags
}

func (c *Compiler) newPass() *Pass {
	diags := diag.New()
	return &Pass{
		Decode:   decode.New(diags),
		compiler: c,
		diags:    diags,
		keys:     make(map[string]diag.SourceLine),
	}
}

// Pass is the state of compiling one document.
type Pass struct {
	Decode *decode.Decoder

	compiler   *Compiler
	diags      *diag.Diagnostics
	symbols    []*intermediate.Symbol
	references []intermediate.SimpleReference
	keys       map[string]diag.SourceLine
	suppressed int
	sectionId  string
}

func (p *Pass) Diagnostics() *diag.Diagnostics {
	return p.diags
}

func (p *Pass) Logger() log.Logger {
	return p.compiler.logger
}

// Report adds a diagnostic located at el.
func (p *Pass) Report(el *xmltree.Element, t diag.Template, args ...interface{}) {
	p.diags.Add(t.New(el.Source, args...))
}

// Failed reports whether any error was reported so far.
func (p *Pass) Failed() bool {
	return p.diags.HasErrors()
}

func (p *Pass) UnexpectedAttribute(el *xmltree.Element, a xmltree.Attr) {
	name := a.Name
	if a.Namespace != "" {
		name = "{" + a.Namespace + "}" + a.Name
	}
	p.Report(el, diag.UnexpectedAttribute, el.Name, name)
}

func (p *Pass) UnexpectedElement(parent, child *xmltree.Element) {
	p.Report(child, diag.UnexpectedElement, parent.Name, child.Name)
}

// SetSectionID names the section. The first call wins.
func (p *Pass) SetSectionID(id string) {
	if p.sectionId == "" {
		p.sectionId = id
	}
}

func (p *Pass) sectionID(doc *xmltree.Element) string {
	if p.sectionId != "" {
		return p.sectionId
	}
	return doc.Source.File
}

// Child compiles one element in ctx, returning its identifier.
// Elements nothing handles in ctx are reported and skipped.
func (p *Pass) Child(ctx Context, el *xmltree.Element) string {
	h, ok := p.compiler.dispatch.Lookup(ctx.Kind, el.Namespace, el.Name)
	if !ok {
		if ctx.Parent == nil {
			p.Report(el, diag.UnexpectedElement, "document", el.Name)
		} else {
			p.UnexpectedElement(ctx.Parent, el)
		}
		return ""
	}
	return h(p, ctx, el)
}

// Children compiles every child of ctx.Parent in order. When visit is
// not nil it is called with each child and the identifier it produced,
// letting the parent collect values from nested shorthand elements.
func (p *Pass) Children(ctx Context, visit func(child *xmltree.Element, id string)) {
	for _, child := range ctx.Parent.Children {
		id := p.Child(ctx, child)
		if visit != nil {
			visit(child, id)
		}
	}
}

// Emit appends sym to the section, unless an error was reported
// earlier in the pass. Duplicate keys within a table are errors.
func (p *Pass) Emit(el *xmltree.Element, sym *intermediate.Symbol) {
	if p.diags.HasErrors() {
		p.suppressed++
		return
	}

	if err := sym.Validate(); err != nil {
		level.Error(p.compiler.logger).Log("msg", "invalid symbol", "table", sym.Table(), "err", err)
		p.Report(el, diag.InvalidSymbol, el.Name, err.Error())
		return
	}

	k := sym.Table() + ":" + sym.Key()
	if _, ok := p.keys[k]; ok {
		p.Report(el, diag.DuplicateSymbol, sym.Table(), sym.Key())
		return
	}
	p.keys[k] = sym.Source

	p.symbols = append(p.symbols, sym)
}

// Reference records that a field names a symbol of table. Whether the
// target exists is not checked here.
func (p *Pass) Reference(el *xmltree.Element, table string, primaryKeys ...string) {
	p.references = append(p.references, intermediate.SimpleReference{
		Table:       table,
		PrimaryKeys: primaryKeys,
		Source:      el.Source,
	})
}

// RequireAttr reports ExpectedAttribute when el has no attr at all,
// for attributes whose decoded value has no empty form.
func (p *Pass) RequireAttr(el *xmltree.Element, attr string) bool {
	if _, ok := el.Attr(attr); !ok {
		p.Report(el, diag.ExpectedAttribute, el.Name, attr)
		return false
	}
	return true
}

// Require reports ExpectedAttribute when value is empty.
func (p *Pass) Require(el *xmltree.Element, attr, value string) bool {
	if value == "" {
		p.Report(el, diag.ExpectedAttribute, el.Name, attr)
		return false
	}
	return true
}
