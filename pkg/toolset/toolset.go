// Package toolset puts the extensions together. A Toolset owns the
// schema registry and the compiler and decompiler dispatch tables,
// built once from its extensions, and is safe for concurrent use.
package toolset

import (
	"context"
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/contexts/ctxlog"
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/extensions/http"
	"github.com/kolide/wixext/pkg/extensions/iis"
	"github.com/kolide/wixext/pkg/extensions/util"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/rowstore"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/pkg/errors"
)

// Extension contributes a vocabulary: its tables, the elements it
// compiles and the rows it decompiles.
type Extension interface {
	Name() string
	Namespace() string
	// Prefix is used for the namespace when writing documents. The
	// host vocabulary has none.
	Prefix() string
	Tables() []*schema.TableDefinition
	RegisterCompiler(d *compiler.Dispatch)
	RegisterDecompiler(d *decompiler.Dispatch)
}

// DefaultExtensions is the host vocabulary and every extension this
// module implements.
func DefaultExtensions() []Extension {
	return []Extension{
		base.New(),
		iis.New(),
		http.New(),
		util.New(),
	}
}

type Toolset struct {
	logger     log.Logger
	extensions []Extension
	registry   *schema.Registry
	namespaces xmltree.Namespaces

	compileDispatch   *compiler.Dispatch
	decompileDispatch *decompiler.Dispatch
}

type Option func(*Toolset)

func WithLogger(logger log.Logger) Option {
	return func(t *Toolset) {
		t.logger = logger
	}
}

// WithExtensions replaces the default extensions. The host vocabulary
// must be among them for extension elements to have anywhere to nest.
func WithExtensions(exts ...Extension) Option {
	return func(t *Toolset) {
		t.extensions = exts
	}
}

func New(opts ...Option) (*Toolset, error) {
	t := &Toolset{
		logger:     log.NewNopLogger(),
		extensions: DefaultExtensions(),
		registry:   schema.NewRegistry(),
		namespaces: xmltree.Namespaces{},

		compileDispatch:   compiler.NewDispatch(),
		decompileDispatch: decompiler.NewDispatch(),
	}

	for _, opt := range opts {
		opt(t)
	}

	names := make(map[string]bool)
	prefixes := make(map[string]string)
	for _, ext := range t.extensions {
		if names[ext.Name()] {
			return nil, errors.Errorf("extension %s added twice", ext.Name())
		}
		names[ext.Name()] = true
		if err := t.registry.Add(ext.Tables()...); err != nil {
			return nil, errors.Wrapf(err, "registering tables of %s", ext.Name())
		}
		if p := ext.Prefix(); p != "" {
			if other, ok := prefixes[p]; ok {
				return nil, errors.Errorf("extensions %s and %s both use prefix %s", other, ext.Name(), p)
			}
			prefixes[p] = ext.Name()
			t.namespaces[ext.Namespace()] = p
		}
		ext.RegisterCompiler(t.compileDispatch)
		ext.RegisterDecompiler(t.decompileDispatch)
	}

	level.Debug(t.logger).Log(
		"msg", "toolset ready",
		"extensions", len(t.extensions),
		"tables", len(t.registry.Tables()),
	)

	return t, nil
}

func (t *Toolset) Registry() *schema.Registry {
	return t.registry
}

func (t *Toolset) Extensions() []Extension {
	out := make([]Extension, len(t.extensions))
	copy(out, t.extensions)
	return out
}

// Namespaces maps each extension namespace to its prefix.
func (t *Toolset) Namespaces() xmltree.Namespaces {
	out := make(xmltree.Namespaces, len(t.namespaces))
	for k, v := range t.namespaces {
		out[k] = v
	}
	return out
}

// Compile compiles one document. The section is nil whenever an error
// was reported. A logger on ctx takes precedence over the toolset's.
func (t *Toolset) Compile(ctx context.Context, doc *xmltree.Element) (*intermediate.Section, *diag.Diagnostics) {
	c := compiler.New(t.compileDispatch, compiler.WithLogger(ctxlog.Or(ctx, t.logger)))
	return c.Compile(doc)
}

// CompileFile parses and compiles the document at path. The error is
// only for documents that could not be read or parsed.
func (t *Toolset) CompileFile(ctx context.Context, path string) (*intermediate.Section, *diag.Diagnostics, error) {
	doc, err := xmltree.ParseFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	section, diags := t.Compile(ctx, doc)
	return section, diags, nil
}

// Decompile turns rows back into a document. The tree is always
// returned; problems are warnings.
func (t *Toolset) Decompile(ctx context.Context, ts *intermediate.TableSet) (*xmltree.Element, *diag.Diagnostics) {
	d := decompiler.New(t.decompileDispatch, decompiler.WithLogger(ctxlog.Or(ctx, t.logger)))
	return d.Decompile(ts)
}

// Write serializes a decompiled document with the extension prefixes.
func (t *Toolset) Write(w io.Writer, root *xmltree.Element) error {
	return xmltree.Write(w, root, t.namespaces)
}

// RoundTrip compiles doc, binds the section to rows and decompiles
// them. When compiling fails no tree is returned. The diagnostics of
// both directions are returned together.
func (t *Toolset) RoundTrip(ctx context.Context, doc *xmltree.Element) (*xmltree.Element, *diag.Diagnostics) {
	section, diags := t.Compile(ctx, doc)
	if section == nil {
		return nil, diags
	}

	root, ddiags := t.Decompile(ctx, rowstore.FromSection(section))
	for _, m := range ddiags.Messages() {
		diags.Add(m)
	}
	return root, diags
}
