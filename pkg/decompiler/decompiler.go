// Package decompiler turns table rows back into an authored tree.
//
// Decompiling happens in two phases. First every row of every handled
// table is turned into an element, indexed by its table and key, and
// its intended parent is recorded. Then, once all rows are known, the
// recorded parents are resolved: plain and polymorphic parent
// references, claims made by several candidate parents, and any
// extension finalizers. Rows whose parent cannot be found are kept,
// attached to the synthetic Fragment root, with a warning.
package decompiler

import (
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/kolide/wixext/pkg/xmltree"
	"golang.org/x/exp/slices"
)

// Namespace of the root elements the decompiler synthesizes.
const WixNamespace = "http://wixtoolset.org/schemas/v4/wxs"

type Decompiler struct {
	logger   log.Logger
	dispatch *Dispatch
}

type Option func(*Decompiler)

func WithLogger(logger log.Logger) Option {
	return func(d *Decompiler) {
		d.logger = logger
	}
}

func New(dispatch *Dispatch, opts ...Option) *Decompiler {
	d := &Decompiler{
		logger:   log.NewNopLogger(),
		dispatch: dispatch,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Decompile reads every table of ts. The returned tree is always
// complete; problems are reported as warnings.
func (d *Decompiler) Decompile(ts *intermediate.TableSet) (*xmltree.Element, *diag.Diagnostics) {
	p := newPass(d)
	p.tables = ts

	handled := make(map[string]bool)
	rows := 0
	for _, def := range d.dispatch.Tables() {
		for _, name := range def.Names() {
			t, ok := ts.Table(name)
			if !ok {
				continue
			}
			handled[name] = true
			h, _, _ := d.dispatch.Lookup(name)
			for _, row := range t.Rows {
				if row.Definition == nil {
					row.Definition = def
				}
				h(p, row)
				rows++
			}
		}
	}

	for _, name := range ts.Names() {
		if !handled[name] {
			p.diags.Add(diag.UnknownTable.New(diag.SourceLine{File: name}, name))
		}
	}

	p.resolvePlacements()
	p.resolveClaims()
	for _, f := range d.dispatch.finalizers {
		f(p)
	}

	level.Debug(d.logger).Log(
		"msg", "decompiled tables",
		"tables", len(handled),
		"rows", rows,
		"warnings", p.diags.WarningCount(),
	)

	return p.root, p.diags
}

// ParentRef names the row an element belongs under. It is the tagged
// union of every parent a table may have: Table says which kind of
// parent, ID which row. The zero value is the fragment root.
type ParentRef struct {
	Table string
	ID    string
}

func (r ParentRef) IsRoot() bool {
	return r.Table == ""
}

// Root is the ParentRef of elements that belong at the fragment root.
var Root = ParentRef{}

type placement struct {
	child    *xmltree.Element
	parent   ParentRef
	row      *intermediate.Row
	column   string
	fallback func() *xmltree.Element
}

type claim struct {
	claimant *xmltree.Element
	rank     int
	attr     string
	seq      int
}

type claimable struct {
	table string
	key   string
	el    *xmltree.Element
}

// Pass is the state of decompiling one table set.
type Pass struct {
	decompiler *Decompiler
	diags      *diag.Diagnostics
	tables     *intermediate.TableSet

	root     *xmltree.Element
	fragment *xmltree.Element

	index      map[string]map[string]*xmltree.Element
	refs       map[string]*xmltree.Element
	placements []placement
	claims     map[string][]claim
	claimables []claimable
	claimSeq   int
}

func newPass(d *Decompiler) *Pass {
	root := xmltree.New(WixNamespace, "Wix")
	fragment := xmltree.New(WixNamespace, "Fragment")
	root.AddChild(fragment)

	return &Pass{
		decompiler: d,
		diags:      diag.New(),
		root:       root,
		fragment:   fragment,
		index:      make(map[string]map[string]*xmltree.Element),
		refs:       make(map[string]*xmltree.Element),
		claims:     make(map[string][]claim),
	}
}

func (p *Pass) Diagnostics() *diag.Diagnostics {
	return p.diags
}

func (p *Pass) Logger() log.Logger {
	return p.decompiler.logger
}

// Rows returns the rows of def under either of its names, current
// name first. Finalizers use it to sweep whole tables.
func (p *Pass) Rows(def *schema.TableDefinition) []*intermediate.Row {
	var out []*intermediate.Row
	for _, name := range def.Names() {
		if t, ok := p.tables.Table(name); ok {
			out = append(out, t.Rows...)
		}
	}
	return out
}

// Fragment is the synthetic root every unparented element lands in.
func (p *Pass) Fragment() *xmltree.Element {
	return p.fragment
}

// Element creates an element for row.
func (p *Pass) Element(namespace, name string, row *intermediate.Row) *xmltree.Element {
	el := xmltree.New(namespace, name)
	el.Source = row.Source
	return el
}

// Index records el as the element of table row key. Index names need
// not be table names; handlers may add secondary indexes.
func (p *Pass) Index(table, key string, el *xmltree.Element) {
	m, ok := p.index[table]
	if !ok {
		m = make(map[string]*xmltree.Element)
		p.index[table] = m
	}
	if _, dup := m[key]; !dup {
		m[key] = el
	}
}

func (p *Pass) Lookup(table, key string) (*xmltree.Element, bool) {
	el, ok := p.index[table][key]
	return el, ok
}

// Ref returns a reference element at the fragment root, creating it on
// first use. Children whose real parent lives elsewhere nest in it.
func (p *Pass) Ref(namespace, name, id string) *xmltree.Element {
	k := namespace + "|" + name + "|" + id
	if el, ok := p.refs[k]; ok {
		return el
	}
	el := xmltree.New(namespace, name)
	el.SetAttr("Id", id)
	p.fragment.AddChild(el)
	p.refs[k] = el
	return el
}

// Place declares that child belongs under parent. column names the
// row column parent came from, for diagnostics. A parent that is not
// found is reported and the child is kept at the fragment root.
func (p *Pass) Place(child *xmltree.Element, parent ParentRef, row *intermediate.Row, column string) {
	p.placements = append(p.placements, placement{child: child, parent: parent, row: row, column: column})
}

// PlaceOr is Place with a fallback parent used, without a warning,
// when the parent is not among the decompiled rows.
func (p *Pass) PlaceOr(child *xmltree.Element, parent ParentRef, row *intermediate.Row, column string, fallback func() *xmltree.Element) {
	p.placements = append(p.placements, placement{child: child, parent: parent, row: row, column: column, fallback: fallback})
}

// Claimable marks el as a child several rows may claim. Unclaimed
// elements stay at the fragment root.
func (p *Pass) Claimable(table, key string, el *xmltree.Element) {
	p.claimables = append(p.claimables, claimable{table: table, key: key, el: el})
}

// Claim asks for the element of table row key to be nested in
// claimant. The lowest rank wins, ties go to the earliest claim; every
// other claimant refers to the element through attr instead.
func (p *Pass) Claim(table, key string, claimant *xmltree.Element, rank int, attr string) {
	k := table + "|" + key
	p.claims[k] = append(p.claims[k], claim{claimant: claimant, rank: rank, attr: attr, seq: p.claimSeq})
	p.claimSeq++
}

func (p *Pass) resolvePlacements() {
	for _, pl := range p.placements {
		if pl.parent.IsRoot() {
			p.fragment.AddChild(pl.child)
			continue
		}
		if parent, ok := p.Lookup(pl.parent.Table, pl.parent.ID); ok {
			parent.AddChild(pl.child)
			continue
		}
		if pl.fallback != nil {
			pl.fallback().AddChild(pl.child)
			continue
		}
		p.ForeignRow(pl.row, pl.column, pl.parent)
		p.fragment.AddChild(pl.child)
	}
	p.placements = nil
}

func (p *Pass) resolveClaims() {
	taken := make(map[string]bool)
	for _, c := range p.claimables {
		k := c.table + "|" + c.key
		taken[k] = true
		claims := p.sortedClaims(k)
		if len(claims) == 0 {
			p.fragment.AddChild(c.el)
			continue
		}
		claims[0].claimant.AddChild(c.el)
		for _, loser := range claims[1:] {
			loser.claimant.SetAttr(loser.attr, c.key)
		}
	}

	// Claims on rows that were not decompiled stay references.
	for k := range p.claims {
		if taken[k] {
			continue
		}
		key := k[strings.IndexByte(k, '|')+1:]
		for _, c := range p.claims[k] {
			c.claimant.SetAttr(c.attr, key)
		}
	}
}

func (p *Pass) sortedClaims(k string) []claim {
	claims := slices.Clone(p.claims[k])
	slices.SortStableFunc(claims, func(a, b claim) bool {
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.seq < b.seq
	})
	return claims
}
