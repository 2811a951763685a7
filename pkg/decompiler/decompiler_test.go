package decompiler

import (
	"testing"

	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/stretchr/testify/require"
)

const testNS = "urn:test"

var (
	parentA = schema.NewTable("Wix4ParentA", "ParentA",
		schema.Identifier("ParentA"),
		schema.Identifier("Child_").Null(),
	)
	parentB = schema.NewTable("Wix4ParentB", "ParentB",
		schema.Identifier("ParentB"),
		schema.Identifier("Child_").Null(),
	)
	child = schema.NewTable("Wix4Child", "Child",
		schema.Identifier("Child"),
		schema.Number("ParentType"),
		schema.Identifier("ParentValue"),
	)
)

func testDispatch() *Dispatch {
	d := NewDispatch()
	parent := func(name string, rank int) Handler {
		return func(p *Pass, row *intermediate.Row) {
			el := p.Element(testNS, name, row)
			el.SetAttr("Id", row.String(0))
			p.Index(row.Definition.Name, row.Key(), el)
			p.Place(el, Root, row, "")
			if c, ok := row.NullableString(1); ok {
				p.Claim(child.Name, c, el, rank, "Child")
			}
		}
	}
	d.Register(parentA, parent("A", 0))
	d.Register(parentB, parent("B", 1))
	d.Register(child, func(p *Pass, row *intermediate.Row) {
		el := p.Element(testNS, "Child", row)
		el.SetAttr("Id", row.String(0))
		n, _ := row.Number(1)
		switch n {
		case 0:
			p.Claimable(child.Name, row.Key(), el)
		case 1:
			p.Place(el, ParentRef{Table: parentA.Name, ID: row.String(2)}, row, "ParentValue")
		case 2:
			p.Place(el, ParentRef{Table: parentB.Name, ID: row.String(2)}, row, "ParentValue")
		default:
			p.Unrepresentable(row, "ParentType", n)
			p.Place(el, Root, row, "ParentType")
		}
	})
	return d
}

func add(ts *intermediate.TableSet, name string, def *schema.TableDefinition, fields ...intermediate.Field) {
	ts.Ensure(name, def).AddRow(fields)
}

var (
	s = intermediate.String
	n = intermediate.Number
)

func TestLegacyNamesRouteToSameHandler(t *testing.T) {
	t.Parallel()

	ts := intermediate.NewTableSet()
	add(ts, "ParentA", parentA, s("legacy"), intermediate.Null)
	add(ts, "Wix4ParentA", parentA, s("current"), intermediate.Null)

	root, diags := New(testDispatch()).Decompile(ts)
	require.Zero(t, diags.WarningCount())

	frag := root.Children[0]
	require.Len(t, frag.ChildrenNamed(testNS, "A"), 2)
}

func TestPolymorphicParent(t *testing.T) {
	t.Parallel()

	ts := intermediate.NewTableSet()
	add(ts, "ParentA", parentA, s("a1"), intermediate.Null)
	add(ts, "ParentB", parentB, s("b1"), intermediate.Null)
	add(ts, "Child", child, s("c1"), n(1), s("a1"))
	add(ts, "Child", child, s("c2"), n(2), s("b1"))

	root, diags := New(testDispatch()).Decompile(ts)
	require.Zero(t, diags.WarningCount())

	a, ok := findByID(root, "a1")
	require.True(t, ok)
	require.Len(t, a.Children, 1)
	require.Equal(t, "c1", idOf(a.Children[0]))

	b, _ := findByID(root, "b1")
	require.Len(t, b.Children, 1)
	require.Equal(t, "c2", idOf(b.Children[0]))
}

func TestMissingParentWarnsOnceAndKeepsChild(t *testing.T) {
	t.Parallel()

	ts := intermediate.NewTableSet()
	add(ts, "ParentA", parentA, s("a1"), intermediate.Null)
	add(ts, "Child", child, s("orphan"), n(1), s("nope"))

	root, diags := New(testDispatch()).Decompile(ts)
	require.Len(t, diags.Named("ExpectedForeignRow"), 1)
	require.Equal(t, 1, diags.WarningCount())

	a, _ := findByID(root, "a1")
	require.Empty(t, a.Children)

	frag := root.Children[0]
	orphans := frag.ChildrenNamed(testNS, "Child")
	require.Len(t, orphans, 1)
	require.Equal(t, "orphan", idOf(orphans[0]))
}

func TestUnknownParentType(t *testing.T) {
	t.Parallel()

	ts := intermediate.NewTableSet()
	add(ts, "Child", child, s("c"), n(7), s("x"))

	root, diags := New(testDispatch()).Decompile(ts)
	require.Len(t, diags.Named("UnrepresentableColumnValue"), 1)
	require.Len(t, root.Children[0].ChildrenNamed(testNS, "Child"), 1)
}

func TestClaimTieBreak(t *testing.T) {
	t.Parallel()

	// B rows come first in the table set and in row order, A must
	// still win because it ranks lower.
	ts := intermediate.NewTableSet()
	add(ts, "ParentB", parentB, s("b1"), s("shared"))
	add(ts, "ParentA", parentA, s("a2"), s("shared"))
	add(ts, "ParentA", parentA, s("a1"), s("shared"))
	add(ts, "Child", child, s("shared"), n(0), s(""))
	add(ts, "Child", child, s("lonely"), n(0), s(""))

	for i := 0; i < 5; i++ {
		root, diags := New(testDispatch()).Decompile(ts)
		require.Zero(t, diags.WarningCount())

		a2, _ := findByID(root, "a2")
		require.Len(t, a2.Children, 1, "first A row in row order wins")
		_, hasAttr := a2.Attr("Child")
		require.False(t, hasAttr)

		for _, id := range []string{"a1", "b1"} {
			el, _ := findByID(root, id)
			require.Empty(t, el.Children, id)
			v, ok := el.Attr("Child")
			require.True(t, ok, id)
			require.Equal(t, "shared", v)
		}

		lonely, _ := findByID(root, "lonely")
		require.Contains(t, root.Children[0].Children, lonely, "unclaimed stays at the root")
	}
}

func TestClaimOnMissingRowBecomesAttribute(t *testing.T) {
	t.Parallel()

	ts := intermediate.NewTableSet()
	add(ts, "ParentA", parentA, s("a1"), s("elsewhere"))

	root, diags := New(testDispatch()).Decompile(ts)
	require.Zero(t, diags.WarningCount())

	a, _ := findByID(root, "a1")
	v, _ := a.Attr("Child")
	require.Equal(t, "elsewhere", v)
}

func TestUnknownTable(t *testing.T) {
	t.Parallel()

	other := schema.NewTable("Other", "", schema.Identifier("Other"))
	ts := intermediate.NewTableSet()
	add(ts, "Other", other, s("x"))

	_, diags := New(testDispatch()).Decompile(ts)
	require.Len(t, diags.Named("UnknownTable"), 1)
}

func TestRefFallback(t *testing.T) {
	t.Parallel()

	d := NewDispatch()
	d.Register(child, func(p *Pass, row *intermediate.Row) {
		el := p.Element(testNS, "Child", row)
		p.PlaceOr(el, ParentRef{Table: "Component", ID: row.String(2)}, row, "ParentValue", func() *xmltree.Element {
			return p.Ref(testNS, "ComponentRef", row.String(2))
		})
	})

	ts := intermediate.NewTableSet()
	add(ts, "Child", child, s("c1"), n(0), s("Comp"))
	add(ts, "Child", child, s("c2"), n(0), s("Comp"))

	root, diags := New(d).Decompile(ts)
	require.Zero(t, diags.WarningCount())

	refs := root.Children[0].ChildrenNamed(testNS, "ComponentRef")
	require.Len(t, refs, 1)
	require.Len(t, refs[0].Children, 2)
}

func TestSetBits(t *testing.T) {
	t.Parallel()

	layout := bitflags.Flags("state",
		bitflags.Flag("StartOnInstall", 1),
		bitflags.Flag("AutoStart", 2),
		bitflags.Inverted("Vital", 4),
	)
	def := schema.NewTable("T", "", schema.Identifier("T"), schema.Number("State").Null())

	var tests = []struct {
		name    string
		value   intermediate.Field
		mode    BitMode
		attrs   map[string]string
		unknown uint32
	}{
		{name: "null", value: intermediate.Null, mode: EveryBit, attrs: map[string]string{}},
		{name: "set only", value: n(1), mode: SetBitsOnly, attrs: map[string]string{"StartOnInstall": "yes"}},
		{name: "every bit", value: n(1), mode: EveryBit, attrs: map[string]string{"StartOnInstall": "yes", "AutoStart": "no"}},
		{name: "inverted", value: n(4), mode: SetBitsOnly, attrs: map[string]string{"Vital": "no"}},
		{name: "unknown", value: n(9), mode: SetBitsOnly, attrs: map[string]string{"StartOnInstall": "yes"}, unknown: 8},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := intermediate.NewTableSet()
			row := ts.Ensure("T", def).AddRow([]intermediate.Field{s("x"), tt.value})

			p := newPass(New(NewDispatch()))
			el := xmltree.New(testNS, "T")
			unknown := p.SetBits(el, row, 1, layout, tt.mode)
			require.Equal(t, tt.unknown, unknown)

			got := map[string]string{}
			for _, a := range el.Attrs {
				got[a.Name] = a.Value
			}
			require.Equal(t, tt.attrs, got)
		})
	}
}

func TestSetYesNoWarnsOnOtherValues(t *testing.T) {
	t.Parallel()

	def := schema.NewTable("T", "", schema.Identifier("T"), schema.Number("Flag").Null())
	ts := intermediate.NewTableSet()
	tbl := ts.Ensure("T", def)

	p := newPass(New(NewDispatch()))
	el := xmltree.New(testNS, "T")

	p.SetYesNo(el, "Flag", tbl.AddRow([]intermediate.Field{s("a"), n(1)}), 1)
	v, _ := el.Attr("Flag")
	require.Equal(t, "yes", v)

	el = xmltree.New(testNS, "T")
	p.SetYesNo(el, "Flag", tbl.AddRow([]intermediate.Field{s("b"), n(2)}), 1)
	_, ok := el.Attr("Flag")
	require.False(t, ok)
	require.Len(t, p.Diagnostics().Named("UnrepresentableColumnValue"), 1)

	el = xmltree.New(testNS, "T")
	p.SetYesNo(el, "Flag", tbl.AddRow([]intermediate.Field{s("c"), s("maybe")}), 1)
	_, ok = el.Attr("Flag")
	require.False(t, ok, "text in a number column is not read as 0")
	require.Len(t, p.Diagnostics().Named("UnrepresentableColumnValue"), 2)
}

func TestNumberColumnHoldingText(t *testing.T) {
	t.Parallel()

	def := schema.NewTable("T", "", schema.Identifier("T"), schema.Number("Count").Null())
	tbl := intermediate.NewTableSet().Ensure("T", def)
	p := newPass(New(NewDispatch()))

	got, ok := p.Number(tbl.AddRow([]intermediate.Field{s("a"), s("12")}), 1)
	require.True(t, ok)
	require.Equal(t, 12, got)

	_, ok = p.Number(tbl.AddRow([]intermediate.Field{s("b"), intermediate.Null}), 1)
	require.False(t, ok)
	require.Zero(t, p.Diagnostics().WarningCount())

	_, ok = p.Number(tbl.AddRow([]intermediate.Field{s("c"), s("twelve")}), 1)
	require.False(t, ok)
	warnings := p.Diagnostics().Named("UnrepresentableColumnValue")
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].String(), "twelve")

	el := xmltree.New(testNS, "T")
	p.SetNumber(el, "Count", tbl.AddRow([]intermediate.Field{s("d"), s("x1")}), 1)
	require.Empty(t, el.Attrs)
	require.Zero(t, p.SetBits(el, tbl.AddRow([]intermediate.Field{s("e"), s("x2")}), 1, bitflags.Flags("f", bitflags.Flag("A", 1)), EveryBit))
	require.Empty(t, el.Attrs)
	require.Len(t, p.Diagnostics().Named("UnrepresentableColumnValue"), 3)
}

func findByID(root *xmltree.Element, id string) (*xmltree.Element, bool) {
	var found *xmltree.Element
	root.Walk(func(e *xmltree.Element) bool {
		if found == nil && idOf(e) == id {
			found = e
		}
		return found == nil
	})
	return found, found != nil
}

func idOf(e *xmltree.Element) string {
	v, _ := e.Attr("Id")
	return v
}
