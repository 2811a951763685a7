package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/stretchr/testify/require"
)

const testNS = "urn:test"

var itemTable = schema.NewTable("Wix4Item", "Item",
	schema.Identifier("Item"),
	schema.Number("Size").Range(0, 10),
	schema.Identifier("Owner_").Null(),
)

// testDispatch knows a Root element holding Item elements, which may
// hold Item elements of their own.
func testDispatch() *Dispatch {
	d := NewDispatch()
	d.Register(testNS, "Root", func(p *Pass, ctx Context, el *xmltree.Element) string {
		for _, a := range el.Attrs {
			p.UnexpectedAttribute(el, a)
		}
		p.Children(ctx.Nest("Root", el, ""), nil)
		return ""
	}, KindDocument)

	var item Handler
	item = func(p *Pass, ctx Context, el *xmltree.Element) string {
		var id string
		size := 0
		for _, a := range el.Attrs {
			switch a.Name {
			case "Id":
				id = p.Decode.Identifier(el, a)
			case "Size":
				if v, ok := p.Decode.Integer(el, a, 0, 10); ok {
					size = v
				}
			default:
				p.UnexpectedAttribute(el, a)
			}
		}
		p.Require(el, "Id", id)

		p.Children(ctx.Nest("Item", el, id), nil)

		sym := intermediate.NewSymbol(itemTable, el.Source)
		sym.SetString("Item", id).SetNumber("Size", size).SetOptionalString("Owner_", ctx.ParentID)
		p.Emit(el, sym)
		if ctx.ParentID != "" {
			p.Reference(el, itemTable.Name, ctx.ParentID)
		}
		return id
	}
	d.Register(testNS, "Item", item, "Root", "Item")
	return d
}

func compile(t *testing.T, doc string) (*intermediate.Section, *diag.Diagnostics) {
	root, err := xmltree.Parse(strings.NewReader(doc), "test.wxs")
	require.NoError(t, err)
	return New(testDispatch()).Compile(root)
}

func TestCompileEmitsSymbolsAndReferences(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `<Root xmlns="urn:test">
  <Item Id="a" Size="1">
    <Item Id="b" />
  </Item>
</Root>`)
	require.False(t, diags.HasErrors())
	require.NotNil(t, section)
	require.Equal(t, "test.wxs", section.ID)

	require.Len(t, section.Symbols, 2)
	require.Equal(t, "b", section.Symbols[0].ID(), "children emit before their parent")
	require.Equal(t, "a", section.Symbols[0].Get("Owner_").String())
	require.True(t, section.Symbols[1].Get("Owner_").IsNull())
	require.True(t, section.HasReference("Wix4Item", "a"))
}

func TestAllOrNothingEmission(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `<Root xmlns="urn:test">
  <Item Id="good" />
  <Item Id="bad" Size="11" />
  <Item Id="alsogood" />
</Root>`)
	require.Nil(t, section)
	require.Equal(t, 1, diags.ErrorCount())
	require.Len(t, diags.Named("IntegralValueOutOfRange"), 1)
}

func TestBatchDiagnostics(t *testing.T) {
	t.Parallel()

	_, diags := compile(t, `<Root xmlns="urn:test" Stray="1">
  <Item Size="x" />
  <Item Id="9" />
  <Other />
  <Item Id="ok" Color="red" />
</Root>`)

	names := []string{}
	for _, m := range diags.Errors() {
		names = append(names, m.Name)
	}
	require.ElementsMatch(t, []string{
		"UnexpectedAttribute",
		"IllegalIntegerValue",
		"ExpectedAttribute",
		"IllegalIdentifier",
		"UnexpectedElement",
		"UnexpectedAttribute",
	}, names)
}

func TestDuplicateSymbol(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `<Root xmlns="urn:test">
  <Item Id="same" />
  <Item Id="same" />
</Root>`)
	require.Nil(t, section)
	require.Len(t, diags.Named("DuplicateSymbol"), 1)
}

func TestCompileIsDeterministic(t *testing.T) {
	t.Parallel()

	doc := `<Root xmlns="urn:test"><Item Id="a"><Item Id="b" Size="3" /></Item></Root>`
	first, _ := compile(t, doc)
	second, _ := compile(t, doc)
	require.Equal(t, first, second)
}

func TestUnknownRootElement(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `<Item xmlns="urn:test" Id="x" />`)
	require.Nil(t, section)
	require.Len(t, diags.Named("UnexpectedElement"), 1)
}

func TestDispatchVocabulary(t *testing.T) {
	t.Parallel()

	d := testDispatch()
	require.Equal(t, []string{"{urn:test}Item"}, d.Vocabulary("Item"))
	require.Equal(t, []Kind{KindDocument, "Item", "Root"}, d.Kinds())

	require.Panics(t, func() {
		d.Register(testNS, "Item", nil, "Root")
	})
}

func TestContextNesting(t *testing.T) {
	t.Parallel()

	ctx := Context{Kind: KindComponent, Component: "C"}.With("site", "S")
	child := ctx.With("site", "T")
	require.Equal(t, "S", ctx.Value("site"), "With copies")
	require.Equal(t, "T", child.Value("site"))

	el := xmltree.New(testNS, "WebSite")
	nested := child.Nest("WebSite", el, "S1")
	require.Equal(t, "C", nested.Component)
	require.Equal(t, "WebSite", nested.ParentName())
	require.Equal(t, "S1", nested.ParentID)
}

func TestCompileLogsSuppression(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	root, err := xmltree.Parse(strings.NewReader(`<Root xmlns="urn:test"><Item /></Root>`), "x.wxs")
	require.NoError(t, err)

	_, diags := New(testDispatch(), WithLogger(log.NewLogfmtLogger(&buf))).Compile(root)
	require.True(t, diags.HasErrors())
	require.Contains(t, buf.String(), "section suppressed")
}
