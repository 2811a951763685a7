package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsAccumulate(t *testing.T) {
	t.Parallel()

	d := New()
	require.False(t, d.HasErrors())
	require.NoError(t, d.Err())

	src := SourceLine{File: "product.wxs", Line: 12}
	d.Add(UnexpectedAttribute.New(src, "WebSite", "Bogus"))
	d.Add(ExpectedForeignRow.New(SourceLine{File: "IIsMimeMap", Line: 1}, "IIsMimeMap", "mime1", "ParentValue", "Site9", "IIsWebSite"))
	d.Add(ExpectedAttribute.New(src, "WebAddress", "Port"))

	require.True(t, d.HasErrors())
	require.Equal(t, 2, d.ErrorCount())
	require.Equal(t, 1, d.WarningCount())
	require.Len(t, d.Messages(), 3)
	require.Len(t, d.Errors(), 2)
	require.Len(t, d.Warnings(), 1)
	require.Len(t, d.Named("ExpectedAttribute"), 1)

	err := d.Err()
	require.Error(t, err)
	var list *ErrorList
	require.ErrorAs(t, err, &list)
	require.Len(t, list.Messages, 2)
	require.Equal(t, Error, list.Messages[0].Severity)
	require.Contains(t, err.Error(), "product.wxs(12): WXE0026")
	require.Contains(t, err.Error(), "Port attribute was not found")
}

func TestErrorSummaryTruncates(t *testing.T) {
	t.Parallel()

	d := New()
	for i := 0; i < 5; i++ {
		d.Add(ExpectedAttribute.New(SourceLine{Line: i + 1}, "WebSite", "Id"))
	}

	require.Contains(t, d.Err().Error(), "... (total 5)")
}

func TestMessageCodes(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		in  Message
		out string
	}{
		{in: ExpectedAttribute.New(SourceLine{}), out: "WXE0010"},
		{in: UnknownPermission.New(SourceLine{}), out: "WXW1001"},
		{in: Template{ID: 7, Severity: Info, Format: "x"}.New(SourceLine{}), out: "WXI0007"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.out, tt.in.Code())
	}
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	catalog := []Template{
		ExpectedAttribute, ExpectedAttributes, ExpectedAttributeOrElement,
		ExpectedAttributeWithOtherAttribute, ExpectedAttributeWithValue,
		IllegalAttributeWithOtherAttribute, IllegalAttributeWithOtherAttributeValue,
		IllegalAttributeWhenNotNested, IllegalAttributeWhenNested, IllegalAttributeValue,
		IllegalEmptyAttributeValue, IllegalIntegerValue, IntegralValueOutOfRange,
		IllegalYesNoValue, IllegalGuidValue, IllegalIdentifier, UnexpectedAttribute,
		UnexpectedElement, ExpectedElement, DuplicateSymbol, ElementMustBeNested,
		GenericReadNotAllowed, IllegalAttributeValueFormat, ExpectedElementText, InvalidSymbol,
		ExpectedParentDirectory,
		UnknownPermission, ExpectedForeignRow, UnrepresentableColumnValue, UnknownTable,
		MalformedCompositeValue,
	}

	ids := make(map[int]string)
	for _, tmpl := range catalog {
		require.NotEmpty(t, tmpl.Name)
		require.NotEmpty(t, tmpl.Format, tmpl.Name)
		require.NotEqual(t, Info, tmpl.Severity, tmpl.Name)
		if tmpl.Severity == Error {
			require.Less(t, tmpl.ID, 100, tmpl.Name)
		} else {
			require.GreaterOrEqual(t, tmpl.ID, 1000, tmpl.Name)
		}
		other, dup := ids[tmpl.ID]
		require.False(t, dup, "%s and %s share id %d", tmpl.Name, other, tmpl.ID)
		ids[tmpl.ID] = tmpl.Name
	}
}

func TestSourceLineString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", SourceLine{}.String())
	require.Equal(t, "IIsWebSite", SourceLine{File: "IIsWebSite"}.String())
	require.Equal(t, "a.wxs(3)", SourceLine{File: "a.wxs", Line: 3}.String())
}

func TestLogWritesEveryMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)

	d := New()
	d.Add(IllegalYesNoValue.New(SourceLine{File: "a.wxs", Line: 2}, "WebAddress", "Secure", "maybe"))
	d.Add(UnknownTable.New(SourceLine{}, "Bogus"))
	d.Log(logger)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "level=error")
	require.Contains(t, lines[0], "code=WXE0023")
	require.Contains(t, lines[1], "level=warn")
}
