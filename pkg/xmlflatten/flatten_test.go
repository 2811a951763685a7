package xmlflatten

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const product = `<Wix xmlns="http://wixtoolset.org/schemas/v4/wxs" xmlns:util="http://wixtoolset.org/schemas/v4/wxs/util">
  <Fragment>
    <Component Id="App" Directory="INSTALLDIR">
      <File Id="Main" Source="app.exe" />
      <util:User Id="Svc" Name="svc" />
    </Component>
    <Property Id="A" Value="1" />
    <Property Id="B" Value="2" />
  </Fragment>
</Wix>`

func flat(t *testing.T, doc string, opts ...FlattenOpts) []string {
	t.Helper()

	rows, err := Xml([]byte(doc), opts...)
	require.NoError(t, err)

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String()
	}
	return out
}

func TestXml(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"Wix/Fragment/Component[App]/-Directory = INSTALLDIR",
		"Wix/Fragment/Component[App]/-Id = App",
		"Wix/Fragment/Component[App]/File[Main]/-Id = Main",
		"Wix/Fragment/Component[App]/File[Main]/-Source = app.exe",
		"Wix/Fragment/Component[App]/User[Svc]/-Id = Svc",
		"Wix/Fragment/Component[App]/User[Svc]/-Name = svc",
		"Wix/Fragment/Property[A]/-Id = A",
		"Wix/Fragment/Property[A]/-Value = 1",
		"Wix/Fragment/Property[B]/-Id = B",
		"Wix/Fragment/Property[B]/-Value = 2",
	}, flat(t, product))
}

func TestXmlNamespaces(t *testing.T) {
	t.Parallel()

	for _, row := range flat(t, product) {
		require.NotContains(t, row, "xmlns")
	}

	for _, row := range flat(t, product) {
		require.False(t, strings.HasSuffix(row, "http://wixtoolset.org/schemas/v4/wxs/util"), row)
	}

	var found bool
	for _, row := range flat(t, product, IncludeNamespaces()) {
		if strings.HasPrefix(row, "Wix/-") && strings.HasSuffix(row, " = http://wixtoolset.org/schemas/v4/wxs/util") {
			found = true
		}
	}
	require.True(t, found)
}

func TestXmlByPosition(t *testing.T) {
	t.Parallel()

	rows := flat(t, product, WithKeyAttribute(""))
	require.Contains(t, rows, "Wix/Fragment/Property[0]/-Id = A")
	require.Contains(t, rows, "Wix/Fragment/Property[1]/-Value = 2")
	require.Contains(t, rows, "Wix/Fragment/Component/File/-Source = app.exe")
}

func TestXmlFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "product.wxs")
	require.NoError(t, os.WriteFile(path, []byte(product), 0644))

	rows, err := XmlFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 10)

	_, err = XmlFile(filepath.Join(t.TempDir(), "missing.wxs"))
	require.Error(t, err)

	_, err = Xml([]byte("<Wix><Fragment></Wix>"))
	require.Error(t, err)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	const changed = `<Wix xmlns="http://wixtoolset.org/schemas/v4/wxs" xmlns:u="http://wixtoolset.org/schemas/v4/wxs/util">
  <Fragment>
    <Property Id="B" Value="3" />
    <Property Id="A" Value="1" />
    <Component Id="App" Directory="INSTALLDIR" Guid="*">
      <u:User Id="Svc" Name="svc" />
    </Component>
  </Fragment>
</Wix>`

	a, err := Xml([]byte(product))
	require.NoError(t, err)
	b, err := Xml([]byte(changed))
	require.NoError(t, err)

	require.Empty(t, Diff(a, a))

	var out []string
	for _, c := range Diff(a, b) {
		out = append(out, c.String())
	}
	require.Equal(t, []string{
		"+ Wix/Fragment/Component[App]/-Guid = *",
		"- Wix/Fragment/Component[App]/File[Main]/-Id = Main",
		"- Wix/Fragment/Component[App]/File[Main]/-Source = app.exe",
		"~ Wix/Fragment/Property[B]/-Value = 2 -> 3",
	}, out)
}
