package rowstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/extensions/util"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/stretchr/testify/require"
)

const document = `<Wix xmlns="http://wixtoolset.org/schemas/v4/wxs" xmlns:util="http://wixtoolset.org/schemas/v4/wxs/util">
  <Fragment>
    <DirectoryRef Id="INSTALLDIR">
      <Component Id="App">
        <util:User Id="SvcUser" Name="svc" CreateUser="no" LogonAsService="yes">
          <util:GroupRef Id="Admins" />
        </util:User>
        <util:RemoveFolderEx Id="Cache" Property="CACHEDIR" Condition="NOT UPGRADINGPRODUCTCODE" />
      </Component>
    </DirectoryRef>
    <util:Group Id="Admins" Name="Administrators" />
  </Fragment>
</Wix>`

func registry(t *testing.T) *schema.Registry {
	t.Helper()

	reg := schema.NewRegistry()
	require.NoError(t, reg.Add(base.Tables()...))
	require.NoError(t, reg.Add(util.Tables()...))
	return reg
}

func compiled(t *testing.T) *intermediate.Section {
	t.Helper()

	root, err := xmltree.Parse(strings.NewReader(document), "rowstore.wxs")
	require.NoError(t, err)

	d := compiler.NewDispatch()
	base.RegisterCompiler(d)
	util.RegisterCompiler(d)
	section, diags := compiler.New(d).Compile(root)
	require.NoError(t, diags.Err())
	return section
}

func decompile(ts *intermediate.TableSet) (*xmltree.Element, int) {
	d := decompiler.NewDispatch()
	base.RegisterDecompiler(d)
	util.RegisterDecompiler(d)
	root, diags := decompiler.New(d).Decompile(ts)
	return root, diags.WarningCount()
}

// dump renders a table set as text, one line per row.
func dump(ts *intermediate.TableSet) []string {
	var out []string
	for _, name := range ts.Names() {
		t, _ := ts.Table(name)
		for _, row := range t.Rows {
			fields := make([]string, len(row.Fields))
			for i, f := range row.Fields {
				switch {
				case f.IsNull():
					fields[i] = "~"
				case f.Kind() == intermediate.FieldNumber:
					fields[i] = "#" + f.String()
				default:
					fields[i] = f.String()
				}
			}
			out = append(out, name+"|"+strings.Join(fields, "|"))
		}
	}
	return out
}

func TestFromSection(t *testing.T) {
	t.Parallel()

	section := compiled(t)
	ts := FromSection(section)

	// Handlers emit after their children.
	require.Equal(t, []string{"Wix4UserGroup", "Wix4User", "Wix4RemoveFolderEx", "Component", "Wix4Group"}, ts.Names())
	require.Equal(t, len(section.Symbols), RowCount(ts))

	users, ok := ts.Table("Wix4User")
	require.True(t, ok)
	require.Len(t, users.Rows, 1)
	require.Equal(t, "SvcUser", users.Rows[0].Key())
	require.Equal(t, diag.SourceLine{File: "Wix4User", Line: 1}, users.Rows[0].Source)

	// Rows own their fields.
	users.Rows[0].Fields[2] = intermediate.String("changed")
	require.Equal(t, "svc", section.Find("User", "SvcUser").Get("Name").String())
}

func TestColumnName(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		in  string
		out string
	}{
		{in: "Component", out: "component"},
		{in: "Component_", out: "component_ref"},
		{in: "Directory_Parent", out: "directory_parent"},
		{in: "StartType", out: "start_type"},
		{in: "FileShare_", out: "file_share_ref"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.out, ColumnName(tt.in), tt.in)
	}
}

func TestColumnNamesAreDistinct(t *testing.T) {
	t.Parallel()

	for _, def := range registry(t).Tables() {
		_, err := columnNames(def)
		require.NoError(t, err, def.Name)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "product.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	written := FromSection(compiled(t))
	require.NoError(t, WriteSQLite(ctx, db, written))

	_, err = db.ExecContext(ctx, `CREATE TABLE "Binary" (name TEXT, data BLOB)`)
	require.NoError(t, err)

	read, err := ReadSQLite(ctx, db, registry(t))
	require.NoError(t, err)

	require.ElementsMatch(t, dump(written), dump(read))

	binary, ok := read.Table("Binary")
	require.True(t, ok)
	require.Nil(t, binary.Definition)
	require.Empty(t, binary.Rows)

	_, warnings := decompile(read)
	require.Equal(t, 1, warnings, "unknown Binary table")
}

func TestSQLiteKeepsStoredTypes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "typed.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	ts := intermediate.NewTableSet()
	ts.Ensure("User", util.UserTable).AddRow([]intermediate.Field{
		intermediate.String("U"), intermediate.Null, intermediate.String("u"), intermediate.Null, intermediate.Null, intermediate.Number(0x200),
	})
	require.NoError(t, WriteSQLite(ctx, db, ts))

	// An installer database written by something else may hold text in
	// a number column.
	_, err = db.ExecContext(ctx, `INSERT INTO "User" ("_row", "user", "component_ref", "name", "domain", "password", "attributes") VALUES (2, 'V', 'App', 'v', NULL, NULL, 'lots')`)
	require.NoError(t, err)

	read, err := ReadSQLite(ctx, db, registry(t))
	require.NoError(t, err)
	users, ok := read.Table("User")
	require.True(t, ok)
	require.Equal(t, util.UserTable, users.Definition)
	require.Len(t, users.Rows, 2)

	require.True(t, users.Rows[0].IsNull(1))
	require.Equal(t, intermediate.FieldNumber, users.Rows[0].Field(5).Kind())
	require.Equal(t, "V", users.Rows[1].String(0))
	require.Equal(t, intermediate.FieldString, users.Rows[1].Field(5).Kind())
	require.Equal(t, "lots", users.Rows[1].String(5))

	_, warnings := decompile(read)
	require.Equal(t, 1, warnings, "attributes of V")
}

func TestWriteSQLiteNeedsDefinitions(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "bad.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	ts := intermediate.NewTableSet()
	ts.Ensure("Mystery", nil)
	require.Error(t, WriteSQLite(context.Background(), db, ts))
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	f, err := os.Open(filepath.Join("testdata", "util.yaml"))
	require.NoError(t, err)
	defer f.Close()

	ts, err := LoadYAML(f, registry(t))
	require.NoError(t, err)
	require.Equal(t, []string{"Component", "User", "Wix4Group", "UserGroup", "Wix4ServiceConfig", "Wix4XmlFile", "Binary"}, ts.Names())

	users, _ := ts.Table("User")
	require.Equal(t, util.UserTable, users.Definition)
	require.Len(t, users.Rows, 2)
	n, ok := users.Rows[0].Number(5)
	require.True(t, ok)
	require.Equal(t, 576, n)
	require.True(t, users.Rows[1].IsNull(5), "trailing columns read as null")

	configs, _ := ts.Table("Wix4ServiceConfig")
	require.Equal(t, intermediate.FieldString, configs.Rows[0].Field(2).Kind(), "quoted numbers stay text")

	files, _ := ts.Table("Wix4XmlFile")
	require.Equal(t, intermediate.FieldString, files.Rows[0].Field(4).Kind())
	require.Equal(t, "8080", files.Rows[0].String(4))

	binary, _ := ts.Table("Binary")
	require.Nil(t, binary.Definition)

	root, warnings := decompile(ts)
	require.Equal(t, 1, warnings, "unknown Binary table")

	var decompiled int
	root.Walk(func(e *xmltree.Element) bool {
		if e.Namespace == util.Namespace && e.Name == "User" {
			decompiled++
		}
		return true
	})
	require.Equal(t, 2, decompiled)
}

func TestLoadYAMLErrors(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name string
		in   string
	}{
		{name: "not yaml", in: "tables: [\n"},
		{name: "tables not a mapping", in: "tables: [a, b]\n"},
		{name: "rows not a list", in: "tables:\n  Group: G\n"},
		{name: "row not a list", in: "tables:\n  Group:\n    - G\n"},
		{name: "too many values", in: "tables:\n  Group:\n    - [G, ~, g, ~, extra]\n"},
		{name: "nested value", in: "tables:\n  Group:\n    - [[G], ~, g]\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadYAML(strings.NewReader(tt.in), registry(t))
			require.Error(t, err)
		})
	}

	ts, err := LoadYAML(strings.NewReader("# nothing\n"), registry(t))
	require.NoError(t, err)
	require.Zero(t, ts.Len())
}
