package util

import (
	"strings"
	"testing"

	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/stretchr/testify/require"
)

const header = `<Wix xmlns="http://wixtoolset.org/schemas/v4/wxs" xmlns:util="http://wixtoolset.org/schemas/v4/wxs/util">`

func compileDocument(t *testing.T, doc string) (*intermediate.Section, *diag.Diagnostics) {
	t.Helper()

	root, err := xmltree.Parse(strings.NewReader(doc), "util.wxs")
	require.NoError(t, err)

	d := compiler.NewDispatch()
	base.RegisterCompiler(d)
	RegisterCompiler(d)
	return compiler.New(d).Compile(root)
}

// compile places body in a component of INSTALLDIR. outside goes next
// to the directory, directly in the fragment.
func compile(t *testing.T, body, outside string) (*intermediate.Section, *diag.Diagnostics) {
	t.Helper()

	return compileDocument(t, header+`
  <Fragment>
    <DirectoryRef Id="INSTALLDIR">
      <Component Id="App">`+body+`</Component>
    </DirectoryRef>`+outside+`
  </Fragment>
</Wix>`)
}

func decompile(ts *intermediate.TableSet) (*xmltree.Element, *diag.Diagnostics) {
	d := decompiler.NewDispatch()
	base.RegisterDecompiler(d)
	RegisterDecompiler(d)
	return decompiler.New(d).Decompile(ts)
}

func tableSet(section *intermediate.Section) *intermediate.TableSet {
	ts := intermediate.NewTableSet()
	for _, sym := range section.Symbols {
		ts.Ensure(sym.Table(), sym.Definition).AddRow(sym.Row().Fields)
	}
	return ts
}

func number(t *testing.T, sym *intermediate.Symbol, column string) int {
	t.Helper()
	n, ok := sym.Get(column).Number()
	require.True(t, ok, column)
	return n
}

func find(root *xmltree.Element, name string) []*xmltree.Element {
	var out []*xmltree.Element
	root.Walk(func(e *xmltree.Element) bool {
		if e.Namespace == Namespace && e.Name == name {
			out = append(out, e)
		}
		return true
	})
	return out
}

// parentOf finds the element holding child.
func parentOf(root, child *xmltree.Element) *xmltree.Element {
	var parent *xmltree.Element
	root.Walk(func(e *xmltree.Element) bool {
		if e.ChildIndex(child) >= 0 {
			parent = e
			return false
		}
		return true
	})
	return parent
}

func attr(el *xmltree.Element, name string) string {
	v, _ := el.Attr(name)
	return v
}

func TestCompileUser(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `
        <util:User Id="SvcUser" Name="svc" Domain="CORP" CreateUser="no" LogonAsService="yes" PasswordNeverExpires="yes">
          <util:GroupRef Id="Admins" />
        </util:User>`, `
    <util:Group Id="Admins" Name="Administrators" />`)
	require.NoError(t, diags.Err())

	user := section.Find("User", "SvcUser")
	require.NotNil(t, user)
	require.Equal(t, "App", user.Get("Component_").String())
	require.Equal(t, "CORP", user.Get("Domain").String())
	require.True(t, user.Get("Password").IsNull())
	require.Equal(t, 0x200|0x40|0x1, number(t, user, "Attributes"))

	group := section.Find("Wix4Group", "Admins")
	require.NotNil(t, group)
	require.True(t, group.Get("Component_").IsNull())

	require.NotNil(t, section.Find("UserGroup", "SvcUser/Admins"))
	require.True(t, section.HasReference("Wix4Group", "Admins"))
}

func TestUserRules(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name    string
		body    string
		outside string
		diag    string
	}{
		{
			name:    "creation bits outside a component",
			outside: `<util:User Id="U" Name="u" Disabled="yes" />`,
			diag:    "IllegalAttributeWhenNotNested",
		},
		{
			name: "fail and update",
			body: `<util:User Id="U" Name="u" FailIfExists="yes" UpdateIfExists="yes" />`,
			diag: "IllegalAttributeWithOtherAttribute",
		},
		{
			name:    "membership of an existing user",
			outside: `<util:User Id="U" Name="u"><util:GroupRef Id="G" /></util:User>`,
			diag:    "ElementMustBeNested",
		},
		{
			name: "name required",
			body: `<util:User Id="U" />`,
			diag: "ExpectedAttribute",
		},
		{
			name: "bad yes/no",
			body: `<util:User Id="U" Name="u" Vital="maybe" />`,
			diag: "IllegalYesNoValue",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			section, diags := compile(t, tt.body, tt.outside)
			require.Nil(t, section)
			require.Len(t, diags.Named(tt.diag), 1, diags.Messages())
		})
	}
}

func TestPermissionEx(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name   string
		body   string
		object string
		table  string
		parent string
		word   int
	}{
		{
			name:   "create folder",
			body:   `<CreateFolder><util:PermissionEx User="Everyone" CreateFile="yes" Traverse="yes" /></CreateFolder>`,
			object: "INSTALLDIR",
			table:  "CreateFolder",
			parent: "CreateFolder",
			word:   0x2 | 0x20,
		},
		{
			name:   "file",
			body:   `<File Id="Conf" Name="app.conf"><util:PermissionEx User="Users" Domain="CORP" Read="yes" Write="yes" /></File>`,
			object: "Conf",
			table:  "File",
			parent: "File",
			word:   0x1 | 0x2,
		},
		{
			name:   "registry key",
			body:   `<RegistryKey Id="Key" Root="HKLM" Key="Software\Example"><util:PermissionEx User="Users" EnumerateSubkeys="yes" Delete="yes" /></RegistryKey>`,
			object: "Key",
			table:  "Registry",
			parent: "RegistryKey",
			word:   0x8 | 0x10000,
		},
		{
			name:   "service",
			body:   `<ServiceInstall Id="Svc" Name="example"><util:PermissionEx User="Users" ServiceStart="yes" ServiceStop="yes" /></ServiceInstall>`,
			object: "Svc",
			table:  "ServiceInstall",
			parent: "ServiceInstall",
			word:   0x10 | 0x20,
		},
		{
			name:   "generic read with another bit",
			body:   `<File Id="Conf" Name="app.conf"><util:PermissionEx User="Users" GenericRead="yes" ReadAttributes="yes" /></File>`,
			object: "Conf",
			table:  "File",
			parent: "File",
			word:   int(bitflags.GenericRead) | 0x80,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			section, diags := compile(t, tt.body, "")
			require.NoError(t, diags.Err())

			objects := section.SymbolsIn("SecureObjects")
			require.Len(t, objects, 1)
			require.Equal(t, tt.object, objects[0].Get("SecureObject").String())
			require.Equal(t, tt.table, objects[0].Get("Table").String())
			require.Equal(t, tt.word, number(t, objects[0], "Permission"))
			require.Equal(t, "App", objects[0].Get("Component_").String())

			root, ddiags := decompile(tableSet(section))
			require.Zero(t, ddiags.WarningCount(), ddiags.Messages())
			perms := find(root, "PermissionEx")
			require.Len(t, perms, 1)
			require.Equal(t, tt.parent, parentOf(root, perms[0]).Name)
		})
	}
}

func TestPermissionErrors(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name string
		body string
		diag string
	}{
		{
			name: "generic read only",
			body: `<CreateFolder><util:PermissionEx User="Everyone" GenericRead="yes" /></CreateFolder>`,
			diag: "GenericReadNotAllowed",
		},
		{
			name: "no permission",
			body: `<CreateFolder><util:PermissionEx User="Everyone" /></CreateFolder>`,
			diag: "ExpectedAttribute",
		},
		{
			name: "bit of another object kind",
			body: `<CreateFolder><util:PermissionEx User="Everyone" ServiceStart="yes" /></CreateFolder>`,
			diag: "UnexpectedAttribute",
		},
		{
			name: "not securable",
			body: `<util:PermissionEx User="Everyone" Read="yes" />`,
			diag: "UnexpectedElement",
		},
		{
			name: "share without permissions",
			body: `<util:FileShare Id="Share" Name="share" />`,
			diag: "ExpectedElement",
		},
		{
			name: "share granting generic read only",
			body: `<util:FileShare Id="Share" Name="share"><util:FileSharePermission User="U" GenericRead="yes" /></util:FileShare>`,
			diag: "GenericReadNotAllowed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			section, diags := compile(t, tt.body, "")
			require.Nil(t, section)
			require.Len(t, diags.Named(tt.diag), 1, diags.Messages())
		})
	}
}

func TestFileShare(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `
        <util:User Id="Reader" Name="reader" />
        <util:FileShare Id="Share" Name="data" Description="shared data">
          <util:FileSharePermission User="Reader" Read="yes" GenericExecute="yes" />
        </util:FileShare>`, "")
	require.NoError(t, diags.Err())

	share := section.Find("FileShare", "Share")
	require.NotNil(t, share)
	require.Equal(t, "INSTALLDIR", share.Get("Directory_").String())
	require.True(t, share.Get("Permissions").IsNull())

	perm := section.Find("FileSharePermissions", "Share/Reader")
	require.NotNil(t, perm)
	require.Equal(t, 0x1|0x20000000, number(t, perm, "Permissions"))
	require.True(t, section.HasReference("Wix4User", "Reader"))
}

func TestFileShareWithoutDirectory(t *testing.T) {
	t.Parallel()

	_, diags := compileDocument(t, header+`
  <Fragment>
    <Component Id="App">
      <util:FileShare Id="Share" Name="data">
        <util:FileSharePermission User="Reader" Read="yes" />
      </util:FileShare>
    </Component>
  </Fragment>
</Wix>`)

	missing := diags.Named("ExpectedAttribute")
	require.Len(t, missing, 1, "only the component is missing an attribute")
	require.Equal(t, []interface{}{"Component", "Directory"}, missing[0].Args)

	parent := diags.Named("ExpectedParentDirectory")
	require.Len(t, parent, 1)
	require.Equal(t, "FileShare", parent[0].Args[0])
}

func TestServiceConfig(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `
        <ServiceInstall Id="Svc" Name="example-svc">
          <util:ServiceConfig FirstFailureActionType="restart" SecondFailureActionType="restart" ThirdFailureActionType="none" RestartServiceDelayInSeconds="60" />
        </ServiceInstall>
        <util:ServiceConfig ServiceName="Spooler" FirstFailureActionType="none" SecondFailureActionType="none" ThirdFailureActionType="reboot" RebootMessage="bye" />`, "")
	require.NoError(t, diags.Err())

	nested := section.Find("ServiceConfig", "example-svc/App")
	require.NotNil(t, nested)
	require.Equal(t, 1, number(t, nested, "NewService"))
	require.Equal(t, 60, number(t, nested, "RestartServiceDelayInSeconds"))
	require.True(t, nested.Get("ResetPeriodInDays").IsNull())

	existing := section.Find("ServiceConfig", "Spooler/App")
	require.NotNil(t, existing)
	require.Equal(t, 0, number(t, existing, "NewService"))
	require.Equal(t, "reboot", existing.Get("ThirdFailureActionType").String())

	root, ddiags := decompile(tableSet(section))
	require.Zero(t, ddiags.WarningCount(), ddiags.Messages())

	configs := find(root, "ServiceConfig")
	require.Len(t, configs, 2)
	for _, c := range configs {
		if name, ok := c.Attr("ServiceName"); ok {
			require.Equal(t, "Spooler", name)
			require.Equal(t, "Component", parentOf(root, c).Name)
			continue
		}
		require.Equal(t, "ServiceInstall", parentOf(root, c).Name)
	}
}

func TestServiceConfigRules(t *testing.T) {
	t.Parallel()

	_, diags := compile(t, `
        <ServiceInstall Name="example-svc">
          <util:ServiceConfig ServiceName="other" FirstFailureActionType="none" SecondFailureActionType="none" ThirdFailureActionType="none" />
        </ServiceInstall>`, "")
	require.Len(t, diags.Named("IllegalAttributeWhenNested"), 1)

	_, diags = compile(t, `<util:ServiceConfig FirstFailureActionType="none" SecondFailureActionType="none" ThirdFailureActionType="none" />`, "")
	require.Len(t, diags.Named("ExpectedAttribute"), 1)

	_, diags = compile(t, `<util:ServiceConfig ServiceName="x" FirstFailureActionType="explode" SecondFailureActionType="none" />`, "")
	require.Len(t, diags.Named("IllegalAttributeValue"), 1)
	require.Len(t, diags.Named("ExpectedAttribute"), 1, "third action")
}

func TestDecompileServiceConfigWithoutService(t *testing.T) {
	t.Parallel()

	ts := intermediate.NewTableSet()
	ts.Ensure("Component", base.ComponentTable).AddRow([]intermediate.Field{
		intermediate.String("App"), intermediate.Null, intermediate.String("INSTALLDIR"),
	})
	ts.Ensure("ServiceConfig", ServiceConfigTable).AddRow([]intermediate.Field{
		intermediate.String("gone"), intermediate.String("App"), intermediate.Number(1),
		intermediate.String("none"), intermediate.String("none"), intermediate.String("none"),
		intermediate.Null, intermediate.Null, intermediate.Null, intermediate.Null,
	})

	_, diags := decompile(ts)
	require.Len(t, diags.Named("ExpectedForeignRow"), 1)
}

func TestXmlFile(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `
        <util:XmlFile Id="Port" File="[INSTALLDIR]app.xml" ElementPath="//settings" Name="port" Value="8080"
          Action="createElement" SelectionLanguage="XPath" Permanent="yes" Sequence="2" />`, "")
	require.NoError(t, diags.Err())

	xf := section.Find("XmlFile", "Port")
	require.NotNil(t, xf)
	require.Equal(t, 0x1|0x100|0x10000, number(t, xf, "Flags"))
	require.Equal(t, 2, number(t, xf, "Sequence"))

	root, ddiags := decompile(tableSet(section))
	require.Zero(t, ddiags.WarningCount())
	files := find(root, "XmlFile")
	require.Len(t, files, 1)
	require.Equal(t, "createElement", attr(files[0], "Action"))
	require.Equal(t, "XPath", attr(files[0], "SelectionLanguage"))
	require.Equal(t, "yes", attr(files[0], "Permanent"))
	_, ok := files[0].Attr("PreserveModifiedDate")
	require.False(t, ok)

	var tests = []struct {
		name string
		body string
		diag string
	}{
		{
			name: "created element needs a name",
			body: `<util:XmlFile Id="X" File="a.xml" ElementPath="/a" Action="createElement" />`,
			diag: "ExpectedAttributeWithValue",
		},
		{
			name: "deleted value takes no value",
			body: `<util:XmlFile Id="X" File="a.xml" ElementPath="/a" Name="b" Value="c" Action="deleteValue" />`,
			diag: "IllegalAttributeWithOtherAttributeValue",
		},
		{
			name: "action required",
			body: `<util:XmlFile Id="X" File="a.xml" ElementPath="/a" />`,
			diag: "ExpectedAttribute",
		},
	}
	for _, tt := range tests {
		_, diags := compile(t, tt.body, "")
		require.Len(t, diags.Named(tt.diag), 1, tt.name)
	}
}

func TestDecompileXmlFileUnknownFlags(t *testing.T) {
	t.Parallel()

	ts := intermediate.NewTableSet()
	ts.Ensure("XmlFile", XmlFileTable).AddRow([]intermediate.Field{
		intermediate.String("X"), intermediate.String("a.xml"), intermediate.String("/a"), intermediate.Null, intermediate.Null,
		intermediate.Number(0x2 | 0x4000), intermediate.String("App"), intermediate.Null,
	})

	root, diags := decompile(ts)
	require.Len(t, diags.Named("UnrepresentableColumnValue"), 1)
	files := find(root, "XmlFile")
	require.Len(t, files, 1)
	require.Equal(t, "deleteValue", attr(files[0], "Action"))
}

func TestDecompileNumberColumnsHoldingText(t *testing.T) {
	t.Parallel()

	str, null := intermediate.String, intermediate.Null
	ts := intermediate.NewTableSet()
	ts.Ensure("Component", base.ComponentTable).AddRow([]intermediate.Field{str("App"), null, str("INSTALLDIR")})
	ts.Ensure("XmlFile", XmlFileTable).AddRow([]intermediate.Field{
		str("X"), str("a.xml"), str("/a"), null, null, str("append"), str("App"), null,
	})
	ts.Ensure("RemoveFolderEx", RemoveFolderExTable).AddRow([]intermediate.Field{
		str("R"), str("App"), str("CACHEDIR"), str("both"), null,
	})
	ts.Ensure("InternetShortcut", InternetShortcutTable).AddRow([]intermediate.Field{
		str("I"), str("App"), str("INSTALLDIR"), str("Home"), str("https://example.com"), str("url"), null, null,
	})
	ts.Ensure("ServiceConfig", ServiceConfigTable).AddRow([]intermediate.Field{
		str("svc"), str("App"), str("yes"), str("none"), str("none"), str("none"), null, null, null, null,
	})

	root, diags := decompile(ts)
	warnings := diags.Named("UnrepresentableColumnValue")
	require.Len(t, warnings, 4)
	var text []string
	for _, w := range warnings {
		text = append(text, w.String())
	}
	for _, value := range []string{"append", "both", "url", "yes"} {
		require.Contains(t, strings.Join(text, "\n"), "'"+value+"'")
	}

	xf := find(root, "XmlFile")
	require.Len(t, xf, 1)
	for _, name := range []string{"Action", "SelectionLanguage", "Permanent"} {
		_, ok := xf[0].Attr(name)
		require.False(t, ok, name)
	}

	rf := find(root, "RemoveFolderEx")
	require.Len(t, rf, 1)
	_, ok := rf[0].Attr("On")
	require.False(t, ok)

	is := find(root, "InternetShortcut")
	require.Len(t, is, 1)
	_, ok = is[0].Attr("Type")
	require.False(t, ok)

	sc := find(root, "ServiceConfig")
	require.Len(t, sc, 1)
	require.Equal(t, "svc", attr(sc[0], "ServiceName"))
}

func TestRemoveFolderEx(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `
        <util:RemoveFolderEx Property="CACHEDIR" />
        <util:RemoveFolderEx Id="Logs" Property="LOGDIR" On="both" Condition="REMOVE_LOGS" />`, "")
	require.NoError(t, diags.Err())

	generated := section.Find("RemoveFolderEx", decode.GenerateIdentifier("wrf", "App", "CACHEDIR"))
	require.NotNil(t, generated)
	require.Equal(t, defaultRemoveFolderMode, number(t, generated, "InstallMode"))

	logs := section.Find("RemoveFolderEx", "Logs")
	require.NotNil(t, logs)
	require.Equal(t, 3, number(t, logs, "InstallMode"))

	root, _ := decompile(tableSet(section))
	for _, el := range find(root, "RemoveFolderEx") {
		if attr(el, "Id") == "Logs" {
			require.Equal(t, "both", attr(el, "On"))
			continue
		}
		_, ok := el.Attr("On")
		require.False(t, ok)
	}
}

func TestInternetShortcut(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `
        <util:InternetShortcut Id="Home" Name="Example" Target="https://example.com" Type="url" />
        <util:InternetShortcut Id="Docs" Directory="DesktopFolder" Name="Docs" Target="[INSTALLDIR]docs" IconIndex="-2" />`, "")
	require.NoError(t, diags.Err())

	home := section.Find("InternetShortcut", "Home")
	require.NotNil(t, home)
	require.Equal(t, "INSTALLDIR", home.Get("Directory_").String())
	require.Equal(t, 1, number(t, home, "Attributes"))

	docs := section.Find("InternetShortcut", "Docs")
	require.NotNil(t, docs)
	require.Equal(t, "DesktopFolder", docs.Get("Directory_").String())
	require.Equal(t, 0, number(t, docs, "Attributes"))
	require.Equal(t, -2, number(t, docs, "IconIndex"))
	require.True(t, section.HasReference("Directory", "DesktopFolder"))
}

func TestCloseApplication(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, "", `
    <util:CloseApplication Target="app.exe" CloseMessage="yes" RebootPrompt="no" Timeout="30" />`)
	require.NoError(t, diags.Err())

	ca := section.Find("CloseApplication", decode.GenerateIdentifier("ca", "app.exe"))
	require.NotNil(t, ca)
	require.Equal(t, 0x1|0x2, number(t, ca, "Attributes"))
	require.Equal(t, 30, number(t, ca, "Timeout"))

	var tests = []struct {
		name  string
		attrs string
		diag  string
		count int
	}{
		{
			name:  "terminate and messages",
			attrs: `TerminateProcess="yes" CloseMessage="yes" EndSessionMessage="yes"`,
			diag:  "IllegalAttributeWithOtherAttributeValue",
			count: 2,
		},
		{
			name:  "exit code without terminate",
			attrs: `TerminateExitCode="1"`,
			diag:  "ExpectedAttributeWithOtherAttribute",
			count: 1,
		},
	}
	for _, tt := range tests {
		_, diags := compile(t, "", `<util:CloseApplication Target="app.exe" `+tt.attrs+` />`)
		require.Len(t, diags.Named(tt.diag), tt.count, tt.name)
	}

	_, diags = compile(t, "", `<util:CloseApplication Target="app.exe" TerminateProcess="yes" TerminateExitCode="1" />`)
	require.NoError(t, diags.Err())
}

func TestDecompileSecureObjectWarnings(t *testing.T) {
	t.Parallel()

	secure := func(object, table string, permission int) []intermediate.Field {
		return []intermediate.Field{
			intermediate.String(object), intermediate.String(table), intermediate.Null,
			intermediate.String("Everyone"), intermediate.Number(permission), intermediate.String("App"),
		}
	}

	ts := intermediate.NewTableSet()
	ts.Ensure("File", base.FileTable).AddRow([]intermediate.Field{
		intermediate.String("Conf"), intermediate.String("App"), intermediate.String("app.conf"),
	})
	ts.Ensure("SecureObjects", SecureObjectsTable).AddRow(secure("Conf", "File", 0x1|0x40))
	ts.Ensure("SecureObjects", SecureObjectsTable).AddRow(secure("Thing", "Shortcut", 0x1))

	root, diags := decompile(ts)
	require.Len(t, diags.Named("UnknownPermission"), 1, "file has no bit 6")
	require.Len(t, diags.Named("UnrepresentableColumnValue"), 1, "table")

	perms := find(root, "PermissionEx")
	require.Len(t, perms, 2)
	for _, el := range perms {
		if parentOf(root, el).Name == "File" {
			require.Equal(t, "yes", attr(el, "Read"))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	section, diags := compile(t, `
        <util:User Id="SvcUser" Name="svc" CreateUser="no" LogonAsService="yes">
          <util:GroupRef Id="Admins" />
        </util:User>
        <util:Group Id="Local" Name="local-group" Domain="CORP" />
        <CreateFolder>
          <util:PermissionEx User="Everyone" Read="yes" Traverse="yes" />
        </CreateFolder>
        <File Id="Conf" Name="app.conf">
          <util:PermissionEx User="Users" Domain="CORP" Read="yes" GenericRead="yes" />
        </File>
        <ServiceInstall Id="Svc" Name="example-svc">
          <util:PermissionEx User="Users" ServiceQueryStatus="yes" />
          <util:ServiceConfig FirstFailureActionType="restart" SecondFailureActionType="restart" ThirdFailureActionType="none" ResetPeriodInDays="1" />
        </ServiceInstall>
        <util:FileShare Id="Share" Name="data">
          <util:FileSharePermission User="SvcUser" Read="yes" Delete="yes" />
        </util:FileShare>
        <util:XmlFile Id="Port" File="[#Conf]" ElementPath="//port" Value="8080" Action="setValue" PreserveModifiedDate="yes" />
        <util:RemoveFolderEx Property="CACHEDIR" On="install" />
        <util:InternetShortcut Id="Home" Name="Example" Target="https://example.com" Type="url" />`, `
    <util:Group Id="Admins" Name="Administrators" />
    <util:CloseApplication Id="CloseApp" Target="app.exe" ElevatedCloseMessage="yes" Sequence="5" Property="APPRUNNING" />`)
	require.NoError(t, diags.Err())

	root, ddiags := decompile(tableSet(section))
	require.Zero(t, ddiags.WarningCount(), ddiags.Messages())

	parsed, err := xmltree.Parse(strings.NewReader(xmltree.String(root, xmltree.Namespaces{Namespace: "util"})), "decompiled.wxs")
	require.NoError(t, err)
	d := compiler.NewDispatch()
	base.RegisterCompiler(d)
	RegisterCompiler(d)
	again, diags := compiler.New(d).Compile(parsed)
	require.NoError(t, diags.Err())

	require.ElementsMatch(t, rows(section), rows(again))
}

func rows(s *intermediate.Section) []string {
	var out []string
	for _, sym := range s.Symbols {
		fields := make([]string, 0, len(sym.Fields))
		for _, f := range sym.Fields {
			if f.IsNull() {
				fields = append(fields, "~")
				continue
			}
			fields = append(fields, f.String())
		}
		out = append(out, sym.Table()+"|"+strings.Join(fields, "|"))
	}
	return out
}
