package iis

import (
	"math"
	"strings"
	"time"

	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
)

// Parent kinds introduced by this extension.
const (
	KindWebSite        compiler.Kind = "iis:WebSite"
	KindWebVirtualDir  compiler.Kind = "iis:WebVirtualDir"
	KindWebDir         compiler.Kind = "iis:WebDir"
	KindWebApplication compiler.Kind = "iis:WebApplication"
	KindWebAppPool     compiler.Kind = "iis:WebAppPool"
)

// siteValue carries the enclosing web site to nested directories.
const siteValue = "iis.site"

// userTable is the util extension's user table, referenced by
// anonymous users and app pool identities.
const userTable = "Wix4User"

func RegisterCompiler(d *compiler.Dispatch) {
	d.Register(Namespace, "WebSite", compileWebSite, compiler.KindComponent, compiler.KindFragment)
	d.Register(Namespace, "WebAddress", compileWebAddress, KindWebSite)
	d.Register(Namespace, "WebApplication", compileWebApplication,
		compiler.KindFragment, KindWebSite, KindWebVirtualDir, KindWebDir)
	d.Register(Namespace, "WebApplicationExtension", compileWebApplicationExtension, KindWebApplication)
	d.Register(Namespace, "WebAppPool", compileWebAppPool, compiler.KindComponent, compiler.KindFragment)
	d.Register(Namespace, "RecycleTime", compileRecycleTime, KindWebAppPool)
	d.Register(Namespace, "WebVirtualDir", compileWebVirtualDir, compiler.KindComponent, KindWebSite, KindWebVirtualDir)
	d.Register(Namespace, "WebDir", compileWebDir, compiler.KindComponent, KindWebSite)
	d.Register(Namespace, "WebDirProperties", compileWebDirProperties,
		compiler.KindFragment, KindWebSite, KindWebVirtualDir, KindWebDir)
	d.Register(Namespace, "WebError", compileWebError, KindWebSite, KindWebVirtualDir)
	d.Register(Namespace, "HttpHeader", compileHttpHeader, KindWebSite, KindWebVirtualDir)
	d.Register(Namespace, "MimeMap", compileMimeMap, KindWebSite, KindWebVirtualDir)
	d.Register(Namespace, "WebFilter", compileWebFilter, compiler.KindComponent)
	d.Register(Namespace, "WebLog", compileWebLog, compiler.KindFragment)
	d.Register(Namespace, "WebServiceExtension", compileWebServiceExtension, compiler.KindComponent)
	d.Register(Namespace, "Certificate", compileCertificate, compiler.KindComponent)
	d.Register(Namespace, "CertificateRef", compileCertificateRef, KindWebSite)
	d.Register(Namespace, "WebProperty", compileWebProperty, compiler.KindComponent)
}

// number is an optional integer attribute.
type number struct {
	value int
	set   bool
}

func (n *number) decode(p *compiler.Pass, el *xmltree.Element, a xmltree.Attr, min, max int64) {
	n.value, n.set = p.Decode.Integer(el, a, min, max)
}

func noChildren(p *compiler.Pass, el *xmltree.Element) {
	for _, c := range el.Children {
		p.UnexpectedElement(el, c)
	}
}

func packed(sym *intermediate.Symbol, column string, l bitflags.Layout, v bitflags.Values) {
	sym.SetOptionalNumber(column, int(bitflags.Pack(l, v)), l.Authored(v))
}

func yesNo(sym *intermediate.Symbol, column string, v decode.YesNo) {
	n, ok := v.Number()
	sym.SetOptionalNumber(column, n, ok)
}

func parentType(ctx compiler.Context) int {
	if ctx.Kind == KindWebSite {
		return parentWebSite
	}
	return parentVirtualDir
}

// nestedDefinitions collects the WebApplication and WebDirProperties
// children of a site or directory and reports the ones that repeat an
// attribute of the parent.
type nestedDefinitions struct {
	application   string
	dirProperties string
}

func (n *nestedDefinitions) visit(p *compiler.Pass, parent *xmltree.Element) func(*xmltree.Element, string) {
	return func(c *xmltree.Element, id string) {
		if c.Namespace != Namespace {
			return
		}
		switch c.Name {
		case "WebApplication":
			if n.application != "" {
				p.Report(c, WebApplicationAlreadySpecified, parent.Name, n.application)
				return
			}
			n.application = id
		case "WebDirProperties":
			if n.dirProperties != "" {
				p.Report(c, WebDirPropertiesAlreadySpecified, parent.Name, n.dirProperties)
				return
			}
			n.dirProperties = id
		}
	}
}

func (n *nestedDefinitions) reference(p *compiler.Pass, el *xmltree.Element) {
	if n.application != "" {
		p.Reference(el, WebApplicationTable.Name, n.application)
	}
	if n.dirProperties != "" {
		p.Reference(el, WebDirPropertiesTable.Name, n.dirProperties)
	}
}

func compileWebSite(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	nested := ctx.Kind == compiler.KindComponent
	var (
		id, siteID, description, directory, webLog string
		connectionTimeout, sequence                number
		defs                                       nestedDefinitions
	)
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "SiteId":
			siteID = p.Decode.SiteID(el, a)
		case "Description":
			description = p.Decode.String(el, a)
		case "ConnectionTimeout":
			connectionTimeout.decode(p, el, a, 0, math.MaxInt32)
		case "Sequence":
			sequence.decode(p, el, a, math.MinInt32, math.MaxInt32)
		case "WebLog":
			webLog = p.Decode.Identifier(el, a)
		case "Directory", "ConfigureIfExists", "AutoStart", "StartOnInstall", "WebApplication", "DirProperties":
			if !nested {
				p.Report(el, diag.IllegalAttributeWhenNotNested, el.Name, a.Name, el.Name, "Component")
				continue
			}
			switch a.Name {
			case "Directory":
				directory = p.Decode.Identifier(el, a)
			case "WebApplication":
				defs.application = p.Decode.Identifier(el, a)
			case "DirProperties":
				defs.dirProperties = p.Decode.Identifier(el, a)
			default:
				bits[a.Name] = p.Decode.YesNo(el, a).State()
			}
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	if nested {
		p.Require(el, "Directory", directory)
	}

	var addresses []string
	visitDefs := defs.visit(p, el)
	p.Children(ctx.Nest(KindWebSite, el, id).With(siteValue, id), func(c *xmltree.Element, cid string) {
		if c.Namespace == Namespace && c.Name == "WebAddress" {
			addresses = append(addresses, cid)
			return
		}
		visitDefs(c, cid)
	})
	var keyAddress string
	if len(addresses) == 0 {
		p.Report(el, diag.ExpectedElement, el.Name, "WebAddress")
	} else {
		keyAddress = addresses[0]
	}

	var component string
	if nested {
		component = ctx.Component
	}

	sym := intermediate.NewSymbol(WebSiteTable, el.Source)
	sym.SetString("Web", id).
		SetOptionalString("Component_", component).
		SetOptionalString("Description", description).
		SetOptionalNumber("ConnectionTimeout", connectionTimeout.value, connectionTimeout.set).
		SetOptionalString("Directory_", directory).
		SetNumber("Attributes", int(bitflags.Pack(siteAttributesLayout, bits))).
		SetString("KeyAddress_", keyAddress).
		SetOptionalString("DirProperties_", defs.dirProperties).
		SetOptionalString("Application_", defs.application).
		SetOptionalNumber("Sequence", sequence.value, sequence.set).
		SetOptionalString("Log_", webLog).
		SetOptionalString("WebsiteId", siteID)
	packed(sym, "State", siteStateLayout, bits)
	p.Emit(el, sym)

	if component != "" {
		p.Reference(el, base.ComponentTable.Name, component)
	}
	if directory != "" {
		p.Reference(el, base.DirectoryTable.Name, directory)
	}
	if webLog != "" {
		p.Reference(el, WebLogTable.Name, webLog)
	}
	defs.reference(p, el)
	return id
}

func compileWebAddress(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, ip, port, header string
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "IP":
			ip = p.Decode.String(el, a)
		case "Port":
			port = p.Decode.NonEmpty(el, a)
		case "Header":
			header = p.Decode.String(el, a)
		case "Secure":
			bits[a.Name] = p.Decode.YesNo(el, a).State()
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Port", port)
	if id == "" {
		id = decode.GenerateIdentifier("wsa", ctx.ParentID, ip, port, header)
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(WebAddressTable, el.Source)
	sym.SetString("Address", id).
		SetString("Web_", ctx.ParentID).
		SetOptionalString("IP", ip).
		SetString("Port", port).
		SetOptionalString("Header", header)
	packed(sym, "Attributes", addressAttributesLayout, bits)
	p.Emit(el, sym)
	return id
}

func compileWebApplication(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, name, defaultScript, appPool string
		sessionTimeout, scriptTimeout    number
	)
	isolation := 2
	flags := make(map[string]decode.YesNo)
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Isolation":
			isolation = decode.LookupOr(p.Decode, el, a, isolationModes, isolation)
		case "SessionTimeout":
			sessionTimeout.decode(p, el, a, 0, math.MaxInt32)
		case "ScriptTimeout":
			scriptTimeout.decode(p, el, a, 0, math.MaxInt32)
		case "DefaultScript":
			defaultScript, _ = p.Decode.Enum(el, a, "JScript", "VBScript")
		case "WebAppPool":
			appPool = p.Decode.Identifier(el, a)
		default:
			if column, ok := columnFor(webApplicationYesNo, a.Name); ok {
				flags[column] = p.Decode.YesNo(el, a)
				continue
			}
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Name", name)
	if ctx.Kind == compiler.KindFragment {
		p.Require(el, "Id", id)
	} else if id == "" && name != "" {
		id = decode.GenerateIdentifier("wap", ctx.ParentID, name)
	}

	p.Children(ctx.Nest(KindWebApplication, el, id), nil)

	sym := intermediate.NewSymbol(WebApplicationTable, el.Source)
	sym.SetString("Application", id).
		SetString("Name", name).
		SetNumber("Isolation", isolation).
		SetOptionalNumber("SessionTimeout", sessionTimeout.value, sessionTimeout.set).
		SetOptionalString("DefaultScript", defaultScript).
		SetOptionalNumber("ScriptTimeout", scriptTimeout.value, scriptTimeout.set).
		SetOptionalString("AppPool_", appPool)
	for _, ac := range webApplicationYesNo {
		yesNo(sym, ac.column, flags[ac.column])
	}
	p.Emit(el, sym)

	if appPool != "" {
		p.Reference(el, AppPoolTable.Name, appPool)
	}
	return id
}

func compileWebApplicationExtension(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var extension, verbs, executable string
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Extension":
			extension = p.Decode.String(el, a)
		case "Verbs":
			verbs = p.Decode.String(el, a)
		case "Executable":
			executable = p.Decode.NonEmpty(el, a)
		case "CheckPath", "Script":
			bits[a.Name] = p.Decode.YesNo(el, a).State()
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Executable", executable)
	noChildren(p, el)

	sym := intermediate.NewSymbol(WebApplicationExtensionTable, el.Source)
	sym.SetString("Application_", ctx.ParentID).
		SetOptionalString("Extension", extension).
		SetOptionalString("Verbs", verbs).
		SetString("Executable", executable)
	packed(sym, "Attributes", extensionAttributesLayout, bits)
	p.Emit(el, sym)
	return ""
}

func compileWebAppPool(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, name, identity, user, runtimeVersion, pipelineMode string
		identityValue                                          int
		cpu                                                    [3]bitflags.Slot
	)
	numbers := make(map[string]number)
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Identity":
			var ok bool
			if identityValue, ok = decode.Lookup(p.Decode, el, a, appPoolIdentities); ok {
				identity = a.Value
			}
		case "User":
			user = p.Decode.Identifier(el, a)
		case "ManagedRuntimeVersion":
			runtimeVersion = p.Decode.String(el, a)
		case "ManagedPipelineMode":
			pipelineMode, _ = p.Decode.Enum(el, a, "Classic", "Integrated")
		case "MaxCpuUsage":
			cpu[0].Value, cpu[0].Set = p.Decode.Integer(el, a, 0, 100)
		case "RefreshCpu":
			cpu[1].Value, cpu[1].Set = p.Decode.Integer(el, a, 0, math.MaxInt32)
		case "CpuAction":
			cpu[2].Value, cpu[2].Set = decode.Lookup(p.Decode, el, a, cpuActions)
		default:
			if column, ok := columnFor(appPoolNumbers, a.Name); ok {
				var n number
				n.decode(p, el, a, 0, math.MaxInt32)
				numbers[column] = n
				continue
			}
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "Name", name)

	_, hasIdentity := el.Attr("Identity")
	switch {
	case identity == "other" && user == "":
		p.Report(el, diag.ExpectedAttributeWithValue, el.Name, "User", "Identity", identity)
	case user != "" && !hasIdentity:
		p.Report(el, diag.ExpectedAttributeWithOtherAttribute, el.Name, "Identity", "User")
	case user != "" && identity != "" && identity != "other":
		p.Report(el, diag.IllegalAttributeWithOtherAttributeValue, el.Name, "User", "Identity", identity)
	}

	var recycleTimes []string
	p.Children(ctx.Nest(KindWebAppPool, el, id), func(c *xmltree.Element, value string) {
		if value != "" {
			recycleTimes = append(recycleTimes, value)
		}
	})

	sym := intermediate.NewSymbol(AppPoolTable, el.Source)
	sym.SetString("AppPool", id).
		SetString("Name", name).
		SetOptionalString("Component_", ctx.Component).
		SetNumber("Attributes", identityValue).
		SetOptionalString("User_", user).
		SetOptionalString("RecycleTimes", strings.Join(recycleTimes, ",")).
		SetOptionalString("ManagedRuntimeVersion", runtimeVersion).
		SetOptionalString("ManagedPipelineMode", pipelineMode)
	for _, ac := range appPoolNumbers {
		n := numbers[ac.column]
		sym.SetOptionalNumber(ac.column, n.value, n.set)
	}
	if text, ok := cpuMon.Pack(cpu[:]...); ok {
		sym.SetString("CPUMon", text)
	}
	p.Emit(el, sym)

	if ctx.Component != "" {
		p.Reference(el, base.ComponentTable.Name, ctx.Component)
	}
	if user != "" {
		p.Reference(el, userTable, user)
	}
	return id
}

// compileRecycleTime returns the validated time of day in place of an
// identifier, for the enclosing app pool to collect.
func compileRecycleTime(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var value string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Value":
			value = p.Decode.NonEmpty(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	noChildren(p, el)
	if !p.Require(el, "Value", value) {
		return ""
	}
	if _, err := time.Parse("15:04", value); err != nil {
		p.Report(el, IllegalRecycleTime, el.Name, "Value", value)
		return ""
	}
	return value
}

func compileWebVirtualDir(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	nested := ctx.Kind != compiler.KindComponent
	var (
		id, alias, directory, site string
		defs                       nestedDefinitions
	)
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Alias":
			alias = p.Decode.NonEmpty(el, a)
		case "Directory":
			directory = p.Decode.Identifier(el, a)
		case "WebSite":
			if nested {
				p.Report(el, diag.IllegalAttributeWhenNested, el.Name, a.Name, el.Name, ctx.ParentName())
				continue
			}
			site = p.Decode.Identifier(el, a)
		case "WebApplication":
			defs.application = p.Decode.Identifier(el, a)
		case "DirProperties":
			defs.dirProperties = p.Decode.Identifier(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	if ctx.Component == "" {
		p.Report(el, diag.ElementMustBeNested, el.Name, "Component")
	}
	if nested {
		site = ctx.Value(siteValue)
	} else {
		p.Require(el, "WebSite", site)
	}
	p.Require(el, "Alias", alias)
	p.Require(el, "Directory", directory)
	if ctx.Kind == KindWebVirtualDir {
		alias = ctx.Alias + "/" + alias
	}
	if id == "" && alias != "" {
		id = decode.GenerateIdentifier("wvd", ctx.Component, site, alias)
	}

	child := ctx.Nest(KindWebVirtualDir, el, id)
	child.Alias = alias
	p.Children(child, defs.visit(p, el))

	sym := intermediate.NewSymbol(WebVirtualDirTable, el.Source)
	sym.SetString("VirtualDir", id).
		SetString("Component_", ctx.Component).
		SetString("Web_", site).
		SetString("Alias", alias).
		SetString("Directory_", directory).
		SetOptionalString("DirProperties_", defs.dirProperties).
		SetOptionalString("Application_", defs.application)
	p.Emit(el, sym)

	p.Reference(el, base.DirectoryTable.Name, directory)
	if !nested {
		p.Reference(el, WebSiteTable.Name, site)
	}
	defs.reference(p, el)
	return id
}

func compileWebDir(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	nested := ctx.Kind != compiler.KindComponent
	var (
		id, path, site string
		defs           nestedDefinitions
	)
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Path":
			path = p.Decode.NonEmpty(el, a)
		case "WebSite":
			if nested {
				p.Report(el, diag.IllegalAttributeWhenNested, el.Name, a.Name, el.Name, ctx.ParentName())
				continue
			}
			site = p.Decode.Identifier(el, a)
		case "WebApplication":
			defs.application = p.Decode.Identifier(el, a)
		case "DirProperties":
			defs.dirProperties = p.Decode.Identifier(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	if ctx.Component == "" {
		p.Report(el, diag.ElementMustBeNested, el.Name, "Component")
	}
	if nested {
		site = ctx.Value(siteValue)
	} else {
		p.Require(el, "WebSite", site)
	}
	p.Require(el, "Path", path)
	if id == "" && path != "" {
		id = decode.GenerateIdentifier("wdr", ctx.Component, site, path)
	}

	p.Children(ctx.Nest(KindWebDir, el, id), defs.visit(p, el))
	if defs.dirProperties == "" {
		p.Report(el, diag.ExpectedAttributeOrElement, el.Name, "DirProperties", "WebDirProperties")
	}

	sym := intermediate.NewSymbol(WebDirTable, el.Source)
	sym.SetString("WebDir", id).
		SetString("Component_", ctx.Component).
		SetString("Web_", site).
		SetString("Path", path).
		SetOptionalString("DirProperties_", defs.dirProperties).
		SetOptionalString("Application_", defs.application)
	p.Emit(el, sym)

	if !nested {
		p.Reference(el, WebSiteTable.Name, site)
	}
	defs.reference(p, el)
	return id
}

func compileWebDirProperties(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, anonymousUser string
		maxAge            number
	)
	bits := bitflags.Values{}
	flags := make(map[string]decode.YesNo)
	strs := make(map[string]string)
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "AnonymousUser":
			anonymousUser = p.Decode.Identifier(el, a)
		case "CacheControlMaxAge":
			maxAge.decode(p, el, a, 0, math.MaxInt32)
		default:
			if dirPropertiesBit(a.Name) {
				bits[a.Name] = p.Decode.YesNo(el, a).State()
				continue
			}
			if column, ok := columnFor(dirPropertiesYesNo, a.Name); ok {
				flags[column] = p.Decode.YesNo(el, a)
				continue
			}
			if column, ok := columnFor(dirPropertiesStrings, a.Name); ok {
				strs[column] = p.Decode.String(el, a)
				continue
			}
			p.UnexpectedAttribute(el, a)
		}
	}
	if ctx.Kind == compiler.KindFragment {
		p.Require(el, "Id", id)
	} else if id == "" {
		id = decode.GenerateIdentifier("wdp", ctx.ParentID)
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(WebDirPropertiesTable, el.Source)
	sym.SetString("DirProperties", id).
		SetOptionalString("AnonymousUser_", anonymousUser).
		SetOptionalNumber("CacheControlMaxAge", maxAge.value, maxAge.set)
	for _, w := range dirPropertiesWords {
		packed(sym, w.column, w.layout, bits)
	}
	for _, ac := range dirPropertiesYesNo {
		yesNo(sym, ac.column, flags[ac.column])
	}
	for _, ac := range dirPropertiesStrings {
		sym.SetOptionalString(ac.column, strs[ac.column])
	}
	p.Emit(el, sym)

	if anonymousUser != "" {
		p.Reference(el, userTable, anonymousUser)
	}
	return id
}

func dirPropertiesBit(name string) bool {
	for _, w := range dirPropertiesWords {
		if _, ok := w.layout.Bit(name); ok {
			return true
		}
	}
	return false
}

func compileWebError(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		code, subCode number
		file, url     string
	)
	for _, a := range el.Attrs {
		switch a.Name {
		case "ErrorCode":
			code.decode(p, el, a, 400, 599)
		case "SubCode":
			subCode.decode(p, el, a, 0, math.MaxInt32)
		case "File":
			file = p.Decode.String(el, a)
		case "URL":
			url = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.RequireAttr(el, "ErrorCode")
	p.RequireAttr(el, "SubCode")
	if file != "" && url != "" {
		p.Report(el, diag.IllegalAttributeWithOtherAttribute, el.Name, "URL", "File")
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(WebErrorTable, el.Source)
	sym.SetNumber("ErrorCode", code.value).
		SetNumber("SubCode", subCode.value).
		SetNumber("ParentType", parentType(ctx)).
		SetString("ParentValue", ctx.ParentID).
		SetOptionalString("File", file).
		SetOptionalString("URL", url)
	p.Emit(el, sym)
	return ""
}

func compileHttpHeader(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, name, value string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Value":
			value = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Name", name)
	if id == "" && name != "" {
		id = decode.GenerateIdentifier("hhd", decode.EncodeInteger(parentType(ctx)), ctx.ParentID, name)
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(HttpHeaderTable, el.Source)
	sym.SetString("HttpHeader", id).
		SetNumber("ParentType", parentType(ctx)).
		SetString("ParentValue", ctx.ParentID).
		SetString("Name", name).
		SetString("Value", value).
		SetNumber("Attributes", 0)
	p.Emit(el, sym)
	return id
}

func compileMimeMap(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, mimeType, extension string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Type":
			mimeType = p.Decode.NonEmpty(el, a)
		case "Extension":
			extension = p.Decode.NonEmpty(el, a)
			if extension != "" && !strings.HasPrefix(extension, ".") {
				p.Report(el, diag.IllegalAttributeValueFormat, el.Name, a.Name, extension, ".ext")
			}
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Type", mimeType)
	p.Require(el, "Extension", extension)
	if id == "" && extension != "" {
		id = decode.GenerateIdentifier("mim", decode.EncodeInteger(parentType(ctx)), ctx.ParentID, extension)
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(MimeMapTable, el.Source)
	sym.SetString("MimeMap", id).
		SetNumber("ParentType", parentType(ctx)).
		SetString("ParentValue", ctx.ParentID).
		SetString("MimeType", mimeType).
		SetString("Extension", extension)
	p.Emit(el, sym)
	return id
}

func compileWebFilter(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, name, path, site, description string
		flags, loadOrder                  number
	)
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Path":
			path = p.Decode.String(el, a)
		case "WebSite":
			site = p.Decode.Identifier(el, a)
		case "Description":
			description = p.Decode.String(el, a)
		case "Flags":
			flags.decode(p, el, a, 0, math.MaxInt32)
		case "LoadOrder":
			loadOrder.value, loadOrder.set = p.Decode.LoadOrder(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Name", name)
	if id == "" && name != "" {
		id = decode.GenerateIdentifier("ifl", ctx.Component, site, name)
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(FilterTable, el.Source)
	sym.SetString("Filter", id).
		SetString("Name", name).
		SetString("Component_", ctx.Component).
		SetOptionalString("Path", path).
		SetOptionalString("Web_", site).
		SetOptionalString("Description", description).
		SetNumber("Flags", flags.value).
		SetOptionalNumber("LoadOrder", loadOrder.value, loadOrder.set)
	p.Emit(el, sym)

	if site != "" {
		p.Reference(el, WebSiteTable.Name, site)
	}
	return id
}

func compileWebLog(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, format string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Type":
			format, _ = decode.Lookup(p.Decode, el, a, logFormats)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.RequireAttr(el, "Type")
	noChildren(p, el)

	sym := intermediate.NewSymbol(WebLogTable, el.Source)
	sym.SetString("Log", id).SetString("Format", format)
	p.Emit(el, sym)
	return id
}

func compileWebServiceExtension(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, file, description, group string
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "File":
			file = p.Decode.NonEmpty(el, a)
		case "Description":
			description = p.Decode.String(el, a)
		case "Group":
			group = p.Decode.String(el, a)
		case "Allow", "UIDeletable":
			bits[a.Name] = p.Decode.YesNo(el, a).State()
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "File", file)
	noChildren(p, el)

	sym := intermediate.NewSymbol(WebServiceExtensionTable, el.Source)
	sym.SetString("WebServiceExtension", id).
		SetString("Component_", ctx.Component).
		SetString("File", file).
		SetOptionalString("Description", description).
		SetOptionalString("Group", group).
		SetNumber("Attributes", int(bitflags.Pack(serviceExtensionLayout, bits)))
	p.Emit(el, sym)
	return id
}

func compileCertificate(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, name, storeName, binary, path, password string
		storeLocation                               int
	)
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "StoreLocation":
			storeLocation, _ = decode.Lookup(p.Decode, el, a, storeLocations)
		case "StoreName":
			storeName, _ = decode.Lookup(p.Decode, el, a, storeNames)
		case "BinaryRef":
			binary = p.Decode.Identifier(el, a)
		case "CertificatePath":
			path = p.Decode.NonEmpty(el, a)
		case "PFXPassword":
			password = p.Decode.String(el, a)
		case "Request", "Overwrite":
			bits[a.Name] = p.Decode.YesNo(el, a).State()
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "Name", name)
	p.RequireAttr(el, "StoreLocation")
	p.RequireAttr(el, "StoreName")
	switch {
	case binary != "" && path != "":
		p.Report(el, diag.IllegalAttributeWithOtherAttribute, el.Name, "CertificatePath", "BinaryRef")
	case binary == "" && path == "":
		p.Report(el, diag.ExpectedAttributes, el.Name, "BinaryRef", "CertificatePath")
	}
	noChildren(p, el)

	attributes := bitflags.Pack(certificateLayout, bits)
	if binary != "" {
		attributes |= certificateBinary
	}

	sym := intermediate.NewSymbol(CertificateTable, el.Source)
	sym.SetString("Certificate", id).
		SetString("Component_", ctx.Component).
		SetString("Name", name).
		SetNumber("StoreLocation", storeLocation).
		SetString("StoreName", storeName).
		SetNumber("Attributes", int(attributes)).
		SetOptionalString("Binary_", binary).
		SetOptionalString("CertificatePath", path).
		SetOptionalString("PFXPassword", password)
	p.Emit(el, sym)

	if binary != "" {
		p.Reference(el, "Binary", binary)
	}
	return id
}

func compileCertificateRef(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	noChildren(p, el)

	sym := intermediate.NewSymbol(WebSiteCertificatesTable, el.Source)
	sym.SetString("Web_", ctx.ParentID).SetString("Certificate_", id)
	p.Emit(el, sym)

	if id != "" {
		p.Reference(el, CertificateTable.Name, id)
	}
	return id
}

func compileWebProperty(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, value string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id, _ = p.Decode.Enum(el, a, webProperties...)
		case "Value":
			value = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.RequireAttr(el, "Id")
	_, hasValue := el.Attr("Value")
	switch {
	case id == "":
	case webPropertyTakesValue(id) && !hasValue:
		p.Report(el, diag.ExpectedAttributeWithValue, el.Name, "Value", "Id", id)
	case !webPropertyTakesValue(id) && hasValue:
		p.Report(el, diag.IllegalAttributeWithOtherAttributeValue, el.Name, "Value", "Id", id)
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(PropertyTable, el.Source)
	sym.SetString("Property", id).
		SetString("Component_", ctx.Component).
		SetNumber("Attributes", 0)
	if hasValue {
		sym.SetString("Value", value)
	}
	p.Emit(el, sym)
	return id
}
