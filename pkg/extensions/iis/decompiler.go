package iis

import (
	"strconv"
	"strings"

	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/pkg/errors"
)

// Claim ranks. When several rows name the same application or
// directory properties, the site nests it, then a virtual directory,
// then a web directory.
const (
	rankWebSite = iota
	rankWebVirtualDir
	rankWebDir
)

func RegisterDecompiler(d *decompiler.Dispatch) {
	d.Register(WebLogTable, decompileWebLog)
	d.Register(AppPoolTable, decompileAppPool)
	d.Register(WebApplicationTable, decompileWebApplication)
	d.Register(WebApplicationExtensionTable, decompileWebApplicationExtension)
	d.Register(WebDirPropertiesTable, decompileWebDirProperties)
	d.Register(WebSiteTable, decompileWebSite)
	d.Register(WebAddressTable, decompileWebAddress)
	d.Register(WebVirtualDirTable, decompileWebVirtualDir)
	d.Register(WebDirTable, decompileWebDir)
	d.Register(WebErrorTable, decompileWebError)
	d.Register(HttpHeaderTable, decompileHttpHeader)
	d.Register(MimeMapTable, decompileMimeMap)
	d.Register(FilterTable, decompileFilter)
	d.Register(WebServiceExtensionTable, decompileWebServiceExtension)
	d.Register(CertificateTable, decompileCertificate)
	d.Register(WebSiteCertificatesTable, decompileWebSiteCertificate)
	d.Register(PropertyTable, decompileProperty)

	d.Finalize(finalizeKeyAddresses)
}

func column(row *intermediate.Row, name string) int {
	return row.Definition.ColumnIndex(name)
}

// unknownBits reports bits of a packed column no attribute covers.
func unknownBits(p *decompiler.Pass, row *intermediate.Row, col int, bits uint32) {
	if bits != 0 {
		p.Unrepresentable(row, row.Definition.Columns[col].Name, "0x"+strconv.FormatUint(uint64(bits), 16))
	}
}

// placeByParentType nests el in the site or virtual directory named by
// the ParentType and ParentValue columns.
func placeByParentType(p *decompiler.Pass, el *xmltree.Element, row *intermediate.Row) {
	typeCol, valueCol := column(row, "ParentType"), column(row, "ParentValue")
	id := row.String(valueCol)
	t, ok := p.Number(row, typeCol)
	if !ok {
		p.Place(el, decompiler.Root, row, "")
		return
	}
	switch t {
	case parentVirtualDir:
		p.Place(el, decompiler.ParentRef{Table: WebVirtualDirTable.Name, ID: id}, row, "ParentValue")
	case parentWebSite:
		p.Place(el, decompiler.ParentRef{Table: WebSiteTable.Name, ID: id}, row, "ParentValue")
	default:
		p.Unrepresentable(row, "ParentType", t)
		p.Place(el, decompiler.Root, row, "")
	}
}

// claimDefinitions asks for the application and directory properties
// a row names to be nested in el.
func claimDefinitions(p *decompiler.Pass, el *xmltree.Element, row *intermediate.Row, rank int) {
	if app, ok := row.NullableString(column(row, "Application_")); ok {
		p.Claim(WebApplicationTable.Name, app, el, rank, "WebApplication")
	}
	if dp, ok := row.NullableString(column(row, "DirProperties_")); ok {
		p.Claim(WebDirPropertiesTable.Name, dp, el, rank, "DirProperties")
	}
}

func decompileWebLog(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebLog", row)
	el.SetAttr("Id", row.String(0))
	decompiler.SetToken(p, el, "Type", row, 1, row.String(1), logFormats)
	p.Index(WebLogTable.Name, row.Key(), el)
	p.Place(el, decompiler.Root, row, "")
}

func decompileAppPool(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebAppPool", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(1))
	if n, ok := p.Number(row, 3); ok && n != 0 {
		decompiler.SetToken(p, el, "Identity", row, 3, n, appPoolIdentities)
	}
	p.SetString(el, "User", row, 4)
	for _, ac := range appPoolNumbers {
		p.SetNumber(el, ac.attr, row, column(row, ac.column))
	}
	if text, ok := row.NullableString(column(row, "CPUMon")); ok {
		decompileCPUMon(p, el, row, text)
	}
	p.SetString(el, "ManagedRuntimeVersion", row, column(row, "ManagedRuntimeVersion"))
	p.SetString(el, "ManagedPipelineMode", row, column(row, "ManagedPipelineMode"))

	if times, ok := row.NullableString(column(row, "RecycleTimes")); ok {
		for _, t := range strings.Split(times, ",") {
			rt := p.Element(Namespace, "RecycleTime", row)
			rt.SetAttr("Value", strings.TrimSpace(t))
			el.AddChild(rt)
		}
	}

	p.Index(AppPoolTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 2)
}

func decompileCPUMon(p *decompiler.Pass, el *xmltree.Element, row *intermediate.Row, text string) {
	slots, err := cpuMon.Unpack(text)
	var tooMany *bitflags.TooManySegmentsError
	switch {
	case errors.As(err, &tooMany):
		p.Warn(row, diag.MalformedCompositeValue, row.Definition.Name, row.Key(), "CPUMon", text, tooMany.Segments, tooMany.Max)
	case err != nil:
		p.Unrepresentable(row, "CPUMon", text)
		return
	}
	if slots[0].Set {
		el.SetAttr("MaxCpuUsage", strconv.Itoa(slots[0].Value))
	}
	if slots[1].Set {
		el.SetAttr("RefreshCpu", strconv.Itoa(slots[1].Value))
	}
	if slots[2].Set {
		if name, ok := cpuActions.Name(slots[2].Value); ok {
			el.SetAttr("CpuAction", name)
		} else {
			p.Unrepresentable(row, "CPUMon", text)
		}
	}
}

func decompileWebApplication(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebApplication", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(1))
	if n, ok := row.Number(2); ok {
		decompiler.SetToken(p, el, "Isolation", row, 2, n, isolationModes)
	}
	for _, ac := range webApplicationYesNo {
		p.SetYesNo(el, ac.attr, row, column(row, ac.column))
	}
	p.SetNumber(el, "SessionTimeout", row, column(row, "SessionTimeout"))
	p.SetString(el, "DefaultScript", row, column(row, "DefaultScript"))
	p.SetNumber(el, "ScriptTimeout", row, column(row, "ScriptTimeout"))
	p.SetString(el, "WebAppPool", row, column(row, "AppPool_"))

	p.Index(WebApplicationTable.Name, row.Key(), el)
	p.Claimable(WebApplicationTable.Name, row.Key(), el)
}

func decompileWebApplicationExtension(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebApplicationExtension", row)
	p.SetString(el, "Extension", row, 1)
	p.SetString(el, "Verbs", row, 2)
	el.SetAttr("Executable", row.String(3))
	unknownBits(p, row, 4, p.SetBits(el, row, 4, extensionAttributesLayout, decompiler.EveryBit))
	p.Place(el, decompiler.ParentRef{Table: WebApplicationTable.Name, ID: row.String(0)}, row, "Application_")
}

func decompileWebDirProperties(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebDirProperties", row)
	el.SetAttr("Id", row.String(0))
	for _, w := range dirPropertiesWords {
		col := column(row, w.column)
		unknownBits(p, row, col, p.SetBits(el, row, col, w.layout, decompiler.EveryBit))
	}
	p.SetString(el, "AnonymousUser", row, column(row, "AnonymousUser_"))
	for _, ac := range dirPropertiesYesNo {
		p.SetYesNo(el, ac.attr, row, column(row, ac.column))
	}
	for _, ac := range dirPropertiesStrings {
		p.SetString(el, ac.attr, row, column(row, ac.column))
	}
	p.SetNumber(el, "CacheControlMaxAge", row, column(row, "CacheControlMaxAge"))

	p.Index(WebDirPropertiesTable.Name, row.Key(), el)
	p.Claimable(WebDirPropertiesTable.Name, row.Key(), el)
}

func decompileWebSite(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebSite", row)
	el.SetAttr("Id", row.String(0))
	p.SetString(el, "SiteId", row, 12)
	p.SetString(el, "Description", row, 2)
	p.SetNumber(el, "ConnectionTimeout", row, 3)
	p.SetString(el, "Directory", row, 4)
	unknownBits(p, row, 5, p.SetBits(el, row, 5, siteStateLayout, decompiler.EveryBit))
	unknownBits(p, row, 6, p.SetBits(el, row, 6, siteAttributesLayout, decompiler.SetBitsOnly))
	p.SetNumber(el, "Sequence", row, 10)
	p.SetString(el, "WebLog", row, 11)
	claimDefinitions(p, el, row, rankWebSite)

	p.Index(WebSiteTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileWebAddress(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebAddress", row)
	el.SetAttr("Id", row.String(0))
	p.SetString(el, "IP", row, 2)
	el.SetAttr("Port", row.String(3))
	p.SetString(el, "Header", row, 4)
	unknownBits(p, row, 5, p.SetBits(el, row, 5, addressAttributesLayout, decompiler.EveryBit))

	p.Index(WebAddressTable.Name, row.Key(), el)
	p.Place(el, decompiler.ParentRef{Table: WebSiteTable.Name, ID: row.String(1)}, row, "Web_")
}

// Virtual and web directories decompile flat under their component,
// naming their site and carrying the full alias, rather than nested in
// the site or in each other.

func decompileWebVirtualDir(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebVirtualDir", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Alias", row.String(3))
	el.SetAttr("Directory", row.String(4))
	el.SetAttr("WebSite", row.String(2))
	claimDefinitions(p, el, row, rankWebVirtualDir)

	p.Index(WebVirtualDirTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileWebDir(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebDir", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Path", row.String(3))
	el.SetAttr("WebSite", row.String(2))
	claimDefinitions(p, el, row, rankWebDir)

	p.Index(WebDirTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileWebError(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebError", row)
	p.SetNumber(el, "ErrorCode", row, 0)
	p.SetNumber(el, "SubCode", row, 1)
	p.SetString(el, "File", row, 4)
	p.SetString(el, "URL", row, 5)
	placeByParentType(p, el, row)
}

func decompileHttpHeader(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "HttpHeader", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(3))
	p.SetString(el, "Value", row, 4)
	if n, ok := p.Number(row, 5); ok && n != 0 {
		p.Unrepresentable(row, "Attributes", n)
	}
	if !row.IsNull(6) {
		p.Unrepresentable(row, "Sequence", row.String(6))
	}

	p.Index(HttpHeaderTable.Name, row.Key(), el)
	placeByParentType(p, el, row)
}

func decompileMimeMap(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "MimeMap", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Type", row.String(3))
	el.SetAttr("Extension", row.String(4))

	p.Index(MimeMapTable.Name, row.Key(), el)
	placeByParentType(p, el, row)
}

func decompileFilter(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebFilter", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(1))
	p.SetString(el, "Path", row, 3)
	p.SetString(el, "WebSite", row, 4)
	p.SetString(el, "Description", row, 5)
	p.SetNumber(el, "Flags", row, 6)
	if n, ok := row.Number(7); ok {
		if v, ok := decode.EncodeLoadOrder(n); ok {
			el.SetAttr("LoadOrder", v)
		} else {
			p.Unrepresentable(row, "LoadOrder", n)
		}
	}

	p.Index(FilterTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 2)
}

func decompileWebServiceExtension(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebServiceExtension", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("File", row.String(2))
	p.SetString(el, "Description", row, 3)
	p.SetString(el, "Group", row, 4)
	unknownBits(p, row, 5, p.SetBits(el, row, 5, serviceExtensionLayout, decompiler.SetBitsOnly))

	p.Index(WebServiceExtensionTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileCertificate(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "Certificate", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(2))
	if n, ok := row.Number(3); ok {
		decompiler.SetToken(p, el, "StoreLocation", row, 3, n, storeLocations)
	}
	decompiler.SetToken(p, el, "StoreName", row, 4, row.String(4), storeNames)

	unknown := p.SetBits(el, row, 5, certificateLayout, decompiler.SetBitsOnly)
	binary, hasBinary := row.NullableString(6)
	if (unknown&certificateBinary != 0) != hasBinary {
		p.Unrepresentable(row, "Binary_", row.String(6))
	}
	unknownBits(p, row, 5, unknown&^certificateBinary)
	if hasBinary {
		el.SetAttr("BinaryRef", binary)
	}
	p.SetString(el, "CertificatePath", row, 7)
	p.SetString(el, "PFXPassword", row, 8)

	p.Index(CertificateTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileWebSiteCertificate(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "CertificateRef", row)
	el.SetAttr("Id", row.String(1))
	p.Place(el, decompiler.ParentRef{Table: WebSiteTable.Name, ID: row.String(0)}, row, "Web_")
}

func decompileProperty(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "WebProperty", row)
	el.SetAttr("Id", row.String(0))
	p.SetString(el, "Value", row, 3)
	if n, ok := p.Number(row, 2); ok && n != 0 {
		p.Unrepresentable(row, "Attributes", n)
	}

	p.Index(PropertyTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

// finalizeKeyAddresses settles the circular pair between a site and
// its key address. Addresses nest in the site their Web_ column names;
// the site's KeyAddress_ only moves that address to the front, where
// compiling picks it up as the key again.
func finalizeKeyAddresses(p *decompiler.Pass) {
	for _, row := range p.Rows(WebSiteTable) {
		site, ok := p.Lookup(WebSiteTable.Name, row.Key())
		if !ok {
			continue
		}
		key := row.String(7)
		addr, ok := p.Lookup(WebAddressTable.Name, key)
		if !ok || !site.MoveChildFirst(addr) {
			p.ForeignRow(row, "KeyAddress_", decompiler.ParentRef{Table: WebAddressTable.Name, ID: key})
		}
	}
}
