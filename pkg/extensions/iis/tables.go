// Package iis compiles and decompiles the IIS extension: web sites
// and their addresses, virtual and plain web directories, directory
// properties, applications and app pools, filters, logs, certificates
// and the headers, mime maps and errors nested in sites and
// directories.
package iis

import (
	"github.com/kolide/wixext/pkg/schema"
)

const Namespace = "http://wixtoolset.org/schemas/v4/wxs/iis"

var (
	WebSiteTable = schema.NewTable("Wix4IIsWebSite", "IIsWebSite",
		schema.Identifier("Web"),
		schema.Identifier("Component_").Null().Key("Component", 1),
		schema.Formatted("Description").Null(),
		schema.Number("ConnectionTimeout").Null(),
		schema.Identifier("Directory_").Null().Key("Directory", 1),
		schema.Number("State").Null().Range(0, 3),
		schema.Number("Attributes"),
		schema.Identifier("KeyAddress_").Key("Wix4IIsWebAddress", 1),
		schema.Identifier("DirProperties_").Null().Key("Wix4IIsWebDirProperties", 1),
		schema.Identifier("Application_").Null().Key("Wix4IIsWebApplication", 1),
		schema.Number("Sequence").Null(),
		schema.Identifier("Log_").Null().Key("Wix4IIsWebLog", 1),
		schema.String("WebsiteId").Null(),
	)
	WebAddressTable = schema.NewTable("Wix4IIsWebAddress", "IIsWebAddress",
		schema.Identifier("Address"),
		schema.Identifier("Web_").Key("Wix4IIsWebSite", 1),
		schema.Formatted("IP").Null(),
		schema.Formatted("Port"),
		schema.Formatted("Header").Null(),
		schema.Number("Attributes").Null(),
	)
	WebApplicationTable = schema.NewTable("Wix4IIsWebApplication", "IIsWebApplication",
		schema.Identifier("Application"),
		schema.Formatted("Name"),
		schema.Number("Isolation").Range(0, 2),
		schema.Number("AllowSessions").Null(),
		schema.Number("SessionTimeout").Null(),
		schema.Number("Buffer").Null(),
		schema.Number("ParentPaths").Null(),
		schema.String("DefaultScript").Null(),
		schema.Number("ScriptTimeout").Null(),
		schema.Number("ServerDebugging").Null(),
		schema.Number("ClientDebugging").Null(),
		schema.Identifier("AppPool_").Null().Key("Wix4IIsAppPool", 1),
	)
	WebApplicationExtensionTable = schema.NewTable("Wix4IIsWebApplicationExtension", "IIsWebApplicationExtension",
		schema.Identifier("Application_").Key("Wix4IIsWebApplication", 1).PK(),
		schema.String("Extension").Null().PK(),
		schema.String("Verbs").Null(),
		schema.Formatted("Executable"),
		schema.Number("Attributes").Null(),
	)
	AppPoolTable = schema.NewTable("Wix4IIsAppPool", "IIsAppPool",
		schema.Identifier("AppPool"),
		schema.String("Name"),
		schema.Identifier("Component_").Null().Key("Component", 1),
		schema.Number("Attributes"),
		schema.Identifier("User_").Null().Key("Wix4User", 1),
		schema.Number("RecycleMinutes").Null(),
		schema.Number("RecycleRequests").Null(),
		schema.String("RecycleTimes").Null(),
		schema.Number("IdleTimeout").Null(),
		schema.Number("QueueLimit").Null(),
		schema.String("CPUMon").Null(),
		schema.Number("MaxProc").Null(),
		schema.Number("VirtualMemory").Null(),
		schema.Number("PrivateMemory").Null(),
		schema.String("ManagedRuntimeVersion").Null(),
		schema.String("ManagedPipelineMode").Null(),
	)
	WebVirtualDirTable = schema.NewTable("Wix4IIsWebVirtualDir", "IIsWebVirtualDir",
		schema.Identifier("VirtualDir"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Identifier("Web_").Key("Wix4IIsWebSite", 1),
		schema.String("Alias"),
		schema.Identifier("Directory_").Key("Directory", 1),
		schema.Identifier("DirProperties_").Null().Key("Wix4IIsWebDirProperties", 1),
		schema.Identifier("Application_").Null().Key("Wix4IIsWebApplication", 1),
	)
	WebDirTable = schema.NewTable("Wix4IIsWebDir", "IIsWebDir",
		schema.Identifier("WebDir"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Identifier("Web_").Key("Wix4IIsWebSite", 1),
		schema.String("Path"),
		schema.Identifier("DirProperties_").Null().Key("Wix4IIsWebDirProperties", 1),
		schema.Identifier("Application_").Null().Key("Wix4IIsWebApplication", 1),
	)
	WebDirPropertiesTable = schema.NewTable("Wix4IIsWebDirProperties", "IIsWebDirProperties",
		schema.Identifier("DirProperties"),
		schema.Number("Access").Null(),
		schema.Number("Authorization").Null(),
		schema.Identifier("AnonymousUser_").Null().Key("Wix4User", 1),
		schema.Number("IIsControlledPassword").Null(),
		schema.Number("LogVisits").Null(),
		schema.Number("Index").Null(),
		schema.String("DefaultDoc").Null(),
		schema.Number("AspDetailedError").Null(),
		schema.String("HttpExpires").Null(),
		schema.Number("CacheControlMaxAge").Null(),
		schema.String("CacheControlCustom").Null(),
		schema.Number("NoCustomError").Null(),
		schema.Number("AccessSSLFlags").Null(),
		schema.String("AuthenticationProviders").Null(),
	)
	WebErrorTable = schema.NewTable("Wix4IIsWebError", "IIsWebError",
		schema.Number("ErrorCode").Range(400, 599).PK(),
		schema.Number("SubCode").PK(),
		schema.Number("ParentType").PK(),
		schema.Identifier("ParentValue").PK(),
		schema.Formatted("File").Null(),
		schema.String("URL").Null(),
	)
	HttpHeaderTable = schema.NewTable("Wix4IIsHttpHeader", "IIsHttpHeader",
		schema.Identifier("HttpHeader"),
		schema.Number("ParentType"),
		schema.Identifier("ParentValue"),
		schema.String("Name"),
		schema.Formatted("Value"),
		schema.Number("Attributes"),
		schema.Number("Sequence").Null(),
	)
	MimeMapTable = schema.NewTable("Wix4IIsMimeMap", "IIsMimeMap",
		schema.Identifier("MimeMap"),
		schema.Number("ParentType"),
		schema.Identifier("ParentValue"),
		schema.String("MimeType"),
		schema.String("Extension"),
	)
	FilterTable = schema.NewTable("Wix4IIsFilter", "IIsFilter",
		schema.Identifier("Filter"),
		schema.String("Name"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Formatted("Path").Null(),
		schema.Identifier("Web_").Null().Key("Wix4IIsWebSite", 1),
		schema.String("Description").Null(),
		schema.Number("Flags"),
		schema.Number("LoadOrder").Null(),
	)
	WebLogTable = schema.NewTable("Wix4IIsWebLog", "IIsWebLog",
		schema.Identifier("Log"),
		schema.String("Format"),
	)
	WebServiceExtensionTable = schema.NewTable("Wix4IIsWebServiceExtension", "IIsWebServiceExtension",
		schema.Identifier("WebServiceExtension"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Formatted("File"),
		schema.Formatted("Description").Null(),
		schema.Formatted("Group").Null(),
		schema.Number("Attributes"),
	)
	CertificateTable = schema.NewTable("Wix4Certificate", "Certificate",
		schema.Identifier("Certificate"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Formatted("Name"),
		schema.Number("StoreLocation").Range(1, 2),
		schema.Formatted("StoreName"),
		schema.Number("Attributes"),
		schema.Identifier("Binary_").Null().Key("Binary", 1),
		schema.Formatted("CertificatePath").Null(),
		schema.Formatted("PFXPassword").Null(),
	)
	WebSiteCertificatesTable = schema.NewTable("Wix4IIsWebSiteCertificates", "IIsWebSiteCertificates",
		schema.Identifier("Web_").Key("Wix4IIsWebSite", 1).PK(),
		schema.Identifier("Certificate_").Key("Wix4Certificate", 1).PK(),
	)
	PropertyTable = schema.NewTable("Wix4IIsProperty", "IIsProperty",
		schema.Identifier("Property"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Number("Attributes"),
		schema.Formatted("Value").Null(),
	)
)

// Tables is in decompile order. Rows only declare their parents, so
// the order is cosmetic: it decides the order of siblings.
func Tables() []*schema.TableDefinition {
	return []*schema.TableDefinition{
		WebLogTable,
		AppPoolTable,
		WebApplicationTable,
		WebApplicationExtensionTable,
		WebDirPropertiesTable,
		WebSiteTable,
		WebAddressTable,
		WebVirtualDirTable,
		WebDirTable,
		WebErrorTable,
		HttpHeaderTable,
		MimeMapTable,
		FilterTable,
		WebServiceExtensionTable,
		CertificateTable,
		WebSiteCertificatesTable,
		PropertyTable,
	}
}
