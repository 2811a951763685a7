package iis

import (
	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/decode"
)

// ParentType values of the web error, header and mime map tables.
const (
	parentVirtualDir = 1
	parentWebSite    = 2
)

// certificateBinary is set when the certificate comes from a Binary row.
const certificateBinary = 2

var (
	siteStateLayout = bitflags.Flags("State",
		bitflags.Flag("StartOnInstall", 1),
		bitflags.Flag("AutoStart", 2),
	)
	siteAttributesLayout = bitflags.Flags("Attributes",
		bitflags.Inverted("ConfigureIfExists", 4),
	)
	addressAttributesLayout = bitflags.Flags("Attributes",
		bitflags.Flag("Secure", 1),
	)
	extensionAttributesLayout = bitflags.Flags("Attributes",
		bitflags.Flag("Script", 1),
		bitflags.Flag("CheckPath", 4),
	)
	serviceExtensionLayout = bitflags.Flags("Attributes",
		bitflags.Flag("Allow", 1),
		bitflags.Flag("UIDeletable", 2),
	)
	certificateLayout = bitflags.Flags("Attributes",
		bitflags.Flag("Request", 1),
		bitflags.Flag("Overwrite", 4),
	)

	accessLayout = bitflags.Flags("Access",
		bitflags.Flag("Read", 1),
		bitflags.Flag("Write", 2),
		bitflags.Flag("Execute", 4),
		bitflags.Flag("Script", 512),
	)
	authorizationLayout = bitflags.Flags("Authorization",
		bitflags.Flag("AnonymousAccess", 1),
		bitflags.Flag("BasicAuthentication", 2),
		bitflags.Flag("WindowsAuthentication", 4),
		bitflags.Flag("DigestAuthentication", 16),
		bitflags.Flag("PassportAuthentication", 64),
	)
	accessSSLLayout = bitflags.Flags("AccessSSLFlags",
		bitflags.Flag("AccessSSL", 8),
		bitflags.Flag("AccessSSLNegotiateCert", 32),
		bitflags.Flag("AccessSSLRequireCert", 64),
		bitflags.Flag("AccessSSLMapCert", 128),
		bitflags.Flag("AccessSSL128", 256),
	)

	// dirPropertiesWords are the packed columns of a web directory
	// properties row, each null unless one of its bits was authored.
	dirPropertiesWords = []struct {
		column string
		layout bitflags.Layout
	}{
		{"Access", accessLayout},
		{"Authorization", authorizationLayout},
		{"AccessSSLFlags", accessSSLLayout},
	}

	// dirPropertiesYesNo maps yes/no attributes to their 0/1 column.
	dirPropertiesYesNo = []attrColumn{
		{"IIsControlledPassword", "IIsControlledPassword"},
		{"LogVisits", "LogVisits"},
		{"Index", "Index"},
		{"AspDetailedErrors", "AspDetailedError"},
		{"ClearCustomError", "NoCustomError"},
	}

	// dirPropertiesStrings maps string attributes to their column.
	dirPropertiesStrings = []attrColumn{
		{"DefaultDocuments", "DefaultDoc"},
		{"HttpExpires", "HttpExpires"},
		{"CacheControlCustom", "CacheControlCustom"},
		{"AuthenticationProviders", "AuthenticationProviders"},
	}

	webApplicationYesNo = []attrColumn{
		{"AllowSessions", "AllowSessions"},
		{"Buffer", "Buffer"},
		{"ParentPaths", "ParentPaths"},
		{"ServerDebugging", "ServerDebugging"},
		{"ClientDebugging", "ClientDebugging"},
	}

	appPoolNumbers = []attrColumn{
		{"RecycleMinutes", "RecycleMinutes"},
		{"RecycleRequests", "RecycleRequests"},
		{"IdleTimeout", "IdleTimeout"},
		{"QueueLimit", "QueueLimit"},
		{"MaxWorkerProcesses", "MaxProc"},
		{"VirtualMemory", "VirtualMemory"},
		{"PrivateMemory", "PrivateMemory"},
	}

	// cpuMon is MaxCpuUsage, RefreshCpu and CpuAction packed into the
	// app pool CPUMon column. An omitted MaxCpuUsage or RefreshCpu
	// followed by a later value is written as 0.
	cpuMon = bitflags.Composite{
		Names:     []string{"MaxCpuUsage", "RefreshCpu", "CpuAction"},
		Separator: ",",
		Defaults:  []int{0, 0},
	}
)

var (
	isolationModes = decode.Tokens[int]{
		{Name: "low", Value: 0},
		{Name: "high", Value: 1},
		{Name: "medium", Value: 2},
	}
	appPoolIdentities = decode.Tokens[int]{
		{Name: "networkService", Value: 1},
		{Name: "localService", Value: 2},
		{Name: "localSystem", Value: 4},
		{Name: "other", Value: 8},
		{Name: "applicationPoolIdentity", Value: 16},
	}
	cpuActions = decode.Tokens[int]{
		{Name: "none", Value: 0},
		{Name: "shutdown", Value: 1},
	}
	storeLocations = decode.Tokens[int]{
		{Name: "currentUser", Value: 1},
		{Name: "localMachine", Value: 2},
	}
	storeNames = decode.Tokens[string]{
		{Name: "ca", Value: "CA"},
		{Name: "my", Value: "MY"},
		{Name: "personal", Value: "MY"},
		{Name: "request", Value: "REQUEST"},
		{Name: "root", Value: "Root"},
		{Name: "otherPeople", Value: "AddressBook"},
		{Name: "trustedPeople", Value: "TrustedPeople"},
		{Name: "trustedPublisher", Value: "TrustedPublisher"},
	}

	// logFormats is the bidirectional table between the authored log
	// type and the format name IIS stores.
	logFormats = decode.Tokens[string]{
		{Name: "IIS", Value: "Microsoft IIS Log File Format"},
		{Name: "NCSA", Value: "NCSA Common Log File Format"},
		{Name: "none", Value: "none"},
		{Name: "ODBC", Value: "ODBC Logging"},
		{Name: "W3C", Value: "W3C Extended Log File Format"},
	}

	webProperties = []string{"ETagChangeNumber", "IIs5IsolationMode", "LogInUTF8", "MaxGlobalBandwidth"}
)

// attrColumn pairs an authored attribute with the column it fills.
type attrColumn struct {
	attr   string
	column string
}

func columnFor(list []attrColumn, attr string) (string, bool) {
	for _, ac := range list {
		if ac.attr == attr {
			return ac.column, true
		}
	}
	return "", false
}

// webPropertyTakesValue lists the web properties that carry a value.
func webPropertyTakesValue(id string) bool {
	return id == "ETagChangeNumber" || id == "MaxGlobalBandwidth"
}
