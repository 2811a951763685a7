package util

import (
	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decode"
)

var (
	userLayout = bitflags.Flags("Attributes",
		bitflags.Flag("PasswordNeverExpires", 0x1),
		bitflags.Flag("CanNotChangePassword", 0x2),
		bitflags.Flag("PasswordExpired", 0x4),
		bitflags.Flag("Disabled", 0x8),
		bitflags.Flag("FailIfExists", 0x10),
		bitflags.Flag("UpdateIfExists", 0x20),
		bitflags.Flag("LogonAsService", 0x40),
		bitflags.Flag("LogonAsBatchJob", 0x80),
		bitflags.Inverted("RemoveOnUninstall", 0x100),
		bitflags.Inverted("CreateUser", 0x200),
		bitflags.Inverted("Vital", 0x400),
	)

	closeApplicationLayout = bitflags.Flags("Attributes",
		bitflags.Flag("CloseMessage", 1),
		bitflags.Inverted("RebootPrompt", 2),
		bitflags.Flag("ElevatedCloseMessage", 4),
		bitflags.Flag("EndSessionMessage", 8),
		bitflags.Flag("ElevatedEndSessionMessage", 16),
		bitflags.Flag("TerminateProcess", 32),
		bitflags.Flag("PromptToContinue", 64),
	)
	// closeMessages are the bits TerminateProcess excludes.
	closeMessages = []string{"CloseMessage", "ElevatedCloseMessage", "EndSessionMessage", "ElevatedEndSessionMessage"}

	xmlFileLayout = bitflags.Flags("Flags",
		bitflags.Flag("SelectionLanguage", 0x100),
		bitflags.Flag("PreserveModifiedDate", 0x1000),
		bitflags.Flag("Permanent", 0x10000),
	)
)

// xmlFileActionMask covers the action part of XmlFile.Flags.
const xmlFileActionMask = 0x7

var (
	xmlFileActions = decode.Tokens[int]{
		{Name: "setValue", Value: 0},
		{Name: "createElement", Value: 1},
		{Name: "deleteValue", Value: 2},
		{Name: "bulkSetValue", Value: 4},
	}
	selectionLanguages = decode.Tokens[int]{
		{Name: "XSLPattern", Value: 0},
		{Name: "XPath", Value: 0x100},
	}
	failureActions = decode.Tokens[string]{
		{Name: "none", Value: "none"},
		{Name: "reboot", Value: "reboot"},
		{Name: "restart", Value: "restart"},
		{Name: "runCommand", Value: "runCommand"},
	}
	removeFolderModes = decode.Tokens[int]{
		{Name: "install", Value: 1},
		{Name: "uninstall", Value: 2},
		{Name: "both", Value: 3},
	}
	shortcutTypes = decode.Tokens[int]{
		{Name: "link", Value: 0},
		{Name: "url", Value: 1},
	}
)

const defaultRemoveFolderMode = 2

// securable describes a host element PermissionEx can secure: the
// permission layout of its object kind and the table SecureObjects
// rows name.
type securable struct {
	kind  bitflags.ObjectKind
	table string
}

var securables = map[compiler.Kind]securable{
	compiler.KindCreateFolder:   {bitflags.KindFolder, "CreateFolder"},
	compiler.KindFile:           {bitflags.KindFile, "File"},
	compiler.KindRegistryKey:    {bitflags.KindRegistry, "Registry"},
	compiler.KindRegistryValue:  {bitflags.KindRegistry, "Registry"},
	compiler.KindServiceInstall: {bitflags.KindService, "ServiceInstall"},
}

// securableByTable is securables keyed the other way, for
// decompiling.
func securableByTable(table string) (securable, bool) {
	for _, s := range securables {
		if s.table == table {
			return s, true
		}
	}
	return securable{}, false
}
