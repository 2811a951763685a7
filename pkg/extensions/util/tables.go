// Package util compiles and decompiles the utility extension: users
// and groups, file shares, extended permissions on the objects of the
// host vocabulary, service failure configuration, XML file edits,
// folder removal, internet shortcuts and closing applications.
package util

import (
	"github.com/kolide/wixext/pkg/schema"
)

const Namespace = "http://wixtoolset.org/schemas/v4/wxs/util"

var (
	UserTable = schema.NewTable("Wix4User", "User",
		schema.Identifier("User"),
		schema.Identifier("Component_").Null().Key("Component", 1),
		schema.Formatted("Name"),
		schema.Formatted("Domain").Null(),
		schema.Formatted("Password").Null(),
		schema.Number("Attributes"),
	)
	GroupTable = schema.NewTable("Wix4Group", "Group",
		schema.Identifier("Group"),
		schema.Identifier("Component_").Null().Key("Component", 1),
		schema.Formatted("Name"),
		schema.Formatted("Domain").Null(),
	)
	UserGroupTable = schema.NewTable("Wix4UserGroup", "UserGroup",
		schema.Identifier("User_").Key("Wix4User", 1).PK(),
		schema.Identifier("Group_").Key("Wix4Group", 1).PK(),
	)
	FileShareTable = schema.NewTable("Wix4FileShare", "FileShare",
		schema.Identifier("FileShare"),
		schema.Formatted("ShareName"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Formatted("Description").Null(),
		schema.Identifier("Directory_").Key("Directory", 1),
		schema.Identifier("User_").Null().Key("Wix4User", 1),
		schema.Number("Permissions").Null(),
	)
	FileSharePermissionsTable = schema.NewTable("Wix4FileSharePermissions", "FileSharePermissions",
		schema.Identifier("FileShare_").Key("Wix4FileShare", 1).PK(),
		schema.Identifier("User_").Key("Wix4User", 1).PK(),
		schema.Number("Permissions"),
	)
	SecureObjectsTable = schema.NewTable("Wix4SecureObjects", "SecureObjects",
		schema.Identifier("SecureObject").PK(),
		schema.String("Table").PK(),
		schema.Formatted("Domain").Null().PK(),
		schema.Formatted("User").PK(),
		schema.Number("Permission"),
		schema.Identifier("Component_").Null().Key("Component", 1),
	)
	ServiceConfigTable = schema.NewTable("Wix4ServiceConfig", "ServiceConfig",
		schema.Formatted("ServiceName").PK(),
		schema.Identifier("Component_").Key("Component", 1).PK(),
		schema.Number("NewService").Range(0, 1),
		schema.String("FirstFailureActionType"),
		schema.String("SecondFailureActionType"),
		schema.String("ThirdFailureActionType"),
		schema.Number("ResetPeriodInDays").Null(),
		schema.Number("RestartServiceDelayInSeconds").Null(),
		schema.Formatted("ProgramCommandLine").Null(),
		schema.Formatted("RebootMessage").Null(),
	)
	XmlFileTable = schema.NewTable("Wix4XmlFile", "XmlFile",
		schema.Identifier("XmlFile"),
		schema.Formatted("File"),
		schema.Formatted("ElementPath"),
		schema.Formatted("Name").Null(),
		schema.Formatted("Value").Null(),
		schema.Number("Flags"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Number("Sequence").Null(),
	)
	RemoveFolderExTable = schema.NewTable("Wix4RemoveFolderEx", "RemoveFolderEx",
		schema.Identifier("Wix4RemoveFolderEx"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Identifier("Property"),
		schema.Number("InstallMode").Range(1, 3),
		schema.Condition("Condition").Null(),
	)
	InternetShortcutTable = schema.NewTable("Wix4InternetShortcut", "InternetShortcut",
		schema.Identifier("InternetShortcut"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Identifier("Directory_").Key("Directory", 1),
		schema.String("Name"),
		schema.Formatted("Target"),
		schema.Number("Attributes").Range(0, 1),
		schema.Formatted("IconFile").Null(),
		schema.Number("IconIndex").Null(),
	)
	CloseApplicationTable = schema.NewTable("Wix4CloseApplication", "CloseApplication",
		schema.Identifier("Wix4CloseApplication"),
		schema.Formatted("Target"),
		schema.Formatted("Description").Null(),
		schema.Condition("Condition").Null(),
		schema.Number("Attributes"),
		schema.Number("Sequence").Null(),
		schema.Identifier("Property").Null(),
		schema.Number("TerminateExitCode").Null(),
		schema.Number("Timeout").Null(),
	)
)

// Tables is in decompile order. Users come before the group
// memberships and share permissions naming them.
func Tables() []*schema.TableDefinition {
	return []*schema.TableDefinition{
		UserTable,
		GroupTable,
		UserGroupTable,
		FileShareTable,
		FileSharePermissionsTable,
		SecureObjectsTable,
		ServiceConfigTable,
		XmlFileTable,
		RemoveFolderExTable,
		InternetShortcutTable,
		CloseApplicationTable,
	}
}
