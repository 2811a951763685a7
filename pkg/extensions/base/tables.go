// Package base is the host vocabulary the extensions nest in:
// packages, fragments, directories, components and the few component
// children extensions attach to. It only models what the extensions
// need to compile and decompile in context.
package base

import (
	"github.com/kolide/wixext/pkg/schema"
)

const Namespace = "http://wixtoolset.org/schemas/v4/wxs"

var (
	ComponentTable = schema.NewTable("Component", "",
		schema.Identifier("Component"),
		schema.Guid("ComponentId").Null(),
		schema.Identifier("Directory_").Key("Directory", 1),
	)
	DirectoryTable = schema.NewTable("Directory", "",
		schema.Identifier("Directory"),
		schema.Identifier("Directory_Parent").Null().Key("Directory", 1),
		schema.String("DefaultDir"),
	)
	FileTable = schema.NewTable("File", "",
		schema.Identifier("File"),
		schema.Identifier("Component_").Key("Component", 1),
		schema.String("FileName"),
	)
	CreateFolderTable = schema.NewTable("CreateFolder", "",
		schema.Identifier("Directory_").Key("Directory", 1).PK(),
		schema.Identifier("Component_").Key("Component", 1).PK(),
	)
	RegistryTable = schema.NewTable("Registry", "",
		schema.Identifier("Registry"),
		schema.Number("Root").Range(-1, 3),
		schema.String("Key"),
		schema.String("Name").Null(),
		schema.String("Value").Null(),
		schema.Identifier("Component_").Key("Component", 1),
	)
	ServiceInstallTable = schema.NewTable("ServiceInstall", "",
		schema.Identifier("ServiceInstall"),
		schema.Formatted("Name"),
		schema.Formatted("DisplayName").Null(),
		schema.Number("ServiceType"),
		schema.Number("StartType").Range(0, 4),
		schema.Number("ErrorControl"),
		schema.Formatted("Account").Null(),
		schema.Formatted("Arguments").Null(),
		schema.Identifier("Component_").Key("Component", 1),
		schema.Formatted("Description").Null(),
	)
	PropertyTable = schema.NewTable("Property", "",
		schema.Identifier("Property"),
		schema.String("Value"),
	)
)

func Tables() []*schema.TableDefinition {
	return []*schema.TableDefinition{
		DirectoryTable,
		ComponentTable,
		FileTable,
		CreateFolderTable,
		RegistryTable,
		ServiceInstallTable,
		PropertyTable,
	}
}
