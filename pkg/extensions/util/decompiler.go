package util

import (
	"strconv"

	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
)

func RegisterDecompiler(d *decompiler.Dispatch) {
	d.Register(UserTable, decompileUser)
	d.Register(GroupTable, decompileGroup)
	d.Register(UserGroupTable, decompileUserGroup)
	d.Register(FileShareTable, decompileFileShare)
	d.Register(FileSharePermissionsTable, decompileFileSharePermission)
	d.Register(SecureObjectsTable, decompileSecureObject)
	d.Register(ServiceConfigTable, decompileServiceConfig)
	d.Register(XmlFileTable, decompileXmlFile)
	d.Register(RemoveFolderExTable, decompileRemoveFolderEx)
	d.Register(InternetShortcutTable, decompileInternetShortcut)
	d.Register(CloseApplicationTable, decompileCloseApplication)
}

func decompileUser(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "User", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(2))
	p.SetString(el, "Domain", row, 3)
	p.SetString(el, "Password", row, 4)
	if unknown := p.SetBits(el, row, 5, userLayout, decompiler.SetBitsOnly); unknown != 0 {
		p.Unrepresentable(row, "Attributes", "0x"+strconv.FormatUint(uint64(unknown), 16))
	}

	p.Index(UserTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileGroup(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "Group", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(2))
	p.SetString(el, "Domain", row, 3)

	p.Index(GroupTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileUserGroup(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "GroupRef", row)
	el.SetAttr("Id", row.String(1))
	p.Place(el, decompiler.ParentRef{Table: UserTable.Name, ID: row.String(0)}, row, "User_")
}

func decompileFileShare(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "FileShare", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(1))
	p.SetString(el, "Description", row, 3)
	if !row.IsNull(5) {
		p.Unrepresentable(row, "User_", row.String(5))
	}
	if !row.IsNull(6) {
		p.Unrepresentable(row, "Permissions", row.String(6))
	}

	p.Index(FileShareTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 2)
}

func decompileFileSharePermission(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "FileSharePermission", row)
	el.SetAttr("User", row.String(1))
	setPermissions(p, el, row, 2, bitflags.KindFolder)
	p.Place(el, decompiler.ParentRef{Table: FileShareTable.Name, ID: row.String(0)}, row, "FileShare_")
}

// setPermissions writes a permission word with the layout of kind.
// Bits outside the layout are reported, not guessed at.
func setPermissions(p *decompiler.Pass, el *xmltree.Element, row *intermediate.Row, column int, kind bitflags.ObjectKind) {
	if unknown := p.SetBits(el, row, column, bitflags.PermissionLayout(kind), decompiler.SetBitsOnly); unknown != 0 {
		p.Warn(row, diag.UnknownPermission, row.Definition.Name, row.Key(), unknown)
	}
}

// decompileSecureObject turns a SecureObjects row into a PermissionEx
// under the element its Table column names. CreateFolder rows are
// keyed by directory and component together.
func decompileSecureObject(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "PermissionEx", row)
	p.SetString(el, "Domain", row, 2)
	el.SetAttr("User", row.String(3))

	table := row.String(1)
	target, ok := securableByTable(table)
	if !ok {
		p.Unrepresentable(row, "Table", table)
		p.Place(el, decompiler.Root, row, "")
		return
	}
	setPermissions(p, el, row, 4, target.kind)

	id := row.String(0)
	if table == base.CreateFolderTable.Name {
		id += intermediate.KeySeparator + row.String(5)
	}
	p.Place(el, decompiler.ParentRef{Table: table, ID: id}, row, "SecureObject")
}

// decompileServiceConfig nests configuration of a service installed by
// the same component in its ServiceInstall. Configuration of an
// existing service stays on the component and names the service.
func decompileServiceConfig(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "ServiceConfig", row)
	name, component := row.String(0), row.String(1)
	newService, _ := p.Number(row, 2)
	if newService != 1 {
		el.SetAttr("ServiceName", name)
	}
	for i, attr := range []string{"FirstFailureActionType", "SecondFailureActionType", "ThirdFailureActionType"} {
		decompiler.SetToken(p, el, attr, row, 3+i, row.String(3+i), failureActions)
	}
	p.SetNumber(el, "ResetPeriodInDays", row, 6)
	p.SetNumber(el, "RestartServiceDelayInSeconds", row, 7)
	p.SetString(el, "ProgramCommandLine", row, 8)
	p.SetString(el, "RebootMessage", row, 9)

	if newService == 1 {
		p.Place(el, decompiler.ParentRef{Table: base.ServiceNameIndex, ID: component + "/" + name}, row, "ServiceName")
		return
	}
	base.PlaceInComponent(p, el, row, 1)
}

func decompileXmlFile(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "XmlFile", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("File", row.String(1))
	el.SetAttr("ElementPath", row.String(2))
	p.SetString(el, "Name", row, 3)
	p.SetString(el, "Value", row, 4)

	if flags, ok := p.Number(row, 5); ok {
		decompileXmlFileFlags(p, el, row, flags)
	}
	p.SetNumber(el, "Sequence", row, 7)

	p.Index(XmlFileTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 6)
}

func decompileXmlFileFlags(p *decompiler.Pass, el *xmltree.Element, row *intermediate.Row, flags int) {
	decompiler.SetToken(p, el, "Action", row, 5, flags&xmlFileActionMask, xmlFileActions)
	if flags&0x100 != 0 {
		el.SetAttr("SelectionLanguage", "XPath")
	}
	values, unknown := bitflags.Unpack(xmlFileLayout, uint32(flags&^xmlFileActionMask))
	for _, name := range []string{"PreserveModifiedDate", "Permanent"} {
		if values[name] == bitflags.On {
			el.SetAttr(name, "yes")
		}
	}
	if unknown != 0 {
		p.Unrepresentable(row, "Flags", "0x"+strconv.FormatUint(uint64(unknown), 16))
	}
}

func decompileRemoveFolderEx(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "RemoveFolderEx", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Property", row.String(2))
	if mode, ok := p.Number(row, 3); ok && mode != defaultRemoveFolderMode {
		decompiler.SetToken(p, el, "On", row, 3, mode, removeFolderModes)
	}
	p.SetString(el, "Condition", row, 4)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileInternetShortcut(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "InternetShortcut", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Directory", row.String(2))
	el.SetAttr("Name", row.String(3))
	el.SetAttr("Target", row.String(4))
	if t, ok := p.Number(row, 5); ok && t != 0 {
		decompiler.SetToken(p, el, "Type", row, 5, t, shortcutTypes)
	}
	p.SetString(el, "IconFile", row, 6)
	p.SetNumber(el, "IconIndex", row, 7)
	base.PlaceInComponent(p, el, row, 1)
}

func decompileCloseApplication(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "CloseApplication", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Target", row.String(1))
	p.SetString(el, "Description", row, 2)
	p.SetString(el, "Condition", row, 3)
	if unknown := p.SetBits(el, row, 4, closeApplicationLayout, decompiler.SetBitsOnly); unknown != 0 {
		p.Unrepresentable(row, "Attributes", "0x"+strconv.FormatUint(uint64(unknown), 16))
	}
	p.SetNumber(el, "Sequence", row, 5)
	p.SetString(el, "Property", row, 6)
	p.SetNumber(el, "TerminateExitCode", row, 7)
	p.SetNumber(el, "Timeout", row, 8)
	p.Place(el, decompiler.Root, row, "")
}
