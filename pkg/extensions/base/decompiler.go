package base

import (
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
)

// ServiceNameIndex indexes ServiceInstall elements by
// "component/name", for rows that find their service by name.
const ServiceNameIndex = "ServiceInstall#Name"

func RegisterDecompiler(d *decompiler.Dispatch) {
	d.Register(DirectoryTable, decompileDirectory)
	d.Register(ComponentTable, decompileComponent)
	d.Register(FileTable, decompileFile)
	d.Register(CreateFolderTable, decompileCreateFolder)
	d.Register(RegistryTable, decompileRegistry)
	d.Register(ServiceInstallTable, decompileServiceInstall)
	d.Register(PropertyTable, decompileProperty)
}

// PlaceInComponent nests el in the Component of the given row column.
// Components that were not decompiled are reached through a
// ComponentRef at the fragment root.
func PlaceInComponent(p *decompiler.Pass, el *xmltree.Element, row *intermediate.Row, column int) {
	id, ok := row.NullableString(column)
	if !ok {
		p.Place(el, decompiler.Root, row, "")
		return
	}
	p.PlaceOr(el, decompiler.ParentRef{Table: ComponentTable.Name, ID: id}, row, row.Definition.Columns[column].Name,
		func() *xmltree.Element { return p.Ref(Namespace, "ComponentRef", id) })
}

func placeInDirectory(p *decompiler.Pass, el *xmltree.Element, row *intermediate.Row, column int) {
	id, ok := row.NullableString(column)
	if !ok {
		p.Place(el, decompiler.Root, row, "")
		return
	}
	p.PlaceOr(el, decompiler.ParentRef{Table: DirectoryTable.Name, ID: id}, row, row.Definition.Columns[column].Name,
		func() *xmltree.Element { return p.Ref(Namespace, "DirectoryRef", id) })
}

func decompileDirectory(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "Directory", row)
	el.SetAttr("Id", row.String(0))
	if name := row.String(2); name != "." {
		el.SetAttr("Name", name)
	}
	p.Index(DirectoryTable.Name, row.Key(), el)
	placeInDirectory(p, el, row, 1)
}

func decompileComponent(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "Component", row)
	el.SetAttr("Id", row.String(0))
	p.SetString(el, "Guid", row, 1)
	p.Index(ComponentTable.Name, row.Key(), el)
	placeInDirectory(p, el, row, 2)
}

func decompileFile(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "File", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(2))
	p.Index(FileTable.Name, row.Key(), el)
	PlaceInComponent(p, el, row, 1)
}

func decompileCreateFolder(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "CreateFolder", row)
	el.SetAttr("Directory", row.String(0))
	p.Index(CreateFolderTable.Name, row.Key(), el)
	PlaceInComponent(p, el, row, 1)
}

func decompileRegistry(p *decompiler.Pass, row *intermediate.Row) {
	name := "RegistryValue"
	if row.IsNull(4) {
		name = "RegistryKey"
	}
	el := p.Element(Namespace, name, row)
	el.SetAttr("Id", row.String(0))
	if root, ok := p.Number(row, 1); ok {
		decompiler.SetToken(p, el, "Root", row, 1, root, RegistryRoots)
	}
	el.SetAttr("Key", row.String(2))
	if name == "RegistryValue" {
		p.SetString(el, "Name", row, 3)
		p.SetString(el, "Value", row, 4)
	} else if !row.IsNull(3) {
		p.Unrepresentable(row, "Name", row.String(3))
	}
	p.Index(RegistryTable.Name, row.Key(), el)
	PlaceInComponent(p, el, row, 5)
}

func decompileServiceInstall(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "ServiceInstall", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Name", row.String(1))
	p.SetString(el, "DisplayName", row, 2)
	if n, ok := row.Number(3); ok {
		decompiler.SetToken(p, el, "Type", row, 3, n, ServiceTypes)
	}
	if n, ok := row.Number(4); ok {
		decompiler.SetToken(p, el, "Start", row, 4, n, StartTypes)
	}
	if n, ok := row.Number(5); ok {
		decompiler.SetToken(p, el, "ErrorControl", row, 5, n, ErrorControlTypes)
	}
	p.SetString(el, "Account", row, 6)
	p.SetString(el, "Arguments", row, 7)
	p.SetString(el, "Description", row, 9)

	p.Index(ServiceInstallTable.Name, row.Key(), el)
	p.Index(ServiceNameIndex, row.String(8)+"/"+row.String(1), el)
	PlaceInComponent(p, el, row, 8)
}

func decompileProperty(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "Property", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Value", row.String(1))
	p.Index(PropertyTable.Name, row.Key(), el)
	p.Place(el, decompiler.Root, row, "")
}
