package base

import (
	"strconv"
	"strings"

	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/serenize/snaker"
)

// Context value keys set by RegistryKey for nested values.
const (
	registryRootValue = "base.registry.root"
	registryKeyValue  = "base.registry.key"
)

var (
	RegistryRoots = decode.Tokens[int]{
		{Name: "HKCR", Value: 0},
		{Name: "HKCU", Value: 1},
		{Name: "HKLM", Value: 2},
		{Name: "HKU", Value: 3},
		{Name: "HKMU", Value: -1},
	}

	ServiceTypes = decode.Tokens[int]{
		{Name: "ownProcess", Value: 0x10},
		{Name: "shareProcess", Value: 0x20},
	}
	StartTypes = decode.Tokens[int]{
		{Name: "boot", Value: 0},
		{Name: "system", Value: 1},
		{Name: "auto", Value: 2},
		{Name: "demand", Value: 3},
		{Name: "disabled", Value: 4},
	}
	ErrorControlTypes = decode.Tokens[int]{
		{Name: "ignore", Value: 0},
		{Name: "normal", Value: 1},
		{Name: "critical", Value: 3},
	}

	// packageAttributes are accepted on Package and Module and not
	// modelled any further.
	packageAttributes = map[string]bool{
		"Name": true, "Manufacturer": true, "Version": true, "UpgradeCode": true,
		"Language": true, "Codepage": true, "Scope": true, "InstallerVersion": true,
		"Compressed": true, "Guid": true, "Id": true,
	}
)

func RegisterCompiler(d *compiler.Dispatch) {
	d.Register(Namespace, "Wix", compileWix, compiler.KindDocument)
	for _, name := range []string{"Package", "Module", "Fragment"} {
		d.Register(Namespace, name, compileFragment, compiler.KindWix)
	}
	d.Register(Namespace, "Directory", compileDirectory, compiler.KindFragment, compiler.KindDirectory)
	d.Register(Namespace, "StandardDirectory", compileDirectoryRef, compiler.KindFragment)
	d.Register(Namespace, "DirectoryRef", compileDirectoryRef, compiler.KindFragment)
	d.Register(Namespace, "Component", compileComponent, compiler.KindFragment, compiler.KindDirectory)
	d.Register(Namespace, "ComponentRef", compileComponentRef, compiler.KindFragment)
	d.Register(Namespace, "File", compileFile, compiler.KindComponent)
	d.Register(Namespace, "CreateFolder", compileCreateFolder, compiler.KindComponent)
	d.Register(Namespace, "RegistryKey", compileRegistryKey, compiler.KindComponent)
	d.Register(Namespace, "RegistryValue", compileRegistryValue, compiler.KindComponent, compiler.KindRegistryKey)
	d.Register(Namespace, "ServiceInstall", compileServiceInstall, compiler.KindComponent)
	d.Register(Namespace, "Property", compileProperty, compiler.KindFragment)
}

func compileWix(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	for _, a := range el.Attrs {
		p.UnexpectedAttribute(el, a)
	}
	p.Children(ctx.Nest(compiler.KindWix, el, ""), nil)
	return ""
}

func compileFragment(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id string
	for _, a := range el.Attrs {
		switch {
		case a.Name == "Id" && el.Name == "Fragment":
			id = p.Decode.Identifier(el, a)
		case el.Name != "Fragment" && packageAttributes[a.Name]:
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	if id != "" {
		p.SetSectionID(id)
	}
	p.Children(ctx.Nest(compiler.KindFragment, el, id), nil)
	return id
}

func compileDirectory(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, name string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	if name == "" {
		name = "."
	}

	child := ctx.Nest(compiler.KindDirectory, el, id)
	child.Directory = id
	p.Children(child, nil)

	sym := intermediate.NewSymbol(DirectoryTable, el.Source)
	sym.SetString("Directory", id).
		SetOptionalString("Directory_Parent", ctx.Directory).
		SetString("DefaultDir", name)
	p.Emit(el, sym)
	if ctx.Directory != "" {
		p.Reference(el, DirectoryTable.Name, ctx.Directory)
	}
	return id
}

func compileDirectoryRef(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	if p.Require(el, "Id", id) {
		p.Reference(el, DirectoryTable.Name, id)
	}

	child := ctx.Nest(compiler.KindDirectory, el, id)
	child.Directory = id
	p.Children(child, nil)
	return id
}

func compileComponent(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, guid string
	directory := ctx.Directory
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Guid":
			guid = p.Decode.Guid(el, a, true)
		case "Directory":
			directory = p.Decode.Identifier(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "Directory", directory)

	child := ctx.Nest(compiler.KindComponent, el, id)
	child.Component = id
	child.Directory = directory
	p.Children(child, nil)

	sym := intermediate.NewSymbol(ComponentTable, el.Source)
	sym.SetString("Component", id).
		SetOptionalString("ComponentId", guid).
		SetString("Directory_", directory)
	p.Emit(el, sym)
	p.Reference(el, DirectoryTable.Name, directory)
	return id
}

// compileComponentRef gives its children the context of a component
// defined elsewhere. The directory of that component is not known.
func compileComponentRef(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	if p.Require(el, "Id", id) {
		p.Reference(el, ComponentTable.Name, id)
	}

	child := ctx.Nest(compiler.KindComponent, el, id)
	child.Component = id
	child.Directory = ""
	p.Children(child, nil)
	return id
}

func compileFile(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, name string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Name", name)
	if id == "" && name != "" {
		id = decode.GenerateIdentifier("fil", ctx.Component, name)
	}

	p.Children(ctx.Nest(compiler.KindFile, el, id), nil)

	sym := intermediate.NewSymbol(FileTable, el.Source)
	sym.SetString("File", id).SetString("Component_", ctx.Component).SetString("FileName", name)
	p.Emit(el, sym)
	return id
}

func compileCreateFolder(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	directory := ctx.Directory
	for _, a := range el.Attrs {
		switch a.Name {
		case "Directory":
			directory = p.Decode.Identifier(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Directory", directory)

	p.Children(ctx.Nest(compiler.KindCreateFolder, el, directory), nil)

	sym := intermediate.NewSymbol(CreateFolderTable, el.Source)
	sym.SetString("Directory_", directory).SetString("Component_", ctx.Component)
	p.Emit(el, sym)
	p.Reference(el, DirectoryTable.Name, directory)
	return directory
}

type registryAttrs struct {
	id, key, name, value string
	root                 int
}

func (r *registryAttrs) parse(p *compiler.Pass, el *xmltree.Element, a xmltree.Attr, allowValue bool) bool {
	switch {
	case a.Name == "Id":
		r.id = p.Decode.Identifier(el, a)
	case a.Name == "Root":
		r.root, _ = decode.Lookup(p.Decode, el, a, RegistryRoots)
	case a.Name == "Key":
		r.key = p.Decode.NonEmpty(el, a)
	case a.Name == "Name" && allowValue:
		r.name = p.Decode.String(el, a)
	case a.Name == "Value" && allowValue:
		r.value = p.Decode.String(el, a)
	default:
		return false
	}
	return true
}

func compileRegistryKey(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var r registryAttrs
	for _, a := range el.Attrs {
		if !r.parse(p, el, a, false) {
			p.UnexpectedAttribute(el, a)
		}
	}
	p.RequireAttr(el, "Root")
	p.Require(el, "Key", r.key)
	if r.id == "" {
		r.id = decode.GenerateIdentifier("reg", ctx.Component, decode.EncodeInteger(r.root), strings.ToLower(r.key))
	}

	child := ctx.Nest(compiler.KindRegistryKey, el, r.id).
		With(registryRootValue, decode.EncodeInteger(r.root)).
		With(registryKeyValue, r.key)
	p.Children(child, nil)

	sym := intermediate.NewSymbol(RegistryTable, el.Source)
	sym.SetString("Registry", r.id).
		SetNumber("Root", r.root).
		SetString("Key", r.key).
		SetString("Component_", ctx.Component)
	p.Emit(el, sym)
	return r.id
}

func compileRegistryValue(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var r registryAttrs
	for _, a := range el.Attrs {
		if (ctx.Kind == compiler.KindRegistryKey && (a.Name == "Root" || a.Name == "Key")) || !r.parse(p, el, a, true) {
			p.UnexpectedAttribute(el, a)
		}
	}

	if ctx.Kind == compiler.KindRegistryKey {
		r.root, _ = strconv.Atoi(ctx.Value(registryRootValue))
		r.key = ctx.Value(registryKeyValue)
	} else {
		p.RequireAttr(el, "Root")
		p.Require(el, "Key", r.key)
	}
	p.RequireAttr(el, "Value")
	if r.id == "" {
		r.id = decode.GenerateIdentifier("reg", ctx.Component, decode.EncodeInteger(r.root), strings.ToLower(r.key), strings.ToLower(r.name))
	}

	p.Children(ctx.Nest(compiler.KindRegistryValue, el, r.id), nil)

	sym := intermediate.NewSymbol(RegistryTable, el.Source)
	sym.SetString("Registry", r.id).
		SetNumber("Root", r.root).
		SetString("Key", r.key).
		SetOptionalString("Name", r.name).
		SetString("Value", r.value).
		SetString("Component_", ctx.Component)
	p.Emit(el, sym)
	return r.id
}

func compileServiceInstall(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, name, displayName, account, arguments, description string
	serviceType, startType, errorControl := 0x10, 2, 1
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "DisplayName":
			displayName = p.Decode.String(el, a)
		case "Type":
			serviceType = decode.LookupOr(p.Decode, el, a, ServiceTypes, serviceType)
		case "Start":
			startType = decode.LookupOr(p.Decode, el, a, StartTypes, startType)
		case "ErrorControl":
			errorControl = decode.LookupOr(p.Decode, el, a, ErrorControlTypes, errorControl)
		case "Account":
			account = p.Decode.String(el, a)
		case "Arguments":
			arguments = p.Decode.String(el, a)
		case "Description":
			description = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Name", name)
	if id == "" && name != "" {
		var ok bool
		if id, ok = ServiceID(name); !ok {
			id = decode.GenerateIdentifier("svc", ctx.Component, name)
		}
	}

	child := ctx.Nest(compiler.KindServiceInstall, el, id)
	child.ServiceName = name
	p.Children(child, nil)

	sym := intermediate.NewSymbol(ServiceInstallTable, el.Source)
	sym.SetString("ServiceInstall", id).
		SetString("Name", name).
		SetOptionalString("DisplayName", displayName).
		SetNumber("ServiceType", serviceType).
		SetNumber("StartType", startType).
		SetNumber("ErrorControl", errorControl).
		SetOptionalString("Account", account).
		SetOptionalString("Arguments", arguments).
		SetString("Component_", ctx.Component).
		SetOptionalString("Description", description)
	p.Emit(el, sym)
	return id
}

// ServiceID derives a ServiceInstall identifier from a service name by
// replacing separators and camel casing the result, so daemon-svc.exe
// becomes DaemonSvcExe. It reports false when the result is still not
// a legal identifier, as for names starting with a digit.
func ServiceID(name string) (string, bool) {
	r := strings.NewReplacer(
		"-", "_",
		" ", "_",
		".", "_",
		"/", "_",
		"\\", "_",
	)

	id := snaker.SnakeToCamel(r.Replace(name))
	return id, schema.IsIdentifier(id)
}

func compileProperty(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, value string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Value":
			value = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.RequireAttr(el, "Value")

	for _, c := range el.Children {
		p.UnexpectedElement(el, c)
	}

	sym := intermediate.NewSymbol(PropertyTable, el.Source)
	sym.SetString("Property", id).SetString("Value", value)
	p.Emit(el, sym)
	return id
}
