package util

import (
	"math"
	"strings"

	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
	"github.com/pkg/errors"
)

const (
	KindUser      compiler.Kind = "util:User"
	KindFileShare compiler.Kind = "util:FileShare"
)

func RegisterCompiler(d *compiler.Dispatch) {
	d.Register(Namespace, "User", compileUser, compiler.KindComponent, compiler.KindFragment)
	d.Register(Namespace, "GroupRef", compileGroupRef, KindUser)
	d.Register(Namespace, "Group", compileGroup, compiler.KindComponent, compiler.KindFragment)
	d.Register(Namespace, "FileShare", compileFileShare, compiler.KindComponent)
	d.Register(Namespace, "FileSharePermission", compileFileSharePermission, KindFileShare)
	d.Register(Namespace, "PermissionEx", compilePermissionEx,
		compiler.KindCreateFolder, compiler.KindFile, compiler.KindRegistryKey,
		compiler.KindRegistryValue, compiler.KindServiceInstall)
	d.Register(Namespace, "ServiceConfig", compileServiceConfig, compiler.KindComponent, compiler.KindServiceInstall)
	d.Register(Namespace, "XmlFile", compileXmlFile, compiler.KindComponent)
	d.Register(Namespace, "RemoveFolderEx", compileRemoveFolderEx, compiler.KindComponent)
	d.Register(Namespace, "InternetShortcut", compileInternetShortcut, compiler.KindComponent)
	d.Register(Namespace, "CloseApplication", compileCloseApplication, compiler.KindFragment)
}

func noChildren(p *compiler.Pass, el *xmltree.Element) {
	for _, c := range el.Children {
		p.UnexpectedElement(el, c)
	}
}

func compileUser(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	nested := ctx.Kind == compiler.KindComponent
	var id, name, domain, password string
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Domain":
			domain = p.Decode.String(el, a)
		case "Password":
			password = p.Decode.String(el, a)
		default:
			if _, ok := userLayout.Bit(a.Name); ok {
				if !nested {
					p.Report(el, diag.IllegalAttributeWhenNotNested, el.Name, a.Name, el.Name, "Component")
					continue
				}
				bits[a.Name] = p.Decode.YesNo(el, a).State()
				continue
			}
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "Name", name)
	if bits["FailIfExists"] == bitflags.On && bits["UpdateIfExists"] == bitflags.On {
		p.Report(el, diag.IllegalAttributeWithOtherAttribute, el.Name, "UpdateIfExists", "FailIfExists")
	}

	var component string
	if nested {
		component = ctx.Component
	}

	p.Children(ctx.Nest(KindUser, el, id), nil)

	sym := intermediate.NewSymbol(UserTable, el.Source)
	sym.SetString("User", id).
		SetOptionalString("Component_", component).
		SetString("Name", name).
		SetOptionalString("Domain", domain).
		SetOptionalString("Password", password).
		SetNumber("Attributes", int(bitflags.Pack(userLayout, bits)))
	p.Emit(el, sym)

	if component != "" {
		p.Reference(el, base.ComponentTable.Name, component)
	}
	return id
}

// compileGroupRef adds the enclosing user to a group. Membership is
// only created along with the user, so the user must be a component's.
func compileGroupRef(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
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
	if ctx.Component == "" {
		p.Report(el, diag.ElementMustBeNested, el.Name, "Component")
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(UserGroupTable, el.Source)
	sym.SetString("User_", ctx.ParentID).SetString("Group_", id)
	p.Emit(el, sym)

	if id != "" {
		p.Reference(el, GroupTable.Name, id)
	}
	return id
}

func compileGroup(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, name, domain string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Domain":
			domain = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "Name", name)
	noChildren(p, el)

	var component string
	if ctx.Kind == compiler.KindComponent {
		component = ctx.Component
	}

	sym := intermediate.NewSymbol(GroupTable, el.Source)
	sym.SetString("Group", id).
		SetOptionalString("Component_", component).
		SetString("Name", name).
		SetOptionalString("Domain", domain)
	p.Emit(el, sym)
	return id
}

// permissions reads the permission attributes of el against the layout
// of kind. skip names the attributes the caller handles itself.
func permissions(p *compiler.Pass, el *xmltree.Element, kind bitflags.ObjectKind, skip func(xmltree.Attr) bool) (uint32, bool) {
	layout := bitflags.PermissionLayout(kind)
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		if skip(a) {
			continue
		}
		if _, ok := layout.Bit(a.Name); ok {
			bits[a.Name] = p.Decode.YesNo(el, a).State()
			continue
		}
		p.UnexpectedAttribute(el, a)
	}

	word, err := bitflags.PackPermission(kind, bits)
	switch {
	case errors.Is(err, bitflags.ErrGenericReadNotAllowed):
		p.Report(el, diag.GenericReadNotAllowed, el.Name)
		return 0, false
	case word == 0:
		p.Report(el, diag.ExpectedAttribute, el.Name, strings.Join(layout.Names(), " or "))
		return 0, false
	}
	return word, true
}

func compileFileShare(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, name, description string
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Description":
			description = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "Name", name)
	if ctx.Directory == "" {
		p.Report(el, diag.ExpectedParentDirectory, el.Name, "Component")
	}

	granted := 0
	p.Children(ctx.Nest(KindFileShare, el, id), func(c *xmltree.Element, _ string) {
		if c.Namespace == Namespace && c.Name == "FileSharePermission" {
			granted++
		}
	})
	if granted == 0 {
		p.Report(el, diag.ExpectedElement, el.Name, "FileSharePermission")
	}

	sym := intermediate.NewSymbol(FileShareTable, el.Source)
	sym.SetString("FileShare", id).
		SetString("ShareName", name).
		SetString("Component_", ctx.Component).
		SetOptionalString("Description", description).
		SetString("Directory_", ctx.Directory)
	p.Emit(el, sym)

	p.Reference(el, base.ComponentTable.Name, ctx.Component)
	p.Reference(el, base.DirectoryTable.Name, ctx.Directory)
	return id
}

func compileFileSharePermission(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var user string
	word, _ := permissions(p, el, bitflags.KindFolder, func(a xmltree.Attr) bool {
		if a.Name == "User" {
			user = p.Decode.Identifier(el, a)
			return true
		}
		return false
	})
	p.Require(el, "User", user)
	noChildren(p, el)

	sym := intermediate.NewSymbol(FileSharePermissionsTable, el.Source)
	sym.SetString("FileShare_", ctx.ParentID).
		SetString("User_", user).
		SetNumber("Permissions", int(word))
	p.Emit(el, sym)

	if user != "" {
		p.Reference(el, UserTable.Name, user)
	}
	return ""
}

// compilePermissionEx secures its parent. The parent kind decides both
// the permission layout and the table the row points into.
func compilePermissionEx(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	target := securables[ctx.Kind]
	var user, domain string
	word, _ := permissions(p, el, target.kind, func(a xmltree.Attr) bool {
		switch a.Name {
		case "User":
			user = p.Decode.NonEmpty(el, a)
		case "Domain":
			domain = p.Decode.String(el, a)
		default:
			return false
		}
		return true
	})
	p.Require(el, "User", user)
	noChildren(p, el)

	sym := intermediate.NewSymbol(SecureObjectsTable, el.Source)
	sym.SetString("SecureObject", ctx.ParentID).
		SetString("Table", target.table).
		SetOptionalString("Domain", domain).
		SetString("User", user).
		SetNumber("Permission", int(word)).
		SetOptionalString("Component_", ctx.Component)
	p.Emit(el, sym)
	return ""
}

func compileServiceConfig(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	nested := ctx.Kind == compiler.KindServiceInstall
	var (
		serviceName, commandLine, rebootMessage string
		resetPeriod, restartDelay               int
		hasResetPeriod, hasRestartDelay         bool
	)
	actions := make(map[string]string)
	for _, a := range el.Attrs {
		switch a.Name {
		case "ServiceName":
			if nested {
				p.Report(el, diag.IllegalAttributeWhenNested, el.Name, a.Name, el.Name, ctx.ParentName())
				continue
			}
			serviceName = p.Decode.NonEmpty(el, a)
		case "FirstFailureActionType", "SecondFailureActionType", "ThirdFailureActionType":
			actions[a.Name], _ = decode.Lookup(p.Decode, el, a, failureActions)
		case "ResetPeriodInDays":
			resetPeriod, hasResetPeriod = p.Decode.Integer(el, a, 0, math.MaxInt32)
		case "RestartServiceDelayInSeconds":
			restartDelay, hasRestartDelay = p.Decode.Integer(el, a, 0, math.MaxInt32)
		case "ProgramCommandLine":
			commandLine = p.Decode.String(el, a)
		case "RebootMessage":
			rebootMessage = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	newService := 0
	if nested {
		serviceName = ctx.ServiceName
		newService = 1
	} else {
		p.Require(el, "ServiceName", serviceName)
	}
	p.RequireAttr(el, "FirstFailureActionType")
	p.RequireAttr(el, "SecondFailureActionType")
	p.RequireAttr(el, "ThirdFailureActionType")
	noChildren(p, el)

	sym := intermediate.NewSymbol(ServiceConfigTable, el.Source)
	sym.SetString("ServiceName", serviceName).
		SetString("Component_", ctx.Component).
		SetNumber("NewService", newService).
		SetString("FirstFailureActionType", actions["FirstFailureActionType"]).
		SetString("SecondFailureActionType", actions["SecondFailureActionType"]).
		SetString("ThirdFailureActionType", actions["ThirdFailureActionType"]).
		SetOptionalNumber("ResetPeriodInDays", resetPeriod, hasResetPeriod).
		SetOptionalNumber("RestartServiceDelayInSeconds", restartDelay, hasRestartDelay).
		SetOptionalString("ProgramCommandLine", commandLine).
		SetOptionalString("RebootMessage", rebootMessage)
	p.Emit(el, sym)

	p.Reference(el, base.ComponentTable.Name, ctx.Component)
	return ""
}

func compileXmlFile(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, file, elementPath, name, value, action string
		flags, sequence                            int
		hasSequence                                bool
	)
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "File":
			file = p.Decode.NonEmpty(el, a)
		case "ElementPath":
			elementPath = p.Decode.NonEmpty(el, a)
		case "Name":
			name = p.Decode.String(el, a)
		case "Value":
			value = p.Decode.String(el, a)
		case "Action":
			if n, ok := decode.Lookup(p.Decode, el, a, xmlFileActions); ok {
				action = a.Value
				flags |= n
			}
		case "SelectionLanguage":
			n, _ := decode.Lookup(p.Decode, el, a, selectionLanguages)
			flags |= n
		case "Permanent", "PreserveModifiedDate":
			bits[a.Name] = p.Decode.YesNo(el, a).State()
		case "Sequence":
			sequence, hasSequence = p.Decode.Integer(el, a, 1, math.MaxInt32)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "File", file)
	p.Require(el, "ElementPath", elementPath)
	p.RequireAttr(el, "Action")
	_, hasValue := el.Attr("Value")
	switch {
	case action == "createElement" && name == "":
		p.Report(el, diag.ExpectedAttributeWithValue, el.Name, "Name", "Action", action)
	case action == "deleteValue" && hasValue:
		p.Report(el, diag.IllegalAttributeWithOtherAttributeValue, el.Name, "Value", "Action", action)
	}
	noChildren(p, el)

	flags |= int(bitflags.Pack(xmlFileLayout, bits))

	sym := intermediate.NewSymbol(XmlFileTable, el.Source)
	sym.SetString("XmlFile", id).
		SetString("File", file).
		SetString("ElementPath", elementPath).
		SetOptionalString("Name", name).
		SetNumber("Flags", flags).
		SetString("Component_", ctx.Component).
		SetOptionalNumber("Sequence", sequence, hasSequence)
	if hasValue {
		sym.SetString("Value", value)
	}
	p.Emit(el, sym)

	p.Reference(el, base.ComponentTable.Name, ctx.Component)
	return id
}

func compileRemoveFolderEx(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, property, condition string
	mode := defaultRemoveFolderMode
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Property":
			property = p.Decode.Identifier(el, a)
		case "On":
			mode = decode.LookupOr(p.Decode, el, a, removeFolderModes, mode)
		case "Condition":
			condition = p.Decode.String(el, a)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Property", property)
	if id == "" && property != "" {
		id = decode.GenerateIdentifier("wrf", ctx.Component, property)
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(RemoveFolderExTable, el.Source)
	sym.SetString("Wix4RemoveFolderEx", id).
		SetString("Component_", ctx.Component).
		SetString("Property", property).
		SetNumber("InstallMode", mode).
		SetOptionalString("Condition", condition)
	p.Emit(el, sym)

	p.Reference(el, base.ComponentTable.Name, ctx.Component)
	return id
}

func compileInternetShortcut(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, name, target, iconFile string
		iconIndex, shortcutType    int
		hasIconIndex               bool
	)
	directory := ctx.Directory
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Directory":
			directory = p.Decode.Identifier(el, a)
		case "Name":
			name = p.Decode.NonEmpty(el, a)
		case "Target":
			target = p.Decode.NonEmpty(el, a)
		case "Type":
			shortcutType, _ = decode.Lookup(p.Decode, el, a, shortcutTypes)
		case "IconFile":
			iconFile = p.Decode.String(el, a)
		case "IconIndex":
			iconIndex, hasIconIndex = p.Decode.Integer(el, a, math.MinInt32, math.MaxInt32)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Id", id)
	p.Require(el, "Directory", directory)
	p.Require(el, "Name", name)
	p.Require(el, "Target", target)
	noChildren(p, el)

	sym := intermediate.NewSymbol(InternetShortcutTable, el.Source)
	sym.SetString("InternetShortcut", id).
		SetString("Component_", ctx.Component).
		SetString("Directory_", directory).
		SetString("Name", name).
		SetString("Target", target).
		SetNumber("Attributes", shortcutType).
		SetOptionalString("IconFile", iconFile).
		SetOptionalNumber("IconIndex", iconIndex, hasIconIndex)
	p.Emit(el, sym)

	p.Reference(el, base.ComponentTable.Name, ctx.Component)
	p.Reference(el, base.DirectoryTable.Name, directory)
	return id
}

func compileCloseApplication(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var (
		id, target, description, condition, property string
		sequence, exitCode, timeout                  int
		hasSequence, hasExitCode, hasTimeout         bool
	)
	bits := bitflags.Values{}
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Target":
			target = p.Decode.NonEmpty(el, a)
		case "Description":
			description = p.Decode.String(el, a)
		case "Condition":
			condition = p.Decode.String(el, a)
		case "Sequence":
			sequence, hasSequence = p.Decode.Integer(el, a, 1, math.MaxInt32)
		case "Property":
			property = p.Decode.Identifier(el, a)
		case "TerminateExitCode":
			exitCode, hasExitCode = p.Decode.Integer(el, a, 0, math.MaxInt32)
		case "Timeout":
			timeout, hasTimeout = p.Decode.Integer(el, a, 0, math.MaxInt32)
		default:
			if _, ok := closeApplicationLayout.Bit(a.Name); ok {
				bits[a.Name] = p.Decode.YesNo(el, a).State()
				continue
			}
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Target", target)
	if id == "" && target != "" {
		id = decode.GenerateIdentifier("ca", target)
	}

	terminate := bits["TerminateProcess"] == bitflags.On
	if terminate {
		for _, m := range closeMessages {
			if bits[m] == bitflags.On {
				p.Report(el, diag.IllegalAttributeWithOtherAttributeValue, el.Name, m, "TerminateProcess", "yes")
			}
		}
	}
	if hasExitCode && !terminate {
		p.Report(el, diag.ExpectedAttributeWithOtherAttribute, el.Name, "TerminateProcess", "TerminateExitCode")
	}
	noChildren(p, el)

	sym := intermediate.NewSymbol(CloseApplicationTable, el.Source)
	sym.SetString("Wix4CloseApplication", id).
		SetString("Target", target).
		SetOptionalString("Description", description).
		SetOptionalString("Condition", condition).
		SetNumber("Attributes", int(bitflags.Pack(closeApplicationLayout, bits))).
		SetOptionalNumber("Sequence", sequence, hasSequence).
		SetOptionalString("Property", property).
		SetOptionalNumber("TerminateExitCode", exitCode, hasExitCode).
		SetOptionalNumber("Timeout", timeout, hasTimeout)
	p.Emit(el, sym)
	return id
}
