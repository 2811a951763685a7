package http

import (
	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decode"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/xmltree"
)

const KindUrlReservation compiler.Kind = "http:UrlReservation"

var (
	handleExisting = decode.Tokens[int]{
		{Name: "replace", Value: 0},
		{Name: "ignore", Value: 1},
		{Name: "fail", Value: 2},
	}
	rights = decode.Tokens[int]{
		{Name: "all", Value: 0x10000000},
		{Name: "delegate", Value: 0x40000000},
		{Name: "register", Value: 0x20000000},
	}
)

const defaultRights = 0x20000000

func RegisterCompiler(d *compiler.Dispatch) {
	d.Register(Namespace, "UrlReservation", compileUrlReservation, compiler.KindComponent, compiler.KindServiceInstall)
	d.Register(Namespace, "UrlAce", compileUrlAce, KindUrlReservation)
	d.Register(Namespace, "SniSsl", compileSniSsl, compiler.KindComponent)
}

func compileUrlReservation(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, url, sddl string
	existing := 0
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Url":
			url = p.Decode.NonEmpty(el, a)
		case "Sddl":
			sddl = p.Decode.NonEmpty(el, a)
		case "HandleExisting":
			existing, _ = decode.Lookup(p.Decode, el, a, handleExisting)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Url", url)
	if id == "" && url != "" {
		id = decode.GenerateIdentifier("url", ctx.Component, url)
	}

	aces := 0
	p.Children(ctx.Nest(KindUrlReservation, el, id), func(c *xmltree.Element, _ string) {
		if c.Namespace == Namespace && c.Name == "UrlAce" {
			aces++
		}
	})
	switch {
	case sddl != "" && aces > 0:
		p.Report(el, diag.IllegalAttributeWithOtherAttribute, el.Name, "Sddl", "UrlAce")
	case sddl == "" && aces == 0:
		p.Report(el, diag.ExpectedAttributeOrElement, el.Name, "Sddl", "UrlAce")
	}

	sym := intermediate.NewSymbol(UrlReservationTable, el.Source)
	sym.SetString("UrlReservation", id).
		SetNumber("HandleExisting", existing).
		SetOptionalString("Sddl", sddl).
		SetString("Url", url).
		SetString("Component_", ctx.Component)
	p.Emit(el, sym)

	p.Reference(el, base.ComponentTable.Name, ctx.Component)
	return id
}

// compileUrlAce defaults the principal to the service account when the
// reservation belongs to a service.
func compileUrlAce(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, principal string
	right := defaultRights
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "SecurityPrincipal":
			principal = p.Decode.NonEmpty(el, a)
		case "Rights":
			right = decode.LookupOr(p.Decode, el, a, rights, right)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	if principal == "" && ctx.ServiceName != "" {
		principal = `NT SERVICE\` + ctx.ServiceName
	}
	p.Require(el, "SecurityPrincipal", principal)
	if id == "" && principal != "" {
		id = decode.GenerateIdentifier("ace", ctx.ParentID, principal)
	}
	for _, c := range el.Children {
		p.UnexpectedElement(el, c)
	}

	sym := intermediate.NewSymbol(UrlAceTable, el.Source)
	sym.SetString("UrlAce", id).
		SetString("UrlReservation_", ctx.ParentID).
		SetString("SecurityPrincipal", principal).
		SetNumber("Rights", right)
	p.Emit(el, sym)
	return id
}

func compileSniSsl(p *compiler.Pass, ctx compiler.Context, el *xmltree.Element) string {
	var id, host, port, hash, storeName, appID string
	existing := 0
	for _, a := range el.Attrs {
		switch a.Name {
		case "Id":
			id = p.Decode.Identifier(el, a)
		case "Host":
			host = p.Decode.NonEmpty(el, a)
		case "Port":
			port = p.Decode.NonEmpty(el, a)
		case "CertificateHash":
			hash = p.Decode.NonEmpty(el, a)
		case "StoreName":
			storeName = p.Decode.String(el, a)
		case "AppId":
			appID = p.Decode.Guid(el, a, false)
		case "HandleExisting":
			existing, _ = decode.Lookup(p.Decode, el, a, handleExisting)
		default:
			p.UnexpectedAttribute(el, a)
		}
	}
	p.Require(el, "Host", host)
	p.Require(el, "Port", port)
	p.Require(el, "CertificateHash", hash)
	if id == "" && host != "" && port != "" {
		id = decode.GenerateIdentifier("ssl", host, port)
	}
	for _, c := range el.Children {
		p.UnexpectedElement(el, c)
	}

	sym := intermediate.NewSymbol(SniSslTable, el.Source)
	sym.SetString("SniSsl", id).
		SetString("Host", host).
		SetString("Port", port).
		SetString("CertificateHash", hash).
		SetOptionalString("StoreName", storeName).
		SetOptionalString("AppId", appID).
		SetNumber("HandleExisting", existing).
		SetString("Component_", ctx.Component)
	p.Emit(el, sym)

	p.Reference(el, base.ComponentTable.Name, ctx.Component)
	return id
}
