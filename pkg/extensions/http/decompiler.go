package http

import (
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/extensions/base"
	"github.com/kolide/wixext/pkg/intermediate"
)

func RegisterDecompiler(d *decompiler.Dispatch) {
	d.Register(UrlReservationTable, decompileUrlReservation)
	d.Register(UrlAceTable, decompileUrlAce)
	d.Register(SniSslTable, decompileSniSsl)
}

// Reservations decompile under their component. One nested in a
// ServiceInstall is indistinguishable once compiled, and its aces carry
// the defaulted principal explicitly.
func decompileUrlReservation(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "UrlReservation", row)
	el.SetAttr("Id", row.String(0))
	if n, ok := p.Number(row, 1); ok && n != 0 {
		decompiler.SetToken(p, el, "HandleExisting", row, 1, n, handleExisting)
	}
	p.SetString(el, "Sddl", row, 2)
	el.SetAttr("Url", row.String(3))

	p.Index(UrlReservationTable.Name, row.Key(), el)
	base.PlaceInComponent(p, el, row, 4)
}

func decompileUrlAce(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "UrlAce", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("SecurityPrincipal", row.String(2))
	if n, ok := p.Number(row, 3); ok && n != defaultRights {
		decompiler.SetToken(p, el, "Rights", row, 3, n, rights)
	}
	p.Place(el, decompiler.ParentRef{Table: UrlReservationTable.Name, ID: row.String(1)}, row, "UrlReservation_")
}

func decompileSniSsl(p *decompiler.Pass, row *intermediate.Row) {
	el := p.Element(Namespace, "SniSsl", row)
	el.SetAttr("Id", row.String(0))
	el.SetAttr("Host", row.String(1))
	el.SetAttr("Port", row.String(2))
	el.SetAttr("CertificateHash", row.String(3))
	p.SetString(el, "StoreName", row, 4)
	p.SetString(el, "AppId", row, 5)
	if n, ok := p.Number(row, 6); ok && n != 0 {
		decompiler.SetToken(p, el, "HandleExisting", row, 6, n, handleExisting)
	}
	base.PlaceInComponent(p, el, row, 7)
}
