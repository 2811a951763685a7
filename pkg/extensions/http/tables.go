// Package http compiles and decompiles the HTTP extension: URL
// reservations with their access control entries, and SNI SSL
// certificate bindings.
package http

import (
	"github.com/kolide/wixext/pkg/schema"
)

const Namespace = "http://wixtoolset.org/schemas/v4/wxs/http"

var (
	UrlReservationTable = schema.NewTable("Wix4HttpUrlReservation", "HttpUrlReservation",
		schema.Identifier("UrlReservation"),
		schema.Number("HandleExisting").Range(0, 2),
		schema.String("Sddl").Null(),
		schema.Formatted("Url"),
		schema.Identifier("Component_").Key("Component", 1),
	)
	UrlAceTable = schema.NewTable("Wix4HttpUrlAce", "HttpUrlAce",
		schema.Identifier("UrlAce"),
		schema.Identifier("UrlReservation_").Key("Wix4HttpUrlReservation", 1),
		schema.Formatted("SecurityPrincipal"),
		schema.Number("Rights"),
	)
	SniSslTable = schema.NewTable("Wix4HttpSniSsl", "HttpSniSsl",
		schema.Identifier("SniSsl"),
		schema.Formatted("Host"),
		schema.Formatted("Port"),
		schema.Formatted("CertificateHash"),
		schema.Formatted("StoreName").Null(),
		schema.String("AppId").Null(),
		schema.Number("HandleExisting").Range(0, 2),
		schema.Identifier("Component_").Key("Component", 1),
	)
)

// Tables is in decompile order: reservations before their aces.
func Tables() []*schema.TableDefinition {
	return []*schema.TableDefinition{
		UrlReservationTable,
		UrlAceTable,
		SniSslTable,
	}
}
