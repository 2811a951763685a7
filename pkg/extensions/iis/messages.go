package iis

import (
	"github.com/kolide/wixext/pkg/diag"
)

var (
	WebApplicationAlreadySpecified = diag.Template{ID: 100, Name: "WebApplicationAlreadySpecified", Severity: diag.Error,
		Format: "The %s element contains a WebApplication child element while its WebApplication attribute is set to '%s'. Specify only one of them."}
	WebDirPropertiesAlreadySpecified = diag.Template{ID: 101, Name: "WebDirPropertiesAlreadySpecified", Severity: diag.Error,
		Format: "The %s element contains a WebDirProperties child element while its DirProperties attribute is set to '%s'. Specify only one of them."}
	IllegalRecycleTime = diag.Template{ID: 102, Name: "IllegalRecycleTime", Severity: diag.Error,
		Format: "The %s/@%s attribute's value, '%s', is not a time of day in the hh:mm format."}
)
