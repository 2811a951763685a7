// Package decode turns authored attribute text into typed values and
// back. Decoders never fail a pass: a bad value is reported to the
// diagnostics and a fallback is returned so the caller can keep going.
package decode

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kolide/wixext/pkg/bitflags"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/kolide/wixext/pkg/xmltree"
)

// YesNo is the tri-state result of a yes/no attribute.
type YesNo int

const (
	NotSet YesNo = iota
	No
	Yes
	IllegalYesNo
)

// State converts to the bit engine's tri-state. Illegal values count
// as unset since the error was already reported.
func (v YesNo) State() bitflags.State {
	switch v {
	case Yes:
		return bitflags.On
	case No:
		return bitflags.Off
	default:
		return bitflags.Unset
	}
}

// Number is the 0/1 column value of an authored yes/no.
func (v YesNo) Number() (int, bool) {
	switch v {
	case Yes:
		return 1, true
	case No:
		return 0, true
	default:
		return 0, false
	}
}

// Decoder reports into one pass's diagnostics.
type Decoder struct {
	diags *diag.Diagnostics
}

func New(diags *diag.Diagnostics) *Decoder {
	return &Decoder{diags: diags}
}

func (d *Decoder) Diagnostics() *diag.Diagnostics {
	return d.diags
}

func (d *Decoder) report(el *xmltree.Element, t diag.Template, args ...interface{}) {
	d.diags.Add(t.New(el.Source, args...))
}

func (d *Decoder) empty(el *xmltree.Element, a xmltree.Attr) bool {
	if a.Value != "" {
		return false
	}
	d.report(el, diag.IllegalEmptyAttributeValue, el.Name, a.Name)
	return true
}

// String accepts any value, including the empty string.
func (d *Decoder) String(el *xmltree.Element, a xmltree.Attr) string {
	return a.Value
}

// NonEmpty rejects the empty string.
func (d *Decoder) NonEmpty(el *xmltree.Element, a xmltree.Attr) string {
	d.empty(el, a)
	return a.Value
}

// Identifier validates the identifier grammar. The raw value is
// returned even when it is illegal so later checks do not cascade.
func (d *Decoder) Identifier(el *xmltree.Element, a xmltree.Attr) string {
	if d.empty(el, a) {
		return ""
	}
	if !schema.IsIdentifier(a.Value) {
		d.report(el, diag.IllegalIdentifier, el.Name, a.Name, a.Value)
	}
	return a.Value
}

// Integer parses an integer within min..max inclusive.
func (d *Decoder) Integer(el *xmltree.Element, a xmltree.Attr, min, max int64) (int, bool) {
	if d.empty(el, a) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
	if err != nil {
		d.report(el, diag.IllegalIntegerValue, el.Name, a.Name, a.Value)
		return 0, false
	}
	if n < min || n > max {
		d.report(el, diag.IntegralValueOutOfRange, el.Name, a.Name, n, min, max)
		return 0, false
	}
	return int(n), true
}

// YesNo decodes "yes" or "no".
func (d *Decoder) YesNo(el *xmltree.Element, a xmltree.Attr) YesNo {
	if d.empty(el, a) {
		return IllegalYesNo
	}
	switch a.Value {
	case "yes":
		return Yes
	case "no":
		return No
	default:
		d.report(el, diag.IllegalYesNoValue, el.Name, a.Name, a.Value)
		return IllegalYesNo
	}
}

// Enum accepts one of the legal tokens, case-sensitively.
func (d *Decoder) Enum(el *xmltree.Element, a xmltree.Attr, legal ...string) (string, bool) {
	if d.empty(el, a) {
		return "", false
	}
	for _, l := range legal {
		if a.Value == l {
			return l, true
		}
	}
	d.report(el, diag.IllegalAttributeValue, el.Name, a.Name, a.Value, strings.Join(legal, ", "))
	return "", false
}

// Guid returns the canonical braced upper case form. When generatable
// is set, "*" is passed through for later generation.
func (d *Decoder) Guid(el *xmltree.Element, a xmltree.Attr, generatable bool) string {
	if d.empty(el, a) {
		return ""
	}
	if generatable && a.Value == "*" {
		return "*"
	}
	u, err := uuid.Parse(a.Value)
	if err != nil {
		d.report(el, diag.IllegalGuidValue, el.Name, a.Name, a.Value)
		return ""
	}
	return CanonicalGuid(u)
}

// LoadOrder maps "first" to 0 and "last" to -1. Any other value is a
// rank in 1..MaxInt32, so the three bands never collide.
func (d *Decoder) LoadOrder(el *xmltree.Element, a xmltree.Attr) (int, bool) {
	switch a.Value {
	case "first":
		return 0, true
	case "last":
		return -1, true
	}
	return d.Integer(el, a, 1, math.MaxInt32)
}

// SiteID maps the wildcard "*" to "-1". The mapping only exists in
// this direction; stored "-1" is decompiled verbatim.
func (d *Decoder) SiteID(el *xmltree.Element, a xmltree.Attr) string {
	if d.empty(el, a) {
		return ""
	}
	if a.Value == "*" {
		return "-1"
	}
	return a.Value
}

func CanonicalGuid(u uuid.UUID) string {
	return "{" + strings.ToUpper(u.String()) + "}"
}
