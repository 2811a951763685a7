package iis

import (
	"github.com/kolide/wixext/pkg/compiler"
	"github.com/kolide/wixext/pkg/decompiler"
	"github.com/kolide/wixext/pkg/schema"
)

type Extension struct{}

func New() Extension {
	return Extension{}
}

func (Extension) Name() string      { return "iis" }
func (Extension) Namespace() string { return Namespace }
func (Extension) Prefix() string    { return "iis" }

func (Extension) Tables() []*schema.TableDefinition {
	return Tables()
}

func (Extension) RegisterCompiler(d *compiler.Dispatch) {
	RegisterCompiler(d)
}

func (Extension) RegisterDecompiler(d *decompiler.Dispatch) {
	RegisterDecompiler(d)
}
