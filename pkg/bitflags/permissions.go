package bitflags

import (
	"github.com/pkg/errors"
)

// GenericRead on its own is not a usable access mask.
const GenericRead uint32 = 0x80000000

var ErrGenericReadNotAllowed = errors.New("GenericRead cannot be the only permission")

// Object kinds share the standard and generic ranges. Only the
// special range, bits 0 to 15, changes meaning per kind.
type ObjectKind int

const (
	KindFolder ObjectKind = iota
	KindFile
	KindRegistry
	KindService
)

func (k ObjectKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	case KindRegistry:
		return "registry"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

var (
	standardRange = Span("standard", 16, 27,
		"Delete", "ReadPermission", "ChangePermission", "TakeOwnership", "Synchronize")
	genericRange = Span("generic", 28, 31,
		"GenericAll", "GenericExecute", "GenericWrite", "GenericRead")

	specialNames = map[ObjectKind][]string{
		KindFolder: {"Read", "CreateFile", "CreateChild", "ReadExtendedAttributes", "WriteExtendedAttributes",
			"Traverse", "DeleteChild", "ReadAttributes", "WriteAttributes"},
		KindFile: {"Read", "Write", "Append", "ReadExtendedAttributes", "WriteExtendedAttributes",
			"Execute", "", "ReadAttributes", "WriteAttributes"},
		KindRegistry: {"Read", "Write", "CreateSubkeys", "EnumerateSubkeys", "Notify", "CreateLink"},
		KindService: {"ServiceQueryConfig", "ServiceChangeConfig", "ServiceQueryStatus",
			"ServiceEnumerateDependents", "ServiceStart", "ServiceStop", "ServicePauseContinue",
			"ServiceInterrogate", "ServiceUserDefinedControl"},
	}

	permissionLayouts = map[ObjectKind]Layout{}
)

func init() {
	for kind, names := range specialNames {
		permissionLayouts[kind] = NewLayout(kind.String(),
			Span("special", 0, 15, names...),
			standardRange,
			genericRange,
		)
	}
}

// PermissionLayout returns the permission word layout for a kind.
func PermissionLayout(kind ObjectKind) Layout {
	l, ok := permissionLayouts[kind]
	if !ok {
		panic("bitflags: unknown object kind")
	}
	return l
}

// PackPermission packs a permission word and rejects the GenericRead
// only mask, which the packing alone would happily produce.
func PackPermission(kind ObjectKind, v Values) (uint32, error) {
	word := Pack(PermissionLayout(kind), v)
	if word == GenericRead {
		return word, ErrGenericReadNotAllowed
	}
	return word, nil
}
