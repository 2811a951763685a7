package xmlflatten

import "sort"

type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Changed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return "~"
	}
}

// Change is one path whose value differs between two flattenings.
// Old is empty for additions, New for removals.
type Change struct {
	Kind ChangeKind
	Path string
	Old  string
	New  string
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return c.Kind.String() + " " + c.Path + " = " + c.New
	case Removed:
		return c.Kind.String() + " " + c.Path + " = " + c.Old
	default:
		return c.Kind.String() + " " + c.Path + " = " + c.Old + " -> " + c.New
	}
}

// Diff compares two flattenings and returns the changes from a to b,
// ordered by path.
func Diff(a, b []Row) []Change {
	before := index(a)
	after := index(b)

	var changes []Change
	for path, old := range before {
		nv, ok := after[path]
		switch {
		case !ok:
			changes = append(changes, Change{Kind: Removed, Path: path, Old: old})
		case nv != old:
			changes = append(changes, Change{Kind: Changed, Path: path, Old: old, New: nv})
		}
	}
	for path, nv := range after {
		if _, ok := before[path]; !ok {
			changes = append(changes, Change{Kind: Added, Path: path, New: nv})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		return changes[i].Kind < changes[j].Kind
	})
	return changes
}

func index(rows []Row) map[string]string {
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.StringPath()] = r.Value
	}
	return out
}
