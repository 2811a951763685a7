package bitflags

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Slot is one optional integer of a composite string.
type Slot struct {
	Value int
	Set   bool
}

func SlotOf(n int) Slot {
	return Slot{Value: n, Set: true}
}

// Composite packs a fixed number of optional integers into one
// delimited string. Defaults, when given, holds the value written for
// each unset slot that precedes a set one; missing entries are zero.
type Composite struct {
	Names     []string
	Separator string
	Defaults  []int
}

// TooManySegmentsError is returned by Unpack when the text holds more
// segments than the composite declares. The leading segments are still
// assigned.
type TooManySegmentsError struct {
	Segments int
	Max      int
}

func (e *TooManySegmentsError) Error() string {
	return "composite value has " + strconv.Itoa(e.Segments) + " segments, at most " + strconv.Itoa(e.Max) + " allowed"
}

// Pack writes slots in order up to the last set one. Trailing unset
// slots are omitted; an unset slot before a set one is written as its
// default, so every written segment is a number.
func (c Composite) Pack(slots ...Slot) (string, bool) {
	last := -1
	for i, s := range slots {
		if s.Set {
			last = i
		}
	}
	if last < 0 {
		return "", false
	}
	parts := make([]string, last+1)
	for i := 0; i <= last; i++ {
		if slots[i].Set {
			parts[i] = strconv.Itoa(slots[i].Value)
		} else {
			parts[i] = strconv.Itoa(c.Default(i))
		}
	}
	return strings.Join(parts, c.Separator), true
}

// Default is the value Pack writes for slot i when it is unset.
func (c Composite) Default(i int) int {
	if i < len(c.Defaults) {
		return c.Defaults[i]
	}
	return 0
}

// Unpack splits text positionally. One to len(Names) segments are
// accepted. An empty segment leaves its slot unset.
func (c Composite) Unpack(text string) ([]Slot, error) {
	out := make([]Slot, len(c.Names))
	if text == "" {
		return out, nil
	}
	parts := strings.Split(text, c.Separator)
	for i, p := range parts {
		if i >= len(out) {
			break
		}
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return out, errors.Wrapf(err, "segment %s", c.Names[i])
		}
		out[i] = SlotOf(n)
	}
	if len(parts) > len(out) {
		return out, &TooManySegmentsError{Segments: len(parts), Max: len(out)}
	}
	return out, nil
}
