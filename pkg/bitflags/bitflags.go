// Package bitflags maps named tri-state attributes onto packed integer
// words and back. A Layout is a list of Ranges, each a span of the
// word reserved for one category of bits. Every packed column in the
// extensions is described by a Layout, so there is a single packing
// and unpacking routine for all of them.
package bitflags

import (
	"fmt"
	"math/bits"
)

// State is the authored state of one named bit.
type State int

const (
	Unset State = iota
	Off
	On
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Off:
		return "no"
	case On:
		return "yes"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Bit names one mask. An inverted bit is set in the word when its
// attribute is authored as "no".
type Bit struct {
	Name     string
	Mask     uint32
	Inverted bool
}

func Flag(name string, mask uint32) Bit {
	return Bit{Name: name, Mask: mask}
}

func Inverted(name string, mask uint32) Bit {
	return Bit{Name: name, Mask: mask, Inverted: true}
}

// Range is a contiguous span of the word. Bits outside Mask may not be
// declared in it.
type Range struct {
	Name string
	Mask uint32
	Bits []Bit
}

// Span builds a range covering bits first..last, naming them in order
// starting at first. An empty name leaves that position unnamed.
func Span(name string, first, last uint, names ...string) Range {
	if first > last || last > 31 {
		panic(fmt.Sprintf("bitflags: bad span %d..%d for %s", first, last, name))
	}
	if uint(len(names)) > last-first+1 {
		panic(fmt.Sprintf("bitflags: %d names do not fit in %s", len(names), name))
	}
	r := Range{Name: name}
	for i := first; i <= last; i++ {
		r.Mask |= 1 << i
	}
	for i, n := range names {
		if n == "" {
			continue
		}
		r.Bits = append(r.Bits, Flag(n, 1<<(first+uint(i))))
	}
	return r
}

// Layout is the complete description of a packed word.
type Layout struct {
	Name   string
	Ranges []Range
}

// NewLayout checks that ranges do not overlap, that every bit sits in
// its range and that names are unique.
func NewLayout(name string, ranges ...Range) Layout {
	var seen uint32
	names := make(map[string]bool)
	for _, r := range ranges {
		if seen&r.Mask != 0 {
			panic(fmt.Sprintf("bitflags: %s range %s overlaps", name, r.Name))
		}
		seen |= r.Mask
		for _, b := range r.Bits {
			if b.Mask&^r.Mask != 0 || bits.OnesCount32(b.Mask) == 0 {
				panic(fmt.Sprintf("bitflags: %s bit %s outside range %s", name, b.Name, r.Name))
			}
			if names[b.Name] {
				panic(fmt.Sprintf("bitflags: %s declares %s twice", name, b.Name))
			}
			names[b.Name] = true
		}
	}
	return Layout{Name: name, Ranges: ranges}
}

// Flags is a layout with a single range made of explicit masks.
func Flags(name string, bs ...Bit) Layout {
	r := Range{Name: name, Bits: bs}
	for _, b := range bs {
		r.Mask |= b.Mask
	}
	return NewLayout(name, r)
}

// Bits returns every named bit in declaration order.
func (l Layout) Bits() []Bit {
	var out []Bit
	for _, r := range l.Ranges {
		out = append(out, r.Bits...)
	}
	return out
}

func (l Layout) Names() []string {
	var out []string
	for _, b := range l.Bits() {
		out = append(out, b.Name)
	}
	return out
}

func (l Layout) Bit(name string) (Bit, bool) {
	for _, b := range l.Bits() {
		if b.Name == name {
			return b, true
		}
	}
	return Bit{}, false
}

// Known is the union of every named mask.
func (l Layout) Known() uint32 {
	var m uint32
	for _, b := range l.Bits() {
		m |= b.Mask
	}
	return m
}

// Values holds the authored state of named bits. Missing names are
// Unset.
type Values map[string]State

// Authored reports whether any bit was written as yes or no.
func (v Values) Authored() bool {
	for _, s := range v {
		if s != Unset {
			return true
		}
	}
	return false
}

// Authored reports whether any bit of the layout was written as yes
// or no. Packed columns that are null unless authored check this.
func (l Layout) Authored(v Values) bool {
	for _, b := range l.Bits() {
		if v[b.Name] != Unset {
			return true
		}
	}
	return false
}

// Pack folds named states into a word. Names the layout does not
// declare are ignored.
func Pack(l Layout, v Values) uint32 {
	var word uint32
	for _, b := range l.Bits() {
		switch v[b.Name] {
		case On:
			if !b.Inverted {
				word |= b.Mask
			}
		case Off:
			if b.Inverted {
				word |= b.Mask
			}
		}
	}
	return word
}

// Unpack splits a word into named states. A set bit unpacks as On,
// or Off for inverted bits; clear bits stay Unset. Bits no name covers
// are returned in unknown rather than dropped.
func Unpack(l Layout, word uint32) (v Values, unknown uint32) {
	v = make(Values)
	for _, b := range l.Bits() {
		if word&b.Mask != b.Mask {
			continue
		}
		if b.Inverted {
			v[b.Name] = Off
		} else {
			v[b.Name] = On
		}
	}
	return v, word &^ l.Known()
}
