// repr.go — packed 64-bit atom representation.
//
// One word encodes one of three variants, discriminated by the low two bits:
//
//	Dynamic  tag 0b00  the word is the address of a dynset.Entry (addresses
//	                   are at least 4-aligned, so the tag bits are free)
//	Inline   tag 0b01  length in bits [4:7], string bytes left-packed from
//	                   byte offset 1 of the word (little-endian layout)
//	Static   tag 0b10  vocabulary index in bits [32:63]
//
// The static layout (tag value and shift) is stable and relied upon by
// generated code; see cmd/atomgen.
package atom

import (
	"unsafe"

	"atomcache/dynset"
)

const (
	dynamicTag = 0b00
	inlineTag  = 0b01
	staticTag  = 0b10
	tagMask    = 0b11

	// MaxInlineLen is the longest string an inline atom can hold.
	MaxInlineLen = 7

	// StaticShiftBits positions the vocabulary index inside a static word.
	// Documented as stable for externally generated constant atoms.
	StaticShiftBits = 32
)

// The inline byte window is addressed little-endian; see endian_le.go.
var _ = littleEndianOnly

// Kind classifies an atom's representation. Diagnostics and tests only; the
// public contract is representation-blind.
type Kind uint8

const (
	KindDynamic Kind = iota
	KindInline
	KindStatic
)

func (k Kind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindInline:
		return "inline"
	case KindStatic:
		return "static"
	}
	return "invalid"
}

// KindOfWord classifies a packed word. Panics on the impossible fourth tag.
func KindOfWord(w uint64) Kind {
	switch w & tagMask {
	case dynamicTag:
		return KindDynamic
	case inlineTag:
		return KindInline
	case staticTag:
		return KindStatic
	}
	panic("atom: impossible tag")
}

// PackStatic builds the packed word for vocabulary index n. Exposed for
// generated constant atoms; everything else goes through From.
func PackStatic(n uint32) uint64 {
	return staticTag | uint64(n)<<StaticShiftBits
}

//go:nosplit
//go:inline
func packInline(s string) uint64 {
	var buf [8]byte
	buf[0] = inlineTag | byte(len(s))<<4
	copy(buf[1:], s)
	return *(*uint64)(unsafe.Pointer(&buf[0]))
}

func packDynamic(e *dynset.Entry) uint64 {
	w := uint64(uintptr(unsafe.Pointer(e)))
	if w&tagMask != 0 {
		panic("atom: intern entry address carries tag bits")
	}
	return w
}

//go:nosplit
//go:inline
func inlineLen(w uint64) int { return int(w >> 4 & 0xf) }

// entryOf is the fast path used by Clone and Drop: the entry address if w is
// a non-zero dynamic word, else nil. The zero word is the moved-out/zero
// value and owns nothing.
//
//go:nosplit
//go:inline
func entryOf(w uint64) *dynset.Entry {
	if w&tagMask == dynamicTag && w != 0 {
		return (*dynset.Entry)(unsafe.Pointer(uintptr(w)))
	}
	return nil
}
