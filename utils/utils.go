package utils

import (
	"os"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b views the bytes of a string **without** allocation.
// ⚠️ The returned slice must never be written to.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Fast Loaders — Unaligned 64-Bit Reads
///////////////////////////////////////////////////////////////////////////////

// Load64 reads an unaligned little-endian 64-bit word from a byte slice.
//
//go:nosplit
//go:inline
func Load64(b []byte) uint64 { return *(*uint64)(unsafe.Pointer(&b[0])) }

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to decorrelate word-level hash inputs before bucket masking.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

///////////////////////////////////////////////////////////////////////////////
// Misc — alloc-light formatting & output for cold paths
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a non-negative integer without pulling in fmt.
func Itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// PrintWarning writes a message straight to stderr. No formatting, no heap
// pressure beyond the concatenation done by the caller.
func PrintWarning(msg string) {
	os.Stderr.WriteString(msg)
}
