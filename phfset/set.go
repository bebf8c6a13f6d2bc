// Package phfset holds the read-only perfect-hash string set consumed by the
// interning engine, plus the keyed hash shared by the set probe and the
// dynamic intern table. Sets are produced offline (see phfgen and cmd/atomgen)
// and never mutated at runtime.
package phfset

import (
	"math/bits"

	"atomcache/utils"
)

// -----------------------------------------------------------------------------
// Keyed hash (xxHash-style mix, branch-cheap, alloc-free)
// -----------------------------------------------------------------------------

const (
	prime64_1 = 0x9E3779B185EBCA87
	prime64_2 = 0xC2B2AE3D27D4EB4F
)

// Hashes is the hash triple driving the CHD probe: G selects the displacement
// pair, F1/F2 feed Displace. The same triple, refolded, keys the dynamic
// intern table so a string is hashed exactly once per intern.
type Hashes struct {
	G  uint32
	F1 uint32
	F2 uint32
}

// Hash64 mixes a string under a set key into a 64-bit value.
//
//go:nosplit
func Hash64(key uint64, s string) uint64 {
	h := key ^ (uint64(len(s))+1)*prime64_1
	b := utils.S2b(s)
	for len(b) >= 8 {
		h ^= bits.RotateLeft64(utils.Load64(b)*prime64_2, 31)
		h = bits.RotateLeft64(h, 27) * prime64_1
		b = b[8:]
	}
	if len(b) > 0 {
		var t uint64
		for i := len(b) - 1; i >= 0; i-- {
			t = t<<8 | uint64(b[i])
		}
		h ^= bits.RotateLeft64(t*prime64_2, 11)
		h = bits.RotateLeft64(h, 7) * prime64_1
	}
	h ^= h >> 33
	h *= prime64_2
	h ^= h >> 29
	h *= prime64_1
	h ^= h >> 32
	return h
}

// Hash derives the probe triple for s under key.
func Hash(key uint64, s string) Hashes {
	h1 := Hash64(key, s)
	h2 := utils.Mix64(h1 ^ key)
	return Hashes{G: uint32(h1), F1: uint32(h1 >> 32), F2: uint32(h2)}
}

// Fold reduces a 64-bit hash to the 32-bit form stored per atom.
func Fold(h uint64) uint32 {
	return uint32(h>>32) ^ uint32(h)
}

// Displace computes the CHD slot candidate for a key under a displacement
// pair. Generation and probing must agree on this formula exactly.
func Displace(f1, f2, d1, d2 uint32) uint32 {
	return d2 + f1*d1 + f2
}

// -----------------------------------------------------------------------------
// Set layout
// -----------------------------------------------------------------------------

// StrSet is a perfect-hash set over a fixed vocabulary. Atoms holds the
// strings in final slot order, Hashes their precomputed 32-bit hashes
// (parallel to Atoms), Disps the CHD displacement pairs, Key the hash key the
// table was generated under.
type StrSet struct {
	Key    uint64
	Disps  [][2]uint32
	Atoms  []string
	Hashes []uint32
}

// Len reports the vocabulary size.
func (s *StrSet) Len() int { return len(s.Atoms) }

// Index maps a hash triple to its candidate slot. The slot holds the probed
// string iff the string is in the vocabulary; callers must compare.
func (s *StrSet) Index(h Hashes) uint32 {
	d := s.Disps[h.G%uint32(len(s.Disps))]
	return Displace(h.F1, h.F2, d[0], d[1]) % uint32(len(s.Atoms))
}

// Probe performs an exact-match lookup: the candidate slot plus one string
// compare. Reports the slot index and whether str is in the set.
func (s *StrSet) Probe(h Hashes, str string) (uint32, bool) {
	i := s.Index(h)
	if s.Atoms[i] == str {
		return i, true
	}
	return 0, false
}

// Empty is the minimal set: it contains only the empty string, which every
// set carries so the default atom resolves statically with no runtime hashing.
var Empty = &StrSet{
	Key:    0,
	Disps:  [][2]uint32{{0, 0}},
	Atoms:  []string{""},
	Hashes: []uint32{0},
}

func init() {
	Empty.Hashes[0] = Fold(Hash64(Empty.Key, ""))
}
