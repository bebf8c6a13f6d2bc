// Package phfgen constructs the perfect-hash tables phfset probes. The
// algorithm is CHD (hash, displace and compress): keys are grouped into small
// buckets by G, buckets are assigned displacement pairs largest-first until
// every key claims a distinct slot. Output is deterministic for a given input
// set, so generated tables are reproducible across builds.
package phfgen

import (
	"errors"
	"sort"
	"strconv"

	"atomcache/phfset"
	"atomcache/utils"
)

const (
	// lambda keys per displacement bucket; table size equals the key count.
	lambda = 5

	// fixedSeed anchors the deterministic key search.
	fixedSeed = 0x499602d2

	maxAttempts = 64
)

// State is a generated table before string layout: Key is the hash key the
// search settled on, Disps the displacement pairs, Map the slot-to-input-index
// assignment (every slot is filled).
type State struct {
	Key   uint64
	Disps [][2]uint32
	Map   []uint32
}

// Generate searches for a perfect-hash assignment over words. Duplicate or
// empty inputs are build-time errors, not runtime conditions.
func Generate(words []string) (State, error) {
	if len(words) == 0 {
		return State{}, errors.New("phfgen: empty key set")
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			return State{}, errors.New("phfgen: duplicate key " + strconv.Quote(w))
		}
		seen[w] = struct{}{}
	}
	for attempt := uint64(0); attempt < maxAttempts; attempt++ {
		key := utils.Mix64(fixedSeed + attempt)
		if st, ok := try(words, key); ok {
			return st, nil
		}
	}
	return State{}, errors.New("phfgen: no displacement assignment found")
}

// MustGenerate is Generate for init-time vocabularies.
func MustGenerate(words []string) State {
	st, err := Generate(words)
	if err != nil {
		panic(err)
	}
	return st
}

type bucket struct {
	idx  uint32
	keys []uint32
}

// try attempts one full assignment under a candidate hash key.
func try(words []string, key uint64) (State, bool) {
	n := uint32(len(words))
	hashes := make([]phfset.Hashes, n)
	nb := (n + lambda - 1) / lambda
	buckets := make([]bucket, nb)
	for i := range buckets {
		buckets[i].idx = uint32(i)
	}
	for i, w := range words {
		h := phfset.Hash(key, w)
		hashes[i] = h
		b := h.G % nb
		buckets[b].keys = append(buckets[b].keys, uint32(i))
	}

	// Largest buckets are hardest to place; settle them first.
	sort.Slice(buckets, func(i, j int) bool {
		return len(buckets[i].keys) > len(buckets[j].keys)
	})

	disps := make([][2]uint32, nb)
	slots := make([]int32, n) // slot -> input index, -1 = free
	for i := range slots {
		slots[i] = -1
	}
	// Generation-stamped claim table detects intra-bucket collisions without
	// clearing between displacement candidates.
	claimed := make([]uint64, n)
	gen := uint64(0)
	type pending struct{ slot, ki uint32 }
	add := make([]pending, 0, lambda)

	for _, b := range buckets {
		if len(b.keys) == 0 {
			continue
		}
		found := false
	search:
		for d1 := uint32(0); d1 < n; d1++ {
			for d2 := uint32(0); d2 < n; d2++ {
				gen++
				add = add[:0]
				ok := true
				for _, ki := range b.keys {
					h := hashes[ki]
					slot := phfset.Displace(h.F1, h.F2, d1, d2) % n
					if slots[slot] >= 0 || claimed[slot] == gen {
						ok = false
						break
					}
					claimed[slot] = gen
					add = append(add, pending{slot, ki})
				}
				if ok {
					disps[b.idx] = [2]uint32{d1, d2}
					for _, p := range add {
						slots[p.slot] = int32(p.ki)
					}
					found = true
					break search
				}
			}
		}
		if !found {
			return State{}, false
		}
	}

	out := State{Key: key, Disps: disps, Map: make([]uint32, n)}
	for slot, ki := range slots {
		out.Map[slot] = uint32(ki)
	}
	return out, true
}

// BuildSet generates a ready-to-probe StrSet. The empty string is inserted if
// absent (every set carries it so the default atom is static); the second
// return is its slot index. Duplicate inputs surface as an error.
func BuildSet(words []string) (*phfset.StrSet, uint32, error) {
	hasEmpty := false
	for _, w := range words {
		if w == "" {
			hasEmpty = true
			break
		}
	}
	if !hasEmpty {
		dup := make([]string, 0, len(words)+1)
		dup = append(dup, words...)
		words = append(dup, "")
	}

	st, err := Generate(words)
	if err != nil {
		return nil, 0, err
	}

	n := len(words)
	atoms := make([]string, n)
	hashes := make([]uint32, n)
	emptyIdx := uint32(0)
	for slot, ki := range st.Map {
		w := words[ki]
		atoms[slot] = w
		hashes[slot] = phfset.Fold(phfset.Hash64(st.Key, w))
		if w == "" {
			emptyIdx = uint32(slot)
		}
	}
	return &phfset.StrSet{
		Key:    st.Key,
		Disps:  st.Disps,
		Atoms:  atoms,
		Hashes: hashes,
	}, emptyIdx, nil
}

// MustBuildSet is BuildSet for init-time vocabularies.
func MustBuildSet(words []string) (*phfset.StrSet, uint32) {
	set, emptyIdx, err := BuildSet(words)
	if err != nil {
		panic(err)
	}
	return set, emptyIdx
}
