// Perfectness, determinism and input validation for the CHD generator.
package phfgen

import (
	"encoding/hex"
	"reflect"
	"testing"

	"atomcache/phfset"

	"golang.org/x/crypto/sha3"
)

var sample = []string{
	"", "a", "address", "area", "body", "class", "div", "href", "html",
	"id", "span", "src", "style", "table", "width", "z",
}

func TestBuildSetIsPerfect(t *testing.T) {
	set, _, err := BuildSet(sample)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != len(sample) {
		t.Fatalf("set len %d, want %d", set.Len(), len(sample))
	}
	seen := make(map[uint32]bool)
	for _, w := range sample {
		h := phfset.Hash(set.Key, w)
		i, ok := set.Probe(h, w)
		if !ok {
			t.Fatalf("vocabulary word %q not found", w)
		}
		if seen[i] {
			t.Fatalf("slot %d assigned twice", i)
		}
		seen[i] = true
		if set.Atoms[i] != w {
			t.Fatalf("slot %d holds %q, want %q", i, set.Atoms[i], w)
		}
		if want := phfset.Fold(phfset.Hash64(set.Key, w)); set.Hashes[i] != want {
			t.Fatalf("slot %d hash mismatch", i)
		}
	}
}

func TestProbeMisses(t *testing.T) {
	set, _, err := BuildSet(sample)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []string{"blah", "zzzzzzzz", "Address", "not-in-vocabulary"} {
		if _, ok := set.Probe(phfset.Hash(set.Key, w), w); ok {
			t.Fatalf("%q should miss", w)
		}
	}
}

func TestDeterministicGeneration(t *testing.T) {
	a, ai, err := BuildSet(sample)
	if err != nil {
		t.Fatal(err)
	}
	b, bi, err := BuildSet(sample)
	if err != nil {
		t.Fatal(err)
	}
	if ai != bi || a.Key != b.Key ||
		!reflect.DeepEqual(a.Disps, b.Disps) ||
		!reflect.DeepEqual(a.Atoms, b.Atoms) ||
		!reflect.DeepEqual(a.Hashes, b.Hashes) {
		t.Fatal("generation is not reproducible")
	}
}

func TestEmptyStringInserted(t *testing.T) {
	set, emptyIdx, err := BuildSet([]string{"alpha", "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 {
		t.Fatalf("set len %d, want 3 with empty string inserted", set.Len())
	}
	if set.Atoms[emptyIdx] != "" {
		t.Fatalf("emptyIdx %d holds %q", emptyIdx, set.Atoms[emptyIdx])
	}
	if _, ok := set.Probe(phfset.Hash(set.Key, ""), ""); !ok {
		t.Fatal("empty string not probeable")
	}
}

func TestDuplicateKeysRejected(t *testing.T) {
	if _, err := Generate([]string{"dup", "other", "dup"}); err == nil {
		t.Fatal("duplicate keys must be rejected")
	}
	if _, _, err := BuildSet([]string{"dup", "dup"}); err == nil {
		t.Fatal("duplicate keys must be rejected by BuildSet")
	}
}

func TestEmptyInputRejected(t *testing.T) {
	if _, err := Generate(nil); err == nil {
		t.Fatal("empty key set must be rejected")
	}
}

func TestLargeVocabulary(t *testing.T) {
	words := make([]string, 500)
	for i := range words {
		h := sha3.Sum256([]byte{byte(i), byte(i >> 8)})
		words[i] = hex.EncodeToString(h[:(i%24)+8])
	}
	set, _, err := BuildSet(words)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[uint32]bool)
	for _, w := range words {
		i, ok := set.Probe(phfset.Hash(set.Key, w), w)
		if !ok {
			t.Fatalf("word %q not found", w)
		}
		if seen[i] {
			t.Fatalf("slot %d assigned twice", i)
		}
		seen[i] = true
	}
}
