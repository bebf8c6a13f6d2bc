// Package atom implements interned-string handles: small, cheaply copyable,
// totally ordered values for which equality of text is equality of handles.
//
// A handle is a single 64-bit word. Strings from a build-time vocabulary
// resolve through a perfect-hash table (static), strings of at most seven
// bytes live entirely inside the word (inline), and everything else is
// deduplicated and reference-counted in a process-wide table (dynamic).
//
// Facts about Atom:
//
//   - Atom is 8 bytes
//   - For a given s, From(s) always dereferences back to s
//   - Two atoms with equal text are Equal, concurrently and at any time
//   - Dynamic atoms are reference-counted: copies must be made with Clone
//     and every handle must eventually be passed to Drop
//   - Static and inline atoms are plain values; Clone and Drop are free
//   - Ordering is byte-wise on the text
package atom

import (
	"strings"
	"unsafe"

	"atomcache/dynset"
	"atomcache/event"
	"atomcache/phfset"
	"atomcache/utils"
)

// StaticSet binds an atom type to one build-time vocabulary. Implementations
// are zero-size struct types (see webatoms, EmptySet); the engine serves any
// number of independently generated vocabularies.
type StaticSet interface {
	// Get returns the vocabulary's perfect-hash set. Must be constant for
	// the process lifetime.
	Get() *phfset.StrSet
	// EmptyIndex is the slot of the empty string, present in every set.
	EmptyIndex() uint32
}

// EmptySet is the vocabulary for callers that only intern dynamically. It
// still contains the empty string, so Default stays static.
type EmptySet struct{}

func (EmptySet) Get() *phfset.StrSet { return phfset.Empty }
func (EmptySet) EmptyIndex() uint32  { return 0 }

// DefaultAtom is an atom with no compiled-in vocabulary beyond "".
type DefaultAtom = Atom[EmptySet]

// Atom is an interned-string handle over the vocabulary S.
//
// The zero value is valid only as a placeholder: it owns nothing and may be
// Dropped or Cloned freely, but holds no text. Use Default for the empty
// string.
type Atom[S StaticSet] struct {
	data uint64
}

// Intern is shorthand for From over the empty vocabulary.
func Intern(s string) DefaultAtom { return From[EmptySet](s) }

// From interns s and returns its handle. Total over all inputs, any length.
// The string is hashed exactly once: the triple drives the static probe and,
// refolded, the dynamic table placement.
func From[S StaticSet](s string) Atom[S] {
	var set S
	ss := set.Get()
	h := phfset.Hash(ss.Key, s)

	var w uint64
	if i, ok := ss.Probe(h, s); ok {
		w = PackStatic(i)
	} else if len(s) <= MaxInlineLen {
		w = packInline(s)
	} else {
		h64 := uint64(h.G)<<32 | uint64(h.F1)
		w = packDynamic(dynset.Global().Insert(s, h64))
	}
	if event.Enabled() {
		event.Intern(w)
	}
	return Atom[S]{data: w}
}

// Static returns the atom for vocabulary index n without touching the intern
// path. For generated constants; n must be a real slot of S's table.
func Static[S StaticSet](n uint32) Atom[S] {
	return Atom[S]{data: PackStatic(n)}
}

// Default returns the empty-string atom, statically, with no hashing.
func Default[S StaticSet]() Atom[S] {
	var set S
	return Static[S](set.EmptyIndex())
}

// Clone returns a second handle to the same text. Dynamic atoms bump their
// entry's refcount; this needs no lock because the caller's own handle keeps
// the count at one or more, so the entry cannot be mid-removal.
func (a Atom[S]) Clone() Atom[S] {
	if e := entryOf(a.data); e != nil {
		e.Retain()
	}
	return a
}

// Drop releases the handle. The handle must not be used afterwards. The
// dropper that takes a dynamic entry's count to zero unlinks and frees it.
func (a Atom[S]) Drop() {
	if e := entryOf(a.data); e != nil {
		if e.Release() == 1 {
			dropSlow(e)
		}
	}
}

// Out of line to keep Drop's fast path lean.
//
//go:noinline
func dropSlow(e *dynset.Entry) {
	dynset.Global().Remove(e)
}

// String dereferences the handle in O(1).
func (a Atom[S]) String() string {
	switch a.data & tagMask {
	case inlineTag:
		var buf [8]byte
		*(*uint64)(unsafe.Pointer(&buf[0])) = a.data
		return string(buf[1 : 1+inlineLen(a.data)])
	case staticTag:
		var set S
		return set.Get().Atoms[a.data>>StaticShiftBits]
	default:
		if e := entryOf(a.data); e != nil {
			return e.String()
		}
		return ""
	}
}

// view is the alloc-free variant of String for comparisons: inline text is
// materialized into buf, which must outlive the returned string.
//
//go:nosplit
func (a Atom[S]) view(buf *[8]byte) string {
	switch a.data & tagMask {
	case inlineTag:
		*(*uint64)(unsafe.Pointer(&buf[0])) = a.data
		return unsafe.String(&buf[1], inlineLen(a.data))
	case staticTag:
		var set S
		return set.Get().Atoms[a.data>>StaticShiftBits]
	default:
		if e := entryOf(a.data); e != nil {
			return e.String()
		}
		return ""
	}
}

// Equal reports text equality. Identical words are equal by the determinism
// invariant; distinct words are unequal except for the one legal exception,
// two dynamic entries transiently duplicating the same string after an
// insert/remove race, which falls back to a content compare.
func (a Atom[S]) Equal(b Atom[S]) bool {
	if a.data == b.data {
		return true
	}
	ae, be := entryOf(a.data), entryOf(b.data)
	if ae != nil && be != nil {
		return ae.String() == be.String()
	}
	return false
}

// Compare orders atoms byte-wise by text, with the identical-word fast path.
func (a Atom[S]) Compare(b Atom[S]) int {
	if a.data == b.data {
		return 0
	}
	var ab, bb [8]byte
	return strings.Compare(a.view(&ab), b.view(&bb))
}

// Hash returns a 32-bit hash of the text without re-hashing its bytes:
// static atoms read the table's precomputed hash, dynamic atoms fold the
// hash stored on their entry, inline atoms fold the word itself (which
// contains every byte of the text).
func (a Atom[S]) Hash() uint32 {
	switch a.data & tagMask {
	case staticTag:
		var set S
		return set.Get().Hashes[a.data>>StaticShiftBits]
	case inlineTag:
		return phfset.Fold(utils.Mix64(a.data))
	default:
		if e := entryOf(a.data); e != nil {
			return phfset.Fold(e.Hash())
		}
		return 0
	}
}

// Kind classifies the representation. Diagnostics and tests only.
func (a Atom[S]) Kind() Kind { return KindOfWord(a.data) }

// Word exposes the packed representation. Diagnostics and tests only.
func (a Atom[S]) Word() uint64 { return a.data }

// Describe renders the text and representation kind, for diagnostics.
func (a Atom[S]) Describe() string {
	return "Atom('" + a.String() + "' type=" + a.Kind().String() + ")"
}

// ─────────────────────────────────────────────────────────────────────────────
// ASCII case transforms. Byte-wise; non-ASCII bytes pass through unchanged.
// ─────────────────────────────────────────────────────────────────────────────

// ToASCIIUppercase interns the ASCII-uppercased text. Returns a clone of the
// receiver when no byte needs mapping.
func (a Atom[S]) ToASCIIUppercase() Atom[S] {
	var vb [8]byte
	s := a.view(&vb)
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'a' <= c && c <= 'z' {
			return fromMutated[S](s, asciiUpper)
		}
	}
	return a.Clone()
}

// ToASCIILowercase interns the ASCII-lowercased text. Returns a clone of the
// receiver when no byte needs mapping.
func (a Atom[S]) ToASCIILowercase() Atom[S] {
	var vb [8]byte
	s := a.view(&vb)
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			return fromMutated[S](s, asciiLower)
		}
	}
	return a.Clone()
}

// EqualFold reports ASCII-case-insensitive text equality.
func (a Atom[S]) EqualFold(b Atom[S]) bool {
	if a.Equal(b) {
		return true
	}
	var bb [8]byte
	return a.EqualFoldString(b.view(&bb))
}

// EqualFoldString is EqualFold against an unhashed string.
func (a Atom[S]) EqualFoldString(s string) bool {
	var ab [8]byte
	t := a.view(&ab)
	if len(t) != len(s) {
		return false
	}
	for i := 0; i < len(t); i++ {
		ca, cb := t[i], s[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// fromMutated interns a mutated copy of s without heap traffic for short
// inputs. The dynamic table owns its own copy of the bytes, so handing it a
// stack-backed view is safe.
func fromMutated[S StaticSet](s string, mutate func([]byte)) Atom[S] {
	var buf [64]byte
	if len(s) <= len(buf) {
		b := buf[:len(s)]
		copy(b, s)
		mutate(b)
		return From[S](utils.B2s(b))
	}
	b := []byte(s)
	mutate(b)
	return From[S](utils.B2s(b))
}

func asciiUpper(b []byte) {
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
}

func asciiLower(b []byte) {
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
}
