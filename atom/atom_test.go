// Package atom_test validates the interning engine end to end: round-trips,
// representation classification, equality/ordering across variants, refcount
// lifecycle, and the ASCII transforms.
package atom_test

import (
	"sort"
	"testing"

	"atomcache/atom"
	"atomcache/dynset"
	"atomcache/webatoms"
)

// -----------------------------------------------------------------------------
// ░░ Round-Trip ░░
// -----------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"", "a", "class", "blah", "BLAH", "zzzzzzzz", "zzzzzzzzzz", "ZZZZZZZZZZ",
		"The Quick Brown Fox!", "naïve-ütf8-bytes-pass-through",
	} {
		a := webatoms.From(s)
		if got := a.String(); got != s {
			t.Fatalf("From(%q).String() = %q", s, got)
		}
		a.Drop()
	}
}

func TestRoundTripDefaultSet(t *testing.T) {
	for _, s := range []string{"", "x", "1234567", "12345678", "a much longer dynamic string"} {
		a := atom.Intern(s)
		if got := a.String(); got != s {
			t.Fatalf("Intern(%q).String() = %q", s, got)
		}
		a.Drop()
	}
}

// -----------------------------------------------------------------------------
// ░░ Representation Classification ░░
// -----------------------------------------------------------------------------

func TestKinds(t *testing.T) {
	cases := []struct {
		s    string
		kind atom.Kind
	}{
		{"", atom.KindStatic},
		{"a", atom.KindStatic},
		{"address", atom.KindStatic},
		{"id", atom.KindStatic},
		{"body", atom.KindStatic},
		{"c", atom.KindInline}, // "z" is in the vocabulary, "c" is not
		{"zz", atom.KindInline},
		{"zzzzzzz", atom.KindInline},
		{"blah", atom.KindInline},
		{"zzzzzzzz", atom.KindDynamic},
		{"zzzzzzzzzzzzz", atom.KindDynamic},
	}
	for _, c := range cases {
		a := webatoms.From(c.s)
		if a.Kind() != c.kind {
			t.Fatalf("From(%q).Kind() = %v, want %v", c.s, a.Kind(), c.kind)
		}
		a.Drop()
	}
}

func TestEmptyVocabularyHasOnlyEmptyString(t *testing.T) {
	if k := atom.Intern("").Kind(); k != atom.KindStatic {
		t.Fatalf(`Intern("").Kind() = %v, want static`, k)
	}
	a := atom.Intern("body") // static under webatoms, inline here
	if a.Kind() != atom.KindInline {
		t.Fatalf(`Intern("body").Kind() = %v, want inline`, a.Kind())
	}
	a.Drop()
}

// -----------------------------------------------------------------------------
// ░░ Packed Word Layout ░░
// -----------------------------------------------------------------------------

// Guards the documented representation: inline words are byte-exact, static
// words follow tag|index<<32, dynamic words carry no tag bits.
func TestWordLayout(t *testing.T) {
	checkInline := func(s string, want uint64) {
		a := atom.Intern(s)
		defer a.Drop()
		if a.Word() != want {
			t.Fatalf("Intern(%q).Word() = %#016x, want %#016x", s, a.Word(), want)
		}
	}
	checkInline("e", 0x0000_0000_0000_6511)
	checkInline("xyzzy", 0x0000_797A_7A79_7851)
	checkInline("xyzzy01", 0x3130_797A_7A79_7871)

	s := webatoms.From("address")
	if s.Kind() != atom.KindStatic {
		t.Fatal("address should be static")
	}
	idx := uint32(s.Word() >> atom.StaticShiftBits)
	if s.Word() != atom.PackStatic(idx) {
		t.Fatalf("static word %#x does not match PackStatic(%d)", s.Word(), idx)
	}
	if !atom.Static[webatoms.Set](idx).Equal(s) {
		t.Fatal("Static constructor disagrees with From")
	}

	d := atom.Intern("a dynamic string")
	if d.Word()&0b11 != 0 {
		t.Fatalf("dynamic word %#x carries tag bits", d.Word())
	}
	d.Drop()
}

// -----------------------------------------------------------------------------
// ░░ Equality ░░
// -----------------------------------------------------------------------------

func TestEquality(t *testing.T) {
	s0, s1, s2 := webatoms.From("id"), webatoms.From("id"), webatoms.From("class")
	i0, i1, i2 := webatoms.From("blah"), webatoms.From("blah"), webatoms.From("blah2")
	d0, d1, d2 := webatoms.From("zzzzzzzz"), webatoms.From("zzzzzzzz"), webatoms.From("zzzzzzzzz")
	defer func() {
		for _, a := range []webatoms.Atom{s0, s1, s2, i0, i1, i2, d0, d1, d2} {
			a.Drop()
		}
	}()

	if !s0.Equal(s1) || s0.Equal(s2) {
		t.Fatal("static equality broken")
	}
	if !i0.Equal(i1) || i0.Equal(i2) {
		t.Fatal("inline equality broken")
	}
	if !d0.Equal(d1) || d0.Equal(d2) {
		t.Fatal("dynamic equality broken")
	}
	if s0.Equal(i0) || s0.Equal(d0) || i0.Equal(d0) {
		t.Fatal("cross-kind equality broken")
	}
	if d0.Word() != d1.Word() {
		t.Fatal("live dynamic dedup should yield identical words")
	}
}

func TestDeterminism(t *testing.T) {
	for _, s := range []string{"id", "blah", "a dynamic string that lives a while"} {
		a := webatoms.From(s)
		b := webatoms.From(s)
		if a.Word() != b.Word() {
			t.Fatalf("From(%q) twice: words %#x != %#x", s, a.Word(), b.Word())
		}
		a.Drop()
		b.Drop()
	}
}

// -----------------------------------------------------------------------------
// ░░ Clone / Drop Lifecycle ░░
// -----------------------------------------------------------------------------

func TestClone(t *testing.T) {
	d0 := webatoms.From("a cloneable dynamic string")
	d1 := d0.Clone()
	if !d0.Equal(d1) || d0.Word() != d1.Word() {
		t.Fatal("clone should be the same handle value")
	}
	d0.Drop()
	if got := d1.String(); got != "a cloneable dynamic string" {
		t.Fatalf("entry died under a live clone: %q", got)
	}
	d1.Drop()
}

func TestRefcountReclaim(t *testing.T) {
	base := dynset.Global().Len()

	a := atom.Intern("refcount-reclaim-test-string")
	clones := make([]atom.DefaultAtom, 8)
	for i := range clones {
		clones[i] = a.Clone()
	}
	if dynset.Global().Len() != base+1 {
		t.Fatalf("expected one new entry, table grew by %d", dynset.Global().Len()-base)
	}
	for _, c := range clones {
		c.Drop()
	}
	a.Drop()
	if got := dynset.Global().Len(); got != base {
		t.Fatalf("entry leaked: table len %d, want %d", got, base)
	}

	// A fresh intern after full release is a fresh entry with its own count.
	b := atom.Intern("refcount-reclaim-test-string")
	if dynset.Global().Len() != base+1 {
		t.Fatal("re-intern after reclaim did not allocate")
	}
	b.Drop()
}

// -----------------------------------------------------------------------------
// ░░ Ordering ░░
// -----------------------------------------------------------------------------

func TestOrdering(t *testing.T) {
	check := func(x, y string) {
		ax, ay := webatoms.From(x), webatoms.From(y)
		defer ax.Drop()
		defer ay.Drop()
		want := 0
		if x < y {
			want = -1
		} else if x > y {
			want = 1
		}
		if got := ax.Compare(ay); got != want {
			t.Fatalf("Compare(%q, %q) = %d, want %d", x, y, got, want)
		}
	}
	check("a", "body")
	check("asdf", "body")
	check("zasdf", "body")
	check("z", "body")
	check("a", "bbbbb")
	check("asdf", "bbbbb")
	check("zasdf", "bbbbb")
	check("z", "bbbbb")
	check("same-string-either-side", "same-string-either-side")
}

func TestSortAtoms(t *testing.T) {
	words := []string{"zzzzzzzzzz", "id", "blah", "", "a", "mmmmmmmmmm"}
	atoms := make([]webatoms.Atom, len(words))
	for i, w := range words {
		atoms[i] = webatoms.From(w)
	}
	sort.Slice(atoms, func(i, j int) bool { return atoms[i].Compare(atoms[j]) < 0 })
	sort.Strings(words)
	for i := range words {
		if atoms[i].String() != words[i] {
			t.Fatalf("slot %d: %q, want %q", i, atoms[i].String(), words[i])
		}
		atoms[i].Drop()
	}
}

// -----------------------------------------------------------------------------
// ░░ Hashing ░░
// -----------------------------------------------------------------------------

func TestHashStableAcrossKinds(t *testing.T) {
	for _, s := range []string{"", "id", "blah", "a dynamic string"} {
		a, b := webatoms.From(s), webatoms.From(s)
		if a.Hash() != b.Hash() {
			t.Fatalf("Hash(%q) unstable", s)
		}
		a.Drop()
		b.Drop()
	}
}

// -----------------------------------------------------------------------------
// ░░ Defaults & Diagnostics ░░
// -----------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	d := webatoms.Default()
	if d.Kind() != atom.KindStatic || d.String() != "" {
		t.Fatalf("Default() = %s", d.Describe())
	}
	if !d.Equal(webatoms.From("")) {
		t.Fatal("Default() != From(\"\")")
	}
	var zero atom.DefaultAtom
	zero.Drop() // zero value owns nothing; must be a no-op
	zero.Clone().Drop()
}

func TestDescribe(t *testing.T) {
	a := webatoms.From("blah")
	if got := a.Describe(); got != "Atom('blah' type=inline)" {
		t.Fatalf("Describe() = %q", got)
	}
	a.Drop()
}

// -----------------------------------------------------------------------------
// ░░ ASCII Case Transforms ░░
// -----------------------------------------------------------------------------

func TestASCIICase(t *testing.T) {
	up := webatoms.From("The Quick Brown Fox!").ToASCIIUppercase()
	want := webatoms.From("THE QUICK BROWN FOX!")
	if !up.Equal(want) {
		t.Fatalf("uppercase: got %q", up.String())
	}
	up.Drop()
	want.Drop()

	lo := webatoms.From("The Quick Brown Fox!").ToASCIILowercase()
	if lo.String() != "the quick brown fox!" {
		t.Fatalf("lowercase: got %q", lo.String())
	}
	lo.Drop()

	// Non-ASCII bytes pass through untouched.
	mixed := webatoms.From("żÓŁĆ Abc")
	keep := mixed.ToASCIIUppercase()
	if keep.String() != "żÓŁĆ ABC" {
		t.Fatalf("non-ascii bytes mutated: %q", keep.String())
	}
	mixed.Drop()
	keep.Drop()

	// Already-cased input takes the clone fast path.
	id := webatoms.From("id")
	lower := id.ToASCIILowercase()
	if lower.Word() != id.Word() {
		t.Fatal("no-op transform should clone")
	}
}

func TestEqualFold(t *testing.T) {
	a := webatoms.From("MiXeD Case String")
	b := webatoms.From("mixed case string")
	if !a.EqualFold(b) {
		t.Fatal("EqualFold should match across ASCII case")
	}
	if !a.EqualFoldString("MIXED CASE STRING") {
		t.Fatal("EqualFoldString should match")
	}
	if a.EqualFoldString("mixed case strinh") {
		t.Fatal("EqualFoldString matched different text")
	}
	c := webatoms.From("żół")
	if c.EqualFoldString("ŻÓŁ") {
		t.Fatal("folding must stay ASCII-only")
	}
	a.Drop()
	b.Drop()
	c.Drop()
}
