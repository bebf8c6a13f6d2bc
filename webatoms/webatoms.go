// Package webatoms ships a static vocabulary of common markup names. The
// perfect-hash table is built once at package init from the word list below;
// consumers that want literal baked tables instead can regenerate this
// package with cmd/atomgen.
package webatoms

import (
	"atomcache/atom"
	"atomcache/phfgen"
	"atomcache/phfset"
)

// The vocabulary. Must be duplicate-free; phfgen rejects duplicates and
// force-inserts the empty string.
var words = []string{
	"",
	"a", "address", "area", "article",
	"b", "base", "body", "br", "button",
	"class", "data", "div", "em", "form",
	"head", "height", "href", "html",
	"id", "img", "input",
	"li", "link", "meta", "name", "new",
	"p", "rel", "script", "span", "src", "style",
	"table", "td", "title", "tr", "type",
	"ul", "width", "z",
}

var (
	set        *phfset.StrSet
	emptyIndex uint32
)

// Set binds the web vocabulary to the atom engine.
type Set struct{}

func (Set) Get() *phfset.StrSet { return set }
func (Set) EmptyIndex() uint32  { return emptyIndex }

// Atom is an interned string over the web vocabulary.
type Atom = atom.Atom[Set]

// From interns s against the web vocabulary.
func From(s string) Atom { return atom.From[Set](s) }

// Default is the empty-string atom.
func Default() Atom { return atom.Default[Set]() }

// Frequently matched atoms, resolved once here. All static: no refcounts.
var (
	Body  Atom
	Class Atom
	Div   Atom
	Href  Atom
	ID    Atom
	Src   Atom
)

func init() {
	set, emptyIndex = phfgen.MustBuildSet(words)
	Body = From("body")
	Class = From("class")
	Div = From("div")
	Href = From("href")
	ID = From("id")
	Src = From("src")
}
