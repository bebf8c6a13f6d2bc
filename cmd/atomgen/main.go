// atomgen — vocabulary → generated static-set source.
//
// Reads a vocabulary (a JSON string array for .json inputs, otherwise one
// word per line), builds its perfect-hash table, and emits a Go source file
// binding the table to the atom engine. Duplicate words are a fatal error.
// A SHA3-256 digest of the emitted tables is printed so CI can assert that
// generation is reproducible.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"os"
	"strconv"
	"strings"

	"atomcache/debug"
	"atomcache/phfgen"
	"atomcache/phfset"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"
)

func main() {
	in := flag.String("in", "", "vocabulary file (.json string array, else newline-delimited)")
	out := flag.String("out", "", "output .go file (default stdout)")
	pkg := flag.String("pkg", "atoms", "package name for the generated file")
	typ := flag.String("type", "Set", "static-set type name")
	flag.Parse()

	if *in == "" {
		debug.DropMessage("ATOMGEN", "missing -in vocabulary file")
		os.Exit(2)
	}

	words, err := readWords(*in)
	if err != nil {
		debug.DropError("ATOMGEN", err)
		os.Exit(1)
	}

	set, emptyIdx, err := phfgen.BuildSet(words)
	if err != nil {
		debug.DropError("ATOMGEN", err)
		os.Exit(1)
	}

	src := emit(*pkg, *typ, set, emptyIdx)

	digest := sha3.Sum256(tableBytes(set))
	debug.DropMessage("ATOMGEN", strconv.Itoa(set.Len())+" atoms, table sha3-256 "+hex.EncodeToString(digest[:]))

	if *out == "" {
		os.Stdout.WriteString(src)
		return
	}
	if err := os.WriteFile(*out, []byte(src), 0o644); err != nil {
		debug.DropError("ATOMGEN", err)
		os.Exit(1)
	}
}

func readWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".json") {
		var words []string
		if err := sonnet.Unmarshal(data, &words); err != nil {
			return nil, err
		}
		return words, nil
	}
	// Newline format cannot express the empty string; BuildSet inserts it.
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if w := strings.TrimSpace(line); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

// tableBytes serializes the generated tables deterministically for digesting.
func tableBytes(s *phfset.StrSet) []byte {
	var b []byte
	b = binary.LittleEndian.AppendUint64(b, s.Key)
	for _, d := range s.Disps {
		b = binary.LittleEndian.AppendUint32(b, d[0])
		b = binary.LittleEndian.AppendUint32(b, d[1])
	}
	for i, a := range s.Atoms {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(a)))
		b = append(b, a...)
		b = binary.LittleEndian.AppendUint32(b, s.Hashes[i])
	}
	return b
}

func emit(pkg, typ string, s *phfset.StrSet, emptyIdx uint32) string {
	var w strings.Builder
	w.WriteString("// Code generated by atomgen. DO NOT EDIT.\n\n")
	w.WriteString("package " + pkg + "\n\n")
	w.WriteString("import (\n\t\"atomcache/atom\"\n\t\"atomcache/phfset\"\n)\n\n")

	w.WriteString("var set" + typ + " = phfset.StrSet{\n")
	w.WriteString("\tKey: 0x" + strconv.FormatUint(s.Key, 16) + ",\n")
	w.WriteString("\tDisps: [][2]uint32{")
	for i, d := range s.Disps {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString("{" + strconv.FormatUint(uint64(d[0]), 10) + ", " + strconv.FormatUint(uint64(d[1]), 10) + "}")
	}
	w.WriteString("},\n")
	w.WriteString("\tAtoms: []string{\n")
	for _, a := range s.Atoms {
		w.WriteString("\t\t" + strconv.Quote(a) + ",\n")
	}
	w.WriteString("\t},\n")
	w.WriteString("\tHashes: []uint32{")
	for i, h := range s.Hashes {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString("0x" + strconv.FormatUint(uint64(h), 16))
	}
	w.WriteString("},\n}\n\n")

	w.WriteString("// " + typ + " binds this vocabulary to the atom engine.\n")
	w.WriteString("type " + typ + " struct{}\n\n")
	w.WriteString("func (" + typ + ") Get() *phfset.StrSet { return &set" + typ + " }\n")
	w.WriteString("func (" + typ + ") EmptyIndex() uint32  { return " + strconv.FormatUint(uint64(emptyIdx), 10) + " }\n\n")
	w.WriteString("// " + typ + "Atom is an interned string over this vocabulary.\n")
	w.WriteString("type " + typ + "Atom = atom.Atom[" + typ + "]\n\n")

	// Packed constant atoms for identifier-shaped words. The packing scheme
	// for static atoms is stable, so these never need the runtime path.
	w.WriteString("var (\n")
	for i, a := range s.Atoms {
		if name := constName(a); name != "" {
			w.WriteString("\t" + name + " = atom.Static[" + typ + "](" + strconv.Itoa(i) + ")\n")
		}
	}
	w.WriteString(")\n")
	return w.String()
}

// constName maps a word to an exported identifier, or "" if it has no
// identifier shape.
func constName(w string) string {
	if w == "" {
		return ""
	}
	for i := 0; i < len(w); i++ {
		c := w[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return ""
			}
		default:
			return ""
		}
	}
	if c := w[0]; 'a' <= c && c <= 'z' {
		return "Atom" + string(c-('a'-'A')) + w[1:]
	}
	return "Atom" + w
}
