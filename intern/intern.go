// Package intern keeps one canonical copy of every distinct string it is
// handed. Per-sample genotype strings repeat heavily ("0/0:12", "./."), so the
// record store keeps small integer references into a Table instead of
// millions of separate strings.
package intern

import (
	"strings"

	"github.com/minio/blake2b-simd"
)

// Ref identifies a canonical string within a Table.
type Ref uint32

// Table maps raw strings to canonical owned copies. The zero value is not
// usable; call New.
type Table struct {
	m map[[32]byte]Ref
	s []string
}

func New() *Table {
	return &Table{
		m: make(map[[32]byte]Ref),
		s: make([]string, 0),
	}
}

// Intern returns the reference for input, storing a private copy of input if
// it has not been seen before. The caller may reuse or discard the memory
// behind input afterwards.
func (t *Table) Intern(input string) Ref {
	h := blake2b.Sum256([]byte(input))

	if ref, exists := t.m[h]; exists {
		return ref
	}

	ref := Ref(len(t.s))
	t.s = append(t.s, strings.Clone(input))
	t.m[h] = ref

	return ref
}

// Lookup returns the canonical string for ref.
func (t *Table) Lookup(ref Ref) string {
	return t.s[ref]
}

// Len is the number of distinct strings held.
func (t *Table) Len() int {
	return len(t.s)
}
