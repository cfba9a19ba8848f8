package vcf

import (
	"fmt"
	"strings"

	"github.com/carbocation/vcfcolumnar/intern"
)

// Store is the in-memory form of a whole VCF. It is filled by one streaming
// pass and is read-only afterwards, except for the row order set by
// SetOrder.
type Store struct {
	Header  Header
	Records []Record
	Samples []string // sample identifiers in column order

	// HasFormat is false when the file has no FORMAT column, in which case
	// there are no samples.
	HasFormat bool

	strings   *intern.Table
	perSample []intern.Ref // nSNPs x nSamples, by SNP
	order     []int        // old index -> new index; nil means input order
}

func newStore() *Store {
	return &Store{
		Records: make([]Record, 0),
		Samples: make([]string, 0),
		strings: intern.New(),
	}
}

func (s *Store) NSNPs() int {
	return len(s.Records)
}

func (s *Store) NSamples() int {
	return len(s.Samples)
}

// Interned exposes the table that owns the per-sample strings.
func (s *Store) Interned() *intern.Table {
	return s.strings
}

// SampleRef is the interned reference of sample k at SNP i.
func (s *Store) SampleRef(i, k int) intern.Ref {
	return s.perSample[i*len(s.Samples)+k]
}

// SampleString is the raw text of sample k at SNP i, e.g. "0/1:12:99".
func (s *Store) SampleString(i, k int) string {
	return s.strings.Lookup(s.SampleRef(i, k))
}

// SampleFields splits the raw text of sample k at SNP i on ':'. Empty
// sub-fields are kept so that positions line up with the record's FORMAT.
func (s *Store) SampleFields(i, k int) []string {
	return strings.Split(s.SampleString(i, k), ":")
}

// SampleField returns sub-field j of sample k at SNP i, and false if the
// sample string has fewer sub-fields than that.
func (s *Store) SampleField(i, k, j int) (string, bool) {
	raw := s.SampleString(i, k)
	for ; j > 0; j-- {
		_, rest, found := strings.Cut(raw, ":")
		if !found {
			return "", false
		}
		raw = rest
	}
	field, _, _ := strings.Cut(raw, ":")
	return field, true
}

// Row maps the input position of a SNP onto the row it is written to.
func (s *Store) Row(i int) int {
	if s.order == nil {
		return i
	}
	return s.order[i]
}

// SetOrder installs an old->new permutation. A nil permutation restores
// input order.
func (s *Store) SetOrder(perm []int) error {
	if perm == nil {
		s.order = nil
		return nil
	}
	if len(perm) != s.NSNPs() {
		return fmt.Errorf("ordering has %d entries but there are %d SNPs", len(perm), s.NSNPs())
	}

	seen := make([]bool, len(perm))
	for old, dst := range perm {
		if dst < 0 || dst >= len(perm) || seen[dst] {
			return fmt.Errorf("ordering is not a permutation: SNP %d maps to %d", old, dst)
		}
		seen[dst] = true
	}

	s.order = perm
	return nil
}

// Chromosomes returns the chromosome code of every SNP in input order.
func (s *Store) Chromosomes() []int {
	out := make([]int, len(s.Records))
	for i := range s.Records {
		out[i] = s.Records[i].Chromosome
	}
	return out
}

// Positions returns the position of every SNP in input order.
func (s *Store) Positions() []int {
	out := make([]int, len(s.Records))
	for i := range s.Records {
		out[i] = s.Records[i].Position
	}
	return out
}

// IDs returns the ID column of every SNP in input order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.Records))
	for i := range s.Records {
		out[i] = s.Records[i].ID
	}
	return out
}
