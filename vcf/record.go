package vcf

import "gopkg.in/guregu/null.v3"

// Record is one parsed data row. Per-sample strings are held by the Store.
type Record struct {
	Chromosome int
	Position   int
	ID         string // "." when absent
	Ref        string
	Alt        []string
	Quality    null.Float // invalid when QUAL is "."
	Filters    []string
	Info       map[string]string
	Format     []string // FORMAT sub-field names, in this record's order
}

// FormatIndex returns the position of the named sub-field in this record's
// FORMAT column, or -1.
func (r *Record) FormatIndex(field string) int {
	for j, name := range r.Format {
		if name == field {
			return j
		}
	}
	return -1
}
