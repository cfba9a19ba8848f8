package variable

import (
	"fmt"
	"strings"

	"github.com/carbocation/vcfcolumnar/schema"
)

// Variable names of the built-in handlers.
const (
	Chromosome      = "Chromosome"
	Position        = "Position"
	ID              = "ID"
	Quality         = "QUAL"
	Filter          = "FILTER"
	FlagPrefix      = "flag_"
	ReferenceAllele = "Reference_Allele"
	SNPName         = "SNP_Name"
	SampleID        = "Sample_ID"
	GenotypeSlot    = "Genotype"
)

// MissingQuality is stored for a QUAL of ".".
const MissingQuality = -1

// Location writes the chromosome code and position of every SNP.
type Location struct{}

func (Location) Name() string { return "ChromosomePosition" }

func (Location) Declare(s *schema.Schema) error {
	if err := s.AddVariable(Chromosome, schema.Byte, DimSNPs); err != nil {
		return err
	}
	return s.AddVariable(Position, schema.Int, DimSNPs)
}

func (Location) Populate(t *Target) error {
	st := t.Store
	chrom := make([]int8, st.NSNPs())
	pos := make([]int32, st.NSNPs())
	for i := range st.Records {
		r := st.Row(i)
		chrom[r] = int8(st.Records[i].Chromosome)
		pos[r] = int32(st.Records[i].Position)
	}

	if err := writeFull(t, Chromosome, chrom); err != nil {
		return err
	}
	return writeFull(t, Position, pos)
}

// Identifier writes the ID column as fixed-width text.
type Identifier struct{}

func (Identifier) Name() string { return ID }

func (Identifier) Declare(s *schema.Schema) error {
	return s.AddVariable(ID, schema.Char, DimSNPs, DimString)
}

func (Identifier) Populate(t *Target) error {
	width := t.StringWidth()
	buf := make([]byte, t.Store.NSNPs()*width)
	for i := range t.Store.Records {
		schema.PutFixed(buf, t.Store.Row(i), width, t.Store.Records[i].ID)
	}
	return writeFull(t, ID, buf)
}

// QualityScore writes QUAL, with MissingQuality where it was ".".
type QualityScore struct{}

func (QualityScore) Name() string { return Quality }

func (QualityScore) Declare(s *schema.Schema) error {
	return s.AddVariable(Quality, schema.Double, DimSNPs)
}

func (QualityScore) Populate(t *Target) error {
	buf := make([]float64, t.Store.NSNPs())
	for i, rec := range t.Store.Records {
		q := float64(MissingQuality)
		if rec.Quality.Valid {
			q = rec.Quality.Float64
		}
		buf[t.Store.Row(i)] = q
	}
	return writeFull(t, Quality, buf)
}

// SimpleFilter writes the filter tokens of each SNP joined by ';'.
type SimpleFilter struct{}

func (SimpleFilter) Name() string { return Filter }

func (SimpleFilter) Declare(s *schema.Schema) error {
	return s.AddVariable(Filter, schema.Char, DimSNPs, DimString)
}

func (SimpleFilter) Populate(t *Target) error {
	width := t.StringWidth()
	buf := make([]byte, t.Store.NSNPs()*width)
	for i, rec := range t.Store.Records {
		schema.PutFixed(buf, t.Store.Row(i), width, strings.Join(rec.Filters, ";"))
	}
	return writeFull(t, Filter, buf)
}

// AutoFilter writes one byte flag per distinct filter token, 1 where the SNP
// carries the token. The "." token gets no flag.
type AutoFilter struct {
	Tokens []string // in order of first appearance
}

// NewAutoFilter collects the distinct filter tokens of records.
func NewAutoFilter(filters [][]string) *AutoFilter {
	seen := make(map[string]struct{})
	af := &AutoFilter{Tokens: make([]string, 0)}
	for _, tokens := range filters {
		for _, token := range tokens {
			if token == "." {
				continue
			}
			if _, exists := seen[token]; exists {
				continue
			}
			seen[token] = struct{}{}
			af.Tokens = append(af.Tokens, token)
		}
	}
	return af
}

func (*AutoFilter) Name() string { return "AutoFilter" }

func (af *AutoFilter) Declare(s *schema.Schema) error {
	for _, token := range af.Tokens {
		if err := s.AddVariable(FlagPrefix+token, schema.Byte, DimSNPs); err != nil {
			return err
		}
	}
	return nil
}

func (af *AutoFilter) Populate(t *Target) error {
	for _, token := range af.Tokens {
		buf := make([]int8, t.Store.NSNPs())
		for i, rec := range t.Store.Records {
			for _, f := range rec.Filters {
				if f == token {
					buf[t.Store.Row(i)] = 1
					break
				}
			}
		}
		if err := writeFull(t, FlagPrefix+token, buf); err != nil {
			return err
		}
	}
	return nil
}

// RefAllele writes the REF column as variable-length strings.
type RefAllele struct{}

func (RefAllele) Name() string { return ReferenceAllele }

func (RefAllele) Declare(s *schema.Schema) error {
	return s.AddVariable(ReferenceAllele, schema.String, DimSNPs)
}

func (RefAllele) Populate(t *Target) error {
	values := make([]string, t.Store.NSNPs())
	for i, rec := range t.Store.Records {
		values[t.Store.Row(i)] = rec.Ref
	}
	if err := t.Handle.WriteStrings(ReferenceAllele, 0, values); err != nil {
		return fmt.Errorf("writing %s: %w", ReferenceAllele, err)
	}
	return nil
}

// AltAllele writes the Which'th alternate allele (1-based), or "" for SNPs
// with fewer alternates.
type AltAllele struct {
	Which int
}

func (a AltAllele) Name() string { return fmt.Sprintf("Alternate%d_Allele", a.Which) }

func (a AltAllele) Declare(s *schema.Schema) error {
	if a.Which < 1 {
		return fmt.Errorf("alternate allele index %d is not 1-based", a.Which)
	}
	return s.AddVariable(a.Name(), schema.String, DimSNPs)
}

func (a AltAllele) Populate(t *Target) error {
	values := make([]string, t.Store.NSNPs())
	for i, rec := range t.Store.Records {
		if len(rec.Alt) >= a.Which {
			values[t.Store.Row(i)] = rec.Alt[a.Which-1]
		}
	}
	if err := t.Handle.WriteStrings(a.Name(), 0, values); err != nil {
		return fmt.Errorf("writing %s: %w", a.Name(), err)
	}
	return nil
}

// Sample writes the sample identifiers as fixed-width text.
type Sample struct{}

func (Sample) Name() string { return SampleID }

func (Sample) Declare(s *schema.Schema) error {
	return s.AddVariable(SampleID, schema.Char, DimSamples, DimString)
}

func (Sample) Populate(t *Target) error {
	width := t.StringWidth()
	buf := make([]byte, t.Store.NSamples()*width)
	for k, name := range t.Store.Samples {
		schema.PutFixed(buf, k, width, name)
	}
	return writeFull(t, SampleID, buf)
}

// PlaceHolder reserves a variable that the converter never fills.
type PlaceHolder struct {
	Label string
	Type  schema.Type
	Dims  []string
}

func (p PlaceHolder) Name() string { return p.Label }

func (p PlaceHolder) Declare(s *schema.Schema) error {
	if len(p.Dims) == 0 {
		return fmt.Errorf("placeholder %s has no dimensions", p.Label)
	}
	return s.AddVariable(p.Label, p.Type, p.Dims...)
}

func (PlaceHolder) Populate(*Target) error { return nil }
