package variable

import (
	"fmt"
	"log"
	"strings"

	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/carbocation/vcfcolumnar/translate"
	"github.com/carbocation/vcfcolumnar/vcf"
)

const (
	InfoPrefix   = "info_"
	FormatPrefix = "array_"

	// MissingValue fills FORMAT slots whose data is absent.
	MissingValue = -1
)

type number interface {
	~int8 | ~int32 | ~float64
}

// factor is the number of slots a field occupies per cell. Fields of
// unresolved arity get one slot and keep their first value.
func factor(arity int) int {
	if arity > 1 {
		return arity
	}
	return 1
}

func splitValues(raw string) []string {
	return strings.FieldsFunc(raw, func(c rune) bool { return c == ',' })
}

// InfoColumn stores one INFO field per SNP, as a scalar or a fixed vector.
type InfoColumn struct {
	Field string
	Type  vcf.FieldType
	Arity int
}

func (c InfoColumn) Name() string { return InfoPrefix + c.Field }

func (c InfoColumn) Declare(s *schema.Schema) error {
	t, err := InfoType(c.Type)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}

	switch {
	case t == schema.Char:
		return s.AddVariable(c.Name(), t, DimSNPs, DimString)
	case c.Arity > 1:
		s.AddDimension(ArbDim(c.Arity), c.Arity, false)
		return s.AddVariable(c.Name(), t, DimSNPs, ArbDim(c.Arity))
	}
	return s.AddVariable(c.Name(), t, DimSNPs)
}

func (c InfoColumn) Populate(t *Target) error {
	st, err := InfoType(c.Type)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}

	var buf interface{}
	switch st {
	case schema.Int:
		buf, err = infoValues[int32](t.Store, c.Field, factor(c.Arity), translate.Int{})
	case schema.Double:
		buf, err = infoValues[float64](t.Store, c.Field, factor(c.Arity), translate.Float{})
	case schema.Byte:
		buf, err = infoValues[int8](t.Store, c.Field, factor(c.Arity), translate.Byte{})
	case schema.Char:
		width := t.StringWidth()
		text := make([]byte, t.Store.NSNPs()*width)
		for i, rec := range t.Store.Records {
			schema.PutFixed(text, t.Store.Row(i), width, rec.Info[c.Field])
		}
		buf = text
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}

	return writeFull(t, c.Name(), buf)
}

func infoValues[T any](st *vcf.Store, field string, n int, tr translate.Translator[T]) ([]T, error) {
	buf := make([]T, st.NSNPs()*n)
	for i, rec := range st.Records {
		base := st.Row(i) * n

		// Absent entries read as ""
		raw := rec.Info[field]
		if n == 1 {
			buf[base] = tr.Translate(raw)
			continue
		}

		values := splitValues(raw)
		if len(values) > n {
			return nil, fmt.Errorf("expected %d values, found %d at SNP index %d", n, len(values), i)
		}
		for m := 0; m < n; m++ {
			v := ""
			if m < len(values) {
				v = values[m]
			}
			buf[base+m] = tr.Translate(v)
		}
	}
	return buf, nil
}

// FormatColumn stores one numeric FORMAT field per sample and SNP. The
// buffer is sample-major: sample k, SNP row r, slot m lives at
// k*(nSNPs*arity) + r*arity + m.
type FormatColumn struct {
	Field string
	Type  vcf.FieldType
	Arity int
}

func (c FormatColumn) Name() string { return FormatPrefix + c.Field }

func (c FormatColumn) Declare(s *schema.Schema) error {
	t, err := FormatType(c.Type)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}

	if c.Arity > 1 {
		s.AddDimension(ArbDim(c.Arity), c.Arity, false)
		return s.AddVariable(c.Name(), t, DimSamples, DimSNPs, ArbDim(c.Arity))
	}
	return s.AddVariable(c.Name(), t, DimSamples, DimSNPs)
}

func (c FormatColumn) Populate(t *Target) error {
	st, err := FormatType(c.Type)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}

	var missing warnOnce
	var buf interface{}
	switch st {
	case schema.Int:
		buf, err = formatValues[int32](t.Store, c.Field, factor(c.Arity), translate.Int{}, &missing)
	case schema.Double:
		buf, err = formatValues[float64](t.Store, c.Field, factor(c.Arity), translate.Float{}, &missing)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}
	missing.report("could not find field %s in FORMAT", c.Field)

	return writeFull(t, c.Name(), buf)
}

func formatValues[T number](st *vcf.Store, field string, n int, tr translate.Translator[T], missing *warnOnce) ([]T, error) {
	nSNPs, nSamples := st.NSNPs(), st.NSamples()
	buf := make([]T, nSamples*nSNPs*n)
	stride := nSNPs * n

	fill := func(k, r int, v T) {
		for m := 0; m < n; m++ {
			buf[k*stride+r*n+m] = v
		}
	}

	for i := range st.Records {
		r := st.Row(i)
		j := st.Records[i].FormatIndex(field)
		if j < 0 {
			missing.observe(i)
			for k := 0; k < nSamples; k++ {
				fill(k, r, MissingValue)
			}
			continue
		}

		for k := 0; k < nSamples; k++ {
			if raw := st.SampleString(i, k); raw == "./." || raw == "" {
				fill(k, r, MissingValue)
				continue
			}

			entry, ok := st.SampleField(i, k, j)
			if !ok {
				// Trailing sub-fields may be dropped per sample
				fill(k, r, MissingValue)
				continue
			}

			if n == 1 {
				buf[k*stride+r*n] = tr.Translate(entry)
				continue
			}

			values := splitValues(entry)
			if len(values) > n {
				return nil, fmt.Errorf("expected %d values, found %d at SNP index %d sample %d", n, len(values), i, k)
			}
			for m := 0; m < n; m++ {
				v := ""
				if m < len(values) {
					v = values[m]
				}
				buf[k*stride+r*n+m] = tr.Translate(v)
			}
		}
	}

	return buf, nil
}

// Genotype stores a genotype call field as three byte slots per sample and
// SNP, laid out like FormatColumn.
type Genotype struct {
	Field string
}

func (g Genotype) Name() string { return FormatPrefix + g.Field }

func (g Genotype) Declare(s *schema.Schema) error {
	s.AddDimension(ArbDim(translate.CallWidth), translate.CallWidth, false)
	return s.AddVariable(g.Name(), schema.Byte, DimSamples, DimSNPs, ArbDim(translate.CallWidth))
}

func (g Genotype) Populate(t *Target) error {
	st := t.Store
	nSNPs, nSamples := st.NSNPs(), st.NSamples()
	const n = translate.CallWidth
	stride := nSNPs * n
	buf := make([]int8, nSamples*stride)

	var missing warnOnce
	short := 0
	for i := range st.Records {
		r := st.Row(i)
		j := st.Records[i].FormatIndex(g.Field)
		if j < 0 {
			missing.observe(i)
		}

		for k := 0; k < nSamples; k++ {
			raw := ""
			if j >= 0 {
				raw, _ = st.SampleField(i, k, j)
			}

			call, padded := translate.Call(raw)
			if padded {
				short++
			}
			copy(buf[k*stride+r*n:k*stride+r*n+n], call[:])
		}
	}

	missing.report("could not find field %s in FORMAT", g.Field)
	if short > 0 {
		log.Printf("Short field count %d\n", short)
	}

	return writeFull(t, g.Name(), buf)
}
