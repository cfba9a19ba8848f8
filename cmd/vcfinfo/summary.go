package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/carbocation/vcfcolumnar/hwe"
	"github.com/carbocation/vcfcolumnar/translate"
	"github.com/carbocation/vcfcolumnar/vcf"
	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
)

// VariantRow is one line of the listing.
type VariantRow struct {
	ID         string `csv:"id"`
	Chromosome int    `csv:"chromosome"`
	Position   int    `csv:"position"`
	Ref        string `csv:"ref"`
	NAlt       int    `csv:"n_alt"`
	Alt        string `csv:"alt"`
	Quality    string `csv:"qual"`
	Filters    int    `csv:"n_filters"`
	HomRef     int64  `csv:"hom_ref"`
	Het        int64  `csv:"het"`
	HomAlt     int64  `csv:"hom_alt"`
	Other      int64  `csv:"other_gt"`
	AltFreq    string `csv:"alt_freq"`
	HWEP       string `csv:"hwe_p"`
}

const notAvailable = "NA"

func listVariants(st *vcf.Store) []*VariantRow {
	out := make([]*VariantRow, 0, st.NSNPs())
	for i, rec := range st.Records {
		row := &VariantRow{
			ID:         rec.ID,
			Chromosome: rec.Chromosome,
			Position:   rec.Position,
			Ref:        rec.Ref,
			NAlt:       len(rec.Alt),
			Alt:        ".",
			Quality:    ".",
			Filters:    len(rec.Filters),
			AltFreq:    notAvailable,
			HWEP:       notAvailable,
		}
		if len(rec.Alt) > 0 {
			row.Alt = rec.Alt[0]
		}
		if rec.Quality.Valid {
			row.Quality = strconv.FormatFloat(rec.Quality.Float64, 'f', -1, 64)
		}

		if j := rec.FormatIndex("GT"); j >= 0 && st.NSamples() > 0 {
			var c hwe.Counts
			for k := 0; k < st.NSamples(); k++ {
				raw, _ := st.SampleField(i, k, j)
				call, _ := translate.Call(raw)
				c.Add(call)
			}
			row.HomRef, row.Het, row.HomAlt, row.Other = c.HomRef, c.Het, c.HomAlt, c.Other
			if c.Called() > 0 {
				row.AltFreq = strconv.FormatFloat(c.AltFrequency(), 'g', 6, 64)
				row.HWEP = strconv.FormatFloat(c.P(), 'g', 6, 64)
			}
		}

		out = append(out, row)
	}
	return out
}

func writeTSV(w io.Writer, rows []*VariantRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// InfoSummary describes the values of one numeric scalar INFO field.
type InfoSummary struct {
	Field   string
	Present int
	Mean    float64
	Median  float64
	Min     float64
	Max     float64
}

func (s InfoSummary) String() string {
	return fmt.Sprintf("%s\tn=%d\tmean=%g\tmedian=%g\tmin=%g\tmax=%g", s.Field, s.Present, s.Mean, s.Median, s.Min, s.Max)
}

func summarizeInfo(st *vcf.Store) ([]InfoSummary, error) {
	out := make([]InfoSummary, 0)
	for _, fd := range vcf.ExtractFields(&st.Header, "INFO", nil) {
		if fd.Arity != 1 || (fd.Type != vcf.Integer && fd.Type != vcf.Float) {
			continue
		}

		data := make(stats.Float64Data, 0, st.NSNPs())
		for _, rec := range st.Records {
			raw, exists := rec.Info[fd.Name]
			if !exists {
				continue
			}
			data = append(data, translate.Float{}.Translate(raw))
		}
		if len(data) == 0 {
			continue
		}

		s := InfoSummary{Field: fd.Name, Present: len(data)}
		var err error
		if s.Mean, err = stats.Mean(data); err != nil {
			return nil, fmt.Errorf("%s: %w", fd.Name, err)
		}
		if s.Median, err = stats.Median(data); err != nil {
			return nil, fmt.Errorf("%s: %w", fd.Name, err)
		}
		if s.Min, err = stats.Min(data); err != nil {
			return nil, fmt.Errorf("%s: %w", fd.Name, err)
		}
		if s.Max, err = stats.Max(data); err != nil {
			return nil, fmt.Errorf("%s: %w", fd.Name, err)
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}
