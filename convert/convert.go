// Package convert drives a whole conversion: schema synthesis from the
// header, optional row ordering, and the single write pass.
package convert

import (
	"errors"
	"fmt"
	"log"

	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfcolumnar/order"
	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/carbocation/vcfcolumnar/variable"
	"github.com/carbocation/vcfcolumnar/vcf"
)

type Options struct {
	// AutoFilter stores one flag per filter token instead of FILTER text.
	AutoFilter bool

	// Exclude lists handlers to drop, by name.
	Exclude []string

	// StringWidth sizes the string_position dimension. Zero keeps the
	// default.
	StringWidth int

	// AllowDuplicates orders rows by (chromosome, position, ID) and keeps
	// repeated positions instead of rejecting them. It only matters when
	// rows are sorted.
	AllowDuplicates bool

	// ArityOverrides resolves FORMAT fields with a non-numeric Number.
	ArityOverrides map[string]int
}

func DefaultOptions() Options {
	cfg := variable.DefaultConfig()
	return Options{
		Exclude:        cfg.Exclude,
		StringWidth:    variable.DefaultStringWidth,
		ArityOverrides: cfg.ArityOverrides,
	}
}

// Plan is a declared but not yet written dataset.
type Plan struct {
	Schema   *schema.Schema
	Registry *variable.Registry

	allowDuplicates bool
}

// BuildSchema selects handlers and declares the dataset. When alt is non-nil
// its INFO and FORMAT directives are used instead of those of st.
func BuildSchema(st *vcf.Store, alt *vcf.Store, opts Options) (*Plan, error) {
	header := &st.Header
	if alt != nil {
		header = &alt.Header
	}

	reg, err := variable.Select(header, st, variable.Config{
		AutoFilter:     opts.AutoFilter,
		Exclude:        opts.Exclude,
		ArityOverrides: opts.ArityOverrides,
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	s := schema.New()
	if err := reg.Declare(s, st); err != nil {
		return nil, pfx.Err(err)
	}
	if opts.StringWidth > 0 {
		if opts.StringWidth < 2 {
			return nil, fmt.Errorf("string width %d leaves no room for text", opts.StringWidth)
		}
		if err := s.ReviseDimension(variable.DimString, opts.StringWidth); err != nil {
			return nil, pfx.Err(err)
		}
	}

	return &Plan{Schema: s, Registry: reg, allowDuplicates: opts.AllowDuplicates}, nil
}

// WriteDataset creates the dataset on backend and fills every variable.
// With sortRows, rows are written in (chromosome, position) order.
func WriteDataset(plan *Plan, st *vcf.Store, backend schema.Backend, sortRows bool) error {
	log.Printf("Samples %d SNPs %d\n", st.NSamples(), st.NSNPs())

	var perm []int
	if sortRows {
		var err error
		if plan.allowDuplicates {
			perm, err = order.AllowDuplicates(st.Chromosomes(), st.Positions(), st.IDs())
		} else {
			perm, err = order.Unique(st.Chromosomes(), st.Positions())
		}
		if err != nil {
			return pfx.Err(err)
		}
	}
	if err := st.SetOrder(perm); err != nil {
		return pfx.Err(err)
	}

	h, err := plan.Schema.Create(backend)
	if err != nil {
		return pfx.Err(err)
	}

	if err := plan.Registry.Populate(&variable.Target{Schema: plan.Schema, Handle: h, Store: st}); err != nil {
		if cerr := h.Close(); cerr != nil {
			log.Println("Warning: closing the partial dataset:", cerr)
			err = errors.Join(err, cerr)
		}
		return pfx.Err(err)
	}

	return pfx.Err(h.Close())
}

// File converts the VCF at path. altHeader, if not empty, names a VCF whose
// header replaces the INFO and FORMAT directives of path.
func File(path, altHeader string, backend schema.Backend, sortRows bool, readOpts vcf.Options, opts Options) error {
	st, err := vcf.Load(path, readOpts)
	if err != nil {
		return err
	}

	var alt *vcf.Store
	if altHeader != "" {
		if alt, err = vcf.Load(altHeader, readOpts); err != nil {
			return err
		}
	}

	plan, err := BuildSchema(st, alt, opts)
	if err != nil {
		return err
	}

	return WriteDataset(plan, st, backend, sortRows)
}
