package variable

import (
	"errors"
	"fmt"
	"log"

	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/carbocation/vcfcolumnar/vcf"
)

var ErrDuplicateHandler = errors.New("duplicate handler name")

// Registry is an ordered set of handlers with unique names.
type Registry struct {
	handlers []Handler
	index    map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make([]Handler, 0),
		index:    make(map[string]int),
	}
}

func (r *Registry) Add(h Handler) error {
	if _, exists := r.index[h.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, h.Name())
	}
	r.index[h.Name()] = len(r.handlers)
	r.handlers = append(r.handlers, h)
	return nil
}

// Remove drops the named handler and reports whether it was present.
func (r *Registry) Remove(name string) bool {
	i, exists := r.index[name]
	if !exists {
		return false
	}

	r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
	delete(r.index, name)
	for j := i; j < len(r.handlers); j++ {
		r.index[r.handlers[j].Name()] = j
	}
	return true
}

func (r *Registry) Get(name string) (Handler, bool) {
	i, exists := r.index[name]
	if !exists {
		return nil, false
	}
	return r.handlers[i], true
}

func (r *Registry) Len() int {
	return len(r.handlers)
}

// Names lists the handler names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h.Name())
	}
	return out
}

// Declare adds the shared SNPs, Samples and string_position dimensions and
// then every handler's declarations to s.
func (r *Registry) Declare(s *schema.Schema, st *vcf.Store) error {
	s.AddDimension(DimSamples, st.NSamples(), false)
	s.AddDimension(DimSNPs, st.NSNPs(), false)
	s.AddDimension(DimString, DefaultStringWidth, false)

	for _, h := range r.handlers {
		if err := h.Declare(s); err != nil {
			return fmt.Errorf("declaring %s: %w", h.Name(), err)
		}
	}
	return nil
}

// Populate runs every handler against t in registration order.
func (r *Registry) Populate(t *Target) error {
	for _, h := range r.handlers {
		log.Printf("processing %s ...\n", h.Name())
		if err := h.Populate(t); err != nil {
			return fmt.Errorf("populating %s: %w", h.Name(), err)
		}
	}
	return nil
}

type Config struct {
	// AutoFilter replaces the FILTER text with one flag per filter token.
	AutoFilter bool

	// Exclude names handlers removed after registration.
	Exclude []string

	// ArityOverrides resolves FORMAT fields whose Number is not a count.
	ArityOverrides map[string]int
}

func DefaultConfig() Config {
	return Config{
		Exclude:        []string{"array_PL3"},
		ArityOverrides: vcf.DefaultArityOverrides,
	}
}

// Select builds the registry for a dataset. INFO and FORMAT handlers come
// from the directives in h, which need not be the header of st; the records
// of st are only consulted for the distinct filter tokens.
func Select(h *vcf.Header, st *vcf.Store, cfg Config) (*Registry, error) {
	r := NewRegistry()

	for _, fd := range vcf.ExtractFields(h, "INFO", nil) {
		if _, err := InfoType(fd.Type); err != nil {
			log.Printf("Warning: skipping INFO field %s: %v\n", fd.Name, err)
			continue
		}
		if fd.Arity == vcf.VariableArity {
			log.Printf("Warning: INFO field %s has Number=%s, storing its first value only\n", fd.Name, fd.Number)
		}
		r.addField(InfoColumn{Field: fd.Name, Type: fd.Type, Arity: fd.Arity})
	}

	for _, fd := range vcf.ExtractFields(h, "FORMAT", cfg.ArityOverrides) {
		if fd.Type == vcf.String && fd.Name == "GT" {
			r.addField(Genotype{Field: fd.Name})
			continue
		}
		if _, err := FormatType(fd.Type); err != nil {
			log.Printf("Warning: skipping FORMAT field %s: %v\n", fd.Name, err)
			continue
		}
		if fd.Arity == vcf.VariableArity {
			log.Printf("Warning: FORMAT field %s has Number=%s, storing its first value only\n", fd.Name, fd.Number)
		}
		r.addField(FormatColumn{Field: fd.Name, Type: fd.Type, Arity: fd.Arity})
	}

	builtins := []Handler{
		Location{},
		Identifier{},
		QualityScore{},
	}
	if cfg.AutoFilter {
		filters := make([][]string, 0, st.NSNPs())
		for _, rec := range st.Records {
			filters = append(filters, rec.Filters)
		}
		builtins = append(builtins, NewAutoFilter(filters))
	} else {
		builtins = append(builtins, SimpleFilter{})
	}
	builtins = append(builtins,
		RefAllele{},
		AltAllele{Which: 1},
		AltAllele{Which: 2},
		AltAllele{Which: 3},
		PlaceHolder{Label: SNPName, Type: schema.Char, Dims: []string{DimSNPs, DimString}},
		Sample{},
		PlaceHolder{Label: GenotypeSlot, Type: schema.Byte, Dims: []string{DimSamples, DimSNPs}},
	)
	for _, b := range builtins {
		if err := r.Add(b); err != nil {
			return nil, err
		}
	}

	for _, name := range cfg.Exclude {
		if r.Remove(name) {
			log.Printf("Excluding %s\n", name)
		}
	}

	return r, nil
}

// addField registers a header-derived handler, keeping the first of any
// repeated directive.
func (r *Registry) addField(h Handler) {
	if err := r.Add(h); err != nil {
		log.Printf("Warning: %v, keeping the first declaration\n", err)
	}
}
