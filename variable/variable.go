// Package variable holds the handlers that turn parsed VCF content into
// dataset variables. Each handler declares its dimensions and variables on a
// schema and later fills them from the record store.
package variable

import (
	"fmt"
	"log"

	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/carbocation/vcfcolumnar/vcf"
)

// Dimension names shared by all handlers.
const (
	DimSamples = "Samples"
	DimSNPs    = "SNPs"
	DimString  = "string_position"

	DefaultStringWidth = 128
)

// ArbDim names the dimension that holds vectors of n values.
func ArbDim(n int) string {
	return fmt.Sprintf("arb%d", n)
}

// Target is what a handler writes into.
type Target struct {
	Schema *schema.Schema
	Handle schema.Handle
	Store  *vcf.Store
}

// StringWidth is the width of every fixed-width character slot.
func (t *Target) StringWidth() int {
	w, exists := t.Schema.DimensionSize(DimString)
	if !exists {
		return DefaultStringWidth
	}
	return w
}

type Handler interface {
	// Name identifies the handler in the registry. Most handlers produce a
	// single variable of the same name.
	Name() string

	// Declare adds the handler's dimensions and variables. The SNPs,
	// Samples and string_position dimensions already exist.
	Declare(s *schema.Schema) error

	// Populate writes the handler's variables in full.
	Populate(t *Target) error
}

// InfoType maps an INFO field type onto its storage type.
func InfoType(ft vcf.FieldType) (schema.Type, error) {
	switch ft {
	case vcf.Integer:
		return schema.Int, nil
	case vcf.Float:
		return schema.Double, nil
	case vcf.String, vcf.Character:
		return schema.Char, nil
	case vcf.Flag:
		return schema.Byte, nil
	}
	return 0, fmt.Errorf("%w: INFO %v", schema.ErrUnmappedType, ft)
}

// FormatType maps a numeric FORMAT field type onto its storage type. String
// FORMAT fields other than GT have no storage type.
func FormatType(ft vcf.FieldType) (schema.Type, error) {
	switch ft {
	case vcf.Integer:
		return schema.Int, nil
	case vcf.Float:
		return schema.Double, nil
	}
	return 0, fmt.Errorf("%w: FORMAT %v", schema.ErrUnmappedType, ft)
}

func writeFull(t *Target, name string, data interface{}) error {
	if err := t.Handle.WriteFull(name, data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// warnOnce logs the first occurrence of a per-SNP problem and how often it
// happened in total.
type warnOnce struct {
	first int
	count int
}

func (w *warnOnce) observe(i int) {
	if w.count == 0 {
		w.first = i
	}
	w.count++
}

func (w *warnOnce) report(format string, args ...interface{}) {
	if w.count == 0 {
		return
	}
	log.Printf("Warning: "+format+" at %d SNPs, first at SNP index %d\n", append(args, w.count, w.first)...)
}
