package arrowstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/vcfcolumnar/schema"
)

func build(t *testing.T) *schema.Schema {
	t.Helper()

	s := schema.New()
	s.AddDimension("Samples", 2, false)
	s.AddDimension("SNPs", 3, false)
	s.AddDimension("string_position", 4, false)
	for _, v := range []struct {
		name string
		t    schema.Type
		dims []string
	}{
		{"Chromosome", schema.Byte, []string{"SNPs"}},
		{"Position", schema.Int, []string{"SNPs"}},
		{"QUAL", schema.Double, []string{"SNPs"}},
		{"ID", schema.Char, []string{"SNPs", "string_position"}},
		{"Reference_Allele", schema.String, []string{"SNPs"}},
		{"array_DP", schema.Int, []string{"Samples", "SNPs"}},
		{"Genotype", schema.Byte, []string{"Samples", "SNPs"}},
	} {
		if err := s.AddVariable(v.name, v.t, v.dims...); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := build(t)

	h, err := s.Create(Backend{Dir: dir, Build: "test build"})
	if err != nil {
		t.Fatal(err)
	}

	id := make([]byte, 12)
	schema.PutFixed(id, 0, 4, "rs1")
	writes := map[string]interface{}{
		"Chromosome": []int8{1, 1, 23},
		"Position":   []int32{100, 200, 5},
		"QUAL":       []float64{1.5, -1, 30},
		"ID":         id,
		"array_DP":   []int32{1, 2, 3, 4, 5, 6},
	}
	for name, data := range writes {
		if err := h.WriteFull(name, data); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if err := h.WriteStrings("Reference_Allele", 0, []string{"A", "C"}); err != nil {
		t.Fatal(err)
	}
	if err := h.WriteStrings("Reference_Allele", 2, []string{"TTG"}); err != nil {
		t.Fatal(err)
	}
	if err := h.WriteFull("Position", []int32{1}); !errors.Is(err, schema.ErrBufferMismatch) {
		t.Errorf("expected ErrBufferMismatch, got %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}

	d, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if d.Manifest.Build != "test build" {
		t.Errorf("unexpected build %q", d.Manifest.Build)
	}
	if n, _ := d.DimensionSize("SNPs"); n != 3 {
		t.Errorf("expected 3 SNPs, got %d", n)
	}

	pos, err := Values[int32](d, "Position")
	if err != nil {
		t.Fatal(err)
	}
	if pos[0] != 100 || pos[2] != 5 {
		t.Errorf("unexpected positions %v", pos)
	}

	chrom, err := Values[int8](d, "Chromosome")
	if err != nil || chrom[2] != 23 {
		t.Errorf("unexpected chromosomes %v (%v)", chrom, err)
	}

	qual, err := Values[float64](d, "QUAL")
	if err != nil || qual[1] != -1 {
		t.Errorf("unexpected quality %v (%v)", qual, err)
	}

	ids, err := Values[byte](d, "ID")
	if err != nil || schema.GetFixed(ids, 0, 4) != "rs1" {
		t.Errorf("unexpected IDs %q (%v)", ids, err)
	}

	ref, err := Values[string](d, "Reference_Allele")
	if err != nil || ref[0] != "A" || ref[2] != "TTG" {
		t.Errorf("unexpected alleles %q (%v)", ref, err)
	}

	dp, err := Values[int32](d, "array_DP")
	if err != nil || dp[3] != 4 {
		t.Errorf("unexpected array_DP %v (%v)", dp, err)
	}
	if v, _ := d.Variable("array_DP"); len(v.Dims) != 2 || v.Dims[0] != "Samples" {
		t.Errorf("unexpected dims %v", v.Dims)
	}

	gt, err := Values[int8](d, "Genotype")
	if err != nil || len(gt) != 6 || gt[0] != 0 {
		t.Errorf("unwritten variable should read as zeroes, got %v (%v)", gt, err)
	}
	if v, _ := d.Variable("Genotype"); v.Written {
		t.Errorf("Genotype should not be marked written")
	}
}

func TestCreateRequiresEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "junk"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := build(t).Create(Backend{Dir: dir}); err == nil {
		t.Errorf("expected an error for a non-empty directory")
	}
}

func TestOpenRejectsOtherFormats(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(`{"format":"other"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(dir); err == nil {
		t.Errorf("expected an error for a foreign manifest")
	}
}
