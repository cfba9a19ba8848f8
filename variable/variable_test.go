package variable

import (
	"strings"
	"testing"

	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/carbocation/vcfcolumnar/store/memstore"
	"github.com/carbocation/vcfcolumnar/vcf"
)

const input = `##INFO=<ID=DP,Number=1,Type=Integer,Description="Depth">
##INFO=<ID=AC,Number=2,Type=Integer,Description="Counts">
##INFO=<ID=AF,Number=A,Type=Float,Description="Frequency">
##INFO=<ID=DB,Number=0,Type=Flag,Description="dbSNP">
##INFO=<ID=GENE,Number=1,Type=String,Description="Gene">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Depth">
##FORMAT=<ID=PL,Number=G,Type=Integer,Description="Likelihoods">
##FORMAT=<ID=FT,Number=1,Type=String,Description="Sample filter">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2
1	100	rs1	A	G	50	PASS	DP=10;AC=1,2;AF=0.5,0.1;DB;GENE=ABC	GT:DP:PL	0/1:7:1,2,3	./.
1	50	.	C	T,A,G,TT	.	q10;s50	DP=20	DP:GT	3:1|1	5
2	10	rs3	G	.	1.5	.	.	PL	4,5	0,0
`

func setup(t *testing.T, cfg Config) (*Registry, *schema.Schema, *memstore.Dataset, *vcf.Store) {
	t.Helper()

	st, err := vcf.Parse(strings.NewReader(input), vcf.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	reg, err := Select(&st.Header, st, cfg)
	if err != nil {
		t.Fatal(err)
	}

	s := schema.New()
	if err := reg.Declare(s, st); err != nil {
		t.Fatal(err)
	}

	var b memstore.Backend
	h, err := s.Create(&b)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Populate(&Target{Schema: s, Handle: h, Store: st}); err != nil {
		t.Fatal(err)
	}

	return reg, s, b.Dataset, st
}

func values[T any](t *testing.T, d *memstore.Dataset, name string) []T {
	t.Helper()
	out, err := memstore.Values[T](d, name)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSelectNames(t *testing.T) {
	reg, _, _, _ := setup(t, DefaultConfig())

	for _, name := range []string{
		"info_DP", "info_AC", "info_AF", "info_DB", "info_GENE",
		"array_GT", "array_DP", "array_PL",
		"ChromosomePosition", "ID", "QUAL", "FILTER", "Reference_Allele",
		"Alternate1_Allele", "Alternate2_Allele", "Alternate3_Allele",
		"SNP_Name", "Sample_ID", "Genotype",
	} {
		if _, exists := reg.Get(name); !exists {
			t.Errorf("expected handler %s", name)
		}
	}
	if _, exists := reg.Get("array_FT"); exists {
		t.Errorf("non-GT string FORMAT fields should be skipped")
	}
}

func TestExclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude = []string{"array_PL", "no_such_handler"}
	reg, s, _, _ := setup(t, cfg)

	if _, exists := reg.Get("array_PL"); exists {
		t.Errorf("expected array_PL to be excluded")
	}
	if _, exists := s.Variable("array_PL"); exists {
		t.Errorf("excluded handler still declared its variable")
	}
}

func TestBuiltins(t *testing.T) {
	_, s, d, _ := setup(t, DefaultConfig())

	if got := values[int8](t, d, Chromosome); got[0] != 1 || got[2] != 2 {
		t.Errorf("unexpected chromosomes %v", got)
	}
	if got := values[int32](t, d, Position); got[1] != 50 {
		t.Errorf("unexpected positions %v", got)
	}
	if got := values[float64](t, d, Quality); got[0] != 50 || got[1] != MissingQuality || got[2] != 1.5 {
		t.Errorf("unexpected quality %v", got)
	}

	width, _ := s.DimensionSize(DimString)
	ids := values[byte](t, d, ID)
	if got := schema.GetFixed(ids, 1, width); got != "." {
		t.Errorf("expected '.', got %q", got)
	}
	filters := values[byte](t, d, Filter)
	if got := schema.GetFixed(filters, 1, width); got != "q10;s50" {
		t.Errorf("expected q10;s50, got %q", got)
	}
	samples := values[byte](t, d, SampleID)
	if got := schema.GetFixed(samples, 1, width); got != "S2" {
		t.Errorf("expected S2, got %q", got)
	}

	alt3 := values[string](t, d, "Alternate3_Allele")
	if alt3[0] != "" || alt3[1] != "G" || alt3[2] != "" {
		t.Errorf("unexpected third alternates %q", alt3)
	}
	if got := values[string](t, d, ReferenceAllele); got[2] != "G" {
		t.Errorf("unexpected reference alleles %q", got)
	}

	if d.Writes[SNPName] != 0 || d.Writes[GenotypeSlot] != 0 {
		t.Errorf("placeholders should never be written")
	}
	if v, _ := s.Variable(GenotypeSlot); len(v.Dims) != 2 || v.Dims[0] != DimSamples {
		t.Errorf("unexpected placeholder dims %v", v.Dims)
	}
}

func TestInfoColumns(t *testing.T) {
	_, s, d, _ := setup(t, DefaultConfig())

	if got := values[int32](t, d, "info_DP"); got[0] != 10 || got[1] != 20 || got[2] != 0 {
		t.Errorf("unexpected info_DP %v", got)
	}

	ac := values[int32](t, d, "info_AC")
	want := []int32{1, 2, 0, 0, 0, 0}
	for i := range want {
		if ac[i] != want[i] {
			t.Errorf("info_AC[%d]: expected %d, got %d", i, want[i], ac[i])
		}
	}
	if n, _ := s.DimensionSize("arb2"); n != 2 {
		t.Errorf("expected arb2 of size 2, got %d", n)
	}

	if got := values[float64](t, d, "info_AF"); got[0] != 0.5 {
		t.Errorf("variable-arity INFO should keep its first value, got %v", got)
	}
	if got := values[int8](t, d, "info_DB"); got[0] != 1 || got[1] != 0 {
		t.Errorf("unexpected flag values %v", got)
	}

	width, _ := s.DimensionSize(DimString)
	if got := schema.GetFixed(values[byte](t, d, "info_GENE"), 0, width); got != "ABC" {
		t.Errorf("expected ABC, got %q", got)
	}
}

func TestFormatColumns(t *testing.T) {
	_, s, d, st := setup(t, DefaultConfig())
	nSNPs := st.NSNPs()

	dp := values[int32](t, d, "array_DP")
	at := func(k, i int) int32 { return dp[k*nSNPs+i] }
	if at(0, 0) != 7 || at(0, 1) != 3 || at(1, 1) != 5 {
		t.Errorf("sub-field order should be resolved per record: %v", dp)
	}
	if at(1, 0) != MissingValue {
		t.Errorf("./. should store the missing value, got %d", at(1, 0))
	}
	if at(0, 2) != MissingValue || at(1, 2) != MissingValue {
		t.Errorf("SNP without DP in FORMAT should be missing, got %v", dp)
	}

	v, _ := s.Variable("array_PL")
	if len(v.Dims) != 3 || v.Dims[2] != "arb3" {
		t.Errorf("PL should be a vector of 3, got %v", v.Dims)
	}
	pl := values[int32](t, d, "array_PL")
	stride := nSNPs * 3
	if got := pl[0*stride+2*3 : 0*stride+2*3+3]; got[0] != 4 || got[1] != 5 || got[2] != 0 {
		t.Errorf("short PL vector should pad with 0, got %v", got)
	}
	if got := pl[1*stride+1*3]; got != MissingValue {
		t.Errorf("absent PL sub-field should be missing, got %d", got)
	}
}

func TestGenotype(t *testing.T) {
	_, s, d, st := setup(t, DefaultConfig())
	stride := st.NSNPs() * 3

	v, _ := s.Variable("array_GT")
	if v.Type != schema.Byte || len(v.Dims) != 3 || v.Dims[0] != DimSamples || v.Dims[1] != DimSNPs || v.Dims[2] != "arb3" {
		t.Errorf("unexpected GT variable %+v", v)
	}

	gt := values[int8](t, d, "array_GT")
	call := func(k, i int) [3]int8 {
		var out [3]int8
		copy(out[:], gt[k*stride+i*3:])
		return out
	}

	cases := []struct {
		k, i int
		want [3]int8
	}{
		{0, 0, [3]int8{1, 3, 2}},
		{1, 0, [3]int8{0, 3, 0}},
		{0, 1, [3]int8{2, 1, 2}},
		{1, 1, [3]int8{0, 3, 0}}, // sample has DP only
		{0, 2, [3]int8{0, 3, 0}}, // no GT in FORMAT
	}
	for _, c := range cases {
		if got := call(c.k, c.i); got != c.want {
			t.Errorf("sample %d SNP %d: expected %v, got %v", c.k, c.i, c.want, got)
		}
	}
}

func TestAutoFilter(t *testing.T) {
	reg, s, d, _ := setup(t, Config{AutoFilter: true})

	if _, exists := reg.Get(Filter); exists {
		t.Errorf("AutoFilter should replace FILTER")
	}
	for _, name := range []string{"flag_PASS", "flag_q10", "flag_s50"} {
		if _, exists := s.Variable(name); !exists {
			t.Errorf("expected %s", name)
		}
	}
	if _, exists := s.Variable("flag_."); exists {
		t.Errorf("'.' should not get a flag")
	}

	if got := values[int8](t, d, "flag_s50"); got[0] != 0 || got[1] != 1 || got[2] != 0 {
		t.Errorf("unexpected flag_s50 %v", got)
	}
}

func TestVectorOverflow(t *testing.T) {
	st, err := vcf.Parse(strings.NewReader("#CHROM\tPOS\tINFO\n1\t1\tAC=1,2,3\n"), vcf.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	s := schema.New()
	reg := NewRegistry()
	if err := reg.Add(InfoColumn{Field: "AC", Type: vcf.Integer, Arity: 2}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Declare(s, st); err != nil {
		t.Fatal(err)
	}
	var b memstore.Backend
	h, err := s.Create(&b)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Populate(&Target{Schema: s, Handle: h, Store: st}); err == nil {
		t.Errorf("expected an error for too many values")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, h := range []Handler{Location{}, Identifier{}, QualityScore{}} {
		if err := r.Add(h); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Add(Identifier{}); err == nil {
		t.Errorf("expected an error for a duplicate name")
	}

	if !r.Remove("ID") || r.Remove("ID") {
		t.Errorf("Remove should succeed exactly once")
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "ChromosomePosition" || names[1] != "QUAL" {
		t.Errorf("unexpected names after removal %v", names)
	}
	if h, exists := r.Get("QUAL"); !exists || h.Name() != "QUAL" {
		t.Errorf("index not rebuilt after removal")
	}
}

func TestTypeMapping(t *testing.T) {
	if _, err := FormatType(vcf.String); err == nil {
		t.Errorf("expected an error for a string FORMAT field")
	}
	if _, err := InfoType(vcf.TypeUnknown); err == nil {
		t.Errorf("expected an error for an unknown INFO type")
	}
	if ty, err := InfoType(vcf.Float); err != nil || ty != schema.Double {
		t.Errorf("expected Float to map to double, got %v (%v)", ty, err)
	}
}
