package schema

import (
	"errors"
	"testing"
)

type recordingBackend struct {
	dims []Dimension
	vars []Variable
}

func (r *recordingBackend) Create(dims []Dimension, vars []Variable) (Handle, error) {
	r.dims, r.vars = dims, vars
	return nil, nil
}

func TestAddDimensionIdempotent(t *testing.T) {
	s := New()
	s.AddDimension("SNPs", 3, false)
	s.AddDimension("SNPs", 99, false)

	if n, _ := s.DimensionSize("SNPs"); n != 3 {
		t.Errorf("re-adding a dimension changed its size to %d", n)
	}

	if err := s.ReviseDimension("SNPs", 5); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.DimensionSize("SNPs"); n != 5 {
		t.Errorf("expected revised size 5, got %d", n)
	}

	if err := s.ReviseDimension("nope", 1); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
}

func TestAddVariable(t *testing.T) {
	s := New()
	s.AddDimension("SNPs", 3, false)

	if err := s.AddVariable("Position", Int, "SNPs"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddVariable("Position", Double, "SNPs"); !errors.Is(err, ErrDuplicateVariable) {
		t.Errorf("expected ErrDuplicateVariable, got %v", err)
	}
	if err := s.AddVariable("ID", Char, "SNPs", "string_position"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("expected ErrUnknownDimension, got %v", err)
	}
	if err := s.AddVariable("Weird", Type(99), "SNPs"); !errors.Is(err, ErrUnmappedType) {
		t.Errorf("expected ErrUnmappedType, got %v", err)
	}
}

func TestCreateOrder(t *testing.T) {
	s := New()
	s.AddDimension("string_position", 128, false)
	s.AddDimension("SNPs", 3, false)
	s.AddDimension("time", 0, true)
	s.AddDimension("Samples", 2, false)
	if err := s.AddVariable("Sample_ID", Char, "Samples", "string_position"); err != nil {
		t.Fatal(err)
	}

	var b recordingBackend
	if _, err := s.Create(&b); err != nil {
		t.Fatal(err)
	}

	want := []string{"time", "SNPs", "Samples", "string_position"}
	if len(b.dims) != len(want) {
		t.Fatalf("expected %d dimensions, got %d", len(want), len(b.dims))
	}
	for i, name := range want {
		if b.dims[i].Name != name {
			t.Errorf("dimension %d: expected %s, got %s", i, name, b.dims[i].Name)
		}
	}
	if len(b.vars) != 1 || b.vars[0].Name != "Sample_ID" {
		t.Errorf("unexpected variables %v", b.vars)
	}

	if n, err := s.Len("Sample_ID"); err != nil || n != 256 {
		t.Errorf("expected 256 elements, got %d (%v)", n, err)
	}
}

func TestCheckBuffer(t *testing.T) {
	cases := []struct {
		t    Type
		n    int
		data interface{}
		ok   bool
	}{
		{Byte, 2, []int8{1, 2}, true},
		{Byte, 2, []byte{1, 2}, false},
		{Char, 2, []byte{1, 2}, true},
		{Int, 3, []int32{1, 2}, false},
		{Double, 1, []float64{1}, true},
		{String, 1, []string{"A"}, true},
	}

	for i, c := range cases {
		err := CheckBuffer(c.t, c.n, c.data)
		if (err == nil) != c.ok {
			t.Errorf("case %d: unexpected result %v", i, err)
		}
		if err != nil && !errors.Is(err, ErrBufferMismatch) {
			t.Errorf("case %d: expected ErrBufferMismatch, got %v", i, err)
		}
	}
}

func TestFixedWidth(t *testing.T) {
	buf := make([]byte, 2*4)
	PutFixed(buf, 0, 4, "rs")
	PutFixed(buf, 1, 4, "rs12345")

	if got := GetFixed(buf, 0, 4); got != "rs" {
		t.Errorf("expected rs, got %q", got)
	}
	if got := GetFixed(buf, 1, 4); got != "rs1" {
		t.Errorf("expected rs1, got %q", got)
	}
}

func TestParseType(t *testing.T) {
	for ty := Byte; ty <= String; ty++ {
		got, err := ParseType(ty.String())
		if err != nil || got != ty {
			t.Errorf("%v: got %v (%v)", ty, got, err)
		}
	}
}
