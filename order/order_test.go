package order

import (
	"errors"
	"testing"
)

func TestUnique(t *testing.T) {
	chrom := []int{2, 1, 1, 23, 2}
	pos := []int{50, 300, 100, 1, 10}

	perm, err := Unique(chrom, pos)
	if err != nil {
		t.Fatal(err)
	}

	c, p := Apply(perm, chrom), Apply(perm, pos)
	for i := 1; i < len(c); i++ {
		if c[i] < c[i-1] || (c[i] == c[i-1] && p[i] < p[i-1]) {
			t.Errorf("row %d (%d:%d) sorts before row %d (%d:%d)", i, c[i], p[i], i-1, c[i-1], p[i-1])
		}
	}

	want := []int{3, 1, 0, 4, 2}
	for i := range want {
		if perm[i] != want[i] {
			t.Errorf("row %d: expected %d, got %d", i, want[i], perm[i])
		}
	}
}

func TestUniqueDuplicate(t *testing.T) {
	_, err := Unique([]int{1, 2, 1}, []int{100, 100, 100})
	if !errors.Is(err, ErrDuplicatePosition) {
		t.Errorf("expected ErrDuplicatePosition, got %v", err)
	}
}

func TestAllowDuplicates(t *testing.T) {
	chrom := []int{1, 1, 1, 1, 1}
	pos := []int{100, 100, 50, 100, 100}
	ids := []string{"rs9", "rs2", "rs1", "rs2", "rs2"}

	perm, err := AllowDuplicates(chrom, pos, ids)
	if err != nil {
		t.Fatal(err)
	}

	// Expected output order: 2 (pos 50), then the rs2 rows 1, 3, 4 in input
	// order, then 0 (rs9).
	want := []int{4, 1, 0, 2, 3}
	for i := range want {
		if perm[i] != want[i] {
			t.Errorf("row %d: expected %d, got %d", i, want[i], perm[i])
		}
	}
}

func TestEmpty(t *testing.T) {
	perm, err := Unique(nil, nil)
	if err != nil || len(perm) != 0 {
		t.Errorf("expected an empty permutation, got %v (%v)", perm, err)
	}
	perm, err = AllowDuplicates(nil, nil, nil)
	if err != nil || len(perm) != 0 {
		t.Errorf("expected an empty permutation, got %v (%v)", perm, err)
	}
}
