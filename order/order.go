// Package order computes the row permutation that puts variants into
// (chromosome, position) order. A permutation maps an input row to the row
// it is written to.
package order

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
)

var ErrDuplicatePosition = errors.New("duplicate chromosome and position")

type key struct {
	chrom, pos int
}

// Unique orders rows by (chromosome, position). Two rows sharing both are an
// error, since no order between them could be chosen.
func Unique(chrom, pos []int) ([]int, error) {
	if len(chrom) != len(pos) {
		return nil, fmt.Errorf("%d chromosomes but %d positions", len(chrom), len(pos))
	}

	seen := make(map[key]int, len(chrom))
	for i := range chrom {
		k := key{chrom[i], pos[i]}
		if first, exists := seen[k]; exists {
			return nil, fmt.Errorf("%w: %d:%d at rows %d and %d", ErrDuplicatePosition, k.chrom, k.pos, first, i)
		}
		seen[k] = i
	}

	rows := make([]int, len(chrom))
	for i := range rows {
		rows[i] = i
	}
	sort.Slice(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		if chrom[ra] != chrom[rb] {
			return chrom[ra] < chrom[rb]
		}
		return pos[ra] < pos[rb]
	})

	return invert(rows), nil
}

// AllowDuplicates orders rows by (chromosome, position, id). Rows that tie
// on all three keep their input order.
func AllowDuplicates(chrom, pos []int, ids []string) ([]int, error) {
	if len(chrom) != len(pos) || len(chrom) != len(ids) {
		return nil, fmt.Errorf("column lengths differ: %d, %d, %d", len(chrom), len(pos), len(ids))
	}

	q := &rowQueue{items: make([]row, 0, len(chrom))}
	for i := range chrom {
		heap.Push(q, row{chrom: chrom[i], pos: pos[i], id: ids[i], index: i})
	}

	sorted := make([]int, 0, len(chrom))
	for q.Len() > 0 {
		sorted = append(sorted, heap.Pop(q).(row).index)
	}

	return invert(sorted), nil
}

// Apply returns the values of in rearranged by perm.
func Apply[T any](perm []int, in []T) []T {
	out := make([]T, len(in))
	for old, dst := range perm {
		out[dst] = in[old]
	}
	return out
}

// invert turns a list of input rows in output order into an old->new map.
func invert(sorted []int) []int {
	perm := make([]int, len(sorted))
	for dst, old := range sorted {
		perm[old] = dst
	}
	return perm
}

type row struct {
	chrom, pos int
	id         string
	index      int
}

var _ heap.Interface = (*rowQueue)(nil)

type rowQueue struct {
	items []row
}

func (q *rowQueue) Len() int { return len(q.items) }

func (q *rowQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	switch {
	case a.chrom != b.chrom:
		return a.chrom < b.chrom
	case a.pos != b.pos:
		return a.pos < b.pos
	case a.id != b.id:
		return a.id < b.id
	}
	return a.index < b.index
}

func (q *rowQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *rowQueue) Push(x any) {
	q.items = append(q.items, x.(row))
}

func (q *rowQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}
