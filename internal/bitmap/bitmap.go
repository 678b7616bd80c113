// Package bitmap provides a fixed-size bitset over row indices. Stages use it
// to mark rows for removal while scanning column by column.
package bitmap

import "math/bits"

// Bitmap is a set of row indices in [0, Len()), backed by uint64 words.
type Bitmap struct {
	data []uint64
	n    int
}

// New allocates a bitmap for rows [0, n). n <= 0 yields an empty set that
// ignores every Add.
func New(n int) *Bitmap {
	if n <= 0 {
		return &Bitmap{}
	}
	return &Bitmap{data: make([]uint64, (n+63)/64), n: n}
}

// Len returns the number of rows the bitmap covers.
func (b *Bitmap) Len() int { return b.n }

// Add marks row id. Ids outside [0, Len()) are ignored.
func (b *Bitmap) Add(id int) {
	if id < 0 || id >= b.n {
		return
	}
	b.data[id/64] |= 1 << uint(id%64)
}

// Has reports whether row id is marked.
func (b *Bitmap) Has(id int) bool {
	if id < 0 || id >= b.n {
		return false
	}
	return b.data[id/64]&(1<<uint(id%64)) != 0
}

// Count returns the number of marked rows.
func (b *Bitmap) Count() int {
	c := 0
	for _, w := range b.data {
		c += bits.OnesCount64(w)
	}
	return c
}

// Unmarked returns the unmarked rows in ascending order.
func (b *Bitmap) Unmarked() []int {
	out := make([]int, 0, b.n-b.Count())
	for i := 0; i < b.n; i++ {
		if b.data[i/64]&(1<<uint(i%64)) == 0 {
			out = append(out, i)
		}
	}
	return out
}
