package bitvec

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"

	"github.com/rawbytedev/reloc/internal/common"
)

// View is a read-only bit sequence over little-endian words stored in a byte
// slice, typically an archive. Its length is exact: padding bits in the last
// word are never visible.
type View[W common.Word] struct {
	data  []byte
	n     int
	order Order
}

// NewView returns a view of the first n bits packed in data.
func NewView[W common.Word](data []byte, order Order, n int) (View[W], error) {
	width := common.WordBytes[W]()
	if len(data)%width != 0 {
		return View[W]{}, fmt.Errorf("bitvec: %d bytes is not a whole number of %d-byte words", len(data), width)
	}
	if n < 0 || n > len(data)/width*common.WordBits[W]() {
		return View[W]{}, fmt.Errorf("bitvec: %d bits do not fit in %d words", n, len(data)/width)
	}
	return View[W]{data: data, n: n, order: order}, nil
}

// Len returns the number of visible bits.
func (v View[W]) Len() int { return v.n }

// Order returns the bit order of the packing.
func (v View[W]) Order() Order { return v.order }

func (v View[W]) word(i int) W {
	return common.ReadWord[W](v.data[i*common.WordBytes[W]():])
}

// Get returns bit i. It panics if i is out of range, like slice indexing.
func (v View[W]) Get(i int) bool {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bitvec: index %d out of range [0:%d]", i, v.n))
	}
	nb := common.WordBits[W]()
	return v.word(i/nb)&mask[W](v.order, i%nb) != 0
}

// All yields every visible bit with its index.
func (v View[W]) All() iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		for i := range v.n {
			if !yield(i, v.Get(i)) {
				return
			}
		}
	}
}

// Count returns the number of set bits.
func (v View[W]) Count() int {
	nb := common.WordBits[W]()
	full := v.n / nb
	c := 0
	for i := range full {
		c += bits.OnesCount64(uint64(v.word(i)))
	}
	for i := full * nb; i < v.n; i++ {
		if v.Get(i) {
			c++
		}
	}
	return c
}

// Bools unpacks the visible bits.
func (v View[W]) Bools() []bool {
	out := make([]bool, v.n)
	for i := range out {
		out[i] = v.Get(i)
	}
	return out
}

// Equal reports whether v holds the same bits as b.
func (v View[W]) Equal(b *BitVec[W]) bool {
	if v.n != b.Len() {
		return false
	}
	for i := range v.n {
		if v.Get(i) != b.Get(i) {
			return false
		}
	}
	return true
}

// ToBitVec copies the visible bits into an owned bit vector.
func (v View[W]) ToBitVec() BitVec[W] {
	words := make([]W, wordsFor[W](v.n))
	for i := range words {
		words[i] = v.word(i)
	}
	return BitVec[W]{words: words, n: v.n, order: v.order}
}

func (v View[W]) String() string {
	var sb strings.Builder
	sb.Grow(v.n)
	for _, b := range v.All() {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
