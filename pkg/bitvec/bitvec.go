// Package bitvec implements a growable bit vector packed into machine words,
// and a read-only view over the same packing stored as little-endian bytes.
package bitvec

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/rawbytedev/reloc/internal/common"
)

// Order selects which bit of a word holds the lowest index.
type Order uint8

const (
	// Lsb0 numbers bits from the least-significant bit of each word.
	Lsb0 Order = iota
	// Msb0 numbers bits from the most-significant bit of each word.
	Msb0
)

func (o Order) String() string {
	switch o {
	case Lsb0:
		return "lsb0"
	case Msb0:
		return "msb0"
	default:
		return fmt.Sprintf("Order(%d)", uint8(o))
	}
}

// ParseOrder parses "lsb0" or "msb0". The empty string selects Lsb0.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", "lsb0":
		return Lsb0, nil
	case "msb0":
		return Msb0, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadOrder, s)
	}
}

var (
	ErrBadOrder = errors.New("unknown bit order")
	ErrBadDigit = errors.New("bit string must contain only 0, 1 and _")
)

func mask[W common.Word](o Order, b int) W {
	if o == Msb0 {
		return W(1) << (common.WordBits[W]() - 1 - b)
	}
	return W(1) << b
}

func wordsFor[W common.Word](n int) int {
	nb := common.WordBits[W]()
	return (n + nb - 1) / nb
}

// BitVec is a sequence of bits stored in words of type W. Bits past Len in
// the last word are padding and carry no meaning.
type BitVec[W common.Word] struct {
	words []W
	n     int
	order Order
}

// New returns n zero bits.
func New[W common.Word](order Order, n int) BitVec[W] {
	return BitVec[W]{words: make([]W, wordsFor[W](n)), n: n, order: order}
}

// FromWords returns a bit vector over a copy of words, every bit in use.
func FromWords[W common.Word](words []W, order Order) BitVec[W] {
	return BitVec[W]{
		words: append([]W(nil), words...),
		n:     len(words) * common.WordBits[W](),
		order: order,
	}
}

// FromBools packs bools into a bit vector.
func FromBools[W common.Word](order Order, bools ...bool) BitVec[W] {
	v := New[W](order, len(bools))
	for i, b := range bools {
		if b {
			v.Set(i, true)
		}
	}
	return v
}

// Parse reads a string of '0' and '1' digits, first digit first. Underscores
// are ignored.
func Parse[W common.Word](s string, order Order) (BitVec[W], error) {
	v := BitVec[W]{order: order}
	for i, c := range s {
		switch c {
		case '0':
			v.Push(false)
		case '1':
			v.Push(true)
		case '_':
		default:
			return BitVec[W]{}, fmt.Errorf("%w: %q at %d", ErrBadDigit, c, i)
		}
	}
	return v, nil
}

// Len returns the number of bits.
func (v *BitVec[W]) Len() int { return v.n }

// Order returns the bit order of the packing.
func (v *BitVec[W]) Order() Order { return v.order }

// Words returns the backing words, padding included. It aliases v.
func (v *BitVec[W]) Words() []W { return v.words }

func (v *BitVec[W]) check(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bitvec: index %d out of range [0:%d]", i, v.n))
	}
}

// Get returns bit i. It panics if i is out of range.
func (v *BitVec[W]) Get(i int) bool {
	v.check(i)
	nb := common.WordBits[W]()
	return v.words[i/nb]&mask[W](v.order, i%nb) != 0
}

// Set sets bit i. It panics if i is out of range.
func (v *BitVec[W]) Set(i int, b bool) {
	v.check(i)
	nb := common.WordBits[W]()
	if b {
		v.words[i/nb] |= mask[W](v.order, i%nb)
	} else {
		v.words[i/nb] &^= mask[W](v.order, i%nb)
	}
}

// Push appends a bit.
func (v *BitVec[W]) Push(b bool) {
	if v.n == len(v.words)*common.WordBits[W]() {
		v.words = append(v.words, 0)
	}
	v.n++
	v.Set(v.n-1, b)
}

// Truncate shortens v to n bits. Words no longer covered are dropped from
// Words but stay in capacity; padding bits in the last word are untouched.
// Truncating to a length at or past Len does nothing.
func (v *BitVec[W]) Truncate(n int) {
	if n < 0 || n >= v.n {
		return
	}
	v.n = n
	v.words = v.words[:wordsFor[W](n)]
}

// Count returns the number of set bits.
func (v *BitVec[W]) Count() int {
	nb := common.WordBits[W]()
	full := v.n / nb
	c := 0
	for _, w := range v.words[:full] {
		c += bits.OnesCount64(uint64(w))
	}
	for i := full * nb; i < v.n; i++ {
		if v.Get(i) {
			c++
		}
	}
	return c
}

// Bools unpacks v.
func (v *BitVec[W]) Bools() []bool {
	out := make([]bool, v.n)
	for i := range out {
		out[i] = v.Get(i)
	}
	return out
}

// Equal reports whether v and o hold the same bits. Padding and bit order
// are not compared.
func (v *BitVec[W]) Equal(o *BitVec[W]) bool {
	if v.n != o.n {
		return false
	}
	if v.order == o.order {
		nb := common.WordBits[W]()
		full := v.n / nb
		for i := range full {
			if v.words[i] != o.words[i] {
				return false
			}
		}
		for i := full * nb; i < v.n; i++ {
			if v.Get(i) != o.Get(i) {
				return false
			}
		}
		return true
	}
	for i := range v.n {
		if v.Get(i) != o.Get(i) {
			return false
		}
	}
	return true
}

// Clone returns a copy of v that shares no memory with it.
func (v *BitVec[W]) Clone() BitVec[W] {
	return BitVec[W]{words: append([]W(nil), v.words...), n: v.n, order: v.order}
}

func (v *BitVec[W]) String() string {
	var sb strings.Builder
	sb.Grow(v.n)
	for i := range v.n {
		if v.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
