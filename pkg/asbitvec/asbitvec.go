// Package asbitvec archives a bit vector as its raw word array plus the exact
// bit length, so that archived bits can be read in place.
//
// Record: {words: word-array record @0, bitLen uint32 @8}, 12 bytes aligned
// to 4. The word array carries every word of the vector, padding bits
// included; bitLen hides them again on access.
package asbitvec

import (
	"errors"
	"fmt"
	"math"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/internal/common"
	"github.com/rawbytedev/reloc/pkg/bitvec"
	"github.com/rawbytedev/reloc/pkg/sink"
	"github.com/rawbytedev/reloc/pkg/wordarray"
)

var wordsOff, lenOff, recordShape = layout()

func layout() (int, int, reloc.Shape) {
	var l reloc.Layout
	w := l.Field(wordarray.Shape)
	n := l.Field(reloc.LenShape)
	return w, n, l.Shape()
}

// ErrOrderMismatch is reported when a vector's bit order differs from the
// order the adapter reads archives with.
var ErrOrderMismatch = errors.New("bit order mismatch")

// Shape is the shape of every archived bit vector.
func Shape() reloc.Shape { return recordShape }

// Resolver carries the position of the word payload.
type Resolver struct {
	Words wordarray.Resolver
}

// Adapter archives bitvec.BitVec[W]. Order is the bit order views and
// deserialized vectors use; it is not stored in the archive, so Serialize
// rejects vectors packed in any other order.
type Adapter[W common.Word] struct {
	Order bitvec.Order
}

var _ reloc.Adapter[bitvec.BitVec[uint8], Archived[uint8], Resolver] = Adapter[uint8]{}

func (Adapter[W]) Shape(*bitvec.BitVec[W]) reloc.Shape { return recordShape }

func (ad Adapter[W]) Serialize(v *bitvec.BitVec[W], s sink.Sink) (Resolver, error) {
	if v.Order() != ad.Order {
		return Resolver{}, fmt.Errorf("%w: %w: vector is %s, adapter reads %s",
			reloc.ErrElementFailure, ErrOrderMismatch, v.Order(), ad.Order)
	}
	if uint64(v.Len()) > math.MaxUint32 {
		return Resolver{}, fmt.Errorf("%w: bit length %d exceeds archived length range",
			reloc.ErrElementFailure, v.Len())
	}
	r, err := wordarray.Serialize(v.Words(), s)
	if err != nil {
		return Resolver{}, err
	}
	return Resolver{Words: r}, nil
}

func (Adapter[W]) Resolve(v *bitvec.BitVec[W], pos int, r Resolver, out []byte) {
	wordarray.Resolve(pos+wordsOff, len(v.Words()), r.Words, out[wordsOff:])
	reloc.PutLen(out[lenOff:], v.Len())
}

func (ad Adapter[W]) Access(buf []byte, pos int) (Archived[W], error) {
	if err := reloc.CheckRange(buf, pos, recordShape.Size); err != nil {
		return Archived[W]{}, err
	}
	words, err := wordarray.Access[W](buf, pos+wordsOff)
	if err != nil {
		return Archived[W]{}, err
	}
	n, err := reloc.ReadLen(buf, pos+lenOff)
	if err != nil {
		return Archived[W]{}, err
	}
	if n > words.Len()*common.WordBits[W]() {
		return Archived[W]{}, fmt.Errorf("%w: bit length %d exceeds %d words",
			reloc.ErrOutOfBounds, n, words.Len())
	}
	view, err := bitvec.NewView[W](words.Bytes(), ad.Order, n)
	if err != nil {
		return Archived[W]{}, fmt.Errorf("%w: %w", reloc.ErrOutOfBounds, err)
	}
	return Archived[W]{words: words, view: view}, nil
}

func (ad Adapter[W]) Deserialize(a Archived[W], ctx *reloc.Context) (bitvec.BitVec[W], error) {
	words, err := a.words.Deserialize(ctx)
	if err != nil {
		return bitvec.BitVec[W]{}, ctx.Fail(err)
	}
	v := bitvec.FromWords(words, ad.Order)
	v.Truncate(a.Len())
	return v, nil
}

// Archived is a zero-copy view of an archived bit vector.
type Archived[W common.Word] struct {
	words wordarray.Archived[W]
	view  bitvec.View[W]
}

// View returns the bits, truncated to the archived length.
func (a Archived[W]) View() bitvec.View[W] { return a.view }

// Len returns the archived bit length.
func (a Archived[W]) Len() int { return a.view.Len() }

// Words returns the raw archived words, padding included.
func (a Archived[W]) Words() wordarray.Archived[W] { return a.words }
