package reloc

import (
	"fmt"

	"github.com/rawbytedev/reloc/internal/common"
	"github.com/rawbytedev/reloc/pkg/sink"
)

// Shape describes the fixed-size record a value archives to.
type Shape struct {
	Size  int
	Align int
}

// Adapter archives values of T as records viewed through A, carrying
// serialize-time positions to resolve-time in R.
//
// A resolver returned by Serialize for v must be passed to Resolve together
// with that same v; any other pairing produces a corrupt archive.
type Adapter[T, A, R any] interface {
	// Shape describes the record v archives to. It has no side effects.
	Shape(v *T) Shape
	// Serialize writes the payload v refers to at the sink's current
	// position and returns where it went. It does not write v's record.
	Serialize(v *T, s sink.Sink) (R, error)
	// Resolve writes v's record, which will live at pos, into out.
	// out holds exactly Shape(v).Size zeroed bytes. Resolve never fails.
	Resolve(v *T, pos int, r R, out []byte)
	// Access returns a view of the record at pos in buf.
	Access(buf []byte, pos int) (A, error)
	// Deserialize rebuilds an owned T from a view.
	Deserialize(a A, ctx *Context) (T, error)
}

// Layout lays out the fields of a composite record, C style: each field is
// placed at the next offset aligned for it, and the record is padded to its
// largest alignment.
type Layout struct {
	size  int
	align int
}

// Field reserves room for a field of shape s and returns its offset.
func (l *Layout) Field(s Shape) int {
	a := max(s.Align, 1)
	off := common.Align(l.size, a)
	l.size = off + s.Size
	l.align = max(l.align, a)
	return off
}

// Shape returns the shape of the record laid out so far.
func (l *Layout) Shape() Shape {
	a := max(l.align, 1)
	return Shape{Size: common.Align(l.size, a), Align: a}
}

// Serialize archives v through ad and returns the position of its record.
func Serialize[T, A, R any](s sink.Sink, ad Adapter[T, A, R], v *T) (int, error) {
	r, err := ad.Serialize(v, s)
	if err != nil {
		return 0, err
	}
	return Resolve(s, ad, v, r)
}

// Resolve writes the record for an already serialized v at the sink's next
// aligned position and returns that position.
func Resolve[T, A, R any](s sink.Sink, ad Adapter[T, A, R], v *T, r R) (int, error) {
	shape := ad.Shape(v)
	pos, err := s.Align(max(shape.Align, 1))
	if err != nil {
		return 0, err
	}
	err = sink.WithScratch(s, shape.Size, func(out []byte) error {
		ad.Resolve(v, pos, r, out)
		return s.Write(out)
	})
	if err != nil {
		return 0, err
	}
	return pos, nil
}

// Root returns the position of the root record, the last shape.Size bytes of buf.
func Root(buf []byte, shape Shape) (int, error) {
	pos := len(buf) - shape.Size
	if pos < 0 {
		return 0, fmt.Errorf("%w: want=%d, got=%d", ErrNoRoot, shape.Size, len(buf))
	}
	return pos, nil
}

// AccessRoot returns a view of the root record of buf.
func AccessRoot[T, A, R any](ad Adapter[T, A, R], buf []byte) (A, error) {
	var zero T
	pos, err := Root(buf, ad.Shape(&zero))
	if err != nil {
		var a A
		return a, err
	}
	return ad.Access(buf, pos)
}

// Decode deserializes the root record of buf into a fresh T.
func Decode[T, A, R any](ad Adapter[T, A, R], buf []byte) (T, error) {
	a, err := AccessRoot(ad, buf)
	if err != nil {
		var zero T
		return zero, err
	}
	var ctx Context
	return ad.Deserialize(a, &ctx)
}
