// Package wordarray archives contiguous runs of fixed-width words.
//
// Record: {rel int32 @0, len uint32 @4}, 8 bytes aligned to 4. The payload is
// len little-endian words, aligned to the word width.
package wordarray

import (
	"fmt"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/internal/common"
	"github.com/rawbytedev/reloc/pkg/sink"
)

// Shape is the shape of every word-array record.
var Shape = reloc.Shape{Size: reloc.RelPtrSize + reloc.LenSize, Align: reloc.RelPtrSize}

// chunkBytes bounds the scratch block used to encode words before writing.
const chunkBytes = 512

// Resolver holds the position of a word array's payload.
type Resolver struct {
	Pos int
}

// Serialize aligns the sink to the word width and writes words little-endian.
func Serialize[W common.Word](words []W, s sink.Sink) (Resolver, error) {
	width := common.WordBytes[W]()
	pos, err := s.Align(width)
	if err != nil {
		return Resolver{}, err
	}
	if len(words) == 0 {
		return Resolver{Pos: pos}, nil
	}
	size := min(len(words)*width, common.Align(chunkBytes, width))
	err = sink.WithScratch(s, size, func(b []byte) error {
		for len(words) > 0 {
			k := min(len(words), len(b)/width)
			for i, w := range words[:k] {
				common.PutWord(b[i*width:], w)
			}
			if err := s.Write(b[:k*width]); err != nil {
				return err
			}
			words = words[k:]
		}
		return nil
	})
	if err != nil {
		return Resolver{}, err
	}
	return Resolver{Pos: pos}, nil
}

// SerializeEncoded writes raw, which already holds little-endian words of
// the given width, aligned to that width.
func SerializeEncoded(raw []byte, width int, s sink.Sink) (Resolver, error) {
	if width <= 0 || len(raw)%width != 0 {
		return Resolver{}, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte words",
			reloc.ErrElementFailure, len(raw), width)
	}
	pos, err := s.Align(width)
	if err != nil {
		return Resolver{}, err
	}
	if err := s.Write(raw); err != nil {
		return Resolver{}, err
	}
	return Resolver{Pos: pos}, nil
}

// Resolve writes the record of an n-word array that will live at pos.
func Resolve(pos, n int, r Resolver, out []byte) {
	reloc.ResolveRelPtr(out[0:], pos, r.Pos)
	reloc.PutLen(out[reloc.RelPtrSize:], n)
}

// Archived is a read-only view over an archived word array.
type Archived[W common.Word] struct {
	data []byte
}

// Access returns the word array whose record is at pos. The payload must lie
// entirely inside buf.
func Access[W common.Word](buf []byte, pos int) (Archived[W], error) {
	target, err := reloc.RelPtrTarget(buf, pos)
	if err != nil {
		return Archived[W]{}, err
	}
	n, err := reloc.ReadLen(buf, pos+reloc.RelPtrSize)
	if err != nil {
		return Archived[W]{}, err
	}
	size := n * common.WordBytes[W]()
	if err := reloc.CheckRange(buf, target, size); err != nil {
		return Archived[W]{}, err
	}
	return Archived[W]{data: buf[target : target+size : target+size]}, nil
}

// Len returns the number of words.
func (a Archived[W]) Len() int { return len(a.data) / common.WordBytes[W]() }

// At returns word i. It panics if i is out of range.
func (a Archived[W]) At(i int) W {
	if i < 0 || i >= a.Len() {
		panic(fmt.Sprintf("wordarray: index %d out of range [0:%d]", i, a.Len()))
	}
	return common.ReadWord[W](a.data[i*common.WordBytes[W]():])
}

// Bytes returns the raw little-endian payload. It aliases the archive.
func (a Archived[W]) Bytes() []byte { return a.data }

// AppendTo appends every word to dst.
func (a Archived[W]) AppendTo(dst []W) []W {
	width := common.WordBytes[W]()
	for off := 0; off < len(a.data); off += width {
		dst = append(dst, common.ReadWord[W](a.data[off:]))
	}
	return dst
}

// Deserialize copies the words into a fresh slice. Empty arrays come back nil.
func (a Archived[W]) Deserialize(*reloc.Context) ([]W, error) {
	if len(a.data) == 0 {
		return nil, nil
	}
	return a.AppendTo(make([]W, 0, a.Len())), nil
}

// Adapter archives a plain []W field.
type Adapter[W common.Word] struct{}

func (Adapter[W]) Shape(*[]W) reloc.Shape { return Shape }

func (Adapter[W]) Serialize(v *[]W, s sink.Sink) (Resolver, error) {
	return Serialize(*v, s)
}

func (Adapter[W]) Resolve(v *[]W, pos int, r Resolver, out []byte) {
	Resolve(pos, len(*v), r, out)
}

func (Adapter[W]) Access(buf []byte, pos int) (Archived[W], error) {
	return Access[W](buf, pos)
}

func (Adapter[W]) Deserialize(a Archived[W], ctx *reloc.Context) ([]W, error) {
	return a.Deserialize(ctx)
}
