package codec

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/internal/common"
	"github.com/rawbytedev/reloc/pkg/sink"
)

// Scalar archives a fixed-width number inline, little-endian.
type Scalar[T common.Number] struct{}

func (Scalar[T]) Layout() reloc.Shape {
	n := common.SizeOf[T]()
	return reloc.Shape{Size: n, Align: n}
}

func (c Scalar[T]) Shape(*T) reloc.Shape { return c.Layout() }

func (Scalar[T]) Serialize(*T, sink.Sink) (Resolver, error) { return Resolver{}, nil }

func (Scalar[T]) Resolve(v *T, _ int, _ Resolver, out []byte) {
	common.PutScalar(out, *v)
}

func (Scalar[T]) Access(buf []byte, pos int) (T, error) {
	if err := reloc.CheckRange(buf, pos, common.SizeOf[T]()); err != nil {
		var zero T
		return zero, err
	}
	return common.ReadScalar[T](buf[pos:]), nil
}

func (Scalar[T]) Deserialize(a T, _ *reloc.Context) (T, error) { return a, nil }

func (Scalar[T]) Hash(v *T) uint64 {
	var b [8]byte
	common.PutScalar(b[:], *v)
	return xxhash.Sum64(b[:common.SizeOf[T]()])
}

func (Scalar[T]) Equal(buf []byte, pos int, v *T) bool {
	n := common.SizeOf[T]()
	if reloc.CheckRange(buf, pos, n) != nil {
		return false
	}
	var b [8]byte
	common.PutScalar(b[:], *v)
	return bytes.Equal(buf[pos:pos+n], b[:n])
}

func (Scalar[T]) AppendCanonical(dst []byte, v *T) []byte {
	var b [8]byte
	common.PutScalar(b[:], *v)
	return append(dst, b[:common.SizeOf[T]()]...)
}

// Bool archives a bool as one byte. Any byte other than 0 or 1 is rejected on access.
type Bool struct{}

var boolShape = reloc.Shape{Size: 1, Align: 1}

func (Bool) Layout() reloc.Shape { return boolShape }

func (Bool) Shape(*bool) reloc.Shape { return boolShape }

func (Bool) Serialize(*bool, sink.Sink) (Resolver, error) { return Resolver{}, nil }

func (Bool) Resolve(v *bool, _ int, _ Resolver, out []byte) {
	if *v {
		out[0] = 1
	} else {
		out[0] = 0
	}
}

func (Bool) Access(buf []byte, pos int) (bool, error) {
	if err := reloc.CheckRange(buf, pos, 1); err != nil {
		return false, err
	}
	switch buf[pos] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid bool byte 0x%02x at %d", reloc.ErrElementFailure, buf[pos], pos)
	}
}

func (Bool) Deserialize(a bool, _ *reloc.Context) (bool, error) { return a, nil }

func (Bool) Hash(v *bool) uint64 {
	if *v {
		return xxhash.Sum64([]byte{1})
	}
	return xxhash.Sum64([]byte{0})
}

func (c Bool) Equal(buf []byte, pos int, v *bool) bool {
	got, err := c.Access(buf, pos)
	return err == nil && got == *v
}

func (Bool) AppendCanonical(dst []byte, v *bool) []byte {
	if *v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

type (
	Uint8   = Scalar[uint8]
	Uint16  = Scalar[uint16]
	Uint32  = Scalar[uint32]
	Uint64  = Scalar[uint64]
	Int8    = Scalar[int8]
	Int16   = Scalar[int16]
	Int32   = Scalar[int32]
	Int64   = Scalar[int64]
	Float32 = Scalar[float32]
	Float64 = Scalar[float64]
)
