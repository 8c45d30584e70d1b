package codec

import (
	"bytes"
	"strings"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/pkg/sink"
)

// slice record: {rel int32 @0, len uint32 @4}
var sliceShape = reloc.Shape{Size: reloc.RelPtrSize + reloc.LenSize, Align: reloc.RelPtrSize}

func resolveSlice(pos int, r Resolver, n int, out []byte) {
	reloc.ResolveRelPtr(out[0:], pos, r.Pos)
	reloc.PutLen(out[reloc.RelPtrSize:], n)
}

// payload returns the bounds of the slice archived at pos.
func payload(buf []byte, pos int) (int, int, error) {
	target, err := reloc.RelPtrTarget(buf, pos)
	if err != nil {
		return 0, 0, err
	}
	n, err := reloc.ReadLen(buf, pos+reloc.RelPtrSize)
	if err != nil {
		return 0, 0, err
	}
	if err := reloc.CheckRange(buf, target, n); err != nil {
		return 0, 0, err
	}
	return target, n, nil
}

// String archives a string as a relative slice over its bytes.
type String struct {
	// Unsafe makes Access alias the archive buffer instead of copying.
	Unsafe bool
}

func (String) Layout() reloc.Shape { return sliceShape }

func (String) Shape(*string) reloc.Shape { return sliceShape }

func (String) Serialize(v *string, s sink.Sink) (Resolver, error) {
	pos := s.Pos()
	if err := s.Write(unsafe.Slice(unsafe.StringData(*v), len(*v))); err != nil {
		return Resolver{}, err
	}
	return Resolver{Pos: pos}, nil
}

func (String) Resolve(v *string, pos int, r Resolver, out []byte) {
	resolveSlice(pos, r, len(*v), out)
}

func (c String) Access(buf []byte, pos int) (string, error) {
	start, n, err := payload(buf, pos)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if c.Unsafe {
		return unsafe.String(&buf[start], n), nil
	}
	return string(buf[start : start+n]), nil
}

func (String) Deserialize(a string, _ *reloc.Context) (string, error) {
	return strings.Clone(a), nil
}

func (String) Hash(v *string) uint64 { return xxhash.Sum64String(*v) }

func (String) Equal(buf []byte, pos int, v *string) bool {
	start, n, err := payload(buf, pos)
	if err != nil || n != len(*v) {
		return false
	}
	return string(buf[start:start+n]) == *v
}

func (String) AppendCanonical(dst []byte, v *string) []byte {
	return append(dst, *v...)
}

// Bytes archives a byte slice as a relative slice. Access always aliases the
// archive; Deserialize copies.
type Bytes struct{}

func (Bytes) Layout() reloc.Shape { return sliceShape }

func (Bytes) Shape(*[]byte) reloc.Shape { return sliceShape }

func (Bytes) Serialize(v *[]byte, s sink.Sink) (Resolver, error) {
	pos := s.Pos()
	if err := s.Write(*v); err != nil {
		return Resolver{}, err
	}
	return Resolver{Pos: pos}, nil
}

func (Bytes) Resolve(v *[]byte, pos int, r Resolver, out []byte) {
	resolveSlice(pos, r, len(*v), out)
}

func (Bytes) Access(buf []byte, pos int) ([]byte, error) {
	start, n, err := payload(buf, pos)
	if err != nil {
		return nil, err
	}
	return buf[start : start+n : start+n], nil
}

// Deserialize copies a; empty slices come back nil.
func (Bytes) Deserialize(a []byte, _ *reloc.Context) ([]byte, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return bytes.Clone(a), nil
}

func (Bytes) Hash(v *[]byte) uint64 { return xxhash.Sum64(*v) }

func (Bytes) Equal(buf []byte, pos int, v *[]byte) bool {
	start, n, err := payload(buf, pos)
	if err != nil {
		return false
	}
	return bytes.Equal(buf[start:start+n], *v)
}

func (Bytes) AppendCanonical(dst []byte, v *[]byte) []byte {
	return append(dst, *v...)
}
