package reloc

import (
	"github.com/rawbytedev/reloc/internal/common"
)

const (
	// RelPtrSize is the width of an archived relative offset.
	RelPtrSize = 4
	// LenSize is the width of an archived length or count.
	LenSize = 4
)

// RelPtrShape is the shape of a bare relative offset field.
var RelPtrShape = Shape{Size: RelPtrSize, Align: RelPtrSize}

// LenShape is the shape of an archived length field.
var LenShape = Shape{Size: LenSize, Align: LenSize}

// ResolveRelPtr writes the offset from the field at position from to the
// data at position to. Both positions come from a sink bounded by
// sink.MaxArchiveSize, so the difference always fits.
func ResolveRelPtr(out []byte, from, to int) {
	common.PutI32(out, int32(to-from))
}

// RelPtrTarget reads the relative offset stored at pos and returns the
// absolute position it refers to.
func RelPtrTarget(buf []byte, pos int) (int, error) {
	if err := CheckRange(buf, pos, RelPtrSize); err != nil {
		return 0, err
	}
	target := pos + int(common.ReadI32(buf[pos:]))
	if err := CheckRange(buf, target, 0); err != nil {
		return 0, err
	}
	return target, nil
}

// PutLen writes an archived length.
func PutLen(out []byte, n int) { common.PutU32(out, uint32(n)) }

// ReadLen reads the archived length at pos.
func ReadLen(buf []byte, pos int) (int, error) {
	if err := CheckRange(buf, pos, LenSize); err != nil {
		return 0, err
	}
	return int(common.ReadU32(buf[pos:])), nil
}
