// Package codec archives the keys, values and scalar fields nested inside
// adapters. Each codec writes a fixed-size inline record, optionally backed by
// an out-of-line payload written during Serialize.
package codec

import (
	"github.com/rawbytedev/reloc"
)

// Resolver carries the position of an element's out-of-line payload.
// Inline-only elements leave it zero.
type Resolver struct {
	Pos int
}

// Codec is an Adapter whose view is the value itself, plus the hashing and
// comparison hooks a map needs for its keys.
type Codec[T any] interface {
	reloc.Adapter[T, T, Resolver]
	// Layout is the shape every value of T archives to.
	Layout() reloc.Shape
	// Hash hashes the canonical bytes of v.
	Hash(v *T) uint64
	// Equal reports whether the element archived at pos has the same
	// canonical bytes as v.
	Equal(buf []byte, pos int, v *T) bool
	// AppendCanonical appends the bytes Hash and Equal are defined over.
	AppendCanonical(dst []byte, v *T) []byte
}
