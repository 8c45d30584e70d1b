package common

import (
	"encoding/binary"
	"math"
	"reflect"
	"unsafe"
)

// Number is the set of fixed-width primitives that archive inline.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Word is the set of storage units a bit vector can be packed into.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// FixedSize returns the byte width for fixed-size primitive kinds.
func FixedSize(k reflect.Kind) int {
	switch k {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		return 8
	default:
		return -1
	}
}

// SizeOf returns the archived width of T in bytes.
func SizeOf[T Number]() int {
	return FixedSize(reflect.TypeFor[T]().Kind())
}

// WordBytes returns the width of W in bytes.
func WordBytes[W Word]() int {
	var w W
	return int(unsafe.Sizeof(w))
}

// WordBits returns the width of W in bits.
func WordBits[W Word]() int {
	return WordBytes[W]() * 8
}

// Align rounds n up to the next multiple of a. a must be a power of two.
func Align(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) &^ (a - 1)
}

// PutScalar writes v little-endian into b. b must hold SizeOf[T]() bytes.
func PutScalar[T Number](b []byte, v T) {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		return
	case reflect.Float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(float64(v)))
		return
	}
	switch SizeOf[T]() {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
}

// ReadScalar decodes a little-endian T from b.
func ReadScalar[T Number](b []byte) T {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32:
		return T(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case reflect.Float64:
		return T(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	}
	// unsigned reads truncate back into signed kinds without loss
	switch SizeOf[T]() {
	case 1:
		return T(b[0])
	case 2:
		return T(binary.LittleEndian.Uint16(b))
	case 4:
		return T(binary.LittleEndian.Uint32(b))
	default:
		return T(binary.LittleEndian.Uint64(b))
	}
}

// PutWord writes w little-endian into b.
func PutWord[W Word](b []byte, w W) {
	switch WordBytes[W]() {
	case 1:
		b[0] = byte(w)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(w))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(w))
	default:
		binary.LittleEndian.PutUint64(b, uint64(w))
	}
}

// ReadWord decodes a little-endian W from b.
func ReadWord[W Word](b []byte) W {
	switch WordBytes[W]() {
	case 1:
		return W(b[0])
	case 2:
		return W(binary.LittleEndian.Uint16(b))
	case 4:
		return W(binary.LittleEndian.Uint32(b))
	default:
		return W(binary.LittleEndian.Uint64(b))
	}
}

func PutU32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

func ReadU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func PutI32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func ReadI32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}
