package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlign(t *testing.T) {
	assert.Equal(t, 0, Align(0, 8))
	assert.Equal(t, 8, Align(1, 8))
	assert.Equal(t, 8, Align(8, 8))
	assert.Equal(t, 5, Align(5, 1))
	assert.Equal(t, 5, Align(5, 0))
}

func TestWidths(t *testing.T) {
	assert.Equal(t, 1, SizeOf[int8]())
	assert.Equal(t, 4, SizeOf[float32]())
	assert.Equal(t, 8, SizeOf[uint64]())
	assert.Equal(t, 2, WordBytes[uint16]())
	assert.Equal(t, 64, WordBits[uint64]())
}

func TestScalarLE(t *testing.T) {
	b := make([]byte, 8)
	PutScalar(b, int16(-2))
	assert.Equal(t, []byte{0xfe, 0xff}, b[:2])
	assert.Equal(t, int16(-2), ReadScalar[int16](b))

	PutScalar(b, math.Pi)
	assert.Equal(t, math.Pi, ReadScalar[float64](b))

	PutWord(b, uint32(0x01020304))
	assert.Equal(t, []byte{4, 3, 2, 1}, b[:4])
	assert.Equal(t, uint32(0x01020304), ReadWord[uint32](b))
}
