// Package zc (zero-copy) opens archive files for in-place reading. On unix
// the file is mapped read-only, so views returned by the adapters point
// straight into the page cache; elsewhere the file is read into memory.
package zc

import (
	"errors"
	"fmt"
)

var (
	ErrClosed     = errors.New("zc: archive closed")
	ErrOutOfRange = errors.New("zc: read out of range")
)

// Mapped is an archive file opened for reading. Slices it returns are valid
// until Close.
type Mapped struct {
	data   []byte
	closed bool
	unmap  func() error
}

// Bytes returns the whole archive.
func (m *Mapped) Bytes() []byte { return m.data }

// Len returns the archive size in bytes.
func (m *Mapped) Len() int { return len(m.data) }

// ReadAt returns n bytes starting at off without copying.
func (m *Mapped) ReadAt(off, n int) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off > len(m.data) || n > len(m.data)-off {
		return nil, fmt.Errorf("%w: off=%d, len=%d, size=%d", ErrOutOfRange, off, n, len(m.data))
	}
	return m.data[off : off+n : off+n], nil
}

// Close releases the mapping. Closing twice is a no-op.
func (m *Mapped) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.data = nil
	if m.unmap != nil {
		return m.unmap()
	}
	return nil
}
