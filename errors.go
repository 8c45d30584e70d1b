package reloc

import (
	"errors"
	"fmt"

	"github.com/rawbytedev/reloc/pkg/sink"
)

var (
	// ErrSinkFailure is wrapped by every error a sink reports. Adapters return
	// such errors unchanged.
	ErrSinkFailure = sink.ErrFailure
	// ErrElementFailure marks a nested key, value or word conversion that failed.
	ErrElementFailure = errors.New("element failure")
	// ErrOutOfBounds is returned when a record, offset or length points outside the archive.
	ErrOutOfBounds = errors.New("archive access out of bounds")
	// ErrNoRoot is returned when a buffer is too short to hold its root record.
	ErrNoRoot = errors.New("archive too short for root record")
)

// ElementError wraps err as an element failure.
func ElementError(err error) error {
	if err == nil || errors.Is(err, ErrElementFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrElementFailure, err)
}

// CheckRange reports whether [pos, pos+n) lies inside buf.
func CheckRange(buf []byte, pos, n int) error {
	if pos < 0 || n < 0 || pos > len(buf) || n > len(buf)-pos {
		return fmt.Errorf("%w: pos=%d, len=%d, archive=%d", ErrOutOfBounds, pos, n, len(buf))
	}
	return nil
}
