// Package sink provides the append-only byte sinks archives are written into.
//
// A sink reports its current write position, appends bytes, and lends out
// scratch memory for two-phase writes. Positions are absolute offsets from the
// start of the archive; adapters embed them (as relative offsets) in the
// records they resolve, so a sink must never reorder or rewrite bytes.
//
// Every error a sink returns wraps ErrFailure.
package sink

import (
	"errors"
	"fmt"
	"math"
)

// MaxArchiveSize bounds every archive so that the difference of any two
// positions fits in an archived int32 relative offset.
const MaxArchiveSize = math.MaxInt32

// DefaultScratchSize is the scratch block a sink reserves when none is configured.
const DefaultScratchSize = 4096

var (
	ErrFailure          = errors.New("sink failure")
	ErrLimitExceeded    = fmt.Errorf("%w: archive size limit exceeded", ErrFailure)
	ErrScratchExhausted = fmt.Errorf("%w: scratch space exhausted", ErrFailure)
	ErrScratchOrder     = fmt.Errorf("%w: scratch released out of order", ErrFailure)
	ErrBadAlignment     = fmt.Errorf("%w: alignment must be a power of two", ErrFailure)
)

// Scratch lends temporary memory with stack discipline: blocks must be popped
// in the reverse order they were pushed.
type Scratch interface {
	PushScratch(n int) ([]byte, error)
	PopScratch(b []byte) error
}

// Sink is the write side of an archive.
type Sink interface {
	// Pos returns the position the next byte will be written at.
	Pos() int
	// Write appends b.
	Write(b []byte) error
	// Pad appends n zero bytes.
	Pad(n int) error
	// Align pads to the next multiple of a and returns the new position.
	Align(a int) (int, error)
	Scratch
}

// WithScratch lends fn a zeroed scratch block of n bytes and releases it when
// fn returns, whether or not fn failed.
func WithScratch(s Scratch, n int, fn func(buf []byte) error) (err error) {
	buf, err := s.PushScratch(n)
	if err != nil {
		return err
	}
	defer func() {
		if perr := s.PopScratch(buf); perr != nil && err == nil {
			err = perr
		}
	}()
	return fn(buf)
}

type config struct {
	limit     int
	scratch   int
	fallback  bool
	bufferCap int
}

// Option configures a sink.
type Option func(*config)

// WithLimit caps the archive size. Values above MaxArchiveSize are clamped.
func WithLimit(n int) Option {
	return func(c *config) { c.limit = n }
}

// WithScratchSize sets the size of the scratch block.
func WithScratchSize(n int) Option {
	return func(c *config) { c.scratch = n }
}

// WithScratchFallback lets scratch requests that do not fit the block fall
// back to heap allocations.
func WithScratchFallback(on bool) Option {
	return func(c *config) { c.fallback = on }
}

// WithCapacity preallocates the in-memory buffer.
func WithCapacity(n int) Option {
	return func(c *config) { c.bufferCap = n }
}

func newConfig(opts []Option) config {
	c := config{limit: MaxArchiveSize, scratch: DefaultScratchSize}
	for _, o := range opts {
		o(&c)
	}
	if c.limit <= 0 || c.limit > MaxArchiveSize {
		c.limit = MaxArchiveSize
	}
	if c.scratch < 0 {
		c.scratch = 0
	}
	return c
}

// room checks that n more bytes fit under limit.
func room(pos, n, limit int) error {
	if n < 0 || n > limit-pos {
		return fmt.Errorf("%w: pos=%d, write=%d, limit=%d", ErrLimitExceeded, pos, n, limit)
	}
	return nil
}

func alignPad(pos, a int) (int, error) {
	if a <= 0 || a&(a-1) != 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadAlignment, a)
	}
	return (a - pos%a) % a, nil
}

var zeroes [64]byte
