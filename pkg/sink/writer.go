package sink

import (
	"bufio"
	"fmt"
	"io"
)

// Writer streams an archive into an io.Writer. Call Flush when done.
type Writer struct {
	*Arena
	w     *bufio.Writer
	pos   int
	limit int
}

// NewWriter returns a sink writing through a buffered w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	c := newConfig(opts)
	return &Writer{
		Arena: NewArena(c.scratch, c.fallback),
		w:     bufio.NewWriter(w),
		limit: c.limit,
	}
}

func (w *Writer) Pos() int { return w.pos }

func (w *Writer) Write(p []byte) error {
	if err := room(w.pos, len(p), w.limit); err != nil {
		return err
	}
	n, err := w.w.Write(p)
	w.pos += n
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailure, err)
	}
	return nil
}

func (w *Writer) Pad(n int) error {
	if err := room(w.pos, n, w.limit); err != nil {
		return err
	}
	for n > 0 {
		k := min(n, len(zeroes))
		if err := w.Write(zeroes[:k]); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

func (w *Writer) Align(a int) (int, error) {
	pad, err := alignPad(w.pos, a)
	if err != nil {
		return 0, err
	}
	if err := w.Pad(pad); err != nil {
		return 0, err
	}
	return w.pos, nil
}

// Flush pushes buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailure, err)
	}
	return nil
}
