package sink

// Buffer is an in-memory sink. The zero value is not usable; use NewBuffer.
type Buffer struct {
	*Arena
	buf   []byte
	limit int
}

// NewBuffer returns an empty in-memory sink.
func NewBuffer(opts ...Option) *Buffer {
	c := newConfig(opts)
	return &Buffer{
		Arena: NewArena(c.scratch, c.fallback),
		buf:   make([]byte, 0, c.bufferCap),
		limit: c.limit,
	}
}

func (b *Buffer) Pos() int { return len(b.buf) }

func (b *Buffer) Write(p []byte) error {
	if err := room(len(b.buf), len(p), b.limit); err != nil {
		return err
	}
	b.buf = append(b.buf, p...)
	return nil
}

func (b *Buffer) Pad(n int) error {
	if err := room(len(b.buf), n, b.limit); err != nil {
		return err
	}
	for n > 0 {
		k := min(n, len(zeroes))
		b.buf = append(b.buf, zeroes[:k]...)
		n -= k
	}
	return nil
}

func (b *Buffer) Align(a int) (int, error) {
	pad, err := alignPad(len(b.buf), a)
	if err != nil {
		return 0, err
	}
	if err := b.Pad(pad); err != nil {
		return 0, err
	}
	return len(b.buf), nil
}

// Bytes returns the archive written so far. It aliases the sink's storage
// until the next Write or Reset.
func (b *Buffer) Bytes() []byte { return b.buf }

// Reset truncates the archive for reuse, keeping its capacity.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.Arena.Reset()
}
