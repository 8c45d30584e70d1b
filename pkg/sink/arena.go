package sink

import (
	"fmt"
	"unsafe"
)

type block struct {
	data *byte
	n    int
	heap bool
}

// Arena is a LIFO scratch allocator over a fixed backing block.
type Arena struct {
	buf      []byte
	top      int
	fallback bool
	live     []block
}

// NewArena reserves size bytes of scratch. With fallback, requests that do
// not fit are served from the heap instead of failing.
func NewArena(size int, fallback bool) *Arena {
	return &Arena{buf: make([]byte, size), fallback: fallback}
}

// PushScratch returns a zeroed block of n bytes.
func (a *Arena) PushScratch(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative request %d", ErrScratchExhausted, n)
	}
	if n <= len(a.buf)-a.top {
		b := a.buf[a.top : a.top+n : a.top+n]
		clear(b)
		a.top += n
		a.live = append(a.live, block{data: unsafe.SliceData(b), n: n})
		return b, nil
	}
	if !a.fallback {
		return nil, fmt.Errorf("%w: want=%d, free=%d", ErrScratchExhausted, n, len(a.buf)-a.top)
	}
	b := make([]byte, n)
	a.live = append(a.live, block{data: unsafe.SliceData(b), n: n, heap: true})
	return b, nil
}

// PopScratch releases b, which must be the most recently pushed live block.
func (a *Arena) PopScratch(b []byte) error {
	if len(a.live) == 0 {
		return fmt.Errorf("%w: nothing to release", ErrScratchOrder)
	}
	last := a.live[len(a.live)-1]
	if last.n != len(b) || last.data != unsafe.SliceData(b) {
		return ErrScratchOrder
	}
	a.live = a.live[:len(a.live)-1]
	if !last.heap {
		a.top -= last.n
	}
	return nil
}

// InUse returns the number of arena bytes currently lent out.
func (a *Arena) InUse() int { return a.top }

// Live returns the number of blocks not yet released.
func (a *Arena) Live() int { return len(a.live) }

// Reset drops every live block.
func (a *Arena) Reset() {
	a.top = 0
	a.live = a.live[:0]
}
