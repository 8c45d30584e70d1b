package asmap

import (
	"fmt"
	"iter"

	"github.com/rawbytedev/reloc"
	"github.com/rawbytedev/reloc/internal/common"
)

// Archived is a zero-copy view of an archived map. It is safe for concurrent
// readers as long as the underlying buffer is not modified.
type Archived[K, V any] struct {
	ad      Adapter[K, V]
	layout  entryLayout
	buf     []byte
	buckets []byte
	entries int
	n       int
}

// Len returns the number of entries.
func (m Archived[K, V]) Len() int { return m.n }

func (m Archived[K, V]) entryPos(i int) int {
	return m.entries + i*m.layout.shape.Size
}

// Index returns the position in the entry array of the first entry holding
// key. It examines at most Len()+1 buckets.
func (m Archived[K, V]) Index(key K) (int, bool) {
	c := len(m.buckets) / bucketSize
	if c == 0 {
		return -1, false
	}
	at := int(m.ad.Keys.Hash(&key) & uint64(c-1))
	for probe := 0; probe <= m.n && probe < c; probe++ {
		slot := common.ReadU32(m.buckets[bucketSize*at:])
		if slot == 0 {
			return -1, false
		}
		i := int(slot - 1)
		if i < m.n && m.ad.Keys.Equal(m.buf, m.entryPos(i)+m.layout.key, &key) {
			return i, true
		}
		at = (at + 1) & (c - 1)
	}
	return -1, false
}

// Contains reports whether key is present.
func (m Archived[K, V]) Contains(key K) bool {
	_, ok := m.Index(key)
	return ok
}

// Lookup returns the value stored under key. The error is set only when the
// key is present but its value cannot be read.
func (m Archived[K, V]) Lookup(key K) (V, bool, error) {
	var zero V
	i, ok := m.Index(key)
	if !ok {
		return zero, false, nil
	}
	v, err := m.ad.Values.Access(m.buf, m.entryPos(i)+m.layout.value)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Get returns the value stored under key.
func (m Archived[K, V]) Get(key K) (V, bool) {
	v, ok, err := m.Lookup(key)
	if err != nil {
		return v, false
	}
	return v, ok
}

// Entry returns the key and value of entry i.
func (m Archived[K, V]) Entry(i int) (K, V, error) {
	var (
		k K
		v V
	)
	if i < 0 || i >= m.n {
		return k, v, fmt.Errorf("%w: entry %d of %d", reloc.ErrOutOfBounds, i, m.n)
	}
	pos := m.entryPos(i)
	k, err := m.ad.Keys.Access(m.buf, pos+m.layout.key)
	if err != nil {
		return k, v, err
	}
	v, err = m.ad.Values.Access(m.buf, pos+m.layout.value)
	return k, v, err
}

// All yields every entry in stored order. It stops early at an entry that
// cannot be read.
func (m Archived[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.n {
			k, v, err := m.Entry(i)
			if err != nil || !yield(k, v) {
				return
			}
		}
	}
}
